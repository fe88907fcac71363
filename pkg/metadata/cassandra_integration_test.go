// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build integration
// +build integration

package metadata

import (
	"testing"

	"github.com/nu7hatch/gouuid"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCassandraMetadata(t *testing.T) {
	Convey("Given Cassandra metadata of new experiment", t, func() {
		id, err := uuid.NewV4()
		So(err, ShouldBeNil)

		m, err := NewCassandra(id.String(), DefaultCassandraConfig())
		So(err, ShouldBeNil)
		defer m.Close()
		defer m.Clear()

		Convey("Recorded map should be retrieved by kind", func() {
			So(m.RecordMap(map[string]string{"device": "pixel", "attempt": "1"}, TypeRun), ShouldBeNil)
			recorded, err := m.GetByKind(TypeRun)
			So(err, ShouldBeNil)
			So(recorded, ShouldResemble, map[string]string{"device": "pixel", "attempt": "1"})
		})

		Convey("Two records of one kind should not be retrieved", func() {
			So(m.Record("a", "1", TypeFlags), ShouldBeNil)
			So(m.Record("b", "2", TypeFlags), ShouldBeNil)
			_, err := m.GetByKind(TypeFlags)
			So(err, ShouldNotBeNil)
		})

		Convey("Cleared metadata should not be found", func() {
			So(m.Record("a", "1", TypeEnviron), ShouldBeNil)
			So(m.Clear(), ShouldBeNil)
			_, err := m.GetByKind(TypeEnviron)
			So(err, ShouldNotBeNil)
		})
	})
}

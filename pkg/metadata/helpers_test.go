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

package metadata_test

import (
	"os"
	"testing"
	"time"

	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/metadata"
	"github.com/intelsdi-x/devlab/pkg/metadata/mocks"
	"github.com/intelsdi-x/devlab/pkg/progress"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
)

func TestDefault(t *testing.T) {
	Convey("Metadata should be discarded by default", t, func() {
		m, err := metadata.NewDefault("experiment")
		So(err, ShouldBeNil)
		So(m, ShouldHaveSameTypeAs, metadata.Nop{})
		So(m.RecordMap(map[string]string{"a": "b"}, metadata.TypeRun), ShouldBeNil)
		_, err = m.GetByKind(metadata.TypeRun)
		So(err, ShouldNotBeNil)
	})
}

func TestHelpers(t *testing.T) {
	Convey("When recording experiment metadata", t, func() {
		m := new(mocks.Metadata)

		Convey("Committed run should be recorded with all its fields", func() {
			started := time.Date(2017, 3, 1, 10, 0, 0, 0, time.UTC)
			m.On("RecordMap", map[string]string{
				"run_id":    "3",
				"device":    "pixel",
				"subject":   "https://example.com",
				"browser":   "chrome",
				"attempt":   "2",
				"started":   "2017-03-01T10:00:00Z",
				"committed": "2017-03-01T10:00:05Z",
			}, metadata.TypeRun).Return(nil).Once()

			run := progress.Run{ID: 3, Device: "pixel", Subject: "https://example.com", Browser: "chrome", Attempt: 2}
			So(metadata.RecordRun(m, run, started, started.Add(5*time.Second)), ShouldBeNil)
			So(m.AssertExpectations(t), ShouldBeTrue)
		})

		Convey("Experiment should be recorded with its ledger", func() {
			dir, err := os.MkdirTemp("", "metadata")
			So(err, ShouldBeNil)
			defer os.RemoveAll(dir)

			experiment, err := config.Parse([]byte("devices: [a]\npaths: [b]\nreplications: 2"), dir)
			So(err, ShouldBeNil)
			ledger, err := progress.Build(experiment, dir)
			So(err, ShouldBeNil)

			m.On("RecordMap", mock.MatchedBy(func(recorded map[string]string) bool {
				return recorded["runs"] == "2" && recorded["done"] == "0" && recorded["fingerprint"] == experiment.Fingerprint()
			}), metadata.TypeExperiment).Return(nil).Once()

			So(metadata.RecordExperiment(m, ledger, experiment.Fingerprint()), ShouldBeNil)
			So(m.AssertExpectations(t), ShouldBeTrue)
		})

		Convey("Runtime environment should record flags, environment and host", func() {
			os.Setenv("DEVLAB_METADATA_TEST", "value")
			defer os.Unsetenv("DEVLAB_METADATA_TEST")

			m.On("RecordMap", mock.Anything, metadata.TypeFlags).Return(nil).Once()
			m.On("RecordMap", mock.MatchedBy(func(env map[string]string) bool {
				return env["DEVLAB_METADATA_TEST"] == "value"
			}), metadata.TypeEnviron).Return(nil).Once()
			m.On("RecordMap", mock.MatchedBy(func(host map[string]string) bool {
				return host["host"] != "" && host["time"] != ""
			}), metadata.TypeEmpty).Return(nil).Once()

			So(metadata.RecordRuntimeEnv(m, time.Now()), ShouldBeNil)
			So(m.AssertExpectations(t), ShouldBeTrue)
		})
	})
}

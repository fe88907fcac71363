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

package fs

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteFileAtomic(t *testing.T) {
	Convey("When writing file atomically", t, func() {
		dir, err := os.MkdirTemp("", "fs-atomic")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "nested", "progress.yaml")

		Convey("It should create missing directories and write the content", func() {
			So(WriteFileAtomic(path, []byte("first"), 0644), ShouldBeNil)
			content, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual, "first")

			Convey("And replace the content on next write without leftovers", func() {
				So(WriteFileAtomic(path, []byte("second"), 0644), ShouldBeNil)
				content, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, "second")

				entries, err := os.ReadDir(filepath.Dir(path))
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})
		})
	})
}

func TestReadTail(t *testing.T) {
	Convey("When reading tail of a file", t, func() {
		file, err := os.CreateTemp("", "fs-tail")
		So(err, ShouldBeNil)
		defer os.Remove(file.Name())
		_, err = file.WriteString("one\ntwo\nthree\n")
		So(err, ShouldBeNil)
		file.Close()

		tail, err := ReadTail(file.Name(), 2)
		So(err, ShouldBeNil)
		So(tail, ShouldEqual, "two\nthree\n")
	})
}

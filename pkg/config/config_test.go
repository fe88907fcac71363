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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const nativeDefinition = `
type: native
devices:
  - pixel
  - name: nexus
    id: 0123456789
paths:
  - com.example.app
  - path: apks/other.apk
    package: com.example.other
replications: 3
randomization: true
duration: 1500
time_between_run: 200
profilers:
  runtime: {}
  logcat:
    buffer: main
scripts:
  before_run: scripts/prepare.sh
  interaction:
    - scripts/tap.sh
    - path: scripts/scroll.py
      timeout: 500
      logcat_regex: "Displayed .*"
`

func TestParse(t *testing.T) {
	Convey("When parsing native experiment definition", t, func() {
		experiment, err := Parse([]byte(nativeDefinition), "/base")
		So(err, ShouldBeNil)

		Convey("Devices keep their order and ids default to names", func() {
			So(experiment.Devices, ShouldResemble, Devices{
				{Name: "pixel", ID: "pixel"},
				{Name: "nexus", ID: "0123456789"},
			})
		})

		Convey("Subjects are resolved", func() {
			So(experiment.Paths, ShouldHaveLength, 2)
			So(experiment.Paths[0], ShouldResemble, Subject{Path: "com.example.app", Package: "com.example.app"})
			So(experiment.Paths[1].Package, ShouldEqual, "com.example.other")
			So(experiment.Paths[1].Apk, ShouldEqual, "/base/apks/other.apk")
			So(experiment.Paths[1].IsApk(), ShouldBeTrue)
		})

		Convey("Numbers and durations are decoded", func() {
			So(experiment.Replications, ShouldEqual, 3)
			So(experiment.Randomization, ShouldBeTrue)
			So(experiment.DurationTime(), ShouldEqual, 1500*time.Millisecond)
			So(experiment.TimeBetweenRuns(), ShouldEqual, 200*time.Millisecond)
		})

		Convey("Profilers keep their order", func() {
			So(experiment.Profilers, ShouldHaveLength, 2)
			So(experiment.Profilers[0].Name, ShouldEqual, "runtime")
			So(experiment.Profilers[1].Name, ShouldEqual, "logcat")
			So(experiment.Profilers[1].Params["buffer"], ShouldEqual, "main")
		})

		Convey("Scripts are resolved against base directory", func() {
			So(experiment.Scripts[BeforeRun], ShouldResemble, ScriptList{{Path: "/base/scripts/prepare.sh"}})
			So(experiment.Scripts[Interaction], ShouldResemble, ScriptList{
				{Path: "/base/scripts/tap.sh"},
				{Path: "/base/scripts/scroll.py", Timeout: 500, LogcatRegex: "Displayed .*"},
			})
		})

		Convey("Defaults are applied", func() {
			So(experiment.OutputRoot, ShouldEqual, "/base/output")
			So(experiment.BrowserNames(), ShouldBeEmpty)
		})
	})

	Convey("When parsing web experiment given as JSON", t, func() {
		experiment, err := Parse([]byte(`{
			"type": "web",
			"devices": {"pixel": "ABC", "nexus": null},
			"paths": ["https://example.com"],
			"browsers": ["chrome", "firefox"],
			"output_root": "/tmp/out"
		}`), "/base")
		So(err, ShouldBeNil)
		So(experiment.Devices, ShouldResemble, Devices{{Name: "pixel", ID: "ABC"}, {Name: "nexus", ID: "nexus"}})
		So(experiment.BrowserNames(), ShouldResemble, []string{"chrome", "firefox"})
		So(experiment.Replications, ShouldEqual, 1)
		So(experiment.OutputRoot, ShouldEqual, "/tmp/out")
	})

	Convey("When definition is invalid", t, func() {
		for name, definition := range map[string]string{
			"no devices":          "paths: [a]",
			"no paths":            "devices: [a]",
			"unknown type":        "type: desktop\ndevices: [a]\npaths: [b]",
			"web without browser": "type: web\ndevices: [a]\npaths: [b]",
			"negative reps":       "devices: [a]\npaths: [b]\nreplications: -1",
			"unknown hook":        "devices: [a]\npaths: [b]\nscripts:\n  on_boot: x.sh",
			"apk without package": "devices: [a]\npaths: [b.apk]",
			"duplicated device":   "devices: [a, a]\npaths: [b]",
			"malformed":           "devices: [a\npaths",
		} {
			Convey("It should return configuration error for "+name, func() {
				_, err := Parse([]byte(definition), "/base")
				So(err, ShouldNotBeNil)
				_, ok := err.(*ConfigurationError)
				So(ok, ShouldBeTrue)
			})
		}
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Fingerprint ignores whitespace only changes", t, func() {
		So(Fingerprint([]byte("devices: [a]\npaths: [b]\n")), ShouldEqual, Fingerprint([]byte("devices:   [a]\n\n\tpaths: [b]")))
	})

	Convey("Fingerprint changes with content", t, func() {
		So(Fingerprint([]byte("devices: [a]")), ShouldNotEqual, Fingerprint([]byte("devices: [b]")))
	})
}

func TestLoad(t *testing.T) {
	Convey("When loading definition from file", t, func() {
		dir, err := os.MkdirTemp("", "config")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "experiment.yaml")
		So(os.WriteFile(path, []byte(nativeDefinition), 0644), ShouldBeNil)

		experiment, err := Load(path)
		So(err, ShouldBeNil)
		So(experiment.Path(), ShouldEqual, path)
		So(experiment.Fingerprint(), ShouldEqual, Fingerprint([]byte(nativeDefinition)))
		So(experiment.OutputRoot, ShouldEqual, filepath.Join(dir, "output"))

		Convey("Configuration error carries the file path", func() {
			So(os.WriteFile(path, []byte("paths: [a]"), 0644), ShouldBeNil)
			_, err := Load(path)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, path)
		})
	})

	Convey("Missing file cannot be loaded", t, func() {
		_, err := Load("/nonexistent/experiment.yaml")
		So(err, ShouldNotBeNil)
	})
}

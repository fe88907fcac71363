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

package progress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/intelsdi-x/devlab/pkg/audit"
	"github.com/intelsdi-x/devlab/pkg/config"
	. "github.com/smartystreets/goconvey/convey"
)

const definition = `
devices: [pixel, nexus]
paths: [com.example.one, com.example.two]
replications: 2
`

func parse(data string) *config.Experiment {
	experiment, err := config.Parse([]byte(data), "/base")
	So(err, ShouldBeNil)
	return experiment
}

func tempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "progress")
	So(err, ShouldBeNil)
	return dir, func() { os.RemoveAll(dir) }
}

func TestBuild(t *testing.T) {
	Convey("When building ledger of 2 devices, 2 subjects and 2 replications", t, func() {
		dir, cleanup := tempDir()
		defer cleanup()

		p, err := Build(parse(definition), dir)
		So(err, ShouldBeNil)

		Convey("It should have 8 pending runs with unique ascending ids", func() {
			pending := p.Pending()
			So(pending, ShouldHaveLength, 8)
			So(p.Done(), ShouldBeEmpty)
			for i, run := range pending {
				So(run.ID, ShouldEqual, i+1)
			}
			So(p.Total(), ShouldEqual, 8)
			So(p.ExperimentID(), ShouldNotBeEmpty)
		})

		Convey("Runs should be ordered device-major with replication innermost", func() {
			pending := p.Pending()
			So(pending[0], ShouldResemble, Run{ID: 1, Device: "pixel", Subject: "com.example.one", Attempt: 1})
			So(pending[1], ShouldResemble, Run{ID: 2, Device: "pixel", Subject: "com.example.one", Attempt: 2})
			So(pending[2], ShouldResemble, Run{ID: 3, Device: "pixel", Subject: "com.example.two", Attempt: 1})
			So(pending[4], ShouldResemble, Run{ID: 5, Device: "nexus", Subject: "com.example.one", Attempt: 1})
		})

		Convey("Ledger should be persisted in run directory", func() {
			So(p.Path(), ShouldEqual, filepath.Join(dir, FileName))
			_, err := os.Stat(p.Path())
			So(err, ShouldBeNil)
			So(p.DataDir(), ShouldEqual, filepath.Join(dir, DataDir))
			So(p.AggregatedDir(), ShouldEqual, filepath.Join(dir, AggregatedDir))
		})
	})

	Convey("Web experiment should multiply runs by browsers", t, func() {
		dir, cleanup := tempDir()
		defer cleanup()

		p, err := Build(parse(`
type: web
devices: [pixel]
paths: ["https://a.example", "https://b.example"]
browsers: [chrome, firefox, opera]
replications: 3
`), dir)
		So(err, ShouldBeNil)
		pending := p.Pending()
		So(pending, ShouldHaveLength, 18)
		So(pending[0].Browser, ShouldEqual, "chrome")
		So(pending[3].Browser, ShouldEqual, "firefox")
		So(pending[3].Attempt, ShouldEqual, 1)
	})

	Convey("Building from empty experiment should return configuration error", t, func() {
		_, err := Build(&config.Experiment{}, "/nonexistent")
		So(err, ShouldNotBeNil)
		_, ok := err.(*config.ConfigurationError)
		So(ok, ShouldBeTrue)
	})
}

func TestCommitAndQueries(t *testing.T) {
	Convey("Given freshly built ledger", t, func() {
		dir, cleanup := tempDir()
		defer cleanup()

		experiment := parse(definition)
		p, err := Build(experiment, dir)
		So(err, ShouldBeNil)

		Convey("Scope queries should reflect nothing done", func() {
			first, ok := p.NextFIFO()
			So(ok, ShouldBeTrue)
			So(first.ID, ShouldEqual, 1)
			So(p.IsSubjectFirstAttempt(first), ShouldBeTrue)
			So(p.IsDeviceFirstRun(first), ShouldBeTrue)
			So(p.IsSubjectLastAttempt(first), ShouldBeFalse)
			So(p.IsDeviceLastRun(first), ShouldBeFalse)
			So(p.IsSubjectDone("pixel", "com.example.one", ""), ShouldBeFalse)
			So(p.IsDeviceDone("pixel"), ShouldBeFalse)
			So(p.IsExperimentDone(), ShouldBeFalse)
		})

		Convey("Committing unknown run should fail", func() {
			So(p.Commit(42), ShouldNotBeNil)
		})

		Convey("When first run is committed", func() {
			So(p.Commit(1), ShouldBeNil)

			Convey("It should be moved to done", func() {
				So(p.Pending(), ShouldHaveLength, 7)
				So(p.Done(), ShouldResemble, []Run{{ID: 1, Device: "pixel", Subject: "com.example.one", Attempt: 1}})
				So(p.Commit(1), ShouldNotBeNil)
			})

			Convey("Second attempt should be the last one of the subject", func() {
				second, _ := p.NextFIFO()
				So(second.ID, ShouldEqual, 2)
				So(p.IsSubjectFirstAttempt(second), ShouldBeFalse)
				So(p.IsDeviceFirstRun(second), ShouldBeFalse)
				So(p.IsSubjectLastAttempt(second), ShouldBeTrue)
				So(p.IsDeviceLastRun(second), ShouldBeFalse)
			})

			Convey("Reloaded ledger should show the run as done", func() {
				reloaded, err := Load(p.Path(), experiment)
				So(err, ShouldBeNil)
				So(reloaded.Done(), ShouldResemble, p.Done())
				So(reloaded.Pending(), ShouldResemble, p.Pending())
				So(reloaded.ExperimentID(), ShouldEqual, p.ExperimentID())
			})

			Convey("No temporary files should be left next to the ledger", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Name(), ShouldEqual, FileName)
			})
		})

		Convey("Committing all runs should finish the experiment exactly at the end", func() {
			for i := 0; i < 8; i++ {
				So(p.IsExperimentDone(), ShouldBeFalse)
				run, ok := p.Next()
				So(ok, ShouldBeTrue)
				So(run.ID, ShouldEqual, i+1)
				So(p.Commit(run.ID), ShouldBeNil)
			}
			So(p.IsExperimentDone(), ShouldBeTrue)
			So(p.IsDeviceDone("pixel"), ShouldBeTrue)
			So(p.IsSubjectDone("nexus", "com.example.two", ""), ShouldBeTrue)
			_, ok := p.Next()
			So(ok, ShouldBeFalse)
		})

		Convey("Commit should snapshot data directory", func() {
			So(os.MkdirAll(filepath.Join(p.DataDir(), "pixel"), 0755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(p.DataDir(), "pixel", "result.csv"), []byte("1"), 0644), ShouldBeNil)
			So(p.Commit(1), ShouldBeNil)
			So(p.OutputSnapshot(), ShouldResemble, audit.Snapshot{"pixel", "pixel/result.csv"})

			reloaded, err := Load(p.Path(), experiment)
			So(err, ShouldBeNil)
			So(reloaded.OutputSnapshot(), ShouldResemble, p.OutputSnapshot())
		})
	})
}

func TestNextRandom(t *testing.T) {
	Convey("Random selection should keep attempts of every subject in order", t, func() {
		dir, cleanup := tempDir()
		defer cleanup()

		p, err := Build(parse(definition+"randomization: true\n"), dir)
		So(err, ShouldBeNil)
		So(p.Randomization(), ShouldBeTrue)

		seen := map[int]bool{}
		lastAttempt := map[string]int{}
		for !p.IsExperimentDone() {
			run, ok := p.Next()
			So(ok, ShouldBeTrue)
			So(seen[run.ID], ShouldBeFalse)
			seen[run.ID] = true

			key := run.Device + "/" + run.Subject
			So(run.Attempt, ShouldEqual, lastAttempt[key]+1)
			lastAttempt[key] = run.Attempt

			So(p.Commit(run.ID), ShouldBeNil)
		}
		So(seen, ShouldHaveLength, 8)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given ledger with 3 of 8 runs committed", t, func() {
		dir, cleanup := tempDir()
		defer cleanup()

		configPath := filepath.Join(dir, "experiment.yaml")
		So(os.WriteFile(configPath, []byte(definition), 0644), ShouldBeNil)
		experiment, err := config.Load(configPath)
		So(err, ShouldBeNil)

		runDir := NewRunDir(filepath.Join(dir, "output"), time.Date(2017, 5, 1, 12, 30, 0, 0, time.UTC))
		So(filepath.Base(runDir), ShouldEqual, "2017.05.01_12.30.00")

		p, err := Build(experiment, runDir)
		So(err, ShouldBeNil)
		for id := 1; id <= 3; id++ {
			So(p.Commit(id), ShouldBeNil)
		}

		Convey("Reloading with identical configuration should succeed", func() {
			reloaded, err := Load(p.Path(), experiment)
			So(err, ShouldBeNil)
			So(reloaded.Pending(), ShouldHaveLength, 5)
			So(reloaded.Done(), ShouldHaveLength, 3)
			So(reloaded.ConfigPath(), ShouldEqual, configPath)
			So(reloaded.RunDir(), ShouldEqual, runDir)
		})

		Convey("Reloading with whitespace only changes should succeed", func() {
			So(os.WriteFile(configPath, []byte("\n\n"+definition+"  \n"), 0644), ShouldBeNil)
			reformatted, err := config.Load(configPath)
			So(err, ShouldBeNil)
			_, err = Load(p.Path(), reformatted)
			So(err, ShouldBeNil)
		})

		Convey("Reloading with one character edited configuration should return integrity error", func() {
			So(os.WriteFile(configPath, []byte(definition[:len(definition)-2]+"3\n"), 0644), ShouldBeNil)
			edited, err := config.Load(configPath)
			So(err, ShouldBeNil)

			_, err = Load(p.Path(), edited)
			So(err, ShouldNotBeNil)
			_, ok := err.(*IntegrityError)
			So(ok, ShouldBeTrue)
		})

		Convey("Reloading corrupted ledger should return integrity error", func() {
			So(os.WriteFile(p.Path(), []byte("pending: [\n"), 0644), ShouldBeNil)
			_, err := Load(p.Path(), experiment)
			_, ok := err.(*IntegrityError)
			So(ok, ShouldBeTrue)
		})

		Convey("Ledger listing a run twice should return integrity error", func() {
			doc := p.doc
			doc.Pending = append(doc.Pending, doc.Done[0])
			So(p.persist(doc), ShouldBeNil)

			_, err := Load(p.Path(), experiment)
			So(err, ShouldNotBeNil)
			_, ok := err.(*IntegrityError)
			So(ok, ShouldBeTrue)
		})

		Convey("Missing ledger should return error", func() {
			_, err := Load(filepath.Join(dir, "missing.yaml"), experiment)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRunString(t *testing.T) {
	Convey("Run should be logged with all its fields", t, func() {
		So(Run{ID: 3, Device: "pixel", Subject: "https://example.com", Browser: "chrome", Attempt: 2}.String(),
			ShouldEqual, "run 3 device=pixel subject=https://example.com browser=chrome attempt=2")
		So(Run{ID: 1, Device: "pixel", Subject: "com.example", Attempt: 1}.String(),
			ShouldEqual, "run 1 device=pixel subject=com.example attempt=1")
	})
}

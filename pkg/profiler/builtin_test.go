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

package profiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/intelsdi-x/devlab/pkg/device/mocks"
	"github.com/intelsdi-x/devlab/pkg/progress"
	. "github.com/smartystreets/goconvey/convey"
)

func fakeClock(times ...time.Time) func() time.Time {
	return func() time.Time {
		now := times[0]
		times = times[1:]
		return now
	}
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	So(err, ShouldBeNil)
	return string(data)
}

func TestRuntime(t *testing.T) {
	Convey("Given runtime profiler", t, func() {
		dir, err := os.MkdirTemp("", "runtime")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		ctx := context.Background()
		dev := new(mocks.Device)
		dev.On("Name").Return("pixel")

		plugin, err := NewRuntime(nil)
		So(err, ShouldBeNil)
		runtime := plugin.(*Runtime)

		base := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
		subjectDir := filepath.Join(dir, "data", "pixel", "app-0123456789", RuntimeName)
		So(os.MkdirAll(subjectDir, 0755), ShouldBeNil)

		profile := func(attempt int, duration time.Duration) {
			runtime.now = fakeClock(base, base.Add(duration))
			run := RunContext{Run: progress.Run{ID: attempt, Device: "pixel", Subject: "app", Attempt: attempt}, OutputDir: subjectDir}
			So(runtime.Load(ctx, dev), ShouldBeNil)
			So(runtime.StartProfiling(ctx, dev, run), ShouldBeNil)
			So(runtime.StopProfiling(ctx, dev), ShouldBeNil)
			So(runtime.CollectResults(ctx, dev, subjectDir), ShouldBeNil)
		}

		Convey("Every attempt should be stored in its own file", func() {
			profile(1, 1500*time.Millisecond)
			So(readFile(filepath.Join(subjectDir, "attempt_1.csv")), ShouldEqual, "run_id,attempt,duration_ms\n1,1,1500\n")
		})

		Convey("Collecting without profiling should fail", func() {
			So(runtime.CollectResults(ctx, dev, subjectDir), ShouldNotBeNil)
			So(runtime.StopProfiling(ctx, dev), ShouldNotBeNil)
		})

		Convey("When three attempts are aggregated", func() {
			profile(1, 100*time.Millisecond)
			profile(2, 200*time.Millisecond)
			profile(3, 600*time.Millisecond)
			So(runtime.AggregateSubject(ctx, subjectDir), ShouldBeNil)

			Convey("Subject summary should hold count, mean, deviation and median", func() {
				So(readFile(filepath.Join(subjectDir, runtimeSubjectFile)), ShouldEqual,
					"count,mean_ms,stddev_ms,median_ms\n3,300,216.025,200\n")
			})

			Convey("End aggregation should list subject summaries", func() {
				output := filepath.Join(dir, "aggregated", "runtime.csv")
				So(runtime.AggregateEnd(ctx, filepath.Join(dir, "data"), output), ShouldBeNil)
				So(readFile(output), ShouldEqual,
					"subject,count,mean_ms,stddev_ms,median_ms\npixel/app-0123456789,3,300,216.025,200\n")
			})
		})

		Convey("Aggregating subject without results should fail", func() {
			So(runtime.AggregateSubject(ctx, subjectDir), ShouldNotBeNil)
		})

		Convey("End aggregation of missing data should write just the header", func() {
			output := filepath.Join(dir, "runtime.csv")
			So(runtime.AggregateEnd(ctx, filepath.Join(dir, "missing"), output), ShouldBeNil)
			So(readFile(output), ShouldEqual, "subject,count,mean_ms,stddev_ms,median_ms\n")
		})
	})
}

func TestLogcat(t *testing.T) {
	Convey("Given logcat profiler filtering activity manager lines", t, func() {
		dir, err := os.MkdirTemp("", "logcat")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		ctx := context.Background()
		dev := new(mocks.Device)
		dev.On("Name").Return("pixel")
		dev.On("ClearLog", ctx).Return(nil)
		dev.On("DumpLog", ctx).Return("I/ActivityManager: Start\nD/Other: noise\nI/ActivityManager: Displayed\n", nil)

		plugin, err := NewLogcat(map[string]interface{}{"filter": "ActivityManager"})
		So(err, ShouldBeNil)

		outputDir := filepath.Join(dir, "data", "pixel", "app-0123456789", LogcatName)
		So(os.MkdirAll(outputDir, 0755), ShouldBeNil)
		run := RunContext{Run: progress.Run{ID: 4, Device: "pixel", Subject: "app", Attempt: 2}, OutputDir: outputDir}

		So(plugin.Load(ctx, dev), ShouldBeNil)
		So(plugin.StartProfiling(ctx, dev, run), ShouldBeNil)
		So(plugin.StopProfiling(ctx, dev), ShouldBeNil)
		So(plugin.CollectResults(ctx, dev, outputDir), ShouldBeNil)
		So(plugin.AggregateSubject(ctx, outputDir), ShouldBeNil)
		So(plugin.Unload(ctx, dev), ShouldBeNil)

		Convey("Device log should be cleared before the run and dumped filtered after it", func() {
			So(readFile(filepath.Join(outputDir, "attempt_2.log")), ShouldEqual,
				"I/ActivityManager: Start\nI/ActivityManager: Displayed\n")
			So(dev.AssertExpectations(t), ShouldBeTrue)
		})

		Convey("End aggregation should count lines of every attempt", func() {
			output := filepath.Join(dir, "logcat.csv")
			So(plugin.AggregateEnd(ctx, filepath.Join(dir, "data"), output), ShouldBeNil)
			So(readFile(output), ShouldEqual, "subject,file,lines\npixel/app-0123456789,attempt_2.log,2\n")
		})
	})

	Convey("Logcat filter must be a string", t, func() {
		_, err := NewLogcat(map[string]interface{}{"filter": 3})
		So(err, ShouldNotBeNil)
	})
}

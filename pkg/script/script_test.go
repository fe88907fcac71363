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

package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/intelsdi-x/devlab/pkg/device/mocks"
	"github.com/intelsdi-x/devlab/pkg/progress"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
)

func newDevice() *mocks.Device {
	dev := new(mocks.Device)
	dev.On("Name").Return("pixel")
	dev.On("ID").Return("SERIAL1")
	return dev
}

func writeScript(dir, name, body string, perm os.FileMode) string {
	path := filepath.Join(dir, name)
	So(os.WriteFile(path, []byte(body), perm), ShouldBeNil)
	return path
}

func blockingLogTail(dev *mocks.Device) {
	dev.On("CurrentLogTail", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, pattern string) string {
			<-ctx.Done()
			return ""
		},
		func(ctx context.Context, pattern string) error {
			return ctx.Err()
		})
}

// isRunning tells whether process exists and is not a zombie waiting to be reaped.
func isRunning(pid int) bool {
	for i := 0; i < 20; i++ {
		stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
		if err != nil {
			return false
		}
		fields := strings.Fields(string(stat[strings.LastIndex(string(stat), ")")+1:]))
		if len(fields) > 0 && fields[0] == "Z" {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return true
}

func TestLoad(t *testing.T) {
	Convey("When loading script files", t, func() {
		dir, err := os.MkdirTemp("", "script")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		Convey("Missing file should fail with LoadError", func() {
			_, err := Load(filepath.Join(dir, "missing.sh"))
			_, ok := err.(*LoadError)
			So(ok, ShouldBeTrue)
		})

		Convey("Directory should fail with LoadError", func() {
			_, err := Load(dir)
			_, ok := err.(*LoadError)
			So(ok, ShouldBeTrue)
		})

		Convey("Plain non executable file should fail with LoadError", func() {
			_, err := Load(writeScript(dir, "notes.txt", "text", 0644))
			_, ok := err.(*LoadError)
			So(ok, ShouldBeTrue)
		})

		Convey("Shell, python and executable scripts should load", func() {
			for _, name := range []string{"a.sh", "b.py"} {
				_, err := Load(writeScript(dir, name, "", 0644))
				So(err, ShouldBeNil)
			}
			_, err := Load(writeScript(dir, "run", "#!/bin/sh\n", 0755))
			So(err, ShouldBeNil)
		})

		Convey("Invocation should not be created for broken script", func() {
			_, err := NewInvocation(filepath.Join(dir, "missing.sh"), 0, "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestExecute(t *testing.T) {
	Convey("When executing scripts", t, func() {
		dir, err := os.MkdirTemp("", "script")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		dev := newDevice()
		args := Args{
			Hook:      config.BeforeRun,
			Run:       progress.Run{ID: 7, Device: "pixel", Subject: "com.example", Attempt: 2},
			OutputDir: dir,
		}
		ctx := context.Background()

		Convey("Completed script should return its trimmed output and see run environment", func() {
			path := writeScript(dir, "env.sh", `echo "$DEVICE_ID $DEVICE_NAME $SUBJECT $RUN_ID $ATTEMPT $HOOK $OUTPUT_DIR"`+"\n", 0644)
			invocation, err := NewInvocation(path, 0, "")
			So(err, ShouldBeNil)

			outcome, err := Execute(ctx, invocation, dev, args)
			So(err, ShouldBeNil)
			So(outcome, ShouldResemble, Outcome{Kind: Completed, Value: "SERIAL1 pixel com.example 7 2 before_run " + dir})
		})

		Convey("Script sleeping longer than its timeout should time out and leave nothing running", func() {
			pidFile := filepath.Join(dir, "pid")
			sentinel := filepath.Join(dir, "sentinel")
			path := writeScript(dir, "sleep.sh", "echo $$ > "+pidFile+"\nsleep 10\ntouch "+sentinel+"\n", 0644)
			invocation, err := NewInvocation(path, 100*time.Millisecond, "")
			So(err, ShouldBeNil)

			start := time.Now()
			outcome, err := Execute(ctx, invocation, dev, args)
			elapsed := time.Since(start)

			So(err, ShouldBeNil)
			So(outcome.Kind, ShouldEqual, TimedOut)
			So(elapsed, ShouldBeLessThan, 600*time.Millisecond)

			data, err := os.ReadFile(pidFile)
			So(err, ShouldBeNil)
			pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
			So(err, ShouldBeNil)
			So(isRunning(pid), ShouldBeFalse)

			time.Sleep(200 * time.Millisecond)
			_, err = os.Stat(sentinel)
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("Failing script should return script Error", func() {
			path := writeScript(dir, "fail.sh", "echo broken >&2\nexit 2\n", 0644)
			invocation, err := NewInvocation(path, time.Second, "")
			So(err, ShouldBeNil)

			_, err = Execute(ctx, invocation, dev, args)
			So(err, ShouldNotBeNil)
			scriptErr, ok := err.(*Error)
			So(ok, ShouldBeTrue)
			So(scriptErr.Path, ShouldEqual, path)
			So(err.Error(), ShouldContainSubstring, "broken")
		})

		Convey("Matching device log should stop the script", func() {
			dev.On("CurrentLogTail", mock.Anything, "Displayed .*").Return("I/ActivityManager: Displayed com.example", nil).
				After(50 * time.Millisecond)

			invocation := NewFuncInvocation("wait", 0, "Displayed .*", Func(
				func(ctx context.Context, dev device.Device, args Args) (string, error) {
					<-ctx.Done()
					return "", ctx.Err()
				}))

			outcome, err := Execute(ctx, invocation, dev, args)
			So(err, ShouldBeNil)
			So(outcome, ShouldResemble, Outcome{Kind: PatternMatched, Value: "I/ActivityManager: Displayed com.example"})
		})

		Convey("Script completing first should cancel the log watch", func() {
			blockingLogTail(dev)
			invocation := NewFuncInvocation("quick", time.Second, "never", Func(
				func(ctx context.Context, dev device.Device, args Args) (string, error) {
					return "done", nil
				}))

			outcome, err := Execute(ctx, invocation, dev, args)
			So(err, ShouldBeNil)
			So(outcome, ShouldResemble, Outcome{Kind: Completed, Value: "done"})
		})

		Convey("Failing log watch should not decide the outcome", func() {
			dev.On("CurrentLogTail", mock.Anything, mock.Anything).Return("", errors.New("device offline"))
			invocation := NewFuncInvocation("slow", 0, "pattern", Func(
				func(ctx context.Context, dev device.Device, args Args) (string, error) {
					time.Sleep(50 * time.Millisecond)
					return "finished", nil
				}))

			outcome, err := Execute(ctx, invocation, dev, args)
			So(err, ShouldBeNil)
			So(outcome, ShouldResemble, Outcome{Kind: Completed, Value: "finished"})
		})

		Convey("Timeout should win over log watch which never matches", func() {
			blockingLogTail(dev)
			invocation := NewFuncInvocation("stuck", 50*time.Millisecond, "never", Func(
				func(ctx context.Context, dev device.Device, args Args) (string, error) {
					<-ctx.Done()
					return "", ctx.Err()
				}))

			outcome, err := Execute(ctx, invocation, dev, args)
			So(err, ShouldBeNil)
			So(outcome.Kind, ShouldEqual, TimedOut)
		})

		Convey("Error of in-process script should be wrapped", func() {
			cause := errors.New("assertion failed")
			invocation := NewFuncInvocation("assert", 0, "", Func(
				func(ctx context.Context, dev device.Device, args Args) (string, error) {
					return "", cause
				}))

			_, err := Execute(ctx, invocation, dev, args)
			scriptErr, ok := err.(*Error)
			So(ok, ShouldBeTrue)
			So(scriptErr.Cause, ShouldEqual, cause)
		})

		Convey("Cancelled parent context should be reported as is", func() {
			ctx, cancel := context.WithCancel(ctx)
			invocation := NewFuncInvocation("cancelled", time.Second, "", Func(
				func(ctx context.Context, dev device.Device, args Args) (string, error) {
					cancel()
					<-ctx.Done()
					return "", ctx.Err()
				}))

			_, err := Execute(ctx, invocation, dev, args)
			So(err, ShouldEqual, context.Canceled)
		})
	})
}

func TestHooks(t *testing.T) {
	Convey("When scripts are attached to hooks", t, func() {
		dev := newDevice()
		ctx := context.Background()
		calls := []string{}

		record := func(name string, err error) Invocation {
			return NewFuncInvocation(name, 0, "", Func(
				func(ctx context.Context, dev device.Device, args Args) (string, error) {
					calls = append(calls, name+"@"+string(args.Hook))
					return "", err
				}))
		}

		hooks, err := NewHooks(nil)
		So(err, ShouldBeNil)
		hooks.Add(config.Interaction, record("tap", nil))
		hooks.Add(config.Interaction, record("scroll", nil))
		So(hooks.Len(config.Interaction), ShouldEqual, 2)
		So(hooks.Len(config.BeforeRun), ShouldEqual, 0)

		Convey("They should run in order", func() {
			So(hooks.Run(ctx, dev, Args{Hook: config.Interaction}), ShouldBeNil)
			So(calls, ShouldResemble, []string{"tap@interaction", "scroll@interaction"})
		})

		Convey("Hook without scripts should do nothing", func() {
			So(hooks.Run(ctx, dev, Args{Hook: config.AfterRun}), ShouldBeNil)
			So(calls, ShouldBeEmpty)
		})

		Convey("Zero value should accept scripts", func() {
			var empty Hooks
			So(empty.Len(config.BeforeRun), ShouldEqual, 0)
			So(empty.Run(ctx, dev, Args{Hook: config.BeforeRun}), ShouldBeNil)

			empty.Add(config.BeforeRun, record("prepare", nil))
			So(empty.Run(ctx, dev, Args{Hook: config.BeforeRun}), ShouldBeNil)
			So(calls, ShouldResemble, []string{"prepare@before_run"})
		})

		Convey("First failure should stop the hook", func() {
			hooks.Add(config.BeforeClose, record("fail", errors.New("boom")))
			hooks.Add(config.BeforeClose, record("never", nil))

			err := hooks.Run(ctx, dev, Args{Hook: config.BeforeClose})
			So(err, ShouldNotBeNil)
			So(calls, ShouldResemble, []string{"fail@before_close"})
		})
	})

	Convey("Loading hooks with missing script should fail", t, func() {
		_, err := NewHooks(map[config.Hook]config.ScriptList{
			config.BeforeRun: {{Path: "/nonexistent/prepare.sh"}},
		})
		_, ok := err.(*LoadError)
		So(ok, ShouldBeTrue)
	})
}

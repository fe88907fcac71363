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

package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/intelsdi-x/devlab/pkg/conf"
	"github.com/intelsdi-x/devlab/pkg/executor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// AdbPathFlag points to adb binary used to reach devices.
var AdbPathFlag = conf.NewStringFlag("adb", "Path to adb binary", "adb")

// Adb is a device reached through Android Debug Bridge.
type Adb struct {
	name     string
	id       string
	adbPath  string
	executor executor.Executor
}

// NewAdb returns device addressed by serial id, running adb through given executor.
func NewAdb(name, id string, executor executor.Executor) *Adb {
	return &Adb{
		name:     name,
		id:       id,
		adbPath:  AdbPathFlag.Value(),
		executor: executor,
	}
}

// Name implements Device interface.
func (a *Adb) Name() string {
	return a.name
}

// ID implements Device interface.
func (a *Adb) ID() string {
	return a.id
}

// Shell implements Device interface.
func (a *Adb) Shell(ctx context.Context, command string) (string, error) {
	output, err := a.adb(ctx, "shell", command)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(output, "\r\n"), nil
}

// Unplug implements Device interface.
func (a *Adb) Unplug(ctx context.Context) error {
	_, err := a.Shell(ctx, "dumpsys battery unplug")
	return err
}

// Plug implements Device interface.
func (a *Adb) Plug(ctx context.Context) error {
	_, err := a.Shell(ctx, "dumpsys battery reset")
	return err
}

// CurrentLogTail implements Device interface.
// Only lines logged after the call are considered. Buffer is read from the millisecond
// following its newest line, or from the start when it is empty.
func (a *Adb) CurrentLogTail(ctx context.Context, pattern string) (string, error) {
	newest, err := a.adb(ctx, "logcat", "-d", "-t", "1", "-v", "epoch")
	if err != nil {
		return "", err
	}
	args := []string{"logcat", "-m", "1", "-e", pattern}
	if since, ok := afterNewestLine(newest); ok {
		args = append(args, "-T", since)
	}
	output, err := a.adb(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// afterNewestLine returns epoch time just after the last line of logcat output in epoch format.
// Buffer headers ("--------- beginning of main") are skipped.
func afterNewestLine(output string) (string, bool) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			continue
		}
		if since, ok := nextMillisecond(fields[0]); ok {
			return since, true
		}
	}
	return "", false
}

// nextMillisecond parses "seconds.fraction" and adds one millisecond to it.
func nextMillisecond(timestamp string) (string, bool) {
	seconds, fraction, found := strings.Cut(timestamp, ".")
	if !found || fraction == "" {
		return "", false
	}
	sec, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil || sec < 0 {
		return "", false
	}
	fraction = (fraction + "00")[:3]
	millis, err := strconv.Atoi(fraction)
	if err != nil || millis < 0 {
		return "", false
	}
	millis++
	if millis == 1000 {
		sec++
		millis = 0
	}
	return fmt.Sprintf("%d.%03d", sec, millis), true
}

// Install implements Device interface.
func (a *Adb) Install(ctx context.Context, apk string) error {
	_, err := a.adb(ctx, "install", "-r", apk)
	return err
}

// Uninstall implements Device interface.
func (a *Adb) Uninstall(ctx context.Context, pkg string) error {
	_, err := a.adb(ctx, "uninstall", pkg)
	return err
}

// LaunchPackage implements Device interface.
func (a *Adb) LaunchPackage(ctx context.Context, pkg string) error {
	_, err := a.Shell(ctx, fmt.Sprintf("monkey -p %s -c android.intent.category.LAUNCHER 1", executor.Quote(pkg)))
	return err
}

// LaunchActivity implements Device interface.
func (a *Adb) LaunchActivity(ctx context.Context, pkg, activity, data string) error {
	command := fmt.Sprintf("am start -n %s -a android.intent.action.VIEW", executor.Quote(pkg+"/"+activity))
	if data != "" {
		command += " -d " + executor.Quote(data)
	}
	_, err := a.Shell(ctx, command)
	return err
}

// ForceStop implements Device interface.
func (a *Adb) ForceStop(ctx context.Context, pkg string) error {
	_, err := a.Shell(ctx, "am force-stop "+executor.Quote(pkg))
	return err
}

// ClearAppData implements Device interface.
func (a *Adb) ClearAppData(ctx context.Context, pkg string) error {
	_, err := a.Shell(ctx, "pm clear "+executor.Quote(pkg))
	return err
}

// Push implements Device interface.
func (a *Adb) Push(ctx context.Context, local, remote string) error {
	_, err := a.adb(ctx, "push", local, remote)
	return err
}

// Pull implements Device interface.
func (a *Adb) Pull(ctx context.Context, remote, local string) error {
	_, err := a.adb(ctx, "pull", remote, local)
	return err
}

// ClearLog implements Device interface.
func (a *Adb) ClearLog(ctx context.Context) error {
	_, err := a.adb(ctx, "logcat", "-c")
	return err
}

// DumpLog implements Device interface.
func (a *Adb) DumpLog(ctx context.Context) (string, error) {
	return a.adb(ctx, "logcat", "-d")
}

func (a *Adb) adb(ctx context.Context, args ...string) (string, error) {
	quoted := []string{executor.Quote(a.adbPath), "-s", executor.Quote(a.id)}
	for _, arg := range args {
		quoted = append(quoted, executor.Quote(arg))
	}
	command := strings.Join(quoted, " ")

	logrus.Debugf("Device %q: %s", a.name, command)
	output, err := executor.Output(ctx, a.executor, command)
	if err != nil {
		return "", errors.Wrapf(err, "adb %s on device %q", args[0], a.name)
	}
	return output, nil
}

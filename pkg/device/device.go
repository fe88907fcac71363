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

// Package device gives access to devices under test.
package device

import "context"

// Device is a single device under test. Only one component at a time may address it.
type Device interface {
	// Name is the name given in experiment definition.
	Name() string
	// ID is the serial used to address the device.
	ID() string

	// Shell runs command on the device and returns its output.
	Shell(ctx context.Context, command string) (string, error)
	// Unplug makes the device report running on battery.
	Unplug(ctx context.Context) error
	// Plug restores the real charging state.
	Plug(ctx context.Context) error
	// CurrentLogTail blocks until a new device log line matches pattern and returns it.
	CurrentLogTail(ctx context.Context, pattern string) (string, error)

	Install(ctx context.Context, apk string) error
	Uninstall(ctx context.Context, pkg string) error
	// LaunchPackage starts launcher activity of the package.
	LaunchPackage(ctx context.Context, pkg string) error
	// LaunchActivity starts given activity of the package viewing data URI.
	LaunchActivity(ctx context.Context, pkg, activity, data string) error
	ForceStop(ctx context.Context, pkg string) error
	ClearAppData(ctx context.Context, pkg string) error

	Push(ctx context.Context, local, remote string) error
	Pull(ctx context.Context, remote, local string) error
	ClearLog(ctx context.Context) error
	// DumpLog returns the whole device log buffer.
	DumpLog(ctx context.Context) (string, error)
}

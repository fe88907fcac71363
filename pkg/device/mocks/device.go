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

package mocks

import context "context"
import mock "github.com/stretchr/testify/mock"

// Device is an autogenerated mock type for the Device type
type Device struct {
	mock.Mock
}

// ClearAppData provides a mock function with given fields: ctx, pkg
func (_m *Device) ClearAppData(ctx context.Context, pkg string) error {
	ret := _m.Called(ctx, pkg)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, pkg)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ClearLog provides a mock function with given fields: ctx
func (_m *Device) ClearLog(ctx context.Context) error {
	ret := _m.Called(ctx)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// CurrentLogTail provides a mock function with given fields: ctx, pattern
func (_m *Device) CurrentLogTail(ctx context.Context, pattern string) (string, error) {
	ret := _m.Called(ctx, pattern)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string) string); ok {
		r0 = rf(ctx, pattern)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, pattern)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DumpLog provides a mock function with given fields: ctx
func (_m *Device) DumpLog(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context) string); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ForceStop provides a mock function with given fields: ctx, pkg
func (_m *Device) ForceStop(ctx context.Context, pkg string) error {
	ret := _m.Called(ctx, pkg)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, pkg)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ID provides a mock function with given fields: 
func (_m *Device) ID() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// Install provides a mock function with given fields: ctx, apk
func (_m *Device) Install(ctx context.Context, apk string) error {
	ret := _m.Called(ctx, apk)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, apk)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// LaunchActivity provides a mock function with given fields: ctx, pkg, activity, data
func (_m *Device) LaunchActivity(ctx context.Context, pkg string, activity string, data string) error {
	ret := _m.Called(ctx, pkg, activity, data)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) error); ok {
		r0 = rf(ctx, pkg, activity, data)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// LaunchPackage provides a mock function with given fields: ctx, pkg
func (_m *Device) LaunchPackage(ctx context.Context, pkg string) error {
	ret := _m.Called(ctx, pkg)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, pkg)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Name provides a mock function with given fields: 
func (_m *Device) Name() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// Plug provides a mock function with given fields: ctx
func (_m *Device) Plug(ctx context.Context) error {
	ret := _m.Called(ctx)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Pull provides a mock function with given fields: ctx, remote, local
func (_m *Device) Pull(ctx context.Context, remote string, local string) error {
	ret := _m.Called(ctx, remote, local)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, remote, local)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Push provides a mock function with given fields: ctx, local, remote
func (_m *Device) Push(ctx context.Context, local string, remote string) error {
	ret := _m.Called(ctx, local, remote)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, local, remote)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Shell provides a mock function with given fields: ctx, command
func (_m *Device) Shell(ctx context.Context, command string) (string, error) {
	ret := _m.Called(ctx, command)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string) string); ok {
		r0 = rf(ctx, command)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, command)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Uninstall provides a mock function with given fields: ctx, pkg
func (_m *Device) Uninstall(ctx context.Context, pkg string) error {
	ret := _m.Called(ctx, pkg)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, pkg)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Unplug provides a mock function with given fields: ctx
func (_m *Device) Unplug(ctx context.Context) error {
	ret := _m.Called(ctx)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

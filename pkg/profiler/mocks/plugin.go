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
import device "github.com/intelsdi-x/devlab/pkg/device"
import mock "github.com/stretchr/testify/mock"
import profiler "github.com/intelsdi-x/devlab/pkg/profiler"

// Plugin is an autogenerated mock type for the Plugin type
type Plugin struct {
	mock.Mock
}

// AggregateEnd provides a mock function with given fields: ctx, dataDir, outputFile
func (_m *Plugin) AggregateEnd(ctx context.Context, dataDir string, outputFile string) error {
	ret := _m.Called(ctx, dataDir, outputFile)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, dataDir, outputFile)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// AggregateSubject provides a mock function with given fields: ctx, subjectDir
func (_m *Plugin) AggregateSubject(ctx context.Context, subjectDir string) error {
	ret := _m.Called(ctx, subjectDir)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, subjectDir)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// CollectResults provides a mock function with given fields: ctx, dev, outputDir
func (_m *Plugin) CollectResults(ctx context.Context, dev device.Device, outputDir string) error {
	ret := _m.Called(ctx, dev, outputDir)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, device.Device, string) error); ok {
		r0 = rf(ctx, dev, outputDir)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Load provides a mock function with given fields: ctx, dev
func (_m *Plugin) Load(ctx context.Context, dev device.Device) error {
	ret := _m.Called(ctx, dev)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, device.Device) error); ok {
		r0 = rf(ctx, dev)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// StartProfiling provides a mock function with given fields: ctx, dev, run
func (_m *Plugin) StartProfiling(ctx context.Context, dev device.Device, run profiler.RunContext) error {
	ret := _m.Called(ctx, dev, run)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, device.Device, profiler.RunContext) error); ok {
		r0 = rf(ctx, dev, run)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// StopProfiling provides a mock function with given fields: ctx, dev
func (_m *Plugin) StopProfiling(ctx context.Context, dev device.Device) error {
	ret := _m.Called(ctx, dev)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, device.Device) error); ok {
		r0 = rf(ctx, dev)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Unload provides a mock function with given fields: ctx, dev
func (_m *Plugin) Unload(ctx context.Context, dev device.Device) error {
	ret := _m.Called(ctx, dev)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, device.Device) error); ok {
		r0 = rf(ctx, dev)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

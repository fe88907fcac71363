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
	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/executor"
	"github.com/pkg/errors"
)

// Manager keeps devices of an experiment in definition order.
type Manager struct {
	devices []Device
	byName  map[string]Device
}

// NewManager returns manager of given devices.
func NewManager(devices ...Device) *Manager {
	manager := &Manager{byName: map[string]Device{}}
	for _, device := range devices {
		manager.devices = append(manager.devices, device)
		manager.byName[device.Name()] = device
	}
	return manager
}

// NewAdbManager returns manager of adb devices for given definitions.
func NewAdbManager(definitions config.Devices, executor executor.Executor) *Manager {
	devices := []Device{}
	for _, definition := range definitions {
		devices = append(devices, NewAdb(definition.Name, definition.ID, executor))
	}
	return NewManager(devices...)
}

// Devices returns all devices in definition order.
func (m *Manager) Devices() []Device {
	return m.devices
}

// Get returns device by name.
func (m *Manager) Get(name string) (Device, error) {
	device, ok := m.byName[name]
	if !ok {
		return nil, errors.Errorf("unknown device %q", name)
	}
	return device, nil
}

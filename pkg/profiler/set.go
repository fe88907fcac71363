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

	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/intelsdi-x/devlab/pkg/utils/errcollection"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type namedPlugin struct {
	name   string
	plugin Plugin
}

type deviceState struct {
	loaded    map[string]bool
	profiling map[string]bool
}

// Set drives all plugins of an experiment in definition order and remembers
// what is loaded and profiling on every device.
type Set struct {
	plugins []namedPlugin
	devices map[string]*deviceState
}

// NewSet creates plugins from experiment definition.
func NewSet(registry *Registry, profilers config.Profilers) (*Set, error) {
	set := &Set{devices: map[string]*deviceState{}}
	for _, definition := range profilers {
		plugin, err := registry.New(definition.Name, definition.Params)
		if err != nil {
			return nil, err
		}
		set.Add(definition.Name, plugin)
	}
	return set, nil
}

// Add appends plugin to the set.
func (s *Set) Add(name string, plugin Plugin) {
	s.plugins = append(s.plugins, namedPlugin{name: name, plugin: plugin})
}

// Names returns plugin names in order.
func (s *Set) Names() []string {
	names := []string{}
	for _, p := range s.plugins {
		names = append(names, p.name)
	}
	return names
}

func (s *Set) state(dev device.Device) *deviceState {
	state, ok := s.devices[dev.Name()]
	if !ok {
		state = &deviceState{loaded: map[string]bool{}, profiling: map[string]bool{}}
		s.devices[dev.Name()] = state
	}
	return state
}

// IsLoaded tells whether any plugin is loaded on the device.
func (s *Set) IsLoaded(dev device.Device) bool {
	return len(s.state(dev).loaded) > 0
}

// Load loads every plugin on the device.
func (s *Set) Load(ctx context.Context, dev device.Device) error {
	state := s.state(dev)
	for _, p := range s.plugins {
		if state.loaded[p.name] {
			continue
		}
		if err := p.plugin.Load(ctx, dev); err != nil {
			return errors.Wrapf(err, "cannot load profiler %q on device %q", p.name, dev.Name())
		}
		state.loaded[p.name] = true
	}
	return nil
}

// StartProfiling starts every plugin. Each gets its own directory under subjectDir.
func (s *Set) StartProfiling(ctx context.Context, dev device.Device, run RunContext) error {
	state := s.state(dev)
	subjectDir := run.OutputDir
	for _, p := range s.plugins {
		pluginRun := run
		pluginRun.OutputDir = filepath.Join(subjectDir, p.name)
		if err := os.MkdirAll(pluginRun.OutputDir, 0755); err != nil {
			return errors.Wrapf(err, "cannot create output directory of profiler %q", p.name)
		}
		if err := p.plugin.StartProfiling(ctx, dev, pluginRun); err != nil {
			return errors.Wrapf(err, "cannot start profiler %q on device %q", p.name, dev.Name())
		}
		state.profiling[p.name] = true
	}
	return nil
}

// StopProfiling stops every plugin which is profiling on the device.
// All plugins are tried and all failures are returned.
func (s *Set) StopProfiling(ctx context.Context, dev device.Device) error {
	var errs errcollection.ErrorCollection
	state := s.state(dev)
	for _, p := range s.plugins {
		if !state.profiling[p.name] {
			continue
		}
		// Plugin is not retried once stop was attempted.
		delete(state.profiling, p.name)
		if err := p.plugin.StopProfiling(ctx, dev); err != nil {
			errs.Add(errors.Wrapf(err, "cannot stop profiler %q on device %q", p.name, dev.Name()))
		}
	}
	return errs.GetErrIfAny()
}

// CollectResults lets every plugin store results into its directory under subjectDir.
func (s *Set) CollectResults(ctx context.Context, dev device.Device, subjectDir string) error {
	for _, p := range s.plugins {
		outputDir := filepath.Join(subjectDir, p.name)
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return errors.Wrapf(err, "cannot create output directory of profiler %q", p.name)
		}
		if err := p.plugin.CollectResults(ctx, dev, outputDir); err != nil {
			return errors.Wrapf(err, "cannot collect results of profiler %q on device %q", p.name, dev.Name())
		}
	}
	return nil
}

// Unload unloads every plugin loaded on the device.
// All plugins are tried and all failures are returned.
func (s *Set) Unload(ctx context.Context, dev device.Device) error {
	var errs errcollection.ErrorCollection
	state := s.state(dev)
	for _, p := range s.plugins {
		if !state.loaded[p.name] {
			continue
		}
		delete(state.loaded, p.name)
		if err := p.plugin.Unload(ctx, dev); err != nil {
			errs.Add(errors.Wrapf(err, "cannot unload profiler %q on device %q", p.name, dev.Name()))
		}
	}
	return errs.GetErrIfAny()
}

// AggregateSubject aggregates every plugin's results of the subject.
func (s *Set) AggregateSubject(ctx context.Context, subjectDir string) error {
	for _, p := range s.plugins {
		if err := p.plugin.AggregateSubject(ctx, filepath.Join(subjectDir, p.name)); err != nil {
			return errors.Wrapf(err, "profiler %q cannot aggregate %q", p.name, subjectDir)
		}
	}
	return nil
}

// AggregateEnd lets every plugin aggregate the experiment into outputDir/<plugin>.csv.
// All plugins are tried and all failures are returned.
func (s *Set) AggregateEnd(ctx context.Context, dataDir, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.Wrapf(err, "cannot create %q", outputDir)
	}

	var errs errcollection.ErrorCollection
	for _, p := range s.plugins {
		outputFile := filepath.Join(outputDir, p.name+".csv")
		if err := p.plugin.AggregateEnd(ctx, dataDir, outputFile); err != nil {
			errs.Add(errors.Wrapf(err, "profiler %q cannot aggregate experiment", p.name))
			continue
		}
		logrus.Debugf("Profiler %q aggregated experiment into %q", p.name, outputFile)
	}
	return errs.GetErrIfAny()
}

// Cleanup stops and unloads whatever is still active on the devices.
// It tries everything and returns all failures.
func (s *Set) Cleanup(ctx context.Context, devices []device.Device) error {
	var errs errcollection.ErrorCollection
	for _, dev := range devices {
		errs.Add(s.StopProfiling(ctx, dev))
		errs.Add(s.Unload(ctx, dev))
	}
	return errs.GetErrIfAny()
}

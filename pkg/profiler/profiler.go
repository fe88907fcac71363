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

// Package profiler drives measurement plugins around every run.
package profiler

import (
	"context"
	"fmt"
	"sort"

	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/intelsdi-x/devlab/pkg/progress"
)

// RunContext is passed to plugin when profiling of a run starts.
type RunContext struct {
	Run progress.Run
	// OutputDir is the plugin's own directory of the run's subject.
	OutputDir string
}

// Plugin is a profiler. Every call receives directories explicitly.
type Plugin interface {
	Load(ctx context.Context, dev device.Device) error
	StartProfiling(ctx context.Context, dev device.Device, run RunContext) error
	StopProfiling(ctx context.Context, dev device.Device) error
	// CollectResults stores results of the last profiled run into outputDir.
	CollectResults(ctx context.Context, dev device.Device, outputDir string) error
	Unload(ctx context.Context, dev device.Device) error
	// AggregateSubject aggregates results of all attempts stored in subjectDir.
	AggregateSubject(ctx context.Context, subjectDir string) error
	// AggregateEnd aggregates results of the whole experiment found under dataDir into outputFile.
	AggregateEnd(ctx context.Context, dataDir, outputFile string) error
}

// Factory creates plugin from parameters given in experiment definition.
type Factory func(params map[string]interface{}) (Plugin, error)

// UnknownPluginError is returned for plugin names which were not registered.
type UnknownPluginError struct {
	Name  string
	Known []string
}

func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("unknown profiler %q, known profilers: %v", e.Name, e.Known)
}

// Registry maps plugin names to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry returns registry of built-in plugins.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(RuntimeName, NewRuntime)
	registry.Register(LogcatName, NewLogcat)
	return registry
}

// Register adds or replaces factory of named plugin.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// New creates named plugin.
func (r *Registry) New(name string, params map[string]interface{}) (Plugin, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, &UnknownPluginError{Name: name, Known: r.Names()}
	}
	return factory(params)
}

// Names returns sorted names of registered plugins.
func (r *Registry) Names() []string {
	names := []string{}
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

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

// Package config loads experiment definition files.
//
// The definition is YAML, and since JSON is a subset of YAML, JSON definitions load too.
// Everything which determines the set of runs is covered by Fingerprint, which is
// recorded in the progress file and checked when an experiment is resumed.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Type of the experiment decides how subjects are launched.
type Type string

const (
	// Native experiments install and launch application packages.
	Native Type = "native"
	// Web experiments open subject URLs in each of the configured browsers.
	Web Type = "web"
)

// Hook names a point of the run protocol where scripts can be attached.
type Hook string

// Script hooks in the order they are dispatched during a run.
const (
	BeforeExperiment Hook = "before_experiment"
	BeforeFirstRun   Hook = "before_first_run"
	BeforeRun        Hook = "before_run"
	AfterLaunch      Hook = "after_launch"
	Interaction      Hook = "interaction"
	BeforeClose      Hook = "before_close"
	AfterRun         Hook = "after_run"
	AfterLastRun     Hook = "after_last_run"
	AfterExperiment  Hook = "after_experiment"
)

// Hooks lists all hooks scripts can be attached to.
var Hooks = []Hook{
	BeforeExperiment, BeforeFirstRun, BeforeRun, AfterLaunch, Interaction,
	BeforeClose, AfterRun, AfterLastRun, AfterExperiment,
}

const defaultOutputRoot = "output"

// ConfigurationError is returned when experiment definition is malformed or empty.
type ConfigurationError struct {
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return "invalid experiment configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid experiment configuration %q: %s", e.Path, e.Reason)
}

// Experiment is the experiment definition.
type Experiment struct {
	Type           Type                `yaml:"type"`
	Devices        Devices             `yaml:"devices"`
	Paths          []Subject           `yaml:"paths"`
	Browsers       []string            `yaml:"browsers"`
	Replications   int                 `yaml:"replications"`
	Randomization  bool                `yaml:"randomization"`
	Duration       int                 `yaml:"duration"`
	TimeBetweenRun int                 `yaml:"time_between_run"`
	ClearCache     bool                `yaml:"clear_cache"`
	Profilers      Profilers           `yaml:"profilers"`
	Scripts        map[Hook]ScriptList `yaml:"scripts"`
	OutputRoot     string              `yaml:"output_root"`

	path        string
	fingerprint string
}

// Load reads, validates and fingerprints experiment definition from file.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read experiment configuration %q", path)
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %q", path)
	}

	experiment, err := Parse(data, filepath.Dir(absolute))
	if err != nil {
		if configErr, ok := err.(*ConfigurationError); ok {
			configErr.Path = path
		}
		return nil, err
	}
	experiment.path = absolute

	return experiment, nil
}

// Parse decodes experiment definition. Relative paths are resolved against baseDir.
func Parse(data []byte, baseDir string) (*Experiment, error) {
	experiment := &Experiment{}
	if err := yaml.Unmarshal(data, experiment); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}

	if experiment.Type == "" {
		experiment.Type = Native
	}
	if experiment.Replications == 0 {
		experiment.Replications = 1
	}
	if experiment.OutputRoot == "" {
		experiment.OutputRoot = defaultOutputRoot
	}

	if err := experiment.validate(); err != nil {
		return nil, err
	}

	experiment.resolvePaths(baseDir)
	experiment.fingerprint = Fingerprint(data)

	return experiment, nil
}

// Fingerprint returns content hash of the configuration with all whitespace removed,
// so reformatting the file does not invalidate a resume while any real edit does.
func Fingerprint(data []byte) string {
	stripped := strings.Join(strings.Fields(string(data)), "")
	sum := sha256.Sum256([]byte(stripped))
	return hex.EncodeToString(sum[:])
}

// Path returns absolute path of the loaded configuration file.
// Empty when experiment was parsed from memory.
func (e *Experiment) Path() string {
	return e.path
}

// Fingerprint returns fingerprint of the definition this experiment was parsed from.
func (e *Experiment) Fingerprint() string {
	return e.fingerprint
}

// DurationTime returns how long to keep the subject running after interaction.
func (e *Experiment) DurationTime() time.Duration {
	return time.Duration(e.Duration) * time.Millisecond
}

// TimeBetweenRuns returns pause between consecutive runs.
func (e *Experiment) TimeBetweenRuns() time.Duration {
	return time.Duration(e.TimeBetweenRun) * time.Millisecond
}

// BrowserNames returns browsers runs are multiplied by. Native experiments have none.
func (e *Experiment) BrowserNames() []string {
	if e.Type != Web {
		return nil
	}
	return e.Browsers
}

// Subject returns subject definition for given subject path.
func (e *Experiment) Subject(path string) (Subject, bool) {
	for _, subject := range e.Paths {
		if subject.Path == path {
			return subject, true
		}
	}
	return Subject{}, false
}

// Device returns device definition for given name.
func (e *Experiment) Device(name string) (Device, bool) {
	for _, device := range e.Devices {
		if device.Name == name {
			return device, true
		}
	}
	return Device{}, false
}

func (e *Experiment) validate() error {
	invalid := func(format string, args ...interface{}) error {
		return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
	}

	if e.Type != Native && e.Type != Web {
		return invalid("unknown experiment type %q", e.Type)
	}
	if len(e.Devices) == 0 {
		return invalid("no devices given")
	}
	if len(e.Paths) == 0 {
		return invalid("no subject paths given")
	}
	if e.Type == Web && len(e.Browsers) == 0 {
		return invalid("web experiment requires at least one browser")
	}
	if e.Replications < 1 {
		return invalid("replications must be positive, got %d", e.Replications)
	}
	if e.Duration < 0 || e.TimeBetweenRun < 0 {
		return invalid("duration and time_between_run cannot be negative")
	}

	seen := map[string]bool{}
	for _, device := range e.Devices {
		if device.Name == "" {
			return invalid("device without a name")
		}
		if seen[device.Name] {
			return invalid("device %q given twice", device.Name)
		}
		seen[device.Name] = true
	}

	seen = map[string]bool{}
	for _, subject := range e.Paths {
		if subject.Path == "" {
			return invalid("empty subject path")
		}
		if seen[subject.Path] {
			return invalid("subject %q given twice", subject.Path)
		}
		seen[subject.Path] = true
		if e.Type == Native && subject.IsApk() && subject.Package == "" {
			return invalid("apk subject %q needs its package name", subject.Path)
		}
	}

	seen = map[string]bool{}
	for _, browser := range e.Browsers {
		if seen[browser] {
			return invalid("browser %q given twice", browser)
		}
		seen[browser] = true
	}

	for hook, scripts := range e.Scripts {
		if !isKnownHook(hook) {
			return invalid("unknown script hook %q", hook)
		}
		for _, script := range scripts {
			if script.Path == "" {
				return invalid("script without path for hook %q", hook)
			}
			if script.Timeout < 0 {
				return invalid("negative timeout of script %q", script.Path)
			}
		}
	}

	return nil
}

func (e *Experiment) resolvePaths(baseDir string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(baseDir, path)
	}

	e.OutputRoot = resolve(e.OutputRoot)
	for hook, scripts := range e.Scripts {
		for i := range scripts {
			scripts[i].Path = resolve(scripts[i].Path)
		}
		e.Scripts[hook] = scripts
	}
	for i := range e.Paths {
		if e.Type == Native && e.Paths[i].IsApk() {
			e.Paths[i].Apk = resolve(e.Paths[i].Path)
		}
	}
}

func isKnownHook(hook Hook) bool {
	for _, known := range Hooks {
		if known == hook {
			return true
		}
	}
	return false
}

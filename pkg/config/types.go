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

package config

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Device identifies a device under test.
// ID is the serial used to address the device and defaults to the name.
type Device struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// Devices keep the order given in the definition.
type Devices []Device

// UnmarshalYAML accepts a list of names, a list of {name, id} entries or a name to id mapping.
func (d *Devices) UnmarshalYAML(node *yaml.Node) error {
	var devices Devices
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			device := Device{}
			switch item.Kind {
			case yaml.ScalarNode:
				device.Name = item.Value
			case yaml.MappingNode:
				if err := item.Decode(&device); err != nil {
					return err
				}
			default:
				return errors.Errorf("line %d: device must be a name or {name, id}", item.Line)
			}
			devices = append(devices, device.withDefaultID())
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			device := Device{Name: node.Content[i].Value}
			value := node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return errors.Errorf("line %d: device id must be a scalar", value.Line)
			}
			if value.Tag != "!!null" {
				device.ID = value.Value
			}
			devices = append(devices, device.withDefaultID())
		}
	default:
		return errors.Errorf("line %d: devices must be a list or a mapping", node.Line)
	}

	*d = devices
	return nil
}

func (d Device) withDefaultID() Device {
	if d.ID == "" {
		d.ID = d.Name
	}
	return d
}

// Subject is an application package, an apk file or an URL.
type Subject struct {
	// Path is the subject as written in the definition and identifies the subject in runs.
	Path string `yaml:"path"`
	// Package is the application package name. For installed packages it equals Path.
	Package string `yaml:"package"`
	// Apk is the resolved location of the apk file, empty when the package is preinstalled.
	Apk string `yaml:"-"`
}

// UnmarshalYAML accepts a scalar or a {path, package} mapping.
func (s *Subject) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = Subject{Path: node.Value}
		if !s.IsApk() {
			s.Package = node.Value
		}
		return nil
	case yaml.MappingNode:
		type plain Subject
		subject := plain{}
		if err := node.Decode(&subject); err != nil {
			return err
		}
		*s = Subject(subject)
		if s.Package == "" && !s.IsApk() {
			s.Package = s.Path
		}
		return nil
	}
	return errors.Errorf("line %d: path must be a string or {path, package}", node.Line)
}

// IsApk tells whether subject points to an apk file which has to be installed.
func (s Subject) IsApk() bool {
	return strings.HasSuffix(strings.ToLower(s.Path), ".apk")
}

// Script is a single script attached to a hook.
type Script struct {
	Path string `yaml:"path"`
	// Timeout in milliseconds. Zero means no timeout.
	Timeout int `yaml:"timeout"`
	// LogcatRegex stops the script when device log tail matches it.
	LogcatRegex string `yaml:"logcat_regex"`
}

// ScriptList is a list of scripts of one hook.
type ScriptList []Script

// UnmarshalYAML accepts a single path, a list of paths or a list of script entries.
func (l *ScriptList) UnmarshalYAML(node *yaml.Node) error {
	decode := func(item *yaml.Node) (Script, error) {
		switch item.Kind {
		case yaml.ScalarNode:
			return Script{Path: item.Value}, nil
		case yaml.MappingNode:
			script := Script{}
			err := item.Decode(&script)
			return script, err
		}
		return Script{}, errors.Errorf("line %d: script must be a path or {path, timeout, logcat_regex}", item.Line)
	}

	if node.Kind != yaml.SequenceNode {
		script, err := decode(node)
		if err != nil {
			return err
		}
		*l = ScriptList{script}
		return nil
	}

	scripts := ScriptList{}
	for _, item := range node.Content {
		script, err := decode(item)
		if err != nil {
			return err
		}
		scripts = append(scripts, script)
	}
	*l = scripts
	return nil
}

// Profiler is a profiler plugin name with its parameters.
type Profiler struct {
	Name   string
	Params map[string]interface{}
}

// Profilers keep the order given in the definition.
type Profilers []Profiler

// UnmarshalYAML decodes a mapping of plugin names to their parameters.
func (p *Profilers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Errorf("line %d: profilers must be a mapping", node.Line)
	}

	profilers := Profilers{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		profiler := Profiler{Name: node.Content[i].Value, Params: map[string]interface{}{}}
		value := node.Content[i+1]
		if value.Tag != "!!null" {
			if err := value.Decode(&profiler.Params); err != nil {
				return errors.Wrapf(err, "parameters of profiler %q", profiler.Name)
			}
		}
		profilers = append(profilers, profiler)
	}
	*p = profilers
	return nil
}

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

// Package script runs user supplied scripts attached to hooks of the run protocol.
package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/intelsdi-x/devlab/pkg/executor"
	"github.com/intelsdi-x/devlab/pkg/progress"
	"github.com/pkg/errors"
)

// LoadError is returned when script file cannot be used.
type LoadError struct {
	Path   string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load script %q: %s", e.Path, e.Reason)
}

// Error wraps failure raised by the script itself.
type Error struct {
	Path  string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %q failed: %v", e.Path, e.Cause)
}

// Args describe where in the experiment the script is invoked.
type Args struct {
	Hook      config.Hook
	Run       progress.Run
	OutputDir string
}

// Env returns Args and device as environment entries passed to script processes.
func (a Args) Env(dev device.Device) []string {
	return []string{
		"DEVICE_ID=" + dev.ID(),
		"DEVICE_NAME=" + dev.Name(),
		"SUBJECT=" + a.Run.Subject,
		"BROWSER=" + a.Run.Browser,
		"OUTPUT_DIR=" + a.OutputDir,
		"RUN_ID=" + strconv.Itoa(a.Run.ID),
		"ATTEMPT=" + strconv.Itoa(a.Run.Attempt),
		"HOOK=" + string(a.Hook),
	}
}

// Script is a loaded unit of user code with a single entry point.
type Script interface {
	// Run executes the script against device and returns its result.
	// Run must return promptly once ctx is done.
	Run(ctx context.Context, dev device.Device, args Args) (string, error)
}

// Func adapts in-process function to Script.
type Func func(ctx context.Context, dev device.Device, args Args) (string, error)

// Run implements Script interface.
func (f Func) Run(ctx context.Context, dev device.Device, args Args) (string, error) {
	return f(ctx, dev, args)
}

// fileScript runs a script file in its own process group.
type fileScript struct {
	path    string
	command string
}

// Load validates script file and returns Script running it.
// Python and shell scripts are run by their interpreters, other files must be executable.
func Load(path string) (Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: err.Error()}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Reason: "is a directory"}
	}

	var command string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		command = "python3 " + executor.Quote(path)
	case ".sh":
		command = "sh " + executor.Quote(path)
	default:
		if info.Mode()&0111 == 0 {
			return nil, &LoadError{Path: path, Reason: "neither executable nor a shell or python script"}
		}
		command = executor.Quote(path)
	}

	return &fileScript{path: path, command: command}, nil
}

// Run implements Script interface. Trimmed standard output is the result.
func (s *fileScript) Run(ctx context.Context, dev device.Device, args Args) (string, error) {
	local := executor.NewLocal().WithEnv(args.Env(dev)...)
	output, err := executor.Output(ctx, local, s.command)
	if err != nil {
		return "", errors.Wrapf(err, "running %q", s.path)
	}
	return strings.TrimSpace(output), nil
}

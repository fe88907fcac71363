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

package executor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ExitError is returned when command terminated with non zero exit code.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	message := strings.TrimSpace(e.Stderr)
	if message == "" {
		return fmt.Sprintf("command %q failed with exit code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("command %q failed with exit code %d: %s", e.Command, e.ExitCode, message)
}

// Run executes command and waits for its termination.
// When ctx is done first, the task is stopped and ctx error is returned together with the stopped handle.
func Run(ctx context.Context, executor Executor, command string) (TaskHandle, error) {
	handle, err := executor.Execute(command)
	if err != nil {
		return nil, err
	}

	select {
	case <-handle.Done():
		return handle, nil
	case <-ctx.Done():
		if err := handle.Stop(); err != nil {
			LogUnsuccessfulExecution(command, executor.Name(), handle)
			return handle, errors.Wrapf(err, "cannot stop %q after %v", command, ctx.Err())
		}
		return handle, ctx.Err()
	}
}

// Output executes command, waits for it and returns its standard output.
// Output files are removed afterwards. Non zero exit code results in ExitError.
func Output(ctx context.Context, executor Executor, command string) (string, error) {
	handle, err := Run(ctx, executor, command)
	if handle != nil {
		defer func() {
			handle.Clean()
			handle.EraseOutput()
		}()
	}
	if err != nil {
		return "", err
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		return "", err
	}

	if exitCode != 0 {
		LogUnsuccessfulExecution(command, executor.Name(), handle)
		stderr, _ := readAll(handle.StderrFile())
		return "", &ExitError{Command: command, ExitCode: exitCode, Stderr: stderr}
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		LogSuccessfulExecution(command, executor.Name(), handle)
	}
	return readAll(handle.StdoutFile())
}

func readAll(file io.ReadCloser, err error) (string, error) {
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", errors.Wrap(err, "cannot read command output")
	}
	return string(data), nil
}

// Quote makes s a single shell word.
func Quote(s string) string {
	return "'" + strings.Replace(s, "'", `'\''`, -1) + "'"
}

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
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Local provisioning is responsible for providing the execution environment
// on local machine via exec.Command.
// It runs command as current user.
type Local struct {
	env       []string
	dir       string
	outputDir string
}

// NewLocal returns a Local instance.
func NewLocal() Local {
	return Local{}
}

// WithEnv returns copy of the executor which adds given "KEY=value" entries to environment of started commands.
func (l Local) WithEnv(env ...string) Local {
	l.env = append(append([]string{}, l.env...), env...)
	return l
}

// WithDir returns copy of the executor which starts commands in given working directory.
func (l Local) WithDir(dir string) Local {
	l.dir = dir
	return l
}

// WithOutputDir returns copy of the executor which keeps stdout & stderr files under given directory.
// Temporary directory is used by default.
func (l Local) WithOutputDir(dir string) Local {
	l.outputDir = dir
	return l
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local Executor"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (l Local) Execute(command string) (TaskHandle, error) {
	stdoutFile, stderrFile, err := createExecutorOutputFiles(l.outputDir, command, "local")
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Starting %q", command)

	cmd := exec.Command("sh", "-c", command)
	// It is important to set additional Process Group ID for parent process and his children
	// to have ability to kill all the children processes.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile
	cmd.Dir = l.dir
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}

	if err := cmd.Start(); err != nil {
		stdoutFile.Close()
		stderrFile.Close()
		os.RemoveAll(filepath.Dir(stdoutFile.Name()))
		return nil, errors.Wrapf(err, "cannot start %q", command)
	}

	logrus.Debugf("Started %q with pid %d", command, cmd.Process.Pid)

	handle := &localTaskHandle{
		command:    command,
		pid:        cmd.Process.Pid,
		stdoutFile: stdoutFile,
		stderrFile: stderrFile,
		done:       make(chan struct{}),
	}

	// Wait for local task in goroutine.
	go func() {
		// Error of Wait() is reflected in the process state below.
		cmd.Wait()

		exitCode := -1
		if status, ok := cmd.ProcessState.Sys().(syscall.WaitStatus); ok {
			if status.Exited() {
				exitCode = status.ExitStatus()
			} else {
				// Show what signal caused the termination.
				exitCode = -int(status.Signal())
			}
		}

		logrus.Debugf("Ended %q with exit code %d (output in %q)", command, exitCode, filepath.Dir(stdoutFile.Name()))

		handle.complete(exitCode)
	}()

	return handle, nil
}

// localTaskHandle implements TaskHandle interface.
type localTaskHandle struct {
	command    string
	pid        int
	stdoutFile *os.File
	stderrFile *os.File

	mutex    sync.Mutex
	exitCode int
	done     chan struct{}
}

func (h *localTaskHandle) complete(exitCode int) {
	h.mutex.Lock()
	h.exitCode = exitCode
	h.mutex.Unlock()
	close(h.done)
}

func (h *localTaskHandle) isTerminated() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Stop kills the whole process group and waits for the task to terminate.
func (h *localTaskHandle) Stop() error {
	if h.isTerminated() {
		return nil
	}

	// The kill syscall interprets a negated PID N as the process group N belongs to.
	logrus.Debugf("Sending SIGKILL to process group %d of %q", h.pid, h.command)
	if err := syscall.Kill(-h.pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return errors.Wrapf(err, "cannot kill process group of %q", h.command)
	}

	<-h.done
	return nil
}

// Status returns a state of the task.
func (h *localTaskHandle) Status() TaskState {
	if h.isTerminated() {
		return TERMINATED
	}
	return RUNNING
}

// ExitCode returns exit code of terminated task.
// Negative values are signals which killed the task.
func (h *localTaskHandle) ExitCode() (int, error) {
	if !h.isTerminated() {
		return -1, errors.Errorf("task %q is still running", h.command)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.exitCode, nil
}

// StdoutFile returns a file handle for file to the task's stdout file.
func (h *localTaskHandle) StdoutFile() (*os.File, error) {
	return openOutputFile(h.stdoutFile.Name())
}

// StderrFile returns a file handle for file to the task's stderr file.
func (h *localTaskHandle) StderrFile() (*os.File, error) {
	return openOutputFile(h.stderrFile.Name())
}

// Wait blocks until process is terminated or timeout appeared.
// Zero timeout means no timeout.
// Returns true when process terminates before timeout, otherwise false.
func (h *localTaskHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-h.done
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
		return true
	case <-timer.C:
		return false
	}
}

// Done returns channel closed when task terminates.
func (h *localTaskHandle) Done() <-chan struct{} {
	return h.done
}

// Clean closes the task's stdout & stderr files.
func (h *localTaskHandle) Clean() error {
	if err := h.stdoutFile.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Wrapf(err, "cannot close stdout file of %q", h.command)
	}
	if err := h.stderrFile.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return errors.Wrapf(err, "cannot close stderr file of %q", h.command)
	}
	return nil
}

// EraseOutput removes task's stdout & stderr files together with their directory.
func (h *localTaskHandle) EraseOutput() error {
	outputDir := filepath.Dir(h.stdoutFile.Name())
	if err := os.RemoveAll(outputDir); err != nil {
		return errors.Wrapf(err, "cannot remove output of %q", h.command)
	}
	return nil
}

func openOutputFile(name string) (*os.File, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", name)
	}
	return file, nil
}

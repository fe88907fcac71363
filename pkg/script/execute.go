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

package script

import (
	"context"
	"fmt"
	"time"

	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Kind of outcome of an invocation.
type Kind int

const (
	// Completed means script returned on its own.
	Completed Kind = iota
	// TimedOut means script was stopped after its timeout.
	TimedOut
	// PatternMatched means script was stopped because device log matched the watch pattern.
	PatternMatched
)

func (k Kind) String() string {
	switch k {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	case PatternMatched:
		return "pattern matched"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Outcome of an invocation. Value is script result when completed or matched log line.
type Outcome struct {
	Kind  Kind
	Value string
}

// Invocation is a script with its timeout and log watch pattern.
type Invocation struct {
	Path string
	// Timeout of zero means no timeout.
	Timeout time.Duration
	// WatchPattern stops the script once device log matches it. Empty means no watch.
	WatchPattern string

	script Script
}

// NewInvocation loads script file. It fails with LoadError before any device is touched.
func NewInvocation(path string, timeout time.Duration, watchPattern string) (Invocation, error) {
	script, err := Load(path)
	if err != nil {
		return Invocation{}, err
	}
	return Invocation{Path: path, Timeout: timeout, WatchPattern: watchPattern, script: script}, nil
}

// NewFuncInvocation wraps in-process script.
func NewFuncInvocation(name string, timeout time.Duration, watchPattern string, script Script) Invocation {
	return Invocation{Path: name, Timeout: timeout, WatchPattern: watchPattern, script: script}
}

type result struct {
	kind  Kind
	value string
	err   error
}

// Execute races the script against its timeout and the log watch.
// The first of them decides the outcome and the rest is cancelled and joined before return,
// so nothing started here outlives the call.
// Failure of the script is returned as *Error. Context error is returned when ctx is done first.
func Execute(ctx context.Context, invocation Invocation, dev device.Device, args Args) (Outcome, error) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if invocation.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, invocation.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)
	// Buffered for every unit so none blocks after the outcome is decided.
	results := make(chan result, 2)

	group.Go(func() error {
		value, err := invocation.script.Run(groupCtx, dev, args)
		results <- result{kind: Completed, value: value, err: err}
		return nil
	})

	if invocation.WatchPattern != "" {
		group.Go(func() error {
			line, err := dev.CurrentLogTail(groupCtx, invocation.WatchPattern)
			results <- result{kind: PatternMatched, value: line, err: err}
			return nil
		})
	}

	decided, timedOut := waitForOutcome(runCtx, invocation, results)

	cancel()
	group.Wait()

	if ctx.Err() != nil {
		return Outcome{}, ctx.Err()
	}

	// Script killed by the deadline may report before the deadline itself is observed.
	if timedOut || (decided.err != nil && runCtx.Err() == context.DeadlineExceeded) {
		logrus.Debugf("Script %q timed out after %v", invocation.Path, invocation.Timeout)
		return Outcome{Kind: TimedOut}, nil
	}

	if decided.err != nil {
		return Outcome{}, &Error{Path: invocation.Path, Cause: decided.err}
	}

	logrus.Debugf("Script %q %s: %q", invocation.Path, decided.kind, decided.value)
	return Outcome{Kind: decided.kind, Value: decided.value}, nil
}

func waitForOutcome(runCtx context.Context, invocation Invocation, results <-chan result) (result, bool) {
	for {
		select {
		case r := <-results:
			if r.kind == PatternMatched && r.err != nil {
				if runCtx.Err() != nil {
					return result{}, true
				}
				logrus.Warnf("Watching device log for %q failed, script %q continues: %v", invocation.WatchPattern, invocation.Path, r.err)
				continue
			}
			return r, false
		case <-runCtx.Done():
			return result{}, true
		}
	}
}

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
	"time"

	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/sirupsen/logrus"
)

// Hooks holds invocations attached to every hook in definition order.
// Zero value has no invocations and is ready to use.
type Hooks struct {
	invocations map[config.Hook][]Invocation
}

// NewHooks loads all scripts of the experiment. Any script which cannot be loaded fails it.
func NewHooks(scripts map[config.Hook]config.ScriptList) (*Hooks, error) {
	hooks := &Hooks{invocations: map[config.Hook][]Invocation{}}
	for hook, list := range scripts {
		for _, definition := range list {
			invocation, err := NewInvocation(definition.Path, time.Duration(definition.Timeout)*time.Millisecond, definition.LogcatRegex)
			if err != nil {
				return nil, err
			}
			hooks.Add(hook, invocation)
		}
	}
	return hooks, nil
}

// Add attaches invocation to the hook after the ones already attached.
func (h *Hooks) Add(hook config.Hook, invocation Invocation) {
	if h.invocations == nil {
		h.invocations = map[config.Hook][]Invocation{}
	}
	h.invocations[hook] = append(h.invocations[hook], invocation)
}

// Len returns number of invocations attached to the hook.
func (h *Hooks) Len(hook config.Hook) int {
	return len(h.invocations[hook])
}

// Run executes all invocations of args.Hook one after another and stops at the first failure.
func (h *Hooks) Run(ctx context.Context, dev device.Device, args Args) error {
	for _, invocation := range h.invocations[args.Hook] {
		logrus.Debugf("Hook %s: running %q on device %q", args.Hook, invocation.Path, dev.Name())
		outcome, err := Execute(ctx, invocation, dev, args)
		if err != nil {
			return err
		}
		logrus.Infof("Hook %s: script %q %s", args.Hook, invocation.Path, outcome.Kind)
	}
	return nil
}

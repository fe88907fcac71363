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

package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

// watchSignals escalates on every signal received.
// First one asks to stop after the current run, second one cancels the current run
// and lets the experiment clean up, third one calls exit.
// It returns when signals is closed or after exit.
func watchSignals(signals <-chan os.Signal, stop func(), cancel context.CancelFunc, exit func()) {
	received := 0
	for sig := range signals {
		received++
		switch received {
		case 1:
			logrus.Warnf("Received %v, stopping after the current run. Send it again to abort the run", sig)
			stop()
		case 2:
			logrus.Warnf("Received %v, aborting the current run and cleaning up. Send it again to exit immediately", sig)
			cancel()
		default:
			logrus.Errorf("Received %v, exiting without cleanup", sig)
			exit()
			return
		}
	}
}

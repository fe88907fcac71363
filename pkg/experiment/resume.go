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

package experiment

import (
	"github.com/intelsdi-x/devlab/pkg/audit"
	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/progress"
	"github.com/sirupsen/logrus"
)

// Resume loads the ledger at path and verifies results on disk against it.
func Resume(path string, definition *config.Experiment, rollbackPartial bool) (*progress.Progress, error) {
	ledger, err := progress.Load(path, definition)
	if err != nil {
		return nil, err
	}
	if err := VerifyResume(ledger, rollbackPartial); err != nil {
		return nil, err
	}
	logrus.Infof("Resuming experiment %s: %d of %d runs done", ledger.ExperimentID(), len(ledger.Done()), ledger.Total())
	return ledger, nil
}

// VerifyResume checks that results on disk are exactly what the ledger saw at its last commit.
// When rollbackPartial is set, output left by an interrupted run is removed, but only if
// nothing committed is missing.
func VerifyResume(ledger *progress.Progress, rollbackPartial bool) error {
	dataDir := ledger.DataDir()
	actual, err := audit.Take(dataDir)
	if err != nil {
		return err
	}
	if actual.Equal(ledger.OutputSnapshot()) {
		logrus.Debugf("Results in %q match the ledger", dataDir)
		return nil
	}

	if !rollbackPartial {
		missing, unexpected := audit.Diff(ledger.OutputSnapshot(), actual)
		return &progress.IntegrityError{
			Path:       dataDir,
			Reason:     "results do not match the ledger",
			Missing:    missing,
			Unexpected: unexpected,
		}
	}
	return rollbackUncommitted(ledger)
}

// rollbackUncommitted removes paths under data directory which are not in the ledger snapshot.
// Nothing is removed when any committed path is missing.
func rollbackUncommitted(ledger *progress.Progress) error {
	dataDir := ledger.DataDir()
	expected := ledger.OutputSnapshot()

	actual, err := audit.Take(dataDir)
	if err != nil {
		return err
	}
	missing, unexpected := audit.Diff(expected, actual)
	if len(missing) > 0 {
		return &progress.IntegrityError{
			Path:       dataDir,
			Reason:     "committed results are missing",
			Missing:    missing,
			Unexpected: unexpected,
		}
	}
	if len(unexpected) == 0 {
		return nil
	}

	logrus.Warnf("Rolling back %d uncommitted paths in %q", len(unexpected), dataDir)
	if err := audit.Remove(dataDir, unexpected); err != nil {
		return err
	}

	ok, err := audit.Verify(dataDir, expected)
	if err != nil {
		return err
	}
	if !ok {
		actual, err = audit.Take(dataDir)
		if err != nil {
			return err
		}
		missing, unexpected = audit.Diff(expected, actual)
		return &progress.IntegrityError{
			Path:       dataDir,
			Reason:     "results still do not match the ledger after rollback",
			Missing:    missing,
			Unexpected: unexpected,
		}
	}
	return nil
}

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

// Package progress keeps the persistent ledger of experiment runs.
//
// Ledger is the single source of truth for what remains to be done. Every commit moves
// one run from pending to done and atomically rewrites the ledger file, so a run is
// repeated after a crash only if its commit did not return.
package progress

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// FileName of the ledger inside experiment run directory.
	FileName = "progress.yaml"
	// DataDir holds run results inside experiment run directory.
	DataDir = "data"
	// AggregatedDir holds end of experiment aggregations inside experiment run directory.
	AggregatedDir = "aggregated"

	documentVersion = 1
	runDirLayout    = "2006.01.02_15.04.05"
)

// Run is one scheduled execution of a subject on a device for one replication.
type Run struct {
	ID      int    `yaml:"id"`
	Device  string `yaml:"device"`
	Subject string `yaml:"subject"`
	Browser string `yaml:"browser,omitempty"`
	// Attempt is 1-based index of the replication of this device, subject and browser combination.
	Attempt int `yaml:"attempt"`
}

func (r Run) String() string {
	fields := []string{
		fmt.Sprintf("run %d", r.ID),
		"device=" + r.Device,
		"subject=" + r.Subject,
	}
	if r.Browser != "" {
		fields = append(fields, "browser="+r.Browser)
	}
	fields = append(fields, fmt.Sprintf("attempt=%d", r.Attempt))
	return strings.Join(fields, " ")
}

func (r Run) sameSubject(other Run) bool {
	return r.Device == other.Device && r.Subject == other.Subject && r.Browser == other.Browser
}

// NewRunDir returns directory for new experiment run under output root.
func NewRunDir(outputRoot string, now time.Time) string {
	return filepath.Join(outputRoot, now.Format(runDirLayout))
}

// IntegrityError means the ledger cannot be trusted against current configuration or results on disk.
// Resuming requires operator intervention.
type IntegrityError struct {
	Path       string
	Reason     string
	Missing    []string
	Unexpected []string
}

func (e *IntegrityError) Error() string {
	message := fmt.Sprintf("integrity of %q violated: %s", e.Path, e.Reason)
	if len(e.Missing) > 0 {
		message += fmt.Sprintf("; missing: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		message += fmt.Sprintf("; unexpected: %s", strings.Join(e.Unexpected, ", "))
	}
	return message
}

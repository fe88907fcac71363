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

package metadata

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/intelsdi-x/devlab/pkg/conf"
	"github.com/intelsdi-x/devlab/pkg/progress"
	"github.com/pkg/errors"
)

// RecordRuntimeEnv stores process configuration, environment, host and start time.
func RecordRuntimeEnv(metadata Metadata, experimentStart time.Time) error {
	// Store configuration.
	if err := recordFlags(metadata); err != nil {
		return err
	}

	// Store DEVLAB_ environment configuration.
	if err := recordEnv(metadata, conf.EnvPrefix+"_"); err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve hostname")
	}
	return metadata.RecordMap(map[string]string{"time": experimentStart.Format(time.RFC822Z), "host": hostname}, TypeEmpty)
}

// RecordExperiment stores what the ledger was built from.
func RecordExperiment(metadata Metadata, ledger *progress.Progress, fingerprint string) error {
	return metadata.RecordMap(map[string]string{
		"ledger":      ledger.Path(),
		"config_path": ledger.ConfigPath(),
		"fingerprint": fingerprint,
		"runs":        strconv.Itoa(ledger.Total()),
		"done":        strconv.Itoa(len(ledger.Done())),
	}, TypeExperiment)
}

// RecordRun stores committed run.
func RecordRun(metadata Metadata, run progress.Run, started, committed time.Time) error {
	return metadata.RecordMap(map[string]string{
		"run_id":    strconv.Itoa(run.ID),
		"device":    run.Device,
		"subject":   run.Subject,
		"browser":   run.Browser,
		"attempt":   strconv.Itoa(run.Attempt),
		"started":   started.Format(time.RFC3339Nano),
		"committed": committed.Format(time.RFC3339Nano),
	}, TypeRun)
}

// recordFlags saves whole flags based configuration in the metadata information.
func recordFlags(metadata Metadata) error {
	return metadata.RecordMap(conf.GetFlags(), TypeFlags)
}

// recordEnv adds all OS Environment variables that starts with prefix 'prefix'
// in the metadata information.
func recordEnv(metadata Metadata, prefix string) error {
	envMetadata := map[string]string{}
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, prefix) {
			fields := strings.SplitN(env, "=", 2)
			envMetadata[fields[0]] = fields[1]
		}
	}
	return metadata.RecordMap(envMetadata, TypeEnviron)
}

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

package progress

import (
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/intelsdi-x/devlab/pkg/audit"
	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/utils/fs"
	"github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type document struct {
	Version           int            `yaml:"version"`
	ExperimentID      string         `yaml:"experiment_id"`
	ConfigFingerprint string         `yaml:"config_fingerprint"`
	ConfigPath        string         `yaml:"config_path"`
	OutputRoot        string         `yaml:"output_root"`
	Randomization     bool           `yaml:"randomization"`
	Pending           []Run          `yaml:"pending"`
	Done              []Run          `yaml:"done"`
	OutputSnapshot    audit.Snapshot `yaml:"output_snapshot"`
}

// Progress is the ledger of pending and done runs of an experiment.
type Progress struct {
	path   string
	doc    document
	random *rand.Rand
}

// Build enumerates all runs of the experiment, device-major, then subject, browser
// and replication, and persists the ledger in runDir.
func Build(experiment *config.Experiment, runDir string) (*Progress, error) {
	if len(experiment.Devices) == 0 || len(experiment.Paths) == 0 {
		return nil, &config.ConfigurationError{Path: experiment.Path(), Reason: "no devices or subjects to run"}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate experiment id")
	}

	browsers := experiment.BrowserNames()
	if len(browsers) == 0 {
		browsers = []string{""}
	}

	pending := []Run{}
	for _, device := range experiment.Devices {
		for _, subject := range experiment.Paths {
			for _, browser := range browsers {
				for attempt := 1; attempt <= experiment.Replications; attempt++ {
					pending = append(pending, Run{
						ID:      len(pending) + 1,
						Device:  device.Name,
						Subject: subject.Path,
						Browser: browser,
						Attempt: attempt,
					})
				}
			}
		}
	}

	p := &Progress{
		path: filepath.Join(runDir, FileName),
		doc: document{
			Version:           documentVersion,
			ExperimentID:      id.String(),
			ConfigFingerprint: experiment.Fingerprint(),
			ConfigPath:        experiment.Path(),
			OutputRoot:        runDir,
			Randomization:     experiment.Randomization,
			Pending:           pending,
			Done:              []Run{},
		},
		random: newRandom(),
	}

	p.doc.OutputSnapshot, err = audit.Take(p.DataDir())
	if err != nil {
		return nil, err
	}

	if err := p.persist(p.doc); err != nil {
		return nil, err
	}

	logrus.Debugf("Built ledger %q with %d runs", p.path, len(pending))
	return p, nil
}

// Load reads ledger from path and checks it was built from the same experiment definition.
func Load(path string, experiment *config.Experiment) (*Progress, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read ledger %q", path)
	}

	doc := document{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &IntegrityError{Path: path, Reason: "malformed ledger: " + err.Error()}
	}

	if doc.Version != documentVersion {
		return nil, &IntegrityError{Path: path, Reason: "unsupported ledger version"}
	}

	if doc.ConfigFingerprint != experiment.Fingerprint() {
		return nil, &IntegrityError{Path: path, Reason: "experiment configuration changed since the ledger was built"}
	}

	if err := validate(doc); err != nil {
		return nil, &IntegrityError{Path: path, Reason: err.Error()}
	}

	if doc.Done == nil {
		doc.Done = []Run{}
	}
	if doc.OutputSnapshot == nil {
		doc.OutputSnapshot = audit.Snapshot{}
	}

	// Ledger follows its directory when results are moved.
	doc.OutputRoot = filepath.Dir(path)

	logrus.Debugf("Loaded ledger %q: %d pending, %d done", path, len(doc.Pending), len(doc.Done))
	return &Progress{path: path, doc: doc, random: newRandom()}, nil
}

func validate(doc document) error {
	ids := map[int]bool{}
	attempts := map[Run]bool{}
	for _, run := range append(append([]Run{}, doc.Done...), doc.Pending...) {
		if ids[run.ID] {
			return errors.Errorf("run %d listed twice", run.ID)
		}
		ids[run.ID] = true

		key := Run{Device: run.Device, Subject: run.Subject, Browser: run.Browser, Attempt: run.Attempt}
		if attempts[key] {
			return errors.Errorf("attempt %d of device %q subject %q listed twice", run.Attempt, run.Device, run.Subject)
		}
		attempts[key] = true
	}
	return nil
}

func newRandom() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Path returns location of the ledger file.
func (p *Progress) Path() string {
	return p.path
}

// RunDir returns experiment run directory holding the ledger.
func (p *Progress) RunDir() string {
	return p.doc.OutputRoot
}

// DataDir returns directory of run results which is audited on resume.
func (p *Progress) DataDir() string {
	return filepath.Join(p.doc.OutputRoot, DataDir)
}

// AggregatedDir returns directory of end of experiment aggregations.
func (p *Progress) AggregatedDir() string {
	return filepath.Join(p.doc.OutputRoot, AggregatedDir)
}

// ExperimentID returns unique id of the experiment assigned at build.
func (p *Progress) ExperimentID() string {
	return p.doc.ExperimentID
}

// ConfigPath returns path of experiment definition the ledger was built from.
func (p *Progress) ConfigPath() string {
	return p.doc.ConfigPath
}

// Randomization tells whether next run is selected randomly.
func (p *Progress) Randomization() bool {
	return p.doc.Randomization
}

// Pending returns copy of pending runs in order.
func (p *Progress) Pending() []Run {
	return append([]Run{}, p.doc.Pending...)
}

// Done returns copy of done runs in commit order.
func (p *Progress) Done() []Run {
	return append([]Run{}, p.doc.Done...)
}

// Total returns number of all runs of the experiment.
func (p *Progress) Total() int {
	return len(p.doc.Pending) + len(p.doc.Done)
}

// OutputSnapshot returns snapshot of data directory taken at the last commit.
func (p *Progress) OutputSnapshot() audit.Snapshot {
	return p.doc.OutputSnapshot
}

// Next returns next run according to the selection policy of the experiment.
// False is returned when nothing is pending.
func (p *Progress) Next() (Run, bool) {
	if p.doc.Randomization {
		return p.NextRandom()
	}
	return p.NextFIFO()
}

// NextFIFO returns pending run with the lowest id.
func (p *Progress) NextFIFO() (Run, bool) {
	if len(p.doc.Pending) == 0 {
		return Run{}, false
	}
	next := p.doc.Pending[0]
	for _, run := range p.doc.Pending[1:] {
		if run.ID < next.ID {
			next = run
		}
	}
	return next, true
}

// NextRandom returns uniformly selected pending run among the lowest pending attempts
// of every device, subject and browser combination, so attempts of one combination
// still complete in order.
func (p *Progress) NextRandom() (Run, bool) {
	candidates := []Run{}
	for _, run := range p.doc.Pending {
		replaced := false
		for i, candidate := range candidates {
			if candidate.sameSubject(run) {
				if run.Attempt < candidate.Attempt {
					candidates[i] = run
				}
				replaced = true
				break
			}
		}
		if !replaced {
			candidates = append(candidates, run)
		}
	}

	if len(candidates) == 0 {
		return Run{}, false
	}
	return candidates[p.random.Intn(len(candidates))], true
}

// Commit moves run from pending to done, snapshots data directory and persists the ledger.
// In-memory state changes only when the ledger was written.
func (p *Progress) Commit(id int) error {
	index := -1
	for i, run := range p.doc.Pending {
		if run.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return errors.Errorf("run %d is not pending", id)
	}

	snapshot, err := audit.Take(p.DataDir())
	if err != nil {
		return err
	}

	next := p.doc
	next.Pending = append(append([]Run{}, p.doc.Pending[:index]...), p.doc.Pending[index+1:]...)
	next.Done = append(append([]Run{}, p.doc.Done...), p.doc.Pending[index])
	next.OutputSnapshot = snapshot

	if err := p.persist(next); err != nil {
		return err
	}
	p.doc = next

	logrus.Infof("Committed %s", p.doc.Done[len(p.doc.Done)-1])
	return nil
}

func (p *Progress) persist(doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "cannot encode ledger")
	}
	if err := fs.WriteFileAtomic(p.path, data, 0644); err != nil {
		return errors.Wrapf(err, "cannot persist ledger %q", p.path)
	}
	return nil
}

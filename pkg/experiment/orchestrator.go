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
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/intelsdi-x/devlab/pkg/metadata"
	"github.com/intelsdi-x/devlab/pkg/profiler"
	"github.com/intelsdi-x/devlab/pkg/progress"
	"github.com/intelsdi-x/devlab/pkg/script"
	"github.com/intelsdi-x/devlab/pkg/utils/errcollection"
	"github.com/intelsdi-x/devlab/pkg/utils/errutil"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"
)

// ErrStopped is returned by Run when stop was requested before all runs were done.
var ErrStopped = errors.New("experiment stopped on request")

// Orchestrator executes pending runs of the ledger one by one.
type Orchestrator struct {
	experiment *config.Experiment
	ledger     *progress.Progress
	devices    *device.Manager
	profilers  *profiler.Set
	hooks      *script.Hooks
	metadata   metadata.Metadata
	bar        *pb.ProgressBar

	subjects map[string]Subject
	// Devices and subjects set up by this process. On resume setup is repeated.
	prepared  map[string]bool
	installed map[string]bool

	stopRequested int32
}

// New returns orchestrator of pending runs in ledger.
// Every pending run must name a known device, subject and browser.
func New(
	experiment *config.Experiment,
	ledger *progress.Progress,
	devices *device.Manager,
	profilers *profiler.Set,
	hooks *script.Hooks,
	metadataRecorder metadata.Metadata) (*Orchestrator, error) {

	if metadataRecorder == nil {
		metadataRecorder = metadata.Nop{}
	}
	if hooks == nil {
		hooks = &script.Hooks{}
	}

	o := &Orchestrator{
		experiment: experiment,
		ledger:     ledger,
		devices:    devices,
		profilers:  profilers,
		hooks:      hooks,
		metadata:   metadataRecorder,
		subjects:   map[string]Subject{},
		prepared:   map[string]bool{},
		installed:  map[string]bool{},
	}

	for _, run := range ledger.Pending() {
		if _, err := devices.Get(run.Device); err != nil {
			return nil, err
		}
		key := subjectKey(run)
		if _, ok := o.subjects[key]; ok {
			continue
		}
		subject, err := newSubject(experiment, run)
		if err != nil {
			return nil, err
		}
		o.subjects[key] = subject
	}

	return o, nil
}

func subjectKey(run progress.Run) string {
	return run.Subject + "\x00" + run.Browser
}

func newSubject(experiment *config.Experiment, run progress.Run) (Subject, error) {
	subject, ok := experiment.Subject(run.Subject)
	if !ok {
		return nil, &config.ConfigurationError{Path: experiment.Path(), Reason: "unknown subject " + run.Subject}
	}
	if experiment.Type != config.Web {
		return NewNativeSubject(subject), nil
	}
	browser, err := LookupBrowser(run.Browser)
	if err != nil {
		return nil, err
	}
	return NewWebSubject(subject.Path, browser), nil
}

// SetProgressBar makes orchestrator advance bar on every commit.
func (o *Orchestrator) SetProgressBar(bar *pb.ProgressBar) {
	o.bar = bar
}

// RequestStop makes Run return ErrStopped once the current run is committed.
// It is safe to call from another goroutine.
func (o *Orchestrator) RequestStop() {
	atomic.StoreInt32(&o.stopRequested, 1)
}

func (o *Orchestrator) isStopRequested() bool {
	return atomic.LoadInt32(&o.stopRequested) == 1
}

// Run executes pending runs until none is left, the first failure or a stop request.
// Regardless of the result devices are plugged back, profilers stopped and unloaded
// and the experiment is aggregated.
func (o *Orchestrator) Run(ctx context.Context) (err error) {
	logrus.Infof("Experiment %q: %d of %d runs done", o.ledger.ExperimentID(), len(o.ledger.Done()), o.ledger.Total())
	if err := metadata.RecordExperiment(o.metadata, o.ledger, o.experiment.Fingerprint()); err != nil {
		logrus.Warnf("Cannot record experiment metadata: %v", err)
	}

	defer func() {
		halted := err != nil && !errors.Is(err, ErrStopped)
		err = errutil.Join(err, o.finalize(context.WithoutCancel(ctx), halted), "cleanup of experiment failed")
	}()

	for !o.ledger.IsExperimentDone() {
		if o.isStopRequested() {
			logrus.Warnf("Stopping experiment with %d of %d runs done", len(o.ledger.Done()), o.ledger.Total())
			return ErrStopped
		}

		run, _ := o.ledger.Next()
		if err := o.execute(ctx, run); err != nil {
			return errors.Wrapf(err, "%s failed", run)
		}

		if !o.ledger.IsExperimentDone() && !o.isStopRequested() {
			if err := sleep(ctx, o.experiment.TimeBetweenRuns()); err != nil {
				return err
			}
		}
	}

	logrus.Infof("Experiment %q finished", o.ledger.ExperimentID())
	return nil
}

// finalize leaves every device plugged with no active profiler and aggregates the experiment.
// After a halt the output of the run which did not commit is removed, so the ledger can be resumed.
func (o *Orchestrator) finalize(ctx context.Context, halted bool) error {
	var errs errcollection.ErrorCollection
	devices := o.devices.Devices()
	for _, dev := range devices {
		if err := dev.Plug(ctx); err != nil {
			errs.Add(errors.Wrapf(err, "cannot plug device %q", dev.Name()))
		}
	}
	errs.Add(o.profilers.Cleanup(ctx, devices))
	if halted {
		errs.Add(rollbackUncommitted(o.ledger))
	}
	errs.Add(o.profilers.AggregateEnd(ctx, o.ledger.DataDir(), o.ledger.AggregatedDir()))
	return errs.GetErrIfAny()
}

func (o *Orchestrator) execute(ctx context.Context, run progress.Run) error {
	dev, err := o.devices.Get(run.Device)
	if err != nil {
		return err
	}
	subject := o.subjects[subjectKey(run)]
	subjectDir := SubjectDir(o.ledger.DataDir(), run)
	if err := os.MkdirAll(subjectDir, 0755); err != nil {
		return errors.Wrapf(err, "cannot create output directory of %s", run)
	}

	if o.bar != nil {
		o.bar.Prefix(run.String())
		o.bar.AlwaysUpdate = true
		o.bar.Update()
		o.bar.AlwaysUpdate = false
	}

	logrus.Infof("Starting %s", run)
	started := time.Now()

	hook := func(h config.Hook) error {
		logrus.Debugf("Hook %s of %s", h, run)
		return o.hooks.Run(ctx, dev, script.Args{Hook: h, Run: run, OutputDir: subjectDir})
	}

	if err := dev.Unplug(ctx); err != nil {
		return errors.Wrapf(err, "cannot prepare device %q", dev.Name())
	}

	if o.ledger.IsDeviceFirstRun(run) || !o.prepared[dev.Name()] {
		if err := o.profilers.Load(ctx, dev); err != nil {
			return err
		}
		if err := hook(config.BeforeExperiment); err != nil {
			return err
		}
		o.prepared[dev.Name()] = true
	}

	if o.ledger.IsSubjectFirstAttempt(run) || !o.installed[subjectDir] {
		if err := subject.Install(ctx, dev); err != nil {
			return err
		}
		if err := hook(config.BeforeFirstRun); err != nil {
			return err
		}
		o.installed[subjectDir] = true
	}

	if err := hook(config.BeforeRun); err != nil {
		return err
	}
	if o.experiment.ClearCache {
		if err := subject.ClearCache(ctx, dev); err != nil {
			return err
		}
	}
	if err := subject.Launch(ctx, dev); err != nil {
		return err
	}
	if err := hook(config.AfterLaunch); err != nil {
		return err
	}

	if err := o.profilers.StartProfiling(ctx, dev, profiler.RunContext{Run: run, OutputDir: subjectDir}); err != nil {
		return err
	}
	if err := hook(config.Interaction); err != nil {
		return err
	}
	if err := sleep(ctx, o.experiment.DurationTime()); err != nil {
		return err
	}
	if err := o.profilers.StopProfiling(ctx, dev); err != nil {
		return err
	}

	if err := hook(config.BeforeClose); err != nil {
		return err
	}
	if err := subject.Close(ctx, dev); err != nil {
		return err
	}

	if err := o.profilers.CollectResults(ctx, dev, subjectDir); err != nil {
		return err
	}
	if err := hook(config.AfterRun); err != nil {
		return err
	}

	if o.ledger.IsSubjectLastAttempt(run) {
		if err := hook(config.AfterLastRun); err != nil {
			return err
		}
		if err := subject.Uninstall(ctx, dev); err != nil {
			return err
		}
		delete(o.installed, subjectDir)
		if err := o.profilers.AggregateSubject(ctx, subjectDir); err != nil {
			return err
		}
	}

	if o.ledger.IsDeviceLastRun(run) {
		if err := o.profilers.Unload(ctx, dev); err != nil {
			return err
		}
		if err := hook(config.AfterExperiment); err != nil {
			return err
		}
		delete(o.prepared, dev.Name())
	}

	if err := o.ledger.Commit(run.ID); err != nil {
		return err
	}
	committed := time.Now()
	logrus.Debugf("Run %d took %s", run.ID, committed.Sub(started))

	if err := metadata.RecordRun(o.metadata, run, started, committed); err != nil {
		logrus.Warnf("Cannot record metadata of %s: %v", run, err)
	}
	if o.bar != nil {
		o.bar.Increment()
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

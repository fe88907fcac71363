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
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/intelsdi-x/devlab/pkg/conf"
	"github.com/intelsdi-x/devlab/pkg/config"
	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/intelsdi-x/devlab/pkg/executor"
	"github.com/intelsdi-x/devlab/pkg/experiment"
	"github.com/intelsdi-x/devlab/pkg/metadata"
	"github.com/intelsdi-x/devlab/pkg/profiler"
	"github.com/intelsdi-x/devlab/pkg/progress"
	"github.com/intelsdi-x/devlab/pkg/script"
	"github.com/intelsdi-x/devlab/pkg/utils/errutil"
	"github.com/intelsdi-x/devlab/pkg/visualization"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"
)

var (
	configFlag          = conf.NewStringFlag("config", "Experiment definition file (YAML or JSON).", "")
	progressFlag        = conf.NewStringFlag("progress", "Ledger (progress.yaml) of an interrupted experiment to resume.", "")
	statusFlag          = conf.NewBoolFlag("status", "Print status of the ledger given by --progress and exit.", false)
	statusRunsFlag      = conf.NewBoolFlag("status_runs", "List every run when printing status.", false)
	rollbackPartialFlag = conf.NewBoolFlag("rollback_partial", "On resume remove results left by an interrupted run.", false)
	appName             = os.Args[0]
)

func main() {
	conf.SetAppName("devlab")
	conf.SetHelp(`Runs experiments on android devices.
New experiment:   devlab --config=experiment.yaml
Resume:           devlab --config=experiment.yaml --progress=output/<timestamp>/progress.yaml
Status:           devlab --config=experiment.yaml --progress=output/<timestamp>/progress.yaml --status`)
	experimentStart := time.Now()
	experiment.Configure()

	if configFlag.Value() == "" {
		logrus.Errorf("Experiment definition is required, use --config")
		os.Exit(experiment.ExUsage)
	}

	definition, err := config.Load(configFlag.Value())
	errutil.CheckWithContext(err, "Cannot load experiment definition")

	if statusFlag.Value() {
		if progressFlag.Value() == "" {
			logrus.Errorf("Status requires ledger, use --progress")
			os.Exit(experiment.ExUsage)
		}
		ledger, err := progress.Load(progressFlag.Value(), definition)
		errutil.CheckWithContext(err, "Cannot load ledger")
		visualization.DrawSummary(os.Stdout, ledger)
		if statusRunsFlag.Value() {
			visualization.DrawRuns(os.Stdout, ledger)
		}
		os.Exit(0)
	}

	os.Exit(run(definition, experimentStart))
}

func openLedger(definition *config.Experiment) (*progress.Progress, error) {
	if progressFlag.Value() == "" {
		return progress.Build(definition, progress.NewRunDir(definition.OutputRoot, time.Now()))
	}

	return experiment.Resume(progressFlag.Value(), definition, rollbackPartialFlag.Value())
}

func run(definition *config.Experiment, experimentStart time.Time) int {
	ledger, err := openLedger(definition)
	errutil.CheckWithContext(err, "Cannot prepare ledger")

	logrus.Info("Starting Experiment ", conf.AppName(), " with id ", ledger.ExperimentID())
	fmt.Println(ledger.ExperimentID())

	hooks, err := script.NewHooks(definition.Scripts)
	errutil.CheckWithContext(err, "Cannot load scripts")

	profilers, err := profiler.NewSet(profiler.DefaultRegistry(), definition.Profilers)
	errutil.CheckWithContext(err, "Cannot create profilers")

	recorder, err := metadata.NewDefault(ledger.ExperimentID())
	errutil.CheckWithContext(err, "Cannot connect to metadata database")
	if closer, ok := recorder.(interface{ Close() }); ok {
		defer closer.Close()
	}
	if err := metadata.RecordRuntimeEnv(recorder, experimentStart); err != nil {
		logrus.Warnf("Cannot save runtime metadata: %v", err)
	}

	devices := device.NewAdbManager(definition.Devices, executor.NewLocal())
	orchestrator, err := experiment.New(definition, ledger, devices, profilers, hooks, recorder)
	errutil.CheckWithContext(err, "Cannot prepare experiment")

	// Progress bar is shown only when nothing else is logged.
	if logrus.GetLevel() == logrus.ErrorLevel {
		bar := pb.New(ledger.Total())
		bar.Set(len(ledger.Done()))
		bar.ShowCounters = false
		bar.ShowTimeLeft = true
		bar.Start()
		defer bar.Finish()
		orchestrator.SetProgressBar(bar)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 3)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	go watchSignals(signals, orchestrator.RequestStop, cancel, func() {
		printResumeHint(definition, ledger)
		os.Exit(experiment.ExHalted)
	})

	err = orchestrator.Run(ctx)
	if err != nil {
		if errors.Is(err, experiment.ErrStopped) {
			logrus.Warnf("Experiment stopped with %d of %d runs done", len(ledger.Done()), ledger.Total())
		} else {
			logrus.Debugf("%+v", err)
			logrus.Errorf("Experiment halted: %v", err)
		}
		printResumeHint(definition, ledger)
		return experiment.ExHalted
	}

	logrus.Infof("Results of experiment %s are in %q", ledger.ExperimentID(), ledger.RunDir())
	return 0
}

func printResumeHint(definition *config.Experiment, ledger *progress.Progress) {
	fmt.Fprintf(os.Stderr, "Ledger: %s\nResume with: %s --config=%s --progress=%s\n",
		ledger.Path(), appName, definition.Path(), ledger.Path())
}

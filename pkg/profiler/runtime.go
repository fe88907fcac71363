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

package profiler

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// RuntimeName is the name runtime profiler is registered with.
const RuntimeName = "runtime"

const runtimeSubjectFile = "aggregated.csv"

var (
	runtimeAttemptHeader = []string{"run_id", "attempt", "duration_ms"}
	runtimeSubjectHeader = []string{"count", "mean_ms", "stddev_ms", "median_ms"}
	runtimeEndHeader     = append([]string{"subject"}, runtimeSubjectHeader...)
)

type runtimeRecord struct {
	run      RunContext
	start    time.Time
	duration time.Duration
}

// Runtime measures wall-clock time of the profiled window of every run.
type Runtime struct {
	mutex   sync.Mutex
	records map[string]*runtimeRecord
	now     func() time.Time
}

// NewRuntime returns runtime profiler. It takes no parameters.
func NewRuntime(params map[string]interface{}) (Plugin, error) {
	return &Runtime{records: map[string]*runtimeRecord{}, now: time.Now}, nil
}

// Load implements Plugin interface.
func (r *Runtime) Load(ctx context.Context, dev device.Device) error {
	return nil
}

// StartProfiling implements Plugin interface.
func (r *Runtime) StartProfiling(ctx context.Context, dev device.Device, run RunContext) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.records[dev.Name()] = &runtimeRecord{run: run, start: r.now()}
	return nil
}

// StopProfiling implements Plugin interface.
func (r *Runtime) StopProfiling(ctx context.Context, dev device.Device) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	record, ok := r.records[dev.Name()]
	if !ok {
		return errors.Errorf("runtime profiler was not started on device %q", dev.Name())
	}
	record.duration = r.now().Sub(record.start)
	return nil
}

// CollectResults implements Plugin interface.
func (r *Runtime) CollectResults(ctx context.Context, dev device.Device, outputDir string) error {
	r.mutex.Lock()
	record, ok := r.records[dev.Name()]
	delete(r.records, dev.Name())
	r.mutex.Unlock()

	if !ok {
		return errors.Errorf("no run was profiled on device %q", dev.Name())
	}

	row := []string{
		strconv.Itoa(record.run.Run.ID),
		strconv.Itoa(record.run.Run.Attempt),
		formatMillis(record.duration.Seconds() * 1000),
	}
	return writeCSV(attemptFile(outputDir, record.run, "csv"), runtimeAttemptHeader, [][]string{row})
}

// Unload implements Plugin interface.
func (r *Runtime) Unload(ctx context.Context, dev device.Device) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.records, dev.Name())
	return nil
}

// AggregateSubject implements Plugin interface. It summarizes durations of all attempts.
func (r *Runtime) AggregateSubject(ctx context.Context, subjectDir string) error {
	files, err := filepath.Glob(filepath.Join(subjectDir, "attempt_*.csv"))
	if err != nil {
		return errors.Wrapf(err, "cannot list attempts in %q", subjectDir)
	}

	durations := stats.Float64Data{}
	for _, file := range files {
		rows, err := readCSV(file)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if len(row) != len(runtimeAttemptHeader) {
				return errors.Errorf("malformed row %v in %q", row, file)
			}
			duration, err := strconv.ParseFloat(row[2], 64)
			if err != nil {
				return errors.Wrapf(err, "malformed duration in %q", file)
			}
			durations = append(durations, duration)
		}
	}

	if len(durations) == 0 {
		return errors.Errorf("no runtime results in %q", subjectDir)
	}

	summary, err := summarize(durations)
	if err != nil {
		return err
	}
	return writeCSV(filepath.Join(subjectDir, runtimeSubjectFile), runtimeSubjectHeader, [][]string{summary})
}

// AggregateEnd implements Plugin interface. It lists subject summaries of the whole experiment.
func (r *Runtime) AggregateEnd(ctx context.Context, dataDir, outputFile string) error {
	files, err := findResults(dataDir, RuntimeName, func(name string) bool { return name == runtimeSubjectFile })
	if err != nil {
		return err
	}

	rows := [][]string{}
	for _, file := range files {
		records, err := readCSV(file)
		if err != nil {
			return err
		}
		for _, record := range records {
			rows = append(rows, append([]string{subjectOf(dataDir, file)}, record...))
		}
	}
	return writeCSV(outputFile, runtimeEndHeader, rows)
}

func summarize(data stats.Float64Data) ([]string, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot compute mean")
	}
	stddev, err := stats.StandardDeviation(data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot compute standard deviation")
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot compute median")
	}
	return []string{strconv.Itoa(len(data)), formatMillis(mean), formatMillis(stddev), formatMillis(median)}, nil
}

func formatMillis(value float64) string {
	formatted := strconv.FormatFloat(value, 'f', 3, 64)
	return strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
}

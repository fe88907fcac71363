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
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/intelsdi-x/devlab/pkg/device"
	"github.com/intelsdi-x/devlab/pkg/utils/fs"
	"github.com/pkg/errors"
)

// LogcatName is the name logcat profiler is registered with.
const LogcatName = "logcat"

var logcatEndHeader = []string{"subject", "file", "lines"}

// Logcat stores device log written during every run.
// Optional "filter" parameter is a regular expression lines have to match to be kept.
type Logcat struct {
	filter *regexp.Regexp

	mutex sync.Mutex
	runs  map[string]RunContext
}

// NewLogcat returns logcat profiler.
func NewLogcat(params map[string]interface{}) (Plugin, error) {
	logcat := &Logcat{runs: map[string]RunContext{}}
	if value, ok := params["filter"]; ok {
		pattern, ok := value.(string)
		if !ok {
			return nil, errors.Errorf("logcat filter must be a string, got %v", value)
		}
		filter, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid logcat filter %q", pattern)
		}
		logcat.filter = filter
	}
	return logcat, nil
}

// Load implements Plugin interface.
func (l *Logcat) Load(ctx context.Context, dev device.Device) error {
	return nil
}

// StartProfiling implements Plugin interface. Device log is cleared so only the run is captured.
func (l *Logcat) StartProfiling(ctx context.Context, dev device.Device, run RunContext) error {
	if err := dev.ClearLog(ctx); err != nil {
		return err
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.runs[dev.Name()] = run
	return nil
}

// StopProfiling implements Plugin interface.
func (l *Logcat) StopProfiling(ctx context.Context, dev device.Device) error {
	return nil
}

// CollectResults implements Plugin interface.
func (l *Logcat) CollectResults(ctx context.Context, dev device.Device, outputDir string) error {
	l.mutex.Lock()
	run, ok := l.runs[dev.Name()]
	delete(l.runs, dev.Name())
	l.mutex.Unlock()

	if !ok {
		return errors.Errorf("no run was profiled on device %q", dev.Name())
	}

	log, err := dev.DumpLog(ctx)
	if err != nil {
		return err
	}

	if l.filter != nil {
		kept := []string{}
		for _, line := range strings.Split(log, "\n") {
			if l.filter.MatchString(line) {
				kept = append(kept, line)
			}
		}
		log = strings.Join(kept, "\n")
		if len(kept) > 0 {
			log += "\n"
		}
	}

	return fs.WriteFileAtomic(attemptFile(outputDir, run, "log"), []byte(log), 0644)
}

// Unload implements Plugin interface.
func (l *Logcat) Unload(ctx context.Context, dev device.Device) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.runs, dev.Name())
	return nil
}

// AggregateSubject implements Plugin interface. Logs are kept per attempt.
func (l *Logcat) AggregateSubject(ctx context.Context, subjectDir string) error {
	return nil
}

// AggregateEnd implements Plugin interface. It counts lines logged in every attempt.
func (l *Logcat) AggregateEnd(ctx context.Context, dataDir, outputFile string) error {
	files, err := findResults(dataDir, LogcatName, func(name string) bool { return filepath.Ext(name) == ".log" })
	if err != nil {
		return err
	}

	rows := [][]string{}
	for _, file := range files {
		lines, err := countLines(file)
		if err != nil {
			return err
		}
		rows = append(rows, []string{subjectOf(dataDir, file), filepath.Base(file), strconv.Itoa(lines)})
	}
	return writeCSV(outputFile, logcatEndHeader, rows)
}

func countLines(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot open %q", path)
	}
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, errors.Wrapf(err, "cannot read %q", path)
	}
	return lines, nil
}

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
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/intelsdi-x/devlab/pkg/utils/fs"
	"github.com/pkg/errors"
)

func attemptFile(outputDir string, run RunContext, extension string) string {
	return filepath.Join(outputDir, fmt.Sprintf("attempt_%d.%s", run.Run.Attempt, extension))
}

func writeCSV(path string, header []string, rows [][]string) error {
	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "cannot encode %q", path)
	}
	return fs.WriteFileAtomic(path, buffer.Bytes(), 0644)
}

// readCSV returns records of the file without its header.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %q", path)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %q", path)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// findResults returns sorted paths of files accepted by match under plugin directories named plugin.
func findResults(dataDir, plugin string, match func(name string) bool) ([]string, error) {
	found := []string{}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return found, nil
	}

	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Base(filepath.Dir(path)) != plugin || !match(info.Name()) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot search %q", dataDir)
	}
	sort.Strings(found)
	return found, nil
}

// subjectOf returns path of subject directory of the plugin result file relative to dataDir.
func subjectOf(dataDir, path string) string {
	relative, err := filepath.Rel(dataDir, filepath.Dir(filepath.Dir(path)))
	if err != nil {
		return filepath.Dir(filepath.Dir(path))
	}
	return filepath.ToSlash(relative)
}

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

// Package visualization prints experiment ledger as tables.
package visualization

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/intelsdi-x/devlab/pkg/progress"
	"github.com/olekukonko/tablewriter"
)

const (
	stateDone    = "done"
	statePending = "pending"
)

type subjectKey struct {
	device  string
	subject string
	browser string
}

type subjectStatus struct {
	firstID int
	done    int
	total   int
}

// DrawSummary prints progress of every subject on every device.
func DrawSummary(w io.Writer, ledger *progress.Progress) {
	statuses := map[subjectKey]*subjectStatus{}
	count := func(run progress.Run, done bool) {
		key := subjectKey{run.Device, run.Subject, run.Browser}
		status, ok := statuses[key]
		if !ok {
			status = &subjectStatus{firstID: run.ID}
			statuses[key] = status
		}
		if run.ID < status.firstID {
			status.firstID = run.ID
		}
		status.total++
		if done {
			status.done++
		}
	}
	for _, run := range ledger.Done() {
		count(run, true)
	}
	for _, run := range ledger.Pending() {
		count(run, false)
	}

	keys := make([]subjectKey, 0, len(statuses))
	for key := range statuses {
		keys = append(keys, key)
	}
	// Order of the ledger build.
	sort.Slice(keys, func(i, j int) bool { return statuses[keys[i]].firstID < statuses[keys[j]].firstID })

	fmt.Fprintf(w, "Experiment id: %s\n", ledger.ExperimentID())
	fmt.Fprintf(w, "Ledger: %s\n", ledger.Path())
	fmt.Fprintf(w, "Done %d of %d runs\n", len(ledger.Done()), ledger.Total())

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Device", "Subject", "Browser", "Done", "Total"})
	for _, key := range keys {
		status := statuses[key]
		table.Append([]string{key.device, key.subject, key.browser, strconv.Itoa(status.done), strconv.Itoa(status.total)})
	}
	table.Render()
}

// DrawRuns prints every run of the ledger ordered by id.
func DrawRuns(w io.Writer, ledger *progress.Progress) {
	type row struct {
		run   progress.Run
		state string
	}

	rows := []row{}
	for _, run := range ledger.Done() {
		rows = append(rows, row{run, stateDone})
	}
	for _, run := range ledger.Pending() {
		rows = append(rows, row{run, statePending})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].run.ID < rows[j].run.ID })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run", "Device", "Subject", "Browser", "Attempt", "State"})
	for _, r := range rows {
		table.Append([]string{
			strconv.Itoa(r.run.ID),
			r.run.Device,
			r.run.Subject,
			r.run.Browser,
			strconv.Itoa(r.run.Attempt),
			r.state,
		})
	}
	table.Render()
}

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

// Package audit records which files an output tree holds and checks the tree did not change since.
package audit

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Snapshot is an ordered list of slash separated paths, relative to the root,
// of all files and directories under the root. The root itself is not included.
type Snapshot []string

// Take lists the tree under root in lexical order.
// Root which does not exist yields empty snapshot.
func Take(root string) (Snapshot, error) {
	snapshot := Snapshot{}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return snapshot, nil
	}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		snapshot = append(snapshot, filepath.ToSlash(relative))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot snapshot %q", root)
	}

	return snapshot, nil
}

// Equal tells whether both snapshots list the same paths in the same order.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Verify re-snapshots root and compares it with expected snapshot.
func Verify(root string, expected Snapshot) (bool, error) {
	actual, err := Take(root)
	if err != nil {
		return false, err
	}
	return actual.Equal(expected), nil
}

// Diff returns paths of expected missing from actual and paths of actual not present in expected.
func Diff(expected, actual Snapshot) (missing, unexpected []string) {
	inExpected := make(map[string]bool, len(expected))
	for _, path := range expected {
		inExpected[path] = true
	}
	inActual := make(map[string]bool, len(actual))
	for _, path := range actual {
		inActual[path] = true
		if !inExpected[path] {
			unexpected = append(unexpected, path)
		}
	}
	for _, path := range expected {
		if !inActual[path] {
			missing = append(missing, path)
		}
	}
	return missing, unexpected
}

// Remove deletes given snapshot paths under root. Paths nested in already removed
// directories are skipped.
func Remove(root string, paths []string) error {
	sorted := append([]string{}, paths...)
	sort.Strings(sorted)

	for _, path := range sorted {
		absolute := filepath.Join(root, filepath.FromSlash(path))
		if _, err := os.Lstat(absolute); os.IsNotExist(err) {
			continue
		}
		logrus.Warnf("Removing %q", absolute)
		if err := os.RemoveAll(absolute); err != nil {
			return errors.Wrapf(err, "cannot remove %q", absolute)
		}
	}
	return nil
}

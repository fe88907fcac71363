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
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/intelsdi-x/devlab/pkg/progress"
)

const maxReadableSlug = 48

var unsafeCharacters = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitize(name string) string {
	return strings.Trim(unsafeCharacters.ReplaceAllString(name, "_"), "_.-")
}

// Slug returns directory name of the subject.
// Readable part is followed by a hash of the whole subject, so subjects which
// differ only in stripped characters get distinct directories.
func Slug(subject string) string {
	readable := subject
	if i := strings.Index(readable, "://"); i >= 0 {
		readable = readable[i+len("://"):]
	}
	if strings.HasSuffix(strings.ToLower(readable), ".apk") {
		base := filepath.Base(readable)
		readable = strings.TrimSuffix(base, filepath.Ext(base))
	}
	readable = sanitize(readable)
	if len(readable) > maxReadableSlug {
		readable = strings.TrimRight(readable[:maxReadableSlug], "_.-")
	}
	if readable == "" {
		readable = "subject"
	}

	sum := sha256.Sum256([]byte(subject))
	return readable + "-" + hex.EncodeToString(sum[:])[:10]
}

// deviceDir keeps device names which are safe directory names.
// Other names get a slug, so devices differing only in unsafe characters stay apart.
func deviceDir(device string) string {
	if device != "" && sanitize(device) == device {
		return device
	}
	return Slug(device)
}

// SubjectDir returns output directory of run's device, subject and browser under dataDir.
// All attempts of the subject share it.
func SubjectDir(dataDir string, run progress.Run) string {
	dir := filepath.Join(dataDir, deviceDir(run.Device), Slug(run.Subject))
	if run.Browser != "" {
		dir = filepath.Join(dir, sanitize(run.Browser))
	}
	return dir
}

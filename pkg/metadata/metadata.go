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

// Package metadata records experiment metadata in an external database.
package metadata

import (
	"github.com/pkg/errors"
)

// Predefined kinds of metadata.
// Kind groups metadata by their common characteristics.
const (
	TypeEmpty      = ""
	TypeFlags      = "flags"
	TypeEnviron    = "environ"
	TypeExperiment = "experiment"
	TypeRun        = "run"
)

// Metadata interface defines methods which must be supported by DB backend.
type Metadata interface {
	// Record stores a key and value and associates with the experiment id.
	Record(key string, value string, kind string) error
	// RecordMap stores a key and value map and associates with the experiment id.
	RecordMap(metadata map[string]string, kind string) error
	// GetByKind retrieves single metadata kind from the database.
	// Returns error if no kind or too many groups found.
	GetByKind(kind string) (map[string]string, error)
	// Clear deletes all metadata entries associated with the current experiment id.
	Clear() error
}

// NewDefault initializes metadata backend selected by metadata_db flag.
func NewDefault(experimentID string) (Metadata, error) {
	switch DBFlag.Value() {
	case "none", "":
		return Nop{}, nil
	case "cassandra":
		cassandra, err := NewCassandra(experimentID, DefaultCassandraConfig())
		if err != nil {
			return nil, err
		}
		return cassandra, nil
	}
	return nil, errors.Errorf("unsupported database for metadata: %q", DBFlag.Value())
}

// Nop discards all metadata.
type Nop struct{}

// Record implements Metadata interface.
func (Nop) Record(key, value, kind string) error {
	return nil
}

// RecordMap implements Metadata interface.
func (Nop) RecordMap(metadata map[string]string, kind string) error {
	return nil
}

// GetByKind implements Metadata interface. Nothing is ever found.
func (Nop) GetByKind(kind string) (map[string]string, error) {
	return nil, errors.Errorf("metadata of kind %q not recorded", kind)
}

// Clear implements Metadata interface.
func (Nop) Clear() error {
	return nil
}

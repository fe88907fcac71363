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

package metadata

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	createKeyspaceStatement = "CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1}"
	// Kind is a clustering column, so records of one kind are read without filtering.
	createTableStatement = `CREATE TABLE IF NOT EXISTS metadata (
		experiment_id text,
		kind text,
		timeuuid timeuuid,
		time timestamp,
		metadata map<text,text>,
		PRIMARY KEY ((experiment_id), kind, timeuuid)
	) WITH CLUSTERING ORDER BY (kind ASC, timeuuid DESC)`
	insertStatement = `INSERT INTO metadata (experiment_id, kind, timeuuid, time, metadata) VALUES (?, ?, ?, ?, ?)`
	selectStatement = `SELECT metadata FROM metadata WHERE experiment_id = ? AND kind = ?`
	deleteStatement = `DELETE FROM metadata WHERE experiment_id = ?`
)

// CassandraConfig encodes the settings for connecting to the database.
type CassandraConfig struct {
	Address           string
	Port              int
	Username          string
	Password          string
	KeyspaceName      string
	CreateKeyspace    bool
	ConnectionTimeout time.Duration
	Timeout           time.Duration
	IgnorePeerAddr    bool
	InitialHostLookup bool
	SslEnabled        bool
	SslHostValidation bool
	SslCAPath         string
	SslCertPath       string
	SslKeyPath        string
}

// DefaultCassandraConfig applies the Cassandra settings from the command line flags and
// environment variables.
func DefaultCassandraConfig() CassandraConfig {
	return CassandraConfig{
		Address:           cassandraAddress.Value(),
		Port:              cassandraPort.Value(),
		Username:          cassandraUsername.Value(),
		Password:          cassandraPassword.Value(),
		KeyspaceName:      cassandraKeyspaceName.Value(),
		CreateKeyspace:    cassandraCreateKeyspace.Value(),
		ConnectionTimeout: cassandraConnectionTimeout.Value(),
		Timeout:           cassandraTimeout.Value(),
		IgnorePeerAddr:    cassandraIgnorePeerAddr.Value(),
		InitialHostLookup: cassandraInitialHostLookup.Value(),
		SslEnabled:        cassandraSslEnabled.Value(),
		SslHostValidation: cassandraSslHostValidation.Value(),
		SslCAPath:         cassandraSslCAPath.Value(),
		SslCertPath:       cassandraSslCertPath.Value(),
		SslKeyPath:        cassandraSslKeyPath.Value(),
	}
}

func (c CassandraConfig) sslOptions() *gocql.SslOptions {
	return &gocql.SslOptions{
		EnableHostVerification: c.SslHostValidation,
		CaPath:                 c.SslCAPath,
		CertPath:               c.SslCertPath,
		KeyPath:                c.SslKeyPath,
	}
}

// cluster returns cluster configuration without keyspace bound.
func (c CassandraConfig) cluster() *gocql.ClusterConfig {
	cluster := gocql.NewCluster(c.Address)
	cluster.Port = c.Port
	cluster.ProtoVersion = 4
	cluster.Consistency = gocql.LocalOne
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.ConnectTimeout = c.ConnectionTimeout
	cluster.Timeout = c.Timeout
	cluster.IgnorePeerAddr = c.IgnorePeerAddr
	cluster.DisableInitialHostLookup = !c.InitialHostLookup

	if c.Username != "" && c.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{Username: c.Username, Password: c.Password}
	}
	if c.SslEnabled {
		cluster.SslOpts = c.sslOptions()
	}
	return cluster
}

// Cassandra records metadata of a single experiment in the metadata table.
type Cassandra struct {
	experimentID string
	config       CassandraConfig
	session      *gocql.Session
}

// NewCassandra connects to the cluster, creating keyspace and table when needed.
func NewCassandra(experimentID string, config CassandraConfig) (*Cassandra, error) {
	cluster := config.cluster()

	if config.CreateKeyspace {
		if err := createKeyspace(cluster, config.KeyspaceName); err != nil {
			return nil, err
		}
	}

	cluster.Keyspace = config.KeyspaceName
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to Cassandra at %s:%d", config.Address, config.Port)
	}

	if err := session.Query(createTableStatement).Exec(); err != nil {
		session.Close()
		return nil, errors.Wrap(err, "cannot create metadata table")
	}

	logrus.Debugf("Recording metadata of experiment %q in keyspace %q at %s:%d", experimentID, config.KeyspaceName, config.Address, config.Port)
	return &Cassandra{experimentID: experimentID, config: config, session: session}, nil
}

func createKeyspace(cluster *gocql.ClusterConfig, keyspace string) error {
	session, err := cluster.CreateSession()
	if err != nil {
		return errors.Wrap(err, "cannot create session for creating keyspace")
	}
	defer session.Close()

	err = session.Query(fmt.Sprintf(createKeyspaceStatement, keyspace)).Exec()
	return errors.Wrapf(err, "cannot create keyspace %q", keyspace)
}

// Record stores a single key and value of given kind.
func (m *Cassandra) Record(key, value, kind string) error {
	return m.RecordMap(map[string]string{key: value}, kind)
}

// RecordMap stores metadata of given kind as a single row.
func (m *Cassandra) RecordMap(metadata map[string]string, kind string) error {
	err := m.session.Query(insertStatement, m.experimentID, kind, gocql.TimeUUID(), time.Now(), metadata).Exec()
	return errors.Wrapf(err, "cannot record metadata of kind %q", kind)
}

// GetByKind returns the only row of given kind.
// Kinds recorded many times (like runs) cannot be read this way.
func (m *Cassandra) GetByKind(kind string) (map[string]string, error) {
	var metadata map[string]string
	rows := []map[string]string{}

	iter := m.session.Query(selectStatement, m.experimentID, kind).Iter()
	for iter.Scan(&metadata) {
		rows = append(rows, metadata)
		metadata = nil
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrapf(err, "cannot query metadata of kind %q", kind)
	}

	if len(rows) != 1 {
		return nil, errors.Errorf("cannot retrieve metadata of kind %q for experiment %q: %d rows found", kind, m.experimentID, len(rows))
	}
	return rows[0], nil
}

// Clear deletes all metadata of the experiment.
func (m *Cassandra) Clear() error {
	err := m.session.Query(deleteStatement, m.experimentID).Exec()
	return errors.Wrapf(err, "cannot clear metadata of experiment %q", m.experimentID)
}

// Close ends the session.
func (m *Cassandra) Close() {
	m.session.Close()
}

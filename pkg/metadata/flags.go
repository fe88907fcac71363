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
	"time"

	"github.com/intelsdi-x/devlab/pkg/conf"
)

var (
	// DBFlag selects metadata backend.
	DBFlag = conf.NewStringFlag("metadata_db", "Metadata database: none or cassandra", "none")

	cassandraAddress           = conf.NewStringFlag("cassandra_addr", "Address of Cassandra DB endpoint", "127.0.0.1")
	cassandraPort              = conf.NewIntFlag("cassandra_port", "Port of Cassandra DB endpoint", 9042)
	cassandraUsername          = conf.NewStringFlag("cassandra_username", "The user name which will be supplied to Cassandra", "")
	cassandraPassword          = conf.NewStringFlag("cassandra_password", "The password which will be supplied to Cassandra", "")
	cassandraKeyspaceName      = conf.NewStringFlag("cassandra_keyspace_name", "Keyspace used to store metadata", "devlab")
	cassandraCreateKeyspace    = conf.NewBoolFlag("cassandra_create_keyspace", "Create keyspace when it does not exist", true)
	cassandraConnectionTimeout = conf.NewDurationFlag("cassandra_connection_timeout", "Initial connection timeout", 5*time.Second)
	cassandraTimeout           = conf.NewDurationFlag("cassandra_timeout", "Query timeout", 5*time.Second)
	cassandraIgnorePeerAddr    = conf.NewBoolFlag("cassandra_ignore_peer_addr", "Ignore peer addresses reported by the cluster", false)
	cassandraInitialHostLookup = conf.NewBoolFlag("cassandra_initial_host_lookup", "Look up cluster hosts before connecting", true)
	cassandraSslEnabled        = conf.NewBoolFlag("cassandra_ssl", "Connect to Cassandra over SSL", false)
	cassandraSslHostValidation = conf.NewBoolFlag("cassandra_ssl_host_validation", "Validate Cassandra host certificate", false)
	cassandraSslCAPath         = conf.NewStringFlag("cassandra_ssl_ca_path", "Path to CA certificate", "")
	cassandraSslCertPath       = conf.NewStringFlag("cassandra_ssl_cert_path", "Path to client certificate", "")
	cassandraSslKeyPath        = conf.NewStringFlag("cassandra_ssl_key_path", "Path to client key", "")
)

// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

// Environment variable names read at process startup (spec.md §6).
const (
	KafkaBrokerKey   = "KAFKA_BROKER"
	KafkaTopicKey    = "KAFKA_TOPIC"
	KafkaUsernameKey = "KAFKA_USERNAME"
	KafkaPasswordKey = "KAFKA_PASSWORD"
	KafkaSSLCAPemKey = "KAFKA_SSL_CA_PEM"

	AtlasRootSpaceKey = "ATLAS_ROOT_SPACE_ID"
	DatabaseURLKey    = "DATABASE_URL"

	SubstreamsEndpointKey = "SUBSTREAMS_ENDPOINT"
	SubstreamsAPITokenKey = "SUBSTREAMS_API_TOKEN"
	StartBlockKey         = "START_BLOCK"
	EndBlockKey           = "END_BLOCK"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "topology.canonical"
)

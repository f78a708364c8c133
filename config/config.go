// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/defi-wonderland/atlas/ids"
)

// Config is the fully-resolved process configuration, loaded once at
// startup from the environment (spec.md §6).
type Config struct {
	KafkaBroker   string
	KafkaTopic    string
	KafkaUsername string
	KafkaPassword string
	KafkaSSLCAPem string

	RootSpaceID ids.SpaceID
	DatabaseURL string

	SubstreamsEndpoint string
	SubstreamsAPIToken string
	StartBlock         uint64
	EndBlock           uint64 // 0 means unbounded
}

// KafkaSASLEnabled reports whether both Kafka credentials are set, per
// spec.md §6 ("if both set, enable SASL/SSL; else plaintext").
func (c Config) KafkaSASLEnabled() bool {
	return c.KafkaUsername != "" && c.KafkaPassword != ""
}

// Load resolves a Config from the process environment. ATLAS_ROOT_SPACE_ID
// and DATABASE_URL are required; everything else falls back to a default
// or the zero value.
func Load() (Config, error) {
	c := Config{
		KafkaBroker:        envOr(KafkaBrokerKey, DefaultKafkaBroker),
		KafkaTopic:         envOr(KafkaTopicKey, DefaultKafkaTopic),
		KafkaUsername:      os.Getenv(KafkaUsernameKey),
		KafkaPassword:      os.Getenv(KafkaPasswordKey),
		KafkaSSLCAPem:      os.Getenv(KafkaSSLCAPemKey),
		DatabaseURL:        os.Getenv(DatabaseURLKey),
		SubstreamsEndpoint: os.Getenv(SubstreamsEndpointKey),
		SubstreamsAPIToken: os.Getenv(SubstreamsAPITokenKey),
	}

	rootHex := os.Getenv(AtlasRootSpaceKey)
	if rootHex == "" {
		return Config{}, fmt.Errorf("config: %s is required", AtlasRootSpaceKey)
	}
	root, err := ids.SpaceIDFromHex(rootHex)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid %s: %w", AtlasRootSpaceKey, err)
	}
	c.RootSpaceID = root

	if c.DatabaseURL == "" {
		return Config{}, fmt.Errorf("config: %s is required", DatabaseURLKey)
	}

	if v := os.Getenv(StartBlockKey); v != "" {
		start, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s: %w", StartBlockKey, err)
		}
		c.StartBlock = start
	}
	if v := os.Getenv(EndBlockKey); v != "" {
		end, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s: %w", EndBlockKey, err)
		}
		c.EndBlock = end
	}

	return c, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

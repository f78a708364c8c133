// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bus

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"

	"github.com/defi-wonderland/atlas/config"
)

// KafkaSink emits CanonicalGraphUpdated payloads to a Kafka topic via
// franz-go, the franz-go-consumer idiom's producer counterpart (spec.md
// §6's bus contract).
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink dials broker and returns a Sink bound to topic. SASL/SSL
// is enabled iff both c.KafkaUsername and c.KafkaPassword are set
// (spec.md §6).
func NewKafkaSink(c config.Config) (*KafkaSink, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.KafkaBroker),
		kgo.DefaultProduceTopic(c.KafkaTopic),
	}

	if c.KafkaSASLEnabled() {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: c.KafkaUsername,
			Pass: c.KafkaPassword,
		}.AsMechanism()))

		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if c.KafkaSSLCAPem != "" {
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM([]byte(c.KafkaSSLCAPem)) {
				return nil, fmt.Errorf("bus: could not parse KAFKA_SSL_CA_PEM")
			}
			tlsConfig.RootCAs = pool
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("bus: could not create kafka client: %w", err)
	}

	return &KafkaSink{client: client, topic: c.KafkaTopic}, nil
}

// Emit produces one record to the configured topic, keyed by key, and
// blocks until the broker acknowledges it.
func (s *KafkaSink) Emit(ctx context.Context, key, payload []byte) error {
	record := &kgo.Record{
		Topic: s.topic,
		Key:   key,
		Value: payload,
	}

	result := s.client.ProduceSync(ctx, record)
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("bus: produce failed: %w", err)
	}
	return nil
}

// Close releases the client without flushing. Emit produces
// synchronously, so this sink leaves no record buffered.
func (s *KafkaSink) Close() error {
	s.client.Close()
	return nil
}

// Package kafka implements message channels of the token dealer over Kafka
// topics.
//
// Upward messages, downward messages and XCMP messages have their own topics.
// Downward and XCMP records are addressed to the parachain by the "target"
// header, XCMP records also carry the sender in the "source" header. Header
// values are decimal parachain identifiers.
package kafka

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Record headers.
const (
	HeaderSource = "source"
	HeaderTarget = "target"
)

// DefaultTimeout limits single produce call.
const DefaultTimeout = 5 * time.Second

// errMissingHeader is returned for records without the required header.
var errMissingHeader = errors.New("missing header")

// Topics names Kafka topics of the message channels.
type Topics struct {
	Upward   string `yaml:"upward" env:"UPWARD"`
	Downward string `yaml:"downward" env:"DOWNWARD"`
	XCMP     string `yaml:"xcmp" env:"XCMP"`
	// Settlement events. Events are not published if empty.
	Events string `yaml:"events" env:"EVENTS"`
}

// Config groups connection parameters.
type Config struct {
	Brokers []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
	// Consumer group of the inbound topics.
	Group   string        `yaml:"group" env:"GROUP"`
	Topics  Topics        `yaml:"topics" envPrefix:"TOPIC_"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Enabled checks whether Kafka transport is configured.
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// Validate checks that all required parameters are set.
func (c Config) Validate() error {
	switch {
	case len(c.Brokers) == 0:
		return errors.New("no brokers")
	case c.Group == "":
		return errors.New("empty consumer group")
	case c.Topics.Upward == "", c.Topics.Downward == "", c.Topics.XCMP == "":
		return errors.New("message topics must be set")
	}
	return nil
}

// NewClient returns Kafka client consuming inbound topics of cfg.
func NewClient(cfg Config) (*kgo.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Kafka config: %w", err)
	}

	return kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topics.Downward, cfg.Topics.XCMP),
		kgo.DisableAutoCommit(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
}

func paraHeader(key string, paraID uint32) kgo.RecordHeader {
	return kgo.RecordHeader{Key: key, Value: []byte(strconv.FormatUint(uint64(paraID), 10))}
}

// headerParaID returns parachain identifier from the header of the record.
func headerParaID(r *kgo.Record, key string) (uint32, error) {
	for i := range r.Headers {
		if r.Headers[i].Key != key {
			continue
		}

		id, err := strconv.ParseUint(string(r.Headers[i].Value), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid %s header: %w", key, err)
		}

		return uint32(id), nil
	}

	return 0, fmt.Errorf("%w %s", errMissingHeader, key)
}

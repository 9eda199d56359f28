// Package config provides configuration of the token dealer node.
//
// Configuration is read from the YAML file and overridden by the environment
// variables prefixed with TOKENDEALER_, e.g. TOKENDEALER_PARA_ID or
// TOKENDEALER_KAFKA_BROKERS. Amounts are decimal or 0x-prefixed hexadecimal
// strings, accounts are base58 strings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/outbox"
	"github.com/nspcc-dev/tokendealer/transport/kafka"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is a prefix of the environment variables.
const EnvPrefix = "TOKENDEALER_"

// Config is a configuration of the token dealer node.
type Config struct {
	// Identifier of the local parachain.
	ParaID uint32 `yaml:"para_id" env:"PARA_ID"`

	Logger  Logger       `yaml:"logger" envPrefix:"LOGGER_"`
	Ledger  Ledger       `yaml:"ledger" envPrefix:"LEDGER_"`
	Layouts Layouts      `yaml:"layouts" envPrefix:"LAYOUT_"`
	Upward  Upward       `yaml:"upward" envPrefix:"UPWARD_"`
	Kafka   kafka.Config `yaml:"kafka" envPrefix:"KAFKA_"`
	Outbox  Outbox       `yaml:"outbox" envPrefix:"OUTBOX_"`
	Metrics Metrics      `yaml:"metrics" envPrefix:"METRICS_"`
}

// Logger configures logging.
type Logger struct {
	// One of zap levels.
	Level string `yaml:"level" env:"LEVEL"`
}

// Ledger configures the local ledger.
type Ledger struct {
	DB                 dbconfig.DBConfiguration `yaml:"db"`
	ExistentialDeposit uint256.Int              `yaml:"existential_deposit" env:"EXISTENTIAL_DEPOSIT"`
	// Applied to the empty ledger only.
	Genesis Genesis `yaml:"genesis"`
}

// Layouts configures binary layouts of the domains.
type Layouts struct {
	Local     codec.Layout `yaml:"local" envPrefix:"LOCAL_"`
	Relay     codec.Layout `yaml:"relay" envPrefix:"RELAY_"`
	Parachain codec.Layout `yaml:"parachain" envPrefix:"PARACHAIN_"`
}

// Upward configures transfer calls sent to the relay chain.
type Upward struct {
	PalletIndex uint8 `yaml:"pallet_index" env:"PALLET_INDEX"`
	CallIndex   uint8 `yaml:"call_index" env:"CALL_INDEX"`
}

// Outbox configures retries of failed submissions.
type Outbox struct {
	// Failed submissions are rolled back if disabled.
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

// Metrics configures Prometheus endpoint.
type Metrics struct {
	// Listen address, disabled if empty.
	Address string `yaml:"address" env:"ADDRESS"`
}

// Default returns configuration with default values.
func Default() Config {
	relay := codec.NewBalancesTransfer(codec.DefaultLayout())

	return Config{
		Logger: Logger{Level: "info"},
		Ledger: Ledger{
			DB: dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB},
		},
		Layouts: Layouts{
			Local:     codec.DefaultLayout(),
			Relay:     codec.DefaultLayout(),
			Parachain: codec.DefaultLayout(),
		},
		Upward: Upward{
			PalletIndex: relay.PalletIndex,
			CallIndex:   relay.CallIndex,
		},
		Kafka: kafka.Config{
			Timeout: kafka.DefaultTimeout,
		},
		Outbox: Outbox{
			Interval: outbox.DefaultRetryInterval,
		},
	}
}

// Load reads configuration from the YAML file at path and the environment.
// Only the environment is used if path is empty.
func Load(path string) (Config, error) {
	var data []byte

	if path != "" {
		var err error

		data, err = os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return Parse(data, os.Environ())
}

// Parse decodes YAML data over the default configuration, applies environment
// variables in KEY=value form and validates the result.
func Parse(data []byte, environ []string) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode YAML: %w", err)
	}

	err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	})
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks consistency of the configuration.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	for name, l := range map[string]codec.Layout{
		"local":     c.Layouts.Local,
		"relay":     c.Layouts.Relay,
		"parachain": c.Layouts.Parachain,
	} {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("%s layout: %w", name, err)
		}
	}

	if err := codec.FitAmount(&c.Ledger.ExistentialDeposit, c.Layouts.Local.AmountWidth); err != nil {
		return fmt.Errorf("existential deposit: %w", err)
	}

	if err := c.Ledger.Genesis.validate(c.Layouts.Local); err != nil {
		return fmt.Errorf("genesis: %w", err)
	}

	if c.Kafka.Enabled() {
		if err := c.Kafka.Validate(); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}

	if c.Outbox.Enabled && c.Outbox.Interval <= 0 {
		return errors.New("outbox: non-positive retry interval")
	}

	return nil
}

// ZapLevel returns parsed logger level, info for invalid ones.
func (c Logger) ZapLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

package config

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/nspcc-dev/tokendealer/ledger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

var (
	alice = account.ID(append([]byte("alice"), make([]byte, 27)...))
	bob   = account.ID(append([]byte("bob"), make([]byte, 29)...))
)

func TestParseDefault(t *testing.T) {
	cfg, err := Parse(nil, nil)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, zapcore.InfoLevel, cfg.Logger.ZapLevel())
	require.False(t, cfg.Kafka.Enabled())
}

func TestParse(t *testing.T) {
	data := []byte(`
para_id: 100
logger:
  level: debug
ledger:
  db:
    Type: boltdb
    BoltDBOptions:
      FilePath: /var/lib/tokendealer/ledger.bolt
  existential_deposit: 100
  genesis:
    balances:
      - account: ` + alice.String() + `
        amount: "0xffffffffffffffffffffffffffffffff"
    assets:
      - issuer: ` + bob.String() + `
        supply: 1000000
layouts:
  relay:
    account_width: 32
    amount_width: 8
upward:
  pallet_index: 10
kafka:
  brokers: [localhost:9092]
  group: para-100
  topics:
    upward: ump
    downward: dmp
    xcmp: xcmp
outbox:
  enabled: true
  interval: 1m
metrics:
  address: :9100
`)

	cfg, err := Parse(data, []string{
		"TOKENDEALER_PARA_ID=200",
		"TOKENDEALER_KAFKA_BROKERS=kafka-1:9092,kafka-2:9092",
		"TOKENDEALER_KAFKA_TOPIC_EVENTS=events",
		"TOKENDEALER_LAYOUT_PARACHAIN_AMOUNT_WIDTH=32",
		"OTHER_PARA_ID=300",
	})
	require.NoError(t, err)

	require.EqualValues(t, 200, cfg.ParaID)
	require.Equal(t, zapcore.DebugLevel, cfg.Logger.ZapLevel())

	require.Equal(t, dbconfig.BoltDB, cfg.Ledger.DB.Type)
	require.Equal(t, "/var/lib/tokendealer/ledger.bolt", cfg.Ledger.DB.BoltDBOptions.FilePath)
	require.Equal(t, uint256.NewInt(100), &cfg.Ledger.ExistentialDeposit)

	require.Len(t, cfg.Ledger.Genesis.Balances, 1)
	require.Equal(t, 16, cfg.Ledger.Genesis.Balances[0].Amount.ByteLen())
	require.Len(t, cfg.Ledger.Genesis.Assets, 1)
	require.Equal(t, uint256.NewInt(1000000), &cfg.Ledger.Genesis.Assets[0].Supply)

	require.Equal(t, codec.DefaultLayout(), cfg.Layouts.Local)
	require.Equal(t, codec.Layout{AccountWidth: 32, AmountWidth: 8}, cfg.Layouts.Relay)
	require.Equal(t, codec.Layout{AccountWidth: 32, AmountWidth: 32}, cfg.Layouts.Parachain)

	require.EqualValues(t, 10, cfg.Upward.PalletIndex)
	require.EqualValues(t, 0, cfg.Upward.CallIndex)

	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, "ump", cfg.Kafka.Topics.Upward)
	require.Equal(t, "events", cfg.Kafka.Topics.Events)

	require.True(t, cfg.Outbox.Enabled)
	require.Equal(t, time.Minute, cfg.Outbox.Interval)
	require.Equal(t, ":9100", cfg.Metrics.Address)
}

func TestParseInvalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		data string
		env  []string
	}{
		{name: "unknown field", data: "unknown: 1"},
		{name: "malformed", data: "para_id: [1"},
		{name: "logger level", data: "logger:\n  level: loud"},
		{name: "layout", data: "layouts:\n  local:\n    amount_width: 33"},
		{name: "existential deposit", data: "ledger:\n  existential_deposit: 0x1ffffffffffffffffffffffffffffffff"},
		{name: "amount", data: "ledger:\n  existential_deposit: lots"},
		{name: "genesis account", data: "ledger:\n  genesis:\n    balances:\n      - account: 0OIl\n        amount: 1"},
		{name: "genesis account width", data: "ledger:\n  genesis:\n    assets:\n      - issuer: " + alice[:20].String() + "\n        supply: 1"},
		{name: "kafka", env: []string{"TOKENDEALER_KAFKA_BROKERS=localhost:9092"}},
		{name: "outbox", data: "outbox:\n  enabled: true\n  interval: 0s"},
		{name: "env", env: []string{"TOKENDEALER_PARA_ID=-1"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), tc.env)
			require.Error(t, err)
		})
	}

	t.Run("overflow", func(t *testing.T) {
		_, err := Parse([]byte("ledger:\n  existential_deposit: 0x1ffffffffffffffffffffffffffffffff"), nil)
		require.ErrorIs(t, err, common.ErrOverflow)
	})
}

func TestGenesisApply(t *testing.T) {
	g := Genesis{
		Balances: []Balance{
			{Account: alice.String(), Amount: *uint256.NewInt(10000)},
			{Account: bob.String(), Amount: *uint256.NewInt(500)},
		},
		Assets: []Asset{
			{Issuer: bob.String(), Supply: *uint256.NewInt(1000)},
			{Issuer: alice.String(), Supply: *uint256.NewInt(2000)},
		},
	}

	require.NoError(t, g.validate(codec.DefaultLayout()))

	s, err := ledger.New(ledger.Prm{
		Logger:             zaptest.NewLogger(t),
		ExistentialDeposit: uint256.NewInt(100),
	})
	require.NoError(t, err)

	applied, err := g.Apply(s)
	require.NoError(t, err)
	require.True(t, applied)

	bal, err := s.FreeBalance(alice)
	require.NoError(t, err)
	require.EqualValues(t, 10000, bal.Uint64())

	supply, issuer, err := s.AssetSupply(1)
	require.NoError(t, err)
	require.EqualValues(t, 2000, supply.Uint64())
	require.Equal(t, alice, issuer)

	issuance, err := s.TotalIssuance()
	require.NoError(t, err)
	require.EqualValues(t, 10500, issuance.Uint64())

	applied, err = g.Apply(s)
	require.NoError(t, err)
	require.False(t, applied)

	issuance, err = s.TotalIssuance()
	require.NoError(t, err)
	require.EqualValues(t, 10500, issuance.Uint64())
}

package ledger_test

import (
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/nspcc-dev/tokendealer/ledger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	alice = account.ID(append([]byte("alice"), make([]byte, 27)...))
	bob   = account.ID(append([]byte("bob"), make([]byte, 29)...))
)

func newStore(t *testing.T) *ledger.Store {
	s, err := ledger.New(ledger.Prm{
		Logger:             zaptest.NewLogger(t),
		ExistentialDeposit: uint256.NewInt(100),
	})
	require.NoError(t, err)
	return s
}

func requireNative(t *testing.T, s *ledger.Store, acc account.ID, exp uint64) {
	bal, err := s.FreeBalance(acc)
	require.NoError(t, err)
	require.EqualValues(t, exp, bal.Uint64(), acc)
}

func requireAsset(t *testing.T, s *ledger.Store, id asset.ID, acc account.ID, exp uint64) {
	bal, err := s.AssetBalance(id, acc)
	require.NoError(t, err)
	require.EqualValues(t, exp, bal.Uint64(), acc)
}

func transferNative(s *ledger.Store, from, to account.ID, amount uint64, req ledger.ExistenceRequirement) error {
	return s.RunInTx(func(tx ledger.Tx) error {
		return tx.TransferNative(from, to, uint256.NewInt(amount), req, nil)
	})
}

func TestDeposit(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Deposit(alice, uint256.NewInt(10000)))
	require.NoError(t, s.Deposit(alice, uint256.NewInt(1)))
	requireNative(t, s, alice, 10001)
	requireNative(t, s, bob, 0)

	issuance, err := s.TotalIssuance()
	require.NoError(t, err)
	require.EqualValues(t, 10001, issuance.Uint64())

	err = s.Deposit(bob, uint256.NewInt(99))
	require.True(t, errors.Is(err, ledger.ErrBelowMinimum))
	requireNative(t, s, bob, 0)
}

func TestTransferNative(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Deposit(alice, uint256.NewInt(10000)))

	require.NoError(t, transferNative(s, alice, bob, 1000, ledger.KeepAlive))
	requireNative(t, s, alice, 9000)
	requireNative(t, s, bob, 1000)

	t.Run("insufficient", func(t *testing.T) {
		err := transferNative(s, bob, alice, 1001, ledger.AllowDeath)
		require.True(t, errors.Is(err, common.ErrInsufficientBalance))
		requireNative(t, s, bob, 1000)
	})

	t.Run("keep alive", func(t *testing.T) {
		err := transferNative(s, bob, alice, 901, ledger.KeepAlive)
		require.True(t, errors.Is(err, common.ErrWouldKillAccount))

		err = transferNative(s, bob, alice, 1000, ledger.KeepAlive)
		require.True(t, errors.Is(err, common.ErrWouldKillAccount))

		require.NoError(t, transferNative(s, bob, alice, 900, ledger.KeepAlive))
		requireNative(t, s, bob, 100)
		requireNative(t, s, alice, 9900)

		require.NoError(t, transferNative(s, alice, bob, 900, ledger.KeepAlive))
	})

	t.Run("allow death", func(t *testing.T) {
		// bob holds 1000, 50 dust is burnt
		require.NoError(t, transferNative(s, bob, alice, 950, ledger.AllowDeath))
		requireNative(t, s, bob, 0)
		requireNative(t, s, alice, 9950)

		issuance, err := s.TotalIssuance()
		require.NoError(t, err)
		require.EqualValues(t, 9950, issuance.Uint64())
	})

	t.Run("zero and self", func(t *testing.T) {
		require.NoError(t, transferNative(s, bob, alice, 0, ledger.KeepAlive))
		require.NoError(t, transferNative(s, alice, alice, 9950, ledger.KeepAlive))
		requireNative(t, s, alice, 9950)
	})

	t.Run("below existential deposit", func(t *testing.T) {
		carol := account.ID(append([]byte("carol"), make([]byte, 27)...))

		err := transferNative(s, alice, carol, 50, ledger.KeepAlive)
		require.ErrorIs(t, err, common.ErrBelowExistentialDeposit)
		require.ErrorIs(t, err, ledger.ErrBelowMinimum)
		requireNative(t, s, alice, 9950)
		requireNative(t, s, carol, 0)

		require.NoError(t, transferNative(s, alice, carol, 100, ledger.KeepAlive))
		// existing accounts accept any amount
		require.NoError(t, transferNative(s, alice, carol, 1, ledger.KeepAlive))
		requireNative(t, s, alice, 9849)
		requireNative(t, s, carol, 101)

		issuance, err := s.TotalIssuance()
		require.NoError(t, err)
		require.EqualValues(t, 9950, issuance.Uint64())
	})
}

func TestOverflow(t *testing.T) {
	s, err := ledger.New(ledger.Prm{AmountWidth: 2})
	require.NoError(t, err)

	require.NoError(t, s.Deposit(alice, uint256.NewInt(60000)))
	require.NoError(t, s.Deposit(bob, uint256.NewInt(5000)))

	err = s.Deposit(alice, uint256.NewInt(6000))
	require.True(t, errors.Is(err, common.ErrOverflow))

	err = transferNative(s, bob, alice, 5536, ledger.AllowDeath)
	require.True(t, errors.Is(err, common.ErrOverflow))
	requireNative(t, s, alice, 60000)
	requireNative(t, s, bob, 5000)

	require.NoError(t, transferNative(s, bob, alice, 5535, ledger.AllowDeath))
	requireNative(t, s, alice, 65535)
}

func TestAssets(t *testing.T) {
	s := newStore(t)

	for i := 0; i < 3; i++ {
		id, err := s.IssueAsset(alice, uint256.NewInt(10000))
		require.NoError(t, err)
		require.EqualValues(t, i, id)
	}

	requireAsset(t, s, 1, alice, 10000)
	requireAsset(t, s, 1, bob, 0)

	transfer := func(id asset.ID, from, to account.ID, amount uint64) error {
		return s.RunInTx(func(tx ledger.Tx) error {
			return tx.TransferAsset(id, from, to, uint256.NewInt(amount), common.ToRelayTransferDetails(nil))
		})
	}

	// no existential deposit for assets
	require.NoError(t, transfer(1, alice, bob, 9999))
	require.NoError(t, transfer(1, bob, alice, 9999))
	require.NoError(t, transfer(1, alice, bob, 10000))
	requireAsset(t, s, 1, alice, 0)
	requireAsset(t, s, 1, bob, 10000)

	err := transfer(1, alice, bob, 1)
	require.True(t, errors.Is(err, common.ErrInsufficientBalance))

	err = transfer(3, bob, alice, 1)
	require.True(t, errors.Is(err, common.ErrUnknownAsset))

	_, err = s.AssetBalance(3, bob)
	require.True(t, errors.Is(err, common.ErrUnknownAsset))

	supply, issuer, err := s.AssetSupply(1)
	require.NoError(t, err)
	require.EqualValues(t, 10000, supply.Uint64())
	require.Equal(t, alice, issuer)
}

func TestRunInTxRollback(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Deposit(alice, uint256.NewInt(10000)))

	id, err := s.IssueAsset(alice, uint256.NewInt(500))
	require.NoError(t, err)

	errFail := errors.New("fail")

	err = s.RunInTx(func(tx ledger.Tx) error {
		require.NoError(t, tx.TransferNative(alice, bob, uint256.NewInt(1000), ledger.KeepAlive, nil))
		require.NoError(t, tx.TransferAsset(id, alice, bob, uint256.NewInt(500), nil))

		bal, err := tx.FreeBalance(bob)
		require.NoError(t, err)
		require.EqualValues(t, 1000, bal.Uint64())

		return errFail
	})
	require.ErrorIs(t, err, errFail)

	requireNative(t, s, alice, 10000)
	requireNative(t, s, bob, 0)
	requireAsset(t, s, id, alice, 500)
	requireAsset(t, s, id, bob, 0)
}

func TestPersistence(t *testing.T) {
	cfg := dbconfig.DBConfiguration{
		Type: dbconfig.BoltDB,
		BoltDBOptions: dbconfig.BoltDBOptions{
			FilePath: filepath.Join(t.TempDir(), "ledger.db"),
		},
	}

	st, err := ledger.OpenStorage(cfg)
	require.NoError(t, err)

	s, err := ledger.New(ledger.Prm{Storage: st})
	require.NoError(t, err)
	require.NoError(t, s.Deposit(alice, uint256.NewInt(777)))
	require.NoError(t, s.Close())

	st, err = ledger.OpenStorage(cfg)
	require.NoError(t, err)

	s, err = ledger.New(ledger.Prm{Storage: st})
	require.NoError(t, err)
	requireNative(t, s, alice, 777)
	require.NoError(t, s.Close())
}

func TestVersion(t *testing.T) {
	st := storage.NewMemoryStore()

	_, err := ledger.New(ledger.Prm{Storage: st})
	require.NoError(t, err)

	_, err = ledger.New(ledger.Prm{Storage: st})
	require.NoError(t, err)

	for _, v := range []uint32{common.PrevVersion - 1, common.Version + 1} {
		st := storage.NewMemoryStore()
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, v)
		require.NoError(t, st.PutChangeSet(map[string][]byte{string([]byte{0x00}): b}, nil))

		_, err = ledger.New(ledger.Prm{Storage: st})
		require.ErrorIs(t, err, common.ErrVersionMismatch)
	}
}

func TestEmpty(t *testing.T) {
	t.Run("native", func(t *testing.T) {
		s := newStore(t)

		empty, err := s.Empty()
		require.NoError(t, err)
		require.True(t, empty)

		require.NoError(t, s.Deposit(alice, uint256.NewInt(100)))

		empty, err = s.Empty()
		require.NoError(t, err)
		require.False(t, empty)
	})

	t.Run("asset", func(t *testing.T) {
		s := newStore(t)

		_, err := s.IssueAsset(bob, uint256.NewInt(1))
		require.NoError(t, err)

		empty, err := s.Empty()
		require.NoError(t, err)
		require.False(t, empty)
	})
}

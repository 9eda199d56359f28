package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/common"
	"go.uber.org/zap"
)

// ErrBelowMinimum is returned when a native deposit or transfer leaves an
// account holding less than the existential deposit.
var ErrBelowMinimum = common.ErrBelowExistentialDeposit

// Prm groups parameters of the Store.
type Prm struct {
	// Writes applied transfers into the log.
	Logger *zap.Logger

	// Persistent storage of the ledger. In-memory storage is used if nil.
	Storage storage.Store

	// Minimum native balance of the existing account. Zero if nil.
	ExistentialDeposit *uint256.Int

	// Width of balances in bytes. codec.DefaultAmountWidth if zero.
	AmountWidth int
}

// Store is a Ledger over neo-go storage. Transactions are nested mem-cached
// stores persisted on success.
type Store struct {
	log   *zap.Logger
	ed    *uint256.Int
	width int

	mtx sync.Mutex
	st  *storage.MemCachedStore
}

// OpenStorage opens persistent storage described by cfg.
func OpenStorage(cfg dbconfig.DBConfiguration) (storage.Store, error) {
	st, err := storage.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Type, err)
	}
	return st, nil
}

// New opens Store on top of prm.Storage. Persisted data of incompatible version
// is rejected.
func New(prm Prm) (*Store, error) {
	s := &Store{
		log:   prm.Logger,
		ed:    prm.ExistentialDeposit,
		width: prm.AmountWidth,
	}

	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.ed == nil {
		s.ed = new(uint256.Int)
	}
	if s.width == 0 {
		s.width = codec.DefaultAmountWidth
	}

	lower := prm.Storage
	if lower == nil {
		lower = storage.NewMemoryStore()
	}

	s.st = storage.NewMemCachedStore(lower)

	if err := s.checkVersion(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) checkVersion() error {
	v, err := s.st.Get([]byte{versionKey})
	if errors.Is(err, storage.ErrKeyNotFound) {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, common.Version)
		s.st.Put([]byte{versionKey}, b)

		if _, err = s.st.PersistSync(); err != nil {
			return fmt.Errorf("store ledger version: %w", err)
		}

		s.log.Info("ledger initialized", zap.String("version", common.VersionString(common.Version)))

		return nil
	} else if err != nil {
		return fmt.Errorf("read ledger version: %w", err)
	}

	if len(v) != 4 {
		return fmt.Errorf("invalid ledger version length %d", len(v))
	}

	if err = common.CheckVersion(int(binary.LittleEndian.Uint32(v))); err != nil {
		return fmt.Errorf("check ledger version: %w", err)
	}

	return nil
}

// Close closes the underlying storage.
func (s *Store) Close() error {
	return s.st.Close()
}

// ExistentialDeposit returns the minimum native balance of the existing
// account.
func (s *Store) ExistentialDeposit() *uint256.Int {
	return s.ed.Clone()
}

// RunInTx implements Ledger.
func (s *Store) RunInTx(fn func(Tx) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.runInTx(func(t *tx) error { return fn(t) })
}

func (s *Store) runInTx(fn func(*tx) error) error {
	cache := storage.NewMemCachedStore(s.st)

	err := fn(&tx{
		log:   s.log,
		st:    cache,
		ed:    s.ed,
		width: s.width,
	})
	if err != nil {
		return err
	}

	if _, err = cache.Persist(); err != nil {
		return fmt.Errorf("persist transaction: %w", err)
	}

	if _, err = s.st.PersistSync(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}

	return nil
}

func (s *Store) view(fn func(*tx) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return fn(&tx{
		log:   s.log,
		st:    storage.NewMemCachedStore(s.st),
		ed:    s.ed,
		width: s.width,
	})
}

// Deposit mints amount of native currency to the account and increases total
// issuance.
func (s *Store) Deposit(acc account.ID, amount *uint256.Int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.runInTx(func(t *tx) error {
		return t.deposit(acc, amount)
	})
}

// IssueAsset creates new fungible asset with the whole supply owned by the
// issuer. Asset IDs are allocated sequentially from 0.
func (s *Store) IssueAsset(issuer account.ID, supply *uint256.Int) (asset.ID, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var id asset.ID

	err := s.runInTx(func(t *tx) error {
		var err error
		id, err = t.issueAsset(issuer, supply)
		return err
	})

	return id, err
}

// FreeBalance returns native balance of the account.
func (s *Store) FreeBalance(acc account.ID) (*uint256.Int, error) {
	var res *uint256.Int

	err := s.view(func(t *tx) error {
		var err error
		res, err = t.FreeBalance(acc)
		return err
	})

	return res, err
}

// AssetBalance returns balance of the account in the asset.
func (s *Store) AssetBalance(id asset.ID, acc account.ID) (*uint256.Int, error) {
	var res *uint256.Int

	err := s.view(func(t *tx) error {
		var err error
		res, err = t.AssetBalance(id, acc)
		return err
	})

	return res, err
}

// TotalIssuance returns total amount of native currency.
func (s *Store) TotalIssuance() (*uint256.Int, error) {
	var res *uint256.Int

	err := s.view(func(t *tx) error {
		var err error
		res, err = t.getAmount([]byte{issuanceKey})
		return err
	})

	return res, err
}

// AssetSupply returns total supply and the issuer of the asset.
func (s *Store) AssetSupply(id asset.ID) (*uint256.Int, account.ID, error) {
	var d assetDetails

	err := s.view(func(t *tx) error {
		return t.getAsset(id, &d)
	})
	if err != nil {
		return nil, nil, err
	}

	return d.Supply, d.Issuer, nil
}

// Empty checks whether neither native currency nor assets were issued.
func (s *Store) Empty() (bool, error) {
	issuance, err := s.TotalIssuance()
	if err != nil {
		return false, err
	}
	if !issuance.IsZero() {
		return false, nil
	}

	_, _, err = s.AssetSupply(0)
	if errors.Is(err, common.ErrUnknownAsset) {
		return true, nil
	}

	return false, err
}

// assetDetails is a stored information about fungible asset.
type assetDetails struct {
	Issuer account.ID
	Supply *uint256.Int
}

// EncodeBinary implements io.Serializable.
func (d *assetDetails) EncodeBinary(w *io.BinWriter) {
	w.WriteVarBytes(d.Issuer)
	w.WriteVarBytes(d.Supply.Bytes())
}

// DecodeBinary implements io.Serializable.
func (d *assetDetails) DecodeBinary(r *io.BinReader) {
	d.Issuer = r.ReadVarBytes(codec.MaxAccountWidth)
	d.Supply = new(uint256.Int).SetBytes(r.ReadVarBytes(codec.MaxAmountWidth))
}

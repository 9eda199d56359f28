/*
Package outbox provides durable queue of outbound messages whose submission
failed after the ledger changes were committed.

Entries are kept in neo-go storage in submission order and resent by Worker
until the transport accepts them.
*/
package outbox

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/metrics"
	"go.uber.org/zap"
)

// entryPrefix is a storage key prefix of queued entries. It does not intersect
// with ledger prefixes so both can share the storage.
const entryPrefix = 0x10

// Entry is a queued outbound message.
type Entry struct {
	ID uuid.UUID
	// Relay or parachain the message is addressed to.
	Target account.Domain
	// Encoded message.
	Payload []byte
	// Number of failed resubmissions.
	Attempts uint32
	Created  time.Time
}

// EncodeBinary implements io.Serializable.
func (e *Entry) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(e.ID[:])
	w.WriteB(byte(e.Target.Kind))
	w.WriteU32LE(e.Target.ParaID)
	w.WriteVarBytes(e.Payload)
	w.WriteU32LE(e.Attempts)
	w.WriteU64LE(uint64(e.Created.UnixNano()))
}

// DecodeBinary implements io.Serializable.
func (e *Entry) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(e.ID[:])
	e.Target.Kind = account.Kind(r.ReadB())
	e.Target.ParaID = r.ReadU32LE()
	e.Payload = r.ReadVarBytes(codec.MaxPayloadSize)
	e.Attempts = r.ReadU32LE()
	e.Created = time.Unix(0, int64(r.ReadU64LE())).UTC()
}

func (e *Entry) key() []byte {
	key := make([]byte, 1+8+len(e.ID))
	key[0] = entryPrefix
	binary.BigEndian.PutUint64(key[1:], uint64(e.Created.UnixNano()))
	copy(key[9:], e.ID[:])
	return key
}

// Prm groups parameters of the Outbox.
type Prm struct {
	Logger *zap.Logger

	// Persistent storage of the queue. In-memory storage is used if nil.
	Storage storage.Store

	// Optional metrics.
	Metrics *metrics.Metrics
}

// Outbox is a durable queue of outbound messages.
type Outbox struct {
	log     *zap.Logger
	metrics *metrics.Metrics

	mtx  sync.Mutex
	last time.Time
	st   *storage.MemCachedStore
}

// New returns Outbox over prm.Storage.
func New(prm Prm) *Outbox {
	o := &Outbox{
		log:     prm.Logger,
		metrics: prm.Metrics,
	}

	if o.log == nil {
		o.log = zap.NewNop()
	}

	lower := prm.Storage
	if lower == nil {
		lower = storage.NewMemoryStore()
	}

	o.st = storage.NewMemCachedStore(lower)

	return o
}

// Push queues payload addressed to target.
func (o *Outbox) Push(target account.Domain, payload []byte) (uuid.UUID, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	// keys are ordered by creation time
	now := time.Now().UTC()
	if !now.After(o.last) {
		now = o.last.Add(time.Nanosecond)
	}
	o.last = now

	e := Entry{
		ID:      uuid.New(),
		Target:  target,
		Payload: payload,
		Created: now,
	}

	if err := o.put(&e); err != nil {
		return uuid.Nil, err
	}

	o.log.Info("outbound message queued",
		zap.Stringer("id", e.ID), zap.Stringer("target", target), zap.Int("size", len(payload)))

	o.metrics.SetOutboxPending(o.len())

	return e.ID, nil
}

// Pending returns queued entries in submission order.
func (o *Outbox) Pending() ([]Entry, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	return o.pending()
}

// Len returns number of queued entries.
func (o *Outbox) Len() int {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	return o.len()
}

// SendFunc submits queued entry to the transport.
type SendFunc func(Entry) error

// Retry resends all queued entries in order. Delivered entries are removed,
// failed ones stay queued with increased attempt counter. Returns number of
// delivered entries. Errors are returned for storage failures only.
func (o *Outbox) Retry(send SendFunc) (int, error) {
	o.mtx.Lock()
	defer o.mtx.Unlock()

	list, err := o.pending()
	if err != nil {
		return 0, err
	}

	var delivered int

	for i := range list {
		if err = send(list[i]); err != nil {
			list[i].Attempts++

			o.log.Warn("failed to resend outbound message",
				zap.Stringer("id", list[i].ID), zap.Stringer("target", list[i].Target),
				zap.Uint32("attempts", list[i].Attempts), zap.Error(err))

			if err = o.put(&list[i]); err != nil {
				return delivered, err
			}

			continue
		}

		o.st.Delete(list[i].key())
		delivered++

		o.log.Info("queued outbound message delivered",
			zap.Stringer("id", list[i].ID), zap.Stringer("target", list[i].Target))
	}

	if _, err = o.st.PersistSync(); err != nil {
		return delivered, fmt.Errorf("persist outbox: %w", err)
	}

	o.metrics.AddOutboxDelivered(delivered)
	o.metrics.SetOutboxPending(len(list) - delivered)

	return delivered, nil
}

func (o *Outbox) put(e *Entry) error {
	w := io.NewBufBinWriter()
	e.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return fmt.Errorf("encode outbox entry: %w", w.Err)
	}

	o.st.Put(e.key(), w.Bytes())

	if _, err := o.st.PersistSync(); err != nil {
		return fmt.Errorf("persist outbox: %w", err)
	}

	return nil
}

func (o *Outbox) pending() ([]Entry, error) {
	var (
		res []Entry
		err error
	)

	o.st.Seek(storage.SeekRange{Prefix: []byte{entryPrefix}}, func(_, v []byte) bool {
		var e Entry

		r := io.NewBinReaderFromBuf(v)
		e.DecodeBinary(r)
		if r.Err != nil {
			err = fmt.Errorf("decode outbox entry: %w", r.Err)
			return false
		}

		res = append(res, e)

		return true
	})

	return res, err
}

func (o *Outbox) len() int {
	var n int

	o.st.Seek(storage.SeekRange{Prefix: []byte{entryPrefix}}, func(_, _ []byte) bool {
		n++
		return true
	})

	return n
}

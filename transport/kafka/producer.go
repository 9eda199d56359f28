package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/event"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// SyncProducer produces records and waits for the acknowledgement.
// Implemented by kgo.Client.
type SyncProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// ProducerPrm groups parameters of the Producer.
type ProducerPrm struct {
	Logger *zap.Logger
	Client SyncProducer
	Topics Topics
	// Identifier of the local parachain.
	ParaID uint32
	// Layout of the sibling parachains.
	PeerLayout codec.Layout
	// DefaultTimeout if zero.
	Timeout time.Duration
}

// Producer submits outbound messages and settlement events. It implements
// dealer.RelaySender, dealer.PeerSender and event.Sink.
type Producer struct {
	log     *zap.Logger
	client  SyncProducer
	topics  Topics
	paraID  uint32
	layout  codec.Layout
	timeout time.Duration
}

// NewProducer returns Producer with the given parameters.
func NewProducer(prm ProducerPrm) *Producer {
	p := &Producer{
		log:     prm.Logger,
		client:  prm.Client,
		topics:  prm.Topics,
		paraID:  prm.ParaID,
		layout:  prm.PeerLayout,
		timeout: prm.Timeout,
	}

	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.layout == (codec.Layout{}) {
		p.layout = codec.DefaultLayout()
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}

	return p
}

// SendUpward implements dealer.RelaySender.
func (p *Producer) SendUpward(m codec.UpwardMessage) error {
	return p.produce(&kgo.Record{
		Topic:   p.topics.Upward,
		Key:     []byte(strconv.FormatUint(uint64(p.paraID), 10)),
		Value:   m,
		Headers: []kgo.RecordHeader{paraHeader(HeaderSource, p.paraID)},
	})
}

// SendXCMP implements dealer.PeerSender.
func (p *Producer) SendXCMP(paraID uint32, m codec.XCMPMessage) error {
	raw, err := p.layout.EncodeXCMP(m)
	if err != nil {
		return err
	}

	return p.produce(&kgo.Record{
		Topic: p.topics.XCMP,
		Key:   []byte(strconv.FormatUint(uint64(paraID), 10)),
		Value: raw,
		Headers: []kgo.RecordHeader{
			paraHeader(HeaderSource, p.paraID),
			paraHeader(HeaderTarget, paraID),
		},
	})
}

// Notify implements event.Sink. Failures are logged only.
func (p *Producer) Notify(env event.Envelope) {
	if p.topics.Events == "" {
		return
	}

	data, err := json.Marshal(env)
	if err != nil {
		p.log.Error("failed to encode event", zap.Stringer("id", env.ID), zap.Error(err))
		return
	}

	err = p.produce(&kgo.Record{
		Topic:   p.topics.Events,
		Key:     []byte(env.ID.String()),
		Value:   data,
		Headers: []kgo.RecordHeader{paraHeader(HeaderSource, p.paraID)},
	})
	if err != nil {
		p.log.Warn("failed to publish event",
			zap.Stringer("id", env.ID), zap.String("name", env.Event.Name()), zap.Error(err))
	}
}

func (p *Producer) produce(r *kgo.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.client.ProduceSync(ctx, r).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", r.Topic, err)
	}

	return nil
}

package kafka

import (
	"context"
	"errors"

	"github.com/nspcc-dev/tokendealer/dispatch"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Handler processes raw inbound messages. Implemented by dispatch.Dispatcher.
type Handler interface {
	HandleDownward(raw []byte) dispatch.State
	HandleXCMP(src uint32, raw []byte) dispatch.State
}

// ConsumerPrm groups parameters of the Consumer.
type ConsumerPrm struct {
	Logger  *zap.Logger
	Client  *kgo.Client
	Topics  Topics
	ParaID  uint32
	Handler Handler
}

// Consumer polls downward and XCMP topics and passes the records addressed to
// the local parachain to the Handler.
type Consumer struct {
	log     *zap.Logger
	client  *kgo.Client
	topics  Topics
	paraID  uint32
	handler Handler
}

// NewConsumer returns Consumer with the given parameters.
func NewConsumer(prm ConsumerPrm) *Consumer {
	c := &Consumer{
		log:     prm.Logger,
		client:  prm.Client,
		topics:  prm.Topics,
		paraID:  prm.ParaID,
		handler: prm.Handler,
	}

	if c.log == nil {
		c.log = zap.NewNop()
	}

	return c
}

// Run polls the topics until ctx is done or the client is closed. Offsets are
// committed after each handled batch.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		for _, fe := range fetches.Errors() {
			if errors.Is(fe.Err, context.Canceled) {
				continue
			}
			c.log.Warn("fetch failed",
				zap.String("topic", fe.Topic), zap.Int32("partition", fe.Partition), zap.Error(fe.Err))
		}

		fetches.EachRecord(func(r *kgo.Record) {
			c.handle(r)
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
			c.log.Warn("failed to commit offsets", zap.Error(err))
		}
	}
}

// handle passes the record to the handler. Records of other parachains and
// malformed records are skipped.
func (c *Consumer) handle(r *kgo.Record) (dispatch.State, bool) {
	target, err := headerParaID(r, HeaderTarget)
	if err != nil {
		c.log.Debug("record skipped", zap.String("topic", r.Topic), zap.Int64("offset", r.Offset), zap.Error(err))
		return 0, false
	}

	if target != c.paraID {
		return 0, false
	}

	var st dispatch.State

	switch r.Topic {
	case c.topics.Downward:
		st = c.handler.HandleDownward(r.Value)
	case c.topics.XCMP:
		src, err := headerParaID(r, HeaderSource)
		if err != nil {
			c.log.Debug("record skipped", zap.String("topic", r.Topic), zap.Int64("offset", r.Offset), zap.Error(err))
			return 0, false
		}

		st = c.handler.HandleXCMP(src, r.Value)
	default:
		return 0, false
	}

	c.log.Debug("inbound record handled",
		zap.String("topic", r.Topic), zap.Int64("offset", r.Offset), zap.Stringer("state", st))

	return st, true
}

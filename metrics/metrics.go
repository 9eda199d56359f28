// Package metrics provides Prometheus metrics of the token dealer.
package metrics

import (
	"errors"
	"time"

	"github.com/nspcc-dev/tokendealer/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tokendealer"

// Settlement directions.
const (
	DirectionToRelay       = "to_relay"
	DirectionToParachain   = "to_parachain"
	DirectionFromRelay     = "from_relay"
	DirectionFromParachain = "from_parachain"
)

// Metrics tracks settlements, inbound messages and the outbox.
type Metrics struct {
	Settlements        *prometheus.CounterVec
	SettlementDuration *prometheus.HistogramVec
	InboundMessages    *prometheus.CounterVec
	OutboxPending      prometheus.Gauge
	OutboxDelivered    prometheus.Counter
	ConsistencyGaps    prometheus.Counter
}

// New creates Metrics registered in reg. Default registerer is used if reg is
// nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	f := promauto.With(reg)

	return &Metrics{
		Settlements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Total number of concluded settlements by direction and result",
		}, []string{"direction", "result"}),
		SettlementDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_seconds",
			Help:      "Duration of settlements including message submission",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"direction"}),
		InboundMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_messages_total",
			Help:      "Total number of inbound messages by source and final state",
		}, []string{"source", "state"}),
		OutboxPending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_pending",
			Help:      "Number of outbound messages waiting for resubmission",
		}),
		OutboxDelivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_delivered_total",
			Help:      "Total number of queued messages delivered on retry",
		}),
		ConsistencyGaps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_gaps_total",
			Help:      "Total number of messages sent whose ledger changes failed to persist",
		}),
	}
}

// ObserveSettlement records the result of a settlement started at start.
func (m *Metrics) ObserveSettlement(direction string, start time.Time, err error) {
	if m == nil {
		return
	}

	m.Settlements.WithLabelValues(direction, ResultLabel(err)).Inc()
	m.SettlementDuration.WithLabelValues(direction).Observe(time.Since(start).Seconds())
}

// ObserveInbound records the final state of an inbound message.
func (m *Metrics) ObserveInbound(source, state string) {
	if m == nil {
		return
	}

	m.InboundMessages.WithLabelValues(source, state).Inc()
}

// SetOutboxPending sets the number of queued messages.
func (m *Metrics) SetOutboxPending(n int) {
	if m == nil {
		return
	}

	m.OutboxPending.Set(float64(n))
}

// AddOutboxDelivered records messages delivered on retry.
func (m *Metrics) AddOutboxDelivered(n int) {
	if m == nil {
		return
	}

	m.OutboxDelivered.Add(float64(n))
}

// IncConsistencyGap records sent message without persisted ledger changes.
func (m *Metrics) IncConsistencyGap() {
	if m == nil {
		return
	}

	m.ConsistencyGaps.Inc()
}

var resultLabels = []struct {
	err   error
	label string
}{
	{common.ErrAuthentication, "authentication"},
	{common.ErrInsufficientBalance, "insufficient_balance"},
	{common.ErrWouldKillAccount, "would_kill_account"},
	{common.ErrBelowExistentialDeposit, "below_existential_deposit"},
	{common.ErrUnknownAsset, "unknown_asset"},
	{common.ErrOverflow, "overflow"},
	{common.ErrIncompatible, "incompatible"},
	{common.ErrMalformedRemark, "malformed_remark"},
	{common.ErrSend, "send"},
}

// ResultLabel returns metric label of the settlement failure.
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}

	for i := range resultLabels {
		if errors.Is(err, resultLabels[i].err) {
			return resultLabels[i].label
		}
	}

	return "internal"
}

package event

import (
	"sync"

	"go.uber.org/zap"
)

// Recorder is a Sink keeping all received events in memory.
type Recorder struct {
	mtx  sync.Mutex
	list []Envelope
}

// NewRecorder returns empty Recorder.
func NewRecorder() *Recorder {
	return new(Recorder)
}

// Notify implements Sink.
func (r *Recorder) Notify(env Envelope) {
	r.mtx.Lock()
	r.list = append(r.list, env)
	r.mtx.Unlock()
}

// Events returns received events in order.
func (r *Recorder) Events() []Event {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	res := make([]Event, len(r.list))
	for i := range r.list {
		res[i] = r.list[i].Event
	}

	return res
}

// Envelopes returns received envelopes in order.
func (r *Recorder) Envelopes() []Envelope {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return append([]Envelope(nil), r.list...)
}

// Reset drops received events.
func (r *Recorder) Reset() {
	r.mtx.Lock()
	r.list = nil
	r.mtx.Unlock()
}

// LogSink is a Sink writing events into the log.
type LogSink struct {
	Logger *zap.Logger
}

// Notify implements Sink.
func (x LogSink) Notify(env Envelope) {
	fields := []zap.Field{
		zap.Stringer("id", env.ID),
		zap.Any("fields", Fields(env.Event)),
	}

	if err := env.Event.Err(); err != nil {
		x.Logger.Warn(env.Event.Name(), append(fields, zap.Error(err))...)
		return
	}

	x.Logger.Info(env.Event.Name(), fields...)
}

type multiSink []Sink

// Tee returns Sink passing events to all given sinks in order.
func Tee(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (x multiSink) Notify(env Envelope) {
	for i := range x {
		x[i].Notify(env)
	}
}

package eventlog

import (
	"context"

	"github.com/MarkoPoloResearchLab/timelock/pkg/timelock"
	"go.uber.org/zap"
)

// ZapSink emits every ledger event as a structured log line.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink returns a sink writing through the supplied logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

// Publish logs the event.
func (sink *ZapSink) Publish(_ context.Context, event timelock.Event) {
	sink.logger.Info("ledger event",
		zap.String("event", event.EventName()),
		zap.Any("payload", event),
	)
}

// MultiSink fans one event out to several sinks in order.
type MultiSink struct {
	sinks []timelock.EventSink
}

// NewMultiSink returns a sink broadcasting to every non-nil sink.
func NewMultiSink(sinks ...timelock.EventSink) *MultiSink {
	kept := make([]timelock.EventSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	return &MultiSink{sinks: kept}
}

// Publish forwards the event to every sink.
func (multi *MultiSink) Publish(ctx context.Context, event timelock.Event) {
	for _, sink := range multi.sinks {
		sink.Publish(ctx, event)
	}
}

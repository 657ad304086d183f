package eventlog

import (
	"context"

	"github.com/MarkoPoloResearchLab/timelock/pkg/timelock"
	"go.uber.org/zap"
)

// ZapOperationLogger implements timelock.OperationLogger over zap: one
// structured line per operation attempt, success or failure.
type ZapOperationLogger struct {
	logger *zap.Logger
}

// NewZapOperationLogger returns an operation logger writing through logger.
func NewZapOperationLogger(logger *zap.Logger) *ZapOperationLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapOperationLogger{logger: logger}
}

// LogOperation records the operation outcome.
func (operationLogger *ZapOperationLogger) LogOperation(_ context.Context, entry timelock.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("caller", entry.Caller.String()),
		zap.String("status", entry.Status),
	}
	if entry.LockID != nil {
		fields = append(fields, zap.Uint64("lock_id", uint64(*entry.LockID)))
	}
	if !entry.Token.IsZero() {
		fields = append(fields, zap.String("token", entry.Token.String()))
	}
	if entry.Amount.Int64() != 0 {
		fields = append(fields, zap.Int64("amount", entry.Amount.Int64()))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		operationLogger.logger.Warn("ledger operation failed", fields...)
		return
	}
	operationLogger.logger.Info("ledger operation", fields...)
}

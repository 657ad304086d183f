package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MarkoPoloResearchLab/timelock/pkg/timelock"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	errorOperationJournal = "journal"
	errorSubjectEvent     = "event"
	errorCodeAppend       = "append"
	errorCodeList         = "list"
	errorCodeMarshal      = "marshal"
)

// Journal persists every published ledger event as an append-only row.
// Implements timelock.EventSink. Append failures never fail the ledger
// operation that produced the event; they are logged and dropped.
type Journal struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewJournal returns a Journal backed by gorm.DB.
func NewJournal(db *gorm.DB, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{db: db, logger: logger}
}

// Publish appends the event to the journal.
func (journal *Journal) Publish(ctx context.Context, event timelock.Event) {
	payload, err := marshalEventPayload(event)
	if err != nil {
		journal.logger.Error("event payload marshal failed",
			zap.String("event", event.EventName()),
			zap.Error(wrapJournalError(errorCodeMarshal, err)))
		return
	}
	record := EventRecord{
		Name:    event.EventName(),
		Payload: payload,
	}
	if err := journal.db.WithContext(ctx).Create(&record).Error; err != nil {
		journal.logger.Error("event journal append failed",
			zap.String("event", event.EventName()),
			zap.Error(wrapJournalError(errorCodeAppend, err)))
	}
}

// Recent returns up to limit journal rows in publication order, oldest first.
func (journal *Journal) Recent(ctx context.Context, limit int) ([]EventRecord, error) {
	var records []EventRecord
	err := journal.db.WithContext(ctx).
		Order("sequence ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, wrapJournalError(errorCodeList, err)
	}
	return records, nil
}

func wrapJournalError(code string, err error) error {
	return timelock.WrapError(errorOperationJournal, errorSubjectEvent, code, err)
}

func marshalEventPayload(event timelock.Event) (datatypes.JSON, error) {
	var payload any
	switch typed := event.(type) {
	case timelock.LockedEvent:
		payload = lockedPayload{
			LockID:        uint64(typed.LockID),
			Owner:         typed.Owner.String(),
			Token:         typed.Token.String(),
			Amount:        typed.Amount.Int64(),
			UnlockUnixUTC: typed.UnlockUnixUTC,
			FeePaid:       typed.FeePaid.Int64(),
		}
	case timelock.WithdrawnEvent:
		payload = withdrawnPayload{
			LockID: uint64(typed.LockID),
			Owner:  typed.Owner.String(),
		}
	case timelock.LockTransferredEvent:
		payload = transferredPayload{
			LockID:        uint64(typed.LockID),
			PreviousOwner: typed.PreviousOwner.String(),
			NewOwner:      typed.NewOwner.String(),
		}
	case timelock.FeeUpdatedEvent:
		payload = feeUpdatedPayload{
			OldFee: typed.OldFee.Int64(),
			NewFee: typed.NewFee.Int64(),
		}
	case timelock.FeesSweptEvent:
		payload = feesSweptPayload{
			Amount:    typed.Amount.Int64(),
			Recipient: typed.Recipient.String(),
		}
	default:
		return nil, fmt.Errorf("unknown event type %T", event)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

type lockedPayload struct {
	LockID        uint64 `json:"lock_id"`
	Owner         string `json:"owner"`
	Token         string `json:"token"`
	Amount        int64  `json:"amount"`
	UnlockUnixUTC int64  `json:"unlock_unix_utc"`
	FeePaid       int64  `json:"fee_paid"`
}

type withdrawnPayload struct {
	LockID uint64 `json:"lock_id"`
	Owner  string `json:"owner"`
}

type transferredPayload struct {
	LockID        uint64 `json:"lock_id"`
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
}

type feeUpdatedPayload struct {
	OldFee int64 `json:"old_fee"`
	NewFee int64 `json:"new_fee"`
}

type feesSweptPayload struct {
	Amount    int64  `json:"amount"`
	Recipient string `json:"recipient"`
}

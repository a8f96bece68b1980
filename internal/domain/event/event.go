package event

import (
	"context"
	"encoding/json"
	"time"
)

// Event is one externally observable loan transition, recorded in the same
// transaction as the mutation it describes and surfaced only after commit.
type Event struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanID    string    `gorm:"size:32;index:idx_loan_events_loan" json:"loan_id"`
	Name      string    `gorm:"size:48" json:"name"`
	Payload   []byte    `gorm:"type:json" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Event) TableName() string { return "loan_events" }

func New(loanID, name string, payload map[string]any) *Event {
	raw, _ := json.Marshal(payload)
	return &Event{LoanID: loanID, Name: name, Payload: raw}
}

type Repository interface {
	Append(ctx context.Context, e *Event) error
	ListByLoanID(ctx context.Context, loanID string) ([]Event, error)
}

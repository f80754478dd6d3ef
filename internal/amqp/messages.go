package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// BudgetAlertMessage is the wire form of a budget alert event. The
// server publishes one when a ledger write pushes an account's active
// budget to its warning or error threshold; the worker consumes and
// dispatches it.
type BudgetAlertMessage struct {
	AccountID int64     `json:"account_id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Threshold float64   `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetAlertMessage(alert core.BudgetAlert) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		AccountID: alert.AccountID,
		Message:   alert.Message,
		Severity:  string(alert.Severity),
		Threshold: alert.Threshold,
		Timestamp: time.Now(),
	}
}

// Alert converts the message back into the domain form.
func (m *BudgetAlertMessage) Alert() core.BudgetAlert {
	return core.BudgetAlert{
		AccountID: m.AccountID,
		Message:   m.Message,
		Severity:  core.AlertSeverity(m.Severity),
		Threshold: m.Threshold,
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package swap

import "time"

// TypeSwap is the only transaction type the ledger records. Corrections are
// modelled as new transactions with a distinguishing status, never mutation.
const TypeSwap = "swap"

// Status captures the lifecycle state of a recorded transaction.
type Status string

const (
	// StatusPending identifies transactions accepted but not yet settled.
	StatusPending Status = "pending"
	// StatusCompleted identifies settled transactions; their numeric fields
	// are immutable from this point on.
	StatusCompleted Status = "completed"
	// StatusFailed identifies transactions that did not settle.
	StatusFailed Status = "failed"
)

// Transaction is one append-only ledger entry. The rate is copied in at
// execution time so later rate changes never retroactively alter history.
type Transaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Type       string    `json:"type"`
	AmountWLD  float64   `json:"amountWLD"`
	AmountGASH float64   `json:"amountGASH"`
	BonusGASH  float64   `json:"bonusGASH"`
	Rate       float64   `json:"rate"`
	TxHash     string    `json:"txHash"`
	Status     Status    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// Intent is a client's swap request. ExpectedGASH is advisory only and never
// enters the settlement math.
type Intent struct {
	UserID        string  `json:"userId"`
	AmountWLD     float64 `json:"amountWLD"`
	ExpectedGASH  float64 `json:"expectedGASH"`
	BonusEligible bool    `json:"bonusEligible"`
}

// Receipt is the response payload for an executed swap. GashReceived includes
// the bonus. The committed Transaction rides along for callers that need the
// ledger entry but stays out of the wire payload.
type Receipt struct {
	Transaction   Transaction `json:"-"`
	TxHash        string      `json:"txHash"`
	GashReceived  float64     `json:"gashReceived"`
	BonusReceived float64     `json:"bonusReceived"`
	Timestamp     time.Time   `json:"timestamp"`
	Rate          float64     `json:"rate"`
}

// Policy carries the swap guardrails sourced from configuration.
type Policy struct {
	MinAmount         float64
	FirstSwapBonusPct float64
	MaxSwaps          int
	Window            time.Duration
}

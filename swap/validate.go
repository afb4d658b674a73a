package swap

import (
	"fmt"
	"strconv"
)

// Validation captures the outcome of the amount rules for one swap intent.
// Warnings never block execution.
type Validation struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateAmount applies the swap amount rules against the user's WLD balance.
// Every rule is evaluated; a failing rule contributes its own error message
// rather than short-circuiting.
func ValidateAmount(amount, balance, minAmount float64) Validation {
	errs := make([]string, 0, 3)
	warnings := make([]string, 0, 1)

	if amount <= 0 {
		errs = append(errs, "Amount must be greater than 0")
	}
	if amount < minAmount {
		errs = append(errs, fmt.Sprintf("Minimum swap amount is %s WLD", formatAmount(minAmount)))
	}
	if amount > balance {
		errs = append(errs, "Insufficient WLD balance")
	}
	if amount > balance*0.8 {
		warnings = append(warnings, "You are swapping a large portion of your balance")
	}

	return Validation{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

package swap

import "testing"

func TestValidateAmountAccepts(t *testing.T) {
	result := ValidateAmount(10, 1000, 0.1)
	if !result.Valid {
		t.Fatalf("expected valid result, got errors %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateAmountNonPositive(t *testing.T) {
	result := ValidateAmount(0, 1000, 0.1)
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if !containsMessage(result.Errors, "Amount must be greater than 0") {
		t.Fatalf("missing non-positive error, got %v", result.Errors)
	}
}

func TestValidateAmountBelowMinimum(t *testing.T) {
	result := ValidateAmount(0.05, 1000, 0.1)
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if !containsMessage(result.Errors, "Minimum swap amount is 0.1 WLD") {
		t.Fatalf("missing minimum error, got %v", result.Errors)
	}
}

func TestValidateAmountInsufficientBalance(t *testing.T) {
	result := ValidateAmount(1500, 1000, 0.1)
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if !containsMessage(result.Errors, "Insufficient WLD balance") {
		t.Fatalf("missing balance error, got %v", result.Errors)
	}
	if !containsMessage(result.Warnings, "You are swapping a large portion of your balance") {
		t.Fatalf("missing large-portion warning, got %v", result.Warnings)
	}
}

func TestValidateAmountLargePortionWarning(t *testing.T) {
	result := ValidateAmount(900, 1000, 0.1)
	if !result.Valid {
		t.Fatalf("expected valid result, got errors %v", result.Errors)
	}
	if !containsMessage(result.Warnings, "You are swapping a large portion of your balance") {
		t.Fatalf("missing warning, got %v", result.Warnings)
	}
}

func TestValidateAmountAccumulatesErrors(t *testing.T) {
	result := ValidateAmount(-5, 1000, 0.1)
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if len(result.Errors) < 2 {
		t.Fatalf("expected every failing rule reported, got %v", result.Errors)
	}
}

func containsMessage(messages []string, want string) bool {
	for _, msg := range messages {
		if msg == want {
			return true
		}
	}
	return false
}

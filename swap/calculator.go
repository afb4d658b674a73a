package swap

// Amounts breaks down the GASH resulting from one swap.
type Amounts struct {
	Base  float64
	Bonus float64
	Total float64
}

// Calculate converts a WLD amount at the supplied rate, applying an optional
// bonus percentage on top of the base amount. No rounding is applied here;
// display precision is a presentation concern.
func Calculate(amountWLD, rate, bonusPercent float64) Amounts {
	base := amountWLD * rate
	bonus := 0.0
	if bonusPercent > 0 {
		bonus = base * bonusPercent / 100
	}
	return Amounts{
		Base:  base,
		Bonus: bonus,
		Total: base + bonus,
	}
}

package tools

import "github.com/shopspring/decimal"

// Amount renders a milliunit amount in display units with exactly two
// decimal places, e.g. 150000 → "150.00", -500 → "-0.50". Decimal arithmetic
// avoids binary float drift on large ledgers.
func Amount(milliunits int64) string {
	return decimal.New(milliunits, -3).StringFixed(2)
}

// AbsAmount renders the magnitude of a milliunit amount, used for spent
// figures where the sign is implied by the label.
func AbsAmount(milliunits int64) string {
	if milliunits < 0 {
		milliunits = -milliunits
	}
	return Amount(milliunits)
}

// DisplayUnits converts milliunits to display units as a float, for values
// stored in the overview document rather than rendered as text.
func DisplayUnits(milliunits int64) float64 {
	return float64(milliunits) / 1000
}

// OrNA returns the string behind s, or "N/A" when s is nil or empty. Used
// for optional display fields such as payee and category names.
func OrNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

package guard

import (
	"fmt"
	"strings"
)

const (
	maxInputLength = 1000

	// maxUserID matches the upper bound of the external ID space.
	maxUserID = 9_999_999_999

	// spamPatternThreshold is how many pattern hits mark input as spam.
	spamPatternThreshold = 3
)

var spamPatterns = []string{
	"http://", "https://", "www.", ".com", ".ru", ".net",
	"telegram.me", "t.me", "@", "bit.ly",
}

// ValidateInput rejects empty, oversized and spam-looking text.
func ValidateInput(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return false, "text must not be empty"
	}
	if len(text) > maxInputLength {
		return false, fmt.Sprintf("text too long (maximum %d characters)", maxInputLength)
	}

	lowered := strings.ToLower(text)
	hits := 0
	for _, pattern := range spamPatterns {
		if strings.Contains(lowered, pattern) {
			hits++
		}
	}
	if hits >= spamPatternThreshold {
		return false, "suspicious content detected"
	}
	return true, ""
}

// ValidateAmount bounds-checks a payment amount against the guard's limits.
func (g *Guard) ValidateAmount(amount float64) (bool, string) {
	return ValidateAmount(amount, g.cfg.MinAmount, g.cfg.MaxAmount)
}

// ValidateAmount bounds-checks a payment amount.
func ValidateAmount(amount, minAmount, maxAmount float64) (bool, string) {
	if amount < minAmount {
		return false, fmt.Sprintf("minimum amount is %g", minAmount)
	}
	if maxAmount > 0 && amount > maxAmount {
		return false, fmt.Sprintf("maximum amount is %g", maxAmount)
	}
	return true, ""
}

// ValidateUserID checks the identifier fits the external ID space.
func ValidateUserID(userID int64) (bool, string) {
	if userID <= 0 {
		return false, "user id must be positive"
	}
	if userID > maxUserID {
		return false, "invalid user id format"
	}
	return true, ""
}

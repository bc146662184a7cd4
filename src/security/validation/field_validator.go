// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/comptafacile/backend/src/logger"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxCompanyNameLength   = 255
	MaxDescriptionLength   = 1024
	MaxKeywordsLength      = 512
	MaxCurrencyCodeLength  = 3

	// Upper bound accepted for a company tax provision rate, in percent.
	MinTaxRatePercent = 0.0
	MaxTaxRatePercent = 50.0
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// --- Numeric Validators ---

// ValidateFloatRange checks that a float value is within [minVal, maxVal].
func ValidateFloatRange(val float64, fieldName string, minVal, maxVal float64) error {
	if val < minVal || val > maxVal {
		logger.L.Warn("float value out of range", "field", fieldName, "value", val, "min", minVal, "max", maxVal)
		return fmt.Errorf("%w: %s must be between %.2f and %.2f, got %.2f", ErrValidationFailed, fieldName, minVal, maxVal, val)
	}
	return nil
}

// ValidateTaxRate checks the company tax rate against the accepted percent range.
func ValidateTaxRate(rate float64) error {
	return ValidateFloatRange(rate, "taxRate", MinTaxRatePercent, MaxTaxRatePercent)
}

// ValidateNonNegativeAmount rejects negative monetary values.
func ValidateNonNegativeAmount(val float64, fieldName string) error {
	if val < 0 {
		logger.L.Warn("negative value rejected", "field", fieldName, "value", val)
		return fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateFloatString parses a string to float and checks if it's within a range.
// An empty string is treated as optional and returns 0 without error.
func ValidateFloatString(s, fieldName string, allowNegative bool, minVal, maxVal float64) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}
	val, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s ('%s') is not a valid number: %v", ErrValidationFailed, fieldName, s, err)
	}
	if !allowNegative && val < 0 {
		return 0, fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	if err := ValidateFloatRange(val, fieldName, minVal, maxVal); err != nil {
		return 0, err
	}
	return val, nil
}

// --- Date Validator ---

// ValidateDateString checks if a string is a valid date in "YYYY-MM-DD" format.
func ValidateDateString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD): %v", ErrValidationFailed, fieldName, s, err)
	}
	if t.Format("2006-01-02") != trimmed {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is an invalid date (e.g., day/month mismatch)", ErrValidationFailed, fieldName, s)
	}
	return t, nil
}

// --- Domain Validators ---

// ValidateTransactionType checks the transaction type against the accepted set.
func ValidateTransactionType(s string) error {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INCOME", "EXPENSE":
		return nil
	}
	return fmt.Errorf("%w: type must be INCOME or EXPENSE, got '%s'", ErrValidationFailed, s)
}

// NormalizeKeywordsInput sanitizes and bounds a raw revenue keywords string.
// Individual keyword parsing happens later in the classifier.
func NormalizeKeywordsInput(raw string) (string, error) {
	cleaned := strings.TrimSpace(SanitizeText(StripUnprintable(raw)))
	if err := ValidateStringMaxLength(cleaned, MaxKeywordsLength, "revenueKeywords"); err != nil {
		return "", err
	}
	return cleaned, nil
}

package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/tradepros/tradepro-agents/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("trade_side", validateTradeSide); err != nil {
		panic(fmt.Sprintf("failed to register trade_side validator: %v", err))
	}
}

// validateTradeSide validates that a string is a valid TradeSide enum value
func validateTradeSide(fl validator.FieldLevel) bool {
	return ValidateTradeSide(fl.Field().String()) == nil
}

// ValidateTradeSide validates a TradeSide string value
func ValidateTradeSide(value string) error {
	switch models.TradeSide(strings.ToLower(value)) {
	case models.TradeSideBuy, models.TradeSideSell:
		return nil
	default:
		return fmt.Errorf("invalid side: %s (must be 'buy' or 'sell')", value)
	}
}

// SanitizeText trims whitespace and removes control characters except newline and tab.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// NormalizeSymbol upper-cases and sanitizes a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(SanitizeText(symbol))
}

// FieldErrors flattens validator errors into "field: rule" messages.
func FieldErrors(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return out
}

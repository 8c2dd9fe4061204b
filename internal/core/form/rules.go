package form

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate backs the email format check. Field rules use Var-level tags
// because form fields arrive as a flat string map, not a bound struct.
var validate = validator.New()

// FieldKind selects the normalization and format rule applied to a field.
type FieldKind int

const (
	// KindText accepts any value.
	KindText FieldKind = iota
	// KindDigits accepts digit-only values; anything else is rejected
	// wholesale and the previous value kept. Must parse to a positive
	// integer to pass validation.
	KindDigits
	// KindEmail accepts any value but must match an address pattern to
	// pass validation.
	KindEmail
	// KindPrice accepts decimal-number values and must parse to a
	// positive amount.
	KindPrice
)

// Rule declares one form field.
type Rule struct {
	Name     string
	Label    string
	Required bool
	Kind     FieldKind
}

// FieldError is one validation violation.
type FieldError struct {
	Field   string
	Message string
}

// accepts implements the reject-and-keep-previous input policy: a raw value
// that does not fit the kind is refused before storage, it is never stored
// and flagged later.
func (k FieldKind) accepts(raw string) bool {
	switch k {
	case KindDigits:
		for _, r := range raw {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	case KindPrice:
		dot := false
		for _, r := range raw {
			if r == '.' {
				if dot {
					return false
				}
				dot = true
				continue
			}
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// validateFields checks every rule and collects all violations in rule order.
func validateFields(rules []Rule, fields map[string]string) []FieldError {
	var violations []FieldError
	for _, rule := range rules {
		value := strings.TrimSpace(fields[rule.Name])

		if value == "" {
			if rule.Required {
				violations = append(violations, FieldError{
					Field:   rule.Name,
					Message: rule.Label + " is required",
				})
			}
			continue
		}

		switch rule.Kind {
		case KindDigits:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				violations = append(violations, FieldError{
					Field:   rule.Name,
					Message: rule.Label + " must be a positive number",
				})
			}
		case KindPrice:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f <= 0 {
				violations = append(violations, FieldError{
					Field:   rule.Name,
					Message: rule.Label + " must be a positive amount",
				})
			}
		case KindEmail:
			if err := validate.Var(value, "email"); err != nil {
				violations = append(violations, FieldError{
					Field:   rule.Name,
					Message: rule.Label + " must be a valid email",
				})
			}
		}
	}
	return violations
}

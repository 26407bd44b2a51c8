package booking

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goldmandi/booking-engine/internal/config"
)

// FieldKind identifies which validation contract applies to a raw form value.
type FieldKind string

const (
	FieldName     FieldKind = "name"
	FieldPhone    FieldKind = "phone"
	FieldEmail    FieldKind = "email"
	FieldQuantity FieldKind = "quantity"
)

// ErrUnknownField is returned when a field kind with no validation contract
// reaches the validator. This indicates a caller bug, never user input.
var ErrUnknownField = errors.New("booking: unknown field kind")

// fieldLabels are the human-facing names used in validation messages.
var fieldLabels = map[FieldKind]string{
	FieldName:     "Full name",
	FieldPhone:    "Phone number",
	FieldEmail:    "Email",
	FieldQuantity: "Quantity",
}

// Validator checks raw form values against the configured field rules.
// Patterns are compiled once at construction; Validate itself is a pure
// function of (kind, value), so repeating a check always yields the same
// result.
type Validator struct {
	rules    map[FieldKind]config.FieldRule
	patterns map[FieldKind]*regexp.Regexp
}

// NewValidator compiles the configured field rules into a Validator.
// For the phone field, a starting-digit set like "6789" expands to the
// pattern ^[6789][0-9]{9}$ unless an explicit pattern is configured.
func NewValidator(fields map[string]config.FieldRule) (*Validator, error) {
	v := &Validator{
		rules:    make(map[FieldKind]config.FieldRule, len(fields)),
		patterns: make(map[FieldKind]*regexp.Regexp),
	}
	for name, rule := range fields {
		kind := FieldKind(name)
		v.rules[kind] = rule

		expr := rule.Pattern
		if expr == "" && kind == FieldPhone && rule.StartingDigits != "" {
			expr = fmt.Sprintf("^[%s][0-9]{9}$", rule.StartingDigits)
		}
		if expr == "" {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("booking: field %s: bad pattern %q: %w", name, expr, err)
		}
		v.patterns[kind] = re
	}
	return v, nil
}

// Validate checks one raw form value against its configured rule. An empty
// message means the value passed. A non-nil error means the field kind
// itself is unrecognized — a caller bug, never a user-input problem.
//
// Check order: required-but-empty first, then kind-specific rules. For the
// name field, length bounds are checked before the character pattern, so a
// too-short name reports its length, not its characters. A field with no
// configured rule always passes.
func (v *Validator) Validate(kind FieldKind, raw string) (string, error) {
	label, ok := fieldLabels[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, kind)
	}

	rule, hasRule := v.rules[kind]
	if !hasRule {
		return "", nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		if rule.Required {
			return label + " is required", nil
		}
		return "", nil
	}

	switch kind {
	case FieldName:
		n := utf8.RuneCountInString(value)
		if rule.MinLength > 0 && n < rule.MinLength {
			return fmt.Sprintf("%s must be at least %d characters", label, rule.MinLength), nil
		}
		if rule.MaxLength > 0 && n > rule.MaxLength {
			return fmt.Sprintf("%s must be at most %d characters", label, rule.MaxLength), nil
		}
		if re := v.patterns[kind]; re != nil && !re.MatchString(value) {
			return label + " may contain only letters and spaces", nil
		}
	case FieldPhone:
		if re := v.patterns[kind]; re != nil && !re.MatchString(value) {
			return "Enter a valid 10-digit mobile number", nil
		}
	case FieldEmail:
		if re := v.patterns[kind]; re != nil && !re.MatchString(value) {
			return "Enter a valid email address", nil
		}
	case FieldQuantity:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return label + " must be a number", nil
		}
		if f < rule.Min {
			return fmt.Sprintf("%s must be at least %s", label, formatAmount(rule.Min)), nil
		}
	}
	return "", nil
}

// formatAmount renders a configured bound without trailing zeros, so a
// limit of 1000 reads "1000" and 0.5 reads "0.5".
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

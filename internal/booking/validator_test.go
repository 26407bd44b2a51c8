package booking

import (
	"errors"
	"strings"
	"testing"

	"github.com/goldmandi/booking-engine/internal/config"
)

// newTestValidator builds a validator from the default field rules.
func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(config.Default().Booking.Fields)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

// --- Name validation tests ---

func TestValidate_NameValid(t *testing.T) {
	v := newTestValidator(t)
	msg, err := v.Validate(FieldName, "John Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "" {
		t.Errorf("expected valid name, got %q", msg)
	}
}

func TestValidate_NameTooShort(t *testing.T) {
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldName, "Jo")
	if !strings.Contains(msg, "at least 3") {
		t.Errorf("expected min-length message, got %q", msg)
	}
}

func TestValidate_NameTooLong(t *testing.T) {
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldName, strings.Repeat("a", 51))
	if !strings.Contains(msg, "at most 50") {
		t.Errorf("expected max-length message, got %q", msg)
	}
}

func TestValidate_NameBadCharacters(t *testing.T) {
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldName, "John123")
	if !strings.Contains(msg, "letters and spaces") {
		t.Errorf("expected character message, got %q", msg)
	}
}

func TestValidate_NameLengthCheckedBeforePattern(t *testing.T) {
	// "J3" is both too short and has a digit; the length message wins.
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldName, "J3")
	if !strings.Contains(msg, "at least 3") {
		t.Errorf("expected length message to win, got %q", msg)
	}
}

func TestValidate_NameTrimsWhitespace(t *testing.T) {
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldName, "  John Doe  ")
	if msg != "" {
		t.Errorf("expected surrounding whitespace to be ignored, got %q", msg)
	}
}

// --- Phone validation tests ---

func TestValidate_PhoneValid(t *testing.T) {
	v := newTestValidator(t)
	msg, err := v.Validate(FieldPhone, "9876543210")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "" {
		t.Errorf("expected valid phone, got %q", msg)
	}
}

func TestValidate_PhoneBadLeadingDigit(t *testing.T) {
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldPhone, "1234567890")
	if msg == "" {
		t.Error("expected rejection for leading digit outside 6-9")
	}
}

func TestValidate_PhoneWrongLength(t *testing.T) {
	v := newTestValidator(t)
	for _, phone := range []string{"98765432", "98765432101"} {
		msg, _ := v.Validate(FieldPhone, phone)
		if msg == "" {
			t.Errorf("expected rejection for %q (wrong length)", phone)
		}
	}
}

func TestValidate_PhoneNonNumeric(t *testing.T) {
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldPhone, "98765abcde")
	if msg == "" {
		t.Error("expected rejection for non-numeric phone")
	}
}

// --- Email validation tests ---

func TestValidate_EmailValid(t *testing.T) {
	v := newTestValidator(t)
	for _, email := range []string{"user@example.com", "a.b+c@mail.co.in"} {
		msg, _ := v.Validate(FieldEmail, email)
		if msg != "" {
			t.Errorf("expected %q to be valid, got %q", email, msg)
		}
	}
}

func TestValidate_EmailInvalid(t *testing.T) {
	v := newTestValidator(t)
	for _, email := range []string{"user@example", "not-an-email", "a b@c.d", "@c.d"} {
		msg, _ := v.Validate(FieldEmail, email)
		if msg == "" {
			t.Errorf("expected %q to be rejected", email)
		}
	}
}

// --- Quantity validation tests ---

func TestValidate_QuantityValid(t *testing.T) {
	v := newTestValidator(t)
	for _, q := range []string{"1", "10", "999.5"} {
		msg, _ := v.Validate(FieldQuantity, q)
		if msg != "" {
			t.Errorf("expected %q to be valid, got %q", q, msg)
		}
	}
}

func TestValidate_QuantityNotANumber(t *testing.T) {
	v := newTestValidator(t)
	for _, q := range []string{"abc", "ten", "NaN", "Inf"} {
		msg, _ := v.Validate(FieldQuantity, q)
		if msg == "" {
			t.Errorf("expected %q to be rejected as non-numeric", q)
		}
	}
}

func TestValidate_QuantityBelowMinimum(t *testing.T) {
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldQuantity, "0.5")
	if !strings.Contains(msg, "at least 1") {
		t.Errorf("expected minimum message, got %q", msg)
	}
}

// --- Required / rule-presence tests ---

func TestValidate_RequiredCheckedFirst(t *testing.T) {
	// An empty phone reports "required", not the 10-digit format message.
	v := newTestValidator(t)
	msg, _ := v.Validate(FieldPhone, "   ")
	if !strings.Contains(msg, "required") {
		t.Errorf("expected required message, got %q", msg)
	}
}

func TestValidate_UnconfiguredFieldAlwaysValid(t *testing.T) {
	v, err := NewValidator(map[string]config.FieldRule{
		"name": {Required: true, MinLength: 3},
	})
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	msg, verr := v.Validate(FieldEmail, "definitely not an email")
	if verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	if msg != "" {
		t.Errorf("field without a rule should always pass, got %q", msg)
	}
}

func TestValidate_UnknownFieldKind(t *testing.T) {
	v := newTestValidator(t)
	_, err := v.Validate(FieldKind("address"), "42 Main St")
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := newTestValidator(t)
	inputs := []struct {
		kind FieldKind
		raw  string
	}{
		{FieldName, "Jo"},
		{FieldPhone, "9876543210"},
		{FieldEmail, "bad"},
		{FieldQuantity, "0.5"},
	}
	for _, in := range inputs {
		first, err1 := v.Validate(in.kind, in.raw)
		second, err2 := v.Validate(in.kind, in.raw)
		if first != second || (err1 == nil) != (err2 == nil) {
			t.Errorf("validation of (%s, %q) not idempotent: %q vs %q",
				in.kind, in.raw, first, second)
		}
	}
}

func TestNewValidator_BadPattern(t *testing.T) {
	_, err := NewValidator(map[string]config.FieldRule{
		"email": {Pattern: "["},
	})
	if err == nil {
		t.Error("expected error for unparseable pattern")
	}
}

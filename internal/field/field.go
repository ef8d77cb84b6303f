// Package field classifies placeholder names and validates collected values.
package field

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects the input affordance and validation rule for a field.
type Kind string

const (
	KindText     Kind = "text"
	KindDate     Kind = "date"
	KindCurrency Kind = "currency"
)

// KindOf derives the field kind from the placeholder name. Names mentioning a
// date or deadline are calendar values; names mentioning an amount, value or
// price are currency values; everything else is free text.
func KindOf(name string) Kind {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "date") || strings.Contains(n, "deadline"):
		return KindDate
	case strings.Contains(n, "amount") || strings.Contains(n, "value") || strings.Contains(n, "price"):
		return KindCurrency
	default:
		return KindText
	}
}

// dateLayouts are the calendar formats accepted from users and the model.
var dateLayouts = []string{
	"2 January 2006",
	"January 2, 2006",
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2 Jan 2006",
}

// ParseDate parses a user-supplied calendar value.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a valid calendar date: %q", value)
}

// ValidationError reports one invalid field in a batch.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// Validate checks a raw collected value against the rule for the field's kind.
func Validate(name, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return ValidationError{Field: name, Message: "value must not be empty"}
	}
	switch KindOf(name) {
	case KindDate:
		if _, err := ParseDate(v); err != nil {
			return ValidationError{Field: name, Message: "must be a valid calendar date"}
		}
	case KindCurrency:
		if !validCurrency(v) {
			return ValidationError{Field: name, Message: "must start with a numeric amount"}
		}
	}
	return nil
}

// validCurrency requires the leading whitespace-delimited token, after
// stripping thousands separators and decimal points, to be all digits.
func validCurrency(value string) bool {
	token := strings.Fields(value)[0]
	token = strings.ReplaceAll(token, ",", "")
	token = strings.ReplaceAll(token, ".", "")
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Value is a resolved field value with the textual rendering used when it is
// substituted into section text.
type Value struct {
	Kind   Kind
	Text   string
	Date   time.Time
	Amount string
	Unit   string
}

func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

func DateValue(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

func CurrencyValue(amount, unit string) Value {
	return Value{Kind: KindCurrency, Amount: amount, Unit: unit}
}

// Render produces the substitution text for the value. Dates render as
// dd-mm-yyyy to match the document metadata format.
func (v Value) Render() string {
	switch v.Kind {
	case KindDate:
		return v.Date.Format("02-01-2006")
	case KindCurrency:
		return strings.TrimSpace(v.Amount + " " + v.Unit)
	default:
		return v.Text
	}
}

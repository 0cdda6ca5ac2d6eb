// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validate coerces and checks submitted form values field by field.
// A Form collects every violation in submission order instead of stopping
// at the first one, so a re-rendered form can show all of them at once.
package validate

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FieldError is a single human-readable violation tied to a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is an ordered list of field violations.
type Errors []FieldError

// Error joins all messages, so Errors can travel as an error value.
func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any violation was recorded for field.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// For returns the messages recorded for field, in order.
func (e Errors) For(field string) []string {
	var msgs []string
	for _, fe := range e {
		if fe.Field == field {
			msgs = append(msgs, fe.Message)
		}
	}
	return msgs
}

// Number is the set of numeric types range rules apply to.
type Number interface {
	~int | ~float64
}

// Rule checks a coerced value and returns a message, or "" when it passes.
type Rule[T any] func(T) string

// MinLength fails when the value has fewer than n characters.
func MinLength(n int, msg string) Rule[string] {
	return func(s string) string {
		if utf8.RuneCountInString(s) < n {
			return msg
		}
		return ""
	}
}

// MaxLength fails when the value has more than n characters.
func MaxLength(n int, msg string) Rule[string] {
	return func(s string) string {
		if utf8.RuneCountInString(s) > n {
			return msg
		}
		return ""
	}
}

// Min fails when the value is below n.
func Min[T Number](n T, msg string) Rule[T] {
	return func(v T) string {
		if v < n {
			return msg
		}
		return ""
	}
}

// Max fails when the value is above n.
func Max[T Number](n T, msg string) Rule[T] {
	return func(v T) string {
		if v > n {
			return msg
		}
		return ""
	}
}

// Form reads and validates submitted values, accumulating violations.
type Form struct {
	values url.Values
	errs   Errors
}

// NewForm wraps the submitted values. A nil map behaves as an empty form.
func NewForm(values url.Values) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{values: values}
}

// Add records a violation for field. Later stages such as image checks use
// it to merge their own errors into the same list.
func (f *Form) Add(field, msg string) {
	f.errs = append(f.errs, FieldError{Field: field, Message: msg})
}

// Errors returns all violations recorded so far.
func (f *Form) Errors() Errors {
	return f.errs
}

// Valid reports whether no violations were recorded.
func (f *Form) Valid() bool {
	return len(f.errs) == 0
}

// Text trims the field, runs rules against the trimmed value, and returns
// it escaped. Escaping happens regardless of whether the rules passed.
func (f *Form) Text(field string, rules ...Rule[string]) string {
	v := strings.TrimSpace(f.values.Get(field))
	check(f, field, v, rules)
	return Escape(v)
}

// OptionalText is like Text but an empty value yields nil and skips rules.
func (f *Form) OptionalText(field string, rules ...Rule[string]) *string {
	v := strings.TrimSpace(f.values.Get(field))
	if v == "" {
		return nil
	}
	check(f, field, v, rules)
	escaped := Escape(v)
	return &escaped
}

// Int coerces the field to an integer before running rules. A value that
// is missing or not a whole number records invalidMsg and yields 0.
func (f *Form) Int(field, invalidMsg string, rules ...Rule[int]) int {
	n, err := strconv.Atoi(strings.TrimSpace(f.values.Get(field)))
	if err != nil {
		f.Add(field, invalidMsg)
		return 0
	}
	check(f, field, n, rules)
	return n
}

// Float coerces the field to a float before running rules. An empty value
// yields def; an unparsable one records invalidMsg and yields def.
func (f *Form) Float(field string, def float64, invalidMsg string, rules ...Rule[float64]) float64 {
	raw := strings.TrimSpace(f.values.Get(field))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.Add(field, invalidMsg)
		return def
	}
	check(f, field, n, rules)
	return n
}

// Date parses an optional ISO-8601 calendar date (YYYY-MM-DD).
func (f *Form) Date(field, invalidMsg string) *time.Time {
	raw := strings.TrimSpace(f.values.Get(field))
	if raw == "" {
		return nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		f.Add(field, invalidMsg)
		return nil
	}
	return &d
}

// Bool reads a checkbox: any of "on", "true", "1" counts as checked.
func (f *Form) Bool(field string) bool {
	switch strings.ToLower(strings.TrimSpace(f.values.Get(field))) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// IDs normalizes a repeated field into a list of identifiers. A single value
// becomes a one-element list and an absent field an empty one; an empty list
// records emptyMsg. Each value must be a UUID. Duplicates are dropped,
// keeping the first occurrence.
func (f *Form) IDs(field, emptyMsg, invalidMsg string) []uuid.UUID {
	raw := f.values[field]
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	invalid := false
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			invalid = true
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if invalid {
		f.Add(field, invalidMsg)
	}
	if len(ids) == 0 {
		f.Add(field, emptyMsg)
	}
	return ids
}

func check[T any](f *Form, field string, v T, rules []Rule[T]) {
	for _, rule := range rules {
		if msg := rule(v); msg != "" {
			f.Add(field, msg)
		}
	}
}

// escaper neutralizes markup characters.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Escape replaces HTML-significant characters with entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

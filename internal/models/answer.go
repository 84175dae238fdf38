// internal/models/answer.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Answer holds a single string (text, textarea, radio, select) or an ordered string list (checkbox).
// The zero value is an empty single answer.
type Answer struct {
	text   string
	values []string
	multi  bool
}

func TextAnswer(s string) Answer {
	return Answer{text: s}
}

// MultiAnswer copies values, keeping their order.
func MultiAnswer(values []string) Answer {
	return Answer{values: append([]string{}, values...), multi: true}
}

func (a Answer) IsMulti() bool { return a.multi }

// Text returns the single value; empty for multi answers.
func (a Answer) Text() string { return a.text }

// Values returns a copy of the selected options. A single non-empty answer yields one element.
func (a Answer) Values() []string {
	if a.multi {
		return append([]string{}, a.values...)
	}
	if a.text == "" {
		return []string{}
	}
	return []string{a.text}
}

func (a Answer) IsEmpty() bool {
	if a.multi {
		return len(a.values) == 0
	}
	return a.text == ""
}

// RuneCount is the character count used for length budgets.
func (a Answer) RuneCount() int {
	if a.multi {
		return 0
	}
	return utf8.RuneCountInString(a.text)
}

// Contains reports whether v is among the answer's values.
func (a Answer) Contains(v string) bool {
	for _, x := range a.Values() {
		if x == v {
			return true
		}
	}
	return false
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multi {
		return json.Marshal(a.values)
	}
	return json.Marshal(a.text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = Answer{}
	case data[0] == '[':
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return fmt.Errorf("invalid answer list: %w", err)
		}
		*a = MultiAnswer(vs)
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid answer: %w", err)
		}
		*a = TextAnswer(s)
	}
	return nil
}

// CloneAnswers copies an answer map; Answer values are immutable once built.
func CloneAnswers(in map[string]Answer) map[string]Answer {
	out := make(map[string]Answer, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

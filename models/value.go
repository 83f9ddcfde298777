// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind tags which representation a Value carries.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindNumber
	KindList
	KindRaw
)

// Value is a single answer payload. Text, number and string-list answers
// are decoded into their own fields; anything else is kept as raw JSON.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	List   []string
	Raw    json.RawMessage
}

func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

func NumberValue(f float64) Value {
	return Value{Kind: KindNumber, Number: f}
}

func ListValue(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{Kind: KindList, List: items}
}

func RawValue(raw json.RawMessage) Value {
	return Value{Kind: KindRaw, Raw: append(json.RawMessage(nil), raw...)}
}

// UnmarshalJSON decodes any JSON value. A JSON null or missing value
// decodes to KindEmpty.
func (v *Value) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err == nil {
			*v = ListValue(list...)
			return nil
		}
		if !json.Valid(trimmed) {
			return fmt.Errorf("invalid answer value: %s", trimmed)
		}
		*v = RawValue(trimmed)
	case '{', 't', 'f':
		if !json.Valid(trimmed) {
			return fmt.Errorf("invalid answer value: %s", trimmed)
		}
		*v = RawValue(trimmed)
	default:
		var f float64
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return err
		}
		*v = NumberValue(f)
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindText:
		return json.Marshal(v.Text)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindRaw:
		if len(v.Raw) == 0 {
			return []byte("null"), nil
		}
		return v.Raw, nil
	}
	return []byte("null"), nil
}

// IsEmpty reports whether the answer carries nothing worth storing.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindText:
		return strings.TrimSpace(v.Text) == ""
	case KindNumber:
		return false
	case KindList:
		return len(v.List) == 0
	case KindRaw:
		return len(v.Raw) == 0
	}
	return true
}

// String renders the value for flat exports. Lists are joined with "; ".
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindList:
		return strings.Join(v.List, "; ")
	case KindRaw:
		return string(v.Raw)
	}
	return ""
}

// Strings returns the selections carried by the value. A scalar counts as a
// single selection; a raw JSON array is stringified element by element.
func (v Value) Strings() []string {
	switch v.Kind {
	case KindText:
		if v.Text == "" {
			return nil
		}
		return []string{v.Text}
	case KindNumber:
		return []string{v.String()}
	case KindList:
		return v.List
	case KindRaw:
		var items []any
		if err := json.Unmarshal(v.Raw, &items); err != nil {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if it == nil {
				continue
			}
			out = append(out, fmt.Sprint(it))
		}
		return out
	}
	return nil
}

// Float returns the numeric reading of the value. Numeric strings are
// accepted.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Number, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

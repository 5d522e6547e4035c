package browser

import (
	"encoding/json"
	"fmt"
)

// SettingKind discriminates the three value shapes a setting can hold.
type SettingKind string

const (
	SettingBool SettingKind = "bool"
	SettingInt  SettingKind = "int"
	SettingText SettingKind = "text"
)

// SettingValue is a typed setting entry. The core interprets only
// WarmPoolBudgetKey; every other key is opaque pass-through state that the
// core persists and diffs on behalf of the surrounding application.
type SettingValue struct {
	Kind SettingKind
	Bool bool
	Int  int64
	Text string
}

// BoolSetting wraps a boolean value.
func BoolSetting(v bool) SettingValue {
	return SettingValue{Kind: SettingBool, Bool: v}
}

// IntSetting wraps an integer value.
func IntSetting(v int64) SettingValue {
	return SettingValue{Kind: SettingInt, Int: v}
}

// TextSetting wraps a string value.
func TextSetting(v string) SettingValue {
	return SettingValue{Kind: SettingText, Text: v}
}

// Equal reports whether both values have the same kind and payload.
func (v SettingValue) Equal(other SettingValue) bool {
	return v == other
}

// String renders the payload for logs.
func (v SettingValue) String() string {
	switch v.Kind {
	case SettingBool:
		return fmt.Sprintf("%t", v.Bool)
	case SettingInt:
		return fmt.Sprintf("%d", v.Int)
	case SettingText:
		return v.Text
	default:
		return fmt.Sprintf("invalid(%q)", string(v.Kind))
	}
}

type settingValueJSON struct {
	Kind  SettingKind     `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the value as {"kind": ..., "value": ...}.
func (v SettingValue) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.Kind {
	case SettingBool:
		payload = v.Bool
	case SettingInt:
		payload = v.Int
	case SettingText:
		payload = v.Text
	default:
		return nil, fmt.Errorf("marshaling setting value: unknown kind %q", string(v.Kind))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling setting value: %w", err)
	}

	return json.Marshal(settingValueJSON{Kind: v.Kind, Value: raw})
}

// UnmarshalJSON decodes the {"kind": ..., "value": ...} form.
func (v *SettingValue) UnmarshalJSON(data []byte) error {
	var wire settingValueJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshaling setting value: %w", err)
	}

	switch wire.Kind {
	case SettingBool:
		var b bool
		if err := json.Unmarshal(wire.Value, &b); err != nil {
			return fmt.Errorf("unmarshaling bool setting: %w", err)
		}
		*v = BoolSetting(b)
	case SettingInt:
		var i int64
		if err := json.Unmarshal(wire.Value, &i); err != nil {
			return fmt.Errorf("unmarshaling int setting: %w", err)
		}
		*v = IntSetting(i)
	case SettingText:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return fmt.Errorf("unmarshaling text setting: %w", err)
		}
		*v = TextSetting(s)
	default:
		return fmt.Errorf("unmarshaling setting value: unknown kind %q", string(wire.Kind))
	}

	return nil
}

package ringdown

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Optional is a float64 that may be absent. The zero value is absent.
type Optional struct {
	value   float64
	present bool
}

// Some returns a present value.
func Some(value float64) Optional {
	return Optional{value: value, present: true}
}

// Get returns the value and whether it is present.
func (o Optional) Get() (float64, bool) {
	return o.value, o.present
}

// Present reports whether a value is set.
func (o Optional) Present() bool {
	return o.present
}

// Or returns the value, or fallback when absent.
func (o Optional) Or(fallback float64) float64 {
	if !o.present {
		return fallback
	}

	return o.value
}

// Finite returns the value when it is present and neither NaN nor infinite.
func (o Optional) Finite() (float64, bool) {
	if !o.present || math.IsNaN(o.value) || math.IsInf(o.value, 0) {
		return 0, false
	}

	return o.value, true
}

func (o Optional) String() string {
	if !o.present {
		return "absent"
	}

	return strconv.FormatFloat(o.value, 'g', -1, 64)
}

// MarshalJSON encodes an absent or non-finite value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	value, ok := o.Finite()
	if !ok {
		return []byte("null"), nil
	}

	return json.Marshal(value)
}

// UnmarshalJSON decodes null as absent.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional{}

		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err //nolint:wrapcheck
	}

	*o = Some(value)

	return nil
}

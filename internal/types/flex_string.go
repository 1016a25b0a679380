package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString is a string that can be unmarshaled from either a JSON string or a JSON number.
// Placements and phone numbers arrive both ways from form inputs.
type FlexString string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}

	// Try unmarshaling as a string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	// Try unmarshaling as a number, keeping its literal form
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: unexpected type, expected string or number")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// String converts FlexString back to string.
func (f FlexString) String() string {
	return string(f)
}

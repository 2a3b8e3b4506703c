package models

import (
	"encoding/json"
	"strconv"
)

// FlexInt is an int that unmarshals from either a JSON number or a string.
// Remote structured-extraction backends stringify numbers inconsistently
// (e.g., "credits_used": "5" instead of 5), so responses decode through this.
type FlexInt int

// UnmarshalJSON accepts numeric values and string representations of numbers.
// Anything else decodes to 0.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var intVal int
	if err := json.Unmarshal(data, &intVal); err == nil {
		*f = FlexInt(intVal)
		return nil
	}

	var strVal string
	if err := json.Unmarshal(data, &strVal); err == nil {
		parsed, err := strconv.Atoi(strVal)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(parsed)
		return nil
	}

	*f = 0
	return nil
}

// MarshalJSON always marshals as a numeric value.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int returns the FlexInt as a standard int.
func (f FlexInt) Int() int {
	return int(f)
}

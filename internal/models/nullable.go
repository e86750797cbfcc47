package models

import "encoding/json"

// OptionalUint distinguishes an omitted JSON field from an explicit null.
// Present is false when the key was absent from the payload; Present with a
// nil Value means the key was sent as null. Used for parent references
// where null clears the relationship but omission leaves it untouched.
type OptionalUint struct {
	Present bool
	Value   *uint
}

func (o *OptionalUint) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o OptionalUint) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

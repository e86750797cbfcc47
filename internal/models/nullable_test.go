package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type optionalUintPayload struct {
	ParentID OptionalUint `json:"parentId"`
}

func TestOptionalUint_OmittedKey(t *testing.T) {
	var payload optionalUintPayload
	err := json.Unmarshal([]byte(`{}`), &payload)
	assert.NoError(t, err)
	assert.False(t, payload.ParentID.Present)
	assert.Nil(t, payload.ParentID.Value)
}

func TestOptionalUint_ExplicitNull(t *testing.T) {
	var payload optionalUintPayload
	err := json.Unmarshal([]byte(`{"parentId": null}`), &payload)
	assert.NoError(t, err)
	assert.True(t, payload.ParentID.Present)
	assert.Nil(t, payload.ParentID.Value)
}

func TestOptionalUint_Value(t *testing.T) {
	var payload optionalUintPayload
	err := json.Unmarshal([]byte(`{"parentId": 42}`), &payload)
	assert.NoError(t, err)
	assert.True(t, payload.ParentID.Present)
	if assert.NotNil(t, payload.ParentID.Value) {
		assert.Equal(t, uint(42), *payload.ParentID.Value)
	}
}

func TestOptionalUint_InvalidValue(t *testing.T) {
	var payload optionalUintPayload
	err := json.Unmarshal([]byte(`{"parentId": "abc"}`), &payload)
	assert.Error(t, err)
}

func TestOptionalUint_Marshal(t *testing.T) {
	value := uint(7)
	data, err := json.Marshal(optionalUintPayload{ParentID: OptionalUint{Present: true, Value: &value}})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"parentId": 7}`, string(data))

	data, err = json.Marshal(optionalUintPayload{})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"parentId": null}`, string(data))
}

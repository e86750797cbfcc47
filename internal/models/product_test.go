package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"
)

func TestMeasurementUnitColumnNames(t *testing.T) {
	s, err := schema.Parse(&MeasurementUnit{}, &sync.Map{}, schema.NamingStrategy{})
	assert.NoError(t, err)

	symbol := s.LookUpField("Symbol")
	if assert.NotNil(t, symbol) {
		assert.Equal(t, "sympol", symbol.DBName)
	}

	conversion := s.LookUpField("ConversionFactor")
	if assert.NotNil(t, conversion) {
		assert.Equal(t, "con_fact", conversion.DBName)
	}

	base := s.LookUpField("BaseUnit")
	if assert.NotNil(t, base) {
		assert.Equal(t, "is_base_unit", base.DBName)
	}
}

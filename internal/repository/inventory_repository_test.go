package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"pharmacy-inventory-service/internal/models"
)

// ===========================================
// Stock Level Merge Tests
// ===========================================

func TestMergedStockLevel_PartialOverwrite(t *testing.T) {
	stockType := "available"
	qty := 80
	existing := &models.StockLevel{ID: 9, ProductID: 5, LocationID: 2, StockType: &stockType, OnHandQuantity: &qty}

	newQty := 120
	incoming := &models.StockLevel{ProductID: 5, LocationID: 2, OnHandQuantity: &newQty}

	merged := mergedStockLevel(existing, incoming)

	assert.Equal(t, uint(9), merged.ID)
	assert.Equal(t, 120, *merged.OnHandQuantity)
	assert.Equal(t, "available", *merged.StockType)
	assert.Equal(t, 80, *existing.OnHandQuantity)
}

func TestMergedStockLevel_RepeatedUpsertKeepsOneRow(t *testing.T) {
	qty := 50
	existing := &models.StockLevel{ID: 9, ProductID: 5, LocationID: 2, OnHandQuantity: &qty}

	firstQty := 75
	first := mergedStockLevel(existing, &models.StockLevel{OnHandQuantity: &firstQty})
	secondQty := 90
	second := mergedStockLevel(first, &models.StockLevel{OnHandQuantity: &secondQty})

	assert.Equal(t, uint(9), second.ID)
	assert.Equal(t, 90, *second.OnHandQuantity)
}

func TestMergedStockLevel_NoFieldsSetLeavesRowUnchanged(t *testing.T) {
	stockType := "available"
	qty := 80
	method := "fifo"
	existing := &models.StockLevel{ID: 9, StockType: &stockType, OnHandQuantity: &qty, DispatchMethod: &method}

	merged := mergedStockLevel(existing, &models.StockLevel{})

	assert.Equal(t, uint(9), merged.ID)
	assert.Equal(t, "available", *merged.StockType)
	assert.Equal(t, 80, *merged.OnHandQuantity)
	assert.Equal(t, "fifo", *merged.DispatchMethod)
}

// ===========================================
// Subtree Walk Tests
// ===========================================

func mapChildren(children map[uint][]uint) func([]uint) ([]uint, error) {
	return func(frontier []uint) ([]uint, error) {
		var out []uint
		for _, id := range frontier {
			out = append(out, children[id]...)
		}
		return out, nil
	}
}

func TestWalkSubtree_CollectsDescendants(t *testing.T) {
	children := map[uint][]uint{1: {2, 3}, 2: {4}}

	ids, err := walkSubtree(1, mapChildren(children))

	assert.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2, 3, 4}, ids)
}

func TestWalkSubtree_LeafNode(t *testing.T) {
	ids, err := walkSubtree(7, mapChildren(map[uint][]uint{}))

	assert.NoError(t, err)
	assert.Equal(t, []uint{7}, ids)
}

func TestWalkSubtree_TerminatesOnCycle(t *testing.T) {
	children := map[uint][]uint{1: {2}, 2: {3}, 3: {1}}

	ids, err := walkSubtree(1, mapChildren(children))

	assert.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2, 3}, ids)
}

func TestWalkSubtree_SelfParent(t *testing.T) {
	children := map[uint][]uint{1: {1, 2}}

	ids, err := walkSubtree(1, mapChildren(children))

	assert.NoError(t, err)
	assert.ElementsMatch(t, []uint{1, 2}, ids)
}

func TestWalkSubtree_PropagatesError(t *testing.T) {
	boom := errors.New("query failed")

	ids, err := walkSubtree(1, func(frontier []uint) ([]uint, error) {
		return nil, boom
	})

	assert.Nil(t, ids)
	assert.ErrorIs(t, err, boom)
}

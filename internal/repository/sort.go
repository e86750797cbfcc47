package repository

import (
	"errors"
	"fmt"
	"strings"
)

// Sort errors are client errors: an unknown field or direction must be
// rejected, never silently ignored.
var (
	ErrUnknownSortField = errors.New("unknown sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

var productSortColumns = map[string]string{
	"id":             "id",
	"name":           "name",
	"barcode":        "barcode",
	"sku":            "sku",
	"scientificName": "scientific_name",
	"cost":           "cost",
	"sellingPrice":   "selling_price",
	"createdAt":      "created_at",
}

var batchSortColumns = map[string]string{
	"id":                "id",
	"batchNumber":       "batch_number",
	"quantity":          "quantity",
	"cost":              "cost",
	"stockType":         "stock_type",
	"expiryDate":        "expiry_date",
	"receivingDate":     "receiving_date",
	"manufacturingDate": "manufacturing_date",
	"createdAt":         "created_at",
}

// orderClause maps an exposed sort field to its column and appends an id
// ascending tie-break so equal sort keys paginate deterministically.
func orderClause(columns map[string]string, sortBy, sortOrder string) (string, error) {
	column, ok := columns[sortBy]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSortField, sortBy)
	}

	var direction string
	switch strings.ToLower(sortOrder) {
	case "", "asc":
		direction = "ASC"
	case "desc":
		direction = "DESC"
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidSortOrder, sortOrder)
	}

	if column == "id" {
		return fmt.Sprintf("id %s", direction), nil
	}
	return fmt.Sprintf("%s %s, id ASC", column, direction), nil
}

// ProductOrderClause resolves the sort parameters for a product search.
// An empty sortBy defaults to name ascending.
func ProductOrderClause(sortBy, sortOrder string) (string, error) {
	if sortBy == "" {
		sortBy = "name"
	}
	return orderClause(productSortColumns, sortBy, sortOrder)
}

// BatchOrderClause resolves the sort parameters for a batch search.
// An empty sortBy defaults to id ascending.
func BatchOrderClause(sortBy, sortOrder string) (string, error) {
	if sortBy == "" {
		sortBy = "id"
	}
	return orderClause(batchSortColumns, sortBy, sortOrder)
}

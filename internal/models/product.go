package models

import (
	"time"
)

// Product represents a sellable or stockable pharmacy item
type Product struct {
	ID                  uint                `json:"id" gorm:"primaryKey;autoIncrement"`
	Name                string              `json:"name" gorm:"type:varchar(40);not null;index"`
	Barcode             *string             `json:"barcode,omitempty" gorm:"type:varchar(130)"`
	SKU                 *string             `json:"sku,omitempty" gorm:"column:sku;type:varchar(64)"`
	ScientificName      *string             `json:"scientificName,omitempty" gorm:"type:varchar(40)"`
	Description         *string             `json:"description,omitempty" gorm:"type:text"`
	Cost                *int                `json:"cost,omitempty"`
	SellingPrice        *int                `json:"sellingPrice,omitempty"`
	IsDrug              *bool               `json:"isDrug,omitempty"`
	ControlledSubstance *bool               `json:"controlledSubstance,omitempty"`
	MeasurementUnitID   *uint               `json:"measurementUnitId,omitempty"`
	MeasurementUnit     *MeasurementUnit    `json:"measurementUnit,omitempty" gorm:"foreignKey:MeasurementUnitID"`
	Categories          []Category          `json:"categories,omitempty" gorm:"many2many:products_categories"`
	Ingredients         []ProductIngredient `json:"ingredients,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// Category groups products (antibiotics, painkillers, ...)
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(30);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Ingredient is an active substance linked to products with an amount
type Ingredient struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(30);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	Active      *bool     `json:"active,omitempty" gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductIngredient links a product to an ingredient with a dosage amount.
// The (product, ingredient) pair is unique; a repeated link updates the amount.
type ProductIngredient struct {
	ID           uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID    uint        `json:"productId" gorm:"not null;uniqueIndex:idx_product_ingredient"`
	IngredientID uint        `json:"ingredientId" gorm:"not null;uniqueIndex:idx_product_ingredient"`
	Ingredient   *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
	Amount       int         `json:"amount" gorm:"not null"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// MeasurementUnit is a unit of measure (mg, ml, tablet), optionally derived
// from a base unit through a conversion factor
type MeasurementUnit struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name             string    `json:"name" gorm:"type:varchar(30);not null"`
	BaseUnit         *bool     `json:"baseUnit,omitempty" gorm:"column:is_base_unit"`
	ConversionFactor *int      `json:"conversionFactor,omitempty" gorm:"column:con_fact"`
	Description      *string   `json:"description,omitempty" gorm:"type:text"`
	// The misspelled column name is kept for compatibility with the
	// pre-existing schema
	Symbol           *string   `json:"symbol,omitempty" gorm:"column:sympol;type:varchar(30)"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

func (Category) TableName() string {
	return "categories"
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (ProductIngredient) TableName() string {
	return "product_ingredients"
}

func (MeasurementUnit) TableName() string {
	return "measurement_units"
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name                string  `json:"name" binding:"required,max=40"`
	Barcode             *string `json:"barcode,omitempty" binding:"omitempty,max=130"`
	SKU                 *string `json:"sku,omitempty" binding:"omitempty,max=64"`
	ScientificName      *string `json:"scientificName,omitempty" binding:"omitempty,max=40"`
	Description         *string `json:"description,omitempty"`
	Cost                *int    `json:"cost,omitempty" binding:"omitempty,gte=0"`
	SellingPrice        *int    `json:"sellingPrice,omitempty" binding:"omitempty,gte=0"`
	IsDrug              *bool   `json:"isDrug,omitempty"`
	ControlledSubstance *bool   `json:"controlledSubstance,omitempty"`
	MeasurementUnitID   *uint   `json:"measurementUnitId,omitempty"`
}

// UpdateProductRequest represents a partial update; nil fields are left unchanged
type UpdateProductRequest struct {
	Name                *string `json:"name,omitempty" binding:"omitempty,max=40"`
	Barcode             *string `json:"barcode,omitempty" binding:"omitempty,max=130"`
	SKU                 *string `json:"sku,omitempty" binding:"omitempty,max=64"`
	ScientificName      *string `json:"scientificName,omitempty" binding:"omitempty,max=40"`
	Description         *string `json:"description,omitempty"`
	Cost                *int    `json:"cost,omitempty" binding:"omitempty,gte=0"`
	SellingPrice        *int    `json:"sellingPrice,omitempty" binding:"omitempty,gte=0"`
	IsDrug              *bool   `json:"isDrug,omitempty"`
	ControlledSubstance *bool   `json:"controlledSubstance,omitempty"`
	MeasurementUnitID   *uint   `json:"measurementUnitId,omitempty"`
}

// SearchProductsRequest carries the optional product search criteria.
// Filter matches name OR barcode OR sku, case-insensitive substring.
type SearchProductsRequest struct {
	Filter              *string `form:"filter"`
	CategoryID          *uint   `form:"categoryId"`
	IsDrug              *bool   `form:"isDrug"`
	ControlledSubstance *bool   `form:"controlledSubstance"`
	Page                int     `form:"page"`
	Size                int     `form:"size"`
	SortBy              string  `form:"sortBy"`
	SortOrder           string  `form:"sortOrder"`
}

// UpsertIngredientLinkRequest links an ingredient to a product or updates the amount
type UpsertIngredientLinkRequest struct {
	IngredientID uint `json:"ingredientId" binding:"required"`
	Amount       *int `json:"amount" binding:"required,gte=0"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=30"`
	Description *string `json:"description,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=30"`
	Description *string `json:"description,omitempty"`
}

type CreateIngredientRequest struct {
	Name        string  `json:"name" binding:"required,max=30"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

type UpdateIngredientRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=30"`
	Description *string `json:"description,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

type CreateMeasurementUnitRequest struct {
	Name             string  `json:"name" binding:"required,max=30"`
	BaseUnit         *bool   `json:"baseUnit,omitempty"`
	ConversionFactor *int    `json:"conversionFactor,omitempty" binding:"omitempty,gte=0"`
	Description      *string `json:"description,omitempty"`
	Symbol           *string `json:"symbol,omitempty" binding:"omitempty,max=30"`
}

type UpdateMeasurementUnitRequest struct {
	Name             *string `json:"name,omitempty" binding:"omitempty,max=30"`
	BaseUnit         *bool   `json:"baseUnit,omitempty"`
	ConversionFactor *int    `json:"conversionFactor,omitempty" binding:"omitempty,gte=0"`
	Description      *string `json:"description,omitempty"`
	Symbol           *string `json:"symbol,omitempty" binding:"omitempty,max=30"`
}

// PaginationInfo describes one page of a search result. Page is 0-based.
type PaginationInfo struct {
	Page        int   `json:"page"`
	Size        int   `json:"size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data,omitempty"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

type CategoryResponse struct {
	Success bool      `json:"success"`
	Data    *Category `json:"data,omitempty"`
	Message *string   `json:"message,omitempty"`
}

type CategoryListResponse struct {
	Success bool       `json:"success"`
	Data    []Category `json:"data"`
}

type IngredientResponse struct {
	Success bool        `json:"success"`
	Data    *Ingredient `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

type IngredientListResponse struct {
	Success bool         `json:"success"`
	Data    []Ingredient `json:"data"`
}

type ProductIngredientResponse struct {
	Success bool               `json:"success"`
	Data    *ProductIngredient `json:"data,omitempty"`
	Message *string            `json:"message,omitempty"`
}

type ProductIngredientListResponse struct {
	Success bool                `json:"success"`
	Data    []ProductIngredient `json:"data"`
}

type MeasurementUnitResponse struct {
	Success bool             `json:"success"`
	Data    *MeasurementUnit `json:"data,omitempty"`
	Message *string          `json:"message,omitempty"`
}

type MeasurementUnitListResponse struct {
	Success bool              `json:"success"`
	Data    []MeasurementUnit `json:"data"`
}

// FieldError describes a single request-shape validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

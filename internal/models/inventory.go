package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LocationType string

const (
	LocationTypeBranch     LocationType = "branch"
	LocationTypeWarehouse  LocationType = "warehouse"
	LocationTypeExternal   LocationType = "external"
	LocationTypeSupplier   LocationType = "supplier"
	LocationTypeQuarantine LocationType = "quarantine"
)

type LocationStatus string

const (
	LocationStatusActive   LocationStatus = "active"
	LocationStatusInactive LocationStatus = "inactive"
)

// StockType is the lifecycle state of a batch
type StockType string

const (
	StockTypeAvailable   StockType = "available"
	StockTypeNearExpiry  StockType = "near_expiry"
	StockTypeRemoved     StockType = "removed"
	StockTypeExpired     StockType = "expired"
	StockTypeDisposed    StockType = "disposed"
	StockTypeDamaged     StockType = "damaged"
	StockTypeQuarantined StockType = "quarantined"
)

type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Location is a physical place that stocks batches (branch, warehouse, ...).
// Locations form an unbounded parent/child hierarchy; no cycle check is made.
type Location struct {
	ID               uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	LocationName     string         `json:"locationName" gorm:"type:varchar(100);not null"`
	LocationType     LocationType   `json:"locationType" gorm:"type:varchar(20);not null"`
	ParentLocationID *uint          `json:"parentLocationId,omitempty"`
	ParentLocation   *Location      `json:"parentLocation,omitempty" gorm:"foreignKey:ParentLocationID"`
	ChildLocations   []Location     `json:"childLocations,omitempty" gorm:"foreignKey:ParentLocationID"`
	IsDirectToMain   *bool          `json:"isDirectToMain,omitempty"`
	Address          *string        `json:"address,omitempty" gorm:"type:varchar(255)"`
	Status           LocationStatus `json:"status" gorm:"type:varchar(10);not null;default:active"`
	Shelves          []Shelf        `json:"shelves,omitempty" gorm:"foreignKey:LocationID"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Shelf is a storage slot inside a location
type Shelf struct {
	ID             uint                  `json:"id" gorm:"primaryKey;autoIncrement"`
	LocationID     uint                  `json:"locationId" gorm:"not null;index"`
	OnHandQty      *int                  `json:"onHandQty,omitempty"`
	DispatchMethod *string               `json:"dispatchMethod,omitempty" gorm:"type:varchar(50)"`
	Allocations    []BatchShelfAllocation `json:"allocations,omitempty" gorm:"foreignKey:ShelfID"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// Batch is a received quantity of one product at one location, tracked with
// its own expiry and stock-type state. SupplierID is a plain column with no
// foreign key constraint.
type Batch struct {
	ID                uint                   `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID         uint                   `json:"productId" gorm:"not null;index"`
	Product           *Product               `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	LocationID        uint                   `json:"locationId" gorm:"not null;index"`
	Location          *Location              `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	StockType         StockType              `json:"stockType" gorm:"type:varchar(20);not null;default:available"`
	Quantity          int                    `json:"quantity" gorm:"not null"`
	BatchNumber       *string                `json:"batchNumber,omitempty" gorm:"type:varchar(50)"`
	Cost              *int                   `json:"cost,omitempty"`
	SupplierID        *uint                  `json:"supplierId,omitempty"`
	ManufacturingDate *time.Time             `json:"manufacturingDate,omitempty" gorm:"type:date"`
	ExpiryDate        *time.Time             `json:"expiryDate,omitempty" gorm:"type:date;index"`
	ReceivingDate     *time.Time             `json:"receivingDate,omitempty" gorm:"type:date"`
	AlertDate         *time.Time             `json:"alertDate,omitempty" gorm:"type:date"`
	ClearanceDate     *time.Time             `json:"clearanceDate,omitempty" gorm:"type:date"`
	ParentBatchID     *uint                  `json:"parentBatchId,omitempty"`
	ParentBatch       *Batch                 `json:"parentBatch,omitempty" gorm:"foreignKey:ParentBatchID"`
	ChildBatches      []Batch                `json:"childBatches,omitempty" gorm:"foreignKey:ParentBatchID"`
	Allocations       []BatchShelfAllocation `json:"allocations,omitempty" gorm:"foreignKey:BatchID"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// BatchShelfAllocation records how much of a batch sits on a specific shelf
type BatchShelfAllocation struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	BatchID   uint      `json:"batchId" gorm:"not null;index"`
	ShelfID   uint      `json:"shelfId" gorm:"not null;index"`
	Shelf     *Shelf    `json:"shelf,omitempty" gorm:"foreignKey:ShelfID"`
	Quantity  *int      `json:"quantity,omitempty"`
	Threshold *int      `json:"threshold,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Supplier struct {
	ID            uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	SupplierName  string           `json:"supplierName" gorm:"type:varchar(30);not null"`
	SupplierPhone *string          `json:"supplierPhone,omitempty" gorm:"type:varchar(30)"`
	SupplierEmail *string          `json:"supplierEmail,omitempty" gorm:"type:varchar(30)"`
	Country       *string          `json:"country,omitempty" gorm:"type:varchar(30)"`
	Rating        *decimal.Decimal `json:"rating,omitempty" gorm:"type:decimal(10,2)"`
	Currency      *string          `json:"currency,omitempty" gorm:"type:varchar(10)"`
	ActiveStatus  SupplierStatus   `json:"activeStatus" gorm:"type:varchar(10);not null;default:active"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// StockLevel is the aggregate on-hand quantity for a (product, location)
// pair, independent of batch granularity. At most one record per pair.
type StockLevel struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID      uint      `json:"productId" gorm:"not null;uniqueIndex:idx_stock_product_location"`
	LocationID     uint      `json:"locationId" gorm:"not null;uniqueIndex:idx_stock_product_location"`
	StockType      *string   `json:"stockType,omitempty" gorm:"type:varchar(13)"`
	OnHandQuantity *int      `json:"onHandQuantity,omitempty"`
	DispatchMethod *string   `json:"dispatchMethod,omitempty" gorm:"type:varchar(50)"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Location) TableName() string {
	return "locations"
}

func (Shelf) TableName() string {
	return "shelves"
}

func (Batch) TableName() string {
	return "batches"
}

func (BatchShelfAllocation) TableName() string {
	return "batch_shelf_allocations"
}

func (Supplier) TableName() string {
	return "suppliers"
}

func (StockLevel) TableName() string {
	return "stock_levels"
}

type CreateLocationRequest struct {
	LocationName     string       `json:"locationName" binding:"required,max=100"`
	LocationType     LocationType `json:"locationType" binding:"required,oneof=branch warehouse external supplier quarantine"`
	ParentLocationID *uint        `json:"parentLocationId,omitempty"`
	IsDirectToMain   *bool        `json:"isDirectToMain,omitempty"`
	Address          *string      `json:"address,omitempty" binding:"omitempty,max=255"`
	Status           *LocationStatus `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
}

// UpdateLocationRequest is a partial update. ParentLocationID is tri-state:
// omitted leaves the parent untouched, explicit null clears it.
type UpdateLocationRequest struct {
	LocationName     *string         `json:"locationName,omitempty" binding:"omitempty,max=100"`
	LocationType     *LocationType   `json:"locationType,omitempty" binding:"omitempty,oneof=branch warehouse external supplier quarantine"`
	ParentLocationID OptionalUint    `json:"parentLocationId,omitempty"`
	IsDirectToMain   *bool           `json:"isDirectToMain,omitempty"`
	Address          *string         `json:"address,omitempty" binding:"omitempty,max=255"`
	Status           *LocationStatus `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
}

type SearchLocationsRequest struct {
	LocationType *string `form:"locationType"`
	Status       *string `form:"status"`
}

type CreateShelfRequest struct {
	OnHandQty      *int    `json:"onHandQty,omitempty" binding:"omitempty,gte=0"`
	DispatchMethod *string `json:"dispatchMethod,omitempty" binding:"omitempty,max=50"`
}

type UpdateShelfRequest struct {
	OnHandQty      *int    `json:"onHandQty,omitempty" binding:"omitempty,gte=0"`
	DispatchMethod *string `json:"dispatchMethod,omitempty" binding:"omitempty,max=50"`
}

type CreateBatchRequest struct {
	ProductID         uint       `json:"productId" binding:"required"`
	LocationID        uint       `json:"locationId" binding:"required"`
	StockType         *StockType `json:"stockType,omitempty" binding:"omitempty,oneof=available near_expiry removed expired disposed damaged quarantined"`
	Quantity          *int       `json:"quantity" binding:"required,gte=0"`
	BatchNumber       *string    `json:"batchNumber,omitempty" binding:"omitempty,max=50"`
	Cost              *int       `json:"cost,omitempty" binding:"omitempty,gte=0"`
	SupplierID        *uint      `json:"supplierId,omitempty"`
	ManufacturingDate *time.Time `json:"manufacturingDate,omitempty"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	ReceivingDate     *time.Time `json:"receivingDate,omitempty"`
	AlertDate         *time.Time `json:"alertDate,omitempty"`
	ClearanceDate     *time.Time `json:"clearanceDate,omitempty"`
	ParentBatchID     *uint      `json:"parentBatchId,omitempty"`
}

// UpdateBatchRequest is a partial update. ParentBatchID is tri-state:
// omitted leaves the parent untouched, explicit null clears it.
type UpdateBatchRequest struct {
	ProductID         *uint        `json:"productId,omitempty"`
	LocationID        *uint        `json:"locationId,omitempty"`
	StockType         *StockType   `json:"stockType,omitempty" binding:"omitempty,oneof=available near_expiry removed expired disposed damaged quarantined"`
	Quantity          *int         `json:"quantity,omitempty" binding:"omitempty,gte=0"`
	BatchNumber       *string      `json:"batchNumber,omitempty" binding:"omitempty,max=50"`
	Cost              *int         `json:"cost,omitempty" binding:"omitempty,gte=0"`
	SupplierID        *uint        `json:"supplierId,omitempty"`
	ManufacturingDate *time.Time   `json:"manufacturingDate,omitempty"`
	ExpiryDate        *time.Time   `json:"expiryDate,omitempty"`
	ReceivingDate     *time.Time   `json:"receivingDate,omitempty"`
	AlertDate         *time.Time   `json:"alertDate,omitempty"`
	ClearanceDate     *time.Time   `json:"clearanceDate,omitempty"`
	ParentBatchID     OptionalUint `json:"parentBatchId,omitempty"`
}

// SearchBatchesRequest carries the optional batch search criteria.
// ExpiresBefore is inclusive of the boundary date.
type SearchBatchesRequest struct {
	ProductID     *uint      `form:"productId"`
	LocationID    *uint      `form:"locationId"`
	StockType     *string    `form:"stockType"`
	BatchNumber   *string    `form:"batchNumber"`
	ExpiresBefore *time.Time `form:"expiresBefore" time_format:"2006-01-02"`
	Page          int        `form:"page"`
	Size          int        `form:"size"`
	SortBy        string     `form:"sortBy"`
	SortOrder     string     `form:"sortOrder"`
}

type CreateAllocationRequest struct {
	ShelfID   uint `json:"shelfId" binding:"required"`
	Quantity  *int `json:"quantity,omitempty" binding:"omitempty,gte=0"`
	Threshold *int `json:"threshold,omitempty" binding:"omitempty,gte=0"`
}

type UpdateAllocationRequest struct {
	ShelfID   *uint `json:"shelfId,omitempty"`
	Quantity  *int  `json:"quantity,omitempty" binding:"omitempty,gte=0"`
	Threshold *int  `json:"threshold,omitempty" binding:"omitempty,gte=0"`
}

type CreateSupplierRequest struct {
	SupplierName  string           `json:"supplierName" binding:"required,max=30"`
	SupplierPhone *string          `json:"supplierPhone,omitempty" binding:"omitempty,max=30"`
	SupplierEmail *string          `json:"supplierEmail,omitempty" binding:"omitempty,max=30"`
	Country       *string          `json:"country,omitempty" binding:"omitempty,max=30"`
	Rating        *decimal.Decimal `json:"rating,omitempty"`
	Currency      *string          `json:"currency,omitempty" binding:"omitempty,max=10"`
	ActiveStatus  *SupplierStatus  `json:"activeStatus,omitempty" binding:"omitempty,oneof=active inactive"`
}

type UpdateSupplierRequest struct {
	SupplierName  *string          `json:"supplierName,omitempty" binding:"omitempty,max=30"`
	SupplierPhone *string          `json:"supplierPhone,omitempty" binding:"omitempty,max=30"`
	SupplierEmail *string          `json:"supplierEmail,omitempty" binding:"omitempty,max=30"`
	Country       *string          `json:"country,omitempty" binding:"omitempty,max=30"`
	Rating        *decimal.Decimal `json:"rating,omitempty"`
	Currency      *string          `json:"currency,omitempty" binding:"omitempty,max=10"`
	ActiveStatus  *SupplierStatus  `json:"activeStatus,omitempty" binding:"omitempty,oneof=active inactive"`
}

type SearchSuppliersRequest struct {
	Country      *string `form:"country"`
	ActiveStatus *string `form:"activeStatus"`
}

// CreateStockLevelRequest is an upsert: an existing (productId, locationId)
// record is updated instead of duplicated.
type CreateStockLevelRequest struct {
	ProductID      uint    `json:"productId" binding:"required"`
	LocationID     uint    `json:"locationId" binding:"required"`
	StockType      *string `json:"stockType,omitempty" binding:"omitempty,max=13"`
	OnHandQuantity *int    `json:"onHandQuantity,omitempty" binding:"omitempty,gte=0"`
	DispatchMethod *string `json:"dispatchMethod,omitempty" binding:"omitempty,max=50"`
}

type UpdateStockLevelRequest struct {
	StockType      *string `json:"stockType,omitempty" binding:"omitempty,max=13"`
	OnHandQuantity *int    `json:"onHandQuantity,omitempty" binding:"omitempty,gte=0"`
	DispatchMethod *string `json:"dispatchMethod,omitempty" binding:"omitempty,max=50"`
}

type LocationResponse struct {
	Success bool      `json:"success"`
	Data    *Location `json:"data,omitempty"`
	Message *string   `json:"message,omitempty"`
}

type LocationListResponse struct {
	Success bool       `json:"success"`
	Data    []Location `json:"data"`
}

type ShelfResponse struct {
	Success bool    `json:"success"`
	Data    *Shelf  `json:"data,omitempty"`
	Message *string `json:"message,omitempty"`
}

type ShelfListResponse struct {
	Success bool    `json:"success"`
	Data    []Shelf `json:"data"`
}

type BatchResponse struct {
	Success bool    `json:"success"`
	Data    *Batch  `json:"data,omitempty"`
	Message *string `json:"message,omitempty"`
}

type BatchListResponse struct {
	Success    bool            `json:"success"`
	Data       []Batch         `json:"data"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

type AllocationResponse struct {
	Success bool                  `json:"success"`
	Data    *BatchShelfAllocation `json:"data,omitempty"`
	Message *string               `json:"message,omitempty"`
}

type AllocationListResponse struct {
	Success bool                   `json:"success"`
	Data    []BatchShelfAllocation `json:"data"`
}

type SupplierResponse struct {
	Success bool      `json:"success"`
	Data    *Supplier `json:"data,omitempty"`
	Message *string   `json:"message,omitempty"`
}

type SupplierListResponse struct {
	Success bool       `json:"success"`
	Data    []Supplier `json:"data"`
}

type StockLevelResponse struct {
	Success bool        `json:"success"`
	Data    *StockLevel `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

type StockLevelListResponse struct {
	Success bool         `json:"success"`
	Data    []StockLevel `json:"data"`
}

package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharmacy-inventory-service/internal/models"
)

// InventoryRepositoryInterface defines the stock-side data access contract
type InventoryRepositoryInterface interface {
	SearchLocations(req *models.SearchLocationsRequest) ([]models.Location, error)
	GetLocationByID(id uint) (*models.Location, error)
	CreateLocation(location *models.Location) error
	UpdateLocation(location *models.Location) error
	DeleteLocation(id uint) error
	LocationExists(id uint) (bool, error)

	ListShelvesByLocation(locationID uint) ([]models.Shelf, error)
	GetShelfByID(id uint) (*models.Shelf, error)
	CreateShelf(shelf *models.Shelf) error
	UpdateShelf(shelf *models.Shelf) error
	DeleteShelf(id uint) error
	ShelfExists(id uint) (bool, error)

	SearchBatches(req *models.SearchBatchesRequest) ([]models.Batch, int64, error)
	GetBatchByID(id uint) (*models.Batch, error)
	CreateBatch(batch *models.Batch) error
	UpdateBatch(batch *models.Batch) error
	DeleteBatch(id uint) error
	BatchExists(id uint) (bool, error)

	ListAllocationsByBatch(batchID uint) ([]models.BatchShelfAllocation, error)
	GetAllocationByID(id uint) (*models.BatchShelfAllocation, error)
	CreateAllocation(allocation *models.BatchShelfAllocation) error
	UpdateAllocation(allocation *models.BatchShelfAllocation) error
	DeleteAllocation(id uint) error

	ListStockLevels(productID, locationID *uint) ([]models.StockLevel, error)
	GetStockLevelByID(id uint) (*models.StockLevel, error)
	UpsertStockLevel(level *models.StockLevel) (*models.StockLevel, error)
	UpdateStockLevel(level *models.StockLevel) error
	DeleteStockLevel(id uint) error
	ProductExists(id uint) (bool, error)

	SearchSuppliers(req *models.SearchSuppliersRequest) ([]models.Supplier, error)
	GetSupplierByID(id uint) (*models.Supplier, error)
	CreateSupplier(supplier *models.Supplier) error
	UpdateSupplier(supplier *models.Supplier) error
	DeleteSupplier(id uint) error
}

type InventoryRepository struct {
	db     *gorm.DB
	logger *logrus.Entry
}

var _ InventoryRepositoryInterface = (*InventoryRepository)(nil)

func NewInventoryRepository(db *gorm.DB, logger *logrus.Logger) *InventoryRepository {
	return &InventoryRepository{
		db:     db,
		logger: logger.WithField("component", "inventory-repository"),
	}
}

func applyLocationFilters(query *gorm.DB, req *models.SearchLocationsRequest) *gorm.DB {
	if req.LocationType != nil && strings.TrimSpace(*req.LocationType) != "" {
		query = query.Where("location_type = ?", strings.TrimSpace(*req.LocationType))
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*req.Status))
	}
	return query
}

func (r *InventoryRepository) SearchLocations(req *models.SearchLocationsRequest) ([]models.Location, error) {
	var locations []models.Location
	query := applyLocationFilters(r.db.Model(&models.Location{}), req)
	if err := query.Order("id ASC").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to search locations: %w", err)
	}
	return locations, nil
}

func (r *InventoryRepository) GetLocationByID(id uint) (*models.Location, error) {
	var location models.Location
	err := r.db.
		Preload("ParentLocation").
		Preload("ChildLocations").
		Preload("Shelves").
		First(&location, id).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *InventoryRepository) CreateLocation(location *models.Location) error {
	return r.db.Create(location).Error
}

// UpdateLocation writes all columns, so a nil ParentLocationID persists as
// NULL and clears the parent link.
func (r *InventoryRepository) UpdateLocation(location *models.Location) error {
	return r.db.Omit(clause.Associations).Save(location).Error
}

// DeleteLocation removes the location subtree: descendant locations, their
// shelves and the allocations on those shelves, all in one transaction.
// Batches still pointing at any of the locations make the delete fail on the
// foreign key rather than leave dangling references.
func (r *InventoryRepository) DeleteLocation(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var location models.Location
		if err := tx.First(&location, id).Error; err != nil {
			return err
		}

		ids, err := collectSubtreeIDs(tx, &models.Location{}, "parent_location_id", id)
		if err != nil {
			return err
		}

		var shelfIDs []uint
		if err := tx.Model(&models.Shelf{}).Where("location_id IN ?", ids).Pluck("id", &shelfIDs).Error; err != nil {
			return err
		}
		if len(shelfIDs) > 0 {
			if err := tx.Where("shelf_id IN ?", shelfIDs).Delete(&models.BatchShelfAllocation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", shelfIDs).Delete(&models.Shelf{}).Error; err != nil {
				return err
			}
		}

		return tx.Where("id IN ?", ids).Delete(&models.Location{}).Error
	})
}

func (r *InventoryRepository) LocationExists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Location{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *InventoryRepository) ListShelvesByLocation(locationID uint) ([]models.Shelf, error) {
	var shelves []models.Shelf
	err := r.db.Where("location_id = ?", locationID).Order("id ASC").Find(&shelves).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shelves: %w", err)
	}
	return shelves, nil
}

func (r *InventoryRepository) GetShelfByID(id uint) (*models.Shelf, error) {
	var shelf models.Shelf
	if err := r.db.Preload("Allocations").First(&shelf, id).Error; err != nil {
		return nil, err
	}
	return &shelf, nil
}

func (r *InventoryRepository) CreateShelf(shelf *models.Shelf) error {
	return r.db.Create(shelf).Error
}

func (r *InventoryRepository) UpdateShelf(shelf *models.Shelf) error {
	return r.db.Omit(clause.Associations).Save(shelf).Error
}

func (r *InventoryRepository) DeleteShelf(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var shelf models.Shelf
		if err := tx.First(&shelf, id).Error; err != nil {
			return err
		}
		if err := tx.Where("shelf_id = ?", id).Delete(&models.BatchShelfAllocation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Shelf{}, id).Error
	})
}

func (r *InventoryRepository) ShelfExists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Shelf{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyBatchFilters chains the optional search criteria onto the query.
// Absent criteria leave the query untouched (match all). ExpiresBefore is
// inclusive of the boundary date.
func applyBatchFilters(query *gorm.DB, req *models.SearchBatchesRequest) *gorm.DB {
	if req.ProductID != nil {
		query = query.Where("product_id = ?", *req.ProductID)
	}
	if req.LocationID != nil {
		query = query.Where("location_id = ?", *req.LocationID)
	}
	if req.StockType != nil && strings.TrimSpace(*req.StockType) != "" {
		query = query.Where("stock_type = ?", strings.TrimSpace(*req.StockType))
	}
	if req.BatchNumber != nil && strings.TrimSpace(*req.BatchNumber) != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(*req.BatchNumber)) + "%"
		query = query.Where("LOWER(batch_number) LIKE ?", pattern)
	}
	if req.ExpiresBefore != nil {
		query = query.Where("expiry_date <= ?", *req.ExpiresBefore)
	}
	return query
}

func (r *InventoryRepository) SearchBatches(req *models.SearchBatchesRequest) ([]models.Batch, int64, error) {
	order, err := BatchOrderClause(req.SortBy, req.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	query := applyBatchFilters(r.db.Model(&models.Batch{}), req)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count batches: %w", err)
	}

	var batches []models.Batch
	err = query.
		Order(order).
		Offset(req.Page * req.Size).
		Limit(req.Size).
		Preload("Product").
		Preload("Location").
		Find(&batches).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search batches: %w", err)
	}

	return batches, total, nil
}

func (r *InventoryRepository) GetBatchByID(id uint) (*models.Batch, error) {
	var batch models.Batch
	err := r.db.
		Preload("Product").
		Preload("Location").
		Preload("ParentBatch").
		Preload("Allocations").
		First(&batch, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *InventoryRepository) CreateBatch(batch *models.Batch) error {
	return r.db.Create(batch).Error
}

// UpdateBatch writes all columns, so a nil ParentBatchID persists as NULL
// and clears the parent link.
func (r *InventoryRepository) UpdateBatch(batch *models.Batch) error {
	return r.db.Omit(clause.Associations).Save(batch).Error
}

// DeleteBatch removes the batch subtree (child batches) and every shelf
// allocation belonging to those batches in one transaction.
func (r *InventoryRepository) DeleteBatch(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var batch models.Batch
		if err := tx.First(&batch, id).Error; err != nil {
			return err
		}

		ids, err := collectSubtreeIDs(tx, &models.Batch{}, "parent_batch_id", id)
		if err != nil {
			return err
		}

		if err := tx.Where("batch_id IN ?", ids).Delete(&models.BatchShelfAllocation{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Batch{}).Error
	})
}

func (r *InventoryRepository) BatchExists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Batch{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *InventoryRepository) ListAllocationsByBatch(batchID uint) ([]models.BatchShelfAllocation, error) {
	var allocations []models.BatchShelfAllocation
	err := r.db.
		Preload("Shelf").
		Where("batch_id = ?", batchID).
		Order("id ASC").
		Find(&allocations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return allocations, nil
}

func (r *InventoryRepository) GetAllocationByID(id uint) (*models.BatchShelfAllocation, error) {
	var allocation models.BatchShelfAllocation
	if err := r.db.Preload("Shelf").First(&allocation, id).Error; err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *InventoryRepository) CreateAllocation(allocation *models.BatchShelfAllocation) error {
	return r.db.Create(allocation).Error
}

func (r *InventoryRepository) UpdateAllocation(allocation *models.BatchShelfAllocation) error {
	return r.db.Omit(clause.Associations).Save(allocation).Error
}

func (r *InventoryRepository) DeleteAllocation(id uint) error {
	result := r.db.Delete(&models.BatchShelfAllocation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InventoryRepository) ListStockLevels(productID, locationID *uint) ([]models.StockLevel, error) {
	query := r.db.Model(&models.StockLevel{})
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	if locationID != nil {
		query = query.Where("location_id = ?", *locationID)
	}

	var levels []models.StockLevel
	if err := query.Order("id ASC").Find(&levels).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}
	return levels, nil
}

func (r *InventoryRepository) GetStockLevelByID(id uint) (*models.StockLevel, error) {
	var level models.StockLevel
	if err := r.db.First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

// mergedStockLevel overwrites the set fields of existing with those carried
// by incoming, keeping the row identity and the untouched fields.
func mergedStockLevel(existing, incoming *models.StockLevel) *models.StockLevel {
	merged := *existing
	if incoming.StockType != nil {
		merged.StockType = incoming.StockType
	}
	if incoming.OnHandQuantity != nil {
		merged.OnHandQuantity = incoming.OnHandQuantity
	}
	if incoming.DispatchMethod != nil {
		merged.DispatchMethod = incoming.DispatchMethod
	}
	return &merged
}

// UpsertStockLevel creates the record or, when one already exists for the
// (product, location) pair, overwrites its set fields. At most one record
// per pair ever exists.
func (r *InventoryRepository) UpsertStockLevel(level *models.StockLevel) (*models.StockLevel, error) {
	var result *models.StockLevel
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StockLevel
		err := tx.Where("product_id = ? AND location_id = ?", level.ProductID, level.LocationID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(level).Error; err != nil {
				return err
			}
			result = level
			return nil
		}
		if err != nil {
			return err
		}

		merged := mergedStockLevel(&existing, level)
		if err := tx.Save(merged).Error; err != nil {
			return err
		}
		result = merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *InventoryRepository) UpdateStockLevel(level *models.StockLevel) error {
	return r.db.Save(level).Error
}

func (r *InventoryRepository) DeleteStockLevel(id uint) error {
	result := r.db.Delete(&models.StockLevel{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InventoryRepository) ProductExists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applySupplierFilters(query *gorm.DB, req *models.SearchSuppliersRequest) *gorm.DB {
	if req.Country != nil && strings.TrimSpace(*req.Country) != "" {
		query = query.Where("country = ?", strings.TrimSpace(*req.Country))
	}
	if req.ActiveStatus != nil && strings.TrimSpace(*req.ActiveStatus) != "" {
		query = query.Where("active_status = ?", strings.TrimSpace(*req.ActiveStatus))
	}
	return query
}

func (r *InventoryRepository) SearchSuppliers(req *models.SearchSuppliersRequest) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	query := applySupplierFilters(r.db.Model(&models.Supplier{}), req)
	if err := query.Order("id ASC").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("failed to search suppliers: %w", err)
	}
	return suppliers, nil
}

func (r *InventoryRepository) GetSupplierByID(id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.First(&supplier, id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *InventoryRepository) CreateSupplier(supplier *models.Supplier) error {
	return r.db.Create(supplier).Error
}

func (r *InventoryRepository) UpdateSupplier(supplier *models.Supplier) error {
	return r.db.Save(supplier).Error
}

func (r *InventoryRepository) DeleteSupplier(id uint) error {
	result := r.db.Delete(&models.Supplier{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// walkSubtree breadth-first walks from id, expanding each frontier through
// childrenOf. The seen set terminates the walk even when the parent column
// contains a cycle, which is not prevented at write time.
func walkSubtree(id uint, childrenOf func(frontier []uint) ([]uint, error)) ([]uint, error) {
	seen := map[uint]bool{id: true}
	ids := []uint{id}
	frontier := []uint{id}

	for len(frontier) > 0 {
		children, err := childrenOf(frontier)
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, child := range children {
			if !seen[child] {
				seen[child] = true
				ids = append(ids, child)
				frontier = append(frontier, child)
			}
		}
	}

	return ids, nil
}

// collectSubtreeIDs walks a self-referential parent column and returns the
// id plus every descendant id.
func collectSubtreeIDs(tx *gorm.DB, model interface{}, parentColumn string, id uint) ([]uint, error) {
	return walkSubtree(id, func(frontier []uint) ([]uint, error) {
		var children []uint
		err := tx.Model(model).
			Where(fmt.Sprintf("%s IN ?", parentColumn), frontier).
			Pluck("id", &children).Error
		return children, err
	})
}

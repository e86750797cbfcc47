package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pharmacy-inventory-service/internal/config"
	"pharmacy-inventory-service/internal/models"
	"pharmacy-inventory-service/internal/repository"
)

// InventoryHandler serves locations, shelves, batches and allocations
type InventoryHandler struct {
	repo   repository.InventoryRepositoryInterface
	cfg    *config.Config
	logger *logrus.Logger
}

func NewInventoryHandler(repo repository.InventoryRepositoryInterface, cfg *config.Config, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{repo: repo, cfg: cfg, logger: logger}
}

var validLocationTypes = map[string]bool{
	string(models.LocationTypeBranch):     true,
	string(models.LocationTypeWarehouse):  true,
	string(models.LocationTypeExternal):   true,
	string(models.LocationTypeSupplier):   true,
	string(models.LocationTypeQuarantine): true,
}

var validLocationStatuses = map[string]bool{
	string(models.LocationStatusActive):   true,
	string(models.LocationStatusInactive): true,
}

var validStockTypes = map[string]bool{
	string(models.StockTypeAvailable):   true,
	string(models.StockTypeNearExpiry):  true,
	string(models.StockTypeRemoved):     true,
	string(models.StockTypeExpired):     true,
	string(models.StockTypeDisposed):    true,
	string(models.StockTypeDamaged):     true,
	string(models.StockTypeQuarantined): true,
}

// SearchLocations returns locations matching the optional type/status criteria
// @Summary Search locations
// @Tags locations
// @Produce json
// @Param locationType query string false "Location type"
// @Param status query string false "Location status"
// @Success 200 {object} models.LocationListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /locations [get]
func (h *InventoryHandler) SearchLocations(c *gin.Context) {
	var req models.SearchLocationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters: "+err.Error())
		return
	}

	if req.LocationType != nil && *req.LocationType != "" && !validLocationTypes[*req.LocationType] {
		respondError(c, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid location type: "+*req.LocationType)
		return
	}
	if req.Status != nil && *req.Status != "" && !validLocationStatuses[*req.Status] {
		respondError(c, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid location status: "+*req.Status)
		return
	}

	locations, err := h.repo.SearchLocations(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to search locations")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch locations")
		return
	}

	c.JSON(http.StatusOK, models.LocationListResponse{Success: true, Data: locations})
}

// CreateLocation creates a location; status defaults to active
// @Summary Create location
// @Tags locations
// @Accept json
// @Produce json
// @Param location body models.CreateLocationRequest true "Location"
// @Success 201 {object} models.LocationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /locations [post]
func (h *InventoryHandler) CreateLocation(c *gin.Context) {
	var req models.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if req.ParentLocationID != nil {
		if !h.ensureLocationExists(c, *req.ParentLocationID, "Parent location not found") {
			return
		}
	}

	status := models.LocationStatusActive
	if req.Status != nil {
		status = *req.Status
	}

	location := models.Location{
		LocationName:     req.LocationName,
		LocationType:     req.LocationType,
		ParentLocationID: req.ParentLocationID,
		IsDirectToMain:   req.IsDirectToMain,
		Address:          req.Address,
		Status:           status,
	}

	if err := h.repo.CreateLocation(&location); err != nil {
		h.logger.WithError(err).Error("Failed to create location")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create location")
		return
	}

	c.JSON(http.StatusCreated, models.LocationResponse{
		Success: true,
		Data:    &location,
		Message: stringPtr("Location created successfully"),
	})
}

// GetLocation returns one location with its parent, children and shelves
// @Summary Get location
// @Tags locations
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} models.LocationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id} [get]
func (h *InventoryHandler) GetLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	location, err := h.repo.GetLocationByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Location not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch location")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch location")
		return
	}

	c.JSON(http.StatusOK, models.LocationResponse{Success: true, Data: location})
}

// UpdateLocation partially updates a location. An explicit null
// parentLocationId clears the parent link; omitting it leaves the parent
// untouched.
// @Summary Update location
// @Tags locations
// @Accept json
// @Produce json
// @Param id path int true "Location ID"
// @Param location body models.UpdateLocationRequest true "Fields to update"
// @Success 200 {object} models.LocationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id} [patch]
func (h *InventoryHandler) UpdateLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	location, err := h.repo.GetLocationByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Location not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch location")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update location")
		return
	}

	if req.LocationName != nil {
		location.LocationName = *req.LocationName
	}
	if req.LocationType != nil {
		location.LocationType = *req.LocationType
	}
	if req.ParentLocationID.Present {
		if req.ParentLocationID.Value == nil {
			location.ParentLocationID = nil
			location.ParentLocation = nil
		} else {
			if !h.ensureLocationExists(c, *req.ParentLocationID.Value, "Parent location not found") {
				return
			}
			location.ParentLocationID = req.ParentLocationID.Value
			location.ParentLocation = nil
		}
	}
	if req.IsDirectToMain != nil {
		location.IsDirectToMain = req.IsDirectToMain
	}
	if req.Address != nil {
		location.Address = req.Address
	}
	if req.Status != nil {
		location.Status = *req.Status
	}

	if err := h.repo.UpdateLocation(location); err != nil {
		h.logger.WithError(err).Error("Failed to update location")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update location")
		return
	}

	c.JSON(http.StatusOK, models.LocationResponse{
		Success: true,
		Data:    location,
		Message: stringPtr("Location updated successfully"),
	})
}

// DeleteLocation deletes a location subtree with its shelves and allocations
// @Summary Delete location
// @Tags locations
// @Param id path int true "Location ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id} [delete]
func (h *InventoryHandler) DeleteLocation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteLocation(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Location not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete location")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete location")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListLocationShelves lists the shelves of a location
// @Summary List shelves
// @Tags shelves
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} models.ShelfListResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id}/shelves [get]
func (h *InventoryHandler) ListLocationShelves(c *gin.Context) {
	locationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !h.ensureLocationExists(c, locationID, "Location not found") {
		return
	}

	shelves, err := h.repo.ListShelvesByLocation(locationID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list shelves")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch shelves")
		return
	}

	c.JSON(http.StatusOK, models.ShelfListResponse{Success: true, Data: shelves})
}

// CreateShelf creates a shelf in a location
// @Summary Create shelf
// @Tags shelves
// @Accept json
// @Produce json
// @Param id path int true "Location ID"
// @Param shelf body models.CreateShelfRequest true "Shelf"
// @Success 201 {object} models.ShelfResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id}/shelves [post]
func (h *InventoryHandler) CreateShelf(c *gin.Context) {
	locationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if !h.ensureLocationExists(c, locationID, "Location not found") {
		return
	}

	shelf := models.Shelf{
		LocationID:     locationID,
		OnHandQty:      req.OnHandQty,
		DispatchMethod: req.DispatchMethod,
	}

	if err := h.repo.CreateShelf(&shelf); err != nil {
		h.logger.WithError(err).Error("Failed to create shelf")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create shelf")
		return
	}

	c.JSON(http.StatusCreated, models.ShelfResponse{
		Success: true,
		Data:    &shelf,
		Message: stringPtr("Shelf created successfully"),
	})
}

// GetShelf returns one shelf; the shelf must belong to the location in the path
// @Summary Get shelf
// @Tags shelves
// @Produce json
// @Param id path int true "Location ID"
// @Param shelfId path int true "Shelf ID"
// @Success 200 {object} models.ShelfResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id}/shelves/{shelfId} [get]
func (h *InventoryHandler) GetShelf(c *gin.Context) {
	locationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	shelfID, ok := parseIDParam(c, "shelfId")
	if !ok {
		return
	}

	shelf, ok := h.loadLocationShelf(c, locationID, shelfID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.ShelfResponse{Success: true, Data: shelf})
}

// UpdateShelf partially updates a shelf
// @Summary Update shelf
// @Tags shelves
// @Accept json
// @Produce json
// @Param id path int true "Location ID"
// @Param shelfId path int true "Shelf ID"
// @Param shelf body models.UpdateShelfRequest true "Fields to update"
// @Success 200 {object} models.ShelfResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id}/shelves/{shelfId} [patch]
func (h *InventoryHandler) UpdateShelf(c *gin.Context) {
	locationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	shelfID, ok := parseIDParam(c, "shelfId")
	if !ok {
		return
	}

	var req models.UpdateShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	shelf, ok := h.loadLocationShelf(c, locationID, shelfID)
	if !ok {
		return
	}

	if req.OnHandQty != nil {
		shelf.OnHandQty = req.OnHandQty
	}
	if req.DispatchMethod != nil {
		shelf.DispatchMethod = req.DispatchMethod
	}

	if err := h.repo.UpdateShelf(shelf); err != nil {
		h.logger.WithError(err).Error("Failed to update shelf")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update shelf")
		return
	}

	c.JSON(http.StatusOK, models.ShelfResponse{
		Success: true,
		Data:    shelf,
		Message: stringPtr("Shelf updated successfully"),
	})
}

// DeleteShelf deletes a shelf and its allocations
// @Summary Delete shelf
// @Tags shelves
// @Param id path int true "Location ID"
// @Param shelfId path int true "Shelf ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /locations/{id}/shelves/{shelfId} [delete]
func (h *InventoryHandler) DeleteShelf(c *gin.Context) {
	locationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	shelfID, ok := parseIDParam(c, "shelfId")
	if !ok {
		return
	}

	if _, ok := h.loadLocationShelf(c, locationID, shelfID); !ok {
		return
	}

	if err := h.repo.DeleteShelf(shelfID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Shelf not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete shelf")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete shelf")
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchBatches returns one page of batches matching the optional criteria
// @Summary Search batches
// @Tags batches
// @Produce json
// @Param productId query int false "Product"
// @Param locationId query int false "Location"
// @Param stockType query string false "Stock type"
// @Param batchNumber query string false "Substring match over batch number"
// @Param expiresBefore query string false "Expiry on or before (YYYY-MM-DD)"
// @Param page query int false "0-based page index"
// @Param size query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} models.BatchListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /batches [get]
func (h *InventoryHandler) SearchBatches(c *gin.Context) {
	var req models.SearchBatchesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters: "+err.Error())
		return
	}

	if req.StockType != nil && *req.StockType != "" && !validStockTypes[*req.StockType] {
		respondError(c, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid stock type: "+*req.StockType)
		return
	}
	req.Page, req.Size = normalizePage(req.Page, req.Size, h.cfg)

	batches, total, err := h.repo.SearchBatches(&req)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSortField) {
			respondError(c, http.StatusBadRequest, "INVALID_SORT_FIELD", err.Error())
			return
		}
		if errors.Is(err, repository.ErrInvalidSortOrder) {
			respondError(c, http.StatusBadRequest, "INVALID_SORT_ORDER", err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to search batches")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch batches")
		return
	}

	c.JSON(http.StatusOK, models.BatchListResponse{
		Success:    true,
		Data:       batches,
		Pagination: paginationInfo(req.Page, req.Size, total),
	})
}

// CreateBatch creates a batch; stockType defaults to available
// @Summary Create batch
// @Tags batches
// @Accept json
// @Produce json
// @Param batch body models.CreateBatchRequest true "Batch"
// @Success 201 {object} models.BatchResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /batches [post]
func (h *InventoryHandler) CreateBatch(c *gin.Context) {
	var req models.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if !h.ensureProductExists(c, req.ProductID) {
		return
	}
	if !h.ensureLocationExists(c, req.LocationID, "Location not found") {
		return
	}
	if req.ParentBatchID != nil {
		if !h.ensureBatchExists(c, *req.ParentBatchID, "Parent batch not found") {
			return
		}
	}

	stockType := models.StockTypeAvailable
	if req.StockType != nil {
		stockType = *req.StockType
	}

	batch := models.Batch{
		ProductID:         req.ProductID,
		LocationID:        req.LocationID,
		StockType:         stockType,
		Quantity:          *req.Quantity,
		BatchNumber:       req.BatchNumber,
		Cost:              req.Cost,
		SupplierID:        req.SupplierID,
		ManufacturingDate: req.ManufacturingDate,
		ExpiryDate:        req.ExpiryDate,
		ReceivingDate:     req.ReceivingDate,
		AlertDate:         req.AlertDate,
		ClearanceDate:     req.ClearanceDate,
		ParentBatchID:     req.ParentBatchID,
	}

	if err := h.repo.CreateBatch(&batch); err != nil {
		h.logger.WithError(err).Error("Failed to create batch")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create batch")
		return
	}

	c.JSON(http.StatusCreated, models.BatchResponse{
		Success: true,
		Data:    &batch,
		Message: stringPtr("Batch created successfully"),
	})
}

// GetBatch returns one batch with its product, location and allocations
// @Summary Get batch
// @Tags batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} models.BatchResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /batches/{id} [get]
func (h *InventoryHandler) GetBatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.repo.GetBatchByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Batch not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch batch")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch batch")
		return
	}

	c.JSON(http.StatusOK, models.BatchResponse{Success: true, Data: batch})
}

// UpdateBatch partially updates a batch. An explicit null parentBatchId
// clears the parent link; omitting it leaves the parent untouched.
// @Summary Update batch
// @Tags batches
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param batch body models.UpdateBatchRequest true "Fields to update"
// @Success 200 {object} models.BatchResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /batches/{id} [patch]
func (h *InventoryHandler) UpdateBatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	batch, err := h.repo.GetBatchByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Batch not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch batch")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update batch")
		return
	}

	if req.ProductID != nil {
		if !h.ensureProductExists(c, *req.ProductID) {
			return
		}
		batch.ProductID = *req.ProductID
		batch.Product = nil
	}
	if req.LocationID != nil {
		if !h.ensureLocationExists(c, *req.LocationID, "Location not found") {
			return
		}
		batch.LocationID = *req.LocationID
		batch.Location = nil
	}
	if req.StockType != nil {
		batch.StockType = *req.StockType
	}
	if req.Quantity != nil {
		batch.Quantity = *req.Quantity
	}
	if req.BatchNumber != nil {
		batch.BatchNumber = req.BatchNumber
	}
	if req.Cost != nil {
		batch.Cost = req.Cost
	}
	if req.SupplierID != nil {
		batch.SupplierID = req.SupplierID
	}
	if req.ManufacturingDate != nil {
		batch.ManufacturingDate = req.ManufacturingDate
	}
	if req.ExpiryDate != nil {
		batch.ExpiryDate = req.ExpiryDate
	}
	if req.ReceivingDate != nil {
		batch.ReceivingDate = req.ReceivingDate
	}
	if req.AlertDate != nil {
		batch.AlertDate = req.AlertDate
	}
	if req.ClearanceDate != nil {
		batch.ClearanceDate = req.ClearanceDate
	}
	if req.ParentBatchID.Present {
		if req.ParentBatchID.Value == nil {
			batch.ParentBatchID = nil
			batch.ParentBatch = nil
		} else {
			if !h.ensureBatchExists(c, *req.ParentBatchID.Value, "Parent batch not found") {
				return
			}
			batch.ParentBatchID = req.ParentBatchID.Value
			batch.ParentBatch = nil
		}
	}

	if err := h.repo.UpdateBatch(batch); err != nil {
		h.logger.WithError(err).Error("Failed to update batch")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update batch")
		return
	}

	c.JSON(http.StatusOK, models.BatchResponse{
		Success: true,
		Data:    batch,
		Message: stringPtr("Batch updated successfully"),
	})
}

// DeleteBatch deletes a batch, its child batches and their allocations
// @Summary Delete batch
// @Tags batches
// @Param id path int true "Batch ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /batches/{id} [delete]
func (h *InventoryHandler) DeleteBatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteBatch(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Batch not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete batch")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete batch")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListBatchAllocations lists the shelf allocations of a batch
// @Summary List batch allocations
// @Tags allocations
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} models.AllocationListResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /batches/{id}/shelves [get]
func (h *InventoryHandler) ListBatchAllocations(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !h.ensureBatchExists(c, batchID, "Batch not found") {
		return
	}

	allocations, err := h.repo.ListAllocationsByBatch(batchID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list allocations")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch allocations")
		return
	}

	c.JSON(http.StatusOK, models.AllocationListResponse{Success: true, Data: allocations})
}

// CreateAllocation places a batch quantity on a shelf
// @Summary Create allocation
// @Tags allocations
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param allocation body models.CreateAllocationRequest true "Allocation"
// @Success 201 {object} models.AllocationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /batches/{id}/shelves [post]
func (h *InventoryHandler) CreateAllocation(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if !h.ensureBatchExists(c, batchID, "Batch not found") {
		return
	}
	if !h.ensureShelfExists(c, req.ShelfID) {
		return
	}

	allocation := models.BatchShelfAllocation{
		BatchID:   batchID,
		ShelfID:   req.ShelfID,
		Quantity:  req.Quantity,
		Threshold: req.Threshold,
	}

	if err := h.repo.CreateAllocation(&allocation); err != nil {
		h.logger.WithError(err).Error("Failed to create allocation")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create allocation")
		return
	}

	c.JSON(http.StatusCreated, models.AllocationResponse{
		Success: true,
		Data:    &allocation,
		Message: stringPtr("Allocation created successfully"),
	})
}

// UpdateAllocation partially updates an allocation. The allocation must
// belong to the batch named in the path.
// @Summary Update allocation
// @Tags allocations
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param allocationId path int true "Allocation ID"
// @Param allocation body models.UpdateAllocationRequest true "Fields to update"
// @Success 200 {object} models.AllocationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /batches/{id}/shelves/{allocationId} [patch]
func (h *InventoryHandler) UpdateAllocation(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	allocationID, ok := parseIDParam(c, "allocationId")
	if !ok {
		return
	}

	var req models.UpdateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	allocation, ok := h.loadBatchAllocation(c, batchID, allocationID)
	if !ok {
		return
	}

	if req.ShelfID != nil {
		if !h.ensureShelfExists(c, *req.ShelfID) {
			return
		}
		allocation.ShelfID = *req.ShelfID
		allocation.Shelf = nil
	}
	if req.Quantity != nil {
		allocation.Quantity = req.Quantity
	}
	if req.Threshold != nil {
		allocation.Threshold = req.Threshold
	}

	if err := h.repo.UpdateAllocation(allocation); err != nil {
		h.logger.WithError(err).Error("Failed to update allocation")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update allocation")
		return
	}

	c.JSON(http.StatusOK, models.AllocationResponse{
		Success: true,
		Data:    allocation,
		Message: stringPtr("Allocation updated successfully"),
	})
}

// DeleteAllocation removes an allocation. The allocation must belong to the
// batch named in the path.
// @Summary Delete allocation
// @Tags allocations
// @Param id path int true "Batch ID"
// @Param allocationId path int true "Allocation ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /batches/{id}/shelves/{allocationId} [delete]
func (h *InventoryHandler) DeleteAllocation(c *gin.Context) {
	batchID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	allocationID, ok := parseIDParam(c, "allocationId")
	if !ok {
		return
	}

	if _, ok := h.loadBatchAllocation(c, batchID, allocationID); !ok {
		return
	}

	if err := h.repo.DeleteAllocation(allocationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Allocation not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete allocation")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete allocation")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) ensureLocationExists(c *gin.Context, id uint, notFoundMsg string) bool {
	exists, err := h.repo.LocationExists(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check location")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to resolve location")
		return false
	}
	if !exists {
		respondError(c, http.StatusNotFound, "NOT_FOUND", notFoundMsg)
		return false
	}
	return true
}

func (h *InventoryHandler) ensureProductExists(c *gin.Context, id uint) bool {
	exists, err := h.repo.ProductExists(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check product")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to resolve product")
		return false
	}
	if !exists {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return false
	}
	return true
}

func (h *InventoryHandler) ensureBatchExists(c *gin.Context, id uint, notFoundMsg string) bool {
	exists, err := h.repo.BatchExists(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check batch")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to resolve batch")
		return false
	}
	if !exists {
		respondError(c, http.StatusNotFound, "NOT_FOUND", notFoundMsg)
		return false
	}
	return true
}

func (h *InventoryHandler) ensureShelfExists(c *gin.Context, id uint) bool {
	exists, err := h.repo.ShelfExists(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check shelf")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to resolve shelf")
		return false
	}
	if !exists {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Shelf not found")
		return false
	}
	return true
}

// loadLocationShelf loads a shelf and verifies it belongs to the location
// in the path; a shelf under a different location is reported as not found
func (h *InventoryHandler) loadLocationShelf(c *gin.Context, locationID, shelfID uint) (*models.Shelf, bool) {
	shelf, err := h.repo.GetShelfByID(shelfID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Shelf not found")
			return nil, false
		}
		h.logger.WithError(err).Error("Failed to fetch shelf")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch shelf")
		return nil, false
	}
	if shelf.LocationID != locationID {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Shelf does not belong to location")
		return nil, false
	}
	return shelf, true
}

// loadBatchAllocation loads an allocation and verifies it belongs to the
// batch in the path; a valid allocation id under a different batch is
// reported as not found
func (h *InventoryHandler) loadBatchAllocation(c *gin.Context, batchID, allocationID uint) (*models.BatchShelfAllocation, bool) {
	allocation, err := h.repo.GetAllocationByID(allocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Allocation not found")
			return nil, false
		}
		h.logger.WithError(err).Error("Failed to fetch allocation")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch allocation")
		return nil, false
	}
	if allocation.BatchID != batchID {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Allocation does not belong to batch")
		return nil, false
	}
	return allocation, true
}

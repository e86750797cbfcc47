package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pharmacy-inventory-service/internal/models"
	"pharmacy-inventory-service/internal/repository"
)

// StockHandler serves stock levels and suppliers
type StockHandler struct {
	repo   repository.InventoryRepositoryInterface
	logger *logrus.Logger
}

func NewStockHandler(repo repository.InventoryRepositoryInterface, logger *logrus.Logger) *StockHandler {
	return &StockHandler{repo: repo, logger: logger}
}

var validSupplierStatuses = map[string]bool{
	string(models.SupplierStatusActive):   true,
	string(models.SupplierStatusInactive): true,
}

// ListStockLevels returns stock levels, optionally filtered by product and location
// @Summary List stock levels
// @Tags stock-levels
// @Produce json
// @Param productId query int false "Product"
// @Param locationId query int false "Location"
// @Success 200 {object} models.StockLevelListResponse
// @Router /stock-levels [get]
func (h *StockHandler) ListStockLevels(c *gin.Context) {
	productID, ok := parseOptionalUintQuery(c, "productId")
	if !ok {
		return
	}
	locationID, ok := parseOptionalUintQuery(c, "locationId")
	if !ok {
		return
	}

	levels, err := h.repo.ListStockLevels(productID, locationID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list stock levels")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch stock levels")
		return
	}

	c.JSON(http.StatusOK, models.StockLevelListResponse{Success: true, Data: levels})
}

// CreateStockLevel creates or updates the stock level for a (product,
// location) pair; the pair is never duplicated
// @Summary Create stock level
// @Tags stock-levels
// @Accept json
// @Produce json
// @Param stockLevel body models.CreateStockLevelRequest true "Stock level"
// @Success 201 {object} models.StockLevelResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /stock-levels [post]
func (h *StockHandler) CreateStockLevel(c *gin.Context) {
	var req models.CreateStockLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if exists, err := h.repo.ProductExists(req.ProductID); err != nil {
		h.logger.WithError(err).Error("Failed to check product")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create stock level")
		return
	} else if !exists {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}
	if exists, err := h.repo.LocationExists(req.LocationID); err != nil {
		h.logger.WithError(err).Error("Failed to check location")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create stock level")
		return
	} else if !exists {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Location not found")
		return
	}

	level := models.StockLevel{
		ProductID:      req.ProductID,
		LocationID:     req.LocationID,
		StockType:      req.StockType,
		OnHandQuantity: req.OnHandQuantity,
		DispatchMethod: req.DispatchMethod,
	}

	saved, err := h.repo.UpsertStockLevel(&level)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upsert stock level")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create stock level")
		return
	}

	c.JSON(http.StatusCreated, models.StockLevelResponse{
		Success: true,
		Data:    saved,
		Message: stringPtr("Stock level saved successfully"),
	})
}

// GetStockLevel returns one stock level record
// @Summary Get stock level
// @Tags stock-levels
// @Produce json
// @Param id path int true "Stock level ID"
// @Success 200 {object} models.StockLevelResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /stock-levels/{id} [get]
func (h *StockHandler) GetStockLevel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	level, err := h.repo.GetStockLevelByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Stock level not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch stock level")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch stock level")
		return
	}

	c.JSON(http.StatusOK, models.StockLevelResponse{Success: true, Data: level})
}

// UpdateStockLevel partially updates a stock level record
// @Summary Update stock level
// @Tags stock-levels
// @Accept json
// @Produce json
// @Param id path int true "Stock level ID"
// @Param stockLevel body models.UpdateStockLevelRequest true "Fields to update"
// @Success 200 {object} models.StockLevelResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /stock-levels/{id} [patch]
func (h *StockHandler) UpdateStockLevel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateStockLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	level, err := h.repo.GetStockLevelByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Stock level not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch stock level")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update stock level")
		return
	}

	if req.StockType != nil {
		level.StockType = req.StockType
	}
	if req.OnHandQuantity != nil {
		level.OnHandQuantity = req.OnHandQuantity
	}
	if req.DispatchMethod != nil {
		level.DispatchMethod = req.DispatchMethod
	}

	if err := h.repo.UpdateStockLevel(level); err != nil {
		h.logger.WithError(err).Error("Failed to update stock level")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update stock level")
		return
	}

	c.JSON(http.StatusOK, models.StockLevelResponse{
		Success: true,
		Data:    level,
		Message: stringPtr("Stock level updated successfully"),
	})
}

// DeleteStockLevel deletes a stock level record
// @Summary Delete stock level
// @Tags stock-levels
// @Param id path int true "Stock level ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /stock-levels/{id} [delete]
func (h *StockHandler) DeleteStockLevel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteStockLevel(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Stock level not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete stock level")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete stock level")
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchSuppliers returns suppliers matching the optional criteria
// @Summary Search suppliers
// @Tags suppliers
// @Produce json
// @Param country query string false "Country (exact match)"
// @Param activeStatus query string false "active or inactive"
// @Success 200 {object} models.SupplierListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /suppliers [get]
func (h *StockHandler) SearchSuppliers(c *gin.Context) {
	var req models.SearchSuppliersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters: "+err.Error())
		return
	}

	if req.ActiveStatus != nil && *req.ActiveStatus != "" && !validSupplierStatuses[*req.ActiveStatus] {
		respondError(c, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid active status: "+*req.ActiveStatus)
		return
	}

	suppliers, err := h.repo.SearchSuppliers(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to search suppliers")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch suppliers")
		return
	}

	c.JSON(http.StatusOK, models.SupplierListResponse{Success: true, Data: suppliers})
}

// CreateSupplier creates a supplier; activeStatus defaults to active
// @Summary Create supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param supplier body models.CreateSupplierRequest true "Supplier"
// @Success 201 {object} models.SupplierResponse
// @Router /suppliers [post]
func (h *StockHandler) CreateSupplier(c *gin.Context) {
	var req models.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	activeStatus := models.SupplierStatusActive
	if req.ActiveStatus != nil {
		activeStatus = *req.ActiveStatus
	}

	supplier := models.Supplier{
		SupplierName:  req.SupplierName,
		SupplierPhone: req.SupplierPhone,
		SupplierEmail: req.SupplierEmail,
		Country:       req.Country,
		Rating:        req.Rating,
		Currency:      req.Currency,
		ActiveStatus:  activeStatus,
	}

	if err := h.repo.CreateSupplier(&supplier); err != nil {
		h.logger.WithError(err).Error("Failed to create supplier")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create supplier")
		return
	}

	c.JSON(http.StatusCreated, models.SupplierResponse{
		Success: true,
		Data:    &supplier,
		Message: stringPtr("Supplier created successfully"),
	})
}

// GetSupplier returns one supplier
// @Summary Get supplier
// @Tags suppliers
// @Produce json
// @Param id path int true "Supplier ID"
// @Success 200 {object} models.SupplierResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /suppliers/{id} [get]
func (h *StockHandler) GetSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	supplier, err := h.repo.GetSupplierByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Supplier not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch supplier")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch supplier")
		return
	}

	c.JSON(http.StatusOK, models.SupplierResponse{Success: true, Data: supplier})
}

// UpdateSupplier partially updates a supplier
// @Summary Update supplier
// @Tags suppliers
// @Accept json
// @Produce json
// @Param id path int true "Supplier ID"
// @Param supplier body models.UpdateSupplierRequest true "Fields to update"
// @Success 200 {object} models.SupplierResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /suppliers/{id} [patch]
func (h *StockHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	supplier, err := h.repo.GetSupplierByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Supplier not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch supplier")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update supplier")
		return
	}

	if req.SupplierName != nil {
		supplier.SupplierName = *req.SupplierName
	}
	if req.SupplierPhone != nil {
		supplier.SupplierPhone = req.SupplierPhone
	}
	if req.SupplierEmail != nil {
		supplier.SupplierEmail = req.SupplierEmail
	}
	if req.Country != nil {
		supplier.Country = req.Country
	}
	if req.Rating != nil {
		supplier.Rating = req.Rating
	}
	if req.Currency != nil {
		supplier.Currency = req.Currency
	}
	if req.ActiveStatus != nil {
		supplier.ActiveStatus = *req.ActiveStatus
	}

	if err := h.repo.UpdateSupplier(supplier); err != nil {
		h.logger.WithError(err).Error("Failed to update supplier")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update supplier")
		return
	}

	c.JSON(http.StatusOK, models.SupplierResponse{
		Success: true,
		Data:    supplier,
		Message: stringPtr("Supplier updated successfully"),
	})
}

// DeleteSupplier deletes a supplier
// @Summary Delete supplier
// @Tags suppliers
// @Param id path int true "Supplier ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /suppliers/{id} [delete]
func (h *StockHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteSupplier(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Supplier not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete supplier")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete supplier")
		return
	}

	c.Status(http.StatusNoContent)
}

// parseOptionalUintQuery parses an optional positive integer query
// parameter, responding with a 400 itself on malformed input
func parseOptionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid "+name+": "+raw)
		return nil, false
	}
	value := uint(parsed)
	return &value, true
}

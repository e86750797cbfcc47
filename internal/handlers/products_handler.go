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

type ProductsHandler struct {
	repo   repository.CatalogRepositoryInterface
	cfg    *config.Config
	logger *logrus.Logger
}

func NewProductsHandler(repo repository.CatalogRepositoryInterface, cfg *config.Config, logger *logrus.Logger) *ProductsHandler {
	return &ProductsHandler{repo: repo, cfg: cfg, logger: logger}
}

// SearchProducts returns one page of products matching the optional criteria
// @Summary Search products
// @Tags products
// @Produce json
// @Param filter query string false "Substring match over name, barcode and sku"
// @Param categoryId query int false "Category membership"
// @Param isDrug query bool false "Drug flag"
// @Param controlledSubstance query bool false "Controlled substance flag"
// @Param page query int false "0-based page index"
// @Param size query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} models.ProductListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /products [get]
func (h *ProductsHandler) SearchProducts(c *gin.Context) {
	var req models.SearchProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters: "+err.Error())
		return
	}
	req.Page, req.Size = normalizePage(req.Page, req.Size, h.cfg)

	products, total, err := h.repo.SearchProducts(&req)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSortField) {
			respondError(c, http.StatusBadRequest, "INVALID_SORT_FIELD", err.Error())
			return
		}
		if errors.Is(err, repository.ErrInvalidSortOrder) {
			respondError(c, http.StatusBadRequest, "INVALID_SORT_ORDER", err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to search products")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:    true,
		Data:       products,
		Pagination: paginationInfo(req.Page, req.Size, total),
	})
}

// CreateProduct creates a product
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products [post]
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if req.MeasurementUnitID != nil {
		if _, err := h.repo.GetMeasurementUnitByID(*req.MeasurementUnitID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "Measurement unit not found")
				return
			}
			h.logger.WithError(err).Error("Failed to resolve measurement unit")
			respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create product")
			return
		}
	}

	product := models.Product{
		Name:                req.Name,
		Barcode:             req.Barcode,
		SKU:                 req.SKU,
		ScientificName:      req.ScientificName,
		Description:         req.Description,
		Cost:                req.Cost,
		SellingPrice:        req.SellingPrice,
		IsDrug:              req.IsDrug,
		ControlledSubstance: req.ControlledSubstance,
		MeasurementUnitID:   req.MeasurementUnitID,
	}

	if err := h.repo.CreateProduct(&product); err != nil {
		h.logger.WithError(err).Error("Failed to create product")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    &product,
		Message: stringPtr("Product created successfully"),
	})
}

// GetProduct returns a single product with its unit, categories and ingredients
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.repo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch product")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: product})
}

// UpdateProduct partially updates a product; omitted fields are unchanged
// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body models.UpdateProductRequest true "Fields to update"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [patch]
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	product, err := h.repo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch product")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update product")
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Barcode != nil {
		product.Barcode = req.Barcode
	}
	if req.SKU != nil {
		product.SKU = req.SKU
	}
	if req.ScientificName != nil {
		product.ScientificName = req.ScientificName
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Cost != nil {
		product.Cost = req.Cost
	}
	if req.SellingPrice != nil {
		product.SellingPrice = req.SellingPrice
	}
	if req.IsDrug != nil {
		product.IsDrug = req.IsDrug
	}
	if req.ControlledSubstance != nil {
		product.ControlledSubstance = req.ControlledSubstance
	}
	if req.MeasurementUnitID != nil {
		if _, err := h.repo.GetMeasurementUnitByID(*req.MeasurementUnitID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "Measurement unit not found")
				return
			}
			h.logger.WithError(err).Error("Failed to resolve measurement unit")
			respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update product")
			return
		}
		product.MeasurementUnitID = req.MeasurementUnitID
	}

	if err := h.repo.UpdateProduct(product); err != nil {
		h.logger.WithError(err).Error("Failed to update product")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Product updated successfully"),
	})
}

// DeleteProduct deletes a product and its category and ingredient links
// @Summary Delete product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteProduct(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete product")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetProductCategories lists the categories linked to a product
// @Summary List product categories
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.CategoryListResponse
// @Router /products/{id}/categories [get]
func (h *ProductsHandler) GetProductCategories(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !h.ensureProductExists(c, id) {
		return
	}

	categories, err := h.repo.GetProductCategories(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch product categories")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch product categories")
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{Success: true, Data: categories})
}

// AddProductCategory links a category to a product. Linking an already
// linked category succeeds without creating a duplicate.
// @Summary Link category to product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Param categoryId path int true "Category ID"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/categories/{categoryId} [post]
func (h *ProductsHandler) AddProductCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}

	if !h.ensureProductExists(c, id) {
		return
	}
	if _, err := h.repo.GetCategoryByID(categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		h.logger.WithError(err).Error("Failed to resolve category")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to link category")
		return
	}

	if err := h.repo.AddProductCategory(id, categoryID); err != nil {
		h.logger.WithError(err).Error("Failed to link category")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to link category")
		return
	}

	product, err := h.repo.GetProductByID(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch product after linking category")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Category linked successfully"),
	})
}

// RemoveProductCategory unlinks a category from a product
// @Summary Unlink category from product
// @Tags products
// @Param id path int true "Product ID"
// @Param categoryId path int true "Category ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/categories/{categoryId} [delete]
func (h *ProductsHandler) RemoveProductCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}

	if !h.ensureProductExists(c, id) {
		return
	}

	if err := h.repo.RemoveProductCategory(id, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not linked to product")
			return
		}
		h.logger.WithError(err).Error("Failed to unlink category")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to unlink category")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetProductIngredients lists the ingredient links of a product
// @Summary List product ingredients
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.ProductIngredientListResponse
// @Router /products/{id}/ingredients [get]
func (h *ProductsHandler) GetProductIngredients(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if !h.ensureProductExists(c, id) {
		return
	}

	links, err := h.repo.GetProductIngredients(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch product ingredients")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch product ingredients")
		return
	}

	c.JSON(http.StatusOK, models.ProductIngredientListResponse{Success: true, Data: links})
}

// UpsertProductIngredient links an ingredient to a product, or updates the
// amount when the link already exists
// @Summary Link ingredient to product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param link body models.UpsertIngredientLinkRequest true "Ingredient link"
// @Success 200 {object} models.ProductIngredientResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/ingredients [post]
func (h *ProductsHandler) UpsertProductIngredient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpsertIngredientLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if !h.ensureProductExists(c, id) {
		return
	}
	if _, err := h.repo.GetIngredientByID(req.IngredientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Ingredient not found")
			return
		}
		h.logger.WithError(err).Error("Failed to resolve ingredient")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to link ingredient")
		return
	}

	link, err := h.repo.UpsertProductIngredient(id, req.IngredientID, *req.Amount)
	if err != nil {
		h.logger.WithError(err).Error("Failed to link ingredient")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to link ingredient")
		return
	}

	c.JSON(http.StatusOK, models.ProductIngredientResponse{
		Success: true,
		Data:    link,
		Message: stringPtr("Ingredient linked successfully"),
	})
}

// RemoveProductIngredient unlinks an ingredient from a product
// @Summary Unlink ingredient from product
// @Tags products
// @Param id path int true "Product ID"
// @Param ingredientId path int true "Ingredient ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/ingredients/{ingredientId} [delete]
func (h *ProductsHandler) RemoveProductIngredient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := parseIDParam(c, "ingredientId")
	if !ok {
		return
	}

	if !h.ensureProductExists(c, id) {
		return
	}

	if err := h.repo.RemoveProductIngredient(id, ingredientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Ingredient not linked to product")
			return
		}
		h.logger.WithError(err).Error("Failed to unlink ingredient")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to unlink ingredient")
		return
	}

	c.Status(http.StatusNoContent)
}

// ensureProductExists responds 404/500 itself and returns false when the
// product cannot be loaded
func (h *ProductsHandler) ensureProductExists(c *gin.Context, id uint) bool {
	if _, err := h.repo.GetProductByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
			return false
		}
		h.logger.WithError(err).Error("Failed to fetch product")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch product")
		return false
	}
	return true
}

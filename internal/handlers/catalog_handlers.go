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

// CatalogHandler serves categories, ingredients and measurement units
type CatalogHandler struct {
	repo   repository.CatalogRepositoryInterface
	logger *logrus.Logger
}

func NewCatalogHandler(repo repository.CatalogRepositoryInterface, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{repo: repo, logger: logger}
}

// ListCategories returns all categories, optionally filtered by name
// @Summary List categories
// @Tags categories
// @Produce json
// @Param name query string false "Substring match over name"
// @Success 200 {object} models.CategoryListResponse
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var name *string
	if value := c.Query("name"); value != "" {
		name = &value
	}

	categories, err := h.repo.ListCategories(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list categories")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{Success: true, Data: categories})
}

// CreateCategory creates a category
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body models.CreateCategoryRequest true "Category"
// @Success 201 {object} models.CategoryResponse
// @Router /categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.repo.CreateCategory(&category); err != nil {
		h.logger.WithError(err).Error("Failed to create category")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, models.CategoryResponse{
		Success: true,
		Data:    &category,
		Message: stringPtr("Category created successfully"),
	})
}

// GetCategory returns one category
// @Summary Get category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.CategoryResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.repo.GetCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch category")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch category")
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{Success: true, Data: category})
}

// UpdateCategory partially updates a category
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body models.UpdateCategoryRequest true "Fields to update"
// @Success 200 {object} models.CategoryResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [patch]
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	category, err := h.repo.GetCategoryByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch category")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update category")
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}

	if err := h.repo.UpdateCategory(category); err != nil {
		h.logger.WithError(err).Error("Failed to update category")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, models.CategoryResponse{
		Success: true,
		Data:    category,
		Message: stringPtr("Category updated successfully"),
	})
}

// DeleteCategory deletes a category and its product links
// @Summary Delete category
// @Tags categories
// @Param id path int true "Category ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteCategory(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete category")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete category")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListIngredients returns all ingredients, optionally filtered
// @Summary List ingredients
// @Tags ingredients
// @Produce json
// @Param name query string false "Substring match over name"
// @Param active query bool false "Active flag"
// @Success 200 {object} models.IngredientListResponse
// @Router /ingredients [get]
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	var name *string
	if value := c.Query("name"); value != "" {
		name = &value
	}

	var active *bool
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid active flag: "+raw)
			return
		}
		active = &parsed
	}

	ingredients, err := h.repo.ListIngredients(name, active)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list ingredients")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch ingredients")
		return
	}

	c.JSON(http.StatusOK, models.IngredientListResponse{Success: true, Data: ingredients})
}

// CreateIngredient creates an ingredient; active defaults to true
// @Summary Create ingredient
// @Tags ingredients
// @Accept json
// @Produce json
// @Param ingredient body models.CreateIngredientRequest true "Ingredient"
// @Success 201 {object} models.IngredientResponse
// @Router /ingredients [post]
func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req models.CreateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	ingredient := models.Ingredient{
		Name:        req.Name,
		Description: req.Description,
		Active:      &active,
	}

	if err := h.repo.CreateIngredient(&ingredient); err != nil {
		h.logger.WithError(err).Error("Failed to create ingredient")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create ingredient")
		return
	}

	c.JSON(http.StatusCreated, models.IngredientResponse{
		Success: true,
		Data:    &ingredient,
		Message: stringPtr("Ingredient created successfully"),
	})
}

// GetIngredient returns one ingredient
// @Summary Get ingredient
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.IngredientResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /ingredients/{id} [get]
func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ingredient, err := h.repo.GetIngredientByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Ingredient not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch ingredient")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch ingredient")
		return
	}

	c.JSON(http.StatusOK, models.IngredientResponse{Success: true, Data: ingredient})
}

// UpdateIngredient partially updates an ingredient
// @Summary Update ingredient
// @Tags ingredients
// @Accept json
// @Produce json
// @Param id path int true "Ingredient ID"
// @Param ingredient body models.UpdateIngredientRequest true "Fields to update"
// @Success 200 {object} models.IngredientResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /ingredients/{id} [patch]
func (h *CatalogHandler) UpdateIngredient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	ingredient, err := h.repo.GetIngredientByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Ingredient not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch ingredient")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update ingredient")
		return
	}

	if req.Name != nil {
		ingredient.Name = *req.Name
	}
	if req.Description != nil {
		ingredient.Description = req.Description
	}
	if req.Active != nil {
		ingredient.Active = req.Active
	}

	if err := h.repo.UpdateIngredient(ingredient); err != nil {
		h.logger.WithError(err).Error("Failed to update ingredient")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update ingredient")
		return
	}

	c.JSON(http.StatusOK, models.IngredientResponse{
		Success: true,
		Data:    ingredient,
		Message: stringPtr("Ingredient updated successfully"),
	})
}

// DeleteIngredient deletes an ingredient and its product links
// @Summary Delete ingredient
// @Tags ingredients
// @Param id path int true "Ingredient ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /ingredients/{id} [delete]
func (h *CatalogHandler) DeleteIngredient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteIngredient(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Ingredient not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete ingredient")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete ingredient")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMeasurementUnits returns all measurement units
// @Summary List measurement units
// @Tags measurement-units
// @Produce json
// @Success 200 {object} models.MeasurementUnitListResponse
// @Router /measurement-units [get]
func (h *CatalogHandler) ListMeasurementUnits(c *gin.Context) {
	units, err := h.repo.ListMeasurementUnits()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list measurement units")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch measurement units")
		return
	}

	c.JSON(http.StatusOK, models.MeasurementUnitListResponse{Success: true, Data: units})
}

// CreateMeasurementUnit creates a measurement unit
// @Summary Create measurement unit
// @Tags measurement-units
// @Accept json
// @Produce json
// @Param unit body models.CreateMeasurementUnitRequest true "Measurement unit"
// @Success 201 {object} models.MeasurementUnitResponse
// @Router /measurement-units [post]
func (h *CatalogHandler) CreateMeasurementUnit(c *gin.Context) {
	var req models.CreateMeasurementUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	unit := models.MeasurementUnit{
		Name:             req.Name,
		BaseUnit:         req.BaseUnit,
		ConversionFactor: req.ConversionFactor,
		Description:      req.Description,
		Symbol:           req.Symbol,
	}

	if err := h.repo.CreateMeasurementUnit(&unit); err != nil {
		h.logger.WithError(err).Error("Failed to create measurement unit")
		respondError(c, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create measurement unit")
		return
	}

	c.JSON(http.StatusCreated, models.MeasurementUnitResponse{
		Success: true,
		Data:    &unit,
		Message: stringPtr("Measurement unit created successfully"),
	})
}

// GetMeasurementUnit returns one measurement unit
// @Summary Get measurement unit
// @Tags measurement-units
// @Produce json
// @Param id path int true "Measurement unit ID"
// @Success 200 {object} models.MeasurementUnitResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /measurement-units/{id} [get]
func (h *CatalogHandler) GetMeasurementUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	unit, err := h.repo.GetMeasurementUnitByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Measurement unit not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch measurement unit")
		respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch measurement unit")
		return
	}

	c.JSON(http.StatusOK, models.MeasurementUnitResponse{Success: true, Data: unit})
}

// UpdateMeasurementUnit partially updates a measurement unit
// @Summary Update measurement unit
// @Tags measurement-units
// @Accept json
// @Produce json
// @Param id path int true "Measurement unit ID"
// @Param unit body models.UpdateMeasurementUnitRequest true "Fields to update"
// @Success 200 {object} models.MeasurementUnitResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /measurement-units/{id} [patch]
func (h *CatalogHandler) UpdateMeasurementUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateMeasurementUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	unit, err := h.repo.GetMeasurementUnitByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Measurement unit not found")
			return
		}
		h.logger.WithError(err).Error("Failed to fetch measurement unit")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update measurement unit")
		return
	}

	if req.Name != nil {
		unit.Name = *req.Name
	}
	if req.BaseUnit != nil {
		unit.BaseUnit = req.BaseUnit
	}
	if req.ConversionFactor != nil {
		unit.ConversionFactor = req.ConversionFactor
	}
	if req.Description != nil {
		unit.Description = req.Description
	}
	if req.Symbol != nil {
		unit.Symbol = req.Symbol
	}

	if err := h.repo.UpdateMeasurementUnit(unit); err != nil {
		h.logger.WithError(err).Error("Failed to update measurement unit")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update measurement unit")
		return
	}

	c.JSON(http.StatusOK, models.MeasurementUnitResponse{
		Success: true,
		Data:    unit,
		Message: stringPtr("Measurement unit updated successfully"),
	})
}

// DeleteMeasurementUnit deletes a measurement unit
// @Summary Delete measurement unit
// @Tags measurement-units
// @Param id path int true "Measurement unit ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /measurement-units/{id} [delete]
func (h *CatalogHandler) DeleteMeasurementUnit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.repo.DeleteMeasurementUnit(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Measurement unit not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete measurement unit")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete measurement unit")
		return
	}

	c.Status(http.StatusNoContent)
}

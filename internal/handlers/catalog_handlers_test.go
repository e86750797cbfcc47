package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"pharmacy-inventory-service/internal/models"
)

func newCatalogTestRouter(repo *MockCatalogRepository) *gin.Engine {
	router := setupTestRouter()
	handler := NewCatalogHandler(repo, testLogger())

	router.GET("/categories", handler.ListCategories)
	router.POST("/categories", handler.CreateCategory)
	router.GET("/categories/:id", handler.GetCategory)
	router.PATCH("/categories/:id", handler.UpdateCategory)
	router.DELETE("/categories/:id", handler.DeleteCategory)
	router.GET("/ingredients", handler.ListIngredients)
	router.POST("/ingredients", handler.CreateIngredient)
	router.PATCH("/ingredients/:id", handler.UpdateIngredient)
	router.GET("/measurement-units", handler.ListMeasurementUnits)
	router.POST("/measurement-units", handler.CreateMeasurementUnit)
	return router
}

func TestListCategories_NameFilter(t *testing.T) {
	repo := new(MockCatalogRepository)
	router := newCatalogTestRouter(repo)

	categories := []models.Category{{ID: 1, Name: "Antibiotics"}}
	repo.On("ListCategories", mock.MatchedBy(func(name *string) bool {
		return name != nil && *name == "anti"
	})).Return(categories, nil)

	w := performRequest(router, "GET", "/categories?name=anti", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response models.CategoryListResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Data, 1)
	repo.AssertExpectations(t)
}

func TestCreateCategory_NameTooLong(t *testing.T) {
	repo := new(MockCatalogRepository)
	router := newCatalogTestRouter(repo)

	w := performRequest(router, "POST", "/categories", gin.H{
		"name": "A name well beyond the thirty character limit",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "CreateCategory", mock.Anything)
}

func TestUpdateCategory_NotFound(t *testing.T) {
	repo := new(MockCatalogRepository)
	router := newCatalogTestRouter(repo)

	repo.On("GetCategoryByID", uint(8)).Return(nil, gorm.ErrRecordNotFound)

	w := performRequest(router, "PATCH", "/categories/8", gin.H{"name": "Painkillers"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateIngredient_DefaultsToActive(t *testing.T) {
	repo := new(MockCatalogRepository)
	router := newCatalogTestRouter(repo)

	repo.On("CreateIngredient", mock.MatchedBy(func(i *models.Ingredient) bool {
		return i.Active != nil && *i.Active
	})).Return(nil)

	w := performRequest(router, "POST", "/ingredients", gin.H{"name": "Amoxicillin"})

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestListIngredients_InvalidActiveParam(t *testing.T) {
	repo := new(MockCatalogRepository)
	router := newCatalogTestRouter(repo)

	w := performRequest(router, "GET", "/ingredients?active=maybe", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "INVALID_PARAMETER", response.Error.Code)
	repo.AssertNotCalled(t, "ListIngredients", mock.Anything, mock.Anything)
}

func TestListIngredients_ActiveFilter(t *testing.T) {
	repo := new(MockCatalogRepository)
	router := newCatalogTestRouter(repo)

	ingredients := []models.Ingredient{{ID: 1, Name: "Amoxicillin"}}
	repo.On("ListIngredients", mock.Anything, mock.MatchedBy(func(active *bool) bool {
		return active != nil && *active
	})).Return(ingredients, nil)

	w := performRequest(router, "GET", "/ingredients?active=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestCreateMeasurementUnit_Success(t *testing.T) {
	repo := new(MockCatalogRepository)
	router := newCatalogTestRouter(repo)

	repo.On("CreateMeasurementUnit", mock.MatchedBy(func(u *models.MeasurementUnit) bool {
		return u.Name == "Milligram"
	})).Return(nil)

	w := performRequest(router, "POST", "/measurement-units", gin.H{
		"name":   "Milligram",
		"symbol": "mg",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestListMeasurementUnits_Success(t *testing.T) {
	repo := new(MockCatalogRepository)
	router := newCatalogTestRouter(repo)

	units := []models.MeasurementUnit{{ID: 1, Name: "Milligram"}, {ID: 2, Name: "Millilitre"}}
	repo.On("ListMeasurementUnits").Return(units, nil)

	w := performRequest(router, "GET", "/measurement-units", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response models.MeasurementUnitListResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response.Data, 2)
}

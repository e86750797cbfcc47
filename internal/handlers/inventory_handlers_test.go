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

// MockInventoryRepository is a mock implementation of InventoryRepositoryInterface
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) SearchLocations(req *models.SearchLocationsRequest) ([]models.Location, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockInventoryRepository) GetLocationByID(id uint) (*models.Location, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockInventoryRepository) CreateLocation(location *models.Location) error {
	args := m.Called(location)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateLocation(location *models.Location) error {
	args := m.Called(location)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeleteLocation(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockInventoryRepository) LocationExists(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) ListShelvesByLocation(locationID uint) ([]models.Shelf, error) {
	args := m.Called(locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Shelf), args.Error(1)
}

func (m *MockInventoryRepository) GetShelfByID(id uint) (*models.Shelf, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shelf), args.Error(1)
}

func (m *MockInventoryRepository) CreateShelf(shelf *models.Shelf) error {
	args := m.Called(shelf)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateShelf(shelf *models.Shelf) error {
	args := m.Called(shelf)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeleteShelf(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockInventoryRepository) ShelfExists(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) SearchBatches(req *models.SearchBatchesRequest) ([]models.Batch, int64, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Batch), args.Get(1).(int64), args.Error(2)
}

func (m *MockInventoryRepository) GetBatchByID(id uint) (*models.Batch, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Batch), args.Error(1)
}

func (m *MockInventoryRepository) CreateBatch(batch *models.Batch) error {
	args := m.Called(batch)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateBatch(batch *models.Batch) error {
	args := m.Called(batch)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeleteBatch(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockInventoryRepository) BatchExists(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) ListAllocationsByBatch(batchID uint) ([]models.BatchShelfAllocation, error) {
	args := m.Called(batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BatchShelfAllocation), args.Error(1)
}

func (m *MockInventoryRepository) GetAllocationByID(id uint) (*models.BatchShelfAllocation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchShelfAllocation), args.Error(1)
}

func (m *MockInventoryRepository) CreateAllocation(allocation *models.BatchShelfAllocation) error {
	args := m.Called(allocation)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateAllocation(allocation *models.BatchShelfAllocation) error {
	args := m.Called(allocation)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeleteAllocation(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListStockLevels(productID, locationID *uint) ([]models.StockLevel, error) {
	args := m.Called(productID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockLevel), args.Error(1)
}

func (m *MockInventoryRepository) GetStockLevelByID(id uint) (*models.StockLevel, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockLevel), args.Error(1)
}

func (m *MockInventoryRepository) UpsertStockLevel(level *models.StockLevel) (*models.StockLevel, error) {
	args := m.Called(level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockLevel), args.Error(1)
}

func (m *MockInventoryRepository) UpdateStockLevel(level *models.StockLevel) error {
	args := m.Called(level)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeleteStockLevel(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockInventoryRepository) ProductExists(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) SearchSuppliers(req *models.SearchSuppliersRequest) ([]models.Supplier, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Supplier), args.Error(1)
}

func (m *MockInventoryRepository) GetSupplierByID(id uint) (*models.Supplier, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Supplier), args.Error(1)
}

func (m *MockInventoryRepository) CreateSupplier(supplier *models.Supplier) error {
	args := m.Called(supplier)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateSupplier(supplier *models.Supplier) error {
	args := m.Called(supplier)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeleteSupplier(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func newInventoryTestRouter(repo *MockInventoryRepository) *gin.Engine {
	router := setupTestRouter()
	handler := NewInventoryHandler(repo, testPageConfig(), testLogger())

	router.GET("/locations", handler.SearchLocations)
	router.POST("/locations", handler.CreateLocation)
	router.GET("/locations/:id", handler.GetLocation)
	router.PATCH("/locations/:id", handler.UpdateLocation)
	router.DELETE("/locations/:id", handler.DeleteLocation)
	router.GET("/locations/:id/shelves", handler.ListLocationShelves)
	router.POST("/locations/:id/shelves", handler.CreateShelf)
	router.GET("/locations/:id/shelves/:shelfId", handler.GetShelf)
	router.PATCH("/locations/:id/shelves/:shelfId", handler.UpdateShelf)
	router.DELETE("/locations/:id/shelves/:shelfId", handler.DeleteShelf)
	router.GET("/batches", handler.SearchBatches)
	router.POST("/batches", handler.CreateBatch)
	router.GET("/batches/:id", handler.GetBatch)
	router.PATCH("/batches/:id", handler.UpdateBatch)
	router.DELETE("/batches/:id", handler.DeleteBatch)
	router.GET("/batches/:id/shelves", handler.ListBatchAllocations)
	router.POST("/batches/:id/shelves", handler.CreateAllocation)
	router.PATCH("/batches/:id/shelves/:allocationId", handler.UpdateAllocation)
	router.DELETE("/batches/:id/shelves/:allocationId", handler.DeleteAllocation)
	return router
}

// ===========================================
// Location Tests
// ===========================================

func TestSearchLocations_InvalidType(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	w := performRequest(router, "GET", "/locations?locationType=spaceship", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "INVALID_PARAMETER", response.Error.Code)
	repo.AssertNotCalled(t, "SearchLocations", mock.Anything)
}

func TestCreateLocation_DefaultsToActive(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	repo.On("CreateLocation", mock.MatchedBy(func(l *models.Location) bool {
		return l.Status == models.LocationStatusActive
	})).Return(nil)

	w := performRequest(router, "POST", "/locations", gin.H{
		"locationName": "Main warehouse",
		"locationType": "warehouse",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestCreateLocation_InvalidType(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	w := performRequest(router, "POST", "/locations", gin.H{
		"locationName": "Main warehouse",
		"locationType": "spaceship",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "CreateLocation", mock.Anything)
}

func TestCreateLocation_ParentNotFound(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	repo.On("LocationExists", uint(99)).Return(false, nil)

	w := performRequest(router, "POST", "/locations", gin.H{
		"locationName":     "Back room",
		"locationType":     "branch",
		"parentLocationId": 99,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Parent location not found", response.Error.Message)
	repo.AssertNotCalled(t, "CreateLocation", mock.Anything)
}

func TestUpdateLocation_NullClearsParent(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	parentID := uint(2)
	location := &models.Location{ID: 5, LocationName: "Back room", ParentLocationID: &parentID}
	repo.On("GetLocationByID", uint(5)).Return(location, nil)
	repo.On("UpdateLocation", mock.MatchedBy(func(l *models.Location) bool {
		return l.ParentLocationID == nil
	})).Return(nil)

	w := performRequest(router, "PATCH", "/locations/5", gin.H{"parentLocationId": nil})

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestUpdateLocation_OmittedParentUnchanged(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	parentID := uint(2)
	location := &models.Location{ID: 5, LocationName: "Back room", ParentLocationID: &parentID}
	repo.On("GetLocationByID", uint(5)).Return(location, nil)
	repo.On("UpdateLocation", mock.MatchedBy(func(l *models.Location) bool {
		return l.ParentLocationID != nil && *l.ParentLocationID == parentID && l.LocationName == "Renamed"
	})).Return(nil)

	w := performRequest(router, "PATCH", "/locations/5", gin.H{"locationName": "Renamed"})

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestDeleteLocation_Success(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	repo.On("DeleteLocation", uint(5)).Return(nil)

	w := performRequest(router, "DELETE", "/locations/5", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

// ===========================================
// Shelf Tests
// ===========================================

func TestGetShelf_WrongLocation(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	shelf := &models.Shelf{ID: 10, LocationID: 2}
	repo.On("GetShelfByID", uint(10)).Return(shelf, nil)

	w := performRequest(router, "GET", "/locations/1/shelves/10", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Shelf does not belong to location", response.Error.Message)
}

func TestCreateShelf_Success(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	repo.On("LocationExists", uint(1)).Return(true, nil)
	repo.On("CreateShelf", mock.MatchedBy(func(s *models.Shelf) bool {
		return s.LocationID == 1
	})).Return(nil)

	w := performRequest(router, "POST", "/locations/1/shelves", gin.H{"onHandQty": 50})

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestDeleteShelf_WrongLocation(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	shelf := &models.Shelf{ID: 10, LocationID: 2}
	repo.On("GetShelfByID", uint(10)).Return(shelf, nil)

	w := performRequest(router, "DELETE", "/locations/1/shelves/10", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertNotCalled(t, "DeleteShelf", mock.Anything)
}

// ===========================================
// Batch Tests
// ===========================================

func TestSearchBatches_InvalidStockType(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	w := performRequest(router, "GET", "/batches?stockType=liquid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "INVALID_PARAMETER", response.Error.Code)
}

func TestCreateBatch_DefaultsToAvailable(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	repo.On("ProductExists", uint(1)).Return(true, nil)
	repo.On("LocationExists", uint(2)).Return(true, nil)
	repo.On("CreateBatch", mock.MatchedBy(func(b *models.Batch) bool {
		return b.StockType == models.StockTypeAvailable && b.Quantity == 100
	})).Return(nil)

	w := performRequest(router, "POST", "/batches", gin.H{
		"productId":  1,
		"locationId": 2,
		"quantity":   100,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestCreateBatch_ProductNotFound(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	repo.On("ProductExists", uint(1)).Return(false, nil)

	w := performRequest(router, "POST", "/batches", gin.H{
		"productId":  1,
		"locationId": 2,
		"quantity":   100,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertNotCalled(t, "CreateBatch", mock.Anything)
}

func TestUpdateBatch_NullClearsParent(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	parentID := uint(3)
	batch := &models.Batch{ID: 7, ProductID: 1, LocationID: 2, Quantity: 50, ParentBatchID: &parentID}
	repo.On("GetBatchByID", uint(7)).Return(batch, nil)
	repo.On("UpdateBatch", mock.MatchedBy(func(b *models.Batch) bool {
		return b.ParentBatchID == nil
	})).Return(nil)

	w := performRequest(router, "PATCH", "/batches/7", gin.H{"parentBatchId": nil})

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestUpdateBatch_ParentNotFound(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	batch := &models.Batch{ID: 7, ProductID: 1, LocationID: 2, Quantity: 50}
	repo.On("GetBatchByID", uint(7)).Return(batch, nil)
	repo.On("BatchExists", uint(99)).Return(false, nil)

	w := performRequest(router, "PATCH", "/batches/7", gin.H{"parentBatchId": 99})

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertNotCalled(t, "UpdateBatch", mock.Anything)
}

// ===========================================
// Allocation Tests
// ===========================================

func TestCreateAllocation_Success(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	repo.On("BatchExists", uint(7)).Return(true, nil)
	repo.On("ShelfExists", uint(10)).Return(true, nil)
	repo.On("CreateAllocation", mock.MatchedBy(func(a *models.BatchShelfAllocation) bool {
		return a.BatchID == 7 && a.ShelfID == 10
	})).Return(nil)

	w := performRequest(router, "POST", "/batches/7/shelves", gin.H{"shelfId": 10, "quantity": 25})

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestUpdateAllocation_WrongBatch(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	allocation := &models.BatchShelfAllocation{ID: 20, BatchID: 8, ShelfID: 10}
	repo.On("GetAllocationByID", uint(20)).Return(allocation, nil)

	w := performRequest(router, "PATCH", "/batches/7/shelves/20", gin.H{"quantity": 30})

	assert.Equal(t, http.StatusNotFound, w.Code)
	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Allocation does not belong to batch", response.Error.Message)
	repo.AssertNotCalled(t, "UpdateAllocation", mock.Anything)
}

func TestDeleteAllocation_Success(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	allocation := &models.BatchShelfAllocation{ID: 20, BatchID: 7, ShelfID: 10}
	repo.On("GetAllocationByID", uint(20)).Return(allocation, nil)
	repo.On("DeleteAllocation", uint(20)).Return(nil)

	w := performRequest(router, "DELETE", "/batches/7/shelves/20", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}

func TestGetBatch_NotFound(t *testing.T) {
	repo := new(MockInventoryRepository)
	router := newInventoryTestRouter(repo)

	repo.On("GetBatchByID", uint(404)).Return(nil, gorm.ErrRecordNotFound)

	w := performRequest(router, "GET", "/batches/404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

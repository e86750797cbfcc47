package repository

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"pharmacy-inventory-service/internal/models"
)

func newCacheTestRepository(t *testing.T) (*CatalogRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewCatalogRepository(nil, client, logger), mr
}

// ===========================================
// Product Cache Tests
// ===========================================

func TestGetProductByID_ServedFromCache(t *testing.T) {
	repo, mr := newCacheTestRepository(t)

	cached := models.Product{
		ID:   5,
		Name: "Aspirin",
		Categories: []models.Category{
			{ID: 2, Name: "Analgesics"},
		},
	}
	data, err := json.Marshal(&cached)
	assert.NoError(t, err)
	assert.NoError(t, mr.Set("product:5", string(data)))

	// db is nil, so any miss would panic; a result proves the cache served
	product, err := repo.GetProductByID(5)
	assert.NoError(t, err)
	assert.Equal(t, "Aspirin", product.Name)
	assert.Len(t, product.Categories, 1)
}

func TestInvalidateProductCaches_FlushesEveryProductKey(t *testing.T) {
	repo, mr := newCacheTestRepository(t)

	assert.NoError(t, mr.Set("product:1", "{}"))
	assert.NoError(t, mr.Set("product:2", "{}"))
	assert.NoError(t, mr.Set(measurementUnitsCacheKey, "[]"))

	repo.invalidateProductCaches()

	assert.False(t, mr.Exists("product:1"))
	assert.False(t, mr.Exists("product:2"))
	assert.True(t, mr.Exists(measurementUnitsCacheKey))
}

func TestInvalidateProduct_RemovesSingleKey(t *testing.T) {
	repo, mr := newCacheTestRepository(t)

	assert.NoError(t, mr.Set("product:1", "{}"))
	assert.NoError(t, mr.Set("product:2", "{}"))

	repo.invalidateProduct(1)

	assert.False(t, mr.Exists("product:1"))
	assert.True(t, mr.Exists("product:2"))
}

// ===========================================
// Ingredient Link Merge Tests
// ===========================================

func TestMergedIngredientLink_NewPair(t *testing.T) {
	link := mergedIngredientLink(nil, 1, 2, 500)

	assert.Equal(t, uint(0), link.ID)
	assert.Equal(t, uint(1), link.ProductID)
	assert.Equal(t, uint(2), link.IngredientID)
	assert.Equal(t, 500, link.Amount)
}

func TestMergedIngredientLink_ExistingPairKeepsIdentity(t *testing.T) {
	existing := &models.ProductIngredient{ID: 7, ProductID: 1, IngredientID: 2, Amount: 100}

	link := mergedIngredientLink(existing, 1, 2, 500)

	assert.Equal(t, uint(7), link.ID)
	assert.Equal(t, 500, link.Amount)
	assert.Equal(t, 100, existing.Amount)
}

func TestMergedIngredientLink_RepeatedMergeYieldsOneRow(t *testing.T) {
	first := mergedIngredientLink(nil, 1, 2, 100)
	first.ID = 7

	second := mergedIngredientLink(&first, 1, 2, 250)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 250, second.Amount)
}

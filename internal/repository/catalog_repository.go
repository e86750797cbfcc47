package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharmacy-inventory-service/internal/models"
)

const (
	productCacheKeyPrefix    = "product:"
	measurementUnitsCacheKey = "measurement_units:all"
	catalogCacheTTL          = 5 * time.Minute
)

// CatalogRepositoryInterface defines the catalog data access contract
type CatalogRepositoryInterface interface {
	SearchProducts(req *models.SearchProductsRequest) ([]models.Product, int64, error)
	GetProductByID(id uint) (*models.Product, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(product *models.Product) error
	DeleteProduct(id uint) error

	GetProductCategories(productID uint) ([]models.Category, error)
	AddProductCategory(productID, categoryID uint) error
	RemoveProductCategory(productID, categoryID uint) error

	GetProductIngredients(productID uint) ([]models.ProductIngredient, error)
	UpsertProductIngredient(productID, ingredientID uint, amount int) (*models.ProductIngredient, error)
	RemoveProductIngredient(productID, ingredientID uint) error

	ListCategories(name *string) ([]models.Category, error)
	GetCategoryByID(id uint) (*models.Category, error)
	CreateCategory(category *models.Category) error
	UpdateCategory(category *models.Category) error
	DeleteCategory(id uint) error

	ListIngredients(name *string, active *bool) ([]models.Ingredient, error)
	GetIngredientByID(id uint) (*models.Ingredient, error)
	CreateIngredient(ingredient *models.Ingredient) error
	UpdateIngredient(ingredient *models.Ingredient) error
	DeleteIngredient(id uint) error

	ListMeasurementUnits() ([]models.MeasurementUnit, error)
	GetMeasurementUnitByID(id uint) (*models.MeasurementUnit, error)
	CreateMeasurementUnit(unit *models.MeasurementUnit) error
	UpdateMeasurementUnit(unit *models.MeasurementUnit) error
	DeleteMeasurementUnit(id uint) error

	RedisHealth(ctx context.Context) error
}

type CatalogRepository struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *logrus.Entry
}

var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

func NewCatalogRepository(db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		redis:  redisClient,
		logger: logger.WithField("component", "catalog-repository"),
	}
}

// applyProductFilters chains the optional search criteria onto the query.
// Absent criteria leave the query untouched (match all).
func applyProductFilters(query *gorm.DB, req *models.SearchProductsRequest) *gorm.DB {
	if req.Filter != nil && strings.TrimSpace(*req.Filter) != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(*req.Filter)) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.barcode) LIKE ? OR LOWER(products.sku) LIKE ?",
			pattern, pattern, pattern)
	}

	if req.CategoryID != nil {
		// Distinct: the join can produce repeated rows for multi-category products
		query = query.
			Joins("JOIN products_categories pc ON pc.product_id = products.id").
			Where("pc.category_id = ?", *req.CategoryID).
			Distinct("products.*")
	}

	if req.IsDrug != nil {
		query = query.Where("products.is_drug = ?", *req.IsDrug)
	}

	if req.ControlledSubstance != nil {
		query = query.Where("products.controlled_substance = ?", *req.ControlledSubstance)
	}

	return query
}

func (r *CatalogRepository) SearchProducts(req *models.SearchProductsRequest) ([]models.Product, int64, error) {
	order, err := ProductOrderClause(req.SortBy, req.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	query := applyProductFilters(r.db.Model(&models.Product{}), req)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err = query.
		Order(order).
		Offset(req.Page * req.Size).
		Limit(req.Size).
		Preload("MeasurementUnit").
		Preload("Categories").
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}

	return products, total, nil
}

func (r *CatalogRepository) GetProductByID(id uint) (*models.Product, error) {
	cacheKey := fmt.Sprintf("%s%d", productCacheKeyPrefix, id)

	if r.redis != nil {
		cached, err := r.redis.Get(context.Background(), cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	err := r.db.
		Preload("MeasurementUnit").
		Preload("Categories").
		Preload("Ingredients.Ingredient").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&product); err == nil {
			if err := r.redis.Set(context.Background(), cacheKey, data, catalogCacheTTL).Err(); err != nil {
				r.logger.WithError(err).Debug("Failed to cache product")
			}
		}
	}

	return &product, nil
}

func (r *CatalogRepository) CreateProduct(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *CatalogRepository) UpdateProduct(product *models.Product) error {
	if err := r.db.Omit(clause.Associations).Save(product).Error; err != nil {
		return err
	}
	r.invalidateProduct(product.ID)
	return nil
}

// DeleteProduct removes the product together with its category links and
// ingredient links in one transaction.
func (r *CatalogRepository) DeleteProduct(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}

		if err := tx.Exec("DELETE FROM products_categories WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return err
	}
	r.invalidateProduct(id)
	return nil
}

func (r *CatalogRepository) GetProductCategories(productID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.
		Joins("JOIN products_categories pc ON pc.category_id = categories.id").
		Where("pc.product_id = ?", productID).
		Order("categories.id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product categories: %w", err)
	}
	return categories, nil
}

// AddProductCategory links a category to a product. Adding an existing link
// is a no-op, not an error.
func (r *CatalogRepository) AddProductCategory(productID, categoryID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("products_categories").
			Where("product_id = ? AND category_id = ?", productID, categoryID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Exec("INSERT INTO products_categories (product_id, category_id) VALUES (?, ?)",
			productID, categoryID).Error
	})
	if err != nil {
		return err
	}
	r.invalidateProduct(productID)
	return nil
}

// RemoveProductCategory unlinks a category. A missing link is reported as
// not found rather than silently ignored.
func (r *CatalogRepository) RemoveProductCategory(productID, categoryID uint) error {
	result := r.db.Exec("DELETE FROM products_categories WHERE product_id = ? AND category_id = ?",
		productID, categoryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateProduct(productID)
	return nil
}

func (r *CatalogRepository) GetProductIngredients(productID uint) ([]models.ProductIngredient, error) {
	var links []models.ProductIngredient
	err := r.db.
		Preload("Ingredient").
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product ingredients: %w", err)
	}
	return links, nil
}

// mergedIngredientLink returns the row to persist for the (product,
// ingredient) pair: a fresh link when none exists yet, otherwise the
// existing row with its amount replaced.
func mergedIngredientLink(existing *models.ProductIngredient, productID, ingredientID uint, amount int) models.ProductIngredient {
	if existing == nil {
		return models.ProductIngredient{
			ProductID:    productID,
			IngredientID: ingredientID,
			Amount:       amount,
		}
	}
	merged := *existing
	merged.Amount = amount
	return merged
}

// UpsertProductIngredient creates the (product, ingredient) link or updates
// the amount of an existing one; the pair is never duplicated.
func (r *CatalogRepository) UpsertProductIngredient(productID, ingredientID uint, amount int) (*models.ProductIngredient, error) {
	var link models.ProductIngredient
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.ProductIngredient
		err := tx.Where("product_id = ? AND ingredient_id = ?", productID, ingredientID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			link = mergedIngredientLink(nil, productID, ingredientID, amount)
			return tx.Create(&link).Error
		}
		if err != nil {
			return err
		}
		link = mergedIngredientLink(&existing, productID, ingredientID, amount)
		return tx.Save(&link).Error
	})
	if err != nil {
		return nil, err
	}

	if err := r.db.Preload("Ingredient").First(&link, link.ID).Error; err != nil {
		return nil, err
	}
	r.invalidateProduct(productID)
	return &link, nil
}

func (r *CatalogRepository) RemoveProductIngredient(productID, ingredientID uint) error {
	result := r.db.
		Where("product_id = ? AND ingredient_id = ?", productID, ingredientID).
		Delete(&models.ProductIngredient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateProduct(productID)
	return nil
}

func (r *CatalogRepository) ListCategories(name *string) ([]models.Category, error) {
	query := r.db.Model(&models.Category{})
	if name != nil && strings.TrimSpace(*name) != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(*name))+"%")
	}

	var categories []models.Category
	if err := query.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *CatalogRepository) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepository) CreateCategory(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *CatalogRepository) UpdateCategory(category *models.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		return err
	}
	r.invalidateProductCaches()
	return nil
}

func (r *CatalogRepository) DeleteCategory(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM products_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
	if err != nil {
		return err
	}
	r.invalidateProductCaches()
	return nil
}

func (r *CatalogRepository) ListIngredients(name *string, active *bool) ([]models.Ingredient, error) {
	query := r.db.Model(&models.Ingredient{})
	if name != nil && strings.TrimSpace(*name) != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(*name))+"%")
	}
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}

	var ingredients []models.Ingredient
	if err := query.Order("id ASC").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (r *CatalogRepository) GetIngredientByID(id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *CatalogRepository) CreateIngredient(ingredient *models.Ingredient) error {
	return r.db.Create(ingredient).Error
}

func (r *CatalogRepository) UpdateIngredient(ingredient *models.Ingredient) error {
	if err := r.db.Save(ingredient).Error; err != nil {
		return err
	}
	r.invalidateProductCaches()
	return nil
}

// DeleteIngredient removes the ingredient and its product links
func (r *CatalogRepository) DeleteIngredient(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := tx.First(&ingredient, id).Error; err != nil {
			return err
		}
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.ProductIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Ingredient{}, id).Error
	})
	if err != nil {
		return err
	}
	r.invalidateProductCaches()
	return nil
}

func (r *CatalogRepository) ListMeasurementUnits() ([]models.MeasurementUnit, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(context.Background(), measurementUnitsCacheKey).Result()
		if err == nil {
			var units []models.MeasurementUnit
			if err := json.Unmarshal([]byte(cached), &units); err == nil {
				return units, nil
			}
		}
	}

	var units []models.MeasurementUnit
	if err := r.db.Order("id ASC").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("failed to list measurement units: %w", err)
	}

	if r.redis != nil {
		if data, err := json.Marshal(units); err == nil {
			if err := r.redis.Set(context.Background(), measurementUnitsCacheKey, data, catalogCacheTTL).Err(); err != nil {
				r.logger.WithError(err).Debug("Failed to cache measurement units")
			}
		}
	}

	return units, nil
}

func (r *CatalogRepository) GetMeasurementUnitByID(id uint) (*models.MeasurementUnit, error) {
	var unit models.MeasurementUnit
	if err := r.db.First(&unit, id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *CatalogRepository) CreateMeasurementUnit(unit *models.MeasurementUnit) error {
	if err := r.db.Create(unit).Error; err != nil {
		return err
	}
	r.invalidateMeasurementUnits()
	return nil
}

func (r *CatalogRepository) UpdateMeasurementUnit(unit *models.MeasurementUnit) error {
	if err := r.db.Save(unit).Error; err != nil {
		return err
	}
	r.invalidateMeasurementUnits()
	return nil
}

func (r *CatalogRepository) DeleteMeasurementUnit(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var unit models.MeasurementUnit
		if err := tx.First(&unit, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MeasurementUnit{}, id).Error
	})
	if err != nil {
		return err
	}
	r.invalidateMeasurementUnits()
	return nil
}

func (r *CatalogRepository) RedisHealth(ctx context.Context) error {
	if r.redis == nil {
		return errors.New("redis not configured")
	}
	return r.redis.Ping(ctx).Err()
}

func (r *CatalogRepository) invalidateProduct(id uint) {
	if r.redis == nil {
		return
	}
	key := fmt.Sprintf("%s%d", productCacheKeyPrefix, id)
	if err := r.redis.Del(context.Background(), key).Err(); err != nil {
		r.logger.WithError(err).Debug("Failed to invalidate product cache")
	}
}

// invalidateProductCaches flushes every cached product. Category and
// ingredient writes go through here because cached products embed both
// association lists.
func (r *CatalogRepository) invalidateProductCaches() {
	if r.redis == nil {
		return
	}
	ctx := context.Background()
	iter := r.redis.Scan(ctx, 0, productCacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.redis.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.WithError(err).Debug("Failed to invalidate product cache")
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.WithError(err).Debug("Failed to scan product cache keys")
	}
}

func (r *CatalogRepository) invalidateMeasurementUnits() {
	if r.redis == nil {
		return
	}
	if err := r.redis.Del(context.Background(), measurementUnitsCacheKey).Err(); err != nil {
		r.logger.WithError(err).Debug("Failed to invalidate measurement units cache")
	}
}

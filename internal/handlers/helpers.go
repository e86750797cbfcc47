package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"pharmacy-inventory-service/internal/config"
	"pharmacy-inventory-service/internal/middleware"
	"pharmacy-inventory-service/internal/models"
)

func stringPtr(s string) *string {
	return &s
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
		RequestID: middleware.GetRequestID(c),
	})
}

// respondBindingError maps a ShouldBind failure to a 400 with per-field
// details when the failure came from struct validation
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]models.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, models.FieldError{
				Field:   jsonFieldName(fe.Field()),
				Message: validationMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Request validation failed",
				Fields:  fields,
			},
			RequestID: middleware.GetRequestID(c),
		})
		return
	}

	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
}

// jsonFieldName lower-cases the struct field's first rune to match the
// camelCase JSON tags used across the models
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	if field == "SKU" {
		return "sku"
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// parseIDParam parses a positive integer path parameter, responding with a
// 400 itself when the value is malformed
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", fmt.Sprintf("Invalid %s: %s", name, raw))
		return 0, false
	}
	return uint(id), true
}

// normalizePage clamps page and size to the configured bounds. Page is
// 0-based.
func normalizePage(page, size int, cfg *config.Config) (int, int) {
	defaultSize := cfg.DefaultPageSize
	if defaultSize <= 0 {
		defaultSize = 20
	}
	maxSize := cfg.MaxPageSize
	if maxSize <= 0 {
		maxSize = 100
	}

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

func paginationInfo(page, size int, total int64) *models.PaginationInfo {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &models.PaginationInfo{
		Page:        page,
		Size:        size,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page+1 < totalPages,
		HasPrevious: page > 0,
	}
}

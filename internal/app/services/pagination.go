package services

import (
	stderrors "errors"
	"strings"

	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
	"gorm.io/gorm"
)

// paginate counts and fetches one page of query, ordered by order. Preloads
// are applied to the fetch only.
func paginate[T any](query *gorm.DB, pagination *models.PaginationRequest, order string, what string, preloads ...string) (*models.Pagination[[]T], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Limit > 100 {
		pagination.Limit = 100
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	var model T
	var totalItems int64
	if err := query.Session(&gorm.Session{}).Model(&model).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count "+what)
	}

	items := make([]T, 0)
	fetch := query.Session(&gorm.Session{})
	for _, preload := range preloads {
		fetch = fetch.Preload(preload)
	}
	err := fetch.
		Order(order).
		Limit(pagination.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get "+what)
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]T]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      items,
	}, nil
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

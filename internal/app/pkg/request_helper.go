package pkg

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/feastly-core/internal/app/models"
)

// ParsePagination reads ?page and ?limit, ignoring malformed values.
func ParsePagination(c *fiber.Ctx) *models.PaginationRequest {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		limit = 10
	}

	return &models.PaginationRequest{
		Page:  page,
		Limit: limit,
	}
}

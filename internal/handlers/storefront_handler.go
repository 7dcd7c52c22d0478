package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/developia-II/marketplace-catalog/internal/services/catalog"
	"github.com/developia-II/marketplace-catalog/utils"
	"github.com/gin-gonic/gin"
)

// FeaturedCount is how many products the home page shows.
const FeaturedCount = 4

type StorefrontHandler struct {
	Service catalog.Service
	Timeout time.Duration
}

func NewStorefrontHandler(svc catalog.Service, timeout time.Duration) *StorefrontHandler {
	return &StorefrontHandler{Service: svc, Timeout: timeout}
}

func (h *StorefrontHandler) Home(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	categories, err := h.Service.ListCategories(ctx)
	if err != nil {
		respondError(c, err, "category", "fetch categories")
		return
	}
	featured, err := h.Service.FeaturedProducts(ctx, FeaturedCount)
	if err != nil {
		respondError(c, err, "product", "fetch featured products")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("home fetched successfully", gin.H{
		"categories": categoryViews(categories),
		"featured":   productViews(featured),
	}))
}

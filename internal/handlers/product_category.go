package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/developia-II/marketplace-catalog/internal/models"
	"github.com/developia-II/marketplace-catalog/internal/services/catalog"
	"github.com/developia-II/marketplace-catalog/utils"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	Service catalog.Service
	Timeout time.Duration
}

func NewCategoryHandler(svc catalog.Service, timeout time.Duration) *CategoryHandler {
	return &CategoryHandler{Service: svc, Timeout: timeout}
}

func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	categories, err := h.Service.ListCategories(ctx)
	if err != nil {
		respondError(c, err, "category", "fetch categories")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("categories fetched successfully", gin.H{"categories": categoryViews(categories)}))
}

// GetCategoryPage returns a category with its products. An unknown id still
// yields the products filed under it, with a null category.
func (h *CategoryHandler) GetCategoryPage(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	var view *CategoryView
	category, err := h.Service.GetCategory(ctx, id)
	switch {
	case err == nil:
		v := categoryView(category)
		view = &v
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrInvalidID):
		// left null
	default:
		respondError(c, err, "category", "fetch category")
		return
	}

	products, err := h.Service.ListProductsByCategory(ctx, id)
	if err != nil {
		respondError(c, err, "category", "fetch category products")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("category fetched successfully", gin.H{
		"category": view,
		"products": productViews(products),
	}))
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	id, err := h.Service.CreateCategory(ctx, input)
	if err != nil {
		respondError(c, err, "category", "create category")
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("category created successfully", gin.H{"id": id}))
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var patch models.CategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.UpdateCategory(ctx, c.Param("id"), patch); err != nil {
		respondError(c, err, "category", "update category")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("category updated successfully", nil))
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteCategory(ctx, c.Param("id")); err != nil {
		respondError(c, err, "category", "delete category")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("category deleted successfully", nil))
}

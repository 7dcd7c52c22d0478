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

type ProductHandler struct {
	Service catalog.Service
	Timeout time.Duration
}

func NewProductHandler(svc catalog.Service, timeout time.Duration) *ProductHandler {
	return &ProductHandler{Service: svc, Timeout: timeout}
}

// FetchProducts lists every product, or only those of ?categoryId= when set.
func (h *ProductHandler) FetchProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	var (
		products []models.Product
		err      error
	)
	if categoryID := c.Query("categoryId"); categoryID != "" {
		products, err = h.Service.ListProductsByCategory(ctx, categoryID)
	} else {
		products, err = h.Service.ListProducts(ctx)
	}
	if err != nil {
		respondError(c, err, "product", "fetch products")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", gin.H{
		"products": productViews(products),
	}))
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.SearchProducts(ctx, query)
	if err != nil {
		respondError(c, err, "product", "search products")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", gin.H{
		"query":    query,
		"products": productViews(products),
	}))
}

// FetchProductDetail returns the product page: the product, its category
// (null once the category is gone) and whether the seller can be contacted.
func (h *ProductHandler) FetchProductDetail(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	product, err := h.Service.GetProduct(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "product", "fetch product")
		return
	}

	var category *CategoryView
	cat, err := h.Service.GetCategory(ctx, product.CategoryID)
	switch {
	case err == nil:
		v := categoryView(cat)
		category = &v
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrInvalidID):
		// orphaned product
	default:
		respondError(c, err, "category", "fetch product category")
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("product fetched successfully", gin.H{
		"product":    productView(product),
		"category":   category,
		"hasContact": product.HasContact(),
	}))
}

/* ------------------ Dashboard ------------------ */

func (h *ProductHandler) GetDashboardProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	products, err := h.Service.ListProducts(ctx)
	if err != nil {
		respondError(c, err, "product", "fetch products")
		return
	}
	categories, err := h.Service.ListCategories(ctx)
	if err != nil {
		respondError(c, err, "category", "fetch categories")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", gin.H{
		"products": dashboardProducts(products, categories),
	}))
}

func (h *ProductHandler) GetProductById(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	product, err := h.Service.GetProduct(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "product", "fetch product")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product fetched successfully", gin.H{
		"product": productView(product),
	}))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json body"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	id, err := h.Service.CreateProduct(ctx, input)
	if err != nil {
		respondError(c, err, "product", "create product")
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("product created successfully", gin.H{"id": id}))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json body"))
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.UpdateProduct(ctx, c.Param("id"), patch); err != nil {
		respondError(c, err, "product", "update product")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product updated successfully", nil))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteProduct(ctx, c.Param("id")); err != nil {
		respondError(c, err, "product", "delete product")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product deleted successfully", nil))
}

package handlers

import (
	"net/http"
	"time"

	"github.com/developia-II/marketplace-catalog/internal/services/catalog"
	"github.com/developia-II/marketplace-catalog/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Dependencies is what the routes are served from. A nil Service means the
// store could not be reached; a nil Uploader disables image uploads.
type Dependencies struct {
	Service        catalog.Service
	Uploader       ImageUploader
	ServiceName    string
	RequestTimeout time.Duration
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	logrus.Info("Setting up routes...")

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Server is running!",
			"status":  "ok",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		if deps.Service == nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"service": deps.ServiceName,
		})
	})

	if deps.Service == nil {
		logrus.Warn("Database not connected - running with limited functionality")
		router.Any("/api/*path", func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse(
				"The server is running but could not connect to the database. Please check server logs.",
			))
		})
		return
	}

	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	storefrontHandler := NewStorefrontHandler(deps.Service, timeout)
	categoryHandler := NewCategoryHandler(deps.Service, timeout)
	productHandler := NewProductHandler(deps.Service, timeout)
	uploadHandler := NewUploadHandler(deps.Uploader, timeout)

	api := router.Group("/api/v1")
	{
		// Storefront Routes
		api.GET("/storefront/home", storefrontHandler.Home)
		api.GET("/categories", categoryHandler.GetAllCategories)
		api.GET("/categories/:id/products", categoryHandler.GetCategoryPage)

		products := api.Group("/products")
		{
			products.GET("", productHandler.FetchProducts)
			products.GET("/search", productHandler.SearchProducts)
			products.GET("/:id", productHandler.FetchProductDetail)
		}

		// Dashboard Routes
		dashboard := api.Group("/dashboard")
		{
			categories := dashboard.Group("/categories")
			{
				categories.POST("", categoryHandler.CreateCategory)
				categories.PATCH("/:id", categoryHandler.UpdateCategory)
				categories.DELETE("/:id", categoryHandler.DeleteCategory)
			}

			productsAdmin := dashboard.Group("/products")
			{
				productsAdmin.GET("", productHandler.GetDashboardProducts)
				productsAdmin.POST("", productHandler.CreateProduct)
				productsAdmin.GET("/:id", productHandler.GetProductById)
				productsAdmin.PATCH("/:id", productHandler.UpdateProduct)
				productsAdmin.DELETE("/:id", productHandler.DeleteProduct)
			}

			// Media Routes
			dashboard.POST("/uploads", uploadHandler.UploadImage)
		}
	}
}

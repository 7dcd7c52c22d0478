package handlers

import (
	"errors"
	"net/http"

	"github.com/developia-II/marketplace-catalog/internal/services/catalog"
	"github.com/developia-II/marketplace-catalog/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps a catalog error onto the response envelope. resource
// names the thing that was looked up, action what the handler was doing.
func respondError(c *gin.Context, err error, resource, action string) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
	case errors.Is(err, catalog.ErrInvalidID):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("invalid "+resource+" id"))
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, utils.ErrorResponse(resource+" not found"))
	case errors.Is(err, catalog.ErrPermissionDenied):
		logrus.WithError(err).Error("Store rejected request: missing permissions")
		c.JSON(http.StatusForbidden, utils.ErrorResponse(err.Error()))
	default:
		_ = c.Error(err)
		logrus.WithError(err).Errorf("Failed to %s", action)
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("failed to "+action))
	}
}

package catalog

import (
	"errors"
	"net/http"

	"carexyz/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog Catalog
}

func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// @Summary      List services
// @Description  Returns every active caregiving service.
// @Tags         services
// @Produce      json
// @Success      200 {array} catalog.Service
// @Failure      500 {object} api.ErrorResponse
// @Router       /services [get]
func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, services)
}

// @Summary      Get service
// @Tags         services
// @Produce      json
// @Param        serviceID path string true "Service ID"
// @Success      200 {object} catalog.Service
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /services/{serviceID} [get]
func (h *Handler) GetService(c *gin.Context) {
	svc, err := h.catalog.Lookup(c.Request.Context(), c.Param("serviceID"))
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Service not found", Code: "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch service"})
		return
	}

	c.JSON(http.StatusOK, svc)
}

// @Summary      Create a service
// @Description  Admin-only: add a caregiving service to the catalog
// @Tags         admin,services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.CreateServiceRequest true "Service payload"
// @Success      201 {object} catalog.Service
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/services [post]
func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	svc, err := h.catalog.CreateService(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrServiceExists) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Service already exists", Code: "conflict"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, svc)
}

// @Summary      Activate or retire a service
// @Tags         admin,services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        serviceID path string true "Service ID"
// @Param        request body catalog.SetActiveRequest true "Active flag"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/services/{serviceID}/active [put]
func (h *Handler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: "invalid_input"})
		return
	}

	if err := h.catalog.SetActive(c.Request.Context(), c.Param("serviceID"), *req.IsActive); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Service not found", Code: "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update service"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Service updated"})
}

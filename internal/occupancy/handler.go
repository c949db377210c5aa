package occupancy

import (
	"errors"
	"net/http"

	"pbgym/internal/api"
	"pbgym/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Register a badge scan
// @Description  Station endpoint: a single scan toggles the user between inside and outside.
// @Tags         occupancy
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body occupancy.ScanRequest true "Scan payload"
// @Success      200 {object} occupancy.ScanResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /scan [post]
func (h *Handler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationError(err))
		return
	}

	result, err := h.service.RegisterAction(c.Request.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrWorkerNotScannable), errors.Is(err, ErrNoActivePass):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to register scan"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Current occupancy
// @Description  How many people are inside right now.
// @Tags         occupancy
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.CountResponse
// @Router       /occupancy [get]
func (h *Handler) Count(c *gin.Context) {
	c.JSON(http.StatusOK, api.CountResponse{Count: h.service.CurrentCount()})
}

// @Summary      My visit history
// @Tags         occupancy
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} occupancy.GymEntry
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /me/visits [get]
func (h *Handler) MyVisits(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	visits, err := h.service.ListVisits(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch visits"})
		return
	}

	c.JSON(http.StatusOK, visits)
}

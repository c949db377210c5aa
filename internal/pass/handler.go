package pass

import (
	"database/sql"
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

// @Summary      Purchase a pass
// @Description  Buys a membership pass for the authenticated member. The first month is charged immediately.
// @Tags         passes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body pass.PurchaseRequest true "Purchase payload"
// @Success      201 {object} pass.Pass
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /passes [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationError(err))
		return
	}

	created, err := h.service.CreatePass(c.Request.Context(), userID, req.OfferID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMemberNotFound), errors.Is(err, ErrOfferNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrActivePassExists):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrOfferNotActive), errors.Is(err, ErrNoPaymentMethod):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrPaymentFailed):
			c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to purchase pass"})
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// @Summary      Get my active pass
// @Tags         passes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} pass.Pass
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /passes/me [get]
func (h *Handler) GetMyPass(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	p, err := h.service.GetActiveForMember(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No active pass"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch pass"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// @Summary      Get my pass history
// @Tags         passes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} pass.HistoricalPass
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /passes/me/history [get]
func (h *Handler) GetMyPassHistory(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	history, err := h.service.ListHistoryForMember(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch pass history"})
		return
	}

	c.JSON(http.StatusOK, history)
}

package offer

import (
	"errors"
	"net/http"
	"strconv"

	"pbgym/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Create an offer
// @Description  Admin-only: create a new membership offer
// @Tags         admin,offers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body offer.CreateOfferRequest true "Offer payload"
// @Success      201 {object} offer.Offer
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/offers [post]
func (h *Handler) CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.NewValidationError(err))
		return
	}

	offer, err := h.service.CreateOffer(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create offer"})
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// @Summary      List active offers
// @Tags         offers
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} offer.Offer
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /offers [get]
func (h *Handler) ListOffers(c *gin.Context) {
	offers, err := h.service.ListActiveOffers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch offers"})
		return
	}

	c.JSON(http.StatusOK, offers)
}

// @Summary      Deactivate an offer
// @Description  Admin-only: withdraw an offer from sale. Existing passes keep running.
// @Tags         admin,offers
// @Produce      json
// @Security     BearerAuth
// @Param        offerID path int true "Offer ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/offers/{offerID} [delete]
func (h *Handler) DeactivateOffer(c *gin.Context) {
	offerID, err := strconv.Atoi(c.Param("offerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid offer ID"})
		return
	}

	if err := h.service.DeactivateOffer(c.Request.Context(), offerID); err != nil {
		if errors.Is(err, ErrOfferNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Offer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to deactivate offer"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Offer deactivated"})
}

package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibrisacil/classifieds/api"
	gallerydomain "github.com/kibrisacil/classifieds/gallery/domain"
	"github.com/kibrisacil/classifieds/listing/application"
	"github.com/kibrisacil/classifieds/listing/domain"
)

// OfferHandler serves the public submission endpoint and the admin offer
// workflow.
type OfferHandler struct {
	service *application.OfferService
}

// Submit accepts a public sell-to-us offer with base64 images.
func (h *OfferHandler) Submit(c *gin.Context) {
	var req api.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	offer := &domain.Offer{
		Kind:          domain.OfferKind(req.Kind),
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		Province:      req.Province,
		District:      req.District,
		ExpectedPrice: req.ExpectedPrice,
		Currency:      req.Currency,
	}

	candidates, ok := decodePayload(c, req.Images)
	if !ok {
		return
	}

	images, err := h.service.Submit(c.Request.Context(), offer, candidates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toAPI(offer, images))
}

func (h *OfferHandler) List(c *gin.Context) {
	offers, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]api.Offer, 0, len(offers))
	for _, o := range offers {
		out = append(out, h.toAPI(o, nil))
	}

	c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) Get(c *gin.Context) {
	offer, images, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toAPI(offer, images))
}

// Deactivate soft-deletes an offer.
func (h *OfferHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Respond records an admin reply to an offer.
func (h *OfferHandler) Respond(c *gin.Context) {
	var req api.OfferResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	resp := &domain.OfferResponse{
		Message:      req.Message,
		OfferedPrice: req.OfferedPrice,
		Currency:     req.Currency,
	}

	if err := h.service.Respond(c.Request.Context(), c.Param("id"), resp); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.OfferResponse{
		ID:           resp.ID,
		OfferID:      resp.OfferID,
		Message:      resp.Message,
		OfferedPrice: resp.OfferedPrice,
		Currency:     resp.Currency,
		CreatedAt:    resp.CreatedAt,
	})
}

func (h *OfferHandler) Responses(c *gin.Context) {
	responses, err := h.service.Responses(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]api.OfferResponse, 0, len(responses))
	for _, resp := range responses {
		out = append(out, api.OfferResponse{
			ID:           resp.ID,
			OfferID:      resp.OfferID,
			Message:      resp.Message,
			OfferedPrice: resp.OfferedPrice,
			Currency:     resp.Currency,
			CreatedAt:    resp.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

// UpdateImageFlags patches one offer image's is_cover / is_active flags.
func (h *OfferHandler) UpdateImageFlags(c *gin.Context) {
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	var patch api.ImageFlagsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	images, err := h.service.UpdateImageFlags(c.Request.Context(), c.Param("id"), imageID, patch.IsCover, patch.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAPIImages(images, h.url))
}

func (h *OfferHandler) DeleteImage(c *gin.Context) {
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), c.Param("id"), imageID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OfferHandler) url(img *gallerydomain.Image) string {
	return h.service.ImageURL(img)
}

func (h *OfferHandler) toAPI(o *domain.Offer, images []*gallerydomain.Image) api.Offer {
	out := api.Offer{
		ID:            o.ID,
		Kind:          string(o.Kind),
		FullName:      o.FullName,
		Phone:         o.Phone,
		Email:         o.Email,
		Province:      o.Province,
		District:      o.District,
		ExpectedPrice: o.ExpectedPrice,
		Currency:      o.Currency,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}

	if len(images) > 0 {
		out.Images = toAPIImages(images, h.url)
	}

	return out
}

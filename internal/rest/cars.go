package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kibrisacil/classifieds/api"
	galleryapp "github.com/kibrisacil/classifieds/gallery/application"
	gallerydomain "github.com/kibrisacil/classifieds/gallery/domain"
	"github.com/kibrisacil/classifieds/listing/application"
	"github.com/kibrisacil/classifieds/listing/domain"
)

// CarHandler serves the admin and public car surfaces. Car clients send
// images as base64 payloads in the JSON body.
type CarHandler struct {
	service *application.CarService
}

func (h *CarHandler) Create(c *gin.Context) {
	var req api.CarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	car := carFromRequest(0, req.Title, req.Brand, req.Series, req.ModelYear, req.Price, req.Currency, req.FuelType, req.GearType, req.IsActive)

	candidates, ok := decodePayload(c, req.Images)
	if !ok {
		return
	}

	images, err := h.service.Create(c.Request.Context(), car, candidates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toAPI(car, images))
}

// Update rewrites a car's fields. A present images list, even an empty
// one, replaces the entire gallery; an absent key leaves images untouched.
func (h *CarHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req api.CarUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	car := carFromRequest(id, req.Title, req.Brand, req.Series, req.ModelYear, req.Price, req.Currency, req.FuelType, req.GearType, req.IsActive)

	var candidates []gallerydomain.CandidateImage
	if req.Images != nil {
		decoded, ok := decodePayload(c, *req.Images)
		if !ok {
			return
		}
		// Non-nil empty slice still signals a destructive replace.
		candidates = decoded
		if candidates == nil {
			candidates = []gallerydomain.CandidateImage{}
		}
	}

	images, err := h.service.Update(c.Request.Context(), car, candidates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toAPI(car, images))
}

func (h *CarHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CarHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	car, images, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toAPI(car, images))
}

func (h *CarHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *CarHandler) ListPublic(c *gin.Context) {
	h.list(c, true)
}

func (h *CarHandler) list(c *gin.Context, activeOnly bool) {
	cars, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]api.Car, 0, len(cars))
	for _, car := range cars {
		item := h.toAPI(car, nil)
		coverURL, err := h.service.CoverURL(c.Request.Context(), car.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		item.CoverURL = coverURL
		out = append(out, item)
	}

	c.JSON(http.StatusOK, out)
}

// UploadImages appends a base64 batch to an existing car's gallery.
func (h *CarHandler) UploadImages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Images []api.ImageUpload `json:"images"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if len(body.Images) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No images provided."})
		return
	}

	candidates, ok := decodePayload(c, body.Images)
	if !ok {
		return
	}

	images, err := h.service.UploadImages(c.Request.Context(), id, candidates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAPIImages(images, h.url))
}

func (h *CarHandler) SetCoverImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	images, err := h.service.SetCoverImage(c.Request.Context(), id, imageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAPIImages(images, h.url))
}

func (h *CarHandler) DeleteImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), id, imageID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CarHandler) url(img *gallerydomain.Image) string {
	return h.service.ImageURL(img)
}

func (h *CarHandler) toAPI(car *domain.Car, images []*gallerydomain.Image) api.Car {
	out := api.Car{
		ID:          car.ID,
		Title:       car.Title,
		Brand:       car.Brand,
		Series:      car.Series,
		ModelYear:   car.ModelYear,
		Price:       car.Price,
		Currency:    car.Currency,
		FuelType:    car.FuelType,
		GearType:    car.GearType,
		IsActive:    car.IsActive,
		PublishedAt: car.PublishedAt,
	}

	if len(images) > 0 {
		out.Images = toAPIImages(images, h.url)
		for _, img := range out.Images {
			if img.IsCover {
				out.CoverURL = img.URL
				break
			}
		}
	}

	return out
}

// decodePayload normalizes a base64 image payload and rejects batches where
// every provided item failed to decode.
func decodePayload(c *gin.Context, uploads []api.ImageUpload) ([]gallerydomain.CandidateImage, bool) {
	if len(uploads) == 0 {
		return nil, true
	}

	candidates, _ := galleryapp.CandidatesFromBase64(toBase64Items(uploads))
	if len(candidates) == 0 {
		respondError(c, gallerydomain.ErrNoDecodableImages)
		return nil, false
	}

	return candidates, true
}

func carFromRequest(id int64, title, brand, series string, modelYear int, price float64, currency, fuelType, gearType string, isActive *bool) *domain.Car {
	active := true
	if isActive != nil {
		active = *isActive
	}

	return &domain.Car{
		ID:        id,
		Title:     title,
		Brand:     brand,
		Series:    series,
		ModelYear: modelYear,
		Price:     price,
		Currency:  currency,
		FuelType:  fuelType,
		GearType:  gearType,
		IsActive:  active,
	}
}

package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kibrisacil/classifieds/api"
	galleryapp "github.com/kibrisacil/classifieds/gallery/application"
	gallerydomain "github.com/kibrisacil/classifieds/gallery/domain"
	"github.com/kibrisacil/classifieds/listing/application"
	"github.com/kibrisacil/classifieds/listing/domain"
)

// PropertyHandler serves the admin and public property surfaces. Property
// clients upload images as multipart form files.
type PropertyHandler struct {
	service *application.PropertyService
}

// Create handles a multipart create: listing fields as form values, images
// as the "images" file list.
func (h *PropertyHandler) Create(c *gin.Context) {
	price, _ := strconv.ParseFloat(c.PostForm("price"), 64)

	p := &domain.Property{
		AdvertiseNo:  c.PostForm("advertise_no"),
		Title:        c.PostForm("title"),
		Price:        price,
		Currency:     c.PostForm("currency"),
		Address:      c.PostForm("address"),
		PropertyType: c.PostForm("property_type"),
		RoomType:     c.PostForm("room_type"),
		Status:       domain.AdvertStatus(c.PostForm("status")),
	}

	if p.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "title is required"})
		return
	}

	candidates, _ := h.formCandidates(c)

	images, err := h.service.Create(c.Request.Context(), p, candidates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toAPI(p, images))
}

func (h *PropertyHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req api.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	p := &domain.Property{
		ID:           id,
		AdvertiseNo:  req.AdvertiseNo,
		Title:        req.Title,
		Price:        req.Price,
		Currency:     req.Currency,
		Address:      req.Address,
		PropertyType: req.PropertyType,
		RoomType:     req.RoomType,
		Status:       domain.AdvertStatus(req.Status),
	}

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}

	updated, images, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toAPI(updated, images))
}

func (h *PropertyHandler) Delete(c *gin.Context) {
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

func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, images, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toAPI(p, images))
}

func (h *PropertyHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

// ListPublic returns only advertisements with status "on".
func (h *PropertyHandler) ListPublic(c *gin.Context) {
	h.list(c, true)
}

func (h *PropertyHandler) list(c *gin.Context, activeOnly bool) {
	properties, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]api.Property, 0, len(properties))
	for _, p := range properties {
		item := h.toAPI(p, nil)
		coverURL, err := h.service.CoverURL(c.Request.Context(), p.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		item.CoverURL = coverURL
		out = append(out, item)
	}

	c.JSON(http.StatusOK, out)
}

// UploadImages appends a multipart batch to an existing property.
func (h *PropertyHandler) UploadImages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	candidates, provided := h.formCandidates(c)
	if provided == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No images provided."})
		return
	}
	if len(candidates) == 0 {
		respondError(c, gallerydomain.ErrNoDecodableImages)
		return
	}

	images, err := h.service.UploadImages(c.Request.Context(), id, candidates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAPIImages(images, h.url))
}

func (h *PropertyHandler) SetCoverImage(c *gin.Context) {
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

func (h *PropertyHandler) DeleteImage(c *gin.Context) {
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

// formCandidates pulls the "images" multipart file list and normalizes it.
// The second return value is how many files the client actually sent.
func (h *PropertyHandler) formCandidates(c *gin.Context) ([]gallerydomain.CandidateImage, int) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, 0
	}

	files := form.File["images"]
	candidates, _ := galleryapp.CandidatesFromMultipart(files)
	return candidates, len(files)
}

func (h *PropertyHandler) url(img *gallerydomain.Image) string {
	return h.service.ImageURL(img)
}

func (h *PropertyHandler) toAPI(p *domain.Property, images []*gallerydomain.Image) api.Property {
	out := api.Property{
		ID:           p.ID,
		AdvertiseNo:  p.AdvertiseNo,
		Title:        p.Title,
		Price:        p.Price,
		Currency:     p.Currency,
		Address:      p.Address,
		PropertyType: p.PropertyType,
		RoomType:     p.RoomType,
		Status:       string(p.Status),
		PublishedAt:  p.PublishedAt,
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

// pathID parses an integer path parameter, responding 404 on garbage input
// the way an unknown id would.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return 0, false
	}
	return id, true
}

package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kibrisacil/classifieds/api"
	galleryapp "github.com/kibrisacil/classifieds/gallery/application"
	gallerydomain "github.com/kibrisacil/classifieds/gallery/domain"
	"github.com/kibrisacil/classifieds/listing/application"
	listingdomain "github.com/kibrisacil/classifieds/listing/domain"
)

// NewApi registers every route surface on the given engine.
func NewApi(router *gin.Engine, properties *application.PropertyService, cars *application.CarService, offers *application.OfferService) {
	ph := &PropertyHandler{service: properties}
	ch := &CarHandler{service: cars}
	oh := &OfferHandler{service: offers}

	adminProperties := router.Group("admin/properties/v1")
	{
		adminProperties.POST("/", ph.Create)
		adminProperties.GET("/", ph.ListAll)
		adminProperties.GET("/:id", ph.Get)
		adminProperties.PUT("/:id", ph.Update)
		adminProperties.DELETE("/:id", ph.Delete)
		adminProperties.POST("/:id/upload-images", ph.UploadImages)
		adminProperties.POST("/:id/set-cover-image/:imageId", ph.SetCoverImage)
		adminProperties.DELETE("/:id/delete-image/:imageId", ph.DeleteImage)
	}

	adminCars := router.Group("admin/cars/v1")
	{
		adminCars.POST("/", ch.Create)
		adminCars.GET("/", ch.ListAll)
		adminCars.GET("/:id", ch.Get)
		adminCars.PUT("/:id", ch.Update)
		adminCars.DELETE("/:id", ch.Delete)
		adminCars.POST("/:id/upload-images", ch.UploadImages)
		adminCars.POST("/:id/set-cover-image/:imageId", ch.SetCoverImage)
		adminCars.DELETE("/:id/delete-image/:imageId", ch.DeleteImage)
	}

	propertiesV1 := router.Group("properties/v1")
	{
		propertiesV1.GET("/", ph.ListPublic)
	}

	carsV1 := router.Group("cars/v1")
	{
		carsV1.GET("/", ch.ListPublic)
	}

	offersV1 := router.Group("offers/v1")
	{
		offersV1.POST("/", oh.Submit)
	}

	adminOffers := router.Group("admin/offers/v1")
	{
		adminOffers.GET("/", oh.List)
		adminOffers.GET("/:id", oh.Get)
		adminOffers.DELETE("/:id", oh.Deactivate)
		adminOffers.POST("/:id/respond", oh.Respond)
		adminOffers.GET("/:id/responses", oh.Responses)
		adminOffers.PATCH("/:id/images/:imageId", oh.UpdateImageFlags)
		adminOffers.DELETE("/:id/images/:imageId", oh.DeleteImage)
	}
}

// respondError maps domain errors onto HTTP statuses: reference errors are
// 404, ingestion/input errors are 400, anything else is a storage-class
// failure reported as 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gallerydomain.ErrImageNotFound),
		errors.Is(err, listingdomain.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, gallerydomain.ErrNoDecodableImages),
		errors.Is(err, gallerydomain.ErrUnsupportedImageType),
		errors.Is(err, listingdomain.ErrInvalidListingData):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
	}
}

// toAPIImages converts gallery images into their wire representation,
// resolving object keys through the given URL function.
func toAPIImages(images []*gallerydomain.Image, url func(*gallerydomain.Image) string) []api.Image {
	out := make([]api.Image, 0, len(images))
	for _, img := range images {
		out = append(out, api.Image{
			ID:         img.ID,
			URL:        url(img),
			IsCover:    img.IsCover,
			IsActive:   img.IsActive,
			UploadedAt: img.UploadedAt,
		})
	}
	return out
}

// toBase64Items converts wire payload items into the ingestion adapter's
// input shape.
func toBase64Items(uploads []api.ImageUpload) []galleryapp.Base64Item {
	items := make([]galleryapp.Base64Item, 0, len(uploads))
	for _, u := range uploads {
		items = append(items, galleryapp.Base64Item{Data: u.Image, CoverIntent: u.IsCover})
	}
	return items
}

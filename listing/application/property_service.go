package application

import (
	"context"

	galleryapp "github.com/kibrisacil/classifieds/gallery/application"
	gallerydomain "github.com/kibrisacil/classifieds/gallery/domain"
	"github.com/kibrisacil/classifieds/listing/domain"
)

// PropertyService manages property advertisements. All image state goes
// through the shared gallery service; listing writes that carry images run
// in the same transaction as the image writes.
type PropertyService struct {
	repo    domain.PropertyRepository
	gallery *galleryapp.GalleryService
}

func NewPropertyService(repo domain.PropertyRepository, gallery *galleryapp.GalleryService) *PropertyService {
	return &PropertyService{
		repo:    repo,
		gallery: gallery,
	}
}

func propertyRef(id int64) gallerydomain.ListingRef {
	return gallerydomain.ListingRef{Kind: gallerydomain.KindProperty, ID: formatID(id)}
}

// Create persists a new property together with its initial image batch.
// The listing row and every image commit or roll back as one unit.
func (s *PropertyService) Create(ctx context.Context, p *domain.Property, candidates []gallerydomain.CandidateImage) ([]*gallerydomain.Image, error) {
	var images []*gallerydomain.Image

	err := s.repo.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, p); err != nil {
			return err
		}

		var err error
		images, err = s.gallery.Append(txCtx, propertyRef(p.ID), candidates)
		return err
	})
	if err != nil {
		return nil, err
	}

	return images, nil
}

// Update rewrites a property's own fields; images are untouched.
func (s *PropertyService) Update(ctx context.Context, p *domain.Property) error {
	return s.repo.Update(ctx, p)
}

// Delete removes a property and cascades to its entire gallery.
func (s *PropertyService) Delete(ctx context.Context, id int64) error {
	return s.repo.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}

		_, err := s.gallery.Replace(txCtx, propertyRef(id), nil)
		return err
	})
}

func (s *PropertyService) Get(ctx context.Context, id int64) (*domain.Property, []*gallerydomain.Image, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	images, err := s.gallery.Gallery(ctx, propertyRef(id))
	if err != nil {
		return nil, nil, err
	}

	return p, images, nil
}

func (s *PropertyService) List(ctx context.Context, activeOnly bool) ([]*domain.Property, error) {
	return s.repo.List(ctx, activeOnly)
}

// UploadImages appends a batch to an existing property's gallery.
func (s *PropertyService) UploadImages(ctx context.Context, id int64, candidates []gallerydomain.CandidateImage) ([]*gallerydomain.Image, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.gallery.Append(ctx, propertyRef(id), candidates)
}

// SetCoverImage designates one existing image as the property's cover.
func (s *PropertyService) SetCoverImage(ctx context.Context, id int64, imageID int64) ([]*gallerydomain.Image, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.gallery.SetCover(ctx, propertyRef(id), imageID)
}

// DeleteImage removes one image; the gallery service handles cover
// promotion when the cover is deleted.
func (s *PropertyService) DeleteImage(ctx context.Context, id int64, imageID int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	return s.gallery.Delete(ctx, propertyRef(id), imageID)
}

// ImageURL resolves an image to its public address.
func (s *PropertyService) ImageURL(img *gallerydomain.Image) string {
	return s.gallery.URL(img)
}

// CoverURL returns the address of a listing's cover image, or "" without one.
func (s *PropertyService) CoverURL(ctx context.Context, id int64) (string, error) {
	images, err := s.gallery.Gallery(ctx, propertyRef(id))
	if err != nil {
		return "", err
	}

	for _, img := range images {
		if img.IsCover {
			return s.gallery.URL(img), nil
		}
	}
	return "", nil
}

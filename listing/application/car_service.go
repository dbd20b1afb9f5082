package application

import (
	"context"

	galleryapp "github.com/kibrisacil/classifieds/gallery/application"
	gallerydomain "github.com/kibrisacil/classifieds/gallery/domain"
	"github.com/kibrisacil/classifieds/listing/domain"
)

// CarService manages vehicle advertisements on top of the shared gallery
// core. Car clients send base64 image payloads; an update that carries an
// image list replaces the whole gallery.
type CarService struct {
	repo    domain.CarRepository
	gallery *galleryapp.GalleryService
}

func NewCarService(repo domain.CarRepository, gallery *galleryapp.GalleryService) *CarService {
	return &CarService{
		repo:    repo,
		gallery: gallery,
	}
}

func carRef(id int64) gallerydomain.ListingRef {
	return gallerydomain.ListingRef{Kind: gallerydomain.KindCar, ID: formatID(id)}
}

// Create persists a new car together with its initial image batch, atomically.
func (s *CarService) Create(ctx context.Context, c *domain.Car, candidates []gallerydomain.CandidateImage) ([]*gallerydomain.Image, error) {
	var images []*gallerydomain.Image

	err := s.repo.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, c); err != nil {
			return err
		}

		var err error
		images, err = s.gallery.Append(txCtx, carRef(c.ID), candidates)
		return err
	})
	if err != nil {
		return nil, err
	}

	return images, nil
}

// Update rewrites a car's fields. When candidates is non-nil the existing
// gallery is destructively replaced by the batch in the same transaction;
// nil candidates leave images untouched.
func (s *CarService) Update(ctx context.Context, c *domain.Car, candidates []gallerydomain.CandidateImage) ([]*gallerydomain.Image, error) {
	var images []*gallerydomain.Image

	err := s.repo.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, c); err != nil {
			return err
		}

		var err error
		if candidates != nil {
			images, err = s.gallery.Replace(txCtx, carRef(c.ID), candidates)
		} else {
			images, err = s.gallery.Gallery(txCtx, carRef(c.ID))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return images, nil
}

// Delete removes a car and cascades to its gallery.
func (s *CarService) Delete(ctx context.Context, id int64) error {
	return s.repo.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}

		_, err := s.gallery.Replace(txCtx, carRef(id), nil)
		return err
	})
}

func (s *CarService) Get(ctx context.Context, id int64) (*domain.Car, []*gallerydomain.Image, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	images, err := s.gallery.Gallery(ctx, carRef(id))
	if err != nil {
		return nil, nil, err
	}

	return c, images, nil
}

func (s *CarService) List(ctx context.Context, activeOnly bool) ([]*domain.Car, error) {
	return s.repo.List(ctx, activeOnly)
}

// UploadImages appends a batch to an existing car's gallery.
func (s *CarService) UploadImages(ctx context.Context, id int64, candidates []gallerydomain.CandidateImage) ([]*gallerydomain.Image, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.gallery.Append(ctx, carRef(id), candidates)
}

// SetCoverImage designates one existing image as the car's cover.
func (s *CarService) SetCoverImage(ctx context.Context, id int64, imageID int64) ([]*gallerydomain.Image, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.gallery.SetCover(ctx, carRef(id), imageID)
}

// DeleteImage removes one image, promoting a new cover when needed.
func (s *CarService) DeleteImage(ctx context.Context, id int64, imageID int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	return s.gallery.Delete(ctx, carRef(id), imageID)
}

// ImageURL resolves an image to its public address.
func (s *CarService) ImageURL(img *gallerydomain.Image) string {
	return s.gallery.URL(img)
}

// CoverURL returns the address of a car's cover image, or "" without one.
func (s *CarService) CoverURL(ctx context.Context, id int64) (string, error) {
	images, err := s.gallery.Gallery(ctx, carRef(id))
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

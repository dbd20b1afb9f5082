package application

import (
	"context"

	galleryapp "github.com/kibrisacil/classifieds/gallery/application"
	gallerydomain "github.com/kibrisacil/classifieds/gallery/domain"
	"github.com/kibrisacil/classifieds/listing/domain"
)

// OfferService manages public sell-to-us submissions and the admin response
// workflow around them. Offers are soft-deleted; their images stay until an
// admin removes them explicitly.
type OfferService struct {
	repo    domain.OfferRepository
	gallery *galleryapp.GalleryService
}

func NewOfferService(repo domain.OfferRepository, gallery *galleryapp.GalleryService) *OfferService {
	return &OfferService{
		repo:    repo,
		gallery: gallery,
	}
}

func offerRef(id string) gallerydomain.ListingRef {
	return gallerydomain.ListingRef{Kind: gallerydomain.KindOffer, ID: id}
}

// Submit persists a public offer together with its image batch, atomically.
func (s *OfferService) Submit(ctx context.Context, o *domain.Offer, candidates []gallerydomain.CandidateImage) ([]*gallerydomain.Image, error) {
	var images []*gallerydomain.Image

	err := s.repo.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, o); err != nil {
			return err
		}

		var err error
		images, err = s.gallery.Append(txCtx, offerRef(o.ID), candidates)
		return err
	})
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (s *OfferService) Get(ctx context.Context, id string) (*domain.Offer, []*gallerydomain.Image, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	images, err := s.gallery.Gallery(ctx, offerRef(id))
	if err != nil {
		return nil, nil, err
	}

	return o, images, nil
}

func (s *OfferService) List(ctx context.Context) ([]*domain.Offer, error) {
	return s.repo.List(ctx)
}

func (s *OfferService) UpdateStatus(ctx context.Context, id string, status domain.OfferStatus) error {
	return s.repo.UpdateStatus(ctx, id, status)
}

// Deactivate soft-deletes an offer.
func (s *OfferService) Deactivate(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}

// Respond records an admin reply and moves the offer to reviewed.
func (s *OfferService) Respond(ctx context.Context, offerID string, resp *domain.OfferResponse) error {
	return s.repo.InTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.Get(txCtx, offerID); err != nil {
			return err
		}

		resp.OfferID = offerID
		if err := s.repo.AddResponse(txCtx, resp); err != nil {
			return err
		}

		return s.repo.UpdateStatus(txCtx, offerID, domain.OfferReviewed)
	})
}

func (s *OfferService) Responses(ctx context.Context, offerID string) ([]*domain.OfferResponse, error) {
	if _, err := s.repo.Get(ctx, offerID); err != nil {
		return nil, err
	}

	return s.repo.ListResponses(ctx, offerID)
}

// UpdateImageFlags applies an admin patch to one offer image: is_cover
// re-covers through the gallery core, is_active flips the soft-delete flag.
// A nil pointer leaves the corresponding flag alone.
func (s *OfferService) UpdateImageFlags(ctx context.Context, offerID string, imageID int64, isCover *bool, isActive *bool) ([]*gallerydomain.Image, error) {
	ref := offerRef(offerID)

	// Both flags land in one transaction so a failed second update cannot
	// leave a half-applied patch behind.
	err := s.repo.InTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.Get(txCtx, offerID); err != nil {
			return err
		}

		if isCover != nil && *isCover {
			if _, err := s.gallery.SetCover(txCtx, ref, imageID); err != nil {
				return err
			}
		}

		if isActive != nil {
			if _, err := s.gallery.SetActive(txCtx, ref, imageID, *isActive); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.gallery.Gallery(ctx, ref)
}

// DeleteImage removes one offer image.
func (s *OfferService) DeleteImage(ctx context.Context, offerID string, imageID int64) error {
	if _, err := s.repo.Get(ctx, offerID); err != nil {
		return err
	}

	return s.gallery.Delete(ctx, offerRef(offerID), imageID)
}

// Gallery exposes an offer's images for the admin detail view.
func (s *OfferService) Gallery(ctx context.Context, offerID string) ([]*gallerydomain.Image, error) {
	return s.gallery.Gallery(ctx, offerRef(offerID))
}

// ImageURL resolves an image to its public address.
func (s *OfferService) ImageURL(img *gallerydomain.Image) string {
	return s.gallery.URL(img)
}

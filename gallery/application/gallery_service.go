package application

import (
	"context"
	"fmt"
	"mime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kibrisacil/classifieds/gallery/domain"
)

// GalleryService owns the cover-image invariant for every listing type:
// at most one image per listing carries is_cover, and a listing with images
// never finishes a mutation without one. All mutations run inside a single
// transaction so a partial image set is never visible.
type GalleryService struct {
	images domain.ImageRepository
	blobs  domain.BlobStore
}

func NewGalleryService(images domain.ImageRepository, blobs domain.BlobStore) *GalleryService {
	return &GalleryService{
		images: images,
		blobs:  blobs,
	}
}

// Append persists a batch of candidates for a listing. Cover assignment
// follows assignCovers; a listing that already has a cover keeps it. Joins
// an ambient transaction when the caller already opened one, so listing
// field updates and image writes commit together.
func (s *GalleryService) Append(ctx context.Context, ref domain.ListingRef, candidates []domain.CandidateImage) ([]*domain.Image, error) {
	err := s.images.InTransaction(ctx, func(txCtx context.Context) error {
		existingHasCover, err := s.images.HasCover(txCtx, ref)
		if err != nil {
			return err
		}

		if err := s.insertCandidates(txCtx, ref, existingHasCover, candidates); err != nil {
			return err
		}

		return s.healCover(txCtx, ref)
	})
	if err != nil {
		return nil, err
	}

	return s.Gallery(ctx, ref)
}

// Replace destructively swaps a listing's entire image set for the given
// candidates. Deletion and re-creation share one transaction; a failure
// mid-way leaves the prior set intact. Old blob content is removed only
// after the transaction succeeds, so rows that survive a rollback still
// have their content.
func (s *GalleryService) Replace(ctx context.Context, ref domain.ListingRef, candidates []domain.CandidateImage) ([]*domain.Image, error) {
	var removed []*domain.Image

	err := s.images.InTransaction(ctx, func(txCtx context.Context) error {
		var err error
		removed, err = s.images.DeleteAllImages(txCtx, ref)
		if err != nil {
			return err
		}

		// The old set is gone, so the batch starts from a coverless state.
		if err := s.insertCandidates(txCtx, ref, false, candidates); err != nil {
			return err
		}

		return s.healCover(txCtx, ref)
	})
	if err != nil {
		return nil, err
	}

	s.removeBlobs(ctx, removed)

	return s.Gallery(ctx, ref)
}

// SetCover makes imageID the listing's cover, demoting the current one.
func (s *GalleryService) SetCover(ctx context.Context, ref domain.ListingRef, imageID int64) ([]*domain.Image, error) {
	err := s.images.InTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.images.GetImage(txCtx, ref, imageID); err != nil {
			return err
		}

		if err := s.images.ClearCover(txCtx, ref); err != nil {
			return err
		}

		return s.images.MarkCover(txCtx, ref, imageID)
	})
	if err != nil {
		return nil, err
	}

	return s.Gallery(ctx, ref)
}

// Delete removes one image. Deleting the cover promotes the oldest
// remaining image; deleting the last image leaves an empty gallery, which
// is not an error. Blob content is removed only after the transaction
// succeeds, so a row restored by a rollback still has its content.
func (s *GalleryService) Delete(ctx context.Context, ref domain.ListingRef, imageID int64) error {
	var img *domain.Image

	err := s.images.InTransaction(ctx, func(txCtx context.Context) error {
		var err error
		img, err = s.images.GetImage(txCtx, ref, imageID)
		if err != nil {
			return err
		}

		if err := s.images.DeleteImage(txCtx, ref, imageID); err != nil {
			return err
		}

		return s.healCover(txCtx, ref)
	})
	if err != nil {
		return err
	}

	s.removeBlobs(ctx, []*domain.Image{img})

	return nil
}

// SetActive flips the soft-delete flag on an offer image. The flag has no
// bearing on cover eligibility; callers that want inactive images excluded
// from promotion must filter before deleting or re-covering.
func (s *GalleryService) SetActive(ctx context.Context, ref domain.ListingRef, imageID int64, active bool) ([]*domain.Image, error) {
	err := s.images.InTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.images.GetImage(txCtx, ref, imageID); err != nil {
			return err
		}
		return s.images.SetActive(txCtx, ref, imageID, active)
	})
	if err != nil {
		return nil, err
	}

	return s.Gallery(ctx, ref)
}

// Gallery returns the listing's images in presentation order: cover first,
// then newest upload first.
func (s *GalleryService) Gallery(ctx context.Context, ref domain.ListingRef) ([]*domain.Image, error) {
	images, err := s.images.ListImages(ctx, ref)
	if err != nil {
		return nil, err
	}

	sortGallery(images)
	return images, nil
}

// URL resolves an image's object key to a client-facing address.
func (s *GalleryService) URL(img *domain.Image) string {
	return s.blobs.URL(img.ObjectKey)
}

// removeBlobs deletes blob content for rows that are already gone from the
// database. Best-effort: a leftover blob is orphaned storage, not an
// invariant violation, so failures are logged and swallowed.
func (s *GalleryService) removeBlobs(ctx context.Context, images []*domain.Image) {
	for _, img := range images {
		if err := s.blobs.Remove(ctx, img.ObjectKey); err != nil {
			log.Warn().Err(err).Str("key", img.ObjectKey).Msg("Failed to remove image blob")
		}
	}
}

// insertCandidates uploads each candidate's content and persists its row
// with the computed cover flag. Must run inside a transaction.
func (s *GalleryService) insertCandidates(ctx context.Context, ref domain.ListingRef, existingHasCover bool, candidates []domain.CandidateImage) error {
	covers := assignCovers(existingHasCover, candidates)

	for i, c := range candidates {
		key := objectKey(ref, c.Ext)

		if err := s.blobs.Put(ctx, key, c.Content, contentTypeForExt(c.Ext)); err != nil {
			return fmt.Errorf("failed to store blob %s: %w", key, err)
		}

		img := &domain.Image{
			Listing:    ref,
			ObjectKey:  key,
			IsCover:    covers[i],
			IsActive:   true,
			UploadedAt: time.Now().UTC(),
		}

		if err := s.images.InsertImage(ctx, img); err != nil {
			return err
		}
	}

	return nil
}

// healCover is the end-of-operation repair step: a listing that has images
// but no cover gets its oldest image promoted. Runs at the end of every
// mutating operation so HasImagesWithoutCover never survives a commit.
func (s *GalleryService) healCover(ctx context.Context, ref domain.ListingRef) error {
	images, err := s.images.ListImages(ctx, ref)
	if err != nil {
		return err
	}

	if len(images) == 0 || hasCover(images) {
		return nil
	}

	promoted := oldestImage(images)
	log.Debug().
		Str("kind", string(ref.Kind)).
		Str("listing", ref.ID).
		Int64("image", promoted.ID).
		Msg("Promoting image to cover")

	return s.images.MarkCover(ctx, ref, promoted.ID)
}

func objectKey(ref domain.ListingRef, ext string) string {
	return fmt.Sprintf("%s/%s/%s.%s", ref.Kind, ref.ID, uuid.New().String(), ext)
}

func contentTypeForExt(ext string) string {
	for mimeType, mapped := range mimeExtensions {
		if mapped == ext {
			return mimeType
		}
	}

	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

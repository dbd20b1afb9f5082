package application

import (
	"sort"

	"github.com/kibrisacil/classifieds/gallery/domain"
)

// assignCovers computes the is_cover value for each candidate in a batch.
// If any candidate declares explicit cover intent, the first such candidate
// wins and every later intent is demoted. With no explicit intent the first
// candidate becomes cover, but only when the listing does not already have
// one. A listing that already has a cover is never re-covered by an append;
// only SetCover may change an existing cover.
func assignCovers(existingHasCover bool, candidates []domain.CandidateImage) []bool {
	covers := make([]bool, len(candidates))
	if existingHasCover {
		return covers
	}

	for i, c := range candidates {
		if c.CoverIntent {
			covers[i] = true
			return covers
		}
	}

	if len(candidates) > 0 {
		covers[0] = true
	}
	return covers
}

// oldestImage picks the deterministic promotion target: earliest upload
// time, lowest id on a tie. Returns nil for an empty set.
func oldestImage(images []*domain.Image) *domain.Image {
	var oldest *domain.Image
	for _, img := range images {
		if oldest == nil {
			oldest = img
			continue
		}
		if img.UploadedAt.Before(oldest.UploadedAt) ||
			(img.UploadedAt.Equal(oldest.UploadedAt) && img.ID < oldest.ID) {
			oldest = img
		}
	}
	return oldest
}

func hasCover(images []*domain.Image) bool {
	for _, img := range images {
		if img.IsCover {
			return true
		}
	}
	return false
}

// sortGallery orders a listing's images for presentation: cover first,
// then newest upload first.
func sortGallery(images []*domain.Image) {
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].IsCover != images[j].IsCover {
			return images[i].IsCover
		}
		if !images[i].UploadedAt.Equal(images[j].UploadedAt) {
			return images[i].UploadedAt.After(images[j].UploadedAt)
		}
		return images[i].ID > images[j].ID
	})
}

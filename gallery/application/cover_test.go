package application

import (
	"testing"
	"time"

	"github.com/kibrisacil/classifieds/gallery/domain"
)

func candidates(intents ...bool) []domain.CandidateImage {
	out := make([]domain.CandidateImage, len(intents))
	for i, intent := range intents {
		out[i] = domain.CandidateImage{
			Content:     []byte{0x1},
			Ext:         "jpg",
			CoverIntent: intent,
		}
	}
	return out
}

func TestAssignCovers(t *testing.T) {
	tests := []struct {
		name             string
		existingHasCover bool
		candidates       []domain.CandidateImage
		want             []bool
	}{
		{
			name:       "first candidate wins without intent",
			candidates: candidates(false, false, false),
			want:       []bool{true, false, false},
		},
		{
			name:       "explicit intent beats batch position",
			candidates: candidates(false, true, false),
			want:       []bool{false, true, false},
		},
		{
			name:       "first explicit intent wins, later intents demoted",
			candidates: candidates(false, true, true),
			want:       []bool{false, true, false},
		},
		{
			name:             "existing cover suppresses positional default",
			existingHasCover: true,
			candidates:       candidates(false, false),
			want:             []bool{false, false},
		},
		{
			name:             "existing cover suppresses explicit intent",
			existingHasCover: true,
			candidates:       candidates(true, false),
			want:             []bool{false, false},
		},
		{
			name:       "empty batch",
			candidates: nil,
			want:       []bool{},
		},
		{
			name:       "single candidate",
			candidates: candidates(false),
			want:       []bool{true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assignCovers(tt.existingHasCover, tt.candidates)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("covers[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOldestImage(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty set", func(t *testing.T) {
		if got := oldestImage(nil); got != nil {
			t.Errorf("oldestImage(nil) = %v, want nil", got)
		}
	})

	t.Run("earliest upload wins", func(t *testing.T) {
		images := []*domain.Image{
			{ID: 1, UploadedAt: base.Add(2 * time.Hour)},
			{ID: 2, UploadedAt: base},
			{ID: 3, UploadedAt: base.Add(time.Hour)},
		}
		if got := oldestImage(images); got.ID != 2 {
			t.Errorf("oldestImage ID = %d, want 2", got.ID)
		}
	})

	t.Run("lowest id breaks upload-time tie", func(t *testing.T) {
		images := []*domain.Image{
			{ID: 7, UploadedAt: base},
			{ID: 3, UploadedAt: base},
			{ID: 5, UploadedAt: base},
		}
		if got := oldestImage(images); got.ID != 3 {
			t.Errorf("oldestImage ID = %d, want 3", got.ID)
		}
	})
}

func TestSortGallery(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	images := []*domain.Image{
		{ID: 1, UploadedAt: base},
		{ID: 2, UploadedAt: base.Add(time.Hour)},
		{ID: 3, UploadedAt: base.Add(30 * time.Minute), IsCover: true},
		{ID: 4, UploadedAt: base.Add(2 * time.Hour)},
	}

	sortGallery(images)

	wantOrder := []int64{3, 4, 2, 1}
	for i, want := range wantOrder {
		if images[i].ID != want {
			t.Errorf("position %d: got ID %d, want %d", i, images[i].ID, want)
		}
	}
}

func TestSortGallery_TieBreaksOnID(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	images := []*domain.Image{
		{ID: 1, UploadedAt: base},
		{ID: 3, UploadedAt: base},
		{ID: 2, UploadedAt: base},
	}

	sortGallery(images)

	wantOrder := []int64{3, 2, 1}
	for i, want := range wantOrder {
		if images[i].ID != want {
			t.Errorf("position %d: got ID %d, want %d", i, images[i].ID, want)
		}
	}
}

func TestHasCover(t *testing.T) {
	if hasCover(nil) {
		t.Error("hasCover(nil) = true, want false")
	}
	if hasCover([]*domain.Image{{ID: 1}, {ID: 2}}) {
		t.Error("hasCover with no cover = true, want false")
	}
	if !hasCover([]*domain.Image{{ID: 1}, {ID: 2, IsCover: true}}) {
		t.Error("hasCover with cover = false, want true")
	}
}

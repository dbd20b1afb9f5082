package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kibrisacil/classifieds/gallery/application"
	"github.com/kibrisacil/classifieds/gallery/domain"
	_ "modernc.org/sqlite"
)

func setupTestImageDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	// Every pooled connection gets its own :memory: database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE listing_images (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			listing_kind TEXT NOT NULL,
			listing_id TEXT NOT NULL,
			object_key TEXT NOT NULL,
			is_cover INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			uploaded_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create listing_images table: %v", err)
	}

	return db
}

// fakeBlobStore records puts and removes in memory. failPutAt > 0 makes the
// Nth Put fail, for exercising rollback behavior.
type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	puts      int
	failPutAt int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(_ context.Context, key string, content []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.failPutAt > 0 && f.puts >= f.failPutAt {
		return errors.New("blob store unavailable")
	}
	f.objects[key] = content
	return nil
}

func (f *fakeBlobStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobStore) URL(key string) string {
	return "http://blobs.test/" + key
}

func (f *fakeBlobStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func testRef() domain.ListingRef {
	return domain.ListingRef{Kind: domain.KindProperty, ID: "42"}
}

func batch(n int, coverIdx int) []domain.CandidateImage {
	out := make([]domain.CandidateImage, n)
	for i := range out {
		out[i] = domain.CandidateImage{
			Content:     []byte(fmt.Sprintf("image %d", i)),
			Ext:         "jpg",
			CoverIntent: i == coverIdx,
		}
	}
	return out
}

func countCovers(images []*domain.Image) int {
	n := 0
	for _, img := range images {
		if img.IsCover {
			n++
		}
	}
	return n
}

func TestImageRepository_InsertAndGet(t *testing.T) {
	db := setupTestImageDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()
	ref := testRef()

	img := &domain.Image{
		Listing:    ref,
		ObjectKey:  "property/42/a.jpg",
		IsCover:    true,
		IsActive:   true,
		UploadedAt: time.Now().UTC(),
	}
	if err := repo.InsertImage(ctx, img); err != nil {
		t.Fatalf("Failed to insert image: %v", err)
	}
	if img.ID == 0 {
		t.Fatal("InsertImage did not populate ID")
	}

	got, err := repo.GetImage(ctx, ref, img.ID)
	if err != nil {
		t.Fatalf("Failed to get image: %v", err)
	}
	if got.ObjectKey != img.ObjectKey {
		t.Errorf("ObjectKey = %q, want %q", got.ObjectKey, img.ObjectKey)
	}
	if !got.IsCover {
		t.Error("IsCover = false, want true")
	}
}

func TestImageRepository_GetImage_NotFound(t *testing.T) {
	db := setupTestImageDB(t)
	repo := NewImageRepository(db)

	_, err := repo.GetImage(context.Background(), testRef(), 999)
	if !errors.Is(err, domain.ErrImageNotFound) {
		t.Errorf("err = %v, want ErrImageNotFound", err)
	}
}

func TestImageRepository_GetImage_WrongOwner(t *testing.T) {
	db := setupTestImageDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()

	img := &domain.Image{
		Listing:    testRef(),
		ObjectKey:  "property/42/a.jpg",
		IsActive:   true,
		UploadedAt: time.Now().UTC(),
	}
	if err := repo.InsertImage(ctx, img); err != nil {
		t.Fatalf("Failed to insert image: %v", err)
	}

	// Same numeric id under a different listing kind must not resolve.
	otherRef := domain.ListingRef{Kind: domain.KindCar, ID: "42"}
	_, err := repo.GetImage(ctx, otherRef, img.ID)
	if !errors.Is(err, domain.ErrImageNotFound) {
		t.Errorf("err = %v, want ErrImageNotFound", err)
	}
}

func TestImageRepository_ListImages_OldestFirst(t *testing.T) {
	db := setupTestImageDB(t)
	repo := NewImageRepository(db)
	ctx := context.Background()
	ref := testRef()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		img := &domain.Image{
			Listing:    ref,
			ObjectKey:  fmt.Sprintf("property/42/%d.jpg", i),
			IsActive:   true,
			UploadedAt: base.Add(time.Duration(2-i) * time.Hour),
		}
		if err := repo.InsertImage(ctx, img); err != nil {
			t.Fatalf("Failed to insert image: %v", err)
		}
	}

	images, err := repo.ListImages(ctx, ref)
	if err != nil {
		t.Fatalf("Failed to list images: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("len = %d, want 3", len(images))
	}
	for i := 1; i < len(images); i++ {
		if images[i].UploadedAt.Before(images[i-1].UploadedAt) {
			t.Errorf("images not ordered oldest-first at position %d", i)
		}
	}
}

func TestGalleryService_AppendFirstBatch(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	images, err := svc.Append(ctx, ref, batch(3, -1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	if len(images) != 3 {
		t.Fatalf("len = %d, want 3", len(images))
	}
	if countCovers(images) != 1 {
		t.Errorf("cover count = %d, want 1", countCovers(images))
	}
	// Presentation order puts the cover first.
	if !images[0].IsCover {
		t.Error("first image in gallery order is not the cover")
	}
}

func TestGalleryService_AppendExplicitIntent(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	images, err := svc.Append(ctx, ref, batch(3, 1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	if countCovers(images) != 1 {
		t.Fatalf("cover count = %d, want 1", countCovers(images))
	}
	if !images[0].IsCover {
		t.Error("cover not first in gallery order")
	}
}

func TestGalleryService_AppendNeverRecovers(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	first, err := svc.Append(ctx, ref, batch(1, -1))
	if err != nil {
		t.Fatalf("Failed to append first batch: %v", err)
	}
	originalCover := first[0].ID

	// A second batch with explicit intent must not displace the cover.
	images, err := svc.Append(ctx, ref, batch(2, 0))
	if err != nil {
		t.Fatalf("Failed to append second batch: %v", err)
	}

	if countCovers(images) != 1 {
		t.Fatalf("cover count = %d, want 1", countCovers(images))
	}
	if images[0].ID != originalCover {
		t.Errorf("cover ID = %d, want original %d", images[0].ID, originalCover)
	}
}

func TestGalleryService_SetCover(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	images, err := svc.Append(ctx, ref, batch(3, -1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	var target int64
	for _, img := range images {
		if !img.IsCover {
			target = img.ID
			break
		}
	}

	images, err = svc.SetCover(ctx, ref, target)
	if err != nil {
		t.Fatalf("Failed to set cover: %v", err)
	}

	if countCovers(images) != 1 {
		t.Fatalf("cover count = %d, want 1", countCovers(images))
	}
	if images[0].ID != target {
		t.Errorf("cover ID = %d, want %d", images[0].ID, target)
	}
}

func TestGalleryService_SetCover_NotFound(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())

	_, err := svc.SetCover(context.Background(), testRef(), 12345)
	if !errors.Is(err, domain.ErrImageNotFound) {
		t.Errorf("err = %v, want ErrImageNotFound", err)
	}
}

func TestGalleryService_DeleteCoverPromotesOldest(t *testing.T) {
	db := setupTestImageDB(t)
	repo := NewImageRepository(db)
	svc := application.NewGalleryService(repo, newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	images, err := svc.Append(ctx, ref, batch(3, -1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	var coverID int64
	for _, img := range images {
		if img.IsCover {
			coverID = img.ID
		}
	}

	if err := svc.Delete(ctx, ref, coverID); err != nil {
		t.Fatalf("Failed to delete cover: %v", err)
	}

	remaining, err := repo.ListImages(ctx, ref)
	if err != nil {
		t.Fatalf("Failed to list images: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("len = %d, want 2", len(remaining))
	}
	if countCovers(remaining) != 1 {
		t.Fatalf("cover count = %d, want 1", countCovers(remaining))
	}
	// ListImages is oldest-first, so the promoted image is the first row.
	if !remaining[0].IsCover {
		t.Error("oldest remaining image was not promoted to cover")
	}
}

func TestGalleryService_DeleteLastImage(t *testing.T) {
	db := setupTestImageDB(t)
	blobs := newFakeBlobStore()
	svc := application.NewGalleryService(NewImageRepository(db), blobs)
	ctx := context.Background()
	ref := testRef()

	images, err := svc.Append(ctx, ref, batch(1, -1))
	if err != nil {
		t.Fatalf("Failed to append image: %v", err)
	}

	if err := svc.Delete(ctx, ref, images[0].ID); err != nil {
		t.Fatalf("Failed to delete last image: %v", err)
	}

	if blobs.has(images[0].ObjectKey) {
		t.Errorf("blob %s not cleaned up after delete", images[0].ObjectKey)
	}

	gallery, err := svc.Gallery(ctx, ref)
	if err != nil {
		t.Fatalf("Failed to read gallery: %v", err)
	}
	if len(gallery) != 0 {
		t.Errorf("len = %d, want empty gallery", len(gallery))
	}
}

func TestGalleryService_DeleteNonCoverKeepsCover(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	images, err := svc.Append(ctx, ref, batch(3, -1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	coverID := images[0].ID
	victim := images[len(images)-1].ID

	if err := svc.Delete(ctx, ref, victim); err != nil {
		t.Fatalf("Failed to delete image: %v", err)
	}

	gallery, err := svc.Gallery(ctx, ref)
	if err != nil {
		t.Fatalf("Failed to read gallery: %v", err)
	}
	if countCovers(gallery) != 1 {
		t.Fatalf("cover count = %d, want 1", countCovers(gallery))
	}
	if gallery[0].ID != coverID {
		t.Errorf("cover ID changed: got %d, want %d", gallery[0].ID, coverID)
	}
}

func TestGalleryService_Replace(t *testing.T) {
	db := setupTestImageDB(t)
	blobs := newFakeBlobStore()
	svc := application.NewGalleryService(NewImageRepository(db), blobs)
	ctx := context.Background()
	ref := testRef()

	old, err := svc.Append(ctx, ref, batch(2, -1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	images, err := svc.Replace(ctx, ref, batch(3, 2))
	if err != nil {
		t.Fatalf("Failed to replace images: %v", err)
	}

	if len(images) != 3 {
		t.Fatalf("len = %d, want 3", len(images))
	}
	if countCovers(images) != 1 {
		t.Fatalf("cover count = %d, want 1", countCovers(images))
	}
	for _, img := range images {
		for _, prev := range old {
			if img.ID == prev.ID {
				t.Errorf("image %d survived a destructive replace", img.ID)
			}
		}
	}

	blobs.mu.Lock()
	defer blobs.mu.Unlock()
	if len(blobs.objects) != 3 {
		t.Errorf("blob count = %d, want 3 after replace", len(blobs.objects))
	}
}

func TestGalleryService_ReplaceWithEmptySet(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	if _, err := svc.Append(ctx, ref, batch(2, -1)); err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	images, err := svc.Replace(ctx, ref, nil)
	if err != nil {
		t.Fatalf("Failed to replace with empty set: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("len = %d, want empty gallery", len(images))
	}
}

func TestGalleryService_ReplaceRollsBackOnFailure(t *testing.T) {
	db := setupTestImageDB(t)
	blobs := newFakeBlobStore()
	svc := application.NewGalleryService(NewImageRepository(db), blobs)
	ctx := context.Background()
	ref := testRef()

	old, err := svc.Append(ctx, ref, batch(2, -1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	// Fail the second Put of the replacement batch mid-transaction.
	blobs.failPutAt = blobs.puts + 2
	if _, err := svc.Replace(ctx, ref, batch(3, -1)); err == nil {
		t.Fatal("Expected replace to fail, got nil")
	}

	gallery, err := svc.Gallery(ctx, ref)
	if err != nil {
		t.Fatalf("Failed to read gallery: %v", err)
	}
	if len(gallery) != len(old) {
		t.Fatalf("len = %d, want %d (prior set intact)", len(gallery), len(old))
	}
	if countCovers(gallery) != 1 {
		t.Errorf("cover count = %d, want 1 after rollback", countCovers(gallery))
	}

	// Surviving rows must still have their content: old blobs are only
	// removed once the replacing transaction has committed.
	for _, img := range old {
		if !blobs.has(img.ObjectKey) {
			t.Errorf("blob %s missing after rollback", img.ObjectKey)
		}
	}
}

func TestGalleryService_ReplaceRemovesOldBlobsOnSuccess(t *testing.T) {
	db := setupTestImageDB(t)
	blobs := newFakeBlobStore()
	svc := application.NewGalleryService(NewImageRepository(db), blobs)
	ctx := context.Background()
	ref := testRef()

	old, err := svc.Append(ctx, ref, batch(2, -1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	if _, err := svc.Replace(ctx, ref, batch(1, -1)); err != nil {
		t.Fatalf("Failed to replace images: %v", err)
	}

	for _, img := range old {
		if blobs.has(img.ObjectKey) {
			t.Errorf("blob %s not cleaned up after successful replace", img.ObjectKey)
		}
	}
}

func TestGalleryService_RepairsPriorCoverlessState(t *testing.T) {
	db := setupTestImageDB(t)
	repo := NewImageRepository(db)
	svc := application.NewGalleryService(repo, newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	// Seed rows directly with no cover at all, the state a crashed or racing
	// writer could leave behind.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		img := &domain.Image{
			Listing:    ref,
			ObjectKey:  fmt.Sprintf("property/42/orphan-%d.jpg", i),
			IsActive:   true,
			UploadedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.InsertImage(ctx, img); err != nil {
			t.Fatalf("Failed to insert image: %v", err)
		}
	}

	// Any mutating operation must leave the listing with a cover again.
	if _, err := svc.Append(ctx, ref, nil); err != nil {
		t.Fatalf("Failed to append empty batch: %v", err)
	}

	images, err := repo.ListImages(ctx, ref)
	if err != nil {
		t.Fatalf("Failed to list images: %v", err)
	}
	if countCovers(images) != 1 {
		t.Fatalf("cover count = %d, want 1 after repair", countCovers(images))
	}
	// ListImages is oldest-first; the oldest upload gets promoted.
	if !images[0].IsCover {
		t.Errorf("cover is %q, want oldest image %q", coverKey(images), images[0].ObjectKey)
	}
}

func TestGalleryService_RepairRunsOnDelete(t *testing.T) {
	db := setupTestImageDB(t)
	repo := NewImageRepository(db)
	svc := application.NewGalleryService(repo, newFakeBlobStore())
	ctx := context.Background()
	ref := testRef()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var newest int64
	for i := 0; i < 3; i++ {
		img := &domain.Image{
			Listing:    ref,
			ObjectKey:  fmt.Sprintf("property/42/orphan-%d.jpg", i),
			IsActive:   true,
			UploadedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.InsertImage(ctx, img); err != nil {
			t.Fatalf("Failed to insert image: %v", err)
		}
		newest = img.ID
	}

	// Deleting a non-cover from a coverless set still ends with a cover.
	if err := svc.Delete(ctx, ref, newest); err != nil {
		t.Fatalf("Failed to delete image: %v", err)
	}

	images, err := repo.ListImages(ctx, ref)
	if err != nil {
		t.Fatalf("Failed to list images: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("len = %d, want 2", len(images))
	}
	if countCovers(images) != 1 {
		t.Fatalf("cover count = %d, want 1 after repair", countCovers(images))
	}
	if !images[0].IsCover {
		t.Error("oldest image was not promoted to cover")
	}
}

func coverKey(images []*domain.Image) string {
	for _, img := range images {
		if img.IsCover {
			return img.ObjectKey
		}
	}
	return ""
}

func TestGalleryService_SetActive(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())
	ctx := context.Background()
	ref := domain.ListingRef{Kind: domain.KindOffer, ID: "c0ffee00-aaaa-bbbb-cccc-000000000001"}

	images, err := svc.Append(ctx, ref, batch(2, -1))
	if err != nil {
		t.Fatalf("Failed to append images: %v", err)
	}

	coverID := images[0].ID

	images, err = svc.SetActive(ctx, ref, coverID, false)
	if err != nil {
		t.Fatalf("Failed to deactivate image: %v", err)
	}

	// Deactivation leaves cover assignment alone.
	if countCovers(images) != 1 {
		t.Fatalf("cover count = %d, want 1", countCovers(images))
	}
	for _, img := range images {
		if img.ID == coverID {
			if img.IsActive {
				t.Error("image still active after deactivation")
			}
			if !img.IsCover {
				t.Error("deactivation cleared the cover flag")
			}
		}
	}
}

func TestGalleryService_GalleryIsolatedPerListing(t *testing.T) {
	db := setupTestImageDB(t)
	svc := application.NewGalleryService(NewImageRepository(db), newFakeBlobStore())
	ctx := context.Background()

	refA := domain.ListingRef{Kind: domain.KindProperty, ID: "1"}
	refB := domain.ListingRef{Kind: domain.KindCar, ID: "1"}

	if _, err := svc.Append(ctx, refA, batch(2, -1)); err != nil {
		t.Fatalf("Failed to append to property: %v", err)
	}
	if _, err := svc.Append(ctx, refB, batch(3, -1)); err != nil {
		t.Fatalf("Failed to append to car: %v", err)
	}

	a, err := svc.Gallery(ctx, refA)
	if err != nil {
		t.Fatalf("Failed to read property gallery: %v", err)
	}
	b, err := svc.Gallery(ctx, refB)
	if err != nil {
		t.Fatalf("Failed to read car gallery: %v", err)
	}

	if len(a) != 2 || len(b) != 3 {
		t.Errorf("gallery sizes = %d/%d, want 2/3", len(a), len(b))
	}
	if countCovers(a) != 1 || countCovers(b) != 1 {
		t.Errorf("cover counts = %d/%d, want 1/1", countCovers(a), countCovers(b))
	}
}

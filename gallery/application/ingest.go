package application

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kibrisacil/classifieds/gallery/domain"
)

// Base64Item is one entry of a JSON image payload: a base64 string,
// optionally wrapped in a data URI, plus an explicit cover flag.
type Base64Item struct {
	Data        string
	CoverIntent bool
}

// mimeExtensions maps data-URI MIME types to stored file extensions.
// Anything outside this table falls back to "bin".
var mimeExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/avif":    "avif",
	"image/svg+xml": "svg",
}

// allowedUploadExts is the extension whitelist for multipart file uploads.
var allowedUploadExts = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// CandidatesFromBase64 normalizes a base64 payload list into candidate
// images. Empty strings are skipped silently; items that fail to decode are
// logged and skipped without aborting their siblings. The second return
// value is the number of skipped items.
func CandidatesFromBase64(items []Base64Item) ([]domain.CandidateImage, int) {
	candidates := make([]domain.CandidateImage, 0, len(items))
	skipped := 0

	for i, item := range items {
		if item.Data == "" {
			skipped++
			continue
		}

		content, ext, err := DecodeBase64Image(item.Data)
		if err != nil {
			log.Warn().Err(err).Int("item", i).Msg("Skipping undecodable image payload")
			skipped++
			continue
		}

		candidates = append(candidates, domain.CandidateImage{
			Content:     content,
			Ext:         ext,
			CoverIntent: item.CoverIntent,
		})
	}

	return candidates, skipped
}

// DecodeBase64Image decodes a base64 image string. When a data URI header
// is present ("data:<mime>;base64,<body>") the MIME type picks the stored
// extension; otherwise the extension defaults to "bin".
func DecodeBase64Image(s string) ([]byte, string, error) {
	body := s
	ext := "bin"

	if header, rest, found := strings.Cut(s, ";base64,"); found {
		body = rest
		if mimeType, ok := strings.CutPrefix(header, "data:"); ok {
			if mapped, known := mimeExtensions[strings.ToLower(mimeType)]; known {
				ext = mapped
			}
		}
	}

	content, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 image: %w", err)
	}

	return content, ext, nil
}

// CandidatesFromMultipart normalizes uploaded form files into candidate
// images. Cover intent is never explicit on this path; the first-in-batch
// default applies downstream. Files with a disallowed extension or that
// cannot be read are skipped per-item.
func CandidatesFromMultipart(files []*multipart.FileHeader) ([]domain.CandidateImage, int) {
	candidates := make([]domain.CandidateImage, 0, len(files))
	skipped := 0

	for _, fh := range files {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
		if _, ok := allowedUploadExts[ext]; !ok {
			log.Warn().Str("filename", fh.Filename).Msg("Skipping upload with unsupported extension")
			skipped++
			continue
		}

		content, err := readMultipartFile(fh)
		if err != nil {
			log.Warn().Err(err).Str("filename", fh.Filename).Msg("Skipping unreadable upload")
			skipped++
			continue
		}

		candidates = append(candidates, domain.CandidateImage{
			Content: content,
			Ext:     ext,
		})
	}

	return candidates, skipped
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return content, nil
}

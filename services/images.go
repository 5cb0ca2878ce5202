package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImageStore writes generated portraits to disk under <staticDir>/images and
// hands back paths relative to the static root, always with forward slashes.
type ImageStore struct {
	staticDir string
	imagesDir string
}

// NewImageStore creates the images directory under the static root if missing.
func NewImageStore(staticDir string) (*ImageStore, error) {
	if strings.TrimSpace(staticDir) == "" {
		return nil, fmt.Errorf("static directory is required")
	}
	imagesDir := filepath.Join(staticDir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	return &ImageStore{staticDir: staticDir, imagesDir: imagesDir}, nil
}

// SaveImage writes image bytes for a character. Base images go under
// images/{id}/, variation images under images/{id}/variations/. The filename
// embeds the character id and a nanosecond timestamp so two generations in
// the same second cannot collide.
func (s *ImageStore) SaveImage(characterID string, variation bool, data []byte) (string, error) {
	dir := filepath.Join(s.imagesDir, characterID)
	if variation {
		dir = filepath.Join(dir, "variations")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create character image dir: %w", err)
	}

	name := fmt.Sprintf("%s_%d.png", characterID, time.Now().UnixNano())
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	rel, err := filepath.Rel(s.staticDir, target)
	if err != nil {
		return "", fmt.Errorf("relativize image path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// RemoveCharacterImages deletes a character's whole image directory tree,
// variations included. Missing directories are not an error.
func (s *ImageStore) RemoveCharacterImages(characterID string) error {
	dir := filepath.Join(s.imagesDir, characterID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(dir)
}

// CharacterImagesDir returns the on-disk directory holding a character's
// images.
func (s *ImageStore) CharacterImagesDir(characterID string) string {
	return filepath.Join(s.imagesDir, characterID)
}

// Package media stores garment photos on local disk, resized at upload
// time. Paths are per-user/per-client so a tenant's photos stay together.
package media

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const (
	maxWidth    = 800
	jpegQuality = 80
)

type Store struct {
	root string
}

// NewStore ensures the upload root exists.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: root}, nil
}

// SaveGarmentPhoto decodes a PNG/JPEG upload, resizes it to max width
// 800 preserving aspect ratio, and writes it as JPEG under
// {root}/{userID}/{clientID}/{uuid}.jpg. It returns the path relative
// to the upload root, which is what gets stored on the garment.
func (s *Store) SaveGarmentPhoto(userID, clientID int, r io.Reader, filename string) (string, error) {
	var img image.Image
	var err error

	ext := filepath.Ext(filename)
	switch ext {
	case ".png":
		img, err = png.Decode(r)
	case ".jpeg", ".jpg":
		img, err = jpeg.Decode(r)
	default:
		return "", fmt.Errorf("unsupported image format %q: only PNG, JPG, JPEG are allowed", ext)
	}
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	// Resize image (max width 800px, preserve aspect ratio)
	if img.Bounds().Dx() > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	relDir := filepath.Join(fmt.Sprint(userID), fmt.Sprint(clientID))
	if err := os.MkdirAll(filepath.Join(s.root, relDir), 0o755); err != nil {
		return "", fmt.Errorf("create client upload dir: %w", err)
	}

	relPath := filepath.Join(relDir, uuid.New().String()+".jpg")
	out, err := os.Create(filepath.Join(s.root, relPath))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	return relPath, nil
}

// Remove deletes a stored photo. Missing files are not an error.
func (s *Store) Remove(relPath string) error {
	err := os.Remove(filepath.Join(s.root, relPath))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

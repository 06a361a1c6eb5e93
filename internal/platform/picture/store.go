// Package picture stores uploaded profile pictures as downscaled thumbnails.
package picture

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// nameBytes is the number of random bytes in a generated file name
	// (hex-encoded to 16 characters).
	nameBytes = 8

	// thumbnailSize is the bounding box the stored picture must fit within.
	thumbnailSize = 125
)

// Store writes resized profile pictures into a fixed directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create picture directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save decodes the uploaded image, resizes it to fit within 125x125 while
// preserving aspect ratio, and writes it under a random 16-hex-character name
// with the original file extension. It returns the generated file name.
// Corrupt image data fails the decode step and is not recovered here.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	name, err := randomName(originalName)
	if err != nil {
		return "", err
	}

	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return name, nil
}

// randomName generates "<16 hex chars><original extension>".
// Collisions are treated as negligible-probability and not handled.
func randomName(originalName string) (string, error) {
	b := make([]byte, nameBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate picture name: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	return hex.EncodeToString(b) + ext, nil
}

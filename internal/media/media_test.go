package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngUpload(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestSaveGarmentPhotoResizesWideImages(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.SaveGarmentPhoto(1, 3, pngUpload(t, 1600, 1200), "photo.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rel, ".jpg"))
	assert.Equal(t, filepath.Join("1", "3"), filepath.Dir(rel))

	f, err := os.Open(filepath.Join(store.root, rel))
	require.NoError(t, err)
	defer f.Close()

	saved, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, saved.Bounds().Dx())
	assert.Equal(t, 600, saved.Bounds().Dy())
}

func TestSaveGarmentPhotoKeepsSmallImages(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	rel, err := store.SaveGarmentPhoto(1, 3, pngUpload(t, 400, 300), "photo.png")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(store.root, rel))
	require.NoError(t, err)
	defer f.Close()

	saved, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 400, saved.Bounds().Dx())
}

func TestSaveGarmentPhotoRejectsUnknownFormats(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveGarmentPhoto(1, 3, bytes.NewBufferString("GIF89a"), "photo.gif")
	assert.Error(t, err)
}

func TestRemoveMissingFileIsNoError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Remove(filepath.Join("1", "3", "gone.jpg")))
}

package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesKeyValues(t *testing.T) {
	dir := t.TempDir()
	path, err := InitLoggerIn(dir)
	require.NoError(t, err)
	defer Close()

	again, err := InitLoggerIn(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, path, LogPath())
	assert.Contains(t, path, LogPrefix+"-")

	Info("Analysis started", "run_id", "01H", "files", 4)
	Warn("Sample truncated", "dangling")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "INFO: Logger initialized")
	assert.Contains(t, text, "INFO: Analysis started run_id=01H files=4")
	assert.Contains(t, text, "WARN: Sample truncated dangling=(MISSING)")
	assert.Equal(t, 3, strings.Count(text, "\n"))
}

func TestLoggerSilentWithoutInit(t *testing.T) {
	Close()
	assert.NotPanics(t, func() { Error("nothing", "k", "v") })
	assert.Empty(t, LogPath())
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestResizeImage(t *testing.T) {
	src := testPNG(t, 400, 200)

	out, err := ResizeImage(src, 100, 0)
	require.NoError(t, err)
	w, h := decodedSize(t, out)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	out, err = ResizeImage(src, 0, 90)
	require.NoError(t, err)
	w, _ = decodedSize(t, out)
	assert.Equal(t, 400, w)

	_, err = ResizeImage([]byte("not an image"), 100, 85)
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	out, err := Thumbnail(testPNG(t, 200, 400), 100, 0)
	require.NoError(t, err)
	w, h := decodedSize(t, out)
	assert.Equal(t, 50, w)
	assert.Equal(t, 100, h)

	out, err = Thumbnail(testPNG(t, 20, 10), 100, 0)
	require.NoError(t, err)
	w, _ = decodedSize(t, out)
	assert.Equal(t, 20, w)

	_, err = Thumbnail(testPNG(t, 20, 10), 0, 0)
	assert.Error(t, err)
}

func TestGracefulShutdownCleanup(t *testing.T) {
	ctx, shutdown := SetupGracefulShutdownWithContext()
	require.NoError(t, ctx.Err())
	shutdown()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

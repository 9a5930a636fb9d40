package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Регистрируем PNG декодер

	"github.com/nfnt/resize"
)

// DefaultJPEGQuality — качество JPEG для миниатюр.
const DefaultJPEGQuality = 85

// ResizeImage ресайзит изображение до указанной ширины, сохраняя пропорции.
//
// Параметры:
//   - data: байты исходного изображения (JPEG, PNG)
//   - maxWidth: целевая ширина в пикселях. Если 0 или меньше исходной ширины — ресайз не применяется.
//   - quality: качество JPEG при кодировании (1-100). 0 — DefaultJPEGQuality.
//
// Возвращает байты JPEG изображения.
func ResizeImage(data []byte, maxWidth int, quality int) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	if maxWidth > 0 && b.Dx() > maxWidth {
		height := uint(float64(maxWidth) * float64(b.Dy()) / float64(b.Dx()))
		img = resize.Resize(uint(maxWidth), height, img, resize.Lanczos3)
	}
	return encodeJPEG(img, quality)
}

// Thumbnail вписывает изображение в квадрат side×side, сохраняя пропорции.
// Изображения меньше квадрата не увеличиваются.
func Thumbnail(data []byte, side int, quality int) ([]byte, error) {
	if side <= 0 {
		return nil, fmt.Errorf("thumbnail side must be positive, got %d", side)
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(resize.Thumbnail(uint(side), uint(side), img, resize.Lanczos3), quality)
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode to jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

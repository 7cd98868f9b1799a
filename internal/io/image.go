package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"math"

	"golang.org/x/image/draw"
)

// JPEGQuality is used for every encoded image.
const JPEGQuality = 90

// ImageService provides image processing operations for cover art.
//
// Example usage:
//
//	svc := NewImageService()
//	art, _ := tagstore.ReadAsset("/music/Album/01.flac")
//	jpeg, err := svc.ResizeImage(ctx, art.Artwork[0].Data, 1000, 1000)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ResizeImage scales an image down to fit within maxWidth x maxHeight,
// keeping the aspect ratio, and returns it as JPEG. Smaller images are
// only re-encoded.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x667
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, err := decode(ctx, data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	return encodeJPEG(scale(img, width, height))
}

// ResizeToWidth scales an image wider than width down to exactly width
// pixels, rounding the height, and returns it as JPEG.
//
// Example:
//
//	// A 3000x3000 scan becomes 1000x1000; a 600x600 image stays 600x600
//	folder, err := svc.ResizeToWidth(ctx, imageData, 1000)
func (s *ImageService) ResizeToWidth(ctx context.Context, data []byte, width int) ([]byte, error) {
	img, err := decode(ctx, data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() <= width {
		return encodeJPEG(img)
	}
	factor := float64(width) / float64(bounds.Dx())
	height := int(math.Round(factor * float64(bounds.Dy())))
	return encodeJPEG(scale(img, width, height))
}

// ConvertToJPEG re-encodes an image as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, err := decode(ctx, data)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

func decode(ctx context.Context, data []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// scale uses Catmull-Rom for quality downscaling.
func scale(img image.Image, width, height int) image.Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"strings"

	_ "image/gif" // register decoders for FitToLimit
	_ "image/png"

	"github.com/figgen/mcp-server/internal/logger"
)

var jpegQualities = []int{85, 70, 50}
var downscales = []float64{0.75, 0.5}

// FitToLimit returns (effectivePath, format) for an image that fits under
// limit raw bytes.
//
// If the file at path already fits, it is returned as-is. Otherwise the image
// is re-saved as optimised JPEG next to the original (suffix ".mcp.jpg"),
// trying descending quality levels and finally downscaling. JPEG is
// dramatically smaller for the photographic output typical of AI image
// generators.
func FitToLimit(path string, limit int) (string, string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}
	mimeType, err := DetectMIMEType(path)
	if err != nil {
		return "", "", err
	}
	format := strings.TrimPrefix(mimeType, "image/")

	if fi.Size() <= int64(limit) {
		return path, format, nil
	}

	logger.Named("imageio").WithFields(logger.Fields{
		"original_bytes": fi.Size(),
		"limit":          limit,
	}).Info("image exceeds payload limit, compressing to JPEG")

	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return "", "", fmt.Errorf("decode %s: %w", path, err)
	}

	compressedPath := compressedName(path)

	var buf bytes.Buffer
	for _, quality := range jpegQualities {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", "", err
		}
		if buf.Len() <= limit {
			if err := os.WriteFile(compressedPath, buf.Bytes(), 0o644); err != nil {
				return "", "", err
			}
			logger.Named("imageio").WithFields(logger.Fields{
				"quality":          quality,
				"compressed_bytes": buf.Len(),
			}).Info("compressed image saved")
			return compressedPath, "jpeg", nil
		}
	}

	// Last resort: scale down.
	for _, scale := range downscales {
		resized := downscale(img, scale)
		buf.Reset()
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 70}); err != nil {
			return "", "", err
		}
		if buf.Len() <= limit {
			if err := os.WriteFile(compressedPath, buf.Bytes(), 0o644); err != nil {
				return "", "", err
			}
			logger.Named("imageio").WithFields(logger.Fields{
				"scale":            scale,
				"compressed_bytes": buf.Len(),
			}).Info("resized and compressed image saved")
			return compressedPath, "jpeg", nil
		}
	}

	// Give up gracefully and return whatever we have.
	if err := os.WriteFile(compressedPath, buf.Bytes(), 0o644); err != nil {
		return "", "", err
	}
	return compressedPath, "jpeg", nil
}

func compressedName(path string) string {
	if i := strings.LastIndex(path, "."); i > strings.LastIndexAny(path, "/\\") {
		path = path[:i]
	}
	return path + ".mcp.jpg"
}

// downscale performs nearest-neighbour resampling. Good enough here: the
// scaled output only exists to duck under the payload cap.
func downscale(src image.Image, scale float64) image.Image {
	b := src.Bounds()
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := b.Min.Y + y*b.Dy()/h
		for x := 0; x < w; x++ {
			sx := b.Min.X + x*b.Dx()/w
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

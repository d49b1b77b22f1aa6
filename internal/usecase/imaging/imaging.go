// Package imaging derives layout metadata from generated illustrations.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"
)

// scanWidth is the width images are reduced to before the row scan
const scanWidth = 64

// ErrEmptyImage is returned for zero-length payloads
var ErrEmptyImage = errors.New("empty image payload")

// Analysis is the derived metadata of an image
type Analysis struct {
	// LightestRowPct is the vertical position of the brightest row, as a
	// percentage of the image height measured from the top.
	LightestRowPct float64
	// PerceptualHash is the hex encoded perception hash
	PerceptualHash string
}

// Analyze decodes a PNG or JPEG payload and computes its metadata
func Analyze(data []byte) (*Analysis, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("hash image: %w", err)
	}

	return &Analysis{
		LightestRowPct: LightestRowPct(img),
		PerceptualHash: hash.ToString(),
	}, nil
}

// LightestRowPct downsamples img and returns the position of the row with the
// highest mean luminance as a percentage of its height.
func LightestRowPct(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return 0
	}
	if bounds.Dx() > scanWidth {
		img = resize.Resize(scanWidth, 0, img, resize.Bilinear)
		bounds = img.Bounds()
	}

	height := bounds.Dy()
	best, bestRow := -1.0, 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		var sum float64
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sum += luminance(img.At(x, y).RGBA())
		}
		mean := sum / float64(bounds.Dx())
		if mean > best {
			best, bestRow = mean, y-bounds.Min.Y
		}
	}
	if height == 1 {
		return 0
	}
	return float64(bestRow) / float64(height-1) * 100
}

// luminance weights 16-bit channels per ITU-R BT.601
func luminance(r, g, b, _ uint32) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// Similar reports whether two hex hashes are within maxDistance bits
func Similar(a, b string, maxDistance int) (bool, error) {
	ha, err := goimagehash.ImageHashFromString(a)
	if err != nil {
		return false, err
	}
	hb, err := goimagehash.ImageHashFromString(b)
	if err != nil {
		return false, err
	}
	dist, err := ha.Distance(hb)
	if err != nil {
		return false, err
	}
	return dist <= maxDistance, nil
}

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func bandImage(w, h, lightRow int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(40)
			if y == lightRow {
				v = 250
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestLightestRowPct(t *testing.T) {
	tests := []struct {
		name string
		row  int
		want float64
	}{
		{"top", 0, 0},
		{"middle", 5, 50},
		{"bottom", 10, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LightestRowPct(bandImage(16, 11, tt.row)); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, bandImage(32, 11, 0)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := Analyze(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.LightestRowPct != 0 {
		t.Fatalf("unexpected lightest row %v", out.LightestRowPct)
	}
	if out.PerceptualHash == "" {
		t.Fatal("expected perceptual hash")
	}

	same, err := Similar(out.PerceptualHash, out.PerceptualHash, 0)
	if err != nil || !same {
		t.Fatalf("hash should match itself: %v %v", same, err)
	}
}

func TestAnalyze_RejectsGarbage(t *testing.T) {
	if _, err := Analyze(nil); err != ErrEmptyImage {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := Analyze([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

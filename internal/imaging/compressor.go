package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"net/http"

	_ "image/gif" // register GIF decoder
	_ "image/png" // register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrImageLoad marks a source that cannot be decoded as an image.
var ErrImageLoad = errors.New("image cannot be decoded")

const (
	// DefaultMaxDimension bounds the long edge of the uploaded image.
	DefaultMaxDimension = 1920

	// DefaultQuality is the JPEG quality used when re-encoding.
	DefaultQuality = 85

	// passThroughBytes is the byte size under which an image that already
	// fits the dimension bound is embedded unmodified, skipping the lossy
	// re-encode.
	passThroughBytes = 500 * 1024

	// MaxUploadBytes is the hard ceiling on the source image. Larger
	// uploads are rejected before any decode attempt.
	MaxUploadBytes = 10 * 1024 * 1024
)

// Compressor normalizes arbitrary user-selected images into a bounded-size
// embeddable form before they are sent to the recognition backend.
type Compressor struct {
	MaxDimension int
	Quality      int
}

func NewCompressor() *Compressor {
	return &Compressor{
		MaxDimension: DefaultMaxDimension,
		Quality:      DefaultQuality,
	}
}

// Compress returns the image as a data URL. Images whose long edge fits
// MaxDimension and whose size is under 500KB pass through unmodified;
// everything else is resampled to the dimension bound (aspect preserved)
// and re-encoded as JPEG at Quality.
func (c *Compressor) Compress(src []byte) (string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	longEdge := cfg.Width
	if cfg.Height > longEdge {
		longEdge = cfg.Height
	}

	if longEdge <= c.MaxDimension && len(src) < passThroughBytes {
		return Embed(http.DetectContentType(src), src), nil
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageLoad, err)
	}

	width, height := cfg.Width, cfg.Height
	if longEdge > c.MaxDimension {
		ratio := float64(c.MaxDimension) / float64(longEdge)
		width = int(math.Round(float64(cfg.Width) * ratio))
		height = int(math.Round(float64(cfg.Height) * ratio))
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: c.Quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	return Embed("image/jpeg", buf.Bytes()), nil
}

// internal/imagepipe/resize.go

package imagepipe

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// fitInside scales (w, h) down to fit a limit×limit box, keeping the aspect
// ratio. Images already inside the box are left alone.
func fitInside(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		nh := h * limit / w
		if nh < 1 {
			nh = 1
		}
		return limit, nh
	}
	nw := w * limit / h
	if nw < 1 {
		nw = 1
	}
	return nw, limit
}

// resizeInPlace fits the image at path inside a limit×limit box and
// re-encodes it in its original format. It returns that format.
func resizeInPlace(path string, limit, quality int) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	img, format, err := image.Decode(in)
	in.Close()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	bounds := img.Bounds()
	w, h := fitInside(bounds.Dx(), bounds.Dy(), limit)
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		img = dst
	}

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to rewrite image: %w", err)
	}
	if err := encode(out, img, format, quality); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to rewrite image: %w", err)
	}
	return format, nil
}

func encode(w io.Writer, img image.Image, format string, quality int) error {
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(w, img)
	case "gif":
		err = gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// Package imaging normalizes raw inspection photographs before analysis:
// decode, bound the longest edge, stretch contrast, re-encode as JPEG.
// There is no domain logic here.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/image/draw"
)

const (
	// maxEdge bounds the longest image edge sent to the model
	maxEdge = 1024

	jpegQuality = 85
)

// Normalize decodes raw image bytes, scales the image so its longest edge is
// at most maxEdge, applies a linear contrast stretch, and re-encodes as JPEG.
func Normalize(raw []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode image")
	}

	img := scale(src)
	img = stretchContrast(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, goerr.Wrap(err, "failed to encode normalized image", goerr.V("format", format))
	}

	return buf.Bytes(), nil
}

// scale downsamples with Catmull-Rom interpolation; images already within
// bounds are returned untouched.
func scale(src image.Image) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}

	var dw, dh int
	if w >= h {
		dw = maxEdge
		dh = h * maxEdge / w
	} else {
		dh = maxEdge
		dw = w * maxEdge / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

// stretchContrast linearly remaps pixel luma so the darkest pixel maps to 0
// and the brightest to 255. Flat images (no luma range) are left as-is.
func stretchContrast(src image.Image) image.Image {
	bounds := src.Bounds()

	minLuma, maxLuma := uint32(1<<16-1), uint32(0)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			l := luma(src.At(x, y).RGBA())
			if l < minLuma {
				minLuma = l
			}
			if l > maxLuma {
				maxLuma = l
			}
		}
	}

	if maxLuma <= minLuma {
		return src
	}

	dst := image.NewRGBA(bounds)
	span := maxLuma - minLuma
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := src.At(x, y).RGBA()
			i := (y-bounds.Min.Y)*dst.Stride + (x-bounds.Min.X)*4
			dst.Pix[i+0] = remap(r, minLuma, span)
			dst.Pix[i+1] = remap(g, minLuma, span)
			dst.Pix[i+2] = remap(b, minLuma, span)
			dst.Pix[i+3] = uint8(a >> 8)
		}
	}
	return dst
}

// luma approximates Rec. 601 luminance from 16-bit premultiplied channels
func luma(r, g, b, _ uint32) uint32 {
	return (299*r + 587*g + 114*b) / 1000
}

func remap(v, minLuma, span uint32) uint8 {
	if v <= minLuma {
		return 0
	}
	scaled := uint64(v-minLuma) * (1<<16 - 1) / uint64(span)
	if scaled > 1<<16-1 {
		scaled = 1<<16 - 1
	}
	return uint8(scaled >> 8)
}

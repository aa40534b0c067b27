package media

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eleven-am/inference-server/internal/shared"
)

// DefaultMaxDim bounds the longest frame side before frames reach the model
// runtime. Visual tokenizers tile the input, so oversized frames only add
// preprocessing cost.
const DefaultMaxDim = 1024

// DecodeImage decodes a still-image payload (jpeg, png, gif or webp) into a
// single-frame sequence at t=0.
func DecodeImage(data []byte, maxDim int) (FrameSequence, error) {
	if len(data) == 0 {
		return nil, shared.EmptyMedia("empty image payload")
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, shared.DecodeWrap("decode image", err)
	}

	return FrameSequence{{Image: scaleToFit(img, maxDim), Timestamp: 0}}, nil
}

// scaleToFit downscales img so its longest side is at most maxDim,
// preserving aspect ratio. Images already within bounds pass through.
func scaleToFit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	var dw, dh int
	if w >= h {
		dw = maxDim
		dh = h * maxDim / w
	} else {
		dh = maxDim
		dw = w * maxDim / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

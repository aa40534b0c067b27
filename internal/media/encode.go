package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"
)

const encodeQuality = 90

// EncodeBase64JPEG serializes every frame as base64 JPEG for transport to
// the model runtime, preserving temporal order.
func EncodeBase64JPEG(frames FrameSequence) ([]string, error) {
	encoded := make([]string, len(frames))
	var buf bytes.Buffer
	for i, frame := range frames {
		buf.Reset()
		if err := jpeg.Encode(&buf, frame.Image, &jpeg.Options{Quality: encodeQuality}); err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", i, err)
		}
		encoded[i] = base64.StdEncoding.EncodeToString(buf.Bytes())
	}
	return encoded, nil
}

package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"log/slog"

	"github.com/cenkalti/dominantcolor"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ExtractColors returns the four dominant colors of an encoded image as a
// JSON object of index to RGBA.
func ExtractColors(b []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	colors := make(map[int][4]uint8)
	dColors := dominantcolor.FindN(img, 4)
	for i, color := range dColors {
		colors[i] = [4]uint8{color.R, color.G, color.B, color.A}
	}

	return json.Marshal(colors)
}

// palette is best effort: documents and unknown formats have none.
func (u Usecase) palette(ctx context.Context, b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	colors, err := ExtractColors(b)
	if err != nil {
		u.logger.DebugContext(ctx, "no palette", slog.String("err", err.Error()))
		return nil
	}
	return colors
}

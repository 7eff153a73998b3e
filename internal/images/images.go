// Package images turns listing and profile images into stored URLs. Images
// arrive either as plain URLs or as base64 data URIs.
package images

import (
	"context"
	"encoding/base64"
	"strings"

	"pgfinder/pg-api/internal/apperr"
)

var errBadImage = apperr.New(apperr.ErrValidation, "Images must be URLs or base64 encoded image data URIs")

// Inline keeps images exactly as sent, data URIs included.
type Inline struct{}

func (Inline) Store(_ context.Context, _ string, src string) (string, error) {
	return src, nil
}

func isDataURI(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// decodeDataURI returns the payload of a base64 data URI. The declared media
// type is ignored, content is sniffed instead.
func decodeDataURI(src string) ([]byte, error) {
	meta, payload, found := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, errBadImage
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errBadImage
	}

	if len(data) == 0 {
		return nil, errBadImage
	}

	return data, nil
}

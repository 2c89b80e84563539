// Package skin validates player skin textures and stores them.
package skin

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"mc-launcher/apperr"
)

// Format of a valid skin texture.
type Format string

const (
	Modern Format = "modern" // 64x64, separate layers per limb
	Legacy Format = "legacy" // 64x32
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Validate checks that data is a PNG skin of a supported size.
func Validate(data []byte) (Format, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return "", fmt.Errorf("%w: skin must be a PNG image", apperr.ErrValidation)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: skin image is corrupted: %v", apperr.ErrValidation, err)
	}

	switch {
	case cfg.Width == 64 && cfg.Height == 64:
		return Modern, nil
	case cfg.Width == 64 && cfg.Height == 32:
		return Legacy, nil
	default:
		return "", fmt.Errorf("%w: invalid skin dimensions %dx%d, expected 64x64 or 64x32", apperr.ErrValidation, cfg.Width, cfg.Height)
	}
}

// ErrNoStorage is returned when no skin storage has been configured.
var ErrNoStorage = errors.New("skin storage is not configured")

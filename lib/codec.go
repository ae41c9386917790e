package lib

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// LoadImageFile decodes a still image into a packed frame. The format
// is detected from the file content, not the extension.
func LoadImageFile(path string) (Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("%w: open %s: %v", ErrDecodeFailed, path, err)
	}
	return *fromImage(img), nil
}

// SaveImageFile encodes a frame to the given path. The encoder is
// chosen from the output extension; an extension imaging cannot encode
// fails before any pixel is written.
func SaveImageFile(im Image, path string) error {
	if err := imaging.Save(ImagetoNRGBA(&im), path); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrEncodeFailed, path, err)
	}
	return nil
}

package lib

import (
	"path/filepath"
	"strings"
)

// MediaKind classifies an input path by its extension. Dispatch happens
// once at the boundary; everything downstream switches on the kind, not
// on the path.
type MediaKind int

const (
	MediaUnrecognized MediaKind = iota
	MediaImage
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	}
	return "unrecognized"
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif", ".gif"}

var videoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".mpeg"}

func DetectMediaKind(path string) MediaKind {
	ext := strings.ToLower(filepath.Ext(path))
	if IsContain(imageExtensions, ext) {
		return MediaImage
	}
	if IsContain(videoExtensions, ext) {
		return MediaVideo
	}
	return MediaUnrecognized
}

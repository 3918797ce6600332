// Package images handles stored note-image files: thumbnail generation and
// the small amount of file-type knowledge the upload path needs.
package images

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// thumbWidth is the fixed width of generated thumbnails; height follows the
// aspect ratio.
const thumbWidth = 320

var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// IsSupported reports whether name has an image extension the upload path
// accepts.
func IsSupported(name string) bool {
	_, ok := extMime[strings.ToLower(filepath.Ext(name))]
	return ok
}

// MimeByExt returns the content type for a file name, or "" when unknown.
func MimeByExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

// Thumbnail writes a downscaled copy of srcPath to dstPath. Orientation tags
// are applied before resizing so phone screenshots come out upright.
func Thumbnail(srcPath, dstPath string) error {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, dstPath); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}
	return nil
}

package util

import (
	"path"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
)

const maxImageBaseLen = 80

var (
	// ErrInvalidFileName is returned for names that are empty or try to
	// escape the owner's directory.
	ErrInvalidFileName = eris.New("invalid file name")
	// ErrUnsupportedImage is returned for names without an accepted image extension.
	ErrUnsupportedImage = eris.New("unsupported image type")
)

var imageExtensions = map[string]string{
	".jpg":  ".jpg",
	".jpeg": ".jpg",
	".png":  ".png",
	".webp": ".webp",
	".gif":  ".gif",
}

// SanitizeImageName returns a storage-safe version of an uploaded product
// photo name. Separators and unusual characters become "_", the base is
// capped, and the extension is lowercased to one of jpg, png, webp or gif.
func SanitizeImageName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", ErrInvalidFileName
	}

	ext, ok := imageExtensions[strings.ToLower(path.Ext(s))]
	if !ok {
		return "", eris.Wrapf(ErrUnsupportedImage, "file %q", s)
	}
	base := strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '_':
			return r
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		default:
			return '_'
		}
	}, s[:len(s)-len(path.Ext(s))])
	base = strings.Trim(base, "_")
	if base == "" {
		base = "image"
	}
	if len(base) > maxImageBaseLen {
		base = base[:maxImageBaseLen]
	}
	return base + ext, nil
}

// IsImageName reports whether name carries an accepted image extension.
func IsImageName(name string) bool {
	_, ok := imageExtensions[strings.ToLower(path.Ext(strings.TrimSpace(name)))]
	return ok
}

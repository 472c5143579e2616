// Package upload validates and stores files posted through the site's forms.
package upload

import (
	"errors"
	"path"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrDisallowedType = errors.New("file type not allowed")
	ErrEmptyName      = errors.New("empty file name")
)

var (
	ImageExtensions    = []string{"png", "jpg", "jpeg", "webp"}
	DocumentExtensions = []string{"png", "jpg", "jpeg", "webp", "pdf"}
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Allowed reports whether filename has an extension in allowed. Only the part
// after the last dot counts and case is ignored.
func Allowed(filename string, allowed []string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	return slices.Contains(allowed, strings.ToLower(filename[i+1:]))
}

// SecureFilename reduces name to a flat ASCII file name that is safe to use as
// a storage key. It can return an empty string.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	ascii := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] < 0x80 {
			ascii = append(ascii, name[i])
		}
	}
	name = string(ascii)
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// StoredName is the name an upload is saved under: the original name prefixed
// with a discriminator such as the submitter's name or phone.
func StoredName(discriminator, original string) (string, error) {
	name := SecureFilename(discriminator + "_" + original)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// Key joins an area prefix and a stored file name into a blob key.
func Key(area, filename string) string {
	return path.Join(area, filename)
}

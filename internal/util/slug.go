package util

import "github.com/gosimple/slug"

// Slugify transliterates s to ASCII and joins its words with dashes.
func Slugify(s string) string {
	return slug.Make(s)
}

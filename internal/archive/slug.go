package archive

import (
	"regexp"
	"strings"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9._]+`)

// Slugify turns name into a lowercase file name made of letters, digits,
// dots, underscores and dashes, at most ArchiveFilenameMaxLength long.
func Slugify(name string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(name), "-")
	slug = strings.Trim(slug, "-.")

	if len(slug) > constants.ArchiveFilenameMaxLength {
		slug = strings.TrimRight(slug[:constants.ArchiveFilenameMaxLength], "-.")
	}

	if slug == "" {
		return "file"
	}
	return slug
}

package steem

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

// ConstructIdentifier returns "@author/permlink".
func ConstructIdentifier(author, permlink string) string {
	return fmt.Sprintf("@%v/%v", author, permlink)
}

var identifierRegexp = regexp.MustCompile(`^@?([\w\-.]*)/([\w\-]*)`)

// ResolveIdentifier splits "@author/permlink". The leading @ is optional.
func ResolveIdentifier(identifier string) (author, permlink string, err error) {
	m := identifierRegexp.FindStringSubmatch(identifier)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
	return m[1], m[2], nil
}

var (
	permlinkSeparators = regexp.MustCompile(`[_\s.]`)
	permlinkInvalid    = regexp.MustCompile(`[^a-zA-Z0-9-]`)
)

// SanitizePermlink turns s into a valid permlink.
func SanitizePermlink(s string) string {
	s = strings.TrimSpace(s)
	s = permlinkSeparators.ReplaceAllString(s, "-")
	s = permlinkInvalid.ReplaceAllString(s, "")
	return strings.ToLower(s)
}

// DerivePermlink returns the permlink of a post titled title, or of a reply
// to the post with permlink parent when parent is not empty.
func DerivePermlink(title, parent string) string {
	return derivePermlink(title, parent, time.Now())
}

func derivePermlink(title, parent string, now time.Time) string {
	if parent == "" {
		return SanitizePermlink(title)
	}
	return SanitizePermlink("re-" + parent + "-" + FormatTime(now.Unix()))
}

// PermlinkTimeFormat is the time layout used in reply permlinks.
const PermlinkTimeFormat = "20060102t150405"

// FormatTime formats a unix timestamp for use in permlinks.
func FormatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(PermlinkTimeFormat)
}

var tagSeparators = regexp.MustCompile(`[\W_]+`)

// SplitTags splits a string of tags on any non word character.
func SplitTags(s string) []string {
	var tags []string
	for _, tag := range tagSeparators.Split(s, -1) {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// uniqueTags removes duplicates from tags keeping the first occurrence.
func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	unique := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}
	return unique
}

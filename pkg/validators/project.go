package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

var (
	ErrNameRequired       = errors.New("project name is required")
	ErrNameTooLong        = errors.New("project name can't be longer than 100 characters")
	ErrDescriptionTooLong = errors.New("project description can't be longer than 500 characters")
	ErrSnippetFields      = errors.New("Title and code are required")
	ErrLinkFields         = errors.New("Title and URL are required")
)

// ProjectName expects an already trimmed name
func ProjectName(name string) error {
	if name == "" {
		return ErrNameRequired
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}

	return nil
}

func ProjectDescription(d string) error {
	if utf8.RuneCountInString(d) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	return nil
}

// NormalizeTag trims and lowercases a tag
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes every tag and drops the empty ones. Duplicates
// are kept; only the add-tag helper deduplicates.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = NormalizeTag(t); t != "" {
			out = append(out, t)
		}
	}

	return out
}

func SnippetFields(title, code string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(code) == "" {
		return ErrSnippetFields
	}

	return nil
}

func LinkFields(title, url string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(url) == "" {
		return ErrLinkFields
	}

	return nil
}

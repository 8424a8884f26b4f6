package discovery

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveTitle turns a footage directory path into a presentable run title:
// separators collapse to spaces, anything non-alphanumeric drops, and the
// remainder is title-cased.
func DeriveTitle(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return "Untitled Run"
	}
	base := filepath.Base(filepath.Clean(dir))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Run"
	}
	return cases.Title(language.Und).String(title)
}

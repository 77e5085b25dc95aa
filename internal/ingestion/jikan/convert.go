package jikan

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the local storage format for broadcast dates.
const DateLayout = "2006-01-02"

var (
	// MAL credit lines such as "[Written by MAL Rewrite]" or "(Source: ANN)"
	creditLine = regexp.MustCompile(`(?im)^\s*[\[(](?:written by|source:)[^\])]*[\])]\s*$`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// GenerateSlug creates a URL-friendly slug from a title, transliterating
// accented letters ("Película" -> "pelicula").
func GenerateSlug(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	slug := strings.ToLower(folded)

	var result strings.Builder
	lastHyphen := true
	for _, char := range slug {
		switch {
		case (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9'):
			result.WriteRune(char)
			lastHyphen = false
		case !lastHyphen:
			// spaces, punctuation and non-latin runes collapse into one hyphen
			result.WriteRune('-')
			lastHyphen = true
		}
	}

	return strings.Trim(result.String(), "-")
}

// BuildOtherTitles joins the English and Japanese variants of a record,
// deduplicated, as "Name (Inglés), 名前 (Japonés)".
func BuildOtherTitles(r *Record) string {
	type variant struct{ title, suffix string }

	var variants []variant
	for _, v := range r.Titles {
		switch v.Type {
		case "English":
			variants = append(variants, variant{v.Title, " (Inglés)"})
		case "Japanese":
			variants = append(variants, variant{v.Title, " (Japonés)"})
		}
	}
	if len(variants) == 0 {
		if r.TitleEnglish != nil {
			variants = append(variants, variant{*r.TitleEnglish, " (Inglés)"})
		}
		if r.TitleJapanese != nil {
			variants = append(variants, variant{*r.TitleJapanese, " (Japonés)"})
		}
	}

	seen := make(map[string]bool, len(variants))
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		t := strings.TrimSpace(v.title)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		parts = append(parts, t+v.suffix)
	}

	return strings.Join(parts, ", ")
}

// ParseCatalogDate parses an ISO-8601 catalog date and truncates it to a
// calendar date in UTC. Empty input returns nil without error.
func ParseCatalogDate(field, value string) (*time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, nil
	}

	var parsed time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", DateLayout} {
		parsed, err = time.Parse(layout, v)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, &FieldParseError{Field: field, Value: value, Cause: err}
	}

	day, err := time.Parse(DateLayout, parsed.UTC().Format(DateLayout))
	if err != nil {
		return nil, &FieldParseError{Field: field, Value: value, Cause: fmt.Errorf("reformat: %w", err)}
	}
	return &day, nil
}

// CleanSynopsis strips HTML, entities and MAL credit lines.
func CleanSynopsis(s string) string {
	text := s
	if strings.ContainsAny(text, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err == nil {
			text = doc.Text()
		}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = creditLine.ReplaceAllString(text, "")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// Package bundles decides whether a store-product title is a bundle (base
// product plus extras) and extracts a readable description of what the
// bundle adds. Everything here is string heuristics: total functions, no
// errors, deterministic output for any input.
package bundles

import (
	"regexp"
	"strings"
)

// bundlePatterns is the indicator library, tested case-insensitively
// against the raw store title. Keep it a flat table so entries can be
// added and exercised one by one.
var bundlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbundle\b`),
	regexp.MustCompile(`(?i)\bkit\b`),
	regexp.MustCompile(`(?i)\bpackage\b`),
	regexp.MustCompile(`(?i)\bcombo\b`),
	regexp.MustCompile(`(?i)\binclud(es?|ing)\b`),
	regexp.MustCompile(`(?i)\bfull system\b`),
	regexp.MustCompile(`(?i)\bstereo pair\b`),
	regexp.MustCompile(`(?i)\bpodcasting bundle\b`),
	regexp.MustCompile(`(?i)\bstreaming bundle\b`),
	regexp.MustCompile(`(?i)\bbroadcasting bundle\b`),
	regexp.MustCompile(`(?i)\brecording bundle\b`),
	regexp.MustCompile(`(?i)\bwith free\b`),
	regexp.MustCompile(`(?i)\bwith \w+ (cable|arm|stand|mount|filter|shock|case|bag|boom|windscreen|headphones|interface)\b`),
	regexp.MustCompile(`(?i)^\s*\+\s*\w+`),
	regexp.MustCompile(`(?i)\bfree \d`),
}

// bundleKeywords back up the pattern table: a store title containing one of
// these where the product name does not is treated as a bundle.
var bundleKeywords = []string{
	"bundle",
	"kit",
	"package",
	"combo",
	"free",
	"includes",
	"complete",
	"full system",
	"upgrade cable",
	"cloudlifter",
	"podcasting",
	"streaming",
	"broadcasting",
	"premium package",
	"starter",
	"stereo pair",
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeTitle lowercases, strips any trailing "| ..." retailer clutter,
// maps punctuation to spaces and collapses whitespace.
func normalizeTitle(s string) string {
	s = strings.ToLower(s)
	if i := strings.Index(s, "|"); i >= 0 {
		s = s[:i]
	}
	s = nonAlphanumeric.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// IsBundle reports whether storeTitle describes a bundle of productName
// rather than the bare product.
func IsBundle(storeTitle, productName string) bool {
	normStore := normalizeTitle(storeTitle)
	normProduct := normalizeTitle(productName)

	if normStore == normProduct {
		return false
	}
	// Bundles always add descriptive text; a near-identical length means
	// the difference is punctuation or a color suffix, not extras.
	if len(normStore) <= len(normProduct)+5 {
		return false
	}

	for _, p := range bundlePatterns {
		if p.MatchString(storeTitle) {
			return true
		}
	}

	lowerStore := strings.ToLower(storeTitle)
	lowerProduct := strings.ToLower(productName)
	for _, kw := range bundleKeywords {
		if strings.Contains(lowerStore, kw) && !strings.Contains(lowerProduct, kw) {
			return true
		}
	}

	return false
}

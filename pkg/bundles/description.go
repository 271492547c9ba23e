package bundles

import (
	"regexp"
	"strings"
)

// descriptionIndicator finds where the "what the bundle adds" text starts
// inside the suffix that follows the product name.
var descriptionIndicator = regexp.MustCompile(
	`(?i)\b(with|and|bundle|kit|package|combo|set|free|includes?|including|complete|full system|upgrade|stereo)\b|\+|\(`)

var (
	withSuffix = regexp.MustCompile(`(?i)\bwith\b.*$`)
	plusSuffix = regexp.MustCompile(`\+\s*\S.*$`)
	parenGroup = regexp.MustCompile(`\(([^)]+)\)`)
)

// leading separators left behind when the product name is cut out of the
// title.
const separatorCutset = " \t-–—:|"

// ExtractBundleDescription returns a human-readable description of what a
// bundle adds on top of productName. It is best-effort and never fails:
// when nothing better can be found it returns the original title unchanged.
func ExtractBundleDescription(storeTitle, productName string) string {
	if idx := indexIgnoreCase(storeTitle, productName); idx >= 0 && productName != "" {
		suffix := storeTitle[idx+len(productName):]
		if desc := descriptionFromSuffix(suffix); desc != "" {
			return desc
		}
	}

	if m := withSuffix.FindString(storeTitle); m != "" {
		return strings.TrimSpace(m)
	}
	if m := plusSuffix.FindString(storeTitle); m != "" {
		return strings.TrimSpace(m)
	}
	for _, group := range parenGroup.FindAllStringSubmatch(storeTitle, -1) {
		inner := strings.TrimSpace(group[1])
		lower := strings.ToLower(inner)
		for _, kw := range bundleKeywords {
			if strings.Contains(lower, kw) {
				return inner
			}
		}
	}

	return storeTitle
}

// descriptionFromSuffix turns the text after the product name into a
// description: start at the first indicator if any, strip leading
// separators, and unwrap a fully parenthesized remainder.
func descriptionFromSuffix(suffix string) string {
	rest := suffix
	if loc := descriptionIndicator.FindStringIndex(suffix); loc != nil {
		rest = suffix[loc[0]:]
	}

	rest = strings.Trim(strings.TrimLeft(rest, separatorCutset), " ")
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	return rest
}

func indexIgnoreCase(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

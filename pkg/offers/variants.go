package offers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AudioList/deals-api/pkg/models"
)

// titleSeparator splits listing titles into segments. Only the literal
// spaced form counts; hyphenated model numbers like "X-200" stay intact.
const titleSeparator = " - "

const (
	labelDefault = "(default)"
	labelListing = "(listing)"
)

// colorWords are tokens that on their own identify a color variant.
var colorWords = map[string]struct{}{
	"black": {}, "white": {}, "silver": {}, "gold": {}, "red": {},
	"blue": {}, "green": {}, "gray": {}, "grey": {}, "brown": {},
	"pink": {}, "purple": {}, "orange": {}, "yellow": {}, "beige": {},
	"bronze": {}, "copper": {}, "charcoal": {}, "graphite": {},
	"gunmetal": {}, "slate": {}, "navy": {}, "teal": {}, "burgundy": {},
	"maroon": {}, "tan": {}, "cream": {}, "ivory": {}, "walnut": {},
	"oak": {}, "cherry": {}, "rosewood": {}, "ebony": {}, "mahogany": {},
	"natural": {}, "clear": {}, "transparent": {},
}

// finishModifiers may accompany a color word but never qualify a segment as
// a variant label by themselves ("Matte Black" splits, a bare "Matte" does
// not).
var finishModifiers = map[string]struct{}{
	"matte": {}, "matt": {}, "gloss": {}, "glossy": {}, "satin": {},
	"brushed": {}, "polished": {}, "anodized": {}, "metallic": {},
	"piano": {}, "midnight": {}, "arctic": {}, "space": {}, "dark": {},
	"light": {}, "deep": {},
}

// splitSegments breaks a title on the separator, trimming each piece and
// dropping empties.
func splitSegments(title string) []string {
	parts := strings.Split(title, titleSeparator)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// tokenizeLetters lowercases s and splits it into runs of letters.
func tokenizeLetters(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
}

// isColorSegment reports whether a segment reads as a pure color/finish
// label: every token is "and", a finish modifier, or a color word, and at
// least one token is a color word.
func isColorSegment(segment string) bool {
	tokens := tokenizeLetters(segment)
	if len(tokens) == 0 {
		return false
	}
	sawColor := false
	for _, t := range tokens {
		if _, ok := colorWords[t]; ok {
			sawColor = true
			continue
		}
		if _, ok := finishModifiers[t]; ok {
			continue
		}
		if t == "and" {
			continue
		}
		return false
	}
	return sawColor
}

// parseTitle splits a listing title into its base title and, when the
// trailing segment is a color/finish label, that variant label.
func parseTitle(title string) (base string, label string) {
	segments := splitSegments(title)
	if len(segments) >= 2 && isColorSegment(segments[len(segments)-1]) {
		return strings.Join(segments[:len(segments)-1], titleSeparator), segments[len(segments)-1]
	}
	return strings.Join(segments, titleSeparator), ""
}

// modelLabel drops the leading brand/series segment of a multi-segment base
// title; single-segment titles pass through unchanged.
func modelLabel(baseTitle string) string {
	segments := splitSegments(baseTitle)
	if len(segments) < 2 {
		return baseTitle
	}
	return strings.Join(segments[1:], titleSeparator)
}

// GroupVariants clusters listings into logical offers keyed by
// (retailer, base title), deduplicates variants that resolve to the same
// buy target, disambiguates repeated labels in first-seen order, and picks
// each group's best variant. Groups come back ordered best-first with an
// alphabetic retailer-name tiebreak.
func GroupVariants(listings []models.Listing) []models.LogicalOffer {
	type group struct {
		offer models.LogicalOffer
		seen  map[string]struct{} // buy targets
		count map[string]int      // raw label occurrences
	}

	groups := make(map[string]*group)
	order := make([]string, 0, len(listings))

	for _, l := range listings {
		var base, label string
		var baseTitle *string
		if l.OfferTitle != nil && strings.TrimSpace(*l.OfferTitle) != "" {
			base, label = parseTitle(*l.OfferTitle)
			baseTitle = &base
			if label == "" {
				label = labelDefault
			}
		} else {
			label = labelListing
		}

		key := l.RetailerID + "\x00" + base
		if baseTitle == nil {
			// No title to group on; keep the row isolated.
			key = l.RetailerID + "\x00#" + l.ID
		}

		g, ok := groups[key]
		if !ok {
			g = &group{
				offer: models.LogicalOffer{
					RetailerID:   l.RetailerID,
					RetailerName: l.RetailerName,
					BaseTitle:    baseTitle,
					ModelLabel:   modelLabel(base),
				},
				seen:  map[string]struct{}{},
				count: map[string]int{},
			}
			groups[key] = g
			order = append(order, key)
		}

		target := l.BuyTarget()
		if _, dup := g.seen[target]; dup {
			continue
		}
		g.seen[target] = struct{}{}

		g.count[label]++
		if n := g.count[label]; n > 1 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		g.offer.Variants = append(g.offer.Variants, models.Variant{Label: label, Listing: l})
	}

	offers := make([]models.LogicalOffer, 0, len(order))
	for _, key := range order {
		g := groups[key]
		candidates := make([]models.Listing, len(g.offer.Variants))
		for i, v := range g.offer.Variants {
			candidates[i] = v.Listing
		}
		if best, ok := PickBest(candidates); ok {
			g.offer.Best = best
		}
		offers = append(offers, g.offer)
	}

	sort.SliceStable(offers, func(i, j int) bool {
		if Better(offers[i].Best, offers[j].Best) {
			return true
		}
		if Better(offers[j].Best, offers[i].Best) {
			return false
		}
		return offers[i].RetailerName < offers[j].RetailerName
	})

	return offers
}

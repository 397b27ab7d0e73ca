package maybank

import (
	"fmt"
	"regexp"
	"strings"

	"metalrates/internal/extract"
)

const (
	// DefaultWindow is how many characters the loose strategies allow between
	// a metal name and each of its numbers. The live page needs up to about
	// 300; much wider windows start pairing "Gold" with the Kijang Emas coin
	// prices further down the page.
	DefaultWindow = 300

	// MaxWindow is the largest repeat count the regexp engine accepts.
	MaxWindow = 1000
)

// price matches a two-decimal number, optionally with comma thousands separators.
const price = `\d{1,3}(?:,\d{3})+\.\d{2}|\d+\.\d{2}`

// cells matches two adjacent table cells holding the first and second price.
const cells = `<td[^>]*>\s*(?P<first>` + price + `)\s*</td>\s*<td[^>]*>\s*(?P<second>` + price + `)\s*</td>`

// Chain returns the strategy chain for the rate page, most specific first.
// window bounds the loose strategies; values outside 1..MaxWindow fall back
// to DefaultWindow or MaxWindow.
func Chain(window int) extract.Chain {
	switch {
	case window < 1:
		window = DefaultWindow
	case window > MaxWindow:
		window = MaxWindow
	}

	metal := extract.LowerKey("metal")

	return extract.Chain{
		Primary: Primary,
		Strategies: []extract.Strategy{
			SectionTable(),
			extract.PairRule{
				Name:    "miga-tier",
				Pattern: regexp.MustCompile(`(?is)(?P<tier>for\s+100\s+grams\s+and\s+above|for\s+below\s+100\s+grams)[^<]*</td>\s*` + cells),
				Product: func(m extract.Match) (extract.ProductKey, bool) {
					return migaTier(m["tier"])
				},
			}.Strategy(),
			extract.PairRule{
				Name:    "investment-account",
				Pattern: regexp.MustCompile(`(?is)\b(?P<metal>gold|silver)\s+investment\s+account\b.*?` + cells),
				Product: metal,
			}.Strategy(),
			extract.PairRule{
				Name:    "selling-buying",
				Pattern: regexp.MustCompile(`(?is)\b(?P<metal>gold|silver)\b.*?\b(?P<label1>selling|buying)\b.*?\b(?P<label2>selling|buying)\b.*?` + cells),
				Product: metal,
				Legs: func(m extract.Match) (extract.Leg, extract.Leg, bool) {
					first, ok1 := LabelLeg(m["label1"])
					second, ok2 := LabelLeg(m["label2"])
					return first, second, ok1 && ok2 && first != second
				},
			}.Strategy(),
			extract.PairRule{
				Name:    "table-row",
				Scope:   regexp.MustCompile(`(?is)<tr\b[^>]*>.*?</tr>`),
				Pattern: regexp.MustCompile(`(?is)\b(?P<metal>gold|silver)\b.*?(?P<first>` + price + `).*?(?P<second>` + price + `)`),
				Product: metal,
			}.Strategy(),
			extract.PairRule{
				Name: "buy-sell-labels",
				Pattern: regexp.MustCompile(fmt.Sprintf(
					`(?is)\b(?P<metal>gold|silver)\b.{0,%[1]d}?\bbuy\b.{0,%[1]d}?(?P<first>%[2]s).{0,%[1]d}?\bsell\b.{0,%[1]d}?(?P<second>%[2]s)`,
					window, price)),
				Product:  metal,
				Collapse: true,
			}.Strategy(),
			extract.PairRule{
				Name: "currency-marker",
				Pattern: regexp.MustCompile(fmt.Sprintf(
					`(?is)\b(?P<metal>gold|silver)\b.{0,%[1]d}?(?:RM|MYR)\s*(?P<first>%[2]s).{1,%[1]d}?(?:RM|MYR)\s*(?P<second>%[2]s)`,
					window, price)),
				Product:  metal,
				Collapse: true,
			}.Strategy(),
			extract.PairRule{
				Name: "proximity",
				Pattern: regexp.MustCompile(fmt.Sprintf(
					`(?is)\b(?P<metal>gold|silver)\b.{0,%[1]d}?(?P<first>%[2]s).{1,%[1]d}?(?P<second>%[2]s)`,
					window, price)),
				Product:  metal,
				Collapse: true,
			}.Strategy(),
		},
	}
}

// LabelLeg maps a column header to the customer's leg. The page labels
// columns from the bank's side: "Selling" is what the customer pays to buy,
// "Buying" is what the customer receives when selling.
func LabelLeg(label string) (extract.Leg, bool) {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "selling"):
		return extract.LegBuy, true
	case strings.Contains(l, "buying"):
		return extract.LegSell, true
	}
	return "", false
}

func migaTier(label string) (extract.ProductKey, bool) {
	l := strings.ToLower(extract.CollapseSpace(label))
	switch {
	case strings.Contains(l, "100 grams and above"):
		return MIGA100g, true
	case strings.Contains(l, "below 100 grams"):
		return MIGABelow100g, true
	}
	return "", false
}

package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// separators are stripped before a scraped number is parsed.
var separators = strings.NewReplacer(",", "", " ", "", " ", "")

// plainNumber is what remains of a price once separators are gone. It keeps
// exponents, signs and special values away from the decimal parser.
var plainNumber = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

// ParsePrice converts scraped text such as "17,271.00" into a decimal.
// ok is false when the text is not a number or is not strictly positive.
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = separators.Replace(strings.TrimSpace(s))
	if !plainNumber.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// FormatPrice renders d with two decimals and comma thousands separators,
// the way the rate page prints prices.
func FormatPrice(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

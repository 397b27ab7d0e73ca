package extract

import (
	"regexp"
	"strings"
)

// Strategy is one named extraction heuristic. Match must not modify shared
// state; it returns whatever it could find, possibly nothing.
type Strategy struct {
	Name  string
	Match func(doc string) Table
}

// Chain applies strategies from most specific to most generic.
type Chain struct {
	// Primary is the product whose complete quote ends the chain early.
	Primary    ProductKey
	Strategies []Strategy
}

// Extract folds the strategies over doc. A strategy only fills legs that no
// earlier strategy found, and evaluation stops as soon as the primary product
// has both legs. Entries with no legs are pruned. The returned names are the
// strategies that contributed at least one leg, in order.
func (c Chain) Extract(doc string) (Table, []string) {
	table := Table{}
	var used []string
	for _, s := range c.Strategies {
		if table.Merge(s.Match(doc)) {
			used = append(used, s.Name)
		}
		if table[c.Primary].Complete() {
			break
		}
	}
	table.Prune()
	return table, used
}

// Match holds the named groups of one regexp match.
type Match map[string]string

// PairRule describes a regexp that captures a product token followed by two
// numbers. Pattern must define the named groups "first" and "second".
type PairRule struct {
	Name    string
	Pattern *regexp.Regexp

	// Product maps a match to the product it quotes.
	Product func(Match) (ProductKey, bool)

	// Legs assigns the captured numbers to legs. When nil the first number is
	// the buy leg and the second the sell leg.
	Legs func(Match) (first, second Leg, ok bool)

	// Scope, when set, restricts Pattern to the text of each Scope match.
	Scope *regexp.Regexp

	// Collapse replaces every whitespace run with a single space before matching.
	Collapse bool
}

var whitespace = regexp.MustCompile(`\s+`)

// CollapseSpace replaces every whitespace run in s with a single space.
func CollapseSpace(s string) string {
	return whitespace.ReplaceAllString(s, " ")
}

// Strategy turns the rule into a Strategy. Within one strategy the first
// match for a product wins; numbers that fail ParsePrice are skipped.
func (r PairRule) Strategy() Strategy {
	names := r.Pattern.SubexpNames()
	return Strategy{
		Name: r.Name,
		Match: func(doc string) Table {
			if r.Collapse {
				doc = CollapseSpace(doc)
			}
			table := Table{}
			for _, segment := range r.segments(doc) {
				for _, sub := range r.Pattern.FindAllStringSubmatch(segment, -1) {
					m := make(Match, len(names))
					for i, name := range names {
						if name != "" {
							m[name] = sub[i]
						}
					}
					key, ok := r.Product(m)
					if !ok {
						continue
					}
					first, second := LegBuy, LegSell
					if r.Legs != nil {
						if first, second, ok = r.Legs(m); !ok {
							continue
						}
					}
					var q Quote
					if v, ok := ParsePrice(m["first"]); ok {
						q.Set(first, v)
					}
					if v, ok := ParsePrice(m["second"]); ok {
						q.Set(second, v)
					}
					table.Add(key, q)
				}
			}
			return table
		},
	}
}

func (r PairRule) segments(doc string) []string {
	if r.Scope == nil {
		return []string{doc}
	}
	return r.Scope.FindAllString(doc, -1)
}

// LowerKey is a Product func that uses the lower-cased named group as the key.
func LowerKey(group string) func(Match) (ProductKey, bool) {
	return func(m Match) (ProductKey, bool) {
		v := strings.ToLower(strings.TrimSpace(m[group]))
		return ProductKey(v), v != ""
	}
}

package maybank

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"metalrates/internal/extract"
)

const headingSelector = "p, h1, h2, h3, h4, h5, h6"

// SectionTable reads every rate table through the DOM. The product comes from
// the heading just before the table (or its .table-responsive wrapper) and,
// for tiered accounts, from the first cell of the row. Legs come from the
// header labels, so a table with its columns swapped still maps correctly.
func SectionTable() extract.Strategy {
	return extract.Strategy{
		Name: "section-table",
		Match: func(doc string) extract.Table {
			d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
			if err != nil {
				return nil
			}
			table := extract.Table{}
			d.Find("table").Each(func(_ int, t *goquery.Selection) {
				readTable(table, sectionHeading(t), t)
			})
			return table
		},
	}
}

func readTable(out extract.Table, heading string, t *goquery.Selection) {
	columns := map[int]extract.Leg{}
	t.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		if leg, ok := headerLeg(th.Text()); ok {
			columns[i] = leg
		}
	})
	if !hasBothLegs(columns) {
		return
	}

	t.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}
		key, ok := productFor(heading, cells.First().Text())
		if !ok {
			return
		}
		var q extract.Quote
		cells.Each(func(i int, td *goquery.Selection) {
			leg, ok := columns[i]
			if !ok || q.Get(leg).Valid {
				return
			}
			if v, ok := extract.ParsePrice(strings.TrimSpace(td.Text())); ok {
				q.Set(leg, v)
			}
		})
		out.Add(key, q)
	})
}

// sectionHeading returns the text of the closest heading-like element that
// precedes the table or its responsive wrapper.
func sectionHeading(t *goquery.Selection) string {
	anchor := t
	if wrapper := t.Closest(".table-responsive"); wrapper.Length() > 0 {
		anchor = wrapper
	}
	return strings.TrimSpace(extract.CollapseSpace(anchor.PrevAllFiltered(headingSelector).First().Text()))
}

// headerLeg reads a column label. The bank's "Selling"/"Buying" wording wins
// over plain "Buy"/"Sell", which is taken from the customer's side.
func headerLeg(label string) (extract.Leg, bool) {
	if leg, ok := LabelLeg(label); ok {
		return leg, true
	}
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "buy"):
		return extract.LegBuy, true
	case strings.Contains(l, "sell"):
		return extract.LegSell, true
	}
	return "", false
}

func hasBothLegs(columns map[int]extract.Leg) bool {
	var buy, sell bool
	for _, leg := range columns {
		switch leg {
		case extract.LegBuy:
			buy = true
		case extract.LegSell:
			sell = true
		}
	}
	return buy && sell
}

func productFor(heading, rowLabel string) (extract.ProductKey, bool) {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "gold investment account"):
		return Gold, true
	case strings.Contains(h, "silver investment account"):
		return Silver, true
	case strings.Contains(h, "miga"), strings.Contains(h, "islamic gold account"):
		return migaTier(rowLabel)
	}

	switch strings.ToLower(strings.TrimSpace(extract.CollapseSpace(rowLabel))) {
	case "gold":
		return Gold, true
	case "silver":
		return Silver, true
	}
	return "", false
}

package maybank

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalrates/internal/extract"
	"metalrates/internal/testutil"
)

func quote(buy, sell string) extract.Quote {
	var q extract.Quote
	if buy != "" {
		q.Buy = decimal.NewNullDecimal(decimal.RequireFromString(buy))
	}
	if sell != "" {
		q.Sell = decimal.NewNullDecimal(decimal.RequireFromString(sell))
	}
	return q
}

// tableDiff compares tables by decimal value rather than representation.
func tableDiff(want, got extract.Table) string {
	return cmp.Diff(want, got, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }))
}

func strategy(t *testing.T, name string) extract.Strategy {
	t.Helper()
	for _, s := range Chain(DefaultWindow).Strategies {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no strategy named %q", name)
	return extract.Strategy{}
}

func TestChain_Order(t *testing.T) {
	var names []string
	for _, s := range Chain(DefaultWindow).Strategies {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"section-table",
		"miga-tier",
		"investment-account",
		"selling-buying",
		"table-row",
		"buy-sell-labels",
		"currency-marker",
		"proximity",
	}, names)
	assert.Equal(t, Primary, Chain(DefaultWindow).Primary)
}

func TestChain_WindowOutOfRangeDoesNotPanic(t *testing.T) {
	for _, w := range []int{-1, 0, 1, MaxWindow, MaxWindow + 1, 50000} {
		require.NotPanics(t, func() { Chain(w) }, "window %d", w)
	}
}

func TestChain_RatesPage(t *testing.T) {
	table, used := Chain(DefaultWindow).Extract(testutil.RatesPage)

	want := extract.Table{
		Gold:          quote("534.14", "513.79"),
		Silver:        quote("6.62", "6.10"),
		MIGA100g:      quote("534.13", "522.06"),
		MIGABelow100g: quote("535.88", "521.56"),
	}
	if diff := tableDiff(want, table); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"section-table"}, used)

	for _, key := range Products {
		q, ok := table[key]
		require.True(t, ok, "missing %s", key)
		assert.True(t, q.Buy.Decimal.IsPositive(), "%s buy", key)
		assert.True(t, q.Sell.Decimal.IsPositive(), "%s sell", key)
	}
}

func TestChain_NeverPicksCoinPrices(t *testing.T) {
	table, _ := Chain(MaxWindow).Extract(testutil.RatesPage)

	for key, q := range table {
		for _, leg := range extract.Legs {
			v := q.Get(leg)
			assert.True(t, v.Decimal.LessThan(decimal.NewFromInt(1000)), "%s %s = %s", key, leg, v.Decimal)
		}
	}
}

func TestRegexStrategies_RatesPage(t *testing.T) {
	tests := []struct {
		strategy string
		want     extract.Table
	}{
		{
			strategy: "miga-tier",
			want: extract.Table{
				MIGA100g:      quote("534.13", "522.06"),
				MIGABelow100g: quote("535.88", "521.56"),
			},
		},
		{
			strategy: "investment-account",
			want: extract.Table{
				Gold:   quote("534.14", "513.79"),
				Silver: quote("6.62", "6.10"),
			},
		},
		{
			strategy: "selling-buying",
			want: extract.Table{
				Gold:   quote("534.14", "513.79"),
				Silver: quote("6.62", "6.10"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			got := strategy(t, tt.strategy).Match(testutil.RatesPage)
			if diff := tableDiff(tt.want, got); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLabelInversion(t *testing.T) {
	const normal = `<p>Maybank Gold Investment Account</p><div class="table-responsive"><table>
<tr><th>Date</th><th>Selling (RM/g)</th><th>Buying (RM/g)</th></tr>
<tr><td>01 Oct 2025</td><td>534.14</td><td>513.79</td></tr></table></div>`
	const swapped = `<p>Maybank Gold Investment Account</p><div class="table-responsive"><table>
<tr><th>Date</th><th>Buying (RM/g)</th><th>Selling (RM/g)</th></tr>
<tr><td>01 Oct 2025</td><td>513.79</td><td>534.14</td></tr></table></div>`

	want := extract.Table{Gold: quote("534.14", "513.79")}

	for name, doc := range map[string]string{"normal": normal, "swapped": swapped} {
		t.Run(name+"/section-table", func(t *testing.T) {
			if diff := tableDiff(want, SectionTable().Match(doc)); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
		t.Run(name+"/selling-buying", func(t *testing.T) {
			if diff := tableDiff(want, strategy(t, "selling-buying").Match(doc)); diff != "" {
				t.Errorf("Match() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSectionTable_RejectsExponentCells(t *testing.T) {
	const doc = `<p>Maybank Gold Investment Account</p><div class="table-responsive"><table>
<tr><th>Date</th><th>Selling (RM/g)</th><th>Buying (RM/g)</th></tr>
<tr><td>01 Oct 2025</td><td>5e2</td><td>513.79</td></tr></table></div>`

	table := SectionTable().Match(doc)

	require.Contains(t, table, Gold)
	assert.False(t, table[Gold].Buy.Valid, "exponent cell must not become a price")
	assert.Equal(t, "513.79", table[Gold].Sell.Decimal.StringFixed(2))
}

func TestChain_StrictBeatsLoose(t *testing.T) {
	doc := `<div>Gold: 1.11 / 2.22</div>
<p>Maybank Gold Investment Account</p><div class="table-responsive"><table>
<tr><th>Date</th><th>Selling (RM/g)</th><th>Buying (RM/g)</th></tr>
<tr><td>01 Oct 2025</td><td>534.14</td><td>513.79</td></tr></table></div>`

	loose := strategy(t, "proximity").Match(doc)
	require.Equal(t, "1.11", loose[Gold].Buy.Decimal.StringFixed(2))

	table, used := Chain(DefaultWindow).Extract(doc)

	if diff := tableDiff(extract.Table{Gold: quote("534.14", "513.79")}, table); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"section-table"}, used)
}

func TestChain_OtherLayouts(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		used string
	}{
		{"counter table", testutil.CounterTable, "section-table"},
		{"labelled spans", testutil.LabelledSpans, "buy-sell-labels"},
		{"plain text", testutil.PlainText, "proximity"},
	}

	want := extract.Table{
		Gold:   quote("345.50", "350.75"),
		Silver: quote("4.25", "4.50"),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, used := Chain(DefaultWindow).Extract(tt.doc)
			if diff := tableDiff(want, table); diff != "" {
				t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, []string{tt.used}, used)
		})
	}
}

func TestChain_TableRow(t *testing.T) {
	doc := `<table><tr><td>Gold (RM/g)</td><td>345.50</td><td>350.75</td></tr></table>`

	got := strategy(t, "table-row").Match(doc)

	if diff := tableDiff(extract.Table{Gold: quote("345.50", "350.75")}, got); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}
}

func TestChain_CurrencyMarker(t *testing.T) {
	doc := `Gold price today RM 1,345.50 and we buy back at MYR 1,320.75`

	got := strategy(t, "currency-marker").Match(doc)

	if diff := tableDiff(extract.Table{Gold: quote("1345.50", "1320.75")}, got); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}
}

func TestChain_SearchWindow(t *testing.T) {
	doc := "Gold " + strings.Repeat("x", 40) + " 345.50 / 350.75"

	narrow, _ := Chain(10).Extract(doc)
	assert.Empty(t, narrow)

	wide, used := Chain(DefaultWindow).Extract(doc)
	if diff := tableDiff(extract.Table{Gold: quote("345.50", "350.75")}, wide); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"proximity"}, used)
}

func TestChain_Garbage(t *testing.T) {
	for _, doc := range []string{
		"",
		"<html><body>Service temporarily unavailable</body></html>",
		"Gold 0.00 0.00",
		"\x00\xff\xfe<<<>>>",
	} {
		table, used := Chain(DefaultWindow).Extract(doc)
		assert.Empty(t, table, "doc %q", doc)
		assert.Empty(t, used, "doc %q", doc)
	}
}

func TestProductFor(t *testing.T) {
	tests := []struct {
		heading, label string
		want           extract.ProductKey
		ok             bool
	}{
		{"Maybank Gold Investment Account", "01 Oct 2025", Gold, true},
		{"Maybank Silver Investment Account", "01 Oct 2025", Silver, true},
		{"Maybank Islamic Gold Account-i (MIGA-i)", "For 100 grams and above", MIGA100g, true},
		{"Maybank Islamic Gold Account-i (MIGA-i)", "For below 100 grams ", MIGABelow100g, true},
		{"Maybank Islamic Gold Account-i (MIGA-i)", "Total", "", false},
		{"Kijang Emas Daily Prices", "ONE", "", false},
		{"", " Silver ", Silver, true},
	}

	for _, tt := range tests {
		got, ok := productFor(tt.heading, tt.label)
		assert.Equal(t, tt.ok, ok, "%q/%q", tt.heading, tt.label)
		assert.Equal(t, tt.want, got, "%q/%q", tt.heading, tt.label)
	}
}

func TestLabelLeg(t *testing.T) {
	leg, ok := LabelLeg("Selling (RM/g)")
	require.True(t, ok)
	assert.Equal(t, extract.LegBuy, leg)

	leg, ok = LabelLeg("BUYING")
	require.True(t, ok)
	assert.Equal(t, extract.LegSell, leg)

	_, ok = LabelLeg("Date")
	assert.False(t, ok)
}

func TestHeaders(t *testing.T) {
	h := Headers(SourceURL)
	assert.Equal(t, SourceURL, h["Referer"])
	assert.Equal(t, Origin, h["Origin"])
	assert.Equal(t, "en-MY,en;q=0.9", h["Accept-Language"])
	assert.NotContains(t, h, "Accept-Encoding")
}

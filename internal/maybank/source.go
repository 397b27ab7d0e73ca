// Package maybank knows the layout of Maybank's gold and silver rate page:
// where it lives, how to ask for it, and which extraction strategies find
// prices in it.
package maybank

import (
	"metalrates/internal/extract"
)

const (
	// SourceURL is the public gold and silver counter rates page.
	SourceURL = "https://www.maybank2u.com.my/maybank2u/malaysia/en/personal/rates/gold_and_silver.page"

	// HostSuffix and PathFragment must both hold for the final URL after redirects.
	HostSuffix   = "maybank2u.com.my"
	PathFragment = "gold_and_silver"

	// Origin is sent with every request alongside the referer.
	Origin = "https://www.maybank2u.com.my"

	// UserAgent mimics a current desktop browser.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// Unit of every published price.
	Unit = "MYR/g"
)

// Tracked products.
const (
	Gold          extract.ProductKey = "gold"
	Silver        extract.ProductKey = "silver"
	MIGA100g      extract.ProductKey = "miga_100g"
	MIGABelow100g extract.ProductKey = "miga_below100g"
)

// Products is the published set, in display order.
var Products = []extract.ProductKey{Gold, Silver, MIGA100g, MIGABelow100g}

// Primary is the product whose complete quote ends the strategy chain.
const Primary = Gold

// Headers returns the browser-like header set sent with each request.
// referer is normally SourceURL.
func Headers(referer string) map[string]string {
	return map[string]string{
		"User-Agent":                UserAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-MY,en;q=0.9",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"Upgrade-Insecure-Requests": "1",
		"Referer":                   referer,
		"Origin":                    Origin,
	}
}

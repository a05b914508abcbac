// Package staging contains the pure rules of the staging stage: mapping raw
// file names to canonical entity names, canonicalizing column labels and
// inferring date columns. It performs no I/O.
package staging

import (
	"path/filepath"
	"strings"
)

// Canonical entity names of the staging layer.
const (
	Customers       = "customers"
	Products        = "products"
	Stores          = "stores"
	Channels        = "channels"
	Orders          = "orders"
	OrderItems      = "order_items"
	Dates           = "dates"
	Payment         = "payment"
	Shipment        = "shipment"
	WebSession      = "web_session"
	NPSResponse     = "nps_response"
	Address         = "address"
	Province        = "province"
	ProductCategory = "product_category"
)

// Rule maps a keyword found in a raw file name to a canonical entity.
type Rule struct {
	// Keyword must be contained in the lower-cased file stem.
	Keyword string

	// Canonical is the staging name assigned on match.
	Canonical string
}

// Rules are evaluated in order and the first match wins. More specific
// keywords have to precede the keywords they contain ("order_item" before
// "order", "product_category" before "product").
var Rules = []Rule{
	{"sales_order_item", OrderItems},
	{"order_item", OrderItems},
	{"sales_order", Orders},
	{"product_category", ProductCategory},
	{"web_session", WebSession},
	{"nps_response", NPSResponse},
	{"customer", Customers},
	{"product", Products},
	{"store", Stores},
	{"channel", Stores},
	{"order", Orders},
	{"payment", Payment},
	{"shipment", Shipment},
	{"province", Province},
	{"address", Address},
	{"calendar", Dates},
}

// Stem returns the lower-cased file name without directory and extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(base)
}

// Match returns the first rule whose keyword is contained in the stem of
// filename.
func Match(filename string) (Rule, bool) {
	stem := Stem(filename)
	for _, r := range Rules {
		if strings.Contains(stem, r.Keyword) {
			return r, true
		}
	}
	return Rule{}, false
}

// CanonicalName maps a raw file name to its canonical entity name.
// Without a matching rule the lower-cased stem is the canonical name.
func CanonicalName(filename string) string {
	if r, ok := Match(filename); ok {
		return r.Canonical
	}
	return Stem(filename)
}

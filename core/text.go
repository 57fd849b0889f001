package core

import "strings"

// CanonicalText builds the normalized text used as both embedding input and
// phonetic-coding input for a product. It is a pure function of the record:
// the same product always yields the same text, which keeps rebuilt indexes
// byte-identical for unchanged catalogs.
//
// The layout mirrors the catalog ordering: brand, then name, then category.
// Fields are lowercased and runs of whitespace collapse to single spaces.
// Empty fields simply contribute nothing.
func CanonicalText(p Product) string {
	return NormalizeText(p.Brand + " " + p.Name + " " + p.Category)
}

// NormalizeText lowercases text and collapses all whitespace to single spaces.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

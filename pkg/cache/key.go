package cache

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the parts of a fragment key and the words of a slug.
const Separator = ":"

// FragmentKey identifies one cached rendering of a fragment.
type FragmentKey struct {
	// Identifier is the raw fragment identifier (e.g., "customer:123")
	Identifier string

	// Variant names the kind of fragment (e.g., "widget")
	Variant string

	// Version is bumped to invalidate every fragment of a variant
	Version string
}

// String generates the storage key.
// Format: variant:slug(identifier):version
//
// Example:
//
//	FragmentKey{Identifier: "Customer 123", Variant: "widget", Version: "v1"}
//	=> widget:customer:123:v1
func (k FragmentKey) String() string {
	return k.Variant + Separator + Slug(k.Identifier, Separator) + Separator + k.Version
}

// KeySerializer builds storage keys from fragment coordinates.
type KeySerializer interface {
	Key(identifier, variant, version string) string
}

// KeySerializerFunc adapts a function to KeySerializer.
type KeySerializerFunc func(identifier, variant, version string) string

// Key implements KeySerializer.
func (f KeySerializerFunc) Key(identifier, variant, version string) string {
	return f(identifier, variant, version)
}

// DefaultKeySerializer produces FragmentKey strings.
var DefaultKeySerializer KeySerializer = KeySerializerFunc(Key)

// Key is a shorthand for FragmentKey{...}.String().
func Key(identifier, variant, version string) string {
	return FragmentKey{Identifier: identifier, Variant: variant, Version: version}.String()
}

// Slug lowercases s, folds diacritics, spells "@" as "at" and collapses every
// run of characters that are neither letters nor digits into sep. Leading and
// trailing separators are dropped.
//
//	Slug("Customer 123", ":")   => "customer:123"
//	Slug("customer:123", ":")   => "customer:123"
//	Slug("Crème Brûlée!", ":")  => "creme:brulee"
//	Slug("ann@example.com", "-") => "ann-at-example-com"
func Slug(s, sep string) string {
	// Chained transformers are stateful; build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	folded = strings.ReplaceAll(folded, "@", " at ")

	var b strings.Builder
	b.Grow(len(folded))
	pending := false
	for _, r := range strings.ToLower(folded) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteString(sep)
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}

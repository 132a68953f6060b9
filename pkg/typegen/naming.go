package typegen

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RootName is the unaffixed name of the root record type.
const RootName = "Hit"

// Field keys whose children get a grouped name.
const campgroundKey = "campground"

// Namer allocates type names from structural paths. The same path with the
// same affixes always yields the same name; distinct paths may collide.
//
// A Namer holds a stateful caser and must not be shared between goroutines.
type Namer struct {
	Prefix  string
	Postfix string

	caser cases.Caser
}

// NewNamer returns a Namer wrapping names in prefix and postfix.
func NewNamer(prefix, postfix string) *Namer {
	return &Namer{
		Prefix:  prefix,
		Postfix: postfix,
		caser:   cases.Title(language.Und),
	}
}

// Name returns the type name for path.
func (n *Namer) Name(path Path) string {
	keys := path.Keys()
	if len(keys) == 0 {
		return n.Prefix + RootName + n.Postfix
	}

	pascal := n.Pascal(keys[len(keys)-1])
	if len(keys) > 1 {
		parent := keys[len(keys)-2]
		switch {
		case parent == campgroundKey:
			return n.Prefix + "Campground" + pascal + n.Postfix
		case strings.Contains(parent, "Info"):
			return n.Prefix + pascal + "Info" + n.Postfix
		}
	}
	return n.Prefix + pascal + n.Postfix
}

// Pascal splits key on every rune that is not a letter or digit and
// title-cases each fragment: "price_range" becomes "PriceRange" and
// "imageURL" becomes "Imageurl". Keys without any letter or digit map to
// "Field".
func (n *Namer) Pascal(key string) string {
	fragments := strings.FieldsFunc(key, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(fragments) == 0 {
		return "Field"
	}
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(n.caser.String(f))
	}
	return b.String()
}

// Summary describes a type name in words: the affixes are stripped and the
// PascalCase remainder is split, e.g. "AlgoliaPriceRangeType" with affixes
// "Algolia"/"Type" becomes "Price range structure in Algolia".
func (n *Namer) Summary(name string) string {
	base := name
	if n.Prefix != "" {
		base = strings.TrimPrefix(base, n.Prefix)
	}
	if n.Postfix != "" {
		base = strings.TrimSuffix(base, n.Postfix)
	}

	var words []string
	var cur strings.Builder
	for _, r := range base {
		if unicode.IsUpper(r) && cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
		cur.WriteRune(unicode.ToLower(r))
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	if len(words) == 0 {
		return "Structure in Algolia"
	}

	text := strings.Join(words, " ")
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes) + " structure in Algolia"
}

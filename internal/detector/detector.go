// Package detector classifies chat utterances: does the user ask for an
// export readiness assessment, and which target country do they name?
package detector

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/magungh1/exporo-sme-export-assistant/internal/catalog"
)

var triggerPhrases = []string{
	"cek kesiapan ekspor",
	"analisis ekspor",
	"export readiness",
	"siap ekspor",
	"kesiapan ekspor",
	"analisis kesiapan",
}

// Result is the outcome of Detect. Country is empty when none resolved.
type Result struct {
	Triggered bool
	Country   string
}

// HasCountry reports whether a canonical country was resolved.
func (r Result) HasCountry() bool {
	return r.Country != ""
}

type countryAliases struct {
	country catalog.Country
	aliases []string
}

var (
	normalizedTriggers = normalizeAll(triggerPhrases)
	aliasTable         = buildAliasTable()
)

// Detect reports whether utterance asks for an assessment and, if a
// country alias appears anywhere in it, the canonical country name.
// It never picks a default country.
func Detect(utterance string) Result {
	text := normalize(utterance)
	res := Result{Triggered: containsTrigger(text)}
	if !res.Triggered {
		return res
	}
	if c, ok := resolve(text); ok {
		res.Country = c.Name
	}
	return res
}

// ResolveCountry scans utterance for a country alias without requiring a
// trigger phrase. When several countries are named, the first in catalog
// declaration order wins.
func ResolveCountry(utterance string) (catalog.Country, bool) {
	return resolve(normalize(utterance))
}

// Triggers returns the trigger phrases.
func Triggers() []string {
	return append([]string(nil), triggerPhrases...)
}

func containsTrigger(text string) bool {
	for _, t := range normalizedTriggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// ResolveReply resolves an answer to "which country?". Aliases of two
// letters or fewer, such as "us" or "eu", only count when they are the
// whole reply, so "tell us more" names no country.
func ResolveReply(utterance string) (catalog.Country, bool) {
	text := tokenize(normalize(utterance))
	padded := " " + text + " "
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			if len(alias) <= 2 {
				if text == alias {
					return entry.country, true
				}
				continue
			}
			if strings.Contains(padded, " "+alias+" ") {
				return entry.country, true
			}
		}
	}
	return catalog.Country{}, false
}

// resolve matches aliases on token boundaries so "us" does not fire inside
// "business".
func resolve(text string) (catalog.Country, bool) {
	padded := " " + tokenize(text) + " "
	for _, entry := range aliasTable {
		for _, alias := range entry.aliases {
			if strings.Contains(padded, " "+alias+" ") {
				return entry.country, true
			}
		}
	}
	return catalog.Country{}, false
}

func buildAliasTable() []countryAliases {
	countries := catalog.Countries()
	out := make([]countryAliases, 0, len(countries))
	for _, c := range countries {
		aliases := make([]string, 0, len(c.Aliases))
		for _, a := range c.Aliases {
			if t := tokenize(normalize(a)); t != "" {
				aliases = append(aliases, t)
			}
		}
		out = append(out, countryAliases{country: c, aliases: aliases})
	}
	return out
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = normalize(s)
	}
	return out
}

// normalize case-folds, strips diacritics and collapses whitespace.
func normalize(s string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}

// tokenize keeps letters and digits, joining runs with single spaces.
func tokenize(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

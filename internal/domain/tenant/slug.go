// Package tenant contiene reglas puras del tenant (organización) sin dependencias de infraestructura.
package tenant

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	notSlugChar   = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
	lower         = cases.Lower(language.Und)
)

// Slugify deriva el slug URL-safe del nombre de la organización:
// minúsculas, espacios → "-", se elimina todo lo que no sea [a-z0-9-].
// Los acentos se pliegan antes de filtrar ("Farmacia Olé" → "farmacia-ole").
// Puede devolver "" si el nombre no tiene ningún carácter válido.
func Slugify(name string) string {
	s := strings.TrimSpace(foldDiacritics(name))
	s = lower.String(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = notSlugChar.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// foldDiacritics descompone (NFD), quita marcas combinantes y recompone (NFC).
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

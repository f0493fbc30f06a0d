package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSKU lleva un SKU a su forma canónica: NFKC, sin espacios y en mayúsculas.
// "p 001", " P001 " y "ｐ００１" producen "P001".
func NormalizeSKU(sku string) string {
	s := norm.NFKC.String(sku)
	s = strings.Join(strings.Fields(s), "")
	return cases.Upper(language.Und).String(s)
}

// Fold prepara un texto para comparación sin distinguir mayúsculas ni tildes.
// Los Caser y transformadores de x/text no son seguros entre goroutines, por eso se crean por llamada.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(strings.TrimSpace(out))
}

// ContainsFold indica si term aparece en s ignorando mayúsculas y tildes.
// Un término vacío coincide con todo.
func ContainsFold(s, term string) bool {
	ft := Fold(term)
	if ft == "" {
		return true
	}
	return strings.Contains(Fold(s), ft)
}

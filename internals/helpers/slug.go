// file: internals/helpers/slug.go
package helper

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

// stripMarks: NFD lalu buang nonspacing mark (é → e)
func stripMarks(s string) string {
	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	return string(buf)
}

// Slugify mengubah teks bebas jadi slug [a-z0-9-], hilangkan diakritik,
// kompres "-", trim ujung, enforce maxLen (default 100 jika <=0), fallback "item".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	s = stripMarks(strings.ToLower(strings.TrimSpace(s)))

	// Keep [a-z0-9-]
	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if s == "" {
		s = "item"
	}
	// Hard-limit panjang
	if utf8.RuneCountInString(s) > maxLen {
		rs := []rune(s)
		s = strings.Trim(string(rs[:maxLen]), "-")
	}
	if s == "" {
		s = "item"
	}
	return s
}

/* =======================================================================
   Key untuk cek unik (bus, stok, dsb.)
======================================================================= */

// NormalizeKey: NFKC, lower, tanpa diakritik, spasi dikompres.
// "  Note  Book " == "note book" == "NOTE BOOK"
func NormalizeKey(s string) string {
	s = norm.NFKC.String(s)
	s = stripMarks(strings.ToLower(s))
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// CompactKey: NormalizeKey tanpa pemisah sama sekali (plat nomor, kode).
// "KA-01 AB 1234" == "ka01ab1234"
func CompactKey(s string) string {
	return reNonAlnum.ReplaceAllString(NormalizeKey(s), "")
}

package generator

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// words splits an SVD name on everything that is not a letter or a digit.
func words(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// exported turns an SVD name such as "TAMP_STAMP" into "TampStamp".
func exported(name string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range words(name) {
		b.WriteString(title.String(w))
	}
	s := b.String()
	if s == "" {
		return ""
	}
	if unicode.IsDigit(rune(s[0])) {
		s = "V" + s
	}
	return s
}

// unexported turns an SVD name such as "GPIOA" into "gpioa".
func unexported(name string) string {
	s := exported(name)
	if s == "" {
		return ""
	}
	ws := words(name)
	first := cases.Title(language.Und).String(ws[0])
	if strings.HasPrefix(s, first) {
		return cases.Lower(language.Und).String(first) + s[len(first):]
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// symbol keeps an SVD name usable as an assembler symbol and a Go constant
// name: letters, digits and underscores.
func symbol(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, name)
}

// comment flattens an SVD description into one line.
func comment(desc string) string {
	return strings.Join(strings.Fields(desc), " ")
}

// namer hands out identifiers that are unique within one scope.
type namer map[string]int

func (n namer) unique(ident string) string {
	count := n[ident]
	n[ident] = count + 1
	if count == 0 {
		return ident
	}
	return ident + "_" + strconv.Itoa(count+1)
}

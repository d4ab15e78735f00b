package codegen

import "strings"

var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true, "assert": true,
	"async": true, "await": true, "break": true, "class": true, "continue": true, "def": true,
	"del": true, "elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
	"match": true, "case": true, "type": true,
}

// Identifier turns arbitrary text into a valid Python identifier. Characters
// outside [A-Za-z0-9_] become underscores; fallback is used when nothing
// usable is left.
func Identifier(s, fallback string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}

	ident := strings.Trim(b.String(), "_")
	if ident == "" {
		ident = fallback
	} else {
		ident = b.String()
	}

	if ident[0] >= '0' && ident[0] <= '9' {
		ident = "_" + ident
	}
	if pythonKeywords[ident] {
		ident += "_"
	}
	return ident
}

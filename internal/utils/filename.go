package utils

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var windowsDeviceNames = map[string]bool{
	"CON": true, "AUX": true, "PRN": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// SecureFilename reduces a client-supplied name to ASCII letters, digits,
// '.', '_' and '-', so it can be used as a single path element. Path
// separators become word breaks and runs of whitespace become '_'. The
// result is at most maxLen bytes, keeping the extension when possible, and
// may be empty.
func SecureFilename(name string, maxLen int) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	folded = strings.NewReplacer("/", " ", `\`, " ").Replace(folded)
	folded = strings.Join(strings.Fields(folded), "_")

	var b strings.Builder
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-') {
			b.WriteRune(r)
		}
	}
	clean := strings.Trim(b.String(), "._")

	if clean != "" && windowsDeviceNames[strings.ToUpper(strings.SplitN(clean, ".", 2)[0])] {
		clean = "_" + clean
	}

	if maxLen > 0 && len(clean) > maxLen {
		ext := path.Ext(clean)
		if len(ext) >= maxLen {
			ext = ""
		}
		clean = strings.TrimRight(clean[:maxLen-len(ext)], "._") + ext
	}
	return clean
}

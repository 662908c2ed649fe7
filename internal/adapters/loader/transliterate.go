package loader

import (
	"strings"
	"unicode"

	unidecode "github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into an ASCII base plus combining marks.
var asciiFold = map[rune]string{
	'ø': "o", 'Ø': "O",
	'ß': "ss", 'ẞ': "SS",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'þ': "th", 'Þ': "TH",
	'ı': "i", 'ħ': "h", 'Ħ': "H",
	'‘': "'", '’': "'", '´': "'",
}

// Transliterate folds name into ASCII. Accents are stripped first, letters
// without a decomposition are mapped explicitly, and every other script is
// romanized by unidecode. Whitespace is collapsed.
func Transliterate(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			if s, ok := asciiFold[r]; ok {
				b.WriteString(s)
			} else {
				b.WriteString(unidecode.Unidecode(string(r)))
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

package service

import (
	"sort"
	"strings"
)

// ukAlphabet fixes the sort order for Ukrainian letters. A trailing space
// ranks shorter names ahead of longer ones that share a prefix.
const ukAlphabet = "абвгґдеєжзиіїйклмнопрстуфхцчшщьюя "

// Collator orders Ukrainian strings by an explicit alphabet table instead
// of code points, which put ґ, є, і and ї in the wrong places.
type Collator struct {
	rank map[rune]int
}

// NewUkrainianCollator builds a Collator over the Ukrainian alphabet.
func NewUkrainianCollator() *Collator {
	rank := make(map[rune]int, len(ukAlphabet))
	for i, r := range ukAlphabet {
		rank[r] = i
	}
	return &Collator{rank: rank}
}

// key maps the first two runes to alphabet ranks. Runes outside the table
// (digits, latin letters) keep their code point shifted past the table so
// they sort after all Ukrainian text.
func (c *Collator) key(s string) [2]int {
	var key [2]int
	runes := []rune(strings.ToLower(s))
	for i := 0; i < 2; i++ {
		if i >= len(runes) {
			key[i] = -1
			continue
		}
		if rank, ok := c.rank[runes[i]]; ok {
			key[i] = rank
		} else {
			key[i] = len(ukAlphabet) + int(runes[i])
		}
	}
	return key
}

// Less reports whether a sorts before b.
func (c *Collator) Less(a, b string) bool {
	ka, kb := c.key(a), c.key(b)
	if ka[0] != kb[0] {
		return ka[0] < kb[0]
	}
	if ka[1] != kb[1] {
		return ka[1] < kb[1]
	}
	return a < b
}

// Sort orders the slice in place.
func (c *Collator) Sort(items []string) {
	sort.SliceStable(items, func(i, j int) bool { return c.Less(items[i], items[j]) })
}

// translitTable maps Ukrainian letters to latin for login generation.
var translitTable = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "h", 'ґ': "g", 'д': "d",
	'е': "e", 'є': "ie", 'ж': "zh", 'з': "z", 'и': "y", 'і': "i",
	'ї': "i", 'й': "i", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ь': "", 'ю': "iu", 'я': "ia", '\'': "", '’': "",
}

// Transliterate renders a Ukrainian name in latin letters. ASCII letters
// and digits pass through lowercased, everything else is dropped.
func Transliterate(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if latin, ok := translitTable[r]; ok {
			b.WriteString(latin)
			continue
		}
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

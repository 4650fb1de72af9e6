package carriers

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	nameCollatorMu sync.Mutex
	nameCollator   = collate.New(language.Portuguese)
)

// CompareNames orders two names by Portuguese collation, the order the
// stores list records in. It returns -1, 0 or +1.
func CompareNames(a, b string) int {
	nameCollatorMu.Lock()
	defer nameCollatorMu.Unlock()
	return nameCollator.CompareString(a, b)
}

// ListedBefore reports whether a is listed before b: by nome, then by id.
func ListedBefore(a, b Carrier) bool {
	if c := CompareNames(a.Nome, b.Nome); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

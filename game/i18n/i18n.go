// Package i18n holds the player-facing message catalogs for puzzles.
//
// Catalogs are gettext .po files embedded in the binary and keyed by message
// IDs such as "WORD_FOUND". Lookups for an unknown locale or a missing key fall
// back to English.
package i18n

import (
	"embed"
	"sort"
	"strings"
	"sync"

	"github.com/leonelquinteros/gotext"
)

// DefaultLocale is used when a puzzle does not name one.
const DefaultLocale = "en"

// Message IDs.
const (
	Welcome          = "WELCOME"
	WordFound        = "WORD_FOUND"
	WordAlreadyFound = "WORD_ALREADY_FOUND"
	NoMatch          = "NO_MATCH"
	PuzzleCompleted  = "PUZZLE_COMPLETED"
	NoWordsPlaced    = "NO_WORDS_PLACED"
)

//go:embed locales/*.po
var localeFS embed.FS

var (
	mu       sync.RWMutex
	catalogs = map[string]*gotext.Po{}
)

// Normalize reduces a locale tag such as "pt-BR" or "es_MX" to its language.
func Normalize(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_."); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" {
		return DefaultLocale
	}
	return locale
}

// Supported lists the languages that have an embedded catalog.
func Supported() []string {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return []string{DefaultLocale}
	}
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".po"))
	}
	sort.Strings(langs)
	return langs
}

// IsSupported reports whether locale resolves to an embedded catalog.
func IsSupported(locale string) bool {
	return catalog(Normalize(locale)) != nil
}

// Get returns the translation of key for locale, formatted with vars when any
// are given.
func Get(locale, key string, vars ...interface{}) string {
	if po := catalog(Normalize(locale)); po != nil {
		if msg := po.Get(key, vars...); msg != key {
			return msg
		}
	}
	if po := catalog(DefaultLocale); po != nil {
		return po.Get(key, vars...)
	}
	return key
}

func catalog(lang string) *gotext.Po {
	mu.RLock()
	po, ok := catalogs[lang]
	mu.RUnlock()
	if ok {
		return po
	}

	mu.Lock()
	defer mu.Unlock()
	if po, ok := catalogs[lang]; ok {
		return po
	}

	data, err := localeFS.ReadFile("locales/" + lang + ".po")
	if err != nil {
		catalogs[lang] = nil
		return nil
	}
	po = gotext.NewPo()
	po.Parse(data)
	catalogs[lang] = po
	return po
}

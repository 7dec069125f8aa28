// internal/locale/locale.go
//
// Localized message templates for the bot.
//
// Responsibilities:
//   - Load the embedded "key = value" files from assets/locales once (sync.Once).
//   - Resolve a key for a language, falling back to English, then to the key itself.
//   - Fill {placeholders} from name/value pairs.
//
// Values may contain the two-character sequence `\n`, which is expanded to a
// line break at load time.

package locale

import (
	"fmt"
	"strings"
	"sync"

	"github.com/robalobadob/guesstheword/assets"
	"github.com/robalobadob/guesstheword/internal/game"
)

var (
	initOnce   sync.Once
	catalogs   map[game.Language]map[string]string
	initialErr error
)

// Init loads every locale exactly once. It returns an error if any embedded
// file is missing or malformed.
func Init() error {
	initOnce.Do(func() {
		catalogs = make(map[game.Language]map[string]string, len(game.Languages))
		for _, lang := range game.Languages {
			lines, err := assets.Locale(string(lang))
			if err != nil {
				initialErr = fmt.Errorf("locale %s: %w", lang, err)
				return
			}
			cat, err := parse(lines)
			if err != nil {
				initialErr = fmt.Errorf("locale %s: %w", lang, err)
				return
			}
			catalogs[lang] = cat
		}
	})
	return initialErr
}

func parse(lines []string) (map[string]string, error) {
	out := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed line %q", line)
		}
		out[strings.TrimSpace(key)] = strings.ReplaceAll(strings.TrimSpace(value), `\n`, "\n")
	}
	return out, nil
}

// T returns the template for key in lang with {name} placeholders replaced by
// the given name/value pairs.
func T(lang game.Language, key string, pairs ...any) string {
	_ = Init()

	tmpl, ok := catalogs[lang][key]
	if !ok {
		tmpl, ok = catalogs[game.English][key]
	}
	if !ok {
		tmpl = key
	}
	if len(pairs) == 0 {
		return tmpl
	}

	args := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		args = append(args, "{"+fmt.Sprint(pairs[i])+"}", fmt.Sprint(pairs[i+1]))
	}
	return strings.NewReplacer(args...).Replace(tmpl)
}

// Has reports whether lang defines key itself (no fallback).
func Has(lang game.Language, key string) bool {
	_ = Init()
	_, ok := catalogs[lang][key]
	return ok
}

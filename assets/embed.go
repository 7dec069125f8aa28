package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed locales/*.txt sql/*.sql
var FS embed.FS

// readLines returns the non-blank, non-comment lines of an embedded file.
func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// Locale returns the "key = value" lines of the locale file for lang.
func Locale(lang string) ([]string, error) {
	return readLines(path.Join("locales", lang+".txt"))
}

// Migrations returns the embedded SQL migration file names in apply order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(FS, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Migration returns the contents of an embedded migration file.
func Migration(name string) (string, error) {
	b, err := FS.ReadFile(name)
	return string(b), err
}

// Package i18n resolves player and quest strings for the requested locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every lookup falls back to.
const BaseLocale = "en"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
)

// Default returns the process-wide embedded bundle.
func Default() *Bundle {
	defaultOnce.Do(func() {
		b, err := LoadFromFS(embeddedFS)
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded catalogs: %v", err))
		}
		defaultBundle = b
	})
	return defaultBundle
}

// Bundle holds the messages of every known locale.
type Bundle struct {
	locales map[string]map[string]string
	order   []string // BaseLocale first, matching matcher indexes
	matcher language.Matcher
}

// LoadFromFS loads locales/*.yaml from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: make(map[string]map[string]string)}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}

		locale := strings.TrimSpace(file.Locale)
		fromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if locale != fromPath {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, fromPath)
		}
		if _, err := language.Parse(locale); err != nil {
			return nil, fmt.Errorf("catalog %s: parse locale tag %q: %w", p, locale, err)
		}
		b.locales[locale] = file.Messages
	}

	if _, ok := b.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	b.index(nil)
	return b, nil
}

// index rebuilds the matcher over the bundle locales plus extra.
func (b *Bundle) index(extra []string) {
	seen := map[string]bool{BaseLocale: true}
	b.order = []string{BaseLocale}

	rest := make([]string, 0, len(b.locales)+len(extra))
	for l := range b.locales {
		rest = append(rest, l)
	}
	rest = append(rest, extra...)
	sort.Strings(rest)
	for _, l := range rest {
		if !seen[l] {
			seen[l] = true
			b.order = append(b.order, l)
		}
	}

	tags := make([]language.Tag, len(b.order))
	for i, l := range b.order {
		tags[i] = language.Make(l)
	}
	b.matcher = language.NewMatcher(tags)
}

// Locales returns the known locales, BaseLocale first.
func (b *Bundle) Locales() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Match resolves a requested language ("de-AT", "fr", "") to the closest
// known locale, or BaseLocale.
func (b *Bundle) Match(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return BaseLocale
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return BaseLocale
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(b.order) {
		return BaseLocale
	}
	return b.order[idx]
}

// Catalog builds the translator for lang. extra carries quest-specific
// strings (locale -> key -> text) that take precedence over the bundle.
func (b *Bundle) Catalog(lang string, extra map[string]map[string]string) *Catalog {
	matchBundle := b
	if len(extra) > 0 {
		names := make([]string, 0, len(extra))
		for l := range extra {
			names = append(names, l)
		}
		matchBundle = &Bundle{locales: b.locales}
		matchBundle.index(names)
	}

	locale := matchBundle.Match(lang)
	return &Catalog{
		locale:   locale,
		messages: merge(b.locales[locale], extra[locale]),
		fallback: merge(b.locales[BaseLocale], extra[BaseLocale]),
		printer:  message.NewPrinter(language.Make(locale)),
	}
}

func merge(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Catalog translates keys for one locale.
type Catalog struct {
	locale   string
	messages map[string]string
	fallback map[string]string
	printer  *message.Printer
}

// Locale returns the resolved locale.
func (c *Catalog) Locale() string {
	return c.locale
}

// Translate returns the text for key, falling back to BaseLocale and then
// to the key itself.
func (c *Catalog) Translate(key string) string {
	if c == nil {
		return key
	}
	if v, ok := c.messages[key]; ok {
		return v
	}
	if v, ok := c.fallback[key]; ok {
		return v
	}
	return key
}

// Translatef translates key and formats it with locale-aware number
// formatting.
func (c *Catalog) Translatef(key string, args ...any) string {
	if c == nil {
		return fmt.Sprintf(key, args...)
	}
	return c.printer.Sprintf(c.Translate(key), args...)
}

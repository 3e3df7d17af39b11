package language

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

//go:embed bundles/*.toml
var bundleFS embed.FS

// Catalog maps language codes to loaded bundles. It is built once and read-only afterwards.
type Catalog struct {
	bundles     map[string]*Bundle
	defaultCode string
}

// NewCatalog loads every embedded bundle. Templates missing from a bundle are taken from the
// default language.
func NewCatalog(defaultCode string) (*Catalog, error) {
	entries, err := bundleFS.ReadDir("bundles")
	if err != nil {
		return nil, fmt.Errorf("failed to list language bundles: %w", err)
	}

	bundles := make(map[string]*Bundle, len(entries))
	for _, entry := range entries {
		code := strings.TrimSuffix(entry.Name(), ".toml")

		data, err := bundleFS.ReadFile(path.Join("bundles", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read language bundle %s: %w", code, err)
		}

		b, err := ParseBundle(code, data)
		if err != nil {
			return nil, err
		}

		bundles[code] = b
	}

	return newCatalog(defaultCode, bundles)
}

// NewCatalogFromBundles builds a catalog from already parsed bundles.
func NewCatalogFromBundles(defaultCode string, bundles ...*Bundle) (*Catalog, error) {
	m := make(map[string]*Bundle, len(bundles))
	for _, b := range bundles {
		m[b.Code] = b
	}

	return newCatalog(defaultCode, m)
}

func newCatalog(defaultCode string, bundles map[string]*Bundle) (*Catalog, error) {
	base, ok := bundles[defaultCode]
	if !ok {
		return nil, fmt.Errorf("default language %q has no bundle", defaultCode)
	}

	for code, b := range bundles {
		if code == defaultCode {
			continue
		}

		if n := b.fill(base); n > 0 {
			log.Debug().Str("language", code).Int("filled", n).Msg("filled missing templates from default language")
		}
	}

	return &Catalog{bundles: bundles, defaultCode: defaultCode}, nil
}

// ParseBundle decodes a TOML bundle with a top-level name and a [messages] table.
func ParseBundle(code string, data []byte) (*Bundle, error) {
	v := viper.New()
	v.SetConfigType("toml")

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse language bundle %s: %w", code, err)
	}

	raw := v.GetStringMapString("messages")
	if len(raw) == 0 {
		return nil, fmt.Errorf("language bundle %s has no messages", code)
	}

	messages := make(map[Key]string, len(raw))
	for k, text := range raw {
		messages[Key(k)] = text
	}

	return NewBundle(code, v.GetString("name"), messages), nil
}

// Lookup returns the bundle for code. Codes are case-sensitive.
func (c *Catalog) Lookup(code string) (*Bundle, bool) {
	b, ok := c.bundles[code]
	return b, ok
}

// Default returns the process-wide default bundle.
func (c *Catalog) Default() *Bundle {
	return c.bundles[c.defaultCode]
}

// DefaultCode returns the code of the default bundle.
func (c *Catalog) DefaultCode() string {
	return c.defaultCode
}

// Codes returns all known language codes, sorted.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.bundles))
	for code := range c.bundles {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return codes
}

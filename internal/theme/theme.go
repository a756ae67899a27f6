package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// None clears an inherited colour.
const None = "none"

// Style is the palette for one notification type.
type Style struct {
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
	Border     string `yaml:"border,omitempty"`
	Icon       string `yaml:"icon,omitempty"`
}

// DialogStyle is the palette for the confirm dialog.
type DialogStyle struct {
	Border                 string `yaml:"border,omitempty"`
	Title                  string `yaml:"title,omitempty"`
	Message                string `yaml:"message,omitempty"`
	Button                 string `yaml:"button,omitempty"`
	ButtonActive           string `yaml:"button_active,omitempty"`
	ButtonActiveBackground string `yaml:"button_active_background,omitempty"`
}

// Palette is the decoded form of a theme file.
type Palette struct {
	Name    string           `yaml:"name,omitempty"`
	Extends string           `yaml:"extends,omitempty"` // Base theme, resolved before this one is applied
	Border  string           `yaml:"border,omitempty"`  // rounded, normal, thick, double or hidden
	Types   map[string]Style `yaml:"types,omitempty"`
	Dialog  DialogStyle      `yaml:"dialog,omitempty"`
}

// Theme represents a resolved palette with metadata.
type Theme struct {
	Name      string    // Theme name (without .yaml extension)
	Path      string    // Full path to the YAML file (empty for bundled)
	Palette   Palette   // Fully resolved palette
	ModTime   time.Time // Last modification time
	IsDefault bool      // True if this is the embedded default theme
}

// Parse decodes a palette from YAML without resolving Extends.
func Parse(data []byte) (Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Palette{}, fmt.Errorf("failed to parse theme: %w", err)
	}
	return p, nil
}

// NewTheme creates a new Theme by loading a YAML file.
// An extends chain is resolved against baseDir first, then bundled themes.
func NewTheme(name, path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	palette, err := Parse(data)
	if err != nil {
		return nil, err
	}

	resolved, err := Resolve(palette, filepath.Dir(path), map[string]bool{name: true})
	if err != nil {
		return nil, err
	}
	resolved.Name = name

	return &Theme{
		Name:    name,
		Path:    path,
		Palette: resolved,
		ModTime: info.ModTime(),
	}, nil
}

// Resolve applies p on top of the theme it extends.
// Bases are looked up as <baseDir>/<name>.yaml and then among bundled themes.
// The seen map prevents circular extends.
func Resolve(p Palette, baseDir string, seen map[string]bool) (Palette, error) {
	if p.Extends == "" {
		return p, nil
	}
	if seen == nil {
		seen = make(map[string]bool)
	}
	if seen[p.Extends] {
		return Palette{}, fmt.Errorf("circular theme extends: %s", p.Extends)
	}
	seen[p.Extends] = true

	var (
		data []byte
		err  error
		dir  = baseDir
	)
	if baseDir != "" {
		data, err = os.ReadFile(filepath.Join(baseDir, p.Extends+".yaml"))
	}
	if baseDir == "" || err != nil {
		embedded, found := GetEmbeddedTheme(p.Extends)
		if !found {
			return Palette{}, fmt.Errorf("base theme %q not found", p.Extends)
		}
		data, dir = []byte(embedded), ""
	}

	base, err := Parse(data)
	if err != nil {
		return Palette{}, err
	}
	base, err = Resolve(base, dir, seen)
	if err != nil {
		return Palette{}, err
	}

	return merge(base, p), nil
}

// merge overlays non-empty fields of over onto base.
func merge(base, over Palette) Palette {
	out := Palette{
		Name:   over.Name,
		Border: pick(base.Border, over.Border),
		Types:  make(map[string]Style, len(base.Types)),
		Dialog: DialogStyle{
			Border:                 pick(base.Dialog.Border, over.Dialog.Border),
			Title:                  pick(base.Dialog.Title, over.Dialog.Title),
			Message:                pick(base.Dialog.Message, over.Dialog.Message),
			Button:                 pick(base.Dialog.Button, over.Dialog.Button),
			ButtonActive:           pick(base.Dialog.ButtonActive, over.Dialog.ButtonActive),
			ButtonActiveBackground: pick(base.Dialog.ButtonActiveBackground, over.Dialog.ButtonActiveBackground),
		},
	}
	if out.Name == "" {
		out.Name = base.Name
	}
	for k, s := range base.Types {
		out.Types[k] = s
	}
	for k, s := range over.Types {
		b := out.Types[k]
		out.Types[k] = Style{
			Foreground: pick(b.Foreground, s.Foreground),
			Background: pick(b.Background, s.Background),
			Border:     pick(b.Border, s.Border),
			Icon:       pick(b.Icon, s.Icon),
		}
	}
	return out
}

func pick(base, over string) string {
	if over != "" {
		return over
	}
	return base
}

// ForType returns the style for a notification type, falling back to info.
func (p Palette) ForType(t string) Style {
	if s, ok := p.Types[t]; ok {
		return s
	}
	return p.Types["info"]
}

// Color returns c unless it is empty or None.
func Color(c string) (string, bool) {
	if c == "" || strings.EqualFold(c, None) {
		return "", false
	}
	return c, true
}

// NewDefaultTheme creates the embedded default theme.
func NewDefaultTheme() *Theme {
	data, _ := GetEmbeddedTheme(DefaultThemeName)
	palette, _ := Parse([]byte(data))
	return &Theme{
		Name:      DefaultThemeName,
		Palette:   palette,
		IsDefault: true,
	}
}

// newBundledTheme resolves an embedded theme by name.
func newBundledTheme(name string) (*Theme, error) {
	data, found := GetEmbeddedTheme(name)
	if !found {
		return nil, fmt.Errorf("bundled theme %q not found", name)
	}
	palette, err := Parse([]byte(data))
	if err != nil {
		return nil, err
	}
	palette, err = Resolve(palette, "", map[string]bool{name: true})
	if err != nil {
		return nil, err
	}
	return &Theme{
		Name:      name,
		Palette:   palette,
		IsDefault: name == DefaultThemeName,
	}, nil
}

// Reload reloads the theme from disk.
// Returns true if the content changed.
func (t *Theme) Reload() (bool, error) {
	if t.Path == "" {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}

	if !info.ModTime().After(t.ModTime) {
		return false, nil
	}

	fresh, err := NewTheme(t.Name, t.Path)
	if err != nil {
		return false, err
	}

	old, _ := yaml.Marshal(t.Palette)
	updated, _ := yaml.Marshal(fresh.Palette)

	t.Palette = fresh.Palette
	t.ModTime = fresh.ModTime

	return string(old) != string(updated), nil
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool // True if this is a bundled/embedded theme
}

// ListAvailableThemes lists all available themes (bundled + user themes in themesDir).
func ListAvailableThemes(themesDir string) ([]ThemeInfo, error) {
	seen := make(map[string]bool)
	var themes []ThemeInfo

	for _, name := range ListEmbeddedThemes() {
		if !seen[name] {
			seen[name] = true
			themes = append(themes, ThemeInfo{
				Name:      name,
				IsDefault: name == DefaultThemeName,
				IsBundled: true,
			})
		}
	}

	if themesDir == "" {
		return themes, nil
	}

	entries, err := os.ReadDir(themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
			themeName := strings.TrimSuffix(name, ext)
			if !seen[themeName] {
				seen[themeName] = true
				themes = append(themes, ThemeInfo{
					Name: themeName,
					Path: filepath.Join(themesDir, name),
				})
			}
		}
	}

	return themes, nil
}

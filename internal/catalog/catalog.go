// Package catalog holds the immutable style catalog and the gate deciding
// which styles a non-subscribed caller may use.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"styleshot/internal/domain"
)

// defaultStyles is the built-in catalog, used when no STYLES_PATH override is
// configured. InternalName is the contract value the generation service
// recognizes.
var defaultStyles = []domain.StyleDescriptor{
	{ID: 1, InternalName: "anime", DisplayName: "Anime", Category: "Illustration"},
	{ID: 2, InternalName: "ghibli", DisplayName: "Ghibli", Category: "Illustration"},
	{ID: 3, InternalName: "cartoon", DisplayName: "Cartoon", Category: "Illustration"},
	{ID: 4, InternalName: "cyberpunk", DisplayName: "CyberPunk", Category: "Sci-Fi"},
	{ID: 5, InternalName: "seinen", DisplayName: "Seinen", Category: "Illustration"},
	{ID: 6, InternalName: "pixelart", DisplayName: "Pixel Art", Category: "Retro"},
	{ID: 7, InternalName: "oldschool", DisplayName: "OldSchool", Category: "Retro"},
	{ID: 8, InternalName: "lego", DisplayName: "Lego", Category: "Toy"},
	{ID: 9, InternalName: "threeD", DisplayName: "3D Render", Category: "Render"},
}

// Catalog is a loaded, immutable set of style descriptors.
type Catalog struct {
	styles []domain.StyleDescriptor
	byID   map[int]domain.StyleDescriptor
}

// Load builds the catalog from the JSON file at path, or from the built-in
// defaults when path is empty. Duplicate IDs or blank internal names fail the
// load; a missing display name falls back to the title-cased internal name.
func Load(path string) (*Catalog, error) {
	styles := defaultStyles
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		var loaded []domain.StyleDescriptor
		if err := json.Unmarshal(raw, &loaded); err != nil {
			return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
		}
		styles = loaded
	}
	return New(styles)
}

// New validates and freezes the provided descriptors.
func New(styles []domain.StyleDescriptor) (*Catalog, error) {
	if len(styles) == 0 {
		return nil, fmt.Errorf("catalog: at least one style is required")
	}
	title := cases.Title(language.English)
	byID := make(map[int]domain.StyleDescriptor, len(styles))
	clean := make([]domain.StyleDescriptor, 0, len(styles))
	for _, style := range styles {
		style.InternalName = strings.TrimSpace(style.InternalName)
		if style.InternalName == "" {
			return nil, fmt.Errorf("catalog: style %d has no internal name", style.ID)
		}
		if _, exists := byID[style.ID]; exists {
			return nil, fmt.Errorf("catalog: duplicate style id %d", style.ID)
		}
		if strings.TrimSpace(style.DisplayName) == "" {
			style.DisplayName = title.String(style.InternalName)
		}
		byID[style.ID] = style
		clean = append(clean, style)
	}
	sort.Slice(clean, func(i, j int) bool { return clean[i].ID < clean[j].ID })
	return &Catalog{styles: clean, byID: byID}, nil
}

// Styles returns a copy of the catalog in ID order.
func (c *Catalog) Styles() []domain.StyleDescriptor {
	out := make([]domain.StyleDescriptor, len(c.styles))
	copy(out, c.styles)
	return out
}

// ByID looks up one style.
func (c *Catalog) ByID(id int) (domain.StyleDescriptor, error) {
	style, ok := c.byID[id]
	if !ok {
		return domain.StyleDescriptor{}, fmt.Errorf("catalog: style %d: %w", id, domain.ErrStyleNotFound)
	}
	return style, nil
}

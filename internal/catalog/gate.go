package catalog

import (
	"strings"

	"styleshot/internal/domain"
)

// Gate decides whether a style is usable without a subscription. A fixed
// allow-list of internal names is always free; everything else requires
// entitlement.
type Gate struct {
	free map[string]struct{}
}

// NewGate builds a gate from the free-style allow-list. Matching is
// case-insensitive on internal names.
func NewGate(freeStyles []string) *Gate {
	free := make(map[string]struct{}, len(freeStyles))
	for _, name := range freeStyles {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			free[name] = struct{}{}
		}
	}
	return &Gate{free: free}
}

// Free reports whether the style is usable regardless of entitlement.
func (g *Gate) Free(style domain.StyleDescriptor) bool {
	_, ok := g.free[strings.ToLower(style.InternalName)]
	return ok
}

// Check returns nil when the caller may use the style, or ErrStyleLocked when
// the style needs a subscription the caller does not hold. Callers present
// the paywall on ErrStyleLocked and must not proceed to selection.
func (g *Gate) Check(style domain.StyleDescriptor, entitled bool) error {
	if g.Free(style) || entitled {
		return nil
	}
	return domain.ErrStyleLocked
}

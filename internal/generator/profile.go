package generator

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownGenerator is returned when a generator reference matches no profile.
var ErrUnknownGenerator = errors.New("invalid generator")

// CategoryRule selects the category instructions added to the prompt.
type CategoryRule int

const (
	CategoryRuleGeneric CategoryRule = iota
	CategoryRuleSingleID
	CategoryRulePairIDs
	CategoryRulePlatformGuidelines
)

// Category is one entry of a platform's numeric category taxonomy.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Profile describes one target platform: which fields the model must produce,
// how the CSV row is laid out and which platform quirks apply after generation.
type Profile struct {
	ID         int
	Slug       string
	Title      string
	Structure  []string
	Generate   []string
	Delimiter  string
	Categories []Category
	Models     []string
	ComingSoon bool

	CategoryRule  CategoryRule
	SanitizeTitle bool

	// SanitizeFilename rewrites the file title before it is stored in the filename column.
	SanitizeFilename func(string) string
	// Overrides runs last and may set fixed values; raw is the decoded provider output.
	Overrides func(raw, out map[string]any)
}

// FilenameField is the first structural column, which always carries the file name.
func (p *Profile) FilenameField() string {
	if p == nil || len(p.Structure) == 0 {
		return ""
	}
	return p.Structure[0]
}

// Registry holds the static set of generator profiles.
type Registry struct {
	profiles []*Profile
	byID     map[int]*Profile
	bySlug   map[string]*Profile
}

// NewRegistry indexes profiles by id and slug. Duplicate ids or slugs are an error.
func NewRegistry(profiles ...*Profile) (*Registry, error) {
	r := &Registry{
		byID:   make(map[int]*Profile, len(profiles)),
		bySlug: make(map[string]*Profile, len(profiles)),
	}
	for _, p := range profiles {
		if p == nil {
			continue
		}
		if _, exists := r.byID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate generator id %d", p.ID)
		}
		slug := strings.ToLower(strings.TrimSpace(p.Slug))
		if slug == "" {
			return nil, fmt.Errorf("generator %d has no slug", p.ID)
		}
		if _, exists := r.bySlug[slug]; exists {
			return nil, fmt.Errorf("duplicate generator slug %q", slug)
		}
		if len(p.Structure) == 0 {
			return nil, fmt.Errorf("generator %d has no structure", p.ID)
		}
		r.byID[p.ID] = p
		r.bySlug[slug] = p
		r.profiles = append(r.profiles, p)
	}
	sort.Slice(r.profiles, func(i, j int) bool { return r.profiles[i].ID < r.profiles[j].ID })
	return r, nil
}

// Lookup resolves a numeric id ("1") or a slug ("adobestock").
func (r *Registry) Lookup(ref string) (*Profile, error) {
	trimmed := strings.TrimSpace(ref)
	if r == nil || trimmed == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, ref)
	}
	if id, err := strconv.Atoi(trimmed); err == nil {
		if p, ok := r.byID[id]; ok {
			return p, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, ref)
	}
	if p, ok := r.bySlug[strings.ToLower(trimmed)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, ref)
}

// All returns the profiles ordered by id.
func (r *Registry) All() []*Profile {
	if r == nil {
		return nil
	}
	out := make([]*Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

package dto

// Category is one entry of a platform category taxonomy.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GeneratorItem is the public description of a generator profile.
type GeneratorItem struct {
	ID         int        `json:"id"`
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Structure  []string   `json:"structure"`
	Generate   []string   `json:"generate"`
	Delimiter  string     `json:"delimiter"`
	Categories []Category `json:"categories,omitempty"`
	Models     []string   `json:"models,omitempty"`
	ComingSoon bool       `json:"coming_soon"`
}

// GeneratorListResponse lists all generator profiles.
type GeneratorListResponse struct {
	Generators []GeneratorItem `json:"generators"`
}

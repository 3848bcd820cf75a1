package generator

import (
	"regexp"
	"strings"
)

const (
	adobeFallbackCategory = 8
	freepikModelTag       = "Midjourney 5"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

var adobeStockCategories = []Category{
	{ID: 1, Name: "Animals"},
	{ID: 2, Name: "Buildings and Architecture"},
	{ID: 3, Name: "Business"},
	{ID: 4, Name: "Drinks"},
	{ID: 5, Name: "The Environment"},
	{ID: 6, Name: "States of Mind"},
	{ID: 7, Name: "Food"},
	{ID: 8, Name: "Graphic Resources"},
	{ID: 9, Name: "Hobbies and Leisure"},
	{ID: 10, Name: "Industry"},
	{ID: 11, Name: "Landscapes"},
	{ID: 12, Name: "Lifestyle"},
	{ID: 13, Name: "People"},
	{ID: 14, Name: "Plants and Flowers"},
	{ID: 15, Name: "Culture and Religion"},
	{ID: 16, Name: "Science"},
	{ID: 17, Name: "Social Issues"},
	{ID: 18, Name: "Sports"},
	{ID: 19, Name: "Technology"},
	{ID: 20, Name: "Transport"},
	{ID: 21, Name: "Travel"},
}

var shutterstockCategories = []Category{
	{ID: 1, Name: "Abstract"},
	{ID: 2, Name: "Animals/Wildlife"},
	{ID: 3, Name: "Arts"},
	{ID: 4, Name: "Backgrounds/Textures"},
	{ID: 5, Name: "Beauty/Fashion"},
	{ID: 6, Name: "Buildings/Landmarks"},
	{ID: 7, Name: "Business/Finance"},
	{ID: 8, Name: "Celebrities"},
	{ID: 9, Name: "Education"},
	{ID: 10, Name: "Food and drink"},
	{ID: 11, Name: "Healthcare/Medical"},
	{ID: 12, Name: "Holidays"},
	{ID: 13, Name: "Industrial"},
	{ID: 14, Name: "Interiors"},
	{ID: 15, Name: "Miscellaneous"},
	{ID: 16, Name: "Nature"},
	{ID: 17, Name: "Objects"},
	{ID: 18, Name: "Parks/Outdoor"},
	{ID: 19, Name: "People"},
	{ID: 20, Name: "Religion"},
	{ID: 21, Name: "Science"},
	{ID: 22, Name: "Signs/Symbols"},
	{ID: 23, Name: "Sports/Recreation"},
	{ID: 24, Name: "Technology"},
	{ID: 25, Name: "Transportation"},
	{ID: 26, Name: "Vintage"},
}

// DefaultProfiles returns the built-in platform profiles.
func DefaultProfiles() []*Profile {
	return []*Profile{
		{
			ID:            1,
			Slug:          "adobestock",
			Title:         "AdobeStock",
			Structure:     []string{"Filename", "Title", "Keywords", "Category", "Releases"},
			Generate:      []string{"Title", "Keywords", "Category"},
			Delimiter:     ",",
			Categories:    adobeStockCategories,
			CategoryRule:  CategoryRuleSingleID,
			SanitizeTitle: true,
			Overrides: func(raw, out map[string]any) {
				if category, ok := raw["Category"]; ok && category != nil {
					out["Category"] = category
					return
				}
				out["Category"] = adobeFallbackCategory
			},
		},
		{
			ID:            2,
			Slug:          "shutterstock",
			Title:         "Shutterstock",
			Structure:     []string{"Filename", "Description", "Keywords", "Categories", "Editorial", "Mature content", "illustration"},
			Generate:      []string{"Description", "Keywords", "Categories"},
			Delimiter:     ",",
			Categories:    shutterstockCategories,
			CategoryRule:  CategoryRulePairIDs,
			SanitizeTitle: true,
		},
		{
			ID:            3,
			Slug:          "freepik",
			Title:         "Freepik",
			Structure:     []string{"Filename", "Title", "Keywords", "Prompt", "Model"},
			Generate:      []string{"Title", "Keywords"},
			Delimiter:     ";",
			Models:        []string{"Midjourney 5", "Midjourney 6", "DALL-E 3", "Stable Diffusion XL", "Adobe Firefly"},
			CategoryRule:  CategoryRulePlatformGuidelines,
			SanitizeTitle: true,
			Overrides: func(raw, out map[string]any) {
				if title, ok := raw["Title"]; ok && title != nil {
					out["Prompt"] = title
				}
				out["Model"] = freepikModelTag
			},
		},
		{
			ID:               4,
			Slug:             "vecteezy",
			Title:            "Vecteezy",
			Structure:        []string{"Filename", "Title", "Description", "Keywords", "License"},
			Generate:         []string{"Title", "Description", "Keywords"},
			Delimiter:        ",",
			CategoryRule:     CategoryRulePlatformGuidelines,
			SanitizeTitle:    true,
			SanitizeFilename: underscoreFilename,
		},
		{
			ID:            5,
			Slug:          "123rf",
			Title:         "123rf",
			Structure:     []string{"Filename", "Description", "Keywords", "Country"},
			Generate:      []string{"Description", "Keywords"},
			Delimiter:     ",",
			CategoryRule:  CategoryRulePlatformGuidelines,
			SanitizeTitle: true,
		},
		{
			ID:            6,
			Slug:          "dreamstime",
			Title:         "Dreamstime",
			Structure:     []string{"Filename", "Image Name", "Description", "Category1", "Category2", "Category3", "Keywords"},
			Generate:      []string{"Image Name", "Description", "Keywords"},
			Delimiter:     ",",
			CategoryRule:  CategoryRulePlatformGuidelines,
			SanitizeTitle: true,
			Overrides: func(_, out map[string]any) {
				out["Category1"] = 0
				out["Category2"] = 0
				out["Category3"] = 0
			},
		},
		{
			ID:            7,
			Slug:          "pond5",
			Title:         "Pond5",
			Structure:     []string{"Filename", "Title", "Description", "Keywords"},
			Generate:      []string{"Title", "Description", "Keywords"},
			Delimiter:     ",",
			ComingSoon:    true,
			CategoryRule:  CategoryRuleGeneric,
			SanitizeTitle: true,
		},
	}
}

// underscoreFilename drops existing underscores, then turns whitespace runs and
// parentheses into underscores: "my (photo) file.png" -> "my__photo__file.png".
func underscoreFilename(name string) string {
	name = strings.ReplaceAll(name, "_", "")
	name = whitespaceRun.ReplaceAllString(name, "_")
	name = strings.ReplaceAll(name, "(", "_")
	return strings.ReplaceAll(name, ")", "_")
}

var defaultRegistry = mustRegistry(DefaultProfiles()...)

// Default returns the registry of built-in profiles.
func Default() *Registry {
	return defaultRegistry
}

func mustRegistry(profiles ...*Profile) *Registry {
	r, err := NewRegistry(profiles...)
	if err != nil {
		panic(err)
	}
	return r
}

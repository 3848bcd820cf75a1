package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	DefaultNumKeywords = 30
	DefaultTitleChars  = 70
)

// BuildPrompt renders the provider-agnostic system prompt for one profile.
// Non-positive keyword or title lengths fall back to the defaults.
func BuildPrompt(p *Profile, numKeywords, titleChars int) string {
	if numKeywords <= 0 {
		numKeywords = DefaultNumKeywords
	}
	if titleChars <= 0 {
		titleChars = DefaultTitleChars
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You generate SEO-optimized stock image metadata for %s and answer with JSON only.\n\n", p.Title)

	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("- Respond with exactly one JSON object\n")
	b.WriteString("- Use the field names exactly as listed, including case\n")
	b.WriteString("- Do not add explanations or text outside the JSON object\n\n")

	fmt.Fprintf(&b, "REQUIRED FIELDS:\n%s\n\n", strings.Join(p.Generate, ", "))

	b.WriteString("RULES:\n")
	b.WriteString("1. Title:\n")
	fmt.Fprintf(&b, "   - Exactly %d characters long\n", titleChars)
	b.WriteString("   - Describe the subject and its context for buyers searching stock sites\n")
	b.WriteString("   - No personal names and no numbers\n")
	b.WriteString("2. Description (when required):\n")
	b.WriteString("   - 100 to 200 characters\n")
	b.WriteString("   - Cover the image content and likely commercial uses\n")
	b.WriteString("   - Do not repeat the title\n")
	b.WriteString("3. Keywords:\n")
	fmt.Fprintf(&b, "   - Exactly %d unique single-word keywords as a JSON array\n", numKeywords)
	b.WriteString("   - Most relevant first; the first five carry the most search weight\n")
	b.WriteString("   - No duplicates, personal names or numbers\n")
	b.WriteString("4. Categories:\n")
	b.WriteString(categoryInstructions(p))
	b.WriteString("\n\n")

	b.WriteString("Keep the language professional and commercially relevant, avoid filler and overused terms.\n")
	b.WriteString("Return only the JSON object.")

	return b.String()
}

func categoryInstructions(p *Profile) string {
	switch p.CategoryRule {
	case CategoryRuleSingleID:
		return fmt.Sprintf("   - Choose exactly ONE category id from: %s\n   - Put only the numeric id in the Category field", categoriesJSON(p.Categories))
	case CategoryRulePairIDs:
		return fmt.Sprintf("   - Choose exactly TWO category ids from: %s\n   - Format them as an array: [id1, id2]", categoriesJSON(p.Categories))
	case CategoryRulePlatformGuidelines:
		return "   - Follow the platform's own category guidelines"
	default:
		return "   - Provide an appropriate category classification"
	}
}

func categoriesJSON(categories []Category) string {
	if len(categories) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

package generator

import (
	"encoding/json"
	"errors"
	"metagen/internal/entity/common"
	"strings"
)

var errNoJSONObject = errors.New("no JSON object in provider output")

// Normalize turns raw provider output into the profile's record shape. Text
// output is searched for its first balanced JSON object; anything that cannot
// be decoded yields an empty source map, so the result then only carries the
// filename column and fixed overrides.
func Normalize(raw any, file common.FileRef, p *Profile) map[string]any {
	src := decodeRaw(raw)
	coerceKeywords(src)

	out := make(map[string]any, len(p.Generate)+1)
	if field := p.FilenameField(); field != "" {
		name := file.Title
		if p.SanitizeFilename != nil {
			name = p.SanitizeFilename(name)
		}
		out[field] = name
	}

	for _, field := range p.Generate {
		value, ok := src[field]
		if !ok || !truthy(value) {
			continue
		}
		if field == "Title" && p.SanitizeTitle {
			if s, isString := value.(string); isString {
				value = SanitizeTitle(s)
			}
		}
		out[field] = value
	}

	if p.Overrides != nil {
		p.Overrides(src, out)
	}
	return out
}

// SanitizeTitle converts dashes to spaces and drops everything except ASCII
// letters, digits and spaces.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r == '-':
			b.WriteByte(' ')
		case r == ' ', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func decodeRaw(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return common.JSONMap(v).Clone()
	case common.JSONMap:
		return v.Clone()
	case string:
		return decodeText(v)
	case []byte:
		return decodeText(string(v))
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return map[string]any{}
		}
		out := map[string]any{}
		if err := json.Unmarshal(encoded, &out); err != nil {
			return map[string]any{}
		}
		return out
	}
}

func decodeText(text string) map[string]any {
	span, err := firstJSONObject(text)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return map[string]any{}
	}
	return out
}

// firstJSONObject returns the first balanced {...} span, ignoring braces that
// appear inside JSON strings.
func firstJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSONObject
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", errNoJSONObject
}

func coerceKeywords(src map[string]any) {
	joined, ok := src["Keywords"].(string)
	if !ok {
		return
	}
	parts := strings.Split(joined, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	src["Keywords"] = keywords
}

// truthy mirrors loose JSON truthiness: null, false, 0 and "" are false,
// empty arrays and objects are true.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case json.Number:
		return val.String() != "0"
	default:
		return true
	}
}

package storage

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

var errEmptyPayload = errors.New("empty payload")

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if trimmed == "" {
		return "bin"
	}
	return sanitizePathSegment(trimmed)
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	return strings.Trim(sanitizePathSegment(replaced), "-_")
}

// buildObjectPath returns category/yyyy/mm/dd/base.ext using now (UTC).
func buildObjectPath(now time.Time, opts SaveOptions) string {
	now = now.UTC()
	category := sanitizePathSegment(opts.Category)
	if category == "" {
		category = "misc"
	}
	base := sanitizeFileBase(opts.BaseName)
	if base == "" {
		base = fmt.Sprintf("%d", now.UnixNano())
	}
	datedir := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	return path.Join(category, datedir, base+"."+normalizeExtension(opts.Extension))
}

func contentTypeFor(opts SaveOptions) string {
	if ct := strings.TrimSpace(opts.ContentType); ct != "" {
		return ct
	}
	typeName := mime.TypeByExtension("." + normalizeExtension(opts.Extension))
	if typeName == "" {
		return "application/octet-stream"
	}
	return typeName
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

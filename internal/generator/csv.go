package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"metagen/internal/entity/common"
	"strconv"
	"strings"
	"unicode/utf8"
)

const keywordSeparator = ", "

// WriteCSV renders successful outcomes as the platform's upload sheet: the
// structure fields as header, one row per outcome, the profile delimiter
// between columns. Failed outcomes are skipped. It returns the row count.
func WriteCSV(w io.Writer, p *Profile, outcomes common.OutcomeList) (int, error) {
	writer := csv.NewWriter(w)
	if delim, size := utf8.DecodeRuneInString(p.Delimiter); size > 0 && delim != utf8.RuneError {
		writer.Comma = delim
	}

	if err := writer.Write(p.Structure); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	rows := 0
	for _, outcome := range outcomes {
		if !outcome.Succeeded() {
			continue
		}
		record := make([]string, len(p.Structure))
		for i, field := range p.Structure {
			record[i] = formatCell(outcome.Metadata[field])
		}
		if err := writer.Write(record); err != nil {
			return rows, fmt.Errorf("write csv row: %w", err)
		}
		rows++
	}

	writer.Flush()
	return rows, writer.Error()
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, keywordSeparator)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatCell(item))
		}
		return strings.Join(parts, keywordSeparator)
	default:
		return fmt.Sprint(val)
	}
}

package converter

import (
	"strings"

	"github.com/mcncl/jsonkit/internal/models"
)

// toCSV renders an array of objects (or a single object) as CSV. Anything
// else, and an empty array, yields an empty string. Elements that are not
// objects are skipped.
func (c *Converter) toCSV(v models.Value) string {
	rows := v
	if v.Kind == models.KindObject {
		rows = models.Array(v)
	}
	if rows.Kind != models.KindArray || len(rows.Items) == 0 {
		return ""
	}

	header := c.csvHeader(rows.Items)
	if len(header) == 0 {
		return ""
	}

	lines := make([]string, 0, len(rows.Items)+1)
	cells := make([]string, len(header))
	for i, key := range header {
		cells[i] = csvHeaderCell(key)
	}
	lines = append(lines, strings.Join(cells, ","))

	for _, row := range rows.Items {
		if row.Kind != models.KindObject {
			continue
		}
		cells := make([]string, len(header))
		for i, key := range header {
			cell, ok := row.Get(key)
			if !ok {
				continue
			}
			cells[i] = csvCell(cell)
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	return strings.Join(lines, "\n")
}

func (c *Converter) csvHeader(rows []models.Value) []string {
	var header []string
	seen := make(map[string]bool)

	for _, row := range rows {
		if row.Kind != models.KindObject {
			continue
		}
		for _, key := range row.Keys() {
			if seen[key] {
				continue
			}
			seen[key] = true
			header = append(header, key)
		}
		if c.opts.CSVHeader == HeaderFirst {
			break
		}
	}
	return header
}

// csvCell renders one value: strings quoted with doubled inner quotes, null
// empty, other scalars literal, composites as quoted compact JSON.
func csvCell(v models.Value) string {
	switch v.Kind {
	case models.KindNull:
		return ""
	case models.KindString:
		return quoteCSV(v.Str)
	case models.KindBool, models.KindNumber:
		return v.String()
	default:
		return quoteCSV(v.String())
	}
}

func csvHeaderCell(key string) string {
	if strings.ContainsAny(key, ",\"\n\r") {
		return quoteCSV(key)
	}
	return key
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

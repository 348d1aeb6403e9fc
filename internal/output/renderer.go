// Package output renders diff records for the terminal or as JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mcncl/jsonkit/internal/differ"
	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
)

const rootLabel = "(root)"

// Renderer writes diff records as colored text lines.
type Renderer struct {
	added   *color.Color
	removed *color.Color
	changed *color.Color
	typed   *color.Color
	failed  *color.Color
	summary *color.Color
}

// NewRenderer creates a renderer. With noColor set, output is plain text
// regardless of the terminal.
func NewRenderer(noColor bool) *Renderer {
	r := &Renderer{
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		changed: color.New(color.FgYellow),
		typed:   color.New(color.FgMagenta),
		failed:  color.New(color.FgRed, color.Bold),
		summary: color.New(color.FgWhite, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{r.added, r.removed, r.changed, r.typed, r.failed, r.summary} {
			c.DisableColor()
		}
	}
	return r
}

// Line formats a single record.
func (r *Renderer) Line(rec models.DiffRecord) string {
	path := rec.Path
	if path == "" {
		path = rootLabel
	}

	switch rec.Kind {
	case models.DiffAdded:
		return r.added.Sprintf("+ %s: %s", path, valueText(rec.NewValue))
	case models.DiffRemoved:
		return r.removed.Sprintf("- %s: %s", path, valueText(rec.OldValue))
	case models.DiffChanged:
		return r.changed.Sprintf("~ %s: %s → %s", path, valueText(rec.OldValue), valueText(rec.NewValue))
	case models.DiffTypeChanged:
		return r.typed.Sprintf("! %s: %s %s → %s %s",
			path, rec.OldType, valueText(rec.OldValue), rec.NewType, valueText(rec.NewValue))
	case models.DiffError:
		return r.failed.Sprintf("error: %s", rec.Message)
	default:
		return fmt.Sprintf("? %s", path)
	}
}

// Summary formats the footer line.
func (r *Renderer) Summary(s differ.Summary) string {
	if s.Identical() {
		return r.summary.Sprint("No differences")
	}
	noun := "differences"
	if s.Total == 1 {
		noun = "difference"
	}
	parts := []string{
		fmt.Sprintf("%d added", s.Added),
		fmt.Sprintf("%d removed", s.Removed),
		fmt.Sprintf("%d changed", s.Changed),
		fmt.Sprintf("%d type changed", s.TypeChanged),
	}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	return r.summary.Sprintf("%d %s: %s", s.Total, noun, strings.Join(parts, ", "))
}

// Render writes one line per record followed by the summary.
func (r *Renderer) Render(w io.Writer, records []models.DiffRecord) error {
	for _, rec := range records {
		if _, err := fmt.Fprintln(w, r.Line(rec)); err != nil {
			return errors.NewOutputError("failed to write diff", err)
		}
	}
	if _, err := fmt.Fprintln(w, r.Summary(differ.Summarize(records))); err != nil {
		return errors.NewOutputError("failed to write summary", err)
	}
	return nil
}

// Report is the JSON shape of a diff result.
type Report struct {
	Records []models.DiffRecord `json:"records"`
	Summary differ.Summary      `json:"summary"`
}

// RenderJSON writes records and their summary as indented JSON.
func RenderJSON(w io.Writer, records []models.DiffRecord) error {
	if records == nil {
		records = []models.DiffRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Report{Records: records, Summary: differ.Summarize(records)}); err != nil {
		return errors.NewOutputError("failed to encode diff as JSON", err)
	}
	return nil
}

func valueText(v *models.Value) string {
	if v == nil {
		return "null"
	}
	return v.String()
}

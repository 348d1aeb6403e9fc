// Package query extracts values from JSON documents using gjson path syntax,
// e.g. "users.#.name" or "items.0.price".
package query

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
	"github.com/mcncl/jsonkit/internal/parser"
)

// Result is the outcome of a path lookup.
type Result struct {
	Exists bool         `json:"exists"`
	Kind   string       `json:"kind,omitempty"`
	Raw    string       `json:"raw,omitempty"`
	Value  models.Value `json:"value"`
}

// Get evaluates path against data. A path that matches nothing is not an
// error; Exists is false.
func Get(data []byte, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.NewQueryError("path is empty", nil)
	}
	if !gjson.ValidBytes(data) {
		if _, err := parser.ParseBytes(data); err != nil {
			return Result{}, errors.NewQueryError("input is not valid JSON", err)
		}
		return Result{}, errors.NewQueryError("input is not valid JSON", errors.ErrInvalidJSON)
	}

	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return Result{Value: models.Null()}, nil
	}

	doc, err := parser.ParseString(res.Raw)
	if err != nil {
		return Result{}, errors.NewQueryError("failed to decode query result", err)
	}
	return Result{
		Exists: true,
		Kind:   doc.Root.Kind.String(),
		Raw:    res.Raw,
		Value:  doc.Root,
	}, nil
}

package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonkit/internal/differ"
	"github.com/mcncl/jsonkit/internal/parser"
)

func TestIntegration_FormatMinifyPreservesDocument(t *testing.T) {
	// Pretty-printing and minifying must never change what the document says.
	jsonInput := `{
		"user_id": 123,
		"username": "johndoe",
		"is_active": true,
		"profile": {
			"full_name": "John Doe",
			"email": "john.doe@example.com",
			"scores": [1.5, 2, 3e2]
		},
		"deleted_at": null
	}`

	original, err := parser.ParseString(jsonInput)
	require.NoError(t, err)

	formatter := NewFormatterWithOptions(Options{Indent: 3})
	pretty, err := formatter.Format([]byte(jsonInput))
	require.NoError(t, err)

	minified, err := formatter.Minify(pretty)
	require.NoError(t, err)

	for name, data := range map[string][]byte{"pretty": pretty, "minified": minified} {
		t.Run(name, func(t *testing.T) {
			doc, err := parser.ParseBytes(data)
			require.NoError(t, err)
			assert.Empty(t, differ.Diff(original.Root, doc.Root))
			assert.Equal(t, original.Root.Keys(), doc.Root.Keys())
		})
	}
}

func TestIntegration_SortKeysOnlyReorders(t *testing.T) {
	jsonInput := `{"z":{"y":1,"x":[{"b":1,"a":2}]},"a":0}`

	sorted, err := NewFormatterWithOptions(Options{SortKeys: true}).Format([]byte(jsonInput))
	require.NoError(t, err)

	before, err := parser.ParseString(jsonInput)
	require.NoError(t, err)
	after, err := parser.ParseBytes(sorted)
	require.NoError(t, err)

	assert.Empty(t, differ.Diff(before.Root, after.Root))
	assert.Equal(t, []string{"a", "z"}, after.Root.Keys())
}

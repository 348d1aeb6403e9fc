package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonkit/internal/differ"
	"github.com/mcncl/jsonkit/internal/models"
)

func ptr(v models.Value) *models.Value { return &v }

func TestRenderer_Line(t *testing.T) {
	r := NewRenderer(true)

	tests := []struct {
		name string
		rec  models.DiffRecord
		want string
	}{
		{
			name: "added",
			rec:  models.DiffRecord{Kind: models.DiffAdded, Path: "b", NewValue: ptr(models.Number("2"))},
			want: "+ b: 2",
		},
		{
			name: "removed",
			rec:  models.DiffRecord{Kind: models.DiffRemoved, Path: "a.b", OldValue: ptr(models.String("x"))},
			want: `- a.b: "x"`,
		},
		{
			name: "changed",
			rec: models.DiffRecord{Kind: models.DiffChanged, Path: "list[1]",
				OldValue: ptr(models.Number("2")), NewValue: ptr(models.Number("5"))},
			want: "~ list[1]: 2 → 5",
		},
		{
			name: "type changed at root",
			rec: models.DiffRecord{Kind: models.DiffTypeChanged, Path: "",
				OldValue: ptr(models.Object()), NewValue: ptr(models.Array()),
				OldType: "object", NewType: "array"},
			want: "! (root): object {} → array []",
		},
		{
			name: "error",
			rec:  models.DiffRecord{Kind: models.DiffError, Message: "original document is not valid JSON"},
			want: "error: original document is not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Line(tt.rec))
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	a := models.Object(models.M("a", models.Number("1")), models.M("b", models.Number("2")))
	b := models.Object(models.M("a", models.Number("1")), models.M("c", models.Number("3")))

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Render(&buf, differ.Diff(a, b)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"- b: 2",
		"+ c: 3",
		"2 differences: 1 added, 1 removed, 0 changed, 0 type changed",
	}, lines)
}

func TestRenderer_RenderIdentical(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Render(&buf, nil))
	assert.Equal(t, "No differences\n", buf.String())
}

func TestRenderer_SummaryWithErrors(t *testing.T) {
	s := differ.Summarize([]models.DiffRecord{{Kind: models.DiffError, Message: "boom"}})
	assert.Equal(t, "1 difference: 0 added, 0 removed, 0 changed, 0 type changed, 1 errors", NewRenderer(true).Summary(s))
}

func TestRenderJSON(t *testing.T) {
	records := differ.DiffText(`{"a":1}`, `{"a":"1"}`)

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, records))

	var got struct {
		Records []map[string]any `json:"records"`
		Summary differ.Summary   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Records, 1)
	assert.Equal(t, "type_changed", got.Records[0]["kind"])
	assert.Equal(t, "a", got.Records[0]["path"])
	assert.Equal(t, "number", got.Records[0]["oldType"])
	assert.Equal(t, "string", got.Records[0]["newType"])
	assert.Equal(t, 1, got.Summary.TypeChanged)
}

func TestRenderJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, nil))
	assert.Contains(t, buf.String(), `"records": []`)
}

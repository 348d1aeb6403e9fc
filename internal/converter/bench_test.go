package converter

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonkit/internal/parser"
)

func generateRows(n int) string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf(`{"id":%d,"name":"user %d","score":%d.5,"active":%t}`, i, i, i, i%2 == 0)
	}
	return "[" + strings.Join(rows, ",") + "]"
}

func BenchmarkConvert(b *testing.B) {
	doc, err := parser.ParseString(generateRows(500))
	require.NoError(b, err)
	c := NewConverter()

	for _, format := range Formats() {
		b.Run(string(format), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := c.Convert(doc.Root, format); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkConvert_Sample(b *testing.B) {
	doc, err := parser.ParseFile(filepath.Join("..", "..", "testdata", "samples", "complex.json"))
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Convert(doc.Root, FormatYAML); err != nil {
			b.Fatal(err)
		}
	}
}

func TestCSV_SampleFile(t *testing.T) {
	doc, err := parser.ParseFile(filepath.Join("..", "..", "testdata", "samples", "users.json"))
	require.NoError(t, err)

	got, err := Convert(doc.Root, FormatCSV)
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{
		"id,name,email,admin,team",
		`1,"Ann","ann@example.com",false,`,
		`2,"Bo","bo@example.com",true,"ops"`,
		`3,"Cy ""the"" Coder",,,`,
	}, "\n"), got)
}

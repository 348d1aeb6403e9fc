package differ

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// generateWideJSON builds an object with fieldCount members, bumping every
// step-th value so the diff has work to report.
func generateWideJSON(fieldCount, step int) string {
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i < fieldCount; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		v := i
		if step > 0 && i%step == 0 {
			v++
		}
		fmt.Fprintf(&b, `"field_%d":{"id":%d,"tags":["a","b"],"ok":true}`, i, v)
	}
	b.WriteByte('}')
	return b.String()
}

func BenchmarkDiffText_Wide(b *testing.B) {
	original := generateWideJSON(1000, 0)
	candidate := generateWideJSON(1000, 10)
	d := NewDiffer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if records := d.DiffText(original, candidate); len(records) != 100 {
			b.Fatalf("expected 100 records, got %d", len(records))
		}
	}
}

func BenchmarkDiffText_Sample(b *testing.B) {
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "samples", "complex.json"))
	require.NoError(b, err)
	doc := string(data)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DiffText(doc, doc)
	}
}

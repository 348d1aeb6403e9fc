// Package differ computes structural differences between two JSON values.
//
// Records come out in a canonical pre-order: for objects, the original's keys
// in their document order (recursing into shared keys, Removed for missing
// ones), then keys that only the candidate has, in the candidate's order
// (Added). Array elements are visited by ascending index. The same pair of
// inputs always yields the same list.
//
// Paths join keys with "." and indices with "[i]". Keys are not escaped, so a
// key containing "." or "[" yields a path that reads like a deeper one.
package differ

import (
	"fmt"
	"strconv"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
	"github.com/mcncl/jsonkit/internal/parser"
)

// Options configures a Differ.
type Options struct {
	// Ignore, when set, suppresses a path and everything beneath it.
	Ignore func(path string) bool
}

// Differ compares JSON values.
type Differ struct {
	options Options
}

// NewDiffer creates a Differ with default options.
func NewDiffer() *Differ {
	return &Differ{}
}

// NewDifferWithOptions creates a Differ with custom options.
func NewDifferWithOptions(opts Options) *Differ {
	return &Differ{options: opts}
}

// Diff compares original against candidate using default options.
func Diff(original, candidate models.Value) []models.DiffRecord {
	return NewDiffer().Diff(original, candidate)
}

// DiffText parses both documents and compares them using default options.
func DiffText(original, candidate string) []models.DiffRecord {
	return NewDiffer().DiffText(original, candidate)
}

// Diff returns every point at which candidate differs from original. It
// never panics; an internal failure is reported as a single Error record.
func (d *Differ) Diff(original, candidate models.Value) (records []models.DiffRecord) {
	defer func() {
		if r := recover(); r != nil {
			records = []models.DiffRecord{errorRecord(errors.NewDiffError("comparison failed", fmt.Errorf("%v", r)))}
		}
	}()

	records = make([]models.DiffRecord, 0)
	return d.compare("", original, candidate, records)
}

// DiffText parses original and candidate and compares them. If either side
// is not valid JSON the result is exactly one Error record naming the side.
func (d *Differ) DiffText(original, candidate string) []models.DiffRecord {
	a, err := parser.ParseString(original)
	if err != nil {
		return []models.DiffRecord{errorRecord(errors.NewDiffError("original document is not valid JSON", err))}
	}
	b, err := parser.ParseString(candidate)
	if err != nil {
		return []models.DiffRecord{errorRecord(errors.NewDiffError("candidate document is not valid JSON", err))}
	}
	return d.Diff(a.Root, b.Root)
}

func (d *Differ) compare(path string, a, b models.Value, records []models.DiffRecord) []models.DiffRecord {
	if d.ignored(path) {
		return records
	}

	if a.Kind != b.Kind {
		return append(records, models.DiffRecord{
			Kind:     models.DiffTypeChanged,
			Path:     path,
			OldValue: ptr(a),
			NewValue: ptr(b),
			OldType:  a.Kind.String(),
			NewType:  b.Kind.String(),
		})
	}

	switch a.Kind {
	case models.KindObject:
		return d.compareObjects(path, a, b, records)
	case models.KindArray:
		return d.compareArrays(path, a, b, records)
	default:
		if models.Equal(a, b) {
			return records
		}
		return append(records, models.DiffRecord{
			Kind:     models.DiffChanged,
			Path:     path,
			OldValue: ptr(a),
			NewValue: ptr(b),
		})
	}
}

func (d *Differ) compareObjects(path string, a, b models.Value, records []models.DiffRecord) []models.DiffRecord {
	inA := memberIndex(a)
	inB := memberIndex(b)

	for _, m := range a.Members {
		childPath := KeyPath(path, m.Key)
		j, ok := inB[m.Key]
		if !ok {
			if !d.ignored(childPath) {
				records = append(records, models.DiffRecord{
					Kind:     models.DiffRemoved,
					Path:     childPath,
					OldValue: ptr(m.Value),
				})
			}
			continue
		}
		records = d.compare(childPath, m.Value, b.Members[j].Value, records)
	}

	for _, m := range b.Members {
		if _, ok := inA[m.Key]; ok {
			continue
		}
		childPath := KeyPath(path, m.Key)
		if d.ignored(childPath) {
			continue
		}
		records = append(records, models.DiffRecord{
			Kind:     models.DiffAdded,
			Path:     childPath,
			NewValue: ptr(m.Value),
		})
	}
	return records
}

func memberIndex(v models.Value) map[string]int {
	index := make(map[string]int, len(v.Members))
	for i, m := range v.Members {
		index[m.Key] = i
	}
	return index
}

func (d *Differ) compareArrays(path string, a, b models.Value, records []models.DiffRecord) []models.DiffRecord {
	n := max(len(a.Items), len(b.Items))
	for i := 0; i < n; i++ {
		childPath := IndexPath(path, i)
		switch {
		case i >= len(b.Items):
			if !d.ignored(childPath) {
				records = append(records, models.DiffRecord{
					Kind:     models.DiffRemoved,
					Path:     childPath,
					OldValue: ptr(a.Items[i]),
				})
			}
		case i >= len(a.Items):
			if !d.ignored(childPath) {
				records = append(records, models.DiffRecord{
					Kind:     models.DiffAdded,
					Path:     childPath,
					NewValue: ptr(b.Items[i]),
				})
			}
		default:
			records = d.compare(childPath, a.Items[i], b.Items[i], records)
		}
	}
	return records
}

func (d *Differ) ignored(path string) bool {
	return path != "" && d.options.Ignore != nil && d.options.Ignore(path)
}

// KeyPath extends path with an object key.
func KeyPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// IndexPath extends path with an array index.
func IndexPath(path string, index int) string {
	return path + "[" + strconv.Itoa(index) + "]"
}

// errorRecord flattens err into an Error record's message, leaving out the
// type prefix AppError.Error adds.
func errorRecord(err *errors.AppError) models.DiffRecord {
	message := err.Message
	if err.Err != nil {
		message += ": " + err.Err.Error()
	}
	return models.DiffRecord{Kind: models.DiffError, Message: message}
}

func ptr(v models.Value) *models.Value {
	return &v
}

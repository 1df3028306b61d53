package msi

import (
	"encoding/binary"
)

// Integer cells are stored biased by half the type's range; raw zero is
// reserved for null/zero and passed through unmodified.
const (
	longBias  = 0x80000000
	shortBias = 0x8000
)

// row is one reconstructed record: the raw on-disk cells and the typed values
// derived from them. Post-processing (hash reconstruction, action carving)
// needs the raw cells, so both are kept.
type row struct {
	raw    []uint32
	values []any
}

// decodeRows reconstructs all rows of a table stream. The layout is
// column-major: every value of the first column is stored contiguously, then
// every value of the second, and so on. One full array per column is read
// before any row is interleaved; trailing bytes beyond rowCount*rowWidth are
// padding and ignored.
func decodeRows(data []byte, schema *Schema, pool *StringPool) []row {
	rowWidth := schema.RowWidth()
	if rowWidth == 0 {
		return nil
	}
	rowCount := len(data) / rowWidth

	columns := make([][]uint32, schema.Len())
	offset := 0
	for c := 0; c < schema.Len(); c++ {
		_, info := schema.at(c)
		width := info.Width()
		cells := make([]uint32, rowCount)
		for i := 0; i < rowCount; i++ {
			if width == 4 {
				cells[i] = binary.LittleEndian.Uint32(data[offset:])
			} else {
				cells[i] = uint32(binary.LittleEndian.Uint16(data[offset:]))
			}
			offset += width
		}
		columns[c] = cells
	}

	rows := make([]row, 0, rowCount)
	for i := 0; i < rowCount; i++ {
		r := row{
			raw:    make([]uint32, schema.Len()),
			values: make([]any, schema.Len()),
		}
		for c := 0; c < schema.Len(); c++ {
			raw := columns[c][i]
			r.raw[c] = raw
			_, info := schema.at(c)
			r.values[c] = decodeCell(raw, info, pool)
		}
		rows = append(rows, r)
	}
	return rows
}

// decodeCell applies the per-cell typing rule: bias removal for integer
// columns, pool dereference for valid string indices, empty string for
// out-of-range non-integer cells, raw pass-through otherwise.
func decodeCell(raw uint32, info ColumnInfo, pool *StringPool) any {
	switch info.Type() {
	case TypeLong:
		if raw != 0 {
			return int64(raw) - longBias
		}
		return int64(0)
	case TypeShort:
		if raw != 0 {
			return int64(raw) - shortBias
		}
		return int64(0)
	}
	if pool.Contains(int(raw)) {
		text, _ := pool.Ref(int(raw))
		return text
	}
	if !info.IsInteger() {
		return ""
	}
	return int64(raw)
}

package msi

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Attribute values as MSI producers emit them
const (
	attrLong   = 0x0104
	attrShort  = 0x0502
	attrString = 0x0D48 // String, declared length 72
	attrKeyStr = 0x2D48 // String, primary key
)

// columnsStream lays out _Columns records (table name index, column number,
// column name index, attributes) column-major, as the installer stores them
func columnsStream(records ...[4]uint16) []byte {
	var b []byte
	for f := 0; f < 4; f++ {
		for _, r := range records {
			b = binary.LittleEndian.AppendUint16(b, r[f])
		}
	}
	return b
}

func TestColumnInfoDerivation(t *testing.T) {
	tests := []struct {
		name      string
		attrs     uint16
		wantType  Type
		wantInt   bool
		wantKey   bool
		wantNull  bool
		wantLen   uint16
		wantWidth int
	}{
		{"long", 0x0104, TypeLong, true, false, false, 4, 4},
		{"short", 0x0502, TypeShort, true, false, false, 2, 2},
		{"nullable long", 0x1104, TypeLong, true, false, true, 4, 4},
		{"key string", 0x2D48, TypeString, false, true, false, 0x48, 2},
		{"localized", 0x0F20, TypeStringLocalized, false, false, false, 0x20, 2},
		{"binary", 0x0900, TypeBinary, false, false, false, 0, 2},
		{"unknown", 0x0301, TypeUnknown, true, false, false, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ColumnInfo{Number: 1, Attributes: tt.attrs}
			assert.Equal(t, tt.wantType, info.Type())
			assert.Equal(t, tt.wantInt, info.IsInteger())
			assert.Equal(t, tt.wantKey, info.IsKey())
			assert.Equal(t, tt.wantNull, info.IsNullable())
			assert.Equal(t, tt.wantLen, info.Length())
			assert.Equal(t, tt.wantWidth, info.Width())
		})
	}
}

func TestDecodeCatalogPreservesColumnOrder(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{
		{"Registry", 0}, // 1
		{"Value", 0},    // 2
		{"Key", 0},      // 3
		{"Root", 0},     // 4
	})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	// deliberately not alphabetical and not by column number
	columns := columnsStream(
		[4]uint16{1, 3, 2, attrString},
		[4]uint16{1, 1, 3, attrKeyStr},
		[4]uint16{1, 2, 4, attrShort},
	)

	catalog := decodeCatalog(columns, pool, zerolog.Nop())
	require.Equal(t, []string{"Registry"}, catalog.Tables())

	schema, ok := catalog.Schema("Registry")
	require.True(t, ok)
	assert.Equal(t, []string{"Value", "Key", "Root"}, schema.Columns())

	info, ok := schema.Info("Key")
	require.True(t, ok)
	assert.Equal(t, uint16(1), info.Number)
	assert.True(t, info.IsKey())
	assert.Equal(t, 6, schema.RowWidth())
}

func TestDecodeCatalogColumnMajorLayout(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{
		{"T", 0}, // 1
		{"A", 0}, // 2
		{"B", 0}, // 3
	})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	// two records, spelled out as the raw on-disk bytes: both table name
	// indices, then both column numbers, then both column name indices, then
	// both attribute words
	columns := u16s(1, 1, 1, 2, 2, 3, attrLong, attrShort)

	catalog := decodeCatalog(columns, pool, zerolog.Nop())
	require.Equal(t, []string{"T"}, catalog.Tables())

	schema, ok := catalog.Schema("T")
	require.True(t, ok)
	require.Equal(t, []string{"A", "B"}, schema.Columns())

	a, _ := schema.Info("A")
	assert.Equal(t, TypeLong, a.Type())
	assert.Equal(t, uint16(1), a.Number)
	b, _ := schema.Info("B")
	assert.Equal(t, TypeShort, b.Type())
	assert.Equal(t, uint16(2), b.Number)
}

func TestDecodeCatalogSkipsBadIndices(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{
		{"Good", 0}, // 1
		{"Col", 0},  // 2
	})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	columns := columnsStream(
		[4]uint16{99, 1, 2, attrLong}, // bad table index
		[4]uint16{1, 1, 99, attrLong}, // bad column index
		[4]uint16{1, 1, 2, attrLong},
	)

	catalog := decodeCatalog(columns, pool, zerolog.Nop())
	require.Equal(t, []string{"Good"}, catalog.Tables())
	schema, _ := catalog.Schema("Good")
	assert.Equal(t, []string{"Col"}, schema.Columns())
}

func TestReconcileTableNames(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{
		{"Known", 0}, // 1
		{"Col", 0},   // 2
		{"Ghost", 0}, // 3
	})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	catalog := decodeCatalog(columnsStream([4]uint16{1, 1, 2, attrLong}), pool, zerolog.Nop())

	var tables []byte
	tables = binary.LittleEndian.AppendUint16(tables, 1)
	tables = binary.LittleEndian.AppendUint16(tables, 3)

	var log bytes.Buffer
	reconcileTableNames(tables, catalog, pool, zerolog.New(&log))

	assert.Equal(t, 1, strings.Count(log.String(), "given but not known"))
	assert.Contains(t, log.String(), "Ghost")
	assert.NotContains(t, log.String(), "known but not given")
}

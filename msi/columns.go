package msi

import (
	"encoding/binary"

	"github.com/rs/zerolog"
)

// decodeCatalog decodes the _Columns stream. It is itself a table stream of
// four u16 columns (table name index, column number, column name index,
// attributes) stored column-major like every other table: all table name
// indices first, then all column numbers, and so on. Both name indices
// resolve through the string pool; a record with a bad index is skipped, not
// fatal. Column insertion order per table is the on-disk column order.
func decodeCatalog(columns []byte, pool *StringPool, logger zerolog.Logger) *Catalog {
	catalog := newCatalog()
	count := len(columns) / 8
	field := func(f, i int) uint16 {
		off := (f*count + i) * 2
		return binary.LittleEndian.Uint16(columns[off : off+2])
	}
	for i := 0; i < count; i++ {
		tblIdx := int(field(0, i))
		number := field(1, i)
		colIdx := int(field(2, i))
		attrs := field(3, i)

		tblName, err := pool.Ref(tblIdx)
		if err != nil {
			logger.Debug().Err(err).Int("record", i).Msg("skipping column record with bad table name index")
			continue
		}
		colName, err := pool.Ref(colIdx)
		if err != nil {
			logger.Debug().Err(err).Int("record", i).Str("table", tblName).Msg("skipping column record with bad column name index")
			continue
		}
		catalog.schema(tblName).add(colName, ColumnInfo{Number: number, Attributes: attrs})
	}
	return catalog
}

// reconcileTableNames decodes the _Tables stream (2-byte pool indices) and
// cross-checks it against the catalog. MSI producers occasionally disagree with
// themselves here, so both directions are diagnostics only.
func reconcileTableNames(tables []byte, catalog *Catalog, pool *StringPool, logger zerolog.Logger) {
	given := make(map[string]bool)
	var order []string
	for off := 0; off+2 <= len(tables); off += 2 {
		idx := int(binary.LittleEndian.Uint16(tables[off : off+2]))
		name, err := pool.Ref(idx)
		if err != nil {
			logger.Debug().Err(err).Int("offset", off).Msg("skipping table name with bad string index")
			continue
		}
		if !given[name] {
			given[name] = true
			order = append(order, name)
		}
	}

	for _, name := range catalog.Tables() {
		if !given[name] {
			logger.Warn().Str("table", name).Msg("table name known but not given")
		}
	}
	for _, name := range order {
		if _, ok := catalog.Schema(name); !ok {
			logger.Warn().Str("table", name).Msg("table name given but not known")
		}
	}
}

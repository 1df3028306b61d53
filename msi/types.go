package msi

// Type identifies the cell type of an MSI table column, derived from the
// column's attribute bits. See https://doxygen.reactos.org/db/de4/msipriv_8h.html
type Type uint16

const (
	TypeUnknown         Type = 0
	TypeLong            Type = 0x104
	TypeShort           Type = 0x502
	TypeBinary          Type = 0x900
	TypeString          Type = 0xD00
	TypeStringLocalized Type = 0xF00
)

func (t Type) String() string {
	switch t {
	case TypeLong:
		return "Long"
	case TypeShort:
		return "Short"
	case TypeBinary:
		return "Binary"
	case TypeString:
		return "String"
	case TypeStringLocalized:
		return "StringLocalized"
	default:
		return "Unknown"
	}
}

// ColumnInfo holds the raw column record from the _Columns stream. Everything
// else about a column is derived from the attribute bits.
type ColumnInfo struct {
	Number     uint16
	Attributes uint16
}

// Type derives the cell type from the attribute bits. Integer columns carry the
// type in the low 12 bits, string columns only in the high nibble of those.
func (c ColumnInfo) Type() Type {
	var t Type
	if c.IsInteger() {
		t = Type(c.Attributes & 0xFFF)
	} else {
		t = Type(c.Attributes & 0xF00)
	}
	switch t {
	case TypeLong, TypeShort, TypeBinary, TypeString, TypeStringLocalized:
		return t
	}
	return TypeUnknown
}

func (c ColumnInfo) IsInteger() bool {
	return c.Attributes&0x0F00 < 0x800
}

func (c ColumnInfo) IsKey() bool {
	return c.Attributes&0x2000 == 0x2000
}

func (c ColumnInfo) IsNullable() bool {
	return c.Attributes&0x1000 == 0x1000
}

// Length returns the declared cell length; for string columns this is the
// declared character limit, not the stored width.
func (c ColumnInfo) Length() uint16 {
	switch c.Type() {
	case TypeLong:
		return 4
	case TypeShort:
		return 2
	}
	return c.Attributes & 0xFF
}

// Width returns the on-disk cell width in bytes. String cells are stored as
// 2-byte pool indices, never inline.
func (c ColumnInfo) Width() int {
	if c.Type() == TypeLong {
		return 4
	}
	return 2
}

// Schema is an ordered mapping from column name to ColumnInfo. Insertion order
// is the on-disk column order and defines the row layout, so it is preserved.
type Schema struct {
	names []string
	cols  map[string]ColumnInfo
}

func newSchema() *Schema {
	return &Schema{cols: make(map[string]ColumnInfo)}
}

func (s *Schema) add(name string, info ColumnInfo) {
	if _, ok := s.cols[name]; !ok {
		s.names = append(s.names, name)
	}
	s.cols[name] = info
}

// Columns returns the column names in on-disk order
func (s *Schema) Columns() []string {
	return s.names
}

// Info returns the metadata for a named column
func (s *Schema) Info(name string) (ColumnInfo, bool) {
	info, ok := s.cols[name]
	return info, ok
}

func (s *Schema) Len() int {
	return len(s.names)
}

func (s *Schema) at(i int) (string, ColumnInfo) {
	name := s.names[i]
	return name, s.cols[name]
}

// RowWidth returns the fixed byte width of one row
func (s *Schema) RowWidth() int {
	width := 0
	for _, name := range s.names {
		width += s.cols[name].Width()
	}
	return width
}

// Catalog holds one Schema per table, in table discovery order
type Catalog struct {
	names  []string
	tables map[string]*Schema
}

func newCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*Schema)}
}

func (c *Catalog) schema(table string) *Schema {
	s, ok := c.tables[table]
	if !ok {
		s = newSchema()
		c.names = append(c.names, table)
		c.tables[table] = s
	}
	return s
}

// Tables returns the table names in discovery order
func (c *Catalog) Tables() []string {
	return c.names
}

// Schema returns the column layout of a named table
func (c *Catalog) Schema(table string) (*Schema, bool) {
	s, ok := c.tables[table]
	return s, ok
}

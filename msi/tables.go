// Package msi decodes the self-describing relational tables embedded in
// Windows Installer packages. It consumes a mapping of named binary streams,
// as produced by a compound-document reader, and produces a mapping of
// artifact paths to bytes: a JSON dump of every decoded table, carved custom
// action payloads and the renamed pass-through streams.
package msi

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/rs/zerolog"

	"github.com/gear6io/msidump/pkg/errors"
)

// Fixed stream names the decoder requires. Per-table data streams are
// "!<TableName>" and optional.
const (
	StreamStringData = "!_StringData"
	StreamStringPool = "!_StringPool"
	StreamColumns    = "!_Columns"
	StreamTables     = "!_Tables"
)

// Decoder turns an MSI stream mapping into an artifact mapping. It is a pure
// in-memory transform: single-threaded, no I/O, input buffers are borrowed and
// never mutated.
type Decoder struct {
	logger zerolog.Logger
}

// NewDecoder creates a decoder that reports diagnostics through logger
func NewDecoder(logger zerolog.Logger) *Decoder {
	return &Decoder{logger: logger.With().Str("component", "msi-decoder").Logger()}
}

// Decode runs the full pipeline: string pool, column catalog, table name
// reconciliation, per-table row decoding with post-processing, reference
// count audit, artifact assembly. Only a missing mandatory stream or a
// truncated string pool is fatal; everything else is a logged diagnostic.
func (d *Decoder) Decode(streams map[string][]byte) (map[string][]byte, error) {
	working := make(map[string][]byte, len(streams))
	for name, data := range streams {
		working[name] = data
	}
	pop := func(name string) ([]byte, bool) {
		data, ok := working[name]
		if ok {
			delete(working, name)
		}
		return data, ok
	}
	mandatory := func(name string) ([]byte, error) {
		data, ok := pop(name)
		if !ok {
			return nil, errors.Newf(ErrMissingStream, "mandatory stream %q is absent", name)
		}
		return data, nil
	}

	stringData, err := mandatory(StreamStringData)
	if err != nil {
		return nil, err
	}
	stringPool, err := mandatory(StreamStringPool)
	if err != nil {
		return nil, err
	}
	columnsData, err := mandatory(StreamColumns)
	if err != nil {
		return nil, err
	}
	tablesData, err := mandatory(StreamTables)
	if err != nil {
		return nil, err
	}

	pool, err := DecodeStringPool(stringData, stringPool, d.logger)
	if err != nil {
		return nil, err
	}
	catalog := decodeCatalog(columnsData, pool, d.logger)
	reconcileTableNames(tablesData, catalog, pool, d.logger)

	dump := newTableDump()
	var derived []artifact
	for _, table := range catalog.Tables() {
		data, ok := pop("!" + table)
		if !ok {
			// catalog entry without a data stream, nothing to decode
			continue
		}
		schema, _ := catalog.Schema(table)
		records, artifacts := d.processTable(table, schema, data, pool)
		dump.set(table, records)
		derived = append(derived, artifacts...)
	}

	pool.CheckRefCounts(d.logger)

	out, err := assemble(working, derived, dump)
	if err != nil {
		return nil, errors.New(ErrTableDump, "failed to serialize table dump", err)
	}
	return out, nil
}

// processTable decodes a table's rows and applies the table-specific
// post-processing steps
func (d *Decoder) processTable(table string, schema *Schema, data []byte, pool *StringPool) ([]*record, []artifact) {
	rows := decodeRows(data, schema, pool)
	records := make([]*record, 0, len(rows))
	var artifacts []artifact

	for _, r := range rows {
		rec := newRecord()
		for c := 0; c < schema.Len(); c++ {
			name, _ := schema.at(c)
			rec.set(name, r.values[c])
		}
		switch table {
		case "MsiFileHash":
			d.reconstructFileHash(rec, r)
		case "CustomAction":
			artifacts = append(artifacts, d.processCustomAction(rec, r, schema, pool)...)
		}
		records = append(records, rec)
	}
	return records, artifacts
}

// reconstructFileHash undoes the installer's sign-bias obfuscation of the four
// stored hash parts and stores the display-ready lowercase hex digest
func (d *Decoder) reconstructFileHash(rec *record, r row) {
	if len(r.raw) < 6 {
		d.logger.Debug().Int("cells", len(r.raw)).Msg("MsiFileHash row too short for digest reconstruction")
		return
	}
	digest := make([]byte, 16)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(digest[i*4:], r.raw[2+i]^longBias)
	}
	rec.set("Hash", hex.EncodeToString(digest))
}

// processCustomAction labels the action with its type description and, for
// inline script and formatted-text actions, carves the embedded payload into a
// derived artifact. A row whose carving fails is skipped, never fatal.
func (d *Decoder) processCustomAction(rec *record, r row, schema *Schema, pool *StringPool) []artifact {
	if len(r.raw) < 2 {
		return nil
	}
	code := r.raw[1] & 0x3F
	if comment, ok := customActionTypes[code]; ok {
		rec.set("Comment", comment)
	}

	switch code {
	case actionJScriptText, actionVBScriptText, actionFormattedText:
	default:
		return nil
	}
	if info, ok := schema.Info("Target"); !ok || info.IsInteger() {
		return nil
	}
	action, ok := rec.get("Action")
	name, isText := action.(string)
	if !ok || !isText || name == "" {
		d.logger.Debug().Uint32("type", code).Msg("custom action without usable action name, skipping payload")
		return nil
	}
	target, ok := rec.get("Target")
	payload, isText := target.(string)
	if !ok || !isText {
		return nil
	}

	path := "Action/" + name
	if code == actionFormattedText {
		carved, found := carveFormatted(payload)
		if !found {
			d.logger.Debug().Str("action", name).Msg("no control-character marker in formatted text, skipping payload")
			return nil
		}
		payload = carved
	} else {
		path += "." + scriptFileExts[code]
	}
	return []artifact{{path: path, data: pool.Encode(payload)}}
}

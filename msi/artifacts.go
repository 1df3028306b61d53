package msi

import (
	"bytes"
	"encoding/json"
	"strings"
)

// TablesArtifact is the fixed path of the serialized table dump
const TablesArtifact = "MsiTables.json"

// Diagnostic and signature streams that are never part of the artifact set
var ignoredStreams = []string{
	"[5]SummaryInformation",
	"[5]DocumentSummaryInformation",
	"[5]DigitalSignature",
	"[5]MsiDigitalSignatureEx",
}

// artifact is a derived output (carved script text, action payload) with its
// own path in the final mapping
type artifact struct {
	path string
	data []byte
}

// record is one decoded table row as an insertion-ordered column name to value
// mapping. encoding/json sorts map keys, so ordered serialization is done by
// hand in MarshalJSON.
type record struct {
	keys []string
	vals map[string]any
}

func newRecord() *record {
	return &record{vals: make(map[string]any)}
}

func (r *record) set(key string, value any) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = value
}

func (r *record) get(key string) (any, bool) {
	v, ok := r.vals[key]
	return v, ok
}

func (r *record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.vals[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// tableDump is the full table name to rows mapping, serialized in table
// discovery order
type tableDump struct {
	keys []string
	rows map[string][]*record
}

func newTableDump() *tableDump {
	return &tableDump{rows: make(map[string][]*record)}
}

func (d *tableDump) set(table string, rows []*record) {
	if _, ok := d.rows[table]; !ok {
		d.keys = append(d.keys, table)
	}
	d.rows[table] = rows
}

func (d *tableDump) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		rows := d.rows[key]
		if rows == nil {
			rows = []*record{}
		}
		v, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// fixPath renames "Binary.<name>" streams to "Binary/<name>" so binary table
// payloads land in their own directory
func fixPath(path string) string {
	prefix, name, found := strings.Cut(path, ".")
	if found && strings.EqualFold(prefix, "binary") {
		return prefix + "/" + name
	}
	return path
}

// assemble merges leftover container streams, derived artifacts and the
// serialized table dump into the final path to bytes mapping. Derived
// artifacts overwrite colliding stream paths; last writer wins.
func assemble(leftover map[string][]byte, artifacts []artifact, dump *tableDump) (map[string][]byte, error) {
	out := make(map[string][]byte, len(leftover)+len(artifacts)+1)

	for _, name := range ignoredStreams {
		delete(leftover, name)
	}
	for path, data := range leftover {
		out[fixPath(path)] = data
	}
	for _, a := range artifacts {
		out[a.path] = a.data
	}

	doc, err := json.MarshalIndent(dump, "", "    ")
	if err != nil {
		return nil, err
	}
	out[TablesArtifact] = doc
	return out, nil
}

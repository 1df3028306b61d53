// Package container extracts the named streams of a compound-document (CFB)
// file, the storage format MSI packages use, and demangles MSI's packed
// stream names. The decoder in package msi consumes its output and knows
// nothing about the container.
package container

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/richardlehane/mscfb"
)

// Compound-document signature
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}

// Sniff reports whether data looks like a compound-document file
func Sniff(data []byte) bool {
	return bytes.HasPrefix(data, cfbMagic)
}

// Stream is one named container stream with its full contents
type Stream struct {
	Name string
	Size int64
	Data []byte
}

// ReadStreams walks the container directory and materializes every stream,
// with demangled names, in directory order.
func ReadStreams(ra io.ReaderAt) ([]Stream, error) {
	doc, err := mscfb.New(ra)
	if err != nil {
		return nil, errors.Wrap(err, "open compound document")
	}

	var streams []Stream
	for entry, err := doc.Next(); err != io.EOF; entry, err = doc.Next() {
		if err != nil {
			return nil, errors.Wrap(err, "walk compound document")
		}
		if entry.Size == 0 {
			// storage entry or empty stream, nothing to carry
			continue
		}
		data := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, data); err != nil {
			return nil, errors.Wrapf(err, "read stream %q", entry.Name)
		}
		streams = append(streams, Stream{
			Name: entryPath(entry),
			Size: entry.Size,
			Data: data,
		})
	}
	return streams, nil
}

// AsMap converts a stream list to the mapping the table decoder consumes.
// Duplicate names keep the last occurrence.
func AsMap(streams []Stream) map[string][]byte {
	out := make(map[string][]byte, len(streams))
	for _, s := range streams {
		out[s.Name] = s.Data
	}
	return out
}

func entryPath(entry *mscfb.File) string {
	parts := make([]string, 0, len(entry.Path)+1)
	for _, p := range entry.Path {
		parts = append(parts, DemangleName(p))
	}
	parts = append(parts, DemangleName(entry.Name))
	return strings.Join(parts, "/")
}

// MSI packs two characters of this alphabet into each UTF code point of a
// stream name; 0x4840 marks a system stream and decodes to "!".
const nameAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz._"

// DemangleName decodes an MSI-mangled stream name. Runes outside the packed
// ranges pass through; control characters are rendered as their decimal value
// in brackets, so the summary streams come out as "[5]SummaryInformation".
func DemangleName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 0x3800 && r < 0x4800:
			r -= 0x3800
			b.WriteByte(nameAlphabet[r&0x3F])
			b.WriteByte(nameAlphabet[r>>6])
		case r >= 0x4800 && r < 0x4840:
			b.WriteByte(nameAlphabet[r-0x4800])
		case r == 0x4840:
			b.WriteByte('!')
		case r < 0x20:
			fmt.Fprintf(&b, "[%d]", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

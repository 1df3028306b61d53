package msi

import (
	"encoding/binary"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/gear6io/msidump/pkg/errors"
)

// poolEntry is one interned string with its bookkeeping counters. The provided
// count comes from the _StringPool stream; the computed count accumulates once
// per successful Ref and is purely diagnostic.
type poolEntry struct {
	raw      []byte
	provided uint16
	computed uint32
}

// StringPool is the decoded _StringData/_StringPool stream pair. Indices are
// 1-based; index 0 is reserved and never valid.
type StringPool struct {
	Codepage uint16
	codec    encoding.Encoding
	entries  []poolEntry
}

// codepageEncoding maps an MSI codepage id to a text codec. Unknown ids fall
// back to Windows-1252, which decodes every byte value, so the fallback is
// lossy but total.
func codepageEncoding(id uint16) (encoding.Encoding, bool) {
	switch id {
	case 874:
		return charmap.Windows874, true
	case 932:
		return japanese.ShiftJIS, true
	case 936:
		return simplifiedchinese.GBK, true
	case 949:
		return korean.EUCKR, true
	case 950:
		return traditionalchinese.Big5, true
	case 1250:
		return charmap.Windows1250, true
	case 1251:
		return charmap.Windows1251, true
	case 1252:
		return charmap.Windows1252, true
	case 1253:
		return charmap.Windows1253, true
	case 1254:
		return charmap.Windows1254, true
	case 1255:
		return charmap.Windows1255, true
	case 1256:
		return charmap.Windows1256, true
	case 1257:
		return charmap.Windows1257, true
	case 1258:
		return charmap.Windows1258, true
	case 65001:
		return encoding.Nop, true
	}
	return charmap.Windows1252, false
}

// DecodeStringPool decodes the stream pair. The pool stream starts with a
// 2-byte codepage id and 2 reserved bytes, followed by (length, refcount)
// records consumed in lockstep with raw bytes from the data stream.
func DecodeStringPool(stringData, stringPool []byte, logger zerolog.Logger) (*StringPool, error) {
	if len(stringPool) < 4 {
		return nil, errors.Newf(ErrPoolTruncated, "string pool header needs 4 bytes, have %d", len(stringPool))
	}
	p := &StringPool{Codepage: binary.LittleEndian.Uint16(stringPool[0:2])}

	codec, ok := codepageEncoding(p.Codepage)
	if !ok {
		logger.Info().Uint16("codepage", p.Codepage).Msg("no codec for codepage, falling back to windows-1252")
	}
	p.codec = codec

	dataOff := 0
	for off := 4; off < len(stringPool); off += 4 {
		if len(stringPool)-off < 4 {
			return nil, errors.Newf(ErrPoolTruncated, "string pool record at offset %d is truncated", off)
		}
		size := int(binary.LittleEndian.Uint16(stringPool[off : off+2]))
		refs := binary.LittleEndian.Uint16(stringPool[off+2 : off+4])
		if dataOff+size > len(stringData) {
			return nil, errors.Newf(ErrPoolTruncated, "string data exhausted at entry %d", len(p.entries)+1)
		}
		p.entries = append(p.entries, poolEntry{
			raw:      stringData[dataOff : dataOff+size],
			provided: refs,
		})
		dataOff += size
	}
	return p, nil
}

// Len returns the number of pool entries
func (p *StringPool) Len() int {
	return len(p.entries)
}

// Contains reports whether index can be dereferenced. It never touches the
// reference counters; callers use it to tell "valid string index" from
// "overlarge integer" before calling Ref.
func (p *StringPool) Contains(index int) bool {
	return index > 0 && index <= len(p.entries)
}

// Ref dereferences a 1-based pool index and bumps its computed reference count
func (p *StringPool) Ref(index int) (string, error) {
	if !p.Contains(index) {
		return "", errors.Newf(ErrStringIndex, "string index %d out of range [1, %d]", index, len(p.entries))
	}
	p.entries[index-1].computed++
	return p.decode(p.entries[index-1].raw), nil
}

// Peek dereferences without touching the computed reference count
func (p *StringPool) Peek(index int) (string, error) {
	if !p.Contains(index) {
		return "", errors.Newf(ErrStringIndex, "string index %d out of range [1, %d]", index, len(p.entries))
	}
	return p.decode(p.entries[index-1].raw), nil
}

func (p *StringPool) decode(raw []byte) string {
	out, err := p.codec.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// Encode converts decoded text back to the pool's codepage, for carved
// artifacts that must match the package's own encoding
func (p *StringPool) Encode(text string) []byte {
	out, err := p.codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return []byte(text)
	}
	return out
}

// CheckRefCounts compares provided and computed reference counts for every
// entry, in index order so the diagnostics stay deterministic. Mismatches are
// reported, never fatal.
func (p *StringPool) CheckRefCounts(logger zerolog.Logger) int {
	mismatches := 0
	for i := range p.entries {
		e := &p.entries[i]
		if uint32(e.provided) == e.computed {
			continue
		}
		mismatches++
		logger.Debug().
			Int("index", i+1).
			Uint32("computed", e.computed).
			Uint16("provided", e.provided).
			Str("string", p.decode(e.raw)).
			Msg("string reference count mismatch")
	}
	if mismatches > 0 {
		logger.Info().Int("count", mismatches).Msg("found incorrect string reference counts")
	}
	return mismatches
}

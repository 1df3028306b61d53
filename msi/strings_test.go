package msi

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gear6io/msidump/pkg/errors"
)

type testString struct {
	text string
	refs uint16
}

// buildPoolStreams lays out a synthetic _StringData/_StringPool pair
func buildPoolStreams(codepage uint16, entries []testString) (data, pool []byte) {
	pool = binary.LittleEndian.AppendUint16(pool, codepage)
	pool = binary.LittleEndian.AppendUint16(pool, 0) // reserved
	for _, e := range entries {
		pool = binary.LittleEndian.AppendUint16(pool, uint16(len(e.text)))
		pool = binary.LittleEndian.AppendUint16(pool, e.refs)
		data = append(data, e.text...)
	}
	return data, pool
}

func TestDecodeStringPool(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{
		{"alpha", 2},
		{"beta", 1},
		{"", 7},
		{"gamma", 0},
	})

	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 4, pool.Len())
	assert.Equal(t, uint16(1252), pool.Codepage)

	for i, want := range []string{"alpha", "beta", "", "gamma"} {
		got, err := pool.Ref(i + 1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, uint16(2), pool.entries[0].provided)
	assert.Equal(t, uint32(1), pool.entries[0].computed)
}

func TestStringPoolRefBounds(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{{"only", 1}})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	for _, index := range []int{0, -1, 2} {
		_, err := pool.Ref(index)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, ErrStringIndex))
	}
	assert.False(t, pool.Contains(0))
	assert.False(t, pool.Contains(2))
	assert.True(t, pool.Contains(1))
	// bounds checks and failed refs must not touch the counters
	assert.Equal(t, uint32(0), pool.entries[0].computed)
}

func TestStringPoolRefCounting(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{{"x", 3}})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := pool.Ref(1)
		require.NoError(t, err)
	}
	_, err = pool.Peek(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), pool.entries[0].computed)
	assert.Equal(t, 0, pool.CheckRefCounts(zerolog.Nop()))
}

func TestStringPoolRefCountMismatch(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{
		{"never", 5},
		{"matched", 0},
	})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	_, err = pool.Ref(2) // computed 1, provided 0
	require.NoError(t, err)
	assert.Equal(t, 2, pool.CheckRefCounts(zerolog.Nop()))
}

func TestDecodeStringPoolTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		pool []byte
	}{
		{"short header", nil, []byte{0xE4, 0x04}},
		{"partial record", nil, []byte{0xE4, 0x04, 0, 0, 5, 0}},
		{"data exhausted", []byte("ab"), func() []byte {
			_, p := buildPoolStreams(1252, []testString{{"abc", 1}})
			return p
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStringPool(tt.data, tt.pool, zerolog.Nop())
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, ErrPoolTruncated))
		})
	}
}

func TestStringPoolCodepageFallback(t *testing.T) {
	// 0xE9 is é in windows-1252, which the unknown codepage falls back to
	data, poolStream := buildPoolStreams(9999, []testString{{"caf\xe9", 1}})

	var log bytes.Buffer
	pool, err := DecodeStringPool(data, poolStream, zerolog.New(&log))
	require.NoError(t, err)

	got, err := pool.Ref(1)
	require.NoError(t, err)
	assert.Equal(t, "café", got)
	assert.Contains(t, log.String(), "falling back")
}

func TestStringPoolUTF8Codepage(t *testing.T) {
	data, poolStream := buildPoolStreams(65001, []testString{{"gr\xc3\xbcn", 1}})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	got, err := pool.Ref(1)
	require.NoError(t, err)
	assert.Equal(t, "grün", got)
}

func TestStringPoolEncodeRoundTrip(t *testing.T) {
	data, poolStream := buildPoolStreams(1252, []testString{{"caf\xe9", 1}})
	pool, err := DecodeStringPool(data, poolStream, zerolog.Nop())
	require.NoError(t, err)

	text, err := pool.Ref(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("caf\xe9"), pool.Encode(text))
}

package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("plane run "), 1000)

	for _, c := range []Codec{None, LZ4, ZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			block, err := AppendBlock(nil, data, c)
			require.NoError(t, err)
			if c != None {
				assert.Less(t, len(block), len(data)/2)
			}

			raw, n, err := ReadBlock(block, c)
			require.NoError(t, err)
			assert.Equal(t, len(block), n)
			assert.Equal(t, data, raw)
		})
	}
}

func TestBlock_Incompressible(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i * 17)
	}

	block, err := AppendBlock([]byte("prefix"), data, LZ4)
	require.NoError(t, err)
	assert.Equal(t, len("prefix")+HeaderSize+len(data), len(block), "stored raw")

	raw, n, err := ReadBlock(block[len("prefix"):], LZ4)
	require.NoError(t, err)
	assert.Equal(t, HeaderSize+len(data), n)
	assert.Equal(t, data, raw)
}

func TestBlock_Sequence(t *testing.T) {
	var buf []byte
	var err error
	parts := [][]byte{bytes.Repeat([]byte{1}, 500), {}, bytes.Repeat([]byte{2, 3}, 300)}
	for _, p := range parts {
		buf, err = AppendBlock(buf, p, ZSTD)
		require.NoError(t, err)
	}

	for _, p := range parts {
		raw, n, err := ReadBlock(buf, ZSTD)
		require.NoError(t, err)
		assert.Equal(t, len(p), len(raw))
		assert.True(t, bytes.Equal(p, raw))
		buf = buf[n:]
	}
	assert.Empty(t, buf)
}

func TestReadBlock_Corrupt(t *testing.T) {
	_, _, err := ReadBlock([]byte{1, 2}, None)
	assert.ErrorIs(t, err, ErrCorruptBlock)

	block, err := AppendBlock(nil, bytes.Repeat([]byte("x"), 1000), ZSTD)
	require.NoError(t, err)
	_, _, err = ReadBlock(block[:len(block)-3], ZSTD)
	assert.ErrorIs(t, err, ErrCorruptBlock)

	_, _, err = ReadBlock(block, None)
	assert.ErrorIs(t, err, ErrCorruptBlock)
}

func TestParseCodec(t *testing.T) {
	for _, c := range []Codec{None, LZ4, ZSTD} {
		got, err := ParseCodec(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	c, err := ParseCodec("")
	require.NoError(t, err)
	assert.Equal(t, None, c)

	_, err = ParseCodec("brotli")
	assert.Error(t, err)
	assert.False(t, Codec(9).Valid())
}

func TestBlockSize(t *testing.T) {
	data := bytes.Repeat([]byte("abcd"), 512)
	for _, c := range []Codec{None, LZ4, ZSTD} {
		block, err := AppendBlock(nil, data, c)
		require.NoError(t, err)

		encoded, raw, err := BlockSize(append(block, 0xff))
		require.NoError(t, err)
		assert.Equal(t, len(block), encoded)
		assert.Equal(t, len(data), raw)

		_, _, err = BlockSize(block[:len(block)-1])
		assert.ErrorIs(t, err, ErrCorruptBlock)
	}
}

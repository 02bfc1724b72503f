package resp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleString(t *testing.T) {
	f, n, err := Parse([]byte("+OK\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, KindSimpleString, f.Kind)
	assert.Equal(t, "OK", string(f.Bytes))
}

func TestParseError(t *testing.T) {
	f, _, err := Parse([]byte("-Error message\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindError, f.Kind)
	assert.Equal(t, "Error message", string(f.Bytes))
}

func TestParseInteger(t *testing.T) {
	f, _, err := Parse([]byte(":1000\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindInteger, f.Kind)
	assert.EqualValues(t, 1000, f.Int)
}

func TestParseBulkString(t *testing.T) {
	f, n, err := Parse([]byte("$5\r\nhello\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, KindBulkString, f.Kind)
	assert.Equal(t, "hello", string(f.Bytes))
}

func TestParseEmptyBulkString(t *testing.T) {
	f, _, err := Parse([]byte("$0\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindBulkString, f.Kind)
	assert.Equal(t, "", string(f.Bytes))
}

func TestParseNullBulkString(t *testing.T) {
	f, _, err := Parse([]byte("$-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindNull, f.Kind)
}

func TestParseNullArray(t *testing.T) {
	f, _, err := Parse([]byte("*-1\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindNull, f.Kind)
}

func TestParseArray(t *testing.T) {
	f, _, err := Parse([]byte("*2\r\n$4\r\necho\r\n$11\r\nhello world\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindArray, f.Kind)
	require.Len(t, f.Elems, 2)
	assert.Equal(t, "echo", string(f.Elems[0].Bytes))
	assert.Equal(t, "hello world", string(f.Elems[1].Bytes))
}

func TestParseEmptyArray(t *testing.T) {
	f, _, err := Parse([]byte("*0\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindArray, f.Kind)
	assert.Len(t, f.Elems, 0)
}

func TestParseInvalidLeadingByte(t *testing.T) {
	f, _, err := Parse([]byte("bad string\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindError, f.Kind)
}

func TestParseIncompleteWaitsForMoreBytes(t *testing.T) {
	_, _, err := Parse([]byte("$5\r\nhel"))
	assert.ErrorIs(t, err, ErrIncomplete)

	_, _, err = Parse([]byte("*2\r\n$3\r\nfoo\r\n"))
	assert.ErrorIs(t, err, ErrIncomplete)

	_, _, err = Parse([]byte("+OK"))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestParseArrayChildErrorAborts(t *testing.T) {
	f, _, err := Parse([]byte("*2\r\n$3\r\nfoo\r\n:bad\r\n"))
	require.NoError(t, err)
	assert.Equal(t, KindError, f.Kind)
}

func TestParseConsumesOnlyOnePrefixPipelined(t *testing.T) {
	buf := []byte("+OK\r\n+ALSO\r\n")
	f, n, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(f.Bytes))

	f2, _, err := Parse(buf[n:])
	require.NoError(t, err)
	assert.Equal(t, "ALSO", string(f2.Bytes))
}

func TestRoundTripAllVariants(t *testing.T) {
	frames := []Frame{
		SimpleString([]byte("hello world")),
		Error("Error message"),
		Integer(1000),
		Integer(-1000),
		BulkString([]byte("hello")),
		BulkString([]byte("")),
		Null,
		Array([]Frame{BulkString([]byte("a")), Integer(1), Null}),
		Array(nil),
	}

	for _, f := range frames {
		var buf bytes.Buffer
		require.NoError(t, Serialize(&buf, f))

		got, _, err := Parse(buf.Bytes())
		require.NoError(t, err)
		assertFrameEqual(t, f, got)
	}
}

func assertFrameEqual(t *testing.T, want, got Frame) {
	t.Helper()
	require.Equal(t, want.Kind, got.Kind)
	switch want.Kind {
	case KindSimpleString, KindError, KindBulkString:
		assert.Equal(t, string(want.Bytes), string(got.Bytes))
	case KindInteger:
		assert.Equal(t, want.Int, got.Int)
	case KindArray:
		require.Len(t, got.Elems, len(want.Elems))
		for i := range want.Elems {
			assertFrameEqual(t, want.Elems[i], got.Elems[i])
		}
	}
}

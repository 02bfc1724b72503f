package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrInsertCreatesNilEntry(t *testing.T) {
	s := New()
	e, err := s.GetOrInsert("k", NoExpiry(), ExistenceNoCheck)
	require.NoError(t, err)
	assert.True(t, e.IsNil())
	assert.True(t, s.Exists("k"))
}

func TestGetOrInsertNXThenNXFails(t *testing.T) {
	s := New()
	_, err := s.GetOrInsert("k", NoExpiry(), ExistenceMustNotExist)
	require.NoError(t, err)

	_, err = s.GetOrInsert("k", NoExpiry(), ExistenceMustNotExist)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestGetOrInsertXXOnAbsentFails(t *testing.T) {
	s := New()
	_, err := s.GetOrInsert("missing", NoExpiry(), ExistenceMustExist)
	assert.ErrorIs(t, err, ErrDoesNotExist)
	assert.False(t, s.Exists("missing"))
}

func TestKeepTTLPreservesExpiry(t *testing.T) {
	s := New()
	deadline := time.Now().Add(time.Hour)
	_, err := s.GetOrInsert("k", ExpireAt(deadline), ExistenceNoCheck)
	require.NoError(t, err)

	_, err = s.GetOrInsert("k", KeepTTL(), ExistenceNoCheck)
	require.NoError(t, err)

	ttl, ok := s.TTL("k")
	require.True(t, ok)
	assert.Greater(t, ttl, 59*time.Minute)
}

func TestExpiryNoneClearsExpiryEvenIfExistenceFails(t *testing.T) {
	s := New()
	deadline := time.Now().Add(time.Hour)
	_, err := s.GetOrInsert("k", ExpireAt(deadline), ExistenceNoCheck)
	require.NoError(t, err)

	// The existence check fails (key already exists, NX requested) but the
	// expiry-clearing update is still applied first - matches source order.
	_, err = s.GetOrInsert("k", NoExpiry(), ExistenceMustNotExist)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	ttl, ok := s.TTL("k")
	require.True(t, ok)
	assert.Equal(t, time.Duration(-1), ttl)
}

func TestGetExpiresLazily(t *testing.T) {
	s := New()
	_, err := s.GetOrInsert("k", ExpireAt(time.Now().Add(-time.Millisecond)), ExistenceNoCheck)
	require.NoError(t, err)

	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.False(t, s.Exists("k")) // already removed by the Get above
}

func TestExistsDoesNotConsultExpiry(t *testing.T) {
	s := New()
	_, err := s.GetOrInsert("k", ExpireAt(time.Now().Add(-time.Millisecond)), ExistenceNoCheck)
	require.NoError(t, err)

	// Exists reports true even though the key is logically expired, per the
	// documented source asymmetry - only Get/TTL/ExpireKeys evict.
	assert.True(t, s.Exists("k"))
}

func TestExpireKeysIsIdempotent(t *testing.T) {
	s := New()
	_, err := s.GetOrInsert("k", ExpireAt(time.Now().Add(-time.Millisecond)), ExistenceNoCheck)
	require.NoError(t, err)

	s.ExpireKeys()
	assert.False(t, s.Exists("k"))

	// Second call at the same instant changes nothing further.
	s.ExpireKeys()
	assert.False(t, s.Exists("k"))
	assert.Equal(t, 0, s.Len())
}

func TestDeleteRemovesFromBothIndices(t *testing.T) {
	s := New()
	_, err := s.GetOrInsert("k", ExpireAt(time.Now().Add(time.Hour)), ExistenceNoCheck)
	require.NoError(t, err)

	assert.True(t, s.Delete("k"))
	assert.False(t, s.Delete("k"))
	_, ok := s.TTL("k")
	assert.False(t, ok)
}

func TestWrongTypeAccessors(t *testing.T) {
	s := New()
	e, err := s.GetOrInsert("k", NoExpiry(), ExistenceNoCheck)
	require.NoError(t, err)
	e.SetList(NewList())

	_, err = e.AsString()
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestStringIncrBy(t *testing.T) {
	v := StringFromBytes([]byte("10"))
	n, err := v.IncrBy(5)
	require.NoError(t, err)
	assert.EqualValues(t, 15, n)
	assert.Equal(t, "15", string(v.ToBytes()))
}

func TestStringIncrByNegativeBytes(t *testing.T) {
	// Bug-fix relative to the source: a negative string value must parse.
	v := StringFromBytes([]byte("-5"))
	n, err := v.IncrBy(1)
	require.NoError(t, err)
	assert.EqualValues(t, -4, n)
}

func TestStringIncrByInvalid(t *testing.T) {
	v := StringFromBytes([]byte("not a number"))
	_, err := v.IncrBy(1)
	assert.ErrorIs(t, err, ErrNotInteger)
}

func TestStringIncrByOverflow(t *testing.T) {
	v := StringFromInt(9223372036854775807)
	_, err := v.IncrBy(1)
	assert.ErrorIs(t, err, ErrNotInteger)
}

func TestListPushOrder(t *testing.T) {
	l := NewList()
	l.PushFront([]byte("a"))
	l.PushFront([]byte("b"))
	assert.Equal(t, 2, l.Len())
	got := l.Slice()
	assert.Equal(t, "b", string(got[0]))
	assert.Equal(t, "a", string(got[1]))
}

func TestSetNXTwiceLeavesFirstValue(t *testing.T) {
	s := New()
	e1, err := s.GetOrInsert("k", NoExpiry(), ExistenceMustNotExist)
	require.NoError(t, err)
	e1.SetString(StringFromBytes([]byte("v")))

	_, err = s.GetOrInsert("k", NoExpiry(), ExistenceMustNotExist)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	e, ok := s.Get("k")
	require.True(t, ok)
	sv, err := e.AsString()
	require.NoError(t, err)
	assert.Equal(t, "v", string(sv.ToBytes()))
}

package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDRef(t *testing.T) {
	ref := NewIDRef(42)

	assert.Equal(t, RefKindID, ref.Kind)
	assert.Equal(t, "42", ref.Value)
	assert.False(t, ref.IsLegacy())
	assert.False(t, ref.IsZero())
	assert.Equal(t, "id:42", ref.String())

	id, ok := ref.SequentialID()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = ref.Key()
	assert.False(t, ok)
}

func TestNewKeyRef(t *testing.T) {
	key := uuid.New()
	ref := NewKeyRef(key)

	assert.Equal(t, RefKindKey, ref.Kind)
	assert.Equal(t, key.String(), ref.Value)
	assert.True(t, ref.IsLegacy())

	got, ok := ref.Key()
	require.True(t, ok)
	assert.Equal(t, key, got)

	_, ok = ref.SequentialID()
	assert.False(t, ok)
}

func TestParseEntityRef(t *testing.T) {
	t.Run("NumericValue", func(t *testing.T) {
		ref, err := ParseEntityRef("7")
		require.NoError(t, err)
		assert.Equal(t, RefKindID, ref.Kind)

		id, ok := ref.SequentialID()
		require.True(t, ok)
		assert.Equal(t, int64(7), id)
	})

	t.Run("ZeroIsSequential", func(t *testing.T) {
		ref, err := ParseEntityRef("0")
		require.NoError(t, err)
		assert.Equal(t, RefKindID, ref.Kind)
	})

	t.Run("UUIDValue", func(t *testing.T) {
		key := uuid.New()
		ref, err := ParseEntityRef(key.String())
		require.NoError(t, err)
		assert.Equal(t, RefKindKey, ref.Kind)

		got, ok := ref.Key()
		require.True(t, ok)
		assert.Equal(t, key, got)
	})

	t.Run("NumericPrecedenceOverKey", func(t *testing.T) {
		// A purely numeric value always classifies as a sequential id,
		// never as a storage key.
		ref, err := ParseEntityRef("123456789012")
		require.NoError(t, err)
		assert.Equal(t, RefKindID, ref.Kind)
	})

	t.Run("NegativeNumberRejected", func(t *testing.T) {
		_, err := ParseEntityRef("-5")
		assert.Error(t, err)
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		_, err := ParseEntityRef("not-an-identifier")
		assert.Error(t, err)
	})

	t.Run("EmptyRejected", func(t *testing.T) {
		_, err := ParseEntityRef("")
		assert.Error(t, err)
	})
}

func TestEntityRefIsZero(t *testing.T) {
	var ref EntityRef
	assert.True(t, ref.IsZero())
	assert.False(t, NewIDRef(1).IsZero())
}

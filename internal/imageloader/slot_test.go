package imageloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotSetRevokesPrevious(t *testing.T) {
	reg := NewRegistry()
	s := NewSlot(reg)

	first := reg.Create(1, "image/jpeg", []byte("a"))
	second := reg.Create(1, "image/jpeg", []byte("b"))

	s.Set(first)
	assert.Equal(t, first.URL(), s.URL())
	s.Set(second)

	assert.True(t, first.Revoked())
	assert.Nil(t, first.Data())
	assert.False(t, second.Revoked())
	assert.Equal(t, 1, reg.Live())

	_, ok := reg.Lookup(first.Key())
	assert.False(t, ok)
}

func TestSlotClear(t *testing.T) {
	reg := NewRegistry()
	s := NewSlot(reg)
	s.Set(reg.Create(1, "image/jpeg", []byte("a")))

	s.Clear()
	assert.Nil(t, s.Handle())
	assert.Equal(t, "", s.URL())
	assert.Equal(t, 0, reg.Live())
}

func TestRevokingOneSlotLeavesOthersLive(t *testing.T) {
	reg := NewRegistry()
	a, b := NewSlot(reg), NewSlot(reg)
	ha := reg.Create(1, "image/jpeg", []byte("a"))
	hb := reg.Create(2, "image/jpeg", []byte("b"))
	a.Set(ha)
	b.Set(hb)

	a.Set(reg.Create(1, "image/jpeg", []byte("a2")))
	a.Clear()

	assert.False(t, hb.Revoked())
	assert.Equal(t, []byte("b"), hb.Data())
	got, ok := reg.Lookup(hb.Key())
	assert.True(t, ok)
	assert.Same(t, hb, got)
	assert.Equal(t, 1, reg.Live())
}

func TestRevokeIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	h := reg.Create(1, "image/jpeg", []byte("a"))
	reg.Revoke(h)
	reg.Revoke(h)
	reg.Revoke(nil)
	assert.Equal(t, 0, reg.Live())
}

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageReadsZeroWhenUntouched(t *testing.T) {
	s := NewStorage(1024)

	v, err := s.Read(42)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0), v)
}

func TestStorageRoundTrip(t *testing.T) {
	s := NewStorage(1 << 20)

	assert.NoError(t, s.Write(0x1234, 0xdeadbeef))
	assert.NoError(t, s.Write(0xfffff, 0x1))

	v, err := s.Read(0x1234)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v)

	v, err = s.Read(0xfffff)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x1), v)
}

func TestStorageRejectsOutOfRange(t *testing.T) {
	s := NewStorage(1024)

	_, err := s.Read(1024)
	assert.Error(t, err)
	assert.Error(t, s.Write(1024, 1))
}

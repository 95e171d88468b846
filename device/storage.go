package device

import (
	"fmt"
	"sync"
)

// wordsPerUnit is the allocation granularity of the backing storage. Units
// are materialized on first write so a mostly-empty device costs almost
// nothing.
const wordsPerUnit = 1024

// A Storage is a sparse array of 32-bit words.
type Storage struct {
	sync.Mutex

	capacity uint64
	units    map[uint64][]uint32
}

// NewStorage creates a Storage that holds capacity words.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		capacity: capacity,
		units:    make(map[uint64][]uint32),
	}
}

// Capacity returns the number of words the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// Read returns the word at addr. Words never written read as zero.
func (s *Storage) Read(addr uint64) (uint32, error) {
	if addr >= s.capacity {
		return 0, fmt.Errorf("word address %#x out of range", addr)
	}

	s.Lock()
	defer s.Unlock()

	unit, ok := s.units[addr/wordsPerUnit]
	if !ok {
		return 0, nil
	}
	return unit[addr%wordsPerUnit], nil
}

// Write stores a word at addr.
func (s *Storage) Write(addr uint64, v uint32) error {
	if addr >= s.capacity {
		return fmt.Errorf("word address %#x out of range", addr)
	}

	s.Lock()
	defer s.Unlock()

	unit, ok := s.units[addr/wordsPerUnit]
	if !ok {
		unit = make([]uint32, wordsPerUnit)
		s.units[addr/wordsPerUnit] = unit
	}
	unit[addr%wordsPerUnit] = v
	return nil
}

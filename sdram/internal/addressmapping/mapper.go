// Package addressmapping decomposes flat controller-side addresses into the
// row, bank, and column fields of the memory device.
package addressmapping

import "log"

// A Location is the position of a word in the memory device.
type Location struct {
	Row    uint64
	Bank   uint64
	Column uint64
}

// A Mapper converts a flat address to a Location.
type Mapper interface {
	Map(addr uint64) Location
	Flatten(loc Location) uint64
}

// The external address carries the bank bits between the column bits and the
// row bits, so that sequential accesses walk a full page, then the other
// banks, and only then open a new row. The whole thing is additionally
// shifted left by the mask-bit offset so that sub-word interfaces address
// whole native words.
type mapperImpl struct {
	columnOffset uint
	bankOffset   uint
	rowOffset    uint

	columnMask uint64
	bankMask   uint64
	rowMask    uint64
}

func (m *mapperImpl) Map(addr uint64) Location {
	return Location{
		Column: (addr >> m.columnOffset) & m.columnMask,
		Bank:   (addr >> m.bankOffset) & m.bankMask,
		Row:    (addr >> m.rowOffset) & m.rowMask,
	}
}

func (m *mapperImpl) Flatten(loc Location) uint64 {
	return loc.Column<<m.columnOffset |
		loc.Bank<<m.bankOffset |
		loc.Row<<m.rowOffset
}

// Builder builds Mappers.
type Builder struct {
	columnWidth   int
	bankWidth     int
	rowWidth      int
	maskBitOffset int
}

// MakeBuilder returns a Builder with zero widths. All three widths must be
// set before Build is called.
func MakeBuilder() Builder {
	return Builder{}
}

// WithColumnWidth sets the number of column address bits.
func (b Builder) WithColumnWidth(w int) Builder {
	b.columnWidth = w
	return b
}

// WithBankWidth sets the number of bank address bits.
func (b Builder) WithBankWidth(w int) Builder {
	b.bankWidth = w
	return b
}

// WithRowWidth sets the number of row address bits.
func (b Builder) WithRowWidth(w int) Builder {
	b.rowWidth = w
	return b
}

// WithMaskBitOffset sets the number of low address bits consumed by the
// external data-width adaptation.
func (b Builder) WithMaskBitOffset(offset int) Builder {
	b.maskBitOffset = offset
	return b
}

// Build creates the Mapper.
func (b Builder) Build() Mapper {
	if b.columnWidth <= 0 || b.bankWidth <= 0 || b.rowWidth <= 0 {
		log.Panic("column, bank, and row widths must all be positive")
	}

	m := &mapperImpl{
		columnOffset: uint(b.maskBitOffset),
		bankOffset:   uint(b.maskBitOffset + b.columnWidth),
		rowOffset:    uint(b.maskBitOffset + b.columnWidth + b.bankWidth),
		columnMask:   (1 << uint(b.columnWidth)) - 1,
		bankMask:     (1 << uint(b.bankWidth)) - 1,
		rowMask:      (1 << uint(b.rowWidth)) - 1,
	}

	return m
}

package bitpack

import "fmt"

// PackedIntArray is a dense array of numElems integers, each exactly
// bitsPerElem bits wide, packed MSB-first into store. Grounded on
// genometools' core/bitpackarray.h (BitPackArray).
type PackedIntArray struct {
	store       BitString
	numElems    uint64
	bitsPerElem uint32
}

// NewPackedIntArray allocates a PackedIntArray for numElems values of
// bitsPerElem bits each. bitsPerElem must not exceed 64.
func NewPackedIntArray(bitsPerElem uint32, numElems uint64) *PackedIntArray {
	if bitsPerElem > 64 {
		panic(fmt.Sprintf("bitpack: bitsPerElem %d exceeds 64", bitsPerElem))
	}
	return &PackedIntArray{
		store:       NewBitString(uint64(bitsPerElem) * numElems),
		numElems:    numElems,
		bitsPerElem: bitsPerElem,
	}
}

// Len returns the number of elements.
func (a *PackedIntArray) Len() uint64 { return a.numElems }

// BitsPerElem returns the fixed per-element width.
func (a *PackedIntArray) BitsPerElem() uint32 { return a.bitsPerElem }

// Store writes v (truncated to bitsPerElem bits) at index.
func (a *PackedIntArray) Store(index uint64, v uint64) {
	if index >= a.numElems {
		panic("bitpack: PackedIntArray index out of range")
	}
	storeBits(a.store, index*uint64(a.bitsPerElem), uint64(a.bitsPerElem), v)
}

// Get reads the value at index.
func (a *PackedIntArray) Get(index uint64) uint64 {
	if index >= a.numElems {
		panic("bitpack: PackedIntArray index out of range")
	}
	return getBits(a.store, index*uint64(a.bitsPerElem), uint64(a.bitsPerElem))
}

// StoreSigned writes the two's-complement pattern of v at index.
func (a *PackedIntArray) StoreSigned(index uint64, v int64) {
	if index >= a.numElems {
		panic("bitpack: PackedIntArray index out of range")
	}
	StoreInt64(a.store, index*uint64(a.bitsPerElem), uint64(a.bitsPerElem), v)
}

// GetSigned reads and sign-extends the value at index.
func (a *PackedIntArray) GetSigned(index uint64) int64 {
	if index >= a.numElems {
		panic("bitpack: PackedIntArray index out of range")
	}
	return GetInt64(a.store, index*uint64(a.bitsPerElem), uint64(a.bitsPerElem))
}

// Bytes exposes the raw backing bitstring, e.g. for serialization.
func (a *PackedIntArray) Bytes() BitString { return a.store }

// Package bytebuf is a growable little-endian byte buffer with in-place
// patching, grounded on the original's ByteArray (src/utilities/ByteArray.hpp)
// and generalised from lcox74-bfcc's pkg/amd64/encoder.go write-LE helpers.
// internal/codegen emits into one of these for the text section and one for
// the data section, reserving placeholder bytes for displacements/relative
// offsets it can only compute once the whole function has been emitted,
// then patches them via Patch/PatchUint32.
package bytebuf

import "encoding/binary"

type Buffer struct {
	data []byte
}

func New() *Buffer { return &Buffer{} }

func (b *Buffer) Len() int { return len(b.data) }

func (b *Buffer) Bytes() []byte { return b.data }

// PutBytes appends raw bytes, e.g. an opcode/REX/ModRM sequence.
func (b *Buffer) PutBytes(bs ...byte) { b.data = append(b.data, bs...) }

// PutUint32 appends a 32-bit little-endian immediate/displacement.
func (b *Buffer) PutUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// PutUint64 appends a 64-bit little-endian immediate.
func (b *Buffer) PutUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// PutString appends a string's raw bytes (used for the data section).
func (b *Buffer) PutString(s string) { b.data = append(b.data, s...) }

// Patch overwrites a single already-written byte — used for the one-byte
// short-jump displacement fixup.
func (b *Buffer) Patch(index int, v byte) { b.data[index] = v }

// PatchUint32 overwrites 4 already-written bytes with a little-endian
// value — used for data references and call-site relative offsets.
func (b *Buffer) PatchUint32(index int, v uint32) {
	binary.LittleEndian.PutUint32(b.data[index:index+4], v)
}

// Package elfimage writes the minimal, section-header-free ELF64
// executable spec §4.8 describes, adapted from lcox74-bfcc's
// pkg/elf/elf.go Builder — generalised from one code segment plus one BSS
// segment to one code segment plus one data segment, both carrying file
// content, at the original project's fixed virtual addresses
// (src/backend/elf/ELF.hpp / ELF.cpp).
package elfimage

import (
	"encoding/binary"
	"os"
)

const (
	elfMag0     = 0x7f
	elfClass64  = 2
	elfData2LSB = 1
	evCurrent   = 1
	elfOSABI    = 0

	etExec    = 2
	emX86_64  = 62
	ptLoad    = 1
	pfX       = 0x1
	pfW       = 0x2
	pfR       = 0x4
	pfRWX     = pfX | pfW | pfR
	ehSize    = 0x40
	phEntSize = 0x38
	phNum     = 2

	// VirtText and VirtData are the fixed virtual base addresses spec §4.8
	// names; TextOffset is the header+program-header size (0x40 + 2*0x38).
	VirtText   = 0x400000
	VirtData   = 0x600000
	PageAlign  = 0x200000
	TextOffset = ehSize + phNum*phEntSize
)

// Build assembles the final ELF64 byte image from the finished text and
// data sections (spec §4.8 layout: header, two PT_LOAD program headers,
// text, data — no section headers).
func Build(text, data []byte) []byte {
	out := make([]byte, 0, TextOffset+len(text)+len(data))
	out = appendHeader(out)
	out = appendTextPhdr(out, uint64(len(text)))
	out = appendDataPhdr(out, uint64(len(text)), uint64(len(data)))
	out = append(out, text...)
	out = append(out, data...)
	return out
}

// WriteFile builds the image and writes it to path with mode 0777, the
// original's ELF::writeELF behaviour.
func WriteFile(path string, text, data []byte) error {
	img := Build(text, data)
	if err := os.WriteFile(path, img, 0o777); err != nil {
		return err
	}
	return os.Chmod(path, 0o777)
}

func appendHeader(out []byte) []byte {
	var ident [16]byte
	ident[0] = elfMag0
	ident[1] = 'E'
	ident[2] = 'L'
	ident[3] = 'F'
	ident[4] = elfClass64
	ident[5] = elfData2LSB
	ident[6] = evCurrent
	ident[7] = elfOSABI

	out = append(out, ident[:]...)
	out = le16(out, etExec)
	out = le16(out, emX86_64)
	out = le32(out, evCurrent)
	out = le64(out, uint64(VirtText+TextOffset)) // e_entry
	out = le64(out, 0x40)                        // e_phoff
	out = le64(out, 0)                           // e_shoff
	out = le32(out, 0)                           // e_flags
	out = le16(out, ehSize)
	out = le16(out, phEntSize)
	out = le16(out, phNum)
	out = le16(out, 0) // e_shentsize
	out = le16(out, 0) // e_shnum
	out = le16(out, 0) // e_shstrndx
	return out
}

func appendTextPhdr(out []byte, textSize uint64) []byte {
	out = le32(out, ptLoad)
	out = le32(out, pfRWX)
	out = le64(out, 0)               // p_offset
	out = le64(out, uint64(VirtText)) // p_vaddr
	out = le64(out, uint64(VirtText)) // p_paddr
	out = le64(out, textSize)        // p_filesz
	out = le64(out, textSize)        // p_memsz
	out = le64(out, uint64(PageAlign))
	return out
}

func appendDataPhdr(out []byte, textSize, dataSize uint64) []byte {
	offset := uint64(TextOffset) + textSize
	vaddr := uint64(VirtData) + offset
	out = le32(out, ptLoad)
	out = le32(out, pfRWX)
	out = le64(out, offset)
	out = le64(out, vaddr)
	out = le64(out, vaddr)
	out = le64(out, dataSize)
	out = le64(out, dataSize)
	out = le64(out, uint64(PageAlign))
	return out
}

func le16(out []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(out, b[:]...)
}

func le32(out []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}

func le64(out []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(out, b[:]...)
}

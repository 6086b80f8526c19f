package elfimage

import (
	"encoding/binary"
	"testing"
)

func TestBuildHeaderFields(t *testing.T) {
	text := []byte{0x90, 0x90}
	data := []byte{0x01, 0x02, 0x03}
	img := Build(text, data)

	if img[0] != elfMag0 || img[1] != 'E' || img[2] != 'L' || img[3] != 'F' {
		t.Fatalf("bad magic: % x", img[0:4])
	}
	if img[4] != elfClass64 {
		t.Errorf("EI_CLASS = %d, want ELFCLASS64", img[4])
	}

	eType := binary.LittleEndian.Uint16(img[16:18])
	if eType != etExec {
		t.Errorf("e_type = %d, want ET_EXEC", eType)
	}
	eMachine := binary.LittleEndian.Uint16(img[18:20])
	if eMachine != emX86_64 {
		t.Errorf("e_machine = %d, want EM_X86_64", eMachine)
	}
	entry := binary.LittleEndian.Uint64(img[24:32])
	if entry != uint64(VirtText+TextOffset) {
		t.Errorf("e_entry = %#x, want %#x", entry, VirtText+TextOffset)
	}
	phoff := binary.LittleEndian.Uint64(img[32:40])
	if phoff != 0x40 {
		t.Errorf("e_phoff = %#x, want 0x40", phoff)
	}
}

func TestBuildLayoutLength(t *testing.T) {
	text := make([]byte, 16)
	data := make([]byte, 8)
	img := Build(text, data)
	want := TextOffset + len(text) + len(data)
	if len(img) != want {
		t.Errorf("len(img) = %d, want %d", len(img), want)
	}
}

func TestBuildDataSegmentOffsetFollowsText(t *testing.T) {
	text := make([]byte, 10)
	data := []byte{0xaa}
	img := Build(text, data)

	// second phdr starts right after the header and the first phdr
	secondPhdrOffset := ehSize + phEntSize
	pOffset := binary.LittleEndian.Uint64(img[secondPhdrOffset+8 : secondPhdrOffset+16])
	wantOffset := uint64(TextOffset + len(text))
	if pOffset != wantOffset {
		t.Errorf("data p_offset = %#x, want %#x", pOffset, wantOffset)
	}
}

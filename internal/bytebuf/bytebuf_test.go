package bytebuf

import (
	"bytes"
	"testing"
)

func TestPutBytesAndLen(t *testing.T) {
	b := New()
	b.PutBytes(0x48, 0x89, 0xc0)
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	if !bytes.Equal(b.Bytes(), []byte{0x48, 0x89, 0xc0}) {
		t.Errorf("Bytes() = % x", b.Bytes())
	}
}

func TestPutUint32LittleEndian(t *testing.T) {
	b := New()
	b.PutUint32(0x11223344)
	want := []byte{0x44, 0x33, 0x22, 0x11}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("got % x, want % x", b.Bytes(), want)
	}
}

func TestPutUint64LittleEndian(t *testing.T) {
	b := New()
	b.PutUint64(0x1122334455667788)
	want := []byte{0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("got % x, want % x", b.Bytes(), want)
	}
}

func TestPutString(t *testing.T) {
	b := New()
	b.PutString("hi")
	if string(b.Bytes()) != "hi" {
		t.Errorf("got %q, want %q", b.Bytes(), "hi")
	}
}

func TestPatchOverwritesSingleByte(t *testing.T) {
	b := New()
	b.PutBytes(0x00, 0x00)
	b.Patch(1, 0xff)
	if !bytes.Equal(b.Bytes(), []byte{0x00, 0xff}) {
		t.Errorf("got % x", b.Bytes())
	}
}

func TestPatchUint32OverwritesFourBytes(t *testing.T) {
	b := New()
	b.PutUint32(0)
	b.PatchUint32(0, 0xdeadbeef)
	want := []byte{0xef, 0xbe, 0xad, 0xde}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("got % x, want % x", b.Bytes(), want)
	}
}

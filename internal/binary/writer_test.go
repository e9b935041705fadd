package binary

import (
	"bytes"
	"testing"
)

func TestNewWriter(t *testing.T) {
	buf := NewBuffer(nil)
	w := NewWriter(buf)

	if w.Pos() != 0 {
		t.Errorf("expected pos 0, got %d", w.Pos())
	}
}

func TestWriterAt(t *testing.T) {
	buf := NewBuffer(nil)
	w := NewWriter(buf).At(100)

	if w.Pos() != 100 {
		t.Errorf("expected pos 100, got %d", w.Pos())
	}
}

func TestWriteBytes(t *testing.T) {
	buf := NewBuffer(nil)
	w := NewWriter(buf)

	data := []byte{1, 2, 3, 4, 5}
	if err := w.WriteBytes(data); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}
	if w.Pos() != 5 {
		t.Errorf("expected pos 5, got %d", w.Pos())
	}
	if !bytes.Equal(buf.Bytes(), data) {
		t.Errorf("expected %v, got %v", data, buf.Bytes())
	}
}

func TestWriteIntegers(t *testing.T) {
	buf := NewBuffer(nil)
	w := NewWriter(buf)

	if err := w.WriteUint8(0x01); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteUint16(0x0203); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteUint32(0x04050607); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteInt16(-1); err != nil {
		t.Fatal(err)
	}

	expected := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0xFF, 0xFF}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestWriteUint64(t *testing.T) {
	buf := NewBuffer(nil)
	w := NewWriter(buf)

	if err := w.WriteUint64(0x0102030405060708); err != nil {
		t.Fatalf("WriteUint64 failed: %v", err)
	}
	expected := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestWritePadding(t *testing.T) {
	buf := NewBuffer(nil)
	w := NewWriter(buf)

	if err := w.WriteBytes([]byte("END")); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePadding(2880, ' '); err != nil {
		t.Fatalf("WritePadding failed: %v", err)
	}
	if w.Pos() != 2880 {
		t.Errorf("expected pos 2880, got %d", w.Pos())
	}
	if !bytes.Equal(buf.Bytes()[3:], bytes.Repeat([]byte{' '}, 2877)) {
		t.Error("padding is not all spaces")
	}

	// Already aligned: no-op.
	if err := w.WritePadding(2880, ' '); err != nil {
		t.Fatal(err)
	}
	if w.Pos() != 2880 {
		t.Errorf("aligned padding moved to %d", w.Pos())
	}
}

func TestWriteZeros(t *testing.T) {
	buf := NewBuffer([]byte{0xFF, 0xFF, 0xFF})
	w := NewWriter(buf)

	if err := w.WriteZeros(2); err != nil {
		t.Fatalf("WriteZeros failed: %v", err)
	}
	expected := []byte{0x00, 0x00, 0xFF}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestWriterRoundTrip(t *testing.T) {
	buf := NewBuffer(nil)
	w := NewWriter(buf)

	_ = w.WriteInt16(-12345)
	_ = w.WriteInt32(-123456789)
	_ = w.WriteInt64(-1234567890123)
	_ = w.WriteFloat32(3.25)
	_ = w.WriteFloat64(-1e300)

	r := NewReader(buf)
	if v, _ := r.ReadInt16(); v != -12345 {
		t.Errorf("int16: got %d", v)
	}
	if v, _ := r.ReadInt32(); v != -123456789 {
		t.Errorf("int32: got %d", v)
	}
	if v, _ := r.ReadInt64(); v != -1234567890123 {
		t.Errorf("int64: got %d", v)
	}
	if v, _ := r.ReadFloat32(); v != 3.25 {
		t.Errorf("float32: got %v", v)
	}
	if v, _ := r.ReadFloat64(); v != -1e300 {
		t.Errorf("float64: got %v", v)
	}
}

func TestBufferReadAt(t *testing.T) {
	buf := NewBuffer([]byte{1, 2, 3})

	p := make([]byte, 2)
	n, err := buf.ReadAt(p, 2)
	if n != 1 || err == nil {
		t.Errorf("short ReadAt: n=%d err=%v", n, err)
	}
	if _, err := buf.ReadAt(p, 5); err == nil {
		t.Error("expected EOF reading past end")
	}
}

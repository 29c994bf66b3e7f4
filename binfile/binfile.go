// SPDX-License-Identifier: GPL-2.0-or-later

// Package binfile implements the aligned, length-prefixed binary layout
// of the engine animation descriptor. Every scalar aligns the cursor to
// its own size before it is read or written. Strings carry a uint32
// length field holding len+1, the raw ASCII bytes and a trailing pad of
// 1 to 4 bytes so the cursor always leaves a string on a fresh 4 byte
// block. The pad is never 0, a string whose length is a multiple of 4
// still consumes one full extra block.
package binfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

const chunk = 4

// stringPad returns the number of bytes to skip after the raw bytes of
// a string of length n. Always in [1,4].
func stringPad(n int) int {
	if r := n % chunk; r != 0 {
		return chunk - r
	}
	return chunk
}

// alignGap returns how far a cursor at pos must advance to be a
// multiple of size.
func alignGap(pos, size int) int {
	if r := pos % size; r != 0 {
		return size - r
	}
	return 0
}

// A Writer appends aligned values to an in-memory byte store. Skipped
// alignment bytes are written as zero.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded stream.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Pos returns the current cursor position.
func (w *Writer) Pos() int {
	return len(w.buf)
}

func (w *Writer) align(size int) {
	for i := alignGap(len(w.buf), size); i > 0; i-- {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteInt8(v int8) {
	w.WriteUint8(uint8(v))
}

func (w *Writer) WriteUint16(v uint16) {
	w.align(2)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteUint32(v uint32) {
	w.align(4)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteFloat(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteString writes the uint32 length field holding len+1, the raw
// ASCII bytes and the trailing pad block.
func (w *Writer) WriteString(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return fmt.Errorf("binfile: non-ASCII byte %#x in %q", s[i], s)
		}
	}
	w.WriteUint32(uint32(len(s) + 1))
	w.buf = append(w.buf, s...)
	for i := stringPad(len(s)); i > 0; i-- {
		w.buf = append(w.buf, 0)
	}
	return nil
}

// A Reader consumes a stream produced by Writer. It performs the same
// alignment skips, so independently computed read and write cursors
// stay in lockstep.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current cursor position.
func (r *Reader) Pos() int {
	return r.pos
}

func (r *Reader) take(size int) ([]byte, error) {
	r.pos += alignGap(r.pos, size)
	if r.pos+size > len(r.data) {
		return nil, fmt.Errorf("binfile: read of %d bytes at %d past end (%d)", size, r.pos, len(r.data))
	}
	b := r.data[r.pos : r.pos+size]
	r.pos += size
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadFloat() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadString reverses WriteString, including the trailing pad skip.
func (r *Reader) ReadString() (string, error) {
	l, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if l == 0 {
		return "", fmt.Errorf("binfile: string length field is 0 at %d", r.pos)
	}
	n := int(l - 1)
	if r.pos+n > len(r.data) {
		return "", fmt.Errorf("binfile: string of %d bytes at %d past end (%d)", n, r.pos, len(r.data))
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n + stringPad(n)
	return s, nil
}

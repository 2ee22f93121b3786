package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxArraySize is the maximum size of an array which can be decoded.
const MaxArraySize = 0x1000000

// BinReader is a convenient wrapper around a io.Reader and err object.
// Used to simplify error handling when reading into a struct with many fields.
type BinReader struct {
	r   io.Reader
	uv  [8]byte
	Err error
}

// NewBinReaderFromIO makes a BinReader from io.Reader.
func NewBinReaderFromIO(ior io.Reader) *BinReader {
	return &BinReader{r: ior}
}

// NewBinReaderFromBuf makes a BinReader from byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	r := bytes.NewReader(b)
	return NewBinReaderFromIO(r)
}

// Len returns the number of bytes of the unread portion of the buffer if
// reading from bytes.Reader or -1 otherwise.
func (r *BinReader) Len() int {
	var res = -1
	if br, ok := r.r.(*bytes.Reader); ok {
		res = br.Len()
	}
	return res
}

// ReadB reads a byte from the underlying io.Reader. On read failures it
// returns zero.
func (r *BinReader) ReadB() byte {
	r.ReadBytes(r.uv[:1])
	if r.Err != nil {
		return 0
	}
	return r.uv[0]
}

// ReadBool reads a boolean value encoded in a zero/non-zero byte from the
// underlying io.Reader. On read failures it returns false.
func (r *BinReader) ReadBool() bool {
	return r.ReadB() != 0
}

// ReadVarUint reads a variable-length-encoded integer from the
// underlying reader.
func (r *BinReader) ReadVarUint() uint64 {
	if r.Err != nil {
		return 0
	}

	var b = r.ReadB()

	switch b {
	case 0xfd:
		r.ReadBytes(r.uv[:2])
		if r.Err != nil {
			return 0
		}
		return uint64(binary.LittleEndian.Uint16(r.uv[:2]))
	case 0xfe:
		r.ReadBytes(r.uv[:4])
		if r.Err != nil {
			return 0
		}
		return uint64(binary.LittleEndian.Uint32(r.uv[:4]))
	case 0xff:
		r.ReadBytes(r.uv[:8])
		if r.Err != nil {
			return 0
		}
		return binary.LittleEndian.Uint64(r.uv[:8])
	}

	return uint64(b)
}

// ReadVarBytes reads the next set of bytes from the underlying reader.
// ReadVarUInt() is used to determine how large that slice is.
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	n := r.ReadVarUint()
	if r.Err != nil {
		return nil
	}
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	if n > uint64(ms) {
		r.Err = fmt.Errorf("byte-slice is too big (%d)", n)
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	return b
}

// ReadBytes copies a fixed-size buffer from the reader to provided slice.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}

	_, r.Err = io.ReadFull(r.r, buf)
}

// ErrTrailingData is set by Finish when unread bytes remain in the buffer.
var ErrTrailingData = errors.New("trailing data")

// Finish checks that the whole underlying buffer has been consumed, it only
// works for readers created with NewBinReaderFromBuf.
func (r *BinReader) Finish() {
	if r.Err == nil && r.Len() > 0 {
		r.Err = ErrTrailingData
	}
}

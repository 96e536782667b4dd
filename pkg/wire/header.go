// Package wire implements the byte-exact message codec: the 4-byte message
// header shared by every request/response, and the length-prefixed field
// helpers every per-procedure message builds on.
package wire

import "encoding/binary"

// HeaderSize is the fixed size of the header every message begins with.
const HeaderSize = 4

// Header is the {version, code, param1, param2} preamble present on every
// message. Multibyte fields elsewhere in a message are little-endian;
// the header itself has no multibyte fields.
type Header struct {
	Version byte
	Code    byte
	Param1  byte
	Param2  byte
}

// Encode appends the header's wire representation to dst and returns the
// extended slice.
func (h Header) Encode(dst []byte) []byte {
	return append(dst, h.Version, h.Code, h.Param1, h.Param2)
}

// DecodeHeader reads a Header from the front of buf. It returns ErrMalformed
// if buf is shorter than HeaderSize.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrMalformed
	}
	return Header{
		Version: buf[0],
		Code:    buf[1],
		Param1:  buf[2],
		Param2:  buf[3],
	}, nil
}

// Reader walks a byte buffer field by field, the zero-copy decode style the
// per-message decoders use: payload slices are views into buf, never copies.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps buf, starting after the 4-byte header.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf, off: HeaderSize}
}

func (r *Reader) remaining() int { return len(r.buf) - r.off }

// U8 reads a single byte.
func (r *Reader) U8() (byte, error) {
	if r.remaining() < 1 {
		return 0, ErrMalformed
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, ErrMalformed
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrMalformed
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// Fixed returns a zero-copy view of the next n bytes.
func (r *Reader) Fixed(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, ErrMalformed
	}
	v := r.buf[r.off : r.off+n]
	r.off += n
	return v, nil
}

// VarField reads a u16 length prefix followed by that many bytes, enforcing
// max as the per-field declared-length ceiling (e.g. MaxOpaqueSize).
// Declared length must also fit in the remaining buffer or ErrMalformed is
// returned; declared length over max is also ErrMalformed, per §4.A.
func (r *Reader) VarField(max int) ([]byte, error) {
	n, err := r.U16()
	if err != nil {
		return nil, err
	}
	if int(n) > max {
		return nil, ErrMalformed
	}
	return r.Fixed(int(n))
}

// Rest returns a zero-copy view of everything not yet consumed.
func (r *Reader) Rest() []byte {
	return r.buf[r.off:]
}

// Offset reports how many bytes have been consumed, including the header.
func (r *Reader) Offset() int { return r.off }

// Writer builds a message by appending fields; Bytes() returns the result.
type Writer struct {
	buf []byte
}

// NewWriter starts a Writer with the header already encoded.
func NewWriter(h Header) *Writer {
	return &Writer{buf: h.Encode(make([]byte, 0, 64))}
}

func (w *Writer) U8(v byte) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) U16(v uint16) *Writer {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
	return w
}

func (w *Writer) Fixed(v []byte) *Writer {
	w.buf = append(w.buf, v...)
	return w
}

// VarField writes a u16 length prefix followed by v. Callers are responsible
// for having validated len(v) against the relevant maximum beforehand.
func (w *Writer) VarField(v []byte) *Writer {
	w.U16(uint16(len(v)))
	w.buf = append(w.buf, v...)
	return w
}

func (w *Writer) Bytes() []byte { return w.buf }

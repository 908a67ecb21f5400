// Package buffer implements the serialization primitives shared by all
// types of the library that implement io.WriterTo and io.ReaderFrom.
// All values are written in big-endian byte order.
package buffer

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteUint8 writes an uint8 on w.
func WriteUint8(w io.Writer, c uint8) (n int64, err error) {
	var buf [1]byte
	buf[0] = c
	m, err := w.Write(buf[:])
	return int64(m), err
}

// WriteUint32 writes an uint32 on w.
func WriteUint32(w io.Writer, c uint32) (n int64, err error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], c)
	m, err := w.Write(buf[:])
	return int64(m), err
}

// WriteUint64 writes an uint64 on w.
func WriteUint64(w io.Writer, c uint64) (n int64, err error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], c)
	m, err := w.Write(buf[:])
	return int64(m), err
}

// WriteUint64Slice writes a slice of uint64 on w, prefixed by its length
// as an uint64.
func WriteUint64Slice(w io.Writer, s []uint64) (n int64, err error) {
	if n, err = WriteUint64(w, uint64(len(s))); err != nil {
		return n, fmt.Errorf("buffer.WriteUint64Slice: %w", err)
	}
	buf := make([]byte, 8*len(s))
	for i, c := range s {
		binary.BigEndian.PutUint64(buf[i<<3:], c)
	}
	m, err := w.Write(buf)
	return n + int64(m), err
}

// ReadUint8 reads an uint8 from r.
func ReadUint8(r io.Reader, c *uint8) (n int64, err error) {
	var buf [1]byte
	m, err := io.ReadFull(r, buf[:])
	*c = buf[0]
	return int64(m), err
}

// ReadUint32 reads an uint32 from r.
func ReadUint32(r io.Reader, c *uint32) (n int64, err error) {
	var buf [4]byte
	m, err := io.ReadFull(r, buf[:])
	*c = binary.BigEndian.Uint32(buf[:])
	return int64(m), err
}

// ReadUint64 reads an uint64 from r.
func ReadUint64(r io.Reader, c *uint64) (n int64, err error) {
	var buf [8]byte
	m, err := io.ReadFull(r, buf[:])
	*c = binary.BigEndian.Uint64(buf[:])
	return int64(m), err
}

// ReadUint64Slice reads a length-prefixed slice of uint64 from r into *s,
// reallocating *s if its capacity is too small. The maxLen argument bounds
// the accepted length, protecting against corrupted or hostile streams.
func ReadUint64Slice(r io.Reader, s *[]uint64, maxLen int) (n int64, err error) {
	var size uint64
	if n, err = ReadUint64(r, &size); err != nil {
		return n, fmt.Errorf("buffer.ReadUint64Slice: %w", err)
	}
	if size > uint64(maxLen) {
		return n, fmt.Errorf("buffer.ReadUint64Slice: length %d exceeds maximum %d", size, maxLen)
	}
	if uint64(cap(*s)) < size {
		*s = make([]uint64, size)
	}
	*s = (*s)[:size]
	buf := make([]byte, 8*size)
	m, err := io.ReadFull(r, buf)
	if err != nil {
		return n + int64(m), fmt.Errorf("buffer.ReadUint64Slice: %w", err)
	}
	for i := range *s {
		(*s)[i] = binary.BigEndian.Uint64(buf[i<<3:])
	}
	return n + int64(m), nil
}

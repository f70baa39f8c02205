// Package wire implements the length-prefixed framing shared by every
// boundary of the sandbox core: caller<->driver on fd 0/1, and
// driver<->namespace-init over the result pipe.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrShortFrame is returned when a read hits EOF before a complete
// frame has been consumed.
var ErrShortFrame = errors.New("wire: short frame")

// WriteInt32 writes a little-endian int32, whatever the host byte
// order.
func WriteInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return writeFull(w, buf[:])
}

// ReadInt32 reads a little-endian int32.
func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// WriteInt64 writes a little-endian int64.
func WriteInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return writeFull(w, buf[:])
}

// ReadInt64 reads a little-endian int64.
func ReadInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// WriteBytes writes an int32 length prefix followed by raw bytes. A
// nil or empty slice writes a zero-length prefix only.
func WriteBytes(w io.Writer, b []byte) error {
	if err := WriteInt32(w, int32(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return writeFull(w, b)
}

// ReadBytes reads an int32 length prefix followed by that many raw
// bytes.
func ReadBytes(r io.Reader) ([]byte, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("wire: negative length %d", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	if err := readFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteString writes a string using the same framing as WriteBytes.
func WriteString(w io.Writer, s string) error {
	return WriteBytes(w, []byte(s))
}

// ReadString reads a string using the same framing as ReadBytes.
func ReadString(r io.Reader) (string, error) {
	b, err := ReadBytes(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteStringSlice writes an int32 count followed by that many framed
// strings.
func WriteStringSlice(w io.Writer, items []string) error {
	if err := WriteInt32(w, int32(len(items))); err != nil {
		return err
	}
	for _, s := range items {
		if err := WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

// ReadStringSlice reads an int32 count followed by that many framed
// strings.
func ReadStringSlice(r io.Reader) ([]string, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("wire: negative count %d", n)
	}
	items := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		s, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

// writeFull loops until buf is fully written, retrying on short
// writes. It never silently drops bytes.
func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if n > 0 {
			buf = buf[n:]
		}
		if err != nil {
			if isRetryable(err) {
				continue
			}
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

// readFull loops until buf is fully populated, retrying on short
// reads and EINTR. EOF before buf is full is fatal.
func readFull(r io.Reader, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		read += n
		if err != nil {
			if n > 0 && errors.Is(err, io.EOF) && read == len(buf) {
				return nil
			}
			if isRetryable(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return ErrShortFrame
			}
			return err
		}
	}
	return nil
}

func isRetryable(err error) bool {
	var errno interface{ Temporary() bool }
	if errors.As(err, &errno) {
		return errno.Temporary()
	}
	return false
}

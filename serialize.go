package htab

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// formatVersion is written at the start of every stream so a reader
// can reject data produced by an incompatible future format.
const formatVersion uint32 = 1

// ErrVersion is returned (wrapped) when a stream's format version is
// not one this package can read.
var ErrVersion = errors.New("unsupported stream version")

// Codec encodes and decodes one value of type T to/from a binary
// stream, the collaborator callers supply since the engine has no way
// to introspect an arbitrary generic type's representation.
type Codec[T any] struct {
	Encode func(io.Writer, T) error
	Decode func(io.Reader) (T, error)
}

func writeHeader(w io.Writer, size uint64) error {
	if err := binary.Write(w, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, size)
}

func readHeader(r io.Reader) (size uint64, err error) {
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, err
	}
	if version != formatVersion {
		return 0, fmt.Errorf("htab: %w %d", ErrVersion, version)
	}
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return 0, err
	}
	return size, nil
}

// SerializeMap writes version, size, then every (key, value) pair in
// iteration order.
func SerializeMap[K comparable, V any](w io.Writer, m *Map[K, V], kc Codec[K], vc Codec[V]) error {
	if err := writeHeader(w, uint64(m.Len())); err != nil {
		return err
	}
	var werr error
	m.Range(func(k K, v V) bool {
		if werr = kc.Encode(w, k); werr != nil {
			return false
		}
		if werr = vc.Encode(w, v); werr != nil {
			return false
		}
		return true
	})
	return werr
}

// DeserializeMap reads a stream written by SerializeMap into a fresh
// Map built with h.
func DeserializeMap[K comparable, V any](r io.Reader, h Hasher[K], kc Codec[K], vc Codec[V]) (*Map[K, V], error) {
	size, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	m := NewMap[K, V](int(size), h)
	for i := uint64(0); i < size; i++ {
		k, err := kc.Decode(r)
		if err != nil {
			return nil, err
		}
		v, err := vc.Decode(r)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

// SerializeSet writes version, size, then every key in iteration
// order.
func SerializeSet[K comparable](w io.Writer, s *Set[K], kc Codec[K]) error {
	if err := writeHeader(w, uint64(s.Len())); err != nil {
		return err
	}
	var werr error
	s.Range(func(k K) bool {
		werr = kc.Encode(w, k)
		return werr == nil
	})
	return werr
}

// DeserializeSet reads a stream written by SerializeSet into a fresh
// Set built with h.
func DeserializeSet[K comparable](r io.Reader, h Hasher[K], kc Codec[K]) (*Set[K], error) {
	size, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	s := NewSet[K](int(size), h)
	for i := uint64(0); i < size; i++ {
		k, err := kc.Decode(r)
		if err != nil {
			return nil, err
		}
		s.Add(k)
	}
	return s, nil
}

// SerializeMultiMap writes version, size, then every (key, value)
// pair in iteration order, duplicates included.
func SerializeMultiMap[K comparable, V any](w io.Writer, m *MultiMap[K, V], kc Codec[K], vc Codec[V]) error {
	if err := writeHeader(w, uint64(m.Len())); err != nil {
		return err
	}
	var werr error
	m.Range(func(k K, v V) bool {
		if werr = kc.Encode(w, k); werr != nil {
			return false
		}
		if werr = vc.Encode(w, v); werr != nil {
			return false
		}
		return true
	})
	return werr
}

// DeserializeMultiMap reads a stream written by SerializeMultiMap into
// a fresh MultiMap built with h.
func DeserializeMultiMap[K comparable, V any](r io.Reader, h Hasher[K], kc Codec[K], vc Codec[V]) (*MultiMap[K, V], error) {
	size, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	m := NewMultiMap[K, V](int(size), h)
	for i := uint64(0); i < size; i++ {
		k, err := kc.Decode(r)
		if err != nil {
			return nil, err
		}
		v, err := vc.Decode(r)
		if err != nil {
			return nil, err
		}
		m.Insert(k, v)
	}
	return m, nil
}

// SerializeMultiSet writes version, size, then every key in iteration
// order, duplicates included.
func SerializeMultiSet[K comparable](w io.Writer, s *MultiSet[K], kc Codec[K]) error {
	if err := writeHeader(w, uint64(s.Len())); err != nil {
		return err
	}
	var werr error
	s.Range(func(k K) bool {
		werr = kc.Encode(w, k)
		return werr == nil
	})
	return werr
}

// DeserializeMultiSet reads a stream written by SerializeMultiSet into
// a fresh MultiSet built with h.
func DeserializeMultiSet[K comparable](r io.Reader, h Hasher[K], kc Codec[K]) (*MultiSet[K], error) {
	size, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	s := NewMultiSet[K](int(size), h)
	for i := uint64(0); i < size; i++ {
		k, err := kc.Decode(r)
		if err != nil {
			return nil, err
		}
		s.Insert(k)
	}
	return s, nil
}

// StringCodec encodes a string as a uvarint length prefix followed by
// its bytes.
var StringCodec = Codec[string]{
	Encode: func(w io.Writer, s string) error {
		var lenBuf [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
		if _, err := w.Write(lenBuf[:n]); err != nil {
			return err
		}
		_, err := io.WriteString(w, s)
		return err
	},
	Decode: func(r io.Reader) (string, error) {
		br, ok := r.(io.ByteReader)
		if !ok {
			return "", fmt.Errorf("htab: StringCodec needs an io.ByteReader")
		}
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return "", err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		return string(buf), nil
	},
}

// Int64Codec encodes an int64 as 8 little-endian bytes.
var Int64Codec = Codec[int64]{
	Encode: func(w io.Writer, v int64) error {
		return binary.Write(w, binary.LittleEndian, v)
	},
	Decode: func(r io.Reader) (int64, error) {
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	},
}

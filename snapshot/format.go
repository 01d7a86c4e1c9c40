package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const (
	// Magic identifies snapshot files.
	Magic = "GAR1"
	// Version is the current file format version.
	Version uint16 = 1

	codecNameSize = 16
)

var (
	ErrInvalidMagic       = errors.New("snapshot: invalid magic number")
	ErrInvalidVersion     = errors.New("snapshot: unsupported version")
	ErrChecksumMismatch   = errors.New("snapshot: checksum mismatch")
	ErrUnknownCodec       = errors.New("snapshot: unknown codec")
	ErrUnknownCompression = errors.New("snapshot: unknown compression")
	ErrTruncated          = errors.New("snapshot: truncated")
	// ErrHeaderMismatch reports a payload whose slot counts differ from the header.
	ErrHeaderMismatch = errors.New("snapshot: payload does not match header")
)

// fileHeader is the on-disk layout of Header.
type fileHeader struct {
	Magic       [4]byte
	Version     uint16
	Compression uint8
	Reserved1   uint8
	Codec       [codecNameSize]byte
	Slots       uint32
	Live        uint32
	RawSize     uint64
	StoredSize  uint64
	Checksum    uint32
	Reserved2   uint32
	ID          [16]byte
}

// HeaderSize is the encoded size of a Header in bytes.
var HeaderSize = binary.Size(fileHeader{})

// Header describes a snapshot payload.
type Header struct {
	Version     uint16
	Codec       string
	Compression Compression
	// Slots is the arena's slot count, Live its occupied count.
	Slots uint32
	Live  uint32
	// RawSize is the codec output size, StoredSize the size after compression.
	RawSize    uint64
	StoredSize uint64
	// Checksum is the CRC32 (IEEE) of the stored payload.
	Checksum uint32
	ID       uuid.UUID
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h Header) MarshalBinary() ([]byte, error) {
	if len(h.Codec) == 0 || len(h.Codec) > codecNameSize {
		return nil, fmt.Errorf("%w: name %q must be 1-%d bytes", ErrUnknownCodec, h.Codec, codecNameSize)
	}
	if !h.Compression.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, h.Compression)
	}

	fh := fileHeader{
		Version:     h.Version,
		Compression: uint8(h.Compression),
		Slots:       h.Slots,
		Live:        h.Live,
		RawSize:     h.RawSize,
		StoredSize:  h.StoredSize,
		Checksum:    h.Checksum,
		ID:          h.ID,
	}
	copy(fh.Magic[:], Magic)
	copy(fh.Codec[:], h.Codec)

	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	if err := binary.Write(&buf, binary.LittleEndian, &fh); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, HeaderSize, len(data))
	}

	var fh fileHeader
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &fh); err != nil {
		return err
	}
	if string(fh.Magic[:]) != Magic {
		return fmt.Errorf("%w: %q", ErrInvalidMagic, fh.Magic[:])
	}
	if fh.Version != Version {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, fh.Version)
	}
	c := Compression(fh.Compression)
	if !c.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, fh.Compression)
	}

	*h = Header{
		Version:     fh.Version,
		Codec:       string(bytes.TrimRight(fh.Codec[:], "\x00")),
		Compression: c,
		Slots:       fh.Slots,
		Live:        fh.Live,
		RawSize:     fh.RawSize,
		StoredSize:  fh.StoredSize,
		Checksum:    fh.Checksum,
		ID:          fh.ID,
	}
	return nil
}

// ReadHeader reads and validates only the header from r.
func ReadHeader(r io.Reader) (Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("%w: header: %w", ErrTruncated, err)
		}
		return Header{}, err
	}

	var h Header
	if err := h.UnmarshalBinary(buf); err != nil {
		return Header{}, err
	}
	return h, nil
}

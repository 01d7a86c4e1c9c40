package snapshot

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/google/uuid"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/codec"
	"github.com/hupe1980/genarena/internal/conv"
)

type writeOptions struct {
	codec       codec.Codec
	compression Compression
	id          uuid.UUID
}

// Option configures Write.
type Option func(*writeOptions)

// WithCodec sets the codec used for the payload. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *writeOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression sets the payload compression. Defaults to none.
func WithCompression(c Compression) Option {
	return func(o *writeOptions) {
		o.compression = c
	}
}

// WithID sets the snapshot ID instead of a random one.
func WithID(id uuid.UUID) Option {
	return func(o *writeOptions) {
		o.id = id
	}
}

func applyWriteOptions(opts []Option) writeOptions {
	o := writeOptions{codec: codec.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	return o
}

// Encode builds the header and stored payload for a.
func Encode[T any](a *genarena.Arena[T], opts ...Option) (Header, []byte, error) {
	o := applyWriteOptions(opts)
	if !o.compression.valid() {
		return Header{}, nil, fmt.Errorf("%w: %d", ErrUnknownCompression, o.compression)
	}

	raw, err := a.Encode(o.codec)
	if err != nil {
		return Header{}, nil, fmt.Errorf("snapshot: encode with %s: %w", o.codec.Name(), err)
	}

	stored, used, err := compress(raw, o.compression)
	if err != nil {
		return Header{}, nil, fmt.Errorf("snapshot: compress %s: %w", o.compression, err)
	}

	stats := a.Stats()
	slots, err := conv.IntToUint32(stats.Cap)
	if err != nil {
		return Header{}, nil, err
	}
	live, err := conv.IntToUint32(stats.Len)
	if err != nil {
		return Header{}, nil, err
	}
	rawSize, err := conv.IntToUint64(len(raw))
	if err != nil {
		return Header{}, nil, err
	}
	storedSize, err := conv.IntToUint64(len(stored))
	if err != nil {
		return Header{}, nil, err
	}

	h := Header{
		Version:     Version,
		Codec:       o.codec.Name(),
		Compression: used,
		Slots:       slots,
		Live:        live,
		RawSize:     rawSize,
		StoredSize:  storedSize,
		Checksum:    crc32.ChecksumIEEE(stored),
		ID:          o.id,
	}
	return h, stored, nil
}

// Write encodes a as a snapshot to w and returns its header.
func Write[T any](w io.Writer, a *genarena.Arena[T], opts ...Option) (Header, error) {
	h, stored, err := Encode(a, opts...)
	if err != nil {
		return Header{}, err
	}

	hdr, err := h.MarshalBinary()
	if err != nil {
		return Header{}, err
	}
	if _, err := w.Write(hdr); err != nil {
		return Header{}, fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := w.Write(stored); err != nil {
		return Header{}, fmt.Errorf("snapshot: write payload: %w", err)
	}
	return h, nil
}

// Read decodes a snapshot from r. The payload is decoded with the codec named
// in the header; opts configure the returned arena.
func Read[T any](r io.Reader, opts ...genarena.Option) (*genarena.Arena[T], Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, Header{}, err
	}

	stored, err := ReadPayload(r, h)
	if err != nil {
		return nil, h, err
	}

	a, err := DecodePayload[T](h, stored, opts...)
	if err != nil {
		return nil, h, err
	}
	return a, h, nil
}

// ReadPayload reads the stored payload that follows h and verifies its checksum.
func ReadPayload(r io.Reader, h Header) ([]byte, error) {
	size, err := conv.Uint64ToInt(h.StoredSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderMismatch, err)
	}

	stored := make([]byte, size)
	if _, err := io.ReadFull(r, stored); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: payload: %w", ErrTruncated, err)
		}
		return nil, err
	}

	if sum := crc32.ChecksumIEEE(stored); sum != h.Checksum {
		return nil, fmt.Errorf("%w: got %08x, header says %08x", ErrChecksumMismatch, sum, h.Checksum)
	}
	return stored, nil
}

// DecodePayload decompresses and decodes a verified payload.
func DecodePayload[T any](h Header, stored []byte, opts ...genarena.Option) (*genarena.Arena[T], error) {
	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}

	rawSize, err := conv.Uint64ToInt(h.RawSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeaderMismatch, err)
	}
	raw, err := decompress(stored, h.Compression, rawSize)
	if err != nil {
		return nil, err
	}

	a, err := genarena.Decode[T](c, raw, opts...)
	if err != nil {
		return nil, err
	}

	stats := a.Stats()
	if uint64(stats.Cap) != uint64(h.Slots) || uint64(stats.Len) != uint64(h.Live) {
		return nil, fmt.Errorf("%w: payload has %d/%d live slots, header says %d/%d",
			ErrHeaderMismatch, stats.Len, stats.Cap, h.Live, h.Slots)
	}
	return a, nil
}

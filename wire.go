package genarena

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/genarena/codec"
)

// Compile time checks to ensure Arena satisfies the encoding interfaces.
var (
	_ json.Marshaler   = (*Arena[int])(nil)
	_ json.Unmarshaler = (*Arena[int])(nil)
	_ gob.GobEncoder   = (*Arena[int])(nil)
	_ gob.GobDecoder   = (*Arena[int])(nil)
)

// Tag marks a wire entry as occupied or vacant.
type Tag uint8

const (
	// TagOccupied marks an entry that carries a value.
	TagOccupied Tag = iota + 1
	// TagVacant marks an entry that carries a free-list link.
	TagVacant
)

func (t Tag) String() string {
	switch t {
	case TagOccupied:
		return "occupied"
	case TagVacant:
		return "vacant"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	switch t {
	case TagOccupied, TagVacant:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("genarena: invalid tag %d", uint8(t))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	switch string(text) {
	case "occupied":
		*t = TagOccupied
	case "vacant":
		*t = TagVacant
	default:
		return decodeErrorf(-1, "tag", "unknown tag %q", text)
	}
	return nil
}

// Entry is the wire form of one slot.
//
// Occupied entries carry Value; vacant entries carry NextFree, the index of
// the next vacant slot or nil at the end of the free list.
type Entry[T any] struct {
	Tag        Tag
	Generation uint32
	Value      T
	NextFree   *uint32
}

type occupiedJSON[T any] struct {
	Tag        Tag    `json:"tag"`
	Generation uint32 `json:"generation"`
	Value      T      `json:"value"`
}

type vacantJSON struct {
	Tag        Tag     `json:"tag"`
	Generation uint32  `json:"generation"`
	NextFree   *uint32 `json:"next_free"`
}

type entryJSON struct {
	Tag        Tag               `json:"tag"`
	Generation uint32            `json:"generation"`
	Value      gojson.RawMessage `json:"value"`
	NextFree   *uint32           `json:"next_free"`
}

// MarshalJSON writes an occupied entry as {tag, generation, value} and a
// vacant one as {tag, generation, next_free}.
func (e Entry[T]) MarshalJSON() ([]byte, error) {
	switch e.Tag {
	case TagOccupied:
		return gojson.Marshal(occupiedJSON[T]{Tag: e.Tag, Generation: e.Generation, Value: e.Value})
	case TagVacant:
		return gojson.Marshal(vacantJSON{Tag: e.Tag, Generation: e.Generation, NextFree: e.NextFree})
	default:
		return nil, fmt.Errorf("genarena: invalid tag %d", uint8(e.Tag))
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry[T]) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Entry[T]{Tag: raw.Tag, Generation: raw.Generation, NextFree: raw.NextFree}
	switch raw.Tag {
	case TagOccupied:
		if len(raw.Value) == 0 {
			return decodeErrorf(-1, "value", "occupied entry without value")
		}
		if raw.NextFree != nil {
			return decodeErrorf(-1, "next_free", "occupied entry with free-list link")
		}
		if err := gojson.Unmarshal(raw.Value, &out.Value); err != nil {
			return fmt.Errorf("%w: value: %w", ErrDecode, err)
		}
	case TagVacant:
		if len(raw.Value) != 0 {
			return decodeErrorf(-1, "value", "vacant entry with value")
		}
	default:
		return decodeErrorf(-1, "tag", "missing tag")
	}

	*e = out
	return nil
}

// Wire is the serialized form of an Arena. It records the exact slot layout,
// vacant slots and free-list topology included, so a decoded arena resolves
// and rejects exactly the handles the original did.
//
// The record has two fields in fixed order. Next is the index of the first
// vacant slot, or nil when the free list is empty.
type Wire[T any] struct {
	Values []Entry[T] `json:"values"`
	Next   *uint32    `json:"next"`
}

// gobWire stores links 1-based. Gob drops zero values even behind pointers,
// so a *uint32 link to slot 0 would not survive.
type gobWire[T any] struct {
	Values []gobEntry[T]
	Next   uint64
}

type gobEntry[T any] struct {
	Tag        uint8
	Generation uint32
	Value      T
	NextFree   uint64
}

func gobLink(index *uint32) uint64 {
	if index == nil {
		return 0
	}
	return uint64(*index) + 1
}

func gobIndex(link uint64) (*uint32, error) {
	if link == 0 {
		return nil, nil
	}
	if link-1 > math.MaxUint32 {
		return nil, fmt.Errorf("link %d out of range", link)
	}
	index := uint32(link - 1)
	return &index, nil
}

// GobEncode implements gob.GobEncoder.
func (w Wire[T]) GobEncode() ([]byte, error) {
	g := gobWire[T]{
		Values: make([]gobEntry[T], len(w.Values)),
		Next:   gobLink(w.Next),
	}
	for i, e := range w.Values {
		g.Values[i] = gobEntry[T]{
			Tag:        uint8(e.Tag),
			Generation: e.Generation,
			Value:      e.Value,
			NextFree:   gobLink(e.NextFree),
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (w *Wire[T]) GobDecode(data []byte) error {
	var g gobWire[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return err
	}

	next, err := gobIndex(g.Next)
	if err != nil {
		return decodeErrorf(-1, "next", "%v", err)
	}
	out := Wire[T]{Values: make([]Entry[T], len(g.Values)), Next: next}
	for i, e := range g.Values {
		nextFree, err := gobIndex(e.NextFree)
		if err != nil {
			return decodeErrorf(i, "next_free", "%v", err)
		}
		out.Values[i] = Entry[T]{Tag: Tag(e.Tag), Generation: e.Generation, Value: e.Value, NextFree: nextFree}
	}
	*w = out
	return nil
}

// ToWire returns the wire form of the arena.
func (a *Arena[T]) ToWire() Wire[T] {
	w := Wire[T]{
		Values: make([]Entry[T], len(a.slots)),
		Next:   linkIndex(a.freeHead),
	}
	for i := range a.slots {
		s := &a.slots[i]
		if s.occupied {
			w.Values[i] = Entry[T]{Tag: TagOccupied, Generation: s.generation, Value: s.value}
			continue
		}
		w.Values[i] = Entry[T]{Tag: TagVacant, Generation: s.generation, NextFree: linkIndex(s.nextFree)}
	}
	return w
}

// FromWire rebuilds an arena from its wire form. The structure is validated;
// any inconsistency yields a *DecodeError.
func FromWire[T any](w Wire[T], opts ...Option) (*Arena[T], error) {
	n := len(w.Values)
	if uint64(n) > MaxSlots {
		return nil, decodeErrorf(-1, "values", "%d entries exceed the maximum of %d", n, uint64(MaxSlots))
	}

	a := New[T](opts...)
	a.slots = make([]slot[T], n)

	for i, e := range w.Values {
		s := &a.slots[i]
		s.generation = e.Generation

		switch e.Tag {
		case TagOccupied:
			if e.NextFree != nil {
				return nil, decodeErrorf(i, "next_free", "occupied entry with free-list link")
			}
			s.value = e.Value
			s.occupied = true
			a.length++
		case TagVacant:
			link, err := linkFromIndex(e.NextFree, n, i, "next_free")
			if err != nil {
				return nil, err
			}
			s.nextFree = link
			if s.retired() {
				a.retired++
			}
		default:
			return nil, decodeErrorf(i, "tag", "unknown tag %d", uint8(e.Tag))
		}
	}

	head, err := linkFromIndex(w.Next, n, -1, "next")
	if err != nil {
		return nil, err
	}
	a.freeHead = head

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func linkIndex(link uint32) *uint32 {
	if link == 0 {
		return nil
	}
	index := linkTarget(link)
	return &index
}

func linkFromIndex(index *uint32, n, at int, field string) (uint32, error) {
	if index == nil {
		return 0, nil
	}
	if uint64(*index) >= uint64(n) {
		return 0, decodeErrorf(at, field, "index %d out of range [0:%d]", *index, n)
	}
	return linkTo(*index), nil
}

// Encode serializes the arena with c, or codec.Default if c is nil.
func (a *Arena[T]) Encode(c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	return c.Marshal(a.ToWire())
}

// Decode rebuilds an arena from data produced by Encode with the same codec.
func Decode[T any](c codec.Codec, data []byte, opts ...Option) (*Arena[T], error) {
	if c == nil {
		c = codec.Default
	}
	var w Wire[T]
	if err := c.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, c.Name(), err)
	}
	return FromWire(w, opts...)
}

// MarshalJSON implements json.Marshaler.
func (a *Arena[T]) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(a.ToWire())
}

// UnmarshalJSON implements json.Unmarshaler. The logger and metrics collector
// of a are kept.
func (a *Arena[T]) UnmarshalJSON(data []byte) error {
	var w Wire[T]
	if err := gojson.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: json: %w", ErrDecode, err)
	}
	return a.replace(w)
}

// GobEncode implements gob.GobEncoder.
func (a *Arena[T]) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a.ToWire()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (a *Arena[T]) GobDecode(data []byte) error {
	var w Wire[T]
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return fmt.Errorf("%w: gob: %w", ErrDecode, err)
	}
	return a.replace(w)
}

func (a *Arena[T]) replace(w Wire[T]) error {
	b, err := FromWire(w)
	if err != nil {
		return err
	}
	a.slots = b.slots
	a.freeHead = b.freeHead
	a.length = b.length
	a.retired = b.retired
	return nil
}

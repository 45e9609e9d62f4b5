package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Field describes one fixed-width slot of a message. Widths are in bytes.
type Field struct {
	Name   string
	Width  int
	Signed bool
}

func (f Field) bounds() (int64, int64) {
	bits := uint(f.Width * 8)
	if f.Signed {
		return -(1 << (bits - 1)), 1<<(bits-1) - 1
	}
	return 0, 1<<bits - 1
}

type slot struct {
	Field
	offset int
}

// Layout is the offset table of one message kind. It is built once and never
// modified afterwards.
type Layout struct {
	kind   Kind
	size   int
	order  []string
	fields map[string]slot
}

// NewLayout allocates fields sequentially from offset 0. The kind tag is always
// the first byte, so callers only list the payload fields.
func NewLayout(kind Kind, fields ...Field) *Layout {
	l := &Layout{
		kind:   kind,
		fields: make(map[string]slot, len(fields)+1),
	}
	all := append([]Field{{Name: "kind", Width: 1}}, fields...)
	for _, f := range all {
		if f.Width != 1 && f.Width != 2 {
			panic(fmt.Sprintf("wire: field %s has unsupported width %d", f.Name, f.Width))
		}
		if _, ok := l.fields[f.Name]; ok {
			panic(fmt.Sprintf("wire: duplicate field %s in %s layout", f.Name, kind))
		}
		l.fields[f.Name] = slot{Field: f, offset: l.size}
		l.order = append(l.order, f.Name)
		l.size += f.Width
	}
	return l
}

func (l *Layout) Kind() Kind { return l.kind }

// Size is the exact frame length of this kind.
func (l *Layout) Size() int { return l.size }

// Fields returns the field names in wire order, kind tag included.
func (l *Layout) Fields() []string {
	return append([]string(nil), l.order...)
}

// Offset reports where a field lives in the frame.
func (l *Layout) Offset(name string) (offset, width int, ok bool) {
	s, ok := l.fields[name]
	return s.offset, s.Width, ok
}

// Verify reports whether b has the exact size and tag of this layout.
func (l *Layout) Verify(b []byte) bool {
	return len(b) == l.size && b[0] == byte(l.kind)
}

func (l *Layout) newFrame() []byte {
	b := make([]byte, l.size)
	b[0] = byte(l.kind)
	return b
}

func (l *Layout) lookup(name string) slot {
	s, ok := l.fields[name]
	if !ok {
		panic(fmt.Sprintf("wire: %s layout has no field %s", l.kind, name))
	}
	return s
}

func (l *Layout) put(b []byte, name string, v int) error {
	s := l.lookup(name)
	lo, hi := s.bounds()
	if int64(v) < lo || int64(v) > hi {
		return &RangeError{Kind: l.kind, Field: name, Value: v, Min: lo, Max: hi}
	}
	switch s.Width {
	case 1:
		b[s.offset] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b[s.offset:], uint16(v))
	}
	return nil
}

func (l *Layout) get(b []byte, name string) int {
	s := l.lookup(name)
	switch {
	case s.Width == 1 && s.Signed:
		return int(int8(b[s.offset]))
	case s.Width == 1:
		return int(b[s.offset])
	case s.Signed:
		return int(int16(binary.LittleEndian.Uint16(b[s.offset:])))
	default:
		return int(binary.LittleEndian.Uint16(b[s.offset:]))
	}
}

// Coord converts a world coordinate into the unsigned 16-bit field domain.
// Values are truncated toward zero and pinned to the representable range, so a
// ball that has just crossed x=0 still encodes.
func Coord(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	}
	return int(v)
}

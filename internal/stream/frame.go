// Package stream broadcasts binary snapshots of a running system over websockets.
package stream

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/olivierh59500/specks/internal/sim"
)

const (
	headerSize = 12 // tick, count, box size
	recordSize = 9  // x, y, color
)

// Point is one particle as carried on the wire
type Point struct {
	X, Y  float32
	Color uint8
}

// Frame is a decoded snapshot
type Frame struct {
	Tick    uint32
	BoxSize float32
	Points  []Point
}

// EncodeFrame serializes the current particle positions
func EncodeFrame(s *sim.System) []byte {
	return AppendFrame(nil, s)
}

// AppendFrame appends the encoded snapshot to dst
func AppendFrame(dst []byte, s *sim.System) []byte {
	particles := s.Particles()
	dst = grow(dst, headerSize+recordSize*len(particles))

	le := binary.LittleEndian
	dst = le.AppendUint32(dst, uint32(s.TickCount()))
	dst = le.AppendUint32(dst, uint32(len(particles)))
	dst = le.AppendUint32(dst, math.Float32bits(float32(s.BoundingBoxSize())))
	for i := range particles {
		p := &particles[i]
		dst = le.AppendUint32(dst, math.Float32bits(float32(p.Position[0])))
		dst = le.AppendUint32(dst, math.Float32bits(float32(p.Position[1])))
		dst = append(dst, uint8(p.Color))
	}
	return dst
}

func grow(b []byte, n int) []byte {
	if cap(b)-len(b) >= n {
		return b
	}
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return out
}

// DecodeFrame parses a frame produced by EncodeFrame
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < headerSize {
		return Frame{}, errors.Errorf("frame too short: %d bytes", len(b))
	}
	le := binary.LittleEndian
	f := Frame{
		Tick:    le.Uint32(b[0:]),
		BoxSize: math.Float32frombits(le.Uint32(b[8:])),
	}
	n := int(le.Uint32(b[4:]))
	if want := headerSize + n*recordSize; len(b) != want {
		return Frame{}, errors.Errorf("frame of %d points needs %d bytes, got %d", n, want, len(b))
	}

	f.Points = make([]Point, n)
	for i := range f.Points {
		r := b[headerSize+i*recordSize:]
		f.Points[i] = Point{
			X:     math.Float32frombits(le.Uint32(r[0:])),
			Y:     math.Float32frombits(le.Uint32(r[4:])),
			Color: r[8],
		}
	}
	return f, nil
}

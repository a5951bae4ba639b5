package assets

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Mesh is a decoded model: vertex positions, triangle indices and an optional
// flat list of texture coordinates.
type Mesh struct {
	Positions [][3]float32
	Indices   []uint32
	UVs       []float32
}

// ErrTruncatedMesh is returned when a mesh blob ends before its declared counts.
var ErrTruncatedMesh = errors.New("truncated mesh data")

// DecodeMesh parses the little-endian mesh layout
//
//	[u32 vertCount][vertCount*3 f32][u32 idxCount][idxCount u32][u32 uvCount][uvCount f32]
func DecodeMesh(data []byte) (*Mesh, error) {
	r := meshReader{buf: data}
	m := &Mesh{}

	n, err := r.count("vertex")
	if err != nil {
		return nil, err
	}
	if err := r.need(n*12, "vertex"); err != nil {
		return nil, err
	}
	m.Positions = make([][3]float32, n)
	for i := range m.Positions {
		m.Positions[i] = [3]float32{r.f32(), r.f32(), r.f32()}
	}

	n, err = r.count("index")
	if err != nil {
		return nil, err
	}
	if err := r.need(n*4, "index"); err != nil {
		return nil, err
	}
	m.Indices = make([]uint32, n)
	for i := range m.Indices {
		m.Indices[i] = r.u32()
	}

	n, err = r.count("uv")
	if err != nil {
		return nil, err
	}
	if err := r.need(n*4, "uv"); err != nil {
		return nil, err
	}
	m.UVs = make([]float32, n)
	for i := range m.UVs {
		m.UVs[i] = r.f32()
	}
	return m, nil
}

// EncodeMesh writes m in the layout read by DecodeMesh.
func EncodeMesh(m *Mesh) []byte {
	size := 12 + len(m.Positions)*12 + len(m.Indices)*4 + len(m.UVs)*4
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(m.Positions)))
	for _, p := range m.Positions {
		for _, f := range p {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(m.Indices)))
	for _, idx := range m.Indices {
		out = binary.LittleEndian.AppendUint32(out, idx)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(m.UVs)))
	for _, f := range m.UVs {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

// VertexBytes returns the positions as tightly packed little-endian vec3s.
func (m *Mesh) VertexBytes() []byte {
	out := make([]byte, 0, len(m.Positions)*12)
	for _, p := range m.Positions {
		for _, f := range p {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

// IndexBytes returns the indices as little-endian u32s.
func (m *Mesh) IndexBytes() []byte {
	out := make([]byte, 0, len(m.Indices)*4)
	for _, idx := range m.Indices {
		out = binary.LittleEndian.AppendUint32(out, idx)
	}
	return out
}

type meshReader struct {
	buf []byte
	off int
}

func (r *meshReader) count(section string) (int, error) {
	if err := r.need(4, section+" count"); err != nil {
		return 0, err
	}
	n := int(r.u32())
	if n < 0 {
		return 0, errors.Wrapf(ErrTruncatedMesh, "%s count overflows", section)
	}
	return n, nil
}

func (r *meshReader) need(n int, section string) error {
	if n < 0 || len(r.buf)-r.off < n {
		return errors.Wrapf(ErrTruncatedMesh, "%s: need %d bytes at offset %d, have %d", section, n, r.off, len(r.buf)-r.off)
	}
	return nil
}

func (r *meshReader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *meshReader) f32() float32 {
	return math.Float32frombits(r.u32())
}

package assets

// Cube returns a unit cube centered on the origin with per-face vertices,
// clockwise winding seen from outside, and a uv pair per vertex.
func Cube() *Mesh {
	faces := [6][4][3]float32{
		{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}},     // +z
		{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}, // -z
		{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}},     // +x
		{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}, // -x
		{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}},     // +y
		{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}, // -y
	}
	corners := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	m := &Mesh{}
	for f, face := range faces {
		base := uint32(f * 4)
		for i, p := range face {
			m.Positions = append(m.Positions, p)
			m.UVs = append(m.UVs, corners[i][0], corners[i][1])
		}
		m.Indices = append(m.Indices, base, base+2, base+1, base, base+3, base+2)
	}
	return m
}

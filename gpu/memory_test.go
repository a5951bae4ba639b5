package gpu

import "testing"

func TestFindMemoryType(t *testing.T) {
	props := MemoryProperties{
		Types: []MemoryType{
			{Flags: MemoryPropertyDeviceLocal},
			{Flags: MemoryPropertyHostVisible},
			{Flags: MemoryPropertyHostVisible | MemoryPropertyHostCoherent},
			{Flags: MemoryPropertyDeviceLocal | MemoryPropertyHostVisible | MemoryPropertyHostCoherent},
		},
	}

	tests := []struct {
		name     string
		typeBits uint32
		wanted   MemoryProperty
		want     uint32
		ok       bool
	}{
		{"device local", 0xf, MemoryPropertyDeviceLocal, 0, true},
		{"host coherent", 0xf, MemoryPropertyHostVisible | MemoryPropertyHostCoherent, 2, true},
		{"masked by type bits", 0x8, MemoryPropertyHostVisible, 3, true},
		{"no flags accepts first allowed", 0x6, 0, 1, true},
		{"nothing allowed", 0, MemoryPropertyDeviceLocal, 0, false},
		{"no type satisfies", 0x3, MemoryPropertyHostCoherent, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindMemoryType(props, tt.typeBits, tt.wanted)
			if ok != tt.ok || got != tt.want {
				t.Errorf("FindMemoryType() = %d, %v, want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

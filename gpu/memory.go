package gpu

// FindMemoryType returns the first memory type allowed by typeBits whose
// property flags include every flag in wanted.
func FindMemoryType(props MemoryProperties, typeBits uint32, wanted MemoryProperty) (uint32, bool) {
	for i, t := range props.Types {
		if i >= 32 {
			break
		}
		if typeBits&(1<<uint(i)) != 0 && t.Flags&wanted == wanted {
			return uint32(i), true
		}
	}
	return 0, false
}

package gpu

// QueueFamilyIndices holds the queue families the engine may use. Each index is
// optional and independent of the others.
type QueueFamilyIndices struct {
	GraphicsCompute uint32
	HasGraphics     bool
	AsyncCompute    uint32
	HasAsyncCompute bool
	Transfer        uint32
	HasTransfer     bool
}

// FindQueueFamilies scans the family list three times, once per role, and keeps
// the first match of each scan:
//   - graphics+compute: a family with both graphics and compute bits
//   - async compute: compute without graphics
//   - transfer: transfer without graphics or compute
func FindQueueFamilies(families []QueueFamily) QueueFamilyIndices {
	var q QueueFamilyIndices

	for i, f := range families {
		if f.Count > 0 && f.Flags&(QueueGraphics|QueueCompute) == QueueGraphics|QueueCompute {
			q.GraphicsCompute, q.HasGraphics = uint32(i), true
			break
		}
	}

	for i, f := range families {
		if f.Count > 0 && f.Flags&QueueCompute != 0 && f.Flags&QueueGraphics == 0 {
			q.AsyncCompute, q.HasAsyncCompute = uint32(i), true
			break
		}
	}

	for i, f := range families {
		if f.Count > 0 && f.Flags&QueueTransfer != 0 && f.Flags&(QueueGraphics|QueueCompute) == 0 {
			q.Transfer, q.HasTransfer = uint32(i), true
			break
		}
	}

	return q
}

// Unique returns the distinct family indices present, graphics first.
func (q QueueFamilyIndices) Unique() []uint32 {
	var out []uint32
	add := func(idx uint32, ok bool) {
		if !ok {
			return
		}
		for _, v := range out {
			if v == idx {
				return
			}
		}
		out = append(out, idx)
	}
	add(q.GraphicsCompute, q.HasGraphics)
	add(q.AsyncCompute, q.HasAsyncCompute)
	add(q.Transfer, q.HasTransfer)
	return out
}

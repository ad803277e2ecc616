package engine

// reorderBuffer restores frame order on the writer side of the pipeline.
// Results arrive in whatever order the workers finish; Add holds them until
// the next expected index shows up, then emits the whole contiguous run.
type reorderBuffer struct {
	next    int
	pending map[int]frameResult
}

func newReorderBuffer() *reorderBuffer {
	return &reorderBuffer{pending: make(map[int]frameResult)}
}

func (b *reorderBuffer) Add(index int, res frameResult, emit func(frameResult) error) error {
	b.pending[index] = res
	for {
		r, ok := b.pending[b.next]
		if !ok {
			return nil
		}
		delete(b.pending, b.next)
		b.next++
		if err := emit(r); err != nil {
			return err
		}
	}
}

// Pending reports frames still held back waiting for an earlier index.
func (b *reorderBuffer) Pending() int {
	return len(b.pending)
}

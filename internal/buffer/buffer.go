package buffer

// Buffer accumulates a single byte sequence, whose length is limited. It's used to collect
// lines that span over multiple network reads. The memory is reused after Clear, so
// returned slices stay valid only until the next modification.
type Buffer struct {
	memory  []byte
	maxSize int
}

// New returns a buffer with preallocated initialSize bytes. maxSize <= 0 disables the limit.
func New(initialSize, maxSize int) Buffer {
	return Buffer{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data, checking whether the new amount of bytes doesn't exceed the
// limit, otherwise discarding the data and returning false.
func (b *Buffer) Append(elements []byte) (ok bool) {
	if b.maxSize > 0 && len(b.memory)+len(elements) > b.maxSize {
		return false
	}

	b.memory = append(b.memory, elements...)
	return true
}

// Trunc cuts the last n bytes off.
func (b *Buffer) Trunc(n int) {
	if n > len(b.memory) {
		n = len(b.memory)
	}

	b.memory = b.memory[:len(b.memory)-n]
}

// Len returns the number of accumulated bytes.
func (b *Buffer) Len() int {
	return len(b.memory)
}

// Bytes returns accumulated data without copying it.
func (b *Buffer) Bytes() []byte {
	return b.memory
}

// SetLimit changes the maximal size, 0 disables it. Already accumulated data is left intact.
func (b *Buffer) SetLimit(maxSize int) {
	b.maxSize = maxSize
}

// Clear just resets the pointers, so old values may be overridden by new ones.
func (b *Buffer) Clear() {
	b.memory = b.memory[:0]
}

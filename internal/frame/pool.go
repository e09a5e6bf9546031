package frame

// defaultPoolPrefix is the small prefix the free list is initialized
// with — base spec §4.4 "a small prefix (≈128)".
const defaultPoolPrefix = 128

// Pool is a per-worker free list of Frames. Acquire returns a pooled
// Frame (or a freshly allocated one if the free list is empty); Release
// resets the frame's fields and returns it to the list. This makes
// frame allocation amortized O(1), mirroring the teacher's preallocated
// vm.stack/vm.locals arrays (pkg/vm/vm.go NewVM).
type Pool struct {
	free        []*Frame
	outstanding int
}

// NewPool builds a Pool pre-stocked with defaultPoolPrefix frames.
func NewPool() *Pool {
	p := &Pool{free: make([]*Frame, 0, defaultPoolPrefix)}
	for i := 0; i < defaultPoolPrefix; i++ {
		p.free = append(p.free, &Frame{})
	}
	return p
}

// Acquire returns a frame from the free list, allocating a new one if
// the list is empty.
func (p *Pool) Acquire() *Frame {
	p.outstanding++
	n := len(p.free)
	if n == 0 {
		return &Frame{}
	}
	f := p.free[n-1]
	p.free = p.free[:n-1]
	return f
}

// Release resets f and returns it to the free list.
func (p *Pool) Release(f *Frame) {
	p.outstanding--
	f.reset()
	p.free = append(p.free, f)
}

// Outstanding returns the number of frames currently acquired and not
// yet released. The CallStack's bottom host frame is not drawn from
// this pool, so once RunCallable returns the count is back to 0.
func (p *Pool) Outstanding() int {
	return p.outstanding
}

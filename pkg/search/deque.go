package search

// entry is a queued node with the distance it was queued at. A node whose
// distance dropped after queueing leaves a stale entry behind, detected by
// comparing Dist with the current map value.
type entry struct {
	Node uint32
	Dist uint8
}

// Deque is a growable ring buffer of entries supporting push at both ends.
// Avoids container/list's per-element allocation.
type Deque struct {
	buf  []entry
	head int
	n    int
}

// NewDeque creates a Deque with room for at least capacity entries.
func NewDeque(capacity int) *Deque {
	size := 16
	for size < capacity {
		size <<= 1
	}
	return &Deque{buf: make([]entry, size)}
}

// Len returns the number of queued entries.
func (d *Deque) Len() int { return d.n }

// PushFront inserts e before all queued entries.
func (d *Deque) PushFront(e entry) {
	if d.n == len(d.buf) {
		d.grow()
	}
	d.head = (d.head - 1) & (len(d.buf) - 1)
	d.buf[d.head] = e
	d.n++
}

// PushBack appends e after all queued entries.
func (d *Deque) PushBack(e entry) {
	if d.n == len(d.buf) {
		d.grow()
	}
	d.buf[(d.head+d.n)&(len(d.buf)-1)] = e
	d.n++
}

// Front returns the first entry without removing it. Panics if empty.
func (d *Deque) Front() entry {
	if d.n == 0 {
		panic("search: Front on empty Deque")
	}
	return d.buf[d.head]
}

// PopFront removes and returns the first entry. Panics if empty.
func (d *Deque) PopFront() entry {
	e := d.Front()
	d.head = (d.head + 1) & (len(d.buf) - 1)
	d.n--
	return e
}

// Reset empties the deque, keeping its buffer.
func (d *Deque) Reset() {
	d.head = 0
	d.n = 0
}

// grow doubles the buffer, unrolling the ring so head is at zero.
func (d *Deque) grow() {
	buf := make([]entry, len(d.buf)*2)
	k := copy(buf, d.buf[d.head:])
	copy(buf[k:], d.buf[:d.head])
	d.buf = buf
	d.head = 0
}

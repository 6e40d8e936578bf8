// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ibus

// Accumulator is a bounded byte queue. Bytes are appended at the back and
// consumed from the front; consumed space is reclaimed lazily on append.
type Accumulator struct {
	buf  []byte
	head int
	tail int
}

// NewAccumulator creates an accumulator holding at most capacity bytes.
// Capacities below MaxFrameSize are raised to MaxFrameSize.
func NewAccumulator(capacity int) *Accumulator {
	if capacity < MaxFrameSize {
		capacity = MaxFrameSize
	}
	return &Accumulator{buf: make([]byte, capacity)}
}

// Append adds one byte. If the accumulator is already full the whole
// contents are discarded along with b and ErrBufferOverflow is returned.
func (a *Accumulator) Append(b byte) error {
	if a.Len() == len(a.buf) {
		dropped := make([]byte, a.Len())
		copy(dropped, a.Bytes())
		a.Reset()
		return &FrameError{Err: ErrBufferOverflow, Raw: dropped, Length: len(dropped)}
	}

	if a.tail == len(a.buf) {
		n := copy(a.buf, a.buf[a.head:a.tail])
		a.head = 0
		a.tail = n
	}

	a.buf[a.tail] = b
	a.tail++
	return nil
}

// Len returns the number of unconsumed bytes
func (a *Accumulator) Len() int {
	return a.tail - a.head
}

// Cap returns the maximum number of bytes held
func (a *Accumulator) Cap() int {
	return len(a.buf)
}

// At returns the unconsumed byte at offset i from the front
func (a *Accumulator) At(i int) byte {
	return a.buf[a.head+i]
}

// Bytes returns the unconsumed bytes. The slice aliases internal storage and
// is valid only until the next Append, Discard or Reset.
func (a *Accumulator) Bytes() []byte {
	return a.buf[a.head:a.tail]
}

// Discard consumes up to n bytes from the front and returns how many were
// consumed
func (a *Accumulator) Discard(n int) int {
	if n > a.Len() {
		n = a.Len()
	}
	if n < 0 {
		n = 0
	}
	a.head += n
	if a.head == a.tail {
		a.head = 0
		a.tail = 0
	}
	return n
}

// Reset discards all bytes
func (a *Accumulator) Reset() {
	a.head = 0
	a.tail = 0
}

// ABOUTME: Segment queue shared by the output backends
// ABOUTME: Plays appended segments strictly in order with software gain
package output

import (
	"sync"

	"github.com/viterin/vek/vek32"
)

// queue holds appended segments and is drained by a backend goroutine
type queue struct {
	mu       sync.Mutex
	channels int
	segments [][]float32
	seg      int // segment being played
	pos      int // sample position within that segment
	total    int // samples appended
	gain     float32

	drained   chan struct{}
	drainOnce sync.Once
}

func newQueue(channels int) *queue {
	if channels <= 0 {
		channels = 1
	}
	return &queue{
		channels: channels,
		gain:     1,
		drained:  make(chan struct{}),
	}
}

// push appends a segment after every previously pushed one
func (q *queue) push(samples []float32) {
	if len(samples) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.segments = append(q.segments, samples)
	q.total += len(samples)
}

func (q *queue) setGain(gain float64) {
	q.mu.Lock()
	q.gain = float32(gain)
	q.mu.Unlock()
}

// samples returns the number of samples appended so far
func (q *queue) samples() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}

// read copies the next samples into dst with gain applied. It returns 0 once
// every segment has been consumed and marks the queue drained.
func (q *queue) read(dst []float32) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for n < len(dst) && q.seg < len(q.segments) {
		current := q.segments[q.seg]
		copied := copy(dst[n:], current[q.pos:])
		n += copied
		q.pos += copied
		if q.pos >= len(current) {
			q.seg++
			q.pos = 0
		}
	}

	if n == 0 {
		q.markDrained()
		return 0
	}
	if q.gain != 1 {
		vek32.MulNumber_Inplace(dst[:n], q.gain)
	}
	return n
}

// markDrained closes the drained channel once
func (q *queue) markDrained() {
	q.drainOnce.Do(func() {
		close(q.drained)
	})
}

// Done returns a channel closed when the queue has been fully read
func (q *queue) Done() <-chan struct{} {
	return q.drained
}

// Stream implements beep.Streamer over the queued samples
func (q *queue) Stream(samples [][2]float64) (n int, ok bool) {
	buf := make([]float32, len(samples)*q.channels)
	got := q.read(buf)
	if got == 0 {
		return 0, false
	}

	frames := got / q.channels
	for i := 0; i < frames; i++ {
		left := float64(buf[i*q.channels])
		right := left
		if q.channels > 1 {
			right = float64(buf[i*q.channels+1])
		}
		samples[i][0] = left
		samples[i][1] = right
	}
	return frames, true
}

// Err always returns nil; queued samples are already rendered
func (q *queue) Err() error { return nil }

package core

import "github.com/dkeye/Chat/internal/domain"

// DefaultHistoryCapacity matches the replay window new joiners get.
const DefaultHistoryCapacity = 200

// History is a fixed-capacity FIFO ring of messages. Not safe for concurrent
// use; the owning room guards it.
type History struct {
	buf   []domain.Message
	start int
	size  int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]domain.Message, capacity)}
}

// Push appends m, evicting the oldest entry when full.
func (h *History) Push(m domain.Message) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = m
		h.size++
		return
	}
	h.buf[h.start] = m
	h.start = (h.start + 1) % len(h.buf)
}

// Snapshot copies the ring oldest to newest.
func (h *History) Snapshot() []domain.Message {
	out := make([]domain.Message, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *History) Len() int { return h.size }
func (h *History) Cap() int { return len(h.buf) }

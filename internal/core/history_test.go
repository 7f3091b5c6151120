package core

import (
	"fmt"
	"testing"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func texts(msgs []domain.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func TestHistoryEvictsOldestFirst(t *testing.T) {
	h := NewHistory(3)
	assert.Empty(t, h.Snapshot())

	for i := 1; i <= 5; i++ {
		h.Push(domain.Message{Text: fmt.Sprintf("m%d", i)})
		assert.LessOrEqual(t, h.Len(), 3)
	}
	assert.Equal(t, []string{"m3", "m4", "m5"}, texts(h.Snapshot()))
	assert.Equal(t, 3, h.Cap())
}

func TestHistoryBelowCapacity(t *testing.T) {
	h := NewHistory(4)
	h.Push(domain.Message{Text: "a"})
	h.Push(domain.Message{Text: "b"})
	assert.Equal(t, []string{"a", "b"}, texts(h.Snapshot()))
	assert.Equal(t, 2, h.Len())
}

func TestHistoryDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(0).Cap())
	assert.Equal(t, DefaultHistoryCapacity, NewHistory(-1).Cap())
}

func TestHistorySnapshotIsACopy(t *testing.T) {
	h := NewHistory(2)
	h.Push(domain.Message{Text: "a"})
	snap := h.Snapshot()
	snap[0].Text = "mutated"
	assert.Equal(t, []string{"a"}, texts(h.Snapshot()))
}

package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFull = errors.New("backpressure")

type fakeSignal struct {
	mu     sync.Mutex
	frames []protocol.Envelope
	full   bool
}

func (f *fakeSignal) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errFull
	}
	env, err := protocol.Decode(fr)
	if err != nil {
		return err
	}
	f.frames = append(f.frames, env)
	return nil
}

func (f *fakeSignal) Close() {}

func (f *fakeSignal) take() []protocol.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.frames
	f.frames = nil
	return out
}

func newSession(sid, name string) (MemberSession, *fakeSignal) {
	sig := &fakeSignal{}
	user := &domain.User{ID: domain.UserID(sid), Username: name}
	return NewMemberSession(SessionID(sid), domain.NewMember(user), sig), sig
}

func types(envs []protocol.Envelope) []string {
	out := make([]string, 0, len(envs))
	for _, e := range envs {
		out = append(out, e.Type)
	}
	return out
}

func decode[T any](t *testing.T, env protocol.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, protocol.DecodeData(env, &v))
	return v
}

func lastOf(t *testing.T, envs []protocol.Envelope, eventType string) protocol.Envelope {
	t.Helper()
	for i := len(envs) - 1; i >= 0; i-- {
		if envs[i].Type == eventType {
			return envs[i]
		}
	}
	t.Fatalf("no %s event in %v", eventType, types(envs))
	return protocol.Envelope{}
}

func newLobby(capacity int) RoomService {
	return NewRoomService(&domain.Room{Name: "lobby"}, capacity)
}

func TestRoomLobbyScenario(t *testing.T) {
	room := newLobby(10)
	alice, aliceSig := newSession("a", "Alice")
	bob, bobSig := newSession("b", "Bob")

	_, err := room.Join(alice)
	require.NoError(t, err)
	got := aliceSig.take()
	require.Equal(t, []string{"history", "status", "user_list"}, types(got))
	assert.Empty(t, decode[[]protocol.ChatEntry](t, got[0]))
	assert.Equal(t, "Alice joined the room.", decode[protocol.StatusPayload](t, got[1]).Msg)
	assert.Equal(t, []string{"Alice"}, decode[[]string](t, got[2]))

	_, err = room.Join(bob)
	require.NoError(t, err)
	bobGot := bobSig.take()
	require.Equal(t, "history", bobGot[0].Type)
	assert.Empty(t, decode[[]protocol.ChatEntry](t, bobGot[0]))
	assert.Equal(t, []string{"Alice", "Bob"}, decode[[]string](t, lastOf(t, bobGot, "user_list")))
	assert.Equal(t, []string{"Alice", "Bob"}, decode[[]string](t, lastOf(t, aliceSig.take(), "user_list")))

	res, err := room.Post("a", "hi")
	require.NoError(t, err)
	assert.Equal(t, 2, res.SendTo)
	for _, sig := range []*fakeSignal{aliceSig, bobSig} {
		got := sig.take()
		require.Len(t, got, 1)
		entry := decode[protocol.ChatEntry](t, got[0])
		assert.Equal(t, "message", got[0].Type)
		assert.Equal(t, "Alice", entry.Username)
		assert.Equal(t, "hi", entry.Msg)
		assert.NotZero(t, entry.TS)
	}
	hist := room.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "Alice", hist[0].Username)
	assert.Equal(t, "hi", hist[0].Text)
	assert.Equal(t, domain.RoomName("lobby"), hist[0].Room)

	left, err := room.Leave("b")
	require.NoError(t, err)
	assert.Equal(t, "Bob", left.Username)
	assert.Equal(t, 1, left.Remaining)
	got = aliceSig.take()
	assert.Equal(t, []string{"Alice"}, decode[[]string](t, lastOf(t, got, "user_list")))
	assert.Equal(t, "Bob left the room.", decode[protocol.StatusPayload](t, lastOf(t, got, "status")).Msg)
	assert.Empty(t, bobSig.take(), "a departed member receives nothing")
}

func TestRoomJoinIsIdempotent(t *testing.T) {
	room := newLobby(10)
	alice, sig := newSession("a", "Alice")
	_, err := room.Join(alice)
	require.NoError(t, err)
	sig.take()

	_, err = room.Join(alice)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Empty(t, sig.take())
	assert.Equal(t, 1, room.MemberCount())
	assert.Equal(t, []string{"Alice"}, room.Roster())
}

func TestRoomRejectsBlankMessages(t *testing.T) {
	room := newLobby(10)
	alice, sig := newSession("a", "Alice")
	_, err := room.Join(alice)
	require.NoError(t, err)
	sig.take()

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := room.Post("a", text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Empty(t, sig.take())
	assert.Empty(t, room.History())
}

func TestRoomTrimsMessageText(t *testing.T) {
	room := newLobby(10)
	alice, _ := newSession("a", "Alice")
	_, err := room.Join(alice)
	require.NoError(t, err)
	_, err = room.Post("a", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, texts(room.History()))
}

func TestRoomNonMemberOperationsAreNoOps(t *testing.T) {
	room := newLobby(10)
	alice, sig := newSession("a", "Alice")
	_, err := room.Join(alice)
	require.NoError(t, err)
	sig.take()

	_, err = room.Leave("ghost")
	assert.ErrorIs(t, err, ErrNotMember)
	_, err = room.Post("ghost", "boo")
	assert.ErrorIs(t, err, ErrNotMember)
	_, err = room.SetTyping("ghost", true)
	assert.ErrorIs(t, err, ErrNotMember)

	assert.Empty(t, sig.take())
	assert.Empty(t, room.History())
}

func TestRoomTypingSkipsSender(t *testing.T) {
	room := newLobby(10)
	alice, aliceSig := newSession("a", "Alice")
	bob, bobSig := newSession("b", "Bob")
	_, _ = room.Join(alice)
	_, _ = room.Join(bob)
	aliceSig.take()
	bobSig.take()

	res, err := room.SetTyping("a", true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.SendTo)
	assert.Empty(t, aliceSig.take())
	got := bobSig.take()
	require.Len(t, got, 1)
	assert.Equal(t, "typing", got[0].Type)
	assert.Equal(t, protocol.TypingNotice{Username: "Alice", Typing: true}, decode[protocol.TypingNotice](t, got[0]))
	assert.Equal(t, []string{"Alice"}, room.TypingUsers())

	_, err = room.SetTyping("a", false)
	require.NoError(t, err)
	assert.Empty(t, room.TypingUsers())
	assert.False(t, decode[protocol.TypingNotice](t, bobSig.take()[0]).Typing)
}

func TestRoomLeaveClearsTyping(t *testing.T) {
	room := newLobby(10)
	alice, _ := newSession("a", "Alice")
	bob, bobSig := newSession("b", "Bob")
	_, _ = room.Join(alice)
	_, _ = room.Join(bob)
	_, _ = room.SetTyping("a", true)
	bobSig.take()

	_, err := room.Leave("a")
	require.NoError(t, err)
	assert.Empty(t, room.TypingUsers())
	got := bobSig.take()
	require.Equal(t, []string{"typing", "status", "user_list"}, types(got))
	assert.Equal(t, protocol.TypingNotice{Username: "Alice", Typing: false}, decode[protocol.TypingNotice](t, got[0]))
}

func TestRoomHistoryReplayPrecedesLiveMessages(t *testing.T) {
	room := newLobby(3)
	alice, aliceSig := newSession("a", "Alice")
	_, _ = room.Join(alice)
	for i := 1; i <= 4; i++ {
		_, err := room.Post("a", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}
	aliceSig.take()

	bob, bobSig := newSession("b", "Bob")
	_, err := room.Join(bob)
	require.NoError(t, err)
	_, err = room.Post("a", "m5")
	require.NoError(t, err)

	got := bobSig.take()
	require.Equal(t, "history", got[0].Type)
	var replayed []string
	for _, e := range decode[[]protocol.ChatEntry](t, got[0]) {
		replayed = append(replayed, e.Msg)
	}
	assert.Equal(t, []string{"m2", "m3", "m4"}, replayed)
	live := lastOf(t, got, "message")
	assert.Equal(t, "m5", decode[protocol.ChatEntry](t, live).Msg)
	assert.Equal(t, []string{"m3", "m4", "m5"}, texts(room.History()))
}

func TestRoomFanoutIsolatesSlowRecipient(t *testing.T) {
	room := newLobby(10)
	alice, aliceSig := newSession("a", "Alice")
	bob, bobSig := newSession("b", "Bob")
	carol, carolSig := newSession("c", "Carol")
	_, _ = room.Join(alice)
	_, _ = room.Join(bob)
	_, _ = room.Join(carol)
	aliceSig.take()
	carolSig.take()
	bobSig.full = true

	res, err := room.Post("a", "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, res.SendTo)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, SessionID("b"), res.Dropped[0].ID())
	assert.Len(t, aliceSig.take(), 1)
	assert.Len(t, carolSig.take(), 1)
}

func TestRoomJoinDropsAreDeduplicated(t *testing.T) {
	room := newLobby(10)
	alice, aliceSig := newSession("a", "Alice")
	_, _ = room.Join(alice)
	aliceSig.full = true

	bob, _ := newSession("b", "Bob")
	res, err := room.Join(bob)
	require.NoError(t, err)
	require.Len(t, res.Dropped, 1, "status and user_list drops collapse to one entry")
	assert.Equal(t, SessionID("a"), res.Dropped[0].ID())
}

func TestRoomCloseIfEmpty(t *testing.T) {
	room := newLobby(10)
	alice, _ := newSession("a", "Alice")
	_, _ = room.Join(alice)
	assert.False(t, room.CloseIfEmpty())
	assert.False(t, room.Closed())

	_, _ = room.Leave("a")
	assert.True(t, room.CloseIfEmpty())
	assert.True(t, room.Closed())

	_, err := room.Join(alice)
	assert.ErrorIs(t, err, ErrRoomClosed)
	assert.Zero(t, room.MemberCount())
}

func TestRoomMembersSnapshotKeepsJoinOrder(t *testing.T) {
	room := newLobby(10)
	for _, name := range []string{"Zed", "Amy", "Amy"} {
		s, _ := newSession(name+fmt.Sprint(room.MemberCount()), name)
		_, err := room.Join(s)
		require.NoError(t, err)
	}
	snap := room.MembersSnapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "Zed", snap[0].Username)
	assert.Equal(t, []string{"Zed", "Amy", "Amy"}, room.Roster(), "names need not be unique")
}

func TestRoomConcurrentMembershipKeepsRosterConsistent(t *testing.T) {
	room := newLobby(10)
	const n = 50
	var wg sync.WaitGroup
	sigs := make([]*fakeSignal, n)
	for i := 0; i < n; i++ {
		s, sig := newSession(fmt.Sprintf("s%d", i), fmt.Sprintf("u%d", i))
		sigs[i] = sig
		wg.Add(1)
		go func(i int, s MemberSession) {
			defer wg.Done()
			_, _ = room.Join(s)
			_, _ = room.Post(s.ID(), "hello")
			if i%2 == 0 {
				_, _ = room.Leave(s.ID())
			}
		}(i, s)
	}
	wg.Wait()

	roster := room.Roster()
	assert.Len(t, roster, n/2)
	assert.Equal(t, n/2, room.MemberCount())

	// Whoever is still in the room saw a final user_list equal to the roster.
	for i := 1; i < n; i += 2 {
		got := sigs[i].take()
		assert.ElementsMatch(t, roster, decode[[]string](t, lastOf(t, got, "user_list")))
	}
}

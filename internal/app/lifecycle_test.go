package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkoval/meet-signaling/internal/core"
	"github.com/mkoval/meet-signaling/internal/domain"
)

// fakeConn captures frames instead of writing to a socket. With full set it
// behaves like a saturated send queue.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errors.New("queue full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) eventsOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

type relayFixture struct {
	sessions *SessionRegistry
	rooms    *RoomRegistry
	life     *Lifecycle
	router   *SignalRouter
	chat     *ChatRelay
}

func newRelayFixture() *relayFixture {
	sessions := NewSessionRegistry()
	rooms := NewRoomRegistry()
	presence := NewPresenceBroadcaster(sessions)
	return &relayFixture{
		sessions: sessions,
		rooms:    rooms,
		life:     NewLifecycle(sessions, rooms, presence),
		router:   NewSignalRouter(sessions),
		chat:     NewChatRelay(sessions, rooms),
	}
}

func (fx *relayFixture) connect(t *testing.T, sid string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	require.NoError(t, fx.life.Connect(domain.SessionID(sid), conn))
	return conn
}

func roster(ev map[string]any) []string {
	users, _ := ev["users"].([]any)
	out := make([]string, 0, len(users))
	for _, u := range users {
		m := u.(map[string]any)
		out = append(out, m["id"].(string))
	}
	return out
}

func TestLifecycle_PresenceFanoutOnJoin(t *testing.T) {
	fx := newRelayFixture()
	a := fx.connect(t, "sid-a")
	b := fx.connect(t, "sid-b")
	c := fx.connect(t, "sid-c")

	fx.life.JoinRoom("sid-a", "R1", "Alice")
	fx.life.JoinRoom("sid-b", "R1", "Bob")
	a.reset()
	b.reset()

	fx.life.JoinRoom("sid-c", "R1", "Cleo")

	for _, existing := range []*fakeConn{a, b} {
		joined := existing.eventsOfType(t, core.TypeUserJoined)
		require.Len(t, joined, 1)
		require.Equal(t, "sid-c", joined[0]["userId"])
		require.Equal(t, "Cleo", joined[0]["userName"])
		require.Equal(t, []string{"sid-a", "sid-b", "sid-c"}, roster(joined[0]))
	}

	rosters := c.eventsOfType(t, core.TypeRoomUsers)
	require.Len(t, rosters, 1)
	require.Equal(t, []string{"sid-a", "sid-b", "sid-c"}, roster(rosters[0]))
	require.Empty(t, c.eventsOfType(t, core.TypeUserJoined), "joiner must not hear its own join")
}

func TestLifecycle_JoinWithoutNameGetsDefault(t *testing.T) {
	fx := newRelayFixture()
	conn := fx.connect(t, "abcdefgh-999")

	fx.life.JoinRoom("abcdefgh-999", "R1", "")

	rosters := conn.eventsOfType(t, core.TypeRoomUsers)
	require.Len(t, rosters, 1)
	users := rosters[0]["users"].([]any)
	require.Equal(t, "User-abcdefgh", users[0].(map[string]any)["name"])
}

func TestLifecycle_DuplicateJoinRefreshesRosterOnly(t *testing.T) {
	fx := newRelayFixture()
	a := fx.connect(t, "sid-a")
	b := fx.connect(t, "sid-b")

	fx.life.JoinRoom("sid-a", "R1", "Alice")
	fx.life.JoinRoom("sid-b", "R1", "Bob")
	a.reset()
	b.reset()

	fx.life.JoinRoom("sid-a", "R1", "Alice")

	require.Empty(t, b.eventsOfType(t, core.TypeUserJoined), "no user_joined for a re-join")
	rosters := a.eventsOfType(t, core.TypeRoomUsers)
	require.Len(t, rosters, 1)
	require.Equal(t, []string{"sid-a", "sid-b"}, roster(rosters[0]))
	require.Len(t, fx.rooms.MembersOf("R1"), 2)
}

func TestLifecycle_LeaveNotifiesRemaining(t *testing.T) {
	fx := newRelayFixture()
	a := fx.connect(t, "sid-a")
	b := fx.connect(t, "sid-b")

	fx.life.JoinRoom("sid-a", "R1", "Alice")
	fx.life.JoinRoom("sid-b", "R1", "Bob")
	a.reset()
	b.reset()

	fx.life.LeaveRoom("sid-b")

	left := a.eventsOfType(t, core.TypeUserLeft)
	require.Len(t, left, 1)
	require.Equal(t, "sid-b", left[0]["userId"])
	require.Equal(t, []string{"sid-a"}, roster(left[0]))
	require.Empty(t, b.eventsOfType(t, core.TypeUserLeft), "the leaver is not notified")

	sess, _ := fx.sessions.Lookup("sid-b")
	require.Empty(t, sess.Room)
}

func TestLifecycle_LeaveDrainingEmitsNothing(t *testing.T) {
	fx := newRelayFixture()
	a := fx.connect(t, "sid-a")

	fx.life.JoinRoom("sid-a", "R2", "Alice")
	a.reset()

	fx.life.LeaveRoom("sid-a")

	require.False(t, fx.rooms.Contains("R2"))
	require.Empty(t, a.events(t))
}

func TestLifecycle_LeaveWithoutRoomIsNoop(t *testing.T) {
	fx := newRelayFixture()
	a := fx.connect(t, "sid-a")

	fx.life.LeaveRoom("sid-a")

	require.Empty(t, a.events(t))
	_, ok := fx.sessions.Lookup("sid-a")
	require.True(t, ok)
}

func TestLifecycle_SwitchRoomsLeavesFirst(t *testing.T) {
	fx := newRelayFixture()
	a := fx.connect(t, "sid-a")
	b := fx.connect(t, "sid-b")

	fx.life.JoinRoom("sid-a", "R1", "Alice")
	fx.life.JoinRoom("sid-b", "R1", "Bob")
	a.reset()
	b.reset()

	fx.life.JoinRoom("sid-a", "R2", "Alice")

	left := b.eventsOfType(t, core.TypeUserLeft)
	require.Len(t, left, 1)
	require.Equal(t, "sid-a", left[0]["userId"])

	require.Equal(t, []string{"sid-b"}, memberIDs(fx.rooms.MembersOf("R1")))
	require.Equal(t, []string{"sid-a"}, memberIDs(fx.rooms.MembersOf("R2")))

	sess, _ := fx.sessions.Lookup("sid-a")
	require.Equal(t, "R2", string(sess.Room))
}

func TestLifecycle_DisconnectActsAsLeave(t *testing.T) {
	fx := newRelayFixture()
	a := fx.connect(t, "sid-a")
	b := fx.connect(t, "sid-b")

	fx.life.JoinRoom("sid-a", "R1", "Alice")
	fx.life.JoinRoom("sid-b", "R1", "Bob")
	a.reset()
	b.reset()

	fx.life.Disconnect("sid-b")

	left := a.eventsOfType(t, core.TypeUserLeft)
	require.Len(t, left, 1)
	require.Equal(t, "sid-b", left[0]["userId"])
	_, ok := fx.sessions.Lookup("sid-b")
	require.False(t, ok)
}

func TestLifecycle_DisconnectIsIdempotent(t *testing.T) {
	fx := newRelayFixture()
	fx.connect(t, "sid-a")
	b := fx.connect(t, "sid-b")

	fx.life.JoinRoom("sid-a", "R1", "Alice")
	fx.life.JoinRoom("sid-b", "R1", "Bob")
	b.reset()

	fx.life.Disconnect("sid-a")
	firstLeft := b.eventsOfType(t, core.TypeUserLeft)

	fx.life.Disconnect("sid-a")
	require.Equal(t, firstLeft, b.eventsOfType(t, core.TypeUserLeft), "second disconnect changes nothing")
	require.Equal(t, []string{"sid-b"}, memberIDs(fx.rooms.MembersOf("R1")))
}

func TestLifecycle_DisconnectBeforeJoinIsTolerated(t *testing.T) {
	fx := newRelayFixture()
	fx.connect(t, "sid-a")

	fx.life.Disconnect("sid-a")
	// A join that lost the race against disconnect must not resurrect state.
	fx.life.JoinRoom("sid-a", "R1", "Alice")

	require.False(t, fx.rooms.Contains("R1"))
	_, ok := fx.sessions.Lookup("sid-a")
	require.False(t, ok)
}

func TestLifecycle_SlowPeerDoesNotBlockOthers(t *testing.T) {
	fx := newRelayFixture()
	a := fx.connect(t, "sid-a")
	b := fx.connect(t, "sid-b")
	b.full = true

	fx.life.JoinRoom("sid-a", "R1", "Alice")
	fx.life.JoinRoom("sid-b", "R1", "Bob")
	a.reset()

	c := fx.connect(t, "sid-c")
	fx.life.JoinRoom("sid-c", "R1", "Cleo")

	// b's frame is lost, everyone else still hears the join.
	require.Len(t, a.eventsOfType(t, core.TypeUserJoined), 1)
	require.Len(t, c.eventsOfType(t, core.TypeRoomUsers), 1)
}

func memberIDs(members []domain.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, string(m.ID))
	}
	return out
}

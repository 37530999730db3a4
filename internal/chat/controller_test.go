package chat_test

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/chat/mocks"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

var fixedTime = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

type delivery struct {
	Event   string
	Payload any
}

// roomTransport resolves room emits into per-connection inboxes so tests can
// assert what each participant actually receives.
type roomTransport struct {
	mu    sync.Mutex
	rooms map[string][]chat.ConnectionID
	inbox map[chat.ConnectionID][]delivery
}

func newRoomTransport() *roomTransport {
	return &roomTransport{
		rooms: make(map[string][]chat.ConnectionID),
		inbox: make(map[chat.ConnectionID][]delivery),
	}
}

func (t *roomTransport) JoinRoom(id chat.ConnectionID, room string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rooms[room] = append(t.rooms[room], id)
}

func (t *roomTransport) LeaveRoom(id chat.ConnectionID, room string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	members := t.rooms[room][:0]
	for _, member := range t.rooms[room] {
		if member != id {
			members = append(members, member)
		}
	}
	t.rooms[room] = members
}

func (t *roomTransport) EmitToConnection(id chat.ConnectionID, event string, payload any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbox[id] = append(t.inbox[id], delivery{Event: event, Payload: payload})
}

func (t *roomTransport) EmitToRoomExcept(room string, exclude chat.ConnectionID, event string, payload any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range t.rooms[room] {
		if id != exclude {
			t.inbox[id] = append(t.inbox[id], delivery{Event: event, Payload: payload})
		}
	}
}

func (t *roomTransport) EmitToRoom(room string, event string, payload any) {
	t.EmitToRoomExcept(room, "", event, payload)
}

// drain returns and clears everything delivered to id.
func (t *roomTransport) drain(id chat.ConnectionID) []delivery {
	t.mu.Lock()
	defer t.mu.Unlock()
	got := t.inbox[id]
	delete(t.inbox, id)
	return got
}

// lastRoster returns the users of the last roster delivered to id.
func (t *roomTransport) lastRoster(id chat.ConnectionID) []chat.RosterEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	inbox := t.inbox[id]
	for i := len(inbox) - 1; i >= 0; i-- {
		if data, ok := inbox[i].Payload.(chat.RoomData); ok {
			return data.Users
		}
	}
	return nil
}

// gatedTransport holds the JoinRoom of one connection until release is
// closed, leaving its join half done.
type gatedTransport struct {
	*roomTransport
	gated   chat.ConnectionID
	entered chan struct{}
	release chan struct{}
}

func (t *gatedTransport) JoinRoom(id chat.ConnectionID, room string) {
	if id == t.gated {
		close(t.entered)
		<-t.release
	}
	t.roomTransport.JoinRoom(id, room)
}

func text(sender, body string) delivery {
	return delivery{
		Event:   chat.EventMessage,
		Payload: chat.Message{Username: sender, Text: body, CreatedAt: fixedTime.UnixMilli()},
	}
}

func location(sender, url string) delivery {
	return delivery{
		Event:   chat.EventLocationMessage,
		Payload: chat.LocationMessage{Username: sender, URL: url, CreatedAt: fixedTime.UnixMilli()},
	}
}

func roster(room string, names ...string) delivery {
	users := make([]chat.RosterEntry, 0, len(names))
	for _, name := range names {
		users = append(users, chat.RosterEntry{Username: name})
	}
	return delivery{Event: chat.EventRoomData, Payload: chat.RoomData{Room: room, Users: users}}
}

func newFactory() *chat.MessageFactory {
	return chat.NewMessageFactoryWithClock(func() time.Time { return fixedTime })
}

func newLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

type fixture struct {
	registry   *chat.Registry
	transport  *roomTransport
	policy     *mocks.MockContentPolicy
	controller *chat.SessionController
}

func newFixture(t *testing.T, mode chat.ProfanityMode) fixture {
	ctrl := gomock.NewController(t)
	registry := chat.NewRegistry()
	transport := newRoomTransport()
	policy := mocks.NewMockContentPolicy(ctrl)
	controller := chat.NewSessionController(newLogger(), registry, transport, policy, newFactory(),
		chat.Options{ProfanityMode: mode})
	return fixture{registry: registry, transport: transport, policy: policy, controller: controller}
}

// joinAliceAndBob puts both users in the lobby and clears their inboxes.
func (f fixture) joinAliceAndBob(t *testing.T) {
	t.Helper()
	require.NoError(t, f.controller.Join("alice", "Alice", "lobby"))
	require.NoError(t, f.controller.Join("bob", "Bob", "lobby"))
	f.transport.drain("alice")
	f.transport.drain("bob")
}

func TestSessionController_Join_Scenario(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, chat.ProfanityCensor)

	// When Alice joins the lobby
	req.NoError(f.controller.Join("alice", "Alice", "lobby"))

	// Then she is welcomed by Admin and sees herself in the roster
	req.Equal([]delivery{
		text("Admin", "Welcome!"),
		roster("lobby", "Alice"),
	}, f.transport.drain("alice"))

	// When Bob joins the lobby
	req.NoError(f.controller.Join("bob", "Bob", "lobby"))

	// Then Alice is told and both receive the updated roster
	req.Equal([]delivery{
		text("Admin", "Bob has joined!"),
		roster("lobby", "Alice", "Bob"),
	}, f.transport.drain("alice"))
	req.Equal([]delivery{
		text("Admin", "Welcome!"),
		roster("lobby", "Alice", "Bob"),
	}, f.transport.drain("bob"))
	req.Equal([]string{"lobby"}, f.controller.Rooms())
}

func TestSessionController_Join_Emits_In_Order(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	policy := mocks.NewMockContentPolicy(ctrl)
	controller := chat.NewSessionController(newLogger(), chat.NewRegistry(), transport, policy, newFactory(), chat.Options{})

	gomock.InOrder(
		transport.EXPECT().JoinRoom(chat.ConnectionID("alice"), "lobby"),
		transport.EXPECT().EmitToConnection(chat.ConnectionID("alice"), chat.EventMessage, text("Admin", "Welcome!").Payload),
		transport.EXPECT().EmitToRoomExcept("lobby", chat.ConnectionID("alice"), chat.EventMessage, text("Admin", "Alice has joined!").Payload),
		transport.EXPECT().EmitToRoom("lobby", chat.EventRoomData, roster("lobby", "Alice").Payload),
	)

	require.NoError(t, controller.Join("alice", "Alice", "lobby"))
}

func TestSessionController_Join_Failure_Has_No_Side_Effects(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := chat.NewRegistry()
	// No expectations: any transport call fails the test.
	transport := mocks.NewMockTransport(ctrl)
	policy := mocks.NewMockContentPolicy(ctrl)
	controller := chat.NewSessionController(newLogger(), registry, transport, policy, newFactory(), chat.Options{})

	_, err := registry.AddUser("alice", "Alice", "lobby")
	require.NoError(t, err)

	tests := []struct {
		name     string
		id       chat.ConnectionID
		username string
		room     string
		expected error
	}{
		{name: "name taken", id: "bob", username: "ALICE", room: "lobby", expected: chat.ErrNameTaken},
		{name: "missing username", id: "bob", username: " ", room: "lobby", expected: chat.ErrMissingField},
		{name: "missing room", id: "bob", username: "Bob", room: "", expected: chat.ErrMissingField},
		{name: "already joined", id: "alice", username: "Other", room: "garden", expected: chat.ErrAlreadyJoined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := controller.Join(tt.id, tt.username, tt.room)
			req.ErrorIs(err, tt.expected)
			req.Equal([]chat.RosterEntry{{Username: "Alice"}}, registry.GetUsersInRoom("lobby"))
			req.Equal([]string{"lobby"}, registry.GetAllRooms())
		})
	}
}

func TestSessionController_SendMessage_Scenario(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, chat.ProfanityCensor)
	f.joinAliceAndBob(t)
	f.policy.EXPECT().IsProfane("hello").Return(false)

	// When Alice says hello
	req.NoError(f.controller.SendMessage("alice", "hello"))

	// Then Alice gets her echo and Bob gets the attributed copy
	req.Equal([]delivery{text("Me", "hello")}, f.transport.drain("alice"))
	req.Equal([]delivery{text("Alice", "hello")}, f.transport.drain("bob"))
}

func TestSessionController_SendMessage_Stays_In_Room(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, chat.ProfanityCensor)
	f.joinAliceAndBob(t)
	req.NoError(f.controller.Join("carol", "Carol", "garden"))
	f.transport.drain("carol")
	f.policy.EXPECT().IsProfane(gomock.Any()).Return(false)

	req.NoError(f.controller.SendMessage("bob", "lobby only"))

	req.Equal([]delivery{text("Bob", "lobby only")}, f.transport.drain("alice"))
	req.Empty(f.transport.drain("carol"))
}

func TestSessionController_SendMessage_Profane_Censor(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, chat.ProfanityCensor)
	f.joinAliceAndBob(t)
	f.policy.EXPECT().IsProfane("you damn fool").Return(true)
	f.policy.EXPECT().Clean("you damn fool").Return("you **** fool")

	// When Alice sends a profane message
	err := f.controller.SendMessage("alice", "you damn fool")

	// Then the acknowledgement still reports the profanity
	req.ErrorIs(err, chat.ErrProfane)

	// And the whole room sees the cleaned text attributed to Alice
	// And Alice is additionally warned in private
	req.Equal([]delivery{
		text("Alice", "you **** fool"),
		text("Me", "Profanity is not allowed. Please be polite!"),
	}, f.transport.drain("alice"))
	req.Equal([]delivery{text("Alice", "you **** fool")}, f.transport.drain("bob"))
}

func TestSessionController_SendMessage_Profane_Reject(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, chat.ProfanityReject)
	f.joinAliceAndBob(t)
	f.policy.EXPECT().IsProfane("you damn fool").Return(true)

	err := f.controller.SendMessage("alice", "you damn fool")

	req.ErrorIs(err, chat.ErrProfane)
	req.Empty(f.transport.drain("alice"))
	req.Empty(f.transport.drain("bob"))
}

func TestSessionController_Not_Joined_Has_No_Fan_Out(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	// No expectations on either mock: any call fails the test.
	transport := mocks.NewMockTransport(ctrl)
	policy := mocks.NewMockContentPolicy(ctrl)
	controller := chat.NewSessionController(newLogger(), chat.NewRegistry(), transport, policy, newFactory(), chat.Options{})

	req.ErrorIs(controller.SendMessage("ghost", "hello"), chat.ErrNotJoined)
	req.ErrorIs(controller.SendLocation("ghost", 1, 2), chat.ErrNotJoined)

	// Disconnecting a connection that never joined is a silent no-op
	controller.Disconnect("ghost")
}

func TestSessionController_SendLocation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, chat.ProfanityCensor)
	f.joinAliceAndBob(t)

	// The content policy is never consulted for coordinates.
	req.NoError(f.controller.SendLocation("bob", 51.5074, -0.1278))

	url := "https://google.com/maps?q=51.5074,-0.1278"
	req.Equal([]delivery{location("Me", url)}, f.transport.drain("bob"))
	req.Equal([]delivery{location("Bob", url)}, f.transport.drain("alice"))
}

func TestSessionController_Disconnect_Scenario(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, chat.ProfanityCensor)
	f.joinAliceAndBob(t)

	// When Bob disconnects
	f.controller.Disconnect("bob")

	// Then Alice is told and gets a roster with only herself
	req.Equal([]delivery{
		text("Admin", "Bob has left!"),
		roster("lobby", "Alice"),
	}, f.transport.drain("alice"))
	req.Empty(f.transport.drain("bob"))
	req.Equal([]string{"lobby"}, f.controller.Rooms())

	// When Alice leaves too
	f.controller.Disconnect("alice")

	// Then the lobby disappears
	req.Empty(f.controller.Rooms())

	// And a repeated disconnect changes nothing
	f.controller.Disconnect("alice")
	req.Empty(f.transport.drain("alice"))
}

func TestSessionController_ListRooms(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, chat.ProfanityCensor)
	f.joinAliceAndBob(t)
	req.NoError(f.controller.Join("carol", "Carol", "garden"))

	// Any connection may ask, joined or not
	f.controller.ListRooms("visitor")

	req.Equal([]delivery{{
		Event:   chat.EventRoomsList,
		Payload: chat.RoomsList{Rooms: []string{"garden", "lobby"}},
	}}, f.transport.drain("visitor"))
}

func TestSessionController_Concurrent_Sessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	req := require.New(t)
	f := newFixture(t, chat.ProfanityCensor)
	f.policy.EXPECT().IsProfane(gomock.Any()).Return(false).AnyTimes()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := chat.ConnectionID(fmt.Sprintf("c%d", i))
			room := fmt.Sprintf("room%d", i%4)
			if err := f.controller.Join(id, fmt.Sprintf("user%d", i), room); err != nil {
				t.Errorf("join %s: %v", id, err)
				return
			}
			if err := f.controller.SendMessage(id, "hi"); err != nil {
				t.Errorf("send %s: %v", id, err)
			}
			if i%2 == 1 {
				f.controller.Disconnect(id)
			}
		}(i)
	}
	wg.Wait()

	req.Equal(20, f.registry.Len())
	req.Equal([]string{"room0", "room2"}, f.controller.Rooms())
	for _, room := range f.controller.Rooms() {
		req.Len(f.registry.GetUsersInRoom(room), 10)
	}

	// Every remaining participant last saw the room as the registry holds it
	for i := 0; i < 40; i += 2 {
		id := chat.ConnectionID(fmt.Sprintf("c%d", i))
		room := fmt.Sprintf("room%d", i%4)
		req.Equal(f.registry.GetUsersInRoom(room), f.transport.lastRoster(id), "roster seen by %s", id)
	}
}

func TestSessionController_Membership_Changes_Wait_For_A_Join_In_Flight(t *testing.T) {
	tests := []struct {
		name      string
		before    func(c *chat.SessionController) error
		meanwhile func(c *chat.SessionController) error
		remaining []chat.ConnectionID
		announced delivery
	}{
		{
			name:      "join",
			meanwhile: func(c *chat.SessionController) error { return c.Join("bob", "Bob", "lobby") },
			remaining: []chat.ConnectionID{"alice", "bob"},
			announced: text("Admin", "Bob has joined!"),
		},
		{
			name:      "disconnect",
			before:    func(c *chat.SessionController) error { return c.Join("bob", "Bob", "lobby") },
			meanwhile: func(c *chat.SessionController) error { c.Disconnect("bob"); return nil },
			remaining: []chat.ConnectionID{"alice"},
			announced: text("Admin", "Bob has left!"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)
			req := require.New(t)

			registry := chat.NewRegistry()
			transport := &gatedTransport{
				roomTransport: newRoomTransport(),
				gated:         "alice",
				entered:       make(chan struct{}),
				release:       make(chan struct{}),
			}
			policy := mocks.NewMockContentPolicy(gomock.NewController(t))
			controller := chat.NewSessionController(newLogger(), registry, transport, policy, newFactory(), chat.Options{})
			if tt.before != nil {
				req.NoError(tt.before(controller))
			}

			// Given Alice's join is registered but not yet in the room group
			aliceDone := make(chan error, 1)
			go func() { aliceDone <- controller.Join("alice", "Alice", "lobby") }()
			<-transport.entered

			// When Bob's membership changes meanwhile
			otherDone := make(chan error, 1)
			go func() { otherDone <- tt.meanwhile(controller) }()

			// Then the change waits for Alice's join to complete
			select {
			case err := <-otherDone:
				close(transport.release)
				<-aliceDone
				t.Fatalf("%s finished while Alice was joining: %v", tt.name, err)
			case <-time.After(50 * time.Millisecond):
			}
			close(transport.release)
			req.NoError(<-aliceDone)
			req.NoError(<-otherDone)

			// And everyone left in the room last saw the registry's roster
			expected := registry.GetUsersInRoom("lobby")
			req.Len(expected, len(tt.remaining))
			for _, id := range tt.remaining {
				req.Equal(expected, transport.lastRoster(id), "roster seen by %s", id)
			}
			req.Contains(transport.drain("alice"), tt.announced)
		})
	}
}

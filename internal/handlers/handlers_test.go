package handlers

import (
	"encoding/json"
	"testing"

	"github.com/cardwire/tableserver/internal/ability"
	"github.com/cardwire/tableserver/internal/broadcast"
	"github.com/cardwire/tableserver/internal/engine"
	"github.com/cardwire/tableserver/internal/seats"
	"github.com/cardwire/tableserver/internal/store"
	"github.com/cardwire/tableserver/internal/token"
	"github.com/cardwire/tableserver/internal/ws"
)

type sentEvent struct {
	event string
	data  any
}

type fakeConn struct {
	id     string
	events []sentEvent
}

func (f *fakeConn) ID() string { return f.id }

func (f *fakeConn) Send(event string, data any) error {
	f.events = append(f.events, sentEvent{event, data})
	return nil
}

func (f *fakeConn) last(t *testing.T) sentEvent {
	t.Helper()
	if len(f.events) == 0 {
		t.Fatalf("connection %s received no events", f.id)
	}
	return f.events[len(f.events)-1]
}

// lastNamed returns the most recent event with the given name.
func (f *fakeConn) lastNamed(t *testing.T, name string) sentEvent {
	t.Helper()
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].event == name {
			return f.events[i]
		}
	}
	t.Fatalf("connection %s never received %q; got %v", f.id, name, f.eventNames())
	return sentEvent{}
}

func (f *fakeConn) received(name string) bool {
	for _, ev := range f.events {
		if ev.event == name {
			return true
		}
	}
	return false
}

func (f *fakeConn) eventNames() []string {
	names := make([]string, len(f.events))
	for i, ev := range f.events {
		names[i] = ev.event
	}
	return names
}

// fakeEngine is a scripted EngineCaller recording every call.
type fakeEngine struct {
	createResp *engine.CreateGameResponse
	createErr  error
	createReqs []engine.CreateGameRequest

	startState *engine.GameState
	startErr   error
	startCalls int

	useResp *engine.AbilityResponse
	useErr  error
}

func (f *fakeEngine) CreateGame(req engine.CreateGameRequest) (*engine.CreateGameResponse, error) {
	f.createReqs = append(f.createReqs, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResp != nil {
		return f.createResp, nil
	}
	return &engine.CreateGameResponse{GameID: "g-1"}, nil
}

func (f *fakeEngine) StartGame(gameID string) (*engine.GameState, error) {
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	if f.startState != nil {
		return f.startState, nil
	}
	return &engine.GameState{GameID: gameID}, nil
}

func (f *fakeEngine) UseAbility(gameID string, call engine.AbilityCall) (*engine.AbilityResponse, error) {
	if f.useErr != nil {
		return nil, f.useErr
	}
	if f.useResp != nil {
		return f.useResp, nil
	}
	return &engine.AbilityResponse{Success: true}, nil
}

func newTestContext(eng *fakeEngine) *Context {
	directory := seats.NewDirectory()
	router := broadcast.NewRouter(directory)
	return &Context{
		Conns:      NewConnTable(),
		Lobbies:    store.NewLobbyStore(),
		Sessions:   store.NewSessionStore(),
		Tokens:     token.NewRegistry(),
		Directory:  directory,
		Engine:     eng,
		Router:     router,
		Negotiator: ability.NewNegotiator(eng, router),
	}
}

// connect registers a connection and, when username is non-empty, claims it.
func connect(t *testing.T, ctx *Context, id, username string) *fakeConn {
	t.Helper()
	c := &fakeConn{id: id}
	ctx.Conns.Add(c)
	if username != "" {
		dispatch(t, ctx, c, ws.EventSetUsername, setUsernamePayload{Username: username})
		if !c.received(ws.EventUsernameSet) {
			t.Fatalf("username %q rejected: %v", username, c.last(t))
		}
	}
	return c
}

// dispatch routes one inbound event the way the read loop would.
func dispatch(t *testing.T, ctx *Context, c ws.Sender, event string, payload any) {
	t.Helper()
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal %s payload: %v", event, err)
		}
		data = raw
	}
	ctx.Dispatch(c, ws.Envelope{Event: event, Data: data})
}

func errorOf(t *testing.T, ev sentEvent) string {
	t.Helper()
	p, ok := ev.data.(ws.ErrorPayload)
	if !ok {
		t.Fatalf("payload is %T, want ErrorPayload", ev.data)
	}
	return p.Error
}

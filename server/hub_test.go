package server

import (
	"encoding/json"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/grapple-server/grapple"
	"github.com/milk9111/grapple-server/tuning"
	"github.com/milk9111/grapple-server/world"
)

func newTestHub() (*Hub, *world.Actor) {
	w := world.New()
	w.AddBoxSurface(cp.Vector{X: 60, Y: 0}, 20, 400)
	engine := grapple.NewEngine(w, tuning.Default(), nil)
	hub := NewHub(w, engine, cp.Vector{}, nil)

	actor := w.SpawnActor("actor-1", cp.Vector{}, 1, 8, 16)
	engine.Equip(actor)
	return hub, actor
}

func TestDecodeClientMessage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want ClientMessage
	}{
		{
			name: "fire",
			raw:  `{"type":"fire","origin":{"x":1,"y":2},"dir":{"x":1,"y":0},"mode":"zip"}`,
			want: ClientMessage{Type: "fire", Origin: &Vec2{X: 1, Y: 2}, Dir: &Vec2{X: 1}, Mode: "zip"},
		},
		{
			name: "reel",
			raw:  `{"type":"reel","reel":"in"}`,
			want: ClientMessage{Type: "reel", Reel: "in"},
		},
		{
			name: "intent",
			raw:  `{"type":"intent","move":{"x":-1,"y":0}}`,
			want: ClientMessage{Type: "intent", Move: &Vec2{X: -1}},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got ClientMessage
			if err := json.Unmarshal([]byte(c.raw), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != c.want.Type || got.Mode != c.want.Mode || got.Reel != c.want.Reel {
				t.Fatalf("decoded %+v, want %+v", got, c.want)
			}
			if (got.Origin == nil) != (c.want.Origin == nil) || (got.Move == nil) != (c.want.Move == nil) {
				t.Fatalf("optional fields wrong: %+v", got)
			}
		})
	}
}

func TestDispatchFireAttaches(t *testing.T) {
	hub, _ := newTestHub()

	hub.dispatch("actor-1", ClientMessage{
		Type:   "fire",
		Origin: &Vec2{},
		Dir:    &Vec2{X: 1},
		Mode:   "swing",
	})

	s := hub.engine.Session("actor-1")
	if s == nil || s.State() != grapple.StateAttached {
		t.Fatalf("fire message must attach the session")
	}
}

func TestDispatchIgnoresMalformedActions(t *testing.T) {
	hub, _ := newTestHub()

	// Missing vectors, unknown mode, unknown type: all silent no-ops.
	hub.dispatch("actor-1", ClientMessage{Type: "fire"})
	hub.dispatch("actor-1", ClientMessage{Type: "fire", Origin: &Vec2{}, Dir: &Vec2{X: 1}, Mode: "teleport"})
	hub.dispatch("actor-1", ClientMessage{Type: "warp"})
	hub.dispatch("ghost", ClientMessage{Type: "detach"})

	if s := hub.engine.Session("actor-1"); s.State() != grapple.StateIdle {
		t.Fatalf("malformed actions must not change state, got %v", s.State())
	}
}

func TestDispatchIntentUpdatesActor(t *testing.T) {
	hub, actor := newTestHub()

	hub.dispatch("actor-1", ClientMessage{
		Type:   "intent",
		Move:   &Vec2{X: 1, Y: 0},
		Facing: &Vec2{X: 0, Y: -1},
	})

	if v := actor.Intent(); v.X != 1 {
		t.Fatalf("intent not applied: %v", v)
	}
	if f := actor.Facing(); f.Y != -1 {
		t.Fatalf("facing not applied: %v", f)
	}
}

func TestStepBuildsSnapshot(t *testing.T) {
	hub, _ := newTestHub()

	hub.dispatch("actor-1", ClientMessage{Type: "fire", Origin: &Vec2{}, Dir: &Vec2{X: 1}, Mode: "swing"})
	hub.Step(1.0 / 60.0)

	hub.mu.Lock()
	msg := hub.buildState()
	hub.mu.Unlock()

	st, ok := msg.Actors["actor-1"]
	if !ok {
		t.Fatalf("snapshot must include the actor")
	}
	if st.State != "attached" || st.Mode != "swing" || st.Length == nil {
		t.Fatalf("snapshot wrong: %+v", st)
	}
	if msg.Tick == 0 {
		t.Fatalf("tick counter must advance")
	}
}

// Package server exposes the grapple engine over websockets: one subscriber
// per actor, JSON action messages in, a state snapshot broadcast per tick.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/grapple-server/grapple"
	"github.com/milk9111/grapple-server/tuning"
	"github.com/milk9111/grapple-server/world"
)

const (
	actorMass   = 1.0
	actorWidth  = 8.0
	actorHeight = 16.0

	sendBuffer = 8
)

// Hub owns the world, the engine, and the subscribers. Its mutex serializes
// inbound action handlers against the tick pass, so the engine sees one
// logical thread.
type Hub struct {
	mu     sync.Mutex
	log    *zap.SugaredLogger
	world  *world.World
	engine *grapple.Engine
	spawn  cp.Vector

	upgrader    websocket.Upgrader
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	tick        atomic.Uint64
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// close signals the write pump and closes the connection. The send channel
// is never closed, so a broadcast racing a drop can never panic.
func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func NewHub(w *world.World, engine *grapple.Engine, spawn cp.Vector, log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		log:    log,
		world:  w,
		engine: engine,
		spawn:  spawn,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subscribers: make(map[string]*subscriber),
	}
}

// SetConfig hot-swaps tuning constants between ticks.
func (h *Hub) SetConfig(cfg tuning.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engine.SetConfig(cfg)
}

// Run drives the fixed-rate tick loop until the context is canceled.
func (h *Hub) Run(ctx context.Context, tickRate float64) {
	dt := 1.0 / tickRate
	ticker := time.NewTicker(time.Duration(float64(time.Second) / tickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Step(dt)
		}
	}
}

// Step advances the engine one tick and broadcasts the snapshot.
func (h *Hub) Step(dt float64) {
	h.mu.Lock()
	h.engine.Step(dt)
	msg := h.buildState()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorw("marshal state", "error", err)
		return
	}
	for _, sub := range subs {
		select {
		case sub.send <- payload:
		default:
			// Slow consumer: drop this frame, the next tick supersedes it.
		}
	}
}

func (h *Hub) buildState() StateMessage {
	msg := StateMessage{
		Type:   "state",
		Tick:   h.tick.Add(1),
		Actors: make(map[string]ActorStatus, len(h.subscribers)),
	}
	h.engine.EachStatus(func(id string, st grapple.Status) {
		a := h.world.Actor(id)
		if a == nil {
			return
		}
		out := ActorStatus{
			State:    st.State,
			Mode:     st.Mode,
			Cooldown: st.Cooldown,
			Pos:      Vec2{X: a.Position().X, Y: a.Position().Y},
			Vel:      Vec2{X: a.Velocity().X, Y: a.Velocity().Y},
		}
		if st.HasLength {
			length := st.Length
			out.Length = &length
		}
		msg.Actors[id] = out
	})
	return msg
}

// HandleWS upgrades a connection, spawns an actor with an equipped grapple,
// and pumps messages until the connection drops.
func (h *Hub) HandleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		h.log.Warnw("upgrade failed", "error", err)
		return
	}

	id := fmt.Sprintf("actor-%d", h.nextID.Add(1))
	sub := &subscriber{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	actor := h.world.SpawnActor(id, h.spawn, actorMass, actorWidth, actorHeight)
	h.engine.Equip(actor)
	h.subscribers[id] = sub
	h.mu.Unlock()

	h.log.Infow("subscriber joined", "actor", id)

	if welcome, err := json.Marshal(WelcomeMessage{Type: "welcome", ID: id}); err == nil {
		sub.send <- welcome
	}

	go h.writePump(sub)
	go h.readPump(sub)
}

func (h *Hub) readPump(sub *subscriber) {
	defer h.drop(sub)
	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debugw("bad message", "actor", sub.id, "error", err)
			continue
		}
		h.dispatch(sub.id, msg)
	}
}

func (h *Hub) writePump(sub *subscriber) {
	for {
		select {
		case payload := <-sub.send:
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-sub.done:
			return
		}
	}
}

func (h *Hub) dispatch(id string, msg ClientMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch msg.Type {
	case "fire":
		if msg.Origin == nil || msg.Dir == nil {
			return
		}
		mode, ok := grapple.ParseMode(msg.Mode)
		if !ok {
			return
		}
		h.engine.Fire(id,
			cp.Vector{X: msg.Origin.X, Y: msg.Origin.Y},
			cp.Vector{X: msg.Dir.X, Y: msg.Dir.Y},
			mode)
	case "detach":
		h.engine.Detach(id)
	case "reel":
		switch msg.Reel {
		case "in", "In":
			h.engine.Reel(id, -1)
		case "out", "Out":
			h.engine.Reel(id, 1)
		}
	case "stop_reel":
		h.engine.StopReel(id)
	case "intent":
		a := h.world.Actor(id)
		if a == nil {
			return
		}
		if msg.Move != nil {
			a.SetIntent(cp.Vector{X: msg.Move.X, Y: msg.Move.Y})
		}
		if msg.Facing != nil {
			a.SetFacing(cp.Vector{X: msg.Facing.X, Y: msg.Facing.Y})
		}
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub.id]; ok {
		delete(h.subscribers, sub.id)
		h.engine.Unequip(sub.id)
		h.world.RemoveActor(sub.id)
	}
	h.mu.Unlock()

	sub.close()
	h.log.Infow("subscriber left", "actor", sub.id)
}

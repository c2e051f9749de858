package server

// Vec2 is the wire form of a 2D vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClientMessage is an inbound action. Type selects which fields matter:
//
//	fire      origin, dir, mode ("swing"|"zip")
//	detach    -
//	reel      reel ("in"|"out")
//	stop_reel -
//	intent    move and/or facing
type ClientMessage struct {
	Type   string `json:"type"`
	Origin *Vec2  `json:"origin,omitempty"`
	Dir    *Vec2  `json:"dir,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Reel   string `json:"reel,omitempty"`
	Move   *Vec2  `json:"move,omitempty"`
	Facing *Vec2  `json:"facing,omitempty"`
}

// ActorStatus is the per-actor HUD surface broadcast every tick.
type ActorStatus struct {
	State string `json:"state"`
	// Mode is present only while attached.
	Mode string `json:"mode,omitempty"`
	// Length is the swing constraint length; omitted in any other mode.
	Length   *float64 `json:"length,omitempty"`
	Cooldown float64  `json:"cooldown"`
	Pos      Vec2     `json:"pos"`
	Vel      Vec2     `json:"vel"`
}

// StateMessage is the tick broadcast.
type StateMessage struct {
	Type   string                 `json:"type"`
	Tick   uint64                 `json:"tick"`
	Actors map[string]ActorStatus `json:"actors"`
}

// WelcomeMessage tells a new subscriber its actor id.
type WelcomeMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

package main

import "errors"

var errDuplicatePlayer = errors.New("connection is already registered")

// Player holds the data we store server-side for a joined connection.
// Identity is the connection itself; there is no reconnection or resume.
type Player struct {
	ConnID string
	Name   string
	Score  int
	Ready  bool
}

// PlayerInfo is the roster entry broadcast to clients.
type PlayerInfo struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Ready bool   `json:"ready"`
}

// registry is the single source of truth for who is a player. Entries keep
// join order for roster broadcasts. It is only ever touched from the
// session's run loop, so it needs no locking.
type registry struct {
	players []*Player
}

func newRegistry() *registry {
	return &registry{}
}

func (r *registry) register(connID, name string) error {
	if _, ok := r.get(connID); ok {
		return errDuplicatePlayer
	}

	r.players = append(r.players, &Player{
		ConnID: connID,
		Name:   name,
	})

	return nil
}

func (r *registry) get(connID string) (*Player, bool) {
	for _, p := range r.players {
		if p.ConnID == connID {
			return p, true
		}
	}
	return nil, false
}

// setReady marks a player ready, reporting false for unknown connections.
func (r *registry) setReady(connID string) bool {
	p, ok := r.get(connID)
	if !ok {
		return false
	}
	p.Ready = true
	return true
}

// remove is idempotent; removing an unknown connection is a no-op.
func (r *registry) remove(connID string) {
	dst := r.players[:0]
	for _, p := range r.players {
		if p.ConnID == connID {
			continue
		}
		dst = append(dst, p)
	}
	r.players = dst
}

// snapshot returns the roster in join order.
func (r *registry) snapshot() []PlayerInfo {
	out := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, PlayerInfo{
			Name:  p.Name,
			Score: p.Score,
			Ready: p.Ready,
		})
	}
	return out
}

// allReady reports whether the lobby can start: at least one player, every
// one of them ready.
func (r *registry) allReady() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *registry) size() int {
	return len(r.players)
}

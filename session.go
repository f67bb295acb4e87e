// Triviabox game session
//
// One TV or browser acts as the host display, everyone else joins from their
// phone via a QR code. The server owns the timeline: once every player has
// readied up (or the host forces a start), a countdown runs, then each
// question opens for a fixed answer window, answers are scored, and the next
// round begins until the bank is exhausted.
//
// Features:
// - WebSockets at /ws, shared by players and spectator displays
// - Auto-start when every joined player is ready, plus a manual admin_start
// - Fixed countdown (5 ticks by default) before the first question
// - Timed answer window per question; late answers never score
// - +1 per correct answer, +1 bonus for the fastest, earliest-wins ties
// - Live answer echo to spectators, correctness withheld until scoring
// - Join QR generated once at startup via go-qrcode and cached

package main

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type phase int

const (
	phaseLobby phase = iota
	phaseCountdown
	phaseQuestionOpen
	phaseEvaluating
	phaseEnded
)

func (p phase) String() string {
	switch p {
	case phaseLobby:
		return "lobby"
	case phaseCountdown:
		return "countdown"
	case phaseQuestionOpen:
		return "question_open"
	case phaseEvaluating:
		return "evaluating"
	case phaseEnded:
		return "ended"
	}
	return "unknown"
}

type inboundRequest struct {
	client *client
	msg    clientMessage
}

// session owns the whole game: the current phase, the question cursor, the
// roster, and the in-flight answer log. Connection events, client messages,
// and timer fires are all drained by the single run loop, so no handler ever
// runs concurrently with another and nothing here needs a lock.
type session struct {
	cfg   *Config
	log   zerolog.Logger
	clock clockwork.Clock
	ctx   context.Context

	bank      []Question
	qrDataURL string

	clients  map[*client]bool
	registry *registry
	answers  *answerLog

	phase            phase
	epoch            uint64
	questionIndex    int
	countdownLeft    int
	questionOpenedAt time.Time

	register chan *client
	unreg    chan *client
	inbound  chan inboundRequest
	timers   chan timerFire
}

func newSession(cfg *Config, log zerolog.Logger, clock clockwork.Clock, bank []Question, qrDataURL string) *session {
	return &session{
		cfg:       cfg,
		log:       log,
		clock:     clock,
		ctx:       context.Background(),
		bank:      bank,
		qrDataURL: qrDataURL,
		clients:   make(map[*client]bool),
		registry:  newRegistry(),
		answers:   newAnswerLog(),
		register:  make(chan *client),
		unreg:     make(chan *client),
		inbound:   make(chan inboundRequest),
		timers:    make(chan timerFire, 8),
	}
}

func (s *session) run(ctx context.Context) {
	s.ctx = ctx

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case c := <-s.register:
			s.handleRegister(c)
		case c := <-s.unreg:
			s.handleUnregister(c)
		case req := <-s.inbound:
			s.handleMessage(req.client, req.msg)
		case fire := <-s.timers:
			s.handleTimer(fire)
		}
	}
}

func (s *session) handleRegister(c *client) {
	s.clients[c] = true
	s.log.Debug().Str("conn", c.id).Int("connections", len(s.clients)).Msg("connection opened")

	// Catch the new connection up on where the game stands.
	s.sendTo(c, PlayersMessage{Type: "players", Players: s.registry.snapshot()})

	switch s.phase {
	case phaseCountdown:
		s.sendTo(c, CountdownMessage{Type: "countdown", Seconds: s.countdownLeft})
	case phaseQuestionOpen:
		s.sendTo(c, QuestionMessage{
			Type:     "question",
			Question: s.bank[s.questionIndex].view(),
			Index:    s.questionIndex + 1,
			QR:       s.qrDataURL,
		})
	case phaseEnded:
		s.sendTo(c, EndMessage{Type: "end", Players: s.registry.snapshot()})
	}
}

func (s *session) handleUnregister(c *client) {
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}

	if _, wasPlayer := s.registry.get(c.id); !wasPlayer {
		return
	}

	s.registry.remove(c.id)
	s.log.Debug().Str("conn", c.id).Msg("player left")
	s.broadcastRoster()

	// The departure may have left everyone remaining ready.
	if s.phase == phaseLobby && s.registry.allReady() {
		s.beginCountdown()
	}
}

func (s *session) handleMessage(c *client, msg clientMessage) {
	switch msg.Type {
	case "join":
		s.handleJoin(c, msg)
	case "ready":
		s.handleReady(c)
	case "answer":
		s.handleAnswer(c, msg)
	case "admin_start":
		s.handleAdminStart(c)
	default:
		s.log.Debug().Str("type", msg.Type).Msg("dropping message of unknown type")
	}
}

// handleJoin registers a player during the lobby and countdown; from the
// first question onward the connection stays a spectator.
func (s *session) handleJoin(c *client, msg clientMessage) {
	if s.phase != phaseLobby && s.phase != phaseCountdown {
		s.log.Debug().Str("phase", s.phase.String()).Msg("ignoring join outside lobby")
		return
	}
	if msg.Name == "" {
		return
	}

	if err := s.registry.register(c.id, msg.Name); err != nil {
		s.log.Debug().Str("name", msg.Name).Msg("ignoring duplicate join")
		return
	}

	s.log.Info().Str("name", msg.Name).Msg("player joined")
	s.broadcastRoster()
}

func (s *session) handleReady(c *client) {
	if s.phase != phaseLobby {
		return
	}
	if !s.registry.setReady(c.id) {
		return
	}

	s.broadcastRoster()

	if s.registry.allReady() {
		s.beginCountdown()
	}
}

func (s *session) handleAdminStart(c *client) {
	if s.phase != phaseLobby {
		return
	}

	if !s.registry.allReady() {
		s.sendTo(c, NotReadyMessage{Type: "not_ready"})
		return
	}

	s.beginCountdown()
}

func (s *session) handleAnswer(c *client, msg clientMessage) {
	if s.phase != phaseQuestionOpen {
		s.log.Debug().Str("phase", s.phase.String()).Msg("ignoring answer outside an open question")
		return
	}

	p, ok := s.registry.get(c.id)
	if !ok {
		return
	}

	rec := answerRecord{
		connID:  c.id,
		name:    p.Name,
		value:   msg.Answer,
		elapsed: s.clock.Now().Sub(s.questionOpenedAt),
	}

	if !s.answers.append(rec) {
		s.log.Debug().Str("name", p.Name).Msg("ignoring repeat answer")
		return
	}

	s.broadcast(AnswerLiveMessage{Type: "answer_live", Name: p.Name, Answer: msg.Answer})
}

func (s *session) handleTimer(fire timerFire) {
	if fire.epoch != s.epoch {
		s.log.Debug().Uint64("fired", fire.epoch).Uint64("current", s.epoch).Msg("discarding stale timer")
		return
	}

	switch fire.kind {
	case timerCountdownTick:
		s.countdownLeft--
		if s.countdownLeft <= 0 {
			s.openQuestion()
			return
		}
		s.broadcast(CountdownMessage{Type: "countdown", Seconds: s.countdownLeft})
		s.scheduleAfter(s.cfg.countdownInterval, timerCountdownTick)
	case timerQuestionDeadline:
		s.evaluateRound()
	case timerRoundPause:
		s.advanceRound()
	}
}

// setPhase bumps the epoch, invalidating every timer armed for the previous
// phase.
func (s *session) setPhase(p phase) {
	s.epoch++
	s.phase = p
	s.log.Debug().Str("phase", p.String()).Uint64("epoch", s.epoch).Msg("phase transition")
}

func (s *session) beginCountdown() {
	s.setPhase(phaseCountdown)
	s.countdownLeft = s.cfg.countdownTicks

	s.broadcast(CountdownMessage{Type: "countdown", Seconds: s.countdownLeft})
	s.scheduleAfter(s.cfg.countdownInterval, timerCountdownTick)
}

func (s *session) openQuestion() {
	s.setPhase(phaseQuestionOpen)
	s.answers = newAnswerLog()
	s.questionOpenedAt = s.clock.Now()

	s.broadcast(QuestionMessage{
		Type:     "question",
		Question: s.bank[s.questionIndex].view(),
		Index:    s.questionIndex + 1,
		QR:       s.qrDataURL,
	})
	s.scheduleAfter(s.cfg.answerWindow, timerQuestionDeadline)
}

func (s *session) evaluateRound() {
	s.setPhase(phaseEvaluating)

	q := s.bank[s.questionIndex]
	result := scoreRound(q, s.answers.records)

	for connID, delta := range result.deltas {
		if p, ok := s.registry.get(connID); ok {
			p.Score += delta
		}
	}

	if result.hasWinner {
		s.log.Info().Str("name", result.winnerName).Int("question", s.questionIndex+1).Msg("round won")
		s.broadcast(WinnerMessage{Type: "winner", Name: result.winnerName, Correct: q.Correct})
	}

	s.broadcastRoster()
	s.scheduleAfter(s.cfg.roundPause, timerRoundPause)
}

func (s *session) advanceRound() {
	if s.questionIndex+1 < len(s.bank) {
		s.questionIndex++
		s.openQuestion()
		return
	}

	s.end()
}

func (s *session) end() {
	s.setPhase(phaseEnded)
	s.broadcast(EndMessage{Type: "end", Players: s.registry.snapshot()})
	s.log.Info().Int("questions", len(s.bank)).Int("players", s.registry.size()).Msg("game over")
}

// sendTo delivers one message to one connection. A client whose send buffer
// is full is dropped rather than allowed to stall the session.
func (s *session) sendTo(c *client, msg any) {
	if !s.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		s.log.Debug().Str("conn", c.id).Msg("dropping unresponsive connection")
		delete(s.clients, c)
		close(c.send)
		s.registry.remove(c.id)
	}
}

// broadcast fans one message out to every open connection, players and
// spectators alike.
func (s *session) broadcast(msg any) {
	for c := range s.clients {
		s.sendTo(c, msg)
	}
}

func (s *session) broadcastRoster() {
	s.broadcast(PlayersMessage{Type: "players", Players: s.registry.snapshot()})
}

// closeAll retires every connection; closing the send channel lets each
// writePump close its own socket.
func (s *session) closeAll() {
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
}

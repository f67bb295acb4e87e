package main

// clientMessage is the inbound envelope. Unknown types and extra fields are
// ignored; a message only has an effect in the phases that accept it.
type clientMessage struct {
	Type   string `json:"type"`             // "join", "ready", "answer", "admin_start"
	Name   string `json:"name,omitempty"`   // join
	Answer string `json:"answer,omitempty"` // answer
}

// PlayersMessage carries the roster, in join order.
type PlayersMessage struct {
	Type    string       `json:"type"` // "players"
	Players []PlayerInfo `json:"players"`
}

// CountdownMessage is broadcast once per countdown tick.
type CountdownMessage struct {
	Type    string `json:"type"` // "countdown"
	Seconds int    `json:"seconds"`
}

// QuestionMessage opens a round. Index is 1-based for display.
type QuestionMessage struct {
	Type     string       `json:"type"` // "question"
	Question QuestionView `json:"question"`
	Index    int          `json:"index"`
	QR       string       `json:"qr,omitempty"` // cached join-code data URL
}

// AnswerLiveMessage echoes a submission to all connections without revealing
// whether it was correct.
type AnswerLiveMessage struct {
	Type   string `json:"type"` // "answer_live"
	Name   string `json:"name"`
	Answer string `json:"answer"`
}

// WinnerMessage names the round's fastest correct answerer.
type WinnerMessage struct {
	Type    string `json:"type"` // "winner"
	Name    string `json:"name"`
	Correct string `json:"correct"`
}

// EndMessage carries the final roster.
type EndMessage struct {
	Type    string       `json:"type"` // "end"
	Players []PlayerInfo `json:"players"`
}

// NotReadyMessage rejects a premature admin_start.
type NotReadyMessage struct {
	Type string `json:"type"` // "not_ready"
}

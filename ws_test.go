package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, bank []Question) *httptest.Server {
	t.Helper()

	cfg := &Config{
		answerWindow:      500 * time.Millisecond,
		countdownInterval: 20 * time.Millisecond,
		countdownTicks:    1,
		roundPause:        20 * time.Millisecond,
	}

	sess := newSession(cfg, zerolog.Nop(), clockwork.NewRealClock(), bank, "")
	ctx, cancel := context.WithCancel(context.Background())
	go sess.run(ctx)

	mux := httprouter.New()
	mux.GET("/ws", serveWS(zerolog.Nop(), sess))

	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func writeMessage(t *testing.T, conn *websocket.Conn, msg clientMessage) {
	t.Helper()

	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("writing %q: %v", msg.Type, err)
	}
}

// readUntil discards broadcasts until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("reading until %q: %v", want, err)
		}
		if msg["type"] == want {
			return msg
		}
	}
}

func scoresByName(t *testing.T, msg map[string]any) map[string]int {
	t.Helper()

	players, ok := msg["players"].([]any)
	if !ok {
		t.Fatalf("message has no player list: %v", msg)
	}

	out := make(map[string]int)
	for _, entry := range players {
		p, ok := entry.(map[string]any)
		if !ok {
			t.Fatalf("unexpected player entry: %v", entry)
		}
		out[p["name"].(string)] = int(p["score"].(float64))
	}
	return out
}

func TestWebSocketFullGame(t *testing.T) {
	srv := newTestServer(t, singleQuestionBank())

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	writeMessage(t, alice, clientMessage{Type: "join", Name: "Alice"})
	writeMessage(t, bob, clientMessage{Type: "join", Name: "Bob"})

	// Both joins must land before anyone readies up, so the game cannot
	// auto-start on a partial roster.
	for len(scoresByName(t, readUntil(t, alice, "players"))) != 2 {
	}

	writeMessage(t, alice, clientMessage{Type: "ready"})
	writeMessage(t, bob, clientMessage{Type: "ready"})

	readUntil(t, alice, "countdown")
	readUntil(t, alice, "question")
	readUntil(t, bob, "question")

	writeMessage(t, alice, clientMessage{Type: "answer", Answer: "4"})
	writeMessage(t, bob, clientMessage{Type: "answer", Answer: "3"})

	live := readUntil(t, bob, "answer_live")
	if live["answer"] == "" {
		t.Fatalf("expected a live answer echo, got %v", live)
	}

	winner := readUntil(t, bob, "winner")
	if winner["name"] != "Alice" || winner["correct"] != "4" {
		t.Fatalf("expected Alice to win with 4, got %v", winner)
	}

	end := readUntil(t, alice, "end")
	scores := scoresByName(t, end)
	if scores["Alice"] != 2 || scores["Bob"] != 0 {
		t.Fatalf("expected Alice 2 / Bob 0, got %v", scores)
	}
}

func TestWebSocketMalformedMessageKeepsConnection(t *testing.T) {
	srv := newTestServer(t, singleQuestionBank())

	conn := dialWS(t, srv)
	readUntil(t, conn, "players")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{{{ not json")); err != nil {
		t.Fatalf("writing garbage: %v", err)
	}

	// The connection must survive the garbage and still accept a join.
	writeMessage(t, conn, clientMessage{Type: "join", Name: "Alice"})

	roster := readUntil(t, conn, "players")
	if _, ok := scoresByName(t, roster)["Alice"]; !ok {
		t.Fatalf("expected Alice in the roster, got %v", roster)
	}
}

func TestWebSocketDisconnectUpdatesRoster(t *testing.T) {
	srv := newTestServer(t, singleQuestionBank())

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	writeMessage(t, alice, clientMessage{Type: "join", Name: "Alice"})
	writeMessage(t, bob, clientMessage{Type: "join", Name: "Bob"})

	// Wait until Bob sees both players before dropping Alice.
	for {
		roster := scoresByName(t, readUntil(t, bob, "players"))
		if len(roster) == 2 {
			break
		}
	}

	_ = alice.Close()

	for {
		roster := scoresByName(t, readUntil(t, bob, "players"))
		if len(roster) == 1 {
			if _, ok := roster["Bob"]; !ok {
				t.Fatalf("expected Bob to remain, got %v", roster)
			}
			return
		}
	}
}

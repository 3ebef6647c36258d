package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gincana-service/internal/domain"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func TestProjectorStreamFollowsMatch(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t)
	server := httptest.NewServer(NewRouter(svc, RouterOptions{Logger: zerolog.New(io.Discard)}))
	defer server.Close()

	q := domain.Question{
		Text:          "Quem construiu a arca?",
		Difficulty:    domain.DifficultyEasy,
		Category:      domain.CategoryCharacters,
		CorrectAnswer: "Noé",
		Options:       []string{"Moisés", "Noé", "Abraão", "Davi"},
	}
	if _, err := svc.Questions.Add(ctx, q); err != nil {
		t.Fatalf("add question: %v", err)
	}
	team, err := svc.Teams.Create(ctx, "Leões", "#f5a623")
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	match, err := svc.Matches.CreateMatch(ctx, domain.ModeQuick, []string{team.ID}, domain.MatchOptions{})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws/matches/" + match.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the current snapshot first.
	view := readView(t, conn)
	if view.Match.ID != match.ID || view.Question != nil {
		t.Fatalf("unexpected initial view: %+v", view)
	}
	if len(view.Standings.Entries) != 1 {
		t.Fatalf("expected standings with one team, got %+v", view.Standings)
	}

	drawn, err := svc.Matches.DrawNextQuestion(ctx, match.ID)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	msg := readNext(t, conn)
	if err := json.Unmarshal(msg.Payload, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Question == nil || view.Question.ID != drawn.ID {
		t.Fatalf("expected drawn question on screen, got %+v", view.Question)
	}
	// The audience screen never receives the answer.
	if containsAnswer(msg.Payload) {
		t.Fatalf("payload leaks the correct answer: %s", msg.Payload)
	}

	if _, err := svc.Matches.SubmitAnswer(ctx, match.ID, drawn.ID, "Noé"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	view = readView(t, conn)
	if view.Standings.Entries[0].Score != 10 || view.Question != nil {
		t.Fatalf("expected 10 points and a cleared question, got %+v", view)
	}

	if err := svc.Matches.DeleteMatch(ctx, match.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	msg = readNext(t, conn)
	if msg.Type != msgClosed {
		t.Fatalf("expected closed, got %s", msg.Type)
	}
}

func TestProjectorStreamUnknownMatch(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestServices(t), RouterOptions{Logger: zerolog.New(io.Discard)}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/matches/missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

func readView(t *testing.T, conn *websocket.Conn) projectorView {
	t.Helper()
	msg := readNext(t, conn)
	if msg.Type != msgMatch {
		t.Fatalf("expected type %s, got %s", msgMatch, msg.Type)
	}
	var view projectorView
	if err := json.Unmarshal(msg.Payload, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return view
}

func containsAnswer(payload json.RawMessage) bool {
	var generic map[string]any
	_ = json.Unmarshal(payload, &generic)
	q, _ := generic["question"].(map[string]any)
	_, leaked := q["correct_answer"]
	return leaked
}

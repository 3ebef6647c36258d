package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gincana-service/internal/app"
	"gincana-service/internal/domain"
	"gincana-service/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	closeWriteWait = time.Second
)

// MatchSubscriber is the part of the engine the projector stream needs.
type MatchSubscriber interface {
	Subscribe(ctx context.Context, matchID string) (<-chan domain.Match, func(), error)
}

// QuestionLookup resolves the question on screen.
type QuestionLookup interface {
	Get(ctx context.Context, id string) (domain.Question, error)
}

// WSHandler streams match snapshots to read-only observers such as a projector display.
// Clients never write game state through this socket.
type WSHandler struct {
	matches   MatchSubscriber
	questions QuestionLookup
	logger    zerolog.Logger
	upgrader  websocket.Upgrader
}

func NewWSHandler(matches MatchSubscriber, questions QuestionLookup, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		matches:   matches,
		questions: questions,
		logger:    logger.With().Str("component", "projector_ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// projectorView is what the audience screen renders. The question omits its answer.
type projectorView struct {
	Match     domain.Match     `json:"match"`
	Standings domain.Standings `json:"standings"`
	Question  *questionView    `json:"question,omitempty"`
}

type questionView struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Kind      string   `json:"kind"`
	Category  string   `json:"category"`
	Options   []string `json:"options,omitempty"`
	Reference string   `json:"reference,omitempty"`
}

const (
	msgMatch  = "match"
	msgClosed = "closed"
	msgError  = "error"
)

// ServeWS upgrades GET /ws/matches/{id} and forwards every snapshot until the client
// leaves or the match is deleted.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")
	updates, cancel, err := h.matches.Subscribe(r.Context(), matchID)
	if err != nil {
		respondServiceError(w, logging.FromContext(r.Context()), err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()
	// Deadlines left by the HTTP server's read timeout would cut the stream short.
	_ = conn.SetReadDeadline(time.Time{})

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only this goroutine writes data frames, gorilla allows one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug().Err(err).Str("match_id", matchID).Msg("ws write error")
				return
			}
			if msg.Type == msgClosed {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match deleted"),
					time.Now().Add(closeWriteWait))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		var current *questionView
		for {
			select {
			case m, ok := <-updates:
				msg := outboundMessage[any]{Type: msgClosed, Payload: map[string]string{"match_id": matchID}}
				if ok {
					current = h.resolveQuestion(r.Context(), m, current)
					msg = outboundMessage[any]{Type: msgMatch, Payload: projectorView{
						Match:     m,
						Standings: app.RankTeams(m),
						Question:  current,
					}}
				}
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
				if !ok {
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound map[string]any
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		select {
		case send <- outboundMessage[any]{Type: msgError, Payload: errorPayload{Message: "read-only stream"}}:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// resolveQuestion reuses the previous lookup while the same question stays on screen.
func (h *WSHandler) resolveQuestion(ctx context.Context, m domain.Match, prev *questionView) *questionView {
	if m.CurrentQuestionID == "" {
		return nil
	}
	if prev != nil && prev.ID == m.CurrentQuestionID {
		return prev
	}
	q, err := h.questions.Get(ctx, m.CurrentQuestionID)
	if err != nil {
		h.logger.Warn().Err(err).Str("question_id", m.CurrentQuestionID).Msg("projector question lookup failed")
		return nil
	}
	return &questionView{
		ID:        q.ID,
		Text:      q.Text,
		Kind:      q.Kind,
		Category:  q.Category,
		Options:   q.Options,
		Reference: q.Reference,
	}
}

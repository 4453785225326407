package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"dotnet-quiz-service/internal/app"
	"dotnet-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler hosts one quiz attempt per websocket connection.
type WSHandler struct {
	service    *app.QuizService
	driverOpts []app.DriverOption
	upgrader   websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, driverOpts ...app.DriverOption) *WSHandler {
	return &WSHandler{
		service:    service,
		driverOpts: driverOpts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type startedPayload struct {
	AttemptID string                   `json:"attemptId"`
	Config    domain.QuizConfiguration `json:"config"`
	Total     int                      `json:"total"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS starts a quiz for ?topic=&count= (or ?slug=) and streams session
// snapshots until the attempt completes or the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	cfg, ok := quizConfigFromQuery(r)
	if !ok {
		errorResponse(w, http.StatusBadRequest, "Invalid topic")
		return
	}

	attempt, err := h.service.Begin(r.Context(), cfg)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("ws write error", "attempt", attempt.ID, "err", err)
				// Keep draining so the session loop never blocks on a dead peer.
				for range send {
				}
				return
			}
		}
	}()

	inbound := make(chan inboundMessage)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	// The session belongs to the driver goroutine once Run starts.
	started := startedPayload{
		AttemptID: attempt.ID,
		Config:    attempt.Session.Config(),
		Total:     attempt.Session.View().Total,
	}
	driver := app.NewDriver(attempt.Session, h.driverOpts...)
	go func() {
		if err := driver.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("quiz driver stopped", "attempt", attempt.ID, "err", err)
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: started}

	events := driver.Events()
loop:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			if ev.Type == app.EventCompleted && ev.Result != nil {
				if err := h.service.Complete(ctx, attempt.ID, *ev.Result); err != nil {
					slog.Error("store quiz result", "attempt", attempt.ID, "err", err)
				}
				send <- outboundMessage[any]{Type: "completed", Payload: newResultBody(attempt.ID, *ev.Result)}
				continue
			}
			send <- outboundMessage[any]{Type: "state", Payload: ev.View}
		case msg := <-inbound:
			if err := h.dispatch(ctx, driver, msg); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case <-readerDone:
			slog.Info("quiz client left", "attempt", attempt.ID)
			break loop
		}
	}

	cancel()
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, driver *app.Driver, msg inboundMessage) error {
	switch msg.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return driver.Select(ctx, payload.Option)
	case "next":
		return driver.Next(ctx)
	case "previous":
		return driver.Previous(ctx)
	case "skip":
		return driver.Skip(ctx)
	default:
		return errUnsupportedMessage
	}
}

// quizConfigFromQuery reads either an explicit topic and count or a topic
// page slug, which always asks for TopicPageQuestionCount questions.
func quizConfigFromQuery(r *http.Request) (domain.QuizConfiguration, bool) {
	q := r.URL.Query()
	if slug := q.Get("slug"); slug != "" {
		topic, ok := domain.TopicForSlug(slug)
		if !ok {
			return domain.QuizConfiguration{}, false
		}
		return domain.QuizConfiguration{Topic: topic, QuestionCount: domain.TopicPageQuestionCount}, true
	}
	return domain.QuizConfiguration{
		Topic:         q.Get("topic"),
		QuestionCount: parseCount(q.Get("count"), domain.DefaultQuestionCount),
	}, true
}

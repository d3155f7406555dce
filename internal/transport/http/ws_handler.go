package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"darkstar-quiz-service/internal/app"
	"darkstar-quiz-service/internal/domain"
	"darkstar-quiz-service/internal/render"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	hub      *Hub
	logger   *zap.Logger
	defaults Defaults
	upgrader websocket.Upgrader
}

// Defaults fill in a start request that omits its sizes.
type Defaults struct {
	Questions       int
	DurationMinutes int
}

func NewWSHandler(service *app.QuizService, hub *Hub, defaults Defaults, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service:  service,
		hub:      hub,
		logger:   logger,
		defaults: defaults,
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

type startPayload struct {
	Topic     string `json:"topic"`
	Questions int    `json:"questions"`
	Minutes   int    `json:"minutes"`
}

type answerPayload struct {
	SessionID string `json:"sessionId"`
	Question  int    `json:"question"` // 1-based
	Choice    string `json:"choice"`
}

type askPayload struct {
	Question string `json:"question"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

// questionView is a question without its answer.
type questionView struct {
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Card    string   `json:"card"`
}

type startedPayload struct {
	SessionID       string         `json:"sessionId"`
	Topic           string         `json:"topic,omitempty"`
	Requested       int            `json:"requested"`
	Partial         bool           `json:"partial"`
	DurationMinutes int            `json:"durationMinutes"`
	Deadline        time.Time      `json:"deadline"`
	InitiatorID     string         `json:"initiatorId"`
	Questions       []questionView `json:"questions"`
	Message         string         `json:"message"`
}

type textPayload[T any] struct {
	Data T      `json:"data"`
	Text string `json:"text"`
}

type resultsPayload struct {
	Report   domain.ResultsReport `json:"report"`
	Messages []string             `json:"messages"`
}

func newStartedPayload(s domain.SessionSummary) startedPayload {
	views := make([]questionView, len(s.Questions))
	for i, q := range s.Questions {
		views[i] = questionView{
			Number:  i + 1,
			Text:    q.Text,
			Options: q.Options,
			Card:    render.Question(i+1, len(s.Questions), q),
		}
	}
	return startedPayload{
		SessionID:       s.SessionID,
		Topic:           s.Topic,
		Requested:       s.Requested,
		Partial:         s.Partial,
		DurationMinutes: s.DurationMinutes,
		Deadline:        s.Deadline,
		InitiatorID:     s.InitiatorID,
		Questions:       views,
		Message:         render.Summary(s),
	}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Kind: domain.KindOf(err), Message: err.Error()}}
}

func invalidPayload(what string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Kind: domain.KindValidation, Message: "invalid " + what + " payload"}}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channelId")
	userID := r.URL.Query().Get("userId")
	if channelID == "" || userID == "" {
		http.Error(w, "missing channelId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.hub.subscribe(channelID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- update:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "connected", Payload: map[string]string{"channelId": channelID, "userId": userID}}

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := decodePayload(inbound.Payload, &payload); err != nil {
				send <- invalidPayload("start")
				continue
			}
			if payload.Questions == 0 {
				payload.Questions = h.defaults.Questions
			}
			if payload.Minutes == 0 {
				payload.Minutes = h.defaults.DurationMinutes
			}
			summary, err := h.service.StartSession(ctx, app.StartRequest{
				ChannelID:       channelID,
				TopicHint:       strings.TrimSpace(payload.Topic),
				QuestionCount:   payload.Questions,
				DurationMinutes: payload.Minutes,
				InitiatorID:     userID,
			})
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			h.hub.Broadcast(channelID, outboundMessage[any]{Type: "started", Payload: newStartedPayload(summary)})
		case "answer":
			var payload answerPayload
			if err := decodePayload(inbound.Payload, &payload); err != nil {
				send <- invalidPayload("answer")
				continue
			}
			receipt, err := h.service.SubmitAnswer(ctx, channelID, domain.AnswerSubmission{
				SessionID:     payload.SessionID,
				ParticipantID: userID,
				QuestionIndex: payload.Question - 1,
				Letter:        payload.Choice,
			})
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "answerReceipt", Payload: textPayload[domain.AnswerReceipt]{Data: receipt, Text: render.Receipt(receipt)}}
		case "progress":
			progress, err := h.service.GetProgress(ctx, channelID, userID)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "progress", Payload: textPayload[domain.ProgressReport]{Data: progress, Text: render.Progress(progress)}}
		case "end":
			// The report itself reaches every connection through the hub.
			if _, ok := h.service.EndSession(ctx, channelID); !ok {
				send <- outboundMessage[any]{Type: "notice", Payload: map[string]string{"message": domain.ErrNoActiveSession.Error()}}
			}
		case "results":
			report, err := h.service.LastResults(ctx, channelID)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "results", Payload: resultsPayload{Report: report, Messages: render.Results(report)}}
		case "ask":
			var payload askPayload
			if err := decodePayload(inbound.Payload, &payload); err != nil || strings.TrimSpace(payload.Question) == "" {
				send <- invalidPayload("ask")
				continue
			}
			answer, err := h.service.Ask(ctx, payload.Question)
			if err != nil {
				send <- errorMessage(err)
				continue
			}
			send <- outboundMessage[any]{Type: "askReply", Payload: map[string]string{"text": answer}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Kind: domain.KindValidation, Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

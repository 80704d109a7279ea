package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/app"
	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
)

// WSHandler drives one playthrough per websocket connection.
type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
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

type answerPayload struct {
	Value string `json:"value"`
}

type matchPayload struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type teamAnswerPayload struct {
	Team  domain.Team `json:"team"`
	Value string      `json:"value"`
}

type jokerPayload struct {
	Kind app.JokerKind `json:"kind"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// questionView is what the client renders for one question: the prompt side
// plus the frozen display-order choices, minus nothing (fifty-fifty hides are
// reported separately so the client can grey them out).
type questionView struct {
	Index       int                 `json:"index"`
	Total       int                 `json:"total"`
	Type        domain.QuestionType `json:"questionType"`
	Prompt      string              `json:"prompt,omitempty"`
	Sentence    string              `json:"sentence,omitempty"`
	Instruction string              `json:"instruction,omitempty"`
	Image       string              `json:"image,omitempty"`
	Terms       []string            `json:"terms,omitempty"`
	Choices     []string            `json:"choices"`
	Disabled    []string            `json:"disabled,omitempty"`
	Remaining   int                 `json:"remaining"`
	Answered    bool                `json:"answered"`
}

type gameEndPayload struct {
	Score       int                 `json:"score"`
	GroupScores *domain.GroupScores `json:"groupScores,omitempty"`
}

// ServeWS upgrades the request and wires the connection into the game use
// cases. The round lives exactly as long as the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	roundID := uuid.NewString()
	defer h.service.EndRound(roundID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// unblock the read loop so teardown is not stuck behind
				// a full send buffer
				conn.Close()
				return
			}
		}
	}()

	// reply never blocks past the writer's lifetime
	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	var (
		round     *app.Round
		cancelSub func()
	)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "start":
			if round != nil {
				reply(errMsg("round already started"))
				continue
			}
			var settings domain.GameSettings
			if err := json.Unmarshal(inbound.Payload, &settings); err != nil {
				reply(errMsg("invalid settings payload"))
				continue
			}
			result, err := h.service.StartRound(r.Context(), roundID, settings)
			if err != nil {
				reply(errMsg(err.Error()))
				continue
			}
			reply(outboundMessage[any]{Type: "started", Payload: result})
			if result.Empty {
				// valid terminal state: nothing to play for this selection
				reply(outboundMessage[any]{Type: "empty", Payload: result})
				continue
			}
			if result.Undersupplied {
				reply(outboundMessage[any]{Type: "warning", Payload: result})
			}
			round, err = h.service.Round(roundID)
			if err != nil {
				reply(errMsg(err.Error()))
				continue
			}
			var updates <-chan app.Event
			updates, cancelSub = round.Subscribe()
			go forwardEvents(round, updates, send, closeSignals)
			// start only after the subscription is attached so the first
			// question (and kapisma matchup) broadcast reaches the client
			round.Start()

		case "answer":
			if round == nil {
				reply(errMsg("no active round"))
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(errMsg("invalid answer payload"))
				continue
			}
			res, err := round.SubmitAnswer(payload.Value)
			if err != nil {
				reply(errMsg(err.Error()))
				continue
			}
			reply(outboundMessage[any]{Type: "answerResult", Payload: res})

		case "match":
			if round == nil {
				reply(errMsg("no active round"))
				continue
			}
			var payload matchPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(errMsg("invalid match payload"))
				continue
			}
			res, err := round.SubmitMatch(payload.Term, payload.Definition)
			if err != nil {
				reply(errMsg(err.Error()))
				continue
			}
			reply(outboundMessage[any]{Type: "matchResult", Payload: res})

		case "teamAnswer":
			if round == nil {
				reply(errMsg("no active round"))
				continue
			}
			var payload teamAnswerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(errMsg("invalid team answer payload"))
				continue
			}
			res, err := round.AnswerTeam(payload.Team, payload.Value)
			if err != nil {
				if errors.Is(err, domain.ErrAlreadyAnswered) {
					// grids locked by the first buzz; nothing to report
					continue
				}
				reply(errMsg(err.Error()))
				continue
			}
			reply(outboundMessage[any]{Type: "answerResult", Payload: res})

		case "joker":
			if round == nil {
				reply(errMsg("no active round"))
				continue
			}
			var payload jokerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(errMsg("invalid joker payload"))
				continue
			}
			res, err := round.UseJoker(payload.Kind)
			if err != nil {
				reply(errMsg(err.Error()))
				continue
			}
			reply(outboundMessage[any]{Type: "jokerResult", Payload: res})

		case "next":
			if round == nil {
				reply(errMsg("no active round"))
				continue
			}
			if err := round.Advance(); err != nil {
				reply(errMsg(err.Error()))
			}

		case "prev":
			if round == nil {
				reply(errMsg("no active round"))
				continue
			}
			if err := round.Back(); err != nil {
				reply(errMsg(err.Error()))
			}

		case "end":
			if round == nil {
				reply(errMsg("no active round"))
				continue
			}
			round.End()

		default:
			reply(errMsg("unsupported message type"))
		}
	}

	close(closeSignals)
	if cancelSub != nil {
		cancelSub()
	}
	close(send)
	<-writerDone
}

// forwardEvents translates engine events into outbound frames.
func forwardEvents(round *app.Round, updates <-chan app.Event, send chan<- outboundMessage[any], closeSignals <-chan struct{}) {
	for {
		select {
		case ev, ok := <-updates:
			if !ok {
				return
			}
			var msg outboundMessage[any]
			switch ev.Type {
			case app.EventQuestion:
				msg = outboundMessage[any]{Type: "question", Payload: viewFor(round, ev.Index, ev.Remaining)}
			case app.EventTick:
				msg = outboundMessage[any]{Type: "tick", Payload: ev}
			case app.EventAnswer:
				msg = outboundMessage[any]{Type: "score", Payload: ev}
			case app.EventMatchup:
				msg = outboundMessage[any]{Type: "matchup", Payload: ev}
			case app.EventGameEnd:
				msg = outboundMessage[any]{Type: "gameEnd", Payload: gameEndPayload{Score: ev.Score, GroupScores: ev.GroupScores}}
			default:
				continue
			}
			select {
			case send <- msg:
			case <-closeSignals:
				return
			}
		case <-closeSignals:
			return
		}
	}
}

func viewFor(round *app.Round, idx, remaining int) questionView {
	q, _ := round.QuestionAt(idx)
	view := questionView{
		Index:       idx,
		Total:       round.Len(),
		Type:        q.Type,
		Prompt:      q.Prompt,
		Sentence:    q.Sentence,
		Instruction: q.Instruction,
		Image:       q.Image,
		Choices:     round.DisplayedChoices(idx),
		Disabled:    round.DisabledChoices(idx),
		Remaining:   remaining,
	}
	if q.Type == domain.TypeMatching {
		for _, p := range q.Pairs {
			view.Terms = append(view.Terms, p.Term)
		}
	}
	if _, ok := round.AnswerAt(idx); ok {
		view.Answered = true
	}
	return view
}

func errMsg(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}

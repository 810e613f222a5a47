// Package transport implements the per-connection protocol state machine,
// independent of the framing that carries it (TCP lines or WebSocket frames).
package transport

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"flashquiz/internal/domain"
	"flashquiz/internal/game"
	"flashquiz/internal/protocol"
)

// ErrMalformed reports an undecodable frame. The connection stays usable;
// the handler replies with a protocol error and keeps its current state.
var ErrMalformed = errors.New("malformed message")

// Conn is a single client connection able to exchange protocol frames.
// Implementations wrap malformed-frame decode failures with ErrMalformed;
// any other read error is treated as a disconnect.
type Conn interface {
	ReadMessage() (protocol.ClientMessage, error)
	WriteMessage(v any) error
	Close() error
}

// state is the per-connection protocol state.
type state int

const (
	stateAwaitingUsername state = iota
	stateAwaitingTopic
	stateQuestionOutstanding
	stateRoundComplete
	stateTerminated
)

// Handler drives the protocol state machine for one client. It owns the
// session state (username, current round) exclusively; the only shared
// resources it touches are the Service's scoreboard and hub, both of which
// serialize access internally. A handler never blocks on another client's
// socket.
type Handler struct {
	svc  *game.Service
	conn Conn
	log  logrus.FieldLogger

	state    state
	username string
	round    *game.Round

	send          chan any
	done          chan struct{}
	forwarderDone chan struct{}
	cancelSub     func()
}

func NewHandler(svc *game.Service, conn Conn, log logrus.FieldLogger) *Handler {
	return &Handler{
		svc:   svc,
		conn:  conn,
		log:   log,
		state: stateAwaitingUsername,
		send:  make(chan any, 16),
		done:  make(chan struct{}),
	}
}

// Run processes the connection until the client logs out, the socket fails,
// or ctx is canceled. A failure here never affects other connections.
func (h *Handler) Run(ctx context.Context) {
	defer h.conn.Close()

	// Cancellation closes the socket, which unblocks the read loop.
	go func() {
		select {
		case <-ctx.Done():
			h.conn.Close()
		case <-h.done:
		}
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		var dead bool
		for msg := range h.send {
			if dead {
				continue
			}
			if err := h.conn.WriteMessage(msg); err != nil {
				h.log.WithError(err).Debug("write failed, dropping connection")
				// Closing unblocks the read loop; keep draining so the
				// handler never wedges on a full queue.
				h.conn.Close()
				dead = true
			}
		}
	}()

	for h.state != stateTerminated {
		msg, err := h.conn.ReadMessage()
		if errors.Is(err, ErrMalformed) {
			h.reject("malformed message")
			continue
		}
		if err != nil {
			h.log.WithError(err).Debug("client disconnected")
			break
		}
		h.dispatch(msg)
	}

	if h.username != "" {
		h.svc.Unregister(h.username)
		h.log.Info("session released")
	}
	if h.cancelSub != nil {
		h.cancelSub()
	}
	close(h.done)
	if h.forwarderDone != nil {
		<-h.forwarderDone
	}
	close(h.send)
	<-writerDone
}

func (h *Handler) dispatch(msg protocol.ClientMessage) {
	if msg.Type == protocol.TypeLogout {
		h.state = stateTerminated
		return
	}
	switch h.state {
	case stateAwaitingUsername:
		h.handleAwaitingUsername(msg)
	case stateAwaitingTopic:
		h.handleAwaitingTopic(msg)
	case stateQuestionOutstanding:
		h.handleQuestionOutstanding(msg)
	case stateRoundComplete:
		h.handleRoundComplete(msg)
	}
}

func (h *Handler) handleAwaitingUsername(msg protocol.ClientMessage) {
	if msg.Type != protocol.TypeRegister {
		h.rejectType(msg.Type, protocol.TypeRegister)
		return
	}
	h.register(msg.Username)
}

func (h *Handler) handleAwaitingTopic(msg protocol.ClientMessage) {
	if msg.Type != protocol.TypeTopic {
		h.rejectType(msg.Type, protocol.TypeTopic)
		return
	}
	h.startRound(msg.Topic)
}

func (h *Handler) handleQuestionOutstanding(msg protocol.ClientMessage) {
	if msg.Type != protocol.TypeAnswer {
		h.rejectType(msg.Type, protocol.TypeAnswer)
		return
	}
	if msg.Choice == nil {
		h.reject("answer requires a choice")
		return
	}

	result, err := h.round.Grade(game.Answer{
		ByIndex: msg.Choice.ByIndex,
		Index:   msg.Choice.Index,
		Text:    msg.Choice.Text,
	})
	if err != nil {
		h.reject(err.Error())
		return
	}

	h.send <- protocol.NewResult(result.Correct, result.CorrectAnswer, result.Score)
	h.svc.RecordScore(h.username, result.Score)

	if result.Done {
		h.state = stateRoundComplete
		h.send <- protocol.NewRoundComplete(h.round.Topic(), result.Score, h.round.Total(), h.round.Percentage())
		return
	}
	h.serveQuestion()
}

func (h *Handler) handleRoundComplete(msg protocol.ClientMessage) {
	switch msg.Type {
	case protocol.TypeNextRound:
		if msg.Topic != "" {
			h.startRound(msg.Topic)
			return
		}
		h.state = stateAwaitingTopic
		h.send <- protocol.NewTopics(h.svc.Topics())
	case protocol.TypeRegister:
		// Change of username: the old leaderboard entry goes first, then the
		// new name is claimed like any fresh registration. Score starts over.
		h.svc.Unregister(h.username)
		h.username = ""
		h.round = nil
		h.state = stateAwaitingUsername
		h.register(msg.Username)
	default:
		h.reject(fmt.Sprintf("unexpected %q message after round", msg.Type))
	}
}

func (h *Handler) register(username string) {
	if err := h.svc.Register(username); err != nil {
		h.reject(err.Error())
		return
	}
	h.username = username
	h.log = h.log.WithField("username", username)
	h.state = stateAwaitingTopic
	h.send <- protocol.NewRegistered(username, h.svc.Topics())
	h.subscribeOnce()
	h.log.Info("registered")
}

func (h *Handler) startRound(topic string) {
	round, err := h.svc.NewRound(topic)
	if err != nil {
		h.reject(err.Error())
		return
	}
	h.round = round
	h.svc.RecordScore(h.username, 0)
	h.log.WithField("topic", topic).Info("round started")
	h.serveQuestion()
}

func (h *Handler) serveQuestion() {
	q, number, ok := h.round.Next()
	if !ok {
		// Round construction guarantees a full queue, so running dry outside
		// Grade means a state machine bug rather than client misbehavior.
		h.reject(domain.ErrNoQuestionPending.Error())
		return
	}
	h.state = stateQuestionOutstanding
	h.send <- protocol.NewQuestion(q, number, h.round.Total())
}

// subscribeOnce starts forwarding leaderboard broadcasts to this client. The
// subscription survives username changes; it is tied to the connection, not
// the name.
func (h *Handler) subscribeOnce() {
	if h.cancelSub != nil {
		return
	}
	updates, cancel := h.svc.Subscribe()
	h.cancelSub = cancel
	h.forwarderDone = make(chan struct{})
	go func() {
		defer close(h.forwarderDone)
		for {
			select {
			case entries, ok := <-updates:
				if !ok {
					return
				}
				select {
				case h.send <- protocol.NewLeaderboard(entries):
				case <-h.done:
					return
				}
			case <-h.done:
				return
			}
		}
	}()
}

func (h *Handler) reject(message string) {
	h.send <- protocol.NewError(message)
}

func (h *Handler) rejectType(got, want string) {
	h.reject(fmt.Sprintf("unexpected %q message, expected %q", got, want))
}

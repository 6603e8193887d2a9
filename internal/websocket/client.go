package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/almas-cp/Saner-sub000/internal/presence"
	"github.com/almas-cp/Saner-sub000/internal/services"
	"github.com/almas-cp/Saner-sub000/internal/timeline"
)

const (
	KindDM           = "dm"
	KindConsultation = "consultation"
)

// Event is what flows from the hub (and from a connection's own read pump)
// into a connection's write pump. The write pump is the only goroutine that
// touches the connection's timeline views.
type Event struct {
	Type           string
	Scope          string
	Kind           string
	Entry          timeline.Message
	Snapshot       []timeline.Message
	LocalID        string
	Error          string
	RecipientID    int64
	ConsultationID int64
}

const (
	eventSnapshot     = "snapshot"
	eventUnsubscribed = "unsubscribed"
	eventPending      = "pending"
	eventMessage      = "message"
	eventSendFailed   = "send_failed"
	eventClassified   = "classified"
	eventError        = "error"
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	events chan *Event

	// overflow tears the connection down when the write pump cannot keep up
	// with the connection's own events.
	overflow func()

	// Owned by the hub goroutine.
	scopes map[string]struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		events:   make(chan *Event, 32),
		overflow: func() { _ = conn.Close() },
		scopes:   make(map[string]struct{}),
	}
}

// Gateway bundles what the realtime layer needs from the rest of the service.
// Presence is optional; a nil store disables it.
type Gateway struct {
	Chats         *services.ChatService
	Consultations *services.ConsultationService
	Presence      *presence.Store
	Logger        zerolog.Logger
}

type inboundFrame struct {
	Type           string `json:"type"`
	Kind           string `json:"kind,omitempty"`
	PeerID         int64  `json:"peer_id,omitempty"`
	ConsultationID int64  `json:"consultation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	LocalID        string `json:"local_id,omitempty"`
}

type outboundFrame struct {
	Type           string             `json:"type"`
	Scope          string             `json:"scope,omitempty"`
	Kind           string             `json:"kind,omitempty"`
	ConversationID int64              `json:"conversation_id,omitempty"`
	LocalID        string             `json:"local_id,omitempty"`
	Message        *timeline.Message  `json:"message,omitempty"`
	Messages       []timeline.Message `json:"messages,omitempty"`
	Error          string             `json:"error,omitempty"`
	Timestamp      string             `json:"timestamp"`
}

// ReadPump consumes frames from the socket until it closes. Sends run through
// the services layer; resulting deliveries are broadcast to every scope
// subscriber, this connection included.
func (c *Client) ReadPump(gateway *Gateway) {
	ctx := context.Background()

	if gateway.Presence != nil {
		if err := gateway.Presence.Connected(ctx, c.userID); err != nil {
			gateway.Logger.Warn().Err(err).Int64("user_id", c.userID).Msg("presence attach failed")
		}
	}
	defer func() {
		if gateway.Presence != nil {
			if err := gateway.Presence.Disconnected(ctx, c.userID); err != nil {
				gateway.Logger.Warn().Err(err).Int64("user_id", c.userID).Msg("presence detach failed")
			}
		}
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.selfEvent(&Event{Type: eventError, Error: "invalid frame"})
			continue
		}

		switch frame.Type {
		case "subscribe":
			c.handleSubscribe(ctx, gateway, frame)
		case "unsubscribe":
			scope, ok := c.frameScope(frame)
			if !ok {
				c.selfEvent(&Event{Type: eventError, Error: "invalid scope"})
				continue
			}
			c.hub.Unsubscribe(c, scope)
			c.selfEvent(&Event{Type: eventUnsubscribed, Scope: scope})
		case "message":
			c.handleSend(ctx, gateway, frame)
		case "classify":
			if frame.ConsultationID <= 0 {
				c.selfEvent(&Event{Type: eventError, Error: "invalid conversation id"})
				continue
			}
			kind, err := gateway.Consultations.Classify(ctx, frame.ConsultationID)
			if err != nil {
				c.selfEvent(&Event{Type: eventError, Error: "failed to classify conversation"})
				continue
			}
			c.selfEvent(&Event{Type: eventClassified, Kind: kind, ConsultationID: frame.ConsultationID})
		case "ping":
			if gateway.Presence != nil {
				if err := gateway.Presence.Refresh(ctx, c.userID); err != nil {
					gateway.Logger.Warn().Err(err).Int64("user_id", c.userID).Msg("presence refresh failed")
				}
			}
		default:
			c.selfEvent(&Event{Type: eventError, Error: "unsupported frame type"})
		}
	}
}

func (c *Client) frameScope(frame inboundFrame) (string, bool) {
	switch frame.Kind {
	case KindDM:
		if frame.PeerID <= 0 || frame.PeerID == c.userID {
			return "", false
		}
		return DMScope(c.userID, frame.PeerID), true
	case KindConsultation:
		if frame.ConsultationID <= 0 {
			return "", false
		}
		return ConsultationScope(frame.ConsultationID), true
	}
	return "", false
}

// handleSubscribe loads the thread, registers the scope, and hands the write
// pump its initial timeline. Loading before subscribing means a message
// delivered in between shows up as a duplicate-id reconcile, not a gap.
func (c *Client) handleSubscribe(ctx context.Context, gateway *Gateway, frame inboundFrame) {
	scope, ok := c.frameScope(frame)
	if !ok {
		c.selfEvent(&Event{Type: eventError, Error: "invalid scope"})
		return
	}

	var initial []timeline.Message
	switch frame.Kind {
	case KindDM:
		messages, err := gateway.Chats.ListMessages(ctx, c.userID, frame.PeerID)
		if err != nil {
			c.selfEvent(&Event{Type: eventError, Error: "failed to load conversation"})
			return
		}
		initial = make([]timeline.Message, 0, len(messages))
		for _, message := range messages {
			initial = append(initial, timeline.FromDirectMessage(message))
		}
	case KindConsultation:
		messages, chat, err := gateway.Consultations.ListMessages(ctx, c.userID, frame.ConsultationID)
		if err != nil {
			if errors.Is(err, services.ErrForbidden) {
				c.selfEvent(&Event{Type: eventError, Error: "not a participant"})
			} else {
				c.selfEvent(&Event{Type: eventError, Error: "failed to load conversation"})
			}
			return
		}
		initial = make([]timeline.Message, 0, len(messages))
		for _, message := range messages {
			initial = append(initial, timeline.FromChatMessage(message, chat))
		}
	}

	c.hub.Subscribe(c, scope)
	c.selfEvent(&Event{Type: eventSnapshot, Scope: scope, Kind: frame.Kind, Snapshot: initial})
}

func (c *Client) handleSend(ctx context.Context, gateway *Gateway, frame inboundFrame) {
	scope, ok := c.frameScope(frame)
	if !ok {
		c.selfEvent(&Event{Type: eventError, Error: "invalid scope"})
		return
	}

	pending := timeline.NewPending(c.userID, frame.PeerID, frame.Content)
	if frame.LocalID != "" {
		pending.ID = frame.LocalID
	}
	c.selfEvent(&Event{Type: eventPending, Scope: scope, Kind: frame.Kind, Entry: pending})

	switch frame.Kind {
	case KindDM:
		delivery, err := gateway.Chats.SendMessage(ctx, c.userID, frame.PeerID, frame.Content)
		if err != nil {
			c.selfEvent(&Event{Type: eventSendFailed, Scope: scope, LocalID: pending.ID, Error: sendErrorText(err)})
			return
		}
		c.hub.Broadcast(&Event{
			Type:        eventMessage,
			Scope:       scope,
			Kind:        KindDM,
			Entry:       timeline.FromDirectMessage(*delivery.Message),
			RecipientID: delivery.RecipientID,
		})
	case KindConsultation:
		delivery, err := gateway.Consultations.SendMessage(ctx, c.userID, frame.ConsultationID, frame.Content)
		if err != nil {
			c.selfEvent(&Event{Type: eventSendFailed, Scope: scope, LocalID: pending.ID, Error: sendErrorText(err)})
			return
		}
		c.hub.Broadcast(&Event{
			Type:           eventMessage,
			Scope:          scope,
			Kind:           KindConsultation,
			Entry:          timeline.FromChatMessage(*delivery.Message, delivery.Chat),
			RecipientID:    delivery.RecipientID,
			ConsultationID: frame.ConsultationID,
		})
	}
}

// selfEvent queues an event for this connection's own write pump. Losing one
// of these is worse than losing the socket: a dropped snapshot leaves the
// scope subscribed with no view, and a dropped send_failed leaves a phantom
// pending entry. A full buffer therefore closes the connection, which forces
// a reconnect and a fresh subscribe.
func (c *Client) selfEvent(event *Event) {
	select {
	case c.events <- event:
	default:
		c.overflow()
	}
}

// WritePump owns the timeline views and the socket's write side. Events from
// the hub and from the read pump are serialized here, so reconciliation never
// races.
func (c *Client) WritePump(gateway *Gateway) {
	defer func() {
		_ = c.conn.Close()
	}()

	views := make(map[string]*view)

	for event := range c.events {
		frame := outboundFrame{
			Type:      event.Type,
			Scope:     event.Scope,
			Timestamp: services.FormatChatTimestamp(time.Now().UTC()),
		}

		switch event.Type {
		case eventSnapshot:
			views[event.Scope] = newView(event.Snapshot)
			frame.Messages = views[event.Scope].snapshot()
		case eventUnsubscribed:
			delete(views, event.Scope)
		case eventPending:
			if v, ok := views[event.Scope]; ok {
				v.addPending(event.Entry)
			}
			entry := event.Entry
			frame.Message = &entry
		case eventMessage:
			entry := event.Entry
			if v, ok := views[event.Scope]; ok {
				frame.LocalID = v.apply(entry)
			}
			frame.Message = &entry
			if event.RecipientID == c.userID && entry.SenderID != c.userID {
				go c.markDelivered(gateway, event)
			}
		case eventSendFailed:
			if v, ok := views[event.Scope]; ok {
				v.removePending(event.LocalID)
			}
			frame.LocalID = event.LocalID
			frame.Error = event.Error
		case eventClassified:
			frame.Kind = event.Kind
			frame.ConversationID = event.ConsultationID
		case eventError:
			frame.Error = event.Error
		}

		payload, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// markDelivered flags a message read as soon as it reaches a subscribed
// receiver. Fire and forget; the next thread load repairs any miss.
func (c *Client) markDelivered(gateway *Gateway, event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch event.Kind {
	case KindDM:
		var messageID int64
		messageID, err = strconv.ParseInt(event.Entry.ID, 10, 64)
		if err == nil {
			err = gateway.Chats.MarkMessageRead(ctx, messageID, c.userID)
		}
	case KindConsultation:
		err = gateway.Consultations.MarkRead(ctx, c.userID, event.ConsultationID)
	}
	if err != nil {
		gateway.Logger.Warn().Err(err).Str("scope", event.Scope).Msg("mark delivered failed")
	}
}

func sendErrorText(err error) string {
	switch {
	case errors.Is(err, services.ErrSessionEnded):
		return "session has ended"
	case errors.Is(err, services.ErrNotConnected):
		return "users are not connected"
	case errors.Is(err, services.ErrInvalidInput):
		return "invalid message"
	case errors.Is(err, services.ErrForbidden):
		return "not a participant"
	default:
		return "failed to send message"
	}
}

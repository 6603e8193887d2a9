// Package chatws carries the realtime side of both conversation schemas. A
// connection subscribes to conversation scopes; every scope subscriber keeps a
// per-connection timeline view that pending sends and confirmed deliveries are
// reconciled into.
package chatws

import (
	"fmt"
	"strconv"
)

// DMScope names the scope of a regular two-party thread. The pair is
// normalized so both participants land on the same scope string.
func DMScope(userA, userB int64) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("dm:%d:%d", userA, userB)
}

// ConsultationScope names the scope of a consultation thread.
func ConsultationScope(consultationID int64) string {
	return "consultation:" + strconv.FormatInt(consultationID, 10)
}

type subscription struct {
	client *Client
	scope  string
}

type Hub struct {
	scopes      map[string]map[*Client]struct{}
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan *Event
}

func NewHub() *Hub {
	return &Hub{
		scopes:      make(map[string]map[*Client]struct{}),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		broadcast:   make(chan *Event, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.unregister:
			for scope := range client.scopes {
				h.drop(scope, client)
			}
			close(client.events)
		case sub := <-h.subscribe:
			set, ok := h.scopes[sub.scope]
			if !ok {
				set = make(map[*Client]struct{})
				h.scopes[sub.scope] = set
			}
			set[sub.client] = struct{}{}
			sub.client.scopes[sub.scope] = struct{}{}
		case sub := <-h.unsubscribe:
			h.drop(sub.scope, sub.client)
			delete(sub.client.scopes, sub.scope)
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Subscribe(client *Client, scope string) {
	h.subscribe <- subscription{client: client, scope: scope}
}

func (h *Hub) Unsubscribe(client *Client, scope string) {
	h.unsubscribe <- subscription{client: client, scope: scope}
}

func (h *Hub) Broadcast(event *Event) {
	h.broadcast <- event
}

func (h *Hub) deliver(event *Event) {
	set, ok := h.scopes[event.Scope]
	if !ok {
		return
	}
	for client := range set {
		select {
		case client.events <- event:
		default:
			// Slow consumer; drop its subscription rather than block the
			// hub. The events channel stays open until the connection
			// unregisters, so the reader goroutine cannot hit a closed
			// channel.
			h.drop(event.Scope, client)
			delete(client.scopes, event.Scope)
		}
	}
}

func (h *Hub) drop(scope string, client *Client) {
	set, ok := h.scopes[scope]
	if !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.scopes, scope)
	}
}

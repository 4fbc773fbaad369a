package websocket

import "github.com/rs/zerolog/log"

// topicMessage targets the subscribers of a single chapter.
type topicMessage struct {
	chapter string
	data    []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for global broadcast.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages for a single chapter's subscribers.
	topic chan topicMessage

	// A map of chapter names to the set of clients subscribed to them.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:     make(chan []byte),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		topic:         make(chan topicMessage),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop. All map access happens on
// this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
			// If the client asked for a chapter on connect, subscribe them.
			if client.Chapter != "" {
				h.addSubscription(client, client.Chapter)
			}
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				// Remove from global clients and any subscriptions
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscription(client)
				}
			}
		case msg := <-h.topic:
			for client := range h.subscriptions[msg.chapter] {
				select {
				case client.Send <- msg.data:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscription(client)
				}
			}
		}
	}
}

// BroadcastTo sends a message to all clients subscribed to a chapter.
func (h *Hub) BroadcastTo(chapter string, message []byte) {
	h.topic <- topicMessage{chapter: chapter, data: message}
}

func (h *Hub) addSubscription(client *Client, chapter string) {
	if h.subscriptions[chapter] == nil {
		h.subscriptions[chapter] = make(map[*Client]bool)
	}
	h.subscriptions[chapter][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for chapter, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, chapter)
			}
		}
	}
}

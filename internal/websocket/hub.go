package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MessageType определяет типы сообщений
type MessageType string

const (
	// Системные типы
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"

	// Подписки на каналы
	TypeChannelSubscribe   MessageType = "channel_subscribe"
	TypeChannelUnsubscribe MessageType = "channel_unsubscribe"
	TypeChannelUsers       MessageType = "channel_users"

	// Доменные события сервисов ретранслируются как есть
	TypeEvent MessageType = "event"

	// Присутствие
	TypeUserOnline  MessageType = "user_online"
	TypeUserOffline MessageType = "user_offline"
	TypeUserStatus  MessageType = "user_status"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Event     string          `json:"event,omitempty"`
	ChannelID *uuid.UUID      `json:"channel_id,omitempty"`
	UserID    uuid.UUID       `json:"user_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Hub struct {
	clients map[uuid.UUID]*Client

	// Клиенты по UserID (у пользователя может быть несколько соединений)
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	// Подписчики каналов
	channels map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		channels:    make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run запускает hub
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		client.Conn.Close()
	}
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	log.Printf("Client registered: %s (User: %s)", client.ID, client.UserID)

	h.notifyPresence(client.UserID, TypeUserOnline)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		for channelID := range client.Channels {
			h.removeFromChannelUnsafe(client, channelID)
		}

		if userClients, ok := h.userClients[client.UserID]; ok {
			delete(userClients, client.ID)
			if len(userClients) == 0 {
				delete(h.userClients, client.UserID)
				h.notifyPresence(client.UserID, TypeUserOffline)
			}
		}

		delete(h.clients, client.ID)
		close(client.Send)

		log.Printf("Client unregistered: %s (User: %s)", client.ID, client.UserID)
	}
}

// Subscribe подписывает клиента на события канала
func (h *Hub) Subscribe(client *Client, channelID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.channels[channelID]; !ok {
		h.channels[channelID] = make(map[uuid.UUID]*Client)
	}

	h.channels[channelID][client.ID] = client
	client.mu.Lock()
	client.Channels[channelID] = true
	client.mu.Unlock()

	h.sendChannelUsers(client, channelID)
}

// Unsubscribe отписывает клиента от канала
func (h *Hub) Unsubscribe(client *Client, channelID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromChannelUnsafe(client, channelID)
}

func (h *Hub) removeFromChannelUnsafe(client *Client, channelID uuid.UUID) {
	if subs, ok := h.channels[channelID]; ok {
		if _, ok := subs[client.ID]; ok {
			delete(subs, client.ID)
			client.mu.Lock()
			delete(client.Channels, channelID)
			client.mu.Unlock()

			if len(subs) == 0 {
				delete(h.channels, channelID)
			}
		}
	}
}

// NotifyChannel рассылает доменное событие подписчикам канала.
// Реализует интерфейс уведомлений сервисов
func (h *Hub) NotifyChannel(channelUUID uuid.UUID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("cannot marshal %s payload: %v", event, err)
		return
	}

	msg := Message{
		Type:      TypeEvent,
		Event:     event,
		ChannelID: &channelUUID,
		Data:      data,
		Timestamp: time.Now(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.channels[channelUUID]; ok {
		for _, client := range subs {
			select {
			case client.Send <- raw:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

// SendToUser отправляет сообщение всем соединениям пользователя
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.userClients[userID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- message:
			default:
				log.Printf("Client %s send channel full", client.ID)
			}
		}
	}
}

func (h *Hub) sendChannelUsers(client *Client, channelID uuid.UUID) {
	users := make([]uuid.UUID, 0)

	if subs, ok := h.channels[channelID]; ok {
		userMap := make(map[uuid.UUID]bool)
		for _, c := range subs {
			userMap[c.UserID] = true
		}
		for userID := range userMap {
			users = append(users, userID)
		}
	}

	msg := Message{
		Type:      TypeChannelUsers,
		ChannelID: &channelID,
		UserID:    client.UserID,
		Timestamp: time.Now(),
	}

	if data, err := json.Marshal(users); err == nil {
		msg.Data = data
		if raw, err := json.Marshal(msg); err == nil {
			select {
			case client.Send <- raw:
			default:
				log.Printf("Failed to send channel users to client %s", client.ID)
			}
		}
	}
}

// BroadcastUserStatus рассылает смену статуса всем подключённым
func (h *Hub) BroadcastUserStatus(userID uuid.UUID, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := Message{
		Type:      TypeUserStatus,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- raw:
		default:
		}
	}
}

// notifyPresence уведомляет о появлении и уходе пользователя
func (h *Hub) notifyPresence(userID uuid.UUID, status MessageType) {
	msg := Message{
		Type:      status,
		UserID:    userID,
		Timestamp: time.Now(),
	}

	if data, err := json.Marshal(msg); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{
		Type:      TypePing,
		Timestamp: time.Now(),
	}

	if data, err := json.Marshal(msg); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// OnlineUsers возвращает список пользователей с активными соединениями
func (h *Hub) OnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

// ChannelUsers возвращает подписчиков канала
func (h *Hub) ChannelUsers(channelID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userMap := make(map[uuid.UUID]bool)
	if subs, ok := h.channels[channelID]; ok {
		for _, client := range subs {
			userMap[client.UserID] = true
		}
	}

	users := make([]uuid.UUID, 0, len(userMap))
	for userID := range userMap {
		users = append(users, userID)
	}
	return users
}

package ws

import (
	"sync"

	"salonchat_backend/internal/logger"
	"salonchat_backend/internal/models"
)

// Manager держит таблицы групповой адресации: персональные группы
// ("kind:id" - туда летит вся живая доставка актора, сколько бы
// устройств он ни держал открытыми) и добровольные разговорные группы
// ("conv:<id>" - только для эфемерных сигналов).
type Manager struct {
	groups     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		groups:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run - цикл регистрации/снятия клиентов. Запускается одной горутиной из app.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.addToGroup(client, client.Identity.Ref().GroupKey())
			logger.WSLog("client registered", client.Identity.Ref().GroupKey(), nil)

			// online шлем на первом подключении актора, мульти-девайс
			// не спамит статусами
			if m.GroupSize(client.Identity.Ref().GroupKey()) == 1 {
				m.BroadcastAll(Event{
					Event: EventStatusUpdate,
					Data: StatusPayload{
						Kind:   string(client.Identity.Kind),
						ID:     client.Identity.ID,
						Status: "online",
					},
				})
			}

		case client := <-m.unregister:
			if m.removeClient(client) {
				close(client.Send)
				logger.WSLog("client unregistered", client.Identity.Ref().GroupKey(), nil)

				if m.GroupSize(client.Identity.Ref().GroupKey()) == 0 {
					m.BroadcastAll(Event{
						Event: EventStatusUpdate,
						Data: StatusPayload{
							Kind:   string(client.Identity.Kind),
							ID:     client.Identity.ID,
							Status: "offline",
						},
					})
				}
			}
		}
	}
}

func (m *Manager) addToGroup(client *Client, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.groups[key] == nil {
		m.groups[key] = make(map[*Client]bool)
	}
	m.groups[key][client] = true
	client.groups[key] = true
}

func (m *Manager) removeFromGroup(client *Client, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if members, ok := m.groups[key]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(m.groups, key)
		}
	}
	delete(client.groups, key)
}

// removeClient снимает клиента со всех его групп.
// false - если клиент уже был снят (двойной unregister).
func (m *Manager) removeClient(client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	// С этого момента send() кадров не шлет: канал клиента вот-вот
	// закроется, поздний кадр молча теряется вместо паники.
	client.closed = true

	removed := false
	for key := range client.groups {
		if members, ok := m.groups[key]; ok {
			if members[client] {
				removed = true
			}
			delete(members, client)
			if len(members) == 0 {
				delete(m.groups, key)
			}
		}
	}
	client.groups = make(map[string]bool)
	return removed
}

// JoinConversation подписывает соединение на разговорную группу.
// Чисто для typing-сигналов, на доставку сообщений не влияет.
func (m *Manager) JoinConversation(client *Client, conversationID string) {
	m.addToGroup(client, "conv:"+conversationID)
}

// LeaveConversation снимает подписку с разговорной группы
func (m *Manager) LeaveConversation(client *Client, conversationID string) {
	m.removeFromGroup(client, "conv:"+conversationID)
}

// BroadcastToActor шлет событие в персональную группу актора.
// Если актор не подключен - событие просто не доставляется вживую,
// durable-состояние уже лежит в Message Store.
func (m *Manager) BroadcastToActor(actor models.ActorRef, event Event) {
	m.BroadcastToGroup(actor.GroupKey(), event)
}

// BroadcastToGroup шлет событие всем соединениям группы
func (m *Manager) BroadcastToGroup(key string, event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.groups[key] {
		m.send(client, event)
	}
}

// BroadcastAll шлет событие всем подключенным клиентам
func (m *Manager) BroadcastAll(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[*Client]bool)
	for _, members := range m.groups {
		for client := range members {
			if !seen[client] {
				seen[client] = true
				m.send(client, event)
			}
		}
	}
}

// sendToClient доставляет кадр одному соединению (ack, message-error).
// Тот же неблокирующий путь, что и у групповых рассылок: после снятия
// клиента кадр молча теряется, доставка никогда не паникует.
func (m *Manager) sendToClient(client *Client, event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.send(client, event)
}

// send - неблокирующая отправка; клиент с забитым каналом отключается.
// Вызывается только под m.mu: флаг closed ставится под полным локом,
// так что отправка в закрытый канал исключена.
func (m *Manager) send(client *Client, event Event) {
	if client.closed {
		return
	}
	select {
	case client.Send <- event:
	default:
		go func() {
			m.unregister <- client
		}()
	}
}

// IsActorConnected - есть ли у актора хоть одно живое соединение
func (m *Manager) IsActorConnected(actor models.ActorRef) bool {
	return m.GroupSize(actor.GroupKey()) > 0
}

// GroupSize возвращает число соединений в группе
func (m *Manager) GroupSize(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.groups[key])
}

package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"salonchat_backend/internal/models"
	modelChat "salonchat_backend/internal/models/chat"
	"salonchat_backend/internal/repositories"
	repoChat "salonchat_backend/internal/repositories/chat"
	"salonchat_backend/internal/services"
	chat "salonchat_backend/internal/services/chat"
	"salonchat_backend/pkg/apperrors"
)

// actionTestEnv - полный ws-стек без сетевых соединений: живой сервис
// на in-memory SQLite, менеджер, по клиенту на актора. handleMessage
// вызывается напрямую, как его звал бы readPump.
type actionTestEnv struct {
	manager  *Manager
	customer *Client
	staff    *Client
}

func newActionTestEnv(t *testing.T) *actionTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.Staff{},
		&models.Admin{},
		&modelChat.Message{},
	))

	require.NoError(t, db.Create(&models.Customer{ID: "c1", Name: "Aliya"}).Error)
	require.NoError(t, db.Create(&models.Staff{ID: "s1", SalonID: "salon-1", Name: "Dana", Email: "dana@salon.kz", PasswordHash: "x"}).Error)

	resolver := services.NewIdentityService(repositories.NewIdentityRepository(db))
	chatService := chat.NewChatService(repoChat.NewMessageRepository(db), resolver)

	m := newTestManager()
	env := &actionTestEnv{
		manager:  m,
		customer: newActionClient(m, chatService, models.Identity{ID: "c1", Kind: models.ActorKindCustomer, DisplayName: "Aliya"}),
		staff:    newActionClient(m, chatService, models.Identity{ID: "s1", Kind: models.ActorKindStaff, DisplayName: "Dana"}),
	}
	register(t, m, env.customer)
	register(t, m, env.staff)
	return env
}

func newActionClient(m *Manager, chatService *chat.ChatService, identity models.Identity) *Client {
	c := newTestClient(m, identity)
	c.ChatService = chatService
	return c
}

// action прогоняет входящий фрейм через центральный обработчик
func action(t *testing.T, c *Client, name string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	c.handleMessage(IncomingWSMessage{Action: name, Data: raw})
}

// drainEvents снимает все уже доставленные кадры с данным именем.
// handleMessage синхронен, так что после возврата все его кадры в канале;
// попутные status-update фильтруются.
func drainEvents(c *Client, name string) []Event {
	var out []Event
	for {
		select {
		case ev := <-c.Send:
			if ev.Event == name {
				out = append(out, ev)
			}
		default:
			return out
		}
	}
}

// send_message: ack отправителю после персиста, затем fan-out во все
// соединения персональной группы получателя
func TestClient_SendMessage_AckThenFanout(t *testing.T) {
	t.Parallel()
	env := newActionTestEnv(t)

	// Второе устройство получателя в той же персональной группе
	staffPhone := newActionClient(env.manager, env.staff.ChatService, env.staff.Identity)
	register(t, env.manager, staffPhone)

	action(t, env.customer, ActionSendMessage, map[string]string{
		"receiver_kind": "staff",
		"receiver_id":   "s1",
		"body":          "Можно перенести запись?",
	})

	acks := drainEvents(env.customer, EventMessageSent)
	require.Len(t, acks, 1)
	sent, ok := acks[0].Data.(*chat.SentMessage)
	require.True(t, ok)
	assert.NotEmpty(t, sent.Message.ID, "ack несет серверные id/created_at")
	assert.Equal(t, "Aliya", sent.SenderName)

	for _, device := range []*Client{env.staff, staffPhone} {
		delivered := drainEvents(device, EventNewMessage)
		require.Len(t, delivered, 1)
		got, ok := delivered[0].Data.(*chat.SentMessage)
		require.True(t, ok)
		assert.Equal(t, sent.Message.ID, got.Message.ID)
	}
}

// Отказ до персиста: message-error только отправителю, получатель молчит
func TestClient_SendMessage_UnknownReceiver(t *testing.T) {
	t.Parallel()
	env := newActionTestEnv(t)

	action(t, env.customer, ActionSendMessage, map[string]string{
		"receiver_kind": "staff",
		"receiver_id":   "ghost",
		"body":          "hello?",
	})

	errs := drainEvents(env.customer, EventMessageError)
	require.Len(t, errs, 1)
	payload, ok := errs[0].Data.(ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, string(apperrors.CodeActorNotFound), payload.Code)

	assert.Empty(t, drainEvents(env.staff, EventNewMessage))
}

func TestClient_SendMessage_MalformedPayload(t *testing.T) {
	t.Parallel()
	env := newActionTestEnv(t)

	env.customer.handleMessage(IncomingWSMessage{
		Action: ActionSendMessage,
		Data:   json.RawMessage("not-json"),
	})

	errs := drainEvents(env.customer, EventMessageError)
	require.Len(t, errs, 1)
	assert.Empty(t, drainEvents(env.staff, EventNewMessage))
}

// Сценарий B на уровне ws-действий: автор видит ровно одно message-read,
// остальные устройства читателя тоже уведомляются; повтор молчит
func TestClient_MarkRead_NotifiesOnce(t *testing.T) {
	t.Parallel()
	env := newActionTestEnv(t)

	action(t, env.customer, ActionSendMessage, map[string]string{
		"receiver_kind": "staff", "receiver_id": "s1", "body": "Hello",
	})
	acks := drainEvents(env.customer, EventMessageSent)
	require.Len(t, acks, 1)
	messageID := acks[0].Data.(*chat.SentMessage).Message.ID
	drainEvents(env.staff, EventNewMessage)

	action(t, env.staff, ActionMarkAsRead, map[string]string{"message_id": messageID})

	senderSide := drainEvents(env.customer, EventMessageRead)
	require.Len(t, senderSide, 1, "автор уведомляется ровно один раз")
	readMsg, ok := senderSide[0].Data.(*modelChat.Message)
	require.True(t, ok)
	assert.True(t, readMsg.IsRead)
	assert.Equal(t, messageID, readMsg.ID)

	readerSide := drainEvents(env.staff, EventMessageRead)
	require.Len(t, readerSide, 1, "устройства читателя сводят read-state")

	// Повторный mark_as_read - no-op, второго уведомления не бывает
	action(t, env.staff, ActionMarkAsRead, map[string]string{"message_id": messageID})
	assert.Empty(t, drainEvents(env.customer, EventMessageRead))
	assert.Empty(t, drainEvents(env.staff, EventMessageRead))
}

// mark_as_read не получателем - no-op без событий
func TestClient_MarkRead_NonReceiverSilent(t *testing.T) {
	t.Parallel()
	env := newActionTestEnv(t)

	action(t, env.customer, ActionSendMessage, map[string]string{
		"receiver_kind": "staff", "receiver_id": "s1", "body": "Hello",
	})
	acks := drainEvents(env.customer, EventMessageSent)
	require.Len(t, acks, 1)
	messageID := acks[0].Data.(*chat.SentMessage).Message.ID

	action(t, env.customer, ActionMarkAsRead, map[string]string{"message_id": messageID})
	assert.Empty(t, drainEvents(env.customer, EventMessageRead))
	assert.Empty(t, drainEvents(env.staff, EventMessageRead))
}

// typing_start/stop: ретрансляция получателю и в разговорную группу,
// без персиста и без ack
func TestClient_TypingRelay(t *testing.T) {
	t.Parallel()
	env := newActionTestEnv(t)

	action(t, env.customer, ActionTypingStart, map[string]string{
		"receiver_kind": "staff", "receiver_id": "s1",
	})
	typed := drainEvents(env.staff, EventUserTyping)
	require.Len(t, typed, 1)
	payload, ok := typed[0].Data.(TypingPayload)
	require.True(t, ok)
	assert.Equal(t, "Aliya", payload.SenderName)

	action(t, env.customer, ActionTypingStop, map[string]string{
		"receiver_kind": "staff", "receiver_id": "s1",
	})
	require.Len(t, drainEvents(env.staff, EventUserStoppedTyping), 1)
	assert.Empty(t, drainEvents(env.customer, EventUserTyping), "отправителю эха нет")
}

func TestClient_TypingScopedToConversationGroup(t *testing.T) {
	t.Parallel()
	env := newActionTestEnv(t)

	action(t, env.staff, ActionJoinConversation, map[string]string{"conversation_id": "b42"})

	action(t, env.customer, ActionTypingStart, map[string]string{"conversation_id": "b42"})
	typed := drainEvents(env.staff, EventUserTyping)
	require.Len(t, typed, 1)
	assert.Equal(t, "b42", typed[0].Data.(TypingPayload).ConversationID)

	// Покинувший группу соединений сигнал больше не видит
	action(t, env.staff, ActionLeaveConversation, map[string]string{"conversation_id": "b42"})
	action(t, env.customer, ActionTypingStart, map[string]string{"conversation_id": "b42"})
	assert.Empty(t, drainEvents(env.staff, EventUserTyping))
}

// Снятый за забитый буфер клиент мог остаться в середине handleSend:
// поздний ack/message-error молча теряется, паники по закрытому
// каналу не бывает
func TestClient_LateFramesAfterDropAreSilent(t *testing.T) {
	t.Parallel()
	env := newActionTestEnv(t)

	// Второе устройство актора: его регистрация online уже не шлет,
	// буфер из одного слота заполняется вручную
	slow := newActionClient(env.manager, env.customer.ChatService, env.staff.Identity)
	slow.Send = make(chan Event, 1)
	register(t, env.manager, slow)

	// Забиваем буфер и провоцируем drop
	slow.Send <- Event{Event: "filler"}
	env.manager.BroadcastToActor(env.staff.Identity.Ref(), Event{Event: EventNewMessage})
	require.Eventually(t, func() bool {
		return env.manager.GroupSize(env.staff.Identity.Ref().GroupKey()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Кадры, которые readPump отправил бы после персиста
	env.manager.sendToClient(slow, Event{Event: EventMessageSent})
	slow.sendError(apperrors.NewBadRequestError("late frame"))
}

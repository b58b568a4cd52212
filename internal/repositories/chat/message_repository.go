package chat

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"salonchat_backend/internal/models"
	modelChat "salonchat_backend/internal/models/chat"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository - персистентный слой ядра: append-only лог сообщений.
// Единственная мутация - условный флип is_read.
type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

// Create вставляет новую неизменяемую строку
func (r *MessageRepository) Create(message *modelChat.Message) error {
	return r.DB.Create(message).Error
}

// FindByID возвращает сообщение по id
func (r *MessageRepository) FindByID(id string) (*modelChat.Message, error) {
	var message modelChat.Message
	err := r.DB.Where("id = ?", id).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

// FindBetween возвращает переписку пары акторов в обе стороны,
// по возрастанию (created_at, id). Тай-брейк по id держит порядок
// тотальным при совпадающих таймстампах.
func (r *MessageRepository) FindBetween(a, b models.ActorRef, limit, offset int) ([]modelChat.Message, error) {
	var messages []modelChat.Message
	query := r.DB.
		Where(
			"(sender_kind = ? AND sender_id = ? AND receiver_kind = ? AND receiver_id = ?) OR (sender_kind = ? AND sender_id = ? AND receiver_kind = ? AND receiver_id = ?)",
			a.Kind, a.ID, b.Kind, b.ID,
			b.Kind, b.ID, a.Kind, a.ID,
		).
		Order("created_at ASC, id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&messages).Error
	return messages, err
}

// MarkRead - условный одно-строчный UPDATE: только получатель и только
// если еще не прочитано. RowsAffected == 0 означает конфликт чтения
// (не тот актор либо повторный markRead) - различает вызывающий.
func (r *MessageRepository) MarkRead(messageID string, reader models.ActorRef) (bool, error) {
	result := r.DB.Model(&modelChat.Message{}).
		Where("id = ? AND receiver_kind = ? AND receiver_id = ? AND is_read = ?",
			messageID, reader.Kind, reader.ID, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UnreadCount считает непрочитанное, адресованное актору
func (r *MessageRepository) UnreadCount(actor models.ActorRef) (int64, error) {
	var count int64
	err := r.DB.Model(&modelChat.Message{}).
		Where("receiver_kind = ? AND receiver_id = ? AND is_read = ?", actor.Kind, actor.ID, false).
		Count(&count).Error
	return count, err
}

// ConversationRow - агрегат по одному собеседнику
type ConversationRow struct {
	Counterpart models.ActorRef
	LastMessage modelChat.Message
	UnreadCount int64
}

// Conversations выводит список переписок актора группировкой по второй
// стороне. "Диалог" намеренно не хранится отдельной строкой -
// группировка по логу исключает расхождение двух источников правды.
// Счет переписок на актора мал (десятки), поэтому группируем по выборке,
// без кэша и без отдельного агрегирующего SQL по паре-ключу.
func (r *MessageRepository) Conversations(actor models.ActorRef) ([]ConversationRow, error) {
	var messages []modelChat.Message
	err := r.DB.
		Where(
			"(sender_kind = ? AND sender_id = ?) OR (receiver_kind = ? AND receiver_id = ?)",
			actor.Kind, actor.ID, actor.Kind, actor.ID,
		).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Выборка уже отсортирована по убыванию, так что первое вхождение
	// собеседника несет его последнее сообщение.
	index := make(map[string]int)
	rows := make([]ConversationRow, 0)

	for i := range messages {
		msg := messages[i]
		counterpart, ok := msg.CounterpartOf(actor)
		if !ok {
			continue
		}

		key := counterpart.GroupKey()
		pos, seen := index[key]
		if !seen {
			index[key] = len(rows)
			pos = len(rows)
			rows = append(rows, ConversationRow{
				Counterpart: counterpart,
				LastMessage: msg,
			})
		}

		// Непрочитанное считаем только со стороны актора-получателя
		if msg.Receiver().Equal(actor) && !msg.IsRead {
			rows[pos].UnreadCount++
		}
	}

	return rows, nil
}

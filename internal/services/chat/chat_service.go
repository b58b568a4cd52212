package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salonchat_backend/internal/models"
	modelChat "salonchat_backend/internal/models/chat"
	repoChat "salonchat_backend/internal/repositories/chat"
	"salonchat_backend/internal/services"
	"salonchat_backend/pkg/apperrors"
)

// ChatService - оркестратор пути отправки и query-поверхность поверх
// лога сообщений. Персист строго до любой доставки: write-then-ack.
type ChatService struct {
	Messages *repoChat.MessageRepository
	Resolver services.IdentityResolver
}

func NewChatService(messages *repoChat.MessageRepository, resolver services.IdentityResolver) *ChatService {
	return &ChatService{
		Messages: messages,
		Resolver: resolver,
	}
}

type SendMessageInput struct {
	ReceiverKind models.ActorKind
	ReceiverID   string
	Body         string
}

// SentMessage - персистированное сообщение, обогащенное именем автора
// для живой доставки получателю
type SentMessage struct {
	Message    modelChat.Message `json:"message"`
	SenderName string            `json:"sender_name"`
}

// SendMessage валидирует обе пары акторов, вставляет строку и возвращает
// запись с серверными id/created_at. Любая нерезолвящаяся сторона -
// ActorNotFound, строка не создается.
func (s *ChatService) SendMessage(ctx context.Context, sender models.ActorRef, input SendMessageInput) (*SentMessage, error) {
	if input.Body == "" {
		return nil, apperrors.NewBadRequestError("Message body must not be empty")
	}

	senderIdentity, err := s.Resolver.Resolve(ctx, sender.Kind, sender.ID)
	if err != nil {
		return nil, err
	}

	receiver := models.ActorRef{Kind: input.ReceiverKind, ID: input.ReceiverID}
	if _, err := s.Resolver.Resolve(ctx, receiver.Kind, receiver.ID); err != nil {
		return nil, err
	}

	if sender.Equal(receiver) {
		return nil, apperrors.ErrSelfMessage
	}

	now := time.Now()
	message := &modelChat.Message{
		ID:           uuid.New().String(),
		SenderKind:   sender.Kind,
		SenderID:     sender.ID,
		ReceiverKind: receiver.Kind,
		ReceiverID:   receiver.ID,
		Body:         input.Body,
		IsRead:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Messages.Create(message); err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}

	return &SentMessage{
		Message:    *message,
		SenderName: senderIdentity.DisplayName,
	}, nil
}

// History возвращает переписку актора с собеседником в обе стороны,
// по возрастанию (created_at, id). Рестартуемая offset-пагинация.
func (s *ChatService) History(actor, counterpart models.ActorRef, limit, offset int) ([]modelChat.Message, error) {
	if !counterpart.Kind.Valid() || counterpart.ID == "" {
		return nil, apperrors.ErrActorNotFound(string(counterpart.Kind), counterpart.ID)
	}

	messages, err := s.Messages.FindBetween(actor, counterpart, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return messages, nil
}

// MarkRead флипает is_read, только если reader - получатель и сообщение
// еще не прочитано. Повторный вызов - безвредный no-op (flipped=false),
// уведомление message-read наверху шлется только при первом флипе,
// иначе read-after-read гонка задвоила бы его.
func (s *ChatService) MarkRead(messageID string, reader models.ActorRef) (*modelChat.Message, bool, error) {
	message, err := s.Messages.FindByID(messageID)
	if err != nil {
		if err == repoChat.ErrMessageNotFound {
			return nil, false, apperrors.ErrMessageNotFound(err)
		}
		return nil, false, apperrors.ErrPersistenceFailed(err)
	}

	flipped, err := s.Messages.MarkRead(messageID, reader)
	if err != nil {
		return nil, false, apperrors.ErrPersistenceFailed(err)
	}

	if flipped {
		message.IsRead = true
		message.UpdatedAt = time.Now()
	}

	return message, flipped, nil
}

// UnreadCount - количество непрочитанных сообщений, адресованных актору
func (s *ChatService) UnreadCount(actor models.ActorRef) (int64, error) {
	count, err := s.Messages.UnreadCount(actor)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

// Conversation - элемент списка переписок
type Conversation struct {
	Counterpart models.Identity   `json:"counterpart"`
	LastMessage modelChat.Message `json:"last_message"`
	UnreadCount int64             `json:"unread_count"`
}

// Conversations выводит собеседников актора с последним сообщением и
// непрочитанным. Пересчитывается на каждый вызов, кэша нет.
// Нерезолвящийся собеседник (удаленный аккаунт) не роняет листинг -
// отдаем пару без display name.
func (s *ChatService) Conversations(ctx context.Context, actor models.ActorRef) ([]Conversation, error) {
	rows, err := s.Messages.Conversations(actor)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	conversations := make([]Conversation, 0, len(rows))
	for _, row := range rows {
		counterpart := models.Identity{
			ID:   row.Counterpart.ID,
			Kind: row.Counterpart.Kind,
		}
		if identity, err := s.Resolver.Resolve(ctx, row.Counterpart.Kind, row.Counterpart.ID); err == nil {
			counterpart = *identity
		}

		conversations = append(conversations, Conversation{
			Counterpart: counterpart,
			LastMessage: row.LastMessage,
			UnreadCount: row.UnreadCount,
		})
	}

	return conversations, nil
}

package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для доменных ошибок
мессенджера (chat, identity, auth).
*/

// ErrActorNotFound - отправитель или получатель не найден в своей таблице.
// Жесткий отказ: никакого тихого фолбэка (см. IdentityService.Resolve).
func ErrActorNotFound(kind, id string) *AppError {
	return New(CodeActorNotFound, "identity", "Actor not found", http.StatusNotFound).
		WithDetails(map[string]string{"kind": kind, "id": id})
}

// ErrPersistenceFailed - оборачивает ошибку storage I/O при append/markRead.
// Клиент получает message-error и повторяет отправку сам, сервер не ретраит.
func ErrPersistenceFailed(err error) *AppError {
	return Wrap(err, CodePersistenceFailed, "chat", "Failed to persist message", http.StatusInternalServerError)
}

// ErrReadConflict - markRead вызван не получателем или по уже прочитанному
// сообщению. Безвредный no-op, наверх уходит 200.
var ErrReadConflict = New(
	CodeReadConflict,
	"chat",
	"Message already read or reader is not the receiver",
	http.StatusOK,
)

// ErrAuthenticationFailed - невалидный/просроченный токен на рукопожатии.
// Соединение закрывается, сервер не ретраит.
func ErrAuthenticationFailed(err error) *AppError {
	return Wrap(err, CodeAuthenticationFailed, "auth", "Authentication failed", http.StatusUnauthorized)
}

// ErrSelfMessage - отправитель и получатель совпадают
var ErrSelfMessage = New(
	CodeValidationFailed,
	"chat",
	"Sender and receiver must be different actors",
	http.StatusBadRequest,
)

// ErrMessageNotFound - сообщение с таким id отсутствует
func ErrMessageNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "chat", "Message not found", http.StatusNotFound)
}

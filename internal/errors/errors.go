// errors описывает закрытую таксономию ошибок сервиса и единый JSON-конверт
// ответа. Любой результат эндпоинта (успех или ошибка) уходит клиенту только
// через WriteJSON/WriteError этого пакета.
//
// Маппинг Kind -> HTTP-статус/код фиксирован и живёт в одном месте (ToHTTP):
//   - KindDatabase     -> 500 DATABASE_ERROR;
//   - KindNotFound     -> 404 NOT_FOUND;
//   - KindBadRequest   -> 400 BAD_REQUEST;
//   - KindUnauthorized -> 401 UNAUTHORIZED;
//   - KindInternal     -> 500 INTERNAL_ERROR;
//   - KindValidation   -> 422 VALIDATION_ERROR.
//
// Причина ошибки (Unwrap) предназначена только для логов и наружу не уходит.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind - вариант ошибки из закрытого набора.
type Kind uint8

const (
	KindDatabase Kind = iota + 1
	KindNotFound
	KindBadRequest
	KindUnauthorized
	KindInternal
	KindValidation
)

// String возвращает машиночитаемый код варианта (он же поле "error" в ответе).
func (k Kind) String() string {
	_, code := k.status()
	return code
}

// status - единственная таблица соответствия варианта HTTP-статусу и коду.
func (k Kind) status() (int, string) {
	switch k {
	case KindDatabase:
		return http.StatusInternalServerError, "DATABASE_ERROR"
	case KindNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case KindBadRequest:
		return http.StatusBadRequest, "BAD_REQUEST"
	case KindUnauthorized:
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case KindInternal:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	case KindValidation:
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// Error - ошибка приложения: вариант, безопасное сообщение и (опционально) причина.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap возвращает копию ошибки с причиной cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// Database - сбой хранилища. Сообщение наружу всегда нейтральное,
// детали драйвера остаются в причине.
func Database(cause error) *Error {
	return &Error{Kind: KindDatabase, Message: "database error", Err: cause}
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func BadRequest(msg string) *Error { return &Error{Kind: KindBadRequest, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Internal - невосстановимая ошибка (сбой криптопримитива, программная ошибка).
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf возвращает вариант ошибки; всё, что не *Error, считается KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}

// Response - единый конверт ответа. Success и Error взаимоисключающие:
// при успехе заполнено Data, при ошибке - Error и Message.
type Response[T any] struct {
	Success   bool   `json:"success"`
	Data      *T     `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success оборачивает значение в успешный конверт.
func Success[T any](value T) Response[T] {
	return Response[T]{Success: true, Data: &value}
}

// ToHTTP конвертирует ошибку в HTTP-статус и конверт с success=false.
//
// Поведение:
//   - *Error (в том числе обёрнутая) - статус и код по таблице Kind;
//   - err == nil - программная ошибка вызова: 500/INTERNAL_ERROR, чтобы не
//     отдать "успешный" статус с телом ошибки;
//   - любая иная ошибка - 500/INTERNAL_ERROR без деталей.
func ToHTTP(err error) (int, Response[any]) {
	var appErr *Error
	if err == nil || !stderrors.As(err, &appErr) {
		status, code := KindInternal.status()
		return status, Response[any]{Error: code, Message: "internal error"}
	}

	status, code := appErr.Kind.status()
	msg := appErr.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	return status, Response[any]{Error: code, Message: msg}
}

// WriteError - хелпер для HTTP-хендлеров и мидлваров.
// Пишет статус и тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	writeBody(w, status, resp)
}

// WriteJSON пишет успешный конверт с данными value и статусом status.
func WriteJSON[T any](w http.ResponseWriter, status int, value T) {
	writeBody(w, status, Success(value))
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

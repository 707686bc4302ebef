package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

const headerRequestID = "X-Request-Id"

// Длинные или пустые входящие id заменяются своими.
const maxRequestIDLen = 128

type requestIDKey struct{}

// RequestID обеспечивает наличие X-Request-Id:
//  1. читает заголовок X-Request-Id, если он есть и разумной длины;
//  2. иначе генерирует криптографически стойкий hex id (32 символа);
//  3. кладёт id в заголовки ответа и запроса (его читает errors.WriteError) и в контекст.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerRequestID)
			if id == "" || len(id) > maxRequestIDLen {
				id = genID()
				r.Header.Set(headerRequestID, id)
			}
			w.Header().Set(headerRequestID, id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFrom возвращает id запроса из контекста.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

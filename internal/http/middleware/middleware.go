package middleware

import (
	"net/http"
)

// Middleware - стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// Chain применяет мидлвары к обработчику в порядке их перечисления.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// responseRecorder запоминает первый записанный статус и объём тела.
// Один и тот же recorder переиспользуется всеми мидлварами цепочки.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func record(w http.ResponseWriter) *responseRecorder {
	if rec, ok := w.(*responseRecorder); ok {
		return rec
	}
	return &responseRecorder{ResponseWriter: w}
}

func (rec *responseRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(p []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}

	n, err := rec.ResponseWriter.Write(p)
	rec.bytes += n
	return n, err
}

// written - начат ли ответ клиенту.
func (rec *responseRecorder) written() bool { return rec.status != 0 }

// Status возвращает записанный статус; 200, если обработчик молчал
// (net/http в этом случае ответит 200 сам).
func (rec *responseRecorder) Status() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

// Unwrap нужен http.ResponseController.
func (rec *responseRecorder) Unwrap() http.ResponseWriter { return rec.ResponseWriter }

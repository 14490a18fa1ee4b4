package middlewares

import (
	"fmt"
	"net/http"

	"infini-manager/utility"
	"infini-manager/utility/logger"
)

// Middleware ... Middleware struct
type Middleware struct {
	next http.Handler
}

// NewMiddleware ... Creates a middleware instance
func NewMiddleware(handler http.Handler) *Middleware {
	return &Middleware{handler}
}

// Build ... Build midlleware functions
func (m *Middleware) Build() http.Handler {
	return m.next
}

// LogAPIRequests ... Logs every incoming request
func (m *Middleware) LogAPIRequests() *Middleware {
	nextHandler := http.HandlerFunc(func(responseWriter http.ResponseWriter, requestReader *http.Request) {
		logger.Info(fmt.Sprintf("Incoming request from : %s with IP : %s to : %s", requestReader.UserAgent(), utility.GetIPAdress(requestReader), requestReader.URL.Path))
		m.next.ServeHTTP(responseWriter, requestReader)
	})

	return &Middleware{nextHandler}
}

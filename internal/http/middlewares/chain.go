package middlewares

import "net/http"

// Middleware envuelve un handler. Es el mismo tipo que acepta chi en Use/With.
type Middleware func(http.Handler) http.Handler

// Chain compone varios middlewares en uno. El primero de la lista recibe el
// request antes que los demás: Chain(A, B)(h) corre A, B y después h.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		wrapped := h
		for i := range mws {
			wrapped = mws[len(mws)-1-i](wrapped)
		}
		return wrapped
	}
}

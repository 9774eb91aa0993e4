package middlewares

import "net/http"

// Middleware es un decorador de http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain envuelve h con los middlewares dados, de afuera hacia adentro:
// Chain(h, A, B) ejecuta A -> B -> h, así A es el primero en ver el
// request y el último en ver la respuesta. Mismo orden que r.Use de chi.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

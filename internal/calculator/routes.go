package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/reduce", ReduceHandler)
		r.Post("/evaluate", EvaluateHandler)
		r.Post("/replay", ReplayHandler)
	})
}

package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix. The folds accept an optional third operand.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/add/{operand1}/{operand2}", h.Add)
		r.Get("/add/{operand1}/{operand2}/{operand3}", h.Add)
		r.Get("/subtract/{operand1}/{operand2}", h.Subtract)
		r.Get("/subtract/{operand1}/{operand2}/{operand3}", h.Subtract)
		r.Get("/multiply/{operand1}/{operand2}", h.Multiply)
		r.Get("/multiply/{operand1}/{operand2}/{operand3}", h.Multiply)
		r.Get("/divide/{dividend}/{divisor}", h.Divide)
	})
}

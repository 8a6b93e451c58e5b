package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BuzzLyutic/teamup-api/internal/handler"
	"github.com/BuzzLyutic/teamup-api/internal/middleware"
)

// Setup собирает все маршруты сервиса. Мутирующие операции требуют
// заголовок X-User-ID от внешнего шлюза.
func Setup(
	taskHandler *handler.TaskHandler,
	membershipHandler *handler.MembershipHandler,
	subTaskHandler *handler.SubTaskHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Identity)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Route("/api", func(r chi.Router) {
		// Чтение доступно без идентификации
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{taskID}", taskHandler.Get)
		r.Get("/tasks/{taskID}/roles", membershipHandler.ListRoles)
		r.Get("/tasks/{taskID}/subtasks", subTaskHandler.List)
		r.Get("/stats", taskHandler.Stats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity)

			r.Post("/tasks", taskHandler.Create)
			r.Patch("/tasks/{taskID}", taskHandler.Update)
			r.Post("/tasks/{taskID}/finish", taskHandler.Finish)

			r.Post("/roles/{roleID}/claim", membershipHandler.Claim)
			r.Post("/roles/{roleID}/remove_member", membershipHandler.RemoveMember)

			r.Post("/tasks/{taskID}/subtasks", subTaskHandler.Create)
			r.Patch("/subtasks/{subTaskID}", subTaskHandler.Update)
			r.Delete("/subtasks/{subTaskID}", subTaskHandler.Delete)
			r.Put("/subtasks/{subTaskID}/assignee", subTaskHandler.Assign)

			r.Get("/my/roles", membershipHandler.MyRoles)
			r.Get("/my/published", taskHandler.Published)
		})
	})

	return r
}

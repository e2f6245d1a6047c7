package routes

import (
	"github.com/Dosada05/club-system/handlers"
	appMiddleware "github.com/Dosada05/club-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes собирает дерево маршрутов поверх переданного роутера.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	eventHandler *handlers.EventHandler,
	attendanceHandler *handlers.AttendanceHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := appMiddleware.Authenticate([]byte(jwtSecret))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetTeamByID)
		r.Get("/{teamID}/events", eventHandler.ListTeamEvents)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", teamHandler.CreateTeam)
			r.Get("/", teamHandler.ListMyTeams)
			r.Delete("/{teamID}", teamHandler.DeleteTeam)

			r.Post("/{teamID}/members", teamHandler.AddMember)
			r.Put("/{teamID}/members/{userID}/role", teamHandler.ChangeRole)
			r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)

			r.Get("/{teamID}/attendance/stats", attendanceHandler.TeamStats)
			r.Get("/{teamID}/attendance/stats/{userID}", attendanceHandler.MemberStats)
		})
	})

	router.Route("/events", func(r chi.Router) {
		r.Get("/{eventID}", eventHandler.GetEventByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", eventHandler.CreateEvent)
			r.Delete("/{eventID}", eventHandler.DeleteEvent)

			r.Put("/{eventID}/response", eventHandler.Respond)
			r.Delete("/{eventID}/response", eventHandler.CancelResponse)
			r.Post("/{eventID}/waitlist", eventHandler.JoinWaitlist)
			r.Delete("/{eventID}/waitlist", eventHandler.LeaveWaitlist)
		})
	})

	router.Route("/attendance", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/sessions", attendanceHandler.CreateSession)
		r.Get("/sessions/{sessionID}", attendanceHandler.GetSessionByID)
		r.Put("/sessions/{sessionID}", attendanceHandler.UpdateSession)
		r.Delete("/sessions/{sessionID}", attendanceHandler.DeleteSession)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/ws/notifications", webSocketHandler.ServeNotifications)
	})
}

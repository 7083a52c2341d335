package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"cfpboard/internal/delivery/http/controllers"
	"cfpboard/internal/delivery/http/middleware"
	"cfpboard/internal/domain"
)

// RouterDeps bundles everything NewRouter needs to wire the routes.
type RouterDeps struct {
	Logger     *slog.Logger
	Verifier   domain.TokenVerifier
	Auth       *controllers.AuthController
	Talk       *controllers.TalkController
	Rating     *controllers.RatingController
	Label      *controllers.LabelController
	Conference *controllers.ConferenceController
	Schedule   *controllers.ScheduleController
}

// NewRouter initializes the HTTP router with all application routes. Every
// route except signup, login, the public schedule, and swagger requires a
// Bearer token; organizer-only routes additionally pass RequireOrganizer.
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(deps.Verifier, deps.Logger)
	organizer := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireOrganizer(next))
	}

	// Auth
	mux.HandleFunc("POST /auth/signup", deps.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)

	// Talks
	mux.HandleFunc("POST /talks", auth(deps.Talk.Create))
	mux.HandleFunc("GET /talks", organizer(deps.Talk.List))
	mux.HandleFunc("GET /talks/me", auth(deps.Talk.ListMine))
	mux.HandleFunc("GET /talks/{talkID}", auth(deps.Talk.Get))
	mux.HandleFunc("PATCH /talks/{talkID}", auth(deps.Talk.Update))
	mux.HandleFunc("DELETE /talks/{talkID}", auth(deps.Talk.Delete))
	mux.HandleFunc("POST /talks/{talkID}/transition", auth(deps.Talk.Transition))

	// Ratings
	mux.HandleFunc("PUT /talks/{talkID}/rating", organizer(deps.Rating.Rate))
	mux.HandleFunc("GET /talks/{talkID}/rating", organizer(deps.Rating.GetMine))
	mux.HandleFunc("DELETE /talks/{talkID}/rating", organizer(deps.Rating.Delete))
	mux.HandleFunc("GET /talks/{talkID}/rating/average", organizer(deps.Rating.Average))
	mux.HandleFunc("GET /talks/{talkID}/ratings", organizer(deps.Rating.List))
	mux.HandleFunc("GET /ratings/statistics", organizer(deps.Rating.Statistics))

	// Labels
	mux.HandleFunc("POST /labels", organizer(deps.Label.Create))
	mux.HandleFunc("GET /labels", auth(deps.Label.List))
	mux.HandleFunc("PATCH /labels/{labelID}", organizer(deps.Label.Update))
	mux.HandleFunc("DELETE /labels/{labelID}", organizer(deps.Label.Delete))
	mux.HandleFunc("POST /talks/{talkID}/labels", organizer(deps.Label.AddToTalk))
	mux.HandleFunc("GET /talks/{talkID}/labels", auth(deps.Label.ListForTalk))
	mux.HandleFunc("DELETE /talks/{talkID}/labels/{labelID}", organizer(deps.Label.RemoveFromTalk))

	// Conferences
	mux.HandleFunc("POST /conferences", organizer(deps.Conference.Create))
	mux.HandleFunc("GET /conferences", auth(deps.Conference.List))
	mux.HandleFunc("GET /conferences/{conferenceID}", auth(deps.Conference.Get))

	// Tracks and slots
	mux.HandleFunc("POST /conferences/{conferenceID}/tracks", organizer(deps.Schedule.CreateTrack))
	mux.HandleFunc("GET /conferences/{conferenceID}/tracks", auth(deps.Schedule.ListTracks))
	mux.HandleFunc("PATCH /tracks/{trackID}", organizer(deps.Schedule.UpdateTrack))
	mux.HandleFunc("DELETE /tracks/{trackID}", organizer(deps.Schedule.DeleteTrack))
	mux.HandleFunc("POST /conferences/{conferenceID}/slots", organizer(deps.Schedule.CreateSlot))
	mux.HandleFunc("GET /conferences/{conferenceID}/slots", auth(deps.Schedule.ListSlots))
	mux.HandleFunc("PATCH /slots/{slotID}", organizer(deps.Schedule.UpdateSlot))
	mux.HandleFunc("DELETE /slots/{slotID}", organizer(deps.Schedule.DeleteSlot))
	mux.HandleFunc("POST /slots/{slotID}/assign", organizer(deps.Schedule.AssignTalk))
	mux.HandleFunc("POST /slots/{slotID}/unassign", organizer(deps.Schedule.UnassignTalk))

	// Public schedule
	mux.HandleFunc("GET /schedule", deps.Schedule.PublicSchedule)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

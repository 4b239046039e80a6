package http

import (
	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-dumps/internal/auth/middleware"
	"github.com/mind-engage/mindengage-dumps/internal/exam"
	"github.com/mind-engage/mindengage-dumps/internal/rbac"
	"github.com/mind-engage/mindengage-dumps/internal/results"
	"github.com/mind-engage/mindengage-dumps/internal/storage"
)

type Server struct {
	Bank      exam.Bank
	Results   *results.Service
	Auth      *authmw.AuthService
	Images    storage.BlobStore // optional
	PublicURL string
}

// Mount registers the exam, attempt, result and review routes on r.
func (s *Server) Mount(r chi.Router) {
	// anonymous: catalogue, guest scoring, token review
	r.Get("/exams", ListExamsHandler(s.Bank))
	r.Get("/exams/{code}", GetExamHandler(s.Bank, s.Auth))
	r.Post("/guest/attempts", GuestAttemptHandler(s.Results, s.PublicURL))
	r.Get("/review/{token}", ReviewTokenHandler(s.Results))
	r.Post("/review", ReviewTokenHandler(s.Results))
	if s.Images != nil {
		r.Get("/images/*", GetImageHandler(s.Images))
	}

	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(s.Auth))

		pr.With(rbac.Require("exam:create")).
			Post("/exams", UploadExamHandler(s.Bank))
		if s.Images != nil {
			pr.With(rbac.Require("exam:create")).
				Post("/exams/{code}/images", UploadImageHandler(s.Bank, s.Images))
		}

		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/submit", SubmitAttemptHandler(s.Results))
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results", ListResultsHandler(s.Results))
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results/{attemptID}", GetResultHandler(s.Results))
	})
}

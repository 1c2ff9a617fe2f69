package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"edulearn-engine/internal/app"
	"edulearn-engine/internal/catalog"
	"edulearn-engine/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Handler exposes the engine over JSON. It is a thin shell: it serializes
// requests, strips answer keys, and maps sentinel errors to status codes.
type Handler struct {
	engine  *app.Engine
	modules *catalog.Cache
	log     *zap.Logger
}

func NewHandler(engine *app.Engine, modules *catalog.Cache, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{engine: engine, modules: modules, log: log}
}

// Router wires all routes. Everything under /api requires an authenticated
// user id from the gateway.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", userHeader},
	}))
	r.Use(requestLogger(h.log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/quiz", h.createQuiz)
		r.Post("/quiz/submit", h.submitQuiz)
		r.Get("/quiz/results", h.quizResults)
		r.Post("/progress", h.recordProgress)
		r.Get("/progress/profile", h.profile)
		r.Get("/modules", h.listModules)
		r.Get("/modules/{moduleID}", h.getModule)
	})

	r.With(requireUser).Get("/ws/progress", h.serveProgressWS)
	return r
}

type createQuizRequest struct {
	Topic         string `json:"topic"`
	QuestionCount int    `json:"questionCount"`
}

// clientQuestion is what leaves the engine before grading: no correct index,
// no explanation.
type clientQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type createQuizResponse struct {
	QuizID    string           `json:"quizId"`
	Topic     string           `json:"topic"`
	Questions []clientQuestion `json:"questions"`
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Join(domain.ErrValidation, err))
		return
	}

	set, err := h.engine.CreateQuiz(r.Context(), userID(r), req.Topic, req.QuestionCount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	questions := make([]clientQuestion, 0, len(set.Questions))
	for _, q := range set.Questions {
		questions = append(questions, clientQuestion{Prompt: q.Prompt, Options: q.Options})
	}
	h.writeJSON(w, http.StatusCreated, createQuizResponse{
		QuizID:    set.ID,
		Topic:     set.Topic,
		Questions: questions,
	})
}

type submitQuizRequest struct {
	QuizID  string `json:"quizId"`
	Answers []int  `json:"answers"`
}

func (h *Handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Join(domain.ErrValidation, err))
		return
	}

	result, err := h.engine.SubmitQuiz(r.Context(), userID(r), req.QuizID, domain.AnswerVector(req.Answers))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) quizResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.engine.QuizResults(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

type recordProgressRequest struct {
	Subject   string `json:"subject"`
	Topic     string `json:"topic"`
	Score     int    `json:"score"`
	Completed bool   `json:"completed"`
}

func (h *Handler) recordProgress(w http.ResponseWriter, r *http.Request) {
	var req recordProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Join(domain.ErrValidation, err))
		return
	}

	xp, err := h.engine.RecordCompletion(r.Context(), userID(r), req.Subject, req.Topic, req.Score, req.Completed)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"xpGained": xp})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	prof, err := h.engine.Profile(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, prof)
}

func (h *Handler) listModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.modules.List(r.Context(), r.URL.Query().Get("subject"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"modules": modules})
}

func (h *Handler) getModule(w http.ResponseWriter, r *http.Request) {
	module, err := h.modules.Get(r.Context(), chi.URLParam(r, "moduleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, module)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn("write response", zap.Error(err))
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps sentinel errors onto the HTTP surface. Anything unmapped
// is an internal failure and never leaks its details to the client.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var code string
	var status int
	switch {
	case errors.Is(err, domain.ErrValidation):
		code, status = "validation_error", http.StatusBadRequest
	case errors.Is(err, domain.ErrMalformedSubmission):
		code, status = "malformed_submission", http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code, status = "not_found", http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyGraded):
		code, status = "already_graded", http.StatusConflict
	case errors.Is(err, domain.ErrExpired):
		code, status = "expired", http.StatusGone
	case errors.Is(err, domain.ErrGenerationInvalid):
		code, status = "generation_invalid", http.StatusBadGateway
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal",
			Message: "request could not be completed",
		})
		return
	}
	h.writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

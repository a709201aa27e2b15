package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/automaton-trust/internal/application/tracking"
	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
	"github.com/bryanwahyu/automaton-trust/internal/middleware"
)

const defaultMaxUpload = 20 << 20

type Router struct {
	svc       *tracking.Service
	maxUpload int64
	logger    *log.Logger
}

// Options tweak the router; the zero value is usable.
type Options struct {
	MaxUploadBytes int64
	HealthCheckers map[string]middleware.HealthChecker
	Logger         *log.Logger
}

func NewRouter(svc *tracking.Service, opts Options) http.Handler {
	r := &Router{svc: svc, maxUpload: opts.MaxUploadBytes, logger: opts.Logger}
	if r.maxUpload <= 0 {
		r.maxUpload = defaultMaxUpload
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/healthz", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/readyz", middleware.ReadinessHandler(opts.HealthCheckers))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/assessments", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleSubmit))
		rt.Get("/latest", r.wrap(r.handleLatest))
		rt.Get("/{id}", r.wrap(r.handleGet))
		rt.Get("/{id}/report", r.wrap(r.handleReport))
		rt.Delete("/{id}", r.wrap(r.handleCancel))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var ve *tracking.ValidationError
		var te *domain.TransportError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Message)
		case errors.Is(err, domain.ErrJobNotFound):
			writeError(w, http.StatusNotFound, "Job not found")
		case errors.Is(err, domain.ErrNotComplete):
			writeError(w, http.StatusConflict, err.Error())
		case errors.As(err, &te):
			writeError(w, http.StatusBadGateway, te.Message())
		default:
			r.logger.Printf("request_id=%s path=%s error=%v", middleware.GetRequestID(req.Context()), req.URL.Path, err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// writeError uses the same {"detail": ...} shape as the assessment service.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// POST /v1/assessments (multipart: github_url, file)
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return &tracking.ValidationError{Field: "file", Message: "invalid multipart form: " + err.Error()}
	}

	cmd := tracking.SubmitCommand{GithubURL: middleware.SanitizeString(req.FormValue("github_url"))}
	if cmd.GithubURL != "" {
		if err := middleware.ValidateGithubURL(cmd.GithubURL); err != nil {
			return &tracking.ValidationError{Field: "github_url", Message: err.Error()}
		}
	}
	if f, hdr, err := req.FormFile("file"); err == nil {
		defer f.Close()
		if err := middleware.ValidatePDFName(hdr.Filename); err != nil {
			return &tracking.ValidationError{Field: "file", Message: err.Error()}
		}
		cmd.File = f
		cmd.FileName = hdr.Filename
	}

	res, err := r.svc.Submit(req.Context(), cmd)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusAccepted, res)
}

type jobView struct {
	domain.Job
	Report *domain.Report `json:"report,omitempty"`
}

// GET /v1/assessments/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := jobIDParam(req)
	if err != nil {
		return err
	}
	j, err := r.svc.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if !j.Status.Terminal() {
		return writeJSON(w, http.StatusAccepted, map[string]any{
			"job_id": j.ID,
			"status": j.Status,
			"polls":  j.Polls,
		})
	}
	view := jobView{Job: j}
	if j.Status == domain.StatusComplete {
		rep := domain.BuildReport(j.Result)
		view.Report = &rep
	}
	return writeJSON(w, http.StatusOK, view)
}

// GET /v1/assessments/{id}/report
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	id, err := jobIDParam(req)
	if err != nil {
		return err
	}
	rep, err := r.svc.Report(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rep)
}

// DELETE /v1/assessments/{id}
func (r *Router) handleCancel(w http.ResponseWriter, req *http.Request) error {
	id, err := jobIDParam(req)
	if err != nil {
		return err
	}
	if err := r.svc.Cancel(id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/assessments/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.svc.Latest(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

func jobIDParam(req *http.Request) (domain.JobID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateJobID(id); err != nil {
		return "", &tracking.ValidationError{Field: "id", Message: err.Error()}
	}
	return domain.JobID(id), nil
}

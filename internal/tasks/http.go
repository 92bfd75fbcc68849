package tasks

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type idResponse struct {
	ID int64 `json:"id"`
}

type listResponse struct {
	Tasks []Task `json:"tasks"`
}

type bulkCreateResponse struct {
	Tasks []idResponse `json:"tasks"`
}

type errResponse struct {
	Error   string             `json:"error"`
	Details []*ValidationError `json:"details,omitempty"`
}

// RegisterRoutes mounts the /v1/tasks API on r.
func RegisterRoutes(r chi.Router, svc *Service, logger *slog.Logger) {
	h := &handler{svc: svc, logger: logger}

	r.Route("/v1/tasks", func(r chi.Router) {
		r.Post("/", h.createTask)
		r.Get("/", h.listTasks)

		r.Post("/bulk", h.bulkCreate)
		r.Delete("/bulk", h.bulkDelete)

		r.Get("/{id}", h.getTask)
		r.Put("/{id}", h.updateTask)
		r.Delete("/{id}", h.deleteTask)
	})
}

type handler struct {
	svc    *Service
	logger *slog.Logger
}

func (h *handler) createTask(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeCreate(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	writeJSON(w, http.StatusOK, listResponse{Tasks: tasks})
}

func (h *handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := DecodeCreate(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Update(r.Context(), id, in); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) bulkCreate(w http.ResponseWriter, r *http.Request) {
	ins, err := DecodeBulkCreate(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ids, err := h.svc.BulkCreate(r.Context(), ins)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := bulkCreateResponse{Tasks: make([]idResponse, len(ids))}
	for i, id := range ids {
		resp.Tasks[i] = idResponse{ID: id}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	ids, err := DecodeBulkDelete(r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.BulkDelete(r.Context(), ids); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "id", Message: "task id must be an integer"}
	}
	return id, nil
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errResponse{
			Error:   ve.Message,
			Details: []*ValidationError{ve},
		})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errResponse{Error: err.Error()})
	default:
		h.logger.ErrorContext(r.Context(), "task_request_failed",
			slog.String("req_id", chimw.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsonAPI.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/repository"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

const maxRequestBytes = 1 << 20

type errorResponse struct {
	Status  int               `json:"status"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// pageResponse is the list envelope the console decodes
type pageResponse[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		appErr = &apperrors.AppError{Type: apperrors.ErrorTypeTransport, Message: "An unexpected error occurred"}
	}
	status := appErr.HTTPStatus()
	writeJSON(w, status, errorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}

func writePage[T any](w http.ResponseWriter, p repository.Page[T]) {
	pages := 0
	if p.Size > 0 {
		pages = (p.Total + p.Size - 1) / p.Size
	}
	items := p.Items
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, pageResponse[T]{
		Content:       items,
		TotalElements: p.Total,
		TotalPages:    pages,
		Number:        p.Number,
		Size:          p.Size,
		First:         p.Number == 0,
		Last:          p.Number+1 >= pages,
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(v); err != nil {
		return apperrors.NewValidationError("Invalid request body", nil)
	}
	return nil
}

func pageParams(r *http.Request) models.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return models.PageRequest{Page: page, Size: size}.Normalize()
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid "+name, map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/executor"
	"github.com/sakif/code-resources/internal/service"
)

// ExecuteHandler runs playground code, either posted directly or taken
// from a stored snippet. exec is nil when no sandbox is available, in which
// case both endpoints answer 503.
type ExecuteHandler struct {
	exec     executor.Executor
	snippets *service.SnippetService
	logger   *slog.Logger
}

func NewExecuteHandler(exec executor.Executor, snippets *service.SnippetService, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		exec:     exec,
		snippets: snippets,
		logger:   logger,
	}
}

// HandleExecute runs posted code.
//
// HTTP: POST /api/execute
// REQUEST BODY: {"language": "python", "code": "print(1)"}
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req executor.ExecutionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.run(w, r, req)
}

// HandleRunSnippet runs a stored snippet.
//
// HTTP: POST /api/snippets/{id}/run
func (h *ExecuteHandler) HandleRunSnippet(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.run(w, r, executor.ExecutionRequest{Language: snippet.Language, Code: snippet.Code})
}

func (h *ExecuteHandler) run(w http.ResponseWriter, r *http.Request, req executor.ExecutionRequest) {
	if h.exec == nil {
		writeError(w, h.logger, apperror.Unavailable("code execution is not available on this server"))
		return
	}

	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	if req.Language == "" {
		writeError(w, h.logger, apperror.ValidationFailed("language", "language is required"))
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, h.logger, apperror.ValidationFailed("code", "code cannot be empty"))
		return
	}
	if len(req.Code) > service.MaxCodeLength {
		writeError(w, h.logger, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be at most %d bytes", service.MaxCodeLength)))
		return
	}

	h.logger.Info("executing code", slog.String("language", req.Language), slog.Int("bytes", len(req.Code)))

	result, err := h.exec.Execute(r.Context(), req)
	if err != nil {
		if errors.Is(err, executor.ErrUnsupportedLanguage) {
			writeError(w, h.logger, apperror.ValidationFailed("language",
				fmt.Sprintf("language must be one of: %s", strings.Join(h.exec.Languages(), ", "))))
			return
		}
		h.logger.Error("code execution failed", slog.String("error", err.Error()))
		writeError(w, h.logger, apperror.Unavailable("code execution failed, please try again"))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

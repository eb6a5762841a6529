package handler

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/V4T54L/winloss/internal/adapter/metrics"
	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/query"
	"github.com/V4T54L/winloss/internal/usecase"
)

// InterviewHandler serves interview reads, share links and bulk import.
type InterviewHandler struct {
	uc            *usecase.InterviewUseCase
	logger        *slog.Logger
	metrics       *metrics.APIMetrics // optional
	maxImportSize int64
}

// NewInterviewHandler creates a new InterviewHandler. m may be nil.
func NewInterviewHandler(uc *usecase.InterviewUseCase, logger *slog.Logger, m *metrics.APIMetrics, maxImportSize int64) *InterviewHandler {
	return &InterviewHandler{uc: uc, logger: logger, metrics: m, maxImportSize: maxImportSize}
}

// List handles GET /api/interviews.
func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.uc.List(r.Context(), query.ParseCriteria(r.URL.Query()))
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []domain.Interview{}
	}
	respondOK(w, h.logger, items)
}

// Get handles GET /api/interviews/{id}.
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	iv, err := h.uc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, iv)
}

// Share handles GET /api/share/{id}.
func (h *InterviewHandler) Share(w http.ResponseWriter, r *http.Request) {
	iv, err := h.uc.Share(r.Context(), r.PathValue("id"))
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	respondOK(w, h.logger, iv)
}

// Import handles POST /api/interviews/import. The body is either JSON (a
// single interview or an array) or NDJSON, one interview per line.
func (h *InterviewHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImportSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		batch importBatch
		err   error
	)
	switch mediaType {
	case "application/json":
		batch, err = readJSONBatch(r.Body)
	case "application/x-ndjson":
		batch, err = readNDJSONBatch(r.Body, h.logger)
	default:
		RespondStatus(w, h.logger, http.StatusUnsupportedMediaType, "Unsupported Content-Type")
		return
	}
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	result, err := h.uc.Import(r.Context(), batch.items)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}
	// The use case numbers rejections by position in items; report the
	// position in the submitted body instead.
	for i := range result.Rejected {
		result.Rejected[i].Line = batch.lines[result.Rejected[i].Line-1]
	}
	result.Rejected = append(batch.rejected, result.Rejected...)

	if h.metrics != nil {
		h.metrics.ImportedTotal.WithLabelValues("imported").Add(float64(result.Imported))
		h.metrics.ImportedTotal.WithLabelValues("rejected").Add(float64(len(result.Rejected)))
	}
	respondOK(w, h.logger, result)
}

type importBatch struct {
	items    []domain.Interview
	lines    []int // submitted position of each item, 1-based
	rejected []usecase.ImportRejection
}

func (b *importBatch) add(line int, iv domain.Interview) {
	b.items = append(b.items, iv)
	b.lines = append(b.lines, line)
}

func readJSONBatch(body io.Reader) (importBatch, error) {
	var batch importBatch
	raw, err := io.ReadAll(body)
	if err != nil {
		return batch, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return batch, domain.BadRequest("Request body is required")
	}

	if raw[0] != '[' {
		var iv domain.Interview
		if err := json.Unmarshal(raw, &iv); err != nil {
			return batch, domain.BadRequest("Invalid JSON body")
		}
		batch.add(1, iv)
		return batch, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return batch, domain.BadRequest("Invalid JSON body")
	}
	for i, elem := range elems {
		var iv domain.Interview
		if err := json.Unmarshal(elem, &iv); err != nil {
			batch.rejected = append(batch.rejected, usecase.ImportRejection{Line: i + 1, Reason: "invalid JSON"})
			continue
		}
		batch.add(i+1, iv)
	}
	return batch, nil
}

func readNDJSONBatch(body io.Reader, logger *slog.Logger) (importBatch, error) {
	var batch importBatch
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONBody)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var iv domain.Interview
		if err := json.Unmarshal(text, &iv); err != nil {
			logger.Warn("failed to unmarshal ndjson line", "error", err, "line", line)
			batch.rejected = append(batch.rejected, usecase.ImportRejection{Line: line, Reason: "invalid JSON"})
			continue
		}
		batch.add(line, iv)
	}
	if err := scanner.Err(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return batch, err
		}
		return batch, domain.BadRequestf("failed to read import body: %v", err)
	}
	return batch, nil
}

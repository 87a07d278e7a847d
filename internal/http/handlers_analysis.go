package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/visualflow/visualflow-api/internal/domain/model"
)

// AnalysisService forwards analysis documents downstream.
type AnalysisService interface {
	Proxy(ctx context.Context, body []byte) (*model.AnalysisResponse, error)
}

// AnalysisHandlers provides the analysis proxy endpoint.
type AnalysisHandlers struct {
	Svc AnalysisService
}

// Analyze handles POST /api/ai/analyze. The JSON body is validated, forwarded unchanged,
// and the downstream status and body are relayed as-is.
func (h *AnalysisHandlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var doc json.RawMessage
	if !DecodeJSON(w, r, &doc) {
		return
	}
	if len(doc) == 0 {
		doc = json.RawMessage("null")
	}

	resp, err := h.Svc.Proxy(r.Context(), doc)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	if _, writeErr := w.Write(resp.Body); writeErr != nil {
		return
	}
}

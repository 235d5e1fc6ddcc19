package api

import (
	"context"
	"net/http"
	"time"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/observability/metrics"
	"github.com/RowanDark/enigma/internal/service"
)

// CipherOperationRequest represents a request to execute a cipher operation
type CipherOperationRequest struct {
	Operation string                 `json:"operation"`
	Input     string                 `json:"input"`
	Config    map[string]interface{} `json:"config,omitempty"`
}

// CipherOperationResponse represents the result of a cipher operation
type CipherOperationResponse struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// CipherPipelineRequest represents a request to execute a pipeline of operations
type CipherPipelineRequest struct {
	Input      string                   `json:"input"`
	Operations []cipher.OperationConfig `json:"operations"`
}

// OperationInfo describes a registered operation.
type OperationInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Reversible  bool   `json:"reversible"`
}

// handleCipherExecute handles execution of a single cipher operation
func (s *Server) handleCipherExecute(w http.ResponseWriter, r *http.Request) {
	var req CipherOperationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Operation == "" {
		http.Error(w, "operation field is required", http.StatusBadRequest)
		return
	}

	op, exists := cipher.GetOperation(req.Operation)
	if !exists {
		s.writeJSON(w, http.StatusBadRequest, CipherOperationResponse{
			Error: "unknown operation: " + req.Operation,
		})
		return
	}

	ctx := r.Context()
	start := time.Now()
	result, err := op.Execute(ctx, []byte(req.Input), req.Config)
	observeCipher(ctx, op.Type() == cipher.OperationTypeCipher, start, req.Input, err)
	if err != nil {
		s.writeJSON(w, cipherStatus(err), CipherOperationResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, CipherOperationResponse{Output: string(result)})
}

// handleCipherPipeline handles execution of a pipeline of operations
func (s *Server) handleCipherPipeline(w http.ResponseWriter, r *http.Request) {
	var req CipherPipelineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(req.Operations) == 0 {
		http.Error(w, "operations field is required and must not be empty", http.StatusBadRequest)
		return
	}

	pipeline := &cipher.Pipeline{Operations: req.Operations}

	ctx := r.Context()
	start := time.Now()
	result, err := pipeline.Execute(ctx, []byte(req.Input))
	observeCipher(ctx, true, start, req.Input, err)
	if err != nil {
		s.writeJSON(w, cipherStatus(err), CipherOperationResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, CipherOperationResponse{Output: string(result)})
}

// handleCipherOperations handles listing all available operations
func (s *Server) handleCipherOperations(w http.ResponseWriter, r *http.Request) {
	ops := cipher.ListOperations()
	if t := r.URL.Query().Get("type"); t != "" {
		ops = cipher.ListOperationsByType(cipher.OperationType(t))
	}

	list := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		_, reversible := op.Reverse()
		list = append(list, OperationInfo{
			Name:        op.Name(),
			Type:        string(op.Type()),
			Description: op.Description(),
			Reversible:  reversible,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"operations": list})
}

// cipherStatus keeps the engine's status mapping and reports any other
// operation failure as 422.
func cipherStatus(err error) int {
	if status := statusFor(err); status != http.StatusInternalServerError {
		return status
	}
	return http.StatusUnprocessableEntity
}

func observeCipher(ctx context.Context, enciphered bool, start time.Time, input string, err error) {
	if !enciphered {
		return
	}
	letters := 0
	if err == nil {
		letters = service.CountLetters(input)
	}
	metrics.ObserveMessage(ctx, service.SurfaceCipher, service.Outcome(err), letters, time.Since(start))
}

package api

import (
	"net/http"

	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/service"
)

// ProcessRequest asks for text to be run through a machine built from
// Settings. A zero Settings uses the server defaults.
type ProcessRequest struct {
	Settings enigma.SettingsInput `json:"settings"`
	Text     string               `json:"text"`
}

// ProcessResponse carries the processed text and the rotor windows after the
// last letter.
type ProcessResponse struct {
	Output  string `json:"output"`
	Windows string `json:"windows"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	in := req.Settings
	if isZeroSettings(in) {
		in = s.cfg.Defaults
	}

	res, err := s.svc.Process(r.Context(), service.SurfaceJSON, requestID(r), in, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ProcessResponse{Output: res.Output, Windows: res.Windows})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Catalog())
}

func isZeroSettings(in enigma.SettingsInput) bool {
	return len(in.Rotors) == 0 && in.Positions == "" && in.Rings == "" && in.Reflector == "" && in.Plugboard == ""
}

package api

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/observability/metrics"
	"github.com/RowanDark/enigma/internal/service"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// formSlots are the form field prefixes, left to right.
var formSlots = [3]struct{ name, label string }{
	{"left", "Left"},
	{"center", "Center"},
	{"right", "Right"},
}

type slotView struct {
	Name     string
	Label    string
	Rotor    string
	Position string
	Ring     string
}

type formView struct {
	Slots      []slotView
	Rotors     []string
	Reflectors []string
	Reflector  string
	Plugboard  string
	Plaintext  string
	Ciphertext string
	Windows    string
	Error      string
}

// formValues is the raw submission, echoed back unchanged when rendering.
type formValues struct {
	rotors    [3]string
	positions [3]string
	rings     [3]string
	reflector string
	plugboard string
	plaintext string
}

func defaultFormValues(in enigma.SettingsInput) formValues {
	var v formValues
	pos := []rune(in.Positions)
	rings := []rune(in.Rings)
	for i := range v.rotors {
		if i < len(in.Rotors) {
			v.rotors[i] = in.Rotors[i]
		}
		if i < len(pos) {
			v.positions[i] = string(pos[i])
		}
		if i < len(rings) {
			v.rings[i] = string(rings[i])
		}
	}
	v.reflector = in.Reflector
	v.plugboard = in.Plugboard
	return v
}

func (v formValues) view() formView {
	fv := formView{
		Reflector: v.reflector,
		Plugboard: v.plugboard,
		Plaintext: v.plaintext,
	}
	for i, slot := range formSlots {
		fv.Slots = append(fv.Slots, slotView{
			Name:     slot.name,
			Label:    slot.label,
			Rotor:    v.rotors[i],
			Position: v.positions[i],
			Ring:     v.rings[i],
		})
	}
	for _, r := range enigma.Rotors() {
		fv.Rotors = append(fv.Rotors, string(r.ID))
	}
	for _, r := range enigma.Reflectors() {
		fv.Reflectors = append(fv.Reflectors, string(r.ID))
	}
	return fv
}

// settings converts the submission to engine input. Each position and ring
// field must hold exactly one letter.
func (v formValues) settings() (enigma.SettingsInput, error) {
	in := enigma.SettingsInput{
		Rotors:    v.rotors[:],
		Reflector: v.reflector,
		Plugboard: v.plugboard,
	}
	var positions, rings strings.Builder
	for i, slot := range formSlots {
		for _, f := range []struct {
			label string
			value string
			dst   *strings.Builder
		}{
			{slot.name + " initial position", v.positions[i], &positions},
			{slot.name + " ring setting", v.rings[i], &rings},
		} {
			letters := []rune(strings.ToLower(strings.TrimSpace(f.value)))
			if len(letters) != 1 || !enigma.IsLetter(letters[0]) {
				return in, &enigma.ConfigError{Field: f.label, Value: f.value, Err: enigma.ErrBadLetter}
			}
			f.dst.WriteRune(letters[0])
		}
	}
	in.Positions = positions.String()
	in.Rings = rings.String()
	return in, nil
}

func (s *Server) handleFormGet(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, http.StatusOK, defaultFormValues(s.cfg.Defaults).view())
}

// handleFormPost enciphers the submitted plaintext. Every field except the
// plugboard is required; a missing one is rejected with 422. Engine errors
// are shown on the page next to the submitted values.
func (s *Server) handleFormPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	var missing []string
	field := func(name string) string {
		if _, ok := r.PostForm[name]; !ok {
			missing = append(missing, name)
		}
		return r.PostForm.Get(name)
	}

	var v formValues
	v.plaintext = field("plaintext")
	for i, slot := range formSlots {
		v.rotors[i] = field(slot.name + "_rotor")
		v.positions[i] = field(slot.name + "_initial_position")
		v.rings[i] = field(slot.name + "_ring_setting")
	}
	v.reflector = field("reflector")
	v.plugboard = r.PostForm.Get("plugboard_connections")

	if len(missing) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: "missing form fields: " + strings.Join(missing, ", "),
		})
		return
	}

	view := v.view()
	in, err := v.settings()
	if err != nil {
		metrics.RecordConfigError(service.SurfaceForm, enigma.ReasonOf(err))
	} else {
		var res service.Result
		res, err = s.svc.Process(r.Context(), service.SurfaceForm, requestID(r), in, v.plaintext)
		view.Ciphertext, view.Windows = res.Output, res.Windows
	}
	if err != nil {
		view.Error = err.Error()
	}
	s.renderForm(w, http.StatusOK, view)
}

func (s *Server) renderForm(w http.ResponseWriter, status int, view formView) {
	var buf strings.Builder
	if err := indexTemplate.Execute(&buf, view); err != nil {
		log.Printf("render form: %v", err)
		http.Error(w, fmt.Sprintf("render form: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

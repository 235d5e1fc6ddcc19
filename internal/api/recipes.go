package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/service"
)

// RecipeSaveRequest represents a request to save a recipe
type RecipeSaveRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Tags        []string                 `json:"tags,omitempty"`
	Key         enigma.SettingsInput     `json:"key"`
	Operations  []cipher.OperationConfig `json:"operations"`
	Reversible  bool                     `json:"reversible,omitempty"`
}

// RecipeListResponse represents the list of recipes
type RecipeListResponse struct {
	Recipes []cipher.Recipe `json:"recipes"`
}

// RecipeRunRequest carries the text to run through a recipe.
type RecipeRunRequest struct {
	Text string `json:"text"`
}

// RecipeRunResponse is the recipe output.
type RecipeRunResponse struct {
	Output string `json:"output"`
}

func (s *Server) handleRecipeSave(w http.ResponseWriter, r *http.Request) {
	var req RecipeSaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	recipe := &cipher.Recipe{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Key:         req.Key,
		Pipeline: cipher.Pipeline{
			Operations: req.Operations,
			Reversible: req.Reversible,
		},
	}

	if err := s.svc.SaveRecipe(requestID(r), recipe); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, recipe)
}

func (s *Server) handleRecipeList(w http.ResponseWriter, r *http.Request) {
	recipes := s.svc.Recipes(r.URL.Query().Get("q"))

	list := make([]cipher.Recipe, len(recipes))
	for i, recipe := range recipes {
		list[i] = *recipe
	}

	s.writeJSON(w, http.StatusOK, RecipeListResponse{Recipes: list})
}

func (s *Server) handleRecipeGet(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.svc.Recipe(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleRecipeDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRecipe(requestID(r), mux.Vars(r)["name"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecipeRun(w http.ResponseWriter, r *http.Request) {
	var req RecipeRunRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	res, err := s.svc.RunRecipe(r.Context(), service.SurfaceJSON, requestID(r), mux.Vars(r)["name"], req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RecipeRunResponse{Output: res.Output})
}

package cipher

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrRecipeNotFound is returned when a named recipe does not exist.
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeManager handles storage and retrieval of recipes
type RecipeManager struct {
	recipes   map[string]*Recipe
	storePath string
	mu        sync.RWMutex
}

// NewRecipeManager creates a new recipe manager. An empty storePath keeps
// recipes in memory only.
func NewRecipeManager(storePath string) *RecipeManager {
	return &RecipeManager{
		recipes:   make(map[string]*Recipe),
		storePath: storePath,
	}
}

// SaveRecipe validates and stores a recipe
func (rm *RecipeManager) SaveRecipe(recipe *Recipe) error {
	if recipe == nil {
		return fmt.Errorf("%w: recipe cannot be nil", ErrInvalidRecipe)
	}
	if err := recipe.Validate(); err != nil {
		return err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	if existing, ok := rm.recipes[recipe.Name]; ok && recipe.CreatedAt == "" {
		recipe.CreatedAt = existing.CreatedAt
	}
	if recipe.CreatedAt == "" {
		recipe.CreatedAt = now
	}
	recipe.UpdatedAt = now

	rm.recipes[recipe.Name] = recipe

	if rm.storePath != "" {
		return rm.persistRecipe(recipe)
	}

	return nil
}

// GetRecipe retrieves a recipe by name
func (rm *RecipeManager) GetRecipe(name string) (*Recipe, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	recipe, exists := rm.recipes[name]
	return recipe, exists
}

// ListRecipes returns all recipes sorted by name
func (rm *RecipeManager) ListRecipes() []*Recipe {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	recipes := make([]*Recipe, 0, len(rm.recipes))
	for _, recipe := range rm.recipes {
		recipes = append(recipes, recipe)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Name < recipes[j].Name })

	return recipes
}

// DeleteRecipe removes a recipe
func (rm *RecipeManager) DeleteRecipe(name string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, ok := rm.recipes[name]; !ok {
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, name)
	}
	delete(rm.recipes, name)

	if rm.storePath != "" {
		recipePath := filepath.Join(rm.storePath, sanitizeFilename(name)+".json")
		if err := os.Remove(recipePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete recipe file: %w", err)
		}
	}

	return nil
}

// LoadRecipes loads all recipes from the store path
func (rm *RecipeManager) LoadRecipes() error {
	if rm.storePath == "" {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if err := os.MkdirAll(rm.storePath, 0o755); err != nil {
		return fmt.Errorf("failed to create recipes directory: %w", err)
	}

	entries, err := os.ReadDir(rm.storePath)
	if err != nil {
		return fmt.Errorf("failed to read recipes directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		recipePath := filepath.Join(rm.storePath, entry.Name())
		data, err := os.ReadFile(recipePath)
		if err != nil {
			return fmt.Errorf("failed to read recipe %s: %w", entry.Name(), err)
		}

		var recipe Recipe
		if err := json.Unmarshal(data, &recipe); err != nil {
			return fmt.Errorf("failed to parse recipe %s: %w", entry.Name(), err)
		}
		if err := recipe.Validate(); err != nil {
			return fmt.Errorf("invalid recipe %s: %w", entry.Name(), err)
		}

		rm.recipes[recipe.Name] = &recipe
	}

	return nil
}

// persistRecipe writes a single recipe to disk
func (rm *RecipeManager) persistRecipe(recipe *Recipe) error {
	if err := os.MkdirAll(rm.storePath, 0o755); err != nil {
		return fmt.Errorf("failed to create recipes directory: %w", err)
	}

	data, err := json.MarshalIndent(recipe, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize recipe: %w", err)
	}

	// Recipes carry key material.
	recipePath := filepath.Join(rm.storePath, sanitizeFilename(recipe.Name)+".json")
	if err := os.WriteFile(recipePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}

	return nil
}

// sanitizeFilename converts a recipe name to a safe filename
func sanitizeFilename(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "recipe"
	}
	return sb.String()
}

// SearchRecipes finds recipes whose name, description or tags contain query,
// ignoring case
func (rm *RecipeManager) SearchRecipes(query string) []*Recipe {
	needle := strings.ToLower(query)
	matches := func(s string) bool { return strings.Contains(strings.ToLower(s), needle) }

	results := make([]*Recipe, 0)
	for _, recipe := range rm.ListRecipes() {
		if matches(recipe.Name) || matches(recipe.Description) {
			results = append(results, recipe)
			continue
		}

		for _, tag := range recipe.Tags {
			if matches(tag) {
				results = append(results, recipe)
				break
			}
		}
	}

	return results
}

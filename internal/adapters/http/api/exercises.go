package api

import (
	"net/http"

	"github.com/okian/formcoach/internal/domain/exercise"
)

// ExercisesHandler serves the exercise catalog.
type ExercisesHandler struct {
	catalog *exercise.Registry
}

// NewExercisesHandler creates a catalog handler.
func NewExercisesHandler(catalog *exercise.Registry) *ExercisesHandler {
	return &ExercisesHandler{catalog: catalog}
}

type exerciseList struct {
	Exercises []exercise.Profile `json:"exercises"`
	Count     int                `json:"count"`
}

// HandleList handles GET /exercises. Optional type, category and
// difficulty query parameters narrow the list; they combine with AND.
func (h *ExercisesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out := h.catalog.All()
	if t := q.Get("type"); t != "" {
		out = intersect(out, h.catalog.ByType(exercise.Type(t)))
	}
	if c := q.Get("category"); c != "" {
		out = intersect(out, h.catalog.ByCategory(c))
	}
	if d := q.Get("difficulty"); d != "" {
		out = intersect(out, h.catalog.ByDifficulty(d))
	}
	writeJSON(w, http.StatusOK, exerciseList{Exercises: out, Count: len(out)})
}

// HandleCategories handles GET /exercises/categories.
func (h *ExercisesHandler) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": h.catalog.Categories()})
}

// HandleGet handles GET /exercises/{id}.
func (h *ExercisesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_exercise"
	id := r.PathValue("id")
	p, ok := h.catalog.Get(id)
	if !ok {
		writeKind(w, NewKind(op+" "+id, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// intersect keeps the profiles of in that also appear in other.
func intersect(in, other []exercise.Profile) []exercise.Profile {
	ids := make(map[string]struct{}, len(other))
	for _, p := range other {
		ids[p.ID] = struct{}{}
	}
	out := make([]exercise.Profile, 0, len(in))
	for _, p := range in {
		if _, ok := ids[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

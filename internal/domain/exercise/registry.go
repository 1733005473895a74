package exercise

import "slices"

// Registry is a read-only catalog of exercise profiles.
type Registry struct {
	order    []string
	profiles map[string]Profile
}

// NewRegistry builds a registry from profiles, keeping their order.
// Profiles are validated; the first invalid one is returned as error.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.profiles[p.ID]; !dup {
			r.order = append(r.order, p.ID)
		}
		r.profiles[p.ID] = p.clone()
	}
	return r, nil
}

// Default returns the built-in catalog.
func Default() *Registry {
	r, err := NewRegistry(builtin()...)
	if err != nil {
		panic(err) // built-in catalog is static
	}
	return r
}

// Get returns a copy of the profile for id.
func (r *Registry) Get(id string) (Profile, bool) {
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// Resolve returns the profile for id, or a generic profile carrying id when
// the catalog does not know it.
func (r *Registry) Resolve(id string) Profile {
	if p, ok := r.Get(id); ok {
		return p
	}
	return genericProfile(id)
}

// All returns every profile in catalog order.
func (r *Registry) All() []Profile {
	return r.filter(func(Profile) bool { return true })
}

// ByType returns profiles of the given type.
func (r *Registry) ByType(t Type) []Profile {
	return r.filter(func(p Profile) bool { return p.Type == t })
}

// ByCategory returns profiles in a category.
func (r *Registry) ByCategory(c string) []Profile {
	return r.filter(func(p Profile) bool { return p.Category == c })
}

// ByDifficulty returns profiles of a difficulty level.
func (r *Registry) ByDifficulty(d string) []Profile {
	return r.filter(func(p Profile) bool { return p.Difficulty == d })
}

// Categories lists distinct categories in first-seen order.
func (r *Registry) Categories() []string {
	var out []string
	for _, id := range r.order {
		if c := r.profiles[id].Category; !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) filter(keep func(Profile) bool) []Profile {
	var out []Profile
	for _, id := range r.order {
		if p := r.profiles[id]; keep(p) {
			out = append(out, p.clone())
		}
	}
	return out
}

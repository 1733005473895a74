package exercise

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const catalogRoot = "exercises"

// LoadFile overlays a YAML catalog onto the built-in profiles. Known ids
// are patched field by field; unknown ids become new profiles seeded from
// the generic one.
//
//	exercises:
//	  squats:
//	    phase:
//	      enter: 130
//	  jumpingJacks:
//	    name: Jumping Jacks
func LoadFile(_ context.Context, path string) (*Registry, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, path, err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Registry, error) {
	profiles := builtin()
	index := make(map[string]int, len(profiles))
	for i, p := range profiles {
		index[p.ID] = i
	}

	for _, id := range k.MapKeys(catalogRoot) {
		prefix := catalogRoot + "." + id
		p := genericProfile(id)
		i, known := index[id]
		if known {
			p = profiles[i]
		}
		// lists are replaced, not merged element-wise
		if k.Exists(prefix + ".instructions") {
			p.Instructions = nil
		}
		if k.Exists(prefix + ".target_muscles") {
			p.TargetMuscles = nil
		}
		if p.Criteria == nil {
			p.Criteria = map[string]float64{}
		}
		if err := k.UnmarshalWithConf(prefix, &p, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadCatalog, id, err)
		}
		p.ID = id
		if known {
			profiles[i] = p
		} else {
			index[id] = len(profiles)
			profiles = append(profiles, p)
		}
	}
	return NewRegistry(profiles...)
}

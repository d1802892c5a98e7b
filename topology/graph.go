package topology

import (
	"fmt"

	"github.com/emirpasic/gods/sets/hashset"
)

type CycleError struct {
	ID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle through resource [%s]", e.ID)
}

type UnknownDependencyError struct {
	ID         string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("resource [%s] depends on unknown resource [%s]", e.ID, e.Dependency)
}

// order sorts resources so that each follows its dependencies. Resources already in a
// valid order keep it.
func order(resources []*Resource) ([]*Resource, error) {
	byID := make(map[string]*Resource, len(resources))
	for _, r := range resources {
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resource [%s]", r.ID)
		}
		byID[r.ID] = r
	}

	done := hashset.New()
	visiting := hashset.New()
	out := make([]*Resource, 0, len(resources))

	var visit func(r *Resource) error
	visit = func(r *Resource) error {
		if done.Contains(r.ID) {
			return nil
		}
		if visiting.Contains(r.ID) {
			return &CycleError{ID: r.ID}
		}
		visiting.Add(r.ID)

		for _, dep := range r.DependsOn {
			d, ok := byID[dep]
			if !ok {
				return &UnknownDependencyError{ID: r.ID, Dependency: dep}
			}
			if err := visit(d); err != nil {
				return err
			}
		}

		visiting.Remove(r.ID)
		done.Add(r.ID)
		out = append(out, r)
		return nil
	}

	for _, r := range resources {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

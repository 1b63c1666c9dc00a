package builder

import (
	"errors"
	"fmt"

	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/graph"
	"github.com/lsst-dm/Daxgen/internal/model"
)

// bind attaches the catalog binding of the stage on the target site. Lookups
// are memoised per stage.
func (s *state) bind(stage *model.Stage, n *graph.TaskNode) error {
	b, ok := s.bindings[stage.Name]
	if !ok {
		var err error
		b, err = s.resolver.Resolve(stage.Name, s.cfg.Site)
		if err != nil {
			var unresolved *errs.UnresolvedBindingError
			if errors.As(err, &unresolved) {
				return err
			}
			return fmt.Errorf("resolving binding of stage %q on site %q: %w", stage.Name, s.cfg.Site, err)
		}
		s.bindings[stage.Name] = b
	}

	n.Binding = b
	n.Binding.Profile = model.Profile{}.Merge(b.Profile)
	if s.wrapper != nil {
		w := *s.wrapper
		n.Wrapper = &w
	}
	return nil
}

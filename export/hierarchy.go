package export

import (
	"github.com/pkg/errors"
)

var ErrHierarchy = errors.New("invalid bone hierarchy")

// walkHierarchy validates a bone tree and returns its bones in depth first
// order, children in stored order. Bones are identified by their 1-based
// references, parent reference 0 marks the root. Exactly one root is
// required and every bone must be reached exactly once.
func walkHierarchy[R ~uint32](bones []R, parent func(R) (R, error), children func(R) ([]R, error)) ([]R, error) {
	member := make(map[R]bool, len(bones))
	var root R
	roots := 0
	for _, b := range bones {
		if b == 0 {
			return nil, errors.Wrap(ErrHierarchy, "bone reference 0 in bone list")
		}
		if member[b] {
			return nil, errors.Wrapf(ErrHierarchy, "bone %d listed twice", b)
		}
		member[b] = true

		p, err := parent(b)
		if err != nil {
			return nil, err
		}
		if p == 0 {
			root = b
			roots++
		}
	}
	if len(bones) == 0 {
		return nil, nil
	}
	if roots != 1 {
		return nil, errors.Wrapf(ErrHierarchy, "found %d root bones, expected 1", roots)
	}

	order := make([]R, 0, len(bones))
	visited := make(map[R]bool, len(bones))
	stack := []R{root}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[b] {
			return nil, errors.Wrapf(ErrHierarchy, "bone %d reached twice", b)
		}
		visited[b] = true
		order = append(order, b)

		kids, err := children(b)
		if err != nil {
			return nil, err
		}
		for i := len(kids) - 1; i >= 0; i-- {
			if !member[kids[i]] {
				return nil, errors.Wrapf(ErrHierarchy, "bone %d has unknown child %d", b, kids[i])
			}
			stack = append(stack, kids[i])
		}
	}

	if len(order) != len(bones) {
		return nil, errors.Wrapf(ErrHierarchy, "%d of %d bones are not reachable from the root", len(bones)-len(order), len(bones))
	}
	return order, nil
}

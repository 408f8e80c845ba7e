package testkit

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"

	"moveck/internal/movepaths"
)

// CheckMoveData runs the structural invariants of gathered move data:
// 1) the paths form a forest: every node is reached exactly once from a
// root, and children point back at their parent
// 2) a child's place extends its parent's place
// 3) every move and init is indexed under its path and its location
func CheckMoveData(d *movepaths.MoveData) error {
	if d == nil {
		return fmt.Errorf("nil move data")
	}
	n, err := safecast.Conv[int32](len(d.MovePaths))
	if err != nil {
		return fmt.Errorf("path count overflow: %w", err)
	}
	valid := func(idx movepaths.MovePathIndex) bool { return idx >= 0 && int32(idx) < n }

	var errs []error

	// 1) forest shape
	seen := make([]int, len(d.MovePaths))
	for _, root := range d.Roots() {
		stack := []movepaths.MovePathIndex{root}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			seen[idx]++
			if seen[idx] > 1 {
				errs = append(errs, fmt.Errorf("mp%d reached twice", idx))
				continue
			}
			for _, c := range d.Children(idx) {
				if !valid(c) {
					errs = append(errs, fmt.Errorf("mp%d has out-of-range child %d", idx, c))
					continue
				}
				if p := d.Path(c).Parent; p != idx {
					errs = append(errs, fmt.Errorf("mp%d is a child of mp%d but names mp%d as parent", c, idx, p))
				}
				stack = append(stack, c)
			}
		}
	}
	for i, k := range seen {
		if k == 0 {
			errs = append(errs, fmt.Errorf("mp%d is not reachable from a root", i))
		}
	}

	// 2) places extend their parent's place
	for i := range d.MovePaths {
		p := &d.MovePaths[i]
		if p.Parent == movepaths.NoMovePath {
			if len(p.Place.Proj) != 0 {
				errs = append(errs, fmt.Errorf("root mp%d has projected place %s", i, p.Place))
			}
			continue
		}
		if !valid(p.Parent) {
			errs = append(errs, fmt.Errorf("mp%d has out-of-range parent %d", i, p.Parent))
			continue
		}
		parent := d.Path(p.Parent).Place
		if len(p.Place.Proj) <= len(parent.Proj) || !p.Place.Prefix(len(parent.Proj)).Equal(parent) {
			errs = append(errs, fmt.Errorf("mp%d place %s does not extend parent place %s", i, p.Place, parent))
		}
	}

	// 3) indexes
	for i, m := range d.Moves {
		idx := movepaths.MoveOutIndex(i)
		if !valid(m.Path) {
			errs = append(errs, fmt.Errorf("mo%d has out-of-range path %d", i, m.Path))
			continue
		}
		if !slices.Contains(d.PathMap[m.Path], idx) {
			errs = append(errs, fmt.Errorf("mo%d missing from the moves of mp%d", i, m.Path))
		}
		if !slices.Contains(d.LocMap.At(m.Source), idx) {
			errs = append(errs, fmt.Errorf("mo%d missing from the moves at %s", i, m.Source))
		}
	}
	for i, in := range d.Inits {
		idx := movepaths.InitIndex(i)
		if !valid(in.Path) {
			errs = append(errs, fmt.Errorf("in%d has out-of-range path %d", i, in.Path))
			continue
		}
		if !slices.Contains(d.InitPathMap[in.Path], idx) {
			errs = append(errs, fmt.Errorf("in%d missing from the inits of mp%d", i, in.Path))
		}
		if in.Location.Kind == movepaths.InitLocStatement && !slices.Contains(d.InitLocMap.At(in.Location.Location), idx) {
			errs = append(errs, fmt.Errorf("in%d missing from the inits at %s", i, in.Location.Location))
		}
	}
	return errors.Join(errs...)
}

package esx

import "cmp"

// CompareComponents is the ordering relation between siblings of a group
// payload, for sorting and diffing tools. Decoding and encoding never
// reorder children; they always keep source order.
//
// Records order by FormID and groups by [CompareLabels]. A record sorts
// before a group holding its own children (or any child group whose parent
// FormID is greater) and after top-level and cell-block groups. Groups with
// unresolved labels sort after records. It returns -1, 0, or +1.
func CompareComponents(a, b Component) int {
	switch av := a.(type) {
	case *Record:
		switch bv := b.(type) {
		case *Record:
			return cmp.Compare(av.FormID, bv.FormID)
		case *Group:
			return compareRecordGroup(av, bv)
		}
	case *Group:
		switch bv := b.(type) {
		case *Record:
			return -compareRecordGroup(bv, av)
		case *Group:
			return CompareLabels(av.Label, bv.Label)
		}
	}
	return 0
}

func compareRecordGroup(r *Record, g *Group) int {
	switch g.Label.(type) {
	case TopLabel, InteriorCellBlockLabel, InteriorCellSubBlockLabel,
		ExteriorCellBlockLabel, ExteriorCellSubBlockLabel:
		return 1
	case RawLabel, nil:
		return -1
	}
	parent, _ := labelParent(g.Label)
	if c := cmp.Compare(r.FormID, parent); c != 0 {
		return c
	}
	return -1
}

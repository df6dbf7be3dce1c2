package esx

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"fmt"

	"github.com/meigma/esx/types"
)

// LabelSize is the wire size of a group label: 4 payload bytes followed by a
// 4-byte discriminant.
const LabelSize = 8

// GroupType is the discriminant of a group label.
type GroupType uint32

// Known group types.
const (
	GroupTop GroupType = iota
	GroupWorldChildren
	GroupInteriorCellBlock
	GroupInteriorCellSubBlock
	GroupExteriorCellBlock
	GroupExteriorCellSubBlock
	GroupCellChildren
	GroupTopicChildren
	GroupCellPersistentChildren
	GroupCellTemporaryChildren
	GroupQuestScene
)

var groupTypeNames = [...]string{
	GroupTop:                    "top",
	GroupWorldChildren:          "world_children",
	GroupInteriorCellBlock:      "interior_cell_block",
	GroupInteriorCellSubBlock:   "interior_cell_sub_block",
	GroupExteriorCellBlock:      "exterior_cell_block",
	GroupExteriorCellSubBlock:   "exterior_cell_sub_block",
	GroupCellChildren:           "cell_children",
	GroupTopicChildren:          "topic_children",
	GroupCellPersistentChildren: "cell_persistent_children",
	GroupCellTemporaryChildren:  "cell_temporary_children",
	GroupQuestScene:             "quest_scene",
}

// Known reports whether t has a defined interpretation.
func (t GroupType) Known() bool {
	return t <= GroupQuestScene
}

func (t GroupType) String() string {
	if t.Known() {
		return groupTypeNames[t]
	}
	return fmt.Sprintf("GroupType(%d)", uint32(t))
}

// ParseGroupType reverses GroupType.String for known types.
func ParseGroupType(name string) (GroupType, error) {
	for i, n := range groupTypeNames {
		if n == name {
			return GroupType(i), nil //nolint:gosec // bounded by the table
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGroupLabelType, name)
}

// Label is the polymorphic label of a group. It is either a [RawLabel], as
// read from the wire, or one of the resolved label types.
type Label interface {
	// Type returns the discriminant written after the label payload.
	Type() GroupType
	String() string

	isLabel()
}

// RawLabel is an unresolved label. It preserves the payload and
// discriminant verbatim, including discriminants with no known meaning.
type RawLabel struct {
	Payload      [4]byte
	Discriminant GroupType
}

// TopLabel marks a top-level group holding every record of one type.
type TopLabel struct {
	RecordType Signature
}

// WorldChildrenLabel holds the children of a worldspace.
type WorldChildrenLabel struct {
	World FormID
}

// InteriorCellBlockLabel holds a block of interior cells.
type InteriorCellBlockLabel struct {
	Block int32
}

// InteriorCellSubBlockLabel holds a sub-block of interior cells.
type InteriorCellSubBlockLabel struct {
	SubBlock int32
}

// ExteriorCellBlockLabel holds a block of exterior cells. Y precedes X on the wire.
type ExteriorCellBlockLabel struct {
	X, Y int16
}

// ExteriorCellSubBlockLabel holds a sub-block of exterior cells. Y precedes X on the wire.
type ExteriorCellSubBlockLabel struct {
	X, Y int16
}

// CellChildrenLabel holds the children of a cell.
type CellChildrenLabel struct {
	Cell FormID
}

// TopicChildrenLabel holds the children of a dialogue topic.
type TopicChildrenLabel struct {
	Topic FormID
}

// CellPersistentChildrenLabel holds the persistent children of a cell.
type CellPersistentChildrenLabel struct {
	Cell FormID
}

// CellTemporaryChildrenLabel holds the temporary children of a cell.
type CellTemporaryChildrenLabel struct {
	Cell FormID
}

// QuestSceneLabel holds the scenes of a quest.
type QuestSceneLabel struct {
	Quest FormID
}

func (l RawLabel) Type() GroupType { return l.Discriminant }
func (TopLabel) Type() GroupType { return GroupTop }
func (WorldChildrenLabel) Type() GroupType { return GroupWorldChildren }
func (InteriorCellBlockLabel) Type() GroupType { return GroupInteriorCellBlock }
func (InteriorCellSubBlockLabel) Type() GroupType { return GroupInteriorCellSubBlock }
func (ExteriorCellBlockLabel) Type() GroupType { return GroupExteriorCellBlock }
func (ExteriorCellSubBlockLabel) Type() GroupType { return GroupExteriorCellSubBlock }
func (CellChildrenLabel) Type() GroupType { return GroupCellChildren }
func (TopicChildrenLabel) Type() GroupType { return GroupTopicChildren }
func (CellPersistentChildrenLabel) Type() GroupType { return GroupCellPersistentChildren }
func (CellTemporaryChildrenLabel) Type() GroupType { return GroupCellTemporaryChildren }
func (QuestSceneLabel) Type() GroupType { return GroupQuestScene }
func (RawLabel) isLabel() {}
func (TopLabel) isLabel() {}
func (WorldChildrenLabel) isLabel() {}
func (InteriorCellBlockLabel) isLabel() {}
func (InteriorCellSubBlockLabel) isLabel() {}
func (ExteriorCellBlockLabel) isLabel() {}
func (ExteriorCellSubBlockLabel) isLabel() {}
func (CellChildrenLabel) isLabel() {}
func (TopicChildrenLabel) isLabel() {}
func (CellPersistentChildrenLabel) isLabel() {}
func (CellTemporaryChildrenLabel) isLabel() {}
func (QuestSceneLabel) isLabel() {}

func (l RawLabel) String() string {
	return fmt.Sprintf("Raw: %v %d", l.Payload, uint32(l.Discriminant))
}

func (l TopLabel) String() string {
	return fmt.Sprintf("Top (%s)", l.RecordType)
}

func (l WorldChildrenLabel) String() string {
	return fmt.Sprintf("World Children (WRLD: %s)", l.World)
}

func (l InteriorCellBlockLabel) String() string {
	return fmt.Sprintf("Interior Cell Block (%d)", l.Block)
}

func (l InteriorCellSubBlockLabel) String() string {
	return fmt.Sprintf("Interior Cell Sub-Block (%d)", l.SubBlock)
}

func (l ExteriorCellBlockLabel) String() string {
	return fmt.Sprintf("Exterior Cell Block (X: %d, Y: %d)", l.X, l.Y)
}

func (l ExteriorCellSubBlockLabel) String() string {
	return fmt.Sprintf("Exterior Cell Sub-Block (X: %d, Y: %d)", l.X, l.Y)
}

func (l CellChildrenLabel) String() string {
	return fmt.Sprintf("Cell Children (CELL: %s)", l.Cell)
}

func (l TopicChildrenLabel) String() string {
	return fmt.Sprintf("Topic Children (DIAL: %s)", l.Topic)
}

func (l CellPersistentChildrenLabel) String() string {
	return fmt.Sprintf("Cell Persistent Children (CELL: %s)", l.Cell)
}

func (l CellTemporaryChildrenLabel) String() string {
	return fmt.Sprintf("Cell Temporary Children (CELL: %s)", l.Cell)
}

func (l QuestSceneLabel) String() string {
	return fmt.Sprintf("Quest Scene (QUST: %s)", l.Quest)
}

// DecodeLabel splits the 8 wire bytes of a label into its unresolved form.
func DecodeLabel(b [LabelSize]byte) RawLabel {
	var l RawLabel
	copy(l.Payload[:], b[0:4])
	l.Discriminant = GroupType(binary.LittleEndian.Uint32(b[4:8]))
	return l
}

// ResolveLabel interprets a raw label according to its discriminant.
// Labels that are already resolved are returned unchanged.
//
// For an unknown discriminant the raw label is returned together with a
// *LabelTypeError, so callers can keep it as is.
func ResolveLabel(l Label) (Label, error) {
	raw, ok := l.(RawLabel)
	if !ok {
		return l, nil
	}
	p := raw.Payload
	u32 := binary.LittleEndian.Uint32(p[:])
	id := FormID(u32)
	y := int16(binary.LittleEndian.Uint16(p[0:2])) //nolint:gosec // reinterpreting wire bits
	x := int16(binary.LittleEndian.Uint16(p[2:4])) //nolint:gosec // reinterpreting wire bits

	switch raw.Discriminant {
	case GroupTop:
		return TopLabel{RecordType: types.Signature(p)}, nil
	case GroupWorldChildren:
		return WorldChildrenLabel{World: id}, nil
	case GroupInteriorCellBlock:
		return InteriorCellBlockLabel{Block: int32(u32)}, nil //nolint:gosec // reinterpreting wire bits
	case GroupInteriorCellSubBlock:
		return InteriorCellSubBlockLabel{SubBlock: int32(u32)}, nil //nolint:gosec // reinterpreting wire bits
	case GroupExteriorCellBlock:
		return ExteriorCellBlockLabel{X: x, Y: y}, nil
	case GroupExteriorCellSubBlock:
		return ExteriorCellSubBlockLabel{X: x, Y: y}, nil
	case GroupCellChildren:
		return CellChildrenLabel{Cell: id}, nil
	case GroupTopicChildren:
		return TopicChildrenLabel{Topic: id}, nil
	case GroupCellPersistentChildren:
		return CellPersistentChildrenLabel{Cell: id}, nil
	case GroupCellTemporaryChildren:
		return CellTemporaryChildrenLabel{Cell: id}, nil
	case GroupQuestScene:
		return QuestSceneLabel{Quest: id}, nil
	default:
		return raw, &LabelTypeError{Type: raw.Discriminant}
	}
}

// EncodeLabel returns the 8 wire bytes of a label. A nil label encodes as zeros.
func EncodeLabel(l Label) [LabelSize]byte {
	var out [LabelSize]byte
	p := out[0:4]

	switch v := l.(type) {
	case RawLabel:
		copy(p, v.Payload[:])
	case TopLabel:
		copy(p, v.RecordType[:])
	case WorldChildrenLabel:
		binary.LittleEndian.PutUint32(p, uint32(v.World))
	case InteriorCellBlockLabel:
		binary.LittleEndian.PutUint32(p, uint32(v.Block)) //nolint:gosec // reinterpreting wire bits
	case InteriorCellSubBlockLabel:
		binary.LittleEndian.PutUint32(p, uint32(v.SubBlock)) //nolint:gosec // reinterpreting wire bits
	case ExteriorCellBlockLabel:
		binary.LittleEndian.PutUint16(p[0:2], uint16(v.Y)) //nolint:gosec // reinterpreting wire bits
		binary.LittleEndian.PutUint16(p[2:4], uint16(v.X)) //nolint:gosec // reinterpreting wire bits
	case ExteriorCellSubBlockLabel:
		binary.LittleEndian.PutUint16(p[0:2], uint16(v.Y)) //nolint:gosec // reinterpreting wire bits
		binary.LittleEndian.PutUint16(p[2:4], uint16(v.X)) //nolint:gosec // reinterpreting wire bits
	case CellChildrenLabel:
		binary.LittleEndian.PutUint32(p, uint32(v.Cell))
	case TopicChildrenLabel:
		binary.LittleEndian.PutUint32(p, uint32(v.Topic))
	case CellPersistentChildrenLabel:
		binary.LittleEndian.PutUint32(p, uint32(v.Cell))
	case CellTemporaryChildrenLabel:
		binary.LittleEndian.PutUint32(p, uint32(v.Cell))
	case QuestSceneLabel:
		binary.LittleEndian.PutUint32(p, uint32(v.Quest))
	case nil:
		return out
	}
	binary.LittleEndian.PutUint32(out[4:8], uint32(l.Type()))
	return out
}

// labelRank orders label variants by discriminant, with unresolved labels last.
func labelRank(l Label) int {
	switch l.(type) {
	case nil:
		return -1
	case RawLabel:
		return int(GroupQuestScene) + 1
	default:
		return int(l.Type())
	}
}

// CompareLabels orders labels first by variant, then by value. Unresolved
// labels sort after every resolved label. It returns -1, 0, or +1.
func CompareLabels(a, b Label) int {
	if c := cmp.Compare(labelRank(a), labelRank(b)); c != 0 {
		return c
	}
	switch av := a.(type) {
	case RawLabel:
		bv := b.(RawLabel)
		if c := bytes.Compare(av.Payload[:], bv.Payload[:]); c != 0 {
			return c
		}
		return cmp.Compare(av.Discriminant, bv.Discriminant)
	case TopLabel:
		return av.RecordType.Compare(b.(TopLabel).RecordType)
	case InteriorCellBlockLabel:
		return cmp.Compare(av.Block, b.(InteriorCellBlockLabel).Block)
	case InteriorCellSubBlockLabel:
		return cmp.Compare(av.SubBlock, b.(InteriorCellSubBlockLabel).SubBlock)
	case ExteriorCellBlockLabel:
		bv := b.(ExteriorCellBlockLabel)
		return cmp.Or(cmp.Compare(av.X, bv.X), cmp.Compare(av.Y, bv.Y))
	case ExteriorCellSubBlockLabel:
		bv := b.(ExteriorCellSubBlockLabel)
		return cmp.Or(cmp.Compare(av.X, bv.X), cmp.Compare(av.Y, bv.Y))
	case nil:
		return 0
	default:
		pa, _ := labelParent(a)
		pb, _ := labelParent(b)
		return cmp.Compare(pa, pb)
	}
}

// labelParent returns the parent FormID carried by child-group labels.
func labelParent(l Label) (FormID, bool) {
	switch v := l.(type) {
	case WorldChildrenLabel:
		return v.World, true
	case CellChildrenLabel:
		return v.Cell, true
	case TopicChildrenLabel:
		return v.Topic, true
	case CellPersistentChildrenLabel:
		return v.Cell, true
	case CellTemporaryChildrenLabel:
		return v.Cell, true
	case QuestSceneLabel:
		return v.Quest, true
	default:
		return 0, false
	}
}

package dump

import (
	"errors"
	"fmt"

	"github.com/meigma/esx"
)

// ErrInvalidDocument is returned when a document cannot be turned back into
// a plugin.
var ErrInvalidDocument = errors.New("dump: invalid document")

// FromPlugin builds the document for p in its current resolve state.
func FromPlugin(p *esx.Plugin) *Document {
	doc := &Document{Header: fromRecord(p.Header())}
	for _, g := range p.TopGroups() {
		doc.Groups = append(doc.Groups, fromGroup(g))
	}
	return doc
}

func fromRecord(r *esx.Record) Record {
	out := Record{
		Signature:   r.Signature,
		Flags:       uint32(r.Flags),
		FormID:      r.FormID,
		Timestamp:   r.Timestamp,
		VcsInfo:     r.VcsInfo,
		FormVersion: r.FormVersion,
		Reserved:    r.Reserved,
		Data:        RecordData{Kind: r.Data.Kind().String()},
	}
	switch r.Data.Kind() {
	case esx.RecordDataRaw, esx.RecordDataCompressed:
		out.Data.Bytes = Bytes(r.Data.Bytes())
	case esx.RecordDataFields:
		out.Data.Fields = make([]Field, 0, len(r.Data.Fields()))
		for _, f := range r.Data.Fields() {
			out.Data.Fields = append(out.Data.Fields, Field{Signature: f.Signature, Data: Bytes(f.Data)})
		}
	}
	return out
}

func fromGroup(g *esx.Group) Group {
	out := Group{
		Label:     fromLabel(g.Label),
		Timestamp: g.Timestamp,
		VcsInfo:   g.VcsInfo,
		Reserved:  g.Reserved,
		Data:      GroupData{Kind: g.Data.Kind().String()},
	}
	switch g.Data.Kind() {
	case esx.GroupDataRaw:
		out.Data.Bytes = Bytes(g.Data.Bytes())
	case esx.GroupDataComponents:
		out.Data.Components = make([]Component, 0, len(g.Data.Components()))
		for _, c := range g.Data.Components() {
			switch v := c.(type) {
			case *esx.Record:
				rec := fromRecord(v)
				out.Data.Components = append(out.Data.Components, Component{Record: &rec})
			case *esx.Group:
				grp := fromGroup(v)
				out.Data.Components = append(out.Data.Components, Component{Group: &grp})
			}
		}
	}
	return out
}

func fromLabel(l esx.Label) Label {
	if l == nil {
		l = esx.RawLabel{}
	}
	out := Label{Kind: l.Type().String()}
	switch v := l.(type) {
	case esx.RawLabel:
		typ := uint32(v.Discriminant)
		out = Label{Kind: rawKind, Payload: Bytes(v.Payload[:]), Type: &typ}
	case esx.TopLabel:
		out.RecordType = &v.RecordType
	case esx.InteriorCellBlockLabel:
		out.Block = &v.Block
	case esx.InteriorCellSubBlockLabel:
		out.Block = &v.SubBlock
	case esx.ExteriorCellBlockLabel:
		out.X, out.Y = &v.X, &v.Y
	case esx.ExteriorCellSubBlockLabel:
		out.X, out.Y = &v.X, &v.Y
	case esx.WorldChildrenLabel:
		out.Parent = &v.World
	case esx.CellChildrenLabel:
		out.Parent = &v.Cell
	case esx.TopicChildrenLabel:
		out.Parent = &v.Topic
	case esx.CellPersistentChildrenLabel:
		out.Parent = &v.Cell
	case esx.CellTemporaryChildrenLabel:
		out.Parent = &v.Cell
	case esx.QuestSceneLabel:
		out.Parent = &v.Quest
	}
	return out
}

const rawKind = "raw"

// ToPlugin rebuilds a plugin from a document. opts configure the returned
// plugin as they would for [esx.Decode].
func ToPlugin(doc *Document, opts ...esx.Option) (*esx.Plugin, error) {
	header, err := toRecord(&doc.Header)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	groups := make([]*esx.Group, 0, len(doc.Groups))
	for i := range doc.Groups {
		g, err := toGroup(&doc.Groups[i])
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		groups = append(groups, g)
	}
	return esx.New(*header, groups, opts...), nil
}

func toRecord(r *Record) (*esx.Record, error) {
	out := &esx.Record{
		Signature:   r.Signature,
		Flags:       esx.RecordFlags(r.Flags),
		FormID:      r.FormID,
		Timestamp:   r.Timestamp,
		VcsInfo:     r.VcsInfo,
		FormVersion: r.FormVersion,
		Reserved:    r.Reserved,
	}
	switch r.Data.Kind {
	case esx.RecordDataEmpty.String():
	case esx.RecordDataRaw.String():
		out.Data = esx.RawRecordData(r.Data.Bytes)
	case esx.RecordDataCompressed.String():
		out.Data = esx.CompressedRecordData(r.Data.Bytes)
	case esx.RecordDataFields.String():
		fields := make([]esx.Field, 0, len(r.Data.Fields))
		for _, f := range r.Data.Fields {
			fields = append(fields, esx.NewField(f.Signature, f.Data))
		}
		out.Data = esx.FieldRecordData(fields...)
	default:
		return nil, fmt.Errorf("%w: record %s: data kind %q", ErrInvalidDocument, out, r.Data.Kind)
	}
	return out, nil
}

func toGroup(g *Group) (*esx.Group, error) {
	label, err := toLabel(&g.Label)
	if err != nil {
		return nil, err
	}
	out := &esx.Group{
		Label:     label,
		Timestamp: g.Timestamp,
		VcsInfo:   g.VcsInfo,
		Reserved:  g.Reserved,
	}
	switch g.Data.Kind {
	case esx.GroupDataEmpty.String():
	case esx.GroupDataRaw.String():
		out.Data = esx.RawGroupData(g.Data.Bytes)
	case esx.GroupDataComponents.String():
		components := make([]esx.Component, 0, len(g.Data.Components))
		for i, c := range g.Data.Components {
			switch {
			case c.Record != nil && c.Group == nil:
				rec, err := toRecord(c.Record)
				if err != nil {
					return nil, err
				}
				components = append(components, rec)
			case c.Group != nil && c.Record == nil:
				grp, err := toGroup(c.Group)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", out, err)
				}
				components = append(components, grp)
			default:
				return nil, fmt.Errorf("%w: %s: component %d must hold one record or group", ErrInvalidDocument, out, i)
			}
		}
		out.Data = esx.ComponentGroupData(components...)
	default:
		return nil, fmt.Errorf("%w: %s: data kind %q", ErrInvalidDocument, out, g.Data.Kind)
	}
	return out, nil
}

func toLabel(l *Label) (esx.Label, error) {
	if l.Kind == rawKind {
		if len(l.Payload) != 4 || l.Type == nil {
			return nil, fmt.Errorf("%w: raw label needs a 4-byte payload and a type", ErrInvalidDocument)
		}
		raw := esx.RawLabel{Discriminant: esx.GroupType(*l.Type)}
		copy(raw.Payload[:], l.Payload)
		return raw, nil
	}

	typ, err := esx.ParseGroupType(l.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	missing := func(member string) error {
		return fmt.Errorf("%w: %s label without %s", ErrInvalidDocument, l.Kind, member)
	}

	switch typ {
	case esx.GroupTop:
		if l.RecordType == nil {
			return nil, missing("record_type")
		}
		return esx.TopLabel{RecordType: *l.RecordType}, nil
	case esx.GroupInteriorCellBlock, esx.GroupInteriorCellSubBlock:
		if l.Block == nil {
			return nil, missing("block")
		}
		if typ == esx.GroupInteriorCellBlock {
			return esx.InteriorCellBlockLabel{Block: *l.Block}, nil
		}
		return esx.InteriorCellSubBlockLabel{SubBlock: *l.Block}, nil
	case esx.GroupExteriorCellBlock, esx.GroupExteriorCellSubBlock:
		if l.X == nil || l.Y == nil {
			return nil, missing("x and y")
		}
		if typ == esx.GroupExteriorCellBlock {
			return esx.ExteriorCellBlockLabel{X: *l.X, Y: *l.Y}, nil
		}
		return esx.ExteriorCellSubBlockLabel{X: *l.X, Y: *l.Y}, nil
	}

	if l.Parent == nil {
		return nil, missing("parent")
	}
	id := *l.Parent
	switch typ {
	case esx.GroupWorldChildren:
		return esx.WorldChildrenLabel{World: id}, nil
	case esx.GroupCellChildren:
		return esx.CellChildrenLabel{Cell: id}, nil
	case esx.GroupTopicChildren:
		return esx.TopicChildrenLabel{Topic: id}, nil
	case esx.GroupCellPersistentChildren:
		return esx.CellPersistentChildrenLabel{Cell: id}, nil
	case esx.GroupCellTemporaryChildren:
		return esx.CellTemporaryChildrenLabel{Cell: id}, nil
	default:
		return esx.QuestSceneLabel{Quest: id}, nil
	}
}

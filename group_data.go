package esx

import (
	"bytes"
	"fmt"
)

// GroupDataKind identifies the state of a group payload.
type GroupDataKind uint8

const (
	// GroupDataEmpty is a payload with no bytes and no components.
	GroupDataEmpty GroupDataKind = iota

	// GroupDataRaw is an undecoded payload.
	GroupDataRaw

	// GroupDataComponents is a payload decoded into records and groups.
	GroupDataComponents
)

func (k GroupDataKind) String() string {
	switch k {
	case GroupDataEmpty:
		return "empty"
	case GroupDataRaw:
		return "raw"
	case GroupDataComponents:
		return "components"
	default:
		return fmt.Sprintf("GroupDataKind(%d)", uint8(k))
	}
}

// Component is one child of a resolved group payload: a *Record or a *Group.
type Component interface {
	AppendBinary(dst []byte) ([]byte, error)
	String() string

	isComponent()
}

// Interface compliance.
var (
	_ Component = (*Record)(nil)
	_ Component = (*Group)(nil)
)

// GroupData is the payload of a group in one of its [GroupDataKind] states.
// The zero value is an empty payload.
type GroupData struct {
	kind       GroupDataKind
	raw        []byte
	components []Component
}

// RawGroupData wraps undecoded payload bytes.
func RawGroupData(b []byte) GroupData {
	return GroupData{kind: GroupDataRaw, raw: b}
}

// ComponentGroupData wraps an already decoded component list.
func ComponentGroupData(components ...Component) GroupData {
	if components == nil {
		components = []Component{}
	}
	return GroupData{kind: GroupDataComponents, components: components}
}

// Kind returns the payload state.
func (d GroupData) Kind() GroupDataKind {
	return d.kind
}

// Resolved reports whether the payload holds decoded components.
func (d GroupData) Resolved() bool {
	return d.kind == GroupDataComponents
}

// Bytes returns the undecoded payload bytes, or nil once resolved.
func (d GroupData) Bytes() []byte {
	if d.kind != GroupDataRaw {
		return nil
	}
	return d.raw
}

// Components returns the decoded children in source order, or nil if the
// payload is not resolved.
func (d GroupData) Components() []Component {
	if d.kind != GroupDataComponents {
		return nil
	}
	return d.components
}

// Records returns the directly nested records.
func (d GroupData) Records() []*Record {
	var records []*Record
	for _, c := range d.Components() {
		if r, ok := c.(*Record); ok {
			records = append(records, r)
		}
	}
	return records
}

// Groups returns the directly nested groups.
func (d GroupData) Groups() []*Group {
	var groups []*Group
	for _, c := range d.Components() {
		if g, ok := c.(*Group); ok {
			groups = append(groups, g)
		}
	}
	return groups
}

// RecordsRecursive returns every record reachable from the payload, depth
// first and in document order.
func (d GroupData) RecordsRecursive() []*Record {
	return d.appendRecords(nil)
}

func (d GroupData) appendRecords(dst []*Record) []*Record {
	for _, c := range d.Components() {
		switch v := c.(type) {
		case *Record:
			dst = append(dst, v)
		case *Group:
			dst = v.Data.appendRecords(dst)
		}
	}
	return dst
}

// Resolve decodes the payload into components using the default [Resolver].
func (d GroupData) Resolve() (GroupData, error) {
	return defaultResolver.GroupData(d)
}

// decodeComponents splits buf into records and groups. A GRUP tag starts a
// group; anything else is read as a record.
func decodeComponents(buf []byte) ([]Component, error) {
	components := make([]Component, 0, 4)
	for len(buf) > 0 {
		if len(buf) >= 4 && bytes.Equal(buf[0:4], SignatureGroup[:]) {
			g, rest, err := DecodeGroup(buf)
			if err != nil {
				return nil, err
			}
			components = append(components, g)
			buf = rest
			continue
		}
		rec, rest, err := DecodeRecord(buf)
		if err != nil {
			return nil, err
		}
		components = append(components, &rec)
		buf = rest
	}
	return components, nil
}

func (e *encoder) appendGroupData(dst []byte, d GroupData) ([]byte, error) {
	switch d.kind {
	case GroupDataRaw:
		return append(dst, d.raw...), nil
	case GroupDataComponents:
		var err error
		for _, c := range d.components {
			switch v := c.(type) {
			case *Record:
				dst, err = e.appendRecord(dst, v)
			case *Group:
				dst, err = e.appendGroup(dst, v)
			}
			if err != nil {
				return dst, err
			}
		}
		return dst, nil
	default:
		return dst, nil
	}
}

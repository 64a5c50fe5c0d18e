package ir

import (
	"strconv"
)

// Location is a provenance tag attached to every emitted construct.
type Location interface {
	location()
	String() string
}

// UnknownLoc is the location of constructs with no tracked source position.
type UnknownLoc struct{}

func (UnknownLoc) location() {}

func (UnknownLoc) String() string { return "unknown" }

// FileLineColLoc is a position in a source file.
type FileLineColLoc struct {
	File string
	Line int
	Col  int
}

func (FileLineColLoc) location() {}

func (l FileLineColLoc) String() string {
	return strconv.Quote(l.File) + ":" + strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Col)
}

// NameLoc names a construct, optionally wrapping a finer location.
type NameLoc struct {
	Name  string
	Child Location // May be nil
}

func (NameLoc) location() {}

func (l NameLoc) String() string {
	if l.Child == nil {
		return strconv.Quote(l.Name)
	}
	return strconv.Quote(l.Name) + "(" + l.Child.String() + ")"
}

// Unknown returns the unknown location.
func Unknown() Location {
	return UnknownLoc{}
}

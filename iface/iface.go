package iface

import (
	"strconv"

	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/object"
)

// Method is one declared method.
type Method struct {
	ID     object.Op
	Name   string
	Params []Param

	plan *Plan
}

// NewMethod is shorthand for a Method literal.
func NewMethod(id object.Op, name string, params ...Param) *Method {
	return &Method{ID: id, Name: name, Params: params}
}

// Plan returns the compiled slot plan. It is nil until the method has been
// added to an interface with New.
func (m *Method) Plan() *Plan {
	return m.plan
}

// Counts returns the argument shape the method expects.
func (m *Method) Counts() object.Counts {
	return m.plan.Counts
}

// Param returns the index of the named parameter, or -1.
func (m *Method) Param(name string) int {
	for i, p := range m.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Interface is a named, ordered method table with an optional base.
type Interface struct {
	Name    string
	Base    *Interface
	Methods []*Method

	byID   map[object.Op]*Method
	byName map[string]*Method
}

// New validates the method table and compiles every plan. Method ids must
// lie in the user range and be unique along the base chain; so must names.
func New(name string, base *Interface, methods ...*Method) (*Interface, error) {
	ifc := &Interface{
		Name:    name,
		Base:    base,
		Methods: methods,
		byID:    make(map[object.Op]*Method),
		byName:  make(map[string]*Method),
	}
	if base != nil {
		for id, m := range base.byID {
			ifc.byID[id] = m
		}
		for n, m := range base.byName {
			ifc.byName[n] = m
		}
	}

	for _, m := range methods {
		path := []string{name, m.Name}
		if m.Name == "" {
			return nil, errors.InvalidData(errors.PhaseDescribe, []string{name}, "method without a name")
		}
		if m.ID > object.MethodUserMax {
			return nil, errors.New(errors.PhaseDescribe, errors.KindOverflow).
				Path(path...).
				Value(uint32(m.ID)).
				Detail("method id %#x outside [0, %#x]", uint32(m.ID), uint32(object.MethodUserMax)).
				Build()
		}
		if prev, ok := ifc.byID[m.ID]; ok {
			return nil, errors.Duplicate(errors.PhaseDescribe, path, "method id "+strconv.Itoa(int(m.ID))+" (also "+prev.Name+")")
		}
		if _, ok := ifc.byName[m.Name]; ok {
			return nil, errors.Duplicate(errors.PhaseDescribe, path, "method name")
		}

		plan, err := Compile(m.Params)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				e.Path = append(path, e.Path...)
				return nil, e
			}
			return nil, errors.Wrap(errors.PhaseDescribe, errors.KindShape, err, name+"."+m.Name)
		}
		m.plan = plan

		ifc.byID[m.ID] = m
		ifc.byName[m.Name] = m
	}
	return ifc, nil
}

// MustNew is New for package-level descriptors; it panics on error.
func MustNew(name string, base *Interface, methods ...*Method) *Interface {
	ifc, err := New(name, base, methods...)
	if err != nil {
		panic(err)
	}
	return ifc
}

// Lookup finds a method by id, searching the base chain.
func (i *Interface) Lookup(id object.Op) (*Method, bool) {
	m, ok := i.byID[id.MethodID()]
	return m, ok
}

// Method finds a method by name, searching the base chain.
func (i *Interface) Method(name string) (*Method, bool) {
	m, ok := i.byName[name]
	return m, ok
}

// All returns every method answered by the interface, base methods first.
func (i *Interface) All() []*Method {
	var out []*Method
	if i.Base != nil {
		out = i.Base.All()
	}
	return append(out, i.Methods...)
}

// Extends reports whether i is name or inherits from it.
func (i *Interface) Extends(name string) bool {
	for it := i; it != nil; it = it.Base {
		if it.Name == name {
			return true
		}
	}
	return false
}

// MaxID returns the highest method id along the chain, or -1 when the chain
// declares no methods.
func (i *Interface) MaxID() int {
	hi := -1
	for id := range i.byID {
		if int(id) > hi {
			hi = int(id)
		}
	}
	return hi
}

package iface

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/layout"
	"github.com/wippyai/object-abi/object"
)

// Document is a parsed declaration file.
type Document struct {
	structs    map[string]*layout.Type
	interfaces map[string]*Interface
	order      []string
}

type declFile struct {
	Structs    []structDecl `toml:"struct"`
	Interfaces []ifaceDecl  `toml:"interface"`
}

type structDecl struct {
	Name   string      `toml:"name"`
	Fields []fieldDecl `toml:"fields"`
}

type fieldDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type ifaceDecl struct {
	Name    string       `toml:"name"`
	Base    string       `toml:"base"`
	Methods []methodDecl `toml:"method"`
}

type methodDecl struct {
	Name   string      `toml:"name"`
	ID     *uint32     `toml:"id"`
	Params []paramDecl `toml:"params"`
}

type paramDecl struct {
	Name string `toml:"name"`
	Dir  string `toml:"dir"`
	Type string `toml:"type"`
}

// Load reads and parses a declaration file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, "cannot read "+path)
	}
	doc, err := Parse(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Path = append([]string{path}, e.Path...)
		}
		return nil, err
	}
	return doc, nil
}

// Parse builds interfaces from TOML declarations.
//
//	[[struct]]
//	name = "Pair"
//	fields = [{ name = "a", type = "u32" }, { name = "b", type = "u32" }]
//
//	[[interface]]
//	name = "IPairs"
//	[[interface.method]]
//	name = "swap"
//	params = [{ name = "in", dir = "in", type = "Pair" }, { name = "out", dir = "out", type = "Pair" }]
//
// Structs and base interfaces must be declared before use. A method without
// an id takes the next id after the previous method, starting after the
// base chain's highest id.
func Parse(data []byte) (*Document, error) {
	var f declFile
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "decode declarations")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("unknown keys: %s", strings.Join(keys, ", ")).
			Build()
	}

	doc := &Document{
		structs:    make(map[string]*layout.Type),
		interfaces: make(map[string]*Interface),
	}

	for _, sd := range f.Structs {
		if err := doc.addStruct(sd); err != nil {
			return nil, err
		}
	}
	for _, id := range f.Interfaces {
		if err := doc.addInterface(id); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (d *Document) addStruct(sd structDecl) error {
	path := []string{sd.Name}
	if sd.Name == "" {
		return errors.InvalidData(errors.PhaseParse, nil, "struct without a name")
	}
	if _, ok := d.structs[sd.Name]; ok {
		return errors.Duplicate(errors.PhaseParse, path, "struct")
	}
	if _, ok := layout.ParsePrimitive(sd.Name); ok {
		return errors.InvalidData(errors.PhaseParse, path, "struct name shadows a primitive")
	}

	fields := make([]layout.Field, 0, len(sd.Fields))
	for _, fd := range sd.Fields {
		ft, err := d.valueType(fd.Type, append(path, fd.Name))
		if err != nil {
			return err
		}
		fields = append(fields, layout.Field{Name: fd.Name, Type: ft})
	}
	d.structs[sd.Name] = layout.StructOf(sd.Name, fields...)
	return nil
}

func (d *Document) addInterface(id ifaceDecl) error {
	path := []string{id.Name}
	if id.Name == "" {
		return errors.InvalidData(errors.PhaseParse, nil, "interface without a name")
	}
	if _, ok := d.interfaces[id.Name]; ok {
		return errors.Duplicate(errors.PhaseParse, path, "interface")
	}

	var base *Interface
	if id.Base != "" {
		b, ok := d.interfaces[id.Base]
		if !ok {
			return errors.NotFound(errors.PhaseParse, path, "base interface "+id.Base)
		}
		base = b
	}

	next := object.Op(0)
	if base != nil {
		next = object.Op(base.MaxID() + 1)
	}

	methods := make([]*Method, 0, len(id.Methods))
	for _, md := range id.Methods {
		mid := next
		if md.ID != nil {
			mid = object.Op(*md.ID)
		}
		next = mid + 1

		params := make([]Param, 0, len(md.Params))
		for _, pd := range md.Params {
			p, err := d.param(pd, []string{id.Name, md.Name, pd.Name})
			if err != nil {
				return err
			}
			params = append(params, p)
		}
		methods = append(methods, NewMethod(mid, md.Name, params...))
	}

	ifc, err := New(id.Name, base, methods...)
	if err != nil {
		return err
	}
	d.interfaces[id.Name] = ifc
	d.order = append(d.order, id.Name)
	return nil
}

func (d *Document) param(pd paramDecl, path []string) (Param, error) {
	var dir Dir
	switch pd.Dir {
	case "in", "":
		dir = DirIn
	case "out":
		dir = DirOut
	default:
		return Param{}, errors.InvalidData(errors.PhaseParse, path, "direction must be in or out, got "+strconv.Quote(pd.Dir))
	}

	expr := strings.TrimSpace(pd.Type)
	p := Param{Name: pd.Name, Dir: dir}

	switch {
	case expr == "buffer":
		p.Kind, p.Type = KindBuffer, layout.Uint8
	case expr == "object" || strings.HasPrefix(expr, "object:") || strings.HasPrefix(expr, "object["):
		p.Kind, p.Count = KindObject, 1
		rest := strings.TrimPrefix(expr, "object")
		if base, n, ok := cutLen(rest); ok {
			if n < 0 {
				return Param{}, errors.InvalidData(errors.PhaseParse, path, "object arrays need a length")
			}
			p.Kind, p.Count = KindObjectArray, n
			rest = base
		}
		p.Interface = strings.TrimPrefix(rest, ":")
	default:
		if base, n, ok := cutLen(expr); ok && n < 0 {
			elem, err := d.valueType(base, path)
			if err != nil {
				return Param{}, err
			}
			p.Kind, p.Type = KindArray, elem
			break
		}
		t, err := d.valueType(expr, path)
		if err != nil {
			return Param{}, err
		}
		p.Kind, p.Type = KindValue, t
	}
	return p, nil
}

// valueType resolves primitives, declared structs, fixed arrays and, for
// struct fields, embedded objects.
func (d *Document) valueType(expr string, path []string) (*layout.Type, error) {
	expr = strings.TrimSpace(expr)
	if base, n, ok := cutLen(expr); ok {
		if n < 0 {
			return nil, errors.InvalidData(errors.PhaseParse, path, "variable arrays are only allowed as parameters")
		}
		elem, err := d.valueType(base, path)
		if err != nil {
			return nil, err
		}
		return layout.ArrayOf(elem, n), nil
	}
	if t, ok := layout.ParsePrimitive(expr); ok {
		return t, nil
	}
	if expr == "object" || strings.HasPrefix(expr, "object:") {
		return layout.ObjectOf(strings.TrimPrefix(strings.TrimPrefix(expr, "object"), ":")), nil
	}
	if t, ok := d.structs[expr]; ok {
		return t, nil
	}
	return nil, errors.NotFound(errors.PhaseParse, path, "type "+strconv.Quote(expr))
}

// cutLen splits a trailing "[N]" or "[]" suffix. n is -1 for "[]".
func cutLen(expr string) (base string, n int, ok bool) {
	if !strings.HasSuffix(expr, "]") {
		return expr, 0, false
	}
	open := strings.LastIndexByte(expr, '[')
	if open < 0 {
		return expr, 0, false
	}
	inner := expr[open+1 : len(expr)-1]
	if inner == "" {
		return expr[:open], -1, true
	}
	v, err := strconv.Atoi(inner)
	if err != nil || v < 0 {
		return expr, 0, false
	}
	return expr[:open], v, true
}

// Interface returns a declared interface by name.
func (d *Document) Interface(name string) (*Interface, bool) {
	ifc, ok := d.interfaces[name]
	return ifc, ok
}

// Struct returns a declared struct type by name.
func (d *Document) Struct(name string) (*layout.Type, bool) {
	t, ok := d.structs[name]
	return t, ok
}

// Interfaces returns declared interfaces in file order.
func (d *Document) Interfaces() []*Interface {
	out := make([]*Interface, len(d.order))
	for i, name := range d.order {
		out[i] = d.interfaces[name]
	}
	return out
}

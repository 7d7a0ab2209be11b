package itest

import (
	"github.com/wippyai/object-abi/dispatch"
	"github.com/wippyai/object-abi/object"
)

var test1Handlers = dispatch.Handlers[*Test1]{
	"test_f1": func(t *Test1, c *dispatch.Call) error {
		a, err := dispatch.In[uint32](c, "a")
		if err != nil {
			return err
		}
		b, err := t.TestF1(a)
		if err != nil {
			return err
		}
		return dispatch.Out(c, "b", b)
	},
	"in_struct": func(t *Test1, c *dispatch.Call) error {
		in, err := dispatch.In[Collection](c, "input")
		if err != nil {
			return err
		}
		return t.InStruct(in)
	},
	"out_struct": func(t *Test1, c *dispatch.Call) error {
		out, err := t.OutStruct()
		if err != nil {
			return err
		}
		return dispatch.Out(c, "output", out)
	},
	"in_small_struct": func(t *Test1, c *dispatch.Call) error {
		in, err := dispatch.In[SingleEncapsulated](c, "input")
		if err != nil {
			return err
		}
		return t.InSmallStruct(in)
	},
	"out_small_struct": func(t *Test1, c *dispatch.Call) error {
		out, err := t.OutSmallStruct()
		if err != nil {
			return err
		}
		return dispatch.Out(c, "output", out)
	},
	"single_out": func(t *Test1, c *dispatch.Call) error {
		v, err := t.SingleOut()
		if err != nil {
			return err
		}
		return dispatch.Out(c, "output", v)
	},
	"single_in": func(t *Test1, c *dispatch.Call) error {
		v, err := dispatch.In[uint32](c, "input")
		if err != nil {
			return err
		}
		return t.SingleIn(v)
	},
	"multiple_primitive": func(t *Test1, c *dispatch.Call) error {
		input, err := dispatch.In[uint16](c, "input")
		if err != nil {
			return err
		}
		input2, err := dispatch.In[uint32](c, "input2")
		if err != nil {
			return err
		}
		out, out2, err := t.MultiplePrimitive(input, input2)
		if err != nil {
			return err
		}
		for _, name := range []string{"unused_out", "unused_out2"} {
			if err := dispatch.SetOutLen(c, name, 0); err != nil {
				return err
			}
		}
		if err := dispatch.Out(c, "output", out); err != nil {
			return err
		}
		return dispatch.Out(c, "output2", out2)
	},
	"primitive_plus_struct_in": func(t *Test1, c *dispatch.Call) error {
		s, err := dispatch.In[SingleEncapsulated](c, "encapsulated")
		if err != nil {
			return err
		}
		magic, err := dispatch.In[uint32](c, "magic")
		if err != nil {
			return err
		}
		return t.PrimitivePlusStructIn(s, magic)
	},
	"primitive_plus_struct_out": func(t *Test1, c *dispatch.Call) error {
		s, magic, err := t.PrimitivePlusStructOut()
		if err != nil {
			return err
		}
		if err := dispatch.Out(c, "encapsulated", s); err != nil {
			return err
		}
		return dispatch.Out(c, "magic", magic)
	},
	"bundled_with_unbundled": func(t *Test1, c *dispatch.Call) error {
		b, err := dispatch.In[SingleEncapsulated](c, "bundled")
		if err != nil {
			return err
		}
		magic, err := dispatch.In[uint32](c, "magic")
		if err != nil {
			return err
		}
		u, err := dispatch.In[Collection](c, "unbundled")
		if err != nil {
			return err
		}
		return t.BundledWithUnbundled(b, magic, u)
	},
	"struct_array_in": func(t *Test1, c *dispatch.Call) error {
		in, err := dispatch.InSlice[Collection](c, "s_in")
		if err != nil {
			return err
		}
		return t.StructArrayIn(in)
	},
	"struct_array_out": func(t *Test1, c *dispatch.Call) error {
		n, err := dispatch.OutCap(c, "s_out")
		if err != nil {
			return err
		}
		out := make([]Collection, n)
		if err := t.StructArrayOut(out); err != nil {
			return err
		}
		return dispatch.OutSlice(c, "s_out", out)
	},
	"well_documented_method": func(t *Test1, c *dispatch.Call) error {
		foo, err := dispatch.In[uint32](c, "foo")
		if err != nil {
			return err
		}
		bar, err := t.WellDocumentedMethod(foo)
		if err != nil {
			return err
		}
		return dispatch.Out(c, "bar", bar)
	},
	"test_obj_array_in": func(t *Test1, c *dispatch.Call) error {
		objs, err := dispatch.InObjects(c, "o_in")
		if err != nil {
			return err
		}
		a, err := t.TestObjArrayIn(objs)
		if err != nil {
			return err
		}
		return dispatch.Out(c, "a", a)
	},
	"test_obj_array_out": func(t *Test1, c *dispatch.Call) error {
		objs, a, err := t.TestObjArrayOut()
		if err != nil {
			return err
		}
		if err := dispatch.SetObjects(c, "o_out", objs); err != nil {
			for _, o := range objs {
				object.ReleaseIf(o)
			}
			return err
		}
		return dispatch.Out(c, "a", a)
	},
}

func extraTest3(t *Test1, c *dispatch.Call) error {
	v, err := t.ExtraTest3()
	if err != nil {
		return err
	}
	return dispatch.Out(c, "flag", v)
}

var test2Handlers = dispatch.Handlers[*Test2]{
	"entrypoint": func(t *Test2, c *dispatch.Call) error {
		o, err := dispatch.InObject(c, "o")
		if err != nil {
			return err
		}
		return t.Entrypoint(o)
	},
	"hold": func(t *Test2, c *dispatch.Call) error {
		in, err := dispatch.In[Holder](c, "h_in")
		if err != nil {
			return err
		}
		out, err := t.Hold(in)
		if err != nil {
			return err
		}
		if err := dispatch.Out(c, "h_out", out); err != nil {
			object.ReleaseIf(out.Obj)
			return err
		}
		return nil
	},
}

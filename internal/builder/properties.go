package builder

import (
	"github.com/hangy/AntiXss-sub003/internal/props"
)

// RegisterString interns s in the document's value store. The caller owns
// the returned reference.
func (b *Builder) RegisterString(s string) (props.Value, error) {
	if err := b.ready(); err != nil {
		return props.Null, err
	}
	v, err := b.doc.Values.RegisterString(s)
	return v, b.fail(err)
}

// RegisterMultiValue interns a list of values. The caller owns the returned
// reference.
func (b *Builder) RegisterMultiValue(values []props.Value) (props.Value, error) {
	if err := b.ready(); err != nil {
		return props.Null, err
	}
	v, err := b.doc.Values.RegisterMultiValue(values)
	return v, b.fail(err)
}

// RegisterStyle interns a named bundle of properties. The caller owns the
// returned reference.
func (b *Builder) RegisterStyle(name string, flags props.FlagProperties, list []props.Property) (props.StyleHandle, error) {
	if err := b.ready(); err != nil {
		return props.StyleEmpty, err
	}
	h, err := b.doc.Values.RegisterStyle(name, flags, list)
	return h, b.fail(err)
}

// Release drops a reference obtained from a Register method.
func (b *Builder) Release(v props.Value) error {
	return b.fail(b.doc.Values.Release(v))
}

// ReleaseStyle drops a style reference obtained from RegisterStyle.
func (b *Builder) ReleaseStyle(h props.StyleHandle) error {
	return b.fail(b.doc.Values.ReleaseStyle(h))
}

func (b *Builder) top() *frame {
	return &b.frames[len(b.frames)-1]
}

// SetFlag sets a flag on the innermost open container.
func (b *Builder) SetFlag(p props.Precedence, id props.FlagID, on bool) error {
	if err := b.ready(); err != nil {
		return err
	}
	switch f := b.top(); f.state {
	case stateBeforeContent:
		f.acc.SetFlag(p, id, on)
	case stateHasNode:
		b.doc.Node(f.node).FlagProps.Set(id, on)
		f.flags.Set(id, on)
	case stateFlushed:
		f.flags.Set(id, on)
	}
	return nil
}

// SetProperty sets a property on the innermost open container. Once the
// container has a node, the write goes straight to the node regardless of
// precedence. The caller keeps its own reference on v.
func (b *Builder) SetProperty(p props.Precedence, id props.ID, v props.Value) error {
	if err := b.ready(); err != nil {
		return err
	}
	switch f := b.top(); f.state {
	case stateBeforeContent:
		return b.fail(f.acc.Set(p, id, v))
	case stateHasNode:
		if v.IsNull() {
			return nil
		}
		if err := b.doc.SetProperty(f.node, id, v); err != nil {
			return b.fail(err)
		}
		return b.fail(b.setOwn(f, id, v))
	default:
		if v.IsNull() {
			return nil
		}
		return b.fail(b.setOwn(f, id, v))
	}
}

// setOwn records v in the folded properties of a committed frame.
func (b *Builder) setOwn(f *frame, id props.ID, v props.Value) error {
	b.doc.Values.AddRef(v)
	var old props.Value
	f.list, old = props.Upsert(f.list, id, v)
	return b.doc.Values.Release(old)
}

// SetStringProperty registers s and sets it as property id.
func (b *Builder) SetStringProperty(p props.Precedence, id props.ID, s string) error {
	v, err := b.RegisterString(s)
	if err != nil {
		return err
	}
	if err := b.SetProperty(p, id, v); err != nil {
		return err
	}
	return b.Release(v)
}

// SetMultiValueProperty registers values and sets the list as property id.
func (b *Builder) SetMultiValueProperty(p props.Precedence, id props.ID, values []props.Value) error {
	v, err := b.RegisterMultiValue(values)
	if err != nil {
		return err
	}
	if err := b.SetProperty(p, id, v); err != nil {
		return err
	}
	return b.Release(v)
}

// SetStyleReference merges the contents of style h into the innermost open
// container without overriding what it already sets.
func (b *Builder) SetStyleReference(p props.Precedence, h props.StyleHandle) error {
	if err := b.ready(); err != nil {
		return err
	}
	f := b.top()
	if f.state == stateBeforeContent {
		f.acc.MergeStyle(p, h)
		return nil
	}
	st := b.doc.Values.Style(h)
	if f.state == stateHasNode {
		n := b.doc.Node(f.node)
		n.FlagProps = n.FlagProps.MergeUndefined(st.Flags)
		for _, prop := range st.Props {
			if n.PropMask.Has(prop.ID) {
				continue
			}
			if err := b.doc.SetProperty(f.node, prop.ID, prop.Value); err != nil {
				return b.fail(err)
			}
		}
	}
	f.flags = f.flags.MergeUndefined(st.Flags)
	for _, prop := range st.Props {
		if !props.Find(f.list, prop.ID).IsNull() {
			continue
		}
		b.doc.Values.AddRef(prop.Value)
		f.list, _ = props.Upsert(f.list, prop.ID, prop.Value)
	}
	return nil
}

// Property returns the value the innermost open container currently sets
// for id, or props.Null.
func (b *Builder) Property(id props.ID) props.Value {
	switch f := b.top(); f.state {
	case stateBeforeContent:
		return f.acc.Get(id)
	case stateHasNode:
		return b.doc.Property(f.node, id)
	default:
		return props.Find(f.list, id)
	}
}

// Flags returns the flags the innermost open container currently sets.
func (b *Builder) Flags() props.FlagProperties {
	switch f := b.top(); f.state {
	case stateBeforeContent:
		return f.acc.Flags()
	case stateHasNode:
		return b.doc.Node(f.node).FlagProps
	default:
		return f.flags
	}
}

package interp

import (
	"kipper/internal/ast"
	"kipper/internal/binding"
	"kipper/internal/heap"
	"kipper/internal/value"
)

// RefKind distinguishes the three lvalue shapes the language's
// assignment and increment/decrement operators can target.
type RefKind uint8

const (
	RefNamed RefKind = iota
	RefKeyed
	RefDotted
)

// Reference is the short-lived lvalue bundle produced while evaluating
// the left-hand side of an assignment or an increment/decrement operand;
// it is never stored on the heap.
type Reference struct {
	Kind RefKind
	Ctx  *binding.Context // for RefNamed
	Name value.Addr       // for RefNamed: interned symbol
	Base value.Word       // for RefKeyed/RefDotted
	Key  value.Word       // for RefKeyed: evaluated key; for RefDotted: the property name as a Word (unused, Name below carries it)
	Prop value.Addr       // for RefDotted: interned property symbol
}

// evalReference builds a Reference from expr without reading through it;
// anything other than an identifier or member/index expression is not a
// valid lvalue.
func (i *Interpreter) evalReference(ctx *binding.Context, expr ast.Expr) (Reference, error) {
	switch n := expr.(type) {
	case *ast.Ident:
		nameAddr, err := i.Heap.Symbols().Intern([]byte(n.Name))
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: RefNamed, Ctx: ctx, Name: nameAddr}, nil
	case *ast.Index:
		base, err := i.evalExpr(ctx, n.Target)
		if err != nil {
			return Reference{}, err
		}
		key, err := i.evalExpr(ctx, n.Key)
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: RefKeyed, Base: base, Key: key}, nil
	case *ast.Member:
		base, err := i.evalExpr(ctx, n.Target)
		if err != nil {
			return Reference{}, err
		}
		propAddr, err := i.Heap.Symbols().Intern([]byte(n.Name))
		if err != nil {
			return Reference{}, err
		}
		return Reference{Kind: RefDotted, Base: base, Prop: propAddr}, nil
	default:
		return Reference{}, referenceError("expression is not assignable")
	}
}

// GetValue reads through a Reference, yielding Undefined wherever the
// spec calls for a silent miss rather than an error.
func (i *Interpreter) GetValue(ref Reference) (value.Word, error) {
	switch ref.Kind {
	case RefNamed:
		w, _ := ref.Ctx.Resolve(ref.Name)
		return w, nil
	case RefKeyed:
		return i.getKeyed(ref.Base, ref.Key)
	case RefDotted:
		return i.getProperty(ref.Base, ref.Prop)
	default:
		return value.Undefined, referenceError("invalid reference")
	}
}

func (i *Interpreter) getKeyed(base, key value.Word) (value.Word, error) {
	if !value.IsHeapObject(base) {
		return value.Undefined, nil
	}
	addr := value.AsAddr(base)
	kind := i.Heap.Kind(addr)
	if kind == heap.KindKSArray && i.isNumeric(key) {
		idx := value.ToInt32(i.ToNumber(key))
		if idx < 0 {
			return value.Undefined, nil
		}
		return i.Heap.KSArrayGet(addr, uint32(idx)), nil
	}
	keyWord, err := i.ToStringWord(key)
	if err != nil {
		return value.Undefined, err
	}
	return i.getPropertyByStringWord(addr, kind, keyWord)
}

func (i *Interpreter) getProperty(base value.Word, prop value.Addr) (value.Word, error) {
	if !value.IsHeapObject(base) {
		return value.Undefined, nil
	}
	addr := value.AsAddr(base)
	return i.getPropertyByAddr(addr, i.Heap.Kind(addr), prop)
}

func (i *Interpreter) getPropertyByStringWord(addr value.Addr, kind heap.Kind, keyWord value.Word) (value.Word, error) {
	if !value.IsHeapObject(keyWord) {
		return value.Undefined, nil
	}
	return i.getPropertyByAddr(addr, kind, value.AsAddr(keyWord))
}

// getPropertyByAddr consults property interceptors before the object's
// own HashTable; String objects have no HashTable at all, so a miss
// there always yields Undefined rather than touching heap fields a
// String doesn't have.
func (i *Interpreter) getPropertyByAddr(addr value.Addr, kind heap.Kind, prop value.Addr) (value.Word, error) {
	key := string(i.Heap.StringBytes(prop))
	for _, ic := range i.interceptors {
		if ic.Kind == kind && ic.Key == key {
			return ic.Fn(i, addr), nil
		}
	}
	if kind != heap.KindKSObject && kind != heap.KindKSArray {
		return value.Undefined, nil
	}
	w, _ := i.Heap.GetProperty(addr, prop)
	return w, nil
}

// SetValue writes through a Reference, applying the write barrier (via
// the heap's mutating setters) on every path that touches heap memory.
func (i *Interpreter) SetValue(ref Reference, val value.Word) error {
	switch ref.Kind {
	case RefNamed:
		if !ref.Ctx.Set(ref.Name, val) {
			ref.Ctx.Push(ref.Name, val)
		}
		return nil
	case RefKeyed:
		return i.setKeyed(ref.Base, ref.Key, val)
	case RefDotted:
		return i.setProperty(ref.Base, ref.Prop, val)
	default:
		return referenceError("invalid reference")
	}
}

func (i *Interpreter) setKeyed(base, key, val value.Word) error {
	if !value.IsHeapObject(base) {
		return nil
	}
	addr := value.AsAddr(base)
	kind := i.Heap.Kind(addr)
	if kind == heap.KindKSArray && i.isNumeric(key) {
		idx := value.ToInt32(i.ToNumber(key))
		if idx >= 0 {
			i.Heap.KSArraySet(addr, uint32(idx), val)
		}
		return nil
	}
	keyWord, err := i.ToStringWord(key)
	if err != nil {
		return err
	}
	if !value.IsHeapObject(keyWord) || (kind != heap.KindKSObject && kind != heap.KindKSArray) {
		return nil
	}
	return i.Heap.SetProperty(addr, value.AsAddr(keyWord), val)
}

func (i *Interpreter) setProperty(base value.Word, prop value.Addr, val value.Word) error {
	if !value.IsHeapObject(base) {
		return nil
	}
	addr := value.AsAddr(base)
	kind := i.Heap.Kind(addr)
	if kind != heap.KindKSObject && kind != heap.KindKSArray {
		return nil
	}
	return i.Heap.SetProperty(addr, prop, val)
}

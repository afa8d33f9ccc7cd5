package gaffer

import (
	"fmt"
	"reflect"
)

// Reference points at another identifier (or type name) from inside a
// definition's entity or argument list. Behavior controls how the nested
// lookup reacts to missing or ambiguous targets.
type Reference struct {
	Target   string
	Behavior InvalidBehavior
}

// Ref creates a reference that fails if the target is missing or ambiguous.
func Ref(target string) *Reference {
	return &Reference{Target: target}
}

// OptionalRef creates a reference that resolves to nil when the target is
// missing instead of failing.
func OptionalRef(target string) *Reference {
	return &Reference{Target: target, Behavior: NilOnMissing}
}

// CollectRef creates a reference that resolves to every service satisfying
// the target type name, as a []any in index order.
func CollectRef(target string) *Reference {
	return &Reference{Target: target, Behavior: CollectAll}
}

// String returns the reference in @target notation.
func (r *Reference) String() string {
	switch r.Behavior {
	case NilOnMissing:
		return "@?" + r.Target
	case CollectAll:
		return "@*" + r.Target
	default:
		return "@" + r.Target
	}
}

// FieldBinding assigns a value to an exported field after construction.
type FieldBinding struct {
	Field string
	Value any
}

// CallBinding invokes a method with resolved arguments after construction.
type CallBinding struct {
	Method string
	Args   []any
}

// Definition is the stored recipe for producing a service value. It is built
// fluently and remains a mutable template until the identifier it is
// registered under is first resolved; after that, a shared definition is
// pinned to its cached value until the container is Reset.
type Definition struct {
	// Entity is the thing to resolve: a literal value, a *Reference, a
	// constructor function, a struct reflect.Type, or a nested *Definition.
	Entity any

	// Args are positional construction arguments. Each element is a literal,
	// a *Reference, or a nested *Definition resolved in place.
	Args []any

	// Defaults maps a parameter position to a fallback value used when the
	// position has no declared argument and no autowire candidate.
	Defaults map[int]any

	Shared   bool
	Public   bool
	Abstract bool
	Lazy     bool

	// Types are the declared type names this definition satisfies, feeding
	// the container's type index.
	Types []string

	// Tags are opaque labels consumed by external collaborators.
	Tags []string

	Deprecated        bool
	DeprecationNotice string

	FieldBindings []FieldBinding
	CallBindings  []CallBinding
}

// NewDefinition creates a definition for the given entity and positional
// arguments. Definitions are shared and public by default.
func NewDefinition(entity any, args ...any) *Definition {
	return &Definition{
		Entity: entity,
		Args:   args,
		Shared: true,
		Public: true,
	}
}

// SetShared sets the sharing policy: shared definitions cache their first
// constructed value, non-shared definitions construct on every request.
func (d *Definition) SetShared(shared bool) *Definition {
	d.Shared = shared
	return d
}

// SetPublic sets the visibility. Private definitions resolve normally as
// nested references but cannot be requested through a top-level Get.
func (d *Definition) SetPublic(public bool) *Definition {
	d.Public = public
	return d
}

// SetAbstract marks the definition as a template that cannot be resolved
// directly.
func (d *Definition) SetAbstract(abstract bool) *Definition {
	d.Abstract = abstract
	return d
}

// SetLazy defers construction behind a *Deferred wrapper.
func (d *Definition) SetLazy(lazy bool) *Definition {
	d.Lazy = lazy
	return d
}

// As declares type names this definition satisfies, in index order.
// Duplicate declarations are ignored.
func (d *Definition) As(types ...string) *Definition {
	for _, t := range types {
		if !containsString(d.Types, t) {
			d.Types = append(d.Types, t)
		}
	}
	return d
}

// Tagged attaches opaque tags. Duplicate tags are ignored.
func (d *Definition) Tagged(tags ...string) *Definition {
	for _, tag := range tags {
		if !containsString(d.Tags, tag) {
			d.Tags = append(d.Tags, tag)
		}
	}
	return d
}

// Deprecate flags the definition. The notice is logged each time the service
// is constructed; an empty notice gets a standard message.
func (d *Definition) Deprecate(notice string) *Definition {
	d.Deprecated = true
	d.DeprecationNotice = notice
	return d
}

// WithDefault declares a fallback value for the parameter at position.
func (d *Definition) WithDefault(position int, value any) *Definition {
	if d.Defaults == nil {
		d.Defaults = make(map[int]any)
	}
	d.Defaults[position] = value
	return d
}

// BindField schedules a post-construction field assignment. The value may be
// a literal, a *Reference, or a nested *Definition.
func (d *Definition) BindField(field string, value any) *Definition {
	d.FieldBindings = append(d.FieldBindings, FieldBinding{Field: field, Value: value})
	return d
}

// BindCall schedules a post-construction method invocation.
func (d *Definition) BindCall(method string, args ...any) *Definition {
	d.CallBindings = append(d.CallBindings, CallBinding{Method: method, Args: args})
	return d
}

// entityKind is the explicit classification of a definition's entity. The
// binder dispatches on it instead of probing with trial construction.
type entityKind int

const (
	entityLiteral entityKind = iota
	entityReference
	entityConstructor
	entityStructType
	entityDefinition
)

func (k entityKind) String() string {
	switch k {
	case entityLiteral:
		return "literal"
	case entityReference:
		return "reference"
	case entityConstructor:
		return "constructor"
	case entityStructType:
		return "struct"
	case entityDefinition:
		return "definition"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// classifyEntity tags the entity before dispatch.
func classifyEntity(entity any) entityKind {
	switch e := entity.(type) {
	case nil:
		return entityLiteral
	case *Reference:
		return entityReference
	case *Definition:
		return entityDefinition
	case reflect.Type:
		if e.Kind() == reflect.Struct || (e.Kind() == reflect.Pointer && e.Elem().Kind() == reflect.Struct) {
			return entityStructType
		}
		return entityLiteral
	default:
		if reflect.TypeOf(entity).Kind() == reflect.Func {
			return entityConstructor
		}
		return entityLiteral
	}
}

// TypeOf returns the canonical type name for T, the same name the autowirer
// derives for constructor parameters and struct fields. Use it with
// Definition.As to keep declared types and autowired lookups in agreement.
func TypeOf[T any]() string {
	return typeName(reflect.TypeOf((*T)(nil)).Elem())
}

// typeName renders a reflect.Type the way the type index keys it: short names
// for named types, pointer spelled as *Name, everything else as String().
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeName(t.Elem())
	case reflect.Slice:
		return "[]" + typeName(t.Elem())
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}

// isEnumType reports whether t is a defined scalar type ("backed enum"): a
// named type outside the universe block whose underlying kind is an integer
// or a string.
func isEnumType(t reflect.Type) bool {
	if t.PkgPath() == "" || t.Name() == "" {
		return false
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
		return true
	default:
		return false
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package gaffer

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"

	"go.uber.org/zap"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// resolve is the resolution engine. The caller holds c.mu. The lookup order
// is fixed: alias rewrite, shared cache, definition store, type index, then
// not-found. external marks a top-level Get, which cannot see private
// definitions.
func (c *Container) resolve(id string, behavior InvalidBehavior, external bool) (any, error) {
	if target, ok := c.aliases[id]; ok {
		id = target
	}

	def, hasDef := c.definitions[id]

	if external && hasDef && !def.Public {
		if behavior == NilOnMissing {
			return nil, nil
		}
		return nil, NotFoundError{ID: id, Hint: "service is private"}
	}

	if value, ok := c.shared[id]; ok {
		return value, nil
	}

	if hasDef {
		return c.construct(id, def)
	}

	if ids := c.typeIndex[id]; len(ids) > 0 {
		return c.resolveType(id, ids, behavior)
	}

	if behavior == NilOnMissing {
		return nil, nil
	}
	return nil, NotFoundError{ID: id, Suggestion: closestID(id, c.knownIDs(external))}
}

// resolveType answers a lookup that landed in the type index. Exactly one
// candidate resolves transparently; CollectAll always yields the full ordered
// collection; any other behavior fails on multiplicity with the candidates in
// natural sort order.
func (c *Container) resolveType(typeName string, ids []string, behavior InvalidBehavior) (any, error) {
	if behavior == CollectAll {
		values := make([]any, 0, len(ids))
		for _, id := range ids {
			value, err := c.resolve(id, ErrorOnMultiple, false)
			if err != nil {
				return nil, err
			}
			values = append(values, value)
		}
		return values, nil
	}

	if len(ids) == 1 {
		return c.resolve(ids[0], ErrorOnMultiple, false)
	}

	return nil, MultipleServicesError{Type: typeName, Candidates: naturalSorted(ids)}
}

// construct drives the loading state machine for one identifier: cycle and
// depth checks, the abstract guard, instantiation, bindings, caching, and the
// deprecation notice. The loading marker is released on every exit path.
func (c *Container) construct(id string, def *Definition) (any, error) {
	if c.loading.Depth() >= c.maxDepth {
		return nil, MaxDepthError{ID: id, MaxDepth: c.maxDepth}
	}

	if err := c.loading.Enter(id); err != nil {
		return nil, err
	}
	defer c.loading.Leave(id)

	if def.Abstract {
		return nil, AbstractServiceError{ID: id}
	}

	if def.Lazy {
		value := newDeferred(c, id)
		if def.Shared {
			c.shared[id] = value
		}
		return value, nil
	}

	return c.constructEager(id, def, def.Shared)
}

// constructEager builds the value for id. Bindings run while the loading
// marker is still held so that a binding re-entering id is reported as a
// cycle, and the shared cache is only populated after bindings succeed. A
// failed construction must never leave a partial value in the cache.
func (c *Container) constructEager(id string, def *Definition, cache bool) (any, error) {
	value, err := c.instantiate(id, def)
	if err != nil {
		return nil, err
	}

	if err := c.applyBindings(id, def, value); err != nil {
		return nil, err
	}

	if cache {
		c.shared[id] = value
	}

	if def.Deprecated {
		notice := def.DeprecationNotice
		if notice == "" {
			notice = "this service is deprecated"
		}
		c.logger.Warn("deprecated service resolved",
			zap.String("container", c.id),
			zap.String("service", id),
			zap.String("notice", notice))
	}

	c.logger.Debug("service constructed",
		zap.String("container", c.id),
		zap.String("service", id),
		zap.Bool("shared", def.Shared))

	return value, nil
}

// instantiate dispatches on the entity's classification.
func (c *Container) instantiate(id string, def *Definition) (any, error) {
	switch classifyEntity(def.Entity) {
	case entityLiteral:
		return def.Entity, nil
	case entityReference:
		return c.resolveReference(def.Entity.(*Reference))
	case entityDefinition:
		return c.inlineValue(id, def.Entity.(*Definition))
	case entityConstructor:
		return c.invokeConstructor(id, def, reflect.ValueOf(def.Entity))
	case entityStructType:
		return c.buildStruct(id, def, def.Entity.(reflect.Type))
	default:
		return nil, ConstructorError{ID: id, Cause: fmt.Errorf("unsupported entity %T", def.Entity)}
	}
}

// resolveReference resolves a nested reference, translating its own
// invalid-behavior hint.
func (c *Container) resolveReference(ref *Reference) (any, error) {
	return c.resolve(ref.Target, ref.Behavior, false)
}

// inlineValue builds a nested anonymous definition. It has no identifier of
// its own: no caching, and cycle detection continues under the owning id.
func (c *Container) inlineValue(ownerID string, nested *Definition) (any, error) {
	value, err := c.instantiate(ownerID, nested)
	if err != nil {
		return nil, err
	}
	if err := c.applyBindings(ownerID, nested, value); err != nil {
		return nil, err
	}
	return value, nil
}

// argumentValue resolves one declared argument: references and nested
// definitions recurse through the engine, everything else is a literal.
func (c *Container) argumentValue(ownerID string, raw any) (any, error) {
	switch v := raw.(type) {
	case *Reference:
		return c.resolveReference(v)
	case *Definition:
		return c.inlineValue(ownerID, v)
	default:
		return raw, nil
	}
}

// invokeConstructor calls a constructor function with positionally bound
// arguments. A trailing error return is honored; panics are captured.
func (c *Container) invokeConstructor(id string, def *Definition, fn reflect.Value) (any, error) {
	fnType := fn.Type()
	numIn := fnType.NumIn()
	fixed := numIn
	if fnType.IsVariadic() {
		fixed = numIn - 1
	}

	in := make([]reflect.Value, 0, numIn)
	for i := 0; i < fixed; i++ {
		arg, err := c.bindParameter(id, def, i, fnType.In(i))
		if err != nil {
			return nil, err
		}
		in = append(in, arg)
	}

	if fnType.IsVariadic() {
		variadic, err := c.bindVariadic(id, def, fixed, fnType.In(numIn-1).Elem())
		if err != nil {
			return nil, err
		}
		in = append(in, variadic...)
	}

	results, err := callConstructor(id, fn, in)
	if err != nil {
		return nil, err
	}

	if n := len(results); n > 0 && results[n-1].Type() == errorType {
		if !results[n-1].IsNil() {
			return nil, ConstructorError{ID: id, Cause: results[n-1].Interface().(error)}
		}
		results = results[:n-1]
	}

	if len(results) == 0 {
		return nil, ConstructorError{ID: id, Cause: errors.New("constructor returned no value")}
	}
	return results[0].Interface(), nil
}

// callConstructor invokes fn, converting a panic into a typed error.
func callConstructor(id string, fn reflect.Value, in []reflect.Value) (results []reflect.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = ConstructorPanicError{ID: id, Panic: p, Stack: debug.Stack()}
		}
	}()

	return fn.Call(in), nil
}

// bindParameter produces the value for one constructor parameter, in strict
// order: declared argument, autowire by parameter type, declared default.
// A NotFound from the autowire probe is expected and swallowed; every other
// error propagates. Defined-scalar (enum) parameters take the strict path:
// they demand an explicit value of a matching kind and are never autowired.
func (c *Container) bindParameter(id string, def *Definition, i int, paramType reflect.Type) (reflect.Value, error) {
	if isEnumType(paramType) {
		return c.bindEnumParameter(id, def, i, paramType)
	}

	if i < len(def.Args) {
		raw, err := c.argumentValue(id, def.Args[i])
		if err != nil {
			return reflect.Value{}, err
		}
		arg, err := coerce(raw, paramType)
		if err != nil {
			return reflect.Value{}, ConstructorError{ID: id, Cause: fmt.Errorf("argument #%d: %w", i, err)}
		}
		return arg, nil
	}

	value, err := c.resolve(typeName(paramType), ErrorOnMultiple, false)
	if err == nil {
		arg, cerr := coerce(value, paramType)
		if cerr != nil {
			return reflect.Value{}, ConstructorError{ID: id, Cause: fmt.Errorf("autowired argument #%d: %w", i, cerr)}
		}
		return arg, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return reflect.Value{}, err
	}

	if fallback, ok := def.Defaults[i]; ok {
		arg, cerr := coerce(fallback, paramType)
		if cerr != nil {
			return reflect.Value{}, ConstructorError{ID: id, Cause: fmt.Errorf("default for argument #%d: %w", i, cerr)}
		}
		return arg, nil
	}

	return reflect.Value{}, UnresolvableArgumentError{Service: id, Parameter: i, Type: typeName(paramType)}
}

// bindEnumParameter binds a defined-scalar parameter from an explicit
// declared argument or default only.
func (c *Container) bindEnumParameter(id string, def *Definition, i int, paramType reflect.Type) (reflect.Value, error) {
	var raw any
	switch {
	case i < len(def.Args):
		raw = def.Args[i]
	default:
		fallback, ok := def.Defaults[i]
		if !ok {
			return reflect.Value{}, EnumValueError{Service: id, Parameter: i, Type: typeName(paramType)}
		}
		raw = fallback
	}

	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || !scalarKindsMatch(rv.Kind(), paramType.Kind()) || !rv.Type().ConvertibleTo(paramType) {
		return reflect.Value{}, EnumValueError{Service: id, Parameter: i, Type: typeName(paramType), Value: raw}
	}
	return rv.Convert(paramType), nil
}

// bindVariadic resolves the declared arguments past the fixed parameters.
// A resolved collection ([]any) is expanded in place.
func (c *Container) bindVariadic(id string, def *Definition, from int, elemType reflect.Type) ([]reflect.Value, error) {
	if from >= len(def.Args) {
		return nil, nil
	}

	values := make([]reflect.Value, 0, len(def.Args)-from)
	for i, raw := range def.Args[from:] {
		resolved, err := c.argumentValue(id, raw)
		if err != nil {
			return nil, err
		}

		elements := []any{resolved}
		if collection, ok := resolved.([]any); ok {
			elements = collection
		}

		for _, element := range elements {
			arg, cerr := coerce(element, elemType)
			if cerr != nil {
				return nil, ConstructorError{ID: id, Cause: fmt.Errorf("variadic argument #%d: %w", from+i, cerr)}
			}
			values = append(values, arg)
		}
	}
	return values, nil
}

// buildStruct constructs a struct-type entity: a new instance with declared
// arguments assigned to exported fields in declaration order and unfilled
// exported fields autowired by type. The result is always a pointer.
func (c *Container) buildStruct(id string, def *Definition, t reflect.Type) (any, error) {
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	ptr := reflect.New(base)
	elem := ptr.Elem()

	var exported []int
	for i := 0; i < base.NumField(); i++ {
		if base.Field(i).IsExported() {
			exported = append(exported, i)
		}
	}

	if len(def.Args) > len(exported) {
		return nil, ConstructorError{ID: id, Cause: fmt.Errorf("%d arguments for %d exported fields of %s",
			len(def.Args), len(exported), typeName(base))}
	}

	for pos, fieldIdx := range exported {
		field := base.Field(fieldIdx)
		target := elem.Field(fieldIdx)

		if pos < len(def.Args) {
			if isEnumType(field.Type) {
				arg, err := c.bindEnumParameter(id, def, pos, field.Type)
				if err != nil {
					return nil, err
				}
				target.Set(arg)
				continue
			}

			raw, err := c.argumentValue(id, def.Args[pos])
			if err != nil {
				return nil, err
			}
			arg, cerr := coerce(raw, field.Type)
			if cerr != nil {
				return nil, ConstructorError{ID: id, Cause: fmt.Errorf("field %s: %w", field.Name, cerr)}
			}
			target.Set(arg)
			continue
		}

		if fallback, ok := def.Defaults[pos]; ok {
			arg, cerr := coerce(fallback, field.Type)
			if cerr != nil {
				return nil, ConstructorError{ID: id, Cause: fmt.Errorf("default for field %s: %w", field.Name, cerr)}
			}
			target.Set(arg)
			continue
		}

		if isEnumType(field.Type) {
			// Unfilled enum fields keep their zero value; autowiring defined
			// scalars by name would be guesswork.
			continue
		}

		value, err := c.resolve(typeName(field.Type), ErrorOnMultiple, false)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue // optional field, keep zero value
			}
			return nil, err
		}
		arg, cerr := coerce(value, field.Type)
		if cerr != nil {
			return nil, ConstructorError{ID: id, Cause: fmt.Errorf("autowired field %s: %w", field.Name, cerr)}
		}
		target.Set(arg)
	}

	return ptr.Interface(), nil
}

// applyBindings performs post-construction field sets and method calls.
// It runs while the owning identifier's loading marker is held, so bindings
// participate in cycle detection under the same identifier.
func (c *Container) applyBindings(id string, def *Definition, value any) error {
	if len(def.FieldBindings) == 0 && len(def.CallBindings) == 0 {
		return nil
	}

	rv := reflect.ValueOf(value)

	for _, binding := range def.FieldBindings {
		if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
			return BindingError{ID: id, Target: binding.Field,
				Cause: fmt.Errorf("cannot bind fields on %T", value)}
		}

		field := rv.Elem().FieldByName(binding.Field)
		if !field.IsValid() || !field.CanSet() {
			return BindingError{ID: id, Target: binding.Field,
				Cause: errors.New("no such settable field")}
		}

		raw, err := c.argumentValue(id, binding.Value)
		if err != nil {
			return BindingError{ID: id, Target: binding.Field, Cause: err}
		}
		arg, cerr := coerce(raw, field.Type())
		if cerr != nil {
			return BindingError{ID: id, Target: binding.Field, Cause: cerr}
		}
		field.Set(arg)
	}

	for _, binding := range def.CallBindings {
		method := rv.MethodByName(binding.Method)
		if !method.IsValid() {
			return BindingError{ID: id, Target: binding.Method,
				Cause: errors.New("no such method")}
		}

		methodType := method.Type()
		if len(binding.Args) != methodType.NumIn() {
			return BindingError{ID: id, Target: binding.Method,
				Cause: fmt.Errorf("method takes %d arguments, binding supplies %d",
					methodType.NumIn(), len(binding.Args))}
		}

		in := make([]reflect.Value, 0, len(binding.Args))
		for i, rawArg := range binding.Args {
			raw, err := c.argumentValue(id, rawArg)
			if err != nil {
				return BindingError{ID: id, Target: binding.Method, Cause: err}
			}
			arg, cerr := coerce(raw, methodType.In(i))
			if cerr != nil {
				return BindingError{ID: id, Target: binding.Method, Cause: cerr}
			}
			in = append(in, arg)
		}

		results := method.Call(in)
		if n := len(results); n > 0 && results[n-1].Type() == errorType && !results[n-1].IsNil() {
			return BindingError{ID: id, Target: binding.Method,
				Cause: results[n-1].Interface().(error)}
		}
	}

	return nil
}

// coerce adapts a resolved value to the requested type. Assignability wins;
// conversion is only attempted between compatible scalar kind classes, so a
// string never silently becomes an int.
func coerce(value any, want reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		default:
			return reflect.Value{}, fmt.Errorf("cannot use nil as %s", typeName(want))
		}
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(want) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(want) && scalarKindsMatch(rv.Kind(), want.Kind()) {
		return rv.Convert(want), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", value, typeName(want))
}

// scalarKindsMatch reports whether two kinds are in the same scalar class:
// numeric with numeric, string with string.
func scalarKindsMatch(a, b reflect.Kind) bool {
	return kindClass(a) != classOther && kindClass(a) == kindClass(b)
}

type scalarClass int

const (
	classOther scalarClass = iota
	classNumeric
	classString
)

func kindClass(k reflect.Kind) scalarClass {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return classNumeric
	case reflect.String:
		return classString
	default:
		return classOther
	}
}

package gaffer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gaffer-di/gaffer/internal/loadstack"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are base errors that are wrapped in typed errors when returned.
// Match against them with errors.Is; the typed errors carry the context.

var (
	// Resolution errors.
	ErrNotFound          = errors.New("service not found")
	ErrAbstractService   = errors.New("abstract service cannot be resolved")
	ErrMultipleServices  = errors.New("multiple services satisfy the requested type")
	ErrCircularReference = loadstack.ErrCycle

	// Registration errors.
	ErrFrozen        = errors.New("definition is frozen")
	ErrInvalidAlias  = errors.New("invalid alias")
	ErrNilDefinition = errors.New("definition cannot be nil")

	// Binder errors.
	ErrUnresolvableArgument = errors.New("unresolvable argument")
	ErrEnumValue            = errors.New("enum value mismatch")
)

var (
	_ error = NotFoundError{}
	_ error = FrozenError{}
	_ error = AbstractServiceError{}
	_ error = MultipleServicesError{}
	_ error = InvalidAliasError{}
	_ error = UnresolvableArgumentError{}
	_ error = EnumValueError{}
	_ error = MaxDepthError{}
	_ error = ConstructorError{}
	_ error = ConstructorPanicError{}
	_ error = BindingError{}
)

// CircularReferenceError reports a resolution chain that revisited an
// identifier still under construction. Path holds the full cycle, from the
// first occurrence of the repeated identifier back to itself.
type CircularReferenceError = loadstack.CycleError

// NotFoundError indicates an identifier with no definition, no alias, and no
// type-index entry. Suggestion names the closest known identifier when one is
// close enough to be plausible; Hint carries extra context such as privacy.
type NotFoundError struct {
	ID         string
	Suggestion string
	Hint       string
}

func (e NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "service %q not found", e.ID)
	if e.Hint != "" {
		b.WriteString(": ")
		b.WriteString(e.Hint)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n\nDid you mean %q?", e.Suggestion)
	}
	return b.String()
}

func (e NotFoundError) Unwrap() error {
	return ErrNotFound
}

// FrozenError indicates an attempt to replace a definition whose shared value
// is already cached. The container must be Reset before the identifier can be
// redefined.
type FrozenError struct {
	ID string
}

func (e FrozenError) Error() string {
	return fmt.Sprintf("cannot replace definition %q: its shared value is already constructed", e.ID)
}

func (e FrozenError) Unwrap() error {
	return ErrFrozen
}

// AbstractServiceError indicates a direct resolution attempt on a definition
// marked abstract. Abstract definitions exist only as templates.
type AbstractServiceError struct {
	ID string
}

func (e AbstractServiceError) Error() string {
	return fmt.Sprintf("service %q is abstract and cannot be resolved directly", e.ID)
}

func (e AbstractServiceError) Unwrap() error {
	return ErrAbstractService
}

// MultipleServicesError indicates a type query that demanded a single result
// but found several candidates. Candidates are in natural sort order; the
// message is bounded to first and last beyond three candidates.
type MultipleServicesError struct {
	Type       string
	Candidates []string
}

func (e MultipleServicesError) Error() string {
	return fmt.Sprintf("multiple services of type %q found: %s", e.Type, boundedList(e.Candidates))
}

func (e MultipleServicesError) Unwrap() error {
	return ErrMultipleServices
}

// InvalidAliasError indicates an alias that targets itself.
type InvalidAliasError struct {
	ID string
}

func (e InvalidAliasError) Error() string {
	return fmt.Sprintf("alias %q cannot target itself", e.ID)
}

func (e InvalidAliasError) Unwrap() error {
	return ErrInvalidAlias
}

// UnresolvableArgumentError indicates a constructor parameter with no declared
// argument, no autowire candidate, and no declared default.
type UnresolvableArgumentError struct {
	Service   string
	Parameter int
	Type      string
}

func (e UnresolvableArgumentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "service %q: cannot resolve argument #%d of type %s", e.Service, e.Parameter, e.Type)
	b.WriteString("\n\nProvide the argument explicitly, declare a default, or register a service of that type.")
	return b.String()
}

func (e UnresolvableArgumentError) Unwrap() error {
	return ErrUnresolvableArgument
}

// EnumValueError indicates a defined-scalar ("backed enum") parameter that was
// given a value of the wrong kind, or no explicit value at all.
type EnumValueError struct {
	Service   string
	Parameter int
	Type      string
	Value     any
}

func (e EnumValueError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("service %q: argument #%d of enum type %s requires an explicit value", e.Service, e.Parameter, e.Type)
	}
	return fmt.Sprintf("service %q: argument #%d of enum type %s cannot be built from %T(%v)", e.Service, e.Parameter, e.Type, e.Value, e.Value)
}

func (e EnumValueError) Unwrap() error {
	return ErrEnumValue
}

// MaxDepthError indicates the resolution chain exceeded the container's
// configured depth limit without detecting a cycle.
type MaxDepthError struct {
	ID       string
	MaxDepth int
}

func (e MaxDepthError) Error() string {
	return fmt.Sprintf("resolution of %q exceeded maximum depth of %d", e.ID, e.MaxDepth)
}

// ConstructorError wraps a failure raised by a constructor function itself,
// either through its error return or through an argument that could not be
// coerced to the parameter type.
type ConstructorError struct {
	ID    string
	Cause error
}

func (e ConstructorError) Error() string {
	return fmt.Sprintf("constructor for service %q failed: %v", e.ID, e.Cause)
}

func (e ConstructorError) Unwrap() error {
	return e.Cause
}

// ConstructorPanicError indicates a constructor panicked during invocation.
// It captures the panic value and stack trace for debugging.
type ConstructorPanicError struct {
	ID    string
	Panic any
	Stack []byte
}

func (e ConstructorPanicError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "constructor for service %q panicked: %v\n", e.ID, e.Panic)
	b.WriteString("\nConstructors should be pure dependency wiring; move fallible initialization out of them.\n")
	if len(e.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		b.Write(e.Stack)
	}
	return b.String()
}

// BindingError wraps a failure while applying a post-construction binding
// (field set or method call) to a freshly built service.
type BindingError struct {
	ID     string
	Target string // field or method name
	Cause  error
}

func (e BindingError) Error() string {
	return fmt.Sprintf("service %q: binding %q failed: %v", e.ID, e.Target, e.Cause)
}

func (e BindingError) Unwrap() error {
	return e.Cause
}

// boundedList renders candidate identifiers for error messages. More than
// three candidates collapse to "first, ..., last" to keep output bounded.
func boundedList(ids []string) string {
	if len(ids) > 3 {
		return ids[0] + ", ..., " + ids[len(ids)-1]
	}
	return strings.Join(ids, ", ")
}

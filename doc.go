// Package gaffer provides a string-keyed dependency injection container.
// Services are registered as definitions (construction recipes) under opaque
// string identifiers and resolved lazily on first request, with singleton
// caching, alias chains, type-based autowiring, and circular-reference
// detection that reports the full dependency path.
//
// # Overview
//
// The container maps identifiers to definitions. A definition describes how
// to produce a value: a literal, a reference to another identifier, a
// constructor function, or a struct type whose fields are filled positionally
// and by type. The library provides:
//   - Shared (singleton) and per-call (factory) definitions
//   - Alias chains, collapsed to a single hop at registration time
//   - A type index for autowired lookup by declared type name
//   - Cycle detection with the exact path (a -> b -> a) in the error
//   - Deterministic multiple-candidate reporting in natural sort order
//   - "Did you mean" suggestions on unknown identifiers
//   - Post-construction bindings (field sets and method calls)
//   - A frozen-snapshot surface for code-generation backends
//
// # Basic Usage
//
// Create a container, register definitions, and resolve:
//
//	c := gaffer.New()
//	c.Set("config", gaffer.NewDefinition(&Config{Path: "app.yml"}))
//	c.Set("logger", gaffer.NewDefinition(NewLogger, gaffer.Ref("config")))
//
//	logger, err := c.Get("logger")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Definitions
//
// Definitions are built fluently and remain mutable templates until first
// resolved. Once a shared definition's value is cached, replacing it fails
// with a frozen error; Reset clears the container back to empty.
//
//	c.Set("mailer", gaffer.NewDefinition(NewMailer).
//	    As("Mailer").
//	    Tagged("transport").
//	    Deprecate(`use "notifier" instead`))
//
// # Autowiring
//
// A definition declares the type names it satisfies with As. Requesting a
// type name through Get, or leaving a constructor parameter without an
// explicit argument, consults the type index. Exactly one candidate is
// resolved transparently; multiple candidates are an error unless the caller
// asked for the whole collection.
//
// # Lifecycle
//
// Shared values are constructed at most once per container and cached.
// Cached instances implementing Resettable are given a chance to clean up
// when the container is Reset.
package gaffer

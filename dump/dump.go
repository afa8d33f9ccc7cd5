// Package dump serializes a frozen snapshot of a container's registry for
// code-generation backends. The snapshot is a pure data view: it enumerates
// definitions, aliases, and the type index, and takes no part in runtime
// resolution.
package dump

import (
	"fmt"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gaffer-di/gaffer"
)

// Snapshot is the serializable view of a container's registry.
type Snapshot struct {
	ContainerID string                `yaml:"container_id"`
	Definitions map[string]Definition `yaml:"definitions"`
	Aliases     map[string]string     `yaml:"aliases,omitempty"`
	Types       map[string][]string   `yaml:"types,omitempty"`
}

// Definition is the serializable view of one registered definition.
type Definition struct {
	Entity     string   `yaml:"entity"`
	Args       []string `yaml:"args,omitempty"`
	Shared     bool     `yaml:"shared"`
	Public     bool     `yaml:"public"`
	Abstract   bool     `yaml:"abstract,omitempty"`
	Lazy       bool     `yaml:"lazy,omitempty"`
	Types      []string `yaml:"types,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Deprecated bool     `yaml:"deprecated,omitempty"`
}

// Take snapshots the container's current registry state.
func Take(c *gaffer.Container) *Snapshot {
	definitions := c.Definitions()

	s := &Snapshot{
		ContainerID: c.ID(),
		Definitions: make(map[string]Definition, len(definitions)),
		Aliases:     c.Aliases(),
		Types:       c.TypeIndex(),
	}

	for id, def := range definitions {
		args := make([]string, 0, len(def.Args))
		for _, arg := range def.Args {
			args = append(args, renderValue(arg))
		}

		s.Definitions[id] = Definition{
			Entity:     renderEntity(def.Entity),
			Args:       args,
			Shared:     def.Shared,
			Public:     def.Public,
			Abstract:   def.Abstract,
			Lazy:       def.Lazy,
			Types:      append([]string(nil), def.Types...),
			Tags:       append([]string(nil), def.Tags...),
			Deprecated: def.Deprecated,
		}
	}

	return s
}

// Marshal renders the snapshot as YAML.
func (s *Snapshot) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// IDs returns the snapshotted identifiers in sorted order, for deterministic
// emission by backends that iterate the snapshot.
func (s *Snapshot) IDs() []string {
	ids := make([]string, 0, len(s.Definitions))
	for id := range s.Definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// renderEntity describes an entity in source-neutral notation: references in
// @target form, constructors and struct types by their type, literals by
// value.
func renderEntity(entity any) string {
	switch e := entity.(type) {
	case nil:
		return "nil"
	case *gaffer.Reference:
		return e.String()
	case *gaffer.Definition:
		return "inline(" + renderEntity(e.Entity) + ")"
	case reflect.Type:
		return "type(" + e.String() + ")"
	default:
		if t := reflect.TypeOf(entity); t.Kind() == reflect.Func {
			return "func(" + t.String() + ")"
		}
		return renderValue(entity)
	}
}

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case *gaffer.Reference:
		return v.String()
	case *gaffer.Definition:
		return "inline(" + renderEntity(v.Entity) + ")"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

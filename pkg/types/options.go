package types

import "fmt"

// Options configures the context plugin for one child model. The zero value
// is the default: optional context, live registry validation, shortcuts,
// reference synchronization, snake_case serialization and context queries
// all enabled.
type Options struct {
	// Required makes context_type and context_id mandatory on persist.
	Required bool `yaml:"required,omitempty" mapstructure:"required"`

	// ContextTypes restricts legal context types to this list and enables a
	// shortcut accessor per listed type. An empty list means no restriction.
	ContextTypes []string `yaml:"context_types,omitempty" mapstructure:"context_types"`

	// Predicate validates context types instead of a list. Mutually
	// exclusive with ContextTypes.
	Predicate Predicate `yaml:"-" mapstructure:"-"`

	DisableShortcuts     bool `yaml:"disable_shortcuts,omitempty" mapstructure:"disable_shortcuts"`
	DisableRefUpdate     bool `yaml:"disable_ref_update,omitempty" mapstructure:"disable_ref_update"`
	DisableSerialization bool `yaml:"disable_serialization,omitempty" mapstructure:"disable_serialization"`
	DisableQuery         bool `yaml:"disable_query,omitempty" mapstructure:"disable_query"`

	// CamelCase switches normalized names from snake_case to lowerCamelCase.
	CamelCase bool `yaml:"camel_case,omitempty" mapstructure:"camel_case"`
}

// Validate checks option consistency.
func (o Options) Validate() error {
	if o.Predicate != nil && len(o.ContextTypes) > 0 {
		return fmt.Errorf("%w: context types list and predicate are mutually exclusive", ErrInvalidOptions)
	}
	for _, t := range o.ContextTypes {
		if t == "" {
			return fmt.Errorf("%w: empty context type", ErrInvalidOptions)
		}
	}
	return nil
}

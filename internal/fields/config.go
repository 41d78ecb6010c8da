package fields

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/domain"
)

// Configuration is the validated field configuration of one index.
// It always contains the unqualified content field plus one
// locale-qualified content field per available locale, followed by
// the configured fields in declaration order.
type Configuration struct {
	defs      []Definition
	available []language.Tag
}

// NewConfiguration builds and validates a field configuration.
// Validation failures are startup errors wrapping ErrInvalidFieldConfig.
func NewConfiguration(available []language.Tag, configured []Definition) (*Configuration, error) {
	cfg := &Configuration{available: available}
	cfg.addContentFields()

	for i := range configured {
		if err := validateDefinition(&configured[i]); err != nil {
			return nil, err
		}
		cfg.defs = append(cfg.defs, configured[i])
	}
	return cfg, nil
}

// Definitions returns the field definitions in evaluation order.
func (c *Configuration) Definitions() []Definition {
	return c.defs
}

// Available returns the configured available locales.
func (c *Configuration) Available() []language.Tag {
	return c.available
}

func (c *Configuration) addContentFields() {
	c.defs = append(c.defs, Definition{
		Name:     FieldContent,
		Mappings: []Mapping{{Type: MappingContent}},
	})
	for _, loc := range c.available {
		c.defs = append(c.defs, Definition{
			Name:     ContentFieldName(loc),
			Locale:   loc,
			Mappings: []Mapping{{Type: MappingContent}},
		})
	}
}

func validateDefinition(def *Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: field with empty name", domain.ErrInvalidFieldConfig)
	}
	if len(def.Mappings) == 0 && def.Default == "" {
		return fmt.Errorf(
			"%w: field %q has no mappings and no default value",
			domain.ErrInvalidFieldConfig, def.Name,
		)
	}
	for _, m := range def.Mappings {
		switch m.Type {
		case MappingContent:
		case MappingProperty, MappingItem:
			if m.Param == "" {
				return fmt.Errorf(
					"%w: field %q: %s mapping requires a param",
					domain.ErrInvalidFieldConfig, def.Name, m.Type,
				)
			}
		case MappingAttribute:
			switch m.Param {
			case "path", "type", "name":
			default:
				return fmt.Errorf(
					"%w: field %q: unknown attribute %q",
					domain.ErrInvalidFieldConfig, def.Name, m.Param,
				)
			}
		default:
			return fmt.Errorf(
				"%w: field %q: unknown mapping type %q",
				domain.ErrInvalidFieldConfig, def.Name, m.Type,
			)
		}
	}
	return nil
}

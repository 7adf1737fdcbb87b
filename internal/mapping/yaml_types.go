package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// --- StringOrArray YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
// Accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML implements custom YAML marshaling for StringOrArray.
// Outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// --- PropArray YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for PropArray.
// Accepts:
//   - Single ref: "Name"
//   - Single mapping: {src: Name, ref: Author} or {Name: Author}
//   - Array of either: [Name, {src: Mail, ref: Email}]
func (p *PropArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*p = PropArray{{Ref: str}}
		} else {
			*p = PropArray{}
		}

		return nil

	case yaml.MappingNode:
		prop, err := parsePropFromMap(node)
		if err != nil {
			return err
		}

		*p = PropArray{prop}

		return nil

	case yaml.SequenceNode:
		var props []Prop

		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				var str string

				err := item.Decode(&str)
				if err != nil {
					return err
				}

				props = append(props, Prop{Ref: str})

			case yaml.MappingNode:
				prop, err := parsePropFromMap(item)
				if err != nil {
					return err
				}

				props = append(props, prop)

			default:
				return fmt.Errorf("expected string or map in array, got %v", item.Kind)
			}
		}

		*p = props

		return nil

	default:
		return fmt.Errorf("expected string, map, or array, got %v", node.Kind)
	}
}

// parsePropFromMap parses {src: a, ref: b} or the shorthand {a: b}.
func parsePropFromMap(node *yaml.Node) (Prop, error) {
	if len(node.Content) == 0 {
		return Prop{}, fmt.Errorf("empty prop mapping at line %d", node.Line)
	}

	explicit := false

	for i := 0; i < len(node.Content); i += 2 {
		if k := node.Content[i].Value; k == "src" || k == "ref" {
			explicit = true
			break
		}
	}

	if explicit {
		var prop Prop
		if err := node.Decode(&prop); err != nil {
			return Prop{}, err
		}

		return prop, nil
	}

	if len(node.Content) != 2 {
		return Prop{}, fmt.Errorf("prop shorthand at line %d must have exactly one entry", node.Line)
	}

	return Prop{Src: node.Content[0].Value, Ref: node.Content[1].Value}, nil
}

// MarshalYAML implements custom YAML marshaling for PropArray.
// Whole-value props are written as plain refs.
func (p PropArray) MarshalYAML() (any, error) {
	items := make([]any, 0, len(p))

	for _, prop := range p {
		if prop.Src == "" {
			items = append(items, prop.Ref)
			continue
		}

		items = append(items, prop)
	}

	if len(items) == 1 {
		return items[0], nil
	}

	return items, nil
}

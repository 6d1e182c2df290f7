package skills

import (
	"fmt"
)

// ValidateArguments checks a decoded arguments object against the
// descriptor's parameter schema: required parameters must be present and
// every supplied value must match its declared type. Unknown arguments are
// rejected so a model typo surfaces as a tool failure instead of being
// silently ignored.
func ValidateArguments(d *Descriptor, args map[string]any) error {
	for name, spec := range d.Parameters {
		v, ok := args[name]
		if !ok {
			if spec.Required {
				return fmt.Errorf("skill %q: missing required argument %q", d.Name, name)
			}
			continue
		}
		if err := checkType(name, spec, v); err != nil {
			return fmt.Errorf("skill %q: %w", d.Name, err)
		}
	}

	for name := range args {
		if _, ok := d.Parameters[name]; !ok {
			return fmt.Errorf("skill %q: unknown argument %q", d.Name, name)
		}
	}

	return nil
}

func checkType(name string, spec ParamSpec, v any) error {
	if v == nil {
		return fmt.Errorf("argument %q is null", name)
	}

	switch spec.Type {
	case "string":
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
		if len(spec.Enum) > 0 && !containsString(spec.Enum, s) {
			return fmt.Errorf("argument %q must be one of %v", name, spec.Enum)
		}
	case "number":
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("argument %q must be a number", name)
		}
	case "integer":
		// JSON decoding yields float64 for all numbers.
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("argument %q must be an integer", name)
		}
		if f != float64(int64(f)) {
			return fmt.Errorf("argument %q must be an integer", name)
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("argument %q must be a boolean", name)
		}
	case "array":
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("argument %q must be an array", name)
		}
		if spec.Items != nil {
			for i, item := range items {
				if err := checkType(fmt.Sprintf("%s[%d]", name, i), *spec.Items, item); err != nil {
					return err
				}
			}
		}
	case "object":
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("argument %q must be an object", name)
		}
		for sub, subSpec := range spec.Properties {
			sv, present := obj[sub]
			if !present {
				if subSpec.Required {
					return fmt.Errorf("argument %q missing required property %q", name, sub)
				}
				continue
			}
			if err := checkType(name+"."+sub, subSpec, sv); err != nil {
				return err
			}
		}
	}

	return nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

package ledger

import "encoding/json"

// marshalArguments serializes a tool-call argument mapping to the JSON
// object string the model layer expects.
func marshalArguments(args map[string]any) (string, error) {
	if args == nil {
		return "{}", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalArguments parses a JSON object string into an argument mapping.
// An empty string is treated as an empty mapping.
func unmarshalArguments(s string) (map[string]any, error) {
	if s == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(s), &args); err != nil {
		return nil, err
	}
	return args, nil
}

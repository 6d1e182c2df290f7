package skills

import (
	"encoding/json"
	"testing"
)

func decodeArgs(t *testing.T, raw string) map[string]any {
	t.Helper()
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		t.Fatalf("unmarshal args: %v", err)
	}
	return args
}

func TestValidateArguments(t *testing.T) {
	desc := &Descriptor{
		Name:        "calculator",
		Description: "evaluate arithmetic",
		Parameters: map[string]ParamSpec{
			"expression": {Type: "string", Required: true},
			"precision":  {Type: "integer"},
			"mode":       {Type: "string", Enum: []string{"strict", "lenient"}},
			"verbose":    {Type: "boolean"},
			"weights":    {Type: "array", Items: &ParamSpec{Type: "number"}},
			"options": {Type: "object", Properties: map[string]ParamSpec{
				"round": {Type: "boolean", Required: true},
			}},
		},
	}

	cases := []struct {
		name    string
		args    string
		wantErr bool
	}{
		{"required only", `{"expression":"12*13"}`, false},
		{"all valid", `{"expression":"1+1","precision":2,"mode":"strict","verbose":true,"weights":[1.5,2],"options":{"round":false}}`, false},
		{"missing required", `{"precision":2}`, true},
		{"wrong type", `{"expression":42}`, true},
		{"non-integer number", `{"expression":"x","precision":2.5}`, true},
		{"bad enum value", `{"expression":"x","mode":"fast"}`, true},
		{"unknown argument", `{"expression":"x","shout":true}`, true},
		{"null value", `{"expression":null}`, true},
		{"bad array element", `{"expression":"x","weights":[1,"two"]}`, true},
		{"object missing required property", `{"expression":"x","options":{}}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateArguments(desc, decodeArgs(t, tc.args))
			if tc.wantErr && err == nil {
				t.Error("ValidateArguments accepted invalid arguments")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("ValidateArguments rejected valid arguments: %v", err)
			}
		})
	}
}

func TestValidateArgumentsOptionalAbsent(t *testing.T) {
	desc := &Descriptor{
		Name:        "greet",
		Description: "say hello",
		Parameters: map[string]ParamSpec{
			"name": {Type: "string"},
		},
	}

	if err := ValidateArguments(desc, map[string]any{}); err != nil {
		t.Fatalf("ValidateArguments with empty args: %v", err)
	}
}

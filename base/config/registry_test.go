package config

import (
	"testing"
)

func TestRegistry(t *testing.T) { //nolint:paralleltest
	// reset
	options = make(map[string]*Option)

	if err := Register(&Option{
		Name:            "name",
		Key:             "key",
		Description:     "description",
		OptType:         OptTypeString,
		DefaultValue:    "water",
		ValidationRegex: "^(banana|water)$",
	}); err != nil {
		t.Error(err)
	}

	// missing option type
	if err := Register(&Option{
		Name:            "name",
		Key:             "key",
		Description:     "description",
		OptType:         0,
		DefaultValue:    "default",
		ValidationRegex: "^[A-Z][a-z]+$",
	}); err == nil {
		t.Error("should fail")
	}

	// broken validation regex
	if err := Register(&Option{
		Name:            "name",
		Key:             "key",
		Description:     "description",
		OptType:         OptTypeString,
		DefaultValue:    "default",
		ValidationRegex: "[",
	}); err == nil {
		t.Error("should fail")
	}

	// default value failing validation
	if err := Register(&Option{
		Name:            "name",
		Key:             "key",
		Description:     "description",
		OptType:         OptTypeString,
		DefaultValue:    "dirt",
		ValidationRegex: "^(banana|water)$",
	}); err == nil {
		t.Error("should fail")
	}

	// validation regex derived from possible values
	err := Register(&Option{
		Name:         "name",
		Key:          "pick",
		Description:  "description",
		OptType:      OptTypeString,
		DefaultValue: "this",
		PossibleValues: []PossibleValue{
			{Name: "This", Value: "this"},
			{Name: "That", Value: "that"},
		},
	})
	if err != nil {
		t.Error(err)
	}
	if err := SetConfigOption("pick", "that"); err != nil {
		t.Error(err)
	}
	if err := SetConfigOption("pick", "other"); err == nil {
		t.Error("should fail")
	}
}

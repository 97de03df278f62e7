package config

import (
	"fmt"
	"testing"
)

func parseAndReplaceConfig(jsonData string) error {
	m, err := JSONToMap([]byte(jsonData))
	if err != nil {
		return err
	}

	validationErrors, _ := ReplaceConfig(m)
	if len(validationErrors) > 0 {
		return fmt.Errorf("%d errors, first: %w", len(validationErrors), validationErrors[0])
	}
	return nil
}

func parseAndReplaceDefaultConfig(jsonData string) error {
	m, err := JSONToMap([]byte(jsonData))
	if err != nil {
		return err
	}

	validationErrors, _ := ReplaceDefaultConfig(m)
	if len(validationErrors) > 0 {
		return fmt.Errorf("%d errors, first: %w", len(validationErrors), validationErrors[0])
	}
	return nil
}

func quickRegister(tb testing.TB, key string, optType OptionType, defaultValue interface{}) {
	tb.Helper()

	err := Register(&Option{
		Name:         key,
		Key:          key,
		Description:  "test config",
		OptType:      optType,
		DefaultValue: defaultValue,
	})
	if err != nil {
		tb.Fatal(err)
	}
}

func TestGet(t *testing.T) { //nolint:paralleltest
	// reset
	options = make(map[string]*Option)

	quickRegister(t, "station", OptTypeString, "none")
	quickRegister(t, "tabs/colors", OptTypeStringArray, []string{"blue", "red"})
	quickRegister(t, "port", OptTypeInt, -1)
	quickRegister(t, "attached", OptTypeBool, false)
	quickRegister(t, "isolated", OptTypeBool, true)

	err := parseAndReplaceConfig(`
	{
		"station": "alpha",
		"tabs": {
			"colors": ["green", "cyan"]
		},
		"port": 8080,
		"attached": true,
		"isolated": false
	}
	`)
	if err != nil {
		t.Fatal(err)
	}

	err = parseAndReplaceDefaultConfig(`
	{
		"station": "beta",
		"stray": "0",
		"port": 0
	}
	`)
	if err != nil {
		t.Fatal(err)
	}

	station := GetAsString("station", "none")
	if station() != "alpha" {
		t.Errorf("station should be alpha, is %s", station())
	}

	colors := GetAsStringArray("tabs/colors", []string{})
	if len(colors()) != 2 || colors()[0] != "green" || colors()[1] != "cyan" {
		t.Errorf("colors should be [\"green\", \"cyan\"], is %v", colors())
	}

	port := GetAsInt("port", -1)
	if port() != 8080 {
		t.Errorf("port should be 8080, is %d", port())
	}

	attached := GetAsBool("attached", false)
	if !attached() {
		t.Errorf("attached should be true, is %v", attached())
	}

	isolated := GetAsBool("isolated", true)
	if isolated() {
		t.Errorf("isolated should be false, is %v", isolated())
	}

	err = parseAndReplaceConfig(`
	{
		"station": "3"
	}
	`)
	if err != nil {
		t.Fatal(err)
	}

	if station() != "3" {
		t.Errorf("station should be 3, is %s", station())
	}

	// The user value is gone, the default layer takes over.
	if port() != 0 {
		t.Errorf("port should be 0, is %d", port())
	}

	// No default layer entry, so the registered default applies.
	if len(colors()) != 2 || colors()[0] != "blue" {
		t.Errorf("colors should be [\"blue\", \"red\"], is %v", colors())
	}

	attached()
	isolated()

	// concurrent
	Concurrent.GetAsString("station", "none")()
	Concurrent.GetAsStringArray("tabs/colors", []string{})()
	Concurrent.GetAsInt("port", -1)()
	Concurrent.GetAsBool("attached", false)()
}

func BenchmarkGetAsStringCached(b *testing.B) {
	// reset
	options = make(map[string]*Option)

	// Setup
	quickRegister(b, "station", OptTypeString, "none")
	err := parseAndReplaceConfig(`{
		"station": "burp"
	}`)
	if err != nil {
		b.Fatal(err)
	}
	station := GetAsString("station", "none")

	// Reset timer for precise results
	b.ResetTimer()

	// Start benchmark
	for range b.N {
		station()
	}
}

func BenchmarkGetAsStringRefetch(b *testing.B) {
	// Setup
	quickRegister(b, "station", OptTypeString, "none")
	err := parseAndReplaceConfig(`{
		"station": "burp"
	}`)
	if err != nil {
		b.Fatal(err)
	}

	// Reset timer for precise results
	b.ResetTimer()

	// Start benchmark
	for range b.N {
		getValueCache("station", nil, OptTypeString)
	}
}

func BenchmarkGetAsIntCached(b *testing.B) {
	// Setup
	quickRegister(b, "port", OptTypeInt, -1)
	err := parseAndReplaceConfig(`{
		"port": 1
	}`)
	if err != nil {
		b.Fatal(err)
	}
	port := GetAsInt("port", -1)

	// Reset timer for precise results
	b.ResetTimer()

	// Start benchmark
	for range b.N {
		port()
	}
}

func BenchmarkGetAsIntRefetch(b *testing.B) {
	// Setup
	quickRegister(b, "port", OptTypeInt, -1)
	err := parseAndReplaceConfig(`{
		"port": 1
	}`)
	if err != nil {
		b.Fatal(err)
	}

	// Reset timer for precise results
	b.ResetTimer()

	// Start benchmark
	for range b.N {
		getValueCache("port", nil, OptTypeInt)
	}
}

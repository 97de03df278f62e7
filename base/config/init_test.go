package config

import (
	"fmt"
	"os"
	"testing"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
)

type testInstance struct{}

var _ instance = testInstance{}

func TestMain(m *testing.M) {
	if err := log.Start("trace", true, ""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start logging: %s\n", err)
		os.Exit(1)
	}

	if _, err := New(testInstance{}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create config module: %s\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

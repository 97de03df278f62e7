package mgr

import (
	"errors"
	"testing"
)

type testModule struct {
	mgr      *Manager
	name     string
	order    *[]string
	startErr error
}

func newTestModule(name string, order *[]string) *testModule {
	return &testModule{
		mgr:   New(name),
		name:  name,
		order: order,
	}
}

func (m *testModule) Manager() *Manager {
	return m.mgr
}

func (m *testModule) Start() error {
	if m.startErr != nil {
		return m.startErr
	}
	*m.order = append(*m.order, "start "+m.name)
	return nil
}

func (m *testModule) Stop() error {
	*m.order = append(*m.order, "stop "+m.name)
	return nil
}

func TestGroupStartStop(t *testing.T) {
	t.Parallel()

	var order []string
	g := NewGroup(
		newTestModule("a", &order),
		newTestModule("b", &order),
		newTestModule("c", &order),
	)

	if err := g.Start(); err != nil {
		t.Fatal(err)
	}
	if !g.Ready() {
		t.Error("group should be ready")
	}

	// Starting a running group is a no-op.
	if err := g.Start(); err != nil {
		t.Fatal(err)
	}

	if err := g.Stop(); err != nil {
		t.Fatal(err)
	}
	if g.Ready() {
		t.Error("group should not be ready")
	}

	want := []string{
		"start a", "start b", "start c",
		"stop c", "stop b", "stop a",
	}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestGroupStartFailure(t *testing.T) {
	t.Parallel()

	var order []string
	failing := newTestModule("b", &order)
	failing.startErr = errors.New("nope")
	g := NewGroup(
		newTestModule("a", &order),
		failing,
		newTestModule("c", &order),
	)

	if err := g.Start(); err == nil {
		t.Fatal("expected start to fail")
	}
	if g.Ready() {
		t.Error("group should not be ready after failed start")
	}

	// Module a was started and must have been stopped again, module c
	// must never have been started.
	want := []string{"start a", "stop b", "stop a"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}

	// The group can be started again after the failure.
	failing.startErr = nil
	order = nil
	if err := g.Start(); err != nil {
		t.Fatal(err)
	}
	if !g.Ready() {
		t.Error("group should be ready after recovery")
	}
}

func TestGroupNilModule(t *testing.T) {
	t.Parallel()

	var nilModule *testModule
	g := NewGroup(nil, nilModule)
	if len(g.Modules()) != 0 {
		t.Errorf("nil modules must be ignored, got %d", len(g.Modules()))
	}
}

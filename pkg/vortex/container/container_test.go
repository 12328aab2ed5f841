package container

import (
	"errors"
	"testing"
)

type Greeter interface{ Greet() string }

type englishGreeter struct{ n int }

func (g *englishGreeter) Greet() string { g.n++; return "hello" }

func TestTransientInvokesFactoryEveryTime(t *testing.T) {
	c := New()
	calls := 0
	Add[Greeter](c, Transient, Func0(func() (Greeter, error) {
		calls++
		return &englishGreeter{}, nil
	}))

	if _, err := Get[Greeter](c, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := Get[Greeter](c, nil); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestPersistentInvokesFactoryOnce(t *testing.T) {
	c := New()
	calls := 0
	Add[Greeter](c, Persistent, Func0(func() (Greeter, error) {
		calls++
		return &englishGreeter{}, nil
	}))

	first, err := Get[Greeter](c, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Get[Greeter](c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if first != second {
		t.Fatal("expected same instance across resolves")
	}
}

func TestStoragePersistentScopedToStorage(t *testing.T) {
	c := New()
	calls := 0
	Add[Greeter](c, StoragePersistent, Func0(func() (Greeter, error) {
		calls++
		return &englishGreeter{}, nil
	}))

	s1 := NewStorage()
	a1, _ := Get[Greeter](c, s1)
	a2, _ := Get[Greeter](c, s1)
	if a1 != a2 {
		t.Fatal("expected same instance within one storage")
	}

	s2 := NewStorage()
	b1, _ := Get[Greeter](c, s2)
	if a1 == b1 {
		t.Fatal("expected distinct instance across storages")
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestGetUnregisteredReturnsResolutionError(t *testing.T) {
	c := New()
	_, err := Get[Greeter](c, nil)
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err = %v, want *ResolutionError", err)
	}
}

func TestGetManyReturnsAllInRegistrationOrder(t *testing.T) {
	c := New()
	Add[Greeter](c, Transient, Func0(func() (Greeter, error) { return &englishGreeter{n: 1}, nil }))
	Add[Greeter](c, Transient, Func0(func() (Greeter, error) { return &englishGreeter{n: 2}, nil }))

	all, err := GetMany[Greeter](c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	if all[0].(*englishGreeter).n != 1 || all[1].(*englishGreeter).n != 2 {
		t.Fatalf("unexpected order: %+v", all)
	}
}

func TestGetResolvesLastRegistered(t *testing.T) {
	c := New()
	Add[Greeter](c, Transient, Func0(func() (Greeter, error) { return &englishGreeter{n: 1}, nil }))
	Add[Greeter](c, Transient, Func0(func() (Greeter, error) { return &englishGreeter{n: 2}, nil }))

	g, err := Get[Greeter](c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if g.(*englishGreeter).n != 2 {
		t.Fatalf("got n = %d, want 2 (last registered)", g.(*englishGreeter).n)
	}
}

func TestExceptionFactoryAlwaysFails(t *testing.T) {
	c := New()
	Add[Greeter](c, Transient, Exception("Greeter not configured for this environment"))

	_, err := Get[Greeter](c, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCycleDetection(t *testing.T) {
	c := New()
	var d *Descriptor
	d = Add[Greeter](c, Transient, Func1(func(c *Container) (Greeter, error) {
		return Get[Greeter](c, nil)
	}))
	_ = d

	_, err := Get[Greeter](c, nil)
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("err = %v, want *CycleError", err)
	}
}

type Logger interface{ Log(string) }

type nullLogger struct{ lines []string }

func (l *nullLogger) Log(s string) { l.lines = append(l.lines, s) }

type Service struct {
	Logger   Logger
	Greeters []Greeter
}

func TestConstructorInjectsSingleAndCollectionDependencies(t *testing.T) {
	c := New()
	Add[Logger](c, Persistent, Func0(func() (Logger, error) { return &nullLogger{}, nil }))
	Add[Greeter](c, Transient, Func0(func() (Greeter, error) { return &englishGreeter{n: 1}, nil }))
	Add[Greeter](c, Transient, Func0(func() (Greeter, error) { return &englishGreeter{n: 2}, nil }))

	Add[*Service](c, Transient, Constructor[*Service](c, func(l Logger, gs []Greeter) (*Service, error) {
		return &Service{Logger: l, Greeters: gs}, nil
	}))

	svc, err := Get[*Service](c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if svc.Logger == nil {
		t.Fatal("expected Logger to be injected")
	}
	if len(svc.Greeters) != 2 {
		t.Fatalf("len(Greeters) = %d, want 2", len(svc.Greeters))
	}
}

func TestConstructorRegisteredBeforeDependencyStillSeesLateRegistration(t *testing.T) {
	c := New()
	// Constructor pre-fetches the descriptor list for Greeter before any
	// Greeter has been registered; the list must still observe the
	// registration that follows.
	Add[*Service](c, Transient, Constructor[*Service](c, func(gs []Greeter) (*Service, error) {
		return &Service{Greeters: gs}, nil
	}))
	Add[Greeter](c, Transient, Func0(func() (Greeter, error) { return &englishGreeter{n: 9}, nil }))

	svc, err := Get[*Service](c, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(svc.Greeters) != 1 {
		t.Fatalf("len(Greeters) = %d, want 1", len(svc.Greeters))
	}
}

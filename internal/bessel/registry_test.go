package bessel

import (
	"sync"
	"testing"
)

func TestDefaultFactoryRegistersBothDirections(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()

	got := f.List()
	if len(got) != 2 || got[0] != MethodDown || got[1] != MethodUp {
		t.Fatalf("List() = %v, want [down up]", got)
	}
	for _, m := range []string{MethodUp, MethodDown} {
		if !f.Has(m) {
			t.Errorf("Has(%q) = false", m)
		}
		ev, err := f.Get(m)
		if err != nil {
			t.Fatalf("Get(%q): %v", m, err)
		}
		if ev.Method() != m {
			t.Errorf("Get(%q).Method() = %q", m, ev.Method())
		}
		again, _ := f.Get(m)
		if again != ev {
			t.Errorf("Get(%q) did not return the cached instance", m)
		}
	}
	if f.Has("sideways") {
		t.Error("Has(sideways) = true")
	}
	if _, err := f.Get("sideways"); err == nil {
		t.Error("expected an error for an unknown method")
	}
	if all := f.GetAll(); len(all) != 2 {
		t.Errorf("GetAll() returned %d evaluators, want 2", len(all))
	}
}

func TestDefaultFactoryRegister(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()
	if err := f.Register("", func() coreEvaluator { return UpwardEvaluator{} }); err == nil {
		t.Error("expected an error for an empty key")
	}
	if err := f.Register("x", nil); err == nil {
		t.Error("expected an error for a nil creator")
	}

	before, _ := f.Get(MethodUp)
	if err := f.Register(MethodUp, func() coreEvaluator { return UpwardEvaluator{} }); err != nil {
		t.Fatalf("Register: %v", err)
	}
	after, _ := f.Get(MethodUp)
	if before == after {
		t.Error("re-registering a method should drop the cached evaluator")
	}
}

func TestDefaultFactoryConcurrentGet(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()
	var wg sync.WaitGroup
	results := make([]Evaluator, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = f.Get(MethodDown)
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent Get returned different instances")
		}
	}
}

func TestGlobalFactory(t *testing.T) {
	t.Parallel()
	if GlobalFactory() == nil || !GlobalFactory().Has(MethodUp) {
		t.Fatal("global factory is missing the upward method")
	}
}

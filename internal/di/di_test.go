package di

import "testing"

type counter struct{ n int }

func TestToken_LazySingleton(t *testing.T) {
	c := NewContainer()
	tok := NewToken[*counter]("test.counter")

	builds := 0
	RegisterToken(c, tok, func(ServiceRegistry) *counter {
		builds++
		return &counter{n: 7}
	})

	if builds != 0 {
		t.Fatal("factory ran before first Get")
	}

	a := GetToken(c, tok)
	b := GetToken(c, tok)
	if a != b {
		t.Error("expected the same instance on repeated Get")
	}
	if builds != 1 {
		t.Errorf("factory ran %d times, want 1", builds)
	}
	if a.n != 7 {
		t.Errorf("n = %d", a.n)
	}
}

func TestToken_Dependencies(t *testing.T) {
	c := NewContainer()
	c.Register("config", 42)

	tok := NewToken[int]("test.double")
	RegisterToken(c, tok, func(sr ServiceRegistry) int {
		return sr.Get("config").(int) * 2
	})

	if got := GetToken(c, tok); got != 84 {
		t.Errorf("GetToken() = %d, want 84", got)
	}
}

func TestContainer_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown service")
		}
	}()
	NewContainer().Get("missing")
}

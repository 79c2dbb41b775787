package service

import (
	"context"
	"testing"
	"time"

	"ajnabi/internal/domain"
)

func TestStubMatchmaker_PreferenceFilter(t *testing.T) {
	m := NewStubMatchmaker(0)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		p, err := m.FindPartner(ctx, domain.PrefWomen)
		if err != nil {
			t.Fatalf("FindPartner: %v", err)
		}
		if p.AboutMe["gender"] != "Woman" {
			t.Errorf("preference WOMEN returned %q (%s)", p.Username, p.AboutMe["gender"])
		}
	}
	for i := 0; i < 10; i++ {
		p, err := m.FindPartner(ctx, domain.PrefMen)
		if err != nil {
			t.Fatalf("FindPartner: %v", err)
		}
		if p.AboutMe["gender"] != "Man" {
			t.Errorf("preference MEN returned %q (%s)", p.Username, p.AboutMe["gender"])
		}
	}
}

func TestStubMatchmaker_AnyoneMatchesPool(t *testing.T) {
	m := NewStubMatchmaker(0)
	if _, err := m.FindPartner(context.Background(), domain.PrefAnyone); err != nil {
		t.Fatalf("FindPartner: %v", err)
	}
	// Empty preference behaves as anyone.
	if _, err := m.FindPartner(context.Background(), ""); err != nil {
		t.Fatalf("FindPartner: %v", err)
	}
}

func TestStubMatchmaker_RespectsContext(t *testing.T) {
	m := NewStubMatchmaker(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.FindPartner(ctx, domain.PrefAnyone); err == nil {
		t.Fatal("cancelled context must abort the delay")
	}
}

package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tbourn/go-tutor-backend/internal/domain"
)

func TestEnsureProfile_CreatesOnceWithDefaults(t *testing.T) {
	db := newRepoDB(t, true)
	ctx := context.Background()

	p, err := EnsureProfile(ctx, db, "u1")
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if p.ID == "" || p.Plan != domain.PlanFree || p.OnboardingCompleted {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	again, err := EnsureProfile(ctx, db, "u1")
	if err != nil || again.ID != p.ID {
		t.Fatalf("second EnsureProfile = %+v, %v; want same id", again, err)
	}
}

func TestEnsureProfile_ConcurrentFirstAccess(t *testing.T) {
	db := newRepoDB(t, true)
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	var wg sync.WaitGroup
	ids := make([]string, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := EnsureProfile(context.Background(), db, "u1")
			if err != nil {
				t.Errorf("EnsureProfile: %v", err)
				return
			}
			ids[i] = p.ID
		}(i)
	}
	wg.Wait()
	for _, id := range ids[1:] {
		if id != ids[0] {
			t.Fatalf("concurrent EnsureProfile produced different rows: %v", ids)
		}
	}
}

func TestSaveProfileAndSetPlan(t *testing.T) {
	db := newRepoDB(t, true)
	ctx := context.Background()
	p, _ := EnsureProfile(ctx, db, "u1")

	p.FullName = "Ana Macuácua"
	p.Age = 15
	p.Grade = "10ª classe"
	p.Interests = []string{"futebol", "culinária"}
	if err := SaveProfile(ctx, db, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if err := SetProfilePlan(ctx, db, "u1", domain.PlanStudent); err != nil {
		t.Fatalf("SetProfilePlan: %v", err)
	}
	got, err := GetProfileByUser(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetProfileByUser: %v", err)
	}
	if got.FullName != "Ana Macuácua" || len(got.Interests) != 2 || got.Plan != domain.PlanStudent {
		t.Fatalf("unexpected profile: %+v", got)
	}

	if err := SetProfilePlan(ctx, db, "ghost", domain.PlanFamily); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-tutor-backend/internal/repo"
)

func TestRecordAnswer_UpdatesCountersAndSchedule(t *testing.T) {
	db := newServiceDB(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := newMemCache()
	svc := &ProgressService{DB: db, Cache: cache, Now: func() time.Time { return now }}
	ctx := context.Background()

	lp, err := svc.RecordAnswer(ctx, "u1", "Matemática", "Frações", true)
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if lp.TotalAnswers != 1 || lp.CorrectAnswers != 1 || lp.MasteryLevel != 10 {
		t.Fatalf("after correct answer: %+v", lp)
	}
	if lp.NextReviewAt == nil || !lp.NextReviewAt.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("next review = %v", lp.NextReviewAt)
	}

	lp, err = svc.RecordAnswer(ctx, "u1", "Matemática", "Frações", false)
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if lp.TotalAnswers != 2 || lp.CorrectAnswers != 1 || lp.MasteryLevel != 5 {
		t.Fatalf("after wrong answer: %+v", lp)
	}
	if len(cache.invalidated) != 2 {
		t.Fatalf("invalidations = %v", cache.invalidated)
	}
}

func TestRecordAnswer_HighMasteryScheduledAWeekOut(t *testing.T) {
	db := newServiceDB(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := &ProgressService{DB: db, Now: func() time.Time { return now }}
	ctx := context.Background()

	var lp, _ = svc.RecordAnswer(ctx, "u1", "Química", "Átomos", true)
	for i := 0; i < 9; i++ {
		var err error
		if lp, err = svc.RecordAnswer(ctx, "u1", "Química", "Átomos", true); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}
	if lp.MasteryLevel != 100 {
		t.Fatalf("mastery = %d", lp.MasteryLevel)
	}
	if !lp.NextReviewAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Fatalf("next review = %v", lp.NextReviewAt)
	}

	stored, err := repo.GetLearningProgress(ctx, db, repo.ProgressKey{ProfileID: lp.ProfileID, Subject: "Química", Topic: "Átomos"})
	if err != nil || stored.NextReviewAt == nil || !stored.NextReviewAt.Equal(*lp.NextReviewAt) {
		t.Fatalf("stored next review = %+v, %v", stored, err)
	}
}

func TestRecordAnswer_RequiresSubjectOrTopic(t *testing.T) {
	svc := &ProgressService{DB: newServiceDB(t)}
	if _, err := svc.RecordAnswer(context.Background(), "u1", " ", "", true); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRecordAnswer_ConcurrentAnswersAreCounted(t *testing.T) {
	db := newServiceDB(t)
	svc := &ProgressService{DB: db}
	ctx := context.Background()

	if _, err := svc.RecordAnswer(ctx, "u1", "Física", "Forças", true); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordAnswer(ctx, "u1", "Física", "Forças", true); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent RecordAnswer: %v", err)
	}

	p, _ := repo.GetProfileByUser(ctx, db, "u1")
	lp, err := repo.GetLearningProgress(ctx, db, repo.ProgressKey{ProfileID: p.ID, Subject: "Física", Topic: "Forças"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lp.TotalAnswers != 5 || lp.CorrectAnswers != 5 {
		t.Fatalf("counters = %d/%d, want 5/5", lp.CorrectAnswers, lp.TotalAnswers)
	}
}

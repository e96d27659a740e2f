package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/repo"
)

func TestGetOrCreateActive_CreatesOnceThenResumes(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)
	ctx := context.Background()

	first, err := svc.GetOrCreateActive(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt, Subject: "  Matemática ", Topic: "Frações"})
	if err != nil {
		t.Fatalf("GetOrCreateActive: %v", err)
	}
	if first.ID == "" || !first.IsActive || first.ProfileID == "" {
		t.Fatalf("unexpected conversation: %+v", first)
	}
	if first.Subject != "Matemática" || first.Topic != "Frações" {
		t.Fatalf("subject/topic not normalized: %q/%q", first.Subject, first.Topic)
	}

	again, err := svc.GetOrCreateActive(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt})
	if err != nil {
		t.Fatalf("second GetOrCreateActive: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected the active conversation to be resumed, got %s want %s", again.ID, first.ID)
	}
	if n := countRows(t, db, &domain.Conversation{}); n != 1 {
		t.Fatalf("conversations = %d, want 1", n)
	}
}

func TestGetOrCreateActive_ModeScoped(t *testing.T) {
	db := newServiceDB(t)
	setPlan(t, db, "u1", domain.PlanStudentPlus)
	svc := NewConversationService(db, nil)
	ctx := context.Background()

	a, err := svc.GetOrCreateActive(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt})
	if err != nil {
		t.Fatalf("quick_doubt: %v", err)
	}
	b, err := svc.GetOrCreateActive(ctx, "u1", NewConversation{Mode: domain.ModeRevision})
	if err != nil {
		t.Fatalf("revision: %v", err)
	}
	if a.ID == b.ID {
		t.Fatal("modes must not share the active conversation")
	}
}

func TestGetOrCreateActive_PlanRestricted_NoWrite(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)

	_, err := svc.GetOrCreateActive(context.Background(), "u1", NewConversation{Mode: domain.ModeExamPrep})
	if !errors.Is(err, ErrPlanRestricted) {
		t.Fatalf("expected ErrPlanRestricted, got %v", err)
	}
	if n := countRows(t, db, &domain.Conversation{}); n != 0 {
		t.Fatalf("conversation written despite plan gate: %d rows", n)
	}
}

func TestGetOrCreateActive_StudentPlanAllowsExamPrep(t *testing.T) {
	db := newServiceDB(t)
	setPlan(t, db, "u1", domain.PlanStudent)
	svc := NewConversationService(db, nil)

	c, err := svc.GetOrCreateActive(context.Background(), "u1", NewConversation{Mode: "EXAM_PREP"})
	if err != nil {
		t.Fatalf("GetOrCreateActive: %v", err)
	}
	if c.Mode != domain.ModeExamPrep {
		t.Fatalf("mode = %q", c.Mode)
	}
}

func TestGetOrCreateActive_UnknownMode(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)

	_, err := svc.GetOrCreateActive(context.Background(), "u1", NewConversation{Mode: "karaoke"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "mode" {
		t.Fatalf("expected mode ValidationError, got %#v", err)
	}
}

func TestCreate_DeactivatesPreviousInSameMode(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)
	ctx := context.Background()

	old, err := svc.GetOrCreateActive(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	fresh, err := svc.Create(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt, Subject: "Física"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reloaded, err := repo.GetConversation(ctx, db, old.ID, "u1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.IsActive {
		t.Fatal("previous conversation still active")
	}
	active, err := svc.GetOrCreateActive(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt})
	if err != nil {
		t.Fatalf("GetOrCreateActive: %v", err)
	}
	if active.ID != fresh.ID {
		t.Fatalf("active = %s, want %s", active.ID, fresh.ID)
	}
}

func TestConversation_GetScopedToOwner(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)
	ctx := context.Background()

	c, err := svc.GetOrCreateActive(ctx, "owner", NewConversation{Mode: domain.ModeQuickDoubt})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Get(ctx, "intruder", c.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
	if got, err := svc.Get(ctx, "owner", c.ID); err != nil || got.ID != c.ID {
		t.Fatalf("owner Get = %v, %v", got, err)
	}
}

func TestConversation_ListPage(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)
	ctx := context.Background()

	items, total, err := svc.ListPage(ctx, "u1", 0, 0)
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("empty list = %v, %d, %v", items, total, err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	items, total, err = svc.ListPage(ctx, "u1", 2, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(items) != 1 {
		t.Fatalf("page 2 = %d items, total %d", len(items), total)
	}

	count, latest, err := svc.Stats(ctx, "u1")
	if err != nil || count != 3 || latest == 0 {
		t.Fatalf("Stats = %d, %d, %v", count, latest, err)
	}
}

func TestConversation_UpdateTitle(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)
	svc.TitleMaxLen = 10
	ctx := context.Background()

	c, err := svc.GetOrCreateActive(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.UpdateTitle(ctx, "u1", c.ID, "   "); err != nil {
		t.Fatalf("UpdateTitle blank: %v", err)
	}
	got, _ := svc.Get(ctx, "u1", c.ID)
	if got.Title == nil || *got.Title != "Sem título" {
		t.Fatalf("title = %v, want placeholder", got.Title)
	}

	if err := svc.UpdateTitle(ctx, "u1", c.ID, "Equações   do segundo grau"); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	got, _ = svc.Get(ctx, "u1", c.ID)
	if *got.Title != "Equações d" {
		t.Fatalf("title = %q, want clipped", *got.Title)
	}

	if err := svc.UpdateTitle(ctx, "u2", c.ID, "x"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("foreign rename: %v", err)
	}
}

func TestConversation_DeleteRemovesMessagesAndFeedback(t *testing.T) {
	db := newServiceDB(t)
	cache := newMemCache()
	svc := NewConversationService(db, cache)
	ctx := context.Background()

	c, err := svc.GetOrCreateActive(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, db, c.ID, domain.RoleUser, "olá", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	reply, err := repo.AppendMessage(ctx, db, c.ID, domain.RoleAssistant, "olá! em que te posso ajudar?", nil)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.CreateFeedback(ctx, db, reply.ID, "u1", 1); err != nil {
		t.Fatalf("feedback: %v", err)
	}

	if err := svc.Delete(ctx, "u2", c.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("foreign delete: %v", err)
	}
	if n := countRows(t, db, &domain.Message{}); n != 2 {
		t.Fatalf("foreign delete removed messages: %d left", n)
	}

	if err := svc.Delete(ctx, "u1", c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for name, model := range map[string]any{
		"conversations": &domain.Conversation{},
		"messages":      &domain.Message{},
		"feedback":      &domain.Feedback{},
	} {
		if n := countRows(t, db, model); n != 0 {
			t.Fatalf("%s left after delete: %d", name, n)
		}
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "u1" {
		t.Fatalf("cache invalidations = %v", cache.invalidated)
	}
}

func TestConversation_DeleteAll(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c, err := svc.Create(ctx, "u1", NewConversation{Mode: domain.ModeQuickDoubt})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := repo.AppendMessage(ctx, db, c.ID, domain.RoleUser, "pergunta", nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	other, err := svc.Create(ctx, "u2", NewConversation{Mode: domain.ModeQuickDoubt})
	if err != nil {
		t.Fatalf("Create other: %v", err)
	}

	n, err := svc.DeleteAll(ctx, "u1")
	if err != nil || n != 3 {
		t.Fatalf("DeleteAll = %d, %v", n, err)
	}
	if _, err := svc.Get(ctx, "u2", other.ID); err != nil {
		t.Fatalf("other user's conversation affected: %v", err)
	}
	if left := countRows(t, db, &domain.Message{}); left != 0 {
		t.Fatalf("orphaned messages: %d", left)
	}
}

func TestDeleteAll_CanceledContext(t *testing.T) {
	db := newServiceDB(t)
	svc := NewConversationService(db, nil)
	if _, err := svc.Create(context.Background(), "u1", NewConversation{Mode: domain.ModeQuickDoubt}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := svc.DeleteAll(ctx, "u1")
	if !errors.Is(err, context.Canceled) || n != 0 {
		t.Fatalf("DeleteAll = %d, %v", n, err)
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/http/middleware"
	"github.com/tbourn/go-tutor-backend/internal/llm"
	"github.com/tbourn/go-tutor-backend/internal/prompt"
	"github.com/tbourn/go-tutor-backend/internal/repo"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("handlers_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// stubTutor answers chat requests with reply (or err) and title requests
// with a fixed title.
type stubTutor struct {
	mu    sync.Mutex
	reply string
	err   error
	chats int
}

func (s *stubTutor) client() llm.Client {
	return llm.ClientFunc(func(_ context.Context, system string, _ []llm.Turn) (*llm.Reply, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if system == prompt.TitleInstruction {
			return &llm.Reply{Content: "Frações"}, nil
		}
		s.chats++
		if s.err != nil {
			return nil, s.err
		}
		return &llm.Reply{Content: s.reply, Usage: llm.Usage{PromptTokens: 7, CompletionTokens: 3}}, nil
	})
}

func (s *stubTutor) chatCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chats
}

func (s *stubTutor) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type memIdem struct {
	mu   sync.Mutex
	recs map[string]string
}

func (m *memIdem) key(userID, convID, key string) string { return userID + "|" + convID + "|" + key }

func (m *memIdem) Remember(_ context.Context, userID, convID, key, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[m.key(userID, convID, key)] = messageID
	return nil
}

func (m *memIdem) lookup(_ context.Context, userID, convID, key string, _ time.Time) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, found := m.recs[m.key(userID, convID, key)]
	return id, found, nil
}

type testAPI struct {
	t     *testing.T
	db    *gorm.DB
	r     *gin.Engine
	tutor *stubTutor
}

// newTestAPI mounts every endpoint on real services over a fresh SQLite
// database. Requests identify with X-User-ID.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	tutor := &stubTutor{reply: "Para somar frações, iguala primeiro os denominadores."}
	idem := &memIdem{recs: map[string]string{}}

	msgSvc := &services.MessageService{DB: db, LLM: tutor.client()}
	t.Cleanup(msgSvc.Wait)

	h := New(Deps{
		Conversations: services.NewConversationService(db, nil),
		Messages:      msgSvc,
		Feedback:      &services.FeedbackService{DB: db},
		Profiles:      &services.ProfileService{DB: db},
		Review:        &services.ReviewService{DB: db},
		Progress:      &services.ProgressService{DB: db},
		Idempotency:   idem,
	})

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery())
	api := r.Group("/api/v1")
	api.Use(
		middleware.Identity(middleware.IdentityOptions{}),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, idem.lookup),
	)
	api.GET("/profile", h.GetProfile)
	api.PUT("/profile", h.UpdateProfile)
	api.PUT("/profile/plan", h.ChangePlan)
	api.GET("/modes", h.ListModes)
	api.POST("/conversations/active", h.ActiveConversation)
	api.POST("/conversations", h.CreateConversation)
	api.GET("/conversations", h.ListConversations)
	api.DELETE("/conversations", h.DeleteAllConversations)
	api.GET("/conversations/:id", h.GetConversation)
	api.PUT("/conversations/:id/title", h.UpdateConversationTitle)
	api.DELETE("/conversations/:id", h.DeleteConversation)
	api.GET("/conversations/:id/messages", h.ListMessages)
	api.POST("/conversations/:id/messages", h.PostMessage)
	api.POST("/messages/:id/feedback", h.LeaveFeedback)
	api.GET("/review/topics", h.ReviewTopics)
	api.POST("/progress/answers", h.RecordAnswer)

	return &testAPI{t: t, db: db, r: r, tutor: tutor}
}

// do sends a request as user (no identity header when empty). Extra
// headers come in name/value pairs.
func (a *testAPI) do(method, path, user string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, rd)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(middleware.HeaderUserID, user)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testAPI) setPlan(user string, plan domain.Plan) {
	a.t.Helper()
	ctx := context.Background()
	if _, err := repo.EnsureProfile(ctx, a.db, user); err != nil {
		a.t.Fatalf("ensure profile: %v", err)
	}
	if err := repo.SetProfilePlan(ctx, a.db, user, plan); err != nil {
		a.t.Fatalf("set plan: %v", err)
	}
}

// openConversation resumes the active conversation of mode for user.
func (a *testAPI) openConversation(user string, mode domain.Mode, subject, topic string) domain.Conversation {
	a.t.Helper()
	w := a.do(http.MethodPost, "/conversations/active", user, gin.H{"mode": mode, "subject": subject, "topic": topic})
	if w.Code != http.StatusOK {
		a.t.Fatalf("open conversation: %d %s", w.Code, w.Body.String())
	}
	var c domain.Conversation
	decode(a.t, w, &c)
	return c
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	var er ErrorResponse
	decode(t, w, &er)
	if er.Code != code {
		t.Fatalf("code = %q, want %q", er.Code, code)
	}
	if er.RequestID == "" {
		t.Fatal("missing request id in envelope")
	}
}

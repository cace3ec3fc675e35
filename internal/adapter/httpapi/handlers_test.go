package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smartpotato/smartpotato/internal/adapter/httpapi"
	"github.com/smartpotato/smartpotato/internal/adapter/memstore"
	"github.com/smartpotato/smartpotato/internal/adapter/openrouter"
	"github.com/smartpotato/smartpotato/internal/adapter/state"
	"github.com/smartpotato/smartpotato/internal/adapter/ws"
	"github.com/smartpotato/smartpotato/internal/domain/chat"
	"github.com/smartpotato/smartpotato/internal/domain/project"
	"github.com/smartpotato/smartpotato/internal/domain/reminder"
	"github.com/smartpotato/smartpotato/internal/service"
)

// testServer wires the full stack with the deterministic mock model.
type testServer struct {
	router http.Handler
	store  *memstore.Store
	orch   *service.Orchestrator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	visited, err := state.NewVisitedFlag(t.TempDir())
	if err != nil {
		t.Fatalf("state.NewVisitedFlag: %v", err)
	}

	hub := ws.NewHub()
	st := memstore.New(hub)
	ai := openrouter.NewMock(0)
	projects := service.NewProjectService(st)
	orch := service.NewOrchestrator(st, ai, hub, projects, 0)
	tidy := service.NewTidyService(st, ai, nil, hub, time.Minute)
	reminders := service.NewReminderService(st, orch, hub)

	r := chi.NewRouter()
	httpapi.NewHandlers(orch, projects, tidy, reminders, st, visited, hub).MountRoutes(r)

	t.Cleanup(func() {
		orch.Flush()
		tidy.Flush()
	})
	return &testServer{router: r, store: st, orch: orch}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestConversationLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/conversations", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	conv := decode[chat.Conversation](t, rec)
	if conv.Title != chat.DefaultTitle {
		t.Errorf("title = %q", conv.Title)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", chat.SendRequest{Content: "hello there"})
	if rec.Code != http.StatusOK {
		t.Fatalf("send status = %d body = %s", rec.Code, rec.Body.String())
	}
	result := decode[service.TurnResult](t, rec)
	if result.AssistantMessage == nil || result.AssistantMessage.Content == "" {
		t.Errorf("result = %+v, want assistant reply", result)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/conversations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decode[[]chat.Conversation](t, rec)
	if len(list) != 1 {
		t.Errorf("conversations = %d, want 1", len(list))
	}

	rec = s.do(t, http.MethodDelete, "/api/v1/conversations/"+conv.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/v1/conversations/"+conv.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestSendMessageRejectsBlank(t *testing.T) {
	s := newTestServer(t)

	conv := decode[chat.Conversation](t, s.do(t, http.MethodPost, "/api/v1/conversations", nil))
	rec := s.do(t, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", chat.SendRequest{Content: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSelectMode(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/conversations/mode", chat.SelectModeRequest{Mode: chat.ModeCreate})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Conversation *chat.Conversation `json:"conversation"`
		Chips        []string           `json:"chips"`
	}](t, rec)
	if resp.Conversation == nil || len(resp.Conversation.Messages) == 0 {
		t.Fatalf("resp = %+v, want opening message", resp)
	}
	if len(resp.Chips) == 0 {
		t.Error("expected choice chips for create mode")
	}

	rec = s.do(t, http.MethodPost, "/api/v1/conversations/mode", chat.SelectModeRequest{Mode: "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid mode status = %d", rec.Code)
	}
}

func TestRenameConversation(t *testing.T) {
	s := newTestServer(t)

	conv := decode[chat.Conversation](t, s.do(t, http.MethodPost, "/api/v1/conversations", nil))

	rec := s.do(t, http.MethodPut, "/api/v1/conversations/"+conv.ID+"/title", chat.RenameRequest{Title: "Trip Planning"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	renamed := decode[chat.Conversation](t, rec)
	if renamed.Title != "Trip Planning" {
		t.Errorf("title = %q", renamed.Title)
	}

	rec = s.do(t, http.MethodPut, "/api/v1/conversations/"+conv.ID+"/title", chat.RenameRequest{Title: "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title status = %d", rec.Code)
	}
}

func TestProjectChatMembership(t *testing.T) {
	s := newTestServer(t)

	p := decode[project.Project](t, s.do(t, http.MethodPost, "/api/v1/projects", project.CreateRequest{Name: "Backend"}))
	conv := decode[chat.Conversation](t, s.do(t, http.MethodPost, "/api/v1/conversations", nil))

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/chats/%s", p.ID, conv.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("add chat status = %d body = %s", rec.Code, rec.Body.String())
	}

	got := decode[chat.Conversation](t, s.do(t, http.MethodGet, "/api/v1/conversations/"+conv.ID, nil))
	if got.ProjectID != p.ID {
		t.Errorf("ProjectID = %q, want %q", got.ProjectID, p.ID)
	}

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%s/chats/%s", p.ID, conv.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove chat status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%s/chats/%s", p.ID, conv.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second remove status = %d", rec.Code)
	}
}

func TestProjectMemoryEndpoints(t *testing.T) {
	s := newTestServer(t)

	p := decode[project.Project](t, s.do(t, http.MethodPost, "/api/v1/projects", project.CreateRequest{Name: "Backend"}))

	rec := s.do(t, http.MethodPost, "/api/v1/projects/"+p.ID+"/memories", project.MemoryRequest{Title: "Auth", Content: "JWT tokens"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add memory status = %d body = %s", rec.Code, rec.Body.String())
	}
	m := decode[project.Memory](t, rec)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/projects/%s/memories/%s", p.ID, m.ID), project.MemoryRequest{Title: "Auth", Content: "JWT with refresh"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update memory status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%s/memories/%s", p.ID, m.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete memory status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%s/memories/%s", p.ID, m.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestReminderEndpoints(t *testing.T) {
	s := newTestServer(t)

	conv := decode[chat.Conversation](t, s.do(t, http.MethodPost, "/api/v1/conversations", nil))

	rec := s.do(t, http.MethodPost, "/api/v1/reminders", reminder.CreateRequest{
		ConversationID: conv.ID,
		DueAt:          time.Now().Add(-time.Minute),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("past due status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/reminders", reminder.CreateRequest{
		ConversationID: conv.ID,
		DueAt:          time.Now().Add(time.Hour),
		Note:           "follow up",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	rem := decode[reminder.Reminder](t, rec)
	if rem.Status != reminder.StatusPending {
		t.Errorf("status = %q", rem.Status)
	}

	rec = s.do(t, http.MethodPut, "/api/v1/reminders/"+rem.ID, reminder.UpdateRequest{Status: reminder.StatusCancelled})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	updated := decode[reminder.Reminder](t, rec)
	if updated.Status != reminder.StatusCancelled {
		t.Errorf("updated status = %q", updated.Status)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/reminders/due", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("due status = %d", rec.Code)
	}
	due := decode[[]reminder.Reminder](t, rec)
	if len(due) != 0 {
		t.Errorf("due = %v, want none", due)
	}
}

func TestTidyGroupEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/tidy?all=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	result := decode[service.GroupResult](t, rec)
	if len(result.Groups) != 0 {
		t.Errorf("groups = %v, want empty with no conversations", result.Groups)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/tidy/active", map[string]bool{"active": true})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("active status = %d", rec.Code)
	}
}

func TestFirstVisitFlag(t *testing.T) {
	s := newTestServer(t)

	visited := func() bool {
		rec := s.do(t, http.MethodGet, "/api/v1/first-visit", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get status = %d", rec.Code)
		}
		return decode[struct {
			Visited bool `json:"visited"`
		}](t, rec).Visited
	}

	if visited() {
		t.Fatal("fresh flag must be false")
	}
	if rec := s.do(t, http.MethodPost, "/api/v1/first-visit", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("mark status = %d", rec.Code)
	}
	if !visited() {
		t.Fatal("flag not set after mark")
	}
	if rec := s.do(t, http.MethodDelete, "/api/v1/first-visit", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", rec.Code)
	}
	if visited() {
		t.Fatal("flag still set after reset")
	}
}

func TestInvalidJSONBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

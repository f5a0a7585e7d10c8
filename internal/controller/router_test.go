package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/clock"
	"github.com/Freeeeeet/coach_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/coach_scheduler/internal/model"
	"github.com/Freeeeeet/coach_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

const (
	coachID   = 1
	studentID = 2
	otherID   = 3
)

type testServer struct {
	app   *fiber.App
	clock *clock.Fixed
	slots *memory.SlotStore
}

func newTestServer(t *testing.T, ready func(context.Context) error) *testServer {
	t.Helper()
	ctx := context.Background()

	dir := memory.NewDirectory()
	for _, u := range []*model.User{
		{ID: coachID, Name: "Coach Carter", Email: "carter@example.com", PhoneNumber: "555-0100", Role: model.RoleCoach},
		{ID: studentID, Name: "Sam Student", Email: "sam@example.com", PhoneNumber: "555-0200", Role: model.RoleStudent},
		{ID: otherID, Name: "Olga Coach", Email: "olga@example.com", PhoneNumber: "555-0300", Role: model.RoleCoach},
	} {
		if err := dir.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}

	slots := memory.NewSlotStore()
	clk := clock.NewFixed(now)
	logger := zap.NewNop()

	h := handlers.NewHandlers(
		service.NewSlotService(slots, dir, clk, nil, service.Policy{}, logger),
		service.NewQueryService(slots, dir, clk),
		service.NewUserService(dir),
		logger,
	)

	return &testServer{
		app:   NewRouter(h, Options{Ready: ready}, logger),
		clock: clk,
		slots: slots,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

type slotResponse struct {
	ID                int64     `json:"id"`
	CoachID           int64     `json:"coach_id"`
	StudentID         *int64    `json:"student_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	IsBooked          bool      `json:"is_booked"`
	SatisfactionScore *int      `json:"satisfaction_score"`
	Notes             *string   `json:"notes"`
	Coach             *struct {
		Name string `json:"name"`
	} `json:"coach"`
	Student *struct {
		Name string `json:"name"`
	} `json:"student"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func (s *testServer) createSlot(t *testing.T, start string) slotResponse {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/slots", `{"coach_id":1,"start_time":"`+start+`"}`)
	if status != http.StatusCreated {
		t.Fatalf("create slot: status %d body %s", status, body)
	}
	return decode[slotResponse](t, body)
}

func TestCreateSlot(t *testing.T) {
	s := newTestServer(t, nil)

	slot := s.createSlot(t, "2025-06-01T09:00:00Z")
	if !slot.EndTime.Equal(time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("end_time = %v", slot.EndTime)
	}
	if slot.IsBooked || slot.StudentID != nil {
		t.Errorf("new slot must be free: %+v", slot)
	}
	if slot.Coach == nil || slot.Coach.Name != "Coach Carter" {
		t.Errorf("coach summary missing: %+v", slot.Coach)
	}
}

func TestCreateSlotErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"student as coach", `{"coach_id":2,"start_time":"2025-06-01T09:00:00Z"}`, "INVALID_COACH"},
		{"unknown coach", `{"coach_id":99,"start_time":"2025-06-01T09:00:00Z"}`, "INVALID_COACH"},
		{"missing coach", `{"start_time":"2025-06-01T09:00:00Z"}`, "INVALID_COACH"},
		{"malformed time", `{"coach_id":1,"start_time":"tomorrow"}`, "INVALID_TIME"},
		{"missing time", `{"coach_id":1}`, "INVALID_TIME"},
		{"malformed body", `{"coach_id":`, "INVALID_BODY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/api/slots", tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", status, body)
			}
			if got := decode[errorResponse](t, body); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestBookSlot(t *testing.T) {
	s := newTestServer(t, nil)
	slot := s.createSlot(t, "2025-06-01T09:00:00Z")
	path := "/api/slots/" + itoa(slot.ID) + "/book"

	status, body := s.do(t, http.MethodPatch, path, `{"student_id":2}`)
	if status != http.StatusOK {
		t.Fatalf("book: status %d body %s", status, body)
	}
	booked := decode[slotResponse](t, body)
	if !booked.IsBooked || booked.StudentID == nil || *booked.StudentID != studentID {
		t.Errorf("unexpected booked slot %+v", booked)
	}
	if booked.Student == nil || booked.Student.Name != "Sam Student" {
		t.Errorf("student summary missing: %+v", booked.Student)
	}

	status, body = s.do(t, http.MethodPatch, path, `{"student_id":2}`)
	if status != http.StatusBadRequest || decode[errorResponse](t, body).Code != "ALREADY_BOOKED" {
		t.Errorf("second book: status %d body %s", status, body)
	}
}

func TestBookSlotErrors(t *testing.T) {
	s := newTestServer(t, nil)
	slot := s.createSlot(t, "2025-06-01T09:00:00Z")

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"missing slot", "/api/slots/999/book", `{"student_id":2}`, http.StatusNotFound, "SLOT_NOT_FOUND"},
		{"malformed slot id", "/api/slots/abc/book", `{"student_id":2}`, http.StatusNotFound, "SLOT_NOT_FOUND"},
		{"coach as student", "/api/slots/" + itoa(slot.ID) + "/book", `{"student_id":1}`, http.StatusBadRequest, "INVALID_STUDENT"},
		{"missing student", "/api/slots/" + itoa(slot.ID) + "/book", `{}`, http.StatusBadRequest, "INVALID_STUDENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPatch, tt.path, tt.body)
			if status != tt.status {
				t.Fatalf("status = %d, want %d, body %s", status, tt.status, body)
			}
			if got := decode[errorResponse](t, body); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestConcurrentBookingOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	slot := s.createSlot(t, "2025-06-01T09:00:00Z")
	path := "/api/slots/" + itoa(slot.ID) + "/book"

	const attempts = 8
	statuses := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"student_id":2}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := s.app.Test(req, -1)
			if err != nil {
				t.Errorf("book: %v", err)
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, st := range statuses {
		switch st {
		case http.StatusOK:
			ok++
		case http.StatusBadRequest:
			conflict++
		}
	}
	if ok != 1 || conflict != attempts-1 {
		t.Errorf("ok=%d conflict=%d, want 1 and %d", ok, conflict, attempts-1)
	}
}

func TestRecordFeedback(t *testing.T) {
	s := newTestServer(t, nil)
	slot := s.createSlot(t, "2025-06-01T09:00:00Z")
	id := itoa(slot.ID)

	status, body := s.do(t, http.MethodPatch, "/api/slots/"+id+"/feedback", `{"satisfaction_score":4,"notes":"x"}`)
	if status != http.StatusBadRequest || decode[errorResponse](t, body).Code != "SLOT_NOT_BOOKED" {
		t.Fatalf("feedback before booking: status %d body %s", status, body)
	}

	if status, body := s.do(t, http.MethodPatch, "/api/slots/"+id+"/book", `{"student_id":2}`); status != http.StatusOK {
		t.Fatalf("book: status %d body %s", status, body)
	}

	status, body = s.do(t, http.MethodPatch, "/api/slots/"+id+"/feedback", `{"satisfaction_score":6,"notes":"x"}`)
	if status != http.StatusBadRequest || decode[errorResponse](t, body).Code != "INVALID_SCORE" {
		t.Fatalf("score 6: status %d body %s", status, body)
	}

	status, body = s.do(t, http.MethodPatch, "/api/slots/"+id+"/feedback", `{"notes":"x"}`)
	if status != http.StatusBadRequest || decode[errorResponse](t, body).Code != "INVALID_SCORE" {
		t.Fatalf("missing score: status %d body %s", status, body)
	}

	status, body = s.do(t, http.MethodPatch, "/api/slots/"+id+"/feedback", `{"satisfaction_score":5,"notes":"great","coach_id":3}`)
	if status != http.StatusBadRequest || decode[errorResponse](t, body).Code != "NOT_SLOT_OWNER" {
		t.Fatalf("other coach: status %d body %s", status, body)
	}

	status, body = s.do(t, http.MethodPatch, "/api/slots/"+id+"/feedback", `{"satisfaction_score":5,"notes":"great","coach_id":1}`)
	if status != http.StatusOK {
		t.Fatalf("feedback: status %d body %s", status, body)
	}
	got := decode[slotResponse](t, body)
	if got.SatisfactionScore == nil || *got.SatisfactionScore != 5 || got.Notes == nil || *got.Notes != "great" {
		t.Errorf("unexpected feedback %+v", got)
	}
}

func TestQueries(t *testing.T) {
	s := newTestServer(t, nil)
	late := s.createSlot(t, "2025-06-03T09:00:00Z")
	early := s.createSlot(t, "2025-06-02T09:00:00Z")
	past := s.createSlot(t, "2025-05-30T09:00:00Z")
	if status, body := s.do(t, http.MethodPatch, "/api/slots/"+itoa(past.ID)+"/book", `{"student_id":2}`); status != http.StatusOK {
		t.Fatalf("book: %d %s", status, body)
	}

	_, body := s.do(t, http.MethodGet, "/api/slots/available", "")
	assertSlotIDs(t, "available", decode[[]slotResponse](t, body), early.ID, late.ID)

	_, body = s.do(t, http.MethodGet, "/api/slots/coach/1/upcoming", "")
	assertSlotIDs(t, "upcoming", decode[[]slotResponse](t, body), early.ID, late.ID)

	_, body = s.do(t, http.MethodGet, "/api/slots/coach/1/past", "")
	assertSlotIDs(t, "past", decode[[]slotResponse](t, body), past.ID)

	_, body = s.do(t, http.MethodGet, "/api/slots", "")
	assertSlotIDs(t, "all", decode[[]slotResponse](t, body), late.ID, early.ID, past.ID)

	status, body := s.do(t, http.MethodGet, "/api/slots/"+itoa(early.ID), "")
	if status != http.StatusOK || decode[slotResponse](t, body).ID != early.ID {
		t.Errorf("get slot: %d %s", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/slots/coach/2/upcoming", "")
	if status != http.StatusBadRequest || decode[errorResponse](t, body).Code != "INVALID_COACH" {
		t.Errorf("student as coach: %d %s", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/slots/coach/abc/past", "")
	if status != http.StatusBadRequest || decode[errorResponse](t, body).Code != "INVALID_COACH" {
		t.Errorf("malformed coach id: %d %s", status, body)
	}

	status, _ = s.do(t, http.MethodGet, "/api/slots/999", "")
	if status != http.StatusNotFound {
		t.Errorf("missing slot: %d", status)
	}
}

func TestEmptyListsAreArrays(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/api/slots", "/api/slots/available", "/api/slots/coach/1/past"} {
		status, body := s.do(t, http.MethodGet, path, "")
		if status != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
			t.Errorf("%s: %d %s", path, status, body)
		}
	}
}

func TestUsers(t *testing.T) {
	s := newTestServer(t, nil)

	_, body := s.do(t, http.MethodGet, "/api/users", "")
	if users := decode[[]model.User](t, body); len(users) != 3 {
		t.Errorf("users: %s", body)
	}

	_, body = s.do(t, http.MethodGet, "/api/users/type/coaches", "")
	coaches := decode[[]model.User](t, body)
	if len(coaches) != 2 || coaches[0].Role != model.RoleCoach {
		t.Errorf("coaches: %s", body)
	}

	_, body = s.do(t, http.MethodGet, "/api/users/type/students", "")
	if students := decode[[]model.User](t, body); len(students) != 1 || students[0].ID != studentID {
		t.Errorf("students: %s", body)
	}

	status, body := s.do(t, http.MethodGet, "/api/users/2", "")
	if status != http.StatusOK || decode[model.User](t, body).Email != "sam@example.com" {
		t.Errorf("get user: %d %s", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/users/42", "")
	if status != http.StatusNotFound || decode[errorResponse](t, body).Code != "USER_NOT_FOUND" {
		t.Errorf("missing user: %d %s", status, body)
	}
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, func(context.Context) error { return errors.New("db down") })

	status, body := s.do(t, http.MethodGet, "/health", "")
	if status != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Errorf("health: %d %s", status, body)
	}

	status, _ = s.do(t, http.MethodGet, "/ready", "")
	if status != http.StatusServiceUnavailable {
		t.Errorf("ready with failing store: %d", status)
	}

	status, body = s.do(t, http.MethodGet, "/metrics", "")
	if status != http.StatusOK || !strings.Contains(string(body), "coaching_http_requests_total") {
		t.Errorf("metrics: %d", status)
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q", got)
	}

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("generated request id missing")
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)
	status, body := s.do(t, http.MethodGet, "/api/nope", "")
	if status != http.StatusNotFound || decode[errorResponse](t, body).Code != "NOT_FOUND" {
		t.Errorf("unknown route: %d %s", status, body)
	}
}

func assertSlotIDs(t *testing.T, name string, slots []slotResponse, want ...int64) {
	t.Helper()
	if len(slots) != len(want) {
		t.Fatalf("%s: got %d slots, want %d", name, len(slots), len(want))
	}
	for i, s := range slots {
		if s.ID != want[i] {
			t.Errorf("%s[%d] = %d, want %d", name, i, s.ID, want[i])
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

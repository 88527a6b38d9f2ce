package presentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/delivery/http/controllers/middleware"
	"LiqLearns/internal/models"
	"LiqLearns/internal/service/presentation/playback"
	"LiqLearns/internal/service/presentation/upload"
	"LiqLearns/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func testRouter(user uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClientIDCtx, user)
		c.Set(middleware.ClientRolesCtx, []string{models.AuthorRole, models.LearnerRole})
	})
	return r
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{app_errors.ErrPresentationNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", app_errors.ErrSlideNotFound), http.StatusNotFound},
		{app_errors.ErrNotPresentationAuthor, http.StatusForbidden},
		{app_errors.ErrOversizeInput, http.StatusRequestEntityTooLarge},
		{app_errors.ErrUnsupportedExtension, http.StatusUnsupportedMediaType},
		{app_errors.NewParseError(app_errors.ErrMalformedXML, "ppt/presentation.xml", io.ErrUnexpectedEOF), http.StatusUnprocessableEntity},
		{app_errors.ErrInvalidLessonBreak, http.StatusUnprocessableEntity},
		{app_errors.ErrDuplicateResource, http.StatusConflict},
		{app_errors.ErrResourceActive, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

type fakeUploads struct {
	max      int64
	uploaded []string
}

func (f *fakeUploads) MaxBytes() int64 { return f.max }

func (f *fakeUploads) CheckFile(filename string, size int64) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pptx") {
		return app_errors.ErrUnsupportedExtension
	}
	if size > f.max {
		return app_errors.ErrOversizeInput
	}
	return nil
}

func (f *fakeUploads) Upload(_ context.Context, authorID uuid.UUID, filename string, r io.Reader, _ int64) (*upload.UploadResult, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, filename)
	return &upload.UploadResult{Presentation: &models.Presentation{ID: uuid.New(), AuthorID: authorID, FileName: filename}}, nil
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadPresentation(t *testing.T) {
	uploads := &fakeUploads{max: 1024}
	r := testRouter(uuid.New())
	r.POST("/presentations", NewUploadHandler(logger.NewDiscard(), uploads).UploadPresentation)

	cases := []struct {
		name     string
		filename string
		size     int
		want     int
	}{
		{"accepted", "deck.pptx", 10, http.StatusCreated},
		{"wrong extension", "deck.pdf", 10, http.StatusUnsupportedMediaType},
		{"too large", "deck.pptx", 2048, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		body, ct := multipartBody(t, tc.filename, bytes.Repeat([]byte("x"), tc.size))
		req := httptest.NewRequest(http.MethodPost, "/presentations", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, body = %s", tc.name, rec.Code, rec.Body.String())
		}
	}
	if len(uploads.uploaded) != 1 || uploads.uploaded[0] != "deck.pptx" {
		t.Fatalf("uploaded = %v", uploads.uploaded)
	}

	req := httptest.NewRequest(http.MethodPost, "/presentations", strings.NewReader(""))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file: status = %d", rec.Code)
	}
}

type fakeAuthoring struct {
	added []models.SlideResource
}

func (f *fakeAuthoring) AddResource(_ context.Context, _, _ uuid.UUID, r models.SlideResource) (models.SlideResource, error) {
	if r.ShowBeforeSlide == 0 {
		r.ShowBeforeSlide = r.ShowAfterSlide + 1
	}
	if err := r.Validate(); err != nil {
		return models.SlideResource{}, err
	}
	f.added = append(f.added, r)
	return r, nil
}

func (f *fakeAuthoring) RemoveResource(context.Context, uuid.UUID, uuid.UUID, string) error {
	return app_errors.ErrResourceNotFound
}

func (f *fakeAuthoring) Resources(context.Context, uuid.UUID, *int) ([]models.SlideResource, error) {
	return nil, nil
}

func (f *fakeAuthoring) AddLessonBreak(_ context.Context, _, _ uuid.UUID, after int) ([]models.LessonBreak, error) {
	return []models.LessonBreak{{ID: "b1", AfterSlide: after, LessonNumber: 1}}, nil
}

func (f *fakeAuthoring) RemoveLessonBreak(context.Context, uuid.UUID, uuid.UUID, string) ([]models.LessonBreak, error) {
	return nil, app_errors.ErrNotPresentationAuthor
}

func TestAuthoringRoutes(t *testing.T) {
	svc := &fakeAuthoring{}
	h := NewAuthoringHandler(logger.NewDiscard(), svc)
	r := testRouter(uuid.New())
	r.GET("/p/:presentation_id/resources", h.Resources)
	r.POST("/p/:presentation_id/resources", h.AddResource)
	r.DELETE("/p/:presentation_id/resources/:resource_id", h.DeleteResource)
	r.POST("/p/:presentation_id/lesson-breaks", h.AddLessonBreak)
	r.DELETE("/p/:presentation_id/lesson-breaks/:break_id", h.DeleteLessonBreak)
	base := "/p/" + uuid.NewString()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad id", http.MethodGet, "/p/nope/resources", "", http.StatusBadRequest},
		{"list", http.MethodGet, base + "/resources?slide=2", "", http.StatusOK},
		{"bad slide", http.MethodGet, base + "/resources?slide=x", "", http.StatusBadRequest},
		{"missing title", http.MethodPost, base + "/resources",
			`{"id":"r0","type":"video","show_after_slide":1,"content":{"url":"https://v/1"}}`, http.StatusUnprocessableEntity},
		{"add video", http.MethodPost, base + "/resources",
			`{"id":"r1","type":"video","title":"Intro","show_after_slide":1,"content":{"url":"https://v/1"}}`, http.StatusCreated},
		{"unknown type", http.MethodPost, base + "/resources",
			`{"id":"r2","type":"poll","title":"?","show_after_slide":1}`, http.StatusUnprocessableEntity},
		{"malformed", http.MethodPost, base + "/resources", `{`, http.StatusBadRequest},
		{"delete missing", http.MethodDelete, base + "/resources/zzz", "", http.StatusNotFound},
		{"add break", http.MethodPost, base + "/lesson-breaks", `{"after_slide":2}`, http.StatusCreated},
		{"delete break not author", http.MethodDelete, base + "/lesson-breaks/b1", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, body = %s", tc.name, rec.Code, rec.Body.String())
		}
	}
	if len(svc.added) != 1 || svc.added[0].ID != "r1" || svc.added[0].Content.Media == nil {
		t.Fatalf("added = %+v", svc.added)
	}
}

type memoryDecks map[uuid.UUID]*models.Presentation

func (m memoryDecks) PresentationByID(_ context.Context, id uuid.UUID) (*models.Presentation, error) {
	p, ok := m[id]
	if !ok {
		return nil, app_errors.ErrPresentationNotFound
	}
	return p, nil
}

type memoryStore struct {
	mu sync.Mutex
	p  models.PresentationProgress
}

func (m *memoryStore) Progress(context.Context, uuid.UUID, uuid.UUID) (models.PresentationProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p, nil
}

func (m *memoryStore) UpdateProgress(_ context.Context, _, _ uuid.UUID, u models.ProgressUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = m.p.Apply(u)
	return nil
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestPlaybackOverWebSocket(t *testing.T) {
	p := &models.Presentation{
		ID:          uuid.New(),
		TotalSlides: 2,
		Slides:      []models.ParsedSlide{{Index: 1, Title: "A"}, {Index: 2, Title: "B"}},
	}
	store := &memoryStore{}
	svc := playback.NewPlaybackService(logger.NewDiscard(), memoryDecks{p.ID: p}, store, playback.Config{})

	r := testRouter(uuid.New())
	r.GET("/p/:presentation_id/play", NewPlaybackHandler(logger.NewDiscard(), svc, nil).Play)
	srv := httptest.NewServer(r)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL+"/p/"+uuid.NewString()+"/play", nil); err == nil {
		t.Fatal("expected dial to unknown deck to fail")
	} else if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown deck response = %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/p/"+p.ID.String()+"/play", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	first := readMessage(t, conn)
	if first.Type != MessageSnapshot || first.SessionID == uuid.Nil || first.Snapshot.CurrentSlide != 1 {
		t.Fatalf("first message = %+v", first)
	}

	conn.WriteJSON(playback.Command{Action: playback.ActionNext})
	msg := readMessage(t, conn)
	if msg.Type != MessageSnapshot || msg.Snapshot.CurrentSlide != 2 {
		t.Fatalf("after next = %+v", msg)
	}

	conn.WriteJSON(playback.Command{Action: "jump"})
	msg = readMessage(t, conn)
	if msg.Type != MessageError || msg.Action != "jump" {
		t.Fatalf("unknown action = %+v", msg)
	}

	conn.WriteJSON(playback.Command{Action: playback.ActionNext})
	var sawComplete, sawSnapshot bool
	for i := 0; i < 2; i++ {
		msg = readMessage(t, conn)
		switch msg.Type {
		case MessageComplete:
			sawComplete = msg.Snapshot != nil && msg.Snapshot.Completed
		case MessageSnapshot:
			sawSnapshot = true
		}
	}
	if !sawComplete || !sawSnapshot {
		t.Fatalf("complete=%v snapshot=%v", sawComplete, sawSnapshot)
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, _ := store.Progress(context.Background(), uuid.Nil, p.ID)
		if got.Completed && got.CurrentSlide == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("progress not flushed: %+v", got)
		}
		time.Sleep(10 * time.Millisecond)
	}

	var raw map[string]any
	b, _ := json.Marshal(ServerMessage{Type: MessageReward, ResourceID: "q1"})
	json.Unmarshal(b, &raw)
	if _, ok := raw["snapshot"]; ok {
		t.Fatalf("reward message should omit snapshot: %s", b)
	}
}

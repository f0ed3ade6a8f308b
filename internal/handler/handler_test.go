package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"motioncapture/internal/config"
	"motioncapture/internal/dto"
	"motioncapture/internal/logger"
	"motioncapture/internal/middleware"
	"motioncapture/internal/model"
	"motioncapture/internal/repository/sqlite"
	"motioncapture/internal/service"
	"motioncapture/internal/service/storage"
	"motioncapture/internal/service/websocket"
	"motioncapture/internal/trigger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flatCodec struct{}

func (flatCodec) Decode(data []byte, at time.Time) (*trigger.PixelFrame, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	f := trigger.NewPixelFrame(8, 8, at)
	for i := range f.Pix {
		f.Pix[i] = data[0]
	}
	return f, nil
}

func (flatCodec) Encode(f *trigger.PixelFrame) ([]byte, error) {
	return []byte{f.Pix[0]}, nil
}

func newTestManager(t *testing.T) *service.Manager {
	t.Helper()

	db, err := sqlite.New(sqlite.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		PixelDiffThreshold:   trigger.DefaultPixelDiffThreshold,
		MotionPixelThreshold: trigger.DefaultMotionPixelThreshold,
		StillnessWindowMs:    1000,
		AudioHighThreshold:   trigger.DefaultAudioHighThreshold,
		AudioLowThreshold:    trigger.DefaultAudioLowThreshold,
		TriggerMode:          "combined",
		ProcessingInterval:   1,
		SnapshotLimit:        10,
	}
	log := logger.NewDiscard()
	store := storage.NewSnapshotStore(cfg.SnapshotLimit, log, sqlite.NewCaptureRepository(db))
	return service.NewManager(cfg, flatCodec{}, store, websocket.NewHubService(log), sqlite.NewSessionRepository(db), log)
}

func seedCapture(t *testing.T, m *service.Manager, camera string, seq uint64, data []byte) int64 {
	t.Helper()
	id, err := m.GetStore().Add(model.Capture{
		SessionID: "s-" + camera,
		Camera:    camera,
		Seq:       seq,
		Trigger:   "motion",
		Timestamp: time.Date(2025, 4, 2, 10, 30, int(seq), 0, time.UTC),
		Width:     8,
		Height:    8,
		MimeType:  "image/png",
	}, data)
	require.NoError(t, err)
	return id
}

func postForm(h http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestFrameAssembler(t *testing.T) {
	a := newFrameAssembler()

	assert.Nil(t, a.Push("cam", []byte{0x01, 0x02}), "chunk before SOI is dropped")
	assert.Nil(t, a.Push("cam", []byte{0xFF, 0xD8, 0xAA}))
	assert.Nil(t, a.Push("other", []byte{0xFF, 0xD8, 0x11, 0xFF, 0xD9}[:3]))
	frame := a.Push("cam", []byte{0xBB, 0xFF, 0xD9})
	assert.Equal(t, []byte{0xFF, 0xD8, 0xAA, 0xBB, 0xFF, 0xD9}, frame)

	// A new SOI discards the unfinished frame.
	a.Push("cam", []byte{0xFF, 0xD8, 0x01})
	frame = a.Push("cam", []byte{0xFF, 0xD8, 0x02, 0xFF, 0xD9})
	assert.Equal(t, []byte{0xFF, 0xD8, 0x02, 0xFF, 0xD9}, frame)

	frame = a.Push("other", []byte{0x22, 0xFF, 0xD9})
	assert.Equal(t, []byte{0xFF, 0xD8, 0x11, 0x22, 0xFF, 0xD9}, frame)
}

func TestParseAudioSample(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		camera  string
		want    float64
		wantErr bool
	}{
		{"explicit level", `{"camera":"front","level":22.5}`, "front", 22.5, false},
		{"zero level", `{"camera":"front","level":0}`, "front", 0, false},
		{"bins averaged and rounded up", `{"camera":"front","bins":[10,11]}`, "front", 11, false},
		{"bins clamped", `{"camera":"front","bins":[-5,300]}`, "front", 128, false},
		{"query camera", `{"level":3}`, "yard", 3, false},
		{"no level", `{"camera":"front"}`, "", 0, true},
		{"bad json", `{`, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera, level, err := parseAudioSample([]byte(tt.msg), "yard")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.camera, camera)
			assert.Equal(t, tt.want, level)
		})
	}

	_, _, err := parseAudioSample([]byte(`{"level":3}`), "")
	assert.Error(t, err, "camera is required")
}

func TestSessionHandlers(t *testing.T) {
	m := newTestManager(t)
	log := logger.NewDiscard()

	rec := postForm(StartSessionHandler(m, log, trigger.ModeCombined), url.Values{"camera": {"front"}, "mode": {"audio"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var started model.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, "audio", started.Mode)
	assert.NotEmpty(t, started.ID)

	rec = postForm(StartSessionHandler(m, log, trigger.ModeCombined), url.Values{"camera": {"front"}, "mode": {"loud"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(StartSessionHandler(m, log, trigger.ModeCombined), url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	GetSessionsHandler(m, log)(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var statuses []service.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	assert.Equal(t, started.ID, statuses[0].ID)
	assert.True(t, statuses[0].AudioArmed)

	rec = postForm(StopSessionHandler(m, log), url.Values{"camera": {"front"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = postForm(StopSessionHandler(m, log), url.Values{"camera": {"front"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	StopSessionHandler(m, log)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetCapturesHandler_Paginates(t *testing.T) {
	m := newTestManager(t)
	for seq := uint64(1); seq <= 5; seq++ {
		seedCapture(t, m, "front", seq, []byte{byte(seq)})
	}
	seedCapture(t, m, "yard", 1, []byte{9})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/captures?camera=front&limit=2&page=2", nil)
	GetCapturesHandler(m, logger.NewDiscard())(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Captures []struct {
			Seq       uint64 `json:"seq"`
			Camera    string `json:"camera"`
			Date      string `json:"date"`
			TimeOfDay string `json:"timeOfDay"`
			URL       string `json:"url"`
		} `json:"captures"`
		Length      int   `json:"length"`
		TotalPages  int   `json:"totalPages"`
		CurrentPage int   `json:"currentPage"`
		MemoryBytes int64 `json:"memoryBytes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 5, body.Length)
	assert.Equal(t, 3, body.TotalPages)
	assert.Equal(t, 2, body.CurrentPage)
	assert.Equal(t, int64(6), body.MemoryBytes)
	require.Len(t, body.Captures, 2)
	assert.Equal(t, uint64(3), body.Captures[0].Seq, "newest first")
	assert.Equal(t, "02-04-2025", body.Captures[0].Date)
	assert.Equal(t, "10:30:03", body.Captures[0].TimeOfDay)
	assert.True(t, strings.HasPrefix(body.Captures[0].URL, "/api/captures/view?id="))
}

func TestGetCapturesHandler_BoundsPaging(t *testing.T) {
	m := newTestManager(t)
	seedCapture(t, m, "front", 1, []byte{1})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/captures?limit=9223372036854775807&page=9223372036854775807", nil)
	GetCapturesHandler(m, logger.NewDiscard())(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.CapturesData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, maxPageSize, body.Limit)
	assert.Equal(t, maxPage, body.CurrentPage)
	assert.Equal(t, 1, body.Length)
	assert.Empty(t, body.Captures)
}

func TestViewDeleteClearCaptures(t *testing.T) {
	m := newTestManager(t)
	log := logger.NewDiscard()
	id := seedCapture(t, m, "front", 1, []byte("png-bytes"))
	seedCapture(t, m, "yard", 1, []byte("other"))

	view := func(id string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		ViewCaptureHandler(m, log)(rec, httptest.NewRequest(http.MethodGet, "/api/captures/view?id="+id, nil))
		return rec
	}

	rec := view(strconvID(id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, view("abc").Code)
	assert.Equal(t, http.StatusNotFound, view("999").Code)

	rec = postForm(DeleteCaptureHandler(m, log), url.Values{"id": {strconvID(id)}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, view(strconvID(id)).Code)

	rec = postForm(ClearCapturesHandler(m, log), url.Values{})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, total, err := m.GetStore().List(&dto.CaptureFilters{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestLoginLogout(t *testing.T) {
	cfg := &config.Config{Password: "secret"}
	log := logger.NewDiscard()

	rec := postForm(LoginHandler(cfg, log), url.Values{"password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postForm(LoginHandler(cfg, log), url.Values{"password": {"secret"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.AuthCookie, cookies[0].Name)
	assert.Equal(t, "true", cookies[0].Value)

	rec = httptest.NewRecorder()
	LogoutHandler(rec, httptest.NewRequest(http.MethodGet, "/auth/logout", nil))
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAtoiDefaultAndTimestamps(t *testing.T) {
	assert.Equal(t, 7, atoiDefault("7", 1))
	assert.Equal(t, 1, atoiDefault("-3", 1))
	assert.Equal(t, 1, atoiDefault("x", 1))

	assert.True(t, parseTimestamp("").IsZero())
	assert.True(t, parseTimestamp("yesterday").IsZero())
	assert.Equal(t, time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC), parseTimestamp("2025-04-02T10:30"))
}

func strconvID(id int64) string {
	return strconv.FormatInt(id, 10)
}

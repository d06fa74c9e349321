package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/grandtree/internal/log"
	"github.com/teslashibe/grandtree/pkg/camera"
	"github.com/teslashibe/grandtree/pkg/gesture"
	"github.com/teslashibe/grandtree/pkg/photos"
	"github.com/teslashibe/grandtree/pkg/protocol"
	"github.com/teslashibe/grandtree/pkg/state"
)

type fakeSwitch struct {
	mu      sync.Mutex
	calls   []bool
	err     error
	onApply func(bool)
}

func (f *fakeSwitch) SetCameraEnabled(_ context.Context, enabled bool) error {
	f.mu.Lock()
	f.calls = append(f.calls, enabled)
	err, fn := f.err, f.onApply
	f.mu.Unlock()
	if err == nil && fn != nil {
		fn(enabled)
	}
	return err
}

type fakeGesture struct{}

func (fakeGesture) Status() (gesture.Status, string) { return gesture.ReadyNoHand, gesture.MsgNoHand }
func (fakeGesture) Stats() gesture.Stats             { return gesture.Stats{Frames: 7} }
func (fakeGesture) Running() bool                    { return true }

func newTestServer(t *testing.T, addr string) (*Server, *state.Store, *fakeSwitch) {
	t.Helper()
	store := state.NewStore()
	sw := &fakeSwitch{onApply: store.SetCameraEnabled}
	cfg := DefaultConfig()
	if addr != "" {
		cfg.Addr = addr
	}
	srv := NewServer(cfg, Deps{
		Store:   store,
		Camera:  sw,
		Gesture: fakeGesture{},
		Photos:  photos.New(photos.DefaultConfig()),
		Capture: camera.NewManager(camera.DefaultConfig()),
		Logger:  log.Discard(),
	})
	return srv, store, sw
}

func doJSON(t *testing.T, srv *Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func TestGetState(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	resp, body := doJSON(t, srv, http.MethodGet, "/api/state", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "FORMED", body["mode"])
	assert.Len(t, body["photos"], 4)
	assert.EqualValues(t, 0, body["currentPhotoIndex"])
}

func TestPostMode(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   state.Mode
	}{
		{"chaos", `{"mode":"CHAOS"}`, http.StatusOK, state.Chaos},
		{"lower case", `{"mode":"formed"}`, http.StatusOK, state.Formed},
		{"unknown", `{"mode":"SPIN"}`, http.StatusBadRequest, state.Formed},
		{"malformed", `{"mode":`, http.StatusBadRequest, state.Formed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, store, _ := newTestServer(t, "")
			resp, _ := doJSON(t, srv, http.MethodPost, "/api/mode", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.want, store.Mode())
			if tt.status == http.StatusOK {
				assert.Equal(t, state.SourceUI, store.Snapshot().ModeSource)
			}
		})
	}
}

func TestPostCamera(t *testing.T) {
	srv, store, sw := newTestServer(t, "")

	resp, body := doJSON(t, srv, http.MethodPost, "/api/camera", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["enabled"])
	assert.True(t, store.Snapshot().CameraEnabled)
	assert.Equal(t, []bool{true}, sw.calls)

	sw.mu.Lock()
	sw.err = camera.ErrPermissionDenied
	sw.mu.Unlock()
	resp, body = doJSON(t, srv, http.MethodPost, "/api/camera", `{"enabled":true}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body["error"], "permission")
}

func TestPostCamera_NotConfigured(t *testing.T) {
	srv := NewServer(DefaultConfig(), Deps{Store: state.NewStore(), Logger: log.Discard()})
	resp, _ := doJSON(t, srv, http.MethodPost, "/api/camera", `{"enabled":true}`)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/gesture", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gesture.CameraOff.String(), body["status"])
}

func TestCameraConfig(t *testing.T) {
	srv, _, _ := newTestServer(t, "")

	resp, body := doJSON(t, srv, http.MethodGet, "/api/camera/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 320, body["width"])

	resp, body = doJSON(t, srv, http.MethodPut, "/api/camera/config", `{"preset":"vga"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 640, body["width"])

	resp, _ = doJSON(t, srv, http.MethodPut, "/api/camera/config", `{"width":10}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPut, "/api/camera/config", `{"zoom":2}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, srv, http.MethodGet, "/api/camera/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 640, body["width"], "rejected updates keep the stored config")
}

func TestCameraPresets(t *testing.T) {
	srv, _, _ := newTestServer(t, "")

	resp, body := doJSON(t, srv, http.MethodGet, "/api/camera/presets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	presets, ok := body["presets"].(map[string]interface{})
	require.True(t, ok, "presets should be an object: %v", body)
	assert.Contains(t, presets, "vga")
	assert.Len(t, body["order"], len(presets))
	assert.Contains(t, body, "capabilities")
}

func TestCyclePhotos(t *testing.T) {
	srv, store, _ := newTestServer(t, "")

	resp, body := doJSON(t, srv, http.MethodPost, "/api/photos/cycle", `{"direction":-1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["currentPhotoIndex"])
	assert.Equal(t, 3, store.Snapshot().Current)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/photos/cycle", `{"direction":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCyclePhotos_Empty(t *testing.T) {
	store := state.NewStore(state.WithPhotos(nil))
	srv := NewServer(DefaultConfig(), Deps{Store: store, Logger: log.Discard()})
	resp, _ := doJSON(t, srv, http.MethodPost, "/api/photos/cycle", `{"direction":1}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSelection(t *testing.T) {
	srv, store, _ := newTestServer(t, "")

	resp, _ := doJSON(t, srv, http.MethodPut, "/api/photos/selected", `{"id":"default-c"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "default-c", store.Snapshot().Selected)

	resp, _ = doJSON(t, srv, http.MethodPut, "/api/photos/selected", `{"id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "default-c", store.Snapshot().Selected)

	resp, _ = doJSON(t, srv, http.MethodDelete, "/api/photos/selected", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, store.Snapshot().Selected)
}

func TestGesture(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	resp, body := doJSON(t, srv, http.MethodGet, "/api/gesture", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gesture.ReadyNoHand.String(), body["status"])
	assert.Equal(t, gesture.MsgNoHand, body["message"])
	assert.EqualValues(t, 7, body["frames"])
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, files map[string][]byte, order ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range order {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func upload(t *testing.T, srv *Server, body io.Reader, contentType string) (*http.Response, UploadResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := srv.App().Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestUpload(t *testing.T) {
	srv, store, _ := newTestServer(t, "")
	body, ct := multipartBody(t, map[string][]byte{"tree.png": pngBytes(t)}, "tree.png")

	resp, out := upload(t, srv, body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, out.Added, 1)
	assert.Empty(t, out.Failed)
	assert.True(t, strings.HasPrefix(out.Added[0].URI, "data:image/jpeg;base64,"))

	snap := store.Snapshot()
	require.Len(t, snap.Photos, 5)
	assert.Equal(t, out.Added[0].ID, snap.Photos[0].ID, "new photos are prepended")
}

func TestUpload_PartialFailure(t *testing.T) {
	srv, store, _ := newTestServer(t, "")
	body, ct := multipartBody(t, map[string][]byte{
		"good.png":  pngBytes(t),
		"notes.txt": []byte("not an image"),
	}, "good.png", "notes.txt")

	resp, out := upload(t, srv, body, ct)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Len(t, out.Added, 1)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, "notes.txt", out.Failed[0].Name)
	assert.Len(t, store.Snapshot().Photos, 5, "good file is still added")
}

func TestUpload_NoFiles(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	resp, _ := doJSON(t, srv, http.MethodPost, "/api/photos", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketUpgradeRequired(t *testing.T) {
	srv, _, _ := newTestServer(t, "")
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/ws/state", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func runServer(t *testing.T, addr string) (*Server, *state.Store) {
	t.Helper()
	srv, store, _ := newTestServer(t, addr)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(6 * time.Second):
			t.Error("server did not stop")
		}
	})
	time.Sleep(100 * time.Millisecond)
	return srv, store
}

func readMessage(t *testing.T, ws *websocket.Conn) *protocol.Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	msg, err := protocol.ParseMessage(data)
	require.NoError(t, err)
	return msg
}

func TestStateWebSocket(t *testing.T) {
	_, store := runServer(t, ":18091")

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18091/ws/state", nil)
	require.NoError(t, err)
	defer ws.Close()

	first := readMessage(t, ws)
	require.Equal(t, protocol.TypeState, first.Type)
	snap, err := first.GetState()
	require.NoError(t, err)
	assert.Equal(t, state.Formed, snap.Mode)
	assert.Equal(t, protocol.TypeGesture, readMessage(t, ws).Type)

	cmd, _ := protocol.NewModeMessage(state.Chaos)
	data, _ := cmd.Bytes()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, data))

	msg := readMessage(t, ws)
	require.Equal(t, protocol.TypeState, msg.Type)
	snap, _ = msg.GetState()
	assert.Equal(t, state.Chaos, snap.Mode)
	assert.Equal(t, state.Chaos, store.Mode())

	bad, _ := protocol.NewSelectMessage("missing")
	data, _ = bad.Bytes()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, data))
	msg = readMessage(t, ws)
	require.Equal(t, protocol.TypeError, msg.Type)
	e, _ := msg.GetError()
	assert.Equal(t, protocol.TypeSelect, e.Command)

	ping, _ := protocol.NewPingMessage("p1", time.Now().UnixMilli())
	data, _ = ping.Bytes()
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, data))
	msg = readMessage(t, ws)
	require.Equal(t, protocol.TypePong, msg.Type)
	pong, _ := msg.GetPongData()
	assert.Equal(t, "p1", pong.ID)
}

func TestFramesWebSocket(t *testing.T) {
	srv, _ := runServer(t, ":18092")

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18092/ws/frames", nil)
	require.NoError(t, err)
	defer ws.Close()

	require.Eventually(t, func() bool { return srv.FrameClients() == 1 }, time.Second, 10*time.Millisecond)
	srv.SendFrame([]byte("GTF1-frame"))

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	assert.Equal(t, []byte("GTF1-frame"), data)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{state.ErrUnknownPhoto, http.StatusNotFound},
		{state.ErrNoPhotos, http.StatusConflict},
		{camera.ErrUnavailable, http.StatusServiceUnavailable},
		{&photos.IngestError{Name: "a", Err: photos.ErrTooLarge}, http.StatusRequestEntityTooLarge},
		{photos.ErrTooMany, http.StatusRequestEntityTooLarge},
		{errors.New("other"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.Empty(t, DefaultConfig().Validate())
	assert.Len(t, Config{}.Validate(), 2)
}

package web

import (
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/grandtree/pkg/camera"
	"github.com/teslashibe/grandtree/pkg/photos"
	"github.com/teslashibe/grandtree/pkg/state"
)

var (
	errNoCamera     = errors.New("web: camera control not configured")
	errNoDirection  = errors.New("web: direction must be non-zero")
	errNoFiles      = errors.New("web: no files in upload")
	errNotMultipart = errors.New("web: expected multipart form with field \"files\"")
)

// statusFor maps command errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, state.ErrUnknownPhoto):
		return fiber.StatusNotFound
	case errors.Is(err, state.ErrNoPhotos):
		return fiber.StatusConflict
	case errors.Is(err, errNoCamera):
		return fiber.StatusNotImplemented
	case errors.Is(err, camera.ErrUnavailable), errors.Is(err, camera.ErrPermissionDenied):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, photos.ErrTooLarge), errors.Is(err, photos.ErrTooMany):
		return fiber.StatusRequestEntityTooLarge
	}
	return fiber.StatusBadRequest
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// Commands shared by the REST handlers and /ws/state.

func (s *Server) setMode(raw string) (state.Mode, error) {
	m, err := state.ParseMode(raw)
	if err != nil {
		return "", err
	}
	s.deps.Store.SetMode(m, state.SourceUI)
	return m, nil
}

func (s *Server) setCamera(ctx context.Context, enabled bool) error {
	if s.deps.Camera == nil {
		return errNoCamera
	}
	return s.deps.Camera.SetCameraEnabled(ctx, enabled)
}

func (s *Server) cycle(dir int) (int, error) {
	if dir == 0 {
		return 0, errNoDirection
	}
	return s.deps.Store.CyclePhoto(dir)
}

func (s *Server) selectPhoto(id string) error {
	if id == "" {
		s.deps.Store.ClearSelection()
		return nil
	}
	return s.deps.Store.SelectPhoto(id)
}

// handleHealth reports liveness and subscriber counts
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":           true,
		"stateClients": s.stateHub.ClientCount(),
		"frameClients": s.framesHub.ClientCount(),
	})
}

// handleState returns the current snapshot
func (s *Server) handleState(c *fiber.Ctx) error {
	return c.JSON(s.deps.Store.Snapshot())
}

// ModeRequest is the body of POST /api/mode
type ModeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleMode(c *fiber.Ctx) error {
	var req ModeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, err)
	}
	m, err := s.setMode(req.Mode)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"mode": m})
}

// CameraRequest is the body of POST /api/camera
type CameraRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) handleCamera(c *fiber.Ctx) error {
	var req CameraRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, err)
	}
	if err := s.setCamera(c.UserContext(), req.Enabled); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"enabled": req.Enabled,
		"gesture": s.gestureData(),
	})
}

func (s *Server) handleGetCameraConfig(c *fiber.Ctx) error {
	if s.deps.Capture == nil {
		return fail(c, errNoCamera)
	}
	return c.JSON(s.deps.Capture.GetConfigJSON())
}

// handlePutCameraConfig applies a partial update such as
// {"preset":"low"} or {"width":640,"height":480}.
func (s *Server) handlePutCameraConfig(c *fiber.Ctx) error {
	if s.deps.Capture == nil {
		return fail(c, errNoCamera)
	}
	patch, err := camera.ParsePatch(c.Body())
	if err != nil {
		return fail(c, err)
	}
	if err := s.deps.Capture.ApplyPatch(patch); err != nil {
		return fail(c, err)
	}
	return c.JSON(s.deps.Capture.GetConfigJSON())
}

// handleCameraPresets lists the named configs and the accepted limits.
func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets":      camera.Presets(),
		"order":        camera.PresetNames(),
		"capabilities": camera.Capabilities(),
	})
}

// UploadFailure describes one rejected file.
type UploadFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadResponse is returned by POST /api/photos.
type UploadResponse struct {
	Added  []state.Photo   `json:"added"`
	Failed []UploadFailure `json:"failed,omitempty"`
}

// handleUpload ingests multipart "files". Good files are added even when
// others in the same batch fail.
func (s *Server) handleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, errNotMultipart)
	}
	files := form.File["files"]
	if len(files) == 0 {
		return fail(c, errNoFiles)
	}

	uploads := make([]photos.Upload, 0, len(files))
	var failed []UploadFailure
	var firstErr error
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			failed = append(failed, UploadFailure{Name: fh.Filename, Error: err.Error()})
			firstErr = cmpFirst(firstErr, err)
			continue
		}
		uploads = append(uploads, photos.Upload{Name: fh.Filename, Data: data})
	}

	added, errs := s.deps.Photos.IngestAll(c.UserContext(), uploads)
	for _, err := range errs {
		var ie *photos.IngestError
		name := ""
		if errors.As(err, &ie) {
			name = ie.Name
		}
		failed = append(failed, UploadFailure{Name: name, Error: err.Error()})
		firstErr = cmpFirst(firstErr, err)
	}
	s.deps.Store.AddPhotos(added...)
	if len(added) > 0 {
		s.log.Info("photos added", "count", len(added), "failed", len(failed))
	}

	resp := UploadResponse{Added: added, Failed: failed}
	if resp.Added == nil {
		resp.Added = []state.Photo{}
	}
	if firstErr != nil {
		return c.Status(statusFor(firstErr)).JSON(resp)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func cmpFirst(first, err error) error {
	if first != nil {
		return first
	}
	return err
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// CycleRequest is the body of POST /api/photos/cycle
type CycleRequest struct {
	Direction int `json:"direction"`
}

func (s *Server) handleCycle(c *fiber.Ctx) error {
	var req CycleRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, err)
	}
	idx, err := s.cycle(req.Direction)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"currentPhotoIndex": idx})
}

// SelectRequest is the body of PUT /api/photos/selected
type SelectRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSelect(c *fiber.Ctx) error {
	var req SelectRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, err)
	}
	if err := s.selectPhoto(req.ID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"selectedPhoto": req.ID})
}

func (s *Server) handleClearSelection(c *fiber.Ctx) error {
	s.deps.Store.ClearSelection()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGesture(c *fiber.Ctx) error {
	return c.JSON(s.gestureData())
}

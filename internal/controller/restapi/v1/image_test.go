package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andreyxaxa/image-vault/internal/dto"
	"github.com/andreyxaxa/image-vault/internal/entity"
	"github.com/andreyxaxa/image-vault/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	uploadFn func(ctx context.Context, data io.Reader, fileName, owner string, size int64) (*entity.Image, error)
	fetchFn  func(ctx context.Context, id uuid.UUID) (*entity.Image, []byte, string, error)
	updateFn func(ctx context.Context, id uuid.UUID, patch dto.UpdateImage) error
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubUseCase) Upload(ctx context.Context, data io.Reader, fileName, owner string, size int64) (*entity.Image, error) {
	return s.uploadFn(ctx, data, fileName, owner, size)
}

func (s *stubUseCase) Fetch(ctx context.Context, id uuid.UUID) (*entity.Image, []byte, string, error) {
	return s.fetchFn(ctx, id)
}

func (s *stubUseCase) Update(ctx context.Context, id uuid.UUID, patch dto.UpdateImage) error {
	return s.updateFn(ctx, id, patch)
}

func (s *stubUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUseCase) Reconcile(context.Context, bool) error { return nil }

func (s *stubUseCase) GetPendingEvents(context.Context, int, int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}
func (s *stubUseCase) MarkAsProcessingBatch(context.Context, []*entity.OutboxEvent) error { return nil }
func (s *stubUseCase) MarkAsProcessedBatch(context.Context, []*entity.OutboxEvent) error  { return nil }
func (s *stubUseCase) IncrementRetryCountBatch(context.Context, []*entity.OutboxEvent) error {
	return nil
}
func (s *stubUseCase) MarkMaxRetriesAsFailed(context.Context, int) error { return nil }
func (s *stubUseCase) CleanupOutbox(context.Context) error               { return nil }

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(interface{}, ...interface{}) {}
func (nopLogger) Fatal(interface{}, ...interface{}) {}

func newTestApp(stub *stubUseCase) *fiber.App {
	app := fiber.New()
	NewImageRoutes(app, stub, nopLogger{})
	return app
}

func multipartBody(t *testing.T, fileName string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadImageCreated(t *testing.T) {
	content := bytes.Repeat([]byte{0xFF}, 17)
	stub := &stubUseCase{
		uploadFn: func(_ context.Context, data io.Reader, fileName, owner string, size int64) (*entity.Image, error) {
			b, err := io.ReadAll(data)
			require.NoError(t, err)
			assert.Equal(t, content, b)
			assert.Equal(t, "cat.png", fileName)
			assert.Equal(t, "", owner)
			assert.Equal(t, int64(len(content)), size)

			return &entity.Image{ID: uuid.New(), FileName: fileName, Owner: "anon"}, nil
		},
	}
	app := newTestApp(stub)

	body, contentType := multipartBody(t, "cat.png", content, nil)
	req := httptest.NewRequest(http.MethodPost, "/images", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var record struct {
		ID       string `json:"id"`
		FileName string `json:"file_name"`
		Owner    string `json:"owner"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "cat.png", record.FileName)
	assert.Equal(t, "anon", record.Owner)
}

func TestUploadImageOwnerField(t *testing.T) {
	stub := &stubUseCase{
		uploadFn: func(_ context.Context, _ io.Reader, fileName, owner string, _ int64) (*entity.Image, error) {
			assert.Equal(t, "alice", owner)

			return &entity.Image{ID: uuid.New(), FileName: fileName, Owner: owner}, nil
		},
	}
	app := newTestApp(stub)

	body, contentType := multipartBody(t, "cat.png", []byte("meow"), map[string]string{"owner": "alice"})
	req := httptest.NewRequest(http.MethodPost, "/images", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestUploadImageNoFilePart(t *testing.T) {
	app := newTestApp(&stubUseCase{})

	req := httptest.NewRequest(http.MethodPost, "/images", bytes.NewReader(nil))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownloadImageHeaders(t *testing.T) {
	id := uuid.New()
	content := bytes.Repeat([]byte{0xFF}, 17)
	stub := &stubUseCase{
		fetchFn: func(_ context.Context, got uuid.UUID) (*entity.Image, []byte, string, error) {
			assert.Equal(t, id, got)

			return &entity.Image{ID: got, FileName: "cat.png", Owner: "anon"}, content, "image/png", nil
		},
	}
	app := newTestApp(stub)

	req := httptest.NewRequest(http.MethodGet, "/images/"+id.String(), nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="cat.png"`, resp.Header.Get(fiber.HeaderContentDisposition))

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, b)
}

func TestDownloadImageNotFound(t *testing.T) {
	stub := &stubUseCase{
		fetchFn: func(context.Context, uuid.UUID) (*entity.Image, []byte, string, error) {
			return nil, nil, "", fmt.Errorf("ImageUseCase - Fetch: %w", errs.ErrRecordNotFound)
		},
	}
	app := newTestApp(stub)

	req := httptest.NewRequest(http.MethodGet, "/images/"+uuid.NewString(), nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownloadImageInvalidID(t *testing.T) {
	app := newTestApp(&stubUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/images/not-a-uuid", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateImageOK(t *testing.T) {
	id := uuid.New()
	stub := &stubUseCase{
		updateFn: func(_ context.Context, got uuid.UUID, patch dto.UpdateImage) error {
			assert.Equal(t, id, got)
			assert.Equal(t, "alice", patch.Owner)
			assert.Empty(t, patch.FileName)

			return nil
		},
	}
	app := newTestApp(stub)

	req := httptest.NewRequest(http.MethodPatch, "/images/"+id.String(), bytes.NewReader([]byte(`{"owner":"alice"}`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateImageEmptyPatch(t *testing.T) {
	stub := &stubUseCase{
		updateFn: func(context.Context, uuid.UUID, dto.UpdateImage) error {
			return fmt.Errorf("ImageUseCase - Update: %w", errs.ErrInvalidRequest)
		},
	}
	app := newTestApp(stub)

	req := httptest.NewRequest(http.MethodPatch, "/images/"+uuid.NewString(), bytes.NewReader([]byte(`{}`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateImageNotFound(t *testing.T) {
	stub := &stubUseCase{
		updateFn: func(context.Context, uuid.UUID, dto.UpdateImage) error {
			return fmt.Errorf("ImageUseCase - Update: %w", errs.ErrRecordNotFound)
		},
	}
	app := newTestApp(stub)

	req := httptest.NewRequest(http.MethodPatch, "/images/"+uuid.NewString(), bytes.NewReader([]byte(`{"owner":"alice"}`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteImageOK(t *testing.T) {
	called := false
	stub := &stubUseCase{
		deleteFn: func(context.Context, uuid.UUID) error {
			called = true
			return nil
		},
	}
	app := newTestApp(stub)

	req := httptest.NewRequest(http.MethodDelete, "/images/"+uuid.NewString(), nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, called)
}

func TestDeleteImageInvalidID(t *testing.T) {
	app := newTestApp(&stubUseCase{})

	req := httptest.NewRequest(http.MethodDelete, "/images/not-a-uuid", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestViewImagePage(t *testing.T) {
	id := uuid.New()
	app := newTestApp(&stubUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/images/"+id.String()+"/view", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), fmt.Sprintf(`<img src="/images/%s"`, id))
}

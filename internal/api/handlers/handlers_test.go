package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/internal/repository"
	"github.com/maheshrc27/astraboltz/internal/service"
	"github.com/maheshrc27/astraboltz/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

var (
	handlerNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	pngBytes   = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateText(ctx context.Context, prompt string, image *service.ImageInput) (string, error) {
	args := m.Called(ctx, prompt, image)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	args := m.Called(ctx, prompt, schema)
	return args.String(0), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

type readOnlySlot struct{}

func (readOnlySlot) Read(ctx context.Context) ([]byte, error) { return nil, repository.ErrSlotEmpty }
func (readOnlySlot) Write(ctx context.Context, data []byte) error {
	return errors.New("read-only file system")
}

type fixture struct {
	app        *fiber.App
	repo       repository.PostRepository
	gen        *MockGenerator
	dispatcher *MockDispatcher
}

func newFixture(t *testing.T, slot repository.CredentialSlot) *fixture {
	t.Helper()
	clock := func() time.Time { return handlerNow }

	repo := repository.NewPostRepository(clock)
	media := service.NewMemoryMediaStore()
	gen := new(MockGenerator)
	dispatcher := new(MockDispatcher)
	if slot == nil {
		slot = repository.NewFileSlot(t.TempDir(), "astra-boltz-api-keys")
	}

	routes := Routes{
		Post:     NewPostHandler(service.NewPostService(repo, media, clock, time.UTC, time.Minute, nil), dispatcher),
		Calendar: NewCalendarHandler(service.NewCalendarService(repo, clock, time.UTC)),
		Assist:   NewAssistHandler(service.NewAssistService(gen, nil)),
		Keys:     NewApiKeyHandler(service.NewApiKeyService(repository.NewApiKeyRepository(slot, ""))),
		Platform: NewPlatformHandler(media),
	}

	app := fiber.New()
	routes.Mount(app, nil)

	return &fixture{app: app, repo: repo, gen: gen, dispatcher: dispatcher}
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField string, files map[string][]byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile(fileField, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	return out["error"]
}

func createPostRequest(t *testing.T, platforms string) *http.Request {
	return multipartRequest(t, "/api/posts/create", map[string]string{
		"caption":         "Golden hour",
		"platforms":       platforms,
		"scheduling_time": "2024-06-15T10:00",
		"niche":           "Travel",
	}, "files", map[string][]byte{"beach.png": pngBytes})
}

func TestCreatePostHandler(t *testing.T) {
	f := newFixture(t, nil)
	f.dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Status == models.PostStatusScheduled && p.Caption == "Golden hour"
	})).Return(nil).Once()

	status, body := do(t, f.app, createPostRequest(t, `["Instagram","LinkedIn"]`))
	require.Equal(t, fiber.StatusOK, status, string(body))

	var created transfer.PostCreated
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, models.PostStatusScheduled, created.Post.Status)
	assert.Equal(t, "Golden hour", created.Post.Caption)
	assert.Len(t, f.repo.List(context.Background()), 1)
	f.dispatcher.AssertNumberOfCalls(t, "Dispatch", 1)

	status, body = do(t, f.app, httptest.NewRequest(http.MethodGet, created.Post.MediaFiles[0].PreviewURL, nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, pngBytes, body)
}

func TestCreatePostHandlerDispatchesWithRequestScopedContext(t *testing.T) {
	f := newFixture(t, nil)
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil).Once()

	status, _ := do(t, f.app, createPostRequest(t, `["Instagram"]`))
	require.Equal(t, fiber.StatusOK, status)
	f.dispatcher.AssertExpectations(t)

	status, body := do(t, f.app, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, fiber.StatusOK, status, string(body))
}

func TestCreatePostHandlerDispatchFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, nil)
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	status, _ := do(t, f.app, createPostRequest(t, `["TikTok"]`))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, f.repo.List(context.Background()), 1)
}

func TestCreatePostHandlerValidation(t *testing.T) {
	f := newFixture(t, nil)

	status, body := do(t, f.app, createPostRequest(t, `[]`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Please select at least one platform.", errorOf(t, body))
	assert.Empty(t, f.repo.List(context.Background()))
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestListAndRemovePosts(t *testing.T) {
	f := newFixture(t, nil)
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	status, body := do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"posts":[],"empty":true}`, string(body))

	_, body = do(t, f.app, createPostRequest(t, `["Facebook"]`))
	var created transfer.PostCreated
	require.NoError(t, json.Unmarshal(body, &created))

	status, body = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	require.Equal(t, fiber.StatusOK, status)
	var view transfer.ListView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.False(t, view.Empty)
	assert.Len(t, view.Posts, 1)

	status, _ = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/posts?id="+created.Post.ID, nil))
	assert.Equal(t, fiber.StatusOK, status)

	for i := 0; i < 2; i++ {
		status, _ = do(t, f.app, httptest.NewRequest(http.MethodPost, "/api/posts/remove?id="+created.Post.ID, nil))
		assert.Equal(t, fiber.StatusOK, status)
	}

	status, _ = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/posts?id="+created.Post.ID, nil))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCalendarHandler(t *testing.T) {
	f := newFixture(t, nil)

	status, body := do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/calendar", nil))
	require.Equal(t, fiber.StatusOK, status)
	var cal transfer.CalendarResponse
	require.NoError(t, json.Unmarshal(body, &cal))
	assert.Equal(t, 2024, cal.Year)
	assert.Equal(t, 6, cal.Month)
	assert.Len(t, cal.Cells, 42)
	assert.Equal(t, "2024-05-27", cal.Cells[0].Date)

	status, body = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/calendar?month=1", nil))
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &cal))
	assert.Equal(t, 2024, cal.Year)
	assert.Equal(t, 1, cal.Month)
	assert.Equal(t, transfer.MonthRef{Year: 2023, Month: 12}, cal.Previous)

	status, _ = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/calendar?year=2024&month=13", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/calendar?year=abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPlatformsHandler(t *testing.T) {
	f := newFixture(t, nil)
	status, body := do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/platforms", nil))
	require.Equal(t, fiber.StatusOK, status)

	var platforms []transfer.PlatformInfo
	require.NoError(t, json.Unmarshal(body, &platforms))
	require.Len(t, platforms, 5)
	assert.Equal(t, transfer.PlatformInfo{ID: "Twitter", DisplayName: "X (Twitter)"}, platforms[2])
}

func TestCaptionHandler(t *testing.T) {
	f := newFixture(t, nil)
	f.gen.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).Return("Sunset vibes #sun #sea #sky", nil).Once()

	req := multipartRequest(t, "/api/assist/caption", map[string]string{"format": "Photo"}, "file", map[string][]byte{"a.png": pngBytes})
	status, body := do(t, f.app, req)
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.JSONEq(t, `{"caption":"Sunset vibes #sun #sea #sky"}`, string(body))

	req = multipartRequest(t, "/api/assist/caption", map[string]string{"format": "Photo"}, "file", nil)
	status, body = do(t, f.app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Please upload an image to generate a caption.", errorOf(t, body))

	req = multipartRequest(t, "/api/assist/caption", map[string]string{"format": "Story"}, "file", map[string][]byte{"a.png": pngBytes})
	status, _ = do(t, f.app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestCaptionHandlerUpstreamFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.gen.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("503")).Once()

	req := multipartRequest(t, "/api/assist/caption", nil, "file", map[string][]byte{"a.png": pngBytes})
	status, body := do(t, f.app, req)
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "Failed to generate caption. Please try again.", errorOf(t, body))
}

func TestNichesHandler(t *testing.T) {
	f := newFixture(t, nil)
	f.gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(`{"niches":["AI Art","Vintage Tech"]}`, nil).Once()

	status, body := do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/assist/niches", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"niches":["AI Art","Vintage Tech"]}`, string(body))

	f.gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(`{"oops":true}`, nil).Once()
	status, body = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/assist/niches", nil))
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "Failed to suggest niches. Please try again.", errorOf(t, body))
}

func TestKeysHandler(t *testing.T) {
	f := newFixture(t, nil)

	status, body := do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/settings/keys", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{}`, string(body))

	req := httptest.NewRequest(http.MethodPost, "/api/settings/keys", strings.NewReader(`{"instagram":"ig","TikTok":""}`))
	req.Header.Set("Content-Type", "application/json")
	status, body = do(t, f.app, req)
	require.Equal(t, fiber.StatusOK, status, string(body))

	status, body = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/settings/keys", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"Instagram":"ig"}`, string(body))

	req = httptest.NewRequest(http.MethodPost, "/api/settings/keys", strings.NewReader(`{"Friendster":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	status, _ = do(t, f.app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestKeysHandlerRejectsSamePlatformTwice(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/settings/keys", strings.NewReader(`{"instagram":"a","Instagram":"b"}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := do(t, f.app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, `Duplicate key for platform "Instagram".`, errorOf(t, body))

	status, body = do(t, f.app, httptest.NewRequest(http.MethodGet, "/api/settings/keys", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{}`, string(body))
}

func TestKeysHandlerSaveFailure(t *testing.T) {
	f := newFixture(t, readOnlySlot{})

	req := httptest.NewRequest(http.MethodPost, "/api/settings/keys", strings.NewReader(`{"Facebook":"fb"}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := do(t, f.app, req)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Unable to save API keys", errorOf(t, body))
}

func TestMediaNotFound(t *testing.T) {
	f := newFixture(t, nil)
	status, _ := do(t, f.app, httptest.NewRequest(http.MethodGet, "/media/nope", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
}

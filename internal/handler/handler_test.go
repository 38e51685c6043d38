package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"tajeer-server/internal/report"
	"tajeer-server/internal/repository"
	"tajeer-server/internal/storage"
	"tajeer-server/internal/wizard"
	"tajeer-server/pkg/config"
	"tajeer-server/pkg/jwtutil"
	"tajeer-server/prometheus"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	cfg := &config.Config{Metrics: config.MetricsConfig{Prefix: "handler_test"}}
	prometheus.InitMetrics(cfg)
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-key", ExpirationTime: time.Hour})
	os.Exit(m.Run())
}

// fakeObjectStore keeps objects in memory for handler-level tests
type fakeObjectStore struct {
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	f.objects[dstKey] = f.objects[srcKey]
	return nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) ListPrefix(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

type testEnv struct {
	handler *Handler
	mock    sqlmock.Sqlmock
	store   *fakeObjectStore
	echo    *echo.Echo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	repos := repository.New(db)
	store := newFakeObjectStore()
	files := storage.NewService(store, "https://cdn.test", 50*1024*1024, 5*1024*1024)
	sessions := wizard.NewStore(time.Hour)
	reports := report.NewReporter(repos.Contracts, repos.Finance, repos.Lookups)
	cfg := &config.Config{Server: config.ServerConfig{Env: "development"}}

	e := echo.New()
	e.Validator = NewValidator()

	return &testEnv{
		handler: New(repos, files, sessions, reports, cfg),
		mock:    mock,
		store:   store,
		echo:    e,
	}
}

// newJSONContext builds an authenticated request context carrying a JSON body
func (env *testEnv) newJSONContext(method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	c.Set("user_id", uint(1))
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	// no user_id in context

	require.NoError(t, env.handler.ListVehicles(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

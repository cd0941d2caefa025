package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
	"ulascansenturk/season-service/internal/api/v1/handlers"
	"ulascansenturk/season-service/internal/db/viewlog"
	"ulascansenturk/season-service/internal/geolocation"
	"ulascansenturk/season-service/internal/inmemorycache"
	"ulascansenturk/season-service/internal/view"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgTestContainers "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ulascansenturk/season-service/internal/service"
)

var (
	postgresContainer *pgTestContainers.PostgresContainer
	sharedDB          *gorm.DB
)

type testSetup struct {
	handler    *handlers.ViewHandler
	service    service.ViewService
	repository viewlog.Repository
	cache      *inmemorycache.InMemoryCache
	ipServer   *httptest.Server
	db         *gorm.DB
}

type july struct{}

func (july) MonthIndex(geolocation.Coordinates) int {
	return 6
}

const (
	dbName     = "test_api_database"
	dbUser     = "test_user"
	dbPassword = "test_password"
)

func init() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func SetupPostgres(t *testing.T) (*gorm.DB, func()) {
	if sharedDB != nil {
		err := sharedDB.Migrator().DropTable(&viewlog.ViewResolution{})
		require.NoError(t, err)

		err = sharedDB.AutoMigrate(&viewlog.ViewResolution{})
		require.NoError(t, err)

		return sharedDB, func() {}
	}

	log.Info().Msg("Setting up new PostgreSQL container")

	ctx := context.Background()

	var err error
	postgresContainer, err = pgTestContainers.Run(ctx,
		"postgres:13.3",
		pgTestContainers.WithDatabase(dbName),
		pgTestContainers.WithUsername(dbUser),
		pgTestContainers.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(10*time.Second)),
	)
	require.NoError(t, err)

	host, err := postgresContainer.Host(context.Background())
	require.NoError(t, err)

	endpoint, err := postgresContainer.Endpoint(context.Background(), "")
	require.NoError(t, err)

	parts := strings.Split(endpoint, ":")
	port := parts[1]

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, dbUser, dbPassword, dbName,
	)

	sharedDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	log.Info().Msgf("Connected to database: %s on %s:%s", dbName, host, port)

	sqlDB, err := sharedDB.DB()
	require.NoError(t, err)

	err = sqlDB.Ping()
	require.NoError(t, err)

	err = sharedDB.AutoMigrate(&viewlog.ViewResolution{})
	require.NoError(t, err)

	return sharedDB, func() {
		if postgresContainer != nil {
			log.Info().Msg("Terminating PostgreSQL container")
			if err := postgresContainer.Terminate(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to terminate PostgreSQL container")
			}
		}
	}
}

func setupTest(t *testing.T) *testSetup {
	db, _ := SetupPostgres(t)

	ipServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/json/") {
		case "203.0.113.10":
			json.NewEncoder(w).Encode(map[string]interface{}{"status": "success", "lat": -33.9, "lon": 151.2})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{"status": "fail", "message": "reserved range"})
		}
	}))

	cache := inmemorycache.NewInMemoryCacheProvider(time.Minute)
	repository := viewlog.NewRepository(db)

	viewService := service.NewViewService(
		[]geolocation.Provider{
			geolocation.NewClientProvider(10 * time.Second),
			geolocation.NewIPProvider(geolocation.IPProviderConfig{
				BaseURL:        ipServer.URL,
				Client:         ipServer.Client(),
				Backoff:        geolocation.BackoffConfig{InitialInterval: 10 * time.Millisecond},
				Timeout:        5 * time.Second,
				CacheTTL:       time.Hour,
				FailedCacheTTL: time.Minute,
			}, cache),
		},
		july{},
		repository,
		service.Options{DefaultProvider: geolocation.ProviderClient},
	)

	return &testSetup{
		handler:    handlers.NewViewHandler(viewService, 10*time.Second, 3*time.Second),
		service:    viewService,
		repository: repository,
		cache:      cache,
		ipServer:   ipServer,
		db:         db,
	}
}

func (ts *testSetup) close() {
	ts.service.Shutdown()
	ts.cache.Close()
	ts.ipServer.Close()
}

// awaitResolution polls the view log until the resolution of viewID is written.
func (ts *testSetup) awaitResolution(t *testing.T, viewID string) *viewlog.ViewResolution {
	var record *viewlog.ViewResolution
	require.Eventually(t, func() bool {
		found, err := ts.repository.GetRecentResolution(viewID)
		if err != nil {
			return false
		}
		record = found
		return true
	}, 5*time.Second, 50*time.Millisecond)
	return record
}

func (ts *testSetup) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) handlers.ViewResponse {
	var response handlers.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestSeasonService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	_, cleanup := SetupPostgres(t)
	defer cleanup()

	t.Run("ClientReportsPosition", func(t *testing.T) {
		log.Info().Msg("➡️ Running test: ClientReportsPosition")

		ts := setupTest(t)
		defer ts.close()

		w := ts.do(t, http.MethodPost, "/v1/views", "", nil)
		require.Equal(t, http.StatusCreated, w.Code)

		opened := decodeView(t, w)
		assert.Equal(t, view.KindWaiting, opened.Kind)
		assert.Equal(t, "Please accept location request", opened.Message)

		w = ts.do(t, http.MethodPost, "/v1/views/"+opened.ID+"/position", `{"latitude": 40.7, "longitude": -74.0}`, nil)
		require.Equal(t, http.StatusAccepted, w.Code)

		w = ts.do(t, http.MethodGet, "/v1/views/"+opened.ID+"?wait=true", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resolved := decodeView(t, w)
		assert.Equal(t, view.KindSeason, resolved.Kind)
		assert.Equal(t, "summer", string(resolved.Season))
		assert.Equal(t, "Let's hit the beach!", resolved.Text)
		assert.Equal(t, "sun", resolved.IconName)

		record := ts.awaitResolution(t, opened.ID)
		assert.Equal(t, "available", record.Status)
		assert.Equal(t, "summer", record.Season)
		require.NotNil(t, record.Latitude)
		assert.Equal(t, 40.7, *record.Latitude)

		log.Info().Msg("✅ TEST PASSED: ClientReportsPosition")
	})

	t.Run("ClientDeniesGeolocation", func(t *testing.T) {
		log.Info().Msg("➡️ Running test: ClientDeniesGeolocation")

		ts := setupTest(t)
		defer ts.close()

		opened := decodeView(t, ts.do(t, http.MethodPost, "/v1/views", "", nil))

		w := ts.do(t, http.MethodPost, "/v1/views/"+opened.ID+"/position", `{"error": "User denied Geolocation"}`, nil)
		require.Equal(t, http.StatusAccepted, w.Code)

		resolved := decodeView(t, ts.do(t, http.MethodGet, "/v1/views/"+opened.ID+"?wait=true", "", nil))
		assert.Equal(t, view.KindError, resolved.Kind)
		assert.Equal(t, "User denied Geolocation", resolved.Message)

		w = ts.do(t, http.MethodPost, "/v1/views/"+opened.ID+"/position", `{"latitude": 1}`, nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		record := ts.awaitResolution(t, opened.ID)

		w = ts.do(t, http.MethodDelete, "/v1/views/"+opened.ID, "", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		closed := decodeView(t, ts.do(t, http.MethodGet, "/v1/views/"+opened.ID, "", nil))
		assert.Equal(t, "failed", closed.Status)
		assert.Equal(t, "User denied Geolocation", closed.Message)
		assert.Equal(t, "failed", record.Status)
		assert.Equal(t, "User denied Geolocation", record.ErrorMessage)

		log.Info().Msg("✅ TEST PASSED: ClientDeniesGeolocation")
	})

	t.Run("IPLookup", func(t *testing.T) {
		log.Info().Msg("➡️ Running test: IPLookup")

		ts := setupTest(t)
		defer ts.close()

		headers := map[string]string{"X-Forwarded-For": "203.0.113.10"}
		opened := decodeView(t, ts.do(t, http.MethodPost, "/v1/views?provider=ip", "", headers))

		resolved := decodeView(t, ts.do(t, http.MethodGet, "/v1/views/"+opened.ID+"?wait=true", "", nil))
		assert.Equal(t, view.KindSeason, resolved.Kind)
		assert.Equal(t, "winter", string(resolved.Season))
		assert.Equal(t, "snowflake", resolved.IconName)

		cached, ok, err := ts.cache.Get("203.0.113.10")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, -33.9, cached.Latitude)

		log.Info().Msg("✅ TEST PASSED: IPLookup")
	})

	t.Run("IPLookupFails", func(t *testing.T) {
		log.Info().Msg("➡️ Running test: IPLookupFails")

		ts := setupTest(t)
		defer ts.close()

		headers := map[string]string{"X-Forwarded-For": "10.0.0.1"}
		opened := decodeView(t, ts.do(t, http.MethodPost, "/v1/views?provider=ip", "", headers))

		resolved := decodeView(t, ts.do(t, http.MethodGet, "/v1/views/"+opened.ID+"?wait=true", "", nil))
		assert.Equal(t, view.KindError, resolved.Kind)
		assert.Equal(t, "reserved range", resolved.Message)

		log.Info().Msg("✅ TEST PASSED: IPLookupFails")
	})

	t.Run("SeasonStats", func(t *testing.T) {
		log.Info().Msg("➡️ Running test: SeasonStats")

		ts := setupTest(t)
		defer ts.close()

		for _, lat := range []string{"40.7", "51.5", "-33.9"} {
			opened := decodeView(t, ts.do(t, http.MethodPost, "/v1/views", "", nil))
			w := ts.do(t, http.MethodPost, "/v1/views/"+opened.ID+"/position", `{"latitude": `+lat+`}`, nil)
			require.Equal(t, http.StatusAccepted, w.Code)
			ts.do(t, http.MethodGet, "/v1/views/"+opened.ID+"?wait=true", "", nil)
			ts.awaitResolution(t, opened.ID)
		}

		w := ts.do(t, http.MethodGet, "/v1/stats/seasons?since=1h", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stats handlers.SeasonStatsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))

		counts := map[string]int64{}
		for _, c := range stats.Counts {
			counts[c.Season] = c.Count
		}
		assert.Equal(t, int64(2), counts["summer"])
		assert.Equal(t, int64(1), counts["winter"])

		log.Info().Msg("✅ TEST PASSED: SeasonStats")
	})

	t.Run("CloseView", func(t *testing.T) {
		log.Info().Msg("➡️ Running test: CloseView")

		ts := setupTest(t)
		defer ts.close()

		opened := decodeView(t, ts.do(t, http.MethodPost, "/v1/views", "", nil))

		w := ts.do(t, http.MethodDelete, "/v1/views/"+opened.ID, "", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = ts.do(t, http.MethodGet, "/v1/views/"+opened.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var count int64
		require.NoError(t, ts.db.Model(&viewlog.ViewResolution{}).Where("view_id = ?", opened.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)

		log.Info().Msg("✅ TEST PASSED: CloseView")
	})
}

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"astrocat/internal/database"
	"astrocat/internal/domain"
	"astrocat/internal/middleware"
	"astrocat/internal/modules/auth"
	"astrocat/internal/modules/catalog"
	"astrocat/internal/modules/upload"
	jwtsvc "astrocat/internal/pkg/jwt"
	"astrocat/internal/pkg/storage"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
	uploadDir  string
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db), "Failed to migrate test database")

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 2*time.Hour)
	store := storage.New(t.TempDir())

	authService := auth.NewService(auth.NewRepository(db), jwtService)
	authHandler := auth.NewHandler(authService)

	registry := upload.NewRegistry()
	uploadService := upload.NewService(registry, store)
	writer := catalog.NewWriter(db)
	uploadHandler := upload.NewHandler(uploadService, upload.NewFinalizer(store), writer)
	catalogHandler := catalog.NewHandler(db)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")

	auth.RegisterRoutes(v1, authHandler)

	protected := v1.Group("/")
	protected.Use(middleware.Auth(jwtService))
	{
		upload.RegisterRoutes(protected, uploadHandler)
		catalog.RegisterRoutes(protected, catalogHandler)
	}

	return &E2ETestSuite{
		router:     r,
		db:         db,
		jwtService: jwtService,
		uploadDir:  store.BaseDir(),
	}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *E2ETestSuite) makeMultipartRequest(path string, fields map[string]string, files map[string][]byte, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		_ = mw.WriteField(name, value)
	}
	for field, content := range files {
		part, _ := mw.CreateFormFile(field, field+".bin")
		_, _ = part.Write(content)
	}
	_ = mw.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// sendChunk posts one fragment with an explicit file name, since the chunk
// field name is fixed by the protocol.
func (s *E2ETestSuite) sendChunk(t *testing.T, token, uploadID string, index int, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("uploadId", uploadID))
	require.NoError(t, mw.WriteField("chunkIndex", fmt.Sprintf("%d", index)))
	part, err := mw.CreateFormFile("chunk", fmt.Sprintf("chunk_%d", index))
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/chunk-upload/chunk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	return &resp
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "Failed to parse response. Status: %d, Body: %s", w.Code, w.Body.String())
	return body
}

func (s *E2ETestSuite) registerAndLogin(t *testing.T, username, email string) string {
	t.Helper()

	w := s.makeRequest("POST", "/api/v1/auth/register", map[string]interface{}{
		"username": username,
		"email":    email,
		"password": "Password123!",
		"name":     "Test User",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": "Password123!",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := parseEnvelope(t, w)
	require.True(t, resp.Success)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// =============================================================================
// Test Flow 1: Registration and Authentication
// =============================================================================

func TestFlow1_RegistrationAndAuth(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("POST /auth/register", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/register", map[string]interface{}{
			"username": "stargazer",
			"email":    "stargazer@test.com",
			"password": "Password123!",
			"name":     "Star Gazer",
		}, "")

		assert.Equal(t, http.StatusCreated, w.Code, "Expected 201 Created")

		resp := parseEnvelope(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "stargazer", resp.Data["username"])

		log.Printf("✅ POST /auth/register - SUCCESS")
	})

	t.Run("POST /auth/register duplicate", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/register", map[string]interface{}{
			"username": "stargazer",
			"email":    "stargazer@test.com",
			"password": "Password123!",
			"name":     "Star Gazer",
		}, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := parseEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "USER_EXISTS", resp.Error.Code)
	})

	t.Run("POST /auth/login", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "stargazer@test.com",
			"password": "Password123!",
		}, "")

		assert.Equal(t, http.StatusOK, w.Code, "Expected 200 OK")

		resp := parseEnvelope(t, w)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Data["token"])

		log.Printf("✅ POST /auth/login - SUCCESS")
	})

	t.Run("POST /auth/login wrong password", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
			"email":    "stargazer@test.com",
			"password": "WrongPassword1",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		resp := parseEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	})

	t.Run("Protected route rejects missing token", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/chunk-upload/init", map[string]interface{}{
			"fileName":    "stars.fit",
			"uploadType":  "lightFrames",
			"totalChunks": 3,
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// =============================================================================
// Test Flow 2: Chunked Upload and Finalization
// =============================================================================

func TestFlow2_ChunkedUploadPipeline(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerAndLogin(t, "astro", "astro@test.com")

	chunks := [][]byte{[]byte("AAAA"), []byte("BBBB"), []byte("CC")}

	var uploadID string
	t.Run("POST /chunk-upload/init", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/chunk-upload/init", map[string]interface{}{
			"fileName":    "m42_lights.fit",
			"fileSize":    10,
			"fileType":    "application/fits",
			"uploadType":  "lightFrames",
			"fileId":      "light_set_01",
			"totalChunks": 3,
		}, token)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := parseBody(t, w)
		assert.Equal(t, "initialized", body["status"])
		uploadID, _ = body["uploadId"].(string)
		require.NotEmpty(t, uploadID)

		log.Printf("✅ POST /chunk-upload/init - SUCCESS (upload_id: %s)", uploadID)
	})

	t.Run("POST /chunk-upload/init rejects bad category", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/chunk-upload/init", map[string]interface{}{
			"fileName":    "x.fit",
			"uploadType":  "blurryFrames",
			"totalChunks": 1,
		}, token)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := parseEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_CATEGORY", resp.Error.Code)
	})

	t.Run("POST /chunk-upload/chunk out of order", func(t *testing.T) {
		// last chunk first
		w := suite.sendChunk(t, token, uploadID, 2, chunks[2])
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := parseBody(t, w)
		assert.EqualValues(t, 1, body["receivedChunks"])
		assert.EqualValues(t, 3, body["totalChunks"])

		w = suite.sendChunk(t, token, uploadID, 0, chunks[0])
		assert.Equal(t, http.StatusOK, w.Code)
		body = parseBody(t, w)
		assert.EqualValues(t, 2, body["receivedChunks"])

		log.Printf("✅ POST /chunk-upload/chunk - SUCCESS (out of order)")
	})

	t.Run("POST /chunk-upload/complete while incomplete", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/chunk-upload/complete", map[string]interface{}{
			"uploadId": uploadID,
		}, token)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := parseEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INCOMPLETE_UPLOAD", resp.Error.Code)

		details, ok := resp.Error.Details.(map[string]interface{})
		require.True(t, ok)
		assert.EqualValues(t, 2, details["receivedChunks"])
		assert.EqualValues(t, 3, details["totalChunks"])
	})

	var assembledPath string
	t.Run("POST /chunk-upload/complete", func(t *testing.T) {
		w := suite.sendChunk(t, token, uploadID, 1, chunks[1])
		require.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("POST", "/api/v1/chunk-upload/complete", map[string]interface{}{
			"uploadId": uploadID,
		}, token)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := parseBody(t, w)
		assert.Equal(t, "complete", body["status"])
		assert.Equal(t, "lightFrames", body["fileType"])
		assert.Equal(t, "light_set_01", body["fileId"])

		assembledPath, _ = body["filePath"].(string)
		require.NotEmpty(t, assembledPath)

		content, err := os.ReadFile(assembledPath)
		require.NoError(t, err)
		assert.Equal(t, "AAAABBBBCC", string(content), "chunks must be concatenated in index order")

		log.Printf("✅ POST /chunk-upload/complete - SUCCESS (%s)", assembledPath)
	})

	t.Run("POST /chunk-upload/complete on retired session", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/chunk-upload/complete", map[string]interface{}{
			"uploadId": uploadID,
		}, token)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := parseEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "UNKNOWN_UPLOAD", resp.Error.Code)
	})

	var imageID string
	t.Run("POST /finalize-upload", func(t *testing.T) {
		imageDetails, _ := json.Marshal(map[string]interface{}{
			"title":             "Orion Nebula",
			"capture_date_time": "2024-11-02T23:15:00Z",
			"iso":               1600,
		})
		sessionDetails, _ := json.Marshal(map[string]interface{}{
			"session_date": "2024-11-02",
			"moon_phase":   "waxing crescent",
		})
		locationDetails, _ := json.Marshal(map[string]interface{}{
			"name":         "Dark Sky Site",
			"bortle_class": 3,
		})

		w := suite.makeMultipartRequest("/api/v1/finalize-upload", map[string]string{
			"imageDetails":               string(imageDetails),
			"sessionDetails":             string(sessionDetails),
			"locationDetails":            string(locationDetails),
			"chunkedFiles[light_set_01]": assembledPath,
		}, map[string][]byte{
			"images.mainImage": []byte("jpeg-bytes-of-the-stacked-result"),
		}, token)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := parseBody(t, w)
		assert.Equal(t, "success", body["status"])
		imageID, _ = body["image_id"].(string)
		require.NotEmpty(t, imageID)

		log.Printf("✅ POST /finalize-upload - SUCCESS (image_id: %s)", imageID)
	})

	t.Run("Finalize persisted the full graph", func(t *testing.T) {
		var img domain.Image
		require.NoError(t, suite.db.Where("image_id = ?", imageID).First(&img).Error)
		assert.Equal(t, "Orion Nebula", img.Title)
		assert.NotEmpty(t, img.FilePath)
		require.NotNil(t, img.ISO)
		assert.Equal(t, 1600, *img.ISO)

		var summary domain.FrameSummary
		require.NoError(t, suite.db.Where("image_id = ?", imageID).First(&summary).Error)
		assert.Equal(t, 1, summary.LightFrameCount)
		assert.Zero(t, summary.DarkFrameCount)

		var frame domain.RawFrame
		require.NoError(t, suite.db.First(&frame).Error)
		assert.Equal(t, domain.FrameLight, frame.FrameType)
		assert.Equal(t, assembledPath, frame.FilePath)

		var sessionJoin domain.ImageSession
		require.NoError(t, suite.db.Where("image_id = ?", imageID).First(&sessionJoin).Error)

		var session domain.ObservingSession
		require.NoError(t, suite.db.Where("session_id = ?", sessionJoin.SessionID).First(&session).Error)
		assert.Equal(t, "waxing crescent", session.MoonPhase)
		require.NotNil(t, session.LocationID)
	})

	t.Run("GET /image/:image_id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/image/"+imageID, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

		data, err := io.ReadAll(w.Body)
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes-of-the-stacked-result", string(data))

		log.Printf("✅ GET /image/:image_id - SUCCESS")
	})

	t.Run("GET /image/:image_id scoped to the owner", func(t *testing.T) {
		otherToken := suite.registerAndLogin(t, "intruder", "intruder@test.com")

		req := httptest.NewRequest("GET", "/api/v1/image/"+imageID, nil)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// =============================================================================
// Test Flow 3: Metadata validation on finalize
// =============================================================================

func TestFlow3_FinalizeValidation(t *testing.T) {
	suite := setupTestSuite(t)
	token := suite.registerAndLogin(t, "validator", "validator@test.com")

	t.Run("Malformed metadata block fails", func(t *testing.T) {
		w := suite.makeMultipartRequest("/api/v1/finalize-upload", map[string]string{
			"imageDetails": "{not json",
		}, nil, token)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := parseEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "INVALID_METADATA", resp.Error.Code)
	})

	t.Run("Empty submission still creates an image", func(t *testing.T) {
		w := suite.makeMultipartRequest("/api/v1/finalize-upload", map[string]string{}, nil, token)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := parseBody(t, w)
		assert.Equal(t, "success", body["status"])
		assert.NotEmpty(t, body["image_id"])
	})
}

// =============================================================================
// Main Test Runner
// =============================================================================

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"texture-manager/core/catalog"
	"texture-manager/core/storage/mocks"
	"texture-manager/core/texture"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, res *fakeResidency) (*fiber.App, *mocks.Client, sqlmock.Sqlmock) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	db, sqlMock := setupMockDB(t)
	svc := NewService(mockClient, "test-bucket", []string{"walls", "ui"}, catalog.NewRepository(db), res, zap.NewNop())
	handler := NewHandler(svc)
	handler.RegisterRoutes(app)
	return app, mockClient, sqlMock
}

func TestHandleStructureCheck(t *testing.T) {
	app, mockClient, _ := setupTestApp(t, healthy())

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	ch := make(chan minio.ObjectInfo)
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	req := httptest.NewRequest("GET", "/integrity/structure", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "checked", body["status"])
	assert.Equal(t, []any{"walls", "ui"}, body["missing"])
}

func TestHandleStructureCheck_Fix(t *testing.T) {
	app, mockClient, _ := setupTestApp(t, healthy())

	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	ch := make(chan minio.ObjectInfo)
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))
	mockClient.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	req := httptest.NewRequest("GET", "/integrity/structure?fix=true", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "fixed", body["status"])
	mockClient.AssertNumberOfCalls(t, "PutObject", 2)
}

func TestHandleStructureCheck_BucketError(t *testing.T) {
	app, mockClient, _ := setupTestApp(t, healthy())
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/structure", nil))

	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleCatalogCheck(t *testing.T) {
	app, _, sqlMock := setupTestApp(t, healthy())

	sqlMock.ExpectQuery("SHOW COLUMNS FROM `texture_assets`").
		WillReturnRows(sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
			AddRow("object", "varchar(255)", "NO", "UNI", nil, ""))

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/catalog", nil))

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["configured"])
	assert.Equal(t, false, body["matched"])
	assert.Len(t, body["mismatches"], 6)
}

func TestHandleResidencyCheck(t *testing.T) {
	res := healthy()
	app, _, _ := setupTestApp(t, res)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity/residency", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	res.stats.Worker = "stopped"
	resp, err = app.Test(httptest.NewRequest("GET", "/integrity/residency", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "stopped", body["worker"])
}

func TestHandleIntegrityCheck(t *testing.T) {
	res := healthy()
	res.textures = []texture.TextureInfo{{Key: 1, AssetID: "a.png", Error: "decode failed"}}
	app, mockClient, sqlMock := setupTestApp(t, res)

	// Fail fast on storage and the database; the report still answers 200.
	mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, assert.AnError)
	sqlMock.ExpectQuery(".*").WillReturnError(assert.AnError)

	resp, err := app.Test(httptest.NewRequest("GET", "/integrity", nil), 2000)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body["structure"]["status"])
	assert.Equal(t, "error", body["catalog"]["status"])
	assert.Equal(t, false, body["residency"]["healthy"])
}

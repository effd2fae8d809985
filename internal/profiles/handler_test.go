package profiles

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/server/middleware"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/storage/object/local"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func newTestRouter(t *testing.T, withImages bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Identity())

	h := NewHandler(NewService(NewMemoryRepo()), nil)
	if withImages {
		h.Images = local.New(t.TempDir())
	}
	h.RegisterRoutes(api)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "g-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGetMissingProfile(t *testing.T) {
	r := newTestRouter(t, false)
	rec := doJSON(r, http.MethodGet, "/api/v1/profile", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)
}

func TestHandlerPatchThenGet(t *testing.T) {
	r := newTestRouter(t, false)

	rec := doJSON(r, http.MethodPatch, "/api/v1/profile", `{"companyName":"CV Maju Jaya","city":"Malang","productImageRef":"x/evil.png"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(r, http.MethodGet, "/api/v1/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body profileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "guest:g-1", body.Profile.UserID)
	assert.Equal(t, "CV Maju Jaya", body.Profile.CompanyName)
	assert.Empty(t, body.Profile.ProductImageRef)
	assert.Equal(t, 40, body.Completeness.Percent)
	assert.Equal(t, []string{FieldProductName, FieldCategory, FieldCapacity}, body.Completeness.Missing)
}

func TestHandlerPatchValidation(t *testing.T) {
	r := newTestRouter(t, false)

	rec := doJSON(r, http.MethodPatch, "/api/v1/profile", `{"companyName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodPatch, "/api/v1/profile", `{"companyName":"Not specified"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no values")
}

func uploadRequest(t *testing.T, name string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Guest-Id", "g-1")
	return req
}

func TestHandlerUploadImage(t *testing.T) {
	r := newTestRouter(t, true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "product.png", pngHeader))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Image struct {
			Key         string `json:"key"`
			ContentType string `json:"contentType"`
		} `json:"image"`
		Profile BusinessProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Image.Key)
	assert.Equal(t, body.Image.Key, body.Profile.ProductImageRef)
}

func TestHandlerUploadRejectsNonImage(t *testing.T) {
	r := newTestRouter(t, true)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "notes.txt", []byte("just some text")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandlerUploadRejectsImageBytesWithWrongExtension(t *testing.T) {
	r := newTestRouter(t, true)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "katalog.pdf", pngHeader))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandlerUploadWithoutStore(t *testing.T) {
	r := newTestRouter(t, false)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "product.png", pngHeader))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

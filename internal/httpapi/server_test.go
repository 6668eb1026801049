package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/loginthemes/internal/theme"
)

const (
	testBase    = "/api/plugins/login-themes"
	originalCSS = "body { background: #123; }\n"
)

func newTestServer(t *testing.T) (*httptest.Server, *theme.Manager) {
	t.Helper()

	root := t.TempDir()
	paths := theme.Paths{
		ThemesDir:  filepath.Join(root, "plugin", "themes"),
		StateFile:  filepath.Join(root, "plugin", "config.json"),
		Stylesheet: filepath.Join(root, "public", "css", "login.css"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.Stylesheet), 0755))
	require.NoError(t, os.WriteFile(paths.Stylesheet, []byte(originalCSS), 0644))

	manager := theme.NewManager(paths, nil)
	require.NoError(t, manager.Init())

	srv := httptest.NewServer(NewServer(manager, testBase, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, manager
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestList_DefaultOnly(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+testBase+"/list", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "default", body["currentTheme"])

	themes := body["themes"].([]any)
	require.Len(t, themes, 1)
	first := themes[0].(map[string]any)
	assert.Equal(t, "default", first["id"])
	assert.Equal(t, true, first["isBuiltIn"])
}

func TestImportApplyDeleteFlow(t *testing.T) {
	srv, manager := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+testBase+"/import", map[string]any{
		"name": "My Theme!!",
		"css":  "body{color:red}",
		"metadata": map[string]any{
			"author": "Ana",
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "my-theme", body["themeId"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+testBase+"/apply", map[string]any{"themeId": "my-theme"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "my-theme", body["theme"])

	css, err := os.ReadFile(manager.Paths.Stylesheet)
	require.NoError(t, err)
	assert.Equal(t, "body{color:red}", string(css))

	_, body = doJSON(t, http.MethodGet, srv.URL+testBase+"/current", nil)
	assert.Equal(t, "my-theme", body["currentTheme"])
	info := body["themeInfo"].(map[string]any)
	assert.Equal(t, "My Theme!!", info["name"])
	assert.Equal(t, "Ana", info["author"])

	resp, body = doJSON(t, http.MethodDelete, srv.URL+testBase+"/delete/my-theme", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	css, err = os.ReadFile(manager.Paths.Stylesheet)
	require.NoError(t, err)
	assert.Equal(t, originalCSS, string(css))

	_, body = doJSON(t, http.MethodGet, srv.URL+testBase+"/current", nil)
	assert.Equal(t, "default", body["currentTheme"])
}

func TestImport_MissingFields(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+testBase+"/import", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "name and css are required", body["error"])
}

func TestImport_ConflictIsReportedInBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req := map[string]any{"name": "ocean", "css": "a{}"}
	resp, _ := doJSON(t, http.MethodPost, srv.URL+testBase+"/import", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+testBase+"/import", req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "already exists")
}

func TestApply_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+testBase+"/apply", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "themeId is required", body["error"])

	resp, body = doJSON(t, http.MethodPost, srv.URL+testBase+"/apply", map[string]any{"themeId": "ghost"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "theme not found")
}

func TestMalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/apply", "/import", "/update"} {
		t.Run(path, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, srv.URL+testBase+path, "{not json")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestUpdate(t *testing.T) {
	srv, manager := newTestServer(t)

	_, err := manager.Import("ocean", "a{}", theme.Metadata{})
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodPost, srv.URL+testBase+"/update", map[string]any{
		"themeId":  "ocean",
		"css":      "b{}",
		"metadata": map[string]any{"description": "Deep blue"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ocean", body["themeId"])

	record, ok := manager.Registry.Get("ocean")
	require.True(t, ok)
	assert.Equal(t, "Deep blue", record.Description)
	assert.NotNil(t, record.UpdatedAt)

	resp, body = doJSON(t, http.MethodPost, srv.URL+testBase+"/update", map[string]any{"themeId": "ghost", "css": "x{}"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+testBase+"/update", map[string]any{"themeId": "ocean"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDelete_DefaultForbidden(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodDelete, srv.URL+testBase+"/delete/default", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "default")
}

func TestExport(t *testing.T) {
	srv, manager := newTestServer(t)

	css := "/*\n @name Ocean Breeze\n @author Ana\n*/\nbody{}"
	_, err := manager.Import("ocean", css, theme.Metadata{})
	require.NoError(t, err)

	resp, body := doJSON(t, http.MethodGet, srv.URL+testBase+"/export/ocean", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, css, body["css"])
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "Ocean Breeze", meta["name"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+testBase+"/export/default", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, originalCSS, body["css"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+testBase+"/export/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestPreview(t *testing.T) {
	srv, manager := newTestServer(t)

	_, err := manager.Import("ocean", "body{color:blue}", theme.Metadata{})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + testBase + "/preview/ocean")
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "body{color:blue}", string(data))

	resp, err = http.Get(srv.URL + testBase + "/preview/ghost")
	require.NoError(t, err)
	data, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "/* Theme not found */", string(data))
}

func TestRequestID(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + testBase + "/list")
	require.NoError(t, err)
	resp.Body.Close()

	id := resp.Header.Get(RequestIDHeader)
	require.NotEmpty(t, id)
	_, err = ulid.ParseStrict(id)
	assert.NoError(t, err)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + testBase + "/apply")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// failingService reports errors for every mutating call.
type failingService struct {
	err   error
	panic bool
}

func (f *failingService) List() []theme.ThemeRecord {
	if f.panic {
		panic("scan exploded")
	}
	return []theme.ThemeRecord{theme.DefaultRecord()}
}
func (f *failingService) Current() (string, *theme.ThemeRecord) { return "default", nil }
func (f *failingService) Apply(string) (string, error)          { return "", f.err }
func (f *failingService) Import(string, string, theme.Metadata) (string, error) {
	return "", f.err
}
func (f *failingService) Update(string, string, *theme.Metadata) error { return f.err }
func (f *failingService) Delete(string) error                         { return f.err }
func (f *failingService) Export(string) (theme.Export, error)         { return theme.Export{}, f.err }

func TestIOFailures(t *testing.T) {
	svc := &failingService{err: fmt.Errorf("%w: disk full", theme.ErrIO)}
	srv := httptest.NewServer(NewServer(svc, testBase, nil).Handler())
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+testBase+"/update", map[string]any{"themeId": "a", "css": "b"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = doJSON(t, http.MethodGet, srv.URL+testBase+"/export/a", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	r, err := http.Get(srv.URL + testBase + "/preview/a")
	require.NoError(t, err)
	data, err := io.ReadAll(r.Body)
	r.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, r.StatusCode)
	assert.Equal(t, "/* Error loading theme */", string(data))
}

func TestPanicRecovery(t *testing.T) {
	svc := &failingService{panic: true}
	srv := httptest.NewServer(NewServer(svc, testBase, nil).Handler())
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+testBase+"/list", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", body["error"])
}

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"themes", "/themes"},
		{"/api/plugins/login-themes/", "/api/plugins/login-themes"},
		{"  /x  ", "/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeBasePath(tt.in))
		})
	}
}

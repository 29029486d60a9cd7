package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/kiesman99/tilesplit/internal/api"
)

// Test server setup
func setupTestServer() *httptest.Server {
	return httptest.NewServer(NewRouter(NewServer("2.0.0-test").WithMaxBodyBytes(1<<20), 30*time.Second))
}

func encodeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func postSplit(t *testing.T, server *httptest.Server, query string, body []byte) *http.Response {
	t.Helper()

	resp, err := http.Post(server.URL+"/api/v1/split"+query, "image/png", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	var healthResp api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if healthResp.Status != api.Healthy {
		t.Errorf("Expected status 'healthy', got %s", healthResp.Status)
	}

	if healthResp.Version == nil || *healthResp.Version != "2.0.0-test" {
		t.Errorf("Expected version '2.0.0-test', got %v", healthResp.Version)
	}

	if healthResp.Uptime == nil || *healthResp.Uptime < 0 {
		t.Errorf("Expected valid uptime, got %v", healthResp.Uptime)
	}

	if time.Since(healthResp.Timestamp) > time.Minute {
		t.Errorf("Timestamp seems too old: %v", healthResp.Timestamp)
	}
}

func TestLegacyHealthRedirect(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMovedPermanently {
		t.Errorf("Expected status 301, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/v1/health" {
		t.Errorf("Expected redirect to /api/v1/health, got %s", loc)
	}
}

func TestSplitEndpoint_Default(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp := postSplit(t, server, "", encodeTestImage(t, 64, 64))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}

	var splitResp api.SplitResponse
	if err := json.NewDecoder(resp.Body).Decode(&splitResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if splitResp.TileWidth != 16 || splitResp.TileHeight != 16 {
		t.Errorf("Expected 16x16 tiles, got %dx%d", splitResp.TileWidth, splitResp.TileHeight)
	}
	if len(splitResp.Tiles) != 16 {
		t.Fatalf("Expected 16 tiles, got %d", len(splitResp.Tiles))
	}

	bones := splitResp.Tiles[7]
	if bones.Name != "bones" || bones.File != "tile_bones.png" || bones.X != 48 || bones.Y != 16 {
		t.Errorf("Unexpected tile 7: %+v", bones)
	}

	data, err := base64.StdEncoding.DecodeString(bones.ImageBase64)
	if err != nil {
		t.Fatalf("Failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Tile is not a PNG: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Errorf("Tile bounds: got %v", img.Bounds())
	}

	r, g, _, _ := img.At(0, 0).RGBA()
	if r>>8 != 48 || g>>8 != 16 {
		t.Errorf("Tile origin pixel: got r=%d g=%d, want r=48 g=16", r>>8, g>>8)
	}
}

func TestSplitEndpoint_CustomNames(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp := postSplit(t, server, "?names="+url.QueryEscape("a,b,c;d,e,f")+"&prefix=ground_", encodeTestImage(t, 30, 20))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var splitResp api.SplitResponse
	if err := json.NewDecoder(resp.Body).Decode(&splitResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if splitResp.Rows != 2 || splitResp.Cols != 3 {
		t.Errorf("Expected 3x2 grid, got %dx%d", splitResp.Cols, splitResp.Rows)
	}
	if splitResp.Tiles[5].File != "ground_f.png" {
		t.Errorf("Expected ground_f.png, got %s", splitResp.Tiles[5].File)
	}
}

func TestSplitEndpoint_PositionalNames(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp := postSplit(t, server, "?rows=2&cols=2", encodeTestImage(t, 8, 8))
	defer resp.Body.Close()

	var splitResp api.SplitResponse
	if err := json.NewDecoder(resp.Body).Decode(&splitResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(splitResp.Tiles) != 4 || splitResp.Tiles[3].Name != "r1c1" {
		t.Errorf("Unexpected tiles: %+v", splitResp.Tiles)
	}
}

func TestSplitEndpoint_Errors(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	tests := []struct {
		name       string
		query      string
		body       []byte
		wantStatus int
		wantError  string
	}{
		{"garbage body", "", []byte("not an image"), http.StatusBadRequest, api.INVALIDIMAGE},
		{"strict non-divisible", "?strict=true", encodeTestImage(t, 401, 400), http.StatusBadRequest, api.VALIDATIONERROR},
		{"non-divisible truncates", "", encodeTestImage(t, 401, 400), http.StatusOK, ""},
		{"too small", "", encodeTestImage(t, 2, 2), http.StatusBadRequest, api.VALIDATIONERROR},
		{"names/grid mismatch", "?names=a,b&rows=2", encodeTestImage(t, 8, 8), http.StatusBadRequest, api.VALIDATIONERROR},
		{"duplicate names", "?names=a,a", encodeTestImage(t, 8, 8), http.StatusBadRequest, api.VALIDATIONERROR},
		{"negative rows", "?rows=-1", encodeTestImage(t, 8, 8), http.StatusBadRequest, api.VALIDATIONERROR},
		{"bad rows format", "?rows=many", encodeTestImage(t, 8, 8), http.StatusBadRequest, api.VALIDATIONERROR},
		{"bad prefix", "?prefix=../x", encodeTestImage(t, 8, 8), http.StatusBadRequest, api.VALIDATIONERROR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postSplit(t, server, tt.query, tt.body)
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				body, _ := io.ReadAll(resp.Body)
				t.Fatalf("Expected status %d, got %d. Body: %s", tt.wantStatus, resp.StatusCode, string(body))
			}
			if tt.wantError == "" {
				return
			}

			var errResp api.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if errResp.Error != tt.wantError {
				t.Errorf("Expected error %s, got %s (%s)", tt.wantError, errResp.Error, errResp.Message)
			}
			if errResp.RequestId == nil {
				t.Error("Expected request_id in error response")
			}
		})
	}
}

func TestSplitEndpoint_BadPrefixField(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	resp := postSplit(t, server, "?prefix="+url.QueryEscape(`..\x`), encodeTestImage(t, 8, 8))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}

	var errResp api.ValidationErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if len(errResp.ValidationErrors) != 1 || errResp.ValidationErrors[0].Field != "prefix" {
		t.Errorf("Expected a single prefix validation error, got %+v", errResp.ValidationErrors)
	}
}

func TestSplitEndpoint_TooLarge(t *testing.T) {
	handler := NewRouter(NewServer("test").WithMaxBodyBytes(1024), 30*time.Second)

	req := httptest.NewRequest("POST", "/api/v1/split", bytes.NewReader(make([]byte, 4096)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected status 413, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var errResp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error != api.IMAGETOOLARGE {
		t.Errorf("Expected error %s, got %s", api.IMAGETOOLARGE, errResp.Error)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := setupTestServer()
	defer server.Close()

	req, err := http.NewRequest("OPTIONS", server.URL+"/api/v1/split", nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS header")
	}
}

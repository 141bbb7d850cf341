package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"glasswork/internal/config"
	"glasswork/internal/db"
	"glasswork/internal/engine"
	"glasswork/internal/migrate"
	"glasswork/internal/storage"
)

const testSecret = "test-secret"

type testServer struct {
	URL    string
	Engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	e := engine.New(conn, cfg)
	assets, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("asset store: %v", err)
	}
	handler, err := New(Config{
		Engine:   e,
		Assets:   assets,
		BasePath: "/v1",
		Auth:     AuthConfig{JWTSecret: testSecret},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Engine: e,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func adminHeaders(t *testing.T) map[string]string {
	t.Helper()
	token, err := IssueToken(testSecret, "tester", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func TestStatusDefaultsAndSet(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/v1/status", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get status %d: %s", res.StatusCode, string(data))
	}
	var status StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Status != "OFFLINE" || status.IsOpen {
		t.Fatalf("expected offline default, got %+v", status)
	}

	// mutation requires credentials
	res, _ = doJSON(t, client, http.MethodPut, srv.URL+"/v1/status", map[string]any{"status": "OPEN TO WORK"}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", res.StatusCode)
	}

	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/v1/status", map[string]any{"status": "OPEN TO WORK"}, adminHeaders(t))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("set status %d: %s", res.StatusCode, string(data))
	}
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !status.IsOpen {
		t.Fatalf("expected open after set, got %+v", status)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/status/history?limit=5", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("history %d: %s", res.StatusCode, string(data))
	}
	var history []StatusResponse
	if err := json.Unmarshal(data, &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history) != 1 || history[0].Status != "OPEN TO WORK" {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestStatusHistoryBadLimit(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v1/status/history?limit=0", nil, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Code != "bad_request" {
		t.Fatalf("expected bad_request, got %q", envelope.Error.Code)
	}
}

func TestContactFormAndInbox(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/messages", map[string]any{
		"name":    "Ada",
		"email":   "ada@example.com",
		"message": "hello!",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("submit %d: %s", res.StatusCode, string(data))
	}
	var msg MessageResponse
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}

	res, _ = doJSON(t, client, http.MethodGet, srv.URL+"/v1/messages", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 listing inbox without credentials, got %d", res.StatusCode)
	}

	headers := adminHeaders(t)
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/messages?unread=true", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list %d: %s", res.StatusCode, string(data))
	}
	var items []MessageResponse
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(items) != 1 || items[0].SenderEmail != "ada@example.com" {
		t.Fatalf("unexpected inbox %+v", items)
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/v1/messages/1/read", map[string]any{"read": true}, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("read %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/v1/messages/1", nil, headers)
	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		t.Fatalf("delete %d", res.StatusCode)
	}
}

func TestContactFormValidation(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v1/messages", map[string]any{
		"name":    "Bad",
		"email":   "not-an-email",
		"message": "hi",
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.StatusCode, string(data))
	}
}

func TestProjectOrderingOverHTTP(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()
	headers := adminHeaders(t)

	var ids []int64
	for _, title := range []string{"alpha", "beta"} {
		res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/projects", map[string]any{
			"title":       title,
			"description": title + " description",
		}, headers)
		if res.StatusCode != http.StatusCreated {
			t.Fatalf("create %s: %d %s", title, res.StatusCode, string(data))
		}
		var p ProjectResponse
		if err := json.Unmarshal(data, &p); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		ids = append(ids, p.ID)
	}

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/v1/projects/2/move", map[string]any{"direction": "up"}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 moving without credentials, got %d: %s", res.StatusCode, string(data))
	}

	url := srv.URL + "/v1/projects/" + itoa(ids[1]) + "/move"
	res, data = doJSON(t, client, http.MethodPost, url, map[string]any{"direction": "up"}, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("move %d: %s", res.StatusCode, string(data))
	}
	var items []ProjectResponse
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 2 || items[0].Title != "beta" || items[0].DisplayOrder != 1 {
		t.Fatalf("unexpected order %+v", items)
	}

	// public listing needs no credentials
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/v1/projects", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list %d: %s", res.StatusCode, string(data))
	}
}

func TestAPIKeyAuth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	_, raw, err := srv.Engine.CreateAPIKey(context.Background(), "robot", "ci")
	if err != nil {
		t.Fatalf("create key: %v", err)
	}
	res, data := doJSON(t, srv.Client(), http.MethodPut, srv.URL+"/v1/status",
		map[string]any{"status": "TRAVELLING"}, map[string]string{"X-Api-Key": raw})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("set with api key %d: %s", res.StatusCode, string(data))
	}

	res, _ = doJSON(t, srv.Client(), http.MethodPut, srv.URL+"/v1/status",
		map[string]any{"status": "OFFLINE"}, map[string]string{"X-Api-Key": "bogus"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad key, got %d", res.StatusCode)
	}
}

func TestAssetUploadAndServe(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	payload := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/assets", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "image/png")
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 uploading without credentials, got %d", res.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/v1/assets", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "image/png")
	for k, v := range adminHeaders(t) {
		req.Header.Set(k, v)
	}
	res, err = client.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	data, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("upload %d: %s", res.StatusCode, string(data))
	}
	var asset AssetResponse
	if err := json.Unmarshal(data, &asset); err != nil {
		t.Fatalf("unmarshal asset: %v", err)
	}

	res, err = client.Get(srv.URL + "/v1/assets/" + asset.Name)
	if err != nil {
		t.Fatalf("fetch asset: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || !bytes.Equal(body, payload) {
		t.Fatalf("fetch asset %d, %d bytes", res.StatusCode, len(body))
	}
	if ct := res.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
}

func TestOpenAPISpecConcurrentFirstRequests(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	client := srv.Client()

	const n = 8
	var wg sync.WaitGroup
	bodies := make([][]byte, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := client.Get(srv.URL + "/v1/openapi.json")
			if err != nil {
				errs[i] = err
				return
			}
			defer res.Body.Close()
			if res.StatusCode != http.StatusOK {
				errs[i] = fmt.Errorf("status %d", res.StatusCode)
				return
			}
			bodies[i], errs[i] = io.ReadAll(res.Body)
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("request %d: %v", i, errs[i])
		}
		if len(bodies[i]) == 0 {
			t.Fatalf("request %d: empty body", i)
		}
		if !bytes.Equal(bodies[i], bodies[0]) {
			t.Fatalf("request %d: body differs from first", i)
		}
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

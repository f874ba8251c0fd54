package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/lemonberrylabs/loxparse/pkg/analyzer"
	"github.com/lemonberrylabs/loxparse/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	a, err := analyzer.New(analyzer.Options{})
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store.New(), a, WithLogger(logger))
}

func do(t *testing.T, srv *Server, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func TestScan(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodPost, "/v1/scan", `{"source":"1 +"}`)
	require.Equal(t, http.StatusOK, code)

	tokens := body["tokens"].([]any)
	require.Len(t, tokens, 3)
	first := tokens[0].(map[string]any)
	require.Equal(t, "Number", first["kind"])
	require.Equal(t, "1", first["lexeme"])
	require.Equal(t, 1.0, first["literal"])
	require.Equal(t, "EOF", tokens[2].(map[string]any)["kind"])
}

func TestScanLexicalError(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodPost, "/v1/scan", `{"source":"\"abc"}`)
	require.Equal(t, http.StatusBadRequest, code)

	details := body["error"].(map[string]any)["details"].(map[string]any)
	require.Equal(t, "scan", details["phase"])
	require.Equal(t, "UnterminatedString", details["kind"])
}

func TestParse(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodPost, "/v1/parse", `{"source":"4 == 4"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "(== 4 4)", body["printed"])

	ast := body["ast"].(map[string]any)
	require.Equal(t, "Binary", ast["type"])
	require.Equal(t, "==", ast["operator"])
}

func TestParseSyntaxError(t *testing.T) {
	srv := newTestServer(t)
	code, body := do(t, srv, http.MethodPost, "/v1/parse", `{"source":"1 +"}`)
	require.Equal(t, http.StatusBadRequest, code)

	errBody := body["error"].(map[string]any)
	require.Equal(t, "INVALID_ARGUMENT", errBody["status"])
	details := errBody["details"].(map[string]any)
	require.Equal(t, "parse", details["phase"])
	require.Equal(t, "ExpectedExpression", details["kind"])
}

func TestScriptLifecycle(t *testing.T) {
	srv := newTestServer(t)

	code, body := do(t, srv, http.MethodPost, "/v1/scripts?scriptId=sum", `{"source":"1 + 2","description":"adds"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "sum", body["name"])
	rev := body["revisionId"]

	code, _ = do(t, srv, http.MethodPost, "/v1/scripts?scriptId=sum", `{"source":"3"}`)
	require.Equal(t, http.StatusConflict, code)

	code, body = do(t, srv, http.MethodGet, "/v1/scripts/sum", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "1 + 2", body["source"])

	code, body = do(t, srv, http.MethodPatch, "/v1/scripts/sum", `{"source":"1 * 2"}`)
	require.Equal(t, http.StatusOK, code)
	require.NotEqual(t, rev, body["revisionId"])
	require.Equal(t, "adds", body["description"])

	code, body = do(t, srv, http.MethodGet, "/v1/scripts/sum/ast", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "(* 1 2)", body["printed"])

	code, body = do(t, srv, http.MethodGet, "/v1/scripts", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["scripts"], 1)

	code, _ = do(t, srv, http.MethodDelete, "/v1/scripts/sum", "")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, srv, http.MethodGet, "/v1/scripts/sum", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["status"])
}

func TestCreateScriptValidation(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"missing id", "/v1/scripts", `{"source":"1"}`},
		{"bad id", "/v1/scripts?scriptId=Bad!", `{"source":"1"}`},
		{"empty source", "/v1/scripts?scriptId=a", `{"source":""}`},
		{"invalid source", "/v1/scripts?scriptId=a", `{"source":"(1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, srv, http.MethodPost, tt.target, tt.body)
			require.Equal(t, http.StatusBadRequest, code)
			require.Equal(t, "INVALID_ARGUMENT", body["error"].(map[string]any)["status"])
		})
	}
}

func TestUpdateMissingScript(t *testing.T) {
	srv := newTestServer(t)
	code, _ := do(t, srv, http.MethodPatch, "/v1/scripts/none", `{"source":"1"}`)
	require.Equal(t, http.StatusNotFound, code)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"good.lox":   "1 + 2",
		"Upper.lox":  "true",
		"broken.lox": "(1",
		"9bad.lox":   "1",
		"notes.txt":  "ignored",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	srv := newTestServer(t)
	n, err := srv.LoadDir(dir)
	require.Equal(t, 2, n)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)

	_, err = srv.store.GetScript("good")
	require.NoError(t, err)
	_, err = srv.store.GetScript("upper")
	require.NoError(t, err)
}

func TestLoadDirMissing(t *testing.T) {
	srv := newTestServer(t)
	_, err := srv.LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

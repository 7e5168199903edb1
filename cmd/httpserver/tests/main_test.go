package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-petr/pet-account/cmd/httpserver"
	"github.com/go-petr/pet-account/internal/transactioncache"
	"github.com/go-petr/pet-account/pkg/configpkg"
	"github.com/go-petr/pet-account/pkg/web"
	"github.com/rs/zerolog"
)

func setupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	server, err := httpserver.New(newStore(t), transactioncache.Nop{}, zerolog.Nop(), configpkg.Config{})
	if err != nil {
		t.Fatalf("httpserver.New() returned error: %v", err)
	}

	return server
}

// call sends body as JSON and decodes the response data into payload.
func call(t *testing.T, server http.Handler, method, path string, body, payload any) (int, *web.JSONError) {
	t.Helper()

	var reqBody bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			t.Fatalf("Encoding request body error: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &reqBody)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Header().Get("X-Request-ID") == "" {
		t.Errorf("%s %s: response has no request id", method, path)
	}

	res := web.Response{Data: payload}
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	return recorder.Code, res.Error
}

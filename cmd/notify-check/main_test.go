package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-url", "http://svc:8005/", "-mode", "order", "-order", "ORD-1"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "http://svc:8005", opts.BaseURL)
	assert.Equal(t, "ORD-1", opts.OrderID)
	assert.Equal(t, 30*time.Second, opts.Timeout)

	_, err = parseFlags([]string{"-mode", "fax"}, io.Discard)
	assert.ErrorContains(t, err, "unknown mode")
}

func TestRequestBodies(t *testing.T) {
	assert.Nil(t, requestBody(options{Mode: "describe"}))
	assert.Equal(t, true, requestBody(options{Mode: "test"})["testMode"])

	order := requestBody(options{Mode: "order", OrderID: "ORD-9", Force: true})
	assert.Equal(t, "order", order["type"])
	assert.Equal(t, true, order["force"])

	b, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"orderId":"ORD-9"`)
	assert.Contains(t, string(b), `"finalTotal":52.96`)
}

func TestRunAgainstServer(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"channels":[]}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := run(options{BaseURL: srv.URL, Mode: "urgent", Message: "Walk-in freezer open", Timeout: 5 * time.Second}, &out)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/notifications", gotPath)
	assert.Equal(t, "urgent", gotBody["type"])
	assert.Contains(t, out.String(), "HTTP 200")
}

func TestRunReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"invalid order payload"}`))
	}))
	defer srv.Close()

	err := run(options{BaseURL: srv.URL, Mode: "order", OrderID: "x", Timeout: 5 * time.Second}, io.Discard)
	assert.ErrorContains(t, err, "400")
}

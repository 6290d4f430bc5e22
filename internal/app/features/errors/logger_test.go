package errors_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorLogger_ClientGoneDropsResult(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	errLog := uierrors.NewErrorLogger(zap.New(core))

	req := httptest.NewRequest("GET", "/take-food", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	errLog.LogServerError(rec, req, "search listings failed", context.Canceled, "Failed to search.", "/")

	if rec.Body.Len() != 0 {
		t.Errorf("nothing should be written for a gone client, got %q", rec.Body.String())
	}
	if logs.FilterMessage("client gone; dropping result").Len() != 1 {
		t.Error("expected a debug line for the dropped result")
	}
	if logs.FilterLevelExact(zap.ErrorLevel).Len() != 0 {
		t.Error("a gone client should not be logged as an error")
	}
}

func TestErrorLogger_LogTransient(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	errLog := uierrors.NewErrorLogger(zap.New(core))

	req := httptest.NewRequest("POST", "/give-food", nil)
	if !errLog.LogTransient(req, "insert listing", errors.New("boom")) {
		t.Error("LogTransient should report true for a live request")
	}
	if logs.FilterMessage("insert listing").Len() != 1 {
		t.Error("expected the failure to be logged")
	}

	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	if errLog.LogTransient(req.WithContext(ctx), "insert listing", context.Canceled) {
		t.Error("LogTransient should report false for a gone client")
	}
}

func TestHTMXError(t *testing.T) {
	req := httptest.NewRequest("GET", "/locations/cities", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	called := false
	uierrors.HTMXError(rec, req, 400, "bad country", func() { called = true })

	if called {
		t.Error("fallback should not run for HTMX requests")
	}
	if rec.Code != 400 || rec.Body.String() != "bad country" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

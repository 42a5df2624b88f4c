package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/urquest/domain"
	"github.com/fastygo/urquest/pkg/httpcontext"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   domain.ErrorCode
	}{
		{domain.ErrInvalidPayload, http.StatusBadRequest, domain.ErrCodeInvalid},
		{domain.ErrForbidden, http.StatusForbidden, domain.ErrCodeForbidden},
		{domain.ErrTaskNotFound, http.StatusNotFound, domain.ErrCodeNotFound},
		{domain.ErrOrgNameTaken, http.StatusConflict, domain.ErrCodeConflict},
		{domain.ErrDuplicateSubmission, http.StatusConflict, domain.ErrCodeDuplicateSubmission},
		{domain.ErrSubmissionNotPending, http.StatusConflict, domain.ErrCodeInvalidState},
		{domain.ErrXPOverflow, http.StatusConflict, domain.ErrCodeInvalidState},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, domain.ErrCodeUnauthorized},
		{fmt.Errorf("review: %w", domain.ErrSubmissionNotPending), http.StatusConflict, domain.ErrCodeInvalidState},
		{errors.New("connection reset"), http.StatusInternalServerError, domain.ErrCodeInternal},
	}
	for _, tc := range cases {
		status, code := mapError(tc.err)
		if status != tc.status || code != string(tc.code) {
			t.Fatalf("%v: expected %d/%s, got %d/%s", tc.err, tc.status, tc.code, status, code)
		}
	}
}

func TestPathID(t *testing.T) {
	h := newBaseHandler(nil, nil)
	for _, raw := range []string{"", "abc", "0", "-3"} {
		var ctx fasthttp.RequestCtx
		ctx.SetUserValue("id", raw)
		if _, ok := h.pathID(&ctx, "id"); ok {
			t.Fatalf("%q: expected rejection", raw)
		}
		if ctx.Response.StatusCode() != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", raw, ctx.Response.StatusCode())
		}
	}

	var ctx fasthttp.RequestCtx
	ctx.SetUserValue("id", "42")
	if id, ok := h.pathID(&ctx, "id"); !ok || id != 42 {
		t.Fatalf("expected 42, got %d %v", id, ok)
	}
}

func TestRespondError_InternalIsLoggedWithCaller(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := newBaseHandler(httpcontext.NewAdapter(time.Second), zap.New(core))

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/profile")
	ctx.Request.Header.Set(httpcontext.HeaderUserID, "bob")
	ctx.Request.Header.Set(httpcontext.HeaderRequestID, "req-42")
	reqCtx, cancel := h.requestContext(&ctx)
	defer cancel()

	h.respondError(&ctx, reqCtx, errors.New("disk on fire"))

	if ctx.Response.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", ctx.Response.StatusCode())
	}
	if strings.Contains(string(ctx.Response.Body()), "disk on fire") {
		t.Fatalf("internal detail leaked: %s", ctx.Response.Body())
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one log entry, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	if fields["user_id"] != "bob" || fields["request_id"] != "req-42" {
		t.Fatalf("unexpected log fields %v", fields)
	}
}

func TestRespondError_DomainErrorsAreNotLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := newBaseHandler(httpcontext.NewAdapter(time.Second), zap.New(core))

	var ctx fasthttp.RequestCtx
	reqCtx, cancel := h.requestContext(&ctx)
	defer cancel()
	h.respondError(&ctx, reqCtx, domain.ErrDuplicateSubmission)

	if ctx.Response.StatusCode() != http.StatusConflict {
		t.Fatalf("expected 409, got %d", ctx.Response.StatusCode())
	}
	if logs.Len() != 0 {
		t.Fatalf("domain errors must not be logged, got %d entries", logs.Len())
	}
}

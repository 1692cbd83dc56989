package netutil

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDirectFetcher_ContextDeadlineOverridesFallbackTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(80 * time.Millisecond)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewDirectFetcher(
		func() time.Duration { return 20 * time.Millisecond },
		func() string { return "" },
	)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	body, err := f.Fetch(ctx, Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("fetch should succeed with caller deadline, got err=%v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("body: got %q, want %q", string(body), "ok")
	}
}

func TestDirectFetcher_FallbackTimeoutWithoutContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(80 * time.Millisecond)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewDirectFetcher(
		func() time.Duration { return 20 * time.Millisecond },
		func() string { return "" },
	)

	_, err := f.Fetch(context.Background(), Request{URL: srv.URL})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if !IsConnectivityError(err) {
		t.Fatalf("timeout should classify as connectivity error: %v", err)
	}
}

func TestDirectFetcher_PostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type: got %q", ct)
		}
		if ua := r.Header.Get("User-Agent"); ua != "launchview-test" {
			t.Errorf("user-agent: got %q", ua)
		}
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := NewDirectFetcher(
		func() time.Duration { return time.Second },
		func() string { return "launchview-test" },
	)
	got, err := f.Fetch(context.Background(), Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   []byte(`{"query":{}}`),
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != `{"query":{}}` {
		t.Fatalf("echoed body: got %q", string(got))
	}
}

func TestDirectFetcher_NonSuccessStatusIsRemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewDirectFetcher(func() time.Duration { return time.Second }, func() string { return "" })
	_, err := f.Fetch(context.Background(), Request{URL: srv.URL + "/launches/x"})

	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %T %v", err, err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("status: got %d", statusErr.StatusCode)
	}
	if IsConnectivityError(err) {
		t.Fatal("status error must not classify as connectivity error")
	}
	if StatusCode(err) != http.StatusNotFound {
		t.Fatalf("StatusCode: got %d", StatusCode(err))
	}
}

func TestDirectFetcher_RefusedConnectionIsZeroStatus(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	f := NewDirectFetcher(func() time.Duration { return time.Second }, func() string { return "" })
	_, err = f.Fetch(context.Background(), Request{URL: "http://" + addr + "/launches/query"})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !IsConnectivityError(err) {
		t.Fatalf("refused connection should be a connectivity error: %v", err)
	}
	if StatusCode(err) != 0 {
		t.Fatalf("StatusCode: got %d, want 0", StatusCode(err))
	}
	if err := f.Reachable(context.Background(), "http://"+addr); err == nil {
		t.Fatal("Reachable should fail for closed port")
	}
}

func TestDirectFetcher_MalformedURLIsNonRetryable(t *testing.T) {
	f := NewDirectFetcher(func() time.Duration { return time.Second }, func() string { return "" })
	_, err := f.Fetch(context.Background(), Request{URL: "://bad"})

	var setupErr *NonRetryableError
	if !errors.As(err, &setupErr) {
		t.Fatalf("expected NonRetryableError, got %T %v", err, err)
	}
	if IsConnectivityError(err) {
		t.Fatal("setup error must not classify as connectivity error")
	}
}

func TestIsConnectivityError_CanceledIsNotConnectivity(t *testing.T) {
	if IsConnectivityError(nil) {
		t.Fatal("nil is not a connectivity error")
	}
	if IsConnectivityError(context.Canceled) {
		t.Fatal("caller cancellation is not a connectivity error")
	}
}

func TestDirectFetcher_ReachableAcceptsAnyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method: got %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewDirectFetcher(func() time.Duration { return time.Second }, func() string { return "" })
	if err := f.Reachable(context.Background(), srv.URL); err != nil {
		t.Fatalf("Reachable: %v", err)
	}
}

func TestDirectFetcher_DynamicUserAgentPulled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer srv.Close()

	ua := "agent-a"
	f := NewDirectFetcher(
		func() time.Duration { return 0 },
		func() string { return ua },
	)

	body, err := f.Fetch(context.Background(), Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if string(body) != "agent-a" {
		t.Fatalf("expected first UA agent-a, got %q", string(body))
	}

	ua = "agent-b"
	body, err = f.Fetch(context.Background(), Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if string(body) != "agent-b" {
		t.Fatalf("expected second UA agent-b, got %q", string(body))
	}
}

package device

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		name    string
		body    string
		want    model.Reading
		wantErr bool
	}{
		{"AllFields", `{"sensor1": 12.5, "sensor2": 80, "ldr": 412}`, model.Reading{Distance1: 12.5, Distance2: 80, Light: 412}, false},
		{"MissingFields", `{"sensor1": 7}`, model.Reading{Distance1: 7}, false},
		{"EmptyObject", `{}`, model.Reading{}, false},
		{"NumericStrings", `{"sensor1": "33.3", "sensor2": " 4 ", "ldr": "bright"}`, model.Reading{Distance1: 33.3, Distance2: 4}, false},
		{"NullAndBool", `{"sensor1": null, "sensor2": true, "ldr": 1}`, model.Reading{Light: 1}, false},
		{"ExtraFields", `{"sensor1": 1, "uptime": 99}`, model.Reading{Distance1: 1}, false},
		{"Array", `[1,2,3]`, model.Reading{}, true},
		{"Garbage", `<html>captive portal</html>`, model.Reading{}, true},
		{"Empty", ``, model.Reading{}, true},
		{"Null", `null`, model.Reading{}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.body))
			if tc.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("Decode(%q) error = %v, want ErrMalformed", tc.body, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", tc.body, err)
			}
			if *got != tc.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tc.body, *got, tc.want)
			}
		})
	}
}

func TestFetch_Success(t *testing.T) {
	var gotConnHeader string
	var gotClose bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotConnHeader = r.Header.Get("Connection")
		gotClose = r.Close
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"sensor1": 42, "sensor2": 0, "ldr": 120.5}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	r, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if r.Distance1 != 42 || r.Distance2 != 0 || r.Light != 120.5 {
		t.Errorf("reading = %+v", r)
	}
	if !r.ReceivedAt.Equal(fixed) {
		t.Errorf("ReceivedAt = %v, want %v", r.ReceivedAt, fixed)
	}
	if gotConnHeader != "close" && !gotClose {
		t.Errorf("expected Connection: close, got header=%q close=%v", gotConnHeader, gotClose)
	}
	if c.URL() != srv.URL {
		t.Errorf("URL() = %q, want trailing slash trimmed %q", c.URL(), srv.URL)
	}
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Fetch(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
	if Classify(err) != model.LinkTimeout {
		t.Errorf("Classify(status error) = %q, want %q", Classify(err), model.LinkTimeout)
	}
}

func TestFetch_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Fetch(context.Background())
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := New(srv.URL, 100*time.Millisecond).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Fetch took %v, timeout not applied", elapsed)
	}
	if got := Classify(err); got != model.LinkTimeout {
		t.Errorf("Classify(timeout) = %q, want %q", got, model.LinkTimeout)
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	lis.Close()

	_, err = New("http://"+addr, time.Second).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected dial error")
	}
	if got := Classify(err); got != model.LinkNoNetwork {
		t.Errorf("Classify(refused) = %q, want %q", got, model.LinkNoNetwork)
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := Classify(nil); got != model.LinkConnected {
		t.Errorf("Classify(nil) = %q", got)
	}
	if got := Classify(errors.New("boom")); got != model.LinkTimeout {
		t.Errorf("Classify(generic) = %q", got)
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New("", 0)
	if c.URL() != DefaultURL {
		t.Errorf("URL() = %q, want %q", c.URL(), DefaultURL)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
}

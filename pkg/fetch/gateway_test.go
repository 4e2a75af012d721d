package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string `json:"value"`
}

func TestGateway_GetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	g := New(4, time.Second)
	var out payload
	err := g.GetJSON(context.Background(), srv.URL, &out)
	require.NoError(t, err)
	require.Equal(t, "ok", out.Value)
}

func TestGateway_GetJSON_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := New(4, time.Second)
	var out payload
	err := g.GetJSON(context.Background(), srv.URL, &out)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	require.False(t, IsOffline(err))
}

func TestGateway_GetJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	g := New(4, time.Second)
	var out payload
	err := g.GetJSON(context.Background(), srv.URL, &out)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.False(t, IsOffline(err))
}

func TestGateway_GetJSON_OfflineUnreachableHost(t *testing.T) {
	g := New(4, 200*time.Millisecond)
	var out payload
	// Port 0 on localhost never accepts; the client fails fast with a
	// connection error rather than hanging for the full timeout.
	err := g.GetJSON(context.Background(), "http://127.0.0.1:0/unreachable", &out)
	require.Error(t, err)
	require.True(t, IsOffline(err))
}

func TestGateway_PostJSON_SendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"value":"posted"}`))
	}))
	defer srv.Close()

	g := New(4, time.Second)
	var out payload
	err := g.PostJSON(context.Background(), srv.URL, map[string]string{"hashes": "abc"}, &out)
	require.NoError(t, err)
	require.Equal(t, "posted", out.Value)
}

func TestGateway_BoundsConcurrency(t *testing.T) {
	var active, maxSeen int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&active, 1)
		defer atomic.AddInt32(&active, -1)
		for {
			cur := atomic.LoadInt32(&maxSeen)
			if n <= cur || atomic.CompareAndSwapInt32(&maxSeen, cur, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	g := New(2, time.Second)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			var out payload
			g.GetJSON(context.Background(), srv.URL, &out)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	require.LessOrEqual(t, int(maxSeen), 2)
}

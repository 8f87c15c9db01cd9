package daemon

import (
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDaemon_ServesAndSweeps(t *testing.T) {
	var sweeps atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	d := NewDaemon("127.0.0.1:0", handler, func() { sweeps.Add(1) }, 10*time.Millisecond, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- d.RunWithTimeout(5 * time.Second)
	}()

	require.Eventually(t, func() bool { return d.Addr() != "" }, time.Second, 5*time.Millisecond)

	resp, err := http.Get("http://" + d.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	require.Eventually(t, func() bool { return sweeps.Load() >= 2 }, time.Second, 5*time.Millisecond)

	status := d.GetStatus()
	assert.Equal(t, true, status["running"])
	assert.Contains(t, status, "last_sweep")

	d.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}

	assert.Equal(t, false, d.GetStatus()["running"])
}

func TestDaemon_ListenError(t *testing.T) {
	d := NewDaemon("256.0.0.1:bad", http.NotFoundHandler(), nil, time.Second, zap.NewNop())
	assert.Error(t, d.RunWithTimeout(time.Second))
}

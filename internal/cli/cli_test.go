package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metalrates/internal/coordinator"
	"metalrates/internal/maybank"
	"metalrates/internal/testutil"
)

func testDeps(status int, body string) Deps {
	reg := prometheus.NewRegistry()
	return Deps{
		Registerer: reg,
		Gatherer:   reg,
		Transport: testutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			return testutil.Response(r, status, body), nil
		}),
	}
}

func run(t *testing.T, ctx context.Context, deps Deps, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(deps)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestFetch_PrintsTable(t *testing.T) {
	out, err := run(t, context.Background(), testDeps(http.StatusOK, testutil.RatesPage), "fetch")
	require.NoError(t, err)

	for _, want := range []string{"PRODUCT", "gold", "534.14", "513.79", "silver", "6.62", "miga_100g", "535.88", "MYR/g"} {
		assert.Contains(t, out, want)
	}
}

func TestFetch_JSON(t *testing.T) {
	out, err := run(t, context.Background(), testDeps(http.StatusOK, testutil.RatesPage), "fetch", "--json")
	require.NoError(t, err)

	var snap coordinator.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.True(t, snap.OK)
	assert.Equal(t, maybank.SourceURL, snap.Source)
	assert.Len(t, snap.Table, 4)
}

func TestFetch_StatusError(t *testing.T) {
	_, err := run(t, context.Background(), testDeps(http.StatusServiceUnavailable, ""), "fetch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_status")
}

func TestFetch_ParseFailure(t *testing.T) {
	out, err := run(t, context.Background(), testDeps(http.StatusOK, "<html>maintenance</html>"), "fetch", "--json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse_failed")
	assert.Contains(t, out, `"diagnostic": "parse_failed: no prices found in document"`)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, context.Background(), testDeps(http.StatusOK, testutil.RatesPage), "fetch", "--log-format", "xml", "--window", "5000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
	assert.Contains(t, err.Error(), "search_window")
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		_, err := run(t, ctx, testDeps(http.StatusOK, testutil.RatesPage), "serve", "--listen", "127.0.0.1:0")
		done <- err
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/mhpenta/designgen"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector("test", prometheus.NewRegistry())
}

func TestCollector_ObserveLifecycle(t *testing.T) {
	c := newTestCollector(t)

	clock := time.Unix(0, 0)
	c.now = func() time.Time { return clock }

	c.Observe(designgen.View{Phase: designgen.PhaseIdle})
	c.Observe(designgen.View{GenerationID: "g1", Phase: designgen.PhaseGenerating, Prompt: "a"})
	// A prompt edit while loading repeats the generating view.
	c.Observe(designgen.View{GenerationID: "g1", Phase: designgen.PhaseGenerating, Prompt: "b"})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsActive))

	clock = clock.Add(3 * time.Second)
	c.Observe(designgen.View{GenerationID: "g1", Phase: designgen.PhaseSucceeded})
	// A later prompt edit repeats the succeeded view.
	c.Observe(designgen.View{GenerationID: "g1", Phase: designgen.PhaseSucceeded})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.generationsActive))

	c.Observe(designgen.View{GenerationID: "g2", Phase: designgen.PhaseGenerating})
	c.Observe(designgen.View{GenerationID: "g2", Phase: designgen.PhaseFailed, ErrorMessage: "quota exceeded"})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.generationDuration))
}

func TestCollector_AttachedToController(t *testing.T) {
	c := newTestCollector(t)

	ref, err := designgen.NewImageRef([]byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)

	ctrl := designgen.NewController(designgen.ProviderFunc(func(_ context.Context, _ string) (designgen.ImageRef, error) {
		return ref, nil
	}), designgen.WithObserver(c.Observe))
	defer ctrl.Close()

	require.True(t, ctrl.Generate())
	require.NoError(t, ctrl.Wait(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.generationsActive))
}

func TestCollector_RecordExport(t *testing.T) {
	c := newTestCollector(t)

	c.RecordExport("file", nil)
	c.RecordExport("s3", errors.New("denied"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.exportsTotal.WithLabelValues("file", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.exportsTotal.WithLabelValues("s3", "error")))
}

func TestCollector_Middleware(t *testing.T) {
	c := newTestCollector(t)

	r := mux.NewRouter()
	r.Use(c.Middleware)
	r.HandleFunc("/api/design", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/design", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/api/design", "409")))
}

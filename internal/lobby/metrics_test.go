package lobby

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsFollowEngineState(t *testing.T) {
	m := NewMetrics()
	e := New(WithIDGenerator(sequentialIDs()), WithMetrics(m))

	connA, a := connect(t, e)
	connB, b := connect(t, e)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsConnected))

	require.NoError(t, e.Dispatch(connA, command(t, CommandReady, a)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsWaiting))

	require.NoError(t, e.Dispatch(connB, command(t, CommandReady, b)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionsWaiting))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoomsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoomsCreated))

	require.NoError(t, e.Dispatch(connA, command(t, CommandMessage, a, "hi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesPosted))

	_ = e.Dispatch(connA, []byte("nope"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesDiscarded.WithLabelValues(discardMalformed)))

	require.NoError(t, e.Unregister(connB))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsConnected))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RoomsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoomsClosed))
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	m := NewMetrics()
	m.RoomsCreated.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stranger_rooms_created_total 1")
	assert.Contains(t, string(body), "stranger_sessions_connected")
}

func TestNilMetricsRecordNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.roomOpened()
		m.roomClosed()
		m.messagePosted()
		m.discarded(discardMalformed)
	})
}

package metrics_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/KjellKod/concurrent"
	"github.com/KjellKod/concurrent/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n int
}

func (c *counter) Inc() int {
	c.n++
	return c.n
}

func (c *counter) Fail() (int, error) {
	return 0, errors.New("nope")
}

func TestObserver_CountsObjectActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New("concurrent", reg)
	require.NoError(t, err)

	obj := concurrent.Of(counter{}, concurrent.WithName("counter"), concurrent.WithObserver(m))
	for i := 0; i < 3; i++ {
		concurrent.Call(obj, (*counter).Inc)
	}
	_, err = concurrent.CallErr(obj, (*counter).Fail).Get()
	require.Error(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(m.ActiveObjects))

	require.NoError(t, obj.Close())
	concurrent.Call(obj, (*counter).Inc)

	require.Equal(t, 4.0, testutil.ToFloat64(m.TasksSubmitted.WithLabelValues("counter", "call")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.TasksCompleted.WithLabelValues("counter")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TasksFailed.WithLabelValues("counter")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TasksRejected.WithLabelValues("counter")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.TasksPending.WithLabelValues("counter")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.ActiveObjects))
	require.Equal(t, 1, testutil.CollectAndCount(m.TaskLatency))
}

func TestObserver_ExposesNamespacedSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.MustNew("kv", reg)

	obj := concurrent.Of(counter{}, concurrent.WithName("c"), concurrent.WithObserver(m))
	concurrent.Fire(obj, func(c *counter) { c.Inc() })
	require.NoError(t, obj.Close())

	expected := `
# HELP kv_tasks_submitted_total Total number of work items queued.
# TYPE kv_tasks_submitted_total counter
kv_tasks_submitted_total{kind="fire",object="c"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "kv_tasks_submitted_total"))
}

func TestNew_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New("dup", reg)
	require.NoError(t, err)

	_, err = metrics.New("dup", reg)
	require.Error(t, err)

	var already prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
}

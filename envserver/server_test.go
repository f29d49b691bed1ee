package envserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/env"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/envserver"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/output"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
	"google.golang.org/protobuf/types/known/structpb"
)

type memRecorder struct {
	mu      sync.Mutex
	records []output.EpisodeSummary
}

func (r *memRecorder) Record(_ context.Context, s output.EpisodeSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, s)
	return nil
}

func (r *memRecorder) Close(context.Context) error { return nil }

func (r *memRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type clients struct {
	reset, step, snapshot, spaces *connect.Client[structpb.Struct, structpb.Struct]
}

func newTestServer(t *testing.T, total int32) (*clients, *memRecorder) {
	cfg := config.Default(config.PresetRL)
	cfg.Control.Step.Total = total
	rc, err := config.NewRuntimeConfig(cfg)
	require.NoError(t, err)

	rec := &memRecorder{}
	s := envserver.NewServer(env.New(rc), config.PresetRL, rec, nil)
	mux := http.NewServeMux()
	mux.Handle(s.Handler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	newClient := func(procedure string) *connect.Client[structpb.Struct, structpb.Struct] {
		return connect.NewClient[structpb.Struct, structpb.Struct](srv.Client(), srv.URL+procedure)
	}
	return &clients{
		reset:    newClient(envserver.ResetProcedure),
		step:     newClient(envserver.StepProcedure),
		snapshot: newClient(envserver.SnapshotProcedure),
		spaces:   newClient(envserver.SpacesProcedure),
	}, rec
}

func call(t *testing.T, c *connect.Client[structpb.Struct, structpb.Struct], m map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(m)
	require.NoError(t, err)
	res, err := c.CallUnary(context.Background(), connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func observation(t *testing.T, s *structpb.Struct) []any {
	obs, ok := s.AsMap()["observation"].([]any)
	require.True(t, ok)
	require.Len(t, obs, 5)
	return obs
}

func TestResetAndStep(t *testing.T) {
	c, _ := newTestServer(t, 2000)

	res, err := call(t, c.reset, map[string]any{"seed": 5})
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 0.0, 0.0, 0.0, 0.0}, observation(t, res))
	assert.Empty(t, res.AsMap()["info"])

	res, err = call(t, c.step, map[string]any{"action": 1})
	require.NoError(t, err)
	m := res.AsMap()
	assert.Equal(t, 1.0, observation(t, res)[4])
	assert.Equal(t, false, m["terminated"])
	assert.Equal(t, false, m["truncated"])
	assert.Contains(t, m, "reward")
	assert.Equal(t, true, m["info"].(map[string]any)["switched"])
}

func TestInvalidRequests(t *testing.T) {
	c, _ := newTestServer(t, 2000)
	_, err := call(t, c.reset, nil)
	require.NoError(t, err)

	for _, m := range []map[string]any{
		{},
		{"action": 2},
		{"action": -1},
		{"action": 0.5},
		{"action": "switch"},
	} {
		_, err := call(t, c.step, m)
		require.Error(t, err, "%v", m)
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "%v", m)
	}

	_, err = call(t, c.reset, map[string]any{"seed": -3})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	// 非法请求不影响状态
	snap, err := call(t, c.snapshot, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.AsMap()["step"])
}

func TestEpisodeRecordedOnce(t *testing.T) {
	c, rec := newTestServer(t, 20)
	_, err := call(t, c.reset, map[string]any{"seed": 1})
	require.NoError(t, err)

	for i := 1; i <= 25; i++ {
		res, err := call(t, c.step, map[string]any{"action": 0})
		require.NoError(t, err)
		assert.Equal(t, i >= 20, res.AsMap()["terminated"], "step %d", i)
	}
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, int32(20), rec.records[0].Steps)
	assert.Equal(t, "serve", rec.records[0].Mode)
	assert.Equal(t, int64(1), rec.records[0].Seed)

	// 新episode可以再次记录
	_, err = call(t, c.reset, nil)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, err := call(t, c.step, map[string]any{"action": 0})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, rec.Len())
}

func TestResetAcceptsLargeSeeds(t *testing.T) {
	c, rec := newTestServer(t, 20)

	for _, seed := range []any{float64(1 << 40), "1099511627776"} {
		_, err := call(t, c.reset, map[string]any{"seed": seed})
		require.NoError(t, err, "%v", seed)
		for i := 0; i < 20; i++ {
			_, err := call(t, c.step, map[string]any{"action": 0})
			require.NoError(t, err)
		}
	}
	require.Equal(t, 2, rec.Len())
	assert.Equal(t, int64(1<<40), rec.records[0].Seed)
	assert.Equal(t, rec.records[0].Seed, rec.records[1].Seed)
	assert.Equal(t, rec.records[0].Spawned, rec.records[1].Spawned)

	_, err := call(t, c.reset, map[string]any{"seed": float64(1 << 53)})
	assert.NoError(t, err)
	_, err = call(t, c.reset, map[string]any{"seed": "18446744073709551615"})
	assert.NoError(t, err)

	for _, seed := range []any{float64(1<<53) * 2, 1.5, "abc", "-1", true} {
		_, err := call(t, c.reset, map[string]any{"seed": seed})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "%v", seed)
	}
}

func TestSnapshotAndSpaces(t *testing.T) {
	c, _ := newTestServer(t, 2000)
	_, err := call(t, c.reset, nil)
	require.NoError(t, err)

	snap, err := call(t, c.snapshot, nil)
	require.NoError(t, err)
	m := snap.AsMap()
	assert.Equal(t, "NS_GREEN", m["phase"])
	assert.Len(t, m["lanes"], 4)

	spaces, err := call(t, c.spaces, nil)
	require.NoError(t, err)
	m = spaces.AsMap()
	assert.Equal(t, 2.0, m["action_space"].(map[string]any)["n"])
	obsSpace := m["observation_space"].(map[string]any)
	assert.Equal(t, 10.0, obsSpace["high"])
	assert.Equal(t, []any{5.0}, obsSpace["shape"])
}

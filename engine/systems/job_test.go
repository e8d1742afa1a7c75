package systems

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vista/engine/assets"
	"github.com/spaghettifunk/vista/engine/config"
	"github.com/spaghettifunk/vista/engine/core"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func TestNewJobSystemValidates(t *testing.T) {
	tasks := core.NewTaskQueue(4)
	_, err := NewJobSystem(0, 1, tasks)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1, tasks)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
	_, err = NewJobSystem(1, 1, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestJobCallbacksRunOnDrain(t *testing.T) {
	tasks := core.NewTaskQueue(16)
	js, err := NewJobSystem(2, 4, tasks)
	require.NoError(t, err)

	var ran atomic.Int32
	var results []any
	var failures []error
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		require.NoError(t, js.Submit(JobTask{
			Name: "ok",
			Run: func() (any, error) {
				ran.Add(1)
				return 7, nil
			},
			OnComplete: func(result any) { results = append(results, result) },
			OnFailure:  func(err error) { failures = append(failures, err) },
		}))
	}
	require.NoError(t, js.Submit(JobTask{
		Name:      "fails",
		Run:       func() (any, error) { return nil, boom },
		OnFailure: func(err error) { failures = append(failures, err) },
	}))
	// No callbacks, nothing posted.
	require.NoError(t, js.Submit(JobTask{Name: "quiet", Run: func() (any, error) { return nil, nil }}))

	require.NoError(t, js.Shutdown())
	assert.Equal(t, int32(3), ran.Load())
	assert.Empty(t, results, "callbacks must wait for the render thread")

	assert.Equal(t, 4, tasks.Drain())
	assert.Equal(t, []any{7, 7, 7}, results)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], boom)
}

func TestSubmitAfterShutdown(t *testing.T) {
	js, err := NewJobSystem(1, 0, core.NewTaskQueue(1))
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	err = js.Submit(JobTask{Run: func() (any, error) { return nil, nil }})
	assert.ErrorIs(t, err, ErrJobSystemClosed)
}

func TestSubmitWithoutRunIsAViolation(t *testing.T) {
	js, err := NewJobSystem(1, 0, core.NewTaskQueue(1))
	require.NoError(t, err)
	defer js.Shutdown()

	assert.PanicsWithError(t, "contract violation in JobSystem.Submit: job 'empty' has nothing to run", func() {
		_ = js.Submit(JobTask{Name: "empty"})
	})
}

func TestSystemManagerLoadsMaterialsOffThread(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stone.toml"), []byte(`
name = "stone"
diffuse_colour = [0.5, 0.5, 0.5, 1.0]
shininess = 16.0
`), 0o644))

	cfg := config.Default().Assets
	cfg.Root = dir
	sm, err := NewSystemManager(cfg)
	require.NoError(t, err)

	var loaded *assets.Material
	var failed error
	require.NoError(t, sm.Jobs().LoadMaterial(sm.Assets(), "stone.toml",
		func(m *assets.Material) { loaded = m },
		func(err error) { failed = err }))
	require.NoError(t, sm.Jobs().LoadMaterial(sm.Assets(), "missing.toml",
		func(m *assets.Material) { t.Error("missing material loaded") },
		func(err error) { failed = err }))

	require.NoError(t, sm.Shutdown())
	require.NotNil(t, loaded)
	assert.Equal(t, "stone", loaded.Name())
	assert.Equal(t, float32(16), loaded.Shininess())
	assert.Error(t, failed)
	assert.Zero(t, sm.Update())
}

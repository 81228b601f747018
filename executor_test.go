package drivecli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Jumpaku/go-drivecli"
	"github.com/Jumpaku/go-drivecli/drivetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadPlan(names ...string) drivecli.Plan {
	var plan drivecli.Plan
	for _, name := range names {
		plan.Items = append(plan.Items, drivecli.TransferItem{
			Source:      "/src/" + name,
			Destination: "/" + name,
			Direction:   drivecli.DirectionUpload,
			ParentID:    drivecli.RootID,
			Name:        name,
		})
	}
	return plan
}

func failOn(name string) func(op, target string) error {
	return func(op, target string) error {
		if op == drivetest.OpUploadBytes && target == name {
			return errors.New("rate limited")
		}
		return nil
	}
}

func TestExecutor_SequentialAbortsOnFirstError(t *testing.T) {
	ctx := context.Background()
	_, p, local := newTestSession(t)
	writeLocal(t, local, map[string]string{"/src/a": "A", "/src/b": "B", "/src/c": "C"})
	p.Fail = failOn("b")
	rec := &recorder{}

	report, err := drivecli.NewExecutor(p, local, 1, rec.observe).Run(ctx, uploadPlan("a", "b", "c"))
	require.ErrorIs(t, err, drivecli.ErrProviderError)
	assert.Len(t, report.Results, 2)
	assert.Len(t, report.Failed(), 1)
	assert.Equal(t, 2, p.Calls(drivetest.OpUploadBytes))
	assert.Len(t, rec.items, 2)

	_, ok := p.Lookup("/c")
	assert.False(t, ok)
}

func TestExecutor_PoolIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	_, p, local := newTestSession(t)
	writeLocal(t, local, map[string]string{"/src/a": "A", "/src/b": "B", "/src/c": "C"})
	p.Fail = failOn("b")
	rec := &recorder{}

	report, err := drivecli.NewExecutor(p, local, 3, rec.observe).Run(ctx, uploadPlan("a", "b", "c"))
	require.ErrorIs(t, err, drivecli.ErrProviderError)
	assert.Len(t, report.Results, 3)
	require.Len(t, report.Failed(), 1)
	assert.Equal(t, "b", report.Failed()[0].Item.Name)
	assert.Equal(t, 3, p.Calls(drivetest.OpUploadBytes))
	assert.Len(t, rec.items, 3)

	for _, name := range []string{"/a", "/c"} {
		_, ok := p.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestExecutor_PoolSucceeds(t *testing.T) {
	ctx := context.Background()
	_, p, local := newTestSession(t)
	writeLocal(t, local, map[string]string{"/src/a": "A", "/src/b": "B"})

	report, err := drivecli.NewExecutor(p, local, 4, nil).Run(ctx, uploadPlan("a", "b"))
	require.NoError(t, err)
	assert.NoError(t, report.Err())
	assert.Len(t, report.Results, 2)
}

func TestExecutor_MissingLocalSource(t *testing.T) {
	ctx := context.Background()
	_, p, local := newTestSession(t)

	_, err := drivecli.NewExecutor(p, local, 1, nil).Run(ctx, uploadPlan("gone"))
	assert.ErrorIs(t, err, drivecli.ErrIOError)
	assert.Zero(t, p.Calls(drivetest.OpUploadBytes))
}

func TestExecutor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, p, local := newTestSession(t)
	writeLocal(t, local, map[string]string{"/src/a": "A"})

	report, err := drivecli.NewExecutor(p, local, 1, nil).Run(ctx, uploadPlan("a"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Results)
	assert.Zero(t, p.Calls(drivetest.OpUploadBytes))
}

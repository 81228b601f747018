package drivecli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one TransferItem.
type Result struct {
	Item TransferItem
	Err  error
}

// Report collects the per-item outcomes of one executed plan.
type Report struct {
	Results []Result
	// Dirs and Skipped are carried over from the plan.
	Dirs    int
	Skipped []string
}

// Failed returns the results whose transfer failed.
func (r Report) Failed() (failed []Result) {
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the errors of all failed items, or returns nil if every item succeeded.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s '%s': %w", res.Item.Direction, res.Item.Source, res.Err))
	}
	return errors.Join(errs...)
}

// Executor performs the provider call behind each TransferItem of a plan.
type Executor struct {
	provider Provider
	local    billy.Filesystem
	workers  int
	observe  Observer
}

// NewExecutor creates an Executor. With workers <= 1 items run one after another and
// the first failure aborts the rest; with more, up to workers items run at once and
// each failure is recorded without stopping the others.
func NewExecutor(provider Provider, local billy.Filesystem, workers int, observe Observer) *Executor {
	if observe == nil {
		observe = func(TransferItem, error) {}
	}
	return &Executor{provider: provider, local: local, workers: workers, observe: observe}
}

// Run executes plan and reports what happened to each item it reached.
func (e *Executor) Run(ctx context.Context, plan Plan) (Report, error) {
	if e.workers <= 1 {
		return e.runSequential(ctx, plan)
	}
	return e.runPool(ctx, plan)
}

func (e *Executor) runSequential(ctx context.Context, plan Plan) (report Report, err error) {
	report.Dirs, report.Skipped = plan.Dirs, plan.Skipped
	for _, item := range plan.Items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		err := e.transfer(ctx, item)
		e.observe(item, err)
		report.Results = append(report.Results, Result{Item: item, Err: err})
		if err != nil {
			return report, fmt.Errorf("failed to %s '%s': %w", item.Direction, item.Source, err)
		}
	}
	return report, nil
}

func (e *Executor) runPool(ctx context.Context, plan Plan) (Report, error) {
	results := make([]Result, len(plan.Items))
	eg := new(errgroup.Group)
	eg.SetLimit(e.workers)
	for i, item := range plan.Items {
		eg.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = e.transfer(ctx, item)
			}
			e.observe(item, err)
			results[i] = Result{Item: item, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	report := Report{Results: results, Dirs: plan.Dirs, Skipped: plan.Skipped}
	return report, report.Err()
}

func (e *Executor) transfer(ctx context.Context, item TransferItem) error {
	switch item.Direction {
	case DirectionUpload:
		data, err := util.ReadFile(e.local, item.Source)
		if err != nil {
			return newIOError(fmt.Sprintf("failed to read '%s'", item.Source), err)
		}
		if _, err := e.provider.UploadBytes(ctx, item.ParentID, item.Name, data); err != nil {
			return err
		}
		return nil
	case DirectionDownload:
		data, err := e.provider.DownloadBytes(ctx, item.ObjectID)
		if err != nil {
			return err
		}
		if err := e.local.MkdirAll(filepath.Dir(item.Destination), 0o755); err != nil {
			return newIOError(fmt.Sprintf("failed to create directory for '%s'", item.Destination), err)
		}
		if err := util.WriteFile(e.local, item.Destination, data, 0o644); err != nil {
			return newIOError(fmt.Sprintf("failed to write '%s'", item.Destination), err)
		}
		return nil
	default:
		return fmt.Errorf("unknown transfer direction %d", item.Direction)
	}
}

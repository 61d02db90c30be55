package reconciler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/image-vault/internal/usecase"
	"github.com/andreyxaxa/image-vault/pkg/logger"
)

// Reconciler periodically sweeps the object store and the metadata
// table for records that lost their counterpart after a partial failure.
// The two stores are not tied by a transaction, so upload and delete can
// each leave one side behind; the sweep surfaces that drift.
type Reconciler struct {
	img    usecase.ImageUseCase
	logger logger.Interface

	interval      time.Duration
	sweepTimeout  time.Duration
	deleteOrphans bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	img usecase.ImageUseCase,
	l logger.Interface,
	interval time.Duration,
	sweepTimeout time.Duration,
	deleteOrphans bool,
) *Reconciler {
	return &Reconciler{
		img:           img,
		logger:        l,
		interval:      interval,
		sweepTimeout:  sweepTimeout,
		deleteOrphans: deleteOrphans,
	}
}

func (r *Reconciler) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Reconciler - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				sweepCtx, sweepCancel := context.WithTimeout(r.ctx, r.sweepTimeout)
				err := r.img.Reconcile(sweepCtx, r.deleteOrphans)
				if err != nil {
					r.logger.Error(err, "Reconciler - Start - r.img.Reconcile")
				}
				sweepCancel()
			}
		}
	}()

	return nil
}

func (r *Reconciler) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}

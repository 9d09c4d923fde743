package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var ErrRunInProgress = errors.New("run already in progress")

// Executor runs one reporting run to completion
type Executor interface {
	Run(ctx context.Context, req RunRequest) (*RunResult, error)
}

// Controller starts runs in the background, at most one per client
type Controller interface {
	Start(ctx context.Context, req RunRequest) (<-chan struct{}, error)
	Cancel(ctx context.Context, client string) error
	Running() []string
}

type runDescriptor struct {
	cancelFunc context.CancelFunc
	done       chan struct{}
}

type DefaultController struct {
	executor Executor

	mu   sync.Mutex
	runs map[string]runDescriptor
}

func NewController(executor Executor) *DefaultController {
	return &DefaultController{
		executor: executor,
		runs:     make(map[string]runDescriptor),
	}
}

// Start launches req detached from the caller's cancellation; the returned channel closes when it ends
func (ctrl *DefaultController) Start(ctx context.Context, req RunRequest) (<-chan struct{}, error) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if _, ok := ctrl.runs[req.Client]; ok {
		return nil, fmt.Errorf("%w for client %q", ErrRunInProgress, req.Client)
	}

	logger := zerolog.Ctx(ctx)
	runCtx, cancel := context.WithCancel(logger.WithContext(context.WithoutCancel(ctx)))
	desc := runDescriptor{cancelFunc: cancel, done: make(chan struct{})}
	ctrl.runs[req.Client] = desc

	go func() {
		defer close(desc.done)
		defer cancel()
		defer ctrl.release(req.Client)

		if _, err := ctrl.executor.Run(runCtx, req); err != nil {
			logger.Error().Err(err).Str("client", req.Client).Msg("background run failed")
		}
	}()

	return desc.done, nil
}

func (ctrl *DefaultController) Cancel(_ context.Context, client string) error {
	ctrl.mu.Lock()
	desc, ok := ctrl.runs[client]
	ctrl.mu.Unlock()

	if !ok {
		return fmt.Errorf("run not in progress: %s", client)
	}
	desc.cancelFunc()
	<-desc.done
	return nil
}

// CancelAll cancels every in-flight run and waits for each to record its outcome
func (ctrl *DefaultController) CancelAll(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	for _, client := range ctrl.Running() {
		if err := ctrl.Cancel(ctx, client); err != nil {
			// finished between Running and Cancel
			logger.Debug().Err(err).Str("client", client).Msg("run already finished")
			continue
		}
		logger.Info().Str("client", client).Msg("cancelled in-flight run")
	}
}

func (ctrl *DefaultController) Running() []string {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	clients := make([]string, 0, len(ctrl.runs))
	for client := range ctrl.runs {
		clients = append(clients, client)
	}
	return clients
}

func (ctrl *DefaultController) release(client string) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	delete(ctrl.runs, client)
}

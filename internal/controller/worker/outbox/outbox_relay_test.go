package outbox

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/andreyxaxa/image-vault/internal/dto"
	"github.com/andreyxaxa/image-vault/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUseCase struct {
	pending []*entity.OutboxEvent

	processing  []*entity.OutboxEvent
	processed   []*entity.OutboxEvent
	incremented []*entity.OutboxEvent
}

func (s *stubUseCase) Upload(context.Context, io.Reader, string, string, int64) (*entity.Image, error) {
	return nil, nil
}

func (s *stubUseCase) Fetch(context.Context, uuid.UUID) (*entity.Image, []byte, string, error) {
	return nil, nil, "", nil
}

func (s *stubUseCase) Update(context.Context, uuid.UUID, dto.UpdateImage) error { return nil }
func (s *stubUseCase) Delete(context.Context, uuid.UUID) error                  { return nil }
func (s *stubUseCase) Reconcile(context.Context, bool) error                    { return nil }

func (s *stubUseCase) GetPendingEvents(context.Context, int, int) ([]*entity.OutboxEvent, error) {
	return s.pending, nil
}

func (s *stubUseCase) MarkAsProcessingBatch(_ context.Context, events []*entity.OutboxEvent) error {
	s.processing = events
	return nil
}

func (s *stubUseCase) MarkAsProcessedBatch(_ context.Context, events []*entity.OutboxEvent) error {
	s.processed = events
	return nil
}

func (s *stubUseCase) IncrementRetryCountBatch(_ context.Context, events []*entity.OutboxEvent) error {
	s.incremented = events
	return nil
}

func (s *stubUseCase) MarkMaxRetriesAsFailed(context.Context, int) error { return nil }
func (s *stubUseCase) CleanupOutbox(context.Context) error               { return nil }

type stubSender struct {
	sent []*entity.OutboxEvent
	err  error
}

func (s *stubSender) SendEvents(_ context.Context, events []*entity.OutboxEvent) error {
	if s.err != nil {
		return s.err
	}
	s.sent = events
	return nil
}

func (s *stubSender) Close() error { return nil }

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(interface{}, ...interface{}) {}
func (nopLogger) Fatal(interface{}, ...interface{}) {}

func newRelay(img *stubUseCase, es *stubSender) *OutboxRelay {
	return New(img, es, nopLogger{}, time.Second, time.Hour, time.Minute, time.Second, 10, 3)
}

func pendingEvents(n int) []*entity.OutboxEvent {
	events := make([]*entity.OutboxEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, &entity.OutboxEvent{
			ID:          uuid.New(),
			AggregateID: uuid.New(),
			Payload:     []byte(`{"action":"uploaded"}`),
			Status:      entity.Pending,
			CreatedAt:   time.Now(),
		})
	}
	return events
}

func TestProcessEventsBatchPublishes(t *testing.T) {
	img := &stubUseCase{pending: pendingEvents(3)}
	es := &stubSender{}
	relay := newRelay(img, es)

	relay.processEventsBatch(context.Background())

	assert.Len(t, es.sent, 3)
	assert.Equal(t, img.pending, img.processing)
	assert.Equal(t, img.pending, img.processed)
	assert.Empty(t, img.incremented)
}

func TestProcessEventsBatchRetriesOnSendFailure(t *testing.T) {
	img := &stubUseCase{pending: pendingEvents(2)}
	es := &stubSender{err: assert.AnError}
	relay := newRelay(img, es)

	relay.processEventsBatch(context.Background())

	assert.Empty(t, es.sent)
	assert.Equal(t, img.pending, img.incremented)
	assert.Empty(t, img.processed)
}

func TestProcessEventsBatchNoPending(t *testing.T) {
	img := &stubUseCase{}
	es := &stubSender{}
	relay := newRelay(img, es)

	relay.processEventsBatch(context.Background())

	assert.Empty(t, es.sent)
	assert.Empty(t, img.processing)
}

func TestStartTwice(t *testing.T) {
	img := &stubUseCase{}
	relay := newRelay(img, &stubSender{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, relay.Start(ctx))
	require.Error(t, relay.Start(ctx))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	require.NoError(t, relay.Shutdown(shutdownCtx))
}

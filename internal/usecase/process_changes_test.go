package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
	"github.com/V4T54L/winloss/internal/domain/mocks"
)

func testEvents() []domain.ChangeEvent {
	return []domain.ChangeEvent{
		{ID: "e1", Collection: CollectionPrompts, Action: domain.ActionCreate, EntityID: "p1", StreamMessageID: "1-0"},
		{ID: "e2", Collection: CollectionUsers, Action: domain.ActionDelete, EntityID: "u1", StreamMessageID: "2-0"},
	}
}

func newProcessor(feed *mocks.MockChangeFeed, sink *mocks.MockChangeSink, maxRetries int) *ProcessChangesUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProcessChangesUseCase(feed, sink, nil, logger, ProcessOptions{
		Group:        "auditors",
		Consumer:     "c1",
		BatchSize:    10,
		MaxRetries:   maxRetries,
		RetryBackoff: time.Millisecond,
	})
}

func TestProcessChangesUseCase_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful processing", func(t *testing.T) {
		feed := &mocks.MockChangeFeed{ReadBatchResult: testEvents()}
		sink := &mocks.MockChangeSink{}
		uc := newProcessor(feed, sink, 3)

		n, err := uc.ProcessBatch(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 processed events, got %d", n)
		}
		if len(sink.Written) != 2 {
			t.Errorf("expected 2 events written, got %d", len(sink.Written))
		}
		if len(feed.AckedMessageIDs) != 2 || feed.AckedMessageIDs[0] != "1-0" {
			t.Errorf("expected stream message ids acknowledged, got %v", feed.AckedMessageIDs)
		}
		if len(feed.DLQEvents) != 0 {
			t.Error("expected nothing in the DLQ")
		}
	})

	t.Run("Empty batch", func(t *testing.T) {
		feed := &mocks.MockChangeFeed{}
		sink := &mocks.MockChangeSink{}
		uc := newProcessor(feed, sink, 3)

		n, err := uc.ProcessBatch(ctx)
		if err != nil || n != 0 {
			t.Fatalf("expected (0, nil), got (%d, %v)", n, err)
		}
		if sink.Attempts != 0 {
			t.Error("sink must not be called for an empty batch")
		}
	})

	t.Run("Sink keeps failing moves batch to DLQ", func(t *testing.T) {
		feed := &mocks.MockChangeFeed{ReadBatchResult: testEvents()}
		sink := &mocks.MockChangeSink{WriteErr: errors.New("db down")}
		uc := newProcessor(feed, sink, 3)

		_, err := uc.ProcessBatch(ctx)
		if err == nil {
			t.Fatal("expected the sink error")
		}
		if sink.Attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", sink.Attempts)
		}
		if len(feed.DLQEvents) != 2 {
			t.Errorf("expected 2 events in DLQ, got %d", len(feed.DLQEvents))
		}
		if len(feed.AckedMessageIDs) != 2 {
			t.Errorf("expected DLQ'd events to be acknowledged, got %v", feed.AckedMessageIDs)
		}
	})

	t.Run("Read failure", func(t *testing.T) {
		feed := &mocks.MockChangeFeed{ReadErr: errors.New("redis down")}
		uc := newProcessor(feed, &mocks.MockChangeSink{}, 3)

		if _, err := uc.ProcessBatch(ctx); err == nil {
			t.Fatal("expected read error")
		}
	})

	t.Run("DLQ failure leaves batch unacknowledged", func(t *testing.T) {
		feed := &mocks.MockChangeFeed{ReadBatchResult: testEvents(), DLQErr: errors.New("dlq down")}
		sink := &mocks.MockChangeSink{WriteErr: errors.New("db down")}
		uc := newProcessor(feed, sink, 1)

		if _, err := uc.ProcessBatch(ctx); err == nil {
			t.Fatal("expected DLQ error")
		}
		if len(feed.AckedMessageIDs) != 0 {
			t.Errorf("expected no acknowledgements, got %v", feed.AckedMessageIDs)
		}
	})
}

func TestProcessChangesUseCase_RunStopsOnCancel(t *testing.T) {
	feed := &mocks.MockChangeFeed{}
	uc := newProcessor(feed, &mocks.MockChangeSink{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		uc.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

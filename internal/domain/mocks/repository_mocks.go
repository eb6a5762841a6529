package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

// MockChangeFeed is a mock implementation of domain.ChangeFeed for testing.
type MockChangeFeed struct {
	mu              sync.Mutex
	Published       []domain.ChangeEvent
	AckedMessageIDs []string
	DLQEvents       []domain.ChangeEvent
	ReadBatchResult []domain.ChangeEvent
	PublishErr      error
	PublishCtxErr   error // ctx.Err() seen by the last Publish
	ReadErr         error
	AckErr          error
	DLQErr          error
}

func (m *MockChangeFeed) Publish(ctx context.Context, event domain.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCtxErr = ctx.Err()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Published = append(m.Published, event)
	return nil
}

func (m *MockChangeFeed) ReadBatch(ctx context.Context, group, consumer string, count int) ([]domain.ChangeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return m.ReadBatchResult, nil
}

func (m *MockChangeFeed) Acknowledge(ctx context.Context, group string, messageIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AckErr != nil {
		return m.AckErr
	}
	m.AckedMessageIDs = append(m.AckedMessageIDs, messageIDs...)
	return nil
}

func (m *MockChangeFeed) MoveToDLQ(ctx context.Context, events []domain.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DLQErr != nil {
		return m.DLQErr
	}
	m.DLQEvents = append(m.DLQEvents, events...)
	return nil
}

// MockChangeSink is a mock implementation of domain.ChangeSink for testing.
type MockChangeSink struct {
	mu       sync.Mutex
	Written  []domain.ChangeEvent
	Attempts int
	WriteErr error
}

func (m *MockChangeSink) WriteBatch(ctx context.Context, events []domain.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attempts++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Written = append(m.Written, events...)
	return nil
}

// ErrStoreDown is returned by FailingKVStore for every call.
var ErrStoreDown = errors.New("kv store unavailable")

// FailingKVStore is a domain.KVStore whose every operation fails.
type FailingKVStore struct{}

func (FailingKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, ErrStoreDown
}

func (FailingKVStore) Put(ctx context.Context, key string, value []byte) error {
	return ErrStoreDown
}

func (FailingKVStore) Delete(ctx context.Context, key string) (bool, error) {
	return false, ErrStoreDown
}

func (FailingKVStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	return nil, ErrStoreDown
}

func (FailingKVStore) Close() error { return nil }

// MockStreamAdminRepository is a mock implementation of domain.StreamAdminRepository.
type MockStreamAdminRepository struct {
	Groups      []domain.ConsumerGroupInfo
	Claimed     []domain.ChangeEvent
	AckedIDs    []string
	TrimmedTo   int64
	LastStartID string
	LastCount   int64
	LastMinIdle time.Duration
	Err         error
}

func (m *MockStreamAdminRepository) GetGroupInfo(ctx context.Context, stream string) ([]domain.ConsumerGroupInfo, error) {
	return m.Groups, m.Err
}

func (m *MockStreamAdminRepository) GetConsumerInfo(ctx context.Context, stream, group string) ([]domain.ConsumerInfo, error) {
	return []domain.ConsumerInfo{}, m.Err
}

func (m *MockStreamAdminRepository) GetPendingSummary(ctx context.Context, stream, group string) (*domain.PendingMessageSummary, error) {
	return &domain.PendingMessageSummary{}, m.Err
}

func (m *MockStreamAdminRepository) GetPendingMessages(ctx context.Context, stream, group, consumer, startID string, count int64) ([]domain.PendingMessageDetail, error) {
	m.LastStartID, m.LastCount = startID, count
	return []domain.PendingMessageDetail{}, m.Err
}

func (m *MockStreamAdminRepository) ClaimMessages(ctx context.Context, stream, group, consumer string, minIdleTime time.Duration, messageIDs []string) ([]domain.ChangeEvent, error) {
	m.LastMinIdle = minIdleTime
	return m.Claimed, m.Err
}

func (m *MockStreamAdminRepository) AcknowledgeMessages(ctx context.Context, stream, group string, messageIDs ...string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.AckedIDs = append(m.AckedIDs, messageIDs...)
	return int64(len(messageIDs)), nil
}

func (m *MockStreamAdminRepository) TrimStream(ctx context.Context, stream string, maxLen int64) (int64, error) {
	m.TrimmedTo = maxLen
	return 0, m.Err
}

// MockNotifier records every change notice it receives.
type MockNotifier struct {
	mu      sync.Mutex
	Notices []domain.ChangeNotice
}

func (m *MockNotifier) Notify(notice domain.ChangeNotice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notices = append(m.Notices, notice)
}

package domain

// ConsumerGroupInfo describes a group of audit consumers on a change stream.
// Lag is the number of entries not yet delivered to the group.
type ConsumerGroupInfo struct {
	Name            string `json:"name"`
	Consumers       int64  `json:"consumers"`
	Pending         int64  `json:"pending"`
	Lag             int64  `json:"lag"`
	EntriesRead     int64  `json:"entries_read"`
	LastDeliveredID string `json:"last_delivered_id"`
}

type ConsumerInfo struct {
	Name    string `json:"name"`
	Pending int64  `json:"pending"`
	IdleMs  int64  `json:"idle_ms"`
}

// PendingMessageSummary counts change events delivered but not yet acknowledged.
type PendingMessageSummary struct {
	Total          int64            `json:"total"`
	FirstMessageID string           `json:"first_message_id,omitempty"`
	LastMessageID  string           `json:"last_message_id,omitempty"`
	ConsumerTotals map[string]int64 `json:"consumer_totals,omitempty"`
}

// PendingMessageDetail is one unacknowledged change event. A high
// RetryCount usually means the audit sink keeps rejecting it.
type PendingMessageDetail struct {
	ID         string `json:"id"`
	Consumer   string `json:"consumer"`
	IdleMs     int64  `json:"idle_ms"`
	RetryCount int64  `json:"retry_count"`
}

package model

import "time"

// DeliveryState is the lifecycle position of a delivery task.
type DeliveryState string

var (
	DeliveryPending    DeliveryState = "pending"
	DeliveryAttempting DeliveryState = "attempting"
	DeliveryDelivered  DeliveryState = "delivered"
	DeliveryExpired    DeliveryState = "expired"
	DeliveryDropped    DeliveryState = "dropped"
)

// Terminal reports whether no further transitions are possible.
func (s DeliveryState) Terminal() bool {
	switch s {
	case DeliveryDelivered, DeliveryExpired, DeliveryDropped:
		return true
	default:
		return false
	}
}

// DeliveryTask is one retryable notification for a matched (transaction, channel) pair.
type DeliveryTask struct {
	ID          string        `json:"id"`
	Channel     string        `json:"channel"`
	Descriptor  string        `json:"output"`
	Transaction Transaction   `json:"transaction"`
	Attempts    int           `json:"attempts"`
	State       DeliveryState `json:"state"`
	LastError   string        `json:"last_error,omitempty"`
	LastStatus  int           `json:"last_status,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// DeliveryEvent is an audit record of a single task transition.
type DeliveryEvent struct {
	TaskID     string
	TxID       string
	Channel    string
	Descriptor string
	State      DeliveryState
	Attempt    int
	StatusCode int
	Error      string
	OccurredAt time.Time
}

// NewDeliveryEvent snapshots the task's current state.
func NewDeliveryEvent(task DeliveryTask) DeliveryEvent {
	return DeliveryEvent{
		TaskID:     task.ID,
		TxID:       task.Transaction.Hash,
		Channel:    task.Channel,
		Descriptor: task.Descriptor,
		State:      task.State,
		Attempt:    task.Attempts,
		StatusCode: task.LastStatus,
		Error:      task.LastError,
		OccurredAt: task.UpdatedAt,
	}
}

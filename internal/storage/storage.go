package storage

import "time"

// Settings is the reply configuration captured with an interaction.
// Feedback records carry empty settings, serialized as {}.
type Settings struct {
	Tone         string `json:"tone,omitempty" yaml:"tone,omitempty"`
	Industry     string `json:"industry,omitempty" yaml:"industry,omitempty"`
	AddSignature *bool  `json:"add_signature,omitempty" yaml:"add_signature,omitempty"`
}

// Record is one logged interaction: a customer message, the generated reply and,
// for feedback, the human replacement for that reply. Records are never rewritten.
type Record struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	CustomerMessage string    `json:"customer_message"`
	AIReply         string    `json:"ai_reply"`
	Settings        Settings  `json:"settings"`
	UserEdit        *string   `json:"user_edit"`
	Edited          bool      `json:"edited"`
}

// Recorder abstracts persistence of interaction records.
// LoadInteractions should return records in chronological order.
// AppendInteraction must write a record as a single unit.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(rec Record) error
	LoadInteractions() ([]Record, error)
}

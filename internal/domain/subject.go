package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Subject is a named container of topics belonging to one user. The topic
// list is embedded in the subject document as an ordered sequence; topics
// have no identity of their own and are addressed by position.
type Subject struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Topics    []Topic
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Topic is a single trackable unit of study content.
type Topic struct {
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTopic creates an unfinished topic with the given name.
func NewTopic(name string, now time.Time) Topic {
	return Topic{Name: name, Done: false, CreatedAt: now}
}

// AppendTopic returns a new sequence with one unfinished topic appended.
// The input slice is never mutated; every mutation of a topic list is a
// whole-sequence replace at the store layer.
func AppendTopic(topics []Topic, name string, now time.Time) []Topic {
	out := make([]Topic, len(topics), len(topics)+1)
	copy(out, topics)
	return append(out, NewTopic(name, now))
}

// ToggleTopicAt returns a new sequence with the done flag flipped at index.
// An out-of-range index returns the input unchanged and ok=false; the caller
// treats that as a no-op (the topic may have been removed by a concurrent
// writer between snapshot and action).
func ToggleTopicAt(topics []Topic, index int) ([]Topic, bool) {
	if index < 0 || index >= len(topics) {
		return topics, false
	}
	out := make([]Topic, len(topics))
	copy(out, topics)
	out[index].Done = !out[index].Done
	return out, true
}

// RemoveTopicAt returns a new sequence without the element at index,
// preserving the relative order of all other elements. Out-of-range indices
// are reported via ok=false, same contract as ToggleTopicAt.
func RemoveTopicAt(topics []Topic, index int) ([]Topic, bool) {
	if index < 0 || index >= len(topics) {
		return topics, false
	}
	out := make([]Topic, 0, len(topics)-1)
	out = append(out, topics[:index]...)
	out = append(out, topics[index+1:]...)
	return out, true
}

// Progress is the derived, non-stored completion state of one subject.
type Progress struct {
	Completed int
	Total     int
	Percent   int
}

// TopicProgress derives completion counts for a topic sequence.
// Percent is 0 for an empty sequence, otherwise round(100*completed/total).
func TopicProgress(topics []Topic) Progress {
	p := Progress{Total: len(topics)}
	for _, t := range topics {
		if t.Done {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	return p
}

// Progress derives the subject's completion state.
func (s *Subject) Progress() Progress {
	return TopicProgress(s.Topics)
}

// Package dedupe merges candidate places reported under several categories
// into one entry per identity.
//
// Merge policy:
//   - the first record for an identity fixes its position;
//   - tags are unioned;
//   - every scalar field (name, location, rating, rating count, open-now,
//     price level, vicinity) is overwritten by the later record, including
//     when the later record leaves it unset.
package dedupe

import (
	"github.com/okian/vibefeed/internal/domain/model"
)

const defaultMaxSize = 80

// Merger accumulates candidates in insertion order. It is not safe for
// concurrent use; callers merge after all fetches have completed.
type Merger struct {
	maxSize int
	index   map[string]int
	entries []model.Candidate
}

// New creates an empty Merger.
func New(opts ...Option) *Merger {
	m := &Merger{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(m)
	}
	m.index = make(map[string]int)
	return m
}

// Add merges one batch of records. Records without an identity are skipped.
func (m *Merger) Add(batch ...model.Candidate) {
	for _, c := range batch {
		if c.ID == "" {
			continue
		}
		if i, ok := m.index[c.ID]; ok {
			m.entries[i] = merge(m.entries[i], c)
			continue
		}
		c.Tags = model.UnionTags(nil, c.Tags)
		m.index[c.ID] = len(m.entries)
		m.entries = append(m.entries, c)
	}
}

// Len returns the number of distinct identities seen so far.
func (m *Merger) Len() int {
	return len(m.entries)
}

// Result drops entries without finite coordinates and truncates the rest to
// the configured maximum, keeping insertion order.
func (m *Merger) Result() []model.Candidate {
	out := make([]model.Candidate, 0, len(m.entries))
	for _, c := range m.entries {
		if !c.Location.IsFinite() {
			continue
		}
		out = append(out, c)
		if m.maxSize > 0 && len(out) == m.maxSize {
			break
		}
	}
	return out
}

// Merge is a convenience over New, Add and Result for ordered batches.
func Merge(batches [][]model.Candidate, opts ...Option) []model.Candidate {
	m := New(opts...)
	for _, b := range batches {
		m.Add(b...)
	}
	return m.Result()
}

func merge(prev, next model.Candidate) model.Candidate {
	next.Tags = model.UnionTags(prev.Tags, next.Tags)
	return next
}

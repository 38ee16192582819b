package cache

import "eu5advisor/pkg/advisortypes"

// Default capacities for the two process caches.
const (
	DefaultKnowledgeCapacity = 256
	DefaultSearchCapacity    = 1024
)

// Caches groups the knowledge and search caches. Each has its own capacity and counters.
type Caches struct {
	Knowledge *LRU[string, advisortypes.KnowledgeResult]
	Search    *LRU[string, []advisortypes.SearchResult]
}

// NewCaches creates both caches. Non-positive capacities fall back to the defaults.
func NewCaches(knowledgeCapacity, searchCapacity int) *Caches {
	if knowledgeCapacity <= 0 {
		knowledgeCapacity = DefaultKnowledgeCapacity
	}
	if searchCapacity <= 0 {
		searchCapacity = DefaultSearchCapacity
	}
	return &Caches{
		Knowledge: New[string, advisortypes.KnowledgeResult](knowledgeCapacity),
		Search:    New[string, []advisortypes.SearchResult](searchCapacity),
	}
}

// ClearAll clears both caches and their counters.
func (c *Caches) ClearAll() {
	c.Knowledge.Clear()
	c.Search.Clear()
}

package graph

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AppearanceCounter counts mentions per canonical name. Counts only grow and
// iteration follows the order in which names were first counted.
type AppearanceCounter struct {
	counts *orderedmap.OrderedMap[string, int]
	total  int
}

func NewAppearanceCounter() *AppearanceCounter {
	return &AppearanceCounter{
		counts: orderedmap.New[string, int](),
	}
}

// Increment adds one mention of name and reports whether it was the first.
func (c *AppearanceCounter) Increment(name string) bool {
	count, present := c.counts.Get(name)
	c.counts.Set(name, count+1)
	c.total++
	return !present
}

func (c *AppearanceCounter) Get(name string) int {
	count, _ := c.counts.Get(name)
	return count
}

// Len returns the number of distinct names.
func (c *AppearanceCounter) Len() int {
	return c.counts.Len()
}

// Total returns the number of mentions across all names.
func (c *AppearanceCounter) Total() int {
	return c.total
}

// Each calls fn for every name in first-seen order.
func (c *AppearanceCounter) Each(fn func(name string, count int)) {
	for pair := c.counts.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

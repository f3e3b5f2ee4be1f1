package news

import "sync"

// memo is the process-local topic cache. It only short-circuits repeated
// fetches for the same topic within one run; the on-disk freshness store has
// its own, separate invalidation rules.
type memo struct {
	mu sync.Mutex
	m  map[string][]Article
}

func newMemo() *memo {
	return &memo{m: make(map[string][]Article)}
}

func (c *memo) get(topic string) ([]Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	articles, ok := c.m[topic]
	return articles, ok
}

func (c *memo) put(topic string, articles []Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[topic] = articles
}

package dq

import "sync"

// Catalog owns an ordered list of rules. Rules are evaluated in the order
// they were added; that insertion order is the engine's only ordering
// guarantee. A catalog is safe for concurrent use, so a reload can swap
// rules while validation runs read them.
type Catalog struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Add appends a rule to the catalog, defaulting an unset severity to ERROR
func (c *Catalog) Add(rule Rule) {
	if rule.Severity == "" {
		rule.Severity = SeverityError
	}
	c.mu.Lock()
	c.rules = append(c.rules, rule)
	c.mu.Unlock()
}

// AddRules appends multiple rules in order
func (c *Catalog) AddRules(rules ...Rule) {
	for _, rule := range rules {
		c.Add(rule)
	}
}

// Rules returns a copy of the catalog's rules in insertion order
func (c *Catalog) Rules() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Rule(nil), c.rules...)
}

// Len returns the number of rules in the catalog
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules)
}

// Reset removes all rules. Loads are cumulative, so callers that want a
// fresh rule set reset before loading.
func (c *Catalog) Reset() {
	c.mu.Lock()
	c.rules = nil
	c.mu.Unlock()
}

// Replace atomically swaps the catalog's rules for the given set, applying
// the same severity defaulting as Add.
func (c *Catalog) Replace(rules []Rule) {
	next := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Severity == "" {
			rule.Severity = SeverityError
		}
		next = append(next, rule)
	}
	c.mu.Lock()
	c.rules = next
	c.mu.Unlock()
}

// Package cache holds per-instance lookups of reference data that the pipeline reads repeatedly.
package cache

import (
	"sync"

	"github.com/sthwalo/acc-sub003/internal/model"
	"github.com/sthwalo/acc-sub003/internal/service"
)

var _ service.CacheInvalidator = (*Cache)(nil)

// AllCompanies invalidates every company's entries.
const AllCompanies int64 = 0

// Cache maps account codes to account IDs and companies to their classification rules.
// It is safe for concurrent use and must be invalidated whenever accounts or rules change.
type Cache struct {
	accounts map[int64]map[string]int64
	rules    map[int64][]model.ClassificationRule
	mu       sync.RWMutex
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		accounts: make(map[int64]map[string]int64),
		rules:    make(map[int64][]model.ClassificationRule),
	}
}

// AccountID returns the cached ID for an account code.
func (c *Cache) AccountID(companyID int64, code string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.accounts[companyID][code]
	return id, ok
}

// SetAccountID records the ID of an account code.
func (c *Cache) SetAccountID(companyID int64, code string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	codes, ok := c.accounts[companyID]
	if !ok {
		codes = make(map[string]int64)
		c.accounts[companyID] = codes
	}
	codes[code] = id
}

// Rules returns a copy of the cached rules for a company.
func (c *Cache) Rules(companyID int64) ([]model.ClassificationRule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rules, ok := c.rules[companyID]
	if !ok {
		return nil, false
	}
	out := make([]model.ClassificationRule, len(rules))
	copy(out, rules)
	return out, true
}

// SetRules stores a company's rule set.
func (c *Cache) SetRules(companyID int64, rules []model.ClassificationRule) {
	stored := make([]model.ClassificationRule, len(rules))
	copy(stored, rules)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules[companyID] = stored
}

// InvalidateRules drops cached rules for a company, or for every company given AllCompanies.
func (c *Cache) InvalidateRules(companyID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if companyID == AllCompanies {
		c.rules = make(map[int64][]model.ClassificationRule)
		return
	}
	delete(c.rules, companyID)
}

// InvalidateAccounts drops cached account IDs for a company, or for every company given AllCompanies.
func (c *Cache) InvalidateAccounts(companyID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if companyID == AllCompanies {
		c.accounts = make(map[int64]map[string]int64)
		return
	}
	delete(c.accounts, companyID)
}

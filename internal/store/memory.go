package store

import (
	"strings"
	"sync"
	"time"

	"github.com/zapstore-app/zapstore/internal/models"
)

// InMemoryStore is a mutex-guarded in-memory Store for tests and development.
type InMemoryStore struct {
	mu         sync.RWMutex
	admins     map[string]models.Admin
	sessions   map[string]models.Session
	categories map[int64]models.Category
	customers  map[int64]models.Customer
	nextCatID  int64
	nextCustID int64
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		admins:     make(map[string]models.Admin),
		sessions:   make(map[string]models.Session),
		categories: make(map[int64]models.Category),
		customers:  make(map[int64]models.Customer),
	}
}

func (s *InMemoryStore) UpsertAdmin(remoteID string, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[remoteID]
	if !ok {
		a = models.Admin{RemoteID: remoteID, CreatedAt: time.Now()}
	}
	a.OwnerID = ownerID
	s.admins[remoteID] = a
	return nil
}

func (s *InMemoryStore) GetAdmin(remoteID string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[remoteID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *InMemoryStore) GetSession(remoteID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[remoteID]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *InMemoryStore) UpsertSession(remoteID string, ownerID int64) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	sess, ok := s.sessions[remoteID]
	if !ok {
		sess = models.Session{RemoteID: remoteID, CreatedAt: now}
	}
	sess.OwnerID = ownerID
	sess.LastInteractionAt = now
	s.sessions[remoteID] = sess
	return &sess, nil
}

func (s *InMemoryStore) TouchSession(remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[remoteID]
	if !ok {
		return nil
	}
	sess.LastInteractionAt = time.Now()
	s.sessions[remoteID] = sess
	return nil
}

func (s *InMemoryStore) SetSessionFlow(remoteID string, flow *models.FlowContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[remoteID]
	if !ok {
		return nil
	}
	if flow != nil {
		cp := *flow
		sess.Flow = &cp
	} else {
		sess.Flow = nil
	}
	sess.LastInteractionAt = time.Now()
	s.sessions[remoteID] = sess
	return nil
}

func (s *InMemoryStore) DeleteSession(remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, remoteID)
	return nil
}

func (s *InMemoryStore) ListSessions() ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

// AddCategory inserts a category and returns its assigned id. Not part of the
// Store interface; used by tests and development seeding.
func (s *InMemoryStore) AddCategory(c models.Category) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCatID++
	c.ID = s.nextCatID
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.categories[c.ID] = c
	return c.ID
}

// AddCustomer inserts a customer and returns its assigned id. Not part of the
// Store interface; used by tests and development seeding.
func (s *InMemoryStore) AddCustomer(c models.Customer) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCustID++
	c.ID = s.nextCustID
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.customers[c.ID] = c
	return c.ID
}

// RemoveCategory deletes a category. Used by tests to simulate a record
// disappearing mid-flow.
func (s *InMemoryStore) RemoveCategory(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
}

func (s *InMemoryStore) ListCategories(ownerID int64) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0)
	// Iterate in id order so pagination is stable.
	for id := int64(1); id <= s.nextCatID; id++ {
		if c, ok := s.categories[id]; ok && c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetCategory(id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *InMemoryStore) mutateCategory(id int64, fn func(*models.Category)) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	fn(&c)
	c.UpdatedAt = time.Now()
	s.categories[id] = c
	return &c, nil
}

func (s *InMemoryStore) RenameCategory(id int64, name string) (*models.Category, error) {
	return s.mutateCategory(id, func(c *models.Category) { c.Name = name })
}

func (s *InMemoryStore) SetCategoryPrice(id int64, price float64) (*models.Category, error) {
	return s.mutateCategory(id, func(c *models.Category) { c.Price = price })
}

func (s *InMemoryStore) SetCategorySKU(id int64, sku string) (*models.Category, error) {
	return s.mutateCategory(id, func(c *models.Category) { c.SKU = sku })
}

func (s *InMemoryStore) GetCustomer(id int64) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *InMemoryStore) FindCustomerByPhone(ownerID int64, digits string) (*models.Customer, error) {
	if digits == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := int64(1); id <= s.nextCustID; id++ {
		c, ok := s.customers[id]
		if !ok || c.OwnerID != ownerID {
			continue
		}
		if c.Phone == digits || strings.HasSuffix(c.Phone, digits) {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) mutateCustomer(id int64, fn func(*models.Customer)) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	fn(&c)
	c.UpdatedAt = time.Now()
	s.customers[id] = c
	return &c, nil
}

func (s *InMemoryStore) SetCustomerName(id int64, name string) (*models.Customer, error) {
	return s.mutateCustomer(id, func(c *models.Customer) { c.Name = name })
}

func (s *InMemoryStore) AdjustCustomerBalance(id int64, delta float64) (*models.Customer, error) {
	return s.mutateCustomer(id, func(c *models.Customer) {
		c.Balance += delta
		if c.Balance < 0 {
			c.Balance = 0
		}
	})
}

func (s *InMemoryStore) ToggleCustomerBlocked(id int64) (*models.Customer, error) {
	return s.mutateCustomer(id, func(c *models.Customer) { c.Blocked = !c.Blocked })
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}

package accounts

import (
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ahmedsamir-dev/netcafes/app/models"
	"github.com/ahmedsamir-dev/netcafes/app/repository"
)

// In-memory repository fakes. They mirror the GORM implementations closely
// enough for service tests: misses return gorm.ErrRecordNotFound, reads hand
// out copies, and Consume/RegisterFailedLogin keep the same atomicity
// contract under the mutex.

type fakeUserRepo struct {
	mu        sync.Mutex
	nextID    uint
	users     map[uint]*models.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByName(name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Name == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByNameOrEmail(input string) (*models.User, error) {
	if u, err := r.GetByName(input); err == nil {
		return u, nil
	}
	return r.GetByEmail(input)
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(offset, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for id := uint(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeUserRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Search(query string, offset, limit int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matches []models.User
	q := strings.ToLower(query)
	for id := uint(1); id <= r.nextID; id++ {
		u, ok := r.users[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(u.Email, q) {
			matches = append(matches, *u)
		}
	}
	total := int64(len(matches))
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], total, nil
}

func (r *fakeUserRepo) RegisterFailedLogin(id uint, maxAttempts int, lockUntil time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	u.FailedLoginCount++
	if u.FailedLoginCount >= maxAttempts {
		until := lockUntil
		u.LockedUntil = &until
	}
	return u.FailedLoginCount, nil
}

func (r *fakeUserRepo) MarkLoginSuccess(id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.FailedLoginCount = 0
	stamp := at
	u.LastLoginAt = &stamp
	return nil
}

func (r *fakeUserRepo) SetLockout(id uint, until *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if until == nil {
		u.LockedUntil = nil
		u.FailedLoginCount = 0
		return nil
	}
	cp := *until
	u.LockedUntil = &cp
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	tokens map[uint]*models.AuthToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[uint]*models.AuthToken{}}
}

func (r *fakeTokenRepo) Create(token *models.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	token.ID = r.nextID
	cp := *token
	r.tokens[token.ID] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByHash(hash string) (*models.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) Consume(id uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.ConsumedAt != nil {
		return false, nil
	}
	stamp := at
	t.ConsumedAt = &stamp
	return true, nil
}

func (r *fakeTokenRepo) DeleteExpired(before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

// expire backdates a stored token so expiry paths can be exercised without
// sleeping.
func (r *fakeTokenRepo) expire(raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hash := models.HashTokenValue(raw)
	for _, t := range r.tokens {
		if t.TokenHash == hash {
			t.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

type fakeProviderRepo struct {
	mu     sync.Mutex
	nextID uint
	links  map[string]*models.ProviderAccount
}

func newFakeProviderRepo() *fakeProviderRepo {
	return &fakeProviderRepo{links: map[string]*models.ProviderAccount{}}
}

func providerKey(provider, providerUserID string) string {
	return provider + "/" + providerUserID
}

func (r *fakeProviderRepo) Get(provider, providerUserID string) (*models.ProviderAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pa, ok := r.links[providerKey(provider, providerUserID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *pa
	return &cp, nil
}

func (r *fakeProviderRepo) Create(pa *models.ProviderAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	pa.ID = r.nextID
	cp := *pa
	r.links[providerKey(pa.Provider, pa.ProviderUserID)] = &cp
	return nil
}

func (r *fakeProviderRepo) Update(pa *models.ProviderAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := providerKey(pa.Provider, pa.ProviderUserID)
	if _, ok := r.links[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *pa
	r.links[key] = &cp
	return nil
}

func (r *fakeProviderRepo) ListByUser(userID uint) ([]models.ProviderAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ProviderAccount
	for _, pa := range r.links {
		if pa.UserID == userID {
			out = append(out, *pa)
		}
	}
	return out, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

// lastToken extracts the raw token value from the link embedded in the most
// recent mail body.
func (m *fakeMailer) lastToken() string {
	body := m.last().Body
	idx := strings.Index(body, "token=")
	if idx < 0 {
		return ""
	}
	rest := body[idx+len("token="):]
	if end := strings.IndexAny(rest, `"&<`); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

type testEnv struct {
	svc    *Service
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	links  *fakeProviderRepo
	mailer *fakeMailer
}

func newTestEnv() *testEnv {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	links := newFakeProviderRepo()
	mailer := &fakeMailer{}

	cfg := Config{
		MaxFailedAttempts: 5,
		LockoutDuration:   2 * time.Minute,
		ConfirmTokenTTL:   24 * time.Hour,
		ResetTokenTTL:     24 * time.Hour,
		BaseURL:           "http://localhost:4000",
	}
	repos := &repository.Repositories{
		User:     users,
		Token:    tokens,
		Provider: links,
	}
	return &testEnv{
		svc:    NewService(repos, mailer, cfg),
		users:  users,
		tokens: tokens,
		links:  links,
		mailer: mailer,
	}
}

package userrepo

import (
	"context"
	"sync"

	"github.com/chingu-voyages/demographics-api/internal/domain"
	"github.com/chingu-voyages/demographics-api/internal/ports/out/userrepo"
)

// Repo is an in-memory implementation of userrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID      map[domain.UserID]domain.User
	idByEmail map[string]domain.UserID
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[domain.UserID]domain.User),
		idByEmail: make(map[string]domain.UserID),
	}
}

func (r *Repo) Create(ctx context.Context, u domain.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.idByEmail[u.Email]; ok {
		return userrepo.ErrEmailTaken
	}
	r.byID[u.ID] = cloneUser(u)
	r.idByEmail[u.Email] = u.ID
	return nil
}

func (r *Repo) Update(ctx context.Context, u domain.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[u.ID]
	if !ok {
		return userrepo.ErrNotFound
	}
	if existing.Email != u.Email {
		if owner, taken := r.idByEmail[u.Email]; taken && owner != u.ID {
			return userrepo.ErrEmailTaken
		}
		delete(r.idByEmail, existing.Email)
		r.idByEmail[u.Email] = u.ID
	}
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, userrepo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEmail[email]
	if !ok {
		return domain.User{}, userrepo.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func cloneUser(u domain.User) domain.User {
	out := u
	out.Image = cloneStringPtr(u.Image)
	out.GoogleID = cloneStringPtr(u.GoogleID)
	out.PasswordHash = cloneStringPtr(u.PasswordHash)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

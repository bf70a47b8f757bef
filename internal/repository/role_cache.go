package repository

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"employee-records/internal/model"
)

const roleCacheSize = 64

type roleSource interface {
	List(ctx context.Context) ([]model.Role, error)
	FindByID(ctx context.Context, id int64) (model.Role, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
}

// CachedRoles is a read-through cache in front of the roles table. Roles are
// seeded by migrations and never edited at runtime. Lookup failures are not
// cached.
type CachedRoles struct {
	source roleSource
	byID   *lru.LRU[int64, model.Role]
	byName *lru.LRU[string, model.Role]
}

func NewCachedRoles(source roleSource, ttl time.Duration) *CachedRoles {
	return &CachedRoles{
		source: source,
		byID:   lru.NewLRU[int64, model.Role](roleCacheSize, nil, ttl),
		byName: lru.NewLRU[string, model.Role](roleCacheSize, nil, ttl),
	}
}

func (c *CachedRoles) List(ctx context.Context) ([]model.Role, error) {
	roles, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		c.remember(role)
	}
	return roles, nil
}

func (c *CachedRoles) FindByID(ctx context.Context, id int64) (model.Role, error) {
	if role, ok := c.byID.Get(id); ok {
		return role, nil
	}

	role, err := c.source.FindByID(ctx, id)
	if err != nil {
		return model.Role{}, err
	}
	c.remember(role)
	return role, nil
}

func (c *CachedRoles) FindByName(ctx context.Context, name string) (model.Role, error) {
	if role, ok := c.byName.Get(strings.ToLower(name)); ok {
		return role, nil
	}

	role, err := c.source.FindByName(ctx, name)
	if err != nil {
		return model.Role{}, err
	}
	c.remember(role)
	return role, nil
}

func (c *CachedRoles) remember(role model.Role) {
	c.byID.Add(role.ID, role)
	c.byName.Add(strings.ToLower(role.Name), role)
}

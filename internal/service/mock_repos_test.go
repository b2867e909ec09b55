package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	pkgerrors "climb-planner/backend/pkg/errors"
	"climb-planner/backend/pkg/redis"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id 或 "email:"+email
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users["email:"+user.Email]; ok {
		return repository.ErrEmailTaken
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	user.CreatedAt = time.Now().UTC()
	m.users[user.UserID] = user
	m.users["email:"+user.Email] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := m.users["email:"+email]; ok {
		return u, nil
	}
	return nil, pkgerrors.ErrNotFound
}

// ── Mock BlockRepository ──

type mockBlockRepo struct {
	blocks map[string]*model.TrainingBlock
	seq    int
	err    error // 非 nil 时所有写操作返回该错误
}

func newMockBlockRepo() *mockBlockRepo {
	return &mockBlockRepo{blocks: make(map[string]*model.TrainingBlock)}
}

func (m *mockBlockRepo) owned(userID, blockID string) (*model.TrainingBlock, bool) {
	b, ok := m.blocks[blockID]
	if !ok || b.UserID == nil || *b.UserID != userID {
		return nil, false
	}
	return b, true
}

func (m *mockBlockRepo) Create(_ context.Context, block *model.TrainingBlock) error {
	if m.err != nil {
		return m.err
	}
	if block.BlockID == "" {
		m.seq++
		block.BlockID = fmt.Sprintf("block-%d", m.seq)
	}
	m.blocks[block.BlockID] = block
	return nil
}

func (m *mockBlockRepo) GetOwned(_ context.Context, userID, blockID string) (*model.TrainingBlock, error) {
	if b, ok := m.owned(userID, blockID); ok {
		return b, nil
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *mockBlockRepo) ListByUser(_ context.Context, userID string, _ repository.ListFilter) ([]model.TrainingBlock, error) {
	var result []model.TrainingBlock
	for _, b := range m.blocks {
		if b.UserID != nil && *b.UserID == userID {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBlockRepo) CountOwned(_ context.Context, userID string, blockIDs []string) (int64, error) {
	var n int64
	for _, id := range blockIDs {
		if _, ok := m.owned(userID, id); ok {
			n++
		}
	}
	return n, nil
}

func (m *mockBlockRepo) UpdateOwned(_ context.Context, userID string, block *model.TrainingBlock) error {
	if m.err != nil {
		return m.err
	}
	b, ok := m.owned(userID, block.BlockID)
	if !ok {
		return pkgerrors.ErrNotFound
	}
	b.Title, b.Description, b.Tags, b.IsFavorited = block.Title, block.Description, block.Tags, block.IsFavorited
	return nil
}

func (m *mockBlockRepo) DeleteOwned(_ context.Context, userID, blockID string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.owned(userID, blockID); !ok {
		return pkgerrors.ErrNotFound
	}
	delete(m.blocks, blockID)
	return nil
}

func (m *mockBlockRepo) ToggleFavorite(_ context.Context, userID, blockID string) (bool, error) {
	b, ok := m.owned(userID, blockID)
	if !ok {
		return false, pkgerrors.ErrNotFound
	}
	b.IsFavorited = !b.IsFavorited
	return b.IsFavorited, nil
}

func (m *mockBlockRepo) DeleteUnlinkedTemplates(_ context.Context, _ []string) (int64, error) {
	return 0, nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── Mock ResourceCache ──

type mockCache struct {
	data    map[string][]byte
	gets    int
	sets    int
	deletes int
	err     error // 非 nil 时模拟 Redis 故障
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	m.gets++
	if m.err != nil {
		return m.err
	}
	raw, ok := m.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.sets++
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	m.deletes++
	if m.err != nil {
		return m.err
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// ── 测试辅助 ──

func newMockRepository() (*repository.Repository, *mockUserRepo, *mockBlockRepo) {
	users := newMockUserRepo()
	blocks := newMockBlockRepo()
	return &repository.Repository{User: users, Block: blocks}, users, blocks
}

func nopLogger() *zap.Logger { return zap.NewNop() }

package repositories

import (
	"context"
	"slices"
	"sync"
	"time"

	"friendship-service/internal/models"
)

// MemoryStore is an in-process arena that satisfies UserRepository,
// FriendRepository and PresenceRepository. Pending requests are indexed by
// unordered pair; at most one exists per pair. Check-then-act sequences are
// serialized by locks keyed on the unordered pair and on the request id; mu
// only guards the maps for the duration of a single read or write.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[int64]*models.User
	requests      map[int64]*models.FriendRequest
	edges         map[models.Pair]models.Friendship
	pending       map[models.Pair]int64
	nextRequestID int64

	pairLocks    *keyedMutex[models.Pair]
	requestLocks *keyedMutex[int64]

	now func() time.Time
}

var (
	_ UserRepository     = (*MemoryStore)(nil)
	_ FriendRepository   = (*MemoryStore)(nil)
	_ PresenceRepository = (*MemoryStore)(nil)
)

func NewMemoryStore(users ...models.User) *MemoryStore {
	s := &MemoryStore{
		users:        make(map[int64]*models.User, len(users)),
		requests:     make(map[int64]*models.FriendRequest),
		edges:        make(map[models.Pair]models.Friendship),
		pending:      make(map[models.Pair]int64),
		pairLocks:    newKeyedMutex[models.Pair](),
		requestLocks: newKeyedMutex[int64](),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, u := range users {
		s.PutUser(u)
	}
	return s
}

// WithClock replaces the time source used for created_at stamps.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// PutUser inserts or replaces a directory entry.
func (s *MemoryStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := u
	s.users[u.ID] = &user
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	user := *u
	return &user, nil
}

func (s *MemoryStore) GetByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, *u)
		}
	}
	slices.SortFunc(users, func(a, b models.User) int { return compareInt64(a.ID, b.ID) })
	return slices.CompactFunc(users, func(a, b models.User) bool { return a.ID == b.ID }), nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	slices.SortFunc(users, func(a, b models.User) int { return compareInt64(a.ID, b.ID) })
	return users, nil
}

func (s *MemoryStore) CreateRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error) {
	pair := models.PairKey(senderID, receiverID)
	unlock := s.pairLocks.Lock(pair)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[pair]; ok {
		return nil, models.ErrAlreadyFriends
	}
	if _, ok := s.pending[pair]; ok {
		return nil, models.ErrRequestAlreadyPending
	}

	s.nextRequestID++
	req := &models.FriendRequest{
		ID:         s.nextRequestID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
		CreatedAt:  s.now(),
	}
	s.requests[req.ID] = req
	s.pending[pair] = req.ID
	out := *req
	return &out, nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[requestID]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *req
	return &out, nil
}

func (s *MemoryStore) GetIncomingRequests(ctx context.Context, receiverID int64) ([]models.FriendRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	reqs := []models.FriendRequest{}
	for _, req := range s.requests {
		if req.ReceiverID == receiverID && req.Status == models.RequestPending {
			reqs = append(reqs, *req)
		}
	}
	slices.SortFunc(reqs, func(a, b models.FriendRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareInt64(b.ID, a.ID)
	})
	return reqs, nil
}

func (s *MemoryStore) CountIncomingRequests(ctx context.Context, receiverID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, req := range s.requests {
		if req.ReceiverID == receiverID && req.Status == models.RequestPending {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ResolveRequest(ctx context.Context, requestID, actorID int64, to models.RequestStatus) (*models.FriendRequest, error) {
	current, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	unlockPair := s.pairLocks.Lock(current.Pair())
	defer unlockPair()
	unlockReq := s.requestLocks.Lock(requestID)
	defer unlockReq()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.requests[requestID]
	req := *stored
	if err := req.Resolve(actorID, to); err != nil {
		return nil, err
	}
	pair := req.Pair()
	if to == models.RequestAccepted {
		if _, ok := s.edges[pair]; ok {
			return nil, models.ErrAlreadyFriends
		}
		s.edges[pair] = models.NewFriendship(req.SenderID, req.ReceiverID, s.now())
	}
	*stored = req
	delete(s.pending, pair)
	return &req, nil
}

func (s *MemoryStore) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	friends := []int64{}
	for pair, edge := range s.edges {
		if pair.Low == userID || pair.High == userID {
			friends = append(friends, edge.Other(userID))
		}
	}
	slices.Sort(friends)
	return friends, nil
}

func (s *MemoryStore) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.edges[models.PairKey(userID, otherID)]
	return ok, nil
}

func (s *MemoryStore) HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pending[models.PairKey(userID, otherID)]
	return ok, nil
}

func (s *MemoryStore) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	pair := models.PairKey(userID, friendID)
	unlock := s.pairLocks.Lock(pair)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[pair]; !ok {
		return models.ErrNotFound
	}
	delete(s.edges, pair)
	return nil
}

func (s *MemoryStore) ListRelatedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []int64{}
	for pair, edge := range s.edges {
		if pair.Low == userID || pair.High == userID {
			ids = append(ids, edge.Other(userID))
		}
	}
	for pair := range s.pending {
		switch userID {
		case pair.Low:
			ids = append(ids, pair.High)
		case pair.High:
			ids = append(ids, pair.Low)
		}
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (s *MemoryStore) SetPresence(ctx context.Context, userID int64, isCoworking bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.IsCoworking = isCoworking
	return nil
}

func (s *MemoryStore) ArePresent(ctx context.Context, ids []int64) (map[int64]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	present := make(map[int64]bool, len(ids))
	for _, id := range ids {
		u, ok := s.users[id]
		present[id] = ok && u.IsCoworking
	}
	return present, nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// keyedMutex hands out one mutex per key and drops it once nobody holds or waits on it.
type keyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex[K comparable]() *keyedMutex[K] {
	return &keyedMutex[K]{locks: make(map[K]*refMutex)}
}

func (k *keyedMutex[K]) Lock(key K) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// held reports how many keys currently have a holder or waiter.
func (k *keyedMutex[K]) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

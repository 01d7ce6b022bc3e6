// Package memory: хранилище в памяти процесса.
// Используется в тестах и при STORE_DRIVER=memory.
// Все данные защищены одним мьютексом, транзакция работает на копии
// данных и подменяет оригинал только при успехе.
package memory

import (
	"context"
	"sort"
	"sync"

	"serotonyl.ru/mainquest/internal/common"
	"serotonyl.ru/mainquest/internal/store"
)

// dataset: всё содержимое хранилища.
type dataset struct {
	users    map[int64]store.User
	tasks    map[int64]store.Task
	history  []store.TaskHistory
	rewards  map[int64]store.Reward
	unlocked []store.UnlockedReward
	wheel    map[int64]store.WheelState
	nextID   map[string]int64
}

func newDataset() *dataset {
	return &dataset{
		users:   make(map[int64]store.User),
		tasks:   make(map[int64]store.Task),
		rewards: make(map[int64]store.Reward),
		wheel:   make(map[int64]store.WheelState),
		nextID:  make(map[string]int64),
	}
}

func (d *dataset) clone() *dataset {
	out := newDataset()
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.tasks {
		out.tasks[k] = v
	}
	for k, v := range d.rewards {
		out.rewards[k] = v
	}
	for k, v := range d.wheel {
		out.wheel[k] = v.Clone()
	}
	for k, v := range d.nextID {
		out.nextID[k] = v
	}
	out.history = append([]store.TaskHistory(nil), d.history...)
	out.unlocked = append([]store.UnlockedReward(nil), d.unlocked...)
	return out
}

func (d *dataset) id(table string) int64 {
	d.nextID[table]++
	return d.nextID[table]
}

// Store: потокобезопасное хранилище в памяти.
type Store struct {
	mu   sync.Mutex
	data *dataset
	// inTx: экземпляр работает внутри InTx и не захватывает внешний замок
	inTx bool
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{data: newDataset()}
}

var _ store.Store = (*Store)(nil)

func (s *Store) lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, common.StoreError("memory", err)
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (store.User, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return store.User{}, err
	}
	defer unlock()

	u, ok := s.data.users[id]
	if !ok {
		return store.User{}, common.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) InsertUser(ctx context.Context, u store.User) (store.User, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return store.User{}, err
	}
	defer unlock()

	u.ID = s.data.id("users")
	s.data.users[u.ID] = u
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]store.User, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := make([]store.User, 0, len(s.data.users))
	for _, u := range s.data.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateUser(ctx context.Context, u store.User) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := s.data.users[u.ID]; !ok {
		return common.ErrUserNotFound
	}
	s.data.users[u.ID] = u
	return nil
}

func (s *Store) GetTask(ctx context.Context, id int64) (store.Task, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return store.Task{}, err
	}
	defer unlock()

	t, ok := s.data.tasks[id]
	if !ok {
		return store.Task{}, common.ErrTaskNotFound
	}
	return t, nil
}

func (s *Store) InsertTask(ctx context.Context, t store.Task) (store.Task, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return store.Task{}, err
	}
	defer unlock()

	if _, ok := s.data.users[t.UserID]; !ok {
		return store.Task{}, common.ErrUserNotFound
	}
	t.ID = s.data.id("tasks")
	s.data.tasks[t.ID] = t
	return t, nil
}

func (s *Store) ListTasksByUser(ctx context.Context, userID int64) ([]store.Task, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out []store.Task
	for _, t := range s.data.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateTask(ctx context.Context, t store.Task) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := s.data.tasks[t.ID]; !ok {
		return common.ErrTaskNotFound
	}
	s.data.tasks[t.ID] = t
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := s.data.tasks[id]; !ok {
		return common.ErrTaskNotFound
	}
	delete(s.data.tasks, id)

	kept := s.data.history[:0]
	for _, h := range s.data.history {
		if h.TaskID != id {
			kept = append(kept, h)
		}
	}
	s.data.history = kept
	return nil
}

func (s *Store) AppendHistory(ctx context.Context, h store.TaskHistory) (store.TaskHistory, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return store.TaskHistory{}, err
	}
	defer unlock()

	if _, ok := s.data.tasks[h.TaskID]; !ok {
		return store.TaskHistory{}, common.ErrTaskNotFound
	}
	h.ID = s.data.id("history")
	s.data.history = append(s.data.history, h)
	return h, nil
}

func (s *Store) ListHistoryByUser(ctx context.Context, userID int64) ([]store.TaskHistory, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out []store.TaskHistory
	for _, h := range s.data.history {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *Store) ListRewards(ctx context.Context) ([]store.Reward, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := make([]store.Reward, 0, len(s.data.rewards))
	for _, r := range s.data.rewards {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) InsertReward(ctx context.Context, r store.Reward) (store.Reward, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return store.Reward{}, err
	}
	defer unlock()

	r.ID = s.data.id("rewards")
	s.data.rewards[r.ID] = r
	return r, nil
}

func (s *Store) ListUnlockedByUser(ctx context.Context, userID int64) ([]store.UnlockedReward, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out []store.UnlockedReward
	for _, u := range s.data.unlocked {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) InsertUnlocked(ctx context.Context, u store.UnlockedReward) (store.UnlockedReward, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return store.UnlockedReward{}, err
	}
	defer unlock()

	if _, ok := s.data.users[u.UserID]; !ok {
		return store.UnlockedReward{}, common.ErrUserNotFound
	}
	if _, ok := s.data.rewards[u.RewardID]; !ok {
		return store.UnlockedReward{}, common.ErrRewardNotFound
	}
	u.ID = s.data.id("unlocked")
	s.data.unlocked = append(s.data.unlocked, u)
	return u, nil
}

func (s *Store) GetWheelState(ctx context.Context, userID int64) (store.WheelState, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return store.WheelState{}, err
	}
	defer unlock()

	w, ok := s.data.wheel[userID]
	if !ok {
		return store.NewWheelState(userID), nil
	}
	return w.Clone(), nil
}

func (s *Store) SaveWheelState(ctx context.Context, w store.WheelState) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := s.data.users[w.UserID]; !ok {
		return common.ErrUserNotFound
	}
	s.data.wheel[w.UserID] = w.Clone()
	return nil
}

func (s *Store) PruneWheelSpins(ctx context.Context, before string) (int, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	removed := 0
	for userID, w := range s.data.wheel {
		for date := range w.DailySpins {
			if date < before {
				delete(w.DailySpins, date)
				removed++
			}
		}
		s.data.wheel[userID] = w
	}
	return removed, nil
}

// InTx выполняет fn на копии данных. Пока транзакция идёт,
// остальные операции ждут, поэтому фиксация ничего не затирает.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tx := &Store{data: s.data.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

// Close ничего не делает: ресурсов нет.
func (s *Store) Close() error { return nil }

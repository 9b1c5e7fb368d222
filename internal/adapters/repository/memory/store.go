package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
	"github.com/ogurasousui/shop-crew-clock/internal/core/invitation"
	"github.com/ogurasousui/shop-crew-clock/internal/core/timeclock"
)

// ErrReadOnly は読み取り専用トランザクション内で書き込もうとした場合に返却されます。
var ErrReadOnly = errors.New("memory: write attempted in read-only transaction")

// State はストア全体の状態です。読み込みと保存は常に全体単位で行います。
type State struct {
	Crew        []*crew.CrewMember       `json:"crew"`
	TimeEntries []*timeclock.TimeEntry   `json:"timeEntries"`
	Invitations []*invitation.Invitation `json:"invitations"`
	Jobs        []*timeclock.Job         `json:"jobs"`
	Activities  []*activity.Entry        `json:"activities"`
}

// Store はプロセス内に全体状態を保持するストアです。
// 書き込みは状態の複製に対して行い、成功した場合のみ置き換えます。
type Store struct {
	mu           sync.RWMutex
	state        *State
	snapshotPath string
	newID        func() string
}

// Option は Store の生成オプションです。
type Option func(*Store)

// WithSnapshotPath は状態を JSON ファイルへ保存するパスを指定します。
func WithSnapshotPath(path string) Option {
	return func(s *Store) {
		s.snapshotPath = path
	}
}

// WithIDGenerator は ID の採番方法を差し替えます。
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore は Store を生成します。スナップショットが存在する場合は読み込みます。
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{state: &State{}, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}

	if s.snapshotPath == "" {
		return s, nil
	}

	loaded, err := loadSnapshot(s.snapshotPath)
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		s.state = loaded
	}
	return s, nil
}

// SeedJobs は参照用の作業を登録します。作業の管理はこのストアの外で行われます。
func (s *Store) SeedJobs(ctx context.Context, jobs ...*timeclock.Job) error {
	return s.update(ctx, func(state *State) error {
		for _, job := range jobs {
			if job == nil {
				continue
			}
			replaced := false
			for idx, existing := range state.Jobs {
				if existing.ID == job.ID {
					state.Jobs[idx] = cloneJob(job)
					replaced = true
					break
				}
			}
			if !replaced {
				state.Jobs = append(state.Jobs, cloneJob(job))
			}
		}
		return nil
	})
}

// Snapshot は現在の状態の複製を返します。
func (s *Store) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

type workingStateKey struct{}

type workingState struct {
	state    *State
	readOnly bool
}

func workingFromContext(ctx context.Context) (*workingState, bool) {
	if ctx == nil {
		return nil, false
	}
	ws, ok := ctx.Value(workingStateKey{}).(*workingState)
	return ws, ok
}

// view はトランザクション内であればその状態を、そうでなければ現在の状態を読み取ります。
func (s *Store) view(ctx context.Context, fn func(*State) error) error {
	if ws, ok := workingFromContext(ctx); ok {
		return fn(ws.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// update はトランザクション内であればその状態を変更し、そうでなければ単独で確定します。
func (s *Store) update(ctx context.Context, fn func(*State) error) error {
	if ws, ok := workingFromContext(ctx); ok {
		if ws.readOnly {
			return ErrReadOnly
		}
		return fn(ws.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(fn)
}

func (s *Store) commitLocked(fn func(*State) error) error {
	working := s.state.clone()
	if err := fn(working); err != nil {
		return err
	}
	if err := s.persistLocked(working); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) persistLocked(state *State) error {
	if s.snapshotPath == "" {
		return nil
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.snapshotPath)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("memory: create snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("memory: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("memory: close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.snapshotPath); err != nil {
		return fmt.Errorf("memory: replace snapshot: %w", err)
	}
	return nil
}

func loadSnapshot(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("memory: read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("memory: decode snapshot: %w", err)
	}
	return &state, nil
}

func (st *State) clone() *State {
	if st == nil {
		return &State{}
	}
	out := &State{
		Crew:        make([]*crew.CrewMember, 0, len(st.Crew)),
		TimeEntries: make([]*timeclock.TimeEntry, 0, len(st.TimeEntries)),
		Invitations: make([]*invitation.Invitation, 0, len(st.Invitations)),
		Jobs:        make([]*timeclock.Job, 0, len(st.Jobs)),
		Activities:  make([]*activity.Entry, 0, len(st.Activities)),
	}
	for _, m := range st.Crew {
		out.Crew = append(out.Crew, cloneCrew(m))
	}
	for _, e := range st.TimeEntries {
		out.TimeEntries = append(out.TimeEntries, cloneEntry(e))
	}
	for _, inv := range st.Invitations {
		out.Invitations = append(out.Invitations, cloneInvitation(inv))
	}
	for _, j := range st.Jobs {
		out.Jobs = append(out.Jobs, cloneJob(j))
	}
	for _, a := range st.Activities {
		out.Activities = append(out.Activities, cloneActivity(a))
	}
	return out
}

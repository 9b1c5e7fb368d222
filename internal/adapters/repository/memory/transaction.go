package memory

import (
	"context"
	"fmt"
)

// TransactionManager は Store に対する全体単位のトランザクションを提供します。
type TransactionManager struct {
	store *Store
}

// NewTransactionManager は TransactionManager を生成します。
func NewTransactionManager(store *Store) *TransactionManager {
	if store == nil {
		return nil
	}
	return &TransactionManager{store: store}
}

// WithinReadOnly は現在の状態を読み取り専用で fn に渡します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("memory: transaction function is required")
	}
	if m == nil {
		return fn(ctx)
	}
	if _, ok := workingFromContext(ctx); ok {
		return fn(ctx)
	}

	s := m.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(context.WithValue(ctx, workingStateKey{}, &workingState{state: s.state, readOnly: true}))
}

// WithinReadWrite は状態の複製を fn に渡し、fn が成功した場合のみ確定します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("memory: transaction function is required")
	}
	if m == nil {
		return fn(ctx)
	}
	if ws, ok := workingFromContext(ctx); ok {
		if ws.readOnly {
			return ErrReadOnly
		}
		return fn(ctx)
	}

	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(func(working *State) error {
		return fn(context.WithValue(ctx, workingStateKey{}, &workingState{state: working}))
	})
}

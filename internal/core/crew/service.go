package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service はクルー管理に関するユースケースをまとめます。
type Service struct {
	repo     Repository
	clock    Clock
	tx       TransactionManager
	activity activity.Recorder
}

// UseCase はクルー管理ユースケースの公開インターフェースです。
type UseCase interface {
	CreateCrewMember(ctx context.Context, in CreateCrewMemberInput) (*CrewMember, error)
	UpdateCrewMember(ctx context.Context, in UpdateCrewMemberInput) (*CrewMember, error)
	DeleteCrewMember(ctx context.Context, in DeleteCrewMemberInput) error
	GetCrewMember(ctx context.Context, in GetCrewMemberInput) (*CrewMember, error)
	ListCrewMembers(ctx context.Context, in ListCrewMembersInput) ([]*CrewMember, error)
	Authenticate(ctx context.Context, in AuthenticateInput) (*CrewMember, error)
	AuthenticateWithPIN(ctx context.Context, in AuthenticateWithPINInput) (*CrewMember, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, recorder activity.Recorder) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if recorder == nil {
		recorder = activity.Discard
	}
	return &Service{repo: repo, clock: clock, tx: tx, activity: recorder}
}

// CreateCrewMemberInput はクルー登録時の入力です。
type CreateCrewMemberInput struct {
	Name       string
	EmployeeID string
	Position   string
	HourlyRate float64
	Phone      string
	Email      string
	Username   *string
	Password   *string
	PIN        string
	Status     *Status
}

// UpdateCrewMemberInput はクルー更新時の入力です。Username に空文字を渡すとログイン情報を削除します。
type UpdateCrewMemberInput struct {
	ID         string
	Name       *string
	EmployeeID *string
	Position   *string
	HourlyRate *float64
	Phone      *string
	Email      *string
	Username   *string
	Password   *string
	PIN        *string
	Status     *Status
}

// DeleteCrewMemberInput はクルー削除時の入力です。
type DeleteCrewMemberInput struct {
	ID string
}

// GetCrewMemberInput はクルー取得時の入力です。
type GetCrewMemberInput struct {
	ID string
}

// ListCrewMembersInput は一覧取得時の入力です。
type ListCrewMembersInput struct {
	Status    *Status
	ClockedIn *bool
}

// AuthenticateInput はユーザー名とパスワードによるログイン入力です。
type AuthenticateInput struct {
	Username string
	Password string
}

// AuthenticateWithPINInput は PIN によるクイックログイン入力です。
type AuthenticateWithPINInput struct {
	CrewID string
	PIN    string
}

// CreateCrewMember は新しいクルーを登録します。
func (s *Service) CreateCrewMember(ctx context.Context, in CreateCrewMemberInput) (*CrewMember, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := ValidateHourlyRate(in.HourlyRate); err != nil {
		return nil, err
	}
	if err := ValidatePIN(in.PIN); err != nil {
		return nil, err
	}

	status := StatusActive
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	username, password, err := normalizeLogin(in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	var created *CrewMember
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if username != nil {
			if err := EnsureUsernameAvailable(txCtx, s.repo, *username, ""); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &CrewMember{
			Name:       name,
			EmployeeID: strings.TrimSpace(in.EmployeeID),
			Position:   strings.TrimSpace(in.Position),
			HourlyRate: in.HourlyRate,
			Phone:      strings.TrimSpace(in.Phone),
			Email:      strings.TrimSpace(in.Email),
			Status:     status,
			Username:   username,
			Password:   password,
			PIN:        in.PIN,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, "Added new crew member: %s", created.Name)
	return created, nil
}

// UpdateCrewMember はクルー情報を更新します。打刻状態は変更しません。
func (s *Service) UpdateCrewMember(ctx context.Context, in UpdateCrewMemberInput) (*CrewMember, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *CrewMember
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ErrInvalidName
			}
			existing.Name = name
		}
		if in.EmployeeID != nil {
			existing.EmployeeID = strings.TrimSpace(*in.EmployeeID)
		}
		if in.Position != nil {
			existing.Position = strings.TrimSpace(*in.Position)
		}
		if in.HourlyRate != nil {
			if err := ValidateHourlyRate(*in.HourlyRate); err != nil {
				return err
			}
			existing.HourlyRate = *in.HourlyRate
		}
		if in.Phone != nil {
			existing.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.Email != nil {
			existing.Email = strings.TrimSpace(*in.Email)
		}
		if in.PIN != nil {
			if err := ValidatePIN(*in.PIN); err != nil {
				return err
			}
			existing.PIN = *in.PIN
		}
		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		if err := s.applyLoginUpdate(txCtx, existing, in.Username, in.Password); err != nil {
			return err
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, "Updated crew member: %s", updated.Name)
	return updated, nil
}

// DeleteCrewMember はクルーを削除します。出勤中は削除できません。
func (s *Service) DeleteCrewMember(ctx context.Context, in DeleteCrewMemberInput) error {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	var name string
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.CurrentlyClocked {
			return ErrMemberClockedIn
		}
		name = existing.Name
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}

	s.activity.Record(ctx, "Deleted crew member: %s", name)
	return nil
}

// GetCrewMember はクルーを取得します。
func (s *Service) GetCrewMember(ctx context.Context, in GetCrewMemberInput) (*CrewMember, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *CrewMember
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// ListCrewMembers はクルーの一覧を取得します。
func (s *Service) ListCrewMembers(ctx context.Context, in ListCrewMembersInput) ([]*CrewMember, error) {
	if in.Status != nil && !isValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	var members []*CrewMember
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, ListFilter{Status: in.Status, ClockedIn: in.ClockedIn})
		if err != nil {
			return err
		}
		members = found
		return nil
	}); err != nil {
		return nil, err
	}
	return members, nil
}

// Authenticate はユーザー名とパスワードでクルーを認証します。
func (s *Service) Authenticate(ctx context.Context, in AuthenticateInput) (*CrewMember, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var member *CrewMember
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByUsername(txCtx, username)
		if err != nil {
			return err
		}
		member = found
		return nil
	}); err != nil {
		if errors.Is(err, ErrCrewNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if member.Password == nil || *member.Password != in.Password {
		return nil, ErrInvalidCredentials
	}
	if !member.IsActive() {
		return nil, ErrInactiveMember
	}
	return member, nil
}

// AuthenticateWithPIN はクルー ID と PIN でクルーを認証します。
func (s *Service) AuthenticateWithPIN(ctx context.Context, in AuthenticateWithPINInput) (*CrewMember, error) {
	member, err := s.GetCrewMember(ctx, GetCrewMemberInput{ID: in.CrewID})
	if err != nil {
		return nil, err
	}
	if member.PIN != in.PIN {
		return nil, ErrInvalidCredentials
	}
	if !member.IsActive() {
		return nil, ErrInactiveMember
	}
	return member, nil
}

func (s *Service) applyLoginUpdate(ctx context.Context, member *CrewMember, username, password *string) error {
	if username != nil {
		trimmed := strings.TrimSpace(*username)
		if trimmed == "" {
			member.Username = nil
			member.Password = nil
			return nil
		}

		normalized, err := NormalizeUsername(trimmed)
		if err != nil {
			return err
		}
		if member.Username == nil || !strings.EqualFold(*member.Username, normalized) {
			if err := EnsureUsernameAvailable(ctx, s.repo, normalized, member.ID); err != nil {
				return err
			}
		}
		member.Username = &normalized
	}

	if member.Username == nil {
		return nil
	}

	if password != nil {
		value := *password
		member.Password = &value
	}
	if member.Password == nil {
		return ErrInvalidPassword
	}
	return ValidatePassword(*member.Password)
}

func normalizeLogin(username, password *string) (*string, *string, error) {
	if username == nil || strings.TrimSpace(*username) == "" {
		return nil, nil, nil
	}

	normalized, err := NormalizeUsername(*username)
	if err != nil {
		return nil, nil, err
	}
	if password == nil {
		return nil, nil, ErrInvalidPassword
	}
	if err := ValidatePassword(*password); err != nil {
		return nil, nil, err
	}

	pw := *password
	return &normalized, &pw, nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

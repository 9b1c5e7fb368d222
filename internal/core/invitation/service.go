package invitation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/shop-crew-clock/internal/core/activity"
	"github.com/ogurasousui/shop-crew-clock/internal/core/crew"
)

const (
	// DefaultExpiryHours は有効期限を指定しなかった場合の有効時間です。
	DefaultExpiryHours = 72
	// MaxExpiryHours は指定できる有効時間の上限 (1 年) です。
	MaxExpiryHours  = 24 * 365
	maxCodeAttempts = 8
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

// Options は招待ユースケースの動作設定です。
type Options struct {
	DefaultExpiryHours int
	RequireUsername    bool
	GenerateCode       CodeGenerator
}

// DefaultOptions は既定の動作設定を返します。
func DefaultOptions() Options {
	return Options{
		DefaultExpiryHours: DefaultExpiryHours,
		RequireUsername:    true,
		GenerateCode:       NewCode,
	}
}

// Service は招待の発行と登録に関するユースケースをまとめます。
type Service struct {
	repo     Repository
	crews    crew.Repository
	clock    Clock
	tx       TransactionManager
	activity activity.Recorder
	opts     Options
}

// UseCase は招待ユースケースの公開インターフェースです。
type UseCase interface {
	Issue(ctx context.Context, in IssueInput) (*Invitation, error)
	Resolve(ctx context.Context, in ResolveInput) (*Invitation, error)
	Redeem(ctx context.Context, in RedeemInput) (*RedeemResult, error)
	Revoke(ctx context.Context, in RevokeInput) (*Invitation, error)
	List(ctx context.Context) ([]*Invitation, error)
	Get(ctx context.Context, in GetInput) (*Invitation, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, crews crew.Repository, clock Clock, tx TransactionManager, recorder activity.Recorder, opts Options) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if recorder == nil {
		recorder = activity.Discard
	}
	if opts.DefaultExpiryHours <= 0 {
		opts.DefaultExpiryHours = DefaultExpiryHours
	}
	if opts.GenerateCode == nil {
		opts.GenerateCode = NewCode
	}
	return &Service{repo: repo, crews: crews, clock: clock, tx: tx, activity: recorder, opts: opts}
}

// IssueInput は招待発行時の入力です。ExpiryHours が 0 以下の場合は既定値を用います。
type IssueInput struct {
	Position    string
	HourlyRate  float64
	ExpiryHours int
}

// ResolveInput は招待コード照会時の入力です。
type ResolveInput struct {
	Code string
}

// RedeemInput は招待コードによるクルー登録の入力です。
type RedeemInput struct {
	Code            string
	Name            string
	EmployeeID      string
	Phone           string
	Email           string
	Username        string
	Password        string
	PasswordConfirm string
	PIN             string
}

// RedeemResult は登録結果です。
type RedeemResult struct {
	Member     *crew.CrewMember
	Invitation *Invitation
}

// RevokeInput は招待取り消し時の入力です。
type RevokeInput struct {
	ID string
}

// GetInput は招待取得時の入力です。
type GetInput struct {
	ID string
}

// Issue は新しい招待コードを発行します。コードは既存の全招待と重複しません。
func (s *Service) Issue(ctx context.Context, in IssueInput) (*Invitation, error) {
	position := strings.TrimSpace(in.Position)
	if position == "" {
		return nil, ErrInvalidPosition
	}
	if err := crew.ValidateHourlyRate(in.HourlyRate); err != nil {
		return nil, err
	}

	hours := in.ExpiryHours
	if hours <= 0 {
		hours = s.opts.DefaultExpiryHours
	}
	if hours > MaxExpiryHours {
		return nil, ErrInvalidExpiry
	}

	var (
		issued *Invitation
		err    error
	)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		issued, err = s.issueOnce(ctx, position, in.HourlyRate, hours)
		if !errors.Is(err, ErrDuplicateCode) {
			break
		}
	}
	if errors.Is(err, ErrDuplicateCode) {
		return nil, ErrCodeGeneration
	}
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, "Generated crew invitation for %s", issued.Position)
	return issued, nil
}

// issueOnce は 1 回分のトランザクションで招待を作成します。
// 同時発行でコードが衝突した場合は ErrDuplicateCode を返し、呼び出し側がやり直します。
func (s *Service) issueOnce(ctx context.Context, position string, rate float64, hours int) (*Invitation, error) {
	var issued *Invitation
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		code, err := s.uniqueCode(txCtx)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		created, err := s.repo.Create(txCtx, &Invitation{
			Code:       code,
			Position:   position,
			HourlyRate: rate,
			CreatedAt:  now,
			ExpiresAt:  now.Add(time.Duration(hours) * time.Hour),
			Status:     StatusPending,
		})
		if err != nil {
			return err
		}
		issued = created
		return nil
	}); err != nil {
		return nil, err
	}
	return issued, nil
}

func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := NormalizeCode(s.opts.GenerateCode())
		if code == "" {
			continue
		}
		_, err := s.repo.FindByCode(ctx, code)
		if errors.Is(err, ErrInvitationNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrCodeGeneration
}

// Resolve は招待コードを照会し、登録に利用できる招待を返します。
// 期限切れを検出した場合は expired を保存してから ErrExpired を返します。
func (s *Service) Resolve(ctx context.Context, in ResolveInput) (*Invitation, error) {
	code := NormalizeCode(in.Code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	var (
		live    *Invitation
		expired bool
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		found, lapsed, err := s.resolveLocked(txCtx, code)
		if err != nil {
			return err
		}
		if lapsed {
			expired = true
			return nil
		}
		live = found
		return nil
	}); err != nil {
		return nil, err
	}

	if expired {
		return nil, ErrExpired
	}
	return live, nil
}

// resolveLocked はトランザクション内で招待を照会します。期限切れの場合は保存して lapsed=true を返します。
func (s *Service) resolveLocked(ctx context.Context, code string) (*Invitation, bool, error) {
	found, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvitationNotFound) {
			return nil, false, ErrInvalidCode
		}
		return nil, false, err
	}
	if found.Status != StatusPending {
		return nil, false, ErrAlreadyConsumed
	}
	if found.IsLapsed(s.clock.Now()) {
		found.Status = StatusExpired
		if _, err := s.repo.Update(ctx, found); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}
	return found, false, nil
}

// Redeem は招待コードを消費し、招待の職種と時給を引き継いだクルーを登録します。
// 検証に失敗した場合はクルーを作成せず、コードも消費しません。
func (s *Service) Redeem(ctx context.Context, in RedeemInput) (*RedeemResult, error) {
	if _, err := s.Resolve(ctx, ResolveInput{Code: in.Code}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, crew.ErrInvalidName
	}
	if err := crew.ValidatePIN(in.PIN); err != nil {
		return nil, err
	}
	username, password, err := s.registrationLogin(in)
	if err != nil {
		return nil, err
	}

	var (
		result  *RedeemResult
		expired bool
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		inv, lapsed, err := s.resolveLocked(txCtx, NormalizeCode(in.Code))
		if err != nil {
			return err
		}
		if lapsed {
			expired = true
			return nil
		}

		if username != nil {
			if err := crew.EnsureUsernameAvailable(txCtx, s.crews, *username, ""); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		member, err := s.crews.Create(txCtx, &crew.CrewMember{
			Name:                name,
			EmployeeID:          strings.TrimSpace(in.EmployeeID),
			Position:            inv.Position,
			HourlyRate:          inv.HourlyRate,
			Phone:               strings.TrimSpace(in.Phone),
			Email:               strings.TrimSpace(in.Email),
			Status:              crew.StatusActive,
			Username:            username,
			Password:            password,
			PIN:                 in.PIN,
			RegisteredViaInvite: true,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
		if err != nil {
			return err
		}

		usedBy := member.Name
		inv.Status = StatusUsed
		inv.UsedBy = &usedBy
		inv.UsedAt = &now
		used, err := s.repo.Update(txCtx, inv)
		if err != nil {
			return err
		}

		result = &RedeemResult{Member: member, Invitation: used}
		return nil
	}); err != nil {
		return nil, err
	}

	if expired {
		return nil, ErrExpired
	}

	s.activity.Record(ctx, "%s registered as %s", result.Member.Name, result.Member.Position)
	return result, nil
}

func (s *Service) registrationLogin(in RedeemInput) (*string, *string, error) {
	if strings.TrimSpace(in.Username) == "" && !s.opts.RequireUsername {
		return nil, nil, nil
	}

	username, err := crew.NormalizeUsername(in.Username)
	if err != nil {
		return nil, nil, err
	}
	if err := crew.ValidatePassword(in.Password); err != nil {
		return nil, nil, err
	}
	if err := crew.ValidatePasswordConfirmation(in.Password, in.PasswordConfirm); err != nil {
		return nil, nil, err
	}

	password := in.Password
	return &username, &password, nil
}

// Revoke は未使用の招待を取り消します。取り消した招待は expired になります。
func (s *Service) Revoke(ctx context.Context, in RevokeInput) (*Invitation, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var revoked *Invitation
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if found.Status != StatusPending {
			return ErrNotPending
		}

		found.Status = StatusExpired
		updated, err := s.repo.Update(txCtx, found)
		if err != nil {
			return err
		}
		revoked = updated
		return nil
	}); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, "Revoked invitation %s", revoked.Code)
	return revoked, nil
}

// List は招待を新しい順に返します。期限を過ぎた未使用の招待は expired として保存し直します。
func (s *Service) List(ctx context.Context) ([]*Invitation, error) {
	var invitations []*Invitation
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for idx, inv := range found {
			if !inv.IsLapsed(now) {
				continue
			}
			inv.Status = StatusExpired
			updated, err := s.repo.Update(txCtx, inv)
			if err != nil {
				return err
			}
			found[idx] = updated
		}
		invitations = found
		return nil
	}); err != nil {
		return nil, err
	}
	return invitations, nil
}

// Get は招待を取得します。返却値の Status は読み取り時点の状態を反映します。
func (s *Service) Get(ctx context.Context, in GetInput) (*Invitation, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Invitation
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

	result.Status = result.EffectiveStatus(s.clock.Now())
	return result, nil
}

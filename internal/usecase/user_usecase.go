package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"secondhand/internal/domain/model"
	repo "secondhand/internal/repository"

	"github.com/sirupsen/logrus"
)

const msgInvalidCredentials = "Invalid email or password."

type UserUsecase struct {
	userRepo repo.UserRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
	idGen    IDGenerator
	clock    Clock
	audit    auditRecorder
}

// DI
func NewUserUsecase(
	userRepo repo.UserRepository,
	auditRepo repo.AuditLogRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	idGen IDGenerator,
	clock Clock,
	log logrus.FieldLogger,
) *UserUsecase {
	return &UserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		idGen:    idGen,
		clock:    clock,
		audit:    auditRecorder{auditRepo: auditRepo, idGen: idGen, clock: clock, log: log},
	}
}

// 会員登録の入力
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Role        string
	Address     string
	IsAvailable *bool
}

func (u *UserUsecase) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	address := strings.TrimSpace(in.Address)
	roleText := strings.ToLower(strings.TrimSpace(in.Role))

	if username == "" || email == "" || in.Password == "" || roleText == "" || address == "" {
		return model.User{}, errValidation("All fields are required.")
	}

	//管理者は起動時のシードでのみ作る
	role := model.Role(roleText)
	if role == model.RoleAdmin {
		return model.User{}, errForbidden("Admin accounts cannot be registered.")
	}
	if !role.Valid() {
		return model.User{}, errValidation("type must be buyer or vender.")
	}

	//email重複チェック（大文字小文字は区別しない）
	if _, err := u.userRepo.FindByEmail(ctx, email); err == nil {
		return model.User{}, errConflict("Email already in use.")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return model.User{}, errInternal(err)
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, errInternal(err)
	}

	isAvailable := true
	if in.IsAvailable != nil {
		isAvailable = *in.IsAvailable
	}

	now := u.clock.Now()
	user := model.User{
		ID:           u.idGen.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Address:      address,
		IsAvailable:  isAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, &user); err != nil {
		// 同時登録でユニーク制約に当たった
		if errors.Is(err, repo.ErrDuplicate) {
			return model.User{}, errConflict("Email already in use.")
		}
		return model.User{}, errInternal(err)
	}
	return user, nil
}

// ログイン結果
type LoginOutput struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

// メール不明とパスワード違いは同じ401にする
func (u *UserUsecase) Login(ctx context.Context, email, password string) (LoginOutput, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginOutput{}, errValidation("email and password are required.")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return LoginOutput{}, errUnauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return LoginOutput{}, errInternal(err)
	}

	//パスワード照合を先にする（停止中かどうかを漏らさない）
	if !u.hasher.Verify(password, user.PasswordHash) {
		return LoginOutput{}, errUnauthorized(msgInvalidCredentials)
	}
	if !user.IsAvailable {
		return LoginOutput{}, errForbidden("Account is disabled.")
	}

	tok, exp, err := u.issuer.Issue(user.ID, user.Role, u.clock.Now())
	if err != nil {
		return LoginOutput{}, errInternal(err)
	}
	return LoginOutput{Token: tok, ExpiresAt: exp, User: *user}, nil
}

func (u *UserUsecase) Me(ctx context.Context, actor Actor) (model.User, error) {
	return u.findUser(ctx, actor.UserID)
}

// 自分のusername/addressだけ更新できる
type UpdateUserInput struct {
	Username *string
	Address  *string
}

func (u *UserUsecase) UpdateSelf(ctx context.Context, actor Actor, in UpdateUserInput) (model.User, error) {
	username := trimmedPtr(in.Username)
	address := trimmedPtr(in.Address)
	if username == "" && address == "" {
		return model.User{}, errValidation("username or address is required.")
	}

	user, err := u.findUser(ctx, actor.UserID)
	if err != nil {
		return model.User{}, err
	}

	if username != "" {
		user.Username = username
	}
	if address != "" {
		user.Address = address
	}
	user.UpdatedAt = u.clock.Now()

	if err := u.userRepo.Update(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, errNotFound("User not found.")
		}
		return model.User{}, errInternal(err)
	}
	return user, nil
}

func (u *UserUsecase) Disable(ctx context.Context, actor Actor, userID string) (model.User, error) {
	return u.setAvailability(ctx, actor, userID, false)
}

func (u *UserUsecase) Enable(ctx context.Context, actor Actor, userID string) (model.User, error) {
	return u.setAvailability(ctx, actor, userID, true)
}

func (u *UserUsecase) setAvailability(ctx context.Context, actor Actor, userID string, available bool) (model.User, error) {
	if !actor.Is(model.RoleAdmin) {
		return model.User{}, errForbidden("Only admin can perform this action.")
	}
	if !available && userID == actor.UserID {
		return model.User{}, errValidation("You cannot disable your own account.")
	}

	user, err := u.findUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	before := user.IsAvailable

	if err := u.userRepo.SetAvailability(ctx, userID, available); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, errNotFound("User not found.")
		}
		return model.User{}, errInternal(err)
	}
	user.IsAvailable = available

	action := model.AuditActionDisableUser
	if available {
		action = model.AuditActionEnableUser
	}
	u.audit.record(ctx, actor, action, model.AuditResourceUser, userID,
		map[string]bool{"isAvailable": before},
		map[string]bool{"isAvailable": available},
	)
	return user, nil
}

func (u *UserUsecase) ListAll(ctx context.Context, actor Actor) ([]model.User, error) {
	if !actor.Is(model.RoleAdmin) {
		return nil, errForbidden("Only admin can perform this action.")
	}
	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, errInternal(err)
	}
	return users, nil
}

func (u *UserUsecase) Delete(ctx context.Context, actor Actor, userID string) (model.User, error) {
	if !actor.Is(model.RoleAdmin) {
		return model.User{}, errForbidden("Only admin can perform this action.")
	}
	if userID == actor.UserID {
		return model.User{}, errValidation("You cannot delete your own account.")
	}

	user, err := u.findUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if err := u.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, errNotFound("User not found.")
		}
		return model.User{}, errInternal(err)
	}

	u.audit.record(ctx, actor, model.AuditActionDeleteUser, model.AuditResourceUser, userID,
		map[string]any{"email": user.Email, "type": user.Role, "isAvailable": user.IsAvailable},
		nil,
	)
	return user, nil
}

// 起動時に管理者を1人用意する（既にいれば何もしない）
func (u *UserUsecase) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			return false, errConflict("Admin email belongs to a non-admin account.")
		}
		return false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return false, errInternal(err)
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return false, errInternal(err)
	}
	now := u.clock.Now()
	admin := model.User{
		ID:           u.idGen.NewID(),
		Username:     "admin",
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		Address:      "-",
		IsAvailable:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, &admin); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return false, nil
		}
		return false, errInternal(err)
	}
	return true, nil
}

func (u *UserUsecase) findUser(ctx context.Context, userID string) (model.User, error) {
	if strings.TrimSpace(userID) == "" {
		return model.User{}, errNotFound("User not found.")
	}
	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, errNotFound("User not found.")
	}
	if err != nil {
		return model.User{}, errInternal(err)
	}
	return *user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedPtr(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
	appctx "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// SessionTokenPrefix 会话令牌前缀.
const SessionTokenPrefix = "st_"

// UserService 负责账号生命周期与配额查询.
type UserService struct {
	*Service
}

// NewUserService 创建并返回一个新的 UserService 实例.
func NewUserService(c context.Context) *UserService {
	return &UserService{NewService(c)}
}

func userInfo(u *model.User) types.UserInfo {
	return types.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Role:         u.Role,
		Active:       u.Active,
		StorageUsed:  u.StorageUsed,
		StorageLimit: u.StorageLimit,
	}
}

// Register 注册新用户.首个注册用户自动成为已激活的管理员，
// 其余账号需要管理员激活后方可登录.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.RegisterResponse, error) {
	conf := configs.GetConfig()

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), conf.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		StorageLimit: conf.Quota.DefaultStorageLimit,
	}

	err = s.gdb(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			user.Role = model.RoleAdmin
			user.Active = true
		}

		var existing model.User
		err := tx.Unscoped().Where("username = ?", req.Username).First(&existing).Error

		switch {
		case err == nil:
			return fmt.Errorf("%w: username %q already taken", types.ErrConflict, req.Username)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		// 注册即建根目录，文件树从这里长出
		return tx.Create(&model.Folder{Name: RootFolderName, OwnerID: user.ID}).Error
	})
	if err != nil {
		return nil, err
	}

	return &types.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Active:   user.Active,
	}, nil
}

// storeSession 将认证主体写入 KV，键与认证中间件读取的键一致.
func (s *UserService) storeSession(ctx context.Context, token string, p *appctx.Principal) error {
	if s.kvClient == nil {
		return fmt.Errorf("kv storage not available")
	}

	data, err := sonic.Marshal(p)
	if err != nil {
		return err
	}

	conf := configs.GetConfig().Auth
	key := conf.SessionKeyPrefix + ":" + token
	ttl := time.Duration(conf.SessionTTL) * time.Minute

	return s.kvClient.Set(ctx, key, data, ttl)
}

// Login 校验用户名口令并签发会话令牌.
// 未激活账号与口令错误统一返回 Unauthorized，避免探测账号状态.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	var user model.User

	err := s.gdb(ctx).Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: invalid credentials", types.ErrUnauthorized)
		}

		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", types.ErrUnauthorized)
	}

	if !user.Active {
		return nil, fmt.Errorf("%w: account not activated", types.ErrUnauthorized)
	}

	token := SessionTokenPrefix + newULID()
	principal := &appctx.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}

	if err := s.storeSession(ctx, token, principal); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	conf := configs.GetConfig().Auth

	return &types.LoginResponse{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresIn: conf.SessionTTL * 60,
	}, nil
}

// Logout 删除会话令牌，令牌不存在时也返回成功.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if s.kvClient == nil {
		return nil
	}

	conf := configs.GetConfig().Auth

	return s.kvClient.Delete(ctx, conf.SessionKeyPrefix+":"+token)
}

// Get 查询单个用户信息.
func (s *UserService) Get(ctx context.Context, userID uint) (*types.UserInfo, error) {
	var user model.User
	if err := s.gdb(ctx).First(&user, userID).Error; err != nil {
		return nil, wrapLookup(err)
	}

	info := userInfo(&user)

	return &info, nil
}

// Quota 查询用户配额使用情况.
func (s *UserService) Quota(ctx context.Context, userID uint) (*types.QuotaInfo, error) {
	var user model.User
	if err := s.gdb(ctx).First(&user, userID).Error; err != nil {
		return nil, wrapLookup(err)
	}

	available := user.StorageLimit - user.StorageUsed
	if available < 0 {
		available = 0
	}

	return &types.QuotaInfo{
		StorageUsed:  user.StorageUsed,
		StorageLimit: user.StorageLimit,
		Available:    available,
	}, nil
}

// List 列出全部用户（管理员）.
func (s *UserService) List(ctx context.Context) (*types.ListUsersResponse, error) {
	var users []model.User
	if err := s.gdb(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	resp := &types.ListUsersResponse{
		Users: make([]types.UserInfo, 0, len(users)),
		Total: int64(len(users)),
	}

	for i := range users {
		resp.Users = append(resp.Users, userInfo(&users[i]))
	}

	return resp, nil
}

// Update 管理员更新用户：激活状态、角色、存储上限.
func (s *UserService) Update(ctx context.Context, userID uint, req *types.UpdateUserRequest) (*types.UserInfo, error) {
	var user model.User
	if err := s.gdb(ctx).First(&user, userID).Error; err != nil {
		return nil, wrapLookup(err)
	}

	updates := map[string]any{}

	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if req.Role != nil {
		if *req.Role != model.RoleUser && *req.Role != model.RoleAdmin {
			return nil, fmt.Errorf("%w: unknown role %q", types.ErrInvalidInput, *req.Role)
		}

		updates["role"] = *req.Role
	}

	if req.StorageLimit != nil {
		if *req.StorageLimit < 0 {
			return nil, fmt.Errorf("%w: storage limit must be non-negative", types.ErrInvalidInput)
		}

		updates["storage_limit"] = *req.StorageLimit
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), configs.GetConfig().Auth.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}

		updates["password_hash"] = string(hash)
	}

	if len(updates) == 0 {
		info := userInfo(&user)

		return &info, nil
	}

	if err := s.gdb(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	info := userInfo(&user)

	return &info, nil
}

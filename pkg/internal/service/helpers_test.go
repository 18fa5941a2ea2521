package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/drivevault/pkg/configs"
	appctx "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/storage"
	dbc "github.com/yeisme/drivevault/pkg/internal/storage/db"
	kvc "github.com/yeisme/drivevault/pkg/internal/storage/kv"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

const testStorageLimit = 1 << 30

// newTestContext 构造一个带内存 SQLite 与内存 KV 的请求上下文.
func newTestContext(t *testing.T) context.Context {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// 内存库随连接生灭，限制连接数避免分裂成多个库
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&model.User{}, &model.Folder{}, &model.File{},
		&model.Permission{}, &model.ShareLink{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := kvc.NewKVStore(context.Background(), kvc.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("create memory kv: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	conf := configs.GetConfig()
	conf.Auth.BcryptCost = bcrypt.MinCost
	conf.Auth.SessionTTL = 60
	conf.Auth.SessionKeyPrefix = "sess"
	conf.KV.ShareTTL = 60
	conf.Quota.Enforce = false
	conf.Quota.DefaultStorageLimit = testStorageLimit
	conf.Quota.MaxUploadSize = 0

	mgr := &storage.Manager{
		DB: &dbc.Client{DB: gdb},
		KV: &kvc.Client{KVStore: store},
	}

	return appctx.WithStorageManager(context.Background(), mgr)
}

// rawDB 直接访问测试库，用于构造服务层不允许的状态.
func rawDB(t *testing.T, ctx context.Context) *gorm.DB {
	t.Helper()

	c := appctx.GetDBClient(ctx)
	if c == nil {
		t.Fatal("db client missing from context")
	}

	return c.GetDB()
}

// seedUser 创建一个已激活用户并返回其 ID.
func seedUser(t *testing.T, ctx context.Context, username string) uint {
	t.Helper()

	u := model.User{
		Username:     username,
		PasswordHash: "x",
		Role:         model.RoleUser,
		Active:       true,
		StorageLimit: testStorageLimit,
	}
	if err := rawDB(t, ctx).Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}

	return u.ID
}

// mkFolder 通过服务层创建文件夹.
func mkFolder(t *testing.T, ctx context.Context, userID uint, name string, parent *uint) *types.FolderInfo {
	t.Helper()

	svc := service.NewFolderService(ctx)

	info, err := svc.Create(ctx, userID, &types.CreateFolderRequest{Name: name, ParentID: parent})
	if err != nil {
		t.Fatalf("create folder %s: %v", name, err)
	}

	return info
}

// mkFile 通过服务层上传文件，内容即 content.
func mkFile(t *testing.T, ctx context.Context, userID, folderID uint, name, content string) *types.FileInfo {
	t.Helper()

	svc := service.NewFileService(ctx)

	info, err := svc.Upload(ctx, userID,
		&types.UploadFileRequest{FolderID: folderID, Name: name},
		strings.NewReader(content), int64(len(content)), "text/plain")
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}

	return info
}

// grant 通过 DB 直接写入授权记录，绕过授权者权限检查.
func grant(t *testing.T, ctx context.Context, userID uint, target types.TargetRef, level types.AccessLevel) {
	t.Helper()

	p := model.Permission{
		UserID:     userID,
		TargetKind: target.Kind,
		TargetID:   target.ID,
		Level:      level.String(),
	}
	if err := rawDB(t, ctx).Create(&p).Error; err != nil {
		t.Fatalf("grant: %v", err)
	}
}

// ptr 返回值的指针，测试里构造可选字段用.
func ptr[T any](v T) *T { return &v }

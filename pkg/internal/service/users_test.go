package service_test

import (
	"errors"
	"testing"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	ctx := newTestContext(t)

	users := service.NewUserService(ctx)

	first, err := users.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("register first: %v", err)
	}

	if first.Role != "admin" || !first.Active {
		t.Fatalf("first user = %+v, want active admin", first)
	}

	second, err := users.Register(ctx, &types.RegisterRequest{Username: "bob", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}

	if second.Role != "user" || second.Active {
		t.Fatalf("second user = %+v, want inactive user", second)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ctx := newTestContext(t)

	users := service.NewUserService(ctx)

	if _, err := users.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "secret-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := users.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "other-pass"})
	if !errors.Is(err, types.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestLoginAndLogout(t *testing.T) {
	ctx := newTestContext(t)

	users := service.NewUserService(ctx)

	reg, err := users.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := users.Login(ctx, &types.LoginRequest{Username: "alice", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if resp.UserID != reg.UserID || resp.Token == "" {
		t.Fatalf("login resp = %+v", resp)
	}

	if err := users.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := newTestContext(t)

	users := service.NewUserService(ctx)

	if _, err := users.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "secret-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := users.Login(ctx, &types.LoginRequest{Username: "alice", Password: "wrong"})
	if !errors.Is(err, types.ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}

	// 不存在的用户与口令错误不可区分
	_, err = users.Login(ctx, &types.LoginRequest{Username: "ghost", Password: "whatever"})
	if !errors.Is(err, types.ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	ctx := newTestContext(t)

	users := service.NewUserService(ctx)

	if _, err := users.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "secret-pass"}); err != nil {
		t.Fatalf("register first: %v", err)
	}

	if _, err := users.Register(ctx, &types.RegisterRequest{Username: "bob", Password: "secret-pass"}); err != nil {
		t.Fatalf("register second: %v", err)
	}

	// 未激活按凭证问题处理，而不是权限问题
	_, err := users.Login(ctx, &types.LoginRequest{Username: "bob", Password: "secret-pass"})
	if !errors.Is(err, types.ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestAdminActivatesUser(t *testing.T) {
	ctx := newTestContext(t)

	users := service.NewUserService(ctx)

	if _, err := users.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "secret-pass"}); err != nil {
		t.Fatalf("register first: %v", err)
	}

	bob, err := users.Register(ctx, &types.RegisterRequest{Username: "bob", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}

	info, err := users.Update(ctx, bob.UserID, &types.UpdateUserRequest{Active: ptr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !info.Active {
		t.Fatalf("user still inactive: %+v", info)
	}

	if _, err := users.Login(ctx, &types.LoginRequest{Username: "bob", Password: "secret-pass"}); err != nil {
		t.Fatalf("login after activation: %v", err)
	}
}

func TestQuotaInfo(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	folder := mkFolder(t, ctx, owner, "docs", nil)
	mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	users := service.NewUserService(ctx)

	q, err := users.Quota(ctx, owner)
	if err != nil {
		t.Fatalf("quota: %v", err)
	}

	if q.StorageUsed != int64(len("hello")) {
		t.Fatalf("used = %d, want %d", q.StorageUsed, len("hello"))
	}

	if q.Available != q.StorageLimit-q.StorageUsed {
		t.Fatalf("available = %d, want %d", q.Available, q.StorageLimit-q.StorageUsed)
	}
}

func TestListUsers(t *testing.T) {
	ctx := newTestContext(t)
	seedUser(t, ctx, "alice")
	seedUser(t, ctx, "bob")

	users := service.NewUserService(ctx)

	resp, err := users.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if resp.Total != 2 || len(resp.Users) != 2 {
		t.Fatalf("resp = %+v, want 2 users", resp)
	}
}

package service_test

import (
	"errors"
	"testing"

	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestCreateAndListFolders(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	top := mkFolder(t, ctx, owner, "docs", nil)
	sub := mkFolder(t, ctx, owner, "reports", ptr(top.ID))
	mkFile(t, ctx, owner, top.ID, "readme.md", "hi")

	svc := service.NewFolderService(ctx)

	listing, err := svc.List(ctx, owner, top.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(listing.SubFolders) != 1 || listing.SubFolders[0].ID != sub.ID {
		t.Fatalf("sub folders = %+v, want [%d]", listing.SubFolders, sub.ID)
	}

	if len(listing.Files) != 1 || listing.Files[0].Name != "readme.md" {
		t.Fatalf("files = %+v, want [readme.md]", listing.Files)
	}

	rootListing, err := svc.List(ctx, owner, 0)
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if len(rootListing.SubFolders) != 1 || rootListing.SubFolders[0].ID != top.ID {
		t.Fatalf("root folders = %+v, want [%d]", rootListing.SubFolders, top.ID)
	}
}

func TestCreateFolderNameConflict(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	top := mkFolder(t, ctx, owner, "docs", nil)
	mkFolder(t, ctx, owner, "sub", ptr(top.ID))

	svc := service.NewFolderService(ctx)

	_, err := svc.Create(ctx, owner, &types.CreateFolderRequest{Name: "sub", ParentID: ptr(top.ID)})
	if !errors.Is(err, types.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	// 同名文件也算冲突
	mkFile(t, ctx, owner, top.ID, "report", "x")

	_, err = svc.Create(ctx, owner, &types.CreateFolderRequest{Name: "report", ParentID: ptr(top.ID)})
	if !errors.Is(err, types.ErrConflict) {
		t.Fatalf("err = %v, want conflict with file name", err)
	}
}

func TestRenameFolder(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	top := mkFolder(t, ctx, owner, "docs", nil)

	svc := service.NewFolderService(ctx)

	info, err := svc.Rename(ctx, owner, top.ID, "archive")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}

	if info.Name != "archive" {
		t.Fatalf("name = %s, want archive", info.Name)
	}
}

func TestMoveFolderRejectsCycle(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	top := mkFolder(t, ctx, owner, "top", nil)
	mid := mkFolder(t, ctx, owner, "mid", ptr(top.ID))
	leaf := mkFolder(t, ctx, owner, "leaf", ptr(mid.ID))

	svc := service.NewFolderService(ctx)

	// 移入自己的后代
	if _, err := svc.Move(ctx, owner, top.ID, ptr(leaf.ID)); !errors.Is(err, types.ErrConflict) {
		t.Fatalf("move into descendant: err = %v, want conflict", err)
	}

	// 移入自身
	if _, err := svc.Move(ctx, owner, top.ID, ptr(top.ID)); !errors.Is(err, types.ErrConflict) {
		t.Fatalf("move into itself: err = %v, want conflict", err)
	}

	// 合法移动
	info, err := svc.Move(ctx, owner, leaf.ID, ptr(top.ID))
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if info.ParentID == nil || *info.ParentID != top.ID {
		t.Fatalf("parent = %v, want %d", info.ParentID, top.ID)
	}
}

func TestMoveFolderPermissions(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	src := mkFolder(t, ctx, owner, "src", nil)
	dst := mkFolder(t, ctx, owner, "dst", nil)

	svc := service.NewFolderService(ctx)

	// 仅 read 不足以移动
	grant(t, ctx, other, types.FolderRef(src.ID), types.AccessRead)
	grant(t, ctx, other, types.FolderRef(dst.ID), types.AccessEdit)

	if _, err := svc.Move(ctx, other, src.ID, ptr(dst.ID)); !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}

	// 源和目标各有 edit 即可移动
	if _, err := service.NewShareService(ctx).Grant(ctx, owner, &types.GrantRequest{
		UserID: other, Target: types.FolderRef(src.ID), Level: types.AccessEdit,
	}); err != nil {
		t.Fatalf("upgrade grant: %v", err)
	}

	info, err := svc.Move(ctx, other, src.ID, ptr(dst.ID))
	if err != nil {
		t.Fatalf("move with edit: %v", err)
	}

	if info.ParentID == nil || *info.ParentID != dst.ID {
		t.Fatalf("parent = %v, want %d", info.ParentID, dst.ID)
	}
}

func TestEditGranteeCanTrashSharedContent(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	top := mkFolder(t, ctx, owner, "top", nil)
	sub := mkFolder(t, ctx, owner, "sub", ptr(top.ID))
	file := mkFile(t, ctx, owner, top.ID, "a.txt", "a")

	grant(t, ctx, other, types.FolderRef(top.ID), types.AccessEdit)

	folders := service.NewFolderService(ctx)
	files := service.NewFileService(ctx)

	// 继承的 edit 授权允许移动与软删除
	if _, err := files.Move(ctx, other, file.ID, sub.ID); err != nil {
		t.Fatalf("move file with inherited edit: %v", err)
	}

	if err := files.Delete(ctx, other, file.ID); err != nil {
		t.Fatalf("delete file with inherited edit: %v", err)
	}

	if err := folders.Delete(ctx, other, sub.ID); err != nil {
		t.Fatalf("delete folder with inherited edit: %v", err)
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	top := mkFolder(t, ctx, owner, "top", nil)
	sub := mkFolder(t, ctx, owner, "sub", ptr(top.ID))
	f1 := mkFile(t, ctx, owner, top.ID, "a.txt", "a")
	f2 := mkFile(t, ctx, owner, sub.ID, "b.txt", "bb")

	svc := service.NewFolderService(ctx)

	if err := svc.Delete(ctx, owner, top.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	db := rawDB(t, ctx)

	var liveFolders, liveFiles int64
	if err := db.Model(&model.Folder{}).Count(&liveFolders).Error; err != nil {
		t.Fatalf("count folders: %v", err)
	}

	if err := db.Model(&model.File{}).Count(&liveFiles).Error; err != nil {
		t.Fatalf("count files: %v", err)
	}

	// 根目录保持活跃，级联只触及 top 子树
	if liveFolders != 1 || liveFiles != 0 {
		t.Fatalf("live folders=%d files=%d, want 1/0", liveFolders, liveFiles)
	}

	// 软删除保留行
	var all int64
	if err := db.Unscoped().Model(&model.File{}).Count(&all).Error; err != nil {
		t.Fatalf("count unscoped: %v", err)
	}

	if all != 2 {
		t.Fatalf("unscoped files = %d, want 2", all)
	}

	// 级联删除不退配额
	var u model.User
	if err := db.First(&u, owner).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	want := f1.Size + f2.Size
	if u.StorageUsed != want {
		t.Fatalf("storage used = %d, want %d", u.StorageUsed, want)
	}

	if _, err := svc.Get(ctx, owner, sub.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("get deleted folder: err = %v, want not found", err)
	}
}

func TestRootFolderCreatedAtRegistration(t *testing.T) {
	ctx := newTestContext(t)

	users := service.NewUserService(ctx)

	reg, err := users.Register(ctx, &types.RegisterRequest{Username: "alice", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc := service.NewFolderService(ctx)

	listing, err := svc.List(ctx, reg.UserID, 0)
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if listing.Folder == nil || listing.Folder.Name != service.RootFolderName {
		t.Fatalf("root listing folder = %+v, want %q", listing.Folder, service.RootFolderName)
	}

	if listing.Folder.ParentID != nil {
		t.Fatalf("root parent = %v, want nil", listing.Folder.ParentID)
	}
}

func TestRootFolderImmutable(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	svc := service.NewFolderService(ctx)

	listing, err := svc.List(ctx, owner, 0)
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	rootID := listing.Folder.ID

	if _, err := svc.Rename(ctx, owner, rootID, "renamed"); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("rename root err = %v, want ErrInvalidInput", err)
	}

	sub := mkFolder(t, ctx, owner, "docs", nil)

	if _, err := svc.Move(ctx, owner, rootID, ptr(sub.ID)); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("move root err = %v, want ErrInvalidInput", err)
	}

	if err := svc.Delete(ctx, owner, rootID); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("delete root err = %v, want ErrInvalidInput", err)
	}
}

func TestMoveFolderToRootByNilTarget(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	svc := service.NewFolderService(ctx)

	top := mkFolder(t, ctx, owner, "top", nil)
	sub := mkFolder(t, ctx, owner, "sub", ptr(top.ID))

	info, err := svc.Move(ctx, owner, sub.ID, nil)
	if err != nil {
		t.Fatalf("move to root: %v", err)
	}

	if info.ParentID == nil || *info.ParentID != *top.ParentID {
		t.Fatalf("moved parent = %v, want root %v", info.ParentID, top.ParentID)
	}
}

package service_test

import (
	"errors"
	"testing"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestUploadIncrementsQuota(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	folder := mkFolder(t, ctx, owner, "docs", nil)

	mkFile(t, ctx, owner, folder.ID, "a.txt", "hello world")

	var u model.User
	if err := rawDB(t, ctx).First(&u, owner).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	if u.StorageUsed != int64(len("hello world")) {
		t.Fatalf("storage used = %d, want %d", u.StorageUsed, len("hello world"))
	}
}

func TestUploadQuotaExceeded(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	folder := mkFolder(t, ctx, owner, "docs", nil)

	conf := configs.GetConfig()
	conf.Quota.Enforce = true
	t.Cleanup(func() { conf.Quota.Enforce = false })

	if err := rawDB(t, ctx).Model(&model.User{}).
		Where("id = ?", owner).Update("storage_limit", 10).Error; err != nil {
		t.Fatalf("set limit: %v", err)
	}

	mkFile(t, ctx, owner, folder.ID, "small.txt", "12345678")

	svc := service.NewFileService(ctx)

	_, err := svc.Upload(ctx, owner,
		&types.UploadFileRequest{FolderID: folder.ID, Name: "big.txt"},
		nil, 8, "text/plain")
	if !errors.Is(err, types.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want quota exceeded", err)
	}

	// 拒绝的上传不占配额，也不留元数据
	var u model.User
	if err := rawDB(t, ctx).First(&u, owner).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	if u.StorageUsed != 8 {
		t.Fatalf("storage used = %d, want 8", u.StorageUsed)
	}

	var count int64
	if err := rawDB(t, ctx).Model(&model.File{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}

	if count != 1 {
		t.Fatalf("files = %d, want 1", count)
	}
}

func TestUploadNameConflict(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	folder := mkFolder(t, ctx, owner, "docs", nil)

	mkFile(t, ctx, owner, folder.ID, "a.txt", "x")

	svc := service.NewFileService(ctx)

	_, err := svc.Upload(ctx, owner,
		&types.UploadFileRequest{FolderID: folder.ID, Name: "a.txt"},
		nil, 1, "text/plain")
	if !errors.Is(err, types.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestUploadSizeLimit(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	folder := mkFolder(t, ctx, owner, "docs", nil)

	conf := configs.GetConfig()
	conf.Quota.MaxUploadSize = 4
	t.Cleanup(func() { conf.Quota.MaxUploadSize = 0 })

	svc := service.NewFileService(ctx)

	_, err := svc.Upload(ctx, owner,
		&types.UploadFileRequest{FolderID: folder.ID, Name: "big.bin"},
		nil, 5, "application/octet-stream")
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestRenameFileRequiresEdit(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	reader := seedUser(t, ctx, "bob")
	editor := seedUser(t, ctx, "carol")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "x")

	grant(t, ctx, reader, types.FileRef(file.ID), types.AccessRead)
	grant(t, ctx, editor, types.FileRef(file.ID), types.AccessEdit)

	svc := service.NewFileService(ctx)

	if _, err := svc.Rename(ctx, reader, file.ID, "b.txt"); !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("reader rename: err = %v, want forbidden", err)
	}

	info, err := svc.Rename(ctx, editor, file.ID, "b.txt")
	if err != nil {
		t.Fatalf("editor rename: %v", err)
	}

	if info.Name != "b.txt" {
		t.Fatalf("name = %s, want b.txt", info.Name)
	}
}

func TestMoveFile(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	src := mkFolder(t, ctx, owner, "src", nil)
	dst := mkFolder(t, ctx, owner, "dst", nil)
	file := mkFile(t, ctx, owner, src.ID, "a.txt", "x")
	mkFile(t, ctx, owner, dst.ID, "a.txt", "y")

	svc := service.NewFileService(ctx)

	// 目标目录已有同名文件
	if _, err := svc.Move(ctx, owner, file.ID, dst.ID); !errors.Is(err, types.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	other := mkFolder(t, ctx, owner, "other", nil)

	info, err := svc.Move(ctx, owner, file.ID, other.ID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if info.FolderID != other.ID {
		t.Fatalf("folder = %d, want %d", info.FolderID, other.ID)
	}
}

func TestGetFileVisibility(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "x")

	svc := service.NewFileService(ctx)

	if _, err := svc.Get(ctx, other, file.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	grant(t, ctx, other, types.FolderRef(folder.ID), types.AccessRead)

	info, err := svc.Get(ctx, other, file.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if info.ID != file.ID {
		t.Fatalf("id = %d, want %d", info.ID, file.ID)
	}
}

func TestUploadToRootByZeroFolder(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	file := mkFile(t, ctx, owner, 0, "inbox.txt", "hello")

	folders := service.NewFolderService(ctx)

	listing, err := folders.List(ctx, owner, 0)
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if file.FolderID != listing.Folder.ID {
		t.Fatalf("file folder = %d, want root %d", file.FolderID, listing.Folder.ID)
	}

	if len(listing.Files) != 1 || listing.Files[0].ID != file.ID {
		t.Fatalf("root files = %+v, want [%d]", listing.Files, file.ID)
	}
}

func TestMoveFileToRootByZeroTarget(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "notes.txt", "x")

	svc := service.NewFileService(ctx)

	moved, err := svc.Move(ctx, owner, file.ID, 0)
	if err != nil {
		t.Fatalf("move to root: %v", err)
	}

	if moved.FolderID == file.FolderID {
		t.Fatal("file did not leave its folder")
	}

	if moved.FolderID != *folder.ParentID {
		t.Fatalf("file folder = %d, want root %d", moved.FolderID, *folder.ParentID)
	}
}

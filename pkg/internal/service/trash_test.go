package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestTrashListAndRestoreFile(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	files := service.NewFileService(ctx)
	trash := service.NewTrashService(ctx)

	if err := files.Delete(ctx, owner, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	resp, err := trash.List(ctx, owner)
	if err != nil {
		t.Fatalf("list trash: %v", err)
	}

	if len(resp.Entries) != 1 || resp.Entries[0].Target.ID != file.ID {
		t.Fatalf("entries = %+v, want file %d", resp.Entries, file.ID)
	}

	// 回收站中的文件仍占配额
	var u model.User
	if err := rawDB(t, ctx).First(&u, owner).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	if u.StorageUsed != int64(len("hello")) {
		t.Fatalf("storage used = %d, want %d", u.StorageUsed, len("hello"))
	}

	if err := trash.RestoreFile(ctx, owner, file.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if _, err := files.Get(ctx, owner, file.ID); err != nil {
		t.Fatalf("get restored: %v", err)
	}
}

func TestRestoreFileRequiresLiveParent(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "x")

	folders := service.NewFolderService(ctx)
	trash := service.NewTrashService(ctx)

	if err := folders.Delete(ctx, owner, folder.ID); err != nil {
		t.Fatalf("delete folder: %v", err)
	}

	if err := trash.RestoreFile(ctx, owner, file.ID); !errors.Is(err, types.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

// 级联恢复只带回随本次删除进回收站的内容，更早删除的条目留在回收站.
func TestRestoreFolderCascadeCutoff(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	top := mkFolder(t, ctx, owner, "top", nil)
	sub := mkFolder(t, ctx, owner, "sub", ptr(top.ID))
	early := mkFile(t, ctx, owner, sub.ID, "early.txt", "e")
	late := mkFile(t, ctx, owner, sub.ID, "late.txt", "l")

	files := service.NewFileService(ctx)
	folders := service.NewFolderService(ctx)
	trash := service.NewTrashService(ctx)

	if err := files.Delete(ctx, owner, early.ID); err != nil {
		t.Fatalf("delete early: %v", err)
	}

	// 两次删除需要可区分的时间戳
	time.Sleep(10 * time.Millisecond)

	if err := folders.Delete(ctx, owner, top.ID); err != nil {
		t.Fatalf("delete top: %v", err)
	}

	if err := trash.RestoreFolder(ctx, owner, top.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if _, err := files.Get(ctx, owner, late.ID); err != nil {
		t.Fatalf("late file should be restored: %v", err)
	}

	if _, err := files.Get(ctx, owner, early.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("early file should stay in trash, err = %v", err)
	}

	if _, err := folders.Get(ctx, owner, sub.ID); err != nil {
		t.Fatalf("sub folder should be restored: %v", err)
	}
}

func TestPurgeFileReclaimsQuota(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	files := service.NewFileService(ctx)
	trash := service.NewTrashService(ctx)

	if err := files.Delete(ctx, owner, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := trash.PurgeFile(ctx, owner, file.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	var u model.User
	if err := rawDB(t, ctx).First(&u, owner).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	if u.StorageUsed != 0 {
		t.Fatalf("storage used = %d, want 0", u.StorageUsed)
	}

	// 行被物理删除
	var count int64
	if err := rawDB(t, ctx).Unscoped().Model(&model.File{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}

	if count != 0 {
		t.Fatalf("rows = %d, want 0", count)
	}
}

func TestPurgeFolderRemovesSubtree(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	top := mkFolder(t, ctx, owner, "top", nil)
	sub := mkFolder(t, ctx, owner, "sub", ptr(top.ID))
	mkFile(t, ctx, owner, sub.ID, "a.txt", "aaaa")

	folders := service.NewFolderService(ctx)
	trash := service.NewTrashService(ctx)

	if err := folders.Delete(ctx, owner, top.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := trash.PurgeFolder(ctx, owner, top.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	db := rawDB(t, ctx)

	var folderRows, fileRows int64
	if err := db.Unscoped().Model(&model.Folder{}).Count(&folderRows).Error; err != nil {
		t.Fatalf("count folders: %v", err)
	}

	if err := db.Unscoped().Model(&model.File{}).Count(&fileRows).Error; err != nil {
		t.Fatalf("count files: %v", err)
	}

	// 仅根目录存活
	if folderRows != 1 || fileRows != 0 {
		t.Fatalf("rows folders=%d files=%d, want 1/0", folderRows, fileRows)
	}

	var u model.User
	if err := db.First(&u, owner).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	if u.StorageUsed != 0 {
		t.Fatalf("storage used = %d, want 0", u.StorageUsed)
	}
}

func TestTrashOperationsAreOwnerOnly(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "x")

	grant(t, ctx, other, types.FileRef(file.ID), types.AccessDelete)

	files := service.NewFileService(ctx)
	trash := service.NewTrashService(ctx)

	if err := files.Delete(ctx, other, file.ID); err != nil {
		t.Fatalf("grantee delete: %v", err)
	}

	// 授权不延伸到回收站
	if err := trash.RestoreFile(ctx, other, file.ID); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	if err := trash.RestoreFile(ctx, owner, file.ID); err != nil {
		t.Fatalf("owner restore: %v", err)
	}
}

func TestPurgeActiveItems(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	top := mkFolder(t, ctx, owner, "top", nil)
	sub := mkFolder(t, ctx, owner, "sub", ptr(top.ID))
	file := mkFile(t, ctx, owner, top.ID, "a.txt", "hello")
	mkFile(t, ctx, owner, sub.ID, "b.txt", "world")

	trash := service.NewTrashService(ctx)

	// 恢复不是清除的前置条件：活跃条目可直接清除
	if err := trash.PurgeFile(ctx, owner, file.ID); err != nil {
		t.Fatalf("purge active file: %v", err)
	}

	if err := trash.PurgeFolder(ctx, owner, top.ID); err != nil {
		t.Fatalf("purge active folder: %v", err)
	}

	db := rawDB(t, ctx)

	var fileRows int64
	if err := db.Unscoped().Model(&model.File{}).Count(&fileRows).Error; err != nil {
		t.Fatalf("count files: %v", err)
	}

	if fileRows != 0 {
		t.Fatalf("file rows = %d, want 0", fileRows)
	}

	var u model.User
	if err := db.First(&u, owner).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	if u.StorageUsed != 0 {
		t.Fatalf("storage used = %d, want 0", u.StorageUsed)
	}
}

func TestPurgeRootFolderRejected(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folders := service.NewFolderService(ctx)

	listing, err := folders.List(ctx, owner, 0)
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	trash := service.NewTrashService(ctx)

	if err := trash.PurgeFolder(ctx, owner, listing.Folder.ID); !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestPurgeSharedFolderReclaimsPerOwner(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	editor := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "shared", nil)
	mkFile(t, ctx, owner, folder.ID, "mine.txt", "aaaa")

	grant(t, ctx, editor, types.FolderRef(folder.ID), types.AccessEdit)

	// 被授权者在共享文件夹里创建的文件计入其本人配额
	mkFile(t, ctx, editor, folder.ID, "theirs.txt", "bbbbbbbb")

	folders := service.NewFolderService(ctx)
	trash := service.NewTrashService(ctx)

	if err := folders.Delete(ctx, owner, folder.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := trash.PurgeFolder(ctx, owner, folder.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	db := rawDB(t, ctx)

	var ownerRow, editorRow model.User
	if err := db.First(&ownerRow, owner).Error; err != nil {
		t.Fatalf("load owner: %v", err)
	}

	if err := db.First(&editorRow, editor).Error; err != nil {
		t.Fatalf("load editor: %v", err)
	}

	// 配额按文件各自的所有者回收，互不串账
	if ownerRow.StorageUsed != 0 || editorRow.StorageUsed != 0 {
		t.Fatalf("storage used owner=%d editor=%d, want 0/0", ownerRow.StorageUsed, editorRow.StorageUsed)
	}
}

package service_test

import (
	"errors"
	"testing"

	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestOwnerHasFullAccess(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	access := service.NewAccessService(ctx)

	for _, target := range []types.TargetRef{types.FolderRef(folder.ID), types.FileRef(file.ID)} {
		level, err := access.EffectiveAccess(ctx, owner, target)
		if err != nil {
			t.Fatalf("effective access: %v", err)
		}

		if level != types.AccessDelete {
			t.Fatalf("owner level on %s = %s, want delete", target.Kind, level)
		}
	}
}

func TestDirectGrantOnFile(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	grant(t, ctx, other, types.FileRef(file.ID), types.AccessEdit)

	access := service.NewAccessService(ctx)

	level, err := access.EffectiveAccess(ctx, other, types.FileRef(file.ID))
	if err != nil {
		t.Fatalf("effective access: %v", err)
	}

	if level != types.AccessEdit {
		t.Fatalf("level = %s, want edit", level)
	}
}

func TestInheritedFromAncestorFolder(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	top := mkFolder(t, ctx, owner, "top", nil)
	sub := mkFolder(t, ctx, owner, "sub", ptr(top.ID))
	file := mkFile(t, ctx, owner, sub.ID, "a.txt", "hello")

	grant(t, ctx, other, types.FolderRef(top.ID), types.AccessRead)

	access := service.NewAccessService(ctx)

	level, err := access.EffectiveAccess(ctx, other, types.FileRef(file.ID))
	if err != nil {
		t.Fatalf("effective access: %v", err)
	}

	if level != types.AccessRead {
		t.Fatalf("level = %s, want read", level)
	}
}

// 向上收集在达到 edit 后停止，更远祖先上的 delete 不再参与.
func TestWalkStopsAtEdit(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	top := mkFolder(t, ctx, owner, "top", nil)
	mid := mkFolder(t, ctx, owner, "mid", ptr(top.ID))
	file := mkFile(t, ctx, owner, mid.ID, "a.txt", "hello")

	grant(t, ctx, other, types.FolderRef(mid.ID), types.AccessEdit)
	grant(t, ctx, other, types.FolderRef(top.ID), types.AccessDelete)

	access := service.NewAccessService(ctx)

	level, err := access.EffectiveAccess(ctx, other, types.FileRef(file.ID))
	if err != nil {
		t.Fatalf("effective access: %v", err)
	}

	if level != types.AccessEdit {
		t.Fatalf("level = %s, want edit", level)
	}
}

func TestRequireHidesInvisibleTargets(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	access := service.NewAccessService(ctx)

	err := access.Require(ctx, other, types.FileRef(file.ID), types.AccessRead)
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestRequireInsufficientLevel(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	grant(t, ctx, other, types.FileRef(file.ID), types.AccessRead)

	access := service.NewAccessService(ctx)

	err := access.Require(ctx, other, types.FileRef(file.ID), types.AccessDelete)
	if !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

// 异常深的父链按数据异常拒绝，而不是无限向上遍历.
func TestWalkDepthBound(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	db := rawDB(t, ctx)

	var parent *uint

	var topmost, deepest uint
	for i := 0; i < service.MaxTreeDepth+5; i++ {
		f := model.Folder{Name: "d", OwnerID: owner, ParentID: parent}
		if err := db.Create(&f).Error; err != nil {
			t.Fatalf("create folder: %v", err)
		}

		if i == 0 {
			topmost = f.ID
		}

		id := f.ID
		parent = &id
		deepest = f.ID
	}

	// 根上的授权在深度上限之外，向上合并到上限即停，不再计入
	grant(t, ctx, other, types.FolderRef(topmost), types.AccessEdit)
	// 途中（上限以内）的 read 授权保持有效
	grant(t, ctx, other, types.FolderRef(deepest), types.AccessRead)

	access := service.NewAccessService(ctx)

	level, err := access.EffectiveAccess(ctx, other, types.FolderRef(deepest))
	if err != nil {
		t.Fatalf("effective access: %v", err)
	}

	if level != types.AccessRead {
		t.Fatalf("level = %v, want read: out-of-bound ancestors must not contribute, in-bound grants must survive", level)
	}
}

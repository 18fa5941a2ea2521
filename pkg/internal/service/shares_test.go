package service_test

import (
	"errors"
	"testing"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestGrantAndOverwrite(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	target := types.FolderRef(folder.ID)

	shares := service.NewShareService(ctx)

	if _, err := shares.Grant(ctx, owner, &types.GrantRequest{
		UserID: other, Target: target, Level: types.AccessRead,
	}); err != nil {
		t.Fatalf("grant read: %v", err)
	}

	// 重复授权覆盖旧级别
	if _, err := shares.Grant(ctx, owner, &types.GrantRequest{
		UserID: other, Target: target, Level: types.AccessEdit,
	}); err != nil {
		t.Fatalf("grant edit: %v", err)
	}

	resp, err := shares.ListGrants(ctx, owner, target)
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}

	if len(resp.Grants) != 1 {
		t.Fatalf("grants = %d, want 1", len(resp.Grants))
	}

	if resp.Grants[0].Level != types.AccessEdit {
		t.Fatalf("level = %s, want edit", resp.Grants[0].Level)
	}
}

func TestGrantRequiresDeleteLevel(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	editor := seedUser(t, ctx, "bob")
	third := seedUser(t, ctx, "carol")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	target := types.FolderRef(folder.ID)

	grant(t, ctx, editor, target, types.AccessEdit)

	shares := service.NewShareService(ctx)

	_, err := shares.Grant(ctx, editor, &types.GrantRequest{
		UserID: third, Target: target, Level: types.AccessRead,
	})
	if !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestGrantToOwnerRejected(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folder := mkFolder(t, ctx, owner, "docs", nil)

	shares := service.NewShareService(ctx)

	_, err := shares.Grant(ctx, owner, &types.GrantRequest{
		UserID: owner, Target: types.FolderRef(folder.ID), Level: types.AccessRead,
	})
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestRevokeGrant(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	target := types.FolderRef(folder.ID)

	grant(t, ctx, other, target, types.AccessRead)

	shares := service.NewShareService(ctx)
	access := service.NewAccessService(ctx)

	if err := shares.RevokeGrant(ctx, owner, &types.RevokeGrantRequest{UserID: other, Target: target}); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	level, err := access.EffectiveAccess(ctx, other, target)
	if err != nil {
		t.Fatalf("effective access: %v", err)
	}

	if level != types.AccessNone {
		t.Fatalf("level = %s, want none", level)
	}

	// 再次撤销同一授权
	err = shares.RevokeGrant(ctx, owner, &types.RevokeGrantRequest{UserID: other, Target: target})
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestShareLinkLifecycle(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	shares := service.NewShareService(ctx)

	link, err := shares.CreateLink(ctx, owner, &types.CreateShareLinkRequest{
		Target: types.FolderRef(folder.ID),
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	resolved, err := shares.Resolve(ctx, link.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolved.Folder == nil || len(resolved.Folder.Files) != 1 || resolved.Folder.Files[0].ID != file.ID {
		t.Fatalf("resolved = %+v, want folder listing with file %d", resolved, file.ID)
	}

	list, err := shares.ListLinks(ctx, owner)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}

	if len(list.Links) != 1 || list.Links[0].Token != link.Token {
		t.Fatalf("links = %+v, want [%s]", list.Links, link.Token)
	}

	if err := shares.RevokeLink(ctx, owner, link.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := shares.Resolve(ctx, link.Token); !errors.Is(err, types.ErrGone) {
		t.Fatalf("err = %v, want gone", err)
	}
}

func TestShareLinkExpiry(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	shares := service.NewShareService(ctx)

	link, err := shares.CreateLink(ctx, owner, &types.CreateShareLinkRequest{
		Target:   types.FileRef(file.ID),
		ExpireIn: ptr(-1),
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if _, err := shares.Resolve(ctx, link.Token); !errors.Is(err, types.ErrExpired) {
		t.Fatalf("err = %v, want expired", err)
	}
}

func TestShareLinkOwnerOnly(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	target := types.FolderRef(folder.ID)

	// delete 级别的授权也不够：只有所有者能建链接
	grant(t, ctx, other, target, types.AccessDelete)

	shares := service.NewShareService(ctx)

	_, err := shares.CreateLink(ctx, other, &types.CreateShareLinkRequest{Target: target})
	if !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestRevokeGrantOwnerOnly(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")
	third := seedUser(t, ctx, "carol")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	target := types.FolderRef(folder.ID)

	grant(t, ctx, other, target, types.AccessDelete)
	grant(t, ctx, third, target, types.AccessRead)

	shares := service.NewShareService(ctx)

	// delete 级别的被授权者不能撤销他人的授权
	err := shares.RevokeGrant(ctx, other, &types.RevokeGrantRequest{UserID: third, Target: target})
	if !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestResolveDeletedTargetGone(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "a.txt", "hello")

	shares := service.NewShareService(ctx)

	link, err := shares.CreateLink(ctx, owner, &types.CreateShareLinkRequest{
		Target: types.FileRef(file.ID),
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	// 删除不级联到链接：链接仍可解析，但报告目标不再可用
	if err := service.NewFileService(ctx).Delete(ctx, owner, file.ID); err != nil {
		t.Fatalf("delete file: %v", err)
	}

	if _, err := shares.Resolve(ctx, link.Token); !errors.Is(err, types.ErrGone) {
		t.Fatalf("resolve: err = %v, want gone", err)
	}

	if _, _, err := shares.ResolveDownload(ctx, link.Token, 0); !errors.Is(err, types.ErrGone) {
		t.Fatalf("download: err = %v, want gone", err)
	}
}

func TestRevokeLinkOnlyCreator(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)

	shares := service.NewShareService(ctx)

	link, err := shares.CreateLink(ctx, owner, &types.CreateShareLinkRequest{
		Target: types.FolderRef(folder.ID),
	})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if err := shares.RevokeLink(ctx, other, link.Token); !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	ctx := newTestContext(t)
	seedUser(t, ctx, "alice")

	shares := service.NewShareService(ctx)

	if _, err := shares.Resolve(ctx, "sl_missing"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListSharedWithMe(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	grantee := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	file := mkFile(t, ctx, owner, folder.ID, "plan.txt", "x")

	grant(t, ctx, grantee, types.FolderRef(folder.ID), types.AccessRead)
	grant(t, ctx, grantee, types.FileRef(file.ID), types.AccessEdit)

	svc := service.NewShareService(ctx)

	resp, err := svc.ListSharedWithMe(ctx, grantee)
	if err != nil {
		t.Fatalf("list shared: %v", err)
	}

	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %+v, want 2", resp.Entries)
	}

	for _, e := range resp.Entries {
		if e.OwnerID != owner {
			t.Fatalf("entry owner = %d, want %d", e.OwnerID, owner)
		}
	}

	// 目标被软删除后不再出现
	if err := service.NewFileService(ctx).Delete(ctx, owner, file.ID); err != nil {
		t.Fatalf("delete file: %v", err)
	}

	resp, err = svc.ListSharedWithMe(ctx, grantee)
	if err != nil {
		t.Fatalf("list shared after delete: %v", err)
	}

	if len(resp.Entries) != 1 || !resp.Entries[0].Target.IsFolder() {
		t.Fatalf("entries = %+v, want only the folder", resp.Entries)
	}
}

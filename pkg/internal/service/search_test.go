package service_test

import (
	"testing"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestSearchOwnEntries(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folder := mkFolder(t, ctx, owner, "Project Notes", nil)
	mkFile(t, ctx, owner, folder.ID, "meeting-notes.txt", "x")
	mkFile(t, ctx, owner, folder.ID, "budget.xlsx", "y")

	search := service.NewSearchService(ctx)

	resp, err := search.Search(ctx, owner, &types.SearchRequest{Query: "NOTES"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(resp.Folders) != 1 || resp.Folders[0].ID != folder.ID {
		t.Fatalf("folders = %+v, want [%d]", resp.Folders, folder.ID)
	}

	if len(resp.Files) != 1 || resp.Files[0].Name != "meeting-notes.txt" {
		t.Fatalf("files = %+v, want [meeting-notes.txt]", resp.Files)
	}

	// 所有者对命中条目的级别是 delete
	if resp.Folders[0].Level != types.AccessDelete || resp.Files[0].Level != types.AccessDelete {
		t.Fatalf("levels = %s/%s, want delete/delete", resp.Folders[0].Level, resp.Files[0].Level)
	}
}

func TestSearchInvisibleToStrangers(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	folder := mkFolder(t, ctx, owner, "notes", nil)
	mkFile(t, ctx, owner, folder.ID, "notes.txt", "x")

	search := service.NewSearchService(ctx)

	resp, err := search.Search(ctx, other, &types.SearchRequest{Query: "notes"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(resp.Folders) != 0 || len(resp.Files) != 0 {
		t.Fatalf("resp = %+v, want empty", resp)
	}
}

func TestSearchGrantedFolderSubtree(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")
	other := seedUser(t, ctx, "bob")

	top := mkFolder(t, ctx, owner, "shared-root", nil)
	sub := mkFolder(t, ctx, owner, "shared-sub", ptr(top.ID))
	mkFile(t, ctx, owner, sub.ID, "shared-file.txt", "x")

	grant(t, ctx, other, types.FolderRef(top.ID), types.AccessRead)

	search := service.NewSearchService(ctx)

	resp, err := search.Search(ctx, other, &types.SearchRequest{Query: "shared"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(resp.Files) != 1 || resp.Files[0].Name != "shared-file.txt" {
		t.Fatalf("files = %+v, want [shared-file.txt]", resp.Files)
	}

	if len(resp.Folders) != 2 {
		t.Fatalf("folders = %+v, want both shared folders", resp.Folders)
	}

	// 继承授权的级别标注在每条结果上
	if resp.Files[0].Level != types.AccessRead {
		t.Fatalf("file level = %s, want read", resp.Files[0].Level)
	}

	for _, m := range resp.Folders {
		if m.Level != types.AccessRead {
			t.Fatalf("folder %q level = %s, want read", m.Name, m.Level)
		}
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	ctx := newTestContext(t)
	owner := seedUser(t, ctx, "alice")

	folder := mkFolder(t, ctx, owner, "docs", nil)
	mkFile(t, ctx, owner, folder.ID, "100%.txt", "x")
	mkFile(t, ctx, owner, folder.ID, "100x.txt", "y")

	search := service.NewSearchService(ctx)

	resp, err := search.Search(ctx, owner, &types.SearchRequest{Query: "100%"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(resp.Files) != 1 || resp.Files[0].Name != "100%.txt" {
		t.Fatalf("files = %+v, want [100%%.txt]", resp.Files)
	}
}

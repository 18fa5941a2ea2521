package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// DefaultSearchLimit 未指定时单类结果的数量上限.
const DefaultSearchLimit = 50

// SearchService 按名称子串检索请求方可见的条目.
// 可见范围：自己拥有的、被直接授权的，以及被授权文件夹子树内的内容.
type SearchService struct {
	*Service
	access *AccessService
}

// NewSearchService 创建并返回一个新的 SearchService 实例.
func NewSearchService(c context.Context) *SearchService {
	base := NewService(c)

	return &SearchService{Service: base, access: &AccessService{base}}
}

// grantedFolderIDs 收集用户被直接授权的文件夹及其全部子文件夹 ID.
// 子树展开与其他树遍历一样受最大深度约束.
func (s *SearchService) grantedFolderIDs(ctx context.Context, userID uint) ([]uint, error) {
	var roots []uint
	if err := s.gdb(ctx).Model(&model.Permission{}).
		Where("user_id = ? AND target_kind = ?", userID, model.TargetFolder).
		Pluck("target_id", &roots).Error; err != nil {
		return nil, err
	}

	if len(roots) == 0 {
		return nil, nil
	}

	all := make([]uint, 0, DefaultSliceCapacity)
	frontier := roots

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= MaxTreeDepth {
			break
		}

		all = append(all, frontier...)

		var next []uint
		if err := s.gdb(ctx).Model(&model.Folder{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error; err != nil {
			return nil, err
		}

		frontier = next
	}

	return all, nil
}

// grantedFileIDs 收集用户被直接授权的文件 ID.
func (s *SearchService) grantedFileIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := s.gdb(ctx).Model(&model.Permission{}).
		Where("user_id = ? AND target_kind = ?", userID, model.TargetFile).
		Pluck("target_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

// visibleScope 应用可见性过滤：自己拥有的，或落在授权范围内的.
func visibleScope(q *gorm.DB, userID uint, grantedFolders, grantedSelf []uint, selfCol string) *gorm.DB {
	cond := q.Where("owner_id = ?", userID)

	if len(grantedFolders) > 0 {
		cond = cond.Or("folder_id IN ?", grantedFolders)
	}

	if len(grantedSelf) > 0 {
		cond = cond.Or(selfCol+" IN ?", grantedSelf)
	}

	return cond
}

// Search 并发检索文件与文件夹名称中的子串，匹配不区分大小写.
// 每条结果附带解析出的有效访问级别，供客户端决定可用操作.
func (s *SearchService) Search(ctx context.Context, userID uint, req *types.SearchRequest) (*types.SearchResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	pattern := "%" + escapeLike(strings.ToLower(req.Query)) + "%"

	grantedFolders, err := s.grantedFolderIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	grantedFiles, err := s.grantedFileIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &types.SearchResponse{
		Folders: make([]types.SearchFolderMatch, 0, DefaultSliceCapacity),
		Files:   make([]types.SearchFileMatch, 0, DefaultSliceCapacity),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var folders []model.Folder

		q := s.gdb(gctx).Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern)
		q = q.Where(
			s.gdb(gctx).Where("owner_id = ?", userID).
				Or(folderScope(s.gdb(gctx), grantedFolders)),
		)

		if err := q.Order("name").Limit(limit).Find(&folders).Error; err != nil {
			return err
		}

		for i := range folders {
			level, err := s.access.EffectiveAccess(gctx, userID, types.FolderRef(folders[i].ID))
			if err != nil {
				return err
			}

			resp.Folders = append(resp.Folders, types.SearchFolderMatch{
				FolderInfo: folderInfo(&folders[i]),
				Level:      level,
			})
		}

		return nil
	})

	g.Go(func() error {
		var files []model.File

		q := s.gdb(gctx).Where("LOWER(name) LIKE ? ESCAPE '\\'", pattern)
		q = q.Where(visibleScope(s.gdb(gctx), userID, grantedFolders, grantedFiles, "id"))

		if err := q.Order("name").Limit(limit).Find(&files).Error; err != nil {
			return err
		}

		for i := range files {
			level, err := s.access.EffectiveAccess(gctx, userID, types.FileRef(files[i].ID))
			if err != nil {
				return err
			}

			resp.Files = append(resp.Files, types.SearchFileMatch{
				FileInfo: fileInfo(&files[i]),
				Level:    level,
			})
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return resp, nil
}

// folderScope 文件夹可见性：自身被授权，或位于被授权子树内（父链已在展开时包含）.
func folderScope(q *gorm.DB, grantedFolders []uint) *gorm.DB {
	if len(grantedFolders) == 0 {
		// 恒假条件，保持查询结构统一
		return q.Where("1 = 0")
	}

	return q.Where("id IN ? OR parent_id IN ?", grantedFolders, grantedFolders)
}

// escapeLike 转义 LIKE 模式中的通配符.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	return r.Replace(s)
}

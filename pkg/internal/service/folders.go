package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/queue"
)

// FolderService 负责目录树的增删改查与级联变更.
type FolderService struct {
	*Service
	access *AccessService
}

// NewFolderService 创建并返回一个新的 FolderService 实例.
func NewFolderService(c context.Context) *FolderService {
	base := NewService(c)

	return &FolderService{Service: base, access: &AccessService{base}}
}

// folderInfo 转换为 DTO.
func folderInfo(f *model.Folder) types.FolderInfo {
	return types.FolderInfo{
		ID:        f.ID,
		Name:      f.Name,
		OwnerID:   f.OwnerID,
		ParentID:  f.ParentID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// fileInfo 转换为 DTO.
func fileInfo(f *model.File) types.FileInfo {
	return types.FileInfo{
		ID:          f.ID,
		Name:        f.Name,
		OwnerID:     f.OwnerID,
		FolderID:    f.FolderID,
		Size:        f.Size,
		ContentType: f.ContentType,
		ETag:        f.ETag,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// getFolder 读取未删除的文件夹.
func (s *FolderService) getFolder(ctx context.Context, id uint) (*model.Folder, error) {
	var f model.Folder
	if err := s.gdb(ctx).First(&f, id).Error; err != nil {
		return nil, wrapLookup(err)
	}

	return &f, nil
}

// RootFolderName 每个用户唯一的顶层目录名，注册时创建.
const RootFolderName = "Root"

// ensureRoot 取出用户的根目录（parent 为 NULL 的唯一文件夹）.
// 注册流程会预建；对老数据或测试种子用户这里兜底创建.
func (s *FolderService) ensureRoot(ctx context.Context, userID uint) (*model.Folder, error) {
	var f model.Folder
	if err := s.gdb(ctx).
		Where("owner_id = ? AND parent_id IS NULL", userID).
		Attrs(model.Folder{Name: RootFolderName, OwnerID: userID}).
		FirstOrCreate(&f).Error; err != nil {
		return nil, err
	}

	return &f, nil
}

// folderDepth 计算文件夹到根的深度，顶层为 1；超过上限报 Conflict.
func (s *FolderService) folderDepth(ctx context.Context, f *model.Folder) (int, error) {
	depth := 1
	parent := f.ParentID

	for parent != nil {
		if depth > MaxTreeDepth {
			return 0, fmt.Errorf("%w: folder nesting exceeds %d", types.ErrConflict, MaxTreeDepth)
		}

		var p model.Folder
		if err := s.gdb(ctx).First(&p, *parent).Error; err != nil {
			return 0, wrapLookup(err)
		}

		depth++
		parent = p.ParentID
	}

	return depth, nil
}

// siblingNameTaken 检查同一父目录下是否已有同名未删除条目（文件夹或文件同名均冲突）.
func (s *FolderService) siblingNameTaken(ctx context.Context, ownerID uint, parentID *uint, name string, excludeFolder uint) (bool, error) {
	var n int64

	q := s.gdb(ctx).Model(&model.Folder{}).Where("name = ?", name)
	if parentID == nil {
		q = q.Where("parent_id IS NULL AND owner_id = ?", ownerID)
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}

	if excludeFolder != 0 {
		q = q.Where("id <> ?", excludeFolder)
	}

	if err := q.Count(&n).Error; err != nil {
		return false, err
	}

	if n > 0 {
		return true, nil
	}

	if parentID != nil {
		if err := s.gdb(ctx).Model(&model.File{}).
			Where("folder_id = ? AND name = ?", *parentID, name).
			Count(&n).Error; err != nil {
			return false, err
		}
	}

	return n > 0, nil
}

// Create 新建文件夹.
// parent 为空落到请求方的根目录；否则要求对 parent 至少 Edit 权限.
func (s *FolderService) Create(ctx context.Context, userID uint, req *types.CreateFolderRequest) (*types.FolderInfo, error) {
	ownerID := userID

	parentID := req.ParentID
	if parentID == nil {
		root, err := s.ensureRoot(ctx, userID)
		if err != nil {
			return nil, err
		}

		parentID = &root.ID
	}

	parent, err := s.getFolder(ctx, *parentID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, userID, types.FolderRef(parent.ID), types.AccessEdit); err != nil {
		return nil, err
	}

	// 共享文件夹中创建的内容归创建者所有
	depth, err := s.folderDepth(ctx, parent)
	if err != nil {
		return nil, err
	}

	if depth >= MaxTreeDepth {
		return nil, fmt.Errorf("%w: folder nesting exceeds %d", types.ErrConflict, MaxTreeDepth)
	}

	taken, err := s.siblingNameTaken(ctx, ownerID, parentID, req.Name, 0)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, fmt.Errorf("%w: name %q already exists", types.ErrConflict, req.Name)
	}

	f := model.Folder{Name: req.Name, OwnerID: ownerID, ParentID: parentID}
	if err := s.gdb(ctx).Create(&f).Error; err != nil {
		return nil, err
	}

	info := folderInfo(&f)

	return &info, nil
}

// Get 读取文件夹信息，要求 Read 权限.
func (s *FolderService) Get(ctx context.Context, userID, id uint) (*types.FolderInfo, error) {
	if err := s.access.Require(ctx, userID, types.FolderRef(id), types.AccessRead); err != nil {
		return nil, err
	}

	f, err := s.getFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	info := folderInfo(f)

	return &info, nil
}

// List 列出文件夹内容，要求 Read 权限；id 为 0 表示请求方自己的根目录.
func (s *FolderService) List(ctx context.Context, userID, id uint) (*types.FolderListing, error) {
	listing := &types.FolderListing{
		SubFolders: make([]types.FolderInfo, 0, DefaultSliceCapacity),
		Files:      make([]types.FileInfo, 0, DefaultSliceCapacity),
	}

	if id == 0 {
		root, err := s.ensureRoot(ctx, userID)
		if err != nil {
			return nil, err
		}

		id = root.ID
	}

	if err := s.access.Require(ctx, userID, types.FolderRef(id), types.AccessRead); err != nil {
		return nil, err
	}

	f, err := s.getFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	info := folderInfo(f)
	listing.Folder = &info

	var (
		folders []model.Folder
		files   []model.File
	)

	if err := s.gdb(ctx).Where("parent_id = ?", id).Order("name").Find(&folders).Error; err != nil {
		return nil, err
	}

	if err := s.gdb(ctx).Where("folder_id = ?", id).Order("name").Find(&files).Error; err != nil {
		return nil, err
	}

	for i := range folders {
		listing.SubFolders = append(listing.SubFolders, folderInfo(&folders[i]))
	}

	for i := range files {
		listing.Files = append(listing.Files, fileInfo(&files[i]))
	}

	return listing, nil
}

// Rename 重命名文件夹，要求 Edit 权限.
func (s *FolderService) Rename(ctx context.Context, userID, id uint, name string) (*types.FolderInfo, error) {
	if err := s.access.Require(ctx, userID, types.FolderRef(id), types.AccessEdit); err != nil {
		return nil, err
	}

	f, err := s.getFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.ParentID == nil {
		return nil, fmt.Errorf("%w: root folder cannot be renamed", types.ErrInvalidInput)
	}

	taken, err := s.siblingNameTaken(ctx, f.OwnerID, f.ParentID, name, f.ID)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, fmt.Errorf("%w: name %q already exists", types.ErrConflict, name)
	}

	oldName := f.Name
	f.Name = name

	if err := s.gdb(ctx).Model(f).Update("name", name).Error; err != nil {
		return nil, err
	}

	publish(s.Service, queue.TopicObjectRenamed, configs.GetConfig().Events.Object.Renamed, queue.ObjectRenamedPayload{
		Entry:   queue.EntryRef{Kind: types.TargetKindFolder, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID},
		OldName: oldName,
		ActorID: userID,
	})

	info := folderInfo(f)

	return &info, nil
}

// checkMoveTarget 校验移动目标：目标链上不得出现被移动的文件夹自身（防环），
// 且合入后的深度不得超过上限.
func (s *FolderService) checkMoveTarget(ctx context.Context, src *model.Folder, newParentID *uint) error {
	if newParentID == nil {
		return nil
	}

	if *newParentID == src.ID {
		return fmt.Errorf("%w: cannot move folder into itself", types.ErrConflict)
	}

	seen := map[uint]struct{}{src.ID: {}}
	cur := newParentID

	for depth := 0; cur != nil; depth++ {
		if depth >= MaxTreeDepth {
			return fmt.Errorf("%w: folder nesting exceeds %d", types.ErrConflict, MaxTreeDepth)
		}

		if _, ok := seen[*cur]; ok {
			return fmt.Errorf("%w: move would create a cycle", types.ErrConflict)
		}

		seen[*cur] = struct{}{}

		var p model.Folder
		if err := s.gdb(ctx).First(&p, *cur).Error; err != nil {
			return wrapLookup(err)
		}

		cur = p.ParentID
	}

	return nil
}

// Move 移动文件夹到新的父目录，要求对源和目标父目录各有 Edit 权限.
// 目标为空时移动到请求方的根目录.
func (s *FolderService) Move(ctx context.Context, userID, id uint, newParentID *uint) (*types.FolderInfo, error) {
	if err := s.access.Require(ctx, userID, types.FolderRef(id), types.AccessEdit); err != nil {
		return nil, err
	}

	f, err := s.getFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.ParentID == nil {
		return nil, fmt.Errorf("%w: root folder cannot be moved", types.ErrInvalidInput)
	}

	if newParentID == nil {
		root, err := s.ensureRoot(ctx, userID)
		if err != nil {
			return nil, err
		}

		newParentID = &root.ID
	}

	if _, err := s.getFolder(ctx, *newParentID); err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, userID, types.FolderRef(*newParentID), types.AccessEdit); err != nil {
		return nil, err
	}

	if err := s.checkMoveTarget(ctx, f, newParentID); err != nil {
		return nil, err
	}

	taken, err := s.siblingNameTaken(ctx, f.OwnerID, newParentID, f.Name, f.ID)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, fmt.Errorf("%w: name %q already exists in target", types.ErrConflict, f.Name)
	}

	oldParent := f.ParentID

	if err := s.gdb(ctx).Model(f).Update("parent_id", newParentID).Error; err != nil {
		return nil, err
	}

	f.ParentID = newParentID

	publish(s.Service, queue.TopicObjectMoved, configs.GetConfig().Events.Object.Moved, queue.ObjectMovedPayload{
		Entry:     queue.EntryRef{Kind: types.TargetKindFolder, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID},
		OldParent: oldParent,
		NewParent: newParentID,
		ActorID:   userID,
	})

	info := folderInfo(f)

	return &info, nil
}

// collectSubtree 以工作表方式收集子树中全部未删除的文件夹 ID（含根），广度优先且有深度上限.
func collectSubtree(tx *gorm.DB, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	frontier := []uint{rootID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= MaxTreeDepth {
			return nil, fmt.Errorf("%w: folder nesting exceeds %d", types.ErrConflict, MaxTreeDepth)
		}

		var next []uint
		if err := tx.Model(&model.Folder{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error; err != nil {
			return nil, err
		}

		ids = append(ids, next...)
		frontier = next
	}

	return ids, nil
}

// Delete 将文件夹及其全部后代移入回收站，要求 Edit 权限.
// 整个级联在单个事务中完成，失败则全部回滚.
func (s *FolderService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.access.Require(ctx, userID, types.FolderRef(id), types.AccessEdit); err != nil {
		return err
	}

	f, err := s.getFolder(ctx, id)
	if err != nil {
		return err
	}

	if f.ParentID == nil {
		return fmt.Errorf("%w: root folder cannot be deleted", types.ErrInvalidInput)
	}

	var cascaded int

	err = s.gdb(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := collectSubtree(tx, id)
		if err != nil {
			return err
		}

		now := time.Now()

		// 同一时间戳标记整棵子树，恢复时据此区分"随级联删除"的后代
		if err := tx.Model(&model.Folder{}).
			Where("id IN ?", ids).
			Update("deleted_at", now).Error; err != nil {
			return err
		}

		res := tx.Model(&model.File{}).
			Where("folder_id IN ?", ids).
			Update("deleted_at", now)
		if res.Error != nil {
			return res.Error
		}

		cascaded = len(ids) - 1 + int(res.RowsAffected)

		return nil
	})
	if err != nil {
		return err
	}

	publish(s.Service, queue.TopicObjectDeleted, configs.GetConfig().Events.Object.Deleted, queue.ObjectDeletedPayload{
		Entry:    queue.EntryRef{Kind: types.TargetKindFolder, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID},
		Cascaded: cascaded,
		ActorID:  userID,
	})

	return nil
}

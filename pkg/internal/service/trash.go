package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	nlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/queue"
)

// TrashService 提供回收站能力，基于 DB 软删除标记.
// 回收站操作仅限所有者：授权不延伸到已删除的条目.
type TrashService struct{ *FileService }

// NewTrashService 创建并返回一个新的 TrashService 实例.
func NewTrashService(c context.Context) *TrashService { return &TrashService{NewFileService(c)} }

// deletedFolder 读取属于 ownerID 的已删除文件夹.
func (t *TrashService) deletedFolder(ctx context.Context, ownerID, id uint) (*model.Folder, error) {
	var f model.Folder

	err := t.gdb(ctx).Unscoped().
		Where("id = ? AND owner_id = ? AND deleted_at IS NOT NULL", id, ownerID).
		First(&f).Error
	if err != nil {
		return nil, wrapLookup(err)
	}

	return &f, nil
}

// deletedFile 读取属于 ownerID 的已删除文件.
func (t *TrashService) deletedFile(ctx context.Context, ownerID, id uint) (*model.File, error) {
	var f model.File

	err := t.gdb(ctx).Unscoped().
		Where("id = ? AND owner_id = ? AND deleted_at IS NOT NULL", id, ownerID).
		First(&f).Error
	if err != nil {
		return nil, wrapLookup(err)
	}

	return &f, nil
}

// ownedFolder 读取属于 ownerID 的文件夹，活跃或已删除均可.
func (t *TrashService) ownedFolder(ctx context.Context, ownerID, id uint) (*model.Folder, error) {
	var f model.Folder

	err := t.gdb(ctx).Unscoped().
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&f).Error
	if err != nil {
		return nil, wrapLookup(err)
	}

	return &f, nil
}

// ownedFile 读取属于 ownerID 的文件，活跃或已删除均可.
func (t *TrashService) ownedFile(ctx context.Context, ownerID, id uint) (*model.File, error) {
	var f model.File

	err := t.gdb(ctx).Unscoped().
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&f).Error
	if err != nil {
		return nil, wrapLookup(err)
	}

	return &f, nil
}

// List 列出用户回收站中的条目（仅列自己拥有的）.
func (t *TrashService) List(ctx context.Context, userID uint) (*types.ListTrashResponse, error) {
	resp := &types.ListTrashResponse{Entries: make([]types.TrashEntry, 0, DefaultSliceCapacity)}

	var folders []model.Folder
	if err := t.gdb(ctx).Unscoped().
		Where("owner_id = ? AND deleted_at IS NOT NULL", userID).
		Order("deleted_at DESC").Find(&folders).Error; err != nil {
		return nil, err
	}

	var files []model.File
	if err := t.gdb(ctx).Unscoped().
		Where("owner_id = ? AND deleted_at IS NOT NULL", userID).
		Order("deleted_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}

	for i := range folders {
		resp.Entries = append(resp.Entries, types.TrashEntry{
			Target:    types.FolderRef(folders[i].ID),
			Name:      folders[i].Name,
			DeletedAt: folders[i].DeletedAt.Time,
		})
	}

	for i := range files {
		resp.Entries = append(resp.Entries, types.TrashEntry{
			Target:    types.FileRef(files[i].ID),
			Name:      files[i].Name,
			Size:      files[i].Size,
			DeletedAt: files[i].DeletedAt.Time,
		})
	}

	return resp, nil
}

// RestoreFile 恢复单个文件.所在文件夹若已删除，文件恢复到所有者顶层不可行，
// 故要求所在文件夹未删除，否则提示先恢复文件夹.
func (t *TrashService) RestoreFile(ctx context.Context, userID, id uint) error {
	f, err := t.deletedFile(ctx, userID, id)
	if err != nil {
		return err
	}

	var n int64
	if err := t.gdb(ctx).Model(&model.Folder{}).Where("id = ?", f.FolderID).Count(&n).Error; err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("%w: parent folder is deleted, restore it first", types.ErrConflict)
	}

	if taken, err := t.fileNameTaken(ctx, f.FolderID, f.Name, f.ID); err != nil {
		return err
	} else if taken {
		return fmt.Errorf("%w: name %q already exists", types.ErrConflict, f.Name)
	}

	if err := t.gdb(ctx).Unscoped().Model(f).Update("deleted_at", nil).Error; err != nil {
		return err
	}

	publish(t.Service, queue.TopicObjectRestored, configs.GetConfig().Events.Object.Restored, queue.ObjectRestoredPayload{
		Entry:   queue.EntryRef{Kind: types.TargetKindFile, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID, Size: f.Size},
		ActorID: userID,
	})

	return nil
}

// RestoreFolder 恢复文件夹及随级联删除的后代.
// 只恢复 deleted_at 不早于该文件夹删除时刻的后代：更早删除的条目是用户单独删除的，保持在回收站.
func (t *TrashService) RestoreFolder(ctx context.Context, userID, id uint) error {
	f, err := t.deletedFolder(ctx, userID, id)
	if err != nil {
		return err
	}

	// 父链上若仍有已删除的文件夹，恢复会产生"悬空"条目
	if f.ParentID != nil {
		var n int64
		if err := t.gdb(ctx).Model(&model.Folder{}).Where("id = ?", *f.ParentID).Count(&n).Error; err != nil {
			return err
		}

		if n == 0 {
			return fmt.Errorf("%w: parent folder is deleted, restore it first", types.ErrConflict)
		}
	}

	cutoff := f.DeletedAt.Time
	restored := 0

	err = t.gdb(ctx).Transaction(func(tx *gorm.DB) error {
		// 在含软删除行的视图上收集子树
		ids := []uint{f.ID}
		frontier := []uint{f.ID}

		for depth := 0; len(frontier) > 0; depth++ {
			if depth >= MaxTreeDepth {
				return fmt.Errorf("%w: folder nesting exceeds %d", types.ErrConflict, MaxTreeDepth)
			}

			var next []uint
			if err := tx.Unscoped().Model(&model.Folder{}).
				Where("parent_id IN ? AND deleted_at >= ?", frontier, cutoff).
				Pluck("id", &next).Error; err != nil {
				return err
			}

			frontier = next
			ids = append(ids, next...)
		}

		res := tx.Unscoped().Model(&model.Folder{}).
			Where("id IN ? AND deleted_at >= ?", ids, cutoff).
			Update("deleted_at", nil)
		if res.Error != nil {
			return res.Error
		}

		restored += int(res.RowsAffected)

		res = tx.Unscoped().Model(&model.File{}).
			Where("folder_id IN ? AND deleted_at >= ?", ids, cutoff).
			Update("deleted_at", nil)
		if res.Error != nil {
			return res.Error
		}

		restored += int(res.RowsAffected)

		return nil
	})
	if err != nil {
		return err
	}

	publish(t.Service, queue.TopicObjectRestored, configs.GetConfig().Events.Object.Restored, queue.ObjectRestoredPayload{
		Entry:    queue.EntryRef{Kind: types.TargetKindFolder, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID},
		Restored: restored - 1,
		ActorID:  userID,
	})

	return nil
}

// purgeFiles 物理删除一组文件行并回收配额，blob 删除在事务提交后执行.
// 配额按每个文件各自的所有者回收：共享文件夹里他人创建的文件计在创建者头上.
func (t *TrashService) purgeFiles(tx *gorm.DB, files []model.File) (int64, error) {
	if len(files) == 0 {
		return 0, nil
	}

	var reclaimed int64

	perOwner := make(map[uint]int64)

	ids := make([]uint, 0, len(files))
	for i := range files {
		ids = append(ids, files[i].ID)
		perOwner[files[i].OwnerID] += files[i].Size
		reclaimed += files[i].Size
	}

	if err := tx.Unscoped().Where("id IN ?", ids).Delete(&model.File{}).Error; err != nil {
		return 0, err
	}

	// 清理指向已清除文件的授权
	if err := tx.Where("target_kind = ? AND target_id IN ?", model.TargetFile, ids).
		Delete(&model.Permission{}).Error; err != nil {
		return 0, err
	}

	for ownerID, bytes := range perOwner {
		if bytes == 0 {
			continue
		}

		if err := tx.Model(&model.User{}).Where("id = ?", ownerID).
			Update("storage_used", gorm.Expr("storage_used - ?", bytes)).Error; err != nil {
			return 0, err
		}
	}

	return reclaimed, nil
}

// deleteBlobs 尽力删除对象存储中的内容，失败只记日志.
func (t *TrashService) deleteBlobs(ctx context.Context, keys []string) {
	if t.s3Client == nil {
		return
	}

	for _, key := range keys {
		if err := t.s3Client.DeleteBlob(ctx, key); err != nil {
			nlog.Logger().Error().Err(err).Str("object_key", key).Msg("purge blob failed")
		}
	}
}

// PurgeFile 彻底清除文件：删除元数据与内容并回收配额.
// 活跃与回收站中的文件均可直接清除，恢复不是清除的前置条件.
func (t *TrashService) PurgeFile(ctx context.Context, userID, id uint) error {
	f, err := t.ownedFile(ctx, userID, id)
	if err != nil {
		return err
	}

	var reclaimed int64

	err = t.gdb(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reclaimed, err = t.purgeFiles(tx, []model.File{*f})

		return err
	})
	if err != nil {
		return err
	}

	t.deleteBlobs(ctx, []string{f.ObjectKey})

	publish(t.Service, queue.TopicObjectPurged, configs.GetConfig().Events.Object.Purged, queue.ObjectPurgedPayload{
		Entry:          queue.EntryRef{Kind: types.TargetKindFile, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID, Size: f.Size},
		ReclaimedBytes: reclaimed,
		ActorID:        userID,
	})

	return nil
}

// PurgeFolder 彻底清除文件夹及其全部后代（含未随级联删除的）.
// 活跃与回收站中的文件夹均可直接清除，根目录除外.
func (t *TrashService) PurgeFolder(ctx context.Context, userID, id uint) error {
	f, err := t.ownedFolder(ctx, userID, id)
	if err != nil {
		return err
	}

	if f.ParentID == nil {
		return fmt.Errorf("%w: root folder cannot be purged", types.ErrInvalidInput)
	}

	var (
		reclaimed int64
		keys      []string
	)

	err = t.gdb(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []uint{f.ID}
		frontier := []uint{f.ID}

		for depth := 0; len(frontier) > 0; depth++ {
			if depth >= MaxTreeDepth {
				return fmt.Errorf("%w: folder nesting exceeds %d", types.ErrConflict, MaxTreeDepth)
			}

			var next []uint
			if err := tx.Unscoped().Model(&model.Folder{}).
				Where("parent_id IN ?", frontier).
				Pluck("id", &next).Error; err != nil {
				return err
			}

			frontier = next
			ids = append(ids, next...)
		}

		var files []model.File
		if err := tx.Unscoped().Where("folder_id IN ?", ids).Find(&files).Error; err != nil {
			return err
		}

		for i := range files {
			keys = append(keys, files[i].ObjectKey)
		}

		var err error
		if reclaimed, err = t.purgeFiles(tx, files); err != nil {
			return err
		}

		if err := tx.Unscoped().Where("id IN ?", ids).Delete(&model.Folder{}).Error; err != nil {
			return err
		}

		return tx.Where("target_kind = ? AND target_id IN ?", model.TargetFolder, ids).
			Delete(&model.Permission{}).Error
	})
	if err != nil {
		return err
	}

	t.deleteBlobs(ctx, keys)

	publish(t.Service, queue.TopicObjectPurged, configs.GetConfig().Events.Object.Purged, queue.ObjectPurgedPayload{
		Entry:          queue.EntryRef{Kind: types.TargetKindFolder, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID},
		ReclaimedBytes: reclaimed,
		ActorID:        userID,
	})

	return nil
}

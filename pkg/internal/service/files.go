package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	nlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/metrics"
	"github.com/yeisme/drivevault/pkg/queue"
)

// FileService 负责文件内容与元数据的业务逻辑.
type FileService struct {
	*Service
	access *AccessService
}

// NewFileService 创建并返回一个新的 FileService 实例.
func NewFileService(c context.Context) *FileService {
	base := NewService(c)

	return &FileService{Service: base, access: &AccessService{base}}
}

// getFile 读取未删除的文件.
func (s *FileService) getFile(ctx context.Context, id uint) (*model.File, error) {
	var f model.File
	if err := s.gdb(ctx).First(&f, id).Error; err != nil {
		return nil, wrapLookup(err)
	}

	return &f, nil
}

// fileNameTaken 检查目标文件夹下是否已有同名未删除条目.
func (s *FileService) fileNameTaken(ctx context.Context, folderID uint, name string, excludeFile uint) (bool, error) {
	var n int64

	q := s.gdb(ctx).Model(&model.File{}).Where("folder_id = ? AND name = ?", folderID, name)
	if excludeFile != 0 {
		q = q.Where("id <> ?", excludeFile)
	}

	if err := q.Count(&n).Error; err != nil {
		return false, err
	}

	if n > 0 {
		return true, nil
	}

	if err := s.gdb(ctx).Model(&model.Folder{}).
		Where("parent_id = ? AND name = ?", folderID, name).
		Count(&n).Error; err != nil {
		return false, err
	}

	return n > 0, nil
}

// buildObjectKey 生成内容存储键：u<owner>/<ulid>，与文件名解耦，改名无需搬迁内容.
func buildObjectKey(ownerID uint) string {
	return fmt.Sprintf("u%d/%s", ownerID, strings.ToLower(newULID()))
}

// Upload 上传文件：校验权限与配额、写入对象存储、登记元数据，配额累加与元数据在同一事务内.
// 共享文件夹中上传的文件归上传者所有，配额也计入上传者.
func (s *FileService) Upload(ctx context.Context, userID uint, req *types.UploadFileRequest, r io.Reader, size int64, contentType string) (*types.FileInfo, error) {
	quotaCfg := configs.GetConfig().Quota
	if quotaCfg.MaxUploadSize > 0 && size > quotaCfg.MaxUploadSize {
		return nil, fmt.Errorf("%w: file size %d exceeds upload limit %d", types.ErrInvalidInput, size, quotaCfg.MaxUploadSize)
	}

	if size < 0 {
		return nil, fmt.Errorf("%w: negative size", types.ErrInvalidInput)
	}

	folders := &FolderService{Service: s.Service, access: s.access}

	folderID := req.FolderID
	if folderID == 0 {
		root, err := folders.ensureRoot(ctx, userID)
		if err != nil {
			return nil, err
		}

		folderID = root.ID
	}

	if _, err := folders.getFolder(ctx, folderID); err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, userID, types.FolderRef(folderID), types.AccessEdit); err != nil {
		return nil, err
	}

	taken, err := s.fileNameTaken(ctx, folderID, req.Name, 0)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, fmt.Errorf("%w: name %q already exists", types.ErrConflict, req.Name)
	}

	// 先写对象存储，事务失败时回收 blob
	objectKey := buildObjectKey(userID)

	if s.s3Client != nil {
		if err := s.s3Client.SaveBlob(ctx, objectKey, r, size, contentType); err != nil {
			return nil, err
		}
	}

	var f model.File

	err = s.gdb(ctx).Transaction(func(tx *gorm.DB) error {
		// sqlite 不支持 FOR UPDATE，其写事务本身串行化
		q := tx
		if tx.Dialector.Name() != "sqlite" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var owner model.User
		if err := q.First(&owner, userID).Error; err != nil {
			return wrapLookup(err)
		}

		if quotaCfg.Enforce && owner.StorageUsed+size > owner.StorageLimit {
			metrics.QuotaRejections.Inc()
			publish(s.Service, queue.TopicQuotaExceeded, configs.GetConfig().Events.Quota.Exceeded, queue.QuotaExceededPayload{
				UserID:       userID,
				StorageUsed:  owner.StorageUsed,
				StorageLimit: owner.StorageLimit,
				Requested:    size,
			})

			return fmt.Errorf("%w: used %d + %d > limit %d", types.ErrQuotaExceeded, owner.StorageUsed, size, owner.StorageLimit)
		}

		f = model.File{
			Name:        req.Name,
			OwnerID:     userID,
			FolderID:    folderID,
			Size:        size,
			ContentType: contentType,
			ObjectKey:   objectKey,
		}
		if err := tx.Create(&f).Error; err != nil {
			return err
		}

		return tx.Model(&owner).
			Update("storage_used", gorm.Expr("storage_used + ?", size)).Error
	})
	if err != nil {
		// 元数据入库失败，回收已写入的内容
		if s.s3Client != nil {
			if delErr := s.s3Client.DeleteBlob(ctx, objectKey); delErr != nil {
				nlog.Logger().Error().Err(delErr).Str("object_key", objectKey).Msg("orphan blob cleanup failed")
			}
		}

		return nil, err
	}

	metrics.UploadBytes.Add(float64(size))

	publish(s.Service, queue.TopicObjectStored, configs.GetConfig().Events.Object.Stored, queue.ObjectStoredPayload{
		Entry:     queue.EntryRef{Kind: types.TargetKindFile, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID, Size: f.Size},
		FolderID:  f.FolderID,
		ObjectKey: f.ObjectKey,
		ETag:      f.ETag,
		ActorID:   userID,
	})

	info := fileInfo(&f)

	return &info, nil
}

// Get 读取文件元数据，要求 Read 权限.
func (s *FileService) Get(ctx context.Context, userID, id uint) (*types.FileInfo, error) {
	if err := s.access.Require(ctx, userID, types.FileRef(id), types.AccessRead); err != nil {
		return nil, err
	}

	f, err := s.getFile(ctx, id)
	if err != nil {
		return nil, err
	}

	info := fileInfo(f)

	return &info, nil
}

// Download 打开文件内容流，要求 Read 权限；调用方负责 Close.
func (s *FileService) Download(ctx context.Context, userID, id uint) (*types.FileInfo, io.ReadCloser, error) {
	if err := s.access.Require(ctx, userID, types.FileRef(id), types.AccessRead); err != nil {
		return nil, nil, err
	}

	f, err := s.getFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if s.s3Client == nil {
		return nil, nil, fmt.Errorf("blob storage not available")
	}

	rc, err := s.s3Client.ReadBlob(ctx, f.ObjectKey)
	if err != nil {
		return nil, nil, err
	}

	info := fileInfo(f)

	return &info, rc, nil
}

// Rename 重命名文件，要求 Edit 权限.
func (s *FileService) Rename(ctx context.Context, userID, id uint, name string) (*types.FileInfo, error) {
	if err := s.access.Require(ctx, userID, types.FileRef(id), types.AccessEdit); err != nil {
		return nil, err
	}

	f, err := s.getFile(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.fileNameTaken(ctx, f.FolderID, name, f.ID)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, fmt.Errorf("%w: name %q already exists", types.ErrConflict, name)
	}

	oldName := f.Name

	if err := s.gdb(ctx).Model(f).Update("name", name).Error; err != nil {
		return nil, err
	}

	f.Name = name

	publish(s.Service, queue.TopicObjectRenamed, configs.GetConfig().Events.Object.Renamed, queue.ObjectRenamedPayload{
		Entry:   queue.EntryRef{Kind: types.TargetKindFile, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID, Size: f.Size},
		OldName: oldName,
		ActorID: userID,
	})

	info := fileInfo(f)

	return &info, nil
}

// Move 移动文件到新文件夹，要求对文件和目标文件夹各有 Edit 权限.
func (s *FileService) Move(ctx context.Context, userID, id, newFolderID uint) (*types.FileInfo, error) {
	if err := s.access.Require(ctx, userID, types.FileRef(id), types.AccessEdit); err != nil {
		return nil, err
	}

	f, err := s.getFile(ctx, id)
	if err != nil {
		return nil, err
	}

	folders := &FolderService{Service: s.Service, access: s.access}

	if newFolderID == 0 {
		root, err := folders.ensureRoot(ctx, userID)
		if err != nil {
			return nil, err
		}

		newFolderID = root.ID
	}

	if _, err := folders.getFolder(ctx, newFolderID); err != nil {
		return nil, err
	}

	if err := s.access.Require(ctx, userID, types.FolderRef(newFolderID), types.AccessEdit); err != nil {
		return nil, err
	}

	taken, err := s.fileNameTaken(ctx, newFolderID, f.Name, f.ID)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, fmt.Errorf("%w: name %q already exists in target", types.ErrConflict, f.Name)
	}

	oldFolder := f.FolderID

	if err := s.gdb(ctx).Model(f).Update("folder_id", newFolderID).Error; err != nil {
		return nil, err
	}

	f.FolderID = newFolderID

	publish(s.Service, queue.TopicObjectMoved, configs.GetConfig().Events.Object.Moved, queue.ObjectMovedPayload{
		Entry:     queue.EntryRef{Kind: types.TargetKindFile, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID, Size: f.Size},
		OldParent: &oldFolder,
		NewParent: &newFolderID,
		ActorID:   userID,
	})

	info := fileInfo(f)

	return &info, nil
}

// Delete 将文件移入回收站，要求 Edit 权限.内容与配额保持不变，直到被清除.
func (s *FileService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.access.Require(ctx, userID, types.FileRef(id), types.AccessEdit); err != nil {
		return err
	}

	f, err := s.getFile(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gdb(ctx).Model(f).Update("deleted_at", time.Now()).Error; err != nil {
		return err
	}

	publish(s.Service, queue.TopicObjectDeleted, configs.GetConfig().Events.Object.Deleted, queue.ObjectDeletedPayload{
		Entry:   queue.EntryRef{Kind: types.TargetKindFile, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID, Size: f.Size},
		ActorID: userID,
	})

	return nil
}

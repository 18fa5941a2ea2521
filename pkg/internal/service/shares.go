package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	nlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/metrics"
	"github.com/yeisme/drivevault/pkg/queue"
)

// ShareTokenPrefix 分享令牌前缀，便于日志与排障时一眼识别令牌类别.
const ShareTokenPrefix = "sl_"

// ShareService 负责共享相关业务：直接授权与匿名分享链接.
// 链接记录以 DB 为真源，KV 作为带 TTL 的只读缓存.
type ShareService struct {
	*Service
	access *AccessService
}

// NewShareService 创建并返回一个新的 ShareService 实例.
func NewShareService(c context.Context) *ShareService {
	base := NewService(c)

	return &ShareService{Service: base, access: &AccessService{base}}
}

// targetEntry 读取目标条目的摘要，用于事件负载.
func (s *ShareService) targetEntry(ctx context.Context, target types.TargetRef) (queue.EntryRef, error) {
	if target.IsFile() {
		var f model.File
		if err := s.gdb(ctx).First(&f, target.ID).Error; err != nil {
			return queue.EntryRef{}, wrapLookup(err)
		}

		return queue.EntryRef{Kind: target.Kind, ID: f.ID, Name: f.Name, OwnerID: f.OwnerID, Size: f.Size}, nil
	}

	var fd model.Folder
	if err := s.gdb(ctx).First(&fd, target.ID).Error; err != nil {
		return queue.EntryRef{}, wrapLookup(err)
	}

	return queue.EntryRef{Kind: target.Kind, ID: fd.ID, Name: fd.Name, OwnerID: fd.OwnerID}, nil
}

// Grant 将目标授权给另一个用户，要求授权者对目标具有 Delete 级别.
// 同一 (用户, 目标) 的重复授权在事务内先删后建，等价于覆盖.
func (s *ShareService) Grant(ctx context.Context, actorID uint, req *types.GrantRequest) (*types.GrantInfo, error) {
	if req.Level < types.AccessRead || req.Level > types.AccessDelete {
		return nil, fmt.Errorf("%w: invalid grant level %s", types.ErrInvalidInput, req.Level)
	}

	entry, err := s.targetEntry(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	if entry.OwnerID == req.UserID {
		return nil, fmt.Errorf("%w: cannot grant to the owner", types.ErrInvalidInput)
	}

	if err := s.access.Require(ctx, actorID, req.Target, types.AccessDelete); err != nil {
		return nil, err
	}

	var grantee model.User
	if err := s.gdb(ctx).First(&grantee, req.UserID).Error; err != nil {
		return nil, fmt.Errorf("%w: grantee user %d", types.ErrNotFound, req.UserID)
	}

	perm := model.Permission{
		UserID:     req.UserID,
		TargetKind: req.Target.Kind,
		TargetID:   req.Target.ID,
		Level:      req.Level.String(),
		GrantedBy:  actorID,
	}

	err = s.gdb(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND target_kind = ? AND target_id = ?",
			req.UserID, req.Target.Kind, req.Target.ID).
			Delete(&model.Permission{}).Error; err != nil {
			return err
		}

		return tx.Create(&perm).Error
	})
	if err != nil {
		return nil, err
	}

	publish(s.Service, queue.TopicShareCreated, configs.GetConfig().Events.Share.Created, queue.ShareCreatedPayload{
		Entry:     entry,
		Level:     req.Level.String(),
		GranteeID: req.UserID,
		ActorID:   actorID,
	})

	return &types.GrantInfo{
		UserID:    perm.UserID,
		Target:    req.Target,
		Level:     req.Level,
		GrantedBy: actorID,
		CreatedAt: perm.CreatedAt,
	}, nil
}

// RevokeGrant 撤销直接授权，仅目标的所有者可撤销.撤销不存在的授权返回 NotFound.
func (s *ShareService) RevokeGrant(ctx context.Context, actorID uint, req *types.RevokeGrantRequest) error {
	owner, err := s.targetEntry(ctx, req.Target)
	if err != nil {
		return err
	}

	if owner.OwnerID != actorID {
		return fmt.Errorf("%w: only the owner may revoke grants", types.ErrForbidden)
	}

	res := s.gdb(ctx).Where("user_id = ? AND target_kind = ? AND target_id = ?",
		req.UserID, req.Target.Kind, req.Target.ID).
		Delete(&model.Permission{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no grant for user %d", types.ErrNotFound, req.UserID)
	}

	publish(s.Service, queue.TopicShareRevoked, configs.GetConfig().Events.Share.Revoked, queue.ShareRevokedPayload{
		Entry:     owner,
		GranteeID: req.UserID,
		ActorID:   actorID,
	})

	return nil
}

// ListGrants 列出目标上的全部直接授权，要求 Delete 级别.
func (s *ShareService) ListGrants(ctx context.Context, actorID uint, target types.TargetRef) (*types.ListGrantsResponse, error) {
	if err := s.access.Require(ctx, actorID, target, types.AccessDelete); err != nil {
		return nil, err
	}

	var perms []model.Permission
	if err := s.gdb(ctx).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Order("created_at").Find(&perms).Error; err != nil {
		return nil, err
	}

	resp := &types.ListGrantsResponse{Target: target, Grants: make([]types.GrantInfo, 0, len(perms))}

	for i := range perms {
		lvl, err := types.ParseAccessLevel(perms[i].Level)
		if err != nil {
			return nil, err
		}

		resp.Grants = append(resp.Grants, types.GrantInfo{
			UserID:    perms[i].UserID,
			Target:    target,
			Level:     lvl,
			GrantedBy: perms[i].GrantedBy,
			CreatedAt: perms[i].CreatedAt,
		})
	}

	return resp, nil
}

// ListSharedWithMe 列出他人直接授权给当前用户的条目，
// 不展开文件夹授权覆盖的子树；目标已被软删除时跳过该行.
func (s *ShareService) ListSharedWithMe(ctx context.Context, userID uint) (*types.ListSharedResponse, error) {
	var perms []model.Permission
	if err := s.gdb(ctx).
		Where("user_id = ?", userID).
		Order("created_at").Find(&perms).Error; err != nil {
		return nil, err
	}

	resp := &types.ListSharedResponse{Entries: make([]types.SharedEntry, 0, len(perms))}

	for i := range perms {
		target := types.TargetRef{Kind: perms[i].TargetKind, ID: perms[i].TargetID}

		entry, err := s.targetEntry(ctx, target)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}

			return nil, err
		}

		lvl, err := types.ParseAccessLevel(perms[i].Level)
		if err != nil {
			return nil, err
		}

		resp.Entries = append(resp.Entries, types.SharedEntry{
			Target:    target,
			Name:      entry.Name,
			OwnerID:   entry.OwnerID,
			Level:     lvl,
			GrantedBy: perms[i].GrantedBy,
			CreatedAt: perms[i].CreatedAt,
		})
	}

	return resp, nil
}

// makeShareKey 构造链接在 KV 中的缓存键.
func makeShareKey(token string) string { return "share:" + token }

// cacheLink 把链接记录写入 KV 缓存，失败不影响主流程.
func (s *ShareService) cacheLink(ctx context.Context, link *model.ShareLink) {
	if s.kvClient == nil {
		return
	}

	b, err := sonic.Marshal(link)
	if err != nil {
		return
	}

	ttl := time.Duration(configs.GetConfig().KV.ShareTTL) * time.Second
	if err := s.kvClient.Set(ctx, makeShareKey(link.Token), b, ttl); err != nil {
		nlog.Logger().Debug().Err(err).Msg("cache share link failed")
	}
}

// cachedLink 尝试从 KV 读取链接记录，未命中返回 nil.
func (s *ShareService) cachedLink(ctx context.Context, token string) *model.ShareLink {
	if s.kvClient == nil {
		return nil
	}

	b, err := s.kvClient.Get(ctx, makeShareKey(token))
	if err != nil || len(b) == 0 {
		return nil
	}

	var link model.ShareLink
	if err := sonic.Unmarshal(b, &link); err != nil {
		return nil
	}

	return &link
}

// CreateLink 创建匿名分享链接，仅目标的所有者可创建.
// 链接只授予匿名只读访问，不存在写级别的链接.
func (s *ShareService) CreateLink(ctx context.Context, actorID uint, req *types.CreateShareLinkRequest) (*types.ShareLinkInfo, error) {
	entry, err := s.targetEntry(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	if entry.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the owner may share this target", types.ErrForbidden)
	}

	var expireAt *time.Time

	if req.ExpireIn != nil {
		t := time.Now().Add(time.Duration(*req.ExpireIn) * time.Second)
		expireAt = &t
	}

	link := model.ShareLink{
		Token:      ShareTokenPrefix + newULID(),
		OwnerID:    actorID,
		TargetKind: req.Target.Kind,
		TargetID:   req.Target.ID,
		ExpireAt:   expireAt,
	}

	// 令牌冲突概率极低，碰到唯一约束冲突时重新生成一次
	for attempt := 0; ; attempt++ {
		err := s.gdb(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
		if err != nil {
			return nil, err
		}

		if link.ID != 0 {
			break
		}

		if attempt >= 2 {
			return nil, fmt.Errorf("%w: could not allocate share token", types.ErrConflict)
		}

		link.Token = ShareTokenPrefix + newULID()
	}

	s.cacheLink(ctx, &link)

	publish(s.Service, queue.TopicShareCreated, configs.GetConfig().Events.Share.Created, queue.ShareCreatedPayload{
		Entry:   entry,
		Level:   types.AccessRead.String(),
		Token:   link.Token,
		ActorID: actorID,
	})

	return &types.ShareLinkInfo{
		Token:     link.Token,
		Target:    req.Target,
		ExpireAt:  link.ExpireAt,
		CreatedAt: link.CreatedAt,
	}, nil
}

// ListLinks 列出 actorID 创建的全部有效分享链接.
func (s *ShareService) ListLinks(ctx context.Context, actorID uint) (*types.ListShareLinksResponse, error) {
	var links []model.ShareLink
	if err := s.gdb(ctx).
		Where("owner_id = ? AND revoked_at IS NULL", actorID).
		Order("created_at DESC").Find(&links).Error; err != nil {
		return nil, err
	}

	resp := &types.ListShareLinksResponse{Links: make([]types.ShareLinkInfo, 0, len(links))}

	for i := range links {
		resp.Links = append(resp.Links, types.ShareLinkInfo{
			Token:     links[i].Token,
			Target:    types.TargetRef{Kind: links[i].TargetKind, ID: links[i].TargetID},
			ExpireAt:  links[i].ExpireAt,
			CreatedAt: links[i].CreatedAt,
		})
	}

	return resp, nil
}

// RevokeLink 撤销分享链接，仅创建者可撤销.缓存同步失效.
func (s *ShareService) RevokeLink(ctx context.Context, actorID uint, token string) error {
	var link model.ShareLink
	if err := s.gdb(ctx).Where("token = ?", token).First(&link).Error; err != nil {
		return wrapLookup(err)
	}

	if link.OwnerID != actorID {
		return fmt.Errorf("%w: only the creator may revoke a link", types.ErrForbidden)
	}

	if link.Revoked() {
		return fmt.Errorf("%w: link already revoked", types.ErrGone)
	}

	now := time.Now()
	if err := s.gdb(ctx).Model(&link).Update("revoked_at", now).Error; err != nil {
		return err
	}

	if s.kvClient != nil {
		_ = s.kvClient.Delete(ctx, makeShareKey(token))
	}

	if entry, err := s.targetEntry(ctx, types.TargetRef{Kind: link.TargetKind, ID: link.TargetID}); err == nil {
		publish(s.Service, queue.TopicShareRevoked, configs.GetConfig().Events.Share.Revoked, queue.ShareRevokedPayload{
			Entry:   entry,
			Token:   token,
			ActorID: actorID,
		})
	}

	return nil
}

// resolveToken 取回并校验链接状态：撤销返回 Gone，过期返回 Expired.
func (s *ShareService) resolveToken(ctx context.Context, token string) (*model.ShareLink, error) {
	link := s.cachedLink(ctx, token)

	if link == nil {
		var row model.ShareLink
		if err := s.gdb(ctx).Where("token = ?", token).First(&row).Error; err != nil {
			metrics.ShareResolutions.WithLabelValues("miss").Inc()

			return nil, wrapLookup(err)
		}

		link = &row
		s.cacheLink(ctx, link)
	}

	if link.Revoked() {
		metrics.ShareResolutions.WithLabelValues("revoked").Inc()

		return nil, fmt.Errorf("%w: link revoked", types.ErrGone)
	}

	if link.Expired(time.Now()) {
		metrics.ShareResolutions.WithLabelValues("expired").Inc()

		return nil, fmt.Errorf("%w: link expired", types.ErrExpired)
	}

	metrics.ShareResolutions.WithLabelValues("ok").Inc()

	return link, nil
}

// Resolve 匿名访问分享链接：返回目标内容摘要.
// 链接仍可解析但目标已进入回收站时返回 Gone，删除不级联到链接.
func (s *ShareService) Resolve(ctx context.Context, token string) (*types.ResolveShareResponse, error) {
	link, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}

	resp := &types.ResolveShareResponse{
		Target: types.TargetRef{Kind: link.TargetKind, ID: link.TargetID},
	}

	switch link.TargetKind {
	case types.TargetKindFile:
		var f model.File
		if err := s.gdb(ctx).Unscoped().First(&f, link.TargetID).Error; err != nil {
			return nil, wrapLookup(err)
		}

		if f.DeletedAt.Valid {
			return nil, fmt.Errorf("%w: shared file no longer available", types.ErrGone)
		}

		info := fileInfo(&f)
		resp.File = &info
	case types.TargetKindFolder:
		var fd model.Folder
		if err := s.gdb(ctx).Unscoped().First(&fd, link.TargetID).Error; err != nil {
			return nil, wrapLookup(err)
		}

		if fd.DeletedAt.Valid {
			return nil, fmt.Errorf("%w: shared folder no longer available", types.ErrGone)
		}

		listing := &types.FolderListing{
			SubFolders: make([]types.FolderInfo, 0, DefaultSliceCapacity),
			Files:      make([]types.FileInfo, 0, DefaultSliceCapacity),
		}
		info := folderInfo(&fd)
		listing.Folder = &info

		var folders []model.Folder
		if err := s.gdb(ctx).Where("parent_id = ?", fd.ID).Order("name").Find(&folders).Error; err != nil {
			return nil, err
		}

		var files []model.File
		if err := s.gdb(ctx).Where("folder_id = ?", fd.ID).Order("name").Find(&files).Error; err != nil {
			return nil, err
		}

		for i := range folders {
			listing.SubFolders = append(listing.SubFolders, folderInfo(&folders[i]))
		}

		for i := range files {
			listing.Files = append(listing.Files, fileInfo(&files[i]))
		}

		resp.Folder = listing
	default:
		return nil, fmt.Errorf("%w: unknown target kind %q", types.ErrInvalidInput, link.TargetKind)
	}

	return resp, nil
}

// ResolveDownload 通过分享链接匿名下载文件内容.
// 目标为文件夹的链接可下载其直接子文件（fileID 非零时）.
func (s *ShareService) ResolveDownload(ctx context.Context, token string, fileID uint) (*types.FileInfo, io.ReadCloser, error) {
	link, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	var f model.File

	switch {
	case link.TargetKind == types.TargetKindFile:
		if fileID != 0 && fileID != link.TargetID {
			return nil, nil, fmt.Errorf("%w: file %d not covered by link", types.ErrForbidden, fileID)
		}

		if err := s.gdb(ctx).Unscoped().First(&f, link.TargetID).Error; err != nil {
			return nil, nil, wrapLookup(err)
		}
	case link.TargetKind == types.TargetKindFolder && fileID != 0:
		if err := s.gdb(ctx).Where("id = ? AND folder_id = ?", fileID, link.TargetID).First(&f).Error; err != nil {
			return nil, nil, wrapLookup(err)
		}
	default:
		return nil, nil, fmt.Errorf("%w: file id required for folder links", types.ErrInvalidInput)
	}

	if f.DeletedAt.Valid {
		return nil, nil, fmt.Errorf("%w: shared file no longer available", types.ErrGone)
	}

	if s.s3Client == nil {
		return nil, nil, fmt.Errorf("blob storage not available")
	}

	rc, err := s.s3Client.ReadBlob(ctx, f.ObjectKey)
	if err != nil {
		return nil, nil, err
	}

	info := fileInfo(&f)

	return &info, rc, nil
}

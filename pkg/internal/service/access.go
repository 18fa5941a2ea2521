package service

import (
	"context"
	"fmt"

	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/metrics"
)

// AccessService 负责有效访问级别解析：所有权、直接授权与沿父链向上的权限继承.
type AccessService struct{ *Service }

// NewAccessService 创建并返回一个新的 AccessService 实例.
func NewAccessService(c context.Context) *AccessService { return &AccessService{NewService(c)} }

// EffectiveAccess 计算 userID 对目标的有效访问级别.
//   - 所有者恒为 Delete，不再继续解析
//   - 否则取目标上的直接授权，再沿父文件夹链向上逐级合并授权
//   - 一旦累计级别达到 Edit 及以上即停止合并（更高级别只能来自所有权）
//   - 目标不存在或已进入回收站时返回 NotFound
//   - 任何数据库错误都按"拒绝"处理，原样返回错误，绝不降级放行
func (a *AccessService) EffectiveAccess(ctx context.Context, userID uint, target types.TargetRef) (types.AccessLevel, error) {
	var (
		ownerID uint
		parent  *uint
	)

	switch {
	case target.IsFile():
		var f model.File
		if err := a.gdb(ctx).First(&f, target.ID).Error; err != nil {
			return types.AccessNone, wrapLookup(err)
		}

		ownerID = f.OwnerID
		parent = &f.FolderID
	case target.IsFolder():
		var fd model.Folder
		if err := a.gdb(ctx).First(&fd, target.ID).Error; err != nil {
			return types.AccessNone, wrapLookup(err)
		}

		ownerID = fd.OwnerID
		parent = fd.ParentID
	default:
		return types.AccessNone, fmt.Errorf("%w: unknown target kind %q", types.ErrInvalidInput, target.Kind)
	}

	if ownerID == userID {
		return types.AccessDelete, nil
	}

	// 目标上的直接授权
	level, err := a.directGrant(ctx, userID, target.Kind, target.ID)
	if err != nil {
		return types.AccessNone, err
	}

	// 沿父链向上合并文件夹授权，深度受限：
	// 超出上限只停止继续合并，已累计的级别保持有效
	for depth := 0; parent != nil && level < types.AccessEdit; depth++ {
		if depth >= MaxTreeDepth {
			break
		}

		var fd model.Folder
		if err := a.gdb(ctx).First(&fd, *parent).Error; err != nil {
			// 父链断裂或 DB 错误，一律拒绝
			return types.AccessNone, wrapLookup(err)
		}

		inherited, err := a.directGrant(ctx, userID, types.TargetKindFolder, fd.ID)
		if err != nil {
			return types.AccessNone, err
		}

		if inherited > level {
			level = inherited
		}

		parent = fd.ParentID
	}

	return level, nil
}

// directGrant 查询目标上对 userID 的直接授权，无授权返回 AccessNone.
func (a *AccessService) directGrant(ctx context.Context, userID uint, kind string, id uint) (types.AccessLevel, error) {
	var perm model.Permission

	err := a.gdb(ctx).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, id).
		First(&perm).Error
	if err != nil {
		if isNotFound(err) {
			return types.AccessNone, nil
		}

		return types.AccessNone, err
	}

	lvl, err := types.ParseAccessLevel(perm.Level)
	if err != nil {
		return types.AccessNone, err
	}

	return lvl, nil
}

// Require 校验 userID 对目标至少具有 required 级别，不足返回 Forbidden.
// 目标不可见（不存在或已删除）时返回 NotFound，避免泄露存在性.
func (a *AccessService) Require(ctx context.Context, userID uint, target types.TargetRef, required types.AccessLevel) error {
	level, err := a.EffectiveAccess(ctx, userID, target)
	if err != nil {
		return err
	}

	if !level.Covers(required) {
		metrics.AccessDenials.WithLabelValues(target.Kind).Inc()

		if level == types.AccessNone {
			// 无任何可见性时按不存在处理
			return fmt.Errorf("%w: %s %d", types.ErrNotFound, target.Kind, target.ID)
		}

		return fmt.Errorf("%w: need %s on %s %d", types.ErrForbidden, required, target.Kind, target.ID)
	}

	return nil
}

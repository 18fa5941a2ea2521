package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// ListUsers 列出全部用户，仅管理员可用.
//
//	@Summary	用户列表
//	@Tags		管理
//	@Produce	json
//	@Success	200	{object}	types.ListUsersResponse
//	@Router		/api/v1/admin/users [get]
func ListUsers(c *gin.Context) {
	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateUser 管理员更新用户：激活、角色、存储上限.
//
//	@Summary	更新用户
//	@Tags		管理
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"用户 ID"
//	@Param		request	body		types.UpdateUserRequest	true	"更新内容"
//	@Success	200		{object}	types.UserInfo
//	@Router		/api/v1/admin/users/{id} [patch]
func UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	info, err := svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/middleware"
)

// Register 注册新用户.
//
//	@Summary	用户注册
//	@Tags		认证
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.RegisterRequest	true	"注册信息"
//	@Success	201		{object}	types.RegisterResponse
//	@Failure	409		{object}	map[string]string
//	@Router		/api/v1/auth/register [post]
func Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.Register(c.Request.Context(), &req)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login 登录并签发会话令牌.
//
//	@Summary	用户登录
//	@Tags		认证
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.LoginRequest	true	"登录信息"
//	@Success	200		{object}	types.LoginResponse
//	@Failure	401		{object}	map[string]string
//	@Router		/api/v1/auth/login [post]
func Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	resp, err := svc.Login(c.Request.Context(), &req)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout 注销当前会话.
//
//	@Summary	用户登出
//	@Tags		认证
//	@Produce	json
//	@Success	204
//	@Router		/api/v1/auth/logout [post]
func Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.Status(http.StatusNoContent)

		return
	}

	svc := service.NewUserService(c.Request.Context())

	if err := svc.Logout(c.Request.Context(), token); err != nil {
		respondErr(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// Me 返回当前登录用户信息.
//
//	@Summary	当前用户
//	@Tags		认证
//	@Produce	json
//	@Success	200	{object}	types.UserInfo
//	@Router		/api/v1/users/me [get]
func Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	info, err := svc.Get(c.Request.Context(), p.UserID)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, info)
}

// MyQuota 返回当前用户的配额使用情况.
//
//	@Summary	配额查询
//	@Tags		认证
//	@Produce	json
//	@Success	200	{object}	types.QuotaInfo
//	@Router		/api/v1/users/me/quota [get]
func MyQuota(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	q, err := svc.Quota(c.Request.Context(), p.UserID)
	if err != nil {
		respondErr(c, err)

		return
	}

	c.JSON(http.StatusOK, q)
}

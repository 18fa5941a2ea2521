// Package router 负责将路径绑定到 pkg/internal/handle 提供的处理器.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/handle"
	"github.com/yeisme/drivevault/pkg/middleware"
)

// Register 注册 /api/v1 下的全部路由.
// 认证由外层的 AuthMiddleware 统一处理，公开路径通过配置跳过.
func Register(g *gin.RouterGroup) {
	registerAuthRoutes(g)
	registerFolderRoutes(g)
	registerFileRoutes(g)
	registerTrashRoutes(g)
	registerShareRoutes(g)
	registerAdminRoutes(g)
	registerHealthRoutes(g)
}

func registerAuthRoutes(g *gin.RouterGroup) {
	auth := g.Group("/auth")
	{
		auth.POST("/register", handle.Register)
		auth.POST("/login", handle.Login)
		auth.POST("/logout", handle.Logout)
	}

	users := g.Group("/users")
	{
		users.GET("/me", handle.Me)
		users.GET("/me/quota", handle.MyQuota)
	}
}

func registerFolderRoutes(g *gin.RouterGroup) {
	folders := g.Group("/folders")
	{
		folders.POST("", handle.CreateFolder)
		folders.GET("/:id", handle.GetFolder)
		folders.GET("/:id/children", handle.ListFolder)
		folders.POST("/:id/rename", handle.RenameFolder)
		folders.POST("/:id/move", handle.MoveFolder)
		folders.DELETE("/:id", handle.DeleteFolder)
	}

	g.GET("/access", handle.EffectiveAccess)
}

func registerFileRoutes(g *gin.RouterGroup) {
	files := g.Group("/files")
	{
		files.POST("", handle.UploadFile)
		files.GET("/:id", handle.GetFile)
		files.GET("/:id/download", handle.DownloadFile)
		files.POST("/:id/rename", handle.RenameFile)
		files.POST("/:id/move", handle.MoveFile)
		files.DELETE("/:id", handle.DeleteFile)
	}

	g.GET("/search", handle.SearchEntries)
}

func registerTrashRoutes(g *gin.RouterGroup) {
	trash := g.Group("/trash")
	{
		trash.GET("", handle.ListTrash)
		trash.POST("/:kind/:id/restore", handle.RestoreTrash)
		trash.DELETE("/:kind/:id", handle.PurgeTrash)
	}
}

func registerShareRoutes(g *gin.RouterGroup) {
	shares := g.Group("/shares")
	{
		shares.POST("/grants", handle.CreateGrant)
		shares.GET("/grants", handle.ListGrants)
		shares.DELETE("/grants", handle.RevokeGrant)
		shares.GET("/shared", handle.ListShared)

		shares.POST("/links", handle.CreateShareLink)
		shares.GET("/links", handle.ListShareLinks)
		shares.DELETE("/links/:token", handle.RevokeShareLink)
	}

	// 匿名访问入口，路径在认证中间件的跳过名单中
	public := g.Group("/public")
	{
		public.GET("/:token", handle.ResolveShareLink)
		public.GET("/:token/download", handle.DownloadSharedFile)
	}
}

func registerAdminRoutes(g *gin.RouterGroup) {
	admin := g.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/users", handle.ListUsers)
		admin.PATCH("/users/:id", handle.UpdateUser)
	}
}

func registerHealthRoutes(g *gin.RouterGroup) {
	health := g.Group("/health")
	{
		health.GET("", handle.Health)
		health.GET("/db", handle.HealthDB)
		health.GET("/s3", handle.HealthS3)
		health.GET("/mq", handle.HealthMQ)
	}
}

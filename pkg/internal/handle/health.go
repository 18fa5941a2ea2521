// Package handle 新增健康检查处理器实现.
package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/configs"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
)

const healthTimeout = 2 * time.Second

// healthStatus 返回组件检查结果，nil 错误表示健康.
func healthStatus(c *gin.Context, component string, err error) {
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

// checkDB 探测数据库连通性.
func checkDB(ctx context.Context) error {
	dbc := ctxPkg.GetDBClient(ctx)
	if dbc == nil || dbc.DB == nil {
		return errComponentMissing("db")
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// checkS3 探测对象存储连通性.
func checkS3(ctx context.Context) error {
	s3c := ctxPkg.GetS3Client(ctx)
	if s3c == nil || s3c.Client == nil {
		return errComponentMissing("s3")
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	_, err := s3c.ListBuckets(ctx)

	return err
}

// checkMQ 探测消息队列客户端.
func checkMQ(ctx context.Context) error {
	if ctxPkg.GetMQClient(ctx) == nil {
		return errComponentMissing("mq")
	}

	return nil
}

type componentError string

func (e componentError) Error() string { return string(e) + " client not initialized" }

func errComponentMissing(name string) error { return componentError(name) }

// HealthDB 数据库健康检查.
func HealthDB(c *gin.Context) {
	healthStatus(c, "db", checkDB(c.Request.Context()))
}

// HealthS3 S3/对象存储健康检查.
func HealthS3(c *gin.Context) {
	healthStatus(c, "s3", checkS3(c.Request.Context()))
}

// HealthMQ 消息队列健康检查.
func HealthMQ(c *gin.Context) {
	healthStatus(c, "mq", checkMQ(c.Request.Context()))
}

// Health 聚合健康检查，任一必需组件异常时返回 503.
// MQ 与 S3 允许未配置（单机降级模式），只有数据库是硬依赖.
func Health(c *gin.Context) {
	ctx := c.Request.Context()

	components := gin.H{}
	status := http.StatusOK

	if err := checkDB(ctx); err != nil {
		components["db"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		components["db"] = "ok"
	}

	if err := checkS3(ctx); err != nil {
		components["s3"] = err.Error()
	} else {
		components["s3"] = "ok"
	}

	if err := checkMQ(ctx); err != nil {
		components["mq"] = err.Error()
	} else {
		components["mq"] = "ok"
	}

	c.JSON(status, gin.H{"version": configs.AppVersion, "components": components})
}

// Package main 启动应用程序
package main

import "github.com/yeisme/drivevault/pkg/cmd"

//	@title			DriveVault API
//	@version		1.0
//	@description	DriveVault 是一个多用户文件存储服务，提供文件夹层级管理、权限共享、分享链接与存储配额等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}

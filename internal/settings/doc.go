// Package settings 提供 plugin.Runtime 的多种实现，用于向插件提供 API 密钥：
// 进程环境变量与 .env 文件、YAML 文件、Redis hash、MySQL 表以及内存映射。
// 多个来源可以通过 Chain 组合，第一个给出非空值的来源生效。
//
// 查询失败只记录 debug 日志并视为缺失，密钥的值永远不会被记录。
package settings

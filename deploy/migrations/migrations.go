package migrations

import "embed"

// TablePlaceholder 在执行前被替换为实际的配置表名。
const TablePlaceholder = "{{table}}"

// Files 暴露所有 SQL 迁移文件。
//
//go:embed *.sql
var Files embed.FS

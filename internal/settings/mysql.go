package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"kiln-plugin/deploy/migrations"
	"kiln-plugin/internal/config"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// MySQL 从 name/value 表中读取配置。
type MySQL struct {
	db      *sql.DB
	table   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewMySQL 使用已有连接创建配置来源。表名只允许字母、数字和下划线。
func NewMySQL(db *sql.DB, table string, timeout time.Duration, log *slog.Logger) (*MySQL, error) {
	if db == nil {
		return nil, errors.New("MySQL 连接不能为空")
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("非法的配置表名 %q", table)
	}
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &MySQL{db: db, table: table, timeout: timeout, logger: log}, nil
}

// OpenMySQL 根据配置建立连接，EnsureSchema 为 true 时执行建表迁移。
func OpenMySQL(ctx context.Context, cfg config.MySQLSettingsConfig, log *slog.Logger) (*MySQL, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("MySQL DSN 不能为空")
	}
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("解析 MySQL DSN 失败: %w", err)
	}
	if dsn.Timeout == 0 {
		dsn.Timeout = cfg.Timeout()
	}

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法连接到 MySQL: %w", err)
	}

	store, err := NewMySQL(db, cfg.Table, cfg.Timeout(), log)
	if err != nil {
		db.Close()
		return nil, err
	}
	if cfg.EnsureSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return store, nil
}

// GetSetting 实现 plugin.Runtime。
func (m *MySQL) GetSetting(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var value string
	err := m.db.QueryRowContext(ctx, m.selectSQL(), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		m.logger.Debug("mysql settings lookup failed",
			slog.String("table", m.table), slog.String("name", key), slog.Any("error", err))
		return "", false
	}
	return value, true
}

// Put 写入或更新一个配置项。
func (m *MySQL) Put(ctx context.Context, key, value string) error {
	_, err := m.db.ExecContext(ctx, m.upsertSQL(), key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("写入配置 %s 失败: %w", key, err)
	}
	return nil
}

// Close 关闭底层连接。
func (m *MySQL) Close() error {
	return m.db.Close()
}

func (m *MySQL) selectSQL() string {
	return fmt.Sprintf("SELECT value FROM `%s` WHERE name = ? LIMIT 1", m.table)
}

func (m *MySQL) upsertSQL() string {
	return fmt.Sprintf("INSERT INTO `%s` (name, value, updated_at) VALUES (?, ?, ?) "+
		"ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)", m.table)
}

type migrationFile struct {
	version    string
	name       string
	statements []string
}

// EnsureSchema 按版本顺序执行尚未应用的迁移。
func (m *MySQL) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
        version VARCHAR(32) NOT NULL PRIMARY KEY,
        applied_at BIGINT NOT NULL
)`); err != nil {
		return fmt.Errorf("创建 schema_migrations 表失败: %w", err)
	}

	applied, err := m.loadAppliedVersions(ctx)
	if err != nil {
		return err
	}

	files, err := loadMigrationFiles(m.table)
	if err != nil {
		return err
	}
	for _, migration := range files {
		if _, ok := applied[migration.version]; ok {
			continue
		}
		if err := m.applyMigration(ctx, migration); err != nil {
			return err
		}
	}
	return nil
}

func (m *MySQL) loadAppliedVersions(ctx context.Context) (map[string]struct{}, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("查询 schema_migrations 失败: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("解析 schema_migrations 失败: %w", err)
		}
		applied[version] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历 schema_migrations 失败: %w", err)
	}
	return applied, nil
}

func (m *MySQL) applyMigration(ctx context.Context, migration migrationFile) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启迁移事务失败: %w", err)
	}
	for _, stmt := range migration.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("执行迁移 %s 失败: %w", migration.name, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		migration.version, time.Now().Unix()); err != nil {
		tx.Rollback()
		return fmt.Errorf("记录迁移版本失败: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交迁移事务失败: %w", err)
	}
	return nil
}

func loadMigrationFiles(table string) ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrations.Files, ".")
	if err != nil {
		return nil, fmt.Errorf("读取迁移目录失败: %w", err)
	}

	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		content, err := migrations.Files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("读取迁移文件 %s 失败: %w", name, err)
		}
		statements := splitSQLStatements(strings.ReplaceAll(string(content), migrations.TablePlaceholder, table))
		if len(statements) == 0 {
			continue
		}
		files = append(files, migrationFile{
			version:    parseMigrationVersion(name),
			name:       name,
			statements: statements,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].version == files[j].version {
			return files[i].name < files[j].name
		}
		return files[i].version < files[j].version
	})
	return files, nil
}

func splitSQLStatements(content string) []string {
	var statements []string
	for _, stmt := range strings.Split(content, ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			statements = append(statements, trimmed)
		}
	}
	return statements
}

func parseMigrationVersion(name string) string {
	if idx := strings.IndexRune(name, '_'); idx > 0 {
		return name[:idx]
	}
	if dot := strings.IndexRune(name, '.'); dot > 0 {
		return name[:dot]
	}
	return name
}

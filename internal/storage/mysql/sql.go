package mysql

import (
	"fmt"
	"strings"

	"dbseed/internal/config"
)

// quoteIdent quotes a single identifier with backticks.
func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

func createStagingSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (id INT AUTO_INCREMENT PRIMARY KEY, %s TEXT NOT NULL)",
		quoteIdent(cfg.StagingTable), quoteIdent(cfg.NameColumn),
	)
}

func dropStagingSQL(cfg config.DBConfig) string {
	return "DROP TABLE IF EXISTS " + quoteIdent(cfg.StagingTable)
}

// insertStagingSQL builds one multi-row INSERT plus its argument list.
func insertStagingSQL(cfg config.DBConfig, names []string) (string, []any) {
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, n := range names {
		placeholders[i] = "(?)"
		args[i] = n
	}
	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		quoteIdent(cfg.StagingTable), quoteIdent(cfg.NameColumn),
		strings.Join(placeholders, ", "),
	)
	return stmt, args
}

func stagingNamesSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY id",
		quoteIdent(cfg.NameColumn), quoteIdent(cfg.StagingTable),
	)
}

func insertIfAbsentSQL(cfg config.DBConfig) string {
	// MySQL rejects SELECT ... WHERE without a table; DUAL fills the gap.
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT ? FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s = ?)",
		quoteIdent(cfg.Table), quoteIdent(cfg.NameColumn),
		quoteIdent(cfg.Table), quoteIdent(cfg.NameColumn),
	)
}

func existsSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = ?)",
		quoteIdent(cfg.Table), quoteIdent(cfg.NameColumn),
	)
}

func targetRowsSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT %s, %s FROM %s ORDER BY %s",
		quoteIdent(cfg.IDColumn), quoteIdent(cfg.NameColumn),
		quoteIdent(cfg.Table), quoteIdent(cfg.IDColumn),
	)
}

package sqlite

import (
	"fmt"
	"strings"

	"dbseed/internal/config"
)

// quoteIdent quotes a single identifier: "name" -> `"name"`.
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func createStagingSQL(cfg config.DBConfig) string {
	// AUTOINCREMENT keeps ids strictly increasing even across deletes; the
	// staging table never deletes rows, but the guarantee is free.
	return fmt.Sprintf(
		"CREATE TABLE %s (id INTEGER PRIMARY KEY AUTOINCREMENT, %s TEXT NOT NULL)",
		quoteIdent(cfg.StagingTable), quoteIdent(cfg.NameColumn),
	)
}

func dropStagingSQL(cfg config.DBConfig) string {
	return "DROP TABLE IF EXISTS " + quoteIdent(cfg.StagingTable)
}

func insertStagingSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?)",
		quoteIdent(cfg.StagingTable), quoteIdent(cfg.NameColumn),
	)
}

func stagingNamesSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY id",
		quoteIdent(cfg.NameColumn), quoteIdent(cfg.StagingTable),
	)
}

func insertIfAbsentSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT ? WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s = ?)",
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

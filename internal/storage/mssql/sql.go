package mssql

import (
	"fmt"
	"strings"

	"dbseed/internal/config"
)

// quoteIdent quotes a single identifier segment with brackets.
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteFQN quotes a possibly schema-qualified name like "dbo.missiles".
func quoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func createStagingSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (id INT IDENTITY(1,1) PRIMARY KEY, %s NVARCHAR(255) NOT NULL)",
		quoteFQN(cfg.StagingTable), quoteIdent(cfg.NameColumn),
	)
}

func dropStagingSQL(cfg config.DBConfig) string {
	return "DROP TABLE IF EXISTS " + quoteFQN(cfg.StagingTable)
}

func insertStagingSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (@p1)",
		quoteFQN(cfg.StagingTable), quoteIdent(cfg.NameColumn),
	)
}

func stagingNamesSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY id",
		quoteIdent(cfg.NameColumn), quoteFQN(cfg.StagingTable),
	)
}

func insertIfAbsentSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT @name WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s = @name)",
		quoteFQN(cfg.Table), quoteIdent(cfg.NameColumn),
		quoteFQN(cfg.Table), quoteIdent(cfg.NameColumn),
	)
}

func existsSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT 1 FROM %s WHERE %s = @name",
		quoteFQN(cfg.Table), quoteIdent(cfg.NameColumn),
	)
}

func targetRowsSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT %s, %s FROM %s ORDER BY %s",
		quoteIdent(cfg.IDColumn), quoteIdent(cfg.NameColumn),
		quoteFQN(cfg.Table), quoteIdent(cfg.IDColumn),
	)
}

package postgres

import (
	"fmt"
	"strings"

	"dbseed/internal/config"
)

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.missiles" to
// "public"."missiles". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

func createStagingSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"CREATE TABLE %s (id integer GENERATED ALWAYS AS IDENTITY PRIMARY KEY, %s text NOT NULL)",
		pgFQN(cfg.StagingTable), pgIdent(cfg.NameColumn),
	)
}

func dropStagingSQL(cfg config.DBConfig) string {
	return "DROP TABLE IF EXISTS " + pgFQN(cfg.StagingTable)
}

func stagingNamesSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY id",
		pgIdent(cfg.NameColumn), pgFQN(cfg.StagingTable),
	)
}

func insertIfAbsentSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT $1 WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s = $1)",
		pgFQN(cfg.Table), pgIdent(cfg.NameColumn),
		pgFQN(cfg.Table), pgIdent(cfg.NameColumn),
	)
}

func existsSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)",
		pgFQN(cfg.Table), pgIdent(cfg.NameColumn),
	)
}

func targetRowsSQL(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"SELECT %s, %s FROM %s ORDER BY %s",
		pgIdent(cfg.IDColumn), pgIdent(cfg.NameColumn),
		pgFQN(cfg.Table), pgIdent(cfg.IDColumn),
	)
}

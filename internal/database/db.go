package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/iliyamo/vidly/internal/config"
)

// DSN builds the MySQL data source name for cfg.
// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps times consistent
// clientFoundRows=true -> UPDATE reports matched rows, not changed rows
func DSN(cfg config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Pass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.ClientFoundRows = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenBun wraps a MySQL connection in a bun.DB for the migration runner.
// Queries are echoed to stderr when verbose is set or BUNDEBUG is exported.
func OpenBun(cfg config.DatabaseConfig, verbose bool) (*bun.DB, error) {
	sqldb, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqldb, mysqldialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(verbose),
		bundebug.WithEnabled(verbose),
		bundebug.FromEnv("BUNDEBUG"),
	))
	return db, nil
}

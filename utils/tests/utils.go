package tests

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/go-entity/entity"
	"github.com/go-entity/entity/dialects"
	"github.com/go-entity/entity/dialects/sqlite"
	"github.com/go-entity/entity/logger"
)

//go:embed testdata/schema.sql testdata/fixtures.yaml
var testdata embed.FS

// OpenDB opens an in-memory sqlite database loaded with the fixtures, it is closed when t ends
func OpenDB(t testing.TB, opts ...entity.ConfigOption) *entity.DB {
	t.Helper()

	driver, conn, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite, got error %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := LoadFixtures(context.Background(), driver); err != nil {
		t.Fatalf("failed to load fixtures, got error %v", err)
	}

	db, err := entity.Open(driver, append([]entity.ConfigOption{entity.WithLogger(Logger())}, opts...)...)
	if err != nil {
		t.Fatalf("failed to open db, got error %v", err)
	}
	return db
}

// Logger picks the adapter named by ENTITY_TEST_LOGGER (zap, zerolog, logrus or slog) at the
// level in ENTITY_LOG_LEVEL, statements are discarded when it is unset
func Logger() logger.Interface {
	config := logger.Config{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      logger.LevelFromEnv(os.Getenv("ENTITY_LOG_LEVEL")),
	}

	switch os.Getenv("ENTITY_TEST_LOGGER") {
	case "zap":
		return logger.NewZapLogger(zap.NewExample(), config)
	case "zerolog":
		return logger.NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger(), config)
	case "zerolog-console":
		return logger.NewZerologConsoleLogger(config)
	case "slog":
		return logger.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)), config)
	case "logrus":
		l := logrus.New()
		l.SetLevel(logger.LogrusLevel(config.LogLevel))
		return logger.NewLogrusLogger(l, config)
	}
	return logger.Discard
}

// LoadFixtures creates the test tables and inserts the fixture rows, tables and columns in name order
func LoadFixtures(ctx context.Context, driver *dialects.Dialect) error {
	schema, err := testdata.ReadFile("testdata/schema.sql")
	if err != nil {
		return err
	}

	for _, stmt := range strings.Split(string(schema), ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := driver.ConnPool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}

	data, err := testdata.ReadFile("testdata/fixtures.yaml")
	if err != nil {
		return err
	}

	var fixtures map[string][]map[string]interface{}
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return err
	}

	tables := make([]string, 0, len(fixtures))
	for table := range fixtures {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		for _, row := range fixtures[table] {
			if err := insertRow(ctx, driver, table, row); err != nil {
				return fmt.Errorf("fixture %s: %w", table, err)
			}
		}
	}
	return nil
}

func insertRow(ctx context.Context, driver *dialects.Dialect, table string, row map[string]interface{}) error {
	columns := make([]string, 0, len(row))
	for column := range row {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	values := make([]interface{}, len(columns))
	for idx, column := range columns {
		values[idx] = row[column]
	}

	_, err := driver.Execute(ctx, driver.NewQueryBuilder().Insert(table).Columns(columns...).Values(values...))
	return err
}

package bigquery

import (
	"context"
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"google.golang.org/api/iterator"
)

const schemaMigrationsTable = "schema_migrations"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationName matches 0001_name.sql.
var migrationName = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

// Migration is one versioned DDL file.
type Migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string // sha256 of the file before placeholder substitution
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

// LoadMigrations reads the *.sql files at the root of fsys, substitutes
// {{DATASET_ID}} and returns them ordered by version. Files not named
// NNNN_name.sql are skipped.
func LoadMigrations(fsys fs.FS, dataset string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var out []Migration
	seen := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, _ := strconv.Atoi(m[1])
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("migration version %04d used by %s and %s", version, prev, e.Name())
		}
		seen[version] = e.Name()

		content, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		out = append(out, Migration{
			Version:  version,
			Name:     m[2],
			SQL:      strings.ReplaceAll(string(content), "{{DATASET_ID}}", dataset),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Pending returns the migrations whose version is not in applied. A
// recorded checksum that no longer matches its file is an error.
func Pending(all []Migration, applied []AppliedMigration) ([]Migration, error) {
	done := make(map[int]AppliedMigration, len(applied))
	for _, a := range applied {
		done[a.Version] = a
	}
	var out []Migration
	for _, m := range all {
		a, ok := done[m.Version]
		if !ok {
			out = append(out, m)
			continue
		}
		if a.Checksum != "" && a.Checksum != m.Checksum {
			return nil, fmt.Errorf("migration %04d_%s changed after it was applied", m.Version, m.Name)
		}
	}
	return out, nil
}

// BuiltinMigrations returns the embedded warehouse schema for dataset.
func BuiltinMigrations(dataset string) ([]Migration, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return LoadMigrations(sub, dataset)
}

// MigrateWithClient applies the pending built-in migrations in order and
// records each one. It returns how many were applied.
func MigrateWithClient(ctx context.Context, client *bigquery.Client, dataset, appliedBy string) (int, error) {
	log := logger.FromContext(ctx)

	all, err := BuiltinMigrations(dataset)
	if err != nil {
		return 0, err
	}
	// 0001 creates schema_migrations itself; run it unconditionally.
	if len(all) > 0 && all[0].Version == 1 {
		if err := runDML(ctx, client, all[0].SQL, nil); err != nil {
			return 0, fmt.Errorf("Migrate: %04d_%s: %w", all[0].Version, all[0].Name, err)
		}
	}

	applied, err := appliedMigrations(ctx, client, dataset)
	if err != nil {
		return 0, err
	}
	pending, err := Pending(all, applied)
	if err != nil {
		return 0, err
	}

	for _, m := range pending {
		if m.Version != 1 {
			if err := runDML(ctx, client, m.SQL, nil); err != nil {
				return 0, fmt.Errorf("Migrate: %04d_%s: %w", m.Version, m.Name, err)
			}
		}
		if err := recordMigration(ctx, client, dataset, m, appliedBy); err != nil {
			return 0, err
		}
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("migration applied")
	}
	return len(pending), nil
}

func appliedMigrations(ctx context.Context, client *bigquery.Client, dataset string) ([]AppliedMigration, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM %s.%s
		ORDER BY version
	`, dataset, schemaMigrationsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var out []AppliedMigration
	for {
		var row struct {
			Version   int64               `bigquery:"version"`
			Name      string              `bigquery:"name"`
			AppliedAt time.Time           `bigquery:"applied_at"`
			Checksum  bigquery.NullString `bigquery:"checksum"`
			AppliedBy bigquery.NullString `bigquery:"applied_by"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading applied migrations: %w", err)
		}
		out = append(out, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}
	return out, nil
}

func recordMigration(ctx context.Context, client *bigquery.Client, dataset string, m Migration, appliedBy string) error {
	err := runDML(ctx, client, fmt.Sprintf(`
		INSERT INTO %s.%s (version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, dataset, schemaMigrationsTable), []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	})
	if err != nil {
		return fmt.Errorf("recording migration %04d_%s: %w", m.Version, m.Name, err)
	}
	return nil
}

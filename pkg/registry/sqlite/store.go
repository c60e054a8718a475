package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/benbjohnson/clock"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"k8s.io/client-go/util/retry"
	klog "k8s.io/klog/v2"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	stewarderrors "github.com/SAP/stewardci-provenance/pkg/errors"
	"github.com/SAP/stewardci-provenance/pkg/featureflag"
	fpmetrics "github.com/SAP/stewardci-provenance/pkg/fingerprint/metrics"
	"github.com/SAP/stewardci-provenance/pkg/metrics"
	"github.com/SAP/stewardci-provenance/pkg/registry"
)

const schema = `
CREATE TABLE IF NOT EXISTS fingerprints (
	digest TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	original_job TEXT NOT NULL,
	original_number INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS fingerprint_usages (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	digest TEXT NOT NULL REFERENCES fingerprints(digest),
	job TEXT NOT NULL,
	number INTEGER NOT NULL,
	UNIQUE (digest, job, number)
);
CREATE TABLE IF NOT EXISTS build_records (
	job TEXT NOT NULL,
	number INTEGER NOT NULL,
	PRIMARY KEY (job, number)
);
CREATE TABLE IF NOT EXISTS build_record_files (
	job TEXT NOT NULL,
	number INTEGER NOT NULL,
	file_name TEXT NOT NULL,
	digest TEXT NOT NULL,
	PRIMARY KEY (job, number, file_name)
);
`

// Store is a registry.Store persisted in a SQLite database.
type Store struct {
	db    *sql.DB
	clock clock.Clock
}

// Compiler check for interface compliance
var _ registry.Store = (*Store)(nil)

// Open opens or creates the database at path and initializes the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, stewarderrors.Infra(errors.Wrapf(err, "failed to open fingerprint database %q", path))
	}
	// writes are serialized, concurrent readers are served by WAL
	db.SetMaxOpenConns(1)

	s := &Store{db: db, clock: clock.New()}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, stewarderrors.Infra(errors.Wrapf(err, "failed to initialize fingerprint database %q", path))
	}
	klog.FromContext(ctx).V(1).Info("Opened fingerprint database", "path", path)
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`PRAGMA foreign_keys=ON;`,
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Resolve implements fingerprint.Resolver.
func (s *Store) Resolve(ctx context.Context, digest string) (*api.RegistryEntry, bool, error) {
	var entry *api.RegistryEntry
	err := s.withRetry(func() error {
		var err error
		entry, err = s.resolve(ctx, s.db, digest)
		return err
	})
	if err != nil {
		return nil, false, stewarderrors.Infra(errors.Wrapf(err, "failed to resolve fingerprint %s", digest))
	}
	return entry, entry != nil, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (s *Store) resolve(ctx context.Context, q querier, digest string) (*api.RegistryEntry, error) {
	entry := &api.RegistryEntry{Digest: digest}
	var createdAt int64
	err := q.QueryRowContext(ctx,
		`SELECT file_name, original_job, original_number, created_at FROM fingerprints WHERE digest = ?`,
		digest,
	).Scan(&entry.FileName, &entry.Original.Job, &entry.Original.Number, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry.Timestamp = time.Unix(0, createdAt).UTC()

	rows, err := q.QueryContext(ctx,
		`SELECT job, number FROM fingerprint_usages WHERE digest = ? ORDER BY seq`,
		digest,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var usage api.BuildRef
		if err := rows.Scan(&usage.Job, &usage.Number); err != nil {
			return nil, err
		}
		entry.Usages = append(entry.Usages, usage)
	}
	return entry, rows.Err()
}

// Record implements registry.Registry.
func (s *Store) Record(ctx context.Context, digest, fileName string, build api.BuildRef) (*api.RegistryEntry, error) {
	if err := registry.ValidateEntry(digest, fileName, build); err != nil {
		return nil, errors.Wrapf(err, "cannot record file %q of build %s", fileName, build)
	}

	var entry *api.RegistryEntry
	var created bool
	err := s.withRetry(func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			result, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO fingerprints (digest, file_name, original_job, original_number, created_at)
				 VALUES (?, ?, ?, ?, ?)`,
				digest, fileName, build.Job, build.Number, s.clock.Now().UnixNano(),
			)
			if err != nil {
				return err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return err
			}
			created = affected == 1

			if created || featureflag.TrackUsages.Enabled() {
				if _, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO fingerprint_usages (digest, job, number) VALUES (?, ?, ?)`,
					digest, build.Job, build.Number,
				); err != nil {
					return err
				}
			}

			entry, err = s.resolve(ctx, tx, digest)
			return err
		})
	})
	if err != nil {
		return nil, stewarderrors.Infra(errors.Wrapf(err, "failed to record fingerprint %s of build %s", digest, build))
	}
	if created {
		fpmetrics.EntriesCreated.Inc()
		klog.FromContext(ctx).V(3).Info("Registered new fingerprint",
			"digest", digest, "fileName", fileName, "build", build.String())
	}
	return entry, nil
}

// GetFingerprintRecord implements fingerprint.RecordSource.
func (s *Store) GetFingerprintRecord(ctx context.Context, build api.BuildRef) (api.FingerprintRecord, bool, error) {
	var record api.FingerprintRecord
	err := s.withRetry(func() error {
		record = nil
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM build_records WHERE job = ? AND number = ?`,
			build.Job, build.Number,
		).Scan(&exists)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		rows, err := s.db.QueryContext(ctx,
			`SELECT file_name, digest FROM build_record_files WHERE job = ? AND number = ?`,
			build.Job, build.Number,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		record = api.FingerprintRecord{}
		for rows.Next() {
			var fileName, digest string
			if err := rows.Scan(&fileName, &digest); err != nil {
				return err
			}
			record[fileName] = digest
		}
		return rows.Err()
	})
	if err != nil {
		return nil, false, stewarderrors.Infra(errors.Wrapf(err, "failed to get fingerprint record of build %s", build))
	}
	return record, record != nil, nil
}

// AttachRecord implements registry.RecordStore.
func (s *Store) AttachRecord(ctx context.Context, build api.BuildRef, record api.FingerprintRecord) error {
	if err := registry.ValidateRecord(build, record); err != nil {
		return err
	}
	err := s.withRetry(func() error {
		return s.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO build_records (job, number) VALUES (?, ?)`,
				build.Job, build.Number,
			); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM build_record_files WHERE job = ? AND number = ?`,
				build.Job, build.Number,
			); err != nil {
				return err
			}
			for _, fileName := range record.FileNames() {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO build_record_files (job, number, file_name, digest) VALUES (?, ?, ?, ?)`,
					build.Job, build.Number, fileName, record[fileName],
				); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return stewarderrors.Infra(errors.Wrapf(err, "failed to attach fingerprint record to build %s", build))
	}
	return nil
}

// ListBuilds implements registry.RecordStore.
func (s *Store) ListBuilds(ctx context.Context, job string) ([]api.BuildRef, error) {
	var result []api.BuildRef
	err := s.withRetry(func() error {
		result = []api.BuildRef{}
		rows, err := s.db.QueryContext(ctx,
			`SELECT number FROM build_records WHERE job = ? ORDER BY number`,
			job,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			build := api.BuildRef{Job: job}
			if err := rows.Scan(&build.Number); err != nil {
				return err
			}
			result = append(result, build)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, stewarderrors.Infra(errors.Wrapf(err, "failed to list builds of job %q", job))
	}
	return result, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// withRetry retries fn while the database is busy.
func (s *Store) withRetry(fn func() error) error {
	codeLocation := metrics.CodeLocation(1)
	start := s.clock.Now()
	var retryCount uint64
	attempt := 0
	err := retry.OnError(retry.DefaultBackoff, isBusy, func() error {
		if attempt > 0 {
			retryCount++
		}
		attempt++
		return fn()
	})
	metrics.Retries.Observe(codeLocation, retryCount, s.clock.Since(start))
	return err
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

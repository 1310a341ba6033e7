package spectrastore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/wispify/internal/monitoring"
	"github.com/banshee-data/wispify/internal/timeutil"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	kindAmplitude = "amplitude"
	kindPhase     = "phase"
)

var (
	// ErrNotFound is returned when no collection has the requested name.
	ErrNotFound = errors.New("spectrastore: collection not found")
	// ErrExists is returned when saving over an existing collection name.
	ErrExists = errors.New("spectrastore: collection already exists")
)

// Store is a SQLite database of spectral collections.
type Store struct {
	*sql.DB
	// Clock stamps new collections.
	Clock timeutil.Clock
}

// Collection describes one stored spectral pool.
type Collection struct {
	ID         uuid.UUID
	Name       string
	Mode       spectral.Mode
	Amplitudes int
	Phases     int
	CreatedAt  time.Time
}

// Open opens (creating if needed) the store at path and applies any pending
// schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("spectrastore: open %s: %w", path, err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	s := &Store{DB: db, Clock: timeutil.RealClock{}}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("spectrastore: migration source: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("spectrastore: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("spectrastore: migrate: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// migrateUp does not close the migrate instance: that would close s.DB.
func (s *Store) migrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("spectrastore: migration up failed: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version and whether the last
// migration left the schema dirty. A fresh database reports 0.
func (s *Store) SchemaVersion() (uint, bool, error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("spectrastore: schema version: %w", err)
	}
	return version, dirty, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Debugf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }

// SaveCollection stores lib under name. Every spectrum must have
// mode.Axes() axes.
func (s *Store) SaveCollection(ctx context.Context, name string, mode spectral.Mode, lib *spectral.Library) (Collection, error) {
	if name == "" {
		return Collection{}, errors.New("spectrastore: collection name is empty")
	}
	if err := mode.Validate(); err != nil {
		return Collection{}, err
	}
	if lib == nil {
		return Collection{}, errors.New("spectrastore: nil library")
	}
	for i, sp := range lib.Amplitudes {
		if sp.Axes() != mode.Axes() {
			return Collection{}, fmt.Errorf("spectrastore: amplitude %d has %d axes, %s wants %d: %w",
				i, sp.Axes(), mode, mode.Axes(), faults.ErrShapeMismatch)
		}
	}
	for i, sp := range lib.Phases {
		if sp.Axes() != mode.Axes() {
			return Collection{}, fmt.Errorf("spectrastore: phase %d has %d axes, %s wants %d: %w",
				i, sp.Axes(), mode, mode.Axes(), faults.ErrShapeMismatch)
		}
	}

	c := Collection{
		ID:         uuid.New(),
		Name:       name,
		Mode:       mode,
		Amplitudes: len(lib.Amplitudes),
		Phases:     len(lib.Phases),
		CreatedAt:  s.Clock.Now().UTC(),
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return Collection{}, fmt.Errorf("spectrastore: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return Collection{}, fmt.Errorf("spectrastore: lookup %q: %w", name, err)
	}
	if exists > 0 {
		return Collection{}, fmt.Errorf("%w: %q", ErrExists, name)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collections (collection_id, name, mode, created_unix_nanos) VALUES (?, ?, ?, ?)`,
		c.ID.String(), c.Name, int(c.Mode), c.CreatedAt.UnixNano())
	if err != nil {
		return Collection{}, fmt.Errorf("spectrastore: insert collection %q: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO spectra (collection_id, kind, ordinal, axes, bins, data_json) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Collection{}, fmt.Errorf("spectrastore: prepare: %w", err)
	}
	defer stmt.Close()

	insert := func(kind string, pool []spectral.Spectrum) error {
		for i, sp := range pool {
			data, err := json.Marshal([][]float64(sp))
			if err != nil {
				return fmt.Errorf("spectrastore: encode %s %d: %w", kind, i, err)
			}
			if _, err := stmt.ExecContext(ctx, c.ID.String(), kind, i, sp.Axes(), sp.Bins(), string(data)); err != nil {
				return fmt.Errorf("spectrastore: insert %s %d: %w", kind, i, err)
			}
		}
		return nil
	}
	if err := insert(kindAmplitude, lib.Amplitudes); err != nil {
		return Collection{}, err
	}
	if err := insert(kindPhase, lib.Phases); err != nil {
		return Collection{}, err
	}

	if err := tx.Commit(); err != nil {
		return Collection{}, fmt.Errorf("spectrastore: commit: %w", err)
	}
	monitoring.Debugf("spectrastore: saved %q (%s, %d amplitudes, %d phases)",
		name, c.ID, c.Amplitudes, c.Phases)
	return c, nil
}

// LoadCollection returns the library stored under name.
func (s *Store) LoadCollection(ctx context.Context, name string) (*spectral.Library, Collection, error) {
	c, err := s.collection(ctx, name)
	if err != nil {
		return nil, Collection{}, err
	}

	rows, err := s.QueryContext(ctx,
		`SELECT kind, axes, bins, data_json FROM spectra WHERE collection_id = ? ORDER BY kind, ordinal`,
		c.ID.String())
	if err != nil {
		return nil, Collection{}, fmt.Errorf("spectrastore: query spectra: %w", err)
	}
	defer rows.Close()

	var amps, phases []spectral.Spectrum
	for rows.Next() {
		var (
			kind       string
			axes, bins int
			data       string
		)
		if err := rows.Scan(&kind, &axes, &bins, &data); err != nil {
			return nil, Collection{}, fmt.Errorf("spectrastore: scan spectrum: %w", err)
		}
		var sp spectral.Spectrum
		if err := json.Unmarshal([]byte(data), &sp); err != nil {
			return nil, Collection{}, fmt.Errorf("spectrastore: decode %s: %w", kind, err)
		}
		if sp.Axes() != axes || sp.Bins() != bins {
			return nil, Collection{}, fmt.Errorf("spectrastore: %s is %dx%d, row says %dx%d: %w",
				kind, sp.Axes(), sp.Bins(), axes, bins, faults.ErrShapeMismatch)
		}
		switch kind {
		case kindAmplitude:
			amps = append(amps, sp)
		case kindPhase:
			phases = append(phases, sp)
		default:
			return nil, Collection{}, fmt.Errorf("spectrastore: unknown spectrum kind %q", kind)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, Collection{}, fmt.Errorf("spectrastore: read spectra: %w", err)
	}

	lib, err := spectral.NewLibrary(amps, phases)
	if err != nil {
		return nil, Collection{}, fmt.Errorf("spectrastore: collection %q: %w", name, err)
	}
	return lib, c, nil
}

// ListCollections returns every collection ordered by name.
func (s *Store) ListCollections(ctx context.Context) ([]Collection, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT c.collection_id, c.name, c.mode, c.created_unix_nanos,
			COALESCE(SUM(sp.kind = 'amplitude'), 0),
			COALESCE(SUM(sp.kind = 'phase'), 0)
		FROM collections c
		LEFT JOIN spectra sp ON sp.collection_id = c.collection_id
		GROUP BY c.collection_id
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("spectrastore: list collections: %w", err)
	}
	defer rows.Close()

	var out []Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("spectrastore: list collections: %w", err)
	}
	return out, nil
}

// DeleteCollection removes a collection and its spectra.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	c, err := s.collection(ctx, name)
	if err != nil {
		return err
	}
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("spectrastore: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM spectra WHERE collection_id = ?`, c.ID.String()); err != nil {
		return fmt.Errorf("spectrastore: delete spectra of %q: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE collection_id = ?`, c.ID.String()); err != nil {
		return fmt.Errorf("spectrastore: delete %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("spectrastore: commit: %w", err)
	}
	return nil
}

func (s *Store) collection(ctx context.Context, name string) (Collection, error) {
	row := s.QueryRowContext(ctx, `
		SELECT c.collection_id, c.name, c.mode, c.created_unix_nanos,
			COALESCE(SUM(sp.kind = 'amplitude'), 0),
			COALESCE(SUM(sp.kind = 'phase'), 0)
		FROM collections c
		LEFT JOIN spectra sp ON sp.collection_id = c.collection_id
		WHERE c.name = ?
		GROUP BY c.collection_id`, name)
	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Collection{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollection(r scanner) (Collection, error) {
	var (
		c     Collection
		id    string
		mode  int
		nanos int64
	)
	if err := r.Scan(&id, &c.Name, &mode, &nanos, &c.Amplitudes, &c.Phases); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Collection{}, err
		}
		return Collection{}, fmt.Errorf("spectrastore: scan collection: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Collection{}, fmt.Errorf("spectrastore: collection %q id: %w", c.Name, err)
	}
	c.ID = parsed
	c.Mode = spectral.Mode(mode)
	c.CreatedAt = time.Unix(0, nanos).UTC()
	return c, nil
}

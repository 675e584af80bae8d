package adapters

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	ports "github.com/duegraph/entitylens/lens/resolver/ports"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// LibSQLDirectory implements the Directory port over an embedded libsql
// database. Resolution and suggestion semantics match MemoryDirectory.
type LibSQLDirectory struct {
	db *sql.DB
}

// NewLibSQLDirectory applies the directory schema migrations and wraps db.
func NewLibSQLDirectory(db *sql.DB) (*LibSQLDirectory, error) {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return nil, fmt.Errorf("apply directory migrations: %w", err)
	}
	return &LibSQLDirectory{db: db}, nil
}

// UpsertEntity inserts or updates an entity. Empty fields in the update
// never clobber existing values.
func (d *LibSQLDirectory) UpsertEntity(ctx context.Context, e ports.EntityRef) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("upsert entity: empty id")
	}
	const query = `
		INSERT INTO entities (id, name, type, description) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = COALESCE(NULLIF(excluded.name, ''), entities.name),
			type = COALESCE(NULLIF(excluded.type, ''), entities.type),
			description = COALESCE(NULLIF(excluded.description, ''), entities.description)
	`
	if _, err := d.db.ExecContext(ctx, query, e.ID, e.Name, string(e.Type), e.Description); err != nil {
		return fmt.Errorf("upsert entity %s: %w", e.ID, err)
	}
	return nil
}

// Resolve maps an identifier to a single entity: by id, then by exact name
// (case-insensitive), then by fuzzy search accepting only a lone match.
func (d *LibSQLDirectory) Resolve(ctx context.Context, query string) (ports.ResolveResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ports.ResolveResult{Status: ports.ResolveNotFound}, nil
	}

	if e, ok, err := d.getByID(ctx, query); err != nil {
		return ports.ResolveResult{}, err
	} else if ok {
		return ports.ResolveResult{Status: ports.ResolveFound, Entity: &e, By: "id"}, nil
	}

	matches, err := d.findByNameExact(ctx, query)
	if err != nil {
		return ports.ResolveResult{}, err
	}
	switch {
	case len(matches) == 1:
		e := matches[0]
		return ports.ResolveResult{Status: ports.ResolveFound, Entity: &e, By: "name"}, nil
	case len(matches) > 1:
		return ports.ResolveResult{
			Status:  ports.ResolveAmbiguous,
			By:      "name",
			Matches: toCandidates(matches, 3, "name"),
		}, nil
	}

	fuzzy, err := d.Suggest(ctx, query, 5)
	if err != nil {
		return ports.ResolveResult{}, err
	}
	switch {
	case len(fuzzy) == 1:
		if e, ok, err := d.getByID(ctx, fuzzy[0].ID); err != nil {
			return ports.ResolveResult{}, err
		} else if ok {
			return ports.ResolveResult{Status: ports.ResolveFound, Entity: &e, By: "fuzzy"}, nil
		}
	case len(fuzzy) > 1:
		return ports.ResolveResult{Status: ports.ResolveAmbiguous, By: "fuzzy", Matches: fuzzy}, nil
	}
	return ports.ResolveResult{Status: ports.ResolveNotFound}, nil
}

func (d *LibSQLDirectory) getByID(ctx context.Context, id string) (ports.EntityRef, bool, error) {
	const query = `SELECT id, COALESCE(name,''), COALESCE(type,''), COALESCE(description,'') FROM entities WHERE id = ?`
	var e ports.EntityRef
	var typ string
	err := d.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &typ, &e.Description)
	if err == sql.ErrNoRows {
		return ports.EntityRef{}, false, nil
	}
	if err != nil {
		return ports.EntityRef{}, false, fmt.Errorf("get entity %s: %w", id, err)
	}
	e.Type = ports.EntityType(typ)
	return e, true, nil
}

func (d *LibSQLDirectory) findByNameExact(ctx context.Context, name string) ([]ports.EntityRef, error) {
	const query = `
		SELECT id, COALESCE(name,''), COALESCE(type,''), COALESCE(description,'')
		FROM entities
		WHERE LOWER(name) = LOWER(?)
		ORDER BY COALESCE(type,''), id
	`
	rows, err := d.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("find by exact name: %w", err)
	}
	defer rows.Close()

	var out []ports.EntityRef
	for rows.Next() {
		var e ports.EntityRef
		var typ string
		if err := rows.Scan(&e.ID, &e.Name, &typ, &e.Description); err != nil {
			return nil, fmt.Errorf("scan entity row: %w", err)
		}
		e.Type = ports.EntityType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Suggest returns fuzzy candidates: starts-with matches score 2, containment
// matches score 1, ordered by score, name length, name, id.
func (d *LibSQLDirectory) Suggest(ctx context.Context, query string, limit int) ([]ports.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}

	const stmt = `
		SELECT id, COALESCE(name,''), COALESCE(type,''),
			CASE WHEN LOWER(name) LIKE LOWER(?) || '%' OR LOWER(id) LIKE LOWER(?) || '%' THEN 2 ELSE 1 END AS score
		FROM entities
		WHERE LOWER(name) LIKE '%' || LOWER(?) || '%' OR LOWER(id) LIKE '%' || LOWER(?) || '%'
		ORDER BY score DESC, LENGTH(name), LOWER(name), id
		LIMIT ?
	`
	rows, err := d.db.QueryContext(ctx, stmt, query, query, query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest query: %w", err)
	}
	defer rows.Close()

	lower := strings.ToLower(query)
	var out []ports.Candidate
	for rows.Next() {
		var c ports.Candidate
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Score); err != nil {
			return nil, fmt.Errorf("scan suggestion row: %w", err)
		}
		c.Type = ports.EntityType(typ)
		c.SourceKind = ports.SourceInternal
		c.MatchedFields = matchedFields(ports.EntityRef{ID: c.ID, Name: c.Name}, lower)
		out = append(out, c)
	}
	return out, rows.Err()
}

var _ ports.Directory = (*LibSQLDirectory)(nil)

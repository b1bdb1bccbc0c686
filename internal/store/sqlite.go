package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lifeloom/lineage/internal/core/model"
)

// SQLiteStore is the embedded single-file backend.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    name TEXT NOT NULL,
    aliases_json TEXT NOT NULL DEFAULT '[]',
    relationship_to_user TEXT NOT NULL DEFAULT '',
    bio_snippet TEXT NOT NULL DEFAULT '',
    importance_score REAL NOT NULL DEFAULT 0,
    confidence_score REAL NOT NULL DEFAULT 0,
    extraction_status TEXT NOT NULL DEFAULT 'pending',
    merged_from_id TEXT NOT NULL DEFAULT '',
    merged_from_ids_json TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_people_project ON people(project_id);

CREATE TABLE IF NOT EXISTS photo_associations (
    id TEXT PRIMARY KEY,
    person_id TEXT NOT NULL,
    photo_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_photo_person ON photo_associations(person_id);

CREATE TABLE IF NOT EXISTS relationships (
    id TEXT PRIMARY KEY,
    from_person_id TEXT NOT NULL,
    to_person_id TEXT NOT NULL,
    relation_type TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_rel_from ON relationships(from_person_id);
CREATE INDEX IF NOT EXISTS idx_rel_to ON relationships(to_person_id);

CREATE TABLE IF NOT EXISTS merge_logs (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    primary_person_id TEXT NOT NULL,
    secondary_person_id TEXT NOT NULL,
    strategy TEXT NOT NULL,
    rollback_json TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

const personColumns = `id, project_id, name, aliases_json, relationship_to_user, bio_snippet,
	importance_score, confidence_score, extraction_status, merged_from_id, merged_from_ids_json, created_at`

func scanPerson(row interface{ Scan(...any) error }) (*model.Person, error) {
	var p model.Person
	var aliasesJSON, mergedFromJSON, createdAt string
	err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &aliasesJSON, &p.RelationshipToUser, &p.BioSnippet,
		&p.ImportanceScore, &p.ConfidenceScore, &p.ExtractionStatus, &p.MergedFromID, &mergedFromJSON, &createdAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(aliasesJSON), &p.Aliases); err != nil {
		return nil, fmt.Errorf("decode aliases: %w", err)
	}
	if err := json.Unmarshal([]byte(mergedFromJSON), &p.MergedFromIDs); err != nil {
		return nil, fmt.Errorf("decode merged_from_ids: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &p, nil
}

func (s *SQLiteStore) ListPeople(ctx context.Context, projectID string, excludeStatus ...model.ExtractionStatus) ([]model.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE project_id = ?`
	args := []any{projectID}
	for _, st := range excludeStatus {
		query += ` AND extraction_status != ?`
		args = append(args, string(st))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var out []model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("person", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) InsertPerson(ctx context.Context, p *model.Person) error {
	aliasesJSON, err := json.Marshal(nonNil(p.Aliases))
	if err != nil {
		return fmt.Errorf("encode aliases: %w", err)
	}
	mergedFromJSON, err := json.Marshal(nonNil(p.MergedFromIDs))
	if err != nil {
		return fmt.Errorf("encode merged_from_ids: %w", err)
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO people (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ProjectID, p.Name, string(aliasesJSON), p.RelationshipToUser, p.BioSnippet,
		p.ImportanceScore, p.ConfidenceScore, string(p.ExtractionStatus), p.MergedFromID,
		string(mergedFromJSON), createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdatePerson(ctx context.Context, id string, patch PersonPatch) error {
	// Read-modify-write keeps patch semantics identical to the other
	// backends; person writes are serialized by the merge engine anyway.
	p, err := s.GetPerson(ctx, id)
	if err != nil {
		return err
	}
	ApplyPatch(p, patch)
	return s.InsertPerson(ctx, p)
}

func (s *SQLiteStore) ListPhotoAssociations(ctx context.Context, personID string) ([]model.PhotoAssociation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, photo_id FROM photo_associations WHERE person_id = ? ORDER BY id`, personID)
	if err != nil {
		return nil, fmt.Errorf("list photo associations: %w", err)
	}
	defer rows.Close()

	var out []model.PhotoAssociation
	for rows.Next() {
		var a model.PhotoAssociation
		if err := rows.Scan(&a.ID, &a.PersonID, &a.PhotoID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ReassignPhotoAssociation(ctx context.Context, id, newPersonID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE photo_associations SET person_id = ? WHERE id = ?`, newPersonID, id)
	if err != nil {
		return fmt.Errorf("reassign photo association: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NewNotFoundError("photo association", id)
	}
	return nil
}

func (s *SQLiteStore) ListRelationships(ctx context.Context, personID string) ([]model.Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_person_id, to_person_id, relation_type FROM relationships
		 WHERE from_person_id = ? OR to_person_id = ? ORDER BY id`, personID, personID)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()

	var out []model.Relationship
	for rows.Next() {
		var r model.Relationship
		if err := rows.Scan(&r.ID, &r.FromPersonID, &r.ToPersonID, &r.RelationType); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetRelationship(ctx context.Context, id string) (*model.Relationship, error) {
	var r model.Relationship
	err := s.db.QueryRowContext(ctx,
		`SELECT id, from_person_id, to_person_id, relation_type FROM relationships WHERE id = ?`, id).
		Scan(&r.ID, &r.FromPersonID, &r.ToPersonID, &r.RelationType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("relationship", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get relationship: %w", err)
	}
	return &r, nil
}

func (s *SQLiteStore) ReassignRelationshipEndpoint(ctx context.Context, id string, role model.EndpointRole, newPersonID string) error {
	column := "to_person_id"
	if role == model.RoleFrom {
		column = "from_person_id"
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE relationships SET `+column+` = ? WHERE id = ?`, newPersonID, id)
	if err != nil {
		return fmt.Errorf("reassign relationship endpoint: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NewNotFoundError("relationship", id)
	}
	return nil
}

func (s *SQLiteStore) InsertMergeLog(ctx context.Context, log *model.MergeLog) error {
	rollbackJSON, err := json.Marshal(log.Rollback)
	if err != nil {
		return fmt.Errorf("encode rollback data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO merge_logs (id, project_id, primary_person_id, secondary_person_id, strategy, rollback_json, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.ProjectID, log.PrimaryPersonID, log.SecondaryPersonID, string(log.Strategy),
		string(rollbackJSON), string(log.Status), log.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert merge log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetMergeLog(ctx context.Context, id string) (*model.MergeLog, error) {
	var l model.MergeLog
	var rollbackJSON, createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, primary_person_id, secondary_person_id, strategy, rollback_json, status, created_at
		FROM merge_logs WHERE id = ?`, id).
		Scan(&l.ID, &l.ProjectID, &l.PrimaryPersonID, &l.SecondaryPersonID, &l.Strategy, &rollbackJSON, &l.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError("merge log", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get merge log: %w", err)
	}
	if err := json.Unmarshal([]byte(rollbackJSON), &l.Rollback); err != nil {
		return nil, fmt.Errorf("decode rollback data: %w", err)
	}
	l.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &l, nil
}

func (s *SQLiteStore) UpdateMergeLogStatus(ctx context.Context, id string, status model.MergeLogStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE merge_logs SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update merge log status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NewNotFoundError("merge log", id)
	}
	return nil
}

// AddPhotoAssociation and AddRelationship let the surrounding application
// (and tests) seed association rows; the resolution core itself never
// creates them.

func (s *SQLiteStore) AddPhotoAssociation(ctx context.Context, a model.PhotoAssociation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO photo_associations (id, person_id, photo_id) VALUES (?, ?, ?)`,
		a.ID, a.PersonID, a.PhotoID)
	if err != nil {
		return fmt.Errorf("insert photo association: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddRelationship(ctx context.Context, r model.Relationship) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO relationships (id, from_person_id, to_person_id, relation_type) VALUES (?, ?, ?, ?)`,
		r.ID, r.FromPersonID, r.ToPersonID, r.RelationType)
	if err != nil {
		return fmt.Errorf("insert relationship: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

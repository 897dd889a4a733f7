package notebooks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	pkgdb "github.com/unowned-ai/infograph/pkg/db"
)

// Store is the durable record store for notebooks. Every write replaces the
// whole record and is all-or-nothing.
type Store interface {
	// Init prepares the underlying storage (schema creation or upgrade).
	Init(ctx context.Context) error
	// Create assigns an id, sets created = updated = now and persists an empty notebook.
	Create(ctx context.Context, draft Draft) (Notebook, error)
	// Get returns the notebook or ErrNotFound.
	Get(ctx context.Context, id int64) (Notebook, error)
	// GetAll returns every notebook in no particular order.
	GetAll(ctx context.Context) ([]Notebook, error)
	// Update refreshes updated and replaces the stored record with nb.
	Update(ctx context.Context, nb Notebook) (Notebook, error)
	// Delete removes the notebook with its sources and infographic, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
}

const (
	createNotebookStatement = `
	INSERT INTO notebooks (name, created_at, updated_at)
	VALUES (?, ?, ?)
	`

	getNotebookStatement = `
	SELECT id, name, created_at, updated_at, infographic_data, infographic_generated_at
	FROM notebooks
	WHERE id = ?
	`

	listNotebooksStatement = `
	SELECT id, name, created_at, updated_at, infographic_data, infographic_generated_at
	FROM notebooks
	`

	updateNotebookStatement = `
	UPDATE notebooks
	SET name = ?, updated_at = ?, infographic_data = ?, infographic_generated_at = ?
	WHERE id = ?
	`

	deleteNotebookStatement = `
	DELETE FROM notebooks
	WHERE id = ?
	`

	listSourcesStatement = `
	SELECT id, type, content, metadata, added_at
	FROM sources
	WHERE notebook_id = ?
	ORDER BY position ASC
	`

	listAllSourcesStatement = `
	SELECT notebook_id, id, type, content, metadata, added_at
	FROM sources
	ORDER BY notebook_id ASC, position ASC
	`

	insertSourceStatement = `
	INSERT INTO sources (notebook_id, id, position, type, content, metadata, added_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	deleteSourcesStatement = `
	DELETE FROM sources
	WHERE notebook_id = ?
	`
)

// SQLStore is the SQLite implementation of Store.
type SQLStore struct {
	db   *sql.DB
	name string
	log  *zap.Logger
	now  func() time.Time
}

// NewSQLStore wraps an open database. name identifies the database in logs.
func NewSQLStore(db *sql.DB, name string, log *zap.Logger) *SQLStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLStore{
		db:   db,
		name: name,
		log:  log.Named("store"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *SQLStore) Init(ctx context.Context) error {
	if err := pkgdb.UpgradeDB(s.db, s.name, pkgdb.TargetSchemaVersion, s.log); err != nil {
		return storageErr("init", err)
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, draft Draft) (Notebook, error) {
	now := s.now()

	res, err := s.db.ExecContext(ctx, createNotebookStatement, draft.Name, now, now)
	if err != nil {
		return Notebook{}, storageErr("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Notebook{}, storageErr("create", err)
	}

	s.log.Debug("notebook created", zap.Int64("id", id))

	return Notebook{
		ID:      id,
		Name:    draft.Name,
		Created: now,
		Updated: now,
		Sources: []Source{},
	}, nil
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Notebook, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Notebook{}, storageErr("get", err)
	}
	defer tx.Rollback()

	nb, err := getNotebook(ctx, tx, id)
	if err != nil {
		return Notebook{}, err
	}
	if err := tx.Commit(); err != nil {
		return Notebook{}, storageErr("get", err)
	}
	return nb, nil
}

func (s *SQLStore) GetAll(ctx context.Context) ([]Notebook, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("get all", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, listNotebooksStatement)
	if err != nil {
		return nil, storageErr("get all", err)
	}

	var notebooks []Notebook
	index := make(map[int64]int)
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			rows.Close()
			return nil, storageErr("get all", err)
		}
		index[nb.ID] = len(notebooks)
		notebooks = append(notebooks, nb)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, storageErr("get all", err)
	}
	rows.Close()

	srcRows, err := tx.QueryContext(ctx, listAllSourcesStatement)
	if err != nil {
		return nil, storageErr("get all", err)
	}
	defer srcRows.Close()

	for srcRows.Next() {
		var notebookID int64
		var src Source
		var metadata string
		if err := srcRows.Scan(&notebookID, &src.ID, &src.Type, &src.Content, &metadata, &src.Added); err != nil {
			return nil, storageErr("get all", err)
		}
		if src.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, storageErr("get all", err)
		}
		if i, ok := index[notebookID]; ok {
			notebooks[i].Sources = append(notebooks[i].Sources, src)
		}
	}
	if err := srcRows.Err(); err != nil {
		return nil, storageErr("get all", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr("get all", err)
	}
	return notebooks, nil
}

func (s *SQLStore) Update(ctx context.Context, nb Notebook) (Notebook, error) {
	now := s.now()
	if now.Before(nb.Created) {
		now = nb.Created
	}

	var infographicData sql.NullString
	var infographicGenerated sql.NullTime
	if nb.Infographic != nil {
		infographicData = sql.NullString{String: nb.Infographic.Data, Valid: true}
		infographicGenerated = sql.NullTime{Time: nb.Infographic.Generated, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Notebook{}, storageErr("update", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, updateNotebookStatement, nb.Name, now, infographicData, infographicGenerated, nb.ID)
	if err != nil {
		return Notebook{}, storageErr("update", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return Notebook{}, storageErr("update", err)
	}
	if rowsAffected == 0 {
		return Notebook{}, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, deleteSourcesStatement, nb.ID); err != nil {
		return Notebook{}, storageErr("update", err)
	}
	for i, src := range nb.Sources {
		metadata, err := encodeMetadata(src.Metadata)
		if err != nil {
			return Notebook{}, storageErr("update", err)
		}
		_, err = tx.ExecContext(ctx, insertSourceStatement, nb.ID, src.ID, i, string(src.Type), src.Content, metadata, src.Added)
		if err != nil {
			return Notebook{}, storageErr("update", err)
		}
	}

	stored, err := getNotebook(ctx, tx, nb.ID)
	if err != nil {
		return Notebook{}, err
	}
	if err := tx.Commit(); err != nil {
		return Notebook{}, storageErr("update", err)
	}

	s.log.Debug("notebook updated", zap.Int64("id", nb.ID), zap.Int("sources", len(stored.Sources)))
	return stored, nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("delete", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteSourcesStatement, id); err != nil {
		return storageErr("delete", err)
	}
	res, err := tx.ExecContext(ctx, deleteNotebookStatement, id)
	if err != nil {
		return storageErr("delete", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return storageErr("delete", err)
	}

	s.log.Debug("notebook deleted", zap.Int64("id", id))
	return nil
}

// getNotebook loads one notebook with its sources inside tx.
func getNotebook(ctx context.Context, tx *sql.Tx, id int64) (Notebook, error) {
	nb, err := scanNotebook(tx.QueryRowContext(ctx, getNotebookStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Notebook{}, ErrNotFound
		}
		return Notebook{}, storageErr("get", err)
	}

	rows, err := tx.QueryContext(ctx, listSourcesStatement, id)
	if err != nil {
		return Notebook{}, storageErr("get", err)
	}
	defer rows.Close()

	for rows.Next() {
		var src Source
		var metadata string
		if err := rows.Scan(&src.ID, &src.Type, &src.Content, &metadata, &src.Added); err != nil {
			return Notebook{}, storageErr("get", err)
		}
		if src.Metadata, err = decodeMetadata(metadata); err != nil {
			return Notebook{}, storageErr("get", err)
		}
		nb.Sources = append(nb.Sources, src)
	}
	if err := rows.Err(); err != nil {
		return Notebook{}, storageErr("get", err)
	}

	return nb, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotebook(row rowScanner) (Notebook, error) {
	var nb Notebook
	var infographicData sql.NullString
	var infographicGenerated sql.NullTime

	err := row.Scan(
		&nb.ID,
		&nb.Name,
		&nb.Created,
		&nb.Updated,
		&infographicData,
		&infographicGenerated,
	)
	if err != nil {
		return Notebook{}, err
	}

	nb.Sources = []Source{}
	if infographicData.Valid {
		nb.Infographic = &Infographic{
			Data:      infographicData.String,
			Generated: infographicGenerated.Time,
		}
	}
	return nb, nil
}

func encodeMetadata(md Metadata) (string, error) {
	if len(md) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(raw string) (Metadata, error) {
	md := Metadata{}
	if raw == "" {
		return md, nil
	}
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return md, nil
}

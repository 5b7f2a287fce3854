package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/dance-trainer/pkg/core/domain"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

const videoColumns = `id, title, video_url, hashtags, notes, is_starred`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS dance_videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL DEFAULT '',
		hashtags TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		is_starred INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_dance_videos_video_url ON dance_videos(video_url);
	`
	_, err := db.Exec(query)
	return err
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func upsert(ctx context.Context, ex execer, video *domain.Video) error {
	if video.IsNew() {
		query := `INSERT INTO dance_videos (title, video_url, hashtags, notes, is_starred) VALUES (?, ?, ?, ?, ?)`
		res, err := ex.ExecContext(ctx, query, video.Title, video.VideoURL, video.Hashtags, video.Notes, video.IsStarred)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		video.ID = id
		return nil
	}

	// Replace keyed by id, last write wins.
	query := `INSERT OR REPLACE INTO dance_videos (id, title, video_url, hashtags, notes, is_starred) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := ex.ExecContext(ctx, query, video.ID, video.Title, video.VideoURL, video.Hashtags, video.Notes, video.IsStarred)
	return err
}

func (r *SQLiteRepository) Upsert(ctx context.Context, video *domain.Video) error {
	return upsert(ctx, r.db, video)
}

func (r *SQLiteRepository) UpsertAll(ctx context.Context, videos []domain.Video) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range videos {
		if err := upsert(ctx, tx, &videos[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(s scanner) (*domain.Video, error) {
	var v domain.Video
	if err := s.Scan(&v.ID, &v.Title, &v.VideoURL, &v.Hashtags, &v.Notes, &v.IsStarred); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM dance_videos WHERE id = ?`

	v, err := scanVideo(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (r *SQLiteRepository) GetByURL(ctx context.Context, url string) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM dance_videos WHERE video_url = ? ORDER BY id DESC LIMIT 1`

	v, err := scanVideo(r.db.QueryRowContext(ctx, query, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Video, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []domain.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Video, error) {
	return r.query(ctx, `SELECT `+videoColumns+` FROM dance_videos ORDER BY id DESC`)
}

func (r *SQLiteRepository) SearchByHashtag(ctx context.Context, q string) ([]domain.Video, error) {
	return r.query(ctx, `SELECT `+videoColumns+` FROM dance_videos WHERE hashtags LIKE '%' || ? || '%' ORDER BY id DESC`, q)
}

func (r *SQLiteRepository) UpdateStarred(ctx context.Context, id int64, starred bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE dance_videos SET is_starred = ? WHERE id = ?`, starred, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dance_videos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dance_videos`).Scan(&count)
	return count, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ensure interface compliance
var _ ports.VideoRepository = (*SQLiteRepository)(nil)

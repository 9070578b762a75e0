package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/parleychat/parley/internal/model/chat"
)

// SQLiteStore persists chats and messages in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at dbPath.
// An empty path defaults to "./data/parley.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/parley.db"
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		model_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		model_id TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL DEFAULT 'normal',
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_chat_created
		ON messages(chat_id, created_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateChat(ctx context.Context, c chat.Chat) (chat.Chat, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (id, title, model_id, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Title, c.ModelID, c.CreatedAt,
	)
	if err != nil {
		return chat.Chat{}, err
	}
	return c, nil
}

func (s *SQLiteStore) GetChat(ctx context.Context, chatID string) (chat.Chat, error) {
	var c chat.Chat
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, model_id, created_at FROM chats WHERE id = ?`, chatID,
	).Scan(&c.ID, &c.Title, &c.ModelID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Chat{}, ErrChatNotFound
	}
	if err != nil {
		return chat.Chat{}, err
	}
	return c, nil
}

func (s *SQLiteStore) ListChats(ctx context.Context) ([]chat.Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, model_id, created_at FROM chats ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := make([]chat.Chat, 0, 16)
	for rows.Next() {
		var c chat.Chat
		if err := rows.Scan(&c.ID, &c.Title, &c.ModelID, &c.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (s *SQLiteStore) DeleteChat(ctx context.Context, chatID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (s *SQLiteStore) LoadMessages(ctx context.Context, chatID string) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, role, content, model_id, kind, created_at
		 FROM messages WHERE chat_id = ?
		 ORDER BY created_at ASC, rowid ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, 32)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.ModelID, &m.Kind, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) InsertMessages(ctx context.Context, batch []chat.Message) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (id, chat_id, role, content, model_id, kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range batch {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Kind == "" {
			m.Kind = chat.KindNormal
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, m.ID, m.ChatID, m.Role, m.Content, m.ModelID, m.Kind, m.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

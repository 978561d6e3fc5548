package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/domain"
	"github.com/capstone-recommender/backend/pkg/logger"
)

// Client is the ChatStore adapter. Turn order per chat is the insertion
// order (rowid), which also orders the nanosecond timestamps written with
// each turn; Recent reads back oldest-first.
type Client struct {
	db *sql.DB
}

// Chat is the per-conversation metadata row kept alongside the turn log.
type Chat struct {
	ID           string
	Title        string
	QueryPreview string
	MessageCount int
	CreatedAt    time.Time
	LastUpdated  time.Time
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	logger.Info("chat store initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		query_preview TEXT,
		message_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_updated INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chats_updated ON chats(last_updated);

	CREATE TABLE IF NOT EXISTS chat_turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_chat ON chat_turns(chat_id, id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("chat store schema initialized")
	return nil
}

// Append writes one turn and bumps the chat's counters when a metadata row
// exists. A missing metadata row is fine: turns alone are enough to drive
// the conversation.
func (c *Client) Append(ctx context.Context, chatID string, role domain.Role, content string) error {
	now := time.Now()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO chat_turns (chat_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		chatID, string(role), content, now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("%w: append turn: %v", domain.ErrStoreUnavailable, err)
	}

	_, err = c.db.ExecContext(ctx,
		`UPDATE chats SET message_count = message_count + 1, last_updated = ? WHERE id = ?`,
		now.UnixNano(), chatID,
	)
	if err != nil {
		logger.Warn("failed to update chat counters", zap.String("chat_id", chatID), zap.Error(err))
	}

	return nil
}

// Recent returns up to limit of the newest turns for a chat, oldest-first.
func (c *Client) Recent(ctx context.Context, chatID string, limit int) ([]domain.ChatTurn, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM chat_turns WHERE chat_id = ? ORDER BY id DESC LIMIT ?`,
		chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: read history: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var turns []domain.ChatTurn
	for rows.Next() {
		var (
			role      string
			content   string
			createdAt int64
		)
		if err := rows.Scan(&role, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan turn: %v", domain.ErrStoreUnavailable, err)
		}
		turns = append(turns, domain.ChatTurn{
			ChatID:    chatID,
			Role:      domain.Role(role),
			Content:   content,
			Timestamp: time.Unix(0, createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read history: %v", domain.ErrStoreUnavailable, err)
	}

	// Query returned newest-first so LIMIT keeps the most recent turns.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

func (c *Client) CreateChat(ctx context.Context, id, title, queryPreview string) error {
	now := time.Now().UnixNano()

	_, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO chats (id, title, query_preview, message_count, created_at, last_updated)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		id, title, queryPreview, now, now,
	)
	if err != nil {
		return fmt.Errorf("%w: create chat: %v", domain.ErrStoreUnavailable, err)
	}

	logger.Debug("chat created", zap.String("chat_id", id), zap.String("title", title))
	return nil
}

func (c *Client) GetChat(ctx context.Context, id string) (*Chat, error) {
	var (
		chat                 Chat
		createdAt, updatedAt int64
	)

	err := c.db.QueryRowContext(ctx,
		`SELECT id, title, query_preview, message_count, created_at, last_updated FROM chats WHERE id = ?`,
		id,
	).Scan(&chat.ID, &chat.Title, &chat.QueryPreview, &chat.MessageCount, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get chat: %v", domain.ErrStoreUnavailable, err)
	}

	chat.CreatedAt = time.Unix(0, createdAt)
	chat.LastUpdated = time.Unix(0, updatedAt)
	return &chat, nil
}

func (c *Client) ListChats(ctx context.Context, limit int) ([]Chat, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT id, title, query_preview, message_count, created_at, last_updated
		 FROM chats ORDER BY last_updated DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list chats: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var (
			chat                 Chat
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&chat.ID, &chat.Title, &chat.QueryPreview, &chat.MessageCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan chat: %v", domain.ErrStoreUnavailable, err)
		}
		chat.CreatedAt = time.Unix(0, createdAt)
		chat.LastUpdated = time.Unix(0, updatedAt)
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list chats: %v", domain.ErrStoreUnavailable, err)
	}

	return chats, nil
}

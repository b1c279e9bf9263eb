package core

import (
	"context"
	"database/sql"
	"fmt"
)

type SQLiteMessageStore struct {
	db *sql.DB
}

func NewSQLiteMessageStore(db *sql.DB) *SQLiteMessageStore {
	return &SQLiteMessageStore{
		db: db,
	}
}

func (s *SQLiteMessageStore) Insert(ctx context.Context, senderID, receiverID int64, content, timestamp string) (int64, error) {
	query := `
	INSERT INTO messages (sender_id, receiver_id, content, timestamp)
	VALUES (@sender_id, @receiver_id, @content, @timestamp) RETURNING id`
	row := s.db.QueryRowContext(ctx, query,
		sql.Named("sender_id", senderID), sql.Named("receiver_id", receiverID),
		sql.Named("content", content), sql.Named("timestamp", timestamp))

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("row.Scan: %w", err)
	}

	return id, nil
}

func (s *SQLiteMessageStore) ListForUser(ctx context.Context, userID int64) ([]Message, error) {
	query := `
	SELECT m.id, m.sender_id, m.receiver_id, u.username, m.content, m.timestamp
	FROM messages AS m
	INNER JOIN users AS u ON m.sender_id = u.id
	WHERE m.receiver_id = @user_id OR m.sender_id = @user_id
	ORDER BY m.timestamp DESC, m.id DESC`

	rows, err := s.db.QueryContext(ctx, query, sql.Named("user_id", userID))
	if err != nil {
		return nil, fmt.Errorf("QueryContext: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var message Message
		if err := rows.Scan(&message.ID, &message.SenderID, &message.ReceiverID,
			&message.Sender, &message.Content, &message.Timestamp); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return messages, nil
}

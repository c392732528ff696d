package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mariafernandaa20/prexun-caja/internal/audit"
)

// SaveEvent persists an audit event.
func (s *Store) SaveEvent(ctx context.Context, e audit.Event) error {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to encode event data: %w", err)
	}
	jsonMetadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode event metadata: %w", err)
	}

	_, err = s.exec(ctx,
		`INSERT INTO events (id, event_type, event_data, event_metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID.String(), e.Type, string(jsonData), string(jsonMetadata), micros(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// ListEventsByType returns events of one type, oldest first. Data is left as raw JSON.
func (s *Store) ListEventsByType(ctx context.Context, eventType string) ([]audit.Event, error) {
	rows, err := s.query(ctx,
		`SELECT id, event_type, event_data, event_metadata, created_at
		 FROM events WHERE event_type = ? ORDER BY created_at ASC`,
		eventType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]audit.Event, 0)
	for rows.Next() {
		var (
			event              audit.Event
			id, data, metadata string
			createdAt          int64
		)
		if err := rows.Scan(&id, &event.Type, &data, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := event.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("failed to parse event id: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &event.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode event metadata: %w", err)
		}
		event.Data = json.RawMessage(data)
		event.CreatedAt = fromMicros(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"github.com/Igorithmltd/muta-app-backend-sub001/internal/config"
	"github.com/Igorithmltd/muta-app-backend-sub001/internal/domain"
)

// CassandraStore appends message records synchronously to a wide-row
// table partitioned by room.
type CassandraStore struct {
	session *gocql.Session
	table   string
}

func NewCassandraStore(cfg config.CassandraConfig) (*CassandraStore, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		NumRetries: 3,
		Min:        100 * time.Millisecond,
		Max:        2 * time.Second,
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create cassandra session: %w", err)
	}

	return &CassandraStore{session: session, table: cfg.Table}, nil
}

func (s *CassandraStore) Append(ctx context.Context, msg *domain.Message) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			room_id, message_id, sender, receiver, group_id, body, kind, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	err := s.session.Query(query,
		msg.FanoutRoom(),
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.GroupID,
		msg.Body,
		string(msg.Kind),
		msg.CreatedAt,
	).WithContext(ctx).Exec()

	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

func (s *CassandraStore) Close() error {
	if s.session != nil {
		s.session.Close()
	}
	return nil
}

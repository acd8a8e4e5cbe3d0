package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/config"
	"github.com/AchilleasB/baby-kliniek/child-health-tracker/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// Relay listens for PostgreSQL NOTIFY signals on the outbox_channel and
// publishes the child record events written by the API to RabbitMQ.
type Relay struct {
	db        *sql.DB
	publisher ports.RecordEventPublisher
	listener  *pq.Listener
	dbURL     string
	dbCB      *gobreaker.CircuitBreaker

	mu            sync.RWMutex
	lastProcessed time.Time
	isHealthy     bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.RecordEventPublisher) *Relay {
	return &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		dbCB:          config.NewCircuitBreaker("Relay-PostgreSQL"),
		lastProcessed: time.Now(),
		isHealthy:     true,
	}
}

// IsHealthy is the liveness check: an open circuit is degraded but
// recoverable, so it is not considered here.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isHealthy
}

// IsReady returns true if the relay can process events.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if time.Since(r.lastProcessed) > healthCheckStaleThreshold {
		return false
	}
	return r.isHealthy
}

func (r *Relay) markProcessed() {
	r.mu.Lock()
	r.lastProcessed = time.Now()
	r.isHealthy = true
	r.mu.Unlock()
}

func (r *Relay) markUnhealthy() {
	r.mu.Lock()
	r.isHealthy = false
	r.mu.Unlock()
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("outbox relay: listener error: %v", err)
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(outboxChannelName); err != nil {
		return err
	}

	log.Printf("outbox relay: listening on '%s' for notifications...", outboxChannelName)

	// Catch up on events written while the relay was down.
	if err := r.ProcessPending(ctx); err != nil {
		log.Printf("outbox relay: error processing startup backlog: %v", err)
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("outbox relay: shutting down...")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				log.Println("outbox relay: received nil notification (reconnecting...)")
				r.markUnhealthy()
				continue
			}

			if err := r.ProcessEvent(ctx, notification.Extra); err != nil {
				log.Printf("outbox relay: error processing event %s: %v", notification.Extra, err)
			} else {
				r.markProcessed()
			}

		case <-ticker.C:
			go r.listener.Ping()

			if err := r.ProcessPending(ctx); err != nil {
				log.Printf("outbox relay: error in periodic processing: %v", err)
			} else {
				r.markProcessed()
			}
		}
	}
}

// ProcessEvent publishes one unprocessed event and marks it processed.
func (r *Relay) ProcessEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var payload []byte
		err = tx.QueryRowContext(ctx, `
			SELECT payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&payload)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.publish(ctx, eventID, payload); err != nil {
			return nil, err
		}
		if err := markEventProcessed(ctx, tx, eventID); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

// ProcessPending publishes up to maxEventsPerBatch unprocessed events in
// creation order. Events that fail to publish stay pending for the next run.
func (r *Relay) ProcessPending(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		type pendingEvent struct {
			ID      string
			Payload []byte
		}

		var events []pendingEvent
		for rows.Next() {
			var e pendingEvent
			if err := rows.Scan(&e.ID, &e.Payload); err != nil {
				rows.Close()
				return nil, err
			}
			events = append(events, e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, e := range events {
			if err := r.publish(ctx, e.ID, e.Payload); err != nil {
				log.Printf("outbox relay: failed to publish event %s: %v", e.ID, err)
				continue
			}
			if err := markEventProcessed(ctx, tx, e.ID); err != nil {
				return nil, err
			}
			log.Printf("outbox relay: processed event %s", e.ID)
		}

		return nil, tx.Commit()
	})
	return err
}

// publish returns nil for payloads that cannot be decoded so they are marked
// processed instead of being retried forever.
func (r *Relay) publish(ctx context.Context, eventID string, payload []byte) error {
	var evt ports.RecordEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		log.Printf("outbox relay: invalid payload for event %s: %v", eventID, err)
		return nil
	}
	return r.publisher.PublishRecordEvent(ctx, evt)
}

func markEventProcessed(ctx context.Context, tx *sql.Tx, eventID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, eventID)
	return err
}

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Pool периодически помечает просроченные подзадачи меткой overdue.
// Метка статуса свободная и не участвует в инвариантах членства,
// поэтому свипер не пересекается с движком назначений.
type Pool struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	count    int
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
}

func NewPool(pool *pgxpool.Pool, logger *zap.Logger, count int, interval time.Duration) *Pool {
	return &Pool{
		pool:     pool,
		logger:   logger,
		count:    count,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting overdue sweeper", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.logger.Info("Stopping overdue sweeper...")
	close(p.stop)
	p.wg.Wait()
	p.logger.Info("Overdue sweeper stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				marked, err := p.markNext(ctx)
				if err != nil {
					if !errors.Is(err, pgx.ErrNoRows) {
						p.logger.Error("sweeper error", zap.Int("worker", id), zap.Error(err))
					}
					break
				}
				p.logger.Info("Sub-task overdue",
					zap.Int("worker", id),
					zap.String("sub_task_id", marked.String()),
				)
			}
		}
	}
}

// markNext забирает одну просроченную подзадачу. SKIP LOCKED не дает
// двум воркерам схватить одну строку.
func (p *Pool) markNext(ctx context.Context) (uuid.UUID, error) {
	var id uuid.UUID

	err := p.pool.QueryRow(ctx, `
		WITH overdue AS (
			SELECT st.id
			FROM sub_tasks st
			JOIN tasks t ON st.task_id = t.id
			WHERE st.due_date < now()
			  AND st.status = 'pending'
			  AND t.status = 'open'
			ORDER BY st.due_date
			FOR UPDATE OF st SKIP LOCKED
			LIMIT 1
		)
		UPDATE sub_tasks
		SET status = 'overdue'
		FROM overdue
		WHERE sub_tasks.id = overdue.id
		RETURNING sub_tasks.id
	`).Scan(&id)

	return id, err
}

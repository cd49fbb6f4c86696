package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes_service/internal/config"
	"notes_service/internal/models"
	"notes_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) UserByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
		SELECT id, username, email, password_hash, nickname, recent_token_issued_time
		FROM users
		WHERE username = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, username, email, password_hash, nickname, recent_token_issued_time
		FROM users
		WHERE email = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PassHash,
		&u.Nickname,
		&u.RecentTokenIssuedTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

// UserCreate is an open user-insert transaction. The row is inserted and
// its id assigned, but nothing is durable until Commit.
type UserCreate struct {
	tx pgx.Tx
	id int64
}

func (c *UserCreate) UserID() int64 {
	return c.id
}

func (c *UserCreate) Commit(ctx context.Context) error {
	return c.tx.Commit(ctx)
}

func (c *UserCreate) Rollback(ctx context.Context) error {
	err := c.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}

// BeginUserCreate inserts the user inside a fresh transaction and returns
// it with the assigned id, leaving the commit to the caller so external
// provisioning can happen in between.
func (r *PostgresRepo) BeginUserCreate(ctx context.Context, user models.User) (storage.UserCreate, error) {
	const op = "storage.postgres.BeginUserCreate"

	const query = `
		INSERT INTO users (username, email, password_hash, nickname)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	var id int64

	err = tx.QueryRow(ctx, query, user.Username, user.Email, string(user.PassHash), user.Nickname).Scan(&id)
	if err != nil {
		_ = tx.Rollback(ctx)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, storage.ErrUserExists
		}

		return nil, fmt.Errorf("%s: failed to insert user: %w", op, err)
	}

	return &UserCreate{tx: tx, id: id}, nil
}

func (r *PostgresRepo) UpdateRecentTokenIssued(ctx context.Context, userID, issuedAt int64) error {
	const op = "storage.postgres.UpdateRecentTokenIssued"

	const query = `UPDATE users SET recent_token_issued_time = $1 WHERE id = $2;`

	if _, err := r.pool.Exec(ctx, query, issuedAt, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}

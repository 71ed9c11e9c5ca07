package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/logger"
	timeadapter "github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/time"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// instantClock fires every backoff immediately
type instantClock struct {
	core.TimeProvider
}

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// stoppedClock never fires a backoff
type stoppedClock struct {
	core.TimeProvider
}

func (stoppedClock) After(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

func newUnitOfWork(t *testing.T, maxRetries int) (*UnitOfWork, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	clock := instantClock{timeadapter.NewRealTimeProvider()}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}),
		GormConfig(logger.NewNoopLogger(), clock, "silent", 0))
	require.NoError(t, err)

	retry := DefaultRetryConfig()
	retry.MaxRetries = maxRetries
	uow := NewUnitOfWork(db, logger.NewNoopLogger(), clock, UnitOfWorkOptions{
		Isolation: sql.LevelReadCommitted,
		Retry:     retry,
	})
	return uow, mock
}

func lockedAccountRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"account_number", "name", "balance", "created_at", "updated_at"}).
		AddRow(1, "John Doe", "500.00", now, now)
}

// deposit is a minimal commit unit: lock, update and append
func deposit(uow *UnitOfWork) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		account, err := uow.Accounts(ctx).GetForUpdate(ctx, 1)
		if err != nil {
			return err
		}
		if err := account.Credit(decimal.RequireFromString("100.00"), timeadapter.NewRealTimeProvider()); err != nil {
			return err
		}
		if err := uow.Accounts(ctx).UpdateBalance(ctx, account); err != nil {
			return err
		}
		return uow.Transactions(ctx).Append(ctx, &entity.Transaction{
			AccountNumber: 1,
			Type:          entity.TypeDeposit,
			Amount:        decimal.RequireFromString("100.00"),
			BalanceAfter:  account.Balance(),
			CreatedAt:     account.UpdatedAt,
		})
	}
}

func TestUnitOfWork_ExecuteCommits(t *testing.T) {
	uow, mock := newUnitOfWork(t, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE account_number = \$1 .*FOR UPDATE`).WillReturnRows(lockedAccountRows())
	mock.ExpectExec(`UPDATE "accounts" SET "balance"=\$1,"updated_at"=\$2 WHERE account_number = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(2))
	mock.ExpectCommit()

	require.NoError(t, uow.Execute(context.Background(), deposit(uow)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_ExecuteRollsBackOnError(t *testing.T) {
	uow, mock := newUnitOfWork(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(lockedAccountRows())
	mock.ExpectExec(`UPDATE "accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "transactions"`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := uow.Execute(context.Background(), deposit(uow))

	assert.ErrorIs(t, err, errs.ErrDuplicateReference)
	assert.NoError(t, mock.ExpectationsWereMet(), "a duplicate key must not be retried")
}

func TestUnitOfWork_ExecuteRetriesTransientFailure(t *testing.T) {
	uow, mock := newUnitOfWork(t, 3)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(lockedAccountRows())
	mock.ExpectExec(`UPDATE "accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(2))
	mock.ExpectCommit()

	require.NoError(t, uow.Execute(context.Background(), deposit(uow)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_ExecuteRetriesFailedCommit(t *testing.T) {
	uow, mock := newUnitOfWork(t, 1)
	calls := 0

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pgconn.PgError{Code: "40001"})
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_ExecuteDoesNotRerunUnconfirmedCommit(t *testing.T) {
	for name, commitErr := range map[string]error{
		"connection reset": errors.New("connection reset by peer"),
		"broken pipe":      errors.New("write: broken pipe"),
		"eof":              errors.New("unexpected EOF"),
		"admin shutdown":   &pgconn.PgError{Code: "57P01"},
		"connection class": &pgconn.PgError{Code: "08006"},
	} {
		t.Run(name, func(t *testing.T) {
			uow, mock := newUnitOfWork(t, 3)

			mock.ExpectBegin()
			mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(lockedAccountRows())
			mock.ExpectExec(`UPDATE "accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(`INSERT INTO "transactions"`).
				WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(2))
			mock.ExpectCommit().WillReturnError(commitErr)

			err := uow.Execute(context.Background(), deposit(uow))

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCommitOutcomeUnknown)
			assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
			assert.NoError(t, mock.ExpectationsWereMet(), "the deposit must run in exactly one transaction")
		})
	}
}

func TestUnitOfWork_ExecuteReadOnly(t *testing.T) {
	uow, mock := newUnitOfWork(t, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectCommit()

	var count int64
	err := uow.ExecuteReadOnly(context.Background(), func(txCtx context.Context) error {
		var err error
		count, err = uow.Transactions(txCtx).Count(txCtx)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_ExecuteGivesUpAfterMaxRetries(t *testing.T) {
	uow, mock := newUnitOfWork(t, 1)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WillReturnError(&pgconn.PgError{Code: "40001"})
		mock.ExpectRollback()
	}

	err := uow.Execute(context.Background(), deposit(uow))

	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_NestedExecuteJoinsTransaction(t *testing.T) {
	uow, mock := newUnitOfWork(t, 0)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Execute(context.Background(), func(ctx context.Context) error {
		return uow.Execute(ctx, func(inner context.Context) error {
			_, ok := txFromContext(inner)
			assert.True(t, ok)
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_RollsBackOnPanic(t *testing.T) {
	uow, mock := newUnitOfWork(t, 0)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = uow.Execute(context.Background(), func(context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_BeginFailure(t *testing.T) {
	uow, mock := newUnitOfWork(t, 0)

	mock.ExpectBegin().WillReturnError(errors.New("dial tcp 10.0.0.1:5432: connection refused"))

	err := uow.Execute(context.Background(), func(context.Context) error { return nil })

	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
}

func TestUnitOfWork_CommitWithoutTransaction(t *testing.T) {
	uow, _ := newUnitOfWork(t, 0)

	assert.ErrorIs(t, uow.Commit(context.Background()), errNoTransaction)
	assert.ErrorIs(t, uow.Rollback(context.Background()), errNoTransaction)
}

func TestRetryOnTransientError(t *testing.T) {
	ctx := context.Background()
	mapper := NewErrorMapper()
	config := RetryConfig{MaxRetries: 2, RetryInterval: time.Millisecond, MaxInterval: 10 * time.Millisecond}
	transient := &pgconn.PgError{Code: "40P01"}

	t.Run("Stops on a permanent error", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(ctx, config, func() error {
			calls++
			return errs.ErrInsufficientFunds
		}, mapper, instantClock{timeadapter.NewRealTimeProvider()}, logger.NewNoopLogger())

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Equal(t, 1, calls)
	})

	t.Run("Runs MaxRetries extra attempts", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(ctx, config, func() error {
			calls++
			return transient
		}, mapper, instantClock{timeadapter.NewRealTimeProvider()}, logger.NewNoopLogger())

		assert.Equal(t, transient, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Cancellation aborts the backoff", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := RetryOnTransientError(cancelled, config, func() error {
			return transient
		}, mapper, stoppedClock{timeadapter.NewRealTimeProvider()}, logger.NewNoopLogger())

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	config := RetryConfig{RetryInterval: 10 * time.Millisecond, MaxInterval: 50 * time.Millisecond, JitterFactor: 0.5}

	first := calculateBackoffWithJitter(0, config)
	assert.GreaterOrEqual(t, first, 10*time.Millisecond)
	assert.LessOrEqual(t, first, 15*time.Millisecond)

	capped := calculateBackoffWithJitter(10, config)
	assert.GreaterOrEqual(t, capped, 50*time.Millisecond)
	assert.LessOrEqual(t, capped, 75*time.Millisecond)
}

func TestErrorMapper(t *testing.T) {
	m := NewErrorMapper()

	assert.Nil(t, m.MapError(nil, "op"))
	assert.ErrorIs(t, m.MapError(gorm.ErrRecordNotFound, "op"), errs.ErrNotFound)
	assert.ErrorIs(t, m.MapError(&pgconn.PgError{Code: "23505"}, "op"), errs.ErrDuplicateReference)
	assert.ErrorIs(t, m.MapError(&pgconn.PgError{Code: "23514"}, "op"), errs.ErrConstraintViolation)
	assert.ErrorIs(t, m.MapError(&pgconn.PgError{Code: "40001"}, "op"), errs.ErrDatabaseConnection)
	assert.ErrorIs(t, m.MapError(errors.New("syntax"), "op"), errs.ErrInternalServer)

	notFound := errs.NewNotFoundError(3)
	assert.Equal(t, notFound, m.MapError(notFound, "op"))

	// wrapping keeps the driver error visible to the retry policy
	assert.True(t, m.IsRetryable(m.MapError(&pgconn.PgError{Code: "40P01"}, "op")))
	assert.False(t, m.IsRetryable(context.Canceled))

	unconfirmed := m.MapCommitError(errors.New("connection reset by peer"))
	assert.ErrorIs(t, unconfirmed, ErrCommitOutcomeUnknown)
	assert.ErrorIs(t, unconfirmed, errs.ErrDatabaseConnection)
	assert.False(t, m.IsRetryable(unconfirmed))

	serialization := m.MapCommitError(&pgconn.PgError{Code: "40001"})
	assert.NotErrorIs(t, serialization, ErrCommitOutcomeUnknown)
	assert.True(t, m.IsRetryable(serialization))
	assert.Nil(t, m.MapCommitError(nil))
}

func TestConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Error(t, config.Validate(), "host is required")

	config.Host = "localhost"
	config.Username = "ledger"
	config.Database = "ledger"
	require.NoError(t, config.Validate())
	assert.Equal(t, "host=localhost port=5432 user=ledger password= dbname=ledger sslmode=disable", config.DSN())

	config.Isolation = "chaos"
	assert.Error(t, config.Validate())

	memory := &Config{Driver: DriverMemory}
	assert.NoError(t, memory.Validate())

	level, err := ParseIsolation("SERIALIZABLE")
	require.NoError(t, err)
	assert.Equal(t, sql.LevelSerializable, level)
}

func TestDatabaseLogger_Trace(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	base := logger.NewZapLoggerFromCore(obsCore, core.LogLevelDebug)
	ctx := logger.ContextWithRequestID(context.Background(), "req-1")

	dbLogger := NewDatabaseLogger(base, timeadapter.NewRealTimeProvider(), "info", time.Hour)
	sqlText := `SELECT * FROM "accounts" WHERE account_number = 1`
	fc := func() (string, int64) { return sqlText, 1 }

	dbLogger.Trace(ctx, time.Now(), fc, nil)
	dbLogger.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	dbLogger.Trace(ctx, time.Now(), fc, errors.New("broken"))
	dbLogger.Trace(ctx, time.Now().Add(-2*time.Hour), fc, nil)

	require.Equal(t, 4, logs.Len())
	entries := logs.All()

	assert.Equal(t, "SQL Query", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "accounts", entries[0].ContextMap()["table"])
	assert.Equal(t, "SELECT", entries[0].ContextMap()["type"])
	assert.Equal(t, "database", entries[0].ContextMap()["source"])

	assert.Equal(t, "SQL Query", entries[1].Message, "not found is not an error")
	assert.Equal(t, "SQL Error", entries[2].Message)
	assert.Equal(t, "Slow SQL Query", entries[3].Message)

	silent := dbLogger.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), fc, errors.New("hidden"))
	assert.Equal(t, 4, logs.Len())
}

func TestExtractStatementParts(t *testing.T) {
	assert.Equal(t, "INSERT", extractQueryType(` insert into "transactions" (a) values (1)`))
	assert.Equal(t, "transactions", extractTableName(`INSERT INTO "transactions" ("a") VALUES ($1)`))
	assert.Equal(t, "accounts", extractTableName(`UPDATE "accounts" SET "balance"=$1`))
	assert.Equal(t, "", extractTableName(`BEGIN`))
}

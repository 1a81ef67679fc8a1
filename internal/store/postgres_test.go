package store

import (
	"context"
	stderrors "errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/kapu/turn-queue-bot-go/internal/domain"
	"github.com/kapu/turn-queue-bot-go/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS chat_memberships")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s, err := NewPostgresStore(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	return s, mock
}

func TestPostgresStoreRecordAndForget(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(recordSQL)).
		WithArgs(int64(42), int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(forgetSQL)).
		WithArgs(int64(42), int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Record(ctx, 42, 100))
	require.NoError(t, s.Forget(ctx, 42, 100))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListChats(t *testing.T) {
	s, mock := newTestPostgresStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(listChatsSQL)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"chat_id"}).AddRow(int64(100)).AddRow(int64(200)))

	chats, err := s.ListChats(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, []domain.ChatID{100, 200}, chats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFailuresAreStoreErrors(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	down := stderrors.New("connection reset")

	mock.ExpectExec(regexp.QuoteMeta(recordSQL)).WillReturnError(down)
	mock.ExpectQuery(regexp.QuoteMeta(listChatsSQL)).WillReturnError(down)

	err := s.Record(context.Background(), 42, 100)
	require.True(t, errors.IsStoreError(err))
	require.ErrorIs(t, err, down)

	_, err = s.ListChats(context.Background(), 42)
	require.True(t, errors.IsStoreError(err))
}

func TestNewPostgresStoreMigrationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE")).WillReturnError(stderrors.New("permission denied"))

	_, err = NewPostgresStore(context.Background(), db, zap.NewNop())
	require.True(t, errors.IsStoreError(err))
}

package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"appupdate-service/internal/channel/entity"
)

func newRepoWithMock(t *testing.T) (*ChannelRepo, sqlmock.Sqlmock, *sqlx.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewChannelRepo(sqlxDB), mock, sqlxDB
}

func channelColumns() []string {
	return []string{"id", "channel_name", "create_user_id", "create_time", "update_time", "is_delete"}
}

func TestCreate_InsertsRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	c := &entity.Channel{
		ID:           uuid.New(),
		ChannelName:  "stable",
		CreateUserID: uuid.New(),
		CreateTime:   time.Now(),
		UpdateTime:   time.Now(),
	}
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+app_channel\s*\(id,\s*channel_name,\s*create_user_id,.*VALUES\s*\(\$1`).
		WithArgs(c.ID, c.ChannelName, c.CreateUserID, c.CreateTime, c.UpdateTime, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByNameAndOwner_ExcludesDeleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	owner := uuid.New()
	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+app_channel\s+WHERE\s+channel_name=\$1\s+AND\s+create_user_id=\$2\s+AND\s+is_delete=false$`).
		WithArgs("stable", owner).
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByNameAndOwner(context.Background(), "stable", owner); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("want sql.ErrNoRows, got %v", err)
	}
}

func TestListByOwner_OrdersByCreateTime(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	owner := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows(channelColumns()).
		AddRow(uuid.New(), "alpha", owner, now.Add(-time.Hour), now, false).
		AddRow(uuid.New(), "beta", owner, now, now, false)
	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+app_channel\s+WHERE\s+create_user_id=\$1\s+AND\s+is_delete=false\s+ORDER\s+BY\s+create_time$`).
		WithArgs(owner).
		WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 2 || got[0].ChannelName != "alpha" || got[1].ChannelName != "beta" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestRename_ReturnsAffectedRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`(?s)^UPDATE\s+app_channel\s+SET\s+channel_name=\$2,\s*update_time=NOW\(\),\s*is_delete=false\s+WHERE\s+id=\$1$`).
		WithArgs(id, "beta").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Rename(context.Background(), id, "beta")
	if err != nil {
		t.Fatalf("Rename error: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 affected row, got %d", n)
	}
}

func TestSoftDelete_UnknownIDAffectsZeroRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`(?s)^UPDATE\s+app_channel\s+SET\s+is_delete=true,\s*update_time=NOW\(\)\s+WHERE\s+id=\$1$`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.SoftDelete(context.Background(), id)
	if err != nil {
		t.Fatalf("SoftDelete error: %v", err)
	}
	if n != 0 {
		t.Fatalf("want 0 affected rows, got %d", n)
	}
}

func TestPurge_DeletesRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+app_channel\s+WHERE\s+id=\$1$`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Purge(context.Background(), id)
	if err != nil {
		t.Fatalf("Purge error: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 affected row, got %d", n)
	}
}

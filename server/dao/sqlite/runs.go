package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Pratheep-Srikones/rpal-online/server/dao"
	"github.com/google/uuid"
)

// NewRunsDBConn opens a RunsDB on the given database file directly, without
// going through the full store.
func NewRunsDBConn(file string) (*RunsDB, error) {
	repo := &RunsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return repo, repo.init()
}

type RunsDB struct {
	db *sql.DB
}

func (repo *RunsDB) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS runs (
		id TEXT NOT NULL PRIMARY KEY,
		code TEXT NOT NULL,
		output TEXT NOT NULL,
		result TEXT NOT NULL,
		error TEXT NOT NULL,
		created INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *RunsDB) Close() error {
	return repo.db.Close()
}

func (repo *RunsDB) Create(ctx context.Context, run dao.Run) (dao.Run, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Run{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO runs (id, code, output, result, error, created) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}
	now := time.Now()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		run.Code,
		run.Output,
		run.Result,
		run.Error,
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *RunsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	run := dao.Run{}
	var idStr string
	var created int64

	row := repo.db.QueryRowContext(ctx, `SELECT id, code, output, result, error, created FROM runs WHERE id = ?;`, convertToDB_UUID(id))
	err := row.Scan(
		&idStr,
		&run.Code,
		&run.Output,
		&run.Result,
		&run.Error,
		&created,
	)
	if err != nil {
		return run, wrapDBError(err)
	}

	err = convertFromDB_UUID(idStr, &run.ID)
	if err != nil {
		return run, fmt.Errorf("stored ID %q is invalid: %w", idStr, err)
	}
	err = convertFromDB_Time(created, &run.Created)
	if err != nil {
		return run, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}

	return run, nil
}

func (repo *RunsDB) GetAll(ctx context.Context) ([]dao.Run, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, code, output, result, error, created FROM runs ORDER BY created DESC, id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Run

	for rows.Next() {
		var run dao.Run
		var idStr string
		var created int64
		err = rows.Scan(
			&idStr,
			&run.Code,
			&run.Output,
			&run.Result,
			&run.Error,
			&created,
		)
		if err != nil {
			return nil, wrapDBError(err)
		}

		err = convertFromDB_UUID(idStr, &run.ID)
		if err != nil {
			return all, fmt.Errorf("stored ID %q is invalid: %w", idStr, err)
		}
		err = convertFromDB_Time(created, &run.Created)
		if err != nil {
			return all, fmt.Errorf("stored created time %d is invalid: %w", created, err)
		}

		all = append(all, run)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *RunsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	run, err := repo.GetByID(ctx, id)
	if err != nil {
		return run, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?;`, convertToDB_UUID(id))
	if err != nil {
		return run, wrapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return run, wrapDBError(err)
	}
	if affected < 1 {
		return run, dao.ErrNotFound
	}

	return run, nil
}

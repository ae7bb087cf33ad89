package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

const BackendMySQL = "mysql"

const createTableSQL = "CREATE TABLE IF NOT EXISTS `%s` (" +
	"`_id` BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
	"`id` VARCHAR(64) NOT NULL, " +
	"`doc` JSON NOT NULL, " +
	"`created_at` TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, " +
	"`updated_at` TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP, " +
	"UNIQUE KEY `uniq_%s_id` (`id`))"

// MySQLAdapter stores each record as a JSON document in a per-kind table. The
// AUTO_INCREMENT _id column is the native identifier.
type MySQLAdapter struct {
	db *sql.DB
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ConnectMySQL(ctx context.Context, dsn string) (*MySQLAdapter, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return NewMySQLAdapter(db), nil
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, kind := range domain.Kinds {
		if _, err := m.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, kind, kind)); err != nil {
			return fmt.Errorf("create %s table: %w", kind, err)
		}
	}
	return nil
}

func (m *MySQLAdapter) List(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	rows, err := m.db.QueryContext(ctx, fmt.Sprintf("SELECT `_id`, `doc` FROM `%s` ORDER BY `_id`", kind))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var rowID int64
		var doc []byte
		if err := rows.Scan(&rowID, &doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		record, err := decodeDoc(rowID, doc)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", kind, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return records, nil
}

func (m *MySQLAdapter) Get(ctx context.Context, kind domain.Kind, id string) (domain.Record, error) {
	_, record, err := m.find(ctx, m.db, kind, id, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (m *MySQLAdapter) Insert(ctx context.Context, kind domain.Kind, record domain.Record) (domain.Record, error) {
	doc, err := encodeDoc(record)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}

	result, err := m.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO `%s` (`id`, `doc`) VALUES (?, ?)", kind),
		record.ID(), doc,
	)
	if isDuplicateEntry(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", kind, err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", kind, err)
	}

	stored := record.Clone()
	stored[domain.FieldNativeID] = rowID
	return stored, nil
}

func (m *MySQLAdapter) Update(ctx context.Context, kind domain.Kind, id string, patch domain.Record) (domain.Record, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rowID, existing, err := m.find(ctx, tx, kind, id, true)
	if err != nil {
		return nil, err
	}

	merged := existing.Merge(patch)
	doc, err := encodeDoc(merged)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE `%s` SET `id` = ?, `doc` = ? WHERE `_id` = ?", kind),
		merged.ID(), doc, rowID,
	)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit %s: %w", kind, err)
	}

	merged[domain.FieldNativeID] = rowID
	return merged, nil
}

func (m *MySQLAdapter) Remove(ctx context.Context, kind domain.Kind, id string) error {
	result, err := m.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM `%s` WHERE `id` = ? ORDER BY `_id` LIMIT 1", kind), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		return nil
	}

	rowID, err := parseNativeID(id)
	if err != nil {
		return domain.ErrNotFound
	}

	result, err = m.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM `%s` WHERE `_id` = ?", kind), rowID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *MySQLAdapter) Backend() string { return BackendMySQL }

func (m *MySQLAdapter) Live() bool { return true }

func (m *MySQLAdapter) Close(ctx context.Context) error {
	return m.db.Close()
}

// find matches on the id column first, then on _id when id is numeric.
func (m *MySQLAdapter) find(ctx context.Context, q rowQueryer, kind domain.Kind, id string, forUpdate bool) (int64, domain.Record, error) {
	lock := ""
	if forUpdate {
		lock = " FOR UPDATE"
	}

	var rowID int64
	var doc []byte
	err := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT `_id`, `doc` FROM `%s` WHERE `id` = ? ORDER BY `_id` LIMIT 1%s", kind, lock), id,
	).Scan(&rowID, &doc)

	if errors.Is(err, sql.ErrNoRows) {
		nativeID, perr := parseNativeID(id)
		if perr != nil {
			return 0, nil, domain.ErrNotFound
		}
		err = q.QueryRowContext(ctx,
			fmt.Sprintf("SELECT `_id`, `doc` FROM `%s` WHERE `_id` = ?%s", kind, lock), nativeID,
		).Scan(&rowID, &doc)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, domain.ErrNotFound
	}
	if err != nil {
		return 0, nil, fmt.Errorf("query %s: %w", kind, err)
	}

	record, err := decodeDoc(rowID, doc)
	if err != nil {
		return 0, nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return rowID, record, nil
}

func parseNativeID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidID
	}
	return n, nil
}

func encodeDoc(record domain.Record) ([]byte, error) {
	doc := record.Clone()
	delete(doc, domain.FieldNativeID)
	return json.Marshal(doc)
}

func decodeDoc(rowID int64, doc []byte) (domain.Record, error) {
	var record domain.Record
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, err
	}
	if record == nil {
		record = domain.Record{}
	}
	record[domain.FieldNativeID] = rowID
	return record, nil
}

// isDuplicateEntry reports a unique-key violation (ER_DUP_ENTRY).
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

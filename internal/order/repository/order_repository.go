package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"linentrack/internal/domain"
	apperrors "linentrack/internal/errors"
)

const orderColumns = `id, client_name, product_name, quantity, unit, color, yarn_type, weight,
	work_site, manager, contact, order_type, order_date, delivery_date, delivery_to,
	email_sent_date, status, weaving_date, dyeing_date, sewing_date, shipping_date,
	shipping_method, shipping_dest_name, note, last_updated`

// Columns Update accepts. Descriptive attributes are fixed after creation.
var updatableColumns = map[string]struct{}{
	domain.ColumnStatus:           {},
	domain.ColumnWeavingDate:      {},
	domain.ColumnDyeingDate:       {},
	domain.ColumnSewingDate:       {},
	domain.ColumnShippingDate:     {},
	domain.ColumnShippingMethod:   {},
	domain.ColumnShippingDestName: {},
	domain.ColumnLastUpdated:      {},
}

// SQLOrderRepository stores orders in the production_orders table. The
// statements run unchanged on MySQL and SQLite.
type SQLOrderRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLOrderRepository(db *sql.DB, timeout time.Duration) *SQLOrderRepository {
	return &SQLOrderRepository{db: db, timeout: timeout}
}

func (r *SQLOrderRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// Add inserts the order under a new id and returns it.
func (r *SQLOrderRepository) Add(ctx context.Context, o domain.Order) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	id := uuid.New().String()
	query := `INSERT INTO production_orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		id, o.ClientName, o.ProductName, o.Quantity, o.Unit, o.Color, o.YarnType, o.Weight,
		o.WorkSite, o.Manager, o.Contact, o.OrderType, o.OrderDate, o.DeliveryDate, o.DeliveryTo,
		o.EmailSentDate, string(o.Status), o.WeavingDate, o.DyeingDate, o.SewingDate, o.ShippingDate,
		o.ShippingMethod, o.ShippingDestName, o.Note, o.LastUpdated,
	)
	if err != nil {
		return "", storeError("inserting order", err)
	}

	return id, nil
}

func (r *SQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, storeError("querying order by id", err)
	}

	return order, nil
}

// Update writes a partial set of columns. Column names outside the stage
// and shipping set are refused.
func (r *SQLOrderRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := updatableColumns[name]; !ok {
			return fmt.Errorf("column %q is not updatable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, len(names))
	args := make([]interface{}, 0, len(names)+1)
	for i, name := range names {
		sets[i] = name + " = ?"
		args = append(args, fields[name])
	}
	args = append(args, id)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `UPDATE production_orders SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storeError("updating order", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}

	return nil
}

func (r *SQLOrderRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM production_orders WHERE id = ?`, id)
	if err != nil {
		return storeError("deleting order", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}

	return nil
}

// List returns every order, newest order_date first.
func (r *SQLOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM production_orders ORDER BY order_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeError("querying orders", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("iterating order rows", err)
	}

	return orders, nil
}

func (r *SQLOrderRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.db.PingContext(ctx); err != nil {
		return apperrors.NewConnectivityError("order store unreachable", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(
		&o.ID, &o.ClientName, &o.ProductName, &o.Quantity, &o.Unit, &o.Color, &o.YarnType, &o.Weight,
		&o.WorkSite, &o.Manager, &o.Contact, &o.OrderType, &o.OrderDate, &o.DeliveryDate, &o.DeliveryTo,
		&o.EmailSentDate, &status, &o.WeavingDate, &o.DyeingDate, &o.SewingDate, &o.ShippingDate,
		&o.ShippingMethod, &o.ShippingDestName, &o.Note, &o.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	o.Status = domain.Stage(status)
	return &o, nil
}

// storeError marks failures to reach the store as ConnectivityError and
// wraps everything else.
func storeError(op string, err error) error {
	if isConnectivityError(err) {
		return apperrors.NewConnectivityError(op+": order store unreachable", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectivityError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

const orderColumns = `id, po_number, vendor_id, status, items, quantity, order_date, issue_date,
	delivery_date, acknowledgment_date, quality_rating, created_at, updated_at`

// InsertOrder сохраняет заказ на закупку и возвращает его идентификатор.
func (r *PostgresRepository) InsertOrder(ctx context.Context, o model.PurchaseOrder) (int64, error) {
	items := o.Items
	if len(items) == 0 {
		items = []byte("[]")
	}
	orderDate := o.OrderDate
	if orderDate.IsZero() {
		orderDate = o.IssueDate
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO purchase_orders (po_number, vendor_id, status, items, quantity, order_date,
		                              issue_date, delivery_date, acknowledgment_date, quality_rating)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		o.PONumber, o.VendorID, string(o.Status), []byte(items), o.Quantity, orderDate,
		o.IssueDate, o.DeliveryDate, o.AcknowledgmentDate, o.QualityRating,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: %d", ErrVendorNotFound, o.VendorID)
		}
		return 0, classify("insert order", err)
	}
	return id, nil
}

// UpdateOrderFields применяет частичное обновление заказа. Возвращает признак того,
// что сохранённые поля действительно изменились, и владельца заказа после обновления.
func (r *PostgresRepository) UpdateOrderFields(ctx context.Context, id int64, upd model.PurchaseOrderUpdate) (bool, int64, error) {
	if upd.Empty() {
		vendorID, err := r.orderVendor(ctx, id)
		return false, vendorID, err
	}
	sets, args := orderUpdateSet(upd)

	assignments := make([]string, 0, len(sets)+1)
	changes := make([]string, 0, len(sets))
	for _, s := range sets {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", s.column, s.arg))
		changes = append(changes, fmt.Sprintf("%s IS DISTINCT FROM $%d", s.column, s.arg))
	}
	assignments = append(assignments, "updated_at = now()")

	query := fmt.Sprintf(
		`UPDATE purchase_orders SET %s WHERE id = $1 AND (%s) RETURNING vendor_id`,
		strings.Join(assignments, ", "),
		strings.Join(changes, " OR "),
	)

	var vendorID int64
	err := r.pool.QueryRow(ctx, query, append([]any{id}, args...)...).Scan(&vendorID)
	if err == nil {
		return true, vendorID, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		// Либо заказа нет, либо обновление ничего не меняет.
		vendorID, err := r.orderVendor(ctx, id)
		return false, vendorID, err
	}
	if isForeignKeyViolation(err) {
		return false, 0, fmt.Errorf("%w: %d", ErrVendorNotFound, *upd.VendorID)
	}
	return false, 0, classify("update order", err)
}

type setClause struct {
	column string
	arg    int
}

func orderUpdateSet(upd model.PurchaseOrderUpdate) ([]setClause, []any) {
	var (
		sets []setClause
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		// $1 занят идентификатором заказа.
		sets = append(sets, setClause{column: column, arg: len(args) + 1})
	}

	if upd.PONumber != nil {
		add("po_number", *upd.PONumber)
	}
	if upd.VendorID != nil {
		add("vendor_id", *upd.VendorID)
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.Items != nil {
		add("items", []byte(upd.Items))
	}
	if upd.Quantity != nil {
		add("quantity", *upd.Quantity)
	}
	if upd.OrderDate != nil {
		add("order_date", *upd.OrderDate)
	}
	if upd.IssueDate != nil {
		add("issue_date", *upd.IssueDate)
	}
	if upd.DeliveryDate != nil {
		add("delivery_date", *upd.DeliveryDate)
	}
	if upd.AcknowledgmentDate != nil {
		add("acknowledgment_date", *upd.AcknowledgmentDate)
	}
	if upd.QualityRating != nil {
		add("quality_rating", *upd.QualityRating)
	}

	return sets, args
}

func (r *PostgresRepository) orderVendor(ctx context.Context, id int64) (int64, error) {
	var vendorID int64
	err := r.pool.QueryRow(ctx, `SELECT vendor_id FROM purchase_orders WHERE id = $1`, id).Scan(&vendorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrOrderNotFound
		}
		return 0, classify("select order vendor", err)
	}
	return vendorID, nil
}

// GetOrder возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, classify("get order", err)
	}
	return o, nil
}

// ListOrders возвращает все заказы либо заказы одного поставщика, если он указан.
func (r *PostgresRepository) ListOrders(ctx context.Context, vendorID *int64) ([]model.PurchaseOrder, error) {
	if vendorID != nil {
		return r.FindOrdersByVendor(ctx, *vendorID)
	}
	return r.queryOrders(ctx, "select orders",
		`SELECT `+orderColumns+` FROM purchase_orders ORDER BY id`)
}

// FindOrdersByVendor возвращает всю историю заказов поставщика.
func (r *PostgresRepository) FindOrdersByVendor(ctx context.Context, vendorID int64) ([]model.PurchaseOrder, error) {
	return r.queryOrders(ctx, "select vendor orders",
		`SELECT `+orderColumns+` FROM purchase_orders WHERE vendor_id = $1 ORDER BY id`,
		vendorID,
	)
}

// FindOrdersByVendorAndStatus возвращает заказы поставщика в указанном статусе.
func (r *PostgresRepository) FindOrdersByVendorAndStatus(ctx context.Context, vendorID int64, status model.OrderStatus) ([]model.PurchaseOrder, error) {
	return r.queryOrders(ctx, "select vendor orders by status",
		`SELECT `+orderColumns+` FROM purchase_orders WHERE vendor_id = $1 AND status = $2 ORDER BY id`,
		vendorID, string(status),
	)
}

// DeleteOrder удаляет заказ.
func (r *PostgresRepository) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return classify("delete order", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *PostgresRepository) queryOrders(ctx context.Context, op, query string, args ...any) ([]model.PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var orders []model.PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("rows error", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*model.PurchaseOrder, error) {
	var (
		o      model.PurchaseOrder
		status string
		items  []byte
	)
	err := row.Scan(
		&o.ID, &o.PONumber, &o.VendorID, &status, &items, &o.Quantity, &o.OrderDate, &o.IssueDate,
		&o.DeliveryDate, &o.AcknowledgmentDate, &o.QualityRating, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	o.Items = items
	return &o, nil
}

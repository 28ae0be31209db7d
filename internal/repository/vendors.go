package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

const vendorColumns = `id, name, contact_details, address, vendor_code, created_at, updated_at`

// InsertVendor создаёт нового поставщика и возвращает его идентификатор.
func (r *PostgresRepository) InsertVendor(ctx context.Context, v model.Vendor) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vendors (name, contact_details, address, vendor_code)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		v.Name, v.ContactDetails, v.Address, v.VendorCode,
	).Scan(&id)
	if err != nil {
		return 0, classify("insert vendor", err)
	}
	return id, nil
}

// ListVendors возвращает всех поставщиков в порядке регистрации.
func (r *PostgresRepository) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY id`)
	if err != nil {
		return nil, classify("select vendors", err)
	}
	defer rows.Close()

	var vendors []model.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, *v)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("rows error", err)
	}

	return vendors, nil
}

// GetVendor возвращает поставщика по идентификатору.
func (r *PostgresRepository) GetVendor(ctx context.Context, id int64) (*model.Vendor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)

	v, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, classify("get vendor", err)
	}
	return v, nil
}

// UpdateVendor применяет частичное обновление и возвращает актуальное состояние поставщика.
func (r *PostgresRepository) UpdateVendor(ctx context.Context, id int64, upd model.VendorUpdate) (*model.Vendor, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE vendors SET
		   name            = COALESCE($2, name),
		   contact_details = COALESCE($3, contact_details),
		   address         = COALESCE($4, address),
		   vendor_code     = COALESCE($5, vendor_code),
		   updated_at      = now()
		 WHERE id = $1
		 RETURNING `+vendorColumns,
		id, upd.Name, upd.ContactDetails, upd.Address, upd.VendorCode,
	)

	v, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, classify("update vendor", err)
	}
	return v, nil
}

// DeleteVendor удаляет поставщика вместе с его заказами и историей метрик.
func (r *PostgresRepository) DeleteVendor(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return classify("delete vendor", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendorNotFound
	}
	return nil
}

func scanVendor(row pgx.Row) (*model.Vendor, error) {
	var v model.Vendor
	err := row.Scan(&v.ID, &v.Name, &v.ContactDetails, &v.Address, &v.VendorCode, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

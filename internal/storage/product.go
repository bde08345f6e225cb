package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage описывает доступ ядра заказов к каталогу: ядро читает brand_id
// и двигает счётчик stock, остальное каталогу не принадлежит.
type ProductStorage interface {
	GetProductBrandID(ctx context.Context, productID string) (string, error)
	// DecrementStock атомарно уменьшает остаток на quantity, не опускаясь ниже нуля.
	DecrementStock(ctx context.Context, productID string, quantity int) error
	// IncrementStock атомарно возвращает остаток при отмене заказа.
	IncrementStock(ctx context.Context, productID string, quantity int) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) GetProductBrandID(ctx context.Context, productID string) (string, error) {
	var brandID string
	row := r.db.QueryRowContext(ctx, `SELECT brand_id FROM products WHERE id = $1`, productID)
	if err := row.Scan(&brandID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrProductNotFound
		}
		return "", err
	}
	return brandID, nil
}

// Счётчик stock — единственный разделяемый изменяемый ресурс ядра, поэтому
// корректировка выполняется одним UPDATE на стороне БД. Никакого
// read-then-write фолбэка: он был бы гонкой при конкурентном оформлении.
func (r *productRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	query := `UPDATE products SET stock = GREATEST(stock - $2, 0) WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) IncrementStock(ctx context.Context, productID string, quantity int) error {
	query := `UPDATE products SET stock = stock + $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

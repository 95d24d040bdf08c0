package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/burhani/shop-system/internal/model"
)

// GetPaymentByOrderID возвращает платёж по идентификатору заказа.
func (r *PostgresRepository) GetPaymentByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, order_id, method, status, amount, currency,
		        gateway_order_id, gateway_payment_id, gateway_signature, failure_reason,
		        created_at, completed_at
		 FROM payments
		 WHERE order_id = $1`,
		orderID,
	)

	var p model.Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Method, &p.Status, &p.Amount, &p.Currency,
		&p.GatewayOrderID, &p.GatewayPaymentID, &p.GatewaySignature, &p.FailureReason,
		&p.CreatedAt, &p.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return &p, nil
}

// SetGatewayOrder сохраняет идентификатор заказа в платёжном шлюзе
// и переводит платёж в статус processing.
func (r *PostgresRepository) SetGatewayOrder(ctx context.Context, orderID int64, gatewayOrderID string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE payments SET gateway_order_id = $2, status = $3 WHERE order_id = $1`,
		orderID, gatewayOrderID, string(model.PaymentStatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("set gateway order: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

// CompletePayment в одной транзакции завершает платёж и переводит заказ в confirmed.
// Заказ подтверждается только из статуса pending: если к моменту записи статус
// успел измениться, транзакция откатывается с ErrStatusConflict и платёж
// остаётся нетронутым. Остатки товаров не меняются: они были списаны при оформлении.
func (r *PostgresRepository) CompletePayment(ctx context.Context, orderID int64, gatewayOrderID, gatewayPaymentID, signature string) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		cmdTag, err := tx.Exec(ctx,
			`UPDATE payments SET status = $2, gateway_order_id = $3, gateway_payment_id = $4,
			        gateway_signature = $5, failure_reason = NULL, completed_at = now()
			 WHERE order_id = $1`,
			orderID, string(model.PaymentStatusCompleted), gatewayOrderID, gatewayPaymentID, signature,
		)
		if err != nil {
			return fmt.Errorf("complete payment: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrPaymentNotFound
		}

		cmdTag, err = tx.Exec(ctx,
			`UPDATE orders SET status = $2, confirmed_at = COALESCE(confirmed_at, now())
			 WHERE id = $1 AND status = $3`,
			orderID, string(model.OrderStatusConfirmed), string(model.OrderStatusPending),
		)
		if err != nil {
			return fmt.Errorf("confirm order: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			var current string
			scanErr := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current)
			if errors.Is(scanErr, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			if scanErr != nil {
				return fmt.Errorf("select order status: %w", scanErr)
			}
			return ErrStatusConflict
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}

// FailPayment помечает платёж неуспешным с указанием причины. Статус заказа не меняется.
func (r *PostgresRepository) FailPayment(ctx context.Context, orderID int64, reason string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = $2, failure_reason = $3 WHERE order_id = $1`,
		orderID, string(model.PaymentStatusFailed), reason,
	)
	if err != nil {
		return fmt.Errorf("fail payment: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

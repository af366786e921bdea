package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/kardex-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// mapConflict traduce fallas de bloqueo/serialización de PostgreSQL al error
// de dominio ErrConcurrencyConflict; el caller decide si reintenta (el motor
// nunca reintenta por su cuenta).
//   - 40001 serialization_failure
//   - 40P01 deadlock_detected
//   - 55P03 lock_not_available
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return domain.ErrConcurrencyConflict
		}
	}
	return err
}

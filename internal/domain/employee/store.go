package employee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"backoffice/internal/platform/querier"
)

const selectColumns = `id::text, employee_code, first_name, last_name, email, department,
  joined_on, is_resigned, resigned_on, created_at`

var _ StoreAPI = (*Store)(nil)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, input CreateInput) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO employees (employee_code, first_name, last_name, email, department, joined_on)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+selectColumns,
		input.EmployeeCode, input.FirstName, input.LastName, input.Email, input.Department, input.JoinedOn)
	emp, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, ErrDuplicateCode
		}
		return Employee{}, err
	}
	return emp, nil
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, "SELECT "+selectColumns+" FROM employees WHERE id = $1", id))
	if querier.IsNotFound(err) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Employee, error) {
	query := "SELECT " + selectColumns + " FROM employees WHERE 1=1"
	var args []any
	if filter.Department != "" {
		args = append(args, filter.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}
	if filter.Resigned != nil {
		args = append(args, *filter.Resigned)
		query += fmt.Sprintf(" AND is_resigned = $%d", len(args))
	}
	query += " ORDER BY employee_code"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Resign(ctx context.Context, id string, on time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET is_resigned = true, resigned_on = $2, updated_at = now()
    WHERE id = $1
  `, id, on)
	if querier.IsNotFound(err) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.EmployeeCode, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Department,
		&emp.JoinedOn, &emp.IsResigned, &emp.ResignedOn, &emp.CreatedAt)
	return emp, err
}

package compensation

import (
	"context"

	"github.com/jackc/pgx/v5"

	"backoffice/internal/platform/querier"
)

const selectColumns = `id::text, employee_id::text, monthly_ctc, basic, hra, conveyance, medical,
  special_allowance, pf, esi, professional_tax, updated_at`

var _ StoreAPI = (*Store)(nil)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Upsert(ctx context.Context, in Structure) (Structure, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO compensation_structures
      (employee_id, monthly_ctc, basic, hra, conveyance, medical, special_allowance, pf, esi, professional_tax)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (employee_id) DO UPDATE SET
      monthly_ctc = EXCLUDED.monthly_ctc,
      basic = EXCLUDED.basic,
      hra = EXCLUDED.hra,
      conveyance = EXCLUDED.conveyance,
      medical = EXCLUDED.medical,
      special_allowance = EXCLUDED.special_allowance,
      pf = EXCLUDED.pf,
      esi = EXCLUDED.esi,
      professional_tax = EXCLUDED.professional_tax,
      updated_at = now()
    RETURNING `+selectColumns,
		in.EmployeeID, in.MonthlyCTC, in.Basic, in.HRA, in.Conveyance, in.Medical, in.SpecialAllowance,
		in.PF, in.ESI, in.ProfessionalTax)
	return scanStructure(row)
}

func (s *Store) GetByEmployee(ctx context.Context, employeeID string) (Structure, error) {
	out, err := scanStructure(s.DB.QueryRow(ctx,
		"SELECT "+selectColumns+" FROM compensation_structures WHERE employee_id = $1", employeeID))
	if querier.IsNotFound(err) {
		return Structure{}, ErrStructureNotFound
	}
	return out, err
}

func (s *Store) List(ctx context.Context) ([]Structure, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+selectColumns+" FROM compensation_structures ORDER BY employee_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Structure
	for rows.Next() {
		item, err := scanStructure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM compensation_structures WHERE employee_id = $1", employeeID)
	if querier.IsNotFound(err) {
		return ErrStructureNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStructureNotFound
	}
	return nil
}

func scanStructure(row pgx.Row) (Structure, error) {
	var s Structure
	err := row.Scan(&s.ID, &s.EmployeeID, &s.MonthlyCTC, &s.Basic, &s.HRA, &s.Conveyance, &s.Medical,
		&s.SpecialAllowance, &s.PF, &s.ESI, &s.ProfessionalTax, &s.UpdatedAt)
	return s, err
}

package querier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: true},
		{name: "wrapped no rows", err: fmt.Errorf("get claim: %w", pgx.ErrNoRows), want: true},
		{name: "malformed uuid", err: &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}, want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "other", err: errors.New("connection reset"), want: false},
		{name: "nil", err: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

package apperror

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	Price decimal.Decimal `json:"price" validate:"gte=0,cents"`
}

type order struct {
	Total decimal.Decimal `json:"total" validate:"gt=0,cents"`
	Lines []line          `json:"lines" validate:"dive"`
	Main  line            `json:"main"`
}

func TestStructCentsTag(t *testing.T) {
	ok := order{
		Total: decimal.RequireFromString("10.10"),
		Lines: []line{{Price: decimal.RequireFromString("3.500")}},
		Main:  line{Price: decimal.NewFromInt(4)},
	}
	require.NoError(t, Struct(ok))

	bad := order{
		Total: decimal.RequireFromString("0.001"),
		Lines: []line{{Price: decimal.RequireFromString("1.005")}},
		Main:  line{Price: decimal.RequireFromString("2.999")},
	}
	err := Struct(bad)
	require.Error(t, err)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeInvalidInput, appErr.Code)
	require.Len(t, appErr.Fields, 3)
	for _, issue := range appErr.Fields {
		assert.Equal(t, "must have at most 2 decimal places", issue.Reason, issue.Field)
	}
}

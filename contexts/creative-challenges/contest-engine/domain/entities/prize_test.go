package entities

import (
	"errors"
	"testing"

	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrizeTableAcceptsNumbersAndNumericStrings(t *testing.T) {
	table, err := ParsePrizeTable(`[
		{"rank":2,"prize_type":"credits","prize_value":"500"},
		{"rank":1,"prize_type":"credits","prize_value":1000},
		{"rank":3,"prize_type":"badge","prize_value":1}
	]`)
	require.NoError(t, err)
	require.Len(t, table, 3)

	assert.Equal(t, 1, table[0].Rank)
	amount, ok := table[0].CreditAmount()
	require.True(t, ok)
	assert.EqualValues(t, 1000, amount)

	second, ok := table.ForRank(2)
	require.True(t, ok)
	amount, ok = second.CreditAmount()
	require.True(t, ok)
	assert.EqualValues(t, 500, amount)

	badge, ok := table.ForRank(3)
	require.True(t, ok)
	_, ok = badge.CreditAmount()
	assert.False(t, ok)
}

func TestParsePrizeTableRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"malformed json":  `[{"rank":1,"prize_type":"credits"`,
		"not an array":    `{"rank":1}`,
		"empty":           ``,
		"empty array":     `[]`,
		"zero rank":       `[{"rank":0,"prize_type":"credits","prize_value":10}]`,
		"negative rank":   `[{"rank":-1,"prize_type":"credits","prize_value":10}]`,
		"fractional rank": `[{"rank":1.5,"prize_type":"credits","prize_value":10}]`,
		"duplicate rank":  `[{"rank":1,"prize_type":"credits","prize_value":10},{"rank":1,"prize_type":"badge","prize_value":1}]`,
		"missing type":    `[{"rank":1,"prize_value":10}]`,
		"zero value":      `[{"rank":1,"prize_type":"credits","prize_value":0}]`,
		"fraction credit": `[{"rank":1,"prize_type":"credits","prize_value":10.5}]`,
		"unknown field":   `[{"rank":1,"prize_type":"credits","prize_value":10,"bonus":true}]`,
		"non numeric":     `[{"rank":1,"prize_type":"credits","prize_value":"lots"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePrizeTable(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidation), "expected validation error, got %v", err)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidPrizeTable))
		})
	}
}

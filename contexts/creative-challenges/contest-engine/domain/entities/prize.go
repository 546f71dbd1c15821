package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"

	"github.com/shopspring/decimal"
)

const (
	PrizeTypeCredits = "credits"
	PrizeTypeBadge   = "badge"
)

type Prize struct {
	Rank       int             `json:"rank"`
	PrizeType  string          `json:"prize_type"`
	PrizeValue decimal.Decimal `json:"prize_value"`
}

// CreditAmount returns the whole-credit amount for credits prizes.
func (p Prize) CreditAmount() (int64, bool) {
	if p.PrizeType != PrizeTypeCredits || !p.PrizeValue.IsInteger() {
		return 0, false
	}
	return p.PrizeValue.IntPart(), true
}

// PrizeTable is ordered by rank and holds at most one prize per rank.
type PrizeTable []Prize

// ParsePrizeTable decodes and validates a prize table JSON document.
// prize_value may be a JSON number or a numeric string.
func ParsePrizeTable(raw string) (PrizeTable, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: prize table is required", domainerrors.ErrInvalidPrizeTable)
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(raw)))
	decoder.DisallowUnknownFields()
	var items []Prize
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidPrizeTable, err)
	}
	table := PrizeTable(items)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table.sorted(), nil
}

func (t PrizeTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: at least one prize is required", domainerrors.ErrInvalidPrizeTable)
	}
	seen := make(map[int]struct{}, len(t))
	for _, prize := range t {
		if prize.Rank <= 0 {
			return fmt.Errorf("%w: rank must be a positive integer, got %d", domainerrors.ErrInvalidPrizeTable, prize.Rank)
		}
		if _, ok := seen[prize.Rank]; ok {
			return fmt.Errorf("%w: rank %d is listed more than once", domainerrors.ErrInvalidPrizeTable, prize.Rank)
		}
		seen[prize.Rank] = struct{}{}
		if strings.TrimSpace(prize.PrizeType) == "" {
			return fmt.Errorf("%w: rank %d is missing prize_type", domainerrors.ErrInvalidPrizeTable, prize.Rank)
		}
		if !prize.PrizeValue.IsPositive() {
			return fmt.Errorf("%w: rank %d prize_value must be positive", domainerrors.ErrInvalidPrizeTable, prize.Rank)
		}
		if prize.PrizeType == PrizeTypeCredits && !prize.PrizeValue.IsInteger() {
			return fmt.Errorf("%w: rank %d credits must be a whole number", domainerrors.ErrInvalidPrizeTable, prize.Rank)
		}
	}
	return nil
}

func (t PrizeTable) ForRank(rank int) (Prize, bool) {
	for _, prize := range t {
		if prize.Rank == rank {
			return prize, true
		}
	}
	return Prize{}, false
}

func (t PrizeTable) sorted() PrizeTable {
	out := append(PrizeTable(nil), t...)
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const RewardReason = "challenge_reward"

type Reward struct {
	RewardID     string
	ContestID    string
	UserID       string
	SubmissionID string
	Rank         int
	PrizeType    string
	PrizeValue   decimal.Decimal
	GrantedAt    time.Time
}

type ContestStatistics struct {
	ContestID          string
	TotalSubmissions   int
	TotalVotes         int
	UniqueVoters       int
	AverageVotesPerSub float64
}

package workers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	"studio/contexts/creative-challenges/contest-engine/ports"
	"studio/internal/shared/events"
)

const (
	ContestCompletedTopic     = "contest.completed"
	ContestRewardGrantedTopic = "contest.reward_granted"
	sourceService             = "contest-engine"
)

type contestCompletedPayload struct {
	ContestID       string    `json:"contest_id"`
	SubmissionCount int       `json:"submission_count"`
	RewardCount     int       `json:"reward_count"`
	CompletedAt     time.Time `json:"completed_at"`
}

type rewardGrantedPayload struct {
	ContestID    string `json:"contest_id"`
	ContestTitle string `json:"contest_title"`
	RewardID     string `json:"reward_id"`
	UserID       string `json:"user_id"`
	SubmissionID string `json:"submission_id"`
	Rank         int    `json:"rank"`
	PrizeType    string `json:"prize_type"`
	PrizeValue   string `json:"prize_value"`
}

// Event ids are derived from the contest so a retried completion produces
// the same outbox rows.
func newContestCompletedEvent(contestID string, submissionCount int, rewardCount int, at time.Time) (ports.EventEnvelope, error) {
	return events.New(
		"contest_completed:"+contestID,
		ContestCompletedTopic,
		sourceService,
		"contest_id",
		contestID,
		at,
		contestCompletedPayload{
			ContestID:       contestID,
			SubmissionCount: submissionCount,
			RewardCount:     rewardCount,
			CompletedAt:     at.UTC(),
		},
	)
}

func newRewardGrantedEvent(contest entities.Contest, reward entities.Reward, at time.Time) (ports.EventEnvelope, error) {
	return events.New(
		fmt.Sprintf("contest_reward_granted:%s:%d", contest.ContestID, reward.Rank),
		ContestRewardGrantedTopic,
		sourceService,
		"user_id",
		reward.UserID,
		at,
		rewardGrantedPayload{
			ContestID:    contest.ContestID,
			ContestTitle: contest.Title,
			RewardID:     reward.RewardID,
			UserID:       reward.UserID,
			SubmissionID: reward.SubmissionID,
			Rank:         reward.Rank,
			PrizeType:    reward.PrizeType,
			PrizeValue:   reward.PrizeValue.String(),
		},
	)
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

package postgresadapter

import (
	"encoding/json"
	"time"

	"studio/contexts/creative-challenges/contest-engine/domain/entities"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type contestModel struct {
	ID            string         `gorm:"column:id;primaryKey"`
	Title         string         `gorm:"column:title"`
	Description   string         `gorm:"column:description"`
	Rules         string         `gorm:"column:rules"`
	Category      string         `gorm:"column:category"`
	CoverImageURL string         `gorm:"column:cover_image_url"`
	PrizeTable    datatypes.JSON `gorm:"column:prize_table"`
	StartAt       time.Time      `gorm:"column:start_at"`
	EndAt         time.Time      `gorm:"column:end_at"`
	VotingEndsAt  time.Time      `gorm:"column:voting_ends_at"`
	Status        string         `gorm:"column:status"`
	CreatedBy     string         `gorm:"column:created_by"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
}

func (contestModel) TableName() string {
	return "contests"
}

func contestModelFromEntity(contest entities.Contest) (contestModel, error) {
	prizes, err := json.Marshal(contest.Prizes)
	if err != nil {
		return contestModel{}, err
	}
	return contestModel{
		ID:            contest.ContestID,
		Title:         contest.Title,
		Description:   contest.Description,
		Rules:         contest.Rules,
		Category:      contest.Category,
		CoverImageURL: contest.CoverImageURL,
		PrizeTable:    datatypes.JSON(prizes),
		StartAt:       contest.StartAt.UTC(),
		EndAt:         contest.EndAt.UTC(),
		VotingEndsAt:  contest.VotingEndsAt.UTC(),
		Status:        string(contest.Status),
		CreatedBy:     contest.CreatedBy,
		CreatedAt:     contest.CreatedAt.UTC(),
		UpdatedAt:     contest.UpdatedAt.UTC(),
	}, nil
}

// toEntity trusts the stored prize table; it was validated when written.
func (m contestModel) toEntity() (entities.Contest, error) {
	var prizes entities.PrizeTable
	if len(m.PrizeTable) > 0 {
		if err := json.Unmarshal(m.PrizeTable, &prizes); err != nil {
			return entities.Contest{}, err
		}
	}
	return entities.Contest{
		ContestID:     m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Rules:         m.Rules,
		Category:      m.Category,
		CoverImageURL: m.CoverImageURL,
		Prizes:        prizes,
		StartAt:       m.StartAt.UTC(),
		EndAt:         m.EndAt.UTC(),
		VotingEndsAt:  m.VotingEndsAt.UTC(),
		Status:        entities.ContestStatus(m.Status),
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}, nil
}

type submissionModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	ContestID    string    `gorm:"column:contest_id"`
	UserID       string    `gorm:"column:user_id"`
	Title        string    `gorm:"column:title"`
	Description  string    `gorm:"column:description"`
	MediaURL     string    `gorm:"column:media_url"`
	MediaType    string    `gorm:"column:media_type"`
	ThumbnailURL string    `gorm:"column:thumbnail_url"`
	VoteCount    int       `gorm:"column:vote_count"`
	Rank         *int      `gorm:"column:rank"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (submissionModel) TableName() string {
	return "contest_submissions"
}

func submissionModelFromEntity(submission entities.Submission) submissionModel {
	return submissionModel{
		ID:           submission.SubmissionID,
		ContestID:    submission.ContestID,
		UserID:       submission.UserID,
		Title:        submission.Title,
		Description:  submission.Description,
		MediaURL:     submission.MediaURL,
		MediaType:    string(submission.MediaType),
		ThumbnailURL: submission.ThumbnailURL,
		VoteCount:    submission.VoteCount,
		Rank:         submission.Rank,
		CreatedAt:    submission.CreatedAt.UTC(),
	}
}

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID: m.ID,
		ContestID:    m.ContestID,
		UserID:       m.UserID,
		Title:        m.Title,
		Description:  m.Description,
		MediaURL:     m.MediaURL,
		MediaType:    entities.MediaType(m.MediaType),
		ThumbnailURL: m.ThumbnailURL,
		VoteCount:    m.VoteCount,
		Rank:         m.Rank,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type voteModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	ContestID    string    `gorm:"column:contest_id"`
	SubmissionID string    `gorm:"column:submission_id"`
	UserID       string    `gorm:"column:user_id"`
	IPAddress    string    `gorm:"column:ip_address"`
	UserAgent    string    `gorm:"column:user_agent"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "contest_votes"
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:       m.ID,
		ContestID:    m.ContestID,
		SubmissionID: m.SubmissionID,
		UserID:       m.UserID,
		IPAddress:    m.IPAddress,
		UserAgent:    m.UserAgent,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type rewardModel struct {
	ID           string          `gorm:"column:id;primaryKey"`
	ContestID    string          `gorm:"column:contest_id"`
	UserID       string          `gorm:"column:user_id"`
	SubmissionID string          `gorm:"column:submission_id"`
	Rank         int             `gorm:"column:rank"`
	PrizeType    string          `gorm:"column:prize_type"`
	PrizeValue   decimal.Decimal `gorm:"column:prize_value"`
	GrantedAt    time.Time       `gorm:"column:granted_at"`
}

func (rewardModel) TableName() string {
	return "contest_rewards"
}

func rewardModelFromEntity(reward entities.Reward) rewardModel {
	return rewardModel{
		ID:           reward.RewardID,
		ContestID:    reward.ContestID,
		UserID:       reward.UserID,
		SubmissionID: reward.SubmissionID,
		Rank:         reward.Rank,
		PrizeType:    reward.PrizeType,
		PrizeValue:   reward.PrizeValue,
		GrantedAt:    reward.GrantedAt.UTC(),
	}
}

func (m rewardModel) toEntity() entities.Reward {
	return entities.Reward{
		RewardID:     m.ID,
		ContestID:    m.ContestID,
		UserID:       m.UserID,
		SubmissionID: m.SubmissionID,
		Rank:         m.Rank,
		PrizeType:    m.PrizeType,
		PrizeValue:   m.PrizeValue,
		GrantedAt:    m.GrantedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "contest_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "contest_event_dedup"
}

type creditGrantModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Reference       string    `gorm:"column:reference"`
	UserID          string    `gorm:"column:user_id"`
	Amount          int64     `gorm:"column:amount"`
	Reason          string    `gorm:"column:reason"`
	Description     string    `gorm:"column:description"`
	RelatedEntityID string    `gorm:"column:related_entity_id"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (creditGrantModel) TableName() string {
	return "credit_grants"
}

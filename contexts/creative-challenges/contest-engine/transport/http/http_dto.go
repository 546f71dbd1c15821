package http

import "encoding/json"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateContestRequest takes timestamps as RFC 3339 strings. PrizeTable is the
// raw JSON array of {rank, prize_type, prize_value}.
type CreateContestRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Rules         string          `json:"rules,omitempty"`
	Category      string          `json:"category,omitempty"`
	CoverImageURL string          `json:"cover_image_url,omitempty"`
	PrizeTable    json.RawMessage `json:"prize_table"`
	StartAt       string          `json:"start_at"`
	EndAt         string          `json:"end_at"`
	VotingEndsAt  string          `json:"voting_ends_at"`
}

type UpdateContestRequest struct {
	Title         *string         `json:"title,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Rules         *string         `json:"rules,omitempty"`
	Category      *string         `json:"category,omitempty"`
	CoverImageURL *string         `json:"cover_image_url,omitempty"`
	PrizeTable    json.RawMessage `json:"prize_table,omitempty"`
	StartAt       *string         `json:"start_at,omitempty"`
	EndAt         *string         `json:"end_at,omitempty"`
	VotingEndsAt  *string         `json:"voting_ends_at,omitempty"`
}

type PrizeDTO struct {
	Rank       int    `json:"rank"`
	PrizeType  string `json:"prize_type"`
	PrizeValue string `json:"prize_value"`
}

type ContestResponse struct {
	ContestID     string     `json:"contest_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Rules         string     `json:"rules,omitempty"`
	Category      string     `json:"category"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	PrizeTable    []PrizeDTO `json:"prize_table"`
	StartAt       string     `json:"start_at"`
	EndAt         string     `json:"end_at"`
	VotingEndsAt  string     `json:"voting_ends_at"`
	Status        string     `json:"status"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

type ContestListResponse struct {
	Items []ContestResponse `json:"items"`
}

type SubmissionListResponse struct {
	ContestID string               `json:"contest_id"`
	Items     []SubmissionResponse `json:"items"`
}

type SubmitEntryRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	MediaURL     string `json:"media_url"`
	MediaType    string `json:"media_type,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type SubmissionResponse struct {
	SubmissionID string `json:"submission_id"`
	ContestID    string `json:"contest_id"`
	UserID       string `json:"user_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	MediaURL     string `json:"media_url"`
	MediaType    string `json:"media_type"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	VoteCount    int    `json:"vote_count"`
	Rank         *int   `json:"rank,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type VoteResponse struct {
	VoteID       string `json:"vote_id"`
	ContestID    string `json:"contest_id"`
	SubmissionID string `json:"submission_id"`
	UserID       string `json:"user_id"`
	CreatedAt    string `json:"created_at"`
}

type VotesResponse struct {
	Items []VoteResponse `json:"items"`
}

type RevokeVoteResponse struct {
	Success bool `json:"success"`
}

type LeaderboardItem struct {
	Rank         int    `json:"rank"`
	SubmissionID string `json:"submission_id"`
	UserID       string `json:"user_id"`
	Title        string `json:"title"`
	MediaURL     string `json:"media_url"`
	MediaType    string `json:"media_type"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	VoteCount    int    `json:"vote_count"`
	CreatedAt    string `json:"created_at"`
}

type LeaderboardResponse struct {
	ContestID string            `json:"contest_id"`
	Items     []LeaderboardItem `json:"items"`
}

type StatisticsResponse struct {
	ContestID             string  `json:"contest_id"`
	TotalSubmissions      int     `json:"total_submissions"`
	TotalVotes            int     `json:"total_votes"`
	UniqueVoters          int     `json:"unique_voters"`
	AverageVotesPerSubmit float64 `json:"average_votes_per_submission"`
}

type RewardItem struct {
	RewardID     string `json:"reward_id"`
	ContestID    string `json:"contest_id"`
	SubmissionID string `json:"submission_id"`
	Rank         int    `json:"rank"`
	PrizeType    string `json:"prize_type"`
	PrizeValue   string `json:"prize_value"`
	GrantedAt    string `json:"granted_at"`
}

type RewardsResponse struct {
	Items []RewardItem `json:"items"`
}

type SettlementResultItem struct {
	ContestID   string `json:"contest_id"`
	Status      string `json:"status"`
	Submissions int    `json:"submissions"`
	Rewards     int    `json:"rewards"`
	Error       string `json:"error,omitempty"`
}

type SettlementResponse struct {
	Success   bool                   `json:"success"`
	Processed int                    `json:"processed"`
	Failed    int                    `json:"failed"`
	Total     int                    `json:"total"`
	Skipped   bool                   `json:"skipped"`
	Results   []SettlementResultItem `json:"results"`
	Timestamp string                 `json:"timestamp"`
}

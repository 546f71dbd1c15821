package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studio/contexts/creative-challenges/contest-engine/application/commands"
	"studio/contexts/creative-challenges/contest-engine/application/queries"
	"studio/contexts/creative-challenges/contest-engine/application/workers"
	"studio/contexts/creative-challenges/contest-engine/domain/entities"
	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"
	"studio/contexts/creative-challenges/contest-engine/ports"
	httptransport "studio/contexts/creative-challenges/contest-engine/transport/http"
)

type Handler struct {
	Contests     commands.ContestUseCase
	Submissions  commands.SubmissionUseCase
	Votes        commands.VoteUseCase
	Leaderboards queries.LeaderboardUseCase
	ContestReads queries.ContestQueryUseCase
	Rewards      queries.RewardsUseCase
	MyVotes      queries.VotesUseCase
	Settlement   workers.SettlementJob
	Logger       *slog.Logger
}

func (h Handler) CreateContestHandler(
	ctx context.Context,
	actor ports.Actor,
	req httptransport.CreateContestRequest,
) (httptransport.ContestResponse, error) {
	startAt, err := parseTimestamp("start_at", req.StartAt)
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	endAt, err := parseTimestamp("end_at", req.EndAt)
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	votingEndsAt, err := parseTimestamp("voting_ends_at", req.VotingEndsAt)
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	contest, err := h.Contests.CreateContest(ctx, actor, commands.CreateContestCommand{
		Title:         req.Title,
		Description:   req.Description,
		Rules:         req.Rules,
		Category:      req.Category,
		CoverImageURL: req.CoverImageURL,
		PrizeTable:    string(req.PrizeTable),
		StartAt:       startAt,
		EndAt:         endAt,
		VotingEndsAt:  votingEndsAt,
	})
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return mapContest(contest), nil
}

func (h Handler) UpdateContestHandler(
	ctx context.Context,
	actor ports.Actor,
	contestID string,
	req httptransport.UpdateContestRequest,
) (httptransport.ContestResponse, error) {
	cmd := commands.UpdateContestCommand{
		ContestID:     contestID,
		Title:         req.Title,
		Description:   req.Description,
		Rules:         req.Rules,
		Category:      req.Category,
		CoverImageURL: req.CoverImageURL,
	}
	if len(req.PrizeTable) > 0 {
		raw := string(req.PrizeTable)
		cmd.PrizeTable = &raw
	}
	var err error
	if cmd.StartAt, err = parseOptionalTimestamp("start_at", req.StartAt); err != nil {
		return httptransport.ContestResponse{}, err
	}
	if cmd.EndAt, err = parseOptionalTimestamp("end_at", req.EndAt); err != nil {
		return httptransport.ContestResponse{}, err
	}
	if cmd.VotingEndsAt, err = parseOptionalTimestamp("voting_ends_at", req.VotingEndsAt); err != nil {
		return httptransport.ContestResponse{}, err
	}
	contest, err := h.Contests.UpdateContest(ctx, actor, cmd)
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return mapContest(contest), nil
}

func (h Handler) GetContestHandler(ctx context.Context, contestID string) (httptransport.ContestResponse, error) {
	contest, err := h.ContestReads.GetContest(ctx, contestID)
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return mapContest(contest), nil
}

func (h Handler) SubmitEntryHandler(
	ctx context.Context,
	actor ports.Actor,
	contestID string,
	req httptransport.SubmitEntryRequest,
) (httptransport.SubmissionResponse, error) {
	submission, err := h.Submissions.SubmitEntry(ctx, actor, commands.SubmitEntryCommand{
		ContestID:    contestID,
		Title:        req.Title,
		Description:  req.Description,
		MediaURL:     req.MediaURL,
		MediaType:    req.MediaType,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		return httptransport.SubmissionResponse{}, err
	}
	return mapSubmission(submission), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	actor ports.Actor,
	submissionID string,
	ipAddress string,
	userAgent string,
) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.CastVote(ctx, actor, commands.CastVoteCommand{
		SubmissionID: submissionID,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(vote), nil
}

func (h Handler) RevokeVoteHandler(
	ctx context.Context,
	actor ports.Actor,
	voteID string,
) (httptransport.RevokeVoteResponse, error) {
	ok, err := h.Votes.RevokeVote(ctx, actor, voteID)
	if err != nil {
		return httptransport.RevokeVoteResponse{}, err
	}
	return httptransport.RevokeVoteResponse{Success: ok}, nil
}

func (h Handler) LeaderboardHandler(
	ctx context.Context,
	contestID string,
	limit int,
) (httptransport.LeaderboardResponse, error) {
	ranked, err := h.Leaderboards.Leaderboard(ctx, contestID, limit)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	items := make([]httptransport.LeaderboardItem, 0, len(ranked))
	for _, item := range ranked {
		items = append(items, httptransport.LeaderboardItem{
			Rank:         item.Rank,
			SubmissionID: item.Submission.SubmissionID,
			UserID:       item.Submission.UserID,
			Title:        item.Submission.Title,
			MediaURL:     item.Submission.MediaURL,
			MediaType:    string(item.Submission.MediaType),
			ThumbnailURL: item.Submission.ThumbnailURL,
			VoteCount:    item.Submission.VoteCount,
			CreatedAt:    formatTimestamp(item.Submission.CreatedAt),
		})
	}
	return httptransport.LeaderboardResponse{
		ContestID: strings.TrimSpace(contestID),
		Items:     items,
	}, nil
}

func (h Handler) StatisticsHandler(ctx context.Context, contestID string) (httptransport.StatisticsResponse, error) {
	stats, err := h.ContestReads.Statistics(ctx, contestID)
	if err != nil {
		return httptransport.StatisticsResponse{}, err
	}
	return httptransport.StatisticsResponse{
		ContestID:             stats.ContestID,
		TotalSubmissions:      stats.TotalSubmissions,
		TotalVotes:            stats.TotalVotes,
		UniqueVoters:          stats.UniqueVoters,
		AverageVotesPerSubmit: stats.AverageVotesPerSub,
	}, nil
}

func (h Handler) MyRewardsHandler(
	ctx context.Context,
	actor ports.Actor,
	contestID string,
) (httptransport.RewardsResponse, error) {
	rewards, err := h.Rewards.MyRewards(ctx, actor, contestID)
	if err != nil {
		return httptransport.RewardsResponse{}, err
	}
	items := make([]httptransport.RewardItem, 0, len(rewards))
	for _, reward := range rewards {
		items = append(items, httptransport.RewardItem{
			RewardID:     reward.RewardID,
			ContestID:    reward.ContestID,
			SubmissionID: reward.SubmissionID,
			Rank:         reward.Rank,
			PrizeType:    reward.PrizeType,
			PrizeValue:   reward.PrizeValue.String(),
			GrantedAt:    formatTimestamp(reward.GrantedAt),
		})
	}
	return httptransport.RewardsResponse{Items: items}, nil
}

// SettleContestsHandler runs one settlement pass. Per-contest failures are in
// the results; only a run-level failure is returned as an error.
func (h Handler) SettleContestsHandler(ctx context.Context, now time.Time) (httptransport.SettlementResponse, error) {
	report, err := h.Settlement.Run(ctx, now)
	if err != nil {
		return httptransport.SettlementResponse{}, err
	}
	results := make([]httptransport.SettlementResultItem, 0, len(report.Results))
	for _, result := range report.Results {
		results = append(results, httptransport.SettlementResultItem{
			ContestID:   result.ContestID,
			Status:      result.Status,
			Submissions: result.Submissions,
			Rewards:     result.Rewards,
			Error:       result.Error,
		})
	}
	return httptransport.SettlementResponse{
		Success:   true,
		Processed: report.Processed,
		Failed:    report.Failed,
		Total:     report.Total,
		Skipped:   report.Skipped,
		Results:   results,
		Timestamp: formatTimestamp(now),
	}, nil
}

func (h Handler) ListContestsHandler(
	ctx context.Context,
	query queries.ContestListQuery,
) (httptransport.ContestListResponse, error) {
	contests, err := h.ContestReads.ListContests(ctx, query)
	if err != nil {
		return httptransport.ContestListResponse{}, err
	}
	items := make([]httptransport.ContestResponse, 0, len(contests))
	for _, contest := range contests {
		items = append(items, mapContest(contest))
	}
	return httptransport.ContestListResponse{Items: items}, nil
}

func (h Handler) ContestSubmissionsHandler(
	ctx context.Context,
	query queries.SubmissionListQuery,
) (httptransport.SubmissionListResponse, error) {
	submissions, err := h.ContestReads.ContestSubmissions(ctx, query)
	if err != nil {
		return httptransport.SubmissionListResponse{}, err
	}
	items := make([]httptransport.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, mapSubmission(submission))
	}
	return httptransport.SubmissionListResponse{
		ContestID: strings.TrimSpace(query.ContestID),
		Items:     items,
	}, nil
}

func (h Handler) MyVotesHandler(
	ctx context.Context,
	actor ports.Actor,
	contestID string,
) (httptransport.VotesResponse, error) {
	votes, err := h.MyVotes.MyVotes(ctx, actor, contestID)
	if err != nil {
		return httptransport.VotesResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, mapVote(vote))
	}
	return httptransport.VotesResponse{Items: items}, nil
}

func mapSubmission(submission entities.Submission) httptransport.SubmissionResponse {
	return httptransport.SubmissionResponse{
		SubmissionID: submission.SubmissionID,
		ContestID:    submission.ContestID,
		UserID:       submission.UserID,
		Title:        submission.Title,
		Description:  submission.Description,
		MediaURL:     submission.MediaURL,
		MediaType:    string(submission.MediaType),
		ThumbnailURL: submission.ThumbnailURL,
		VoteCount:    submission.VoteCount,
		Rank:         submission.Rank,
		CreatedAt:    formatTimestamp(submission.CreatedAt),
	}
}

func mapVote(vote entities.Vote) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		VoteID:       vote.VoteID,
		ContestID:    vote.ContestID,
		SubmissionID: vote.SubmissionID,
		UserID:       vote.UserID,
		CreatedAt:    formatTimestamp(vote.CreatedAt),
	}
}

func mapContest(contest entities.Contest) httptransport.ContestResponse {
	prizes := make([]httptransport.PrizeDTO, 0, len(contest.Prizes))
	for _, prize := range contest.Prizes {
		prizes = append(prizes, httptransport.PrizeDTO{
			Rank:       prize.Rank,
			PrizeType:  prize.PrizeType,
			PrizeValue: prize.PrizeValue.String(),
		})
	}
	return httptransport.ContestResponse{
		ContestID:     contest.ContestID,
		Title:         contest.Title,
		Description:   contest.Description,
		Rules:         contest.Rules,
		Category:      contest.Category,
		CoverImageURL: contest.CoverImageURL,
		PrizeTable:    prizes,
		StartAt:       formatTimestamp(contest.StartAt),
		EndAt:         formatTimestamp(contest.EndAt),
		VotingEndsAt:  formatTimestamp(contest.VotingEndsAt),
		Status:        string(contest.Status),
		CreatedBy:     contest.CreatedBy,
		CreatedAt:     formatTimestamp(contest.CreatedAt),
		UpdatedAt:     formatTimestamp(contest.UpdatedAt),
	}
}

func parseTimestamp(field string, raw string) (time.Time, error) {
	value, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", domainerrors.ErrValidation, field)
	}
	return value.UTC(), nil
}

func parseOptionalTimestamp(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	value, err := parseTimestamp(field, *raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

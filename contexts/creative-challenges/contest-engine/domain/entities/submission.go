package entities

import "time"

type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeDocument MediaType = "document"
	MediaTypeCode     MediaType = "code"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaTypeImage, MediaTypeVideo, MediaTypeAudio, MediaTypeDocument, MediaTypeCode:
		return true
	default:
		return false
	}
}

type Submission struct {
	SubmissionID string
	ContestID    string
	UserID       string
	Title        string
	Description  string
	MediaURL     string
	MediaType    MediaType
	ThumbnailURL string
	VoteCount    int
	Rank         *int
	CreatedAt    time.Time
}

// RankedSubmission pairs a submission with its dense leaderboard position.
type RankedSubmission struct {
	Submission Submission
	Rank       int
}

// Package contestengine implements the challenge contest engine inside the
// creative-challenges context.
//
// The module owns the contest lifecycle (upcoming, active, voting, completed),
// gated entry submission, the atomic vote ledger with per-IP rate limiting,
// live leaderboards, and the settlement job that assigns final ranks and
// grants prizes through the credit collaborator. Reward events leave through
// the outbox relay and drive winner notifications.
package contestengine

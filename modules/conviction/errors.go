package conviction

import "errors"

var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalNotVoting = errors.New("proposal is not open for voting")
	ErrAlreadyVoted      = errors.New("member already has an active vote on this proposal")
	ErrNoActiveVote      = errors.New("no active vote to withdraw")
)

package types

import "time"

// SessionAssets is the set of artifacts generated so far in one session.
// A nil field means the corresponding generation step has not succeeded yet.
// Slices are serialized without omitempty so that nil and empty survive a
// JSON round-trip distinctly.
type SessionAssets struct {
	JobDescription     *JobDescription     `json:"jobDescription"`
	InterviewQuestions []InterviewQuestion `json:"interviewQuestions"`
	CandidateProfiles  []CandidateProfile  `json:"candidateProfiles"`
	AdvancedAssets     *AdvancedAssets     `json:"advancedAssets"`
}

// Empty reports whether no artifact has been generated.
func (s SessionAssets) Empty() bool {
	return s.JobDescription == nil && s.InterviewQuestions == nil &&
		s.CandidateProfiles == nil && s.AdvancedAssets == nil
}

// Role is the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the chat log
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	// Local marks messages produced on this side (welcome, failure notices)
	// that are never replayed to the generator as history.
	Local bool `json:"local,omitempty"`
}

// ChatTurn is a role and text pair replayed to the generator as history.
type ChatTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

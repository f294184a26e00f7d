package models

// TransitionPattern classifies how a section should connect to its
// predecessor.
type TransitionPattern string

const (
	PatternOpening    TransitionPattern = "opening"
	PatternBridging   TransitionPattern = "bridging"
	PatternDeepening  TransitionPattern = "deepening"
	PatternParallel   TransitionPattern = "parallel"
	PatternConcluding TransitionPattern = "concluding"
)

// DiscourseContext is the continuation hint extracted from the previously
// generated section. Ephemeral: recomputed per section transition, never
// persisted.
type DiscourseContext struct {
	PreviousParagraph string
	LastSentence      string
	LastObject        string
	SubjectHint       string
}

// SectionFlowGuidance is the positional and transition metadata for one
// section. Pure derived value, safe to recompute.
type SectionFlowGuidance struct {
	Index           int
	Total           int
	IsFirst         bool
	IsLast          bool
	IsIntro         bool
	IsConclusion    bool
	PreviousHeading string
	NextHeading     string
	Zone            ContentZone
	ZoneTransition  bool
	Category        AttributeCategory
	Progression     string
	Pattern         TransitionPattern
	SuggestedOpener string
	BridgeText      string
	CentralEntity   string
	ArticleTitle    string
}

// LengthGuidance is the target word range for one section.
type LengthGuidance struct {
	MinWords int
	MaxWords int
}

package models

// AttributeCategory ranks how central a topic attribute is to the article's
// subject. Sections are ordered by this rank before anything else.
type AttributeCategory string

const (
	CategoryRoot   AttributeCategory = "ROOT"
	CategoryUnique AttributeCategory = "UNIQUE"
	CategoryRare   AttributeCategory = "RARE"
	CategoryCommon AttributeCategory = "COMMON"

	// Legacy aliases still produced by older briefs.
	CategoryCoreDefinition       AttributeCategory = "CORE_DEFINITION"
	CategorySearchDemand         AttributeCategory = "SEARCH_DEMAND"
	CategoryCompetitiveExpansion AttributeCategory = "COMPETITIVE_EXPANSION"
	CategoryComposite            AttributeCategory = "COMPOSITE"
)

// Canonical maps legacy aliases onto the four canonical categories.
func (c AttributeCategory) Canonical() AttributeCategory {
	switch c {
	case CategoryCoreDefinition:
		return CategoryRoot
	case CategorySearchDemand:
		return CategoryUnique
	case CategoryCompetitiveExpansion:
		return CategoryRare
	case CategoryComposite:
		return CategoryCommon
	default:
		return c
	}
}

// Rank returns the ordering priority of the category. Unclassified sections
// sort last.
func (c AttributeCategory) Rank() int {
	switch c.Canonical() {
	case CategoryRoot:
		return 1
	case CategoryUnique:
		return 2
	case CategoryRare:
		return 3
	case CategoryCommon:
		return 4
	default:
		return 999
	}
}

// ContentZone is a coarse content-role classification attached to an outline
// node (e.g. INTRO, MAIN, PRACTICAL, CLOSING).
type ContentZone string

// ZoneMain is the default zone when the brief does not classify a node.
const ZoneMain ContentZone = "MAIN"

// BriefSection is one node of the brief's outline tree. Read-only input to
// ordering and flow guidance.
type BriefSection struct {
	Key           string            `json:"key"`
	Heading       string            `json:"heading"`
	Level         int               `json:"level"`
	Order         int               `json:"order"`
	Category      AttributeCategory `json:"category,omitempty"`
	QueryPriority float64           `json:"queryPriority,omitempty"`
	Children      []BriefSection    `json:"children,omitempty"`
	Zone          ContentZone       `json:"zone,omitempty"`
}

// ContentBrief is the subset of the brief the generation pipeline reads.
type ContentBrief struct {
	Title           string         `json:"title"`
	CentralEntity   string         `json:"centralEntity"`
	Language        string         `json:"language"`
	TopicType       string         `json:"topicType,omitempty"` // "short" | "comprehensive"
	Outline         []BriefSection `json:"outline"`
	AnchorPhrases   []string       `json:"anchorPhrases,omitempty"`
	Bridges         map[string]string `json:"bridges,omitempty"` // section key -> bridge text
	SERPTargetWords int            `json:"serpTargetWords,omitempty"`
	PlannedImages   int            `json:"plannedImages,omitempty"`
	Industry        string         `json:"industry,omitempty"`
}

// FindSection looks up an outline node by key, descending one level of
// subsection nesting, falling back to a heading-text match.
func (b *ContentBrief) FindSection(key, heading string) *BriefSection {
	for i := range b.Outline {
		node := &b.Outline[i]
		if node.Key == key {
			return node
		}
		for j := range node.Children {
			if node.Children[j].Key == key {
				return &node.Children[j]
			}
		}
	}
	if heading == "" {
		return nil
	}
	for i := range b.Outline {
		if b.Outline[i].Heading == heading {
			return &b.Outline[i]
		}
	}
	return nil
}

// BusinessInfo carries the business context passed through to generation.
type BusinessInfo struct {
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Audience string `json:"audience,omitempty"`
	Tone     string `json:"tone,omitempty"`
	Website  string `json:"website,omitempty"`
}

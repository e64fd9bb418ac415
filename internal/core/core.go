package core

import "time"

// Score category identifiers. The scorer requires all five to be present in
// every ScoreResult; their maximums sum to 100.
const (
	CategoryReadability     = "readability"
	CategorySEO             = "seo_optimization"
	CategoryContentQuality  = "content_quality"
	CategoryEngagement      = "engagement"
	CategoryStructureFormat = "structure_format"
)

// CategoryMax maps each scoring category to its maximum point value.
var CategoryMax = map[string]int{
	CategoryReadability:     25,
	CategorySEO:             25,
	CategoryContentQuality:  20,
	CategoryEngagement:      15,
	CategoryStructureFormat: 15,
}

// CategoryOrder lists the scoring categories in display order.
var CategoryOrder = []string{
	CategoryReadability,
	CategorySEO,
	CategoryContentQuality,
	CategoryEngagement,
	CategoryStructureFormat,
}

// CategoryScore holds one category's awarded points and its maximum.
type CategoryScore struct {
	Score int `json:"score"` // Points awarded by the evaluator
	Max   int `json:"max"`   // Maximum points for this category
}

// ContentMetrics holds deterministic rule-based statistics computed from the
// draft text before any LLM call. They are embedded in the scoring prompt as
// supporting data.
type ContentMetrics struct {
	WordCount      int      `json:"word_count"`      // Words after markdown stripping
	FleschScore    float64  `json:"flesch_score"`    // Flesch Reading Ease (higher = easier)
	KeywordDensity float64  `json:"keyword_density"` // Target keyword occurrences as % of words
	HeadingCount   int      `json:"heading_count"`   // Number of markdown headings
	Headings       []string `json:"headings"`        // Extracted heading text, document order
}

// ScoreResult is the structured outcome of one scoring call. It is immutable
// after creation and attached to exactly one iteration record.
type ScoreResult struct {
	TotalScore             int                      `json:"total_score"`             // Sum of the five category scores
	CategoryScores         map[string]CategoryScore `json:"category_scores"`         // Keyed by category identifier
	Feedback               map[string]string        `json:"feedback"`                // Evaluator feedback per category
	ImprovementSuggestions []string                 `json:"improvement_suggestions"` // Ordered, most impactful first
	PassesThreshold        bool                     `json:"passes_threshold"`        // Set by the iteration controller
	Metrics                ContentMetrics           `json:"metrics"`                 // Rule-based metrics the evaluator saw
}

// IterationRecord captures one completed write-or-rewrite-then-score pass.
// Records are appended to a history in iteration order and never mutated.
type IterationRecord struct {
	Iteration int         `json:"iteration"` // 1-based iteration number
	Score     ScoreResult `json:"score"`
	Text      string      `json:"text"` // The draft produced by this iteration
}

// IterationOutcome is the final result of a generation request: the best
// draft seen across all iterations, plus the full history.
type IterationOutcome struct {
	BestText       string            `json:"best_text"`       // Highest-scoring draft, not necessarily the last
	BestScore      int               `json:"best_score"`      // Its total score
	BestIteration  int               `json:"best_iteration"`  // The iteration that produced it
	IterationCount int               `json:"iteration_count"` // Total iterations executed
	History        []IterationRecord `json:"history"`
	FinalScore     ScoreResult       `json:"final_score"` // Score details of the last iteration
}

// InvocationAttempt is an ephemeral trace record for one attempt inside the
// invoker's retry loop. It exists for observability only and is never
// persisted.
type InvocationAttempt struct {
	Attempt int    `json:"attempt"` // 1-based attempt number
	Model   string `json:"model"`   // Model in use for this attempt
	Outcome string `json:"outcome"` // "success", "rate_limited", or "fatal"
}

// PlanSection is a single planned section of the article outline.
type PlanSection struct {
	Heading     string `json:"heading"`               // Section heading text
	Description string `json:"description,omitempty"` // What the section should cover
}

// BlogPlan is the structured outline produced by the planner.
type BlogPlan struct {
	Title    string        `json:"title"`           // Main article title
	Intro    string        `json:"intro,omitempty"` // What the introduction should cover
	Sections []PlanSection `json:"sections"`        // At least one section
}

// SectionCount returns the number of planned sections.
func (p BlogPlan) SectionCount() int {
	return len(p.Sections)
}

// Headings returns all section headings in order.
func (p BlogPlan) Headings() []string {
	headings := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		headings = append(headings, s.Heading)
	}
	return headings
}

// ResearchResult is one ranked snippet returned by a research provider.
type ResearchResult struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Content   string  `json:"content"`   // Extracted readable text, never empty
	Relevance float64 `json:"relevance"` // Provider-assigned relevance, higher is better
}

// ContextChunk is one retrieved context passage handed to the writer.
type ContextChunk struct {
	Text        string `json:"text"`
	SourceTitle string `json:"source_title"`
	SourceURL   string `json:"source_url"`
}

// JobStatus enumerates the lifecycle states of a queued generation request.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is a queued generation request with its status and, once finished,
// either an outcome or an error description.
type Job struct {
	ID        string            `json:"id"`
	Topic     string            `json:"topic"`
	Keywords  []string          `json:"keywords"`
	Status    JobStatus         `json:"status"`
	Outcome   *IterationOutcome `json:"outcome,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

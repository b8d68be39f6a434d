package persona

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

// Kind is the investor persona derived from the questionnaire score.
type Kind string

const (
	Cautious   Kind = "CAUTIOUS"
	Balanced   Kind = "BALANCED"
	Growth     Kind = "GROWTH"
	Aggressive Kind = "AGGRESSIVE"
)

// Option is one selectable answer with its risk score.
type Option struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// Question is one questionnaire entry.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Profile is the questionnaire result: the persona plus the class targets it
// suggests. The PERCENTAGE targets always sum to 100; cash stays SET so the
// user pins their own buffer.
type Profile struct {
	Kind             Kind                `json:"kind"`
	Score            int                 `json:"score"`
	SuggestedTargets domain.ClassTargets `json:"suggestedTargets"`
}

func pct(p int64) domain.AssetClassTarget {
	return domain.AssetClassTarget{
		TargetMode:    domain.ModePercentage,
		TargetPercent: decimal.NewFromInt(p),
	}
}

var suggestions = map[Kind]domain.ClassTargets{
	Cautious: {
		domain.ClassStocks:     pct(25),
		domain.ClassBonds:      pct(65),
		domain.ClassRealEstate: pct(10),
		domain.ClassCash:       {TargetMode: domain.ModeSet},
	},
	Balanced: {
		domain.ClassStocks:     pct(50),
		domain.ClassBonds:      pct(35),
		domain.ClassRealEstate: pct(10),
		domain.ClassCrypto:     pct(5),
		domain.ClassCash:       {TargetMode: domain.ModeSet},
	},
	Growth: {
		domain.ClassStocks:     pct(70),
		domain.ClassBonds:      pct(15),
		domain.ClassRealEstate: pct(10),
		domain.ClassCrypto:     pct(5),
		domain.ClassCash:       {TargetMode: domain.ModeSet},
	},
	Aggressive: {
		domain.ClassStocks:     pct(80),
		domain.ClassBonds:      pct(5),
		domain.ClassCrypto:     pct(15),
		domain.ClassCash:       {TargetMode: domain.ModeSet},
	},
}

var questions = []Question{
	{
		ID:   "horizon",
		Text: "When do you expect to need most of this money?",
		Options: []Option{
			{Text: "Within 3 years", Score: 0},
			{Text: "In 3 to 10 years", Score: 2},
			{Text: "In 10 to 20 years", Score: 4},
			{Text: "In more than 20 years", Score: 6},
		},
	},
	{
		ID:   "drawdown",
		Text: "Your portfolio drops 30% in a crash. What do you do?",
		Options: []Option{
			{Text: "Sell everything", Score: 0},
			{Text: "Sell part of it", Score: 1},
			{Text: "Hold and wait", Score: 3},
			{Text: "Buy more", Score: 6},
		},
	},
	{
		ID:   "income",
		Text: "How stable is your income?",
		Options: []Option{
			{Text: "Irregular or at risk", Score: 0},
			{Text: "Mostly stable", Score: 2},
			{Text: "Very stable with reserves", Score: 4},
		},
	},
	{
		ID:   "experience",
		Text: "How experienced are you with market investments?",
		Options: []Option{
			{Text: "None", Score: 0},
			{Text: "Some funds or ETFs", Score: 2},
			{Text: "Years across asset classes", Score: 4},
		},
	},
	{
		ID:   "goal",
		Text: "What matters more to you?",
		Options: []Option{
			{Text: "Keeping what I have", Score: 0},
			{Text: "Steady growth with limited swings", Score: 2},
			{Text: "Maximum long-term growth", Score: 4},
		},
	},
}

// Questions returns the questionnaire in presentation order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// maxScore is the highest achievable total.
func maxScore() int {
	total := 0
	for _, q := range questions {
		best := 0
		for _, o := range q.Options {
			if o.Score > best {
				best = o.Score
			}
		}
		total += best
	}
	return total
}

func kindForScore(score int) Kind {
	max := maxScore()
	switch {
	case score*4 < max: // below 25%
		return Cautious
	case score*2 < max: // below 50%
		return Balanced
	case score*4 < max*3: // below 75%
		return Growth
	default:
		return Aggressive
	}
}

// Evaluate scores the answers (question ID -> chosen option index) and maps
// the total onto a persona with suggested class targets. Every question must
// be answered with a valid option index.
func Evaluate(answers map[string]int) (Profile, error) {
	score := 0
	for _, q := range questions {
		choice, ok := answers[q.ID]
		if !ok {
			return Profile{}, fmt.Errorf("question %q not answered", q.ID)
		}
		if choice < 0 || choice >= len(q.Options) {
			return Profile{}, fmt.Errorf("question %q: option %d out of range", q.ID, choice)
		}
		score += q.Options[choice].Score
	}

	kind := kindForScore(score)
	targets := make(domain.ClassTargets, len(suggestions[kind]))
	for class, tgt := range suggestions[kind] {
		targets[class] = tgt
	}

	return Profile{Kind: kind, Score: score, SuggestedTargets: targets}, nil
}

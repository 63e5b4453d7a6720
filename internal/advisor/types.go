package advisor

import "strings"

type Category string

const (
	CategoryBuy           Category = "buy"
	CategoryLoan          Category = "loan"
	CategoryTax           Category = "tax"
	CategoryBigGoal       Category = "big-goal"
	CategoryFestival      Category = "festival"
	CategoryReduceExpense Category = "reduce-expense"
	CategoryInvest        Category = "invest"
	CategorySideIncome    Category = "side-income"
)

// Categories returns the fixed set of advice categories.
func Categories() []Category {
	return []Category{
		CategoryBuy,
		CategoryLoan,
		CategoryTax,
		CategoryBigGoal,
		CategoryFestival,
		CategoryReduceExpense,
		CategoryInvest,
		CategorySideIncome,
	}
}

type Mode string

const (
	ModeSimple  Mode = "simple"
	ModeInDepth Mode = "indepth"
)

// ParseMode accepts the wire values and their concise/detailed aliases; empty means simple.
func ParseMode(value string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(ModeSimple), "concise":
		return ModeSimple, true
	case string(ModeInDepth), "detailed":
		return ModeInDepth, true
	default:
		return "", false
	}
}

// Tier is the access policy applied when assembling responses.
type Tier string

const (
	TierPremium Tier = "premium"
	TierFree    Tier = "free"
)

func (t Tier) Premium() bool {
	return t != TierFree
}

const DefaultLocation = "kathmandu"

type AdviceInput struct {
	Category        string
	Message         string
	MonthlyIncome   float64
	MonthlyExpenses map[string]float64
	CurrentSavings  float64
	Location        string
	ExtraProfile    map[string]any
	Mode            Mode
	UserID          string
}

func (in AdviceInput) withDefaults() AdviceInput {
	if strings.TrimSpace(in.Location) == "" {
		in.Location = DefaultLocation
	}
	if in.Mode == "" {
		in.Mode = ModeSimple
	}
	return in
}

type FeedbackInput struct {
	UserID   string
	Month    string
	Expenses map[string]float64
}

type Alternative struct {
	Name         string `json:"name"`
	PriceNPR     int64  `json:"price_npr"`
	MonthsNeeded int64  `json:"months_needed"`
}

// InvestmentSimulation is one month of the 12-month portfolio projection.
type InvestmentSimulation struct {
	Month                  int64    `json:"month"`
	TotalValue             float64  `json:"total_value"`
	FDValue                float64  `json:"fd_value"`
	SharesValue            float64  `json:"shares_value"`
	MutualFundsValue       float64  `json:"mutual_funds_value"`
	GoldValue              float64  `json:"gold_value"`
	CompanyInvestmentValue *float64 `json:"company_investment_value,omitempty"`
	StartupValue           *float64 `json:"startup_value,omitempty"`
}

type Visualization struct {
	ChartType   string            `json:"chart_type"`
	Description string            `json:"description"`
	Data        VisualizationData `json:"data"`
}

type VisualizationData struct {
	Progress       int64   `json:"progress"`
	Target         int64   `json:"target"`
	Current        float64 `json:"current"`
	MonthlySavings int64   `json:"monthly_savings"`
}

type AdviceResponse struct {
	ResponseNP                 string                 `json:"response_np"`
	ResponseEN                 string                 `json:"response_en"`
	MonthsNeeded               int64                  `json:"months_needed"`
	TargetAmountNPR            int64                  `json:"target_amount_npr"`
	RealisticMonthlySavingsNPR int64                  `json:"realistic_monthly_savings_npr"`
	ProgressPercent            int64                  `json:"progress_percent"`
	Tips                       []string               `json:"tips"`
	Alternatives               []Alternative          `json:"alternatives"`
	Visualization              *Visualization         `json:"visualization,omitempty"`
	Simulation                 []InvestmentSimulation `json:"simulation,omitempty"`
	IsPremium                  bool                   `json:"is_premium"`
}

type RightWrongItem struct {
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Solution    *string `json:"solution"`
}

type FeedbackResponse struct {
	Month         string           `json:"month"`
	TotalExpenses float64          `json:"total_expenses"`
	Rights        []RightWrongItem `json:"rights"`
	Wrongs        []RightWrongItem `json:"wrongs"`
	Suggestions   []string         `json:"suggestions"`
	IsPremium     bool             `json:"is_premium"`
}

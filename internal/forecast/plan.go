// Package forecast runs the year-over-year simulation: each year it
// computes the household's income, taxes and expenses, hands the money
// left over (or the shortfall) to the allocation engine, applies the
// resulting transactions and advances everything to the next year.
package forecast

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
	"nestegg/internal/ledger"
	"nestegg/internal/scenario"
	"nestegg/internal/tax"
)

// Plan is a fully-resolved forecast input: the household, its economic
// assumptions and its strategy settings. A Plan is consumed by a
// single Run; load or build a fresh one per run.
type Plan struct {
	Name           string
	StartYear      int
	Years          int
	LivingExpenses decimal.Decimal
	DebtStrategy   string

	People  []*ledger.Person
	Savings []*ledger.SavingsAccount
	Weights []decimal.Decimal // parallel to Savings
	Debts   []*ledger.Debt

	Scenario *scenario.Scenario
	Tax      *tax.Tax
}

// File representation. Money fields are unsigned decimal strings;
// rates are plain decimal strings and may be negative.
type planFile struct {
	Name           string        `json:"name"`
	StartYear      int           `json:"start_year"`
	Years          int           `json:"years"`
	LivingExpenses string        `json:"living_expenses"`
	DebtStrategy   string        `json:"debt_strategy"`
	People         []personSpec  `json:"people"`
	Accounts       []accountSpec `json:"accounts"`
	Debts          []debtSpec    `json:"debts"`
	Scenario       scenarioSpec  `json:"scenario"`
	Tax            taxSpec       `json:"tax"`
}

type personSpec struct {
	Name           string `json:"name"`
	BirthYear      int    `json:"birth_year"`
	RetirementYear int    `json:"retirement_year"`
	GrossIncome    string `json:"gross_income"`
	RaiseRate      string `json:"raise_rate"`
}

type accountSpec struct {
	Name             string `json:"name"`
	Balance          string `json:"balance"`
	Rate             string `json:"rate"`
	ContributionRoom string `json:"contribution_room,omitempty"`
	Weight           string `json:"weight"`
}

type debtSpec struct {
	Name               string `json:"name"`
	Balance            string `json:"balance"`
	Rate               string `json:"rate"`
	MinimumPayment     string `json:"minimum_payment"`
	AcceleratedPayment string `json:"accelerated_payment,omitempty"`
}

type scenarioSpec struct {
	Inflation      map[string]string `json:"inflation"`
	StockReturn    map[string]string `json:"stock_return"`
	BondReturn     map[string]string `json:"bond_return"`
	ManagementFees map[string]string `json:"management_fees"`
}

type taxSpec struct {
	Brackets []struct {
		Threshold string `json:"threshold"`
		Rate      string `json:"rate"`
	} `json:"brackets"`
	PersonalDeduction string `json:"personal_deduction"`
	CreditRate        string `json:"credit_rate"`
}

// LoadPlan reads and resolves a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan resolves a JSON plan document.
func ParsePlan(data []byte) (*Plan, error) {
	var file planFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if file.Years < 1 {
		return nil, fmt.Errorf("plan %q: years must be at least 1", file.Name)
	}
	if len(file.People) == 0 {
		return nil, fmt.Errorf("plan %q: at least one person required", file.Name)
	}
	if len(file.Accounts) == 0 {
		return nil, fmt.Errorf("plan %q: at least one savings account required", file.Name)
	}

	plan := &Plan{
		Name:         file.Name,
		StartYear:    file.StartYear,
		Years:        file.Years,
		DebtStrategy: file.DebtStrategy,
	}
	var err error
	if plan.LivingExpenses, err = core.ParseAmount(file.LivingExpenses); err != nil {
		return nil, fmt.Errorf("plan %q: living_expenses: %w", file.Name, err)
	}

	for _, p := range file.People {
		income, err := core.ParseAmount(p.GrossIncome)
		if err != nil {
			return nil, fmt.Errorf("person %q: gross_income: %w", p.Name, err)
		}
		raise, err := parseRate(p.RaiseRate)
		if err != nil {
			return nil, fmt.Errorf("person %q: raise_rate: %w", p.Name, err)
		}
		plan.People = append(plan.People, ledger.NewPerson(p.Name, p.BirthYear, p.RetirementYear, income, raise))
	}

	for _, a := range file.Accounts {
		balance, err := core.ParseAmount(a.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %q: balance: %w", a.Name, err)
		}
		rate, err := parseRate(a.Rate)
		if err != nil {
			return nil, fmt.Errorf("account %q: rate: %w", a.Name, err)
		}
		weight, err := parseRate(a.Weight)
		if err != nil || weight.IsNegative() {
			return nil, fmt.Errorf("account %q: invalid weight %q", a.Name, a.Weight)
		}
		account := ledger.NewSavingsAccount(a.Name, balance, rate)
		if a.ContributionRoom != "" {
			room, err := core.ParseAmount(a.ContributionRoom)
			if err != nil {
				return nil, fmt.Errorf("account %q: contribution_room: %w", a.Name, err)
			}
			account.SetContributionRoom(room)
		}
		plan.Savings = append(plan.Savings, account)
		plan.Weights = append(plan.Weights, weight)
	}

	for _, d := range file.Debts {
		balance, err := core.ParseAmount(d.Balance)
		if err != nil {
			return nil, fmt.Errorf("debt %q: balance: %w", d.Name, err)
		}
		rate, err := parseRate(d.Rate)
		if err != nil {
			return nil, fmt.Errorf("debt %q: rate: %w", d.Name, err)
		}
		minimum, err := core.ParseAmount(d.MinimumPayment)
		if err != nil {
			return nil, fmt.Errorf("debt %q: minimum_payment: %w", d.Name, err)
		}
		debt := ledger.NewDebt(d.Name, balance, rate, minimum)
		if d.AcceleratedPayment != "" {
			max, err := core.ParseAmount(d.AcceleratedPayment)
			if err != nil {
				return nil, fmt.Errorf("debt %q: accelerated_payment: %w", d.Name, err)
			}
			debt.SetAcceleratedPayment(max)
		}
		plan.Debts = append(plan.Debts, debt)
	}

	sc, err := parseScenario(file.Scenario, file.StartYear)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", file.Name, err)
	}
	plan.Scenario = sc

	plan.Tax, err = parseTax(file.Tax, file.StartYear, sc)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", file.Name, err)
	}
	return plan, nil
}

func parseRate(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseSeries(raw map[string]string) (scenario.Series, error) {
	if len(raw) == 0 {
		return scenario.Constant(decimal.Zero), nil
	}
	values := make(map[int]decimal.Decimal, len(raw))
	for yearStr, rateStr := range raw {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return scenario.Series{}, fmt.Errorf("invalid series year %q", yearStr)
		}
		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return scenario.Series{}, fmt.Errorf("invalid series rate %q for year %d", rateStr, year)
		}
		values[year] = rate
	}
	return scenario.Varying(values), nil
}

func parseScenario(spec scenarioSpec, startYear int) (*scenario.Scenario, error) {
	inflation, err := parseSeries(spec.Inflation)
	if err != nil {
		return nil, fmt.Errorf("inflation: %w", err)
	}
	stock, err := parseSeries(spec.StockReturn)
	if err != nil {
		return nil, fmt.Errorf("stock_return: %w", err)
	}
	bond, err := parseSeries(spec.BondReturn)
	if err != nil {
		return nil, fmt.Errorf("bond_return: %w", err)
	}
	fees, err := parseSeries(spec.ManagementFees)
	if err != nil {
		return nil, fmt.Errorf("management_fees: %w", err)
	}
	return scenario.New(startYear, inflation, stock, bond, fees), nil
}

func parseTax(spec taxSpec, startYear int, sc *scenario.Scenario) (*tax.Tax, error) {
	if len(spec.Brackets) == 0 {
		// No schedule means a tax-free jurisdiction in the model.
		return tax.New([]tax.Bracket{{Threshold: decimal.Zero, Rate: decimal.Zero}},
			decimal.Zero, decimal.Zero, startYear, sc)
	}
	brackets := make([]tax.Bracket, 0, len(spec.Brackets))
	for _, b := range spec.Brackets {
		threshold, err := core.ParseAmount(b.Threshold)
		if err != nil {
			return nil, fmt.Errorf("tax bracket threshold %q: %w", b.Threshold, err)
		}
		rate, err := decimal.NewFromString(b.Rate)
		if err != nil {
			return nil, fmt.Errorf("tax bracket rate %q: %w", b.Rate, err)
		}
		brackets = append(brackets, tax.Bracket{Threshold: threshold, Rate: rate})
	}
	deduction := decimal.Zero
	if spec.PersonalDeduction != "" {
		var err error
		if deduction, err = core.ParseAmount(spec.PersonalDeduction); err != nil {
			return nil, fmt.Errorf("personal_deduction: %w", err)
		}
	}
	creditRate, err := parseRate(spec.CreditRate)
	if err != nil {
		return nil, fmt.Errorf("credit_rate: %w", err)
	}
	return tax.New(brackets, deduction, creditRate, startYear, sc)
}

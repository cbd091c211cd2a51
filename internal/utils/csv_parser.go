package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fico-simulator/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrInvalidRowData = errors.New("invalid row data")
)

// RequiredColumns defines the columns that must be present in a tradeline CSV.
var RequiredColumns = []string{
	"type",
	"balance",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// type aliases
	"account_type": "type",
	"accounttype":  "type",
	"account type": "type",
	"tradeline":    "type",
	"kind":         "type",

	// balance aliases
	"current_balance": "balance",
	"currentbalance":  "balance",
	"current balance": "balance",
	"amount_owed":     "balance",
	"owed":            "balance",

	// limit aliases
	"credit_limit":    "limit",
	"creditlimit":     "limit",
	"credit limit":    "limit",
	"high_credit":     "limit",
	"original_amount": "limit",

	// status aliases
	"account_status": "status",
	"accountstatus":  "status",
	"condition":      "status",

	// payment history aliases
	"paymenthistory":  "payment_history",
	"payment history": "payment_history",
	"payment_status":  "payment_history",

	// per-account aggregates
	"late":          "late_payments",
	"latepayments":  "late_payments",
	"late payments": "late_payments",
	"times_late":    "late_payments",
	"age":           "age_months",
	"agemonths":     "age_months",
	"age months":    "age_months",
	"months_open":   "age_months",
	"account_age":   "age_months",
}

// TradelineImport is the result of parsing a tradeline CSV.
type TradelineImport struct {
	Accounts     []models.Account
	LatePayments int

	// AverageAgeMonths averages the rows that carry an age; 0 when none do.
	AverageAgeMonths float64
}

// Profile assembles a credit profile from the imported tradelines. The
// credit mix is counted from the account types.
func (t *TradelineImport) Profile(inquiries int) *models.CreditProfile {
	profile := &models.CreditProfile{
		Accounts:                make([]models.Account, len(t.Accounts)),
		Collections:             []models.Collection{},
		LatePaymentsTotal:       t.LatePayments,
		InquiriesTotal:          inquiries,
		AverageAccountAgeMonths: t.AverageAgeMonths,
	}
	copy(profile.Accounts, t.Accounts)

	for _, a := range profile.Accounts {
		switch a.Type {
		case models.AccountTypeRevolving:
			profile.CreditMix.RevolvingCount++
		case models.AccountTypeInstallment:
			profile.CreditMix.InstallmentCount++
		case models.AccountTypeMortgage:
			profile.CreditMix.MortgageCount++
		}
	}

	profile.Normalize()
	return profile
}

// CSVParser handles parsing of tradeline CSV files.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[string]int),
	}
}

// ParseTradelines parses CSV content into accounts. Rows that fail to parse
// are reported in the error slice and skipped.
func (p *CSVParser) ParseTradelines(content string) (*TradelineImport, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	result := &TradelineImport{Accounts: []models.Account{}}
	var parseErrors []error
	var ageSum float64
	ageRows := 0
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		row, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		result.Accounts = append(result.Accounts, row.account)
		result.LatePayments += row.latePayments
		if row.hasAge {
			ageSum += row.ageMonths
			ageRows++
		}
	}

	if ageRows > 0 {
		result.AverageAgeMonths = ageSum / float64(ageRows)
	}

	if len(result.Accounts) == 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return result, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		p.columnMapping[canonicalColumn(col)] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

type tradelineRow struct {
	account      models.Account
	latePayments int
	ageMonths    float64
	hasAge       bool
}

// parseRow parses a single CSV row.
func (p *CSVParser) parseRow(record []string) (*tradelineRow, error) {
	getValue := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	typeStr := getValue("type")
	if typeStr == "" {
		return nil, fmt.Errorf("%w: type is empty", ErrInvalidRowData)
	}

	balance, err := parseFloat(getValue("balance"))
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}

	var limit float64
	if s := getValue("limit"); s != "" {
		if limit, err = parseFloat(s); err != nil {
			return nil, fmt.Errorf("invalid limit: %w", err)
		}
	}

	if balance < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: negative amount", ErrInvalidRowData)
	}

	row := &tradelineRow{
		account: models.Account{
			Type:                  models.ParseAccountType(typeStr),
			Balance:               balance,
			Limit:                 limit,
			Status:                getValue("status"),
			PaymentHistorySummary: getValue("payment_history"),
		},
	}

	if s := getValue("late_payments"); s != "" {
		late, err := parseInt(s)
		if err != nil {
			return nil, fmt.Errorf("invalid late_payments: %w", err)
		}
		if late > 0 {
			row.latePayments = late
		}
	}

	if s := getValue("age_months"); s != "" {
		age, err := parseFloat(s)
		if err != nil {
			return nil, fmt.Errorf("invalid age_months: %w", err)
		}
		row.ageMonths = models.SanitizeFloat(age)
		row.hasAge = row.ageMonths >= 0
	}

	return row, nil
}

// parseFloat parses a string to float64, handling common formats.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove commas and currency symbols
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)

	return strconv.ParseFloat(s, 64)
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Handle float strings (e.g., "2.0")
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

// HeaderCheck describes a tradeline CSV header before any row is parsed.
type HeaderCheck struct {
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
}

// OK reports whether every required column is present.
func (h *HeaderCheck) OK() bool {
	return len(h.MissingColumns) == 0
}

// CheckTradelineHeader reads only the header row and reports which required
// columns are absent, after alias resolution.
func CheckTradelineHeader(content string) (*HeaderCheck, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyCSV
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	check := &HeaderCheck{Columns: make([]string, 0, len(header)), MissingColumns: []string{}}
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[canonicalColumn(col)] = true
		check.Columns = append(check.Columns, strings.TrimSpace(col))
	}
	for _, required := range RequiredColumns {
		if !present[required] {
			check.MissingColumns = append(check.MissingColumns, required)
		}
	}
	return check, nil
}

func canonicalColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

// Package source discovers and parses JSONL import files of accounts,
// transactions, goals, budget items and settings.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashpulse/internal/model"
	"github.com/theirongolddev/cashpulse/internal/paycycle"
)

// DefaultExponent is the number of minor units per major unit as a power of ten.
const DefaultExponent = 2

// maxLineErrors caps how many line errors a ParseResult keeps.
const maxLineErrors = 10

// ParseOptions controls how amounts and settings are decoded.
type ParseOptions struct {
	// Exponent converts major units to minor units (2 for cents).
	Exponent int32
	// BaseSettings is the starting point a settings line is merged onto.
	BaseSettings model.UserSettings
}

// DefaultParseOptions returns cents and the default user settings.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Exponent:     DefaultExponent,
		BaseSettings: model.DefaultSettings(),
	}
}

// LineError records why a single line was rejected.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ParseResult holds the output of parsing a single JSONL file.
type ParseResult struct {
	Batch       Batch
	ParseErrors int
	LineErrors  []LineError
	Err         error
}

// ParseFile reads a JSONL import file. Lines that fail to decode or validate
// are counted and skipped; only I/O failures set Err.
func ParseFile(df DiscoveredFile, opts ParseOptions) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var (
		result   ParseResult
		lineNo   int
		settings = opts.BaseSettings
		seenSet  bool
		ids      = newIDMinter()
	)
	reject := func(err error) {
		result.ParseErrors++
		if len(result.LineErrors) < maxLineErrors {
			result.LineErrors = append(result.LineErrors, LineError{Line: lineNo, Err: err})
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		switch extractTopLevelType(line) {
		case TypeAccount:
			a, err := decodeAccount(line, opts.Exponent, ids)
			if err != nil {
				reject(err)
				continue
			}
			result.Batch.Accounts = append(result.Batch.Accounts, a)

		case TypeTransaction:
			tx, err := decodeTransaction(line, opts.Exponent, ids)
			if err != nil {
				reject(err)
				continue
			}
			result.Batch.Transactions = append(result.Batch.Transactions, tx)

		case TypeGoal:
			g, err := decodeGoal(line, opts.Exponent, len(result.Batch.Goals), ids)
			if err != nil {
				reject(err)
				continue
			}
			result.Batch.Goals = append(result.Batch.Goals, g)

		case TypeBudgetItem:
			item, err := decodeBudgetItem(line, opts.Exponent, ids)
			if err != nil {
				reject(err)
				continue
			}
			result.Batch.BudgetItems = append(result.Batch.BudgetItems, item)

		case TypeSettings:
			s, err := decodeSettings(line, settings)
			if err != nil {
				reject(err)
				continue
			}
			settings = s
			seenSet = true

		default:
			reject(fmt.Errorf("unknown or missing record type"))
		}
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}

	if seenSet {
		result.Batch.Settings = &settings
	}
	return result
}

func decodeAccount(line []byte, exp int32, ids *idMinter) (model.Account, error) {
	var raw RawAccount
	if err := json.Unmarshal(line, &raw); err != nil {
		return model.Account{}, err
	}
	a := model.Account{
		ID:               ids.orMint(raw.ID, TypeAccount, string(line)),
		Name:             raw.Name,
		AvailableBalance: ToMinor(raw.AvailableBalance, exp),
		Status:           model.AccountStatus(raw.Status),
	}
	if a.Status == "" {
		a.Status = model.AccountActive
	}
	return a, model.Validate("account", a)
}

func decodeTransaction(line []byte, exp int32, ids *idMinter) (model.Transaction, error) {
	var raw RawTransaction
	if err := json.Unmarshal(line, &raw); err != nil {
		return model.Transaction{}, err
	}
	date, err := ParseDate(raw.Date)
	if err != nil {
		return model.Transaction{}, err
	}
	tx := model.Transaction{
		ID:          raw.ID,
		AccountID:   raw.AccountID,
		Amount:      ToMinor(raw.Amount, exp),
		Date:        date,
		Description: raw.Description,
		Category:    raw.Category,
	}
	// Keyed on decoded fields so formatting changes keep the same id.
	key := tx.AccountID + "\x00" + date.Format("2006-01-02") + "\x00" +
		strconv.FormatInt(tx.Amount, 10) + "\x00" + tx.Description
	tx.ID = ids.orMint(raw.ID, TypeTransaction, key)
	return tx, model.Validate("transaction", tx)
}

func decodeGoal(line []byte, exp int32, index int, ids *idMinter) (model.Goal, error) {
	var raw RawGoal
	if err := json.Unmarshal(line, &raw); err != nil {
		return model.Goal{}, err
	}
	g := model.Goal{
		ID:                ids.orMint(raw.ID, TypeGoal, string(line)),
		Name:              raw.Name,
		Target:            ToMinor(raw.Target, exp),
		Saved:             ToMinor(raw.Saved, exp),
		MonthlyAllocation: ToMinor(raw.MonthlyAllocation, exp),
		Priority:          index,
	}
	if raw.Priority != nil {
		g.Priority = *raw.Priority
	}
	if raw.DueDate != "" {
		due, err := ParseDate(raw.DueDate)
		if err != nil {
			return model.Goal{}, err
		}
		g.DueDate = due
	}
	return g, model.Validate("goal", g)
}

func decodeBudgetItem(line []byte, exp int32, ids *idMinter) (model.BudgetItem, error) {
	var raw RawBudgetItem
	if err := json.Unmarshal(line, &raw); err != nil {
		return model.BudgetItem{}, err
	}
	item := model.BudgetItem{
		ID:             ids.orMint(raw.ID, TypeBudgetItem, string(line)),
		Name:           raw.Name,
		Frequency:      model.Frequency(raw.Frequency),
		Amount:         ToMinor(raw.Amount, exp),
		DaysPerWeek:    raw.DaysPerWeek,
		Group:          model.BudgetGroup(raw.Group),
		ParentCategory: raw.ParentCategory,
	}
	if item.Frequency == "" {
		item.Frequency = model.FrequencyMonthly
	}
	return item, model.Validate("budget item", item)
}

func decodeSettings(line []byte, base model.UserSettings) (model.UserSettings, error) {
	var raw RawSettings
	if err := json.Unmarshal(line, &raw); err != nil {
		return base, err
	}
	s := base
	if raw.PaydayOfMonth != 0 {
		s.PaydayOfMonth = raw.PaydayOfMonth
	}
	if raw.Cadence != "" {
		s.Cadence = model.Cadence(raw.Cadence)
	}
	if raw.BudgetMethod != "" {
		s.BudgetMethod = model.BudgetMethod(raw.BudgetMethod)
	}
	if raw.NeedsPct != nil {
		s.NeedsPct = *raw.NeedsPct
	}
	if raw.WantsPct != nil {
		s.WantsPct = *raw.WantsPct
	}
	if raw.SavingsPct != nil {
		s.SavingsPct = *raw.SavingsPct
	}
	if raw.Strategy != "" {
		s.Strategy = model.Strategy(raw.Strategy)
	}
	if err := model.ValidateSettings(s); err != nil {
		return base, err
	}
	return s, nil
}

// ToMinor converts a major-unit amount to minor units, rounding half away from zero.
func ToMinor(d decimal.Decimal, exp int32) int64 {
	return d.Shift(exp).Round(0).IntPart()
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the civil date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, model.Invalid("date", "date", "required")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, model.ErrInvalidInput)
	}
	return paycycle.Date(t), nil
}

// importNamespace seeds the name-based UUIDs given to records without an id.
var importNamespace = uuid.MustParse("6f1c5a0e-3d2b-5b7e-9a41-0c8d2e7f4b19")

// idMinter assigns stable ids to records that arrive without one. The id is
// derived from the record's content and how many identical records came
// before it in the same file, so re-parsing a file yields the same ids.
type idMinter struct {
	seen map[string]int
}

func newIDMinter() *idMinter {
	return &idMinter{seen: make(map[string]int)}
}

func (m *idMinter) orMint(id, kind, key string) string {
	if id != "" {
		return id
	}
	name := kind + "\x00" + key
	n := m.seen[name]
	m.seen[name] = n + 1
	return uuid.NewSHA1(importNamespace, []byte(name+"\x00"+strconv.Itoa(n))).String()
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are ignored.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value, not a key.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	v := string(line[i : i+end])
	switch v {
	case TypeAccount, TypeTransaction, TypeGoal, TypeBudgetItem, TypeSettings:
		return v, true
	}
	return "", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}

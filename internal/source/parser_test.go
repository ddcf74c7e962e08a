package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/cashpulse/internal/model"
)

// writeImport creates a temp JSONL file and returns a DiscoveredFile for it.
func writeImport(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "import.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, Name: "import"}
}

func TestParseFile_Transactions(t *testing.T) {
	df := writeImport(t,
		`{"type":"transaction","id":"t1","account_id":"chq","amount":-12.34,"date":"2026-03-02","description":"Groceries"}`,
		`{"type":"transaction","id":"t2","account_id":"chq","amount":"25000","date":"2026-03-25T08:30:00Z","description":"SALARY ACME"}`,
	)

	result := ParseFile(df, DefaultParseOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors != 0 {
		t.Fatalf("ParseErrors = %d, want 0 (%v)", result.ParseErrors, result.LineErrors)
	}

	txs := result.Batch.Transactions
	if len(txs) != 2 {
		t.Fatalf("len(Transactions) = %d, want 2", len(txs))
	}
	if txs[0].Amount != -1234 {
		t.Errorf("Amount = %d, want -1234", txs[0].Amount)
	}
	if txs[1].Amount != 2500000 {
		t.Errorf("Amount = %d, want 2500000", txs[1].Amount)
	}
	want := time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)
	if !txs[1].Date.Equal(want) {
		t.Errorf("Date = %v, want %v", txs[1].Date, want)
	}
}

func TestParseFile_AllRecordTypes(t *testing.T) {
	df := writeImport(t,
		`{"type":"account","id":"chq","name":"Cheque","available_balance":5000}`,
		`{"type":"goal","name":"Holiday","target":10000,"saved":2500,"monthly_allocation":1000,"due_date":"2026-12-01"}`,
		`{"type":"goal","name":"Car","target":50000,"monthly_allocation":2000,"priority":0}`,
		`{"type":"budget_item","name":"Rent","frequency":"monthly","amount":2500,"group":"needs"}`,
		`{"type":"settings","payday_of_month":31,"strategy":"proportional"}`,
	)

	result := ParseFile(df, DefaultParseOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors != 0 {
		t.Fatalf("ParseErrors = %d, want 0 (%v)", result.ParseErrors, result.LineErrors)
	}

	b := result.Batch
	if b.Len() != 5 {
		t.Errorf("Len() = %d, want 5", b.Len())
	}
	if len(b.Accounts) != 1 || b.Accounts[0].Status != model.AccountActive {
		t.Errorf("Accounts = %+v, want one active account", b.Accounts)
	}
	if b.Accounts[0].AvailableBalance != 500000 {
		t.Errorf("AvailableBalance = %d, want 500000", b.Accounts[0].AvailableBalance)
	}

	if len(b.Goals) != 2 {
		t.Fatalf("len(Goals) = %d, want 2", len(b.Goals))
	}
	if b.Goals[0].ID == "" {
		t.Error("goal without id should be assigned one")
	}
	if b.Goals[0].ID == b.Goals[1].ID {
		t.Error("generated goal ids should be unique")
	}
	if b.Goals[0].Priority != 0 || b.Goals[1].Priority != 0 {
		t.Errorf("priorities = %d,%d, want 0,0 (line order, then explicit)", b.Goals[0].Priority, b.Goals[1].Priority)
	}
	if !b.Goals[0].DueDate.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DueDate = %v", b.Goals[0].DueDate)
	}

	if b.BudgetItems[0].Amount != 250000 || b.BudgetItems[0].Group != model.GroupNeeds {
		t.Errorf("BudgetItem = %+v", b.BudgetItems[0])
	}

	if b.Settings == nil {
		t.Fatal("Settings = nil, want merged settings")
	}
	if b.Settings.PaydayOfMonth != 31 || b.Settings.Strategy != model.StrategyProportional {
		t.Errorf("Settings = %+v", *b.Settings)
	}
	if b.Settings.Cadence != model.CadenceMonthly {
		t.Errorf("Cadence = %q, want default monthly", b.Settings.Cadence)
	}
}

func TestParseFile_EmptyFile(t *testing.T) {
	df := writeImport(t)
	result := ParseFile(df, DefaultParseOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error on empty file: %v", result.Err)
	}
	if result.Batch.Len() != 0 || result.Batch.Settings != nil {
		t.Error("expected empty batch for empty file")
	}
}

func TestParseFile_MalformedLines(t *testing.T) {
	df := writeImport(t,
		`not json at all`,
		`{"type":"transaction","id":"ok","amount":-1,"date":"2026-03-01"}`,
		`{"type":"transaction","broken json`,
		`{"type":"transaction","id":"nodate","amount":-1}`,
		`{"type":"goal","name":"zero target","target":0}`,
		`{"type":"settings","budget_method":"percentage_based","needs_pct":50,"wants_pct":50,"savings_pct":50}`,
		`{"type":"progress"}`,
	)

	result := ParseFile(df, DefaultParseOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if got := len(result.Batch.Transactions); got != 1 {
		t.Errorf("len(Transactions) = %d, want 1", got)
	}
	if result.ParseErrors != 6 {
		t.Errorf("ParseErrors = %d, want 6", result.ParseErrors)
	}
	if result.Batch.Settings != nil {
		t.Error("invalid settings line should not produce settings")
	}

	var goalErr error
	for _, le := range result.LineErrors {
		if le.Line == 5 {
			goalErr = le.Err
		}
	}
	if !errors.Is(goalErr, model.ErrInvalidInput) {
		t.Errorf("line 5 error = %v, want ErrInvalidInput", goalErr)
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	result := ParseFile(DiscoveredFile{Path: filepath.Join(t.TempDir(), "nope.jsonl")}, DefaultParseOptions())
	if result.Err == nil {
		t.Error("expected error for missing file")
	}
}

func TestToMinor(t *testing.T) {
	tests := []struct {
		in   string
		exp  int32
		want int64
	}{
		{"12.34", 2, 1234},
		{"-12.345", 2, -1235},
		{"0.005", 2, 1},
		{"100", 0, 100},
		{"1.5", 3, 1500},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := ToMinor(d, tt.exp); got != tt.want {
			t.Errorf("ToMinor(%s, %d) = %d, want %d", tt.in, tt.exp, got, tt.want)
		}
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jsonl", "a.ndjson", "notes.txt", ".hidden/c.jsonl"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2: %+v", len(files), files)
	}
	if files[0].Name != "a" || files[1].Name != "b" {
		t.Errorf("names = %q,%q, want a,b", files[0].Name, files[1].Name)
	}
	if files[0].SizeBytes != 3 {
		t.Errorf("SizeBytes = %d, want 3", files[0].SizeBytes)
	}

	single, err := ScanDir(filepath.Join(dir, "notes.txt"))
	if err != nil || len(single) != 1 {
		t.Errorf("ScanDir(file) = %v, %v, want one file", single, err)
	}

	missing, err := ScanDir(filepath.Join(dir, "missing"))
	if err != nil || missing != nil {
		t.Errorf("ScanDir(missing) = %v, %v, want nil, nil", missing, err)
	}
}

func TestExtractTopLevelType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"account", `{"type":"account","id":"a"}`, "account"},
		{"transaction", `{"type":"transaction","amount":1}`, "transaction"},
		{"budget item", `{"type": "budget_item","amount":1}`, "budget_item"},
		{"nested type ignored", `{"meta":{"type":"goal"},"type":"settings"}`, "settings"},
		{"type as value", `{"category":"type","type":"goal"}`, "goal"},
		{"unknown type", `{"type":"progress","data":{}}`, ""},
		{"no type field", `{"message":"hello"}`, ""},
		{"empty", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractTopLevelType([]byte(tt.input))
			if got != tt.want {
				t.Errorf("extractTopLevelType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// FuzzExtractTopLevelType checks the byte-level scanner never panics on
// arbitrary input, since import files are untrusted.
func FuzzExtractTopLevelType(f *testing.F) {
	f.Add([]byte(`{"type":"account","id":"x"}`))
	f.Add([]byte(`{"type":"transaction","amount":-1.5}`))
	f.Add([]byte(`{"meta":{"type":"nested"},"type":"goal"}`))
	f.Add([]byte(`not json`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"type":null}`))
	f.Add([]byte(`{"type":123}`))
	f.Add([]byte(``))
	f.Add([]byte(`{"type":"goal`))

	f.Fuzz(func(t *testing.T, data []byte) {
		result := extractTopLevelType(data)

		switch result {
		case "", TypeAccount, TypeTransaction, TypeGoal, TypeBudgetItem, TypeSettings:
		default:
			t.Errorf("unexpected type %q from input %q", result, data)
		}
	})
}

func TestParseFile_IDlessRecordsGetStableIDs(t *testing.T) {
	lines := []string{
		`{"type":"transaction","account_id":"chq","amount":-20,"date":"2026-03-02","description":"Taxi"}`,
		`{"type":"transaction","account_id":"chq","amount":-20,"date":"2026-03-02","description":"Taxi"}`,
		`{"type":"budget_item","name":"Rent","amount":2500}`,
	}
	first := ParseFile(writeImport(t, lines...), DefaultParseOptions())
	// Reformatted and extended: existing records keep their ids.
	second := ParseFile(writeImport(t,
		`{"type":"transaction", "description":"Taxi", "date":"2026-03-02", "amount":"-20.00", "account_id":"chq"}`,
		lines[1], lines[2],
		`{"type":"transaction","account_id":"chq","amount":-7,"date":"2026-03-04","description":"Coffee"}`,
	), DefaultParseOptions())

	a, b := first.Batch.Transactions, second.Batch.Transactions
	if len(a) != 2 || len(b) != 3 {
		t.Fatalf("transactions = %d/%d, want 2/3", len(a), len(b))
	}
	if a[0].ID == a[1].ID {
		t.Errorf("identical lines share id %q, want distinct", a[0].ID)
	}
	if a[0].ID != b[0].ID || a[1].ID != b[1].ID {
		t.Errorf("ids changed across parses: %q,%q vs %q,%q", a[0].ID, a[1].ID, b[0].ID, b[1].ID)
	}
	if first.Batch.BudgetItems[0].ID != second.Batch.BudgetItems[0].ID {
		t.Errorf("budget item id changed: %q vs %q", first.Batch.BudgetItems[0].ID, second.Batch.BudgetItems[0].ID)
	}

	if got := ParseFile(writeImport(t, `{"type":"transaction","id":"t9","amount":-1,"date":"2026-03-02"}`), DefaultParseOptions()); got.Batch.Transactions[0].ID != "t9" {
		t.Errorf("explicit id = %q, want t9", got.Batch.Transactions[0].ID)
	}
}

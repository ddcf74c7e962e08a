package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/cashpulse/internal/model"
)

type fakeSource struct {
	accounts     []model.Account
	transactions []model.Transaction
	goals        []model.Goal
	settings     model.UserSettings
	goalsErr     error
	block        bool

	since, until time.Time
}

func (f *fakeSource) Accounts(ctx context.Context) ([]model.Account, error) {
	return f.accounts, nil
}

func (f *fakeSource) TransactionsBetween(ctx context.Context, since, until time.Time) ([]model.Transaction, error) {
	f.since, f.until = since, until
	return f.transactions, nil
}

func (f *fakeSource) Goals(ctx context.Context) ([]model.Goal, error) {
	return f.goals, f.goalsErr
}

func (f *fakeSource) BudgetItems(ctx context.Context) ([]model.BudgetItem, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return nil, nil
}

func (f *fakeSource) Settings(ctx context.Context) (model.UserSettings, error) {
	return f.settings, nil
}

func TestLoadSnapshot(t *testing.T) {
	src := &fakeSource{
		accounts:     []model.Account{{ID: "chq", AvailableBalance: 5000, Status: model.AccountActive}},
		transactions: []model.Transaction{{ID: "t", Amount: -100, Date: mustDate(t, "2026-03-05")}},
		goals:        []model.Goal{{ID: "g", Target: 100}},
		settings:     model.DefaultSettings(),
	}
	today := time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)

	in, err := LoadSnapshot(context.Background(), src, LoadOptions{Today: today})
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if in.Year != 2026 || in.Month != time.March {
		t.Errorf("month = %d-%d, want 2026-3", in.Year, in.Month)
	}
	if !in.Today.Equal(mustDate(t, "2026-03-10")) {
		t.Errorf("Today = %v, want civil date", in.Today)
	}
	if len(in.Accounts) != 1 || len(in.Transactions) != 1 || len(in.Goals) != 1 {
		t.Errorf("inputs = %+v", in)
	}

	// Month starts Mar 1 but the 30-day trailing window reaches back to Feb 9.
	if !src.since.Equal(mustDate(t, "2026-02-09")) || !src.until.Equal(mustDate(t, "2026-04-01")) {
		t.Errorf("window = [%v, %v)", src.since, src.until)
	}

	snap := in.Snapshot(nil)
	if snap.MonthlyExpenses != 100 || snap.AvailableBalance != 5000 {
		t.Errorf("Snapshot = %+v", snap)
	}
}

func TestLoadSnapshot_NamesFailingRead(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{goalsErr: boom}

	_, err := LoadSnapshot(context.Background(), src, LoadOptions{Today: mustDate(t, "2026-03-10")})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "loading goals") {
		t.Errorf("err = %q, want read name", err)
	}
}

func TestLoadSnapshot_PerReadTimeout(t *testing.T) {
	src := &fakeSource{block: true}

	start := time.Now()
	_, err := LoadSnapshot(context.Background(), src, LoadOptions{
		Today:   mustDate(t, "2026-03-10"),
		Timeout: 20 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout not applied")
	}
}

func TestLoadSnapshot_RequiresToday(t *testing.T) {
	_, err := LoadSnapshot(context.Background(), &fakeSource{}, LoadOptions{})
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestTransactionWindow_PastMonth(t *testing.T) {
	since, until := TransactionWindow(LoadOptions{
		Year:  2026,
		Month: time.January,
		Today: mustDate(t, "2026-03-10"),
	})
	if !since.Equal(mustDate(t, "2026-01-01")) || !until.Equal(mustDate(t, "2026-03-11")) {
		t.Errorf("window = [%v, %v)", since, until)
	}
}

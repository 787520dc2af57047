package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradeplan/funded"
	"github.com/rustyeddy/tradeplan/journal"
	"github.com/rustyeddy/tradeplan/risk"
	"github.com/rustyeddy/tradeplan/trade"
)

var testNow = time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)

func testApp() *app {
	return &app{
		v:         viper.New(),
		log:       zerolog.Nop(),
		logCloser: nopCloser{},
		now:       func() time.Time { return testNow },
	}
}

// execute runs the CLI against db with the .env lookup disabled.
func execute(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(testApp())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", db, "--env-file", "", "--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tradeplan.db")
}

var planArgs = []string{
	"plan", "--symbol", "btcusdt",
	"--entry", "50000", "--stop", "48000",
	"--tp1", "52000", "--tp2", "55000", "--tp3", "60000",
	"--risk", "2", "--account", "10000",
}

func TestPlanPrintsSizingAndTargets(t *testing.T) {
	t.Parallel()

	out, err := execute(t, tempDB(t), planArgs...)
	require.NoError(t, err)

	assert.Contains(t, out, "Trade plan BTCUSDT")
	assert.Contains(t, out, "long")
	assert.Contains(t, out, "$200.00")
	assert.Contains(t, out, "0.05")
	assert.Contains(t, out, "$1000.00")
	assert.Contains(t, out, "$1500.00")
	assert.Contains(t, out, "$2000.00")
	assert.Contains(t, out, "$4500.00")
	assert.NotContains(t, out, "Saved plan")
}

func TestPlanInvalidSetup(t *testing.T) {
	t.Parallel()

	out, err := execute(t, tempDB(t), "plan", "--entry", "100", "--stop", "100", "--tp1", "90", "--risk", "30")
	assert.ErrorIs(t, err, ErrInvalidSetup)
	assert.Contains(t, out, risk.MsgRiskRange)
	assert.Contains(t, out, risk.MsgEntryEqualsStop)
}

func TestPlanLifecycle(t *testing.T) {
	t.Parallel()

	db := tempDB(t)
	out, err := execute(t, db, append(planArgs, "--save")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved plan")

	j, err := journal.NewSQLite(db)
	require.NoError(t, err)
	plans, err := j.ListPlans(true)
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.Len(t, plans, 1)
	id := plans[0].ID

	out, err = execute(t, db, "trade", "hit", id, "tp1")
	require.NoError(t, err)
	assert.Contains(t, out, "tp1 hit at 52000")
	assert.Contains(t, out, "stop moved to break-even 50000 (was 48000)")

	// repeating a hit changes nothing
	out, err = execute(t, db, "trade", "hit", id, "tp1")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing changed")

	_, err = execute(t, db, "trade", "hit", id, "tp3")
	assert.ErrorIs(t, err, trade.ErrOutOfOrder)

	out, err = execute(t, db, "trade", "hit", id, "tp2")
	require.NoError(t, err)
	assert.Contains(t, out, "trailing stop activated")

	out, err = execute(t, db, "trade", "trail", id, "56000")
	require.NoError(t, err)
	assert.Contains(t, out, "trailing stop 50000 -> 5432")

	out, err = execute(t, db, "trade", "trail", id, "54000")
	require.NoError(t, err)
	assert.Contains(t, out, "stop hit")
	assert.Contains(t, out, "position closed")

	out, err = execute(t, db, "trade", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, id)

	out, err = execute(t, db, "trade", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "stopped")

	out, err = execute(t, db, "trade", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "** Plan: BTCUSDT LONG")
	assert.Contains(t, out, "trailing_updated")
	assert.Contains(t, out, "sl_hit")

	_, err = execute(t, db, "trade", "hit", id, "tp4")
	assert.ErrorIs(t, err, trade.ErrUnknownLevel)

	_, err = execute(t, db, "trade", "stop", "missing")
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

var logArgs = []string{
	"log", "--symbol", "btcusdt", "--side", "short",
	"--entry", "100", "--stop", "102",
	"--tp1", "98", "--tp2", "96", "--tp3", "94",
}

func TestLogProgressAndJournal(t *testing.T) {
	t.Parallel()

	db := tempDB(t)

	out, err := execute(t, db, append(logArgs, "--outcome", "tp3")...)
	require.NoError(t, err)
	assert.Contains(t, out, "$850.00")
	assert.Contains(t, out, "1.70R")
	assert.Contains(t, out, "$100850.00")

	out, err = execute(t, db, append(logArgs, "--outcome", "tp2")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Daily goal reached")

	out, err = execute(t, db, append(logArgs, "--outcome", "sl")...)
	var lerr *funded.LimitError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, out, risk.CodeDailyGoalReached)

	out, err = execute(t, db, "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "$1400.00")
	assert.Contains(t, out, "Trades left today")
	assert.Contains(t, out, "Trading blocked")

	out, err = execute(t, db, "journal", "today")
	require.NoError(t, err)
	assert.Contains(t, out, "** Trade: BTCUSDT SHORT TP3")
	assert.Contains(t, out, "2 trades, 2 wins, 0 losses, net $1400.00")

	out, err = execute(t, db, "journal", "day", "2024-03-12")
	require.NoError(t, err)
	assert.Contains(t, out, "No trades closed on 2024-03-12")

	_, err = execute(t, db, "journal", "day", "12/03/2024")
	assert.Error(t, err)

	dir := t.TempDir()
	xlsx := filepath.Join(dir, "trades.xlsx")
	out, err = execute(t, db, "journal", "export", "--out", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 trades")
	assert.FileExists(t, xlsx)

	csvPath := filepath.Join(dir, "trades.csv")
	_, err = execute(t, db, "journal", "export", "--format", "csv", "--out", csvPath, "--from", "2024-03-14")
	require.NoError(t, err)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count(data, []byte("\n")), "header only")

	out, err = execute(t, db, "journal", "export", "--format", "org", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, ":OUTCOME: tp2")

	_, err = execute(t, db, "journal", "export", "--format", "pdf")
	assert.Error(t, err)
}

func TestLogCSVJournalTee(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tradeplan.yaml")
	yaml := "journal:\n  type: csv\n  db_path: " + filepath.Join(dir, "x.db") +
		"\n  trades_file: " + filepath.Join(dir, "trades.csv") +
		"\n  equity_file: " + filepath.Join(dir, "equity.csv") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0644))

	db := filepath.Join(dir, "local.db")
	_, err := execute(t, db, append([]string{"--config", cfgPath}, append(logArgs, "--outcome", "tp1")...)...)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "trades.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "BTCUSDT")

	// --db wins over journal.db_path
	assert.FileExists(t, db)
	assert.NoFileExists(t, filepath.Join(dir, "x.db"))
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tp.yaml")

	out, err := execute(t, tempDB(t), "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = execute(t, tempDB(t), "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Journal: sqlite")

	require.NoError(t, os.WriteFile(path, []byte("account:\n  balance: 0\n"), 0644))
	_, err = execute(t, tempDB(t), "config", "validate", "-f", path)
	assert.ErrorContains(t, err, "validation failed")

	// a broken config blocks other commands
	_, err = execute(t, tempDB(t), "--config", path, "progress")
	assert.Error(t, err)
}

func TestConfigDefaultsFeedPlan(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  balance: 20000\n  risk_percent: 1\n"), 0644))

	out, err := execute(t, tempDB(t), "--config", path,
		"plan", "--entry", "50", "--stop", "49", "--tp1", "52")
	require.NoError(t, err)
	assert.Contains(t, out, "$200.00") // 1% of 20000
	assert.Contains(t, out, "200")     // units
}

func TestEnvSelectsDB(t *testing.T) {
	db := tempDB(t)
	t.Setenv("TRADEPLAN_DB", db)

	cmd := newRootCmd(testApp())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-file", "", "--log-level", "error"}, append(planArgs, "--save")...))
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, db)
}

func TestEnvFileLoaded(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-env.db")
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRADEPLAN_DB="+db+"\n"), 0644))
	t.Setenv("TRADEPLAN_DB", "")
	require.NoError(t, os.Unsetenv("TRADEPLAN_DB"))

	cmd := newRootCmd(testApp())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--env-file", envFile, "--log-level", "error"}, append(planArgs, "--save")...))
	require.NoError(t, cmd.Execute())
	t.Cleanup(func() { _ = os.Unsetenv("TRADEPLAN_DB") })

	assert.FileExists(t, db)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, tempDB(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tradeplan version "+Version)
}

func TestTradeReplay(t *testing.T) {
	t.Parallel()

	db := tempDB(t)
	_, err := execute(t, db, append(planArgs, "--save")...)
	require.NoError(t, err)

	j, err := journal.NewSQLite(db)
	require.NoError(t, err)
	plans, err := j.ListPlans(true)
	require.NoError(t, err)
	require.NoError(t, j.Close())
	require.Len(t, plans, 1)
	id := plans[0].ID

	prices := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(prices, []byte(`time,price
2024-03-13T15:05:00Z,52500
2024-03-13T15:10:00Z,55500
2024-03-13T15:15:00Z,53000
`), 0644))

	out, err := execute(t, db, "trade", "replay", id, prices, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "(dry run): stopped")

	out, err = execute(t, db, "trade", "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = execute(t, db, "trade", "replay", id, prices)
	require.NoError(t, err)
	assert.Contains(t, out, "tp1 hit at 52000")
	assert.Contains(t, out, "trailing stop activated")
	assert.Contains(t, out, "stop hit")
	assert.Contains(t, out, "3 prices replayed")

	out, err = execute(t, db, "trade", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, id)

	_, err = execute(t, db, "trade", "replay", id, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestJournalEquity(t *testing.T) {
	t.Parallel()

	db := tempDB(t)
	out, err := execute(t, db, "journal", "equity")
	require.NoError(t, err)
	assert.Contains(t, out, "(none)")

	_, err = execute(t, db, append(logArgs, "--outcome", "tp3")...)
	require.NoError(t, err)

	out, err = execute(t, db, "journal", "equity", "--from", "2024-03-13", "--to", "2024-03-13")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-13 15:00")
	assert.Contains(t, out, "$100850.00")

	out, err = execute(t, db, "journal", "equity", "--from", "2024-03-14")
	require.NoError(t, err)
	assert.NotContains(t, out, "$100850.00")

	_, err = execute(t, db, "journal", "equity", "--from", "14/03/2024")
	assert.ErrorContains(t, err, "--from")
}

func TestJournalExportRemoteNeedsDSN(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "trades.csv")
	_, err := execute(t, tempDB(t), "journal", "export", "--remote", "-o", out)
	assert.ErrorContains(t, err, "journal.dsn")
	assert.NoFileExists(t, out)
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"trade-journal/internal/models"
	"trade-journal/internal/trades"
)

// tradeRow is the CSV shape shared by export and import. Optional values
// are strings so blanks survive a round trip.
type tradeRow struct {
	ID            string  `csv:"id"`
	Symbol        string  `csv:"symbol"`
	Side          string  `csv:"side"`
	Status        string  `csv:"status"`
	EntryPrice    float64 `csv:"entry_price"`
	ExitPrice     string  `csv:"exit_price"`
	StopLoss      float64 `csv:"stop_loss"`
	Target        string  `csv:"target"`
	Quantity      float64 `csv:"quantity"`
	Fees          float64 `csv:"fees"`
	PnL           float64 `csv:"pnl"`
	PnLPercentage float64 `csv:"pnl_pct"`
	EntryDate     string  `csv:"entry_date"`
	ExitDate      string  `csv:"exit_date"`
	StrategyID    string  `csv:"strategy_id"`
	Tags          string  `csv:"tags"`
	Emotion       string  `csv:"emotion"`
	Notes         string  `csv:"notes"`
}

const tagSeparator = ";"

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseOptionalFloat(field, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &v, nil
}

func toTradeRow(t models.Trade) tradeRow {
	row := tradeRow{
		ID:            t.ID,
		Symbol:        t.Symbol,
		Side:          string(t.Side),
		Status:        string(t.Status),
		EntryPrice:    t.EntryPrice,
		ExitPrice:     formatOptionalFloat(t.ExitPrice),
		StopLoss:      t.StopLoss,
		Target:        formatOptionalFloat(t.Target),
		Quantity:      t.Quantity,
		Fees:          t.Fees,
		PnL:           t.PnL,
		PnLPercentage: t.PnLPercentage,
		EntryDate:     t.EntryDate.UTC().Format(time.RFC3339),
		StrategyID:    t.StrategyID,
		Tags:          strings.Join(t.Tags, tagSeparator),
		Emotion:       string(t.Emotion),
		Notes:         t.Notes,
	}
	if t.ExitDate != nil {
		row.ExitDate = t.ExitDate.UTC().Format(time.RFC3339)
	}
	return row
}

// input converts an imported row. Derived columns (id, status, pnl) are ignored.
func (r tradeRow) input(loc *time.Location) (trades.Input, error) {
	in := trades.Input{
		Symbol:     r.Symbol,
		Side:       models.TradeSide(strings.ToUpper(strings.TrimSpace(r.Side))),
		EntryPrice: r.EntryPrice,
		StopLoss:   r.StopLoss,
		Quantity:   r.Quantity,
		Fees:       r.Fees,
		StrategyID: strings.TrimSpace(r.StrategyID),
		Notes:      r.Notes,
		Emotion:    models.Emotion(strings.TrimSpace(r.Emotion)),
	}

	var err error
	if in.ExitPrice, err = parseOptionalFloat("exit_price", r.ExitPrice); err != nil {
		return in, err
	}
	if in.Target, err = parseOptionalFloat("target", r.Target); err != nil {
		return in, err
	}
	if r.EntryDate != "" {
		if in.EntryDate, err = parseWhen(r.EntryDate, loc, false); err != nil {
			return in, fmt.Errorf("entry_date: %w", err)
		}
	}
	if r.ExitDate != "" {
		exit, err := parseWhen(r.ExitDate, loc, false)
		if err != nil {
			return in, fmt.Errorf("exit_date: %w", err)
		}
		in.ExitDate = &exit
	}
	if r.Tags != "" {
		in.Tags = strings.Split(r.Tags, tagSeparator)
	}
	return in, nil
}

func writeTradesCSV(w io.Writer, list []models.Trade) error {
	rows := make([]*tradeRow, 0, len(list))
	for _, t := range list {
		row := toTradeRow(t)
		rows = append(rows, &row)
	}
	return gocsv.Marshal(&rows, w)
}

func readTradesCSV(r io.Reader) ([]*tradeRow, error) {
	var rows []*tradeRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading trades CSV: %w", err)
	}
	return rows, nil
}

type equityRow struct {
	Date  string  `csv:"date"`
	Value float64 `csv:"cumulative_pnl"`
}

func writeEquityCSV(w io.Writer, points []models.EquityPoint) error {
	rows := make([]*equityRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, &equityRow{Date: p.Date.UTC().Format(time.RFC3339), Value: p.Value})
	}
	return gocsv.Marshal(&rows, w)
}

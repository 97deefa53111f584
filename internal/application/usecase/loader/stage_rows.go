package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

// MaxStagingBatchSize caps the rows accepted in one intake request.
const MaxStagingBatchSize = 5000

var stagingDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02 Jan 2006",
	time.RFC3339,
}

// StageRowInput is one row as delivered by an upstream parser.
type StageRowInput struct {
	RawTxnID    string
	Date        string
	Amount      string
	Direction   string // debit, credit, or empty to infer from the amount sign
	Currency    string
	Merchant    string
	Description string
	AccountRef  string
}

// StageRowsInput represents the input for staging intake.
type StageRowsInput struct {
	UserID uuid.UUID
	Rows   []StageRowInput
}

// StageRowsOutput represents the output of staging intake.
type StageRowsOutput struct {
	BatchID  uuid.UUID
	Accepted int
	Rejected int
}

// StageRowsUseCase stores parser output as staging rows. Rows that fail to parse are kept
// with parsed_ok=false so the loader never sees them.
type StageRowsUseCase struct {
	stagingRepo adapter.StagingRepository
}

// NewStageRowsUseCase creates a new StageRowsUseCase instance.
func NewStageRowsUseCase(stagingRepo adapter.StagingRepository) *StageRowsUseCase {
	return &StageRowsUseCase{stagingRepo: stagingRepo}
}

// Execute validates and stores the rows as one batch.
func (uc *StageRowsUseCase) Execute(ctx context.Context, input StageRowsInput) (*StageRowsOutput, error) {
	if len(input.Rows) == 0 {
		return nil, domainerror.NewLoaderError(domainerror.ErrCodeEmptyStagingBatch, "no rows provided", domainerror.ErrEmptyStagingBatch)
	}
	if len(input.Rows) > MaxStagingBatchSize {
		return nil, domainerror.NewLoaderError(
			domainerror.ErrCodeInvalidStagingRow,
			fmt.Sprintf("batch exceeds %d rows", MaxStagingBatchSize),
			domainerror.ErrInvalidStagingRow,
		)
	}

	output := &StageRowsOutput{BatchID: uuid.New()}
	rows := make([]*entity.StagingRow, 0, len(input.Rows))
	for _, in := range input.Rows {
		row := parseStagingRow(output.BatchID, input.UserID, in)
		if row.ParsedOK {
			output.Accepted++
		} else {
			output.Rejected++
		}
		rows = append(rows, row)
	}

	if err := uc.stagingRepo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to store staging batch: %w", err)
	}

	slog.Info("Staging batch stored",
		"user_id", input.UserID,
		"batch_id", output.BatchID,
		"accepted", output.Accepted,
		"rejected", output.Rejected,
	)
	return output, nil
}

func parseStagingRow(batchID, userID uuid.UUID, in StageRowInput) *entity.StagingRow {
	row := entity.NewStagingRow(batchID, userID, time.Time{}, decimal.Zero, "", strings.TrimSpace(in.Merchant), strings.TrimSpace(in.Description))
	row.RawTxnID = strings.TrimSpace(in.RawTxnID)
	row.AccountRef = strings.TrimSpace(in.AccountRef)
	if c := strings.ToUpper(strings.TrimSpace(in.Currency)); c != "" {
		row.Currency = c
	}

	reject := func(reason string) *entity.StagingRow {
		row.ParsedOK = false
		row.ParseError = reason
		return row
	}

	date, ok := parseStagingDate(in.Date)
	if !ok {
		return reject(fmt.Sprintf("unparseable date %q", in.Date))
	}
	row.TxnDate = date

	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(in.Amount), ",", ""))
	if err != nil {
		return reject(fmt.Sprintf("unparseable amount %q", in.Amount))
	}
	row.Amount = amount

	switch direction := entity.Direction(strings.ToLower(strings.TrimSpace(in.Direction))); {
	case direction.IsValid():
		row.Direction = direction
	case direction == "" && amount.IsNegative():
		row.Direction = entity.DirectionDebit
	case direction == "" && amount.IsPositive():
		row.Direction = entity.DirectionCredit
	default:
		return reject(fmt.Sprintf("unknown direction %q", in.Direction))
	}
	row.Amount = amount.Abs()

	if row.DescriptionRaw == "" && row.MerchantRaw == "" {
		return reject("description and merchant are both empty")
	}
	return row
}

func parseStagingDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range stagingDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/categorizer/internal/domain/entity"
	domainerror "github.com/finance-tracker/categorizer/internal/domain/error"
)

func TestStageRows(t *testing.T) {
	userID := uuid.New()

	t.Run("keeps unparseable rows flagged", func(t *testing.T) {
		repo := &fakeStagingRepo{}
		uc := NewStageRowsUseCase(repo)

		out, err := uc.Execute(context.Background(), StageRowsInput{
			UserID: userID,
			Rows: []StageRowInput{
				{Date: "2024-03-01", Amount: "1,250.50", Direction: "Debit", Description: "POS AMAZON"},
				{Date: "31/02/2024", Amount: "10", Direction: "debit", Description: "BAD DATE"},
				{Date: "2024-03-02", Amount: "ten", Direction: "debit", Description: "BAD AMOUNT"},
				{Date: "2024-03-02", Amount: "10", Direction: "sideways", Description: "BAD DIRECTION"},
				{Date: "2024-03-02", Amount: "10", Direction: "debit"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, out.Accepted)
		assert.Equal(t, 4, out.Rejected)
		require.Len(t, repo.rows, 5)

		ok := repo.rows[0]
		assert.True(t, ok.ParsedOK)
		assert.Equal(t, out.BatchID, ok.BatchID)
		assert.Equal(t, "1250.5", ok.Amount.String())
		assert.Equal(t, entity.DirectionDebit, ok.Direction)
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), ok.TxnDate)
		assert.Equal(t, entity.DefaultCurrency, ok.Currency)

		for _, row := range repo.rows[1:] {
			assert.False(t, row.ParsedOK)
			assert.NotEmpty(t, row.ParseError)
		}
	})

	t.Run("infers direction from the amount sign", func(t *testing.T) {
		repo := &fakeStagingRepo{}
		uc := NewStageRowsUseCase(repo)

		_, err := uc.Execute(context.Background(), StageRowsInput{
			UserID: userID,
			Rows: []StageRowInput{
				{Date: "01/03/2024", Amount: "-500", Description: "ATM WDL"},
				{Date: "01 Mar 2024", Amount: "75000", Description: "SALARY ACME PVT LTD", Currency: "usd"},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, entity.DirectionDebit, repo.rows[0].Direction)
		assert.Equal(t, "500", repo.rows[0].Amount.String())
		assert.Equal(t, entity.DirectionCredit, repo.rows[1].Direction)
		assert.Equal(t, "USD", repo.rows[1].Currency)
	})

	t.Run("staged rows are invisible to the loader until parsed", func(t *testing.T) {
		repo := &fakeStagingRepo{}
		uc := NewStageRowsUseCase(repo)

		_, err := uc.Execute(context.Background(), StageRowsInput{
			UserID: userID,
			Rows: []StageRowInput{
				{Date: "2024-03-01", Amount: "10", Direction: "debit", Description: "OK"},
				{Date: "nope", Amount: "10", Direction: "debit", Description: "BAD"},
			},
		})
		require.NoError(t, err)

		pending, err := repo.FindPendingByUser(context.Background(), userID)
		require.NoError(t, err)
		assert.Len(t, pending, 1)

		status, err := NewLoadStatusUseCase(repo).Execute(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), status.StagingTotal)
		assert.Equal(t, int64(1), status.StagingPending)
		assert.Equal(t, int64(1), status.StagingInvalid)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		uc := NewStageRowsUseCase(&fakeStagingRepo{})

		_, err := uc.Execute(context.Background(), StageRowsInput{UserID: userID})

		assert.ErrorIs(t, err, domainerror.ErrEmptyStagingBatch)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		uc := NewStageRowsUseCase(&fakeStagingRepo{createErr: errors.New("disk full")})

		_, err := uc.Execute(context.Background(), StageRowsInput{
			UserID: userID,
			Rows:   []StageRowInput{{Date: "2024-03-01", Amount: "1", Direction: "credit", Description: "X"}},
		})

		assert.Error(t, err)
	})
}

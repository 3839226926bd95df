package maintenance

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRun_FullPassCreatesEverything(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ok := sqlmock.NewResult(0, 0)
	mock.ExpectExec(regexp.QuoteMeta(createDailyView)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createMonthlyView)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(probeMatviewSupport)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createDailyMatview)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createMonthlyMatview)).WillReturnResult(ok)
	mock.ExpectExec(`ALTER TABLE analytics\.fact_sales ALTER DISTKEY sale_date`).WillReturnResult(ok)
	mock.ExpectExec(`ALTER TABLE analytics\.fact_sales ALTER SORTKEY`).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createRefreshProcedure)).WillReturnResult(ok)

	NewMaintainer(db).Run(context.Background(), false)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RefreshRefreshesMatviewsInline(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ok := sqlmock.NewResult(0, 0)
	mock.ExpectExec(regexp.QuoteMeta(createDailyView)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createMonthlyView)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(probeMatviewSupport)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createDailyMatview)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createMonthlyMatview)).WillReturnResult(ok)
	mock.ExpectExec(`REFRESH MATERIALIZED VIEW analytics\.mv_sales_by_day`).WillReturnResult(ok)
	mock.ExpectExec(`REFRESH MATERIALIZED VIEW analytics\.mv_monthly_sales`).WillReturnResult(ok)
	mock.ExpectExec(`ALTER TABLE analytics\.fact_sales ALTER DISTKEY sale_date`).WillReturnResult(ok)
	mock.ExpectExec(`ALTER TABLE analytics\.fact_sales ALTER SORTKEY`).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createRefreshProcedure)).WillReturnResult(ok)

	NewMaintainer(db).Run(context.Background(), true)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_MatviewProbeFailureSkipsMatviewsOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ok := sqlmock.NewResult(0, 0)
	mock.ExpectExec(regexp.QuoteMeta(createDailyView)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createMonthlyView)).WillReturnResult(ok)
	// No pg_matviews on this engine: the step warns and the pass moves on
	// to layout and the refresh procedure.
	mock.ExpectExec(regexp.QuoteMeta(probeMatviewSupport)).
		WillReturnError(errors.New(`relation "pg_matviews" does not exist`))
	mock.ExpectExec(`ALTER TABLE analytics\.fact_sales ALTER DISTKEY sale_date`).WillReturnResult(ok)
	mock.ExpectExec(`ALTER TABLE analytics\.fact_sales ALTER SORTKEY`).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createRefreshProcedure)).WillReturnResult(ok)

	NewMaintainer(db).Run(context.Background(), false)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_StepFailureDoesNotAbortPass(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ok := sqlmock.NewResult(0, 0)
	mock.ExpectExec(regexp.QuoteMeta(createDailyView)).
		WillReturnError(errors.New("permission denied for schema analytics"))
	mock.ExpectExec(regexp.QuoteMeta(createMonthlyView)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(probeMatviewSupport)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createDailyMatview)).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createMonthlyMatview)).WillReturnResult(ok)
	mock.ExpectExec(`ALTER TABLE analytics\.fact_sales ALTER DISTKEY sale_date`).WillReturnResult(ok)
	mock.ExpectExec(`ALTER TABLE analytics\.fact_sales ALTER SORTKEY`).WillReturnResult(ok)
	mock.ExpectExec(regexp.QuoteMeta(createRefreshProcedure)).WillReturnResult(ok)

	NewMaintainer(db).Run(context.Background(), false)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_CallsInstalledProcedure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CALL analytics.refresh_sales_views()`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	NewMaintainer(db).Refresh(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_FailureIsWarningOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CALL analytics.refresh_sales_views()`)).
		WillReturnError(errors.New("procedure does not exist"))

	NewMaintainer(db).Refresh(context.Background())
	require.NoError(t, mock.ExpectationsWereMet())
}

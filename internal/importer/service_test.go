package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rinori/backoffice/internal/masterdata/products"
	"github.com/rinori/backoffice/internal/shared"
)

type fakeRepo struct {
	products        []products.Product
	histories       map[int64]History
	records         []SalesRecord
	candidates      map[string]string // "code|sku" -> sample name
	nextID          int64
	failInsert      bool
	missingChannels map[int64]bool
}

func newFakeRepo(master ...products.Product) *fakeRepo {
	return &fakeRepo{
		products:   master,
		histories:  map[int64]History{},
		candidates: map[string]string{},
	}
}

func (f *fakeRepo) ImportTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	records := append([]SalesRecord(nil), f.records...)
	histories := map[int64]History{}
	for id, h := range f.histories {
		histories[id] = h
	}
	candidates := map[string]string{}
	for k, v := range f.candidates {
		candidates[k] = v
	}
	if err := fn(ctx, (*fakeTx)(f)); err != nil {
		// Roll back.
		f.records = records
		f.histories = histories
		f.candidates = candidates
		return err
	}
	return nil
}

func (f *fakeRepo) LoadProducts(context.Context) ([]products.Product, error) {
	return f.products, nil
}

func (f *fakeRepo) ChannelExists(_ context.Context, id int64) (bool, error) {
	return !f.missingChannels[id], nil
}

func (f *fakeRepo) ListHistories(_ context.Context, filter HistoryFilter) ([]History, error) {
	var out []History
	for _, h := range f.histories {
		if filter.TargetYM != "" && h.TargetYM != filter.TargetYM {
			continue
		}
		if filter.SalesChannelID != 0 && h.SalesChannelID != filter.SalesChannelID {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (f *fakeRepo) GetHistory(_ context.Context, id int64) (*History, error) {
	h, ok := f.histories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &h, nil
}

func (f *fakeRepo) DeleteHistory(_ context.Context, id int64) error {
	if _, ok := f.histories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.histories, id)
	kept := f.records[:0]
	for _, rec := range f.records {
		if rec.ImportHistoryID != id {
			kept = append(kept, rec)
		}
	}
	f.records = kept
	return nil
}

func (f *fakeRepo) ReassignHistoryChannel(_ context.Context, id, channelID int64) error {
	h, ok := f.histories[id]
	if !ok {
		return shared.ErrNotFound
	}
	h.SalesChannelID = channelID
	f.histories[id] = h
	return nil
}

type fakeTx fakeRepo

func (t *fakeTx) CreateHistory(_ context.Context, h History) (int64, error) {
	t.nextID++
	h.ID = t.nextID
	h.ImportedAt = time.Now().UTC()
	t.histories[h.ID] = h
	return h.ID, nil
}

func (t *fakeTx) FinalizeHistory(_ context.Context, id int64, recordCount int) error {
	h := t.histories[id]
	h.RecordCount = recordCount
	t.histories[id] = h
	return nil
}

func (t *fakeTx) DeleteSalesRecords(_ context.Context, targetYM string, channelID int64) (int64, error) {
	kept := t.records[:0]
	var deleted int64
	for _, rec := range t.records {
		if rec.TargetYM == targetYM && rec.SalesChannelID == channelID {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	t.records = kept
	return deleted, nil
}

func (t *fakeTx) InsertSalesRecord(_ context.Context, rec SalesRecord) error {
	if t.failInsert {
		return fmt.Errorf("boom")
	}
	t.records = append(t.records, rec)
	return nil
}

func (t *fakeTx) UpsertCandidate(_ context.Context, code, sku, name string) (bool, error) {
	key := code + "|" + sku
	_, exists := t.candidates[key]
	t.candidates[key] = name
	return !exists, nil
}

type fixedRates struct {
	rate float64
	err  error
}

func (f fixedRates) RateFor(context.Context, string) (float64, error) {
	return f.rate, f.err
}

func testLocker(t *testing.T) (Locker, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redislock.New(client), client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, repo Repository, rates TaxRateSource) *Service {
	t.Helper()
	locker, _ := testLocker(t)
	return NewService(discardLogger(), repo, rates, locker, nil, time.Minute)
}

const testCSV = "商品コード,商品名,受注数,小計\n" +
	"RINO-ABC123-M,Tシャツ M,10,55000\n" + // managed
	"RINO-HIDE01,非管理品,2,2200\n" + // unmanaged
	"RINO-NEW99-S,未登録品 S,1,1100\n" + // candidate
	"RINO-ABC123-X,ゼロ行,0,0\n" // dropped

func managedProduct() products.Product {
	return products.Product{Code: "RINO-ABC123", Name: "Tシャツ", CostExclTax: 500, Type: products.TypeOwnBrand, Status: products.StatusManaged}
}

func unmanagedProduct() products.Product {
	return products.Product{Code: "RINO-HIDE01", Name: "非管理品", Status: products.StatusUnmanaged}
}

func TestServiceImport(t *testing.T) {
	repo := newFakeRepo(managedProduct(), unmanagedProduct())
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	result, err := svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 1,
		Mode:           ModeOverwrite,
		Comment:        "6月分 自社EC",
		FileName:       "sales.csv",
		File:           strings.NewReader(testCSV),
		ImportedBy:     7,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.SkippedUnmanaged)
	assert.Equal(t, 1, result.SkippedEmpty)
	assert.Equal(t, 1, result.NewCandidates)
	assert.Equal(t, []string{"RINO-NEW99"}, result.UnmatchedCodes)
	assert.Empty(t, result.Message, "rows were inserted, no advisory message")

	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, "RINO-ABC123", rec.ProductCode)
	assert.Equal(t, "RINO-ABC123-M", rec.SKU)
	assert.Equal(t, 50000.0, rec.SalesAmountExcl)
	assert.Equal(t, 5000.0, rec.CostAmount)
	assert.Equal(t, 45000.0, rec.GrossProfitAmount)
	assert.Equal(t, int64(7), rec.CreatedBy)
	assert.False(t, rec.SaleDate.IsZero())

	h := repo.histories[result.HistoryID]
	assert.Equal(t, 1, h.RecordCount)
	assert.Equal(t, "6月分 自社EC", h.Comment)
	assert.Equal(t, int64(7), h.ImportedBy)
	assert.Equal(t, DataSourceNE, h.DataSource)
	assert.Contains(t, repo.candidates, "RINO-NEW99|RINO-NEW99-S")
}

func TestServiceImportOverwriteReplacesPeriod(t *testing.T) {
	repo := newFakeRepo(managedProduct())
	repo.records = []SalesRecord{
		{ImportHistoryID: 99, TargetYM: "2025-06", SalesChannelID: 1, ProductCode: "RINO-OLD"},
		{ImportHistoryID: 98, TargetYM: "2025-06", SalesChannelID: 2, ProductCode: "RINO-KEEP"},
	}
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	_, err := svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 1,
		Mode:           ModeOverwrite,
		FileName:       "sales.csv",
		File:           strings.NewReader(testCSV),
	})
	require.NoError(t, err)

	codes := map[string]bool{}
	for _, rec := range repo.records {
		codes[rec.ProductCode] = true
	}
	assert.False(t, codes["RINO-OLD"], "same period and channel must be replaced")
	assert.True(t, codes["RINO-KEEP"], "other channels must survive")
	assert.True(t, codes["RINO-ABC123"])
}

func TestServiceImportAppendKeepsExisting(t *testing.T) {
	repo := newFakeRepo(managedProduct())
	repo.records = []SalesRecord{
		{ImportHistoryID: 99, TargetYM: "2025-06", SalesChannelID: 1, ProductCode: "RINO-OLD"},
	}
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	_, err := svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 1,
		Mode:           ModeAppend,
		FileName:       "sales.csv",
		File:           strings.NewReader(testCSV),
	})
	require.NoError(t, err)
	assert.Len(t, repo.records, 2)
}

func TestServiceImportMissingTaxRateWritesNothing(t *testing.T) {
	repo := newFakeRepo(managedProduct())
	svc := newTestService(t, repo, fixedRates{err: shared.ErrNotFound})

	_, err := svc.Import(context.Background(), Params{
		TargetYM:       "2018-01",
		SalesChannelID: 1,
		Mode:           ModeOverwrite,
		FileName:       "sales.csv",
		File:           strings.NewReader(testCSV),
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.histories)
	assert.Empty(t, repo.records)
}

func TestServiceImportRollsBackOnFailure(t *testing.T) {
	repo := newFakeRepo(managedProduct())
	repo.failInsert = true
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	_, err := svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 1,
		Mode:           ModeOverwrite,
		FileName:       "sales.csv",
		File:           strings.NewReader(testCSV),
	})
	require.Error(t, err)
	assert.Empty(t, repo.histories, "failed run must not leave a history")
	assert.Empty(t, repo.records)
}

func TestServiceImportCandidateDedup(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	csv := "商品コード,商品名,受注数,小計\n" +
		"RINO-NEW99-S,未登録 S,1,1100\n" +
		"RINO-NEW99-S,未登録 S 再掲,1,1100\n" +
		"RINO-NEW99-M,未登録 M,1,1100\n"

	result, err := svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 1,
		Mode:           ModeOverwrite,
		FileName:       "sales.csv",
		File:           strings.NewReader(csv),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewCandidates, "one per distinct (code, sku) pair")
	assert.Equal(t, "未登録 S 再掲", repo.candidates["RINO-NEW99|RINO-NEW99-S"], "re-encounter refreshes the name")
	assert.Equal(t, []string{"RINO-NEW99"}, result.UnmatchedCodes)
	assert.NotEmpty(t, result.Message, "nothing inserted and candidates found")
}

func TestServiceImportRejectsInvalidParams(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), fixedRates{rate: 0.10})

	_, err := svc.Import(context.Background(), Params{TargetYM: "2025/06", SalesChannelID: 1, Mode: ModeOverwrite, File: strings.NewReader(testCSV)})
	assert.ErrorIs(t, err, shared.ErrInvalidPeriod)

	// A missing or unknown mode is rejected, never defaulted to overwrite.
	_, err = svc.Import(context.Background(), Params{TargetYM: "2025-06", SalesChannelID: 1, File: strings.NewReader(testCSV)})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = svc.Import(context.Background(), Params{TargetYM: "2025-06", SalesChannelID: 1, Mode: "merge", File: strings.NewReader(testCSV)})
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = svc.Import(context.Background(), Params{TargetYM: "2025-06", SalesChannelID: 0, Mode: ModeOverwrite, File: strings.NewReader(testCSV)})
	assert.Error(t, err)

	_, err = svc.Import(context.Background(), Params{TargetYM: "2025-06", SalesChannelID: 1, Mode: ModeOverwrite, DataSource: "rakuten", File: strings.NewReader(testCSV)})
	assert.Error(t, err)
}

func TestServiceImportUnknownChannel(t *testing.T) {
	repo := newFakeRepo(managedProduct())
	repo.missingChannels = map[int64]bool{9: true}
	svc := newTestService(t, repo, fixedRates{rate: 0.10})

	_, err := svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 9,
		Mode:           ModeOverwrite,
		FileName:       "sales.csv",
		File:           strings.NewReader(testCSV),
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.histories)
	assert.Empty(t, repo.records)
}

func TestServiceImportLockConflict(t *testing.T) {
	locker, _ := testLocker(t)
	repo := newFakeRepo(managedProduct())
	svc := NewService(discardLogger(), repo, fixedRates{rate: 0.10}, locker, nil, time.Minute)

	held, err := locker.Obtain(context.Background(), shared.ImportLockKey("2025-06", 1), time.Minute, nil)
	require.NoError(t, err)
	defer held.Release(context.Background())

	_, err = svc.Import(context.Background(), Params{
		TargetYM:       "2025-06",
		SalesChannelID: 1,
		Mode:           ModeOverwrite,
		FileName:       "sales.csv",
		File:           strings.NewReader(testCSV),
	})
	assert.ErrorIs(t, err, ErrImportInProgress)
}

package receipts

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ariefcatur/electroshop-orders/internal/orders"
	"github.com/ariefcatur/electroshop-orders/internal/redisx"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReadModel struct {
	receipts map[int]orders.Receipt
	calls    atomic.Int32
	gate     chan struct{}
}

func (f *fakeReadModel) LoadReceipt(ctx context.Context, id int) (orders.Receipt, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	r, ok := f.receipts[id]
	if !ok {
		return orders.Receipt{}, orders.NotFound("pedido", id)
	}
	return r, nil
}

func (f *fakeReadModel) ListProducts(ctx context.Context) ([]orders.ProductStock, error) {
	return nil, nil
}

func TestLookupServesFromCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	want := sampleReceipt(5)
	b, _ := json.Marshal(want)
	mock.ExpectGet("order_receipt:5").SetVal(string(b))
	store := &fakeReadModel{}

	got, err := (&Lookup{Cache: NewCache(db), Store: store}).Receipt(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Zero(t, store.calls.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupMissFillsCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	want := sampleReceipt(6)
	b, _ := json.Marshal(want)
	mock.ExpectGet("order_receipt:6").RedisNil()
	mock.ExpectSet("order_receipt:6", b, redisx.TTLReceipt).SetVal("OK")
	store := &fakeReadModel{receipts: map[int]orders.Receipt{6: want}}

	got, err := (&Lookup{Cache: NewCache(db), Store: store}).Receipt(context.Background(), 6)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.EqualValues(t, 1, store.calls.Load())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupCacheDownFallsBackToStore(t *testing.T) {
	db, mock := redismock.NewClientMock()
	want := sampleReceipt(10)
	b, _ := json.Marshal(want)
	mock.ExpectGet("order_receipt:10").SetErr(errors.New("i/o timeout"))
	mock.ExpectSet("order_receipt:10", b, redisx.TTLReceipt).SetErr(errors.New("i/o timeout"))
	store := &fakeReadModel{receipts: map[int]orders.Receipt{10: want}}

	got, err := (&Lookup{Cache: NewCache(db), Store: store}).Receipt(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLookupNotFound(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectGet("order_receipt:99").RedisNil()

	_, err := (&Lookup{Cache: NewCache(db), Store: &fakeReadModel{}}).Receipt(context.Background(), 99)

	assert.ErrorIs(t, err, orders.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupWithoutCache(t *testing.T) {
	store := &fakeReadModel{receipts: map[int]orders.Receipt{1: sampleReceipt(1)}}

	got, err := (&Lookup{Store: store}).Receipt(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, got.OrderID)
}

func TestLookupCollapsesConcurrentMisses(t *testing.T) {
	store := &fakeReadModel{
		receipts: map[int]orders.Receipt{2: sampleReceipt(2)},
		gate:     make(chan struct{}),
	}
	l := &Lookup{Store: store}

	const n = 8
	var started, wg sync.WaitGroup
	started.Add(n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			started.Done()
			r, err := l.Receipt(context.Background(), 2)
			assert.NoError(t, err)
			assert.Equal(t, 2, r.OrderID)
		}()
	}
	started.Wait()
	// let the goroutines pile up behind the first store call
	for store.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	close(store.gate)
	wg.Wait()

	assert.LessOrEqual(t, store.calls.Load(), int32(n))
	assert.GreaterOrEqual(t, store.calls.Load(), int32(1))
}

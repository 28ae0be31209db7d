package performance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

// memStore хранит заказы и снимки в памяти для тестов пакета.
type memStore struct {
	mu        sync.Mutex
	orders    []model.PurchaseOrder
	snapshots []model.PerformanceSnapshot

	ordersErr   error
	snapshotErr error

	ordersCalls int
}

var errNotFound = errors.New("not found")

func (s *memStore) FindOrdersByVendor(ctx context.Context, vendorID int64) ([]model.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ordersCalls++
	if s.ordersErr != nil {
		return nil, s.ordersErr
	}

	var res []model.PurchaseOrder
	for _, o := range s.orders {
		if o.VendorID == vendorID {
			res = append(res, o)
		}
	}
	return res, nil
}

func (s *memStore) FindOrdersByVendorAndStatus(ctx context.Context, vendorID int64, status model.OrderStatus) ([]model.PurchaseOrder, error) {
	all, err := s.FindOrdersByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	var res []model.PurchaseOrder
	for _, o := range all {
		if o.Status == status {
			res = append(res, o)
		}
	}
	return res, nil
}

func (s *memStore) InsertSnapshot(ctx context.Context, snap model.PerformanceSnapshot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshotErr != nil {
		return 0, s.snapshotErr
	}
	snap.ID = int64(len(s.snapshots) + 1)
	s.snapshots = append(s.snapshots, snap)
	return snap.ID, nil
}

func (s *memStore) LatestSnapshot(ctx context.Context, vendorID int64) (*model.PerformanceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var own []model.PerformanceSnapshot
	for _, snap := range s.snapshots {
		if snap.VendorID == vendorID {
			own = append(own, snap)
		}
	}
	if len(own) == 0 {
		return nil, errNotFound
	}

	sort.SliceStable(own, func(i, j int) bool {
		if !own[i].RecordedAt.Equal(own[j].RecordedAt) {
			return own[i].RecordedAt.After(own[j].RecordedAt)
		}
		return own[i].ID > own[j].ID
	})
	latest := own[0]
	return &latest, nil
}

func (s *memStore) count(vendorID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, snap := range s.snapshots {
		if snap.VendorID == vendorID {
			n++
		}
	}
	return n
}

var baseTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func order(vendorID int64, status model.OrderStatus) model.PurchaseOrder {
	return model.PurchaseOrder{
		VendorID:     vendorID,
		Status:       status,
		IssueDate:    baseTime.Add(-48 * time.Hour),
		DeliveryDate: baseTime.Add(-24 * time.Hour),
	}
}

func rated(o model.PurchaseOrder, rating float64) model.PurchaseOrder {
	o.QualityRating = &rating
	return o
}

func acknowledged(o model.PurchaseOrder, after time.Duration) model.PurchaseOrder {
	ack := o.IssueDate.Add(after)
	o.AcknowledgmentDate = &ack
	return o
}

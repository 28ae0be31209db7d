// Package service реализует бизнес-логику системы управления поставщиками.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/vendor-management-system/internal/model"
)

// recomputeTimeout ограничивает пересчёт, отвязанный от контекста запроса.
const recomputeTimeout = 30 * time.Second

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	InsertVendor(ctx context.Context, v model.Vendor) (int64, error)
	ListVendors(ctx context.Context) ([]model.Vendor, error)
	GetVendor(ctx context.Context, id int64) (*model.Vendor, error)
	UpdateVendor(ctx context.Context, id int64, upd model.VendorUpdate) (*model.Vendor, error)
	DeleteVendor(ctx context.Context, id int64) error

	InsertOrder(ctx context.Context, o model.PurchaseOrder) (int64, error)
	UpdateOrderFields(ctx context.Context, id int64, upd model.PurchaseOrderUpdate) (bool, int64, error)
	GetOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error)
	ListOrders(ctx context.Context, vendorID *int64) ([]model.PurchaseOrder, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// Trigger описывает пересчёт метрик, вызываемый после успешной записи.
type Trigger interface {
	OnOrderMutated(ctx context.Context, vendorID int64) (model.PerformanceSnapshot, error)
	Seed(ctx context.Context, vendorID int64) (model.PerformanceSnapshot, error)
}

// PerformanceReader описывает чтение последнего снимка метрик.
type PerformanceReader interface {
	Latest(ctx context.Context, vendorID int64) (*model.PerformanceSnapshot, error)
}

// Service содержит бизнес-логику системы управления поставщиками.
type Service struct {
	repo        Repository
	trigger     Trigger
	performance PerformanceReader
	logger      *zap.Logger
}

// NewService создаёт новый сервис.
func NewService(repo Repository, trigger Trigger, performance PerformanceReader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		trigger:     trigger,
		performance: performance,
		logger:      logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// CreateVendor регистрирует поставщика и записывает для него нулевой снимок метрик.
// Ошибка записи снимка не отменяет регистрацию и возвращается в результате отдельно.
func (s *Service) CreateVendor(ctx context.Context, v model.Vendor) (model.VendorCreated, error) {
	id, err := s.repo.InsertVendor(ctx, v)
	if err != nil {
		return model.VendorCreated{}, err
	}

	return model.VendorCreated{
		ID:        id,
		Recompute: s.afterCommit(ctx, id, s.trigger.Seed),
	}, nil
}

// ListVendors возвращает список поставщиков.
func (s *Service) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	return s.repo.ListVendors(ctx)
}

// GetVendor возвращает поставщика по идентификатору.
func (s *Service) GetVendor(ctx context.Context, id int64) (*model.Vendor, error) {
	return s.repo.GetVendor(ctx, id)
}

// UpdateVendor обновляет данные поставщика.
func (s *Service) UpdateVendor(ctx context.Context, id int64, upd model.VendorUpdate) (*model.Vendor, error) {
	return s.repo.UpdateVendor(ctx, id, upd)
}

// DeleteVendor удаляет поставщика.
func (s *Service) DeleteVendor(ctx context.Context, id int64) error {
	return s.repo.DeleteVendor(ctx, id)
}

// CreateOrder сохраняет заказ и пересчитывает метрики его поставщика.
func (s *Service) CreateOrder(ctx context.Context, o model.PurchaseOrder) (model.OrderMutation, error) {
	id, err := s.repo.InsertOrder(ctx, o)
	if err != nil {
		return model.OrderMutation{}, err
	}

	return model.OrderMutation{
		ID:        id,
		Changed:   true,
		Recompute: s.afterCommit(ctx, o.VendorID, s.trigger.OnOrderMutated),
	}, nil
}

// UpdateOrder применяет частичное обновление заказа. Пересчёт выполняется только
// если сохранённые поля изменились, и только для поставщика, которому заказ
// принадлежит после обновления: при смене vendor_id прежний поставщик не пересчитывается.
func (s *Service) UpdateOrder(ctx context.Context, id int64, upd model.PurchaseOrderUpdate) (model.OrderMutation, error) {
	changed, vendorID, err := s.repo.UpdateOrderFields(ctx, id, upd)
	if err != nil {
		return model.OrderMutation{}, err
	}

	res := model.OrderMutation{ID: id, Changed: changed}
	if !changed {
		return res, nil
	}

	if upd.VendorID != nil {
		vendorID = *upd.VendorID
	}
	res.Recompute = s.afterCommit(ctx, vendorID, s.trigger.OnOrderMutated)

	return res, nil
}

// GetOrder возвращает заказ по идентификатору.
func (s *Service) GetOrder(ctx context.Context, id int64) (*model.PurchaseOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders возвращает заказы, опционально отфильтрованные по поставщику.
func (s *Service) ListOrders(ctx context.Context, vendorID *int64) ([]model.PurchaseOrder, error) {
	return s.repo.ListOrders(ctx, vendorID)
}

// DeleteOrder удаляет заказ. Метрики поставщика при этом не пересчитываются.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.DeleteOrder(ctx, id)
}

// GetPerformance возвращает последний снимок метрик поставщика.
func (s *Service) GetPerformance(ctx context.Context, vendorID int64) (*model.PerformanceSnapshot, error) {
	return s.performance.Latest(ctx, vendorID)
}

// afterCommit вызывает триггер после уже зафиксированной записи. Ошибка триггера
// возвращается в результате и не превращается в ошибку самой записи.
// Отмена контекста запроса не прерывает пересчёт: запись уже зафиксирована,
// и снимок должен её отразить.
func (s *Service) afterCommit(ctx context.Context, vendorID int64, fn func(context.Context, int64) (model.PerformanceSnapshot, error)) model.Recompute {
	if ctx.Err() != nil {
		s.logger.Info("request context done after commit, recomputing performance anyway",
			zap.Int64("vendorID", vendorID), zap.Error(ctx.Err()))
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recomputeTimeout)
	defer cancel()

	snapshot, err := fn(ctx, vendorID)
	if err != nil {
		return model.Recompute{Err: err}
	}
	return model.Recompute{Snapshot: &snapshot}
}

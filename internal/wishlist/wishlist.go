package wishlist

import (
	"context"
	"net/http"
	"sync"

	"github.com/anupamy140/final-ecommerce/internal/api"
	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/event"
	"github.com/anupamy140/final-ecommerce/internal/notify"
)

// Service はお気に入り。商品IDをキーにした集合で、カートとは別物。
type Service struct {
	client   *api.Client
	notifier notify.Notifier

	mu    sync.Mutex
	items []model.Product
}

// DI
func NewService(client *api.Client, notifier notify.Notifier) *Service {
	return &Service{client: client, notifier: notifier}
}

// BindBus で認証変化を購読する。
func (s *Service) BindBus(bus *event.Bus) {
	bus.Subscribe(event.TopicUserAuth, "wishlist", func() {
		_ = s.Refresh(context.Background())
	})
}

type toggleRequest struct {
	ProductID int64 `json:"product_id"`
}

// Refresh はサーバーの内容で置き換える。未ログインなら空にする。
func (s *Service) Refresh(ctx context.Context) error {
	if !s.client.IsAuthenticated(ctx) {
		s.mu.Lock()
		s.items = nil
		s.mu.Unlock()
		return nil
	}

	res, err := s.client.Get(ctx, "/wishlist")
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return api.DecodeError(res)
	}

	var body struct {
		Items []model.Product `json:"items"`
	}
	if err := api.DecodeJSON(res, &body); err != nil {
		return err
	}

	s.mu.Lock()
	s.items = body.Items
	s.mu.Unlock()
	return nil
}

// Toggle は入っていなければ追加、入っていれば削除。
func (s *Service) Toggle(ctx context.Context, product model.Product) error {
	if !s.client.IsAuthenticated(ctx) {
		return api.ErrLoginRequired
	}

	path := "/wishlist/add"
	removing := s.Contains(product.ID)
	if removing {
		path = "/wishlist/remove"
	}

	res, err := s.client.Post(ctx, path, toggleRequest{ProductID: product.ID})
	if err != nil {
		s.notifier.Error(err.Error())
		return err
	}
	if res.StatusCode != http.StatusOK {
		err := api.DecodeError(res)
		s.notifier.Error(err.Error())
		return err
	}
	res.Body.Close()

	if err := s.Refresh(ctx); err != nil {
		return err
	}

	if removing {
		s.notifier.Success("Removed from wishlist")
	} else {
		s.notifier.Success("Added to wishlist!")
	}
	return nil
}

func (s *Service) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.items {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// 表示用スナップショット
func (s *Service) Items() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Product, len(s.items))
	copy(out, s.items)
	return out
}

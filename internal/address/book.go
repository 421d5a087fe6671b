package address

import (
	"context"
	"net/http"
	"sync"

	"github.com/anupamy140/final-ecommerce/internal/api"
	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/event"
	"github.com/anupamy140/final-ecommerce/internal/notify"
	"github.com/anupamy140/final-ecommerce/internal/store"
)

// Book は配送先住所のCRUDと、チェックアウト用の選択状態。
// 選択は住所そのものには保存せず、ローカルのstoreにキー1つで持つ。
type Book struct {
	client   *api.Client
	st       store.Store
	notifier notify.Notifier

	mu         sync.Mutex
	addresses  []model.Address
	selectedID string
}

// DI
func NewBook(client *api.Client, st store.Store, notifier notify.Notifier) *Book {
	return &Book{client: client, st: st, notifier: notifier}
}

// BindBus で認証変化を購読する。
func (b *Book) BindBus(bus *event.Bus) {
	bus.Subscribe(event.TopicUserAuth, "address-book", func() {
		_ = b.Refresh(context.Background())
	})
}

// Refresh は一覧を取り直す。
// 選択は保存済みのものが一覧にあればそれ、無ければデフォルト住所、先頭の順。
func (b *Book) Refresh(ctx context.Context) error {
	if !b.client.IsAuthenticated(ctx) {
		b.mu.Lock()
		b.addresses = nil
		b.selectedID = ""
		b.mu.Unlock()
		return nil
	}

	res, err := b.client.Get(ctx, "/users/addresses")
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return api.DecodeError(res)
	}

	var addresses []model.Address
	if err := api.DecodeJSON(res, &addresses); err != nil {
		return err
	}

	//保存済みの選択（無い・読めないときは空）
	stored, err := b.st.Value(ctx, store.KeySelectedAddress)
	if err != nil {
		stored = ""
	}

	b.mu.Lock()
	b.addresses = addresses
	b.selectedID = ""
	if stored != "" {
		for _, a := range addresses {
			if a.ID == stored {
				b.selectedID = stored
				break
			}
		}
	}
	//一覧に無くなった選択は捨ててデフォルトへ戻す
	if b.selectedID == "" {
		for _, a := range addresses {
			if a.IsDefault {
				b.selectedID = a.ID
				break
			}
		}
	}
	if b.selectedID == "" && len(addresses) > 0 {
		b.selectedID = addresses[0].ID
	}
	b.mu.Unlock()
	return nil
}

func (b *Book) Create(ctx context.Context, in model.AddressInput) error {
	res, err := b.client.Post(ctx, "/users/addresses", in)
	if err != nil {
		b.notifier.Error(err.Error())
		return err
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		err := api.DecodeError(res)
		b.notifier.Error(err.Error())
		return err
	}
	res.Body.Close()

	if err := b.Refresh(ctx); err != nil {
		return err
	}
	b.notifier.Success("Address added successfully.")
	return nil
}

func (b *Book) Update(ctx context.Context, id string, in model.AddressInput) error {
	if id == "" {
		return api.ErrValidation
	}

	res, err := b.client.Put(ctx, "/users/addresses/"+id, in)
	if err != nil {
		b.notifier.Error(err.Error())
		return err
	}
	if res.StatusCode != http.StatusOK {
		err := api.DecodeError(res)
		b.notifier.Error(err.Error())
		return err
	}
	res.Body.Close()

	if err := b.Refresh(ctx); err != nil {
		return err
	}
	b.notifier.Success("Address updated successfully.")
	return nil
}

func (b *Book) Delete(ctx context.Context, id string) error {
	if id == "" {
		return api.ErrValidation
	}

	res, err := b.client.Delete(ctx, "/users/addresses/"+id)
	if err != nil {
		b.notifier.Error("Could not delete address.")
		return err
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusNoContent {
		err := api.DecodeError(res)
		b.notifier.Error("Could not delete address.")
		return err
	}
	res.Body.Close()

	if err := b.Refresh(ctx); err != nil {
		return err
	}
	b.notifier.Success("Address deleted successfully.")
	return nil
}

// Select はチェックアウトで使う住所を選ぶ。一覧に無いIDはfalse。
// 選択はstoreに保存して次回起動のRefreshでも引き継ぐ。
func (b *Book) Select(ctx context.Context, id string) bool {
	b.mu.Lock()
	found := false
	for _, a := range b.addresses {
		if a.ID == id {
			b.selectedID = id
			found = true
			break
		}
	}
	b.mu.Unlock()

	if !found {
		return false
	}
	if err := b.st.SetValue(ctx, store.KeySelectedAddress, id); err != nil {
		b.notifier.Error("Could not save address selection.")
	}
	return true
}

func (b *Book) SelectedID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectedID
}

// 表示用スナップショット
func (b *Book) Addresses() []model.Address {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Address, len(b.addresses))
	copy(out, b.addresses)
	return out
}

package cart

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/anupamy140/final-ecommerce/internal/api"
	"github.com/anupamy140/final-ecommerce/internal/domain/model"
	"github.com/anupamy140/final-ecommerce/internal/event"
	"github.com/anupamy140/final-ecommerce/internal/notify"

	"go.uber.org/zap"
)

// ProductReader は明細に載せる商品情報の取得元。
// catalog.Serviceがこれを満たす。
type ProductReader interface {
	Product(ctx context.Context, id int64) (model.Product, error)
}

// IDGenerator は操作IDの発行。
type IDGenerator interface {
	NewID() string
}

// Scheduler は自動確定タイマー。cancelを呼べば発火しない。
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func NewRealScheduler() Scheduler { return realScheduler{} }

// 追加1回分の楽観操作。
// Applied（ローカル反映済み）→ Undo / Finalize のどちらかで終端。
type operation struct {
	productID int64
	quantity  int64

	//操作前のカート（ロールバック先）
	snapshot []model.CartLine

	//自動確定タイマーの停止
	cancel func()
}

// Engine はカートの楽観更新エンジン。
//
// addToCartだけ楽観的：先にローカルへ反映し、取り消し猶予のあと
// サーバーへ確定する。changeQuantity / remove / checkout はサーバー先行。
// 見えているカートは「最後にサーバーが確定した状態＋商品ごとに高々1つの
// 未確定差分」から到達できる状態に保つ。
type Engine struct {
	client   *api.Client
	products ProductReader
	notifier notify.Notifier
	idGen    IDGenerator
	sched    Scheduler
	log      *zap.Logger

	//自動確定までの猶予（toastの表示時間に相当）
	finalizeDelay time.Duration

	mu        sync.Mutex
	lines     []model.CartLine
	pending   map[string]*operation
	consumed  map[string]struct{}
	panelOpen bool
}

// DI
func NewEngine(
	client *api.Client,
	products ProductReader,
	notifier notify.Notifier,
	idGen IDGenerator,
	sched Scheduler,
	finalizeDelay time.Duration,
	log *zap.Logger,
) *Engine {
	return &Engine{
		client:        client,
		products:      products,
		notifier:      notifier,
		idGen:         idGen,
		sched:         sched,
		log:           log,
		finalizeDelay: finalizeDelay,
		pending:       map[string]*operation{},
		consumed:      map[string]struct{}{},
	}
}

// BindBus で認証変化を購読する。ログイン・ログアウトのたびに同期し直す。
func (e *Engine) BindBus(bus *event.Bus) {
	bus.Subscribe(event.TopicUserAuth, "cart-engine", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := e.Refresh(ctx); err != nil {
			e.log.Debug("cart refresh after auth change failed", zap.Error(err))
		}
	})
}

type addRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type quantityRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type removeRequest struct {
	ProductID int64 `json:"product_id"`
}

// AddToCart はローカルに即反映して操作IDを返す。
// 同一商品があれば数量を加算、無ければ明細を追加。
// finalizeDelay経過で自動確定する。それまでならUndoで取り消せる。
func (e *Engine) AddToCart(ctx context.Context, product model.Product, quantity int64) (string, error) {
	if quantity < 1 {
		quantity = 1
	}
	if product.Stock <= 0 {
		e.notifier.Error("Out of stock")
		return "", api.ErrValidation
	}
	if !e.client.IsAuthenticated(ctx) {
		return "", api.ErrLoginRequired
	}

	e.mu.Lock()

	opID := e.idGen.NewID()
	op := &operation{
		productID: product.ID,
		quantity:  quantity,
		snapshot:  cloneLines(e.lines),
	}

	//楽観反映（マージ）
	merged := false
	for i := range e.lines {
		if e.lines[i].ProductID == product.ID {
			e.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		e.lines = append(e.lines, model.CartLine{
			ProductID: product.ID,
			Title:     product.Title,
			UnitPrice: product.Price,
			Image:     product.Thumbnail,
			Quantity:  quantity,
		})
	}

	e.pending[opID] = op

	//取り消し猶予が過ぎたら自動確定。
	//確定はUIイベントから切り離れるのでここで新しいcontextを使う。
	op.cancel = e.sched.AfterFunc(e.finalizeDelay, func() {
		fctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = e.Finalize(fctx, opID)
	})
	e.mu.Unlock()

	e.notifier.Success(fmt.Sprintf("%s added to cart!", product.Title))
	return opID, nil
}

// Undo はまだ確定していない操作を取り消して、操作前のカートに戻す。
// サーバーは一切呼ばない。確定済み・不明なIDにはfalseを返す。
func (e *Engine) Undo(opID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, done := e.consumed[opID]; done {
		return false
	}
	op, ok := e.pending[opID]
	if !ok {
		return false
	}

	if op.cancel != nil {
		op.cancel()
	}
	e.lines = op.snapshot
	e.consumed[opID] = struct{}{}
	delete(e.pending, opID)
	return true
}

// Finalize はサーバーへ確定する。冪等：同じIDの2回目以降は何もしない
// （自動確定と明示dismissが競走しても、サーバー呼び出しは1回）。
// 失敗したら操作前のカートへロールバックする。
func (e *Engine) Finalize(ctx context.Context, opID string) error {
	e.mu.Lock()
	if _, done := e.consumed[opID]; done {
		e.mu.Unlock()
		return nil
	}
	op, ok := e.pending[opID]
	if !ok {
		e.mu.Unlock()
		return nil
	}

	//呼び出し前にconsumedへ入れる。これで以降の重複シグナルは素通り。
	e.consumed[opID] = struct{}{}
	delete(e.pending, opID)
	if op.cancel != nil {
		op.cancel()
	}
	e.mu.Unlock()

	res, err := e.client.Post(ctx, "/cart/add", addRequest{ProductID: op.productID, Quantity: op.quantity})
	if err != nil {
		e.rollback(op.snapshot)
		e.notifier.Error(err.Error())
		return err
	}
	if res.StatusCode != http.StatusOK {
		err := api.DecodeError(res)
		e.rollback(op.snapshot)
		e.notifier.Error(err.Error())
		return err
	}
	res.Body.Close()

	//サーバーの正とすり合わせてからパネルを開く。
	//取り直しに失敗したときも操作前へ戻す。追加自体は通っているので
	//次に成功するRefreshでサーバーの正と揃う。
	if err := e.Refresh(ctx); err != nil {
		e.rollback(op.snapshot)
		e.notifier.Error(err.Error())
		return err
	}

	e.mu.Lock()
	e.panelOpen = true
	e.mu.Unlock()
	return nil
}

// ChangeQuantity はサーバー先行。qty < 1 は黙って無視する（エラーにもしない）。
func (e *Engine) ChangeQuantity(ctx context.Context, productID int64, quantity int64) error {
	if quantity < 1 {
		return nil
	}

	res, err := e.client.Post(ctx, "/cart/update_quantity", quantityRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		e.notifier.Error(err.Error())
		return err
	}
	if res.StatusCode != http.StatusOK {
		err := api.DecodeError(res)
		e.notifier.Error(err.Error())
		return err
	}
	res.Body.Close()

	return e.Refresh(ctx)
}

// Remove もサーバー先行。
func (e *Engine) Remove(ctx context.Context, productID int64) error {
	res, err := e.client.Post(ctx, "/cart/remove", removeRequest{ProductID: productID})
	if err != nil {
		e.notifier.Error(err.Error())
		return err
	}
	if res.StatusCode != http.StatusOK {
		err := api.DecodeError(res)
		e.notifier.Error(err.Error())
		return err
	}
	res.Body.Close()

	if err := e.Refresh(ctx); err != nil {
		return err
	}
	e.notifier.Info("Item removed from cart.")
	return nil
}

type checkoutRequest struct {
	AddressID  string `json:"addressId"`
	Currency   string `json:"currency"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type checkoutResponse struct {
	URL   string  `json:"url"`
	Total float64 `json:"total"`
}

// Checkout は前提を満たさなければネットワークに出る前に失敗する。
// 成功時、外部決済なら遷移先URLを返す。即時完了なら合計を通知して
// カートを取り直す。
func (e *Engine) Checkout(ctx context.Context, addressID string, successURL string, cancelURL string) (string, error) {
	e.mu.Lock()
	empty := len(e.lines) == 0
	e.mu.Unlock()

	if empty {
		e.notifier.Warning("Cart is empty")
		return "", api.ErrValidation
	}
	if addressID == "" {
		e.notifier.Error("Please select a shipping address.")
		return "", api.ErrValidation
	}

	res, err := e.client.Post(ctx, "/cart/checkout", checkoutRequest{
		AddressID:  addressID,
		Currency:   "inr",
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		e.notifier.Error(err.Error())
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		err := api.DecodeError(res)
		e.notifier.Error(err.Error())
		return "", err
	}

	var out checkoutResponse
	if err := api.DecodeJSON(res, &out); err != nil {
		e.notifier.Error(err.Error())
		return "", err
	}

	if out.URL != "" {
		return out.URL, nil
	}

	e.notifier.Success(fmt.Sprintf("Order placed! Total: %s", FormatPrice(out.Total)))
	if err := e.Refresh(ctx); err != nil {
		return "", err
	}

	e.mu.Lock()
	e.panelOpen = false
	e.mu.Unlock()
	return "", nil
}

// Refresh はサーバーのカートを正として置き換える。
// /cart は product_id と数量しか返さないので、明細ごとに商品を引いて
// 表示情報を埋める。商品が引けない明細は落とす。
func (e *Engine) Refresh(ctx context.Context) error {
	if !e.client.IsAuthenticated(ctx) {
		e.mu.Lock()
		e.lines = nil
		e.mu.Unlock()
		return nil
	}

	res, err := e.client.Get(ctx, "/cart")
	if err != nil {
		return err
	}
	if res.StatusCode != http.StatusOK {
		return api.DecodeError(res)
	}

	var body model.CartResponse
	if err := api.DecodeJSON(res, &body); err != nil {
		return err
	}

	lines := make([]model.CartLine, 0, len(body.Items))
	for _, item := range body.Items {
		p, err := e.products.Product(ctx, item.ProductID)
		if err != nil {
			e.log.Debug("dropping cart line without product", zap.Int64("product_id", item.ProductID))
			continue
		}
		lines = append(lines, model.CartLine{
			ProductID: item.ProductID,
			Title:     p.Title,
			UnitPrice: p.Price,
			Image:     p.Thumbnail,
			Quantity:  item.Quantity,
		})
	}

	e.mu.Lock()
	e.lines = lines
	e.mu.Unlock()
	return nil
}

// Lines は表示用スナップショット。
func (e *Engine) Lines() []model.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneLines(e.lines)
}

func (e *Engine) Subtotal() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var total float64
	for _, l := range e.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// カートパネルを開いた状態にするか（UI側が読む）
func (e *Engine) PanelOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.panelOpen
}

func (e *Engine) SetPanelOpen(open bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.panelOpen = open
}

func (e *Engine) rollback(snapshot []model.CartLine) {
	e.mu.Lock()
	e.lines = snapshot
	e.mu.Unlock()
}

func cloneLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, len(lines))
	copy(out, lines)
	return out
}

// 表示用の価格
func FormatPrice(p float64) string {
	return fmt.Sprintf("₹%.2f", p)
}

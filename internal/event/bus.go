package event

import "sync"

// 認証状態の変化を知らせるトピック。
// userとvendorは完全に独立で、互いに発火させない。
type Topic string

const (
	TopicUserAuth   Topic = "authChange"
	TopicVendorAuth Topic = "vendorAuthChange"
)

// Handler はペイロードなし。購読側が保存済み状態を読み直す。
type Handler func()

type subscriber struct {
	id string
	fn Handler
}

// Bus はプロセス内のpublish/subscribe。
// Publishは登録順に同期で呼ぶ。Subscribe/Unsubscribeは冪等。
type Bus struct {
	mu   sync.Mutex
	subs map[Topic][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: map[Topic][]subscriber{}}
}

// 同じidで二重登録しても1つ分（ハンドラは差し替え）。
func (b *Bus) Subscribe(topic Topic, id string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs[topic] {
		if s.id == id {
			b.subs[topic][i].fn = fn
			return
		}
	}
	b.subs[topic] = append(b.subs[topic], subscriber{id: id, fn: fn})
}

// 未登録idの解除は何もしない。
func (b *Bus) Unsubscribe(topic Topic, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// 登録順に同期で通知する。
func (b *Bus) Publish(topic Topic) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.Unlock()

	//ハンドラ内からのSubscribe/Unsubscribeを許すためロック外で呼ぶ
	for _, s := range subs {
		s.fn()
	}
}

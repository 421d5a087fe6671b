package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Publishは登録順・同期
func TestBus_PublishInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(TopicUserAuth, "header", func() { got = append(got, "header") })
	bus.Subscribe(TopicUserAuth, "profile", func() { got = append(got, "profile") })
	bus.Subscribe(TopicUserAuth, "cart", func() { got = append(got, "cart") })

	bus.Publish(TopicUserAuth)

	assert.Equal(t, []string{"header", "profile", "cart"}, got)
}

// 同じidの二重登録は1つ分（最後のハンドラが勝つ）
func TestBus_SubscribeIdempotent(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(TopicUserAuth, "header", func() { calls += 100 })
	bus.Subscribe(TopicUserAuth, "header", func() { calls++ })

	bus.Publish(TopicUserAuth)

	assert.Equal(t, 1, calls)
}

func TestBus_UnsubscribeIdempotent(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(TopicUserAuth, "header", func() { calls++ })

	bus.Unsubscribe(TopicUserAuth, "header")
	//二度目・未登録idも何も起きない
	bus.Unsubscribe(TopicUserAuth, "header")
	bus.Unsubscribe(TopicUserAuth, "nobody")

	bus.Publish(TopicUserAuth)

	assert.Equal(t, 0, calls)
}

// userとvendorのトピックは独立（片方の発火でもう片方は呼ばれない）
func TestBus_TopicsIndependent(t *testing.T) {
	bus := NewBus()

	userCalls := 0
	vendorCalls := 0
	bus.Subscribe(TopicUserAuth, "user-sub", func() { userCalls++ })
	bus.Subscribe(TopicVendorAuth, "vendor-sub", func() { vendorCalls++ })

	bus.Publish(TopicUserAuth)

	assert.Equal(t, 1, userCalls)
	assert.Equal(t, 0, vendorCalls)

	bus.Publish(TopicVendorAuth)

	assert.Equal(t, 1, userCalls)
	assert.Equal(t, 1, vendorCalls)
}

// ハンドラの中からUnsubscribeしてもデッドロックしない
func TestBus_UnsubscribeFromHandler(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(TopicUserAuth, "once", func() {
		calls++
		bus.Unsubscribe(TopicUserAuth, "once")
	})

	bus.Publish(TopicUserAuth)
	bus.Publish(TopicUserAuth)

	assert.Equal(t, 1, calls)
}

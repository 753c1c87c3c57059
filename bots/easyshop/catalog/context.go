package catalog

import tele "gopkg.in/telebot.v4"

const storeKey = "catalog_store"

// WithStore attaches s to the update context.
func WithStore(c tele.Context, s Store) {
	c.Set(storeKey, s)
}

// FromContext returns the store attached by WithStore.
func FromContext(c tele.Context) (Store, bool) {
	s, ok := c.Get(storeKey).(Store)
	return s, ok && s != nil
}

package marketplace

// Slots reports how many listing records the marketplace tracks.
func Slots(m *Marketplace) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listings)
}

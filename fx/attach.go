package fx

// Mask selects the render passes of the scene a mark buffer draws for an effect.
type Mask uint8

const (
	MaskOpaque Mask = 1 << iota
	MaskTransparent

	MaskAll = MaskOpaque | MaskTransparent
)

// AttachManager assigns effects to the channels of a buffer with multiple
// attachments. The n-th allocated key uses channel n % channelSize of the
// attachment n / channelSize.
type AttachManager struct {
	channelSize int

	keys  []string
	masks []Mask
}

type AttachInfo struct {
	Count int
	Keys  []string
	Masks []Mask
}

func NewAttachManager(channelSize int) *AttachManager {
	return &AttachManager{channelSize: max(channelSize, 1)}
}

// Allocate appends the key and returns its index. Allocating a key twice
// uses two channels, lookups resolve to the first one. A zero mask means MaskAll.
func (m *AttachManager) Allocate(key string, mask Mask) int {
	if mask == 0 {
		mask = MaskAll
	}

	m.keys = append(m.keys, key)
	m.masks = append(m.masks, mask)

	return len(m.keys) - 1
}

// AttachIndex returns the attachment of the key, or 0 if the key is unknown.
func (m *AttachManager) AttachIndex(key string) int {
	attach, _, _ := m.Lookup(key)
	return attach
}

// ChannelIndex returns the channel of the key, or 0 if the key is unknown.
func (m *AttachManager) ChannelIndex(key string) int {
	_, channel, _ := m.Lookup(key)
	return channel
}

// Lookup returns attachment and channel of the first allocation of the key. If the key
// was not allocated this frame, ok is false.
func (m *AttachManager) Lookup(key string) (attach, channel int, ok bool) {
	idx := m.indexOf(key)
	if idx < 0 {
		return 0, 0, false
	}

	return idx / m.channelSize, idx % m.channelSize, true
}

func (m *AttachManager) Has(key string) bool {
	return m.indexOf(key) >= 0
}

func (m *AttachManager) Count() int {
	return len(m.keys)
}

// AttachCount returns the number of attachments required to hold all channels.
func (m *AttachManager) AttachCount() int {
	return (len(m.keys) + m.channelSize - 1) / m.channelSize
}

func (m *AttachManager) ChannelSize() int {
	return m.channelSize
}

// AttachInfo collects the channels of one attachment. The returned slices
// are only valid until the next call to Reset.
func (m *AttachManager) AttachInfo(attachIndex int) AttachInfo {
	start := min(max(attachIndex*m.channelSize, 0), len(m.keys))
	end := min(start+m.channelSize, len(m.keys))

	return AttachInfo{
		Count: end - start,
		Keys:  m.keys[start:end],
		Masks: m.masks[start:end],
	}
}

// Reset forgets all allocations. Must be called before the allocations of a frame.
func (m *AttachManager) Reset() {
	m.keys = m.keys[:0]
	m.masks = m.masks[:0]
}

func (m *AttachManager) indexOf(key string) int {
	for idx, k := range m.keys {
		if k == key {
			return idx
		}
	}

	return -1
}

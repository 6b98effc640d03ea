package fx

// Stats collects diagnostics of the last rendered frame.
type Stats struct {
	// Approximate number of full size targets held by the pool.
	FBOCache float32

	// Buffers and effects rendered in the last frame.
	Buffers int
	Effects int

	Frames uint64
}

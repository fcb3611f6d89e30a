package domain

// CacheStats reports result cache occupancy.
type CacheStats struct {
	// Size is the number of live entries.
	Size int `json:"size"`

	// MaxSize is the entry bound before LRU eviction.
	MaxSize int `json:"maxsize"`

	// TTL is the entry time-to-live in seconds.
	TTL int `json:"ttl"`

	// CurrSize mirrors Size; every entry weighs one.
	CurrSize int `json:"currsize"`
}

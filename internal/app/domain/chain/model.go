// Package chain defines the per-chain bridge configuration record.
package chain

// Config is the configuration and running volume for one target chain.
// FeeMultiplier is a percentage-style scalar applied after the base fee
// (100 means unchanged).
type Config struct {
	ChainID       string
	Enabled       bool
	FeeMultiplier uint64
	TotalVolume   uint64
}

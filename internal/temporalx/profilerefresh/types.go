package profilerefresh

import "github.com/yungbote/glucobridge-backend/internal/services"

const (
	WorkflowName         = "metabolic_profile_refresh"
	ActivityRefreshChunk = "metabolic_profile_refresh_chunk"

	// DefaultChunkSize is how many users one activity refreshes.
	DefaultChunkSize = 25
)

type Input struct {
	UserIDs   []string `json:"user_ids"`
	Force     bool     `json:"force"`
	ChunkSize int      `json:"chunk_size,omitempty"`
}

type ChunkInput struct {
	UserIDs []string `json:"user_ids"`
	Force   bool     `json:"force"`
}

// Result sums the per-chunk outcomes. Invalid counts ids that were not uuids.
type Result struct {
	services.BatchResult
	Invalid int `json:"invalid"`
	Chunks  int `json:"chunks"`
}

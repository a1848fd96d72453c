package queue

const (
	TypeIndexSeed = "index:seed"
)

// IndexSeedPayload asks the worker to load a labeled phrase dataset into
// the reference index.
type IndexSeedPayload struct {
	RequestID   string `json:"request_id"`
	DatasetPath string `json:"dataset_path"`
}

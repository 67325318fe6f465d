package index

// RecordIndex defines the interface for record indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type RecordIndex interface {
	IndexDocument(path, text string) error
	DeleteDocument(path string) error
	UpsertRecord(r RecordRow, body string) error
	DeleteRecord(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	CountByKind() (map[string]int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies RecordIndex at compile time.
var _ RecordIndex = (*DB)(nil)

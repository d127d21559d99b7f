package port

import "leximini/internal/domain"

// Loader reads source documents from a directory.
type Loader interface {
	// Load returns one Document per readable file under root.
	// Files that cannot be parsed are reported via the errs return
	// without aborting the rest of the batch.
	Load(root string) (docs []domain.Document, errs []error, err error)
}

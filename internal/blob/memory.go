package blob

import (
	memorystore "chocan/internal/infra/blob/memory"
)

// NewMemory returns an in-process Store.
func NewMemory() Store { return memorystore.New() }

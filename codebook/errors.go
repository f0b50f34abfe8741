package codebook

import "fmt"

// SizeMismatchError reports that a codebook rebuild consumed a different
// number of bytes than the packed source entry claimed to occupy.
type SizeMismatchError struct {
	Expected uint64
	Actual   uint64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("codebook: expected %d bytes, read %d", e.Expected, e.Actual)
}

// InvalidIDError reports an out-of-range external codebook library lookup.
type InvalidIDError struct {
	ID int
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("codebook: invalid codebook id %d, try --inline-codebooks", e.ID)
}

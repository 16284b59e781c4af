package source

import "fmt"

// Position is a byte offset into a Document. Two negative values are reserved
// as sentinels so that scans can report running off either end explicitly.
type Position int64

const (
	// BeginningOfDocument is returned by backward scans that run off the start.
	BeginningOfDocument Position = -1
	// EndOfDocument is returned by forward scans that run off the end.
	EndOfDocument Position = -2
)

// IsBOF reports whether p is the beginning sentinel.
func (p Position) IsBOF() bool { return p == BeginningOfDocument }

// IsEOF reports whether p is the end sentinel.
func (p Position) IsEOF() bool { return p == EndOfDocument }

func (p Position) String() string {
	switch p {
	case BeginningOfDocument:
		return "BOF"
	case EndOfDocument:
		return "EOF"
	default:
		return fmt.Sprintf("%d", int64(p))
	}
}

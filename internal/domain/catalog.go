package domain

import "fmt"

// DefaultQuickReplies is the canned question list shipped with the widget.
var DefaultQuickReplies = []string{
	"회원가입은 어떻게 하나요?",
	"비밀번호를 잊어버렸어요.",
	"서비스 요금은 얼마인가요?",
	"고객센터 운영시간이 궁금해요.",
}

// Catalog is a fixed, ordered list of quick-reply questions. An entry's
// position is its stable wire identifier, so wording can change without
// breaking the backend contract.
type Catalog struct {
	entries []string
}

// NewCatalog creates a catalog from the given entries. The slice is copied.
func NewCatalog(entries []string) Catalog {
	cp := make([]string, len(entries))
	copy(cp, entries)
	return Catalog{entries: cp}
}

// Len returns the number of entries.
func (c Catalog) Len() int { return len(c.entries) }

// At returns the question text at index. Out-of-range indices can only come
// from broken rendering code and yield ErrIndexOutOfRange.
func (c Catalog) At(index int) (string, error) {
	if index < 0 || index >= len(c.entries) {
		return "", NewDomainError("Catalog.At", ErrIndexOutOfRange,
			fmt.Sprintf("index %d, catalog size %d", index, len(c.entries)))
	}
	return c.entries[index], nil
}

// Entries returns a copy of all questions in display order.
func (c Catalog) Entries() []string {
	cp := make([]string, len(c.entries))
	copy(cp, c.entries)
	return cp
}

package book

import "strings"

// Criteria narrows a collection of books. An empty ListType behaves like
// ListAll.
type Criteria struct {
	ListType ListType `json:"listType"`
	Genre    string   `json:"genre"`
	Author   string   `json:"author"`
}

// CriteriaPatch holds a partial criteria update. Nil fields are left as is.
type CriteriaPatch struct {
	ListType *ListType
	Genre    *string
	Author   *string
}

// DefaultCriteria matches every book.
func DefaultCriteria() Criteria {
	return Criteria{ListType: ListAll}
}

// Merge returns a copy of c with the non-nil fields of p applied.
func (c Criteria) Merge(p CriteriaPatch) Criteria {
	if p.ListType != nil {
		c.ListType = *p.ListType
	}
	if p.Genre != nil {
		c.Genre = *p.Genre
	}
	if p.Author != nil {
		c.Author = *p.Author
	}
	return c
}

// Match reports whether b passes every active constraint.
func (c Criteria) Match(b Book) bool {
	if c.ListType != ListAll && c.ListType != "" && b.ListType != c.ListType {
		return false
	}
	if !containsFold(b.Genre, c.Genre) {
		return false
	}
	return containsFold(b.Author, c.Author)
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

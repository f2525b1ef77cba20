package domain

// Department is a logical support category backed by its own physical store.
type Department struct {
	Name  string
	Store string
}

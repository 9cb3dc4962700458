package model

// Category represents a valid spending category. Categories are owned by
// configuration and storage; the classification engine only reads them.
type Category struct {
	Name     string
	Keywords []string // optional locale keywords used by the pattern classifier
	ID       int64
}

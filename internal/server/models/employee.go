// Package models holds the records persisted by the server.
package models

import "time"

// Employee is a directory record. Email and Code are natural keys: no two
// employees may share either of them.
type Employee struct {
	ID        string
	Name      string
	Email     string
	Code      int
	TaxCode   int
	Image     []byte
	CreatedAt time.Time

	// ImageKey names the stored image object when images are kept outside
	// the database. It is never sent to clients.
	ImageKey string
}

// Clone returns a deep copy, including the image bytes.
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	if e.Image != nil {
		c.Image = append([]byte(nil), e.Image...)
	}
	return &c
}

package entity

import "time"

// Image is a gallery image owned by the user who uploaded it. Name is the
// object's file name; URL is the public storage URL.
type Image struct {
	ID         string
	Name       string
	URL        string
	UploadedBy string
	CreatedAt  time.Time
}

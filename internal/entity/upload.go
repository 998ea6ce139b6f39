package entity

import "io"

// UploadedImage is an image as received from the client, before it touches disk.
type UploadedImage struct {
	Filename string // as declared by the client, unsanitized
	Content  io.Reader
	Size     int64
}

// StoredUpload is an UploadedImage persisted to the working directory.
// It lives only for the duration of one analysis attempt.
type StoredUpload struct {
	Token string // per-request unique prefix
	Name  string // sanitized client filename
	Path  string
	Size  int64
}

package domain

// PhotoKind selects which verification a photo is submitted for.
type PhotoKind string

const (
	PhotoKindDocument PhotoKind = "doc"
	PhotoKindFace     PhotoKind = "face"
)

// Photo is an uploaded image forwarded to the validation service.
type Photo struct {
	FileName    string
	ContentType string
	Content     []byte
}

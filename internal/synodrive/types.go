package synodrive

// MyDriveID is the well-known root of the authenticated user's personal
// drive, accepted by the Files API in place of a numeric file id.
const MyDriveID = "/mydrive"

// ContentType discriminates Drive items. The API reports more kinds
// (image, video, ...); the exporter only acts on these two.
type ContentType string

const (
	ContentTypeDir      ContentType = "dir"
	ContentTypeDocument ContentType = "document"
)

// Item is one entry of a Drive listing.
type Item struct {
	FileID      string      `json:"file_id"`
	Name        string      `json:"name"`
	DisplayPath string      `json:"display_path"`
	ContentType ContentType `json:"content_type"`
	Encrypted   bool        `json:"encrypted"`
	Hash        string      `json:"hash"`
}

// Path returns the item's display path, falling back to its bare name for
// listings that omit display_path.
func (i *Item) Path() string {
	if i.DisplayPath != "" {
		return i.DisplayPath
	}
	return i.Name
}

type loginData struct {
	SID string `json:"sid"`
}

type listData struct {
	Items []*Item `json:"items"`
	Total int     `json:"total"`
}

type teamFolderItem struct {
	FileID string `json:"file_id"`
	Name   string `json:"name"`
}

type teamFolderData struct {
	Items []*teamFolderItem `json:"items"`
	Total int               `json:"total"`
}

package domain

import (
	"context"
	"io"
	"time"
)

// MaxPhotoBytes caps a single gallery upload.
const MaxPhotoBytes = 10 << 20

// Photo is one gallery image.
// swagger:model Photo
type Photo struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	UploaderUserID *string   `json:"uploader_user_id,omitempty"`
	UploaderEmail  *string   `json:"uploader_email,omitempty"`
	ObjectKey      string    `json:"-"`
	URL            string    `json:"url"`
	Caption        string    `json:"caption"`
	LikeCount      int       `json:"like_count"`
	CommentCount   int       `json:"comment_count"`
	LikedByViewer  bool      `json:"liked_by_viewer"`
	CreatedAt      time.Time `json:"created_at"`
}

// PhotoComment is a comment left on a photo.
// swagger:model PhotoComment
type PhotoComment struct {
	ID         string    `json:"id"`
	PhotoID    string    `json:"photo_id"`
	AuthorName string    `json:"author_name"`
	Author     string    `json:"-"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// PhotoUpload is an incoming image. Body is read once.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Caption     string
	Body        io.Reader
}

// MediaRepository defines storage for photos, likes and comments.
type MediaRepository interface {
	CreatePhoto(ctx context.Context, p *Photo) error
	GetPhoto(ctx context.Context, eventID, photoID string) (*Photo, error)
	// ListPhotos fills the counters and LikedByViewer for actor.
	ListPhotos(ctx context.Context, eventID, actor string, page PaginationParams) ([]*Photo, int, error)
	DeletePhoto(ctx context.Context, eventID, photoID string) error
	// Like is idempotent.
	Like(ctx context.Context, photoID, actor string) error
	Unlike(ctx context.Context, photoID, actor string) error
	CreateComment(ctx context.Context, c *PhotoComment) error
	ListComments(ctx context.Context, photoID string, page PaginationParams) ([]*PhotoComment, int, error)
}

// ObjectStorage stores uploaded files and returns their public URL.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, size int64, body io.Reader) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// GalleryService is the photo gallery of one event. Every call resolves the viewer's access first.
type GalleryService interface {
	Upload(ctx context.Context, eventID string, viewer Viewer, up PhotoUpload) (*Photo, error)
	ListPhotos(ctx context.Context, eventID string, viewer Viewer, page PaginationParams) ([]*Photo, int, error)
	DeletePhoto(ctx context.Context, eventID, photoID string, viewer Viewer) error
	Like(ctx context.Context, eventID, photoID string, viewer Viewer) error
	Unlike(ctx context.Context, eventID, photoID string, viewer Viewer) error
	Comment(ctx context.Context, eventID, photoID string, viewer Viewer, body string) (*PhotoComment, error)
	ListComments(ctx context.Context, eventID, photoID string, viewer Viewer, page PaginationParams) ([]*PhotoComment, int, error)
}

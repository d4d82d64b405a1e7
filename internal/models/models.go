package models

import "time"

// User represents an account on the platform. Username and email are stored
// lowercase and are unique. RefreshToken holds the single outstanding refresh
// token value, or empty when the user has no active session.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Password     string
	AvatarURL    string
	CoverURL     string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile returns the sanitized projection of the user. Password hashes
// and refresh token values never leave the server.
func (u User) PublicProfile() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser carries the externally visible identity fields of a user.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatar,omitempty"`
	CoverURL  string    `json:"coverImage,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Video is an owned piece of published content.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	MediaURL     string    `json:"mediaUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"published"`
	AssetStatus  string    `json:"assetStatus"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	AssetStatusPending = "pending"
	AssetStatusReady   = "ready"
	AssetStatusFailed  = "failed"
)

// Subscription is a directed edge from a subscriber to a channel. The pair is
// unique and the existence of the row is the entire state.
type Subscription struct {
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Playlist is an owned, ordered collection of video references with set
// semantics: a video appears at most once.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is a user's remark attached to a video.
type Comment struct {
	ID        string     `json:"id"`
	VideoID   string     `json:"videoId"`
	OwnerID   string     `json:"ownerId"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Owner     PublicUser `json:"owner,omitzero"`
}

// Post is a short-form text update published to a user's channel feed.
type Post struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Owner     PublicUser `json:"owner,omitzero"`
}

// TokenPair groups the bearer credentials issued to an authenticated user.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// ChannelProfile is the aggregated public view of a user's channel.
type ChannelProfile struct {
	PublicUser
	SubscriberCount   int64 `json:"subscriberCount"`
	SubscribedToCount int64 `json:"subscribedToCount"`
	IsSubscribed      bool  `json:"isSubscribed"`
}

// WatchedVideo is one entry of a user's watch history: the video projection
// with its owner's public identity inlined. The history is a log, so the same
// video may appear multiple times.
type WatchedVideo struct {
	Video     Video      `json:"video"`
	Owner     PublicUser `json:"owner"`
	WatchedAt time.Time  `json:"watchedAt"`
}

package model

// CanonicalProfile is the standardized, platform-agnostic view of one raw
// record. It is a derived, ephemeral value: created by the standardizer,
// consumed by the generation pipeline, never persisted on its own.
//
// Exactly one of the platform payload pointers is set, keyed by Platform;
// unknown platforms carry everything in the top-level fields alone.
type CanonicalProfile struct {
	Username        string   `json:"username"`
	DisplayName     string   `json:"display_name,omitempty"`
	Bio             string   `json:"bio"`
	Platform        Platform `json:"platform"`
	ProfileURL      string   `json:"profile_url"`
	HasValidContent bool     `json:"has_valid_content"`
	RelevanceScore  int      `json:"relevance_score"`

	Instagram *InstagramData `json:"instagram,omitempty"`
	LinkedIn  *LinkedInData  `json:"linkedin,omitempty"`
	Facebook  *FacebookData  `json:"facebook,omitempty"`
}

// RecentPost is a truncated excerpt of the post a profile was derived from.
type RecentPost struct {
	Caption  string `json:"caption"`
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
	URL      string `json:"url"`
}

// InstagramData carries the Instagram-specific payload.
type InstagramData struct {
	Hashtags        []string   `json:"hashtags"`
	RecentPost      RecentPost `json:"recent_post"`
	EngagementScore float64    `json:"engagement_score"`
	ContentType     string     `json:"content_type,omitempty"`
	PostDate        string     `json:"post_date,omitempty"`
	OwnerID         string     `json:"owner_id,omitempty"`
}

// LinkedInData carries the LinkedIn-specific payload.
type LinkedInData struct {
	Headline    string   `json:"headline,omitempty"`
	Experience  []string `json:"experience,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Education   []string `json:"education,omitempty"`
	Connections int      `json:"connections"`
	Industry    string   `json:"industry,omitempty"`
	Company     string   `json:"company,omitempty"`
	Location    string   `json:"location,omitempty"`
}

// FacebookData carries the Facebook-specific payload.
type FacebookData struct {
	Categories []string `json:"categories,omitempty"`
	Likes      int      `json:"likes"`
	Followers  int      `json:"followers"`
	Rating     float64  `json:"rating,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Email      string   `json:"email,omitempty"`
	Website    string   `json:"website,omitempty"`
	Title      string   `json:"title,omitempty"`
	Address    string   `json:"address,omitempty"`
	Founded    string   `json:"founded,omitempty"`
}

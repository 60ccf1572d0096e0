package metadomain

// Creative é o descritor de criativo de /{creative_id} ou do campo ad_creative
type Creative struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// AdWithCreative é a resposta de /{ad_id}?fields=creative{...}
type AdWithCreative struct {
	ID       string    `json:"id"`
	Creative *Creative `json:"creative,omitempty"`
}

package transfer

type CaptionResponse struct {
	Caption string `json:"caption"`
}

type NichesResponse struct {
	Niches []string `json:"niches"`
}

type PlatformInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

package room

type Member struct {
	Username string `json:"username"`
	UserId   string `json:"userId"`
}

type RoomState struct {
	VideoUrl     string  `json:"videoUrl"`
	CurrentTime  float64 `json:"currentTime"`
	IsPlaying    bool    `json:"isPlaying"`
	IsHost       bool    `json:"isHost"`
	HostUsername string  `json:"hostUsername"`
}

type RoomInfo struct {
	RoomId       string `json:"roomId"`
	HostUsername string `json:"hostUsername"`
	UserCount    int    `json:"userCount"`
	VideoUrl     string `json:"videoUrl"`
}

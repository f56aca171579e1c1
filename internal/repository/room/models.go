package room

import "time"

type Member struct {
	ConnectionId string    `json:"connectionId"`
	Username     string    `json:"username"`
	JoinedAt     time.Time `json:"joinedAt"`
}

type Room struct {
	Id               string    `json:"roomId" redis:"room_id"`
	VideoUrl         string    `json:"videoUrl" redis:"video_url"`
	CurrentTime      float64   `json:"currentTime" redis:"current_time"`
	IsPlaying        bool      `json:"isPlaying" redis:"is_playing"`
	HostConnectionId string    `json:"hostConnectionId" redis:"host_connection_id"`
	HostUsername     string    `json:"hostUsername" redis:"host_username"`
	Members          []Member  `json:"members" redis:"-"`
	CreatedAt        time.Time `json:"createdAt" redis:"-"`
}

package room

type CreateOrGetRoomParams struct {
	RoomId              string
	CreatorConnectionId string
	CreatorUsername     string
}

type AddMemberToListParams struct {
	RoomId       string
	ConnectionId string
	Username     string
}

type RemoveMemberFromListParams struct {
	RoomId       string
	ConnectionId string
}

type UpdatePlayerStateParams struct {
	RoomId      string
	IsPlaying   bool
	CurrentTime float64
}

type UpdateVideoUrlParams struct {
	RoomId   string
	VideoUrl string
}

type UpdateHostParams struct {
	RoomId           string
	HostConnectionId string
	HostUsername     string
}

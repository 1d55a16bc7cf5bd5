package dto

import "time"

type RoomFile struct {
	UUID      string    `json:"uuid"`
	RoomUUID  string    `json:"room_uuid"`
	Src       string    `json:"src"`
	Size      int64     `json:"size"`
	SizeMB    float64   `json:"size_mb"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRoomFile собирает DTO файла комнаты
func NewRoomFile(row Row, prefix string) (*RoomFile, error) {
	uuid, err := row.Str(prefix + "uuid")
	if err != nil {
		return nil, err
	}
	roomUUID, err := row.Str(prefix + "room_uuid")
	if err != nil {
		return nil, err
	}
	src, err := row.Str(prefix + "src")
	if err != nil {
		return nil, err
	}
	size, err := row.Int64(prefix + "size")
	if err != nil {
		return nil, err
	}
	fileType, err := row.Str(prefix + "type")
	if err != nil {
		return nil, err
	}
	createdAt, err := row.Time(prefix + "created_at")
	if err != nil {
		return nil, err
	}
	return &RoomFile{
		UUID:      uuid,
		RoomUUID:  roomUUID,
		Src:       src,
		Size:      size,
		SizeMB:    BytesToMB(size),
		Type:      fileType,
		CreatedAt: createdAt,
	}, nil
}

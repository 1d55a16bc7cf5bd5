package database

import "github.com/parley-chat/parley/internal/builder"

// Описания таблиц для билдера. Колонки перечислены явно: алиасы в
// выборках строятся по ним, и password_hash у users в выборки не попадает
var (
	Rooms = builder.Table{
		Name:     "rooms",
		Singular: "room",
		Columns: []string{
			"uuid", "name", "description", "category", "join_message", "rules_text",
			"max_users", "max_channels",
			"single_file_bytes_allowed", "total_files_bytes_allowed", "bytes_used",
			"avatar_file_uuid", "created_at", "updated_at",
		},
	}

	RoomUsers = builder.Table{
		Name:     "room_users",
		Singular: "room_user",
		Columns:  []string{"uuid", "room_uuid", "user_uuid", "role", "created_at"},
	}

	RoomInviteLinks = builder.Table{
		Name:     "room_invite_links",
		Singular: "room_invite_link",
		Columns:  []string{"uuid", "room_uuid", "token", "expires_at", "created_at"},
	}

	RoomFiles = builder.Table{
		Name:     "room_files",
		Singular: "room_file",
		Columns:  []string{"uuid", "room_uuid", "owner_uuid", "src", "size", "type", "created_at"},
	}

	Channels = builder.Table{
		Name:     "channels",
		Singular: "channel",
		Columns:  []string{"uuid", "room_uuid", "name", "description", "type", "created_at", "updated_at"},
	}

	ChannelMessages = builder.Table{
		Name:     "channel_messages",
		Singular: "channel_message",
		Columns: []string{
			"uuid", "channel_uuid", "user_uuid", "body", "type",
			"upload_file_uuid", "webhook_uuid", "created_at", "edited_at",
		},
	}

	ChannelWebhooks = builder.Table{
		Name:     "channel_webhooks",
		Singular: "channel_webhook",
		Columns:  []string{"uuid", "channel_uuid", "name", "avatar_file_uuid", "created_at", "updated_at"},
	}

	Users = builder.Table{
		Name:     "users",
		Singular: "user",
		Columns:  []string{"uuid", "username", "email", "avatar_src", "email_verified", "created_at", "updated_at"},
	}

	UserStatuses = builder.Table{
		Name:     "user_statuses",
		Singular: "user_status",
		Columns:  []string{"uuid", "user_uuid", "state", "message", "last_seen_at", "total_online_seconds", "updated_at"},
	}
)
